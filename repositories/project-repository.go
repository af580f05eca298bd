package repositories

import (
	"context"
	"fmt"
	"time"

	"staffly/projects-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProjectRepository owns all MongoDB access for the project aggregate. It is
// the only place bson field paths are built; callers use typed operations.
type ProjectRepository struct {
	collection *mongo.Collection
}

func NewProjectRepository(collection *mongo.Collection) *ProjectRepository {
	return &ProjectRepository{collection: collection}
}

func (r *ProjectRepository) Insert(ctx context.Context, project *models.Project) error {
	result, err := r.collection.InsertOne(ctx, project)
	if err != nil {
		return fmt.Errorf("failed to insert project: %v", err)
	}
	project.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid project ID format")
	}

	var project models.Project
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error fetching project: %v", err)
	}
	return &project, nil
}

func (r *ProjectRepository) Find(ctx context.Context, filter bson.M) ([]models.Project, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve projects: %v", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err = cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %v", err)
	}
	return projects, nil
}

func (r *ProjectRepository) FindByStatuses(ctx context.Context, statuses []models.ProjectStatus) ([]models.Project, error) {
	return r.Find(ctx, bson.M{"status": bson.M{"$in": statuses}})
}

// Replace writes the whole aggregate back. Used by operations that touch many
// days at once (reassignment, plan refinement).
func (r *ProjectRepository) Replace(ctx context.Context, project *models.Project) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": project.ID}, project)
	if err != nil {
		return fmt.Errorf("failed to update project: %v", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyDayMutation persists a single day's new state together with the
// derived project fields and the audit entry in one UpdateOne, so that a day
// mutation and its audit record can never be applied partially.
func (r *ProjectRepository) ApplyDayMutation(ctx context.Context, project *models.Project, dayNumber int, entry models.AuditEntry) error {
	day := project.Day(dayNumber)
	if day == nil {
		return fmt.Errorf("day %d out of range", dayNumber)
	}

	dayField := fmt.Sprintf("days.%d", dayNumber-1)
	update := bson.M{
		"$set": bson.M{
			dayField:    day,
			"status":    project.Status,
			"progress":  project.Progress,
			"updatedAt": project.UpdatedAt,
		},
		"$push": bson.M{"audit": entry},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": project.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to persist day mutation: %v", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkDayReminded stores the reminder watermark for one day so repeated
// scheduler ticks inside the same window do not re-notify.
func (r *ProjectRepository) MarkDayReminded(ctx context.Context, projectID primitive.ObjectID, dayNumber int, at time.Time) error {
	field := fmt.Sprintf("days.%d.reminderSentAt", dayNumber-1)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": projectID}, bson.M{"$set": bson.M{field: at}})
	if err != nil {
		return fmt.Errorf("failed to store reminder watermark: %v", err)
	}
	return nil
}

// Archive flips a Completed project to Archived and appends the audit entry
// in the same update. The filter matches only Completed projects, so running
// the scan again over an already-archived project is a no-op.
func (r *ProjectRepository) Archive(ctx context.Context, projectID primitive.ObjectID, entry models.AuditEntry) (bool, error) {
	filter := bson.M{"_id": projectID, "status": models.ProjectCompleted}
	update := bson.M{
		"$set":  bson.M{"status": models.ProjectArchived, "updatedAt": entry.Timestamp},
		"$push": bson.M{"audit": entry},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to archive project: %v", err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid project ID format")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete project: %v", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
