package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"staffly/projects-service/models"
	"staffly/projects-service/planner"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Notifier publishes fire-and-forget events onto per-user ("user:<id>") and
// per-project ("project:<id>") channels.
type Notifier interface {
	Publish(channel, event string, payload map[string]interface{})
}

// ProjectStore is the persistence surface the service needs; implemented by
// repositories.ProjectRepository.
type ProjectStore interface {
	Insert(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id string) (*models.Project, error)
	Find(ctx context.Context, filter bson.M) ([]models.Project, error)
	FindByStatuses(ctx context.Context, statuses []models.ProjectStatus) ([]models.Project, error)
	Replace(ctx context.Context, project *models.Project) error
	ApplyDayMutation(ctx context.Context, project *models.Project, dayNumber int, entry models.AuditEntry) error
	Delete(ctx context.Context, id string) error
}

// ProjectService implements the caller-facing operations over the project
// aggregate: creation with AI planning (and local fallback), reassignment,
// day lifecycle mutations, refinement, deletion and the per-user task view.
type ProjectService struct {
	Repo     ProjectStore
	Notifier Notifier
	Planner  planner.Client
	Logger   *logrus.Logger

	// Now is swappable for tests.
	Now func() time.Time
}

func NewProjectService(repo ProjectStore, notifier Notifier, plannerClient planner.Client, logger *logrus.Logger) *ProjectService {
	return &ProjectService{
		Repo:     repo,
		Notifier: notifier,
		Planner:  plannerClient,
		Logger:   logger,
		Now:      time.Now,
	}
}

// CreateProjectRequest carries everything needed to materialize a project.
type CreateProjectRequest struct {
	Title                string                      `json:"title"`
	Description          string                      `json:"description"`
	ClientNotes          string                      `json:"clientNotes,omitempty"`
	Notes                string                      `json:"notes,omitempty"`
	AssignedEmployees    []models.AssignedEmployee   `json:"assignedEmployees"`
	StartDate            time.Time                   `json:"startDate"`
	EndDate              *time.Time                  `json:"endDate,omitempty"`
	PreferredEndDate     *time.Time                  `json:"preferredEndDate,omitempty"`
	Priority             models.Priority             `json:"priority"`
	EstimatedEffort      models.EstimatedEffort      `json:"estimatedEffort"`
	DistributionSettings models.DistributionSettings `json:"distributionSettings"`
}

// CreateProject asks the external planner for a day plan and falls back to
// the deterministic boilerplate plan when the planner errors or times out; a
// planner failure is never surfaced to the caller. The audit trail records
// which path produced the plan.
func (s *ProjectService) CreateProject(ctx context.Context, req CreateProjectRequest, createdBy, createdByName string) (*models.Project, error) {
	now := s.Now()

	rosterNames := make([]string, 0, len(req.AssignedEmployees))
	rosterRoles := make([]string, 0, len(req.AssignedEmployees))
	for _, e := range req.AssignedEmployees {
		rosterNames = append(rosterNames, e.Name)
		rosterRoles = append(rosterRoles, e.Role)
	}

	planCtx := planner.ProjectContext{
		Title:         req.Title,
		Description:   req.Description,
		ClientNotes:   req.ClientNotes,
		RosterNames:   rosterNames,
		RosterRoles:   rosterRoles,
		EffortValue:   req.EstimatedEffort.Value,
		EffortUnit:    req.EstimatedEffort.Unit,
		StartDate:     req.StartDate.Format("2006-01-02"),
		Strategy:      string(req.DistributionSettings.Strategy),
		StrategyNotes: req.DistributionSettings.Notes,
	}
	if req.EndDate != nil {
		planCtx.EndDate = req.EndDate.Format("2006-01-02")
	}

	usedFallback := false
	generated, err := s.Planner.Generate(ctx, planCtx)
	if err != nil {
		s.Logger.Warnf("Event ID: PLANNER_FALLBACK, Description: Plan generator unavailable, using fallback plan: %v", err)
		usedFallback = true
		generated = &planner.GeneratedPlan{
			Days: planner.FallbackPlan(req.EstimatedEffort.Value, req.EstimatedEffort.Unit, req.StartDate, req.EndDate, len(req.AssignedEmployees)),
		}
	}

	project := &models.Project{
		Title:                req.Title,
		Description:          req.Description,
		ClientNotes:          req.ClientNotes,
		Notes:                req.Notes,
		AssignedEmployees:    req.AssignedEmployees,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		PreferredEndDate:     req.PreferredEndDate,
		Priority:             req.Priority,
		EstimatedEffort:      req.EstimatedEffort,
		Status:               models.ProjectScheduled,
		Days:                 NormalizePlan(generated.Days, req.StartDate, req.AssignedEmployees, req.DistributionSettings),
		DistributionSettings: req.DistributionSettings,
		CreatedBy:            createdBy,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	project.Audit = append(project.Audit, models.AuditEntry{
		Action:          models.AuditCreated,
		PerformedBy:     createdBy,
		PerformedByName: createdByName,
		Timestamp:       now,
		Details:         fmt.Sprintf("Project created with %d days for %d employees", len(project.Days), len(project.AssignedEmployees)),
		UsedFallback:    usedFallback,
	})
	if !usedFallback {
		project.Audit = append(project.Audit, models.AuditEntry{
			Action:          models.AuditAIGenerated,
			PerformedBy:     createdBy,
			PerformedByName: createdByName,
			Timestamp:       now,
			Details:         "Initial day plan produced by the AI planner",
			AIPrompt:        generated.PromptTrace,
			AIResponse:      generated.ResponseTrace,
		})
	}

	if err := s.Repo.Insert(ctx, project); err != nil {
		return nil, err
	}

	s.Notifier.Publish("project:"+project.ID.Hex(), "project_created", map[string]interface{}{
		"projectId": project.ID.Hex(),
		"title":     project.Title,
	})
	for _, e := range project.AssignedEmployees {
		s.Notifier.Publish("user:"+e.EmployeeRef, "project_assigned", map[string]interface{}{
			"projectId": project.ID.Hex(),
			"title":     project.Title,
			"startDate": project.StartDate.Format("2006-01-02"),
		})
	}

	return project, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// GetAllProjects lists projects, optionally filtered by status and creator.
func (s *ProjectService) GetAllProjects(ctx context.Context, status, createdBy string) ([]models.Project, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if createdBy != "" {
		filter["createdBy"] = createdBy
	}
	return s.Repo.Find(ctx, filter)
}

// ReassignProject swaps the roster and distribution settings, then re-runs
// the allocator over every day that is not already finished. Days in
// completed, approved or completed_pending_approval keep their historical
// assignee slices.
func (s *ProjectService) ReassignProject(ctx context.Context, id string, roster []models.AssignedEmployee, settings models.DistributionSettings, actor, actorName string) (*models.Project, error) {
	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.Now()

	project.AssignedEmployees = roster
	project.DistributionSettings = settings

	allIndices := make([]int, len(roster))
	for i := range allIndices {
		allIndices[i] = i
	}
	for i := range project.Days {
		day := &project.Days[i]
		switch day.Status {
		case models.DayCompleted, models.DayApproved, models.DayPendingApproval:
			continue
		}
		day.Assignees = DistributeDay(day.Subtasks, allIndices, roster, settings.Strategy)
	}

	project.UpdatedAt = now
	project.Audit = append(project.Audit, models.AuditEntry{
		Action:          models.AuditReassigned,
		PerformedBy:     actor,
		PerformedByName: actorName,
		Timestamp:       now,
		Details:         fmt.Sprintf("Roster reassigned to %d employees with strategy %s", len(roster), settings.Strategy),
	})

	if err := s.Repo.Replace(ctx, project); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	for _, e := range roster {
		s.Notifier.Publish("user:"+e.EmployeeRef, "project_reassigned", map[string]interface{}{
			"projectId": project.ID.Hex(),
			"title":     project.Title,
		})
	}

	return project, nil
}

// CompleteSubtask marks one subtask done for one assignee and persists the
// resulting day transition atomically with its audit entry.
func (s *ProjectService) CompleteSubtask(ctx context.Context, id string, dayNumber int, employeeRef string, subtaskIndex int, actor, actorName string, isAdmin bool) (*models.Project, error) {
	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, err := CompleteSubtask(project, dayNumber, employeeRef, subtaskIndex, actor, actorName, isAdmin, s.Now())
	if err != nil {
		return nil, err
	}

	if err := s.Repo.ApplyDayMutation(ctx, project, dayNumber, *entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	day := project.Day(dayNumber)
	if day.Status == models.DayCompleted {
		s.Notifier.Publish("project:"+project.ID.Hex(), "day_completed", map[string]interface{}{
			"projectId": project.ID.Hex(),
			"dayNumber": dayNumber,
			"progress":  project.Progress,
		})
	}

	return project, nil
}

// CompleteDay closes a day wholesale, without subtask granularity.
func (s *ProjectService) CompleteDay(ctx context.Context, id string, dayNumber int, completedBy, completedByName, comment string, isAdmin bool) (*models.Project, error) {
	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, err := CompleteDay(project, dayNumber, completedBy, completedByName, comment, isAdmin, s.Now())
	if err != nil {
		return nil, err
	}

	if err := s.Repo.ApplyDayMutation(ctx, project, dayNumber, *entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	s.Notifier.Publish("project:"+project.ID.Hex(), "day_completed", map[string]interface{}{
		"projectId": project.ID.Hex(),
		"dayNumber": dayNumber,
		"progress":  project.Progress,
	})

	return project, nil
}

// SetDayStatus is the admin status override.
func (s *ProjectService) SetDayStatus(ctx context.Context, id string, dayNumber int, status models.DayStatus, actor, actorName string) (*models.Project, error) {
	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, err := SetDayStatus(project, dayNumber, status, actor, actorName, s.Now())
	if err != nil {
		return nil, err
	}

	if err := s.Repo.ApplyDayMutation(ctx, project, dayNumber, *entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	s.Notifier.Publish("project:"+project.ID.Hex(), "day_status_changed", map[string]interface{}{
		"projectId": project.ID.Hex(),
		"dayNumber": dayNumber,
		"status":    string(status),
	})

	return project, nil
}

// RefinePlan sends the current day templates plus the admin's instructions to
// the planner and applies the refined templates. Unlike creation, a planner
// failure here is surfaced: substituting boilerplate for an explicit
// refinement would silently discard the instructions. Days already in a
// terminal state keep both their template and their completion history.
func (s *ProjectService) RefinePlan(ctx context.Context, id, instructions, actor, actorName string) (*models.Project, error) {
	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.Now()

	current := make([]planner.DayTemplate, 0, len(project.Days))
	for _, d := range project.Days {
		current = append(current, planner.DayTemplate{
			DayNumber:            d.DayNumber,
			TaskSummary:          d.TaskSummary,
			Subtasks:             d.Subtasks,
			ExpectedDeliverables: d.ExpectedDeliverables,
			EstimatedHours:       d.EstimatedHours,
		})
	}

	refined, err := s.Planner.Refine(ctx, current, instructions)
	if err != nil {
		s.Logger.Warnf("Event ID: PLANNER_REFINE_FAILED, Description: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}

	allIndices := make([]int, len(project.AssignedEmployees))
	for i := range allIndices {
		allIndices[i] = i
	}

	for i, tpl := range refined.Days {
		dayNumber := tpl.DayNumber
		if dayNumber == 0 {
			dayNumber = i + 1
		}
		day := project.Day(dayNumber)
		if day == nil {
			// the day count is fixed at normalization, extra days are ignored
			continue
		}
		if models.DayDone(day.Status) || day.Status == models.DayPendingApproval {
			continue
		}

		day.TaskSummary = tpl.TaskSummary
		day.Subtasks = tpl.Subtasks
		day.ExpectedDeliverables = tpl.ExpectedDeliverables
		if tpl.EstimatedHours > 0 {
			day.EstimatedHours = tpl.EstimatedHours
		}

		indices := tpl.AssigneeIndices
		if len(indices) == 0 {
			indices = allIndices
		}
		day.Assignees = DistributeDay(day.Subtasks, indices, project.AssignedEmployees, project.DistributionSettings.Strategy)
	}

	Recalculate(project)
	project.UpdatedAt = now
	project.Audit = append(project.Audit, models.AuditEntry{
		Action:          models.AuditAIGenerated,
		PerformedBy:     actor,
		PerformedByName: actorName,
		Timestamp:       now,
		Details:         fmt.Sprintf("Plan refined: %s", instructions),
		AIPrompt:        refined.PromptTrace,
		AIResponse:      refined.ResponseTrace,
	})

	if err := s.Repo.Replace(ctx, project); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	s.Notifier.Publish("project:"+project.ID.Hex(), "plan_refined", map[string]interface{}{
		"projectId": project.ID.Hex(),
	})

	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrProjectNotFound
	}
	return err
}

// GetTasksForUser flattens the employee's assignee slices across all active
// projects into a single date-ordered task list.
func (s *ProjectService) GetTasksForUser(ctx context.Context, employeeRef string) ([]models.UserTask, error) {
	projects, err := s.Repo.FindByStatuses(ctx, []models.ProjectStatus{
		models.ProjectScheduled, models.ProjectActive, models.ProjectInProgress,
	})
	if err != nil {
		return nil, err
	}

	var tasks []models.UserTask
	for _, p := range projects {
		for _, d := range p.Days {
			assignee := d.Assignee(employeeRef)
			if assignee == nil {
				continue
			}
			for idx, st := range assignee.Subtasks {
				tasks = append(tasks, models.UserTask{
					ProjectID:    p.ID.Hex(),
					ProjectTitle: p.Title,
					DayNumber:    d.DayNumber,
					Date:         d.Date,
					SubtaskIndex: idx,
					Title:        st.Title,
					Description:  st.Description,
					DayStatus:    d.Status,
					Completed:    st.Completed,
					CompletedAt:  st.CompletedAt,
				})
			}
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].Date.Equal(tasks[j].Date) {
			return tasks[i].Date.Before(tasks[j].Date)
		}
		if tasks[i].ProjectID != tasks[j].ProjectID {
			return tasks[i].ProjectID < tasks[j].ProjectID
		}
		return tasks[i].SubtaskIndex < tasks[j].SubtaskIndex
	})

	return tasks, nil
}
