package services

import (
	"context"
	"fmt"
	"time"

	"staffly/projects-service/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SchedulerStore is the slice of the project repository the scheduler needs.
// The scheduler is read-mostly: its only writes are the reminder watermark
// and the one-way Completed -> Archived flip.
type SchedulerStore interface {
	FindByStatuses(ctx context.Context, statuses []models.ProjectStatus) ([]models.Project, error)
	MarkDayReminded(ctx context.Context, projectID primitive.ObjectID, dayNumber int, at time.Time) error
	Archive(ctx context.Context, projectID primitive.ObjectID, entry models.AuditEntry) (bool, error)
}

// NotificationScheduler periodically scans projects, emits day-start
// reminders to assignees and archives stale completed projects. It owns its
// notifier reference for its whole lifetime: started once at process init,
// stopped explicitly at shutdown. A tick in progress is allowed to finish.
type NotificationScheduler struct {
	Store    SchedulerStore
	Notifier Notifier
	Logger   *logrus.Logger

	Interval     time.Duration
	Retention    time.Duration
	DayStartHour int

	// Now is swappable for tests.
	Now func() time.Time

	stop chan struct{}
	done chan struct{}
}

func NewNotificationScheduler(store SchedulerStore, notifier Notifier, logger *logrus.Logger, interval, retention time.Duration) *NotificationScheduler {
	return &NotificationScheduler{
		Store:        store,
		Notifier:     notifier,
		Logger:       logger,
		Interval:     interval,
		Retention:    retention,
		DayStartHour: 9,
		Now:          time.Now,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start launches the scheduler loop in its own goroutine.
func (ns *NotificationScheduler) Start() {
	go func() {
		defer close(ns.done)
		ticker := time.NewTicker(ns.Interval)
		defer ticker.Stop()

		ns.Logger.Infof("Event ID: SCHEDULER_STARTED, Description: Notification scheduler running every %s", ns.Interval)
		for {
			select {
			case <-ns.stop:
				return
			case <-ticker.C:
				ns.Tick(context.Background())
			}
		}
	}()
}

// Stop signals the loop to exit and waits for an in-flight tick to finish.
func (ns *NotificationScheduler) Stop() {
	close(ns.stop)
	<-ns.done
	ns.Logger.Info("Event ID: SCHEDULER_STOPPED, Description: Notification scheduler stopped")
}

// Tick runs one full scan. An error on one project never aborts the scan of
// the remaining projects.
func (ns *NotificationScheduler) Tick(ctx context.Context) {
	ns.remindUpcomingDays(ctx)
	ns.archiveStaleProjects(ctx)
}

func (ns *NotificationScheduler) remindUpcomingDays(ctx context.Context) {
	now := ns.Now()
	projects, err := ns.Store.FindByStatuses(ctx, []models.ProjectStatus{
		models.ProjectScheduled, models.ProjectActive, models.ProjectInProgress,
	})
	if err != nil {
		ns.Logger.Errorf("Event ID: SCHEDULER_SCAN_FAILED, Description: Reminder scan could not list projects: %v", err)
		return
	}

	for _, p := range projects {
		for _, day := range p.Days {
			if day.Status != models.DayPending {
				continue
			}
			dayStart := time.Date(day.Date.Year(), day.Date.Month(), day.Date.Day(), ns.DayStartHour, 0, 0, 0, day.Date.Location())
			if !dayStart.After(now) || dayStart.Sub(now) > time.Hour {
				continue
			}
			// watermark: each (project, day) pair is reminded once
			if day.ReminderSentAt != nil {
				continue
			}

			remaining := dayStart.Sub(now).Round(time.Minute)
			for _, assignee := range day.Assignees {
				ns.Notifier.Publish("user:"+assignee.EmployeeRef, "day_reminder", map[string]interface{}{
					"projectId":   p.ID.Hex(),
					"title":       p.Title,
					"dayNumber":   day.DayNumber,
					"taskSummary": day.TaskSummary,
					"startsIn":    remaining.String(),
				})
			}

			if err := ns.Store.MarkDayReminded(ctx, p.ID, day.DayNumber, now); err != nil {
				ns.Logger.Errorf("Event ID: SCHEDULER_WATERMARK_FAILED, Description: Project %s day %d: %v", p.ID.Hex(), day.DayNumber, err)
			}
		}
	}
}

func (ns *NotificationScheduler) archiveStaleProjects(ctx context.Context) {
	now := ns.Now()
	projects, err := ns.Store.FindByStatuses(ctx, []models.ProjectStatus{models.ProjectCompleted})
	if err != nil {
		ns.Logger.Errorf("Event ID: SCHEDULER_SCAN_FAILED, Description: Archive scan could not list projects: %v", err)
		return
	}

	for _, p := range projects {
		if now.Sub(p.UpdatedAt) < ns.Retention {
			continue
		}

		entry := models.AuditEntry{
			Action:      models.AuditArchived,
			PerformedBy: "system",
			Timestamp:   now,
			Details:     fmt.Sprintf("Auto-archived after %s in Completed status", ns.Retention),
		}
		archived, err := ns.Store.Archive(ctx, p.ID, entry)
		if err != nil {
			ns.Logger.Errorf("Event ID: SCHEDULER_ARCHIVE_FAILED, Description: Project %s: %v", p.ID.Hex(), err)
			continue
		}
		if archived {
			ns.Logger.Infof("Event ID: PROJECT_ARCHIVED, Description: Project %s auto-archived", p.ID.Hex())
		}
	}
}
