package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"staffly/projects-service/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type publishedEvent struct {
	Channel string
	Event   string
	Payload map[string]interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeNotifier) Publish(channel, event string, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Channel: channel, Event: event, Payload: payload})
}

func (f *fakeNotifier) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

type fakeStore struct {
	mu         sync.Mutex
	projects   []*models.Project
	archiveErr map[string]error
	audits     map[string]int
}

func newFakeStore(projects ...*models.Project) *fakeStore {
	return &fakeStore{
		projects:   projects,
		archiveErr: map[string]error{},
		audits:     map[string]int{},
	}
}

func (f *fakeStore) FindByStatuses(ctx context.Context, statuses []models.ProjectStatus) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for _, p := range f.projects {
		for _, s := range statuses {
			if p.Status == s {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) MarkDayReminded(ctx context.Context, projectID primitive.ObjectID, dayNumber int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.ID == projectID {
			if day := p.Day(dayNumber); day != nil {
				day.ReminderSentAt = &at
			}
		}
	}
	return nil
}

func (f *fakeStore) Archive(ctx context.Context, projectID primitive.ObjectID, entry models.AuditEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.archiveErr[projectID.Hex()]; err != nil {
		return false, err
	}
	for _, p := range f.projects {
		if p.ID == projectID && p.Status == models.ProjectCompleted {
			p.Status = models.ProjectArchived
			f.audits[projectID.Hex()]++
			return true, nil
		}
	}
	return false, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func reminderProject(now time.Time, minutesAhead int) *models.Project {
	dayDate := now.Add(time.Duration(minutesAhead) * time.Minute)
	// store the calendar date; day start is recomputed by the scheduler
	return &models.Project{
		ID:     primitive.NewObjectID(),
		Title:  "reminder project",
		Status: models.ProjectInProgress,
		Days: []models.ProjectDay{{
			DayNumber:   1,
			Date:        time.Date(dayDate.Year(), dayDate.Month(), dayDate.Day(), 0, 0, 0, 0, time.UTC),
			TaskSummary: "big day",
			Status:      models.DayPending,
			Assignees: []models.DayAssignee{
				{EmployeeRef: "A", Name: "Alice"},
				{EmployeeRef: "B", Name: "Bob"},
			},
		}},
	}
}

func newTestScheduler(store SchedulerStore, notifier Notifier, now time.Time) *NotificationScheduler {
	ns := NewNotificationScheduler(store, notifier, quietLogger(), 30*time.Minute, 7*24*time.Hour)
	ns.Now = func() time.Time { return now }
	return ns
}

func TestReminderEmittedWithinWindow(t *testing.T) {
	// 08:30: day start at 09:00 is 30 minutes away
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	project := reminderProject(now, 0)
	store := newFakeStore(project)
	notifier := &fakeNotifier{}

	newTestScheduler(store, notifier, now).Tick(context.Background())

	if got := notifier.count("day_reminder"); got != 2 {
		t.Fatalf("expected one reminder per assignee (2), got %d", got)
	}
	channels := map[string]bool{}
	for _, e := range notifier.events {
		channels[e.Channel] = true
	}
	if !channels["user:A"] || !channels["user:B"] {
		t.Errorf("expected per-user channels, got %v", channels)
	}
	if project.Days[0].ReminderSentAt == nil {
		t.Errorf("expected the reminder watermark to be stored")
	}
}

func TestReminderNotRepeatedAcrossTicks(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	store := newFakeStore(reminderProject(now, 0))
	notifier := &fakeNotifier{}
	ns := newTestScheduler(store, notifier, now)

	ns.Tick(context.Background())
	ns.Now = func() time.Time { return now.Add(10 * time.Minute) }
	ns.Tick(context.Background())

	if got := notifier.count("day_reminder"); got != 2 {
		t.Errorf("watermark should prevent duplicate reminders, got %d events", got)
	}
}

func TestReminderOutsideWindowNotEmitted(t *testing.T) {
	// 06:00: day start at 09:00 is 3 hours away; also a day already started
	now := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	tooFar := reminderProject(now, 0)
	started := reminderProject(now, 0)
	started.Days[0].Date = started.Days[0].Date.AddDate(0, 0, -1)
	store := newFakeStore(tooFar, started)
	notifier := &fakeNotifier{}

	newTestScheduler(store, notifier, now).Tick(context.Background())

	if got := notifier.count("day_reminder"); got != 0 {
		t.Errorf("expected no reminders outside the window, got %d", got)
	}
}

func TestReminderSkipsNonPendingDays(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	project := reminderProject(now, 0)
	project.Days[0].Status = models.DayInProgress
	store := newFakeStore(project)
	notifier := &fakeNotifier{}

	newTestScheduler(store, notifier, now).Tick(context.Background())

	if got := notifier.count("day_reminder"); got != 0 {
		t.Errorf("non-pending day should not be reminded, got %d", got)
	}
}

func TestAutoArchiveAndIdempotence(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	stale := &models.Project{
		ID:        primitive.NewObjectID(),
		Status:    models.ProjectCompleted,
		UpdatedAt: now.Add(-8 * 24 * time.Hour),
	}
	fresh := &models.Project{
		ID:        primitive.NewObjectID(),
		Status:    models.ProjectCompleted,
		UpdatedAt: now.Add(-2 * 24 * time.Hour),
	}
	store := newFakeStore(stale, fresh)
	ns := newTestScheduler(store, &fakeNotifier{}, now)

	ns.Tick(context.Background())
	if stale.Status != models.ProjectArchived {
		t.Errorf("stale project should be archived, got %s", stale.Status)
	}
	if fresh.Status != models.ProjectCompleted {
		t.Errorf("fresh project should stay Completed, got %s", fresh.Status)
	}

	// second run over the already-archived project is a no-op
	ns.Tick(context.Background())
	if got := store.audits[stale.ID.Hex()]; got != 1 {
		t.Errorf("expected exactly one archive audit entry, got %d", got)
	}
	if stale.Status != models.ProjectArchived {
		t.Errorf("archived project should stay Archived, got %s", stale.Status)
	}
}

func TestArchiveErrorDoesNotAbortScan(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	failing := &models.Project{
		ID:        primitive.NewObjectID(),
		Status:    models.ProjectCompleted,
		UpdatedAt: now.Add(-9 * 24 * time.Hour),
	}
	healthy := &models.Project{
		ID:        primitive.NewObjectID(),
		Status:    models.ProjectCompleted,
		UpdatedAt: now.Add(-9 * 24 * time.Hour),
	}
	store := newFakeStore(failing, healthy)
	store.archiveErr[failing.ID.Hex()] = fmt.Errorf("write timeout")
	ns := newTestScheduler(store, &fakeNotifier{}, now)

	ns.Tick(context.Background())

	if healthy.Status != models.ProjectArchived {
		t.Errorf("an error on one project must not abort the scan; healthy is %s", healthy.Status)
	}
}

func TestSchedulerStopsCleanly(t *testing.T) {
	store := newFakeStore()
	ns := NewNotificationScheduler(store, &fakeNotifier{}, quietLogger(), 10*time.Millisecond, time.Hour)
	ns.Start()
	time.Sleep(35 * time.Millisecond)
	ns.Stop()
	// Stop returns only after the loop has exited; a second tick cannot fire
}
