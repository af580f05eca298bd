package services

import (
	"fmt"
	"time"

	"staffly/projects-service/models"
)

// CompleteSubtask marks one subtask of one assignee as completed and moves
// the day through the state machine: first completion pushes a pending day to
// in_progress; once every subtask of every assignee is done the day becomes
// completed. Non-assignees are rejected unless the caller is an admin.
//
// The returned audit entry has already been appended to the project.
func CompleteSubtask(p *models.Project, dayNumber int, employeeRef string, subtaskIndex int, actor, actorName string, isAdmin bool, now time.Time) (*models.AuditEntry, error) {
	day := p.Day(dayNumber)
	if day == nil {
		return nil, ErrDayNotFound
	}

	assignee := day.Assignee(employeeRef)
	if assignee == nil {
		return nil, ErrEmployeeNotAssigned
	}
	if actor != employeeRef && !isAdmin {
		return nil, ErrUnauthorized
	}
	if subtaskIndex < 0 || subtaskIndex >= len(assignee.Subtasks) {
		return nil, ErrSubtaskNotFound
	}

	assignee.Subtasks[subtaskIndex].Completed = true
	assignee.Subtasks[subtaskIndex].CompletedAt = &now

	var entry models.AuditEntry
	if day.AllSubtasksCompleted() {
		day.Status = models.DayCompleted
		day.CompletedBy = actor
		day.CompletedAt = &now
		entry = models.AuditEntry{
			Action:          models.AuditDayCompleted,
			PerformedBy:     actor,
			PerformedByName: actorName,
			Timestamp:       now,
			Details:         fmt.Sprintf("Day %d completed via subtasks", dayNumber),
		}
	} else {
		if day.Status == models.DayPending {
			day.Status = models.DayInProgress
		}
		entry = models.AuditEntry{
			Action:          models.AuditStatusChanged,
			PerformedBy:     actor,
			PerformedByName: actorName,
			Timestamp:       now,
			Details:         fmt.Sprintf("Subtask %d on day %d completed by %s", subtaskIndex, dayNumber, employeeRef),
		}
	}

	Recalculate(p)
	p.UpdatedAt = now
	p.Audit = append(p.Audit, entry)
	return &entry, nil
}

// CompleteDay completes a whole day without subtask granularity, used for
// days with no subtasks or when an employee closes the day wholesale. Only a
// listed assignee of the day may close it, unless the caller is an admin.
func CompleteDay(p *models.Project, dayNumber int, completedBy, completedByName, comment string, isAdmin bool, now time.Time) (*models.AuditEntry, error) {
	day := p.Day(dayNumber)
	if day == nil {
		return nil, ErrDayNotFound
	}
	if !isAdmin && day.Assignee(completedBy) == nil {
		return nil, ErrUnauthorized
	}

	day.Status = models.DayCompleted
	day.CompletedBy = completedBy
	day.CompletedAt = &now
	for i := range day.Assignees {
		for j := range day.Assignees[i].Subtasks {
			if !day.Assignees[i].Subtasks[j].Completed {
				day.Assignees[i].Subtasks[j].Completed = true
				day.Assignees[i].Subtasks[j].CompletedAt = &now
			}
		}
	}
	if comment != "" {
		day.Comments = append(day.Comments, models.DayComment{
			Author:    completedBy,
			Text:      comment,
			Timestamp: now,
		})
	}

	entry := models.AuditEntry{
		Action:          models.AuditDayCompleted,
		PerformedBy:     completedBy,
		PerformedByName: completedByName,
		Timestamp:       now,
		Details:         fmt.Sprintf("Day %d marked completed", dayNumber),
	}

	Recalculate(p)
	p.UpdatedAt = now
	p.Audit = append(p.Audit, entry)
	return &entry, nil
}

// SetDayStatus overwrites a day's status unconditionally. This is the admin
// escape hatch: any state is reachable from any state through it, only the
// value itself is validated.
func SetDayStatus(p *models.Project, dayNumber int, status models.DayStatus, actor, actorName string, now time.Time) (*models.AuditEntry, error) {
	if !models.ValidDayStatus(status) {
		return nil, ErrInvalidStatus
	}
	day := p.Day(dayNumber)
	if day == nil {
		return nil, ErrDayNotFound
	}

	previous := day.Status
	day.Status = status
	if status == models.DayCompleted && day.CompletedAt == nil {
		day.CompletedBy = actor
		day.CompletedAt = &now
	}

	entry := models.AuditEntry{
		Action:          models.AuditStatusChanged,
		PerformedBy:     actor,
		PerformedByName: actorName,
		Timestamp:       now,
		Details:         fmt.Sprintf("Day %d status changed from %s to %s", dayNumber, previous, status),
	}

	Recalculate(p)
	p.UpdatedAt = now
	p.Audit = append(p.Audit, entry)
	return &entry, nil
}

// Recalculate derives the project's progress percentage and aggregate status
// from its day states.
//
// The precedence is deliberate: "all days done" is checked before "any day
// blocked", so a project that is fully completed apart from a stray blocked
// day reports Completed. When no rule matches, the status is left as-is; the
// aggregator never assigns Scheduled or Active.
func Recalculate(p *models.Project) {
	total := len(p.Days)
	if total == 0 {
		p.Progress = 0
		return
	}

	done := 0
	inProgress := 0
	blocked := 0
	for _, d := range p.Days {
		switch {
		case models.DayDone(d.Status):
			done++
		case d.Status == models.DayInProgress:
			inProgress++
		case d.Status == models.DayBlocked:
			blocked++
		}
	}

	p.Progress = int(float64(done)/float64(total)*100 + 0.5)

	switch {
	case done == total:
		p.Status = models.ProjectCompleted
	case inProgress > 0 || done > 0:
		p.Status = models.ProjectInProgress
	case blocked > 0:
		p.Status = models.ProjectBlocked
	}
}
