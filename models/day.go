package models

import "time"

type DayStatus string

const (
	DayPending         DayStatus = "pending"
	DayInProgress      DayStatus = "in_progress"
	DayCompleted       DayStatus = "completed"
	DayPendingApproval DayStatus = "completed_pending_approval"
	DayApproved        DayStatus = "approved"
	DayBlocked         DayStatus = "blocked"
)

// ValidDayStatus reports whether s is one of the enumerated day states.
func ValidDayStatus(s DayStatus) bool {
	switch s {
	case DayPending, DayInProgress, DayCompleted, DayPendingApproval, DayApproved, DayBlocked:
		return true
	}
	return false
}

// DayDone reports whether the day counts as finished for progress purposes.
func DayDone(s DayStatus) bool {
	return s == DayCompleted || s == DayApproved
}

type AssigneeSubtask struct {
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Completed   bool       `json:"completed" bson:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

type DayAssignee struct {
	EmployeeRef string            `json:"employeeRef" bson:"employeeRef"`
	Name        string            `json:"name" bson:"name"`
	Subtasks    []AssigneeSubtask `json:"subtasks" bson:"subtasks"`
}

type DayComment struct {
	Author    string    `json:"author" bson:"author"`
	Text      string    `json:"text" bson:"text"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type ProjectDay struct {
	DayNumber            int           `json:"dayNumber" bson:"dayNumber"`
	Date                 time.Time     `json:"date" bson:"date"`
	TaskSummary          string        `json:"taskSummary" bson:"taskSummary"`
	Subtasks             []string      `json:"subtasks" bson:"subtasks"`
	ExpectedDeliverables []string      `json:"expectedDeliverables" bson:"expectedDeliverables"`
	EstimatedHours       float64       `json:"estimatedHours" bson:"estimatedHours"`
	Assignees            []DayAssignee `json:"assignees" bson:"assignees"`
	Status               DayStatus     `json:"status" bson:"status"`
	CompletedBy          string        `json:"completedBy,omitempty" bson:"completedBy,omitempty"`
	CompletedAt          *time.Time    `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	Comments             []DayComment  `json:"comments,omitempty" bson:"comments,omitempty"`
	ReminderSentAt       *time.Time    `json:"reminderSentAt,omitempty" bson:"reminderSentAt,omitempty"`
}

// Assignee returns the day's slice for the given employee, or nil.
func (d *ProjectDay) Assignee(employeeRef string) *DayAssignee {
	for i := range d.Assignees {
		if d.Assignees[i].EmployeeRef == employeeRef {
			return &d.Assignees[i]
		}
	}
	return nil
}

// AllSubtasksCompleted reports whether every subtask of every assignee on the
// day is completed. A day with no subtasks at all satisfies this trivially.
func (d *ProjectDay) AllSubtasksCompleted() bool {
	for _, a := range d.Assignees {
		for _, st := range a.Subtasks {
			if !st.Completed {
				return false
			}
		}
	}
	return true
}
