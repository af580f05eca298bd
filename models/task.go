package models

import "time"

// UserTask is the flattened view of one subtask assigned to one employee,
// collected across all active projects for the personal task list.
type UserTask struct {
	ProjectID    string     `json:"projectId" bson:"projectId"`
	ProjectTitle string     `json:"projectTitle" bson:"projectTitle"`
	DayNumber    int        `json:"dayNumber" bson:"dayNumber"`
	Date         time.Time  `json:"date" bson:"date"`
	SubtaskIndex int        `json:"subtaskIndex" bson:"subtaskIndex"`
	Title        string     `json:"title" bson:"title"`
	Description  string     `json:"description,omitempty" bson:"description,omitempty"`
	DayStatus    DayStatus  `json:"dayStatus" bson:"dayStatus"`
	Completed    bool       `json:"completed" bson:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}
