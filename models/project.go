package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	ProjectScheduled  ProjectStatus = "Scheduled"
	ProjectActive     ProjectStatus = "Active"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectBlocked    ProjectStatus = "Blocked"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectArchived   ProjectStatus = "Archived"
)

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

type DistributionStrategy string

const (
	StrategyRoundRobin  DistributionStrategy = "round-robin"
	StrategyEvenLoad    DistributionStrategy = "even-load"
	StrategySplitByDays DistributionStrategy = "split-by-days"
	StrategyCustom      DistributionStrategy = "custom"
)

type EstimatedEffort struct {
	Value int    `json:"value" bson:"value"`
	Unit  string `json:"unit" bson:"unit"` // "days" or "hours"
}

type DistributionSettings struct {
	Strategy DistributionStrategy `json:"strategy" bson:"strategy"`
	Notes    string               `json:"notes,omitempty" bson:"notes,omitempty"`
}

type AssignedEmployee struct {
	EmployeeRef string `json:"employeeRef" bson:"employeeRef"`
	Name        string `json:"name" bson:"name"`
	Role        string `json:"role" bson:"role"`
}

type Project struct {
	ID                   primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Title                string               `json:"title" bson:"title"`
	Description          string               `json:"description" bson:"description"`
	ClientNotes          string               `json:"clientNotes,omitempty" bson:"clientNotes,omitempty"`
	Notes                string               `json:"notes,omitempty" bson:"notes,omitempty"`
	AssignedEmployees    []AssignedEmployee   `json:"assignedEmployees" bson:"assignedEmployees"`
	StartDate            time.Time            `json:"startDate" bson:"startDate"`
	EndDate              *time.Time           `json:"endDate,omitempty" bson:"endDate,omitempty"`
	PreferredEndDate     *time.Time           `json:"preferredEndDate,omitempty" bson:"preferredEndDate,omitempty"`
	Priority             Priority             `json:"priority" bson:"priority"`
	EstimatedEffort      EstimatedEffort      `json:"estimatedEffort" bson:"estimatedEffort"`
	Status               ProjectStatus        `json:"status" bson:"status"`
	Progress             int                  `json:"progress" bson:"progress"`
	Days                 []ProjectDay         `json:"days" bson:"days"`
	DistributionSettings DistributionSettings `json:"distributionSettings" bson:"distributionSettings"`
	Audit                []AuditEntry         `json:"audit" bson:"audit"`
	CreatedBy            string               `json:"createdBy" bson:"createdBy"`
	CreatedAt            time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Day returns the project day with the given 1-based number, or nil.
func (p *Project) Day(dayNumber int) *ProjectDay {
	if dayNumber < 1 || dayNumber > len(p.Days) {
		return nil
	}
	return &p.Days[dayNumber-1]
}

// IsAssigned reports whether the employee is on the project roster.
func (p *Project) IsAssigned(employeeRef string) bool {
	for _, e := range p.AssignedEmployees {
		if e.EmployeeRef == employeeRef {
			return true
		}
	}
	return false
}
