package planner

import "context"

// DayTemplate is the pre-distribution content for a single project day as
// produced by the external plan generator.
type DayTemplate struct {
	DayNumber            int      `json:"dayNumber,omitempty"`
	TaskSummary          string   `json:"taskSummary"`
	Subtasks             []string `json:"subtasks"`
	ExpectedDeliverables []string `json:"expectedDeliverables"`
	EstimatedHours       float64  `json:"estimatedHours,omitempty"`
	AssigneeIndices      []int    `json:"assigneeIndices,omitempty"`
}

// ProjectContext is what the generator gets to work with.
type ProjectContext struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ClientNotes   string   `json:"clientNotes,omitempty"`
	RosterNames   []string `json:"rosterNames"`
	RosterRoles   []string `json:"rosterRoles"`
	EffortValue   int      `json:"effortValue"`
	EffortUnit    string   `json:"effortUnit"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate,omitempty"`
	Strategy      string   `json:"strategy"`
	StrategyNotes string   `json:"strategyNotes,omitempty"`
}

// GeneratedPlan is the generator's answer, with the raw prompt/response kept
// for the audit trail.
type GeneratedPlan struct {
	Days          []DayTemplate `json:"days"`
	PromptTrace   string        `json:"promptTrace,omitempty"`
	ResponseTrace string        `json:"responseTrace,omitempty"`
}

// Client produces and refines day-by-day plans. Both calls may fail or time
// out; callers of Generate are expected to fall back locally.
type Client interface {
	Generate(ctx context.Context, pc ProjectContext) (*GeneratedPlan, error)
	Refine(ctx context.Context, current []DayTemplate, instructions string) (*GeneratedPlan, error)
}
