package planner

import (
	"fmt"
	"math"
	"time"
)

const fallbackEstimatedHours = 6

var fallbackSubtasks = []string{
	"Review the day's scope with the team",
	"Work on the planned deliverables",
	"Document progress and blockers",
	"Prepare a short end-of-day summary",
}

// FallbackPlan builds a deterministic boilerplate plan for when the external
// planner is unavailable. It produces min(effortDays, dateSpanDays) days;
// effort given in hours is converted with ceil(hours/8). Every day lists the
// whole roster.
func FallbackPlan(effortValue int, effortUnit string, startDate time.Time, endDate *time.Time, rosterSize int) []DayTemplate {
	effortDays := effortValue
	if effortUnit == "hours" {
		effortDays = int(math.Ceil(float64(effortValue) / 8))
	}
	if effortDays < 0 {
		effortDays = 0
	}

	numDays := effortDays
	if endDate != nil {
		span := int(endDate.Sub(startDate).Hours()/24) + 1
		if span < 1 {
			span = 1
		}
		if span < numDays {
			numDays = span
		}
	}

	allIndices := make([]int, rosterSize)
	for i := range allIndices {
		allIndices[i] = i
	}

	days := make([]DayTemplate, 0, numDays)
	for i := 1; i <= numDays; i++ {
		days = append(days, DayTemplate{
			DayNumber:            i,
			TaskSummary:          fmt.Sprintf("Day %d: scheduled project work", i),
			Subtasks:             append([]string(nil), fallbackSubtasks...),
			ExpectedDeliverables: []string{fmt.Sprintf("Progress update for day %d", i)},
			EstimatedHours:       fallbackEstimatedHours,
			AssigneeIndices:      allIndices,
		})
	}
	return days
}
