package services

import (
	"time"

	"staffly/projects-service/models"
	"staffly/projects-service/planner"
)

// NormalizePlan turns the generator's day templates into materialized project
// days: dates are computed from the project start, day numbers are made
// 1..N contiguous, defaults are filled in, and each day's subtasks are
// distributed across the roster per the chosen strategy.
//
// The generator's day count is trusted as-is; a shortfall against the
// estimated effort is not padded, and a day with zero subtasks is still
// created.
func NormalizePlan(templates []planner.DayTemplate, startDate time.Time, roster []models.AssignedEmployee, settings models.DistributionSettings) []models.ProjectDay {
	days := make([]models.ProjectDay, 0, len(templates))
	for i, tpl := range templates {
		hours := tpl.EstimatedHours
		if hours <= 0 {
			hours = 6
		}

		indices := tpl.AssigneeIndices
		if len(indices) == 0 {
			indices = make([]int, len(roster))
			for k := range indices {
				indices[k] = k
			}
		}

		days = append(days, models.ProjectDay{
			DayNumber:            i + 1,
			Date:                 startDate.AddDate(0, 0, i),
			TaskSummary:          tpl.TaskSummary,
			Subtasks:             tpl.Subtasks,
			ExpectedDeliverables: tpl.ExpectedDeliverables,
			EstimatedHours:       hours,
			Assignees:            DistributeDay(tpl.Subtasks, indices, roster, settings.Strategy),
			Status:               models.DayPending,
		})
	}
	return days
}

// DistributeDay splits one day's subtask template across the listed roster
// positions according to the distribution strategy. Indices that do not
// resolve to a roster member are dropped silently so that plans stay
// constructible even with stale indices.
func DistributeDay(subtasks []string, assigneeIndices []int, roster []models.AssignedEmployee, strategy models.DistributionStrategy) []models.DayAssignee {
	var members []models.AssignedEmployee
	for _, idx := range assigneeIndices {
		if idx < 0 || idx >= len(roster) {
			continue
		}
		members = append(members, roster[idx])
	}
	if len(members) == 0 {
		return []models.DayAssignee{}
	}

	switch strategy {
	case models.StrategyEvenLoad:
		if len(members) >= 2 {
			return distributeEvenLoad(subtasks, members)
		}
		return distributeFullCopies(subtasks, members)
	case models.StrategySplitByDays, models.StrategyCustom:
		return distributeFullCopies(subtasks, members)
	default:
		// round-robin: the generator already picked the member(s) per day,
		// each listed member takes the whole list.
		return distributeFullCopies(subtasks, members)
	}
}

// distributeEvenLoad partitions the subtasks into contiguous chunks of
// ceil(M/N); members past the subtask count get an empty slice.
func distributeEvenLoad(subtasks []string, members []models.AssignedEmployee) []models.DayAssignee {
	chunkSize := (len(subtasks) + len(members) - 1) / len(members)
	assignees := make([]models.DayAssignee, 0, len(members))
	for k, m := range members {
		start := k * chunkSize
		end := start + chunkSize
		if start > len(subtasks) {
			start = len(subtasks)
		}
		if end > len(subtasks) {
			end = len(subtasks)
		}
		assignees = append(assignees, models.DayAssignee{
			EmployeeRef: m.EmployeeRef,
			Name:        m.Name,
			Subtasks:    buildSubtasks(subtasks[start:end]),
		})
	}
	return assignees
}

func distributeFullCopies(subtasks []string, members []models.AssignedEmployee) []models.DayAssignee {
	assignees := make([]models.DayAssignee, 0, len(members))
	for _, m := range members {
		assignees = append(assignees, models.DayAssignee{
			EmployeeRef: m.EmployeeRef,
			Name:        m.Name,
			Subtasks:    buildSubtasks(subtasks),
		})
	}
	return assignees
}

func buildSubtasks(titles []string) []models.AssigneeSubtask {
	subtasks := make([]models.AssigneeSubtask, 0, len(titles))
	for _, title := range titles {
		subtasks = append(subtasks, models.AssigneeSubtask{Title: title})
	}
	return subtasks
}
