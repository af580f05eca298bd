package services

import (
	"fmt"
	"testing"
	"time"

	"staffly/projects-service/models"
	"staffly/projects-service/planner"
)

func roster(n int) []models.AssignedEmployee {
	employees := make([]models.AssignedEmployee, 0, n)
	for i := 0; i < n; i++ {
		employees = append(employees, models.AssignedEmployee{
			EmployeeRef: fmt.Sprintf("emp-%d", i),
			Name:        fmt.Sprintf("Employee %d", i),
			Role:        "developer",
		})
	}
	return employees
}

func subtaskTitles(m int) []string {
	titles := make([]string, 0, m)
	for i := 0; i < m; i++ {
		titles = append(titles, fmt.Sprintf("s%d", i+1))
	}
	return titles
}

func allIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

func TestEvenLoadPartition(t *testing.T) {
	// the union of all slices must equal the template, no duplication, no
	// omission, for every roster and subtask size
	for n := 1; n <= 5; n++ {
		for m := 0; m <= 9; m++ {
			assignees := DistributeDay(subtaskTitles(m), allIndices(n), roster(n), models.StrategyEvenLoad)
			if len(assignees) != n {
				t.Fatalf("n=%d m=%d: expected %d assignees, got %d", n, m, n, len(assignees))
			}

			var combined []string
			for _, a := range assignees {
				for _, st := range a.Subtasks {
					combined = append(combined, st.Title)
				}
			}
			if len(combined) != m {
				t.Errorf("n=%d m=%d: expected %d subtasks total, got %d", n, m, m, len(combined))
				continue
			}
			for i, title := range subtaskTitles(m) {
				if combined[i] != title {
					t.Errorf("n=%d m=%d: subtask %d is %q, want %q", n, m, i, combined[i], title)
				}
			}
		}
	}
}

func TestEvenLoadExampleScenario(t *testing.T) {
	assignees := DistributeDay([]string{"s1", "s2", "s3"}, []int{0, 1}, roster(2), models.StrategyEvenLoad)

	if len(assignees[0].Subtasks) != 2 {
		t.Errorf("expected first assignee to get 2 subtasks, got %d", len(assignees[0].Subtasks))
	}
	if len(assignees[1].Subtasks) != 1 {
		t.Errorf("expected second assignee to get 1 subtask, got %d", len(assignees[1].Subtasks))
	}
	if assignees[0].Subtasks[0].Title != "s1" || assignees[0].Subtasks[1].Title != "s2" {
		t.Errorf("first assignee got %v", assignees[0].Subtasks)
	}
	if assignees[1].Subtasks[0].Title != "s3" {
		t.Errorf("second assignee got %v", assignees[1].Subtasks)
	}
}

func TestEvenLoadSingleAssigneeGetsFullList(t *testing.T) {
	assignees := DistributeDay(subtaskTitles(4), []int{1}, roster(3), models.StrategyEvenLoad)
	if len(assignees) != 1 {
		t.Fatalf("expected 1 assignee, got %d", len(assignees))
	}
	if len(assignees[0].Subtasks) != 4 {
		t.Errorf("expected the single assignee to own all 4 subtasks, got %d", len(assignees[0].Subtasks))
	}
	if assignees[0].EmployeeRef != "emp-1" {
		t.Errorf("expected emp-1, got %s", assignees[0].EmployeeRef)
	}
}

func TestSplitByDaysFullCopies(t *testing.T) {
	for n := 1; n <= 4; n++ {
		assignees := DistributeDay(subtaskTitles(3), allIndices(n), roster(n), models.StrategySplitByDays)
		if len(assignees) != n {
			t.Fatalf("n=%d: expected %d assignees, got %d", n, n, len(assignees))
		}
		for _, a := range assignees {
			if len(a.Subtasks) != 3 {
				t.Errorf("n=%d: assignee %s has %d subtasks, want full copy of 3", n, a.EmployeeRef, len(a.Subtasks))
			}
		}
	}
}

func TestStaleIndicesAreDropped(t *testing.T) {
	assignees := DistributeDay(subtaskTitles(2), []int{0, 7, -1, 1}, roster(2), models.StrategySplitByDays)
	if len(assignees) != 2 {
		t.Fatalf("expected stale indices to be dropped, got %d assignees", len(assignees))
	}
}

func TestDistributeDayNoResolvableAssignees(t *testing.T) {
	assignees := DistributeDay(subtaskTitles(2), []int{5, 6}, roster(2), models.StrategyEvenLoad)
	if len(assignees) != 0 {
		t.Errorf("expected no assignees, got %d", len(assignees))
	}
}

func TestNormalizePlanDefaults(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	templates := []planner.DayTemplate{
		{TaskSummary: "kickoff", Subtasks: []string{"a", "b"}, EstimatedHours: 4, AssigneeIndices: []int{0}},
		{TaskSummary: "build", Subtasks: []string{"c"}},
		{TaskSummary: "empty day"},
	}

	days := NormalizePlan(templates, start, roster(2), models.DistributionSettings{Strategy: models.StrategyEvenLoad})
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}

	for i, d := range days {
		if d.DayNumber != i+1 {
			t.Errorf("day %d has dayNumber %d", i, d.DayNumber)
		}
		want := start.AddDate(0, 0, i)
		if !d.Date.Equal(want) {
			t.Errorf("day %d date is %v, want %v", i+1, d.Date, want)
		}
		if d.Status != models.DayPending {
			t.Errorf("day %d status is %s, want pending", i+1, d.Status)
		}
	}

	if days[0].EstimatedHours != 4 {
		t.Errorf("day 1 hours = %v, want 4", days[0].EstimatedHours)
	}
	if days[1].EstimatedHours != 6 {
		t.Errorf("day 2 hours should default to 6, got %v", days[1].EstimatedHours)
	}

	// day 1 named a single index, day 2 defaults to the whole roster
	if len(days[0].Assignees) != 1 {
		t.Errorf("day 1 should have 1 assignee, got %d", len(days[0].Assignees))
	}
	if len(days[1].Assignees) != 2 {
		t.Errorf("day 2 should default to the whole roster, got %d assignees", len(days[1].Assignees))
	}

	// a day with zero subtasks is still created
	if days[2].TaskSummary != "empty day" {
		t.Errorf("day 3 summary = %q", days[2].TaskSummary)
	}
	for _, a := range days[2].Assignees {
		if len(a.Subtasks) != 0 {
			t.Errorf("day 3 assignee %s should have no subtasks", a.EmployeeRef)
		}
	}
}
