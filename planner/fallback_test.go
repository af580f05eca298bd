package planner

import (
	"reflect"
	"testing"
	"time"
)

func TestFallbackPlanDeterministic(t *testing.T) {
	start := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)

	first := FallbackPlan(5, "days", start, nil, 3)
	second := FallbackPlan(5, "days", start, nil, 3)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("fallback plan must be deterministic for identical inputs")
	}
	if len(first) != 5 {
		t.Fatalf("expected 5 days, got %d", len(first))
	}
	for i, day := range first {
		if day.DayNumber != i+1 {
			t.Errorf("day %d has number %d", i, day.DayNumber)
		}
		if len(day.Subtasks) != 4 {
			t.Errorf("day %d should have 4 boilerplate subtasks, got %d", i+1, len(day.Subtasks))
		}
		if len(day.ExpectedDeliverables) != 1 {
			t.Errorf("day %d should have 1 deliverable, got %d", i+1, len(day.ExpectedDeliverables))
		}
		if day.EstimatedHours != 6 {
			t.Errorf("day %d hours = %v, want 6", i+1, day.EstimatedHours)
		}
		if !reflect.DeepEqual(day.AssigneeIndices, []int{0, 1, 2}) {
			t.Errorf("day %d should list the whole roster, got %v", i+1, day.AssigneeIndices)
		}
	}
}

func TestFallbackPlanHoursConversion(t *testing.T) {
	start := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)

	// ceil(20/8) = 3 days
	days := FallbackPlan(20, "hours", start, nil, 2)
	if len(days) != 3 {
		t.Errorf("20 hours should convert to 3 days, got %d", len(days))
	}

	// exact multiple
	days = FallbackPlan(16, "hours", start, nil, 2)
	if len(days) != 2 {
		t.Errorf("16 hours should convert to 2 days, got %d", len(days))
	}
}

func TestFallbackPlanBoundedByDateSpan(t *testing.T) {
	start := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2) // 3 calendar days inclusive

	days := FallbackPlan(10, "days", start, &end, 1)
	if len(days) != 3 {
		t.Errorf("plan should be bounded by the date span (3 days), got %d", len(days))
	}

	// effort smaller than the span wins
	days = FallbackPlan(2, "days", start, &end, 1)
	if len(days) != 2 {
		t.Errorf("effort of 2 days should win over a 3-day span, got %d", len(days))
	}
}

func TestFallbackPlanZeroEffort(t *testing.T) {
	start := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)

	days := FallbackPlan(0, "days", start, nil, 1)
	if len(days) != 0 {
		t.Errorf("zero effort should yield an empty plan, got %d days", len(days))
	}

	days = FallbackPlan(-3, "days", start, nil, 1)
	if len(days) != 0 {
		t.Errorf("negative effort should yield an empty plan, got %d days", len(days))
	}
}
