package agenda

import (
	"testing"
	"time"
)

func TestBuildMonth(t *testing.T) {
	once := &Task{ID: 1, Title: "dentist", Due: local(2024, 2, 14, 15, 0), Recurrence: Once, Priority: PriorityLow}
	daily := &Task{ID: 2, Title: "pills", Due: local(2024, 2, 27, 8, 0), Recurrence: Daily, Priority: PriorityHigh}
	done := &Task{ID: 3, Title: "done", Due: local(2024, 2, 14, 9, 0), Recurrence: Once, Completed: true}
	broken := &Task{ID: 4, Title: "broken", Recurrence: Once}

	m := BuildMonth(2024, time.February, []*Task{once, daily, done, broken})

	// 2024-02-01 is a Thursday; the grid starts on Monday 2024-01-29.
	if got := m.Weeks[0][0].Date.String(); got != "2024-01-29" {
		t.Fatalf("grid starts %s, want 2024-01-29", got)
	}
	if m.Weeks[0][0].InMonth || !m.Weeks[0][3].InMonth {
		t.Error("InMonth flags wrong in the first week")
	}
	last := m.Weeks[len(m.Weeks)-1][6]
	if got := last.Date.String(); got != "2024-03-03" {
		t.Errorf("grid ends %s, want 2024-03-03", got)
	}

	cells := map[string]CalendarDay{}
	for _, week := range m.Weeks {
		for _, day := range week {
			cells[day.Date.String()] = day
		}
	}
	if got := cells["2024-02-14"].Tasks; len(got) != 1 || got[0].ID != 1 {
		t.Errorf("2024-02-14 tasks = %+v, want only dentist", got)
	}
	if got := cells["2024-02-26"].Tasks; len(got) != 0 {
		t.Errorf("daily task shown before its start: %+v", got)
	}
	for _, d := range []string{"2024-02-27", "2024-02-29", "2024-03-02"} {
		if got := cells[d].Tasks; len(got) != 1 || got[0].ID != 2 {
			t.Errorf("%s tasks = %+v, want pills", d, got)
		}
	}
}

func TestBuildMonthDayOrder(t *testing.T) {
	early := &Task{ID: 1, Due: local(2024, 6, 3, 8, 0), Recurrence: Once, Priority: PriorityLow}
	late := &Task{ID: 2, Due: local(2024, 6, 3, 20, 0), Recurrence: Once, Priority: PriorityLow}
	urgent := &Task{ID: 3, Due: local(2024, 6, 3, 21, 0), Recurrence: Once, Priority: PriorityHigh}

	m := BuildMonth(2024, time.June, []*Task{late, early, urgent})
	// 2024-06-03 is the first Monday of the grid's second row.
	day := m.Weeks[1][0]
	if day.Date.String() != "2024-06-03" {
		t.Fatalf("unexpected cell %s", day.Date)
	}
	var ids []int64
	for _, task := range day.Tasks {
		ids = append(ids, task.ID)
	}
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 1 || ids[2] != 2 {
		t.Errorf("day order = %v, want [3 1 2]", ids)
	}
}
