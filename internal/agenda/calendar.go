package agenda

import (
	"cmp"
	"slices"
	"time"
)

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Date    Date
	InMonth bool
	Tasks   []*Task
}

// Month is a Monday-first grid of whole weeks covering a calendar month.
type Month struct {
	Year  int
	Month time.Month
	Weeks [][7]CalendarDay
}

// BuildMonth lays out tasks on the days they occur: one-shot tasks on their
// due date, daily tasks on every day from their due date on. Completed tasks
// and tasks without a due time are left out. Within a day, tasks are ordered
// by priority (desc) then time of day.
func BuildMonth(year int, month time.Month, tasks []*Task) Month {
	first := Date{Year: year, Month: month, Day: 1}
	offset := (int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()) + 6) % 7
	day := first.AddDays(-offset)

	m := Month{Year: year, Month: month}
	for {
		var week [7]CalendarDay
		for i := range week {
			week[i] = CalendarDay{
				Date:    day,
				InMonth: day.Month == month && day.Year == year,
				Tasks:   tasksOn(day, tasks),
			}
			day = day.AddDays(1)
		}
		m.Weeks = append(m.Weeks, week)
		if day.Year != year || day.Month != month {
			break
		}
	}
	return m
}

func occursOn(t *Task, d Date) bool {
	if t.Completed || !t.HasDue() {
		return false
	}
	due := DateOf(t.Due)
	switch t.Recurrence {
	case Once:
		return due == d
	case Daily:
		return !d.Before(due)
	}
	return false
}

func tasksOn(d Date, tasks []*Task) []*Task {
	var out []*Task
	for _, t := range tasks {
		if occursOn(t, d) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b *Task) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(clockOf(a.Due), clockOf(b.Due))
	})
	return out
}

func clockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}
