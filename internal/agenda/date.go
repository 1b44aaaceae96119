package agenda

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool { return d == Date{} }

// At combines d with the clock reading of clock, in loc.
func (d Date) At(clock time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day,
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), loc)
}

// AddDays returns the day n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Marker records whether, and on which day, a task last fired a reminder.
// The zero value is NotYet.
type Marker struct {
	fired bool
	on    Date
}

func NotYet() Marker { return Marker{} }

func FiredOn(d Date) Marker { return Marker{fired: true, on: d} }

// Fired reports the day of the last reminder, if any.
func (m Marker) Fired() (Date, bool) { return m.on, m.fired }

// InvalidMarker is how a fired marker with an unreadable date renders.
const InvalidMarker = "invalid"

func (m Marker) String() string {
	if !m.fired {
		return ""
	}
	if m.on.IsZero() {
		return InvalidMarker
	}
	return m.on.String()
}

// ParseMarker reads the persisted form: empty means NotYet. Any other value
// counts as fired even when it is not a valid date, so a corrupt marker never
// re-arms a one-shot task.
func ParseMarker(s string) Marker {
	if s == "" {
		return NotYet()
	}
	d, err := ParseDate(s)
	if err != nil {
		return Marker{fired: true}
	}
	return FiredOn(d)
}

// onceArmed: a one-shot task may fire only if it never fired.
func onceArmed(m Marker) bool { return !m.fired }

// dailyArmed: a daily task may fire once per calendar day.
func dailyArmed(m Marker, today Date) bool { return !m.fired || m.on != today }
