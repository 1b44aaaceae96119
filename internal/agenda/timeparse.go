package agenda

import (
	"strings"
	"time"
)

// StorageLayout is how due timestamps are persisted.
const StorageLayout = "2006-01-02T15:04:05"

var flexibleLayouts = []string{
	StorageLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	dateLayout,
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02 15:04:05-07:00",
}

// ParseFlexibleTimestamp tries the accepted timestamp spellings in turn and
// reports false when none match. Zone-less values are read as local wall
// clock; zoned values are converted to the local zone.
func ParseFlexibleTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range flexibleLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Local(), true
		}
	}
	return time.Time{}, false
}

// ParseDueFields combines separate date and time inputs. Both must be
// present; a date alone is not read as midnight.
func ParseDueFields(date, clock string) (time.Time, bool) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	return ParseFlexibleTimestamp(date + " " + clock)
}

// FormatTimestamp renders t in StorageLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(StorageLayout)
}
