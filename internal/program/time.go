package program

import (
	"fmt"
	"time"
)

// TimeLayout is the zone-less local date-time layout accepted on the wire.
const TimeLayout = "2006-01-02T15:04:05"

// formatLayout adds the stored sub-second precision, omitted when zero, so a
// rendered time parses back to the same instant.
const formatLayout = "2006-01-02T15:04:05.999999"

var parseLayouts = []string{
	TimeLayout,
	"2006-01-02T15:04",
}

// ParseTime parses a local date-time. Fractional seconds are accepted and
// truncated to microseconds, the precision every gateway can store.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Truncate(time.Microsecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid local date-time %q, expected layout %s", s, TimeLayout)
}

// FormatTime renders t's wall clock using TimeLayout, followed by any
// fractional seconds.
func FormatTime(t time.Time) string {
	return t.Format(formatLayout)
}
