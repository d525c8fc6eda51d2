package trip

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrScheduleParse reports a schedule label with no extractable time token.
// Callers treat it as non-fatal: the trip is logged and skipped, never the
// whole scan.
var ErrScheduleParse = errors.New("schedule label has no HH:MM time token")

// scheduleTimeRe matches a trailing HH:MM token, e.g. "Path-1 - 08:00".
var scheduleTimeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*$`)

// ParseScheduleStart derives the trip's start timestamp from its schedule
// label, anchored to the operating day of `day` (its UTC calendar date).
// The label format is free text followed by a trailing HH:MM token.
func ParseScheduleStart(label string, day time.Time) (time.Time, error) {
	m := scheduleTimeRe.FindStringSubmatch(label)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrScheduleParse, label)
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrScheduleParse, label)
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrScheduleParse, label)
	}

	day = day.UTC()
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC), nil
}
