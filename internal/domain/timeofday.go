package domain

import (
	"time"
)

// TimeOfDay is a wall-clock time of day in canonical "HH:MM:SS" form.
// All times are naive local values; there is no timezone handling.
// Because the format is fixed-width and zero-padded, the natural string
// ordering of two TimeOfDay values matches their temporal ordering.
type TimeOfDay string

func (t TimeOfDay) String() string { return string(t) }

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }

// timeOfDayLayouts are tried in order; the first successful parse wins.
var timeOfDayLayouts = []string{
	"15:04:05", // 24-hour with seconds
	"3:04 PM",  // 12-hour with meridiem
	"15:04",    // 24-hour, seconds default to 00
}

// ParseTimeOfDay normalizes heterogeneous time-of-day text into a canonical
// 24-hour value. Accepted formats, in order of attempt: "HH:MM:SS",
// "hh:mm AM/PM", and "HH:MM". There is no fallback value: unrecognized
// input always surfaces a ValidationError.
func ParseTimeOfDay(text string) (TimeOfDay, error) {
	for _, layout := range timeOfDayLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return TimeOfDay(parsed.Format("15:04:05")), nil
		}
	}
	return "", NewValidationError("unrecognized time format: " + text)
}

// TimeWindow is the half-open interval [Start, End) a meeting occupies on
// its calendar date. Start < End is validated before a window is built.
type TimeWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Overlaps reports whether two windows on the same date intersect. Windows
// are half-open, so a window ending exactly when another starts does not
// overlap it; back-to-back bookings are always admissible.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start < other.End && w.End > other.Start
}

// ParseDate parses an ISO 8601 calendar date ("2006-01-02"). The result
// carries no time-of-day component.
func ParseDate(text string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, text)
	if err != nil {
		return time.Time{}, NewValidationError("unrecognized date format: " + text)
	}
	return d, nil
}
