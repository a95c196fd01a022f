// Package datetime provides the date and time-of-day normalization helpers
// shared by the calendar, booking, and recurrence components. All functions
// are pure; parse failures are reported through a boolean instead of an error
// so callers can treat malformed operator input as "absent".
package datetime

import (
	"fmt"
	"time"
)

// ISODate is the wire format for plain calendar dates.
const ISODate = "2006-01-02"

// dateTimeLayouts lists the accepted local date-time spellings, most specific
// first. The console historically produced both second-precision and
// minute-precision values.
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	ISODate,
}

// ToISODate renders a timestamp as a zero-padded YYYY-MM-DD date.
func ToISODate(t time.Time) string {
	return t.Format(ISODate)
}

// ParseDate parses an ISO date or local date-time string. It reports false
// for empty or unparsable input and never panics.
func ParseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ParseDateIn behaves like ParseDate but interprets the value in the given
// location instead of the process-local one.
func ParseDateIn(value string, loc *time.Location) (time.Time, bool) {
	if value == "" || loc == nil {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// NormalizeDateString round-trips a value through ParseDate and ToISODate,
// returning "" when the input cannot be interpreted as a date.
func NormalizeDateString(value string) string {
	parsed, ok := ParseDate(value)
	if !ok {
		return ""
	}
	return ToISODate(parsed)
}

// Clock is a time of day without a date.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses an HH:mm string.
func ParseClock(value string) (Clock, bool) {
	ts, err := time.Parse("15:04", value)
	if err != nil {
		return Clock{}, false
	}
	return Clock{Hour: ts.Hour(), Minute: ts.Minute()}, true
}

// Minutes returns the clock value as minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is strictly earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	return c.Minutes() < other.Minutes()
}

// String renders the clock in HH:mm form.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ClockSpan computes the hour/minute difference between two times of day
// interpreted on an arbitrary common day. Used for calendar duration labels
// such as "1h 30min". A negative span is clamped to zero.
func ClockSpan(start, end Clock) (hours, minutes int) {
	diff := end.Minutes() - start.Minutes()
	if diff < 0 {
		diff = 0
	}
	return diff / 60, diff % 60
}

// CombineDateClock places a time of day onto the calendar date of t,
// preserving t's location.
func CombineDateClock(t time.Time, c Clock) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, t.Location())
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
