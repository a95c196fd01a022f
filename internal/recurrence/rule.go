// Package recurrence builds and materializes the recurrence rules attached to
// recurring calendar events. The builder produces the compact iCal-like rule
// strings the console submits to /recevent/add; Materialize expands such a
// string back into concrete occurrence spans on the server side.
package recurrence

import (
	"errors"
	"strings"
	"time"
)

// Type identifies the repetition mode chosen in the entry dialog. The German
// labels are part of the original UI and wire contract and are kept verbatim.
type Type string

const (
	// TypeNone marks a standalone, non-repeating event.
	TypeNone Type = "keine"
	// TypeDaily repeats the event every day until the end date.
	TypeDaily Type = "täglich"
	// TypeWeekly repeats the event on a weekday subset until the end date.
	TypeWeekly Type = "wöchentlich"
)

// Valid reports whether t is one of the known repetition modes.
func (t Type) Valid() bool {
	switch t {
	case TypeNone, TypeDaily, TypeWeekly:
		return true
	}
	return false
}

// weekdayCodes maps the dialog's weekday indices (0=Monday .. 6=Sunday) to
// the two-letter BYDAY codes.
var weekdayCodes = [7]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// ErrNoRecurrence is returned when a rule is requested for a type that does
// not repeat.
var ErrNoRecurrence = errors.New("recurrence: type does not repeat")

// ErrUnknownWeekday is returned when a weekday index is outside 0..6.
var ErrUnknownWeekday = errors.New("recurrence: weekday index out of range")

// WeekdayCode returns the BYDAY code for a dialog weekday index.
func WeekdayCode(index int) (string, error) {
	if index < 0 || index >= len(weekdayCodes) {
		return "", ErrUnknownWeekday
	}
	return weekdayCodes[index], nil
}

// BuildRule converts a repetition selection into a rule string.
//
// Daily rules render as FREQ=DAILY;UNTIL=<stamp>. Weekly rules render as
// FREQ=WEEKLY;BYDAY=<codes>;UNTIL=<stamp>, where an empty weekday set yields
// an empty BYDAY= segment; the form layer validates at least one weekday
// before submission, so that shape is preserved rather than rejected here.
// The UNTIL stamp is the local end instant converted to UTC and compacted to
// YYYYMMDDTHHMMSSZ.
func BuildRule(typ Type, weekdays []int, until time.Time) (string, error) {
	switch typ {
	case TypeDaily:
		return "FREQ=DAILY;UNTIL=" + formatUntil(until), nil
	case TypeWeekly:
		codes := make([]string, 0, len(weekdays))
		for _, day := range weekdays {
			code, err := WeekdayCode(day)
			if err != nil {
				return "", err
			}
			codes = append(codes, code)
		}
		return "FREQ=WEEKLY;BYDAY=" + strings.Join(codes, ",") + ";UNTIL=" + formatUntil(until), nil
	default:
		return "", ErrNoRecurrence
	}
}

// formatUntil compacts a timestamp to the basic UTC form used by UNTIL:
// the RFC 3339 rendering with the date/time punctuation stripped.
func formatUntil(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}
