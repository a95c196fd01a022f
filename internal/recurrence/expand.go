package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultOccurrenceCap bounds how many concrete events a single rule may
// materialize into. Matches the limit the backend has always applied.
const DefaultOccurrenceCap = 100

// Span is one materialized occurrence of a recurring event.
type Span struct {
	Start time.Time
	End   time.Time
}

// ErrInvalidDuration indicates the base event window is empty or inverted.
var ErrInvalidDuration = errors.New("recurrence: event duration must be positive")

// Materialize parses a rule string and expands it into concrete occurrence
// spans. The first occurrence candidate is the floating start of the base
// event; every occurrence keeps the base event's duration. Expansion stops at
// the rule's UNTIL bound or after cap occurrences, whichever comes first.
func Materialize(rule string, start, end time.Time, cap int) ([]Span, error) {
	if !end.After(start) {
		return nil, ErrInvalidDuration
	}
	if cap <= 0 {
		cap = DefaultOccurrenceCap
	}

	parsed, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("recurrence: parse rule %q: %w", rule, err)
	}
	parsed.DTStart(start)

	duration := end.Sub(start)
	spans := make([]Span, 0, cap)

	next := parsed.Iterator()
	for len(spans) < cap {
		occurrence, ok := next()
		if !ok {
			break
		}
		spans = append(spans, Span{Start: occurrence, End: occurrence.Add(duration)})
	}

	return spans, nil
}
