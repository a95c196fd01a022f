package console

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/example/tablohm/internal/datetime"
	"github.com/example/tablohm/internal/recurrence"
)

// Default times seeded into a fresh entry dialog.
const (
	DefaultStartTime = "08:00"
	DefaultEndTime   = "09:30"
)

// Title length bounds enforced by the entry dialog, matching the server.
const (
	MinTitleLength = 3
	MaxTitleLength = 30
)

// EventDraft is the edit state of the signage entry dialog. A nil ID marks a
// new event, a set ID marks an edit of an existing one.
type EventDraft struct {
	ID            *int64
	Title         string
	Date          string
	EndDate       string
	StartTime     string
	EndTime       string
	AllDay        bool
	DisplayImages []DisplayImage
	Repeat        recurrence.Type
	Weekdays      []int
	Until         string
}

// DisplayImage pairs a selected display with the image it should show.
type DisplayImage struct {
	DisplayMAC string `json:"displayMac"`
	Image      string `json:"image"`
}

// NewEventDraft starts a fresh draft anchored on the selected date, with the
// default times and no repetition.
func NewEventDraft(date string) EventDraft {
	normalized := datetime.NormalizeDateString(date)
	return EventDraft{
		Date:      normalized,
		EndDate:   normalized,
		StartTime: DefaultStartTime,
		EndTime:   DefaultEndTime,
		Repeat:    recurrence.TypeNone,
		Until:     normalized,
	}
}

// IsRecurring reports whether the draft describes a repeating series.
func (d EventDraft) IsRecurring() bool {
	return d.Repeat.Valid() && d.Repeat != recurrence.TypeNone
}

// Validate checks the draft the way the dialog does before submission and
// returns per-field messages, or nil when the draft is submittable.
func (d EventDraft) Validate() map[string]string {
	issues := make(map[string]string)

	if length := utf8.RuneCountInString(d.Title); length < MinTitleLength || length > MaxTitleLength {
		issues["title"] = "Titel muss zwischen 3 und 30 Zeichen lang sein."
	}
	if _, ok := datetime.ParseDate(d.Date); !ok {
		issues["date"] = "Datum ist erforderlich."
	}
	if len(d.DisplayImages) == 0 {
		issues["displays"] = "Mindestens ein Display auswählen."
	}
	seen := make(map[string]bool, len(d.DisplayImages))
	for _, pair := range d.DisplayImages {
		if pair.DisplayMAC == "" || seen[pair.DisplayMAC] {
			issues["displays"] = "Display-Zuordnungen müssen eindeutig sein."
			break
		}
		seen[pair.DisplayMAC] = true
		if pair.Image == "" {
			issues["displays"] = "Für jedes Display ein Bild wählen."
			break
		}
	}
	if !d.AllDay {
		if _, ok := datetime.ParseClock(d.StartTime); !ok {
			issues["startTime"] = "Ungültige Startzeit."
		}
		if _, ok := datetime.ParseClock(d.EndTime); !ok {
			issues["endTime"] = "Ungültige Endzeit."
		}
	}
	if start, end, ok := d.window(); ok && end.Before(start) {
		issues["endDate"] = "Das End-Datum muss nach dem Start-Datum liegen."
	}
	if d.IsRecurring() {
		until, ok := datetime.ParseDate(d.Until)
		if !ok {
			issues["until"] = "Wiederholungsende erforderlich."
		} else if start, startOK := datetime.ParseDate(d.Date); startOK && until.Before(start) {
			issues["until"] = "Das End-Datum und die End-Zeit müssen nach dem Start liegen."
		}
		if d.Repeat == recurrence.TypeWeekly && len(d.Weekdays) == 0 {
			issues["weekdays"] = "Mindestens einen Wochentag auswählen."
		}
	}

	if len(issues) == 0 {
		return nil
	}
	return issues
}

// window resolves the draft's start and end instants for ordering checks.
// All-day drafts compare dates only; timed drafts fold in the clock values.
// Reports false when the involved fields do not parse, since those carry
// their own messages.
func (d EventDraft) window() (start, end time.Time, ok bool) {
	start, ok = datetime.ParseDate(d.Date)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	endDate := d.EndDate
	if endDate == "" {
		endDate = d.Date
	}
	end, ok = datetime.ParseDate(endDate)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if d.AllDay {
		return start, end, true
	}
	startClock, ok := datetime.ParseClock(d.StartTime)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	endClock, ok := datetime.ParseClock(d.EndTime)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return datetime.CombineDateClock(start, startClock), datetime.CombineDateClock(end, endClock), true
}

// EventPayload is the wire shape of a single event submission.
type EventPayload struct {
	Title         string         `json:"title"`
	Start         string         `json:"start"`
	End           string         `json:"end"`
	AllDay        bool           `json:"allDay"`
	DisplayImages []DisplayImage `json:"displayImages"`
}

// RecurringPayload is the wire shape of a series submission.
type RecurringPayload struct {
	EventPayload
	Rule string `json:"rrule"`
}

var errDraftIncomplete = errors.New("console: draft is not submittable")

// Payload renders the draft as a single event submission. All-day drafts
// send midnight bounds; the server widens them to the full day.
func (d EventDraft) Payload() (EventPayload, error) {
	if d.Validate() != nil {
		return EventPayload{}, errDraftIncomplete
	}

	endDate := d.EndDate
	if endDate == "" {
		endDate = d.Date
	}

	start := d.Date + "T00:00:00"
	end := endDate + "T00:00:00"
	if !d.AllDay {
		start = d.Date + "T" + d.StartTime + ":00"
		end = endDate + "T" + d.EndTime + ":00"
	}

	return EventPayload{
		Title:         d.Title,
		Start:         start,
		End:           end,
		AllDay:        d.AllDay,
		DisplayImages: d.DisplayImages,
	}, nil
}

// RecurringPayload renders the draft as a series submission, building the
// rule string from the repetition selection.
func (d EventDraft) RecurringPayload() (RecurringPayload, error) {
	if !d.IsRecurring() {
		return RecurringPayload{}, errDraftIncomplete
	}
	base, err := d.Payload()
	if err != nil {
		return RecurringPayload{}, err
	}

	until, ok := datetime.ParseDate(d.Until)
	if !ok {
		return RecurringPayload{}, errDraftIncomplete
	}
	if !d.AllDay {
		if clock, ok := datetime.ParseClock(d.EndTime); ok {
			until = datetime.CombineDateClock(until, clock)
		}
	}

	rule, err := recurrence.BuildRule(d.Repeat, d.Weekdays, until)
	if err != nil {
		return RecurringPayload{}, err
	}
	return RecurringPayload{EventPayload: base, Rule: rule}, nil
}
