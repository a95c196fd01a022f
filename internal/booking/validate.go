package booking

import (
	"strings"
	"time"

	"github.com/example/tablohm/internal/datetime"
)

// MaxTitleLength caps booking entry titles.
const MaxTitleLength = 50

// SlotErrors holds one message per validation slot of the entry dialog.
// Slots are checked independently; a slot keeps its first failure.
type SlotErrors struct {
	Title   string
	EndDate string
	Time    string
}

// OK reports whether every slot is error free. Saving is disabled otherwise.
func (e SlotErrors) OK() bool {
	return e.Title == "" && e.EndDate == "" && e.Time == ""
}

// Validate recomputes the slot errors for a draft. today supplies the
// reference date for the no-past-end-dates rule and is truncated to midnight.
func Validate(draft Draft, today time.Time) SlotErrors {
	var errs SlotErrors

	title := strings.TrimSpace(draft.Title)
	switch {
	case title == "":
		errs.Title = "Titel ist erforderlich."
	case len([]rune(title)) > MaxTitleLength:
		errs.Title = "Maximal 50 Zeichen."
	}

	midnight := datetime.StartOfDay(today)
	end, ok := datetime.ParseDate(draft.EndDate)
	switch {
	case !ok:
		errs.EndDate = "Enddatum ist erforderlich."
	case datetime.StartOfDay(end).Before(midnight):
		errs.EndDate = "Enddatum darf nicht in der Vergangenheit liegen."
	}

	if !draft.AllDay && draft.Date != "" && draft.Date == draft.EndDate {
		errs.Time = validateTimeWindow(draft.StartTime, draft.EndTime)
	}

	if draft.Weekly {
		until, untilOK := datetime.ParseDate(draft.WeeklyUntil)
		start, startOK := datetime.ParseDate(draft.Date)
		switch {
		case !untilOK || !startOK:
			if errs.EndDate == "" {
				errs.EndDate = "Wiederholungsende erforderlich."
			}
		case until.Before(start):
			if errs.EndDate == "" {
				errs.EndDate = "Wiederholungsende muss nach dem Start liegen."
			}
		}
	}

	return errs
}

// validateTimeWindow checks the single-day time ordering rule. Two empty
// times are allowed (the entry is open-ended); once either time is given,
// both must parse and the end must fall strictly after the start.
func validateTimeWindow(startTime, endTime string) string {
	if startTime == "" && endTime == "" {
		return ""
	}
	start, startOK := datetime.ParseClock(startTime)
	end, endOK := datetime.ParseClock(endTime)
	if !startOK {
		return "Ungültige Startzeit."
	}
	if !endOK {
		return "Ungültige Endzeit."
	}
	if !start.Before(end) {
		return "Endzeit muss nach Startzeit liegen (gleicher Tag)."
	}
	return ""
}
