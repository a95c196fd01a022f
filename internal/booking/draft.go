package booking

import "github.com/example/tablohm/internal/datetime"

// Draft is the immutable edit state of the booking entry dialog. A nil ID
// marks a new entry; a set ID marks an edit of an existing one. Transition
// methods return a new value and encode the dialog's normalization rules, so
// a draft can never hold an end date before its start date.
type Draft struct {
	ID          *int
	Title       string
	Date        string
	EndDate     string
	StartTime   string
	EndTime     string
	AllDay      bool
	Weekly      bool
	WeeklyUntil string
}

// NewDraft starts a fresh draft anchored on the selected calendar date.
func NewDraft(date string) Draft {
	return Draft{
		Date:        date,
		EndDate:     date,
		WeeklyUntil: date,
	}
}

// DraftFromEntry builds an edit draft for an existing entry. Weekly repetition
// only applies to new drafts; editing an occurrence edits that occurrence.
func DraftFromEntry(entry Entry) Draft {
	id := entry.ID
	date := datetime.NormalizeDateString(entry.Date)
	endDate := datetime.NormalizeDateString(entry.EndDate)
	if endDate == "" {
		endDate = date
	}
	return Draft{
		ID:          &id,
		Title:       entry.Title,
		Date:        date,
		EndDate:     endDate,
		StartTime:   entry.StartTime,
		EndTime:     entry.EndTime,
		AllDay:      entry.AllDay,
		WeeklyUntil: endDate,
	}
}

// WithTitle replaces the draft title.
func (d Draft) WithTitle(title string) Draft {
	d.Title = title
	return d
}

// WithDate moves the start date. The end date and, for weekly drafts, the
// repetition end are dragged forward so they never precede the start.
func (d Draft) WithDate(value string) Draft {
	normalized := datetime.NormalizeDateString(value)
	d.Date = normalized
	if d.EndDate == "" || (normalized != "" && d.EndDate < normalized) {
		d.EndDate = normalized
	}
	if d.Weekly && (d.WeeklyUntil == "" || d.WeeklyUntil < normalized) {
		d.WeeklyUntil = normalized
	}
	return d
}

// WithEndDate moves the end date. Clearing it or moving it before the start
// snaps it back to the start date.
func (d Draft) WithEndDate(value string) Draft {
	normalized := datetime.NormalizeDateString(value)
	switch {
	case normalized == "":
		d.EndDate = d.Date
	case d.Date != "" && normalized < d.Date:
		d.EndDate = d.Date
	default:
		d.EndDate = normalized
	}
	return d
}

// WithTimes replaces the start and end times of day.
func (d Draft) WithTimes(start, end string) Draft {
	d.StartTime = start
	d.EndTime = end
	return d
}

// WithAllDay toggles the all-day flag, clearing the times when enabled.
func (d Draft) WithAllDay(allDay bool) Draft {
	d.AllDay = allDay
	if allDay {
		d.StartTime = ""
		d.EndTime = ""
	}
	return d
}

// WithWeekly toggles weekly repetition. Enabling it seeds the repetition end
// from the draft's dates; disabling it clears the repetition end.
func (d Draft) WithWeekly(weekly bool) Draft {
	d.Weekly = weekly
	if weekly {
		if d.WeeklyUntil == "" {
			if d.EndDate != "" {
				d.WeeklyUntil = d.EndDate
			} else {
				d.WeeklyUntil = d.Date
			}
		}
	} else {
		d.WeeklyUntil = ""
	}
	return d
}

// WithWeeklyUntil replaces the repetition end date.
func (d Draft) WithWeeklyUntil(value string) Draft {
	d.WeeklyUntil = datetime.NormalizeDateString(value)
	return d
}
