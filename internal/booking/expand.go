package booking

import (
	"strings"

	"github.com/example/tablohm/internal/datetime"
)

// Expand turns a saved draft into its concrete booking entries.
//
// A non-weekly draft yields exactly one entry spanning the draft's date range.
// A weekly draft yields one single-day entry per week: starting from the start
// date, seven days are added repeatedly and an occurrence is emitted for every
// candidate at or before the inclusive repetition end, so a window of
// 7*k days produces k+1 occurrences. Every occurrence shares the draft's
// title, times, and all-day flag.
//
// The first occurrence keeps the draft's id when editing an existing entry;
// otherwise it takes max(existing ids)+1. Each later occurrence gets the base
// id plus its offset.
func Expand(draft Draft, existing []Entry) []Entry {
	startDate := datetime.NormalizeDateString(draft.Date)
	if startDate == "" {
		return nil
	}
	endDate := datetime.NormalizeDateString(draft.EndDate)
	if endDate == "" || endDate < startDate {
		endDate = startDate
	}

	baseID := NextEntryID(existing)
	if draft.ID != nil {
		baseID = *draft.ID
	}

	build := func(id int, date, end string) Entry {
		return Entry{
			ID:        id,
			Title:     strings.TrimSpace(draft.Title),
			Date:      date,
			EndDate:   end,
			StartTime: draft.StartTime,
			EndTime:   draft.EndTime,
			AllDay:    draft.AllDay,
		}
	}

	if !draft.Weekly {
		return []Entry{build(baseID, startDate, endDate)}
	}

	until := datetime.NormalizeDateString(draft.WeeklyUntil)
	entries := []Entry{build(baseID, startDate, startDate)}
	if until == "" {
		return entries
	}

	cursor, ok := datetime.ParseDate(startDate)
	untilDate, untilOK := datetime.ParseDate(until)
	if !ok || !untilOK {
		return entries
	}

	for offset := 1; ; offset++ {
		cursor = cursor.AddDate(0, 0, 7)
		if cursor.After(untilDate) {
			break
		}
		date := datetime.ToISODate(cursor)
		entries = append(entries, build(baseID+offset, date, date))
	}

	return entries
}
