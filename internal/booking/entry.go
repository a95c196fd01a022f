// Package booking implements the room-booking calendar logic of the operator
// console: booking entries, the edit draft with its normalization rules, the
// three-slot validation, weekly occurrence expansion, and the month grid the
// booking calendar is rendered from.
//
// Entries live client-side until they are serialized into a signage template
// payload, so identifiers are assigned locally with max(id)+1 semantics.
package booking

import "github.com/example/tablohm/internal/datetime"

// Entry is a single occurrence of a room reservation shown on the booking
// calendar. Date and EndDate are ISO dates; StartTime and EndTime are HH:mm
// strings and are empty for all-day entries.
type Entry struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	EndDate   string `json:"endDate"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	AllDay    bool   `json:"allDay"`
}

// NextEntryID returns max(id)+1 over the existing entries, starting at 1 for
// an empty list.
func NextEntryID(entries []Entry) int {
	next := 1
	for _, entry := range entries {
		if entry.ID >= next {
			next = entry.ID + 1
		}
	}
	return next
}

// GroupByDate buckets entries by their (trimmed) start date. Entries without
// a date are skipped; Undated collects those separately.
func GroupByDate(entries []Entry) map[string][]Entry {
	byDate := make(map[string][]Entry)
	for _, entry := range entries {
		key := datetime.NormalizeDateString(entry.Date)
		if key == "" {
			continue
		}
		byDate[key] = append(byDate[key], entry)
	}
	return byDate
}

// Undated returns the entries that carry no usable start date.
func Undated(entries []Entry) []Entry {
	var out []Entry
	for _, entry := range entries {
		if datetime.NormalizeDateString(entry.Date) == "" {
			out = append(out, entry)
		}
	}
	return out
}
