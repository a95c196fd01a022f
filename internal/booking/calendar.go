package booking

import (
	"time"

	"github.com/example/tablohm/internal/datetime"
)

// Day is one cell of the booking month grid.
type Day struct {
	ISO            string
	Label          int
	InCurrentMonth bool
}

// MonthGrid builds the Monday-first month grid around the anchor date. The
// grid starts on the Monday at or before the first of the month and covers
// whole weeks, so its length is always a multiple of seven.
func MonthGrid(anchor time.Time) []Day {
	firstOfMonth := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	// Monday == 0 in the grid; Go's Sunday == 0.
	daysBefore := (int(firstOfMonth.Weekday()) + 6) % 7
	totalDays := daysBefore + lastOfMonth.Day()
	totalCells := ((totalDays + 6) / 7) * 7

	start := firstOfMonth.AddDate(0, 0, -daysBefore)
	grid := make([]Day, 0, totalCells)
	for i := 0; i < totalCells; i++ {
		cell := start.AddDate(0, 0, i)
		grid = append(grid, Day{
			ISO:            datetime.ToISODate(cell),
			Label:          cell.Day(),
			InCurrentMonth: cell.Month() == anchor.Month(),
		})
	}
	return grid
}

// WeekdayLabels are the column headers of the booking calendar.
var WeekdayLabels = [7]string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"}

// TimeLabel renders the time range of an entry for the calendar's detail
// pane: "Ganztägig" for all-day entries, "HH:mm - HH:mm" for a full window,
// and partial forms when only one bound is set.
func TimeLabel(entry Entry) string {
	if entry.AllDay {
		return "Ganztägig"
	}
	start := entry.StartTime
	end := entry.EndTime
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	case end != "":
		return "Bis " + end
	default:
		return "Uhrzeit offen"
	}
}
