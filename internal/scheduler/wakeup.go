package scheduler

import (
	"fmt"
	"time"

	"github.com/example/tablohm/internal/datetime"
)

// WakeWindow is the daily window in which a display wakes up. Outside the
// window (or when disabled) the display stays asleep to save battery.
type WakeWindow struct {
	Enabled bool
	Start   datetime.Clock
	End     datetime.Clock
}

// WakePlan describes when a display wakes up during the week. Wakes happen
// at Window.Start and then every Interval until Window.End. Lead is how long
// before an event start the display must have woken to render it in time.
type WakePlan struct {
	Interval time.Duration
	Lead     time.Duration
	Windows  map[time.Weekday]WakeWindow
}

// WakesOn lists the scheduled wake times on the given date, in order. A
// disabled or missing window yields none. A non-positive interval yields
// only the window start.
func (p WakePlan) WakesOn(date time.Time) []time.Time {
	window, ok := p.Windows[date.Weekday()]
	if !ok || !window.Enabled {
		return nil
	}
	first := datetime.CombineDateClock(date, window.Start)
	last := datetime.CombineDateClock(date, window.End)
	if last.Before(first) {
		return nil
	}
	if p.Interval <= 0 {
		return []time.Time{first}
	}
	var wakes []time.Time
	for t := first; !t.After(last); t = t.Add(p.Interval) {
		wakes = append(wakes, t)
	}
	return wakes
}

// NextWakeAfter returns the first scheduled wake at or after t, scanning at
// most a week ahead. ok is false when every window of the week is disabled.
func (p WakePlan) NextWakeAfter(t time.Time) (time.Time, bool) {
	for day := 0; day <= 7; day++ {
		date := t.AddDate(0, 0, day)
		for _, wake := range p.WakesOn(date) {
			if !wake.Before(t) {
				return wake, true
			}
		}
	}
	return time.Time{}, false
}

// WakeupError reports that no wake is scheduled early enough for an event.
// The event is still saved; the error text is shown to the operator.
type WakeupError struct {
	EventStart time.Time
	Deadline   time.Time
	Reason     string
}

func (e *WakeupError) Error() string {
	return e.Reason
}

var germanWeekdays = map[time.Weekday]string{
	time.Monday:    "Montag",
	time.Tuesday:   "Dienstag",
	time.Wednesday: "Mittwoch",
	time.Thursday:  "Donnerstag",
	time.Friday:    "Freitag",
	time.Saturday:  "Samstag",
	time.Sunday:    "Sonntag",
}

// CheckWakeup verifies that the plan schedules a wake on the event's day no
// later than Lead before the event starts. It returns nil when the display
// will be awake in time.
func CheckWakeup(plan WakePlan, eventStart time.Time) *WakeupError {
	deadline := eventStart.Add(-plan.Lead)
	day := germanWeekdays[eventStart.Weekday()]

	wakes := plan.WakesOn(eventStart)
	if len(wakes) == 0 {
		return &WakeupError{
			EventStart: eventStart,
			Deadline:   deadline,
			Reason: fmt.Sprintf(
				"Das Display wacht am %s nicht auf. Der Termin wird erst beim nächsten Aufwachen angezeigt.",
				day),
		}
	}
	for _, wake := range wakes {
		if !wake.After(deadline) {
			return nil
		}
	}
	return &WakeupError{
		EventStart: eventStart,
		Deadline:   deadline,
		Reason: fmt.Sprintf(
			"Das Display wacht am %s erst um %s auf und kann den Termin um %s nicht rechtzeitig anzeigen.",
			day, wakes[0].Format("15:04"), eventStart.Format("15:04")),
	}
}
