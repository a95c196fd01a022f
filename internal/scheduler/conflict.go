// Package scheduler holds the pure scheduling rules of the signage platform:
// collision detection between events competing for the same display, and the
// wake plan arithmetic that decides whether an e-ink display wakes up in time
// to show an event.
package scheduler

import "time"

// Booking is the scheduler's view of an event: a time window claimed on one
// or more displays. Displays are identified by their MAC address.
type Booking struct {
	ID       int64
	Title    string
	Displays []string
	Start    time.Time
	End      time.Time
}

// Collision reports that the candidate booking overlaps an existing booking
// on a specific display.
type Collision struct {
	Display string
	With    Booking
}

// Overlaps reports whether the two bookings share time. Windows are half
// open, so a booking ending exactly when another starts does not overlap.
func (b Booking) Overlaps(other Booking) bool {
	return b.Start.Before(other.End) && other.Start.Before(b.End)
}

// DetectCollisions finds every display the candidate would double-book
// against the existing bookings. The candidate's own ID is skipped so that
// updating a booking never collides with itself. Collisions are reported in
// the order of the candidate's display list, one per overlapping booking.
func DetectCollisions(existing []Booking, candidate Booking) []Collision {
	var collisions []Collision
	for _, mac := range candidate.Displays {
		for _, other := range existing {
			if other.ID == candidate.ID {
				continue
			}
			if !bookingClaims(other, mac) {
				continue
			}
			if candidate.Overlaps(other) {
				collisions = append(collisions, Collision{Display: mac, With: other})
			}
		}
	}
	return collisions
}

func bookingClaims(b Booking, mac string) bool {
	for _, d := range b.Displays {
		if d == mac {
			return true
		}
	}
	return false
}
