// Package testfixtures provides deterministic clocks, identifier generators,
// and record builders shared by the persistence and application tests.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/tablohm/internal/application"
	"github.com/example/tablohm/internal/persistence"
)

var (
	userCounter    uint64
	displayCounter uint64
	eventCounter   uint64
)

var referenceTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic operator account record.
type UserFixture struct {
	ID           string
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           fmt.Sprintf("user-%03d", idx),
		Username:     fmt.Sprintf("operator%03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) { f.ID = id }
}

// WithUsername overrides the generated username.
func WithUsername(username string) UserOption {
	return func(f *UserFixture) { f.Username = username }
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) { f.PasswordHash = hash }
}

// WithUserAdmin sets the admin flag on the generated fixture.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) { f.IsAdmin = isAdmin }
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:        f.ID,
		Username:  f.Username,
		IsAdmin:   f.IsAdmin,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.IsAdmin}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Username:     f.Username,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ---------------------------- Display fixtures ----------------------------

// DisplayFixture represents a deterministic panel registry record.
type DisplayFixture struct {
	MAC       string
	Name      string
	Width     int
	Height    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayOption configures the generated display fixture.
type DisplayOption func(*DisplayFixture)

// NewDisplayFixture returns a deterministic display fixture with optional
// overrides. Generated addresses count up within a private prefix.
func NewDisplayFixture(opts ...DisplayOption) DisplayFixture {
	idx := atomic.AddUint64(&displayCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := DisplayFixture{
		MAC:       fmt.Sprintf("aa:bb:cc:dd:ee:%02x", idx%256),
		Name:      fmt.Sprintf("Display %03d", idx),
		Width:     800,
		Height:    480,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithDisplayMAC overrides the generated address.
func WithDisplayMAC(mac string) DisplayOption {
	return func(f *DisplayFixture) { f.MAC = mac }
}

// WithDisplayName overrides the generated name.
func WithDisplayName(name string) DisplayOption {
	return func(f *DisplayFixture) { f.Name = name }
}

// WithDisplaySize overrides the panel dimensions.
func WithDisplaySize(width, height int) DisplayOption {
	return func(f *DisplayFixture) {
		f.Width = width
		f.Height = height
	}
}

// Persistence returns the fixture as a persistence.Display value.
func (f DisplayFixture) Persistence() persistence.Display {
	return persistence.Display{
		MAC:       f.MAC,
		Name:      f.Name,
		Width:     f.Width,
		Height:    f.Height,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Application returns the fixture as an application.Display value.
func (f DisplayFixture) Application() application.Display {
	return application.Display{
		MAC:       f.MAC,
		Name:      f.Name,
		Width:     f.Width,
		Height:    f.Height,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ----------------------------- Event fixtures -----------------------------

// EventFixture represents a deterministic calendar event record.
type EventFixture struct {
	Title         string
	GroupID       string
	Rule          string
	Start         time.Time
	End           time.Time
	AllDay        bool
	DisplayImages []application.DisplayImage
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture. Each generated event
// occupies its own one hour slot so fixtures do not collide unless a test
// asks them to.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 2 * time.Hour)
	fixture := EventFixture{
		Title: fmt.Sprintf("Termin %03d", idx),
		Start: start,
		End:   start.Add(time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventTitle overrides the generated title.
func WithEventTitle(title string) EventOption {
	return func(f *EventFixture) { f.Title = title }
}

// WithEventSpan overrides the start and end instants.
func WithEventSpan(start, end time.Time) EventOption {
	return func(f *EventFixture) {
		f.Start = start
		f.End = end
	}
}

// WithEventAllDay marks the fixture as an all-day event.
func WithEventAllDay() EventOption {
	return func(f *EventFixture) { f.AllDay = true }
}

// WithEventDisplays assigns the target displays, each paired with a
// deterministic image name.
func WithEventDisplays(macs ...string) EventOption {
	return func(f *EventFixture) {
		pairs := make([]application.DisplayImage, 0, len(macs))
		for i, mac := range macs {
			pairs = append(pairs, application.DisplayImage{
				DisplayMAC: mac,
				Image:      fmt.Sprintf("frame-%d.png", i+1),
			})
		}
		f.DisplayImages = pairs
	}
}

// WithEventGroup attaches the fixture to a recurring series.
func WithEventGroup(groupID, rule string) EventOption {
	return func(f *EventFixture) {
		f.GroupID = groupID
		f.Rule = rule
	}
}

// Persistence returns the fixture as a persistence.Event value ready for
// CreateEvent.
func (f EventFixture) Persistence() persistence.Event {
	pairs := make([]persistence.DisplayImage, 0, len(f.DisplayImages))
	for _, pair := range f.DisplayImages {
		pairs = append(pairs, persistence.DisplayImage{DisplayMAC: pair.DisplayMAC, Image: pair.Image})
	}
	return persistence.Event{
		Title:         f.Title,
		GroupID:       f.GroupID,
		Rule:          f.Rule,
		Start:         f.Start,
		End:           f.End,
		AllDay:        f.AllDay,
		DisplayImages: pairs,
	}
}

// Input returns the fixture as an application.EventInput value.
func (f EventFixture) Input() application.EventInput {
	return application.EventInput{
		Title:         f.Title,
		Start:         f.Start,
		End:           f.End,
		AllDay:        f.AllDay,
		DisplayImages: f.DisplayImages,
	}
}
