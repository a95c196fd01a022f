package persistence

import (
	"context"
	"time"
)

// EventRepository stores events and their display assignments. Create calls
// return the stored event with its database-assigned ID.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	CreateEventGroup(ctx context.Context, events []Event) ([]Event, error)
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id int64) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	ListEventsForDisplay(ctx context.Context, mac string) ([]Event, error)
	ListOverlapping(ctx context.Context, mac string, start, end time.Time) ([]Event, error)
	ListEventGroups(ctx context.Context) ([]Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	DeleteEventGroup(ctx context.Context, groupID string) (int64, error)
	DeleteEventsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DisplayRepository stores the display registry.
type DisplayRepository interface {
	CreateDisplay(ctx context.Context, display Display) error
	UpdateDisplay(ctx context.Context, display Display) error
	GetDisplay(ctx context.Context, mac string) (Display, error)
	ListDisplays(ctx context.Context) ([]Display, error)
	DeleteDisplay(ctx context.Context, mac string) error
	TouchDisplay(ctx context.Context, mac string, seenAt time.Time) error
}

// ImageRepository stores rendered display images.
type ImageRepository interface {
	SaveImage(ctx context.Context, image Image) error
	GetImage(ctx context.Context, name string) (Image, error)
	ListImages(ctx context.Context) ([]Image, error)
	DeleteImage(ctx context.Context, name string) error
}

// WakeConfigRepository stores the singleton wake configuration.
type WakeConfigRepository interface {
	GetWakeConfig(ctx context.Context) (WakeConfig, error)
	SaveWakeConfig(ctx context.Context, config WakeConfig) error
}

// UserRepository stores operator accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionRepository stores login session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
