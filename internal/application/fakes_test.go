package application

import (
	"context"
	"fmt"
	"time"

	"github.com/example/tablohm/internal/persistence"
)

// fakeStore is an in-memory stand-in for the sqlite store.
type fakeStore struct {
	events   map[int64]persistence.Event
	nextID   int64
	displays map[string]persistence.Display
	images   map[string]persistence.Image
	config   *persistence.WakeConfig
	users    map[string]persistence.User
	sessions map[string]persistence.Session

	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:   make(map[int64]persistence.Event),
		nextID:   1,
		displays: make(map[string]persistence.Display),
		images:   make(map[string]persistence.Image),
		users:    make(map[string]persistence.User),
		sessions: make(map[string]persistence.Session),
	}
}

func (f *fakeStore) addDisplay(mac, name string) {
	f.displays[mac] = persistence.Display{MAC: mac, Name: name}
}

func (f *fakeStore) CreateEvent(ctx context.Context, event persistence.Event) (persistence.Event, error) {
	if f.failWith != nil {
		return persistence.Event{}, f.failWith
	}
	event.ID = f.nextID
	f.nextID++
	f.events[event.ID] = event
	return event, nil
}

func (f *fakeStore) CreateEventGroup(ctx context.Context, events []persistence.Event) ([]persistence.Event, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	stored := make([]persistence.Event, 0, len(events))
	for _, event := range events {
		saved, _ := f.CreateEvent(ctx, event)
		stored = append(stored, saved)
	}
	return stored, nil
}

func (f *fakeStore) UpdateEvent(ctx context.Context, event persistence.Event) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.events[event.ID]; !ok {
		return persistence.ErrNotFound
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeStore) GetEvent(ctx context.Context, id int64) (persistence.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return persistence.Event{}, persistence.ErrNotFound
	}
	return event, nil
}

func (f *fakeStore) ListEvents(ctx context.Context) ([]persistence.Event, error) {
	var out []persistence.Event
	for id := int64(1); id < f.nextID; id++ {
		if event, ok := f.events[id]; ok {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f *fakeStore) ListEventsForDisplay(ctx context.Context, mac string) ([]persistence.Event, error) {
	all, _ := f.ListEvents(ctx)
	var out []persistence.Event
	for _, event := range all {
		for _, pair := range event.DisplayImages {
			if pair.DisplayMAC == mac {
				out = append(out, event)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListOverlapping(ctx context.Context, mac string, start, end time.Time) ([]persistence.Event, error) {
	assigned, _ := f.ListEventsForDisplay(ctx, mac)
	var out []persistence.Event
	for _, event := range assigned {
		if event.Start.Before(end) && start.Before(event.End) {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f *fakeStore) ListEventGroups(ctx context.Context) ([]persistence.Event, error) {
	seen := make(map[string]bool)
	var out []persistence.Event
	all, _ := f.ListEvents(ctx)
	for _, event := range all {
		if event.GroupID == "" || seen[event.GroupID] {
			continue
		}
		seen[event.GroupID] = true
		out = append(out, event)
	}
	return out, nil
}

func (f *fakeStore) DeleteEvent(ctx context.Context, id int64) error {
	if _, ok := f.events[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeStore) DeleteEventGroup(ctx context.Context, groupID string) (int64, error) {
	var deleted int64
	for id, event := range f.events {
		if event.GroupID == groupID {
			delete(f.events, id)
			deleted++
		}
	}
	if deleted == 0 {
		return 0, persistence.ErrNotFound
	}
	return deleted, nil
}

func (f *fakeStore) DeleteEventsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, event := range f.events {
		if event.End.Before(cutoff) {
			delete(f.events, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeStore) CreateDisplay(ctx context.Context, display persistence.Display) error {
	if _, ok := f.displays[display.MAC]; ok {
		return persistence.ErrDuplicate
	}
	f.displays[display.MAC] = display
	return nil
}

func (f *fakeStore) UpdateDisplay(ctx context.Context, display persistence.Display) error {
	if _, ok := f.displays[display.MAC]; !ok {
		return persistence.ErrNotFound
	}
	f.displays[display.MAC] = display
	return nil
}

func (f *fakeStore) GetDisplay(ctx context.Context, mac string) (persistence.Display, error) {
	display, ok := f.displays[mac]
	if !ok {
		return persistence.Display{}, persistence.ErrNotFound
	}
	return display, nil
}

func (f *fakeStore) ListDisplays(ctx context.Context) ([]persistence.Display, error) {
	var out []persistence.Display
	for _, display := range f.displays {
		out = append(out, display)
	}
	return out, nil
}

func (f *fakeStore) DeleteDisplay(ctx context.Context, mac string) error {
	if _, ok := f.displays[mac]; !ok {
		return persistence.ErrNotFound
	}
	delete(f.displays, mac)
	return nil
}

func (f *fakeStore) TouchDisplay(ctx context.Context, mac string, seenAt time.Time) error {
	display, ok := f.displays[mac]
	if !ok {
		return persistence.ErrNotFound
	}
	display.LastSeen = &seenAt
	f.displays[mac] = display
	return nil
}

func (f *fakeStore) SaveImage(ctx context.Context, image persistence.Image) error {
	f.images[image.Name] = image
	return nil
}

func (f *fakeStore) GetImage(ctx context.Context, name string) (persistence.Image, error) {
	image, ok := f.images[name]
	if !ok {
		return persistence.Image{}, persistence.ErrNotFound
	}
	return image, nil
}

func (f *fakeStore) ListImages(ctx context.Context) ([]persistence.Image, error) {
	var out []persistence.Image
	for _, image := range f.images {
		image.Data = nil
		out = append(out, image)
	}
	return out, nil
}

func (f *fakeStore) DeleteImage(ctx context.Context, name string) error {
	if _, ok := f.images[name]; !ok {
		return persistence.ErrNotFound
	}
	delete(f.images, name)
	return nil
}

func (f *fakeStore) GetWakeConfig(ctx context.Context) (persistence.WakeConfig, error) {
	if f.config == nil {
		return persistence.WakeConfig{}, persistence.ErrNotFound
	}
	return *f.config, nil
}

func (f *fakeStore) SaveWakeConfig(ctx context.Context, config persistence.WakeConfig) error {
	f.config = &config
	return nil
}

func (f *fakeStore) CreateUser(ctx context.Context, user persistence.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return persistence.ErrDuplicate
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) UpdateUser(ctx context.Context, user persistence.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetUser(ctx context.Context, id string) (persistence.User, error) {
	user, ok := f.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (persistence.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]persistence.User, error) {
	var out []persistence.User
	for _, user := range f.users {
		out = append(out, user)
	}
	return out, nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	f.sessions[session.Token] = session
	return session, nil
}

func (f *fakeStore) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (f *fakeStore) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	session, ok := f.sessions[token]
	if !ok || session.RevokedAt != nil {
		return persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	f.sessions[token] = session
	return nil
}

func (f *fakeStore) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	for token, session := range f.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(f.sessions, token)
		}
	}
	return nil
}

// sequenceIDs returns a deterministic id generator for tests.
func sequenceIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
