package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tablohm/internal/persistence"
)

const eventColumns = `id, title, group_id, rrule, start_time, end_time, all_day, created_at, updated_at`

// CreateEvent inserts an event with its display assignments and returns the
// stored event with the assigned ID.
func (s *Store) CreateEvent(ctx context.Context, event persistence.Event) (persistence.Event, error) {
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stored, err := insertEvent(tx, event)
		if err != nil {
			return err
		}
		event = stored
		return nil
	})
	if err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

// CreateEventGroup inserts every occurrence of a recurring series in one
// transaction. Either all occurrences are stored or none.
func (s *Store) CreateEventGroup(ctx context.Context, events []persistence.Event) ([]persistence.Event, error) {
	now := time.Now().UTC()
	stored := make([]persistence.Event, 0, len(events))

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, event := range events {
			event.CreatedAt = now
			event.UpdatedAt = now
			inserted, err := insertEvent(tx, event)
			if err != nil {
				return err
			}
			stored = append(stored, inserted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func insertEvent(tx *sql.Tx, event persistence.Event) (persistence.Event, error) {
	result, err := tx.Exec(
		`INSERT INTO events (title, group_id, rrule, start_time, end_time, all_day, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Title,
		event.GroupID,
		event.Rule,
		formatTime(event.Start),
		formatTime(event.End),
		event.AllDay,
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	if err != nil {
		return persistence.Event{}, mapError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Event{}, fmt.Errorf("read event id: %w", err)
	}
	event.ID = id
	if err := replaceEventDisplays(tx, id, event.DisplayImages); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

// UpdateEvent rewrites an event and its display assignments.
func (s *Store) UpdateEvent(ctx context.Context, event persistence.Event) error {
	event.UpdatedAt = time.Now().UTC()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			`UPDATE events SET title = ?, group_id = ?, rrule = ?, start_time = ?, end_time = ?, all_day = ?, updated_at = ?
			 WHERE id = ?`,
			event.Title,
			event.GroupID,
			event.Rule,
			formatTime(event.Start),
			formatTime(event.End),
			event.AllDay,
			formatTime(event.UpdatedAt),
			event.ID,
		)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		if _, err := tx.Exec(`DELETE FROM event_displays WHERE event_id = ?`, event.ID); err != nil {
			return mapError(err)
		}
		return replaceEventDisplays(tx, event.ID, event.DisplayImages)
	})
}

func replaceEventDisplays(tx *sql.Tx, eventID int64, pairs []persistence.DisplayImage) error {
	for position, pair := range pairs {
		if _, err := tx.Exec(
			`INSERT INTO event_displays (event_id, display_mac, image, position) VALUES (?, ?, ?, ?)`,
			eventID, pair.DisplayMAC, pair.Image, position); err != nil {
			return mapError(err)
		}
	}
	return nil
}

// GetEvent retrieves one event by ID.
func (s *Store) GetEvent(ctx context.Context, id int64) (persistence.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if err != nil {
		return persistence.Event{}, err
	}
	if err := s.attachDisplays(ctx, []*persistence.Event{&event}); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

// ListEvents returns every event ordered by start time.
func (s *Store) ListEvents(ctx context.Context) ([]persistence.Event, error) {
	return s.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY start_time, id`)
}

// ListEventsForDisplay returns the events assigned to one display ordered by
// start time.
func (s *Store) ListEventsForDisplay(ctx context.Context, mac string) ([]persistence.Event, error) {
	return s.queryEvents(ctx,
		`SELECT `+qualifiedEventColumns+` FROM events e
		 JOIN event_displays ed ON ed.event_id = e.id
		 WHERE ed.display_mac = ?
		 ORDER BY e.start_time, e.id`, mac)
}

// ListOverlapping returns the events on a display whose window overlaps
// [start, end). Windows are half open, so touching events do not overlap.
func (s *Store) ListOverlapping(ctx context.Context, mac string, start, end time.Time) ([]persistence.Event, error) {
	return s.queryEvents(ctx,
		`SELECT `+qualifiedEventColumns+` FROM events e
		 JOIN event_displays ed ON ed.event_id = e.id
		 WHERE ed.display_mac = ? AND e.start_time < ? AND ? < e.end_time
		 ORDER BY e.start_time, e.id`,
		mac, formatTime(end), formatTime(start))
}

// ListEventGroups returns the first occurrence of every recurring series.
func (s *Store) ListEventGroups(ctx context.Context) ([]persistence.Event, error) {
	return s.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE group_id != '' AND id IN (
			SELECT MIN(id) FROM events WHERE group_id != '' GROUP BY group_id
		 )
		 ORDER BY start_time, id`)
}

// DeleteEvent removes a single event.
func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteEventGroup removes every occurrence of a recurring series and
// returns how many were deleted.
func (s *Store) DeleteEventGroup(ctx context.Context, groupID string) (int64, error) {
	if groupID == "" {
		return 0, persistence.ErrConstraintViolation
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE group_id = ?`, groupID)
	if err != nil {
		return 0, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, persistence.ErrNotFound
	}
	return affected, nil
}

// DeleteEventsEndedBefore purges events whose end lies before the cutoff.
func (s *Store) DeleteEventsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE end_time < ?`, formatTime(cutoff))
	if err != nil {
		return 0, mapError(err)
	}
	return result.RowsAffected()
}

const qualifiedEventColumns = `e.id, e.title, e.group_id, e.rrule, e.start_time, e.end_time, e.all_day, e.created_at, e.updated_at`

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]persistence.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	var refs []*persistence.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range events {
		refs = append(refs, &events[i])
	}
	if err := s.attachDisplays(ctx, refs); err != nil {
		return nil, err
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var event persistence.Event
	var start, end, createdAt, updatedAt string
	err := row.Scan(&event.ID, &event.Title, &event.GroupID, &event.Rule, &start, &end, &event.AllDay, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Event{}, mapError(err)
	}
	if event.Start, err = parseTime(start); err != nil {
		return persistence.Event{}, fmt.Errorf("parse event start: %w", err)
	}
	if event.End, err = parseTime(end); err != nil {
		return persistence.Event{}, fmt.Errorf("parse event end: %w", err)
	}
	if event.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Event{}, fmt.Errorf("parse event created_at: %w", err)
	}
	if event.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Event{}, fmt.Errorf("parse event updated_at: %w", err)
	}
	return event, nil
}

func (s *Store) attachDisplays(ctx context.Context, events []*persistence.Event) error {
	for _, event := range events {
		rows, err := s.db.QueryContext(ctx,
			`SELECT display_mac, image FROM event_displays WHERE event_id = ? ORDER BY position, display_mac`,
			event.ID)
		if err != nil {
			return mapError(err)
		}
		var pairs []persistence.DisplayImage
		for rows.Next() {
			var pair persistence.DisplayImage
			if err := rows.Scan(&pair.DisplayMAC, &pair.Image); err != nil {
				rows.Close()
				return err
			}
			pairs = append(pairs, pair)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
		event.DisplayImages = pairs
	}
	return nil
}
