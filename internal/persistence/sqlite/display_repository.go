package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tablohm/internal/persistence"
)

// CreateDisplay registers a new display.
func (s *Store) CreateDisplay(ctx context.Context, display persistence.Display) error {
	if display.MAC == "" {
		return persistence.ErrConstraintViolation
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO displays (mac, name, width, height, last_seen, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		display.MAC,
		display.Name,
		display.Width,
		display.Height,
		formatNullableTime(display.LastSeen),
		formatTime(now),
		formatTime(now),
	)
	return mapError(err)
}

// UpdateDisplay rewrites the mutable fields of a display.
func (s *Store) UpdateDisplay(ctx context.Context, display persistence.Display) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE displays SET name = ?, width = ?, height = ?, updated_at = ? WHERE mac = ?`,
		display.Name,
		display.Width,
		display.Height,
		formatTime(time.Now()),
		display.MAC,
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
	return nil
}

// GetDisplay retrieves one display by MAC address.
func (s *Store) GetDisplay(ctx context.Context, mac string) (persistence.Display, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT mac, name, width, height, last_seen, created_at, updated_at FROM displays WHERE mac = ?`,
		mac)
	return scanDisplay(row)
}

// ListDisplays returns all displays ordered by name.
func (s *Store) ListDisplays(ctx context.Context) ([]persistence.Display, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mac, name, width, height, last_seen, created_at, updated_at FROM displays ORDER BY name, mac`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var displays []persistence.Display
	for rows.Next() {
		display, err := scanDisplay(rows)
		if err != nil {
			return nil, err
		}
		displays = append(displays, display)
	}
	return displays, rows.Err()
}

// DeleteDisplay removes a display. Display assignments cascade.
func (s *Store) DeleteDisplay(ctx context.Context, mac string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM displays WHERE mac = ?`, mac)
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

// TouchDisplay records when a display last fetched its content.
func (s *Store) TouchDisplay(ctx context.Context, mac string, seenAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE displays SET last_seen = ? WHERE mac = ?`,
		formatTime(seenAt), mac)
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

func scanDisplay(row rowScanner) (persistence.Display, error) {
	var display persistence.Display
	var lastSeen sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&display.MAC, &display.Name, &display.Width, &display.Height, &lastSeen, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Display{}, mapError(err)
	}
	if display.LastSeen, err = parseNullableTime(lastSeen); err != nil {
		return persistence.Display{}, fmt.Errorf("parse display last_seen: %w", err)
	}
	if display.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Display{}, fmt.Errorf("parse display created_at: %w", err)
	}
	if display.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Display{}, fmt.Errorf("parse display updated_at: %w", err)
	}
	return display, nil
}
