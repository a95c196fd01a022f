package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/tablohm/internal/persistence"
)

// SaveImage stores or replaces a rendered image under its name.
func (s *Store) SaveImage(ctx context.Context, image persistence.Image) error {
	if image.Name == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO images (name, display_mac, content_type, data, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			display_mac = excluded.display_mac,
			content_type = excluded.content_type,
			data = excluded.data`,
		image.Name,
		image.DisplayMAC,
		image.ContentType,
		image.Data,
		formatTime(time.Now()),
	)
	return mapError(err)
}

// GetImage retrieves an image with its payload.
func (s *Store) GetImage(ctx context.Context, name string) (persistence.Image, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, display_mac, content_type, data, created_at FROM images WHERE name = ?`,
		name)
	var image persistence.Image
	var createdAt string
	err := row.Scan(&image.Name, &image.DisplayMAC, &image.ContentType, &image.Data, &createdAt)
	if err != nil {
		return persistence.Image{}, mapError(err)
	}
	if image.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Image{}, fmt.Errorf("parse image created_at: %w", err)
	}
	return image, nil
}

// ListImages returns image metadata without payloads.
func (s *Store) ListImages(ctx context.Context) ([]persistence.Image, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, display_mac, content_type, created_at FROM images ORDER BY created_at, name`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var images []persistence.Image
	for rows.Next() {
		var image persistence.Image
		var createdAt string
		if err := rows.Scan(&image.Name, &image.DisplayMAC, &image.ContentType, &createdAt); err != nil {
			return nil, err
		}
		if image.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse image created_at: %w", err)
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

// DeleteImage removes a stored image.
func (s *Store) DeleteImage(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE name = ?`, name)
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
