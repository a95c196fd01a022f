package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order inside one transaction per step. The
// applied version is tracked in schema_migrations; never edit a shipped
// step, append a new one.
var migrations = []string{
	// 1: displays and events
	`CREATE TABLE displays (
		mac        TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		width      INTEGER NOT NULL DEFAULT 0,
		height     INTEGER NOT NULL DEFAULT 0,
		last_seen  TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		title      TEXT NOT NULL,
		group_id   TEXT NOT NULL DEFAULT '',
		rrule      TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL,
		end_time   TEXT NOT NULL,
		all_day    INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE event_displays (
		event_id    INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		display_mac TEXT NOT NULL REFERENCES displays(mac) ON DELETE CASCADE,
		image       TEXT NOT NULL DEFAULT '',
		position    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (event_id, display_mac)
	);
	CREATE INDEX idx_events_group ON events(group_id);
	CREATE INDEX idx_events_window ON events(start_time, end_time);`,

	// 2: rendered display images
	`CREATE TABLE images (
		name         TEXT PRIMARY KEY,
		display_mac  TEXT NOT NULL DEFAULT '',
		content_type TEXT NOT NULL,
		data         BLOB NOT NULL,
		created_at   TEXT NOT NULL
	);`,

	// 3: wake configuration singleton plus per-weekday windows
	`CREATE TABLE wake_config (
		id                    INTEGER PRIMARY KEY CHECK (id = 1),
		wake_interval_minutes INTEGER NOT NULL,
		lead_minutes          INTEGER NOT NULL,
		follow_up_minutes     INTEGER NOT NULL,
		delete_after_days     INTEGER NOT NULL,
		updated_at            TEXT NOT NULL
	);
	CREATE TABLE wake_weekday_times (
		weekday    INTEGER PRIMARY KEY CHECK (weekday BETWEEN 0 AND 6),
		enabled    INTEGER NOT NULL DEFAULT 0,
		start_time TEXT NOT NULL DEFAULT '00:00',
		end_time   TEXT NOT NULL DEFAULT '00:00'
	);`,

	// 4: operator accounts and sessions
	`CREATE TABLE users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		is_admin      INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);
	CREATE TABLE sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token      TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		revoked_at TEXT
	);
	CREATE INDEX idx_sessions_expiry ON sessions(expires_at);`,
}

// Migrate brings the schema up to the current version.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for version := current + 1; version <= len(migrations); version++ {
		step := migrations[version-1]
		err := s.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(step); err != nil {
				return err
			}
			_, err := tx.Exec(
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))`,
				version)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
	}
	return nil
}
