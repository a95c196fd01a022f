package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/tablohm/internal/persistence"
)

// GetWakeConfig loads the singleton wake configuration with its weekday
// windows. Returns persistence.ErrNotFound when none has been saved yet.
func (s *Store) GetWakeConfig(ctx context.Context) (persistence.WakeConfig, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT wake_interval_minutes, lead_minutes, follow_up_minutes, delete_after_days, updated_at
		 FROM wake_config WHERE id = 1`)

	var config persistence.WakeConfig
	var updatedAt string
	err := row.Scan(
		&config.WakeIntervalMinutes,
		&config.LeadMinutes,
		&config.FollowUpMinutes,
		&config.DeleteAfterDays,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.WakeConfig{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.WakeConfig{}, mapError(err)
	}
	if config.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.WakeConfig{}, fmt.Errorf("parse wake_config updated_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT weekday, enabled, start_time, end_time FROM wake_weekday_times ORDER BY weekday`)
	if err != nil {
		return persistence.WakeConfig{}, mapError(err)
	}
	defer rows.Close()

	config.WeekdayTimes = make(map[time.Weekday]persistence.WeekdayTime)
	for rows.Next() {
		var weekday int
		var wt persistence.WeekdayTime
		if err := rows.Scan(&weekday, &wt.Enabled, &wt.Start, &wt.End); err != nil {
			return persistence.WakeConfig{}, err
		}
		config.WeekdayTimes[time.Weekday(weekday)] = wt
	}
	return config, rows.Err()
}

// SaveWakeConfig replaces the wake configuration and its weekday windows.
func (s *Store) SaveWakeConfig(ctx context.Context, config persistence.WakeConfig) error {
	now := time.Now().UTC()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO wake_config (id, wake_interval_minutes, lead_minutes, follow_up_minutes, delete_after_days, updated_at)
			 VALUES (1, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				wake_interval_minutes = excluded.wake_interval_minutes,
				lead_minutes = excluded.lead_minutes,
				follow_up_minutes = excluded.follow_up_minutes,
				delete_after_days = excluded.delete_after_days,
				updated_at = excluded.updated_at`,
			config.WakeIntervalMinutes,
			config.LeadMinutes,
			config.FollowUpMinutes,
			config.DeleteAfterDays,
			formatTime(now),
		)
		if err != nil {
			return mapError(err)
		}
		if _, err := tx.Exec(`DELETE FROM wake_weekday_times`); err != nil {
			return mapError(err)
		}
		for weekday, wt := range config.WeekdayTimes {
			if _, err := tx.Exec(
				`INSERT INTO wake_weekday_times (weekday, enabled, start_time, end_time) VALUES (?, ?, ?, ?)`,
				int(weekday), wt.Enabled, wt.Start, wt.End); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}
