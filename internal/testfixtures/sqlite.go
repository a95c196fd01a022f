package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/tablohm/internal/persistence"
	"github.com/example/tablohm/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite store
// for integration-style tests.
type SQLiteHarness struct {
	Events      persistence.EventRepository
	Displays    persistence.DisplayRepository
	Images      persistence.ImageRepository
	WakeConfigs persistence.WakeConfigRepository
	Users       persistence.UserRepository
	Sessions    persistence.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary database file
// that is migrated automatically. Cleanup is registered with the provided
// testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "tablohm.db")

	store, err := sqlite.Open("file:" + path)
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate store: %v", err)
	}

	harness := &SQLiteHarness{
		Events:      store,
		Displays:    store,
		Images:      store,
		WakeConfigs: store,
		Users:       store,
		Sessions:    store,
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
