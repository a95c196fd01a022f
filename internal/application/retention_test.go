package application

import (
	"context"
	"testing"
	"time"

	"github.com/example/tablohm/internal/persistence"
)

func TestRetentionRunOnce(t *testing.T) {
	store := newFakeStore()
	store.config = &persistence.WakeConfig{DeleteAfterDays: 7}

	now := testNow()
	old := now.AddDate(0, 0, -10)
	recent := now.AddDate(0, 0, -2)
	store.events[1] = persistence.Event{ID: 1, Start: old, End: old.Add(time.Hour)}
	store.events[2] = persistence.Event{ID: 2, Start: recent, End: recent.Add(time.Hour)}
	store.nextID = 3
	store.sessions["stale"] = persistence.Session{Token: "stale", ExpiresAt: now.Add(-time.Hour)}
	store.sessions["live"] = persistence.Session{Token: "live", ExpiresAt: now.Add(time.Hour)}

	svc := NewRetentionService(store, store, store, testNow, nil)
	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, ok := store.events[1]; ok {
		t.Fatal("expected the old event to be purged")
	}
	if _, ok := store.events[2]; !ok {
		t.Fatal("the recent event must survive")
	}
	if _, ok := store.sessions["stale"]; ok {
		t.Fatal("expected the stale session to be purged")
	}
	if _, ok := store.sessions["live"]; !ok {
		t.Fatal("the live session must survive")
	}
}

func TestRetentionDisabled(t *testing.T) {
	store := newFakeStore()
	store.config = &persistence.WakeConfig{DeleteAfterDays: 0}

	old := testNow().AddDate(0, 0, -100)
	store.events[1] = persistence.Event{ID: 1, Start: old, End: old.Add(time.Hour)}
	store.nextID = 2

	svc := NewRetentionService(store, store, store, testNow, nil)
	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := store.events[1]; !ok {
		t.Fatal("retention of 0 days must keep everything")
	}
}
