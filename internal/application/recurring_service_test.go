package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func recurringInput(mutate func(*RecurringEventInput)) RecurringEventInput {
	input := RecurringEventInput{
		Title: "Jour fixe",
		Start: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local),
		End:   time.Date(2025, time.March, 3, 10, 0, 0, 0, time.Local),
		DisplayImages: []DisplayImage{
			{DisplayMAC: "aa:bb:cc:dd:ee:01", Image: "frame-1.png"},
		},
		Rule: "FREQ=WEEKLY;BYDAY=MO;UNTIL=20250324T080000Z",
	}
	if mutate != nil {
		mutate(&input)
	}
	return input
}

func newRecurringService(store *fakeStore) *RecurringEventService {
	return NewRecurringEventService(store, store, store, sequenceIDs("group"), testNow)
}

func TestRecurringCreate(t *testing.T) {
	store := newFakeStore()
	store.addDisplay("aa:bb:cc:dd:ee:01", "Raum 1")
	svc := newRecurringService(store)

	series, warning, err := svc.Create(context.Background(), CreateRecurringEventParams{Input: recurringInput(nil)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if warning != nil {
		t.Fatalf("expected no warning, got %+v", warning)
	}
	if series.GroupID != "group-1" {
		t.Fatalf("unexpected group id %q", series.GroupID)
	}
	if series.Occurrences < 3 {
		t.Fatalf("expected weekly occurrences until 2025-03-24, got %d", series.Occurrences)
	}
	for _, event := range store.events {
		if event.GroupID != "group-1" || event.Rule == "" {
			t.Fatalf("occurrence missing group or rule: %+v", event)
		}
		if event.End.Sub(event.Start) != time.Hour {
			t.Fatalf("occurrence duration changed: %+v", event)
		}
	}
}

func TestRecurringCreateInvalidRule(t *testing.T) {
	store := newFakeStore()
	store.addDisplay("aa:bb:cc:dd:ee:01", "Raum 1")
	svc := newRecurringService(store)

	_, _, err := svc.Create(context.Background(), CreateRecurringEventParams{Input: recurringInput(func(i *RecurringEventInput) {
		i.Rule = "FREQ=BOGUS"
	})})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := vErr.FieldErrors["rule"]; !ok {
		t.Fatalf("expected rule error, got %v", vErr.FieldErrors)
	}
	if len(store.events) != 0 {
		t.Fatal("nothing may be stored for an invalid rule")
	}
}

func TestRecurringCreateCollisionRejectsSeries(t *testing.T) {
	store := newFakeStore()
	store.addDisplay("aa:bb:cc:dd:ee:01", "Raum 1")
	eventSvc := NewEventService(store, store, store, testNow)
	ctx := context.Background()

	// Existing event on the second occurrence's slot (2025-03-10).
	if _, _, err := eventSvc.Create(ctx, CreateEventParams{Input: eventInput(func(i *EventInput) {
		i.Start = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.Local)
		i.End = time.Date(2025, time.March, 10, 10, 30, 0, 0, time.Local)
	})}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := newRecurringService(store)
	_, _, err := svc.Create(ctx, CreateRecurringEventParams{Input: recurringInput(nil)})
	var cErr *CollisionError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected collision error, got %v", err)
	}
	if !strings.Contains(cErr.Message(), "aa:bb:cc:dd:ee:01") {
		t.Fatalf("unexpected message %q", cErr.Message())
	}
	if len(store.events) != 1 {
		t.Fatalf("series must not be partially stored, have %d events", len(store.events))
	}
}

func TestRecurringDeleteAndList(t *testing.T) {
	store := newFakeStore()
	store.addDisplay("aa:bb:cc:dd:ee:01", "Raum 1")
	svc := newRecurringService(store)
	ctx := context.Background()

	series, _, err := svc.Create(ctx, CreateRecurringEventParams{Input: recurringInput(nil)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	listed, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].GroupID != series.GroupID {
		t.Fatalf("unexpected listing %+v", listed)
	}
	if listed[0].Occurrences != series.Occurrences {
		t.Fatalf("expected %d occurrences, got %d", series.Occurrences, listed[0].Occurrences)
	}

	if err := svc.Delete(ctx, DeleteRecurringEventParams{GroupID: series.GroupID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.events) != 0 {
		t.Fatalf("expected all occurrences gone, have %d", len(store.events))
	}
	if err := svc.Delete(ctx, DeleteRecurringEventParams{GroupID: series.GroupID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
