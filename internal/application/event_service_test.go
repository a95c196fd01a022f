package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/tablohm/internal/persistence"
)

var testNow = func() time.Time {
	return time.Date(2025, time.March, 1, 12, 0, 0, 0, time.Local)
}

func eventInput(mutate func(*EventInput)) EventInput {
	input := EventInput{
		Title: "Teammeeting",
		Start: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local),
		End:   time.Date(2025, time.March, 3, 10, 0, 0, 0, time.Local),
		DisplayImages: []DisplayImage{
			{DisplayMAC: "aa:bb:cc:dd:ee:01", Image: "frame-1.png"},
		},
	}
	if mutate != nil {
		mutate(&input)
	}
	return input
}

func TestEventServiceCreate(t *testing.T) {
	store := newFakeStore()
	store.addDisplay("aa:bb:cc:dd:ee:01", "Raum 1")
	svc := NewEventService(store, store, store, testNow)

	event, warning, err := svc.Create(context.Background(), CreateEventParams{Input: eventInput(nil)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if warning != nil {
		t.Fatalf("expected no warning without wake config, got %+v", warning)
	}
	if event.ID != 1 || event.Title != "Teammeeting" {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestEventServiceCreateValidation(t *testing.T) {
	store := newFakeStore()
	store.addDisplay("aa:bb:cc:dd:ee:01", "Raum 1")
	svc := NewEventService(store, store, store, testNow)

	cases := []struct {
		name   string
		mutate func(*EventInput)
		field  string
	}{
		{"title too short", func(i *EventInput) { i.Title = "ab" }, "title"},
		{"title too long", func(i *EventInput) { i.Title = strings.Repeat("x", 31) }, "title"},
		{"end before start", func(i *EventInput) { i.End = i.Start.Add(-time.Hour) }, "time"},
		{"no displays", func(i *EventInput) { i.DisplayImages = nil }, "displays"},
		{"unknown display", func(i *EventInput) {
			i.DisplayImages = []DisplayImage{{DisplayMAC: "ff:ff:ff:ff:ff:ff", Image: "frame-1.png"}}
		}, "displays"},
		{"duplicate display", func(i *EventInput) {
			i.DisplayImages = append(i.DisplayImages, DisplayImage{DisplayMAC: "aa:bb:cc:dd:ee:01", Image: "frame-2.png"})
		}, "displays"},
		{"missing image", func(i *EventInput) { i.DisplayImages[0].Image = "" }, "displays"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Create(context.Background(), CreateEventParams{Input: eventInput(tc.mutate)})
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Fatalf("expected error on %q, got %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestEventServiceCreateCollision(t *testing.T) {
	store := newFakeStore()
	store.addDisplay("aa:bb:cc:dd:ee:01", "Raum 1")
	svc := NewEventService(store, store, store, testNow)
	ctx := context.Background()

	if _, _, err := svc.Create(ctx, CreateEventParams{Input: eventInput(nil)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, _, err := svc.Create(ctx, CreateEventParams{Input: eventInput(func(i *EventInput) {
		i.Start = i.Start.Add(30 * time.Minute)
		i.End = i.End.Add(30 * time.Minute)
	})})
	var cErr *CollisionError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected collision error, got %v", err)
	}
	if got := cErr.Message(); got != "Event time collides for display aa:bb:cc:dd:ee:01. Event not saved." {
		t.Fatalf("unexpected message %q", got)
	}
	if len(store.events) != 1 {
		t.Fatalf("colliding event must not be saved, have %d events", len(store.events))
	}

	// Back to back is allowed.
	if _, _, err := svc.Create(ctx, CreateEventParams{Input: eventInput(func(i *EventInput) {
		i.Start = i.End
		i.End = i.End.Add(time.Hour)
	})}); err != nil {
		t.Fatalf("adjacent event rejected: %v", err)
	}
}

func TestEventServiceAllDayNormalization(t *testing.T) {
	store := newFakeStore()
	store.addDisplay("aa:bb:cc:dd:ee:01", "Raum 1")
	svc := NewEventService(store, store, store, testNow)

	event, _, err := svc.Create(context.Background(), CreateEventParams{Input: eventInput(func(i *EventInput) {
		i.AllDay = true
		i.Start = time.Date(2025, time.March, 3, 9, 15, 0, 0, time.Local)
		i.End = time.Date(2025, time.March, 4, 10, 30, 0, 0, time.Local)
	})})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantStart := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.Local)
	wantEnd := time.Date(2025, time.March, 4, 23, 59, 59, 0, time.Local)
	if !event.Start.Equal(wantStart) || !event.End.Equal(wantEnd) {
		t.Fatalf("expected day bounds %s..%s, got %s..%s", wantStart, wantEnd, event.Start, event.End)
	}
}

func TestEventServiceWakeupWarning(t *testing.T) {
	store := newFakeStore()
	store.addDisplay("aa:bb:cc:dd:ee:01", "Raum 1")
	store.config = &persistence.WakeConfig{
		WakeIntervalMinutes: 30,
		LeadMinutes:         10,
		DeleteAfterDays:     30,
		WeekdayTimes: map[time.Weekday]persistence.WeekdayTime{
			time.Monday: {Enabled: true, Start: "08:00", End: "18:00"},
		},
	}
	svc := NewEventService(store, store, store, testNow)

	// 2025-03-03 is a Monday; 07:30 is before the first wake at 08:00.
	event, warning, err := svc.Create(context.Background(), CreateEventParams{Input: eventInput(func(i *EventInput) {
		i.Start = time.Date(2025, time.March, 3, 7, 30, 0, 0, time.Local)
		i.End = time.Date(2025, time.March, 3, 8, 30, 0, 0, time.Local)
	})})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if warning == nil {
		t.Fatal("expected a wakeup warning")
	}
	if !strings.Contains(warning.Text, "Montag") {
		t.Fatalf("unexpected warning text %q", warning.Text)
	}
	if event.ID == 0 || len(store.events) != 1 {
		t.Fatal("event must be saved despite the warning")
	}
}

func TestEventServiceUpdateSkipsSelfCollision(t *testing.T) {
	store := newFakeStore()
	store.addDisplay("aa:bb:cc:dd:ee:01", "Raum 1")
	svc := NewEventService(store, store, store, testNow)
	ctx := context.Background()

	created, _, err := svc.Create(ctx, CreateEventParams{Input: eventInput(nil)})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, _, err = svc.Update(ctx, UpdateEventParams{EventID: created.ID, Input: eventInput(func(i *EventInput) {
		i.End = i.End.Add(15 * time.Minute)
	})})
	if err != nil {
		t.Fatalf("update within own window rejected: %v", err)
	}

	if _, _, err := svc.Update(ctx, UpdateEventParams{EventID: 99, Input: eventInput(nil)}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventServiceListForDisplayCaches(t *testing.T) {
	store := newFakeStore()
	store.addDisplay("aa:bb:cc:dd:ee:01", "Raum 1")
	svc := NewEventService(store, store, store, testNow)
	ctx := context.Background()

	if _, _, err := svc.Create(ctx, CreateEventParams{Input: eventInput(nil)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first, err := svc.ListForDisplay(ctx, "aa:bb:cc:dd:ee:01")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected one event, got %d", len(first))
	}

	// A write invalidates the cached listing.
	if _, _, err := svc.Create(ctx, CreateEventParams{Input: eventInput(func(i *EventInput) {
		i.Start = i.Start.Add(2 * time.Hour)
		i.End = i.End.Add(2 * time.Hour)
	})}); err != nil {
		t.Fatalf("second create: %v", err)
	}
	second, err := svc.ListForDisplay(ctx, "aa:bb:cc:dd:ee:01")
	if err != nil {
		t.Fatalf("relist: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("expected two events after invalidation, got %d", len(second))
	}

	if _, err := svc.ListForDisplay(ctx, "ff:ff:ff:ff:ff:ff"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown display, got %v", err)
	}
}
