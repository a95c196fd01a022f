package booking

import "testing"

func TestNewDraftSeedsDates(t *testing.T) {
	draft := NewDraft("2025-03-03")
	if draft.EndDate != "2025-03-03" || draft.WeeklyUntil != "2025-03-03" {
		t.Fatalf("expected end dates seeded from start, got %+v", draft)
	}
	if draft.ID != nil {
		t.Fatal("a new draft must not carry an id")
	}
}

func TestDraftFromEntry(t *testing.T) {
	entry := Entry{ID: 4, Title: "Abnahme", Date: "2025-03-03T10:00:00", EndDate: ""}
	draft := DraftFromEntry(entry)
	if draft.ID == nil || *draft.ID != 4 {
		t.Fatalf("expected id 4, got %v", draft.ID)
	}
	if draft.Date != "2025-03-03" {
		t.Fatalf("expected normalized date, got %q", draft.Date)
	}
	if draft.EndDate != "2025-03-03" {
		t.Fatalf("expected empty end date to fall back to start, got %q", draft.EndDate)
	}
}

func TestWithDateDragsEndDates(t *testing.T) {
	draft := NewDraft("2025-03-03").WithEndDate("2025-03-05")
	draft = draft.WithDate("2025-03-10")
	if draft.EndDate != "2025-03-10" {
		t.Fatalf("expected end date dragged to the new start, got %q", draft.EndDate)
	}

	weekly := NewDraft("2025-03-03").WithWeekly(true).WithDate("2025-03-10")
	if weekly.WeeklyUntil != "2025-03-10" {
		t.Fatalf("expected repetition end dragged forward, got %q", weekly.WeeklyUntil)
	}
}

func TestWithDateKeepsLaterEndDate(t *testing.T) {
	draft := NewDraft("2025-03-03").WithEndDate("2025-03-20").WithDate("2025-03-10")
	if draft.EndDate != "2025-03-20" {
		t.Fatalf("expected later end date untouched, got %q", draft.EndDate)
	}
}

func TestWithEndDateSnapsBack(t *testing.T) {
	draft := NewDraft("2025-03-10").WithEndDate("2025-03-03")
	if draft.EndDate != "2025-03-10" {
		t.Fatalf("expected end date snapped to start, got %q", draft.EndDate)
	}

	cleared := NewDraft("2025-03-10").WithEndDate("")
	if cleared.EndDate != "2025-03-10" {
		t.Fatalf("expected cleared end date reset to start, got %q", cleared.EndDate)
	}
}

func TestWithAllDayClearsTimes(t *testing.T) {
	draft := NewDraft("2025-03-03").WithTimes("10:00", "11:00").WithAllDay(true)
	if draft.StartTime != "" || draft.EndTime != "" {
		t.Fatalf("expected times cleared, got %q/%q", draft.StartTime, draft.EndTime)
	}
}

func TestWithWeeklyTogglesUntil(t *testing.T) {
	draft := NewDraft("2025-03-03")
	draft.WeeklyUntil = ""
	draft = draft.WithWeekly(true)
	if draft.WeeklyUntil != "2025-03-03" {
		t.Fatalf("expected repetition end seeded, got %q", draft.WeeklyUntil)
	}

	draft = draft.WithWeekly(false)
	if draft.WeeklyUntil != "" {
		t.Fatalf("expected repetition end cleared, got %q", draft.WeeklyUntil)
	}
}
