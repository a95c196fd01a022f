package recurrence

import (
	"strings"
	"testing"
	"time"
)

func TestBuildRuleDaily(t *testing.T) {
	until := time.Date(2025, time.March, 31, 10, 0, 0, 0, time.UTC)

	rule, err := BuildRule(TypeDaily, nil, until)
	if err != nil {
		t.Fatalf("BuildRule returned error: %v", err)
	}
	if rule != "FREQ=DAILY;UNTIL=20250331T100000Z" {
		t.Fatalf("unexpected rule %q", rule)
	}
}

func TestBuildRuleWeekly(t *testing.T) {
	// Local end instant in a non-UTC zone; UNTIL must be the UTC conversion.
	cet := time.FixedZone("CET", 60*60)
	until := time.Date(2025, time.March, 31, 10, 0, 0, 0, cet)

	rule, err := BuildRule(TypeWeekly, []int{1, 5}, until)
	if err != nil {
		t.Fatalf("BuildRule returned error: %v", err)
	}

	if !strings.Contains(rule, "FREQ=WEEKLY") {
		t.Fatalf("rule %q missing FREQ=WEEKLY", rule)
	}
	if !strings.Contains(rule, "BYDAY=TU,SA") {
		t.Fatalf("rule %q missing BYDAY=TU,SA", rule)
	}

	untilPart := rule[strings.Index(rule, "UNTIL=")+len("UNTIL="):]
	if !strings.HasSuffix(untilPart, "Z") {
		t.Fatalf("UNTIL %q must end in Z", untilPart)
	}
	if strings.ContainsAny(untilPart, "-:") {
		t.Fatalf("UNTIL %q must not contain punctuation", untilPart)
	}
	if untilPart != "20250331T090000Z" {
		t.Fatalf("expected UTC-shifted UNTIL, got %q", untilPart)
	}
}

func TestBuildRuleWeeklyEmptyWeekdaySet(t *testing.T) {
	until := time.Date(2025, time.March, 31, 10, 0, 0, 0, time.UTC)

	rule, err := BuildRule(TypeWeekly, nil, until)
	if err != nil {
		t.Fatalf("BuildRule returned error: %v", err)
	}
	if !strings.Contains(rule, "BYDAY=;") {
		t.Fatalf("expected empty BYDAY segment to be preserved, got %q", rule)
	}
}

func TestBuildRuleWeekdayMapping(t *testing.T) {
	until := time.Date(2025, time.March, 31, 10, 0, 0, 0, time.UTC)

	rule, err := BuildRule(TypeWeekly, []int{0, 1, 2, 3, 4, 5, 6}, until)
	if err != nil {
		t.Fatalf("BuildRule returned error: %v", err)
	}
	if !strings.Contains(rule, "BYDAY=MO,TU,WE,TH,FR,SA,SU") {
		t.Fatalf("unexpected weekday mapping in %q", rule)
	}

	if _, err := BuildRule(TypeWeekly, []int{7}, until); err == nil {
		t.Fatalf("expected out-of-range weekday to fail")
	}
}

func TestBuildRuleRejectsNonRepeatingTypes(t *testing.T) {
	until := time.Date(2025, time.March, 31, 10, 0, 0, 0, time.UTC)

	if _, err := BuildRule(TypeNone, nil, until); err != ErrNoRecurrence {
		t.Fatalf("expected ErrNoRecurrence, got %v", err)
	}
	if _, err := BuildRule(Type("monatlich"), nil, until); err != ErrNoRecurrence {
		t.Fatalf("expected ErrNoRecurrence for unknown type, got %v", err)
	}
}

func TestTypeValid(t *testing.T) {
	for _, typ := range []Type{TypeNone, TypeDaily, TypeWeekly} {
		if !typ.Valid() {
			t.Fatalf("expected %q to be valid", typ)
		}
	}
	if Type("jährlich").Valid() {
		t.Fatalf("expected unknown type to be invalid")
	}
}
