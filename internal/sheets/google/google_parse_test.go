package google

import (
	"testing"
	"time"

	"climbreg/internal/core"
)

func TestParseRowsEmptyAndHeaderOnly(t *testing.T) {
	if got := parseRows(nil); len(got) != 0 {
		t.Fatalf("nil values should parse to empty slice, got %d", len(got))
	}
	header := [][]interface{}{{"timestamp", "name", "email", "category", "amount"}}
	if got := parseRows(header); len(got) != 0 {
		t.Fatalf("header-only sheet should parse to empty slice, got %d", len(got))
	}
}

func TestParseRows(t *testing.T) {
	values := [][]interface{}{
		{"timestamp", "name", "email", "category", "amount"},
		{"2026-04-01T10:30:00Z", "Lynn Hill", "lynn@example.com", "Women", "25"},
		{"2026-04-01T11:00:00Z", "Tommy C", "tommy@example.com", "Men", "42.50"},
	}
	regs := parseRows(values)
	if len(regs) != 2 {
		t.Fatalf("want 2 registrations, got %d", len(regs))
	}

	first := regs[0]
	wantTS := time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC)
	if !first.Timestamp.Equal(wantTS) {
		t.Errorf("timestamp = %v, want %v", first.Timestamp, wantTS)
	}
	if first.Name != "Lynn Hill" || first.Email != "lynn@example.com" {
		t.Errorf("unexpected identity fields: %+v", first)
	}
	if first.Category != core.CategoryWomen {
		t.Errorf("category = %q", first.Category)
	}
	if !first.AmountValid || first.Amount.Cents != 2500 {
		t.Errorf("amount = %+v", first.Amount)
	}

	if regs[1].Amount.Cents != 4250 {
		t.Errorf("decimal amount = %d, want 4250", regs[1].Amount.Cents)
	}
}

func TestParseRowsCoercionFailureKeepsRecord(t *testing.T) {
	values := [][]interface{}{
		{"timestamp", "name", "email", "category", "amount"},
		{"2026-04-01T10:30:00Z", "Bo", "bo@example.com", "Men", "twenty"},
		{"not-a-timestamp", "Ada", "ada@example.com", "Women", "30"},
	}
	regs := parseRows(values)
	if len(regs) != 2 {
		t.Fatalf("want 2 registrations, got %d", len(regs))
	}
	if regs[0].AmountValid {
		t.Error("non-numeric amount must be marked invalid")
	}
	if regs[0].Name != "Bo" {
		t.Error("record with bad amount must be kept")
	}
	if !regs[1].Timestamp.IsZero() {
		t.Error("unparseable timestamp should stay zero")
	}
	if !regs[1].AmountValid || regs[1].Amount.Cents != 3000 {
		t.Errorf("amount = %+v", regs[1].Amount)
	}
}

func TestParseRowsShortAndBlankRows(t *testing.T) {
	values := [][]interface{}{
		{"timestamp", "name", "email", "category", "amount"},
		{},
		{"2026-04-01T10:30:00Z", "Bo"},
	}
	regs := parseRows(values)
	if len(regs) != 1 {
		t.Fatalf("want 1 registration, got %d", len(regs))
	}
	r := regs[0]
	if r.Email != "" || r.Category != "" || r.AmountValid {
		t.Errorf("short row should leave trailing fields empty: %+v", r)
	}
}
