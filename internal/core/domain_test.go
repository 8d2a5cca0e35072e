package core

import (
	"testing"
	"time"
)

func TestKind(t *testing.T) {
	if !KindSalary.IsIncome() || !KindIncome.IsIncome() {
		t.Fatal("income kinds must count as income")
	}
	if KindExpense.IsIncome() {
		t.Fatal("expense is not income")
	}
	if Kind("outro").Valid() {
		t.Fatal("unknown kind must be invalid")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		UserID:      1,
		Kind:        KindExpense,
		Amount:      Money{Cents: 3550},
		Category:    "Alimentação",
		Description: "almoço",
		OccurredAt:  time.Now(),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Kind: "x", Amount: Money{Cents: 1}, Category: "c"},
		{Kind: KindExpense, Amount: Money{Cents: 0}, Category: "c"},
		{Kind: KindExpense, Amount: Money{Cents: 1}, Category: "  "},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestPeriod(t *testing.T) {
	loc, err := time.LoadLocation("America/Cuiaba")
	if err != nil {
		t.Fatal(err)
	}

	// 2026-02-01 01:00 UTC is still January 31 in Cuiabá (UTC-4).
	p := PeriodOf(time.Date(2026, 2, 1, 1, 0, 0, 0, time.UTC), loc)
	if p.String() != "2026-01" {
		t.Fatalf("expected 2026-01, got %s", p)
	}

	if prev := (Period{Year: 2026, Month: time.January}).Prev(); prev.String() != "2025-12" {
		t.Fatalf("expected 2025-12, got %s", prev)
	}

	parsed, err := ParsePeriod("2026-09")
	if err != nil || parsed.Year != 2026 || parsed.Month != time.September {
		t.Fatalf("parse failed: %v %v", parsed, err)
	}
	if _, err := ParsePeriod("2026/09"); err == nil {
		t.Fatal("expected error for bad period format")
	}
}

func TestDeltaOf(t *testing.T) {
	cases := []struct {
		a, b     int64
		abs      int64
		infinite bool
		pct      float64
	}{
		{200, 100, 100, false, 100},
		{50, 100, -50, false, -50},
		{100, 100, 0, false, 0},
		{200, 0, 200, true, 0},  // infinite increase sentinel
		{-50, 0, -50, true, 0},  // previous zero, any change is unquantifiable
		{0, 0, 0, false, 0},     // no change
	}
	for i, tc := range cases {
		d := DeltaOf(tc.a, tc.b)
		if d.AbsCents != tc.abs || d.Pct.Infinite != tc.infinite {
			t.Fatalf("case %d: got %+v", i, d)
		}
		if !tc.infinite && d.Pct.Value != tc.pct {
			t.Fatalf("case %d: pct %v, want %v", i, d.Pct.Value, tc.pct)
		}
	}
}
