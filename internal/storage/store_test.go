package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"afinance/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	loc, err := time.LoadLocation("America/Cuiaba")
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(filepath.Join(t.TempDir(), "ledger.db"), loc, "Investimento")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustAppend(t *testing.T, s *Store, userID int64, kind core.Kind, cents int64, category string, at time.Time) int64 {
	t.Helper()
	id, err := s.Append(context.Background(), core.Transaction{
		UserID:      userID,
		Kind:        kind,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Description: "test",
		OccurredAt:  at,
		Tag:         "#A123aD",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return id
}

func TestAppendAssignsMonotonicIDs(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	first := mustAppend(t, s, 1, core.KindExpense, 100, "Lazer", now)
	second := mustAppend(t, s, 1, core.KindIncome, 200, "Outros", now)
	if second <= first {
		t.Fatalf("ids must grow: %d then %d", first, second)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Append(context.Background(), core.Transaction{
		UserID: 1, Kind: core.KindExpense, Amount: core.Money{Cents: 0},
		Category: "Lazer", OccurredAt: time.Now(),
	})
	if err == nil {
		t.Fatal("expected validation error for zero amount")
	}

	_, err = s.Append(context.Background(), core.Transaction{
		UserID: 1, Kind: core.KindExpense, Amount: core.Money{Cents: 100},
		Category: "", OccurredAt: time.Now(),
	})
	if err == nil {
		t.Fatal("expected validation error for empty category")
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	users, err := s.Users(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no users, got %v", users)
	}

	mustAppend(t, s, 7, core.KindExpense, 100, "Lazer", now)
	mustAppend(t, s, 7, core.KindExpense, 100, "Lazer", now)
	mustAppend(t, s, 3, core.KindIncome, 100, "Outros", now)

	users, err = s.Users(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0] != 3 || users[1] != 7 {
		t.Fatalf("expected [3 7], got %v", users)
	}
}

func TestMonthlyTotalsInvestmentIsSubset(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 9, 10, 12, 0, 0, 0, s.Location())
	p := core.Period{Year: 2026, Month: time.September}

	mustAppend(t, s, 1, core.KindSalary, 300000, "Salário", at)
	mustAppend(t, s, 1, core.KindIncome, 50000, "Renda Extra", at)
	mustAppend(t, s, 1, core.KindExpense, 80000, "Investimento", at)
	mustAppend(t, s, 1, core.KindExpense, 12000, "Alimentação", at)

	totals, err := s.MonthlyTotals(context.Background(), 1, p)
	if err != nil {
		t.Fatal(err)
	}
	if totals.IncomeCents != 350000 {
		t.Fatalf("income: %d", totals.IncomeCents)
	}
	// Expense already includes the investment slice.
	if totals.ExpenseCents != 92000 {
		t.Fatalf("expense: %d", totals.ExpenseCents)
	}
	if totals.InvestmentCents != 80000 {
		t.Fatalf("investment: %d", totals.InvestmentCents)
	}
	if totals.BalanceCents() != 258000 {
		t.Fatalf("balance: %d", totals.BalanceCents())
	}
}

func TestMonthlyTotalsEmptyMonthIsZero(t *testing.T) {
	s := newTestStore(t)
	totals, err := s.MonthlyTotals(context.Background(), 42, core.Period{Year: 2026, Month: time.January})
	if err != nil {
		t.Fatalf("empty month must not error: %v", err)
	}
	if !totals.IsZero() {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestMonthlyTotalsTimezoneBoundary(t *testing.T) {
	s := newTestStore(t)

	// 2026-10-01 02:00 UTC is 2026-09-30 22:00 in Cuiabá: the expense
	// belongs to September.
	at := time.Date(2026, 10, 1, 2, 0, 0, 0, time.UTC)
	mustAppend(t, s, 1, core.KindExpense, 5000, "Lazer", at)

	sep, err := s.MonthlyTotals(context.Background(), 1, core.Period{Year: 2026, Month: time.September})
	if err != nil {
		t.Fatal(err)
	}
	if sep.ExpenseCents != 5000 {
		t.Fatalf("expected expense in September, got %+v", sep)
	}
	oct, err := s.MonthlyTotals(context.Background(), 1, core.Period{Year: 2026, Month: time.October})
	if err != nil {
		t.Fatal(err)
	}
	if oct.ExpenseCents != 0 {
		t.Fatalf("expected empty October, got %+v", oct)
	}
}

func TestTopCategoriesOrderingAndAdditivity(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 9, 5, 12, 0, 0, 0, s.Location())
	p := core.Period{Year: 2026, Month: time.September}

	mustAppend(t, s, 1, core.KindExpense, 3000, "Alimentação", at)
	mustAppend(t, s, 1, core.KindExpense, 2000, "Alimentação", at)
	mustAppend(t, s, 1, core.KindExpense, 5000, "Transporte", at)
	mustAppend(t, s, 1, core.KindExpense, 1000, "Lazer", at)
	mustAppend(t, s, 1, core.KindIncome, 9000, "Outros", at)

	top, err := s.TopCategories(context.Background(), 1, p, core.KindExpense, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 groups, got %v", top)
	}
	// 5000 ties between Alimentação and Transporte: name ascending wins.
	if top[0].Category != "Alimentação" || top[1].Category != "Transporte" || top[2].Category != "Lazer" {
		t.Fatalf("unexpected order: %v", top)
	}

	// Additivity: the untruncated ranking sums to the expense total.
	totals, err := s.MonthlyTotals(context.Background(), 1, p)
	if err != nil {
		t.Fatal(err)
	}
	var sum int64
	for _, ct := range top {
		sum += ct.Cents
	}
	if sum != totals.ExpenseCents {
		t.Fatalf("ranking sum %d != expense total %d", sum, totals.ExpenseCents)
	}

	// Truncation.
	top2, err := s.TopCategories(context.Background(), 1, p, core.KindExpense, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top2) != 2 {
		t.Fatalf("expected 2 groups, got %v", top2)
	}
}

func TestRunningBalance(t *testing.T) {
	s := newTestStore(t)
	jan := time.Date(2026, 1, 15, 12, 0, 0, 0, s.Location())
	feb := time.Date(2026, 2, 15, 12, 0, 0, 0, s.Location())

	mustAppend(t, s, 1, core.KindSalary, 100000, "Salário", jan)
	mustAppend(t, s, 1, core.KindExpense, 30000, "Mercado", jan)
	mustAppend(t, s, 1, core.KindExpense, 90000, "Moradia", feb)

	balance, err := s.RunningBalance(context.Background(), 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if balance != -20000 {
		t.Fatalf("balance: %d", balance)
	}

	// Consistency with the per-month summaries.
	summaries, err := s.MonthlySummaries(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	var total int64
	for _, ms := range summaries {
		total += ms.Totals.BalanceCents()
	}
	if total != balance {
		t.Fatalf("monthly sum %d != running balance %d", total, balance)
	}

	// Cutoff at end of January excludes the February expense.
	cutoff := time.Date(2026, 1, 31, 23, 59, 59, 0, s.Location())
	balance, err = s.RunningBalance(context.Background(), 1, &cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 70000 {
		t.Fatalf("balance at cutoff: %d", balance)
	}
}

func TestMonthlySummariesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	mustAppend(t, s, 1, core.KindExpense, 1000, "Lazer", time.Date(2025, 12, 5, 12, 0, 0, 0, s.Location()))
	mustAppend(t, s, 1, core.KindExpense, 2000, "Lazer", time.Date(2026, 1, 5, 12, 0, 0, 0, s.Location()))

	summaries, err := s.MonthlySummaries(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 months, got %v", summaries)
	}
	if summaries[0].Period.String() != "2026-01" || summaries[1].Period.String() != "2025-12" {
		t.Fatalf("unexpected order: %v then %v", summaries[0].Period, summaries[1].Period)
	}
}

func TestRecentAndDelete(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	first := mustAppend(t, s, 1, core.KindExpense, 100, "Lazer", now)
	second := mustAppend(t, s, 1, core.KindExpense, 200, "Mercado", now)
	other := mustAppend(t, s, 2, core.KindExpense, 300, "Lazer", now)

	recent, err := s.Recent(context.Background(), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != second || recent[1].ID != first {
		t.Fatalf("unexpected recent list: %+v", recent)
	}

	// A user cannot delete another user's transaction.
	ok, err := s.Delete(context.Background(), 1, other)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("delete must not cross user boundaries")
	}

	ok, err = s.Delete(context.Background(), 1, first)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected deletion")
	}

	// Deleting again is a no-op.
	ok, err = s.Delete(context.Background(), 1, first)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("second delete must report false")
	}
}

func TestMarkAlertSentIsInsertIfAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inserted, err := s.MarkAlertSent(ctx, 1, "monthly_limit", "2026-09")
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Fatal("first mark must insert")
	}

	inserted, err = s.MarkAlertSent(ctx, 1, "monthly_limit", "2026-09")
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Fatal("second mark must be a no-op")
	}

	// Different period or kind resets eligibility.
	if ok, _ := s.MarkAlertSent(ctx, 1, "monthly_limit", "2026-10"); !ok {
		t.Fatal("new period must insert")
	}
	if ok, _ := s.MarkAlertSent(ctx, 1, "category_warning:Lazer", "2026-09"); !ok {
		t.Fatal("new kind must insert")
	}

	sent, err := s.AlertSent(ctx, 1, "monthly_limit", "2026-09")
	if err != nil {
		t.Fatal(err)
	}
	if !sent {
		t.Fatal("AlertSent must see the record")
	}
	sent, err = s.AlertSent(ctx, 2, "monthly_limit", "2026-09")
	if err != nil {
		t.Fatal(err)
	}
	if sent {
		t.Fatal("other user must be unaffected")
	}
}
