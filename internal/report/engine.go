// Package report computes monthly summaries, rankings and month-over-month
// comparisons on top of the ledger store.
package report

import (
	"context"
	"fmt"

	"afinance/internal/core"
	"afinance/internal/storage"
)

const topCategoriesLimit = 5

type Engine struct {
	store              *storage.Store
	investmentCategory string
}

func NewEngine(store *storage.Store, investmentCategory string) *Engine {
	return &Engine{store: store, investmentCategory: investmentCategory}
}

// MonthlyReport builds the user's report for one month. A month without
// records yields a well-formed report with the Empty flag set, not an
// error. The top-categories ranking shows discretionary spending: the
// investment category is excluded there but still counted in the totals.
func (e *Engine) MonthlyReport(ctx context.Context, userID int64, p core.Period) (core.Report, error) {
	totals, err := e.store.MonthlyTotals(ctx, userID, p)
	if err != nil {
		return core.Report{}, fmt.Errorf("monthly report: %w", err)
	}

	r := core.Report{
		Period:       p,
		Totals:       totals,
		BalanceCents: totals.BalanceCents(),
		Empty:        totals.IsZero(),
	}
	if r.Empty {
		return r, nil
	}

	// Fetch one extra group so that dropping the investment row still
	// leaves a full ranking.
	groups, err := e.store.TopCategories(ctx, userID, p, core.KindExpense, topCategoriesLimit+1)
	if err != nil {
		return core.Report{}, fmt.Errorf("monthly report: %w", err)
	}
	for _, g := range groups {
		if g.Category == e.investmentCategory {
			continue
		}
		r.TopCategories = append(r.TopCategories, g)
		if len(r.TopCategories) == topCategoriesLimit {
			break
		}
	}

	return r, nil
}

// CompareMonths compares period A (current) against period B (reference),
// metric by metric.
func (e *Engine) CompareMonths(ctx context.Context, userID int64, a, b core.Period) (core.Comparison, error) {
	totalsA, err := e.store.MonthlyTotals(ctx, userID, a)
	if err != nil {
		return core.Comparison{}, fmt.Errorf("compare months: %w", err)
	}
	totalsB, err := e.store.MonthlyTotals(ctx, userID, b)
	if err != nil {
		return core.Comparison{}, fmt.Errorf("compare months: %w", err)
	}

	return core.Comparison{
		PeriodA:    a,
		PeriodB:    b,
		TotalsA:    totalsA,
		TotalsB:    totalsB,
		Income:     core.DeltaOf(totalsA.IncomeCents, totalsB.IncomeCents),
		Expense:    core.DeltaOf(totalsA.ExpenseCents, totalsB.ExpenseCents),
		Investment: core.DeltaOf(totalsA.InvestmentCents, totalsB.InvestmentCents),
		Balance:    core.DeltaOf(totalsA.BalanceCents(), totalsB.BalanceCents()),
	}, nil
}

// CompareLatest compares the user's most recent recorded month against the
// one before it. The second return value reports whether two months of
// history exist; with a single month the comparison holds that month's
// totals and zero deltas against an empty reference.
func (e *Engine) CompareLatest(ctx context.Context, userID int64) (core.Comparison, bool, error) {
	summaries, err := e.store.MonthlySummaries(ctx, userID)
	if err != nil {
		return core.Comparison{}, false, fmt.Errorf("compare latest: %w", err)
	}
	if len(summaries) == 0 {
		return core.Comparison{}, false, nil
	}
	if len(summaries) == 1 {
		cmp, err := e.CompareMonths(ctx, userID, summaries[0].Period, summaries[0].Period.Prev())
		return cmp, false, err
	}
	cmp, err := e.CompareMonths(ctx, userID, summaries[0].Period, summaries[1].Period)
	return cmp, true, err
}

// History returns the user's per-month summaries, newest first.
func (e *Engine) History(ctx context.Context, userID int64) ([]core.MonthlySummary, error) {
	return e.store.MonthlySummaries(ctx, userID)
}

// MonthTransactions lists the user's transactions of one month, newest
// first.
func (e *Engine) MonthTransactions(ctx context.Context, userID int64, p core.Period) ([]core.Transaction, error) {
	return e.store.TransactionsInMonth(ctx, userID, p)
}
