package core

// Totals are the month aggregates of a single user. InvestmentCents is the
// slice of ExpenseCents that went to the investment category: a subset, not
// an addend.
type Totals struct {
	IncomeCents     int64
	ExpenseCents    int64
	InvestmentCents int64
}

// BalanceCents is income minus expense for the month.
func (t Totals) BalanceCents() int64 {
	return t.IncomeCents - t.ExpenseCents
}

func (t Totals) IsZero() bool {
	return t.IncomeCents == 0 && t.ExpenseCents == 0 && t.InvestmentCents == 0
}

// CategoryTotal is one row of a per-category ranking.
type CategoryTotal struct {
	Category string
	Cents    int64
}

// Report is a rendered-ready monthly summary. Empty means the month has no
// records at all; an empty report is still well-formed.
type Report struct {
	Period        Period
	Totals        Totals
	BalanceCents  int64
	TopCategories []CategoryTotal
	Empty         bool
}

// MonthlySummary is one month of a user's history, newest first.
type MonthlySummary struct {
	Period Period
	Totals Totals
}

// PercentChange is a month-over-month relative delta. The previous month
// having no value makes any change unquantifiable: Infinite is a distinct
// sentinel, never folded into Value.
type PercentChange struct {
	Infinite bool
	Value    float64 // valid only when !Infinite
}

// Delta compares one metric across two periods: Abs = valueA - valueB.
type Delta struct {
	AbsCents int64
	Pct      PercentChange
}

// DeltaOf computes the delta of a metric between period A (current) and
// period B (reference). B == 0 with a nonzero A yields the infinite
// sentinel; both zero is reported as a plain 0% (no change).
func DeltaOf(a, b int64) Delta {
	d := Delta{AbsCents: a - b}
	if b == 0 {
		if a != 0 {
			d.Pct = PercentChange{Infinite: true}
		}
		return d
	}
	d.Pct = PercentChange{Value: float64(a-b) / float64(b) * 100}
	return d
}

// Comparison holds the per-metric deltas between two months.
type Comparison struct {
	PeriodA, PeriodB Period
	TotalsA, TotalsB Totals
	Income           Delta
	Expense          Delta
	Investment       Delta
	Balance          Delta
}
