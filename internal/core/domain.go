package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "entrada"
	KindSalary  Kind = "salario"
	KindExpense Kind = "gasto"
)

// FallbackCategory is assigned when no classification rule matches.
const FallbackCategory = "Outros"

type (
	// Kind is the transaction class. Salary is a tagged income: it counts
	// as income everywhere but may trigger an automatic companion expense.
	Kind string

	// Transaction is a single immutable ledger entry. Amounts are always
	// positive; the kind decides the sign in balance arithmetic.
	Transaction struct {
		ID          int64
		UserID      int64
		Kind        Kind
		Amount      Money
		Category    string
		Description string
		OccurredAt  time.Time
		Tag         string // correlation tag shown to the user, e.g. "#A1f3cD"
	}

	// Period is a calendar month in the configured timezone. It keys both
	// monthly aggregation and alert de-duplication.
	Period struct {
		Year  int
		Month time.Month
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
)

func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindSalary, KindExpense:
		return true
	}
	return false
}

// IsIncome reports whether the kind counts on the income side of the balance.
func (k Kind) IsIncome() bool {
	return k == KindIncome || k == KindSalary
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// PeriodOf returns the period containing t in the given location.
func PeriodOf(t time.Time, loc *time.Location) Period {
	local := t.In(loc)
	return Period{Year: local.Year(), Month: local.Month()}
}

// ParsePeriod parses a "YYYY-MM" key.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// String renders the "YYYY-MM" key used in storage and alert de-duplication.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Prev returns the preceding calendar month.
func (p Period) Prev() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Start returns the first instant of the period in loc.
func (p Period) Start(loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}
