// Package storage is the durable ledger: an append-only transactions table
// plus the alerts_sent table whose uniqueness constraint is the alert
// de-duplication mechanism.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"afinance/internal/core"

	_ "modernc.org/sqlite"
)

type Store struct {
	db                 *sql.DB
	loc                *time.Location
	investmentCategory string
}

// New opens (creating if necessary) the SQLite database at dbPath and runs
// the embedded migrations. loc fixes the timezone of all period
// calculations; investmentCategory selects the expense subset reported as
// the investment subtotal.
func New(dbPath string, loc *time.Location, investmentCategory string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, loc: loc, investmentCategory: investmentCategory}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Location returns the timezone all period keys are computed in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Append inserts a new immutable transaction and returns its assigned id.
func (s *Store) Append(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	period := core.PeriodOf(t.OccurredAt, s.loc).String()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, kind, amount_cents, category, description, occurred_at, period, tag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, string(t.Kind), t.Amount.Cents, t.Category, t.Description,
		t.OccurredAt.Unix(), period, t.Tag,
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"user_id", t.UserID,
		"kind", t.Kind,
		"category", t.Category,
		"amount_cents", t.Amount.Cents,
		"period", period)

	return id, nil
}

// Users returns every user id with at least one transaction.
func (s *Store) Users(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM transactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// MonthlyTotals sums the user's month. A month with no records yields all
// zeros, never an error. The investment subtotal is a subset of the expense
// total, not an addend.
func (s *Store) MonthlyTotals(ctx context.Context, userID int64, p core.Period) (core.Totals, error) {
	var t core.Totals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN kind IN ('entrada', 'salario') THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'gasto' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'gasto' AND category = ? THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE user_id = ? AND period = ?`,
		s.investmentCategory, userID, p.String(),
	).Scan(&t.IncomeCents, &t.ExpenseCents, &t.InvestmentCents)
	if err != nil {
		return core.Totals{}, fmt.Errorf("monthly totals: %w", err)
	}
	return t, nil
}

// TopCategories groups the month's transactions of the given kind class by
// category, ordered by total descending with category name as the
// deterministic tie-breaker. limit <= 0 returns all groups. The result is
// unfiltered; callers exclude the investment category when they want
// discretionary spending only.
func (s *Store) TopCategories(ctx context.Context, userID int64, p core.Period, kind core.Kind, limit int) ([]core.CategoryTotal, error) {
	kindFilter := `kind = 'gasto'`
	if kind.IsIncome() {
		kindFilter = `kind IN ('entrada', 'salario')`
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents) AS total
		FROM transactions
		WHERE user_id = ? AND period = ? AND `+kindFilter+`
		GROUP BY category
		ORDER BY total DESC, category ASC
		LIMIT ?`,
		userID, p.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// CategoryTotal returns the month's expense total for one category.
func (s *Store) CategoryTotal(ctx context.Context, userID int64, category string, p core.Period) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND period = ? AND kind = 'gasto' AND category = ?`,
		userID, p.String(), category,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("category total: %w", err)
	}
	return total, nil
}

// RunningBalance is the signed sum of all income minus all expense, up to
// and including asOf when given, unrestricted when asOf is nil.
func (s *Store) RunningBalance(ctx context.Context, userID int64, asOf *time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN kind IN ('entrada', 'salario') THEN amount_cents ELSE -amount_cents END), 0)
		FROM transactions
		WHERE user_id = ?`
	args := []any{userID}
	if asOf != nil {
		query += ` AND occurred_at <= ?`
		args = append(args, asOf.Unix())
	}

	var balance int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&balance); err != nil {
		return 0, fmt.Errorf("running balance: %w", err)
	}
	return balance, nil
}

// Recent returns the user's latest transactions, newest first.
func (s *Store) Recent(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, amount_cents, category, description, occurred_at, tag
		FROM transactions
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()
	return s.scanTransactions(rows)
}

// TransactionsInMonth returns the user's transactions of one month, newest
// first.
func (s *Store) TransactionsInMonth(ctx context.Context, userID int64, p core.Period) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, amount_cents, category, description, occurred_at, tag
		FROM transactions
		WHERE user_id = ? AND period = ?
		ORDER BY id DESC`,
		userID, p.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("transactions in month: %w", err)
	}
	defer rows.Close()
	return s.scanTransactions(rows)
}

// MonthlySummaries returns one row per recorded month, newest first.
func (s *Store) MonthlySummaries(ctx context.Context, userID int64) ([]core.MonthlySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			period,
			COALESCE(SUM(CASE WHEN kind IN ('entrada', 'salario') THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'gasto' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'gasto' AND category = ? THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE user_id = ?
		GROUP BY period
		ORDER BY period DESC`,
		s.investmentCategory, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("monthly summaries: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlySummary
	for rows.Next() {
		var (
			periodKey string
			ms        core.MonthlySummary
		)
		if err := rows.Scan(&periodKey, &ms.Totals.IncomeCents, &ms.Totals.ExpenseCents, &ms.Totals.InvestmentCents); err != nil {
			return nil, fmt.Errorf("scan monthly summary: %w", err)
		}
		p, err := core.ParsePeriod(periodKey)
		if err != nil {
			return nil, err
		}
		ms.Period = p
		out = append(out, ms)
	}
	return out, rows.Err()
}

// Delete removes a transaction iff it exists and belongs to userID. It
// never deletes another user's row, even when the id exists.
func (s *Store) Delete(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// MarkAlertSent records that an alert fired for (user, kind, period) and
// reports whether this call was the first. The UNIQUE constraint makes the
// insert-if-absent race-safe: when two evaluations race, only one insert
// wins and the loser is a no-op.
func (s *Store) MarkAlertSent(ctx context.Context, userID int64, kind, period string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO alerts_sent (user_id, kind, period)
		VALUES (?, ?, ?)`,
		userID, kind, period,
	)
	if err != nil {
		return false, fmt.Errorf("mark alert sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// AlertSent reports whether an alert was already recorded for the key.
func (s *Store) AlertSent(ctx context.Context, userID int64, kind, period string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM alerts_sent
		WHERE user_id = ? AND kind = ? AND period = ?
		LIMIT 1`,
		userID, kind, period,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("alert sent lookup: %w", err)
	}
	return true, nil
}

func (s *Store) scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			t        core.Transaction
			kind     string
			occurred int64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &kind, &t.Amount.Cents, &t.Category, &t.Description, &occurred, &t.Tag); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.Kind(kind)
		t.OccurredAt = time.Unix(occurred, 0).In(s.loc)
		out = append(out, t)
	}
	return out, rows.Err()
}
