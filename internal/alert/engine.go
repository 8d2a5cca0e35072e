// Package alert evaluates spending conditions against the ledger and
// delivers at most one notification per user, condition and month.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"afinance/internal/config"
	"afinance/internal/core"
	"afinance/internal/storage"
)

// Alert kinds as persisted in the de-duplication table. Category kinds
// carry the category name after the prefix.
const (
	KindNegativeBalance = "negative_balance"
	KindMonthlyLimit    = "monthly_limit"

	categoryWarningPrefix  = "category_warning:"
	categoryExceededPrefix = "category_exceeded:"
)

// CategoryWarningKind returns the de-duplication key for the approaching
// threshold of a category.
func CategoryWarningKind(category string) string {
	return categoryWarningPrefix + category
}

// CategoryExceededKind returns the de-duplication key for a blown
// category limit.
func CategoryExceededKind(category string) string {
	return categoryExceededPrefix + category
}

// Notifier delivers a rendered alert to a user. Delivery failures do not
// affect the alert record: once marked sent, an alert is never retried.
type Notifier interface {
	Send(ctx context.Context, userID int64, text string) error
}

// Engine checks alert conditions and fires notifications. All evaluation
// happens at an explicit as-of time so sweeps are reproducible.
type Engine struct {
	store    *storage.Store
	notifier Notifier
	cfg      *config.Config

	// Warn fraction in basis points, so threshold comparisons stay in
	// integer arithmetic.
	warnBasisPoints int64
}

func New(store *storage.Store, notifier Notifier, cfg *config.Config) *Engine {
	return &Engine{
		store:           store,
		notifier:        notifier,
		cfg:             cfg,
		warnBasisPoints: int64(math.Round(cfg.WarnFraction * 10_000)),
	}
}

// Sweep evaluates every enabled condition for every known user. Per-user
// failures are logged and do not stop the sweep.
func (e *Engine) Sweep(ctx context.Context, asOf time.Time) error {
	users, err := e.store.Users(ctx)
	if err != nil {
		return fmt.Errorf("listing users for alert sweep: %w", err)
	}

	for _, userID := range users {
		if err := e.checkUser(ctx, userID, asOf); err != nil {
			slog.ErrorContext(ctx, "alert sweep failed for user",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (e *Engine) checkUser(ctx context.Context, userID int64, asOf time.Time) error {
	if err := e.checkNegativeBalance(ctx, userID, asOf); err != nil {
		return err
	}
	if err := e.checkMonthlyLimit(ctx, userID, asOf); err != nil {
		return err
	}
	if !e.cfg.AlertCategoryLimits {
		return nil
	}
	for category := range e.cfg.CategoryLimits {
		if err := e.CheckCategory(ctx, userID, category, asOf); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) checkNegativeBalance(ctx context.Context, userID int64, asOf time.Time) error {
	if !e.cfg.AlertNegativeBalance {
		return nil
	}

	balance, err := e.store.RunningBalance(ctx, userID, nil)
	if err != nil {
		return fmt.Errorf("computing running balance: %w", err)
	}
	if balance >= 0 {
		return nil
	}

	period := core.PeriodOf(asOf, e.cfg.Location).String()
	text := fmt.Sprintf(
		"🚨 *Alerta: saldo acumulado negativo*\n\n"+
			"💼 Saldo: %s\n"+
			"💡 Revise os gastos do mês e priorize cobrir o saldo.",
		core.Money{Cents: balance}.BRL())
	return e.fire(ctx, userID, KindNegativeBalance, period, text)
}

func (e *Engine) checkMonthlyLimit(ctx context.Context, userID int64, asOf time.Time) error {
	if !e.cfg.AlertMonthlyLimit || e.cfg.MonthlyLimitCents <= 0 {
		return nil
	}

	p := core.PeriodOf(asOf, e.cfg.Location)
	totals, err := e.store.MonthlyTotals(ctx, userID, p)
	if err != nil {
		return fmt.Errorf("computing monthly totals: %w", err)
	}
	if totals.ExpenseCents < e.cfg.MonthlyLimitCents {
		return nil
	}

	text := fmt.Sprintf(
		"⚠️ *Alerta: limite mensal de gastos atingido*\n\n"+
			"💸 Gastos no mês: %s\n"+
			"🎯 Limite configurado: %s",
		core.Money{Cents: totals.ExpenseCents}.BRL(),
		core.Money{Cents: e.cfg.MonthlyLimitCents}.BRL())
	return e.fire(ctx, userID, KindMonthlyLimit, p.String(), text)
}

// CheckCategory evaluates the limit conditions of a single category, as
// done after each recorded expense. An exceeded limit suppresses the
// approaching warning for the same pass.
func (e *Engine) CheckCategory(ctx context.Context, userID int64, category string, asOf time.Time) error {
	if !e.cfg.AlertCategoryLimits {
		return nil
	}
	limit, ok := e.cfg.CategoryLimits[category]
	if !ok || limit <= 0 {
		return nil
	}

	p := core.PeriodOf(asOf, e.cfg.Location)
	spent, err := e.store.CategoryTotal(ctx, userID, category, p)
	if err != nil {
		return fmt.Errorf("computing category total for %q: %w", category, err)
	}

	if spent >= limit {
		text := fmt.Sprintf(
			"⚠️ *Alerta: limite da categoria estourado*\n\n"+
				"📌 Categoria: %s\n"+
				"💸 Gasto no mês: %s\n"+
				"🎯 Limite: %s",
			category,
			core.Money{Cents: spent}.BRL(),
			core.Money{Cents: limit}.BRL())
		return e.fire(ctx, userID, CategoryExceededKind(category), p.String(), text)
	}

	if spent*10_000 >= limit*e.warnBasisPoints {
		pct := float64(spent) / float64(limit) * 100
		text := fmt.Sprintf(
			"📢 *Aviso: você está chegando no limite da categoria*\n\n"+
				"📌 Categoria: %s\n"+
				"💸 Gasto no mês: %s (%.0f%%)\n"+
				"🎯 Limite: %s",
			category,
			core.Money{Cents: spent}.BRL(),
			pct,
			core.Money{Cents: limit}.BRL())
		return e.fire(ctx, userID, CategoryWarningKind(category), p.String(), text)
	}

	return nil
}

// fire records the alert and, only if it was not already recorded for
// this period, delivers it. Delivery errors are logged and swallowed so
// a flaky notifier never causes a resend.
func (e *Engine) fire(ctx context.Context, userID int64, kind, period, text string) error {
	inserted, err := e.store.MarkAlertSent(ctx, userID, kind, period)
	if err != nil {
		return fmt.Errorf("recording alert %q: %w", kind, err)
	}
	if !inserted {
		slog.DebugContext(ctx, "alert already sent",
			slog.Int64("user_id", userID),
			slog.String("kind", kind),
			slog.String("period", period))
		return nil
	}

	slog.InfoContext(ctx, "alert fired",
		slog.Int64("user_id", userID),
		slog.String("kind", kind),
		slog.String("period", period))

	if err := e.notifier.Send(ctx, userID, text); err != nil {
		slog.WarnContext(ctx, "alert delivery failed",
			slog.Int64("user_id", userID),
			slog.String("kind", kind),
			slog.String("error", err.Error()))
	}
	return nil
}
