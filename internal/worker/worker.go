// Package worker runs the background side of the ledger: the expense
// event consumer, the daily alert sweep and the end-of-month report job.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"afinance/internal/alert"
	"afinance/internal/amqp"
	"afinance/internal/bot"
	"afinance/internal/config"
	"afinance/internal/core"
	"afinance/internal/report"
	"afinance/internal/storage"
)

type Worker struct {
	store    *storage.Store
	alerts   *alert.Engine
	reports  *report.Engine
	notifier alert.Notifier
	events   *amqp.Client // nil when AMQP is disabled
	cfg      *config.Config
}

func New(store *storage.Store, alerts *alert.Engine, reports *report.Engine, notifier alert.Notifier, events *amqp.Client, cfg *config.Config) *Worker {
	return &Worker{
		store:    store,
		alerts:   alerts,
		reports:  reports,
		notifier: notifier,
		events:   events,
		cfg:      cfg,
	}
}

// Run starts every background loop and blocks until ctx is cancelled or
// one of them fails.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.events != nil {
		g.Go(func() error {
			err := w.events.ConsumeExpenseRecorded(ctx, w.HandleExpenseRecorded)
			if err != nil && err != context.Canceled {
				return fmt.Errorf("consuming expense events: %w", err)
			}
			return nil
		})
	} else {
		slog.Info("AMQP disabled, category alerts depend on the daily sweep")
	}

	g.Go(func() error { return w.runDailySweep(ctx) })
	g.Go(func() error { return w.runMonthlyReports(ctx) })

	return g.Wait()
}

// HandleExpenseRecorded reacts to a freshly recorded expense by checking
// the limits of its category.
func (w *Worker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	slog.InfoContext(ctx, "processing expense event",
		slog.Int64("transaction_id", msg.TransactionID),
		slog.Int64("user_id", msg.UserID),
		slog.String("category", msg.Category))

	if err := w.alerts.CheckCategory(ctx, msg.UserID, msg.Category, time.Now()); err != nil {
		return fmt.Errorf("category alert check: %w", err)
	}
	return nil
}

func (w *Worker) runDailySweep(ctx context.Context) error {
	for {
		now := time.Now().In(w.cfg.Location)
		next := nextDailyRun(now, w.cfg.SweepHour, w.cfg.SweepMinute)
		slog.Info("daily alert sweep scheduled", slog.Time("next_run", next))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(next.Sub(now)):
		}

		if err := w.alerts.Sweep(ctx, time.Now()); err != nil {
			slog.Error("daily alert sweep failed", slog.String("error", err.Error()))
		}
	}
}

func (w *Worker) runMonthlyReports(ctx context.Context) error {
	for {
		now := time.Now().In(w.cfg.Location)
		next := nextMonthlyRun(now, w.cfg.ReportHour)
		slog.Info("monthly report job scheduled", slog.Time("next_run", next))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(next.Sub(now)):
		}

		if err := w.SendMonthlyReports(ctx, time.Now()); err != nil {
			slog.Error("monthly report job failed", slog.String("error", err.Error()))
		}
	}
}

// SendMonthlyReports sends every user the report of the month preceding
// asOf. Per-user failures are logged and do not stop the batch.
func (w *Worker) SendMonthlyReports(ctx context.Context, asOf time.Time) error {
	users, err := w.store.Users(ctx)
	if err != nil {
		return fmt.Errorf("listing users for monthly reports: %w", err)
	}

	p := core.PeriodOf(asOf, w.cfg.Location).Prev()
	for _, userID := range users {
		r, err := w.reports.MonthlyReport(ctx, userID, p)
		if err != nil {
			slog.ErrorContext(ctx, "building monthly report",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()))
			continue
		}
		if err := w.notifier.Send(ctx, userID, bot.FormatReport("Relatório Mensal", r)); err != nil {
			slog.WarnContext(ctx, "delivering monthly report",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// nextDailyRun returns the next occurrence of hour:minute strictly after
// now, in now's location.
func nextDailyRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// nextMonthlyRun returns the first day of the next month at the given
// hour, or today's run when now is still before it on day one.
func nextMonthlyRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), 1, hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 1, 0)
	}
	return next
}
