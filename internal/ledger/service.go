// Package ledger is the recording surface of the engine: it classifies
// inbound entries, appends them to the store, applies the automatic salary
// companion rule and announces expenses to the alert worker.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"afinance/internal/amqp"
	"afinance/internal/category"
	"afinance/internal/core"
	"afinance/internal/storage"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 50

	companionDescription = "Investimento automático"
)

type Service struct {
	store      *storage.Store
	classifier *category.Classifier
	events     *amqp.Client // optional; nil disables event publishing

	autoInvestCents    int64
	investmentCategory string
}

func NewService(store *storage.Store, classifier *category.Classifier, events *amqp.Client, autoInvestCents int64, investmentCategory string) *Service {
	return &Service{
		store:              store,
		classifier:         classifier,
		events:             events,
		autoInvestCents:    autoInvestCents,
		investmentCategory: investmentCategory,
	}
}

// RecordResult reports what one Record call appended. Companion is the
// automatic investment expense of a salary entry, sharing the entry's
// correlation tag. CompanionErr is set when the companion insert failed:
// the primary entry is still recorded, the result is partial, nothing is
// rolled back.
type RecordResult struct {
	Transaction  core.Transaction
	Companion    *core.Transaction
	CompanionErr error
}

// Record validates, classifies and appends a new entry. asOf becomes the
// entry's occurred_at and decides its period. Storage failure is fatal for
// the call and propagated untouched.
func (s *Service) Record(ctx context.Context, userID int64, kind core.Kind, amountCents int64, description string, asOf time.Time) (RecordResult, error) {
	if !kind.Valid() {
		return RecordResult{}, core.ErrInvalidKind
	}
	if amountCents <= 0 {
		return RecordResult{}, core.ErrInvalidAmount
	}

	classifyText := description
	if kind == core.KindSalary {
		// Salary arrives as its own kind, with the command verb already
		// stripped by the transport. Put the verb back into the
		// classification text so the income taxonomy's salary keywords
		// select the salary category, keeping the outcome data-driven.
		classifyText = "salario " + description
	}
	cat := s.classifier.Classify(kind, classifyText)

	tx := core.Transaction{
		UserID:      userID,
		Kind:        kind,
		Amount:      core.Money{Cents: amountCents},
		Category:    cat,
		Description: description,
		OccurredAt:  asOf,
		Tag:         newTag(),
	}

	id, err := s.store.Append(ctx, tx)
	if err != nil {
		return RecordResult{}, fmt.Errorf("record transaction: %w", err)
	}
	tx.ID = id
	result := RecordResult{Transaction: tx}

	if kind == core.KindExpense {
		s.publishExpenseRecorded(ctx, id, userID, cat)
	}

	if kind == core.KindSalary && s.autoInvestCents > 0 {
		companion, err := s.recordCompanion(ctx, tx)
		if err != nil {
			// The salary entry stands; the companion is best-effort.
			slog.ErrorContext(ctx, "Companion investment insert failed",
				"user_id", userID,
				"salary_id", id,
				"error", err)
			result.CompanionErr = err
		} else {
			result.Companion = companion
		}
	}

	return result, nil
}

// recordCompanion appends the automatic investment expense tied to a
// salary entry. The invested amount never exceeds the salary that funds
// it.
func (s *Service) recordCompanion(ctx context.Context, salary core.Transaction) (*core.Transaction, error) {
	amount := s.autoInvestCents
	if salary.Amount.Cents < amount {
		amount = salary.Amount.Cents
	}

	companion := core.Transaction{
		UserID:      salary.UserID,
		Kind:        core.KindExpense,
		Amount:      core.Money{Cents: amount},
		Category:    s.investmentCategory,
		Description: companionDescription,
		OccurredAt:  salary.OccurredAt,
		Tag:         salary.Tag,
	}

	id, err := s.store.Append(ctx, companion)
	if err != nil {
		return nil, err
	}
	companion.ID = id

	s.publishExpenseRecorded(ctx, id, companion.UserID, companion.Category)

	return &companion, nil
}

// Recent lists the user's latest transactions, newest first. The limit is
// clamped to [1, 50]; out-of-range values fall back to the default of 10.
func (s *Service) Recent(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	if limit < 1 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.store.Recent(ctx, userID, limit)
}

// Delete removes the user's own transaction by id and reports whether a
// row was deleted.
func (s *Service) Delete(ctx context.Context, userID, id int64) (bool, error) {
	return s.store.Delete(ctx, userID, id)
}

func (s *Service) publishExpenseRecorded(ctx context.Context, transactionID, userID int64, cat string) {
	if s.events == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping expense event")
		return
	}
	if err := s.events.PublishExpenseRecorded(ctx, transactionID, userID, cat); err != nil {
		// The entry is durable; a lost event only delays the category
		// check until the daily sweep.
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"transaction_id", transactionID,
			"error", err)
	}
}

// Close closes storage and the event channel.
func (s *Service) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}

// newTag builds the short correlation tag echoed back to the user, e.g.
// "#A1f3cD". Salary and companion rows share one tag.
func newTag() string {
	return fmt.Sprintf("#A%05xD", rand.Uint32()&0xFFFFF)
}
