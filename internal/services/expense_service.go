// Package services orchestrates ledger mutations with best-effort event
// publishing for the spreadsheet backup worker.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/storage"
)

// Store is the expense ledger contract the service builds on. The SQLite
// repository satisfies it; tests substitute fakes.
type Store interface {
	CreateExpense(ctx context.Context, rec core.ExpenseRecord) (int64, error)
	UpdateExpense(ctx context.Context, rec core.ExpenseRecord) (bool, error)
	DeleteExpense(ctx context.Context, id int64, owner string) (bool, error)
	GetExpense(ctx context.Context, id int64, owner string) (*core.ExpenseRecord, error)
	ListExpenses(ctx context.Context, owner string, f storage.ListFilter) ([]core.ExpenseRecord, error)
}

// Publisher emits expense event messages. Nil disables publishing.
type Publisher interface {
	PublishExpenseEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error
	Close() error
}

// ExpenseService is the single entry point for ledger operations. Every
// mutation goes to the store first; the event publish is best-effort and
// never fails the request.
type ExpenseService struct {
	store     Store
	publisher Publisher
}

func NewExpenseService(store Store, publisher Publisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

// Create validates and persists a new record, then announces it.
func (s *ExpenseService) Create(ctx context.Context, rec core.ExpenseRecord) (int64, error) {
	id, err := s.store.CreateExpense(ctx, rec)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, id, rec.Owner, amqp.EventCreated)
	return id, nil
}

// Update replaces the mutable fields of (rec.ID, rec.Owner). The returned
// flag is authoritative: false means nothing changed.
func (s *ExpenseService) Update(ctx context.Context, rec core.ExpenseRecord) (bool, error) {
	ok, err := s.store.UpdateExpense(ctx, rec)
	if err != nil || !ok {
		return ok, err
	}

	s.publish(ctx, rec.ID, rec.Owner, amqp.EventUpdated)
	return true, nil
}

// Delete removes (id, owner); deleting a missing record is a silent no-op
// and publishes nothing.
func (s *ExpenseService) Delete(ctx context.Context, id int64, owner string) error {
	deleted, err := s.store.DeleteExpense(ctx, id, owner)
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}

	s.publish(ctx, id, owner, amqp.EventDeleted)
	return nil
}

// Get retrieves one owned record.
func (s *ExpenseService) Get(ctx context.Context, id int64, owner string) (*core.ExpenseRecord, error) {
	return s.store.GetExpense(ctx, id, owner)
}

// List retrieves the owner's records matching the filter, date descending.
func (s *ExpenseService) List(ctx context.Context, owner string, f storage.ListFilter) ([]core.ExpenseRecord, error) {
	return s.store.ListExpenses(ctx, owner, f)
}

func (s *ExpenseService) publish(ctx context.Context, id int64, owner string, kind amqp.EventKind) {
	if s.publisher == nil {
		return
	}

	msg := amqp.NewExpenseEventMessage(id, owner, kind)
	if err := s.publisher.PublishExpenseEvent(ctx, msg); err != nil {
		// The record is already safe in SQLite; the backup stream catches
		// up on the next event.
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"expense_id", id,
			"kind", kind,
			"error", err)
	}
}

// Close closes the publisher, if any. The store is owned by the caller.
func (s *ExpenseService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}
