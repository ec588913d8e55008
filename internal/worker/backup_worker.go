// Package worker turns expense change events into spreadsheet backup rows.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/sheets"
	"spendlog/internal/storage"
)

// Reader is the slice of the ledger store the worker needs.
type Reader interface {
	GetExpense(ctx context.Context, id int64, owner string) (*core.ExpenseRecord, error)
	ListExpenses(ctx context.Context, owner string, filter storage.ListFilter) ([]core.ExpenseRecord, error)
}

// BackupWorker consumes expense events and appends one backup row per event.
// Deletions become tombstone rows; creates and updates re-read the record so
// the row reflects the current state, not the state at publish time.
// Snapshots append in batches of batchSize rows per call.
type BackupWorker struct {
	store     Reader
	appender  sheets.Appender
	batchSize int
}

func NewBackupWorker(store Reader, appender sheets.Appender, batchSize int) *BackupWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BackupWorker{store: store, appender: appender, batchSize: batchSize}
}

// HandleEvent processes a single expense event. Returning an error causes the
// consumer to requeue the message, so transient failures retry and permanent
// ones are logged and dropped here.
func (w *BackupWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	slog.InfoContext(ctx, "Processing expense event",
		"id", msg.ID,
		"owner", msg.Owner,
		"kind", msg.Kind)

	row := sheets.BackupRow{
		ExpenseID: msg.ID,
		Owner:     msg.Owner,
		Event:     string(msg.Kind),
		Timestamp: msg.Timestamp.UTC().Format(time.RFC3339),
	}

	if msg.Kind != amqp.EventDeleted {
		rec, err := w.store.GetExpense(ctx, msg.ID, msg.Owner)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			// Record was deleted between publish and consume. The delete
			// event that follows will write the tombstone.
			slog.WarnContext(ctx, "Expense gone before backup, skipping",
				"id", msg.ID, "owner", msg.Owner)
			return nil
		case err != nil:
			return fmt.Errorf("get expense %d: %w", msg.ID, err)
		}
		row.Record = rec
	}

	if err := w.appender.AppendBackupRow(ctx, row); err != nil {
		return fmt.Errorf("append backup row: %w", err)
	}

	slog.InfoContext(ctx, "Backup row appended",
		"id", msg.ID,
		"kind", msg.Kind)
	return nil
}

// StartupSnapshot appends a full snapshot of an owner's ledger. Used to seed
// a fresh backup sheet or recover from missed events while the worker was down.
func (w *BackupWorker) StartupSnapshot(ctx context.Context, owner string) error {
	records, err := w.store.ListExpenses(ctx, owner, storage.ListFilter{})
	if err != nil {
		return fmt.Errorf("list expenses for snapshot: %w", err)
	}

	if len(records) == 0 {
		slog.InfoContext(ctx, "No expenses to snapshot", "owner", owner)
		return nil
	}

	rows := make([]sheets.BackupRow, 0, len(records))
	now := time.Now().UTC().Format(time.RFC3339)
	for i := range records {
		rec := &records[i]
		rows = append(rows, sheets.BackupRow{
			ExpenseID: rec.ID,
			Owner:     rec.Owner,
			Event:     "snapshot",
			Record:    rec,
			Timestamp: now,
		})
	}

	appended := 0
	for start := 0; start < len(rows); start += w.batchSize {
		end := start + w.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		if err := w.appender.AppendBackupRows(ctx, batch); err != nil {
			slog.ErrorContext(ctx, "Failed to append snapshot batch",
				"owner", owner, "offset", start, "size", len(batch), "error", err)
			continue
		}
		appended += len(batch)
	}

	slog.InfoContext(ctx, "Startup snapshot completed",
		"owner", owner,
		"total", len(records),
		"appended", appended)
	return nil
}
