// Package sheets appends expense snapshots to an external spreadsheet so the
// ledger can be rebuilt if the local database is lost.
package sheets

import (
	"context"

	"spendlog/internal/core"
)

// BackupRow is one line of the backup sheet. Deleted expenses carry a
// tombstone row so a restore knows to drop them.
type BackupRow struct {
	ExpenseID int64
	Owner     string
	Event     string
	Record    *core.ExpenseRecord // nil for tombstones
	Timestamp string
}

// Appender writes backup rows. AppendBackupRows writes a batch in one call,
// used by snapshots to keep the request count down. Implementations must be
// safe for use from a single consumer goroutine.
type Appender interface {
	AppendBackupRow(ctx context.Context, row BackupRow) error
	AppendBackupRows(ctx context.Context, rows []BackupRow) error
}
