package sheets

import (
	"context"
	"sync"
)

// MemoryAppender keeps backup rows in memory. Used in tests and when no
// spreadsheet is configured for local development.
type MemoryAppender struct {
	mu   sync.Mutex
	rows []BackupRow
}

var _ Appender = (*MemoryAppender)(nil)

func NewMemoryAppender() *MemoryAppender {
	return &MemoryAppender{}
}

func (m *MemoryAppender) AppendBackupRow(_ context.Context, row BackupRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, row)
	return nil
}

func (m *MemoryAppender) AppendBackupRows(_ context.Context, rows []BackupRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rows...)
	return nil
}

// Rows returns a copy of everything appended so far.
func (m *MemoryAppender) Rows() []BackupRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BackupRow, len(m.rows))
	copy(out, m.rows)
	return out
}
