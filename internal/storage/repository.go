package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendlog/internal/core"

	_ "modernc.org/sqlite"
)

const createdAtLayout = "2006-01-02 15:04:05"

// ErrNotFound is returned when no expense matches the given (id, owner) pair.
var ErrNotFound = errors.New("expense not found")

// ListFilter restricts ListExpenses results. Zero values mean "no bound".
type ListFilter struct {
	// Search is matched as a case-insensitive substring against category,
	// payment method and notes.
	Search string
	// From and To are inclusive calendar date bounds.
	From core.Date
	To   core.Date
}

// SQLiteRepository is the expense ledger store. Every query and mutation
// predicate includes the owner email; cross-owner access is structurally
// impossible.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite serializes writers anyway; a single pooled connection also keeps
	// in-memory databases coherent across statements.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateExpense validates and persists a new record, returning its assigned
// id. Nothing is written when validation fails.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, rec core.ExpenseRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	createdAt := time.Now().UTC().Format(createdAtLayout)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_email, category, amount, payment_method, date, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Owner, string(rec.Category), rec.Amount.InexactFloat64(),
		string(rec.PaymentMethod), rec.Date.ISO(), rec.Notes, createdAt)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", id,
		"owner", rec.Owner,
		"category", rec.Category,
		"amount", rec.Amount.String(),
		"date", rec.Date.ISO())

	return id, nil
}

// UpdateExpense replaces the mutable fields of the record matching
// (rec.ID, rec.Owner). It reports false when validation fails or no row
// matches; id, owner and created_at are never touched.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, rec core.ExpenseRecord) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET category=?, amount=?, payment_method=?, date=?, notes=?
		 WHERE id=? AND user_email=?`,
		string(rec.Category), rec.Amount.InexactFloat64(), string(rec.PaymentMethod),
		rec.Date.ISO(), rec.Notes, rec.ID, rec.Owner)
	if err != nil {
		return false, fmt.Errorf("update expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	slog.InfoContext(ctx, "Expense updated", "expense_id", rec.ID, "owner", rec.Owner)
	return true, nil
}

// DeleteExpense removes the record matching (id, owner). Deleting a record
// that does not exist or is not owned is silently a no-op; the returned
// flag reports whether a row was actually removed.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64, owner string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id=? AND user_email=?`, id, owner)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", id, "owner", owner)
	return true, nil
}

// GetExpense retrieves a single record by (id, owner). Returns ErrNotFound
// when no row matches.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64, owner string) (*core.ExpenseRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_email, category, amount, payment_method, date, notes, created_at
		 FROM expenses WHERE id=? AND user_email=?`, id, owner)

	rec, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return rec, nil
}

// ListExpenses returns the owner's records matching the filter, ordered by
// date descending. An empty result is a nil slice, not an error.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, owner string, f ListFilter) ([]core.ExpenseRecord, error) {
	query := `SELECT id, user_email, category, amount, payment_method, date, notes, created_at
		 FROM expenses WHERE user_email=?`
	args := []any{owner}

	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + s + "%"
		query += ` AND (category LIKE ? OR payment_method LIKE ? OR notes LIKE ?)`
		args = append(args, pattern, pattern, pattern)
	}
	if !f.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.From.ISO())
	}
	if !f.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.To.ISO())
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var records []core.ExpenseRecord
	for rows.Next() {
		rec, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*core.ExpenseRecord, error) {
	var (
		rec       core.ExpenseRecord
		category  string
		payment   string
		amount    float64
		dateStr   string
		notes     sql.NullString
		createdAt string
	)

	if err := row.Scan(&rec.ID, &rec.Owner, &category, &amount, &payment, &dateStr, &notes, &createdAt); err != nil {
		return nil, err
	}

	rec.Category = core.Category(category)
	rec.PaymentMethod = core.PaymentMethod(payment)
	rec.Amount = decimal.NewFromFloat(amount).Round(2)
	rec.Notes = notes.String

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	rec.Date = date

	if t, err := time.Parse(createdAtLayout, createdAt); err == nil {
		rec.CreatedAt = t
	}

	return &rec, nil
}
