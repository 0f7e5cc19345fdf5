// Package storage is the SQLite entry store. The schema is managed by the
// embedded migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"societyfund/internal/core"
	"societyfund/internal/store"
)

// timeLayout is fixed width so that text ordering is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	if err := RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w: %w", core.ErrStoreUnavailable, err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w: %w", core.ErrStoreUnavailable, err)
	}

	slog.Info("SQLite repository ready", "path", dbPath)
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

const fundColumns = "id, name, block, unit, amount_cents, status, comment"

func (r *SQLiteRepository) ListFunds(ctx context.Context) ([]core.FundEntry, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+fundColumns+" FROM funds ORDER BY block, unit")
	if err != nil {
		return nil, unavailable("list funds", err)
	}
	defer rows.Close()

	var out []core.FundEntry
	for rows.Next() {
		e, err := scanFund(rows)
		if err != nil {
			return nil, unavailable("scan fund", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list funds", err)
	}
	core.SortFunds(out)
	return out, nil
}

func (r *SQLiteRepository) GetFund(ctx context.Context, id string) (core.FundEntry, error) {
	return getFund(ctx, r.db, id)
}

func (r *SQLiteRepository) InsertFund(ctx context.Context, e core.FundEntry) (core.FundEntry, error) {
	e.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO funds ("+fundColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Name, string(e.Block), e.Unit, e.Amount.Cents, string(e.Status), e.Comment)
	if err != nil {
		return core.FundEntry{}, unavailable("insert fund", err)
	}
	slog.InfoContext(ctx, "Fund entry saved to SQLite", "id", e.ID, "block", e.Block, "amount_cents", e.Amount.Cents)
	return e, nil
}

func (r *SQLiteRepository) UpdateFund(ctx context.Context, id string, p core.FundPatch) (core.FundEntry, error) {
	var updated core.FundEntry
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getFund(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = p.Apply(current)
		_, err = tx.ExecContext(ctx,
			`UPDATE funds SET name = ?, block = ?, unit = ?, amount_cents = ?, status = ?, comment = ?,
			 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			updated.Name, string(updated.Block), updated.Unit, updated.Amount.Cents, string(updated.Status), updated.Comment, id)
		if err != nil {
			return unavailable("update fund", err)
		}
		return nil
	})
	return updated, err
}

func (r *SQLiteRepository) DeleteFund(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "funds", "fund", id)
}

const expenseColumns = "id, details, amount_cents, spent_at"

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.ExpenseEntry, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+expenseColumns+" FROM expenses ORDER BY spent_at DESC")
	if err != nil {
		return nil, unavailable("list expenses", err)
	}
	defer rows.Close()

	var out []core.ExpenseEntry
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, unavailable("scan expense", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list expenses", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.ExpenseEntry, error) {
	return getExpense(ctx, r.db, id)
}

func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	e.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?)",
		e.ID, e.Details, e.Amount.Cents, e.Date.UTC().Format(timeLayout))
	if err != nil {
		return core.ExpenseEntry{}, unavailable("insert expense", err)
	}
	slog.InfoContext(ctx, "Expense entry saved to SQLite", "id", e.ID, "amount_cents", e.Amount.Cents)
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id string, p core.ExpensePatch) (core.ExpenseEntry, error) {
	var updated core.ExpenseEntry
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getExpense(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = p.Apply(current)
		_, err = tx.ExecContext(ctx,
			"UPDATE expenses SET details = ?, amount_cents = ?, spent_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			updated.Details, updated.Amount.Cents, updated.Date.UTC().Format(timeLayout), id)
		if err != nil {
			return unavailable("update expense", err)
		}
		return nil
	})
	return updated, err
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "expenses", "expense", id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getFund(ctx context.Context, q querier, id string) (core.FundEntry, error) {
	e, err := scanFund(q.QueryRowContext(ctx, "SELECT "+fundColumns+" FROM funds WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.FundEntry{}, fmt.Errorf("fund %q: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.FundEntry{}, unavailable("get fund", err)
	}
	return e, nil
}

func getExpense(ctx context.Context, q querier, id string) (core.ExpenseEntry, error) {
	e, err := scanExpense(q.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseEntry{}, fmt.Errorf("expense %q: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.ExpenseEntry{}, unavailable("get expense", err)
	}
	return e, nil
}

func scanFund(s scanner) (core.FundEntry, error) {
	var (
		e             core.FundEntry
		block, status string
	)
	if err := s.Scan(&e.ID, &e.Name, &block, &e.Unit, &e.Amount.Cents, &status, &e.Comment); err != nil {
		return core.FundEntry{}, err
	}
	e.Block = core.Block(block)
	e.Status = core.Status(status)
	return e, nil
}

func scanExpense(s scanner) (core.ExpenseEntry, error) {
	var (
		e       core.ExpenseEntry
		spentAt string
	)
	if err := s.Scan(&e.ID, &e.Details, &e.Amount.Cents, &spentAt); err != nil {
		return core.ExpenseEntry{}, err
	}
	t, err := time.Parse(timeLayout, spentAt)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("parse spent_at %q: %w", spentAt, err)
	}
	e.Date = core.Date{Time: t}
	return e, nil
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table, kind, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return unavailable("delete "+kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("delete "+kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStoreUnavailable, err)
}
