// Package store defines the persistence ports for fund and expense entries.
package store

import (
	"context"

	"societyfund/internal/core"
)

// Ports for entry persistence. Implementations return errors wrapping
// core.ErrNotFound for unknown identifiers and core.ErrStoreUnavailable for
// connection or query failures.
type (
	FundStore interface {
		// ListFunds returns every entry ordered by block enumeration, then unit.
		ListFunds(ctx context.Context) ([]core.FundEntry, error)
		GetFund(ctx context.Context, id string) (core.FundEntry, error)
		// InsertFund stores e and returns it with its assigned identifier.
		InsertFund(ctx context.Context, e core.FundEntry) (core.FundEntry, error)
		UpdateFund(ctx context.Context, id string, p core.FundPatch) (core.FundEntry, error)
		DeleteFund(ctx context.Context, id string) error
	}

	ExpenseStore interface {
		// ListExpenses returns every entry newest first.
		ListExpenses(ctx context.Context) ([]core.ExpenseEntry, error)
		GetExpense(ctx context.Context, id string) (core.ExpenseEntry, error)
		InsertExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error)
		UpdateExpense(ctx context.Context, id string, p core.ExpensePatch) (core.ExpenseEntry, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	Store interface {
		FundStore
		ExpenseStore
		Ping(ctx context.Context) error
	}
)
