// Package storetest holds the behaviour every store.Store implementation
// must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyfund/internal/core"
	"societyfund/internal/store"
)

// Run exercises s with CRUD round trips. s must start empty.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, s.Ping(ctx))
	})

	t.Run("funds", func(t *testing.T) {
		seed := []core.FundEntry{
			{Name: "Guard", Block: core.BlockOther, Amount: core.Money{Cents: 20000}, Status: core.StatusUnpaid},
			{Name: "Meera", Block: core.BlockB, Unit: "201", Amount: core.Money{Cents: 70000}, Status: core.StatusPaid},
			{Name: "Asha", Block: core.BlockA, Unit: "101", Amount: core.Money{Cents: 50000}, Status: core.StatusPaid, Comment: "cash"},
			{Name: "Kirana", Block: core.BlockShop, Unit: "12", Amount: core.Money{Cents: 100000}, Status: core.StatusPaid},
		}
		ids := make([]string, len(seed))
		for i, e := range seed {
			got, err := s.InsertFund(ctx, e)
			require.NoError(t, err)
			require.NotEmpty(t, got.ID)
			ids[i] = got.ID
		}

		list, err := s.ListFunds(ctx)
		require.NoError(t, err)
		require.Len(t, list, 4)
		assert.Equal(t, []string{"Asha", "Meera", "Kirana", "Guard"},
			[]string{list[0].Name, list[1].Name, list[2].Name, list[3].Name})
		assert.Equal(t, "cash", list[0].Comment)

		got, err := s.GetFund(ctx, ids[1])
		require.NoError(t, err)
		assert.Equal(t, "201", got.Unit)
		assert.Equal(t, int64(70000), got.Amount.Cents)

		status := core.StatusUnpaid
		amount := core.Money{Cents: 75050}
		updated, err := s.UpdateFund(ctx, ids[1], core.FundPatch{Status: &status, Amount: &amount})
		require.NoError(t, err)
		assert.Equal(t, core.StatusUnpaid, updated.Status)
		assert.Equal(t, int64(75050), updated.Amount.Cents)
		assert.Equal(t, "Meera", updated.Name)

		reread, err := s.GetFund(ctx, ids[1])
		require.NoError(t, err)
		assert.Equal(t, updated, reread)

		_, err = s.UpdateFund(ctx, "missing-id", core.FundPatch{Status: &status})
		assert.ErrorIs(t, err, core.ErrNotFound)

		require.NoError(t, s.DeleteFund(ctx, ids[0]))
		assert.ErrorIs(t, s.DeleteFund(ctx, ids[0]), core.ErrNotFound)
		_, err = s.GetFund(ctx, ids[0])
		assert.ErrorIs(t, err, core.ErrNotFound)

		list, err = s.ListFunds(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})

	t.Run("expenses", func(t *testing.T) {
		day := func(d int) core.Date {
			return core.Date{Time: time.Date(2025, 10, d, 9, 30, 0, 0, time.UTC)}
		}
		older, err := s.InsertExpense(ctx, core.ExpenseEntry{Details: "Decor", Amount: core.Money{Cents: 30000}, Date: day(1)})
		require.NoError(t, err)
		newer, err := s.InsertExpense(ctx, core.ExpenseEntry{Details: "Food", Amount: core.Money{Cents: 40000}, Date: day(5)})
		require.NoError(t, err)

		list, err := s.ListExpenses(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)
		assert.True(t, list[1].Date.Equal(day(1).Time))

		details := "Decor and lights"
		updated, err := s.UpdateExpense(ctx, older.ID, core.ExpensePatch{Details: &details})
		require.NoError(t, err)
		assert.Equal(t, details, updated.Details)
		assert.Equal(t, int64(30000), updated.Amount.Cents)

		require.NoError(t, s.DeleteExpense(ctx, older.ID))
		_, err = s.GetExpense(ctx, older.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = s.UpdateExpense(ctx, older.ID, core.ExpensePatch{Details: &details})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}
