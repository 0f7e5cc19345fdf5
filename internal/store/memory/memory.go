// Package memory is an in-process entry store. Data lives as long as the
// process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"societyfund/internal/core"
	"societyfund/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	funds    map[string]core.FundEntry
	expenses map[string]core.ExpenseEntry
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		funds:    make(map[string]core.FundEntry),
		expenses: make(map[string]core.ExpenseEntry),
	}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) ListFunds(context.Context) ([]core.FundEntry, error) {
	s.mu.RLock()
	out := make([]core.FundEntry, 0, len(s.funds))
	for _, e := range s.funds {
		out = append(out, e)
	}
	s.mu.RUnlock()
	core.SortFunds(out)
	return out, nil
}

func (s *Store) GetFund(_ context.Context, id string) (core.FundEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.funds[id]
	if !ok {
		return core.FundEntry{}, fmt.Errorf("fund %q: %w", id, core.ErrNotFound)
	}
	return e, nil
}

func (s *Store) InsertFund(_ context.Context, e core.FundEntry) (core.FundEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	s.funds[e.ID] = e
	return e, nil
}

func (s *Store) UpdateFund(_ context.Context, id string, p core.FundPatch) (core.FundEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.funds[id]
	if !ok {
		return core.FundEntry{}, fmt.Errorf("fund %q: %w", id, core.ErrNotFound)
	}
	e = p.Apply(e)
	s.funds[id] = e
	return e, nil
}

func (s *Store) DeleteFund(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.funds[id]; !ok {
		return fmt.Errorf("fund %q: %w", id, core.ErrNotFound)
	}
	delete(s.funds, id)
	return nil
}

func (s *Store) ListExpenses(context.Context) ([]core.ExpenseEntry, error) {
	s.mu.RLock()
	out := make([]core.ExpenseEntry, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	s.mu.RUnlock()
	core.SortExpenses(out)
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.ExpenseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.ExpenseEntry{}, fmt.Errorf("expense %q: %w", id, core.ErrNotFound)
	}
	return e, nil
}

func (s *Store) InsertExpense(_ context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, id string, p core.ExpensePatch) (core.ExpenseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.ExpenseEntry{}, fmt.Errorf("expense %q: %w", id, core.ErrNotFound)
	}
	e = p.Apply(e)
	s.expenses[id] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return fmt.Errorf("expense %q: %w", id, core.ErrNotFound)
	}
	delete(s.expenses, id)
	return nil
}
