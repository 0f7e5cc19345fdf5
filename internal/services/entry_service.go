package services

import (
	"context"
	"fmt"
	"time"

	"societyfund/internal/core"
	applog "societyfund/internal/log"
	"societyfund/internal/metrics"
	"societyfund/internal/store"
)

// Entry kinds, as carried in change notifications and metrics.
const (
	KindFund    = "fund"
	KindExpense = "expense"
)

// ChangeNotifier announces entry changes to other processes.
type ChangeNotifier interface {
	NotifyEntryChanged(ctx context.Context, kind, op, id string) error
}

// EntryService validates fund and expense writes before they reach the
// store and announces every successful change. A failed announcement is
// logged and never fails the write.
type EntryService struct {
	store    store.Store
	notifier ChangeNotifier
	log      *applog.StructuredLogger
	now      func() time.Time
}

// NewEntryService builds the service. notifier may be nil.
func NewEntryService(s store.Store, notifier ChangeNotifier) *EntryService {
	return &EntryService{
		store:    s,
		notifier: notifier,
		log:      applog.NewStructuredLogger(applog.Default(applog.ComponentStore)),
		now:      time.Now,
	}
}

func (s *EntryService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *EntryService) ListFunds(ctx context.Context) ([]core.FundEntry, error) {
	entries, err := s.store.ListFunds(ctx)
	metrics.CountStoreOperation(KindFund, applog.OpList, err)
	if err != nil {
		return nil, fmt.Errorf("list funds: %w", err)
	}
	return entries, nil
}

func (s *EntryService) GetFund(ctx context.Context, id string) (core.FundEntry, error) {
	e, err := s.store.GetFund(ctx, id)
	metrics.CountStoreOperation(KindFund, applog.OpRead, err)
	return e, err
}

// CreateFund applies the Unpaid default, validates and stores e.
func (s *EntryService) CreateFund(ctx context.Context, e core.FundEntry) (core.FundEntry, error) {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return core.FundEntry{}, err
	}

	saved, err := s.store.InsertFund(ctx, e)
	metrics.CountStoreOperation(KindFund, applog.OpCreate, err)
	if err != nil {
		return core.FundEntry{}, fmt.Errorf("create fund: %w", err)
	}

	s.changed(ctx, applog.OpCreate, KindFund, saved.ID, saved.Amount)
	return saved, nil
}

// UpdateFund validates the patch on its own and merged onto the stored
// entry before writing it.
func (s *EntryService) UpdateFund(ctx context.Context, id string, p core.FundPatch) (core.FundEntry, error) {
	if err := p.Validate(); err != nil {
		return core.FundEntry{}, err
	}
	current, err := s.store.GetFund(ctx, id)
	if err != nil {
		return core.FundEntry{}, err
	}
	if err := p.Apply(current).Validate(); err != nil {
		return core.FundEntry{}, err
	}
	if p.IsEmpty() {
		return current, nil
	}

	updated, err := s.store.UpdateFund(ctx, id, p)
	metrics.CountStoreOperation(KindFund, applog.OpUpdate, err)
	if err != nil {
		return core.FundEntry{}, err
	}

	s.changed(ctx, applog.OpUpdate, KindFund, id, updated.Amount)
	return updated, nil
}

func (s *EntryService) DeleteFund(ctx context.Context, id string) error {
	err := s.store.DeleteFund(ctx, id)
	metrics.CountStoreOperation(KindFund, applog.OpDelete, err)
	if err != nil {
		return err
	}
	s.changed(ctx, applog.OpDelete, KindFund, id, core.Money{})
	return nil
}

func (s *EntryService) ListExpenses(ctx context.Context) ([]core.ExpenseEntry, error) {
	entries, err := s.store.ListExpenses(ctx)
	metrics.CountStoreOperation(KindExpense, applog.OpList, err)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return entries, nil
}

func (s *EntryService) GetExpense(ctx context.Context, id string) (core.ExpenseEntry, error) {
	e, err := s.store.GetExpense(ctx, id)
	metrics.CountStoreOperation(KindExpense, applog.OpRead, err)
	return e, err
}

// CreateExpense dates undated expenses with the current time.
func (s *EntryService) CreateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	e = e.Normalize()
	if e.Date.IsZero() {
		e.Date = core.Date{Time: s.now().UTC()}
	}
	if err := e.Validate(); err != nil {
		return core.ExpenseEntry{}, err
	}

	saved, err := s.store.InsertExpense(ctx, e)
	metrics.CountStoreOperation(KindExpense, applog.OpCreate, err)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("create expense: %w", err)
	}

	s.changed(ctx, applog.OpCreate, KindExpense, saved.ID, saved.Amount)
	return saved, nil
}

func (s *EntryService) UpdateExpense(ctx context.Context, id string, p core.ExpensePatch) (core.ExpenseEntry, error) {
	if err := p.Validate(); err != nil {
		return core.ExpenseEntry{}, err
	}
	current, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	if err := p.Apply(current).Validate(); err != nil {
		return core.ExpenseEntry{}, err
	}
	if p.IsEmpty() {
		return current, nil
	}

	updated, err := s.store.UpdateExpense(ctx, id, p)
	metrics.CountStoreOperation(KindExpense, applog.OpUpdate, err)
	if err != nil {
		return core.ExpenseEntry{}, err
	}

	s.changed(ctx, applog.OpUpdate, KindExpense, id, updated.Amount)
	return updated, nil
}

func (s *EntryService) DeleteExpense(ctx context.Context, id string) error {
	err := s.store.DeleteExpense(ctx, id)
	metrics.CountStoreOperation(KindExpense, applog.OpDelete, err)
	if err != nil {
		return err
	}
	s.changed(ctx, applog.OpDelete, KindExpense, id, core.Money{})
	return nil
}

func (s *EntryService) changed(ctx context.Context, op, kind, id string, amount core.Money) {
	s.log.LogEntryChanged(ctx, op, kind, id, amount.Cents)
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyEntryChanged(ctx, kind, op, id); err != nil {
		s.log.LogError(ctx, "Failed to publish entry change", err, applog.ErrorTypeInternal, applog.OpNotify,
			applog.NewFields().WithEntry(kind, id, amount.Cents))
	}
}
