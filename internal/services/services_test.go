package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyfund/internal/core"
	"societyfund/internal/export"
	"societyfund/internal/report"
	"societyfund/internal/store/memory"
)

type recordedChange struct{ kind, op, id string }

type fakeNotifier struct {
	mu      sync.Mutex
	changes []recordedChange
	err     error
}

func (n *fakeNotifier) NotifyEntryChanged(_ context.Context, kind, op, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, recordedChange{kind, op, id})
	return n.err
}

type fakePublisher struct {
	plans []report.Plan
	err   error
}

func (p *fakePublisher) Publish(_ context.Context, plans ...report.Plan) error {
	p.plans = append(p.plans, plans...)
	return p.err
}

func money(rupees int64) core.Money { return core.Money{Cents: rupees * 100} }

func TestEntryService_CreateFundDefaultsAndNotifies(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewEntryService(memory.New(), n)
	ctx := context.Background()

	saved, err := svc.CreateFund(ctx, core.FundEntry{Name: " Asha ", Block: core.BlockA, Unit: "101", Amount: money(500)})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Asha", saved.Name)
	assert.Equal(t, core.StatusUnpaid, saved.Status)

	require.Len(t, n.changes, 1)
	assert.Equal(t, recordedChange{KindFund, "create", saved.ID}, n.changes[0])
}

func TestEntryService_CreateFundOtherWithoutUnit(t *testing.T) {
	svc := NewEntryService(memory.New(), nil)
	_, err := svc.CreateFund(context.Background(), core.FundEntry{Name: "Guard", Block: core.BlockOther, Amount: money(50), Status: core.StatusPaid})
	require.NoError(t, err)
}

func TestEntryService_ValidationBeforeStore(t *testing.T) {
	n := &fakeNotifier{}
	st := memory.New()
	svc := NewEntryService(st, n)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry core.FundEntry
		field string
	}{
		{"missing unit", core.FundEntry{Name: "X", Block: core.BlockB, Amount: money(700)}, "flatNo"},
		{"zero amount", core.FundEntry{Name: "X", Block: core.BlockB, Unit: "1"}, "amount"},
		{"unknown block", core.FundEntry{Name: "X", Block: "Z", Unit: "1", Amount: money(1)}, "block"},
		{"missing name", core.FundEntry{Block: core.BlockB, Unit: "1", Amount: money(1)}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateFund(ctx, tt.entry)
			require.ErrorIs(t, err, core.ErrValidation)
			var fe *core.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}

	list, err := st.ListFunds(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, n.changes)
}

func TestEntryService_UpdateFund(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewEntryService(memory.New(), n)
	ctx := context.Background()

	saved, err := svc.CreateFund(ctx, core.FundEntry{Name: "Meera", Block: core.BlockB, Unit: "201", Amount: money(700)})
	require.NoError(t, err)

	paid := core.StatusPaid
	updated, err := svc.UpdateFund(ctx, saved.ID, core.FundPatch{Status: &paid})
	require.NoError(t, err)
	assert.Equal(t, core.StatusPaid, updated.Status)
	assert.Equal(t, "Meera", updated.Name)

	// Moving to a lettered block requires a unit on the merged entry.
	other := core.BlockOther
	empty := ""
	guard, err := svc.CreateFund(ctx, core.FundEntry{Name: "Guard", Block: other, Unit: empty, Amount: money(50)})
	require.NoError(t, err)
	blockC := core.BlockC
	_, err = svc.UpdateFund(ctx, guard.ID, core.FundPatch{Block: &blockC})
	require.ErrorIs(t, err, core.ErrValidation)

	assert.Len(t, n.changes, 3)
}

func TestEntryService_UpdateMissingIsNotFound(t *testing.T) {
	st := memory.New()
	svc := NewEntryService(st, nil)
	ctx := context.Background()

	name := "ghost"
	_, err := svc.UpdateFund(ctx, "missing", core.FundPatch{Name: &name})
	require.ErrorIs(t, err, core.ErrNotFound)

	list, err := st.ListFunds(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "no entry may be created by a failed update")

	err = svc.DeleteExpense(ctx, "missing")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestEntryService_NotifierFailureDoesNotFailWrite(t *testing.T) {
	n := &fakeNotifier{err: errors.New("broker down")}
	svc := NewEntryService(memory.New(), n)

	_, err := svc.CreateExpense(context.Background(), core.ExpenseEntry{Details: "Tent", Amount: money(300)})
	require.NoError(t, err)
	assert.Len(t, n.changes, 1)
}

func TestEntryService_CreateExpenseDefaultsDate(t *testing.T) {
	svc := NewEntryService(memory.New(), nil)
	fixed := time.Date(2024, 10, 5, 18, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	saved, err := svc.CreateExpense(context.Background(), core.ExpenseEntry{Details: "Lights", Amount: money(1200)})
	require.NoError(t, err)
	assert.True(t, saved.Date.Equal(fixed))

	amount := core.Money{}
	_, err = svc.UpdateExpense(context.Background(), saved.ID, core.ExpensePatch{Amount: &amount})
	require.ErrorIs(t, err, core.ErrValidation)
}

func seedReportStore(t *testing.T) *memory.Store {
	t.Helper()
	st := memory.New()
	ctx := context.Background()
	for _, e := range []core.FundEntry{
		{Name: "Asha", Block: core.BlockA, Unit: "101", Amount: money(500), Status: core.StatusPaid},
		{Name: "Ravi", Block: core.BlockA, Unit: "102", Amount: money(500), Status: core.StatusUnpaid},
		{Name: "Meera", Block: core.BlockB, Unit: "201", Amount: money(700), Status: core.StatusPaid},
	} {
		_, err := st.InsertFund(ctx, e)
		require.NoError(t, err)
	}
	_, err := st.InsertExpense(ctx, core.ExpenseEntry{Details: "Decoration", Amount: money(400), Date: core.NewDate(2024, 10, 3)})
	require.NoError(t, err)
	return st
}

func newReportService(st *memory.Store, p *fakePublisher) *ReportService {
	svc := NewReportService(st, report.NewBuilder("Society Fund"), export.NewRenderer("Rs", "society"), nil)
	if p != nil {
		svc.publisher = p
	}
	return svc
}

func TestReportService_SummaryAndBalance(t *testing.T) {
	svc := newReportService(seedReportStore(t), nil)
	ctx := context.Background()

	sum, err := svc.Summary(ctx, report.AllBlocks)
	require.NoError(t, err)
	assert.Equal(t, int64(170000), sum.Overall.Total.Cents)
	assert.Equal(t, int64(120000), sum.Overall.Collected.Cents)
	require.Len(t, sum.Blocks, 2)
	assert.Equal(t, core.BlockA, sum.Blocks[0].Block)

	blockB, err := svc.Summary(ctx, report.Scope{Block: core.BlockB})
	require.NoError(t, err)
	assert.Equal(t, 1, blockB.Overall.Count)
	require.Len(t, blockB.Blocks, 1)

	bal, err := svc.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), bal.Collection.Cents)
	assert.Equal(t, int64(40000), bal.Expenses.Cents)
	assert.Equal(t, int64(80000), bal.Balance.Cents)
	assert.Equal(t, 1, bal.ExpenseCount)
}

func TestReportService_Exports(t *testing.T) {
	svc := newReportService(seedReportStore(t), nil)
	ctx := context.Background()

	f, err := svc.FundExport(ctx, report.Scope{Block: core.BlockA}, export.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "society-fund-block-A.pdf", f.Name)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.NotEmpty(t, f.Data)

	f, err = svc.FundExport(ctx, report.AllBlocks, export.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "society-fund.xlsx", f.Name)

	f, err = svc.SummaryExport(ctx, export.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "society-fund-summary.pdf", f.Name)

	f, err = svc.BalanceExport(ctx, export.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "society-balance-report.xlsx", f.Name)
}

func TestReportService_Publish(t *testing.T) {
	disabled := newReportService(seedReportStore(t), nil)
	assert.False(t, disabled.PublishEnabled())
	require.ErrorIs(t, disabled.Publish(context.Background()), ErrPublisherDisabled)

	p := &fakePublisher{}
	svc := newReportService(seedReportStore(t), p)
	require.True(t, svc.PublishEnabled())
	require.NoError(t, svc.Publish(context.Background()))
	require.Len(t, p.plans, 2)
	assert.Equal(t, report.KindFund, p.plans[0].Kind)
	assert.Equal(t, report.KindBalance, p.plans[1].Kind)

	p.err = errors.New("quota exceeded")
	require.Error(t, svc.Publish(context.Background()))
}
