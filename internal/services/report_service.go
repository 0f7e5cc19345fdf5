package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"societyfund/internal/core"
	"societyfund/internal/export"
	"societyfund/internal/metrics"
	"societyfund/internal/report"
	"societyfund/internal/sheets"
	"societyfund/internal/store"
)

// ErrPublisherDisabled is returned by Publish when no spreadsheet is
// configured.
var ErrPublisherDisabled = errors.New("spreadsheet publishing is not configured")

// BlockSummary is the statistics of one non-empty block.
type BlockSummary struct {
	Block core.Block
	core.GroupStats
}

// FundSummary is the overall and per-block statistics of a scope.
type FundSummary struct {
	Scope   report.Scope
	Overall core.GroupStats
	Blocks  []BlockSummary
}

// BalanceSummary compares paid collections with expenses.
type BalanceSummary struct {
	Collection   core.Money
	Expenses     core.Money
	Balance      core.Money
	ExpenseCount int
}

// ReportService loads the full entry lists for every request and turns them
// into summaries or export files. Nothing is cached between calls.
type ReportService struct {
	store     store.Store
	builder   *report.Builder
	renderer  *export.Renderer
	publisher sheets.Publisher
}

// NewReportService builds the service. publisher may be nil.
func NewReportService(s store.Store, b *report.Builder, r *export.Renderer, publisher sheets.Publisher) *ReportService {
	return &ReportService{store: s, builder: b, renderer: r, publisher: publisher}
}

func (s *ReportService) Summary(ctx context.Context, scope report.Scope) (FundSummary, error) {
	funds, err := s.store.ListFunds(ctx)
	if err != nil {
		return FundSummary{}, fmt.Errorf("list funds: %w", err)
	}
	if !scope.All() {
		funds = core.FilterBlock(funds, scope.Block)
	}

	out := FundSummary{Scope: scope, Overall: core.Stats(funds)}
	for _, g := range core.GroupByBlock(funds) {
		out.Blocks = append(out.Blocks, BlockSummary{Block: g.Block, GroupStats: core.Stats(g.Entries)})
	}
	return out, nil
}

func (s *ReportService) Balance(ctx context.Context) (BalanceSummary, error) {
	funds, expenses, err := s.loadAll(ctx)
	if err != nil {
		return BalanceSummary{}, err
	}
	return BalanceSummary{
		Collection:   core.TotalByStatus(funds, core.StatusPaid),
		Expenses:     core.TotalAmount(expenses),
		Balance:      core.Balance(funds, expenses),
		ExpenseCount: len(expenses),
	}, nil
}

// FundExport renders the fund collection report for scope.
func (s *ReportService) FundExport(ctx context.Context, scope report.Scope, format export.Format) (export.File, error) {
	funds, err := s.store.ListFunds(ctx)
	if err != nil {
		return export.File{}, fmt.Errorf("list funds: %w", err)
	}
	return s.render(ctx, s.builder.FundPlan(funds, scope), format)
}

// SummaryExport renders the single-page summary report.
func (s *ReportService) SummaryExport(ctx context.Context, format export.Format) (export.File, error) {
	funds, err := s.store.ListFunds(ctx)
	if err != nil {
		return export.File{}, fmt.Errorf("list funds: %w", err)
	}
	return s.render(ctx, s.builder.SummaryPlan(funds), format)
}

// BalanceExport renders the collection-versus-expenses report.
func (s *ReportService) BalanceExport(ctx context.Context, format export.Format) (export.File, error) {
	funds, expenses, err := s.loadAll(ctx)
	if err != nil {
		return export.File{}, err
	}
	return s.render(ctx, s.builder.BalancePlan(funds, expenses), format)
}

// PublishEnabled reports whether Publish has somewhere to write.
func (s *ReportService) PublishEnabled() bool {
	return s.publisher != nil
}

// Publish mirrors the fund and balance reports into the configured
// spreadsheet.
func (s *ReportService) Publish(ctx context.Context) (err error) {
	if s.publisher == nil {
		return ErrPublisherDisabled
	}
	defer func() { metrics.CountPublish(err) }()

	funds, expenses, err := s.loadAll(ctx)
	if err != nil {
		return err
	}
	plans := []report.Plan{
		s.builder.FundPlan(funds, report.AllBlocks),
		s.builder.BalancePlan(funds, expenses),
	}
	if err := s.publisher.Publish(ctx, plans...); err != nil {
		return fmt.Errorf("publish reports: %w", err)
	}
	slog.InfoContext(ctx, "Reports published to spreadsheet", "funds", len(funds), "expenses", len(expenses))
	return nil
}

// loadAll fetches both lists concurrently.
func (s *ReportService) loadAll(ctx context.Context) ([]core.FundEntry, []core.ExpenseEntry, error) {
	var (
		funds    []core.FundEntry
		expenses []core.ExpenseEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if funds, err = s.store.ListFunds(gctx); err != nil {
			return fmt.Errorf("list funds: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if expenses, err = s.store.ListExpenses(gctx); err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return funds, expenses, nil
}

func (s *ReportService) render(ctx context.Context, plan report.Plan, format export.Format) (export.File, error) {
	start := time.Now()
	f, err := s.renderer.Render(plan, format)
	metrics.ObserveExport(string(plan.Kind), string(format), time.Since(start), err)
	if err != nil {
		slog.ErrorContext(ctx, "Export failed", "report", plan.Kind, "scope", plan.Scope.String(), "format", format, "error", err)
		return export.File{}, err
	}
	slog.InfoContext(ctx, "Export rendered", "report", plan.Kind, "scope", plan.Scope.String(), "file_name", f.Name, "bytes", len(f.Data))
	return f, nil
}
