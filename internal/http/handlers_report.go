package http

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"societyfund/internal/core"
	"societyfund/internal/export"
	applog "societyfund/internal/log"
	"societyfund/internal/report"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	scope, err := report.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	sum, err := s.reports.Summary(r.Context(), scope)
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}

	out := summaryResponse{
		Scope:   sum.Scope.String(),
		Overall: toStatsResponse(sum.Overall),
		Blocks:  make([]blockStatsResponse, 0, len(sum.Blocks)),
	}
	for _, b := range sum.Blocks {
		out.Blocks = append(out.Blocks, blockStatsResponse{Block: string(b.Block), statsResponse: toStatsResponse(b.GroupStats)})
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := s.reports.Balance(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(balanceResponse{
		TotalCollection: amountNumber(bal.Collection),
		TotalExpenses:   amountNumber(bal.Expenses),
		Balance:         amountNumber(bal.Balance),
		ExpenseCount:    bal.ExpenseCount,
	}).Write(w)
}

// handleExport serves /export/{report}.{format}. report is fund, summary or
// expense (alias balance); fund honours ?scope=.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	ext := path.Ext(file)
	name := strings.ToLower(strings.TrimSuffix(file, ext))

	format, err := export.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		s.writeError(w, r, applog.OpExport, err)
		return
	}

	var f export.File
	switch name {
	case "fund":
		scope, perr := report.ParseScope(r.URL.Query().Get("scope"))
		if perr != nil {
			s.writeError(w, r, applog.OpExport, perr)
			return
		}
		f, err = s.reports.FundExport(r.Context(), scope, format)
	case "summary":
		f, err = s.reports.SummaryExport(r.Context(), format)
	case "expense", "balance":
		f, err = s.reports.BalanceExport(r.Context(), format)
	default:
		s.writeError(w, r, applog.OpExport, fmt.Errorf("%w: report %q", core.ErrNotFound, name))
		return
	}
	if err != nil {
		s.writeError(w, r, applog.OpExport, err)
		return
	}

	NewResponse().Attachment(f.Name, f.ContentType, f.Data).Write(w)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if err := s.reports.Publish(r.Context()); err != nil {
		s.writeError(w, r, applog.OpPublish, err)
		return
	}
	NewResponse().JSON(map[string]string{"status": "published"}).Write(w)
}
