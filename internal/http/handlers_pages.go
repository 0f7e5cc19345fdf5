package http

import (
	"html/template"
	"net/http"
	"net/url"

	"societyfund/internal/core"
	applog "societyfund/internal/log"
	"societyfund/internal/report"
)

var templateFuncs = template.FuncMap{
	"statusToken": func(s core.Status) string { return report.StatusToken(s) },
}

type fundRow struct {
	ID        string
	Name      string
	Block     string
	FlatNo    string
	UnitLabel string
	Amount    string
	AmountRaw string
	Status    core.Status
	Paid      bool
	Comment   string
}

type fundPage struct {
	Title       string
	Scope       string
	Blocks      []core.Block
	Rows        []fundRow
	Total       string
	Collected   string
	Pending     string
	ExportQuery string
	Error       string
}

type expenseRow struct {
	ID        string
	Date      string
	DateValue string
	Details   string
	Amount    string
	AmountRaw string
}

type expensePage struct {
	Title       string
	Rows        []expenseRow
	Income      string
	Expenses    string
	Balance     string
	Deficit     bool
	Error       string
	PublishOpen bool
}

// handleFundPage renders the fund list filtered by ?scope= with the total,
// paid and pending cards. A failed fetch renders an empty list with an
// error banner, never stale totals. The banner names only the error kind;
// the underlying error goes to the log.
func (s *Server) handleFundPage(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	data := fundPage{Title: s.title, Blocks: core.Blocks, Scope: report.AllBlocks.String()}

	scope, err := report.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		scope = report.AllBlocks
	}
	data.Scope = scope.String()
	if !scope.All() {
		data.ExportQuery = "?" + url.Values{"scope": {scope.String()}}.Encode()
	}

	entries, err := s.entries.ListFunds(r.Context())
	if err != nil {
		var kind string
		status, kind = classify(err)
		data.Error = "Could not load fund entries (" + kind + "). Please try again later."
		s.log.LogError(r.Context(), "Fund page fetch failed", err, kind, applog.OpList,
			applog.NewFields().WithComponent(applog.ComponentFund))
		entries = nil
	}
	if !scope.All() {
		entries = core.FilterBlock(entries, scope.Block)
	}

	stats := core.Stats(entries)
	data.Total = s.formatter.Money(stats.Total)
	data.Collected = s.formatter.Money(stats.Collected)
	data.Pending = s.formatter.Money(stats.Pending)
	for _, e := range entries {
		data.Rows = append(data.Rows, fundRow{
			ID:        e.ID,
			Name:      e.Name,
			Block:     string(e.Block),
			FlatNo:    e.Unit,
			UnitLabel: core.UnitLabel(e, false),
			Amount:    s.formatter.Money(e.Amount),
			AmountRaw: amountNumber(e.Amount).String(),
			Status:    e.Status,
			Paid:      e.Status == core.StatusPaid,
			Comment:   e.Comment,
		})
	}

	s.render(w, r, status, "index.html", data)
}

// handleExpensePage renders the expense list with income, expenses and
// balance cards; a negative balance is flagged as a deficit.
func (s *Server) handleExpensePage(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	data := expensePage{Title: s.title, PublishOpen: s.reports.PublishEnabled()}

	fail := func(err error) {
		var kind string
		status, kind = classify(err)
		data.Error = "Could not load expenses (" + kind + "). Please try again later."
		s.log.LogError(r.Context(), "Expense page fetch failed", err, kind, applog.OpList,
			applog.NewFields().WithComponent(applog.ComponentExpense))
		s.render(w, r, status, "expense.html", data)
	}

	bal, err := s.reports.Balance(r.Context())
	if err != nil {
		fail(err)
		return
	}
	expenses, err := s.entries.ListExpenses(r.Context())
	if err != nil {
		fail(err)
		return
	}

	data.Income = s.formatter.Money(bal.Collection)
	data.Expenses = s.formatter.Money(bal.Expenses)
	data.Balance = s.formatter.Money(bal.Balance)
	data.Deficit = bal.Balance.Cents < 0
	for _, e := range expenses {
		data.Rows = append(data.Rows, expenseRow{
			ID:        e.ID,
			Date:      e.Date.Format(report.DateLayout),
			DateValue: e.Date.Format("2006-01-02"),
			Details:   e.Details,
			Amount:    s.formatter.Money(e.Amount),
			AmountRaw: amountNumber(e.Amount).String(),
		})
	}

	s.render(w, r, status, "expense.html", data)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
	}
}
