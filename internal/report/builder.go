package report

import (
	"fmt"

	"societyfund/internal/core"
)

var (
	summaryWidths = []float64{10, 15, 15, 15, 15, 15}
	detailWidths  = []float64{25, 15, 15, 10, 30}
	balanceWidths = []float64{15, 30, 15}
)

// Builder assembles report plans. The title prefixes every document heading.
type Builder struct {
	title string
}

func NewBuilder(title string) *Builder {
	if title == "" {
		title = "Society Fund"
	}
	return &Builder{title: title}
}

// FundPlan builds the fund collection report. A summary section is added
// only when every block is in scope; each non-empty block in scope gets its
// own detail section.
func (b *Builder) FundPlan(entries []core.FundEntry, scope Scope) Plan {
	plan := Plan{Kind: KindFund, Scope: scope, Title: b.title + " Collection"}
	groups := core.GroupByBlock(entries)

	if scope.All() {
		plan.Sections = append(plan.Sections, b.summarySection(entries, groups))
	}
	for _, g := range groups {
		if !scope.Includes(g.Block) {
			continue
		}
		plan.Sections = append(plan.Sections, b.blockSection(g))
	}
	return plan
}

func (b *Builder) summarySection(entries []core.FundEntry, groups []core.BlockGroup) Section {
	overall := core.Stats(entries)

	table := Part{
		Kind:    TablePart,
		Heading: "Block-wise Summary",
		Header:  []string{"Block", "Total Flats", "Paid Count", "Unpaid Count", "Total Amount", "Collected Amount"},
	}
	for _, g := range groups {
		s := core.Stats(g.Entries)
		table.Rows = append(table.Rows, []Cell{
			Text(string(g.Block)), Count(s.Count), Count(s.PaidCount), Count(s.UnpaidCount),
			Amount(s.Total), Amount(s.Collected),
		})
	}
	table.Footer = [][]Cell{{
		Text("Grand Total"), Count(overall.Count), Count(overall.PaidCount), Count(overall.UnpaidCount),
		Amount(overall.Total), Amount(overall.Collected),
	}}

	return Section{
		Name:  "Summary",
		Title: b.title + " Collection Summary",
		Parts: []Part{
			{
				Kind:    StatsPart,
				Heading: "Overall Summary",
				Rows: [][]Cell{
					stat("Total Amount", Amount(overall.Total)),
					stat("Total Paid", Amount(overall.Collected)),
					stat("Total Pending", Amount(overall.Pending)),
				},
			},
			table,
		},
		ColumnWidths: summaryWidths,
	}
}

func (b *Builder) blockSection(g core.BlockGroup) Section {
	s := core.Stats(g.Entries)

	details := Part{
		Kind:    TablePart,
		Heading: "Details",
		Header:  []string{"Name", "Flat Number", "Amount", "Status", "Comments"},
		Footer:  [][]Cell{{Text("Block Total"), Blank(), Amount(s.Total), Blank(), Blank()}},
	}
	for _, e := range core.SortByUnit(g.Entries) {
		details.Rows = append(details.Rows, []Cell{
			Text(e.Name), Text(core.UnitLabel(e, true)), Amount(e.Amount), StatusOf(e.Status), Text(e.Comment),
		})
	}

	return Section{
		Name:  g.Block.Label(),
		Title: fmt.Sprintf("%s - Fund Collection Details", g.Block.Label()),
		Parts: []Part{
			{
				Kind:    StatsPart,
				Heading: "Block Summary",
				Rows: [][]Cell{
					stat("Total Amount", Amount(s.Total)),
					stat("Total Paid", Amount(s.Collected)),
					stat("Total Pending", Amount(s.Pending)),
				},
			},
			details,
			{
				Kind:    StatsPart,
				Heading: "Statistics",
				Rows: [][]Cell{
					stat("Total Flats", Count(s.Count)),
					stat("Paid Count", Count(s.PaidCount)),
					stat("Unpaid Count", Count(s.UnpaidCount)),
					stat("Total Amount", Amount(s.Total)),
					stat("Collected Amount", Amount(s.Collected)),
					stat("Pending Amount", Amount(s.Pending)),
				},
			},
		},
		ColumnWidths: detailWidths,
	}
}

// SummaryPlan builds the single-section overview of every block.
func (b *Builder) SummaryPlan(entries []core.FundEntry) Plan {
	overall := core.Stats(entries)

	blocks := Part{
		Kind:    TablePart,
		Heading: "Block-wise Summary",
		Header:  []string{"Block", "Total", "Collected", "Pending"},
	}
	for _, g := range core.GroupByBlock(entries) {
		s := core.Stats(g.Entries)
		blocks.Rows = append(blocks.Rows, []Cell{Text(g.Block.Label()), Amount(s.Total), Amount(s.Collected), Amount(s.Pending)})
	}

	return Plan{
		Kind:  KindSummary,
		Scope: AllBlocks,
		Title: b.title + " Summary",
		Sections: []Section{{
			Name:  "Summary",
			Title: b.title + " Summary",
			Parts: []Part{
				{
					Kind:    TablePart,
					Heading: "Overall Summary",
					Header:  []string{"Metric", "Amount"},
					Rows: [][]Cell{
						stat("Total Amount", Amount(overall.Total)),
						stat("Total Collected", Amount(overall.Collected)),
						stat("Total Pending", Amount(overall.Pending)),
					},
				},
				blocks,
			},
			ColumnWidths: []float64{20, 15, 15, 15},
		}},
	}
}

// BalancePlan builds the collection-versus-expenses report. Expenses are
// listed in the order given.
func (b *Builder) BalancePlan(funds []core.FundEntry, expenses []core.ExpenseEntry) Plan {
	collected := core.TotalByStatus(funds, core.StatusPaid)
	spent := core.TotalAmount(expenses)
	balance := core.Balance(funds, expenses)

	table := Part{
		Kind:    TablePart,
		Heading: "Expenses",
		Header:  []string{"Date", "Details", "Amount"},
		Footer: [][]Cell{
			{Text("Total Expenses"), Blank(), Amount(spent)},
			{Text("Balance Amount"), Blank(), Amount(balance)},
		},
	}
	for _, e := range expenses {
		table.Rows = append(table.Rows, []Cell{DateOf(e.Date), Text(e.Details), Amount(e.Amount)})
	}

	return Plan{
		Kind:  KindBalance,
		Scope: AllBlocks,
		Title: b.title + " Balance Report",
		Sections: []Section{{
			Name:  "Balance Report",
			Title: b.title + " Balance Report",
			Parts: []Part{
				{
					Kind:    StatsPart,
					Heading: "Summary",
					Rows: [][]Cell{
						stat("Total Collection", Amount(collected)),
						stat("Total Expenses", Amount(spent)),
						stat("Balance Amount", Amount(balance)),
					},
				},
				table,
			},
			ColumnWidths: balanceWidths,
		}},
	}
}
