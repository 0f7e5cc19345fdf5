// Package report turns fund and expense lists into format-neutral document
// plans. A plan is an ordered list of sections (one sheet or page each) made of
// statistics lists and tables of typed cells; the export package renders it.
package report

import (
	"fmt"
	"strings"

	"societyfund/internal/core"
)

// Kind identifies which report a plan holds.
type Kind string

const (
	KindFund    Kind = "fund"
	KindSummary Kind = "summary"
	KindBalance Kind = "balance"
)

// CellKind tells the renderer how to present a cell.
type CellKind int

const (
	TextCell CellKind = iota
	CountCell
	AmountCell
	StatusCell
	DateCell
)

// Cell is a typed value. Amounts stay in cents until rendered.
type Cell struct {
	Kind   CellKind
	Text   string
	Count  int
	Amount core.Money
	Status core.Status
	Date   core.Date
}

func Text(s string) Cell               { return Cell{Kind: TextCell, Text: s} }
func Count(n int) Cell                 { return Cell{Kind: CountCell, Count: n} }
func Amount(m core.Money) Cell         { return Cell{Kind: AmountCell, Amount: m} }
func StatusOf(s core.Status) Cell      { return Cell{Kind: StatusCell, Status: s} }
func DateOf(d core.Date) Cell          { return Cell{Kind: DateCell, Date: d} }
func Blank() Cell                      { return Cell{Kind: TextCell} }
func stat(label string, v Cell) []Cell { return []Cell{Text(label), v} }

// PartKind distinguishes label/value lists from tables.
type PartKind int

const (
	StatsPart PartKind = iota
	TablePart
)

// Part is one block of content inside a section.
type Part struct {
	Kind    PartKind
	Heading string
	Header  []string
	Rows    [][]Cell
	Footer  [][]Cell
}

// Section maps to one worksheet or one document page.
type Section struct {
	Name         string
	Title        string
	Parts        []Part
	ColumnWidths []float64
}

// Plan is the format-neutral layout of one report.
type Plan struct {
	Kind     Kind
	Scope    Scope
	Title    string
	Sections []Section
}

// Scope selects every block or a single one.
type Scope struct {
	Block core.Block
}

// AllBlocks is the scope covering every block.
var AllBlocks = Scope{}

// ParseScope accepts "", "all" or a block name.
func ParseScope(s string) (Scope, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllBlocks, nil
	}
	b, err := core.ParseBlock(s)
	if err != nil {
		return Scope{}, &core.FieldError{Field: "scope", Reason: fmt.Sprintf("must be all or a block name, got %q", s)}
	}
	return Scope{Block: b}, nil
}

func (s Scope) All() bool {
	return s.Block == ""
}

func (s Scope) Includes(b core.Block) bool {
	return s.All() || s.Block == b
}

func (s Scope) String() string {
	if s.All() {
		return "all"
	}
	return string(s.Block)
}

// StatusToken is the fixed rendering of a status in every section.
func StatusToken(s core.Status) string {
	if s == core.StatusPaid {
		return "Yes"
	}
	return "No"
}
