// Package export renders report plans into files: workbooks through a
// SpreadsheetBuilder and paginated documents through a DocumentBuilder.
package export

import (
	"fmt"

	"societyfund/internal/core"
	"societyfund/internal/report"
)

// SpreadsheetBuilder accumulates named sheets of row arrays.
type SpreadsheetBuilder interface {
	AddSheet(name string, rows [][]any) error
	SetColumnWidths(sheet string, widths []float64) error
}

// DocumentBuilder lays out titled pages of styled tables.
type DocumentBuilder interface {
	AddPage()
	AddTitle(text string, level int)
	AddTable(t Table)
}

type Color struct {
	R, G, B int
}

var (
	White     = Color{255, 255, 255}
	Black     = Color{0, 0, 0}
	Blue      = Color{41, 128, 185}
	Grey      = Color{169, 169, 169}
	LightGrey = Color{245, 245, 245}
	Green     = Color{0, 128, 0}
	Red       = Color{255, 0, 0}
)

// CellStyle overrides the table style for a single cell.
type CellStyle struct {
	Text  Color
	Bold  bool
	Align string
}

type TableStyle struct {
	HeadFill   Color
	HeadText   Color
	FootFill   Color
	FootText   Color
	StripeFill Color
	Striped    bool
}

// DefaultTableStyle is the blue-headed striped table used by every document.
var DefaultTableStyle = TableStyle{
	HeadFill:   Blue,
	HeadText:   White,
	FootFill:   Grey,
	FootText:   Black,
	StripeFill: LightGrey,
	Striped:    true,
}

type DocCell struct {
	Text  string
	Style *CellStyle
}

type Table struct {
	Header []string
	Rows   [][]DocCell
	Footer [][]string
	Widths []float64
	Style  TableStyle
}

var (
	paidStyle   = CellStyle{Text: Green, Bold: true, Align: "C"}
	unpaidStyle = CellStyle{Text: Red, Bold: true, Align: "C"}
)

// FillSpreadsheet writes one sheet per plan section.
func FillSpreadsheet(plan report.Plan, b SpreadsheetBuilder, f report.Formatter) error {
	for _, section := range plan.Sections {
		rows := [][]any{{section.Title}, {}}
		for i, part := range section.Parts {
			if i > 0 {
				rows = append(rows, []any{})
			}
			if part.Heading != "" {
				rows = append(rows, []any{part.Heading + ":"})
			}
			if len(part.Header) > 0 {
				header := make([]any, len(part.Header))
				for j, h := range part.Header {
					header[j] = h
				}
				rows = append(rows, header)
			}
			for _, r := range part.Rows {
				rows = append(rows, values(r, f))
			}
			for _, r := range part.Footer {
				rows = append(rows, values(r, f))
			}
		}
		if err := b.AddSheet(section.Name, rows); err != nil {
			return fmt.Errorf("add sheet %q: %w", section.Name, err)
		}
		if len(section.ColumnWidths) > 0 {
			if err := b.SetColumnWidths(section.Name, section.ColumnWidths); err != nil {
				return fmt.Errorf("set widths of %q: %w", section.Name, err)
			}
		}
	}
	return nil
}

func values(cells []report.Cell, f report.Formatter) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = f.Value(c)
	}
	return out
}

// FillDocument writes one page per plan section. Statistics lists become
// two-column tables without a header.
func FillDocument(plan report.Plan, b DocumentBuilder, f report.Formatter) {
	for _, section := range plan.Sections {
		b.AddPage()
		b.AddTitle(section.Title, 1)
		for _, part := range section.Parts {
			if part.Heading != "" {
				b.AddTitle(part.Heading, 2)
			}
			t := Table{Header: part.Header, Style: DefaultTableStyle}
			if part.Kind == report.StatsPart {
				t.Style.Striped = false
			} else if len(section.ColumnWidths) == len(part.Header) {
				t.Widths = section.ColumnWidths
			}
			for _, r := range part.Rows {
				row := make([]DocCell, len(r))
				for i, c := range r {
					row[i] = DocCell{Text: f.Cell(c)}
					if c.Kind == report.StatusCell {
						style := unpaidStyle
						if c.Status == core.StatusPaid {
							style = paidStyle
						}
						row[i].Style = &style
					}
				}
				t.Rows = append(t.Rows, row)
			}
			for _, r := range part.Footer {
				row := make([]string, len(r))
				for i, c := range r {
					row[i] = f.Cell(c)
				}
				t.Footer = append(t.Footer, row)
			}
			b.AddTable(t)
		}
	}
}
