package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Workbook is a SpreadsheetBuilder backed by an in-memory xlsx file.
type Workbook struct {
	file       *excelize.File
	sheets     int
	titleStyle int
}

var _ SpreadsheetBuilder = (*Workbook)(nil)

func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create title style: %w", err)
	}
	return &Workbook{file: f, titleStyle: style}, nil
}

// AddSheet creates a sheet and writes rows from A1 down. The first row is
// styled as a title.
func (w *Workbook) AddSheet(name string, rows [][]any) error {
	if w.sheets == 0 {
		if err := w.file.SetSheetName(defaultSheet, name); err != nil {
			return fmt.Errorf("rename default sheet: %w", err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	w.sheets++

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if len(rows) > 0 {
		if err := w.file.SetCellStyle(name, "A1", "A1", w.titleStyle); err != nil {
			return fmt.Errorf("style title: %w", err)
		}
	}
	return nil
}

// SetColumnWidths sets widths in character units starting from column A.
func (w *Workbook) SetColumnWidths(sheet string, widths []float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.file.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set width of column %s: %w", col, err)
		}
	}
	return nil
}

// Sheets returns the sheet names in order.
func (w *Workbook) Sheets() []string {
	return w.file.GetSheetList()
}

func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	if w.sheets == 0 {
		return 0, fmt.Errorf("workbook has no sheets")
	}
	w.file.SetActiveSheet(0)
	return w.file.WriteTo(out)
}

func (w *Workbook) Close() error {
	return w.file.Close()
}
