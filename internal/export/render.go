package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"societyfund/internal/core"
	"societyfund/internal/report"
)

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", &core.FieldError{Field: "format", Reason: fmt.Sprintf("must be xlsx or pdf, got %q", s)}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// File is a fully rendered export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Renderer turns plans into complete files held in memory, so a failure
// never produces a partial file.
type Renderer struct {
	formatter report.Formatter
	prefix    string
}

func NewRenderer(currencySymbol, filePrefix string) *Renderer {
	if filePrefix == "" {
		filePrefix = "society"
	}
	return &Renderer{formatter: report.NewFormatter(currencySymbol), prefix: filePrefix}
}

// Render produces the file for plan. Errors wrap core.ErrExportAssembly.
func (r *Renderer) Render(plan report.Plan, format Format) (File, error) {
	if len(plan.Sections) == 0 {
		plan.Sections = []report.Section{emptySection(plan)}
	}

	var buf bytes.Buffer
	switch format {
	case FormatXLSX:
		wb, err := NewWorkbook()
		if err != nil {
			return File{}, fmt.Errorf("%w: %v", core.ErrExportAssembly, err)
		}
		defer wb.Close()
		if err := FillSpreadsheet(plan, wb, r.formatter); err != nil {
			return File{}, fmt.Errorf("%w: %v", core.ErrExportAssembly, err)
		}
		if _, err := wb.WriteTo(&buf); err != nil {
			return File{}, fmt.Errorf("%w: %v", core.ErrExportAssembly, err)
		}
	case FormatPDF:
		doc, err := NewDocument()
		if err != nil {
			return File{}, fmt.Errorf("%w: %v", core.ErrExportAssembly, err)
		}
		FillDocument(plan, doc, r.formatter)
		if _, err := doc.WriteTo(&buf); err != nil {
			return File{}, fmt.Errorf("%w: %v", core.ErrExportAssembly, err)
		}
	default:
		return File{}, fmt.Errorf("%w: unsupported format %q", core.ErrExportAssembly, format)
	}

	return File{
		Name:        FileName(r.prefix, plan.Kind, plan.Scope, format),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func emptySection(plan report.Plan) report.Section {
	return report.Section{
		Name:  "Report",
		Title: plan.Title,
		Parts: []report.Part{{
			Kind: report.StatsPart,
			Rows: [][]report.Cell{{report.Text("No entries")}},
		}},
	}
}

// FileName encodes report kind and scope:
// society-fund.xlsx, society-fund-block-A.pdf, society-fund-summary.pdf,
// society-balance-report.xlsx.
func FileName(prefix string, kind report.Kind, scope report.Scope, format Format) string {
	var base string
	switch kind {
	case report.KindSummary:
		base = prefix + "-fund-summary"
	case report.KindBalance:
		base = prefix + "-balance-report"
	default:
		base = prefix + "-fund"
		if !scope.All() {
			base += "-block-" + string(scope.Block)
		}
	}
	return base + "." + string(format)
}

// WriteFile stores f under dir through a temporary file and a rename, so
// readers never observe a partial file.
func WriteFile(dir string, f File) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+f.Name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(f.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	target := filepath.Join(dir, f.Name)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("rename into place: %w", err)
	}
	return target, nil
}
