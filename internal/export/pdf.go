package export

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/sfnt"
)

const (
	pageMargin = 14.0
	rowHeight  = 7.0
	fontFamily = "DejaVu"
)

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	regularTTF []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	boldTTF []byte
)

// glyphs answers which runes the embedded font can draw.
var glyphs = sync.OnceValues(func() (*sfnt.Font, error) {
	return sfnt.Parse(regularTTF)
})

// Document is a DocumentBuilder producing an A4 portrait PDF. Text is drawn
// with an embedded UTF-8 font; characters the font has no glyph for fail
// WriteTo instead of being dropped from the page.
type Document struct {
	pdf     *fpdf.Fpdf
	font    *sfnt.Font
	buf     sfnt.Buffer
	missing map[rune]struct{}
}

var _ DocumentBuilder = (*Document)(nil)

func NewDocument() (*Document, error) {
	font, err := glyphs()
	if err != nil {
		return nil, fmt.Errorf("parse document font: %w", err)
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", regularTTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", boldTTF)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load document font: %w", err)
	}
	pdf.SetMargins(pageMargin, 15, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	return &Document{pdf: pdf, font: font, missing: make(map[rune]struct{})}, nil
}

// text returns s unchanged, remembering any rune the font cannot draw.
func (d *Document) text(s string) string {
	for _, r := range s {
		if r < ' ' {
			continue
		}
		if idx, err := d.font.GlyphIndex(&d.buf, r); err != nil || idx == 0 {
			d.missing[r] = struct{}{}
		}
	}
	return s
}

func (d *Document) AddPage() {
	d.pdf.AddPage()
}

// AddTitle writes a heading. Level 1 is the page title.
func (d *Document) AddTitle(text string, level int) {
	if level <= 1 {
		d.pdf.SetFont(fontFamily, "B", 16)
		d.setText(Blue)
		d.pdf.CellFormat(0, 10, d.text(text), "", 1, "L", false, 0, "")
		d.pdf.Ln(2)
		return
	}
	d.pdf.SetFont(fontFamily, "B", 12)
	d.setText(Black)
	d.pdf.CellFormat(0, 8, d.text(text), "", 1, "L", false, 0, "")
}

// AddTable draws a bordered table with a filled head, optional striping
// and a filled foot.
func (d *Document) AddTable(t Table) {
	columns := len(t.Header)
	for _, r := range t.Rows {
		columns = max(columns, len(r))
	}
	if columns == 0 {
		return
	}
	widths := d.columnWidths(t.Widths, columns)

	if len(t.Header) > 0 {
		d.pdf.SetFont(fontFamily, "B", 10)
		d.setFill(t.Style.HeadFill)
		d.setText(t.Style.HeadText)
		for i, h := range t.Header {
			d.pdf.CellFormat(widths[i], rowHeight, d.text(h), "1", 0, "C", true, 0, "")
		}
		d.pdf.Ln(-1)
	}

	for n, row := range t.Rows {
		fill := t.Style.Striped && n%2 == 1
		d.setFill(t.Style.StripeFill)
		for i := 0; i < columns; i++ {
			cell := DocCell{}
			if i < len(row) {
				cell = row[i]
			}
			style := CellStyle{Text: Black, Align: "L"}
			if cell.Style != nil {
				style = *cell.Style
			}
			fontStyle := ""
			if style.Bold {
				fontStyle = "B"
			}
			d.pdf.SetFont(fontFamily, fontStyle, 10)
			d.setText(style.Text)
			d.pdf.CellFormat(widths[i], rowHeight, d.text(cell.Text), "1", 0, style.Align, fill, 0, "")
		}
		d.pdf.Ln(-1)
	}

	for _, row := range t.Footer {
		d.pdf.SetFont(fontFamily, "B", 10)
		d.setFill(t.Style.FootFill)
		d.setText(t.Style.FootText)
		for i := 0; i < columns; i++ {
			text := ""
			if i < len(row) {
				text = row[i]
			}
			d.pdf.CellFormat(widths[i], rowHeight, d.text(text), "1", 0, "L", true, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(6)
}

// columnWidths scales relative widths to the printable page width.
func (d *Document) columnWidths(relative []float64, columns int) []float64 {
	pageWidth, _ := d.pdf.GetPageSize()
	usable := pageWidth - 2*pageMargin

	weights := make([]float64, columns)
	var sum float64
	for i := range weights {
		weights[i] = 1
		if i < len(relative) && relative[i] > 0 {
			weights[i] = relative[i]
		}
		sum += weights[i]
	}
	for i := range weights {
		weights[i] = usable * weights[i] / sum
	}
	return weights
}

func (d *Document) setFill(c Color) {
	d.pdf.SetFillColor(c.R, c.G, c.B)
}

func (d *Document) setText(c Color) {
	d.pdf.SetTextColor(c.R, c.G, c.B)
}

func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if len(d.missing) > 0 {
		return 0, fmt.Errorf("document font has no glyph for %s", quoteRunes(d.missing))
	}
	if err := d.pdf.Error(); err != nil {
		return 0, fmt.Errorf("layout document: %w", err)
	}
	cw := &countingWriter{w: w}
	if err := d.pdf.Output(cw); err != nil {
		return cw.n, fmt.Errorf("output document: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func quoteRunes(set map[rune]struct{}) string {
	runes := make([]rune, 0, len(set))
	for r := range set {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = fmt.Sprintf("%q (%U)", r, r)
	}
	return strings.Join(parts, ", ")
}
