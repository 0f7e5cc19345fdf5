package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"societyfund/internal/core"
)

// DateLayout is used wherever a date is rendered as text.
const DateLayout = "02/01/2006"

// Formatter renders cells as display strings for document targets.
type Formatter struct {
	symbol string
	tag    language.Tag
}

func NewFormatter(currencySymbol string) Formatter {
	return Formatter{symbol: currencySymbol, tag: language.English}
}

// Money renders "Rs 1,200" or "Rs 12.50"; negative amounts get a leading minus.
func (f Formatter) Money(m core.Money) string {
	p := message.NewPrinter(f.tag)
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	prefix := sign
	if f.symbol != "" {
		prefix += f.symbol + " "
	}
	if cents%100 == 0 {
		return prefix + p.Sprintf("%d", cents/100)
	}
	return prefix + p.Sprintf("%.2f", float64(cents)/100)
}

// Cell renders any cell as text.
func (f Formatter) Cell(c Cell) string {
	switch c.Kind {
	case CountCell:
		return message.NewPrinter(f.tag).Sprintf("%d", c.Count)
	case AmountCell:
		return f.Money(c.Amount)
	case StatusCell:
		return StatusToken(c.Status)
	case DateCell:
		if c.Date.IsZero() {
			return ""
		}
		return c.Date.Format(DateLayout)
	}
	return c.Text
}

// Value returns a spreadsheet-native value: numbers stay numeric.
func (f Formatter) Value(c Cell) any {
	switch c.Kind {
	case CountCell:
		return c.Count
	case AmountCell:
		if c.Amount.Whole() {
			return c.Amount.Cents / 100
		}
		return c.Amount.Float()
	}
	return f.Cell(c)
}
