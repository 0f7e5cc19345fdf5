package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	BlockA     Block = "A"
	BlockB     Block = "B"
	BlockC     Block = "C"
	BlockD     Block = "D"
	BlockE     Block = "E"
	BlockF     Block = "F"
	BlockG     Block = "G"
	BlockH     Block = "H"
	BlockI     Block = "I"
	BlockJ     Block = "J"
	BlockShop  Block = "Shop"
	BlockOther Block = "Other"

	StatusPaid   Status = "Paid"
	StatusUnpaid Status = "Unpaid"
)

// Blocks is the fixed block enumeration. Its order drives report row order
// and the UI select options.
var Blocks = []Block{
	BlockA, BlockB, BlockC, BlockD, BlockE, BlockF, BlockG, BlockH, BlockI, BlockJ,
	BlockShop, BlockOther,
}

type (
	Block  string
	Status string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// FundEntry is one contribution record for a unit.
	FundEntry struct {
		ID      string
		Name    string `validate:"required,max=200"`
		Block   Block  `validate:"block"`
		Unit    string `validate:"required_unless=Block Other,max=20"`
		Amount  Money  `validate:"gt=0"`
		Status  Status `validate:"status"`
		Comment string `validate:"max=500"`
	}

	// ExpenseEntry is one expenditure record.
	ExpenseEntry struct {
		ID      string
		Details string `validate:"required,max=200"`
		Amount  Money  `validate:"gt=0"`
		Date    Date   `validate:"required"`
	}
)

// ParseBlock accepts a block name case-insensitively.
func ParseBlock(s string) (Block, error) {
	s = strings.TrimSpace(s)
	for _, b := range Blocks {
		if strings.EqualFold(s, string(b)) {
			return b, nil
		}
	}
	return "", &FieldError{Field: "block", Reason: fmt.Sprintf("unknown block %q", s)}
}

// Valid reports whether b is part of the enumeration.
func (b Block) Valid() bool {
	return b.Index() >= 0
}

// Index returns the position of b in Blocks, or -1.
func (b Block) Index() int {
	for i, candidate := range Blocks {
		if candidate == b {
			return i
		}
	}
	return -1
}

// Lettered reports whether b is one of the residential blocks A..J.
func (b Block) Lettered() bool {
	return b.Valid() && b != BlockShop && b != BlockOther
}

// Label is the human name used for sheet names and page headings.
func (b Block) Label() string {
	if b.Lettered() {
		return "Block " + string(b)
	}
	return string(b)
}

func (b Block) String() string {
	return string(b)
}

// ParseStatus maps user input to a Status. An empty value means Unpaid.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return StatusUnpaid, nil
	case "paid", "yes":
		return StatusPaid, nil
	case "unpaid", "no":
		return StatusUnpaid, nil
	}
	return "", &FieldError{Field: "status", Reason: fmt.Sprintf("unknown status %q", s)}
}

func (s Status) Valid() bool {
	return s == StatusPaid || s == StatusUnpaid
}

func (s Status) String() string {
	return string(s)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Add returns m+o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m-o. The result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// EntryAmount implements Amounted.
func (e FundEntry) EntryAmount() Money {
	return e.Amount
}

// EntryAmount implements Amounted.
func (e ExpenseEntry) EntryAmount() Money {
	return e.Amount
}

// Normalize trims free-text fields and applies the Unpaid default.
func (e FundEntry) Normalize() FundEntry {
	e.Name = strings.TrimSpace(e.Name)
	e.Unit = strings.TrimSpace(e.Unit)
	e.Comment = strings.TrimSpace(e.Comment)
	if e.Status == "" {
		e.Status = StatusUnpaid
	}
	return e
}

func (e FundEntry) Validate() error {
	return validateStruct(e)
}

func (e ExpenseEntry) Normalize() ExpenseEntry {
	e.Details = strings.TrimSpace(e.Details)
	return e
}

func (e ExpenseEntry) Validate() error {
	return validateStruct(e)
}

type (
	// FundPatch lists the fields a fund update may change. Nil fields are
	// left untouched.
	FundPatch struct {
		Name    *string
		Block   *Block
		Unit    *string
		Amount  *Money
		Status  *Status
		Comment *string
	}

	// ExpensePatch lists the fields an expense update may change.
	ExpensePatch struct {
		Details *string
		Amount  *Money
		Date    *Date
	}
)

// IsEmpty reports whether the patch changes nothing.
func (p FundPatch) IsEmpty() bool {
	return p.Name == nil && p.Block == nil && p.Unit == nil && p.Amount == nil && p.Status == nil && p.Comment == nil
}

// Validate checks each present field on its own. Cross-field rules are
// checked on the merged entry.
func (p FundPatch) Validate() error {
	if p.Name != nil {
		if err := validateVar("name", strings.TrimSpace(*p.Name), "required,max=200"); err != nil {
			return err
		}
	}
	if p.Block != nil && !p.Block.Valid() {
		return &FieldError{Field: "block", Reason: fmt.Sprintf("unknown block %q", *p.Block)}
	}
	if p.Unit != nil {
		if err := validateVar("flatNo", strings.TrimSpace(*p.Unit), "max=20"); err != nil {
			return err
		}
	}
	if p.Amount != nil && p.Amount.Cents <= 0 {
		return &FieldError{Field: "amount", Reason: "must be greater than zero"}
	}
	if p.Status != nil && !p.Status.Valid() {
		return &FieldError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *p.Status)}
	}
	if p.Comment != nil {
		if err := validateVar("comment", *p.Comment, "max=500"); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns e with the patch fields written over it.
func (p FundPatch) Apply(e FundEntry) FundEntry {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Block != nil {
		e.Block = *p.Block
	}
	if p.Unit != nil {
		e.Unit = *p.Unit
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Comment != nil {
		e.Comment = *p.Comment
	}
	return e.Normalize()
}

func (p ExpensePatch) IsEmpty() bool {
	return p.Details == nil && p.Amount == nil && p.Date == nil
}

func (p ExpensePatch) Validate() error {
	if p.Details != nil {
		if err := validateVar("details", strings.TrimSpace(*p.Details), "required,max=200"); err != nil {
			return err
		}
	}
	if p.Amount != nil && p.Amount.Cents <= 0 {
		return &FieldError{Field: "amount", Reason: "must be greater than zero"}
	}
	if p.Date != nil && p.Date.IsZero() {
		return &FieldError{Field: "date", Reason: "is required"}
	}
	return nil
}

func (p ExpensePatch) Apply(e ExpenseEntry) ExpenseEntry {
	if p.Details != nil {
		e.Details = *p.Details
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	return e.Normalize()
}
