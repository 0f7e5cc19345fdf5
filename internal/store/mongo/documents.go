package mongo

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"societyfund/internal/core"
)

// isoLayout matches the ISO-8601 strings already present in the expenses
// collection.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

type fundDocument struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Name    string             `bson:"name"`
	Block   string             `bson:"block"`
	FlatNo  string             `bson:"flatNo"`
	Amount  amount             `bson:"amount"`
	Status  string             `bson:"status"`
	Comment string             `bson:"comment,omitempty"`
}

type expenseDocument struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Details string             `bson:"details"`
	Amount  amount             `bson:"amount"`
	Date    string             `bson:"date"`
}

// amount decodes numbers stored as double, int or numeric string.
type amount float64

func (a *amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeDouble:
		*a = amount(rv.Double())
	case bson.TypeInt32:
		*a = amount(rv.Int32())
	case bson.TypeInt64:
		*a = amount(rv.Int64())
	case bson.TypeString:
		f, err := strconv.ParseFloat(rv.StringValue(), 64)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", rv.StringValue(), err)
		}
		*a = amount(f)
	case bson.TypeNull:
		*a = 0
	default:
		return fmt.Errorf("unsupported amount type %s", t)
	}
	return nil
}

func fundFromDocument(d fundDocument) core.FundEntry {
	status, err := core.ParseStatus(d.Status)
	if err != nil {
		status = core.StatusUnpaid
	}
	return core.FundEntry{
		ID:      d.ID.Hex(),
		Name:    d.Name,
		Block:   blockFromDocument(d),
		Unit:    d.FlatNo,
		Amount:  core.MoneyFromFloat(float64(d.Amount)),
		Status:  status,
		Comment: d.Comment,
	}
}

// blockFromDocument accepts hand-edited values such as "a" or "Block A".
// Anything else is filed under Other so the entry still appears in reports.
func blockFromDocument(d fundDocument) core.Block {
	raw := strings.TrimSpace(d.Block)
	if len(raw) > len("block ") && strings.EqualFold(raw[:len("block ")], "block ") {
		raw = raw[len("block "):]
	}
	b, err := core.ParseBlock(raw)
	if err != nil {
		slog.Warn("Unknown block in fund document, filing under Other",
			"id", d.ID.Hex(), "block", d.Block)
		return core.BlockOther
	}
	return b
}

func fundToDocument(e core.FundEntry) fundDocument {
	return fundDocument{
		Name:    e.Name,
		Block:   string(e.Block),
		FlatNo:  e.Unit,
		Amount:  amount(e.Amount.Float()),
		Status:  string(e.Status),
		Comment: e.Comment,
	}
}

func expenseFromDocument(d expenseDocument) core.ExpenseEntry {
	return core.ExpenseEntry{
		ID:      d.ID.Hex(),
		Details: d.Details,
		Amount:  core.MoneyFromFloat(float64(d.Amount)),
		Date:    parseDate(d.Date),
	}
}

func expenseToDocument(e core.ExpenseEntry) expenseDocument {
	return expenseDocument{
		Details: e.Details,
		Amount:  amount(e.Amount.Float()),
		Date:    formatDate(e.Date),
	}
}

func formatDate(d core.Date) string {
	return d.UTC().Format(isoLayout)
}

func parseDate(s string) core.Date {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return core.Date{Time: t}
		}
	}
	return core.Date{}
}

// fundSet lists the $set fields of a patch.
func fundSet(p core.FundPatch) bson.D {
	merged := p.Apply(core.FundEntry{})
	var set bson.D
	if p.Name != nil {
		set = append(set, bson.E{Key: "name", Value: merged.Name})
	}
	if p.Block != nil {
		set = append(set, bson.E{Key: "block", Value: string(merged.Block)})
	}
	if p.Unit != nil {
		set = append(set, bson.E{Key: "flatNo", Value: merged.Unit})
	}
	if p.Amount != nil {
		set = append(set, bson.E{Key: "amount", Value: merged.Amount.Float()})
	}
	if p.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(merged.Status)})
	}
	if p.Comment != nil {
		set = append(set, bson.E{Key: "comment", Value: merged.Comment})
	}
	return set
}

func expenseSet(p core.ExpensePatch) bson.D {
	merged := p.Apply(core.ExpenseEntry{})
	var set bson.D
	if p.Details != nil {
		set = append(set, bson.E{Key: "details", Value: merged.Details})
	}
	if p.Amount != nil {
		set = append(set, bson.E{Key: "amount", Value: merged.Amount.Float()})
	}
	if p.Date != nil {
		set = append(set, bson.E{Key: "date", Value: formatDate(merged.Date)})
	}
	return set
}
