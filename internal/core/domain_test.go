package core

import (
	"errors"
	"testing"
)

func validFund() FundEntry {
	return FundEntry{Name: "Asha", Block: BlockA, Unit: "101", Amount: Money{Cents: 50000}, Status: StatusPaid}
}

func TestFundEntryValidate(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*FundEntry)
		field string
	}{
		{"valid", func(*FundEntry) {}, ""},
		{"empty name", func(e *FundEntry) { e.Name = "" }, "name"},
		{"unknown block", func(e *FundEntry) { e.Block = "Z" }, "block"},
		{"missing unit", func(e *FundEntry) { e.Unit = "" }, "flatNo"},
		{"other without unit", func(e *FundEntry) { e.Block = BlockOther; e.Unit = "" }, ""},
		{"shop without unit", func(e *FundEntry) { e.Block = BlockShop; e.Unit = "" }, "flatNo"},
		{"zero amount", func(e *FundEntry) { e.Amount = Money{} }, "amount"},
		{"negative amount", func(e *FundEntry) { e.Amount = Money{Cents: -1} }, "amount"},
		{"bad status", func(e *FundEntry) { e.Status = "Maybe" }, "status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validFund()
			tc.edit(&e)
			err := e.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var fe *FieldError
			if !errors.As(err, &fe) || fe.Field != tc.field {
				t.Fatalf("expected field %q, got %v", tc.field, err)
			}
		})
	}
}

func TestFundEntryNormalizeDefaultsStatus(t *testing.T) {
	e := FundEntry{Name: " Ravi ", Block: BlockB, Unit: " 7 ", Amount: Money{Cents: 100}}.Normalize()
	if e.Status != StatusUnpaid {
		t.Fatalf("expected Unpaid default, got %q", e.Status)
	}
	if e.Name != "Ravi" || e.Unit != "7" {
		t.Fatalf("expected trimmed fields, got %q %q", e.Name, e.Unit)
	}
}

func TestExpenseEntryValidate(t *testing.T) {
	good := ExpenseEntry{Details: "Lights", Amount: Money{Cents: 100}, Date: NewDate(2025, 10, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	noDate := good
	noDate.Date = Date{}
	if err := noDate.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero date, got %v", err)
	}
	noDetails := good
	noDetails.Details = ""
	if err := noDetails.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty details, got %v", err)
	}
}

func TestParseBlock(t *testing.T) {
	cases := []struct {
		in  string
		out Block
		ok  bool
	}{
		{"A", BlockA, true},
		{"j", BlockJ, true},
		{"shop", BlockShop, true},
		{" Other ", BlockOther, true},
		{"K", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseBlock(tc.in)
		if tc.ok && (err != nil || got != tc.out) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.out, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrValidation) {
			t.Fatalf("%q expected validation error, got %v", tc.in, err)
		}
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{"": StatusUnpaid, "Paid": StatusPaid, "unpaid": StatusUnpaid, "YES": StatusPaid}
	for in, want := range cases {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %q, got %q (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseStatus("later"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestBlockLabel(t *testing.T) {
	if BlockC.Label() != "Block C" || BlockShop.Label() != "Shop" || BlockOther.Label() != "Other" {
		t.Fatalf("unexpected labels: %q %q %q", BlockC.Label(), BlockShop.Label(), BlockOther.Label())
	}
}

func TestFundPatch(t *testing.T) {
	amount := Money{Cents: 70000}
	status := StatusPaid
	p := FundPatch{Amount: &amount, Status: &status}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	before := FundEntry{ID: "1", Name: "Asha", Block: BlockA, Unit: "101", Amount: Money{Cents: 50000}, Status: StatusUnpaid}
	after := p.Apply(before)
	if after.ID != "1" || after.Name != "Asha" || after.Amount != amount || after.Status != StatusPaid {
		t.Fatalf("unexpected merge result: %+v", after)
	}

	zero := Money{}
	if err := (FundPatch{Amount: &zero}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
	bad := Block("Q")
	if err := (FundPatch{Block: &bad}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown block, got %v", err)
	}
	empty := ""
	if err := (FundPatch{Name: &empty}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if !(FundPatch{}).IsEmpty() {
		t.Fatalf("expected empty patch")
	}
}

func TestExpensePatch(t *testing.T) {
	details := "Tent rental"
	p := ExpensePatch{Details: &details}
	e := p.Apply(ExpenseEntry{ID: "x", Details: "Tent", Amount: Money{Cents: 100}, Date: NewDate(2025, 1, 2)})
	if e.Details != details || e.Amount.Cents != 100 {
		t.Fatalf("unexpected merge result: %+v", e)
	}
	zeroDate := Date{}
	if err := (ExpensePatch{Date: &zeroDate}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero date, got %v", err)
	}
}
