package core

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Amounted is implemented by every entry that carries an amount.
type Amounted interface {
	EntryAmount() Money
}

// BlockGroup is the set of entries of a single block.
type BlockGroup struct {
	Block   Block
	Entries []FundEntry
}

// GroupStats summarises a set of fund entries.
// PaidCount+UnpaidCount == Count and Collected+Pending == Total always hold.
type GroupStats struct {
	Count       int
	PaidCount   int
	UnpaidCount int
	Total       Money
	Collected   Money
	Pending     Money
}

// TotalAmount sums the amounts of entries. An empty input yields zero.
func TotalAmount[T Amounted](entries []T) Money {
	var total Money
	for _, e := range entries {
		total = total.Add(e.EntryAmount())
	}
	return total
}

// TotalByStatus sums the amounts of the entries with the given status.
func TotalByStatus(entries []FundEntry, status Status) Money {
	var total Money
	for _, e := range entries {
		if e.Status == status {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// GroupByBlock partitions entries by block. Only non-empty groups are
// returned, in Blocks order. Entries keep their relative order. An entry
// with a block outside the enumeration is placed in Other, so every entry
// lands in exactly one group.
func GroupByBlock(entries []FundEntry) []BlockGroup {
	buckets := make([][]FundEntry, len(Blocks))
	other := BlockOther.Index()
	for _, e := range entries {
		i := e.Block.Index()
		if i < 0 {
			e.Block, i = BlockOther, other
		}
		buckets[i] = append(buckets[i], e)
	}
	groups := make([]BlockGroup, 0, len(Blocks))
	for i, bucket := range buckets {
		if len(bucket) > 0 {
			groups = append(groups, BlockGroup{Block: Blocks[i], Entries: bucket})
		}
	}
	return groups
}

// Stats computes the counts and totals of entries.
func Stats(entries []FundEntry) GroupStats {
	var s GroupStats
	for _, e := range entries {
		s.Count++
		s.Total = s.Total.Add(e.Amount)
		if e.Status == StatusPaid {
			s.PaidCount++
			s.Collected = s.Collected.Add(e.Amount)
		} else {
			s.UnpaidCount++
		}
	}
	s.Pending = s.Total.Sub(s.Collected)
	return s
}

// Balance is the collected fund amount minus every expense. It may be negative.
func Balance(funds []FundEntry, expenses []ExpenseEntry) Money {
	return TotalByStatus(funds, StatusPaid).Sub(TotalAmount(expenses))
}

// SortByUnit returns a copy of entries sorted by unit with locale-aware
// string collation, so "10" sorts before "2". The sort is stable.
func SortByUnit(entries []FundEntry) []FundEntry {
	sorted := slices.Clone(entries)
	c := collate.New(language.English)
	slices.SortStableFunc(sorted, func(a, b FundEntry) int {
		return c.CompareString(a.Unit, b.Unit)
	})
	return sorted
}

// SortFunds orders entries by block enumeration, then unit.
func SortFunds(entries []FundEntry) {
	c := collate.New(language.English)
	slices.SortStableFunc(entries, func(a, b FundEntry) int {
		if d := a.Block.Index() - b.Block.Index(); d != 0 {
			return d
		}
		return c.CompareString(a.Unit, b.Unit)
	})
}

// SortExpenses orders entries newest first.
func SortExpenses(entries []ExpenseEntry) {
	slices.SortStableFunc(entries, func(a, b ExpenseEntry) int {
		return b.Date.Compare(a.Date.Time)
	})
}

// FilterBlock keeps the entries of block b.
func FilterBlock(entries []FundEntry, b Block) []FundEntry {
	var out []FundEntry
	for _, e := range entries {
		if e.Block == b {
			out = append(out, e)
		}
	}
	return out
}

// UnitLabel renders the unit of e. Inside its own block section lettered
// blocks show the bare unit and Shop/Other are prefixed; elsewhere the
// block is always prefixed. An Other entry without a unit renders as "Other".
func UnitLabel(e FundEntry, ownSection bool) string {
	unit := strings.TrimSpace(e.Unit)
	if unit == "" {
		return string(e.Block)
	}
	if ownSection && e.Block.Lettered() {
		return unit
	}
	return string(e.Block) + "-" + unit
}
