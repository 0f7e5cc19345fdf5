package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fund(block Block, unit string, rupees int64, status Status) FundEntry {
	return FundEntry{Name: "n-" + unit, Block: block, Unit: unit, Amount: Money{Cents: rupees * 100}, Status: status}
}

func TestTotalAmount_Empty(t *testing.T) {
	assert.Equal(t, Money{}, TotalAmount([]FundEntry{}))
	assert.Equal(t, Money{}, TotalAmount[ExpenseEntry](nil))
}

func TestStats_ScenarioA(t *testing.T) {
	entries := []FundEntry{
		fund(BlockA, "101", 500, StatusPaid),
		fund(BlockA, "102", 500, StatusUnpaid),
		fund(BlockB, "201", 700, StatusPaid),
	}

	overall := Stats(entries)
	assert.Equal(t, int64(170000), overall.Total.Cents)
	assert.Equal(t, int64(120000), overall.Collected.Cents)
	assert.Equal(t, int64(50000), overall.Pending.Cents)

	groups := GroupByBlock(entries)
	require.Len(t, groups, 2)
	assert.Equal(t, BlockA, groups[0].Block)
	assert.Equal(t, BlockB, groups[1].Block)

	a := Stats(groups[0].Entries)
	assert.Equal(t, GroupStats{Count: 2, PaidCount: 1, UnpaidCount: 1,
		Total: Money{Cents: 100000}, Collected: Money{Cents: 50000}, Pending: Money{Cents: 50000}}, a)
	b := Stats(groups[1].Entries)
	assert.Equal(t, GroupStats{Count: 1, PaidCount: 1,
		Total: Money{Cents: 70000}, Collected: Money{Cents: 70000}}, b)
}

func TestStats_Invariants(t *testing.T) {
	entries := []FundEntry{
		fund(BlockC, "1", 10, StatusPaid),
		fund(BlockC, "2", 20, StatusUnpaid),
		fund(BlockShop, "3", 30, StatusPaid),
		fund(BlockOther, "", 40, StatusUnpaid),
	}
	s := Stats(entries)
	assert.Equal(t, s.Count, s.PaidCount+s.UnpaidCount)
	assert.Equal(t, s.Total, s.Collected.Add(s.Pending))
	assert.Equal(t, s, Stats(entries), "aggregation must be idempotent")
}

func TestGroupByBlock_CompletenessAndOrder(t *testing.T) {
	entries := []FundEntry{
		fund(BlockOther, "", 1, StatusPaid),
		fund(BlockJ, "9", 1, StatusPaid),
		fund(BlockShop, "2", 1, StatusPaid),
		fund(BlockA, "1", 1, StatusPaid),
		fund(BlockJ, "8", 1, StatusPaid),
	}
	groups := GroupByBlock(entries)

	var order []Block
	total := 0
	for _, g := range groups {
		order = append(order, g.Block)
		total += len(g.Entries)
		for _, e := range g.Entries {
			assert.Equal(t, g.Block, e.Block)
		}
	}
	assert.Equal(t, []Block{BlockA, BlockJ, BlockShop, BlockOther}, order)
	assert.Equal(t, len(entries), total)
	assert.Equal(t, "9", groups[1].Entries[0].Unit, "relative order must be kept")
}

func TestGroupByBlock_UnknownBlockFiledUnderOther(t *testing.T) {
	entries := []FundEntry{
		fund(BlockA, "1", 100, StatusPaid),
		fund(Block("a"), "2", 200, StatusPaid),
	}
	groups := GroupByBlock(entries)
	require.Len(t, groups, 2)
	assert.Equal(t, BlockOther, groups[1].Block)
	require.Len(t, groups[1].Entries, 1)
	assert.Equal(t, BlockOther, groups[1].Entries[0].Block)

	var sum Money
	for _, g := range groups {
		sum = sum.Add(TotalAmount(g.Entries))
	}
	assert.Equal(t, TotalAmount(entries), sum)
}

func TestBalance(t *testing.T) {
	t.Run("expenses only", func(t *testing.T) {
		got := Balance(nil, []ExpenseEntry{{Details: "x", Amount: Money{Cents: 5000}}})
		assert.Equal(t, int64(-5000), got.Cents)
	})

	t.Run("scenario A funds and scenario C expenses", func(t *testing.T) {
		funds := []FundEntry{
			fund(BlockA, "101", 500, StatusPaid),
			fund(BlockA, "102", 500, StatusUnpaid),
			fund(BlockB, "201", 700, StatusPaid),
		}
		expenses := []ExpenseEntry{
			{Details: "Decor", Amount: Money{Cents: 30000}},
			{Details: "Food", Amount: Money{Cents: 40000}},
		}
		assert.Equal(t, int64(70000), TotalAmount(expenses).Cents)
		assert.Equal(t, int64(50000), Balance(funds, expenses).Cents)
	})

	t.Run("deficit", func(t *testing.T) {
		funds := []FundEntry{fund(BlockA, "1", 100, StatusPaid)}
		expenses := []ExpenseEntry{{Details: "Sound", Amount: Money{Cents: 25000}}}
		assert.Equal(t, int64(-15000), Balance(funds, expenses).Cents)
	})
}

func TestSortByUnit_CollationAndStability(t *testing.T) {
	entries := []FundEntry{
		{Name: "first", Block: BlockA, Unit: "2"},
		{Name: "second", Block: BlockA, Unit: "10"},
		{Name: "third", Block: BlockA, Unit: "2"},
	}
	sorted := SortByUnit(entries)
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"second", "first", "third"}, []string{sorted[0].Name, sorted[1].Name, sorted[2].Name})
	assert.Equal(t, "first", entries[0].Name, "input must not be modified")
}

func TestSortFunds(t *testing.T) {
	entries := []FundEntry{
		fund(BlockOther, "", 1, StatusPaid),
		fund(BlockShop, "1", 1, StatusPaid),
		fund(BlockB, "3", 1, StatusPaid),
		fund(BlockA, "5", 1, StatusPaid),
		fund(BlockA, "12", 1, StatusPaid),
	}
	SortFunds(entries)
	var got []string
	for _, e := range entries {
		got = append(got, UnitLabel(e, false))
	}
	assert.Equal(t, []string{"A-12", "A-5", "B-3", "Shop-1", "Other"}, got)
}

func TestSortExpenses(t *testing.T) {
	day := func(d int) Date { return Date{Time: time.Date(2025, 10, d, 0, 0, 0, 0, time.UTC)} }
	entries := []ExpenseEntry{{Details: "a", Date: day(1)}, {Details: "b", Date: day(3)}, {Details: "c", Date: day(2)}}
	SortExpenses(entries)
	assert.Equal(t, "b", entries[0].Details)
	assert.Equal(t, "a", entries[2].Details)
}

func TestUnitLabel(t *testing.T) {
	cases := []struct {
		entry FundEntry
		own   bool
		want  string
	}{
		{FundEntry{Block: BlockA, Unit: "101"}, true, "101"},
		{FundEntry{Block: BlockA, Unit: "101"}, false, "A-101"},
		{FundEntry{Block: BlockShop, Unit: "12"}, true, "Shop-12"},
		{FundEntry{Block: BlockOther, Unit: "gate"}, true, "Other-gate"},
		{FundEntry{Block: BlockOther}, true, "Other"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, UnitLabel(tc.entry, tc.own))
	}
}
