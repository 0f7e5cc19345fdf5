package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyfund/internal/core"
)

func entry(name string, block core.Block, unit string, rupees int64, status core.Status) core.FundEntry {
	return core.FundEntry{Name: name, Block: block, Unit: unit, Amount: core.Money{Cents: rupees * 100}, Status: status}
}

func scenarioA() []core.FundEntry {
	return []core.FundEntry{
		entry("Asha", core.BlockA, "101", 500, core.StatusPaid),
		entry("Ravi", core.BlockA, "102", 500, core.StatusUnpaid),
		entry("Meera", core.BlockB, "201", 700, core.StatusPaid),
	}
}

func sectionNames(p Plan) []string {
	var names []string
	for _, s := range p.Sections {
		names = append(names, s.Name)
	}
	return names
}

func TestFundPlan_AllBlocks(t *testing.T) {
	plan := NewBuilder("").FundPlan(scenarioA(), AllBlocks)

	assert.Equal(t, KindFund, plan.Kind)
	require.Equal(t, []string{"Summary", "Block A", "Block B"}, sectionNames(plan))

	summary := plan.Sections[0]
	require.Len(t, summary.Parts, 2)
	overall := summary.Parts[0]
	assert.Equal(t, StatsPart, overall.Kind)
	assert.Equal(t, int64(170000), overall.Rows[0][1].Amount.Cents)
	assert.Equal(t, int64(120000), overall.Rows[1][1].Amount.Cents)
	assert.Equal(t, int64(50000), overall.Rows[2][1].Amount.Cents)

	blocks := summary.Parts[1]
	require.Len(t, blocks.Rows, 2)
	assert.Equal(t, "A", blocks.Rows[0][0].Text)
	assert.Equal(t, 2, blocks.Rows[0][1].Count)
	assert.Equal(t, 1, blocks.Rows[0][2].Count)
	assert.Equal(t, 1, blocks.Rows[0][3].Count)
	assert.Equal(t, int64(100000), blocks.Rows[0][4].Amount.Cents)
	assert.Equal(t, int64(50000), blocks.Rows[0][5].Amount.Cents)
	require.Len(t, blocks.Footer, 1)
	assert.Equal(t, "Grand Total", blocks.Footer[0][0].Text)
	assert.Equal(t, 3, blocks.Footer[0][1].Count)
}

func TestFundPlan_SingleBlock(t *testing.T) {
	plan := NewBuilder("").FundPlan(scenarioA(), Scope{Block: core.BlockA})

	require.Equal(t, []string{"Block A"}, sectionNames(plan))
	section := plan.Sections[0]
	assert.Equal(t, "Block A - Fund Collection Details", section.Title)

	details := section.Parts[1]
	require.Len(t, details.Rows, 2)
	for _, row := range details.Rows {
		assert.NotEqual(t, "Meera", row[0].Text)
	}
	assert.Equal(t, "101", details.Rows[0][1].Text)
	assert.Equal(t, "Yes", StatusToken(details.Rows[0][3].Status))
	assert.Equal(t, "No", StatusToken(details.Rows[1][3].Status))
	assert.Equal(t, int64(100000), details.Footer[0][2].Amount.Cents)

	trailing := section.Parts[2]
	assert.Equal(t, "Statistics", trailing.Heading)
	assert.Equal(t, 2, trailing.Rows[0][1].Count)
	assert.Equal(t, int64(50000), trailing.Rows[5][1].Amount.Cents)
}

func TestFundPlan_EmptyBlockInScope(t *testing.T) {
	plan := NewBuilder("").FundPlan(scenarioA(), Scope{Block: core.BlockJ})
	assert.Empty(t, plan.Sections)
}

func TestFundPlan_ShopAndOther(t *testing.T) {
	entries := []core.FundEntry{
		entry("Kirana", core.BlockShop, "12", 1000, core.StatusPaid),
		entry("Guard", core.BlockOther, "", 200, core.StatusUnpaid),
	}
	plan := NewBuilder("").FundPlan(entries, AllBlocks)

	require.Equal(t, []string{"Summary", "Shop", "Other"}, sectionNames(plan))
	assert.Equal(t, "Shop-12", plan.Sections[1].Parts[1].Rows[0][1].Text)
	assert.Equal(t, "Other", plan.Sections[2].Parts[1].Rows[0][1].Text)
}

func TestFundPlan_SortsUnitsWithinBlock(t *testing.T) {
	entries := []core.FundEntry{
		entry("two", core.BlockC, "2", 1, core.StatusPaid),
		entry("ten", core.BlockC, "10", 1, core.StatusPaid),
	}
	rows := NewBuilder("").FundPlan(entries, Scope{Block: core.BlockC}).Sections[0].Parts[1].Rows
	assert.Equal(t, "ten", rows[0][0].Text)
	assert.Equal(t, "two", rows[1][0].Text)
}

func TestSummaryPlan(t *testing.T) {
	plan := NewBuilder("Navratri").SummaryPlan(scenarioA())

	require.Len(t, plan.Sections, 1)
	assert.Equal(t, "Navratri Summary", plan.Sections[0].Title)
	blocks := plan.Sections[0].Parts[1]
	require.Len(t, blocks.Rows, 2)
	assert.Equal(t, "Block B", blocks.Rows[1][0].Text)
	assert.Equal(t, int64(70000), blocks.Rows[1][2].Amount.Cents)
	assert.Equal(t, int64(0), blocks.Rows[1][3].Amount.Cents)
}

func TestBalancePlan(t *testing.T) {
	expenses := []core.ExpenseEntry{
		{Details: "Decor", Amount: core.Money{Cents: 30000}, Date: core.NewDate(2025, 10, 2)},
		{Details: "Food", Amount: core.Money{Cents: 40000}, Date: core.NewDate(2025, 10, 1)},
	}
	plan := NewBuilder("").BalancePlan(scenarioA(), expenses)

	require.Len(t, plan.Sections, 1)
	parts := plan.Sections[0].Parts
	assert.Equal(t, int64(120000), parts[0].Rows[0][1].Amount.Cents)
	assert.Equal(t, int64(70000), parts[0].Rows[1][1].Amount.Cents)
	assert.Equal(t, int64(50000), parts[0].Rows[2][1].Amount.Cents)

	table := parts[1]
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Decor", table.Rows[0][1].Text)
	require.Len(t, table.Footer, 2)
	assert.Equal(t, int64(70000), table.Footer[0][2].Amount.Cents)
	assert.Equal(t, int64(50000), table.Footer[1][2].Amount.Cents)
}

func TestBalancePlan_NoExpenses(t *testing.T) {
	plan := NewBuilder("").BalancePlan(scenarioA(), nil)

	table := plan.Sections[0].Parts[1]
	assert.Empty(t, table.Rows)
	assert.Equal(t, int64(0), table.Footer[0][2].Amount.Cents)
	assert.Equal(t, int64(120000), table.Footer[1][2].Amount.Cents)
}

func TestParseScope(t *testing.T) {
	for _, in := range []string{"", "all", "ALL"} {
		s, err := ParseScope(in)
		require.NoError(t, err)
		assert.True(t, s.All())
	}
	s, err := ParseScope("shop")
	require.NoError(t, err)
	assert.Equal(t, core.BlockShop, s.Block)
	assert.True(t, s.Includes(core.BlockShop))
	assert.False(t, s.Includes(core.BlockA))

	_, err = ParseScope("Z")
	assert.ErrorIs(t, err, core.ErrValidation)
}
