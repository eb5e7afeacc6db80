package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsplit/internal/core"
)

func expense(paidBy string, cents int64) core.Expense {
	return core.Expense{
		Date:     core.NewDate(2025, 6, 1),
		PaidBy:   paidBy,
		Category: core.Food,
		Amount:   core.Money{Cents: cents},
	}
}

func TestBalancesSinglePayer(t *testing.T) {
	roster := []string{"A", "B", "C"}
	expenses := []core.Expense{
		expense("A", 30000),
		expense("B", 0),
		expense("C", 0),
	}

	rows := Balances(expenses, roster)
	require.Len(t, rows, 3)

	assert.Equal(t, "A", rows[0].Person)
	assert.True(t, rows[0].Net.Equal(decimal.NewFromInt(200)), "A net = %s", rows[0].Net)
	assert.Equal(t, StatusToReceive, rows[0].Status)

	for _, i := range []int{1, 2} {
		assert.True(t, rows[i].Net.Equal(decimal.NewFromInt(-100)), "%s net = %s", rows[i].Person, rows[i].Net)
		assert.Equal(t, StatusOwes, rows[i].Status)
	}
	for _, r := range rows {
		assert.True(t, r.Share.Equal(decimal.NewFromInt(100)))
	}
}

func TestBalancesEmptyExpenses(t *testing.T) {
	rows := Balances(nil, []string{"A", "B"})
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.True(t, r.Net.IsZero())
		assert.Equal(t, StatusSettled, r.Status)
	}
}

func TestBalancesEmptyRoster(t *testing.T) {
	rows := Balances([]core.Expense{expense("A", 100)}, nil)
	assert.Empty(t, rows)
}

func TestBalancesZeroSumInvariant(t *testing.T) {
	roster := []string{"A", "B", "C"}
	// 100.00 total over 3 people: share has a repeating fraction.
	expenses := []core.Expense{expense("A", 10000)}

	rows := Balances(expenses, roster)
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Net)
	}
	assert.True(t, sum.Abs().LessThanOrEqual(epsilon), "sum(net) = %s", sum)
}

func TestBalancesOrphanPayerExcluded(t *testing.T) {
	// "Ghost" paid but is no longer in the roster: the total still
	// includes their expense, but no row reports their paid amount.
	roster := []string{"A", "B"}
	expenses := []core.Expense{
		expense("Ghost", 10000),
		expense("A", 2000),
	}

	rows := Balances(expenses, roster)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Paid.Equal(decimal.NewFromInt(20)))
	assert.True(t, rows[1].Paid.IsZero())
	// share = 120/2 = 60 each; nets do NOT sum to zero here.
	assert.True(t, rows[0].Share.Equal(decimal.NewFromInt(60)))
}

func TestBalancesRosterMemberWithoutRecords(t *testing.T) {
	rows := Balances([]core.Expense{expense("A", 5000)}, []string{"A", "B"})
	require.Len(t, rows, 2)
	assert.Equal(t, "B", rows[1].Person)
	assert.True(t, rows[1].Paid.IsZero())
	assert.Equal(t, StatusOwes, rows[1].Status)
}

func TestSummarize(t *testing.T) {
	expenses := []core.Expense{
		{Date: core.NewDate(2025, 6, 1), PaidBy: "A", Category: core.Food, Amount: core.Money{Cents: 1500}},
		{Date: core.NewDate(2025, 6, 2), PaidBy: "B", Category: core.Transport, Amount: core.Money{Cents: 2500}},
		{Date: core.NewDate(2025, 6, 3), PaidBy: "A", Category: core.Food, Amount: core.Money{Cents: 500}},
	}

	s := Summarize(expenses)
	assert.Equal(t, int64(4500), s.TotalSpent.Cents)
	require.Len(t, s.ByCategory, 2)
	// Fixed category order: Transport before Food.
	assert.Equal(t, core.Transport, s.ByCategory[0].Category)
	assert.Equal(t, int64(2500), s.ByCategory[0].Amount.Cents)
	assert.Equal(t, core.Food, s.ByCategory[1].Category)
	assert.Equal(t, int64(2000), s.ByCategory[1].Amount.Cents)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, int64(0), s.TotalSpent.Cents)
	assert.Empty(t, s.ByCategory)
}
