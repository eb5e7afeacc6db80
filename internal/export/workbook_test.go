package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsplit/internal/calculator"
	"tripsplit/internal/core"
)

func sampleExpenses() []core.Expense {
	return []core.Expense{
		{
			Date:     core.NewDate(2025, 4, 2),
			PaidBy:   "Alice",
			Category: core.Transport,
			Amount:   core.Money{Cents: 20000},
			Remarks:  "rail passes",
		},
		{
			Date:     core.NewDate(2025, 4, 3),
			PaidBy:   "Bob",
			Category: core.Food,
			Amount:   core.Money{Cents: 0},
		},
		{
			Date:     core.NewDate(2025, 4, 3),
			PaidBy:   "Alice",
			Category: core.Other,
			Amount:   core.Money{Cents: 1234},
			Remarks:  "coin lockers, station",
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	expenses := sampleExpenses()
	balances := calculator.Balances(expenses, []string{"Alice", "Bob"})
	settlements := calculator.Settle(balances)

	paths, err := WriteWorkbook(dir, "Japan 2025", expenses, balances, settlements)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
		assert.Equal(t, filepath.Join(dir, "Japan 2025"), filepath.Dir(p))
	}
}

func TestExpensesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	expenses := sampleExpenses()

	_, err := WriteWorkbook(dir, "roundtrip", expenses, nil, nil)
	require.NoError(t, err)

	parsed, err := ReadExpenses(filepath.Join(dir, "roundtrip", ExpensesFile))
	require.NoError(t, err)
	require.Len(t, parsed, len(expenses))

	for i := range expenses {
		assert.Equal(t, expenses[i].Date.String(), parsed[i].Date.String(), "row %d", i)
		assert.Equal(t, expenses[i].PaidBy, parsed[i].PaidBy, "row %d", i)
		assert.Equal(t, expenses[i].Category, parsed[i].Category, "row %d", i)
		assert.Equal(t, expenses[i].Amount.Cents, parsed[i].Amount.Cents, "row %d", i)
		assert.Equal(t, expenses[i].Remarks, parsed[i].Remarks, "row %d", i)
	}
}

func TestBalanceRowsRoundedToTwoDecimals(t *testing.T) {
	expenses := []core.Expense{{
		Date:     core.NewDate(2025, 4, 2),
		PaidBy:   "Alice",
		Category: core.Food,
		Amount:   core.Money{Cents: 10000},
	}}
	balances := calculator.Balances(expenses, []string{"Alice", "Bob", "Carol"})

	rows := balanceRows(balances)
	require.Len(t, rows, 3)
	// 100/3 has a repeating expansion; exported values carry two decimals.
	assert.True(t, rows[0].ShareOwed.Equal(decimal.RequireFromString("33.33")),
		"got %s", rows[0].ShareOwed)
	assert.Equal(t, string(calculator.StatusToReceive), rows[0].Remarks)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "a_b", sanitizeName("a/b"))
	assert.Equal(t, "trip 2025", sanitizeName("  trip 2025  "))
	assert.Equal(t, "q_", sanitizeName(`q?`))
}

func TestReadExpensesRejectsBadRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	csv := "Date,PaidBy,Category,Amount,Remarks\n2025-04-02,Alice,NotACategory,10.00,\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	_, err := ReadExpenses(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
}
