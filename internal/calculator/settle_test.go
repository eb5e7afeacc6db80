package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsplit/internal/core"
)

func TestSettleSinglePayer(t *testing.T) {
	roster := []string{"A", "B", "C"}
	expenses := []core.Expense{
		expense("A", 30000),
		expense("B", 0),
		expense("C", 0),
	}

	plan := Settle(Balances(expenses, roster))
	require.Len(t, plan, 2)

	// Debtors in roster order, both paying the sole creditor.
	assert.Equal(t, "B", plan[0].From)
	assert.Equal(t, "A", plan[0].To)
	assert.True(t, plan[0].Amount.Equal(decimal.NewFromInt(100)))

	assert.Equal(t, "C", plan[1].From)
	assert.Equal(t, "A", plan[1].To)
	assert.True(t, plan[1].Amount.Equal(decimal.NewFromInt(100)))
}

func TestSettleAlreadySettled(t *testing.T) {
	// No expenses at all: empty plan, a success state.
	plan := Settle(Balances(nil, []string{"A", "B"}))
	assert.Empty(t, plan)

	// Everyone paid exactly the share: still empty.
	expenses := []core.Expense{expense("A", 5000), expense("B", 5000)}
	plan = Settle(Balances(expenses, []string{"A", "B"}))
	assert.Empty(t, plan)
}

func TestSettleIndependentPairs(t *testing.T) {
	// Nets: A=+50, B=-50, C=+30, D=-30. The pairs zero out
	// simultaneously, so both cursors advance and no cross-matching
	// occurs.
	balances := []Balance{
		{Person: "A", Net: decimal.NewFromInt(50)},
		{Person: "B", Net: decimal.NewFromInt(-50)},
		{Person: "C", Net: decimal.NewFromInt(30)},
		{Person: "D", Net: decimal.NewFromInt(-30)},
	}

	plan := Settle(balances)
	require.Len(t, plan, 2)
	assert.Equal(t, Instruction{From: "B", To: "A", Amount: decimal.NewFromInt(50).Round(2)}, plan[0])
	assert.Equal(t, Instruction{From: "D", To: "C", Amount: decimal.NewFromInt(30).Round(2)}, plan[1])
}

func TestSettlePartialMatching(t *testing.T) {
	// One creditor absorbs several debtors.
	balances := []Balance{
		{Person: "A", Net: decimal.NewFromInt(70)},
		{Person: "B", Net: decimal.NewFromInt(-20)},
		{Person: "C", Net: decimal.NewFromInt(-50)},
	}

	plan := Settle(balances)
	require.Len(t, plan, 2)
	assert.Equal(t, "B", plan[0].From)
	assert.True(t, plan[0].Amount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "C", plan[1].From)
	assert.True(t, plan[1].Amount.Equal(decimal.NewFromInt(50)))
}

// Replaying the plan (credit the receiver, debit the payer) must
// reproduce the original net vector.
func TestSettleReplayReproducesNets(t *testing.T) {
	roster := []string{"A", "B", "C", "D"}
	expenses := []core.Expense{
		expense("A", 12000),
		expense("B", 4000),
		expense("C", 3500),
		expense("D", 500),
	}

	rows := Balances(expenses, roster)
	plan := Settle(rows)

	replayed := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		replayed[r.Person] = decimal.Zero
	}
	for _, ins := range plan {
		replayed[ins.From] = replayed[ins.From].Sub(ins.Amount)
		replayed[ins.To] = replayed[ins.To].Add(ins.Amount)
	}
	for _, r := range rows {
		diff := r.Net.Add(replayed[r.Person].Neg()).Abs()
		assert.True(t, diff.LessThanOrEqual(decimal.New(1, -2)),
			"%s: net %s vs replayed %s", r.Person, r.Net, replayed[r.Person])
	}
}

// Instruction count never exceeds creditors+debtors-1.
func TestSettleInstructionBound(t *testing.T) {
	roster := []string{"A", "B", "C", "D", "E"}
	expenses := []core.Expense{
		expense("A", 9900),
		expense("B", 7300),
		expense("C", 100),
	}

	rows := Balances(expenses, roster)
	var creditors, debtors int
	for _, r := range rows {
		switch r.Status {
		case StatusToReceive:
			creditors++
		case StatusOwes:
			debtors++
		}
	}
	plan := Settle(rows)
	assert.LessOrEqual(t, len(plan), creditors+debtors-1)
}

// Total settled equals the sum of receivables (= sum of payables).
func TestSettleConservation(t *testing.T) {
	roster := []string{"A", "B", "C"}
	expenses := []core.Expense{expense("A", 10000), expense("B", 2000)}

	rows := Balances(expenses, roster)
	receivable := decimal.Zero
	for _, r := range rows {
		if r.Net.GreaterThan(epsilon) {
			receivable = receivable.Add(r.Net)
		}
	}

	settled := decimal.Zero
	for _, ins := range Settle(rows) {
		settled = settled.Add(ins.Amount)
	}
	assert.True(t, settled.Sub(receivable).Abs().LessThanOrEqual(decimal.New(1, -2)),
		"settled %s vs receivable %s", settled, receivable)
}
