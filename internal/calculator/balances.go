// Package calculator derives balances and settlement plans from a
// group's expense records. All functions are pure: they never mutate
// their inputs and never fail for well-formed input (an empty roster or
// empty expense list yields zero shares, not an error).
package calculator

import (
	"github.com/shopspring/decimal"

	"tripsplit/internal/core"
)

// Status classifies a member's net position relative to the equal share.
type Status string

const (
	StatusToReceive Status = "To Receive"
	StatusOwes      Status = "Owes"
	StatusSettled   Status = "Settled"
)

// epsilon absorbs division remainders when comparing nets to zero.
var epsilon = decimal.New(1, -6) // 1e-6

// Balance is one member's derived row: how much they paid, their equal
// share of the group total, and the resulting net position.
type Balance struct {
	Person string
	Paid   decimal.Decimal
	Share  decimal.Decimal
	Net    decimal.Decimal // Paid - Share; positive = owed money
	Status Status
}

// Balances computes one row per roster member, in roster order.
//
// The share is an equal split of the full expense total over the
// current roster. Payers that appear in records but not in the roster
// still count toward the total, but their paid amounts have no row;
// when that happens the nets no longer sum to zero (callers that care
// should warn, see session.Manager).
func Balances(expenses []core.Expense, roster []string) []Balance {
	total := decimal.Zero
	paid := make(map[string]decimal.Decimal, len(roster))
	for _, name := range roster {
		paid[name] = decimal.Zero
	}
	for _, e := range expenses {
		amount := e.Amount.Decimal()
		total = total.Add(amount)
		if cur, ok := paid[e.PaidBy]; ok {
			paid[e.PaidBy] = cur.Add(amount)
		}
	}

	share := decimal.Zero
	if len(roster) > 0 {
		share = total.Div(decimal.NewFromInt(int64(len(roster))))
	}

	rows := make([]Balance, 0, len(roster))
	for _, name := range roster {
		net := paid[name].Sub(share)
		rows = append(rows, Balance{
			Person: name,
			Paid:   paid[name],
			Share:  share,
			Net:    net,
			Status: classify(net),
		})
	}
	return rows
}

func classify(net decimal.Decimal) Status {
	switch {
	case net.GreaterThan(epsilon):
		return StatusToReceive
	case net.LessThan(epsilon.Neg()):
		return StatusOwes
	default:
		return StatusSettled
	}
}
