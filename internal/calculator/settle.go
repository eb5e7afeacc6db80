package calculator

import "github.com/shopspring/decimal"

// Instruction is a single directed payment that reduces outstanding
// net balances.
type Instruction struct {
	From   string
	To     string
	Amount decimal.Decimal // rounded half-up to 2 places
}

type party struct {
	name      string
	remaining decimal.Decimal // positive magnitude
}

// Settle turns a balance vector into point-to-point payments using
// greedy two-cursor matching in roster order.
//
// Creditors and debtors keep their roster order; each step settles the
// minimum of the current pair's remainders and advances whichever side
// hit zero (both when they zero out together, so no exhausted row ever
// stalls a cursor). An empty result means the group is already settled.
//
// The emitted count is at most creditors+debtors-1, which is optimal
// for this matching class but not globally minimal-transaction-count.
// Roster-order matching is intentional: amount-sorted matching would
// change which pairs are told to pay each other between runs.
func Settle(balances []Balance) []Instruction {
	var creditors, debtors []party
	for _, b := range balances {
		switch {
		case b.Net.GreaterThan(epsilon):
			creditors = append(creditors, party{name: b.Person, remaining: b.Net})
		case b.Net.LessThan(epsilon.Neg()):
			debtors = append(debtors, party{name: b.Person, remaining: b.Net.Neg()})
		}
	}

	var plan []Instruction
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		settle := decimal.Min(debtors[i].remaining, creditors[j].remaining)

		// Sub-cent remainders round to 0.00; no point telling anyone
		// to pay that.
		if rounded := settle.Round(2); rounded.IsPositive() {
			plan = append(plan, Instruction{
				From:   debtors[i].name,
				To:     creditors[j].name,
				Amount: rounded,
			})
		}

		// Subtract the unrounded value so remainders stay exact.
		debtors[i].remaining = debtors[i].remaining.Sub(settle)
		creditors[j].remaining = creditors[j].remaining.Sub(settle)

		advanced := false
		if debtors[i].remaining.LessThanOrEqual(epsilon) {
			i++
			advanced = true
		}
		if creditors[j].remaining.LessThanOrEqual(epsilon) {
			j++
			advanced = true
		}
		if !advanced {
			// Unreachable: the min side always zeroes out. Guard
			// against an infinite loop anyway.
			break
		}
	}
	return plan
}
