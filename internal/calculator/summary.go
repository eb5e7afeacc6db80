package calculator

import "tripsplit/internal/core"

// CategoryAmount is an amount aggregated by category name.
type CategoryAmount struct {
	Category core.Category
	Amount   core.Money
}

// Summary is the aggregate view of a group's spending.
type Summary struct {
	TotalSpent core.Money
	ByCategory []CategoryAmount // fixed category order, zero categories omitted
}

// Summarize totals the expense list overall and per category.
// Sums stay in cents, so no rounding is involved.
func Summarize(expenses []core.Expense) Summary {
	byCat := make(map[core.Category]int64)
	var total int64
	for _, e := range expenses {
		total += e.Amount.Cents
		byCat[e.Category] += e.Amount.Cents
	}

	s := Summary{TotalSpent: core.Money{Cents: total}}
	for _, c := range core.Categories() {
		if cents, ok := byCat[c]; ok {
			s.ByCategory = append(s.ByCategory, CategoryAmount{
				Category: c,
				Amount:   core.Money{Cents: cents},
			})
		}
	}
	return s
}
