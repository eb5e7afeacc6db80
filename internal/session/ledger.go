// Package session owns the mutable application state: named groups,
// each with an ordered member roster and an ordered expense list, and
// the single active group. Derived views (balances, settlements,
// summary) are recomputed from a consistent snapshot on every read and
// never cached.
package session

import (
	"errors"
	"fmt"
	"strings"

	"tripsplit/internal/core"
)

var (
	ErrEmptyGroupName  = errors.New("empty group name")
	ErrGroupExists     = errors.New("group already exists")
	ErrGroupNotFound   = errors.New("group not found")
	ErrLastGroup       = errors.New("cannot delete the last remaining group")
	ErrEmptyPersonName = errors.New("empty person name")
	ErrPersonExists    = errors.New("person already in roster")
	ErrPersonNotFound  = errors.New("person not in roster")
	ErrIndexOutOfRange = errors.New("expense index out of range")
)

// Group is one independent ledger: a named roster plus its expense
// records, both insertion-ordered.
type Group struct {
	Name     string
	People   []string
	Expenses []core.Expense
}

// addExpense appends, preserving insertion order. Record validation is
// the boundary layer's job, not the ledger's.
func (g *Group) addExpense(e core.Expense) {
	g.Expenses = append(g.Expenses, e)
}

func (g *Group) updateExpense(index int, e core.Expense) error {
	if index < 0 || index >= len(g.Expenses) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	g.Expenses[index] = e
	return nil
}

// removeExpense deletes in place; subsequent indices shift down.
func (g *Group) removeExpense(index int) error {
	if index < 0 || index >= len(g.Expenses) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	g.Expenses = append(g.Expenses[:index], g.Expenses[index+1:]...)
	return nil
}

func (g *Group) clearExpenses() {
	g.Expenses = nil
}

// addPerson appends the name if not already present (case-sensitive
// exact match).
func (g *Group) addPerson(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyPersonName
	}
	for _, p := range g.People {
		if p == name {
			return fmt.Errorf("%w: %q", ErrPersonExists, name)
		}
	}
	g.People = append(g.People, name)
	return nil
}

// removePerson removes the name regardless of whether expense records
// still reference it; orphaned paidBy values remain valid records.
func (g *Group) removePerson(name string) error {
	for i, p := range g.People {
		if p == name {
			g.People = append(g.People[:i], g.People[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrPersonNotFound, name)
}

// clone returns a deep copy safe to read outside the manager's lock.
func (g *Group) clone() Group {
	out := Group{Name: g.Name}
	if g.People != nil {
		out.People = append([]string(nil), g.People...)
	}
	if g.Expenses != nil {
		out.Expenses = append([]core.Expense(nil), g.Expenses...)
	}
	return out
}

// orphanPayers lists payers referenced by records but absent from the
// roster, in first-appearance order.
func (g *Group) orphanPayers() []string {
	roster := make(map[string]struct{}, len(g.People))
	for _, p := range g.People {
		roster[p] = struct{}{}
	}
	seen := make(map[string]struct{})
	var orphans []string
	for _, e := range g.Expenses {
		if _, ok := roster[e.PaidBy]; ok {
			continue
		}
		if _, dup := seen[e.PaidBy]; dup {
			continue
		}
		seen[e.PaidBy] = struct{}{}
		orphans = append(orphans, e.PaidBy)
	}
	return orphans
}
