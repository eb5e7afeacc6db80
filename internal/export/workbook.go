// Package export serializes a group's derived tables to a CSV workbook:
// one file per named section (expenses, balances, settlements). It is a
// pure serialization layer and carries no business logic; failures here
// never touch ledger state.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"tripsplit/internal/calculator"
	"tripsplit/internal/core"
)

// Section file names inside a group's workbook directory.
const (
	ExpensesFile    = "expenses.csv"
	BalancesFile    = "balances.csv"
	SettlementsFile = "settlements.csv"
)

// ExpenseRow is the CSV shape of a raw expense record.
type ExpenseRow struct {
	Date     string          `csv:"Date"`
	PaidBy   string          `csv:"PaidBy"`
	Category string          `csv:"Category"`
	Amount   decimal.Decimal `csv:"Amount"`
	Remarks  string          `csv:"Remarks"`
}

// BalanceRow is the CSV shape of one balance-table row.
type BalanceRow struct {
	Person    string          `csv:"Person"`
	Paid      decimal.Decimal `csv:"Paid"`
	ShareOwed decimal.Decimal `csv:"ShareOwed"`
	Net       decimal.Decimal `csv:"Net"`
	Remarks   string          `csv:"Remarks"` // classification: To Receive / Owes / Settled
}

// SettlementRow is the CSV shape of one payment instruction.
type SettlementRow struct {
	From   string          `csv:"From"`
	To     string          `csv:"To"`
	Amount decimal.Decimal `csv:"Amount"`
}

// WriteWorkbook writes the three sections under dir/<group>/ and
// returns the created file paths.
func WriteWorkbook(dir, group string, expenses []core.Expense, balances []calculator.Balance, settlements []calculator.Instruction) ([]string, error) {
	target := filepath.Join(dir, sanitizeName(group))
	if err := os.MkdirAll(target, 0750); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	files := []struct {
		name string
		rows any
	}{
		{ExpensesFile, ExpenseRows(expenses)},
		{BalancesFile, balanceRows(balances)},
		{SettlementsFile, settlementRows(settlements)},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(target, f.name)
		if err := writeCSV(path, f.rows); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	slog.Info("Workbook exported",
		"group", group,
		"directory", target,
		"expenses", len(expenses),
		"component", "export")
	return paths, nil
}

// ExpenseRows converts records to their CSV shape. Amounts are exact
// two-decimal values by construction.
func ExpenseRows(expenses []core.Expense) []ExpenseRow {
	rows := make([]ExpenseRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, ExpenseRow{
			Date:     e.Date.String(),
			PaidBy:   e.PaidBy,
			Category: string(e.Category),
			Amount:   e.Amount.Decimal(),
			Remarks:  e.Remarks,
		})
	}
	return rows
}

func balanceRows(balances []calculator.Balance) []BalanceRow {
	rows := make([]BalanceRow, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, BalanceRow{
			Person:    b.Person,
			Paid:      b.Paid.Round(2),
			ShareOwed: b.Share.Round(2),
			Net:       b.Net.Round(2),
			Remarks:   string(b.Status),
		})
	}
	return rows
}

func settlementRows(settlements []calculator.Instruction) []SettlementRow {
	rows := make([]SettlementRow, 0, len(settlements))
	for _, s := range settlements {
		rows = append(rows, SettlementRow{From: s.From, To: s.To, Amount: s.Amount})
	}
	return rows
}

// ReadExpenses parses an exported expenses section back into records.
func ReadExpenses(path string) ([]core.Expense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open expenses csv: %w", err)
	}
	defer file.Close()

	var rows []ExpenseRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("parse expenses csv: %w", err)
	}

	expenses := make([]core.Expense, 0, len(rows))
	for i, row := range rows {
		date, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		category, err := core.ParseCategory(row.Category)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		expenses = append(expenses, core.Expense{
			Date:     date,
			PaidBy:   row.PaidBy,
			Category: category,
			Amount:   core.MoneyFromDecimal(row.Amount),
			Remarks:  row.Remarks,
		})
	}
	return expenses, nil
}

func writeCSV(path string, rows any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// sanitizeName makes a group name safe as a directory component.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 32 {
			return -1
		}
		return r
	}, name)
}
