// Package storage persists session state to SQLite. Groups are small,
// so mutations mirror the whole group in one transaction instead of
// tracking row-level diffs.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"tripsplit/internal/core"
	"tripsplit/internal/session"
)

// ErrGroupNotFound reports a missing group row.
var ErrGroupNotFound = errors.New("group not found in storage")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements session.Store. Groups come back in creation order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]session.Group, string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, active FROM groups ORDER BY position`)
	if err != nil {
		return nil, "", fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []session.Group
	var active string
	for rows.Next() {
		var name string
		var isActive int
		if err := rows.Scan(&name, &isActive); err != nil {
			return nil, "", fmt.Errorf("scan group: %w", err)
		}
		if isActive != 0 {
			active = name
		}
		groups = append(groups, session.Group{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate groups: %w", err)
	}

	for i := range groups {
		if groups[i].People, err = r.loadPeople(ctx, groups[i].Name); err != nil {
			return nil, "", err
		}
		if groups[i].Expenses, err = r.loadExpenses(ctx, groups[i].Name); err != nil {
			return nil, "", err
		}
	}

	slog.InfoContext(ctx, "Session loaded from SQLite",
		"groups", len(groups), "active_group", active, "component", "storage")
	return groups, active, nil
}

func (r *SQLiteRepository) loadPeople(ctx context.Context, group string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM people WHERE group_name = ? ORDER BY position`, group)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var people []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, name)
	}
	return people, rows.Err()
}

func (r *SQLiteRepository) loadExpenses(ctx context.Context, group string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT spent_on, paid_by, category, amount_cents, remarks
		 FROM expenses WHERE group_name = ? ORDER BY position`, group)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var spentOn, paidBy, category, remarks string
		var cents int64
		if err := rows.Scan(&spentOn, &paidBy, &category, &cents, &remarks); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		date, err := core.ParseDate(spentOn)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", spentOn, err)
		}
		expenses = append(expenses, core.Expense{
			Date:     date,
			PaidBy:   paidBy,
			Category: core.Category(category),
			Amount:   core.Money{Cents: cents},
			Remarks:  remarks,
		})
	}
	return expenses, rows.Err()
}

// ReplaceGroup implements session.Store: upsert the group row, then
// rewrite its people and expenses inside one transaction.
func (r *SQLiteRepository) ReplaceGroup(ctx context.Context, g session.Group, position int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (name, position) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET position = excluded.position`,
		g.Name, position)
	if err != nil {
		return fmt.Errorf("upsert group: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM people WHERE group_name = ?`, g.Name); err != nil {
		return fmt.Errorf("clear people: %w", err)
	}
	for i, name := range g.People {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO people (group_name, position, name) VALUES (?, ?, ?)`,
			g.Name, i, name); err != nil {
			return fmt.Errorf("insert person: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM expenses WHERE group_name = ?`, g.Name); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	for i, e := range g.Expenses {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (group_name, position, spent_on, paid_by, category, amount_cents, remarks)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			g.Name, i, e.Date.String(), e.PaidBy, string(e.Category), e.Amount.Cents, e.Remarks); err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteGroup implements session.Store.
func (r *SQLiteRepository) DeleteGroup(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Cascades are not guaranteed to be on for every connection; delete
	// children explicitly.
	if _, err = tx.ExecContext(ctx, `DELETE FROM expenses WHERE group_name = ?`, name); err != nil {
		return fmt.Errorf("delete expenses: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM people WHERE group_name = ?`, name); err != nil {
		return fmt.Errorf("delete people: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM groups WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SetActive implements session.Store.
func (r *SQLiteRepository) SetActive(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `UPDATE groups SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("clear active flag: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE groups SET active = 1 WHERE name = ?`, name); err != nil {
		return fmt.Errorf("set active flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetGroup loads a single group by name; the sync worker uses it to
// rebuild a workbook from the persisted snapshot.
func (r *SQLiteRepository) GetGroup(ctx context.Context, name string) (session.Group, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM groups WHERE name = ?`, name).Scan(&exists)
	if err != nil {
		return session.Group{}, fmt.Errorf("query group: %w", err)
	}
	if exists == 0 {
		return session.Group{}, fmt.Errorf("%w: %q", ErrGroupNotFound, name)
	}

	g := session.Group{Name: name}
	if g.People, err = r.loadPeople(ctx, name); err != nil {
		return session.Group{}, err
	}
	if g.Expenses, err = r.loadExpenses(ctx, name); err != nil {
		return session.Group{}, err
	}
	return g, nil
}

// GroupNames returns all persisted group names in creation order; the
// worker's periodic pass iterates them.
func (r *SQLiteRepository) GroupNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM groups ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query group names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan group name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
