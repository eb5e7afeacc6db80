package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"tripsplit/internal/calculator"
	"tripsplit/internal/core"
)

const (
	// DefaultGroupName seeds a fresh session with one active group.
	DefaultGroupName = "My Trip"
)

// defaultMembers are the placeholder roster of the seeded group.
var defaultMembers = []string{"Alice", "Bob"}

// Store persists session state. Persistence is write-through and
// best-effort: failures are logged, never rolled back into memory
// (durability is explicitly out of scope).
type Store interface {
	// Load returns all groups in creation order plus the active group
	// name. An empty slice means a fresh store.
	Load(ctx context.Context) ([]Group, string, error)
	// ReplaceGroup upserts a whole group at the given creation-order
	// position.
	ReplaceGroup(ctx context.Context, g Group, position int) error
	DeleteGroup(ctx context.Context, name string) error
	SetActive(ctx context.Context, name string) error
}

// Publisher emits best-effort sync notifications after mutations.
type Publisher interface {
	PublishGroupSync(ctx context.Context, group string, version int64) error
}

// Report bundles every derived view of one group, computed atomically
// from a single snapshot.
type Report struct {
	Group        string
	Balances     []calculator.Balance
	Settlements  []calculator.Instruction
	Summary      calculator.Summary
	OrphanPayers []string // payers no longer in the roster; balances omit them
}

// Manager owns the session: the group map, creation order, and the
// active group. One RWMutex guards all of it so a mutation can never
// interleave with a balance/settlement read of the same group.
type Manager struct {
	mu       sync.RWMutex
	groups   map[string]*Group
	order    []string // creation order
	active   string
	versions map[string]int64

	store Store     // optional
	pub   Publisher // optional
}

// NewManager builds a session from the store's contents, seeding a
// default group with placeholder members when the store is empty (or
// absent).
func NewManager(ctx context.Context, store Store, pub Publisher) (*Manager, error) {
	m := &Manager{
		groups:   make(map[string]*Group),
		versions: make(map[string]int64),
		store:    store,
		pub:      pub,
	}

	if store != nil {
		groups, active, err := store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		for i := range groups {
			g := groups[i]
			m.groups[g.Name] = &g
			m.order = append(m.order, g.Name)
		}
		if _, ok := m.groups[active]; ok {
			m.active = active
		} else if len(m.order) > 0 {
			m.active = m.order[0]
		}
	}

	if len(m.order) == 0 {
		g := &Group{Name: DefaultGroupName, People: append([]string(nil), defaultMembers...)}
		m.groups[g.Name] = g
		m.order = []string{g.Name}
		m.active = g.Name
		m.persistGroup(ctx, g)
		m.persistActive(ctx)
	}

	slog.InfoContext(ctx, "Session initialized",
		"groups", len(m.order),
		"active_group", m.active,
		"component", "session")
	return m, nil
}

// CreateGroup adds an empty group and makes it active.
func (m *Manager) CreateGroup(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyGroupName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[name]; ok {
		return fmt.Errorf("%w: %q", ErrGroupExists, name)
	}
	g := &Group{Name: name}
	m.groups[name] = g
	m.order = append(m.order, name)
	m.active = name

	m.persistGroup(ctx, g)
	m.persistActive(ctx)
	m.notify(ctx, name)
	slog.InfoContext(ctx, "Group created", "group", name, "component", "session")
	return nil
}

// DeleteActiveGroup removes the active group and promotes the first
// remaining group in creation order. Deleting the sole group is refused.
func (m *Manager) DeleteActiveGroup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.order) <= 1 {
		return ErrLastGroup
	}

	deleted := m.active
	delete(m.groups, deleted)
	delete(m.versions, deleted)
	for i, name := range m.order {
		if name == deleted {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.active = m.order[0]

	if m.store != nil {
		if err := m.store.DeleteGroup(ctx, deleted); err != nil {
			slog.ErrorContext(ctx, "Failed to persist group deletion",
				"group", deleted, "error", err, "component", "session")
		}
	}
	m.persistActive(ctx)
	slog.InfoContext(ctx, "Group deleted", "group", deleted, "now_active", m.active, "component", "session")
	return nil
}

// SwitchActiveGroup makes a known group active.
func (m *Manager) SwitchActiveGroup(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[name]; !ok {
		return fmt.Errorf("%w: %q", ErrGroupNotFound, name)
	}
	m.active = name
	m.persistActive(ctx)
	return nil
}

// Groups returns the group names in creation order.
func (m *Manager) Groups() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Active returns the active group's name.
func (m *Manager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// AddPerson appends a member to the active group's roster.
func (m *Manager) AddPerson(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.groups[m.active]
	if err := g.addPerson(name); err != nil {
		return err
	}
	m.persistGroup(ctx, g)
	m.notify(ctx, g.Name)
	return nil
}

// RemovePerson drops a member from the roster. Expense records that
// still reference the removed payer stay in the ledger; their paid
// amounts silently vanish from the balance table.
func (m *Manager) RemovePerson(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.groups[m.active]
	if err := g.removePerson(name); err != nil {
		return err
	}
	if orphans := g.orphanPayers(); len(orphans) > 0 {
		slog.WarnContext(ctx, "Roster removal left orphaned expense payers",
			"group", g.Name, "orphan_payers", orphans, "component", "session")
	}
	m.persistGroup(ctx, g)
	m.notify(ctx, g.Name)
	return nil
}

// People returns the active roster in insertion order.
func (m *Manager) People() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.groups[m.active].People...)
}

// AddExpense appends a record to the active group's ledger.
func (m *Manager) AddExpense(ctx context.Context, e core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.groups[m.active]
	g.addExpense(e)
	m.persistGroup(ctx, g)
	m.notify(ctx, g.Name)
	slog.InfoContext(ctx, "Expense added",
		"group", g.Name,
		"paid_by", e.PaidBy,
		"category", string(e.Category),
		"amount_cents", e.Amount.Cents,
		"component", "session")
	return nil
}

// UpdateExpense replaces the record at index in place.
func (m *Manager) UpdateExpense(ctx context.Context, index int, e core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.groups[m.active]
	if err := g.updateExpense(index, e); err != nil {
		return err
	}
	m.persistGroup(ctx, g)
	m.notify(ctx, g.Name)
	return nil
}

// RemoveExpense deletes the record at index; later indices shift down.
func (m *Manager) RemoveExpense(ctx context.Context, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.groups[m.active]
	if err := g.removeExpense(index); err != nil {
		return err
	}
	m.persistGroup(ctx, g)
	m.notify(ctx, g.Name)
	return nil
}

// ClearExpenses empties the active group's ledger (bulk reset).
func (m *Manager) ClearExpenses(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.groups[m.active]
	n := len(g.Expenses)
	g.clearExpenses()
	m.persistGroup(ctx, g)
	m.notify(ctx, g.Name)
	slog.InfoContext(ctx, "Expenses cleared", "group", g.Name, "removed", n, "component", "session")
	return nil
}

// Expenses returns a copy of the active group's records in insertion
// order.
func (m *Manager) Expenses() []core.Expense {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.Expense(nil), m.groups[m.active].Expenses...)
}

// Snapshot returns a deep copy of the active group.
func (m *Manager) Snapshot() Group {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.groups[m.active].clone()
}

// Report computes balances, settlements and the summary from one
// consistent snapshot of the active group.
func (m *Manager) Report() Report {
	m.mu.RLock()
	g := m.groups[m.active].clone()
	m.mu.RUnlock()

	return BuildReport(g)
}

// BuildReport derives every view from an already-taken snapshot. Shared
// with the sync worker, which reports on groups loaded from storage.
func BuildReport(g Group) Report {
	balances := calculator.Balances(g.Expenses, g.People)
	return Report{
		Group:        g.Name,
		Balances:     balances,
		Settlements:  calculator.Settle(balances),
		Summary:      calculator.Summarize(g.Expenses),
		OrphanPayers: g.orphanPayers(),
	}
}

// persistGroup mirrors a group to the store, best-effort.
func (m *Manager) persistGroup(ctx context.Context, g *Group) {
	if m.store == nil {
		return
	}
	pos := 0
	for i, name := range m.order {
		if name == g.Name {
			pos = i
			break
		}
	}
	if err := m.store.ReplaceGroup(ctx, g.clone(), pos); err != nil {
		slog.ErrorContext(ctx, "Failed to persist group",
			"group", g.Name, "error", err, "component", "session")
	}
}

func (m *Manager) persistActive(ctx context.Context) {
	if m.store == nil {
		return
	}
	if err := m.store.SetActive(ctx, m.active); err != nil {
		slog.ErrorContext(ctx, "Failed to persist active group",
			"group", m.active, "error", err, "component", "session")
	}
}

// notify publishes a sync message for the group, best-effort.
func (m *Manager) notify(ctx context.Context, group string) {
	m.versions[group]++
	if m.pub == nil {
		return
	}
	if err := m.pub.PublishGroupSync(ctx, group, m.versions[group]); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"group", group, "error", err, "component", "session")
	}
}
