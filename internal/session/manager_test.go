package session

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsplit/internal/calculator"
	"tripsplit/internal/core"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(context.Background(), nil, nil)
	require.NoError(t, err)
	return m
}

func testExpense(paidBy string, cents int64) core.Expense {
	return core.Expense{
		Date:     core.NewDate(2025, 7, 1),
		PaidBy:   paidBy,
		Category: core.Transport,
		Amount:   core.Money{Cents: cents},
	}
}

func TestNewManagerSeedsDefaultGroup(t *testing.T) {
	m := newTestManager(t)
	assert.Equal(t, DefaultGroupName, m.Active())
	assert.Equal(t, []string{DefaultGroupName}, m.Groups())
	assert.Equal(t, []string{"Alice", "Bob"}, m.People())
	assert.Empty(t, m.Expenses())
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	require.NoError(t, m.CreateGroup(ctx, "Japan 2025"))
	assert.Equal(t, "Japan 2025", m.Active())
	assert.Empty(t, m.People(), "new group starts with empty roster")
	assert.Empty(t, m.Expenses())

	err := m.CreateGroup(ctx, "Japan 2025")
	assert.ErrorIs(t, err, ErrGroupExists)

	err = m.CreateGroup(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyGroupName)

	// Failed creations leave state unchanged.
	assert.Equal(t, []string{DefaultGroupName, "Japan 2025"}, m.Groups())
}

func TestDeleteActiveGroup(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	// Sole group cannot be deleted.
	assert.ErrorIs(t, m.DeleteActiveGroup(ctx), ErrLastGroup)

	require.NoError(t, m.CreateGroup(ctx, "Second"))
	require.NoError(t, m.CreateGroup(ctx, "Third"))
	require.NoError(t, m.SwitchActiveGroup(ctx, "Second"))

	require.NoError(t, m.DeleteActiveGroup(ctx))
	// First group in creation order is promoted.
	assert.Equal(t, DefaultGroupName, m.Active())
	assert.Equal(t, []string{DefaultGroupName, "Third"}, m.Groups())
}

func TestSwitchActiveGroup(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	assert.ErrorIs(t, m.SwitchActiveGroup(ctx, "nope"), ErrGroupNotFound)

	require.NoError(t, m.CreateGroup(ctx, "Other"))
	require.NoError(t, m.SwitchActiveGroup(ctx, DefaultGroupName))
	assert.Equal(t, DefaultGroupName, m.Active())
}

func TestRosterMutations(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	require.NoError(t, m.AddPerson(ctx, "Carol"))
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, m.People())

	assert.ErrorIs(t, m.AddPerson(ctx, "Carol"), ErrPersonExists)
	assert.ErrorIs(t, m.AddPerson(ctx, ""), ErrEmptyPersonName)

	// Case-sensitive match: "carol" is a different person.
	require.NoError(t, m.AddPerson(ctx, "carol"))

	require.NoError(t, m.RemovePerson(ctx, "carol"))
	assert.ErrorIs(t, m.RemovePerson(ctx, "carol"), ErrPersonNotFound)
}

func TestExpenseMutations(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	require.NoError(t, m.AddExpense(ctx, testExpense("Alice", 1000)))
	require.NoError(t, m.AddExpense(ctx, testExpense("Bob", 2000)))
	require.Len(t, m.Expenses(), 2)

	updated := testExpense("Alice", 1500)
	require.NoError(t, m.UpdateExpense(ctx, 0, updated))
	assert.Equal(t, int64(1500), m.Expenses()[0].Amount.Cents)

	assert.ErrorIs(t, m.UpdateExpense(ctx, 5, updated), ErrIndexOutOfRange)
	assert.ErrorIs(t, m.UpdateExpense(ctx, -1, updated), ErrIndexOutOfRange)

	// Removal shifts later indices down.
	require.NoError(t, m.RemoveExpense(ctx, 0))
	exps := m.Expenses()
	require.Len(t, exps, 1)
	assert.Equal(t, "Bob", exps[0].PaidBy)

	assert.ErrorIs(t, m.RemoveExpense(ctx, 1), ErrIndexOutOfRange)

	require.NoError(t, m.ClearExpenses(ctx))
	assert.Empty(t, m.Expenses())
}

func TestGroupsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	require.NoError(t, m.AddExpense(ctx, testExpense("Alice", 1000)))
	require.NoError(t, m.CreateGroup(ctx, "Weekend"))
	assert.Empty(t, m.Expenses())

	require.NoError(t, m.SwitchActiveGroup(ctx, DefaultGroupName))
	assert.Len(t, m.Expenses(), 1)
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	require.NoError(t, m.AddExpense(ctx, testExpense("Alice", 30000)))
	r := m.Report()

	assert.Equal(t, DefaultGroupName, r.Group)
	require.Len(t, r.Balances, 2)
	assert.True(t, r.Balances[0].Net.Equal(decimal.NewFromInt(150)))
	require.Len(t, r.Settlements, 1)
	assert.Equal(t, "Bob", r.Settlements[0].From)
	assert.Equal(t, "Alice", r.Settlements[0].To)
	assert.Equal(t, int64(30000), r.Summary.TotalSpent.Cents)
	assert.Empty(t, r.OrphanPayers)
}

func TestReportOrphanPayers(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	require.NoError(t, m.AddExpense(ctx, testExpense("Bob", 5000)))
	require.NoError(t, m.RemovePerson(ctx, "Bob"))

	r := m.Report()
	assert.Equal(t, []string{"Bob"}, r.OrphanPayers)
	require.Len(t, r.Balances, 1)
	// Bob's payment still counts toward the total Alice owes a share of.
	assert.Equal(t, calculator.StatusOwes, r.Balances[0].Status)
}

// fakeStore records calls and can simulate failures.
type fakeStore struct {
	groups   []Group
	active   string
	replaced []string
	deleted  []string
	fail     bool
}

func (f *fakeStore) Load(context.Context) ([]Group, string, error) {
	return f.groups, f.active, nil
}

func (f *fakeStore) ReplaceGroup(_ context.Context, g Group, _ int) error {
	if f.fail {
		return errors.New("store down")
	}
	f.replaced = append(f.replaced, g.Name)
	return nil
}

func (f *fakeStore) DeleteGroup(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeStore) SetActive(_ context.Context, name string) error {
	f.active = name
	return nil
}

type fakePublisher struct {
	synced []string
}

func (f *fakePublisher) PublishGroupSync(_ context.Context, group string, _ int64) error {
	f.synced = append(f.synced, group)
	return nil
}

func TestManagerRehydratesFromStore(t *testing.T) {
	store := &fakeStore{
		groups: []Group{
			{Name: "First", People: []string{"X"}},
			{Name: "Second", People: []string{"Y"}, Expenses: []core.Expense{testExpense("Y", 700)}},
		},
		active: "Second",
	}
	m, err := NewManager(context.Background(), store, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"First", "Second"}, m.Groups())
	assert.Equal(t, "Second", m.Active())
	assert.Len(t, m.Expenses(), 1)
}

func TestManagerWriteThroughAndSync(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	pub := &fakePublisher{}
	m, err := NewManager(ctx, store, pub)
	require.NoError(t, err)

	require.NoError(t, m.AddExpense(ctx, testExpense("Alice", 100)))
	assert.Contains(t, store.replaced, DefaultGroupName)
	assert.Equal(t, []string{DefaultGroupName}, pub.synced)

	// Store failures must not roll back the in-memory mutation.
	store.fail = true
	require.NoError(t, m.AddExpense(ctx, testExpense("Bob", 200)))
	assert.Len(t, m.Expenses(), 2)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	require.NoError(t, m.AddExpense(ctx, testExpense("Alice", 100)))

	snap := m.Snapshot()
	snap.People[0] = "Mallory"
	snap.Expenses[0].Amount.Cents = 999999

	assert.Equal(t, "Alice", m.People()[0])
	assert.Equal(t, int64(100), m.Expenses()[0].Amount.Cents)
}
