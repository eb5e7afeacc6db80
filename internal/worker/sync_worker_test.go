package worker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsplit/internal/amqp"
	"tripsplit/internal/core"
	"tripsplit/internal/session"
	"tripsplit/internal/sheets/memory"
	"tripsplit/internal/storage"
)

func newTestWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *memory.Sink) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "w.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	sink := memory.New()
	return NewSyncWorker(repo, sink, "$"), repo, sink
}

func seedGroup(t *testing.T, repo *storage.SQLiteRepository, name string) {
	t.Helper()
	g := session.Group{
		Name:   name,
		People: []string{"Alice", "Bob"},
		Expenses: []core.Expense{{
			Date:     core.NewDate(2025, 4, 2),
			PaidBy:   "Alice",
			Category: core.Food,
			Amount:   core.Money{Cents: 10000},
		}},
	}
	require.NoError(t, repo.ReplaceGroup(context.Background(), g, 0))
}

func TestHandleSyncMessageUploadsWorkbook(t *testing.T) {
	w, repo, sink := newTestWorker(t)
	seedGroup(t, repo, "Japan 2025")

	msg := amqp.NewGroupSyncMessage("Japan 2025", 1)
	require.NoError(t, w.HandleSyncMessage(context.Background(), msg))

	wb, ok := sink.Get("Japan 2025")
	require.True(t, ok)
	require.Len(t, wb.Sections, 4)

	assert.Equal(t, "Expenses", wb.Sections[0].Title)
	require.Len(t, wb.Sections[0].Rows, 2) // header + one record
	assert.Equal(t, "$100.00", wb.Sections[0].Rows[1][3])

	assert.Equal(t, "Balances", wb.Sections[1].Title)
	require.Len(t, wb.Sections[1].Rows, 3)
	assert.Equal(t, "$50.00", wb.Sections[1].Rows[1][3]) // Alice net

	assert.Equal(t, "Settlements", wb.Sections[2].Title)
	require.Len(t, wb.Sections[2].Rows, 2)
	assert.Equal(t, "Bob", wb.Sections[2].Rows[1][0])

	assert.Equal(t, "Summary", wb.Sections[3].Title)
	last := wb.Sections[3].Rows[len(wb.Sections[3].Rows)-1]
	assert.Equal(t, "Total", last[0])
	assert.Equal(t, "$100.00", last[1])
}

func TestHandleSyncMessageMissingGroupIsSkipped(t *testing.T) {
	w, _, sink := newTestWorker(t)

	msg := amqp.NewGroupSyncMessage("gone", 3)
	require.NoError(t, w.HandleSyncMessage(context.Background(), msg))
	assert.Equal(t, 0, sink.Writes())
}

func TestSyncAll(t *testing.T) {
	w, repo, sink := newTestWorker(t)
	seedGroup(t, repo, "first")
	require.NoError(t, repo.ReplaceGroup(context.Background(), session.Group{Name: "second"}, 1))

	require.NoError(t, w.SyncAll(context.Background()))
	assert.Equal(t, 2, sink.Writes())

	_, ok := sink.Get("first")
	assert.True(t, ok)
	_, ok = sink.Get("second")
	assert.True(t, ok)
}
