// Package worker mirrors persisted groups to a spreadsheet sink. Each
// sync message names a group; the worker reloads it from storage and
// uploads a freshly computed report, so duplicate or stale messages
// just repeat the same idempotent upload.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tripsplit/internal/amqp"
	"tripsplit/internal/core"
	"tripsplit/internal/session"
	"tripsplit/internal/sheets"
	"tripsplit/internal/storage"
)

// SyncWorker handles synchronization of groups from SQLite to a
// workbook sink (Google Sheets in production).
type SyncWorker struct {
	storage *storage.SQLiteRepository
	sink    sheets.WorkbookWriter
	symbol  string
}

func NewSyncWorker(repo *storage.SQLiteRepository, sink sheets.WorkbookWriter, currencySymbol string) *SyncWorker {
	if currencySymbol == "" {
		currencySymbol = "$"
	}
	return &SyncWorker{
		storage: repo,
		sink:    sink,
		symbol:  currencySymbol,
	}
}

// HandleSyncMessage processes a single group sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.GroupSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"group", msg.Group,
		"version", msg.Version,
		"component", "worker")

	group, err := w.storage.GetGroup(ctx, msg.Group)
	if err != nil {
		if errors.Is(err, storage.ErrGroupNotFound) {
			// Group deleted after the message was queued; nothing to
			// upload and no point requeueing.
			slog.WarnContext(ctx, "Sync message for missing group, skipping",
				"group", msg.Group, "component", "worker")
			return nil
		}
		return fmt.Errorf("get group from storage: %w", err)
	}

	return w.syncGroup(ctx, group)
}

// SyncAll uploads every persisted group. The periodic pass recovers
// from missed AMQP messages or worker downtime.
func (w *SyncWorker) SyncAll(ctx context.Context) error {
	names, err := w.storage.GroupNames(ctx)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	if len(names) == 0 {
		return nil
	}

	synced := 0
	var lastErr error
	for _, name := range names {
		group, err := w.storage.GetGroup(ctx, name)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load group for sync",
				"group", name, "error", err, "component", "worker")
			lastErr = err
			continue
		}
		if err := w.syncGroup(ctx, group); err != nil {
			slog.ErrorContext(ctx, "Failed to sync group",
				"group", name, "error", err, "component", "worker")
			lastErr = err
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Periodic sync pass completed",
		"total", len(names), "synced", synced, "component", "worker")
	return lastErr
}

func (w *SyncWorker) syncGroup(ctx context.Context, group session.Group) error {
	report := session.BuildReport(group)
	wb := w.buildWorkbook(group, report)

	if err := w.sink.WriteWorkbook(ctx, wb); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	slog.InfoContext(ctx, "Group synced",
		"group", group.Name,
		"expenses", len(group.Expenses),
		"component", "worker")
	return nil
}

// buildWorkbook renders the group's report as spreadsheet cell data.
func (w *SyncWorker) buildWorkbook(group session.Group, report session.Report) sheets.Workbook {
	expenseRows := [][]any{{"Date", "Paid By", "Category", "Amount", "Remarks"}}
	for _, e := range group.Expenses {
		expenseRows = append(expenseRows, []any{
			e.Date.String(), e.PaidBy, string(e.Category), e.Amount.Display(w.symbol), e.Remarks,
		})
	}

	balanceRows := [][]any{{"Person", "Paid", "Share Owed", "Net", "Status"}}
	for _, b := range report.Balances {
		balanceRows = append(balanceRows, []any{
			b.Person,
			core.FormatAmount(b.Paid, w.symbol),
			core.FormatAmount(b.Share, w.symbol),
			core.FormatAmount(b.Net, w.symbol),
			string(b.Status),
		})
	}

	settlementRows := [][]any{{"From", "To", "Amount"}}
	for _, inst := range report.Settlements {
		settlementRows = append(settlementRows, []any{
			inst.From, inst.To, core.FormatAmount(inst.Amount, w.symbol),
		})
	}

	summaryRows := [][]any{{"Category", "Amount"}}
	for _, ca := range report.Summary.ByCategory {
		summaryRows = append(summaryRows, []any{string(ca.Category), ca.Amount.Display(w.symbol)})
	}
	summaryRows = append(summaryRows, []any{"Total", report.Summary.TotalSpent.Display(w.symbol)})

	return sheets.Workbook{
		Group: group.Name,
		Sections: []sheets.Section{
			{Title: "Expenses", Rows: expenseRows},
			{Title: "Balances", Rows: balanceRows},
			{Title: "Settlements", Rows: settlementRows},
			{Title: "Summary", Rows: summaryRows},
		},
	}
}
