package http

import (
	"net/http"

	"tripsplit/internal/calculator"
	"tripsplit/internal/export"
	"tripsplit/internal/session"
)

type balanceResponse struct {
	Person    string `json:"person"`
	Paid      string `json:"paid"`
	ShareOwed string `json:"share_owed"`
	Net       string `json:"net"`
	Status    string `json:"status"`
}

type settlementResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type categoryAmountResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type summaryResponse struct {
	TotalSpent   string                   `json:"total_spent"`
	TotalDisplay string                   `json:"total_display"`
	ByCategory   []categoryAmountResponse `json:"by_category"`
}

type reportResponse struct {
	Group        string               `json:"group"`
	Balances     []balanceResponse    `json:"balances"`
	Settlements  []settlementResponse `json:"settlements"`
	Summary      summaryResponse      `json:"summary"`
	OrphanPayers []string             `json:"orphan_payers,omitempty"`
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	report := s.manager.Report()
	respondJSON(w, http.StatusOK, map[string][]balanceResponse{
		"balances": balancesToPayload(report.Balances),
	})
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	report := s.manager.Report()
	respondJSON(w, http.StatusOK, map[string][]settlementResponse{
		"settlements": settlementsToPayload(report.Settlements),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	report := s.manager.Report()
	respondJSON(w, http.StatusOK, s.summaryToPayload(report.Summary))
}

// handleReport returns every derived view computed from one snapshot,
// so balances and settlements always agree with each other.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := s.manager.Report()
	respondJSON(w, http.StatusOK, reportResponse{
		Group:        report.Group,
		Balances:     balancesToPayload(report.Balances),
		Settlements:  settlementsToPayload(report.Settlements),
		Summary:      s.summaryToPayload(report.Summary),
		OrphanPayers: report.OrphanPayers,
	})
}

// handleExport writes the active group's workbook to the export
// directory and returns the created file paths.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snapshot := s.manager.Snapshot()
	report := session.BuildReport(snapshot)

	paths, err := export.WriteWorkbook(
		s.opts.ExportDir, snapshot.Name,
		snapshot.Expenses, report.Balances, report.Settlements)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"group": snapshot.Name,
		"files": paths,
	})
}

func balancesToPayload(balances []calculator.Balance) []balanceResponse {
	out := make([]balanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, balanceResponse{
			Person:    b.Person,
			Paid:      b.Paid.Round(2).StringFixed(2),
			ShareOwed: b.Share.Round(2).StringFixed(2),
			Net:       b.Net.Round(2).StringFixed(2),
			Status:    string(b.Status),
		})
	}
	return out
}

func settlementsToPayload(settlements []calculator.Instruction) []settlementResponse {
	out := make([]settlementResponse, 0, len(settlements))
	for _, inst := range settlements {
		out = append(out, settlementResponse{
			From:   inst.From,
			To:     inst.To,
			Amount: inst.Amount.StringFixed(2),
		})
	}
	return out
}

func (s *Server) summaryToPayload(summary calculator.Summary) summaryResponse {
	byCategory := make([]categoryAmountResponse, 0, len(summary.ByCategory))
	for _, ca := range summary.ByCategory {
		byCategory = append(byCategory, categoryAmountResponse{
			Category: string(ca.Category),
			Amount:   ca.Amount.Amount(),
		})
	}
	return summaryResponse{
		TotalSpent:   summary.TotalSpent.Amount(),
		TotalDisplay: summary.TotalSpent.Display(s.opts.CurrencySymbol),
		ByCategory:   byCategory,
	}
}
