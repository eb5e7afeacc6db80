package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type expensesResponse struct {
	Expenses []expenseResponse `json:"expenses"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses := s.manager.Expenses()
	out := make([]expenseResponse, 0, len(expenses))
	for i, e := range expenses {
		out = append(out, expenseToPayload(i, e))
	}
	respondJSON(w, http.StatusOK, expensesResponse{Expenses: out})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expensePayload
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	e, err := req.toExpense()
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.manager.AddExpense(r.Context(), e); err != nil {
		respondError(w, r, err)
		return
	}
	index := len(s.manager.Expenses()) - 1
	respondJSON(w, http.StatusCreated, expenseToPayload(index, e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid expense index"})
		return
	}

	var req expensePayload
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	e, err := req.toExpense()
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.manager.UpdateExpense(r.Context(), index, e); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expenseToPayload(index, e))
}

// handleRemoveExpense deletes one record; later indices shift down.
func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid expense index"})
		return
	}

	if err := s.manager.RemoveExpense(r.Context(), index); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.ClearExpenses(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, expensesResponse{Expenses: []expenseResponse{}})
}
