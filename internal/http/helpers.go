package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"tripsplit/internal/core"
	applog "tripsplit/internal/log"
	"tripsplit/internal/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err, "component", "http")
	}
}

// respondError maps domain sentinel errors onto status codes. Unknown
// errors become opaque 500s so internals never leak to clients.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		sl := applog.NewStructuredLogger(applog.FromContext(r.Context()))
		sl.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, "respond",
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, ""))
		respondJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrGroupNotFound),
		errors.Is(err, session.ErrPersonNotFound),
		errors.Is(err, session.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, session.ErrGroupExists),
		errors.Is(err, session.ErrPersonExists),
		errors.Is(err, session.ErrLastGroup):
		return http.StatusConflict
	case errors.Is(err, session.ErrEmptyGroupName),
		errors.Is(err, session.ErrEmptyPersonName):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrEmptyPayer),
		errors.Is(err, core.ErrRemarksTooLong):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 {
			return -1
		}
		return r
	}, s)
}

// expensePayload is the wire shape of one expense record.
type expensePayload struct {
	Date     string `json:"date"`
	PaidBy   string `json:"paid_by"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Remarks  string `json:"remarks,omitempty"`
}

// toExpense validates and converts the payload at the boundary; the
// ledger stores records as-is.
func (p expensePayload) toExpense() (core.Expense, error) {
	date, err := core.ParseDate(strings.TrimSpace(p.Date))
	if err != nil {
		return core.Expense{}, err
	}
	category, err := core.ParseCategory(p.Category)
	if err != nil {
		return core.Expense{}, err
	}
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(p.Amount))
	if err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		Date:     date,
		PaidBy:   sanitizeInput(p.PaidBy),
		Category: category,
		Amount:   core.Money{Cents: cents},
		Remarks:  sanitizeInput(p.Remarks),
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func expenseToPayload(index int, e core.Expense) expenseResponse {
	return expenseResponse{
		Index:    index,
		Date:     e.Date.String(),
		PaidBy:   e.PaidBy,
		Category: string(e.Category),
		Amount:   e.Amount.Amount(),
		Remarks:  e.Remarks,
	}
}

type expenseResponse struct {
	Index    int    `json:"index"`
	Date     string `json:"date"`
	PaidBy   string `json:"paid_by"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Remarks  string `json:"remarks,omitempty"`
}
