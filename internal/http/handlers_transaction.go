package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"financas/internal/core"
	"financas/internal/services"
	"financas/internal/storage"
)

type categoryJSON struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

type transactionJSON struct {
	ID          int64         `json:"id"`
	Date        string        `json:"date"`
	Type        string        `json:"type"`
	Amount      string        `json:"amount"`
	Description string        `json:"description"`
	CategoryID  *int64        `json:"category_id"`
	Category    *categoryJSON `json:"category"`
}

type totalsJSON struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Name: c.Name, Color: c.Color, Type: string(c.Type)}
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:          t.ID,
		Date:        t.Date.ISO(),
		Type:        string(t.Type),
		Amount:      t.Amount.DecimalString(),
		Description: t.Description,
		CategoryID:  t.CategoryID,
	}
	if t.Category != nil {
		c := toCategoryJSON(*t.Category)
		out.Category = &c
	}
	return out
}

func toTransactionListJSON(ts []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(ts))
	for i, t := range ts {
		out[i] = toTransactionJSON(t)
	}
	return out
}

// pathID extracts the numeric {id} route parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// readBody caps request bodies at 1 MiB.
func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(nil, r.Body, 1<<20))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, errs := ParseFilter(r.URL.Query())
	if !errs.empty() {
		writeValidationError(w, errs)
		return
	}

	ts, err := s.transactions.List(r.Context(), UserID(r.Context()), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionListJSON(ts))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}

	t, err := s.transactions.Get(r.Context(), UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeNotFound(w)
			return
		}
		slog.ErrorContext(r.Context(), "Get transaction failed", "error", err, "id", id)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(t))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fields, err := decodeFields(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	t := core.Transaction{UserID: UserID(r.Context())}
	errs := applyTransactionFields(&t, fields)
	requireTransactionFields(fields, errs)
	if !errs.empty() {
		writeValidationError(w, errs)
		return
	}

	created, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		s.writeTransactionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fields, err := decodeFields(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	// Partial update: load the current record and overlay the provided
	// fields.
	current, err := s.transactions.Get(r.Context(), UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeNotFound(w)
			return
		}
		slog.ErrorContext(r.Context(), "Load transaction for update failed", "error", err, "id", id)
		writeInternalError(w)
		return
	}

	errs := applyTransactionFields(&current, fields)
	if !errs.empty() {
		writeValidationError(w, errs)
		return
	}

	updated, err := s.transactions.Update(r.Context(), current)
	if err != nil {
		s.writeTransactionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}

	if err := s.transactions.Delete(r.Context(), UserID(r.Context()), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeNotFound(w)
			return
		}
		slog.ErrorContext(r.Context(), "Delete transaction failed", "error", err, "id", id)
		writeInternalError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTransactionSummary(w http.ResponseWriter, r *http.Request) {
	f, errs := ParseFilter(r.URL.Query())
	if !errs.empty() {
		writeValidationError(w, errs)
		return
	}

	totals, err := s.transactions.Summary(r.Context(), UserID(r.Context()), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction summary failed", "error", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, totalsJSON{
		Income:  totals.Income.DecimalString(),
		Expense: totals.Expense.DecimalString(),
		Balance: totals.Balance.DecimalString(),
	})
}

// writeTransactionError maps service errors from create/update to the
// API error envelope.
func (s *Server) writeTransactionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		writeValidationError(w, fieldErrors{"category_id": {"category not found"}})
	case errors.Is(err, storage.ErrNotFound):
		writeNotFound(w)
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrDescriptionTooLong):
		writeValidationError(w, fieldErrors{"transaction": {err.Error()}})
	default:
		slog.ErrorContext(r.Context(), "Transaction operation failed", "error", err)
		writeInternalError(w)
	}
}
