package http

import (
	"errors"
	"log/slog"
	"net/http"

	"financas/internal/core"
	"financas/internal/storage"
)

func toCategoryListJSON(cs []core.Category) []categoryJSON {
	out := make([]categoryJSON, len(cs))
	for i, c := range cs {
		out[i] = toCategoryJSON(c)
	}
	return out
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := s.store.ListCategories(r.Context(), UserID(r.Context()))
	if err != nil {
		slog.ErrorContext(r.Context(), "List categories failed", "error", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryListJSON(cs))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}

	c, err := s.store.GetCategory(r.Context(), UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeNotFound(w)
			return
		}
		slog.ErrorContext(r.Context(), "Get category failed", "error", err, "id", id)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryJSON(c))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
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

	c := core.Category{UserID: UserID(r.Context())}
	errs := applyCategoryFields(&c, fields)
	requireCategoryFields(fields, errs)
	if !errs.empty() {
		writeValidationError(w, errs)
		return
	}
	if err := c.Validate(); err != nil {
		writeCategoryValidationError(w, err)
		return
	}

	created, err := s.store.CreateCategory(r.Context(), c)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create category failed", "error", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryJSON(created))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
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

	current, err := s.store.GetCategory(r.Context(), UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeNotFound(w)
			return
		}
		slog.ErrorContext(r.Context(), "Load category for update failed", "error", err, "id", id)
		writeInternalError(w)
		return
	}

	errs := applyCategoryFields(&current, fields)
	if !errs.empty() {
		writeValidationError(w, errs)
		return
	}
	if err := current.Validate(); err != nil {
		writeCategoryValidationError(w, err)
		return
	}

	updated, err := s.store.UpdateCategory(r.Context(), current)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeNotFound(w)
			return
		}
		slog.ErrorContext(r.Context(), "Update category failed", "error", err, "id", id)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryJSON(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}

	if err := s.store.DeleteCategory(r.Context(), UserID(r.Context()), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeNotFound(w)
			return
		}
		slog.ErrorContext(r.Context(), "Delete category failed", "error", err, "id", id)
		writeInternalError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCategoryValidationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyName):
		writeValidationError(w, fieldErrors{"name": {"must be a non-empty string"}})
	case errors.Is(err, core.ErrInvalidColor):
		writeValidationError(w, fieldErrors{"color": {"must be a hex color like #2196F3"}})
	case errors.Is(err, core.ErrInvalidCategory):
		writeValidationError(w, fieldErrors{"type": {"must be income, expense or both"}})
	default:
		writeValidationError(w, fieldErrors{"category": {err.Error()}})
	}
}
