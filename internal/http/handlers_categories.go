package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gastos/internal/core"
	"gastos/internal/ledger"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

type categoryPatchRequest struct {
	Name  *string `json:"name"`
	Type  *string `json:"type"`
	Color *string `json:"color"`
}

// budgetRequest sets a category budget. "0" clears it.
type budgetRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.repo.Categories(r.Context())
	if cats == nil {
		cats = []core.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cat, ok := s.repo.CategoryByID(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) handleCategoryExists(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name parameter")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"exists": s.repo.CategoryExists(r.Context(), name),
	})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cat, err := s.repo.AddCategory(r.Context(), ledger.CategoryDraft{
		Name:  sanitizeInput(req.Name),
		Type:  req.Type,
		Color: strings.TrimSpace(req.Color),
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateName):
			writeError(w, http.StatusConflict, "category name already exists")
		case isValidationError(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Failed to create category", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save category")
		}
		return
	}

	writeJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req categoryPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch := ledger.CategoryPatch{Type: req.Type, Color: req.Color}
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		patch.Name = &name
	}

	if err := s.repo.UpdateCategory(r.Context(), id, patch); err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			writeError(w, http.StatusNotFound, "category not found")
		case errors.Is(err, ledger.ErrDuplicateName):
			writeError(w, http.StatusConflict, "category name already exists")
		case isValidationError(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Failed to update category", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update category")
		}
		return
	}

	cat, _ := s.repo.CategoryByID(r.Context(), id)
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.repo.DeleteCategory(r.Context(), id)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
		if result.Message == "Categoría no encontrada" {
			status = http.StatusNotFound
		}
	}
	writeJSON(w, status, result)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmountField("amount", req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.repo.SetBudget(r.Context(), id, amount); err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			writeError(w, http.StatusNotFound, "category not found")
		case errors.Is(err, core.ErrInvalidBudget):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Failed to set budget", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to set budget")
		}
		return
	}

	cat, _ := s.repo.CategoryByID(r.Context(), id)
	s.publishAlerts(r)
	writeJSON(w, http.StatusOK, cat)
}
