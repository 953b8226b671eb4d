package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"gastos/internal/core"
	"gastos/internal/filter"
	"gastos/internal/ledger"
)

// transactionRequest is the JSON body for creating a transaction.
// Amounts travel as decimal strings ("12.50") and are parsed to cents.
type transactionRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
}

// transactionPatchRequest carries optional replacement fields. Absent
// fields keep their current value.
type transactionPatchRequest struct {
	Description *string `json:"description"`
	Amount      *string `json:"amount"`
	Type        *string `json:"type"`
	Category    *string `json:"category"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var txns []core.Transaction
	if year != 0 && month != 0 {
		txns = s.repo.TransactionsByMonth(r.Context(), year, month)
	} else {
		txns = s.repo.Transactions(r.Context())
	}
	if txns == nil {
		txns = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, ok := s.repo.TransactionByID(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := parseAmountField("amount", req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx, err := s.repo.AddTransaction(r.Context(), ledger.TransactionDraft{
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Type:        req.Type,
		Category:    sanitizeInput(req.Category),
	})
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	s.publishAlerts(r)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req transactionPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch := ledger.TransactionPatch{
		Type:     req.Type,
		Category: req.Category,
	}
	if req.Description != nil {
		desc := sanitizeInput(*req.Description)
		patch.Description = &desc
	}
	if req.Amount != nil {
		amount, err := parseAmountField("amount", *req.Amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		patch.Amount = &amount
	}

	if err := s.repo.UpdateTransaction(r.Context(), id, patch); err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			writeError(w, http.StatusNotFound, "transaction not found")
		case isValidationError(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Failed to update transaction", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update transaction")
		}
		return
	}

	tx, _ := s.repo.TransactionByID(r.Context(), id)
	s.publishAlerts(r)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.DeleteTransaction(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete transaction", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	s.publishAlerts(r)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// filterRequest is the JSON body for the filter endpoint. Dates are
// YYYY-MM-DD; amounts are decimal strings. Empty fields disable their
// predicate, as do the "todas"/"todos" sentinels.
type filterRequest struct {
	Category  string `json:"category"`
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Search    string `json:"search"`
	MinAmount string `json:"minAmount"`
	MaxAmount string `json:"maxAmount"`
	SortField string `json:"sortField"`
	SortOrder string `json:"sortOrder"`
}

type filterResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Stats        filter.Stats       `json:"stats"`
}

// toFilters converts the request body into engine filters, parsing the
// date and amount bounds.
func (req filterRequest) toFilters() (filter.Filters, error) {
	f := filter.Filters{
		Category:  req.Category,
		Type:      req.Type,
		Search:    req.Search,
		SortField: req.SortField,
		SortOrder: req.SortOrder,
	}
	if req.StartDate != "" {
		d, err := core.ParseDate(req.StartDate)
		if err != nil {
			return filter.Filters{}, fmt.Errorf("invalid startDate: %w", err)
		}
		f.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := core.ParseDate(req.EndDate)
		if err != nil {
			return filter.Filters{}, fmt.Errorf("invalid endDate: %w", err)
		}
		f.EndDate = &d
	}
	if req.MinAmount != "" {
		m, err := parseAmountField("minAmount", req.MinAmount)
		if err != nil {
			return filter.Filters{}, err
		}
		f.MinAmount = &m
	}
	if req.MaxAmount != "" {
		m, err := parseAmountField("maxAmount", req.MaxAmount)
		if err != nil {
			return filter.Filters{}, err
		}
		f.MaxAmount = &m
	}
	return f, nil
}

func (s *Server) handleFilterTransactions(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := req.toFilters()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txns := s.filters.Filter(r.Context(), f)
	if txns == nil {
		txns = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, filterResponse{
		Transactions: txns,
		Stats:        filter.ComputeStats(txns),
	})
}

// isValidationError reports whether err is a domain validation error
// rather than a storage failure.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrDescriptionTooLong) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrNameTooLong) ||
		errors.Is(err, core.ErrInvalidBudget)
}
