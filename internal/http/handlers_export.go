package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gastos/internal/core"
	"gastos/internal/export"
)

// writeCSV sends CSV content as a file attachment.
func writeCSV(w http.ResponseWriter, filename, content string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	csv, err := s.exports.ExportAll(r.Context())
	if err != nil {
		if errors.Is(err, export.ErrNoTransactions) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to export transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export transactions")
		return
	}
	writeCSV(w, "transacciones.csv", csv)
}

func (s *Server) handleExportCSVRange(w http.ResponseWriter, r *http.Request) {
	startRaw := strings.TrimSpace(r.URL.Query().Get("start"))
	endRaw := strings.TrimSpace(r.URL.Query().Get("end"))
	if startRaw == "" || endRaw == "" {
		writeError(w, http.StatusBadRequest, "start and end parameters are required")
		return
	}

	start, err := core.ParseDate(startRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date: "+err.Error())
		return
	}
	end, err := core.ParseDate(endRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date: "+err.Error())
		return
	}

	csv, err := s.exports.ExportRange(r.Context(), start, end)
	if err != nil {
		if errors.Is(err, export.ErrNoTransactions) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to export date range", "start", startRaw, "end", endRaw, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export transactions")
		return
	}
	writeCSV(w, "transacciones_"+startRaw+"_"+endRaw+".csv", csv)
}

// handleExportCSVFiltered applies the same filter body as the filter
// endpoint and exports the matching set.
func (s *Server) handleExportCSVFiltered(w http.ResponseWriter, r *http.Request) {
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

	csv, err := s.exports.ExportTransactions(r.Context(), txns)
	if err != nil {
		if errors.Is(err, export.ErrNoTransactions) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to export filtered transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export transactions")
		return
	}
	writeCSV(w, "transacciones_filtradas.csv", csv)
}
