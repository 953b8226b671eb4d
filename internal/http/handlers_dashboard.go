package http

import (
	"net/http"

	"gastos/internal/budget"
	"gastos/internal/report"
)

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance := s.reports.Balance(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"balance": balance.Format(),
	})
}

func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reports.ChartData(r.Context()))
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reports.MonthlyTrend(r.Context()))
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.reports.MonthlySummary(r.Context(), year, month))
}

func (s *Server) handleCategoryAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis := s.reports.CategoryAnalysisAll(r.Context())
	if analysis == nil {
		analysis = []report.CategoryAnalysis{}
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	status := s.budgets.BudgetStatus(r.Context())
	if status == nil {
		status = []budget.CategoryStatus{}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.budgets.BudgetAlerts(r.Context())
	if alerts == nil {
		alerts = []budget.CategoryStatus{}
	}
	writeJSON(w, http.StatusOK, alerts)
}
