package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gastos/internal/budget"
	"gastos/internal/core"
	"gastos/internal/export"
	"gastos/internal/filter"
	"gastos/internal/ledger"
	"gastos/internal/report"
	"gastos/internal/services"
	"gastos/internal/snapshot"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := snapshot.NewMemoryStore()
	repo := ledger.NewRepository(store)
	budgets := budget.NewEngine(store)
	srv := NewServer(":0", Deps{
		Repo:    repo,
		Reports: report.NewEngine(store, budgets),
		Budgets: budgets,
		Filters: filter.NewEngine(store),
		Exports: services.NewExportService(store, export.NewEngine(store), nil),
	})
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Errorf("readyz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestCreateTransaction(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Supermercado","amount":"45.50","type":"gasto","category":"Comida"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rec.Code, rec.Body.String())
	}

	var tx core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if tx.ID != 7 {
		t.Errorf("first transaction id = %d, want 7", tx.ID)
	}
	if tx.Amount.Cents != 4550 {
		t.Errorf("amount = %d cents, want 4550", tx.Amount.Cents)
	}
}

func TestCreateTransaction_Invalid(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad amount", `{"description":"x","amount":"abc","type":"gasto","category":"Comida"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"description":"x","amount":"-5","type":"gasto","category":"Comida"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"description":"x","amount":"5","type":"transfer","category":"Comida"}`, http.StatusUnprocessableEntity},
		{"empty description", `{"description":"","amount":"5","type":"gasto","category":"Comida"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{not json`, http.StatusBadRequest},
		{"unknown field", `{"description":"x","amount":"5","type":"gasto","category":"Comida","extra":1}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Cine","amount":"12.00","type":"gasto","category":"Entretenimiento"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions/7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/transactions/7", `{"description":"Cine y palomitas"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d, body %s", rec.Code, rec.Body.String())
	}
	var tx core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tx.Description != "Cine y palomitas" || tx.Amount.Cents != 1200 {
		t.Errorf("updated = %+v", tx)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/transactions/7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions/7", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("get with bad id = %d, want 400", rec.Code)
	}
}

func TestListCategories(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
	var cats []core.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 6 {
		t.Errorf("categories = %d, want 6 seeded", len(cats))
	}
}

func TestCategoryExists(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/categories/exists?name=comida", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "true") {
		t.Errorf("exists(comida) = %d %s, want true", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/categories/exists?name=Nada", "")
	if !strings.Contains(rec.Body.String(), "false") {
		t.Errorf("exists(Nada) = %s, want false", rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/categories/exists", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("exists without name = %d, want 400", rec.Code)
	}
}

func TestCreateCategory_Duplicate(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/categories", `{"name":"COMIDA","type":"gasto","color":""}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/categories", `{"name":"Mascotas","type":"gasto","color":""}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rec.Code, rec.Body.String())
	}
	var cat core.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cat.Color != core.DefaultColor {
		t.Errorf("color = %q, want default", cat.Color)
	}
}

func TestDeleteCategory(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodDelete, "/api/categories/999", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing = %d, want 404", rec.Code)
	}

	// Category in use cannot be deleted
	rec = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Pan","amount":"1.20","type":"gasto","category":"Comida"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodDelete, "/api/categories/1", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("delete in-use = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No se puede eliminar") {
		t.Errorf("delete in-use body = %s", rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/categories/2", "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete unused = %d, want 200", rec.Code)
	}
}

func TestSetBudgetAndStatus(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/api/categories/1/budget", `{"amount":"500.00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set budget = %d, body %s", rec.Code, rec.Body.String())
	}
	var cat core.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cat.Budget.Cents != 50000 {
		t.Errorf("budget = %d, want 50000", cat.Budget.Cents)
	}

	// Current-month spend at 105% shows up as danger
	rec = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Compra grande","amount":"525.00","type":"gasto","category":"Comida"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/budgets/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("budget status = %d", rec.Code)
	}
	var status []budget.CategoryStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(status) != 1 || status[0].Status != budget.StatusDanger {
		t.Errorf("status = %+v, want one danger entry", status)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/budgets/alerts", "")
	var alerts []budget.CategoryStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(alerts) != 1 {
		t.Errorf("alerts = %d, want 1", len(alerts))
	}
}

func TestFilterTransactions(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`{"description":"Supermercado","amount":"45.50","type":"gasto","category":"Comida"}`,
		`{"description":"Nomina","amount":"2100.00","type":"ingreso","category":"Salario"}`,
		`{"description":"Taxi","amount":"20.00","type":"gasto","category":"Transporte"}`,
	} {
		if rec := doJSON(t, srv, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed transaction = %d", rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions/filter", `{"type":"gasto"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("filter = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp filterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Transactions) != 2 {
		t.Errorf("filtered = %d, want 2", len(resp.Transactions))
	}
	if resp.Stats.Count != 2 || resp.Stats.TotalExpense != "65.50" {
		t.Errorf("stats = %+v", resp.Stats)
	}

	// Sentinels disable the predicates
	rec = doJSON(t, srv, http.MethodPost, "/api/transactions/filter", `{"category":"todas","type":"todos"}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Transactions) != 3 {
		t.Errorf("sentinel filter = %d, want 3", len(resp.Transactions))
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t)

	// Empty ledger has nothing to export
	rec := doJSON(t, srv, http.MethodGet, "/api/export/csv", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("export empty = %d, want 404", rec.Code)
	}

	if rec := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Super","amount":"45.50","type":"gasto","category":"Comida"}`); rec.Code != http.StatusCreated {
		t.Fatalf("seed transaction = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/export/csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "Date,Description,Category,Type,Amount\n") {
		t.Errorf("missing CSV header:\n%s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "\"45.50\"") {
		t.Errorf("missing amount row:\n%s", rec.Body.String())
	}
}

func TestDashboardBalance(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`{"description":"Nomina","amount":"2100.00","type":"ingreso","category":"Salario"}`,
		`{"description":"Super","amount":"45.50","type":"gasto","category":"Comida"}`,
	} {
		if rec := doJSON(t, srv, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed transaction = %d", rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard/balance", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("balance = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["balance"] != "2054.50" {
		t.Errorf("balance = %q, want 2054.50", resp["balance"])
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard/summary", "")
	if rec.Code != http.StatusOK {
		t.Errorf("summary = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard/summary?month=13", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("summary with bad month = %d, want 400", rec.Code)
	}
}
