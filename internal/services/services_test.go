package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gastos/internal/budget"
	"gastos/internal/core"
	"gastos/internal/export"
	"gastos/internal/notify"
	"gastos/internal/snapshot"
)

type fakePublisher struct {
	published []*notify.BudgetAlertMessage
	err       error
}

func (f *fakePublisher) PublishBudgetAlert(_ context.Context, msg *notify.BudgetAlertMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

type fakeAppender struct {
	rows [][]any
	err  error
}

func (f *fakeAppender) AppendRows(_ context.Context, rows [][]any) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, rows...)
	return nil
}

func seededStore(t *testing.T, snap core.Snapshot) snapshot.Store {
	t.Helper()
	store := snapshot.NewMemoryStore()
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func overspentSnapshot() core.Snapshot {
	return core.Snapshot{
		Transactions: []core.Transaction{
			{
				ID: 7, Description: "Super", Amount: core.Money{Cents: 52500},
				Type: core.TypeExpense, Category: "Comida", Date: core.DateOf(time.Now()),
			},
		},
		Categories: []core.Category{
			{ID: 1, Name: "Comida", Type: core.TypeExpense, Budget: core.Money{Cents: 50000}},
			{ID: 2, Name: "Transporte", Type: core.TypeExpense, Budget: core.Money{Cents: 10000}},
		},
		NextID: 8,
	}
}

func TestAlertService_PublishAlerts(t *testing.T) {
	store := seededStore(t, overspentSnapshot())
	pub := &fakePublisher{}
	svc := NewAlertService(budget.NewEngine(store), pub)

	svc.PublishAlerts(context.Background())

	if len(pub.published) != 1 {
		t.Fatalf("published = %d alerts, want 1", len(pub.published))
	}
	msg := pub.published[0]
	if msg.Name != "Comida" || msg.Status != budget.StatusDanger {
		t.Errorf("alert = %+v, want Comida danger", msg)
	}
	if msg.BudgetCents != 50000 || msg.SpentCents != 52500 {
		t.Errorf("alert amounts = %d/%d, want 50000/52500", msg.BudgetCents, msg.SpentCents)
	}
}

func TestAlertService_NilPublisher(t *testing.T) {
	store := seededStore(t, overspentSnapshot())
	svc := NewAlertService(budget.NewEngine(store), nil)

	// Must not panic without a broker
	svc.PublishAlerts(context.Background())
}

func TestAlertService_PublishErrorDoesNotPanic(t *testing.T) {
	store := seededStore(t, overspentSnapshot())
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewAlertService(budget.NewEngine(store), pub)

	svc.PublishAlerts(context.Background())

	if len(pub.published) != 0 {
		t.Errorf("published = %d, want 0 when broker errors", len(pub.published))
	}
}

func TestExportService_ExportAll_MirrorsRows(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			{
				ID: 7, Description: "Super", Amount: core.Money{Cents: 4550},
				Type: core.TypeExpense, Category: "Comida", Date: core.NewDate(2026, 3, 5),
			},
		},
		NextID: 8,
	}
	store := seededStore(t, snap)
	mirror := &fakeAppender{}
	svc := NewExportService(store, export.NewEngine(store), mirror)

	csv, err := svc.ExportAll(context.Background())
	if err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}
	if csv == "" {
		t.Error("ExportAll() returned empty CSV")
	}

	if len(mirror.rows) != 1 {
		t.Fatalf("mirrored rows = %d, want 1", len(mirror.rows))
	}
	row := mirror.rows[0]
	if row[0] != "2026-03-05" || row[1] != "Super" || row[4] != "45.50" {
		t.Errorf("mirrored row = %v", row)
	}
}

func TestExportService_MirrorFailureDoesNotFailExport(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			{
				ID: 7, Description: "Super", Amount: core.Money{Cents: 4550},
				Type: core.TypeExpense, Category: "Comida", Date: core.NewDate(2026, 3, 5),
			},
		},
		NextID: 8,
	}
	store := seededStore(t, snap)
	svc := NewExportService(store, export.NewEngine(store), &fakeAppender{err: errors.New("sheets down")})

	if _, err := svc.ExportAll(context.Background()); err != nil {
		t.Errorf("ExportAll() error = %v, want nil despite mirror failure", err)
	}
}

// shiftingStore serves a different snapshot on each load, standing in
// for a concurrent writer landing between reads.
type shiftingStore struct {
	snaps []core.Snapshot
	calls int
}

func (s *shiftingStore) Load(_ context.Context) core.Snapshot {
	i := s.calls
	if i >= len(s.snaps) {
		i = len(s.snaps) - 1
	}
	s.calls++
	return s.snaps[i].Clone()
}

func (s *shiftingStore) Save(_ context.Context, _ core.Snapshot) error {
	return nil
}

func TestExportService_ExportRange_MirrorMatchesCSV(t *testing.T) {
	marzo := core.Transaction{
		ID: 7, Description: "Marzo", Amount: core.Money{Cents: 2000},
		Type: core.TypeExpense, Category: "Comida", Date: core.NewDate(2026, 3, 10),
	}
	colado := core.Transaction{
		ID: 8, Description: "Colado", Amount: core.Money{Cents: 3000},
		Type: core.TypeExpense, Category: "Comida", Date: core.NewDate(2026, 3, 12),
	}
	store := &shiftingStore{snaps: []core.Snapshot{
		{Transactions: []core.Transaction{marzo}, NextID: 8},
		{Transactions: []core.Transaction{marzo, colado}, NextID: 9},
	}}
	mirror := &fakeAppender{}
	svc := NewExportService(store, export.NewEngine(store), mirror)

	csv, err := svc.ExportRange(context.Background(), core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31))
	if err != nil {
		t.Fatalf("ExportRange() error = %v", err)
	}

	if strings.Contains(csv, "Colado") {
		t.Errorf("CSV picked up a row written mid-export:\n%s", csv)
	}
	if len(mirror.rows) != 1 || mirror.rows[0][1] != "Marzo" {
		t.Errorf("mirrored rows = %v, want only the rows in the CSV", mirror.rows)
	}
}

func TestExportService_ExportRange(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			{
				ID: 7, Description: "Enero", Amount: core.Money{Cents: 1000},
				Type: core.TypeExpense, Category: "Comida", Date: core.NewDate(2026, 1, 10),
			},
			{
				ID: 8, Description: "Marzo", Amount: core.Money{Cents: 2000},
				Type: core.TypeExpense, Category: "Comida", Date: core.NewDate(2026, 3, 10),
			},
		},
		NextID: 9,
	}
	store := seededStore(t, snap)
	mirror := &fakeAppender{}
	svc := NewExportService(store, export.NewEngine(store), mirror)

	_, err := svc.ExportRange(context.Background(), core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 31))
	if err != nil {
		t.Fatalf("ExportRange() error = %v", err)
	}
	if len(mirror.rows) != 1 || mirror.rows[0][1] != "Marzo" {
		t.Errorf("mirrored rows = %v, want only Marzo", mirror.rows)
	}
}
