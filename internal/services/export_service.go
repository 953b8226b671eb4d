package services

import (
	"context"
	"log/slog"
	"time"

	"gastos/internal/core"
	"gastos/internal/export"
	"gastos/internal/sheets"
	"gastos/internal/snapshot"
)

// ExportService produces CSV exports and, when a mirror is configured,
// appends the exported rows to an external sheet.
type ExportService struct {
	store  snapshot.Store
	engine *export.Engine
	mirror sheets.RowAppender
}

func NewExportService(store snapshot.Store, engine *export.Engine, mirror sheets.RowAppender) *ExportService {
	return &ExportService{store: store, engine: engine, mirror: mirror}
}

// ExportAll serializes the full transaction set.
func (s *ExportService) ExportAll(ctx context.Context) (string, error) {
	txns := s.store.Load(ctx).Transactions
	csv, err := s.engine.CSV(ctx, txns)
	if err != nil {
		return "", err
	}
	s.mirrorRows(ctx, txns)
	return csv, nil
}

// ExportRange serializes the transactions dated in [start, end]. The
// subset is read once; the CSV and the mirrored rows always agree even
// when a write lands mid-export.
func (s *ExportService) ExportRange(ctx context.Context, start, end core.Date) (string, error) {
	inRange := s.engine.TransactionsInRange(ctx, start, end)
	csv, err := s.engine.CSV(ctx, inRange)
	if err != nil {
		return "", err
	}
	s.mirrorRows(ctx, inRange)
	return csv, nil
}

// ExportTransactions serializes an already-filtered sequence.
func (s *ExportService) ExportTransactions(ctx context.Context, txns []core.Transaction) (string, error) {
	if txns == nil {
		txns = []core.Transaction{}
	}
	csv, err := s.engine.CSV(ctx, txns)
	if err != nil {
		return "", err
	}
	s.mirrorRows(ctx, txns)
	return csv, nil
}

// mirrorRows appends the exported rows to the configured sheet. The
// export itself has already succeeded, so failures here only log.
func (s *ExportService) mirrorRows(ctx context.Context, txns []core.Transaction) {
	if s.mirror == nil || len(txns) == 0 {
		return
	}

	rows := make([][]any, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []any{
			t.Date.String(), t.Description, t.Category, t.Type, t.Amount.Format(),
		})
	}

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.mirror.AppendRows(cctx, rows); err != nil {
		slog.ErrorContext(ctx, "Failed to mirror export to sheet", "rows", len(rows), "error", err)
		return
	}
	slog.InfoContext(ctx, "Mirrored export to sheet", "rows", len(rows))
}
