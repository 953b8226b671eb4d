package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gastos/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the snapshot document in a single-row table. SQLite
// here is a durability substrate only: the document is still read and
// written whole, exactly like the file backend.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) core.Snapshot {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM snapshots WHERE id = 1`).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			seeded := core.SeededSnapshot()
			if err := s.Save(ctx, seeded); err != nil {
				slog.WarnContext(ctx, "Failed to persist seeded snapshot", "error", err)
			}
			return seeded
		}
		slog.WarnContext(ctx, "Snapshot row unreadable, using empty snapshot", "error", err)
		return core.EmptySnapshot()
	}

	var snap core.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		slog.WarnContext(ctx, "Snapshot document corrupt, using empty snapshot", "error", err)
		return core.EmptySnapshot()
	}
	return normalize(snap)
}

func (s *SQLiteStore) Save(ctx context.Context, snap core.Snapshot) error {
	doc, err := json.Marshal(normalize(snap))
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, document, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP`, string(doc))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
