// Package backend creates the snapshot store named by the configuration.
package backend

import (
	"fmt"
	"log/slog"

	"gastos/internal/config"
	"gastos/internal/snapshot"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the store and an optional cleanup function.
type Result struct {
	Store   snapshot.Store
	Cleanup CleanupFunc
}

// Type represents the kind of snapshot backend.
type Type string

const (
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Factory creates snapshot stores from application config.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the store selected by cfg.DataBackend.
func (f *Factory) Create(cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}

	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type in config: %s", cfg.DataBackend)
	}

	switch backendType {
	case FileBackend:
		store := snapshot.NewFileStore(cfg.SnapshotPath)
		f.logger.Info("Initialized file backend", "path", cfg.SnapshotPath)
		return &Result{Store: store, Cleanup: nil}, nil

	case SQLiteBackend:
		store, err := snapshot.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case MemoryBackend:
		store := snapshot.NewMemoryStore()
		f.logger.Info("Initialized memory backend")
		return &Result{Store: store, Cleanup: nil}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}
