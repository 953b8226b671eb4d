package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gastos/internal/core"
)

// FileStore keeps the snapshot as a single JSON document on disk.
// This is the default backend.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the document. A missing file is seeded with the default
// categories; any other failure degrades to an empty valid snapshot so
// a corrupt store never takes the application down with it.
func (s *FileStore) Load(ctx context.Context) core.Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			seeded := core.SeededSnapshot()
			if err := s.Save(ctx, seeded); err != nil {
				slog.WarnContext(ctx, "Failed to persist seeded snapshot", "path", s.path, "error", err)
			}
			return seeded
		}
		slog.WarnContext(ctx, "Snapshot unreadable, using empty snapshot", "path", s.path, "error", err)
		return core.EmptySnapshot()
	}

	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.WarnContext(ctx, "Snapshot corrupt, using empty snapshot", "path", s.path, "error", err)
		return core.EmptySnapshot()
	}
	return normalize(snap)
}

// Save writes the document atomically: marshal to a sibling temp file,
// then rename over the target.
func (s *FileStore) Save(ctx context.Context, snap core.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(normalize(snap), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
