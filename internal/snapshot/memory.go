package snapshot

import (
	"context"
	"sync"

	"gastos/internal/core"
)

// MemoryStore holds the snapshot in process memory. Used for tests and
// for ephemeral runs where persistence is not wanted.
type MemoryStore struct {
	mu     sync.Mutex
	snap   core.Snapshot
	loaded bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.snap = core.SeededSnapshot()
		s.loaded = true
	}
	return s.snap.Clone()
}

func (s *MemoryStore) Save(_ context.Context, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = normalize(snap).Clone()
	s.loaded = true
	return nil
}
