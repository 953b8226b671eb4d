// Package snapshot persists the ledger document. Every backend stores
// the snapshot as one unit: load reads it whole, save replaces it
// whole. There are no partial writes and no secondary indexes.
package snapshot

import (
	"context"

	"gastos/internal/core"
)

// Store loads and saves the whole ledger snapshot.
type Store interface {
	// Load returns the current snapshot. It never fails: a missing
	// store is created with the seeded defaults, and unreadable or
	// corrupt content degrades to an empty-but-valid snapshot.
	Load(ctx context.Context) core.Snapshot

	// Save persists the entire snapshot, replacing prior content.
	Save(ctx context.Context, snap core.Snapshot) error
}

// normalize repairs a decoded snapshot so callers never see nil slices
// or a counter at zero.
func normalize(snap core.Snapshot) core.Snapshot {
	if snap.Transactions == nil {
		snap.Transactions = []core.Transaction{}
	}
	if snap.Categories == nil {
		snap.Categories = []core.Category{}
	}
	if snap.NextID < 1 {
		snap.NextID = 1
	}
	return snap
}
