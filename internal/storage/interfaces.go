// Package storage defines persistence interfaces for run history.
package storage

import (
	"context"
	"time"

	"solana-rent-reclaimer/internal/reclaim"
)

// RunRecord is one persisted reclaim run.
type RunRecord struct {
	ID        int64
	Owner     string
	Report    reclaim.RunReport
	CreatedAt time.Time
}

// RunStore provides access to run history. The engine itself is stateless;
// this store is an optional operational sink wired by the CLI.
type RunStore interface {
	// Insert persists a completed run and sets r.ID.
	Insert(ctx context.Context, r *RunRecord) error

	// GetRecent retrieves the most recent runs, newest first.
	GetRecent(ctx context.Context, limit int) ([]*RunRecord, error)

	// TotalReclaimed sums lamports closed across all recorded runs for owner.
	TotalReclaimed(ctx context.Context, owner string) (uint64, error)
}
