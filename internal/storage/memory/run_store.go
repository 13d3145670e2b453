// Package memory provides in-memory storage implementations for tests and
// single-process runs without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"solana-rent-reclaimer/internal/storage"
)

// RunStore implements storage.RunStore in memory.
type RunStore struct {
	mu     sync.RWMutex
	nextID int64
	runs   []*storage.RunRecord
}

// NewRunStore creates a new in-memory RunStore.
func NewRunStore() *RunStore {
	return &RunStore{nextID: 1}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert persists a completed run and sets r.ID.
func (s *RunStore) Insert(_ context.Context, r *storage.RunRecord) error {
	if r == nil || r.Owner == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.nextID
	s.nextID++
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	stored := *r
	s.runs = append(s.runs, &stored)
	return nil
}

// GetRecent retrieves the most recent runs, newest first.
func (s *RunStore) GetRecent(_ context.Context, limit int) ([]*storage.RunRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.runs)
	if limit > n {
		limit = n
	}

	out := make([]*storage.RunRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		r := *s.runs[i]
		out = append(out, &r)
	}
	return out, nil
}

// TotalReclaimed sums lamports closed across all recorded runs for owner.
func (s *RunStore) TotalReclaimed(_ context.Context, owner string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total uint64
	for _, r := range s.runs {
		if r.Owner == owner {
			total += r.Report.ReclaimedLamports
		}
	}
	return total, nil
}
