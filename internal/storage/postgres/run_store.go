package postgres

import (
	"context"
	"fmt"

	"solana-rent-reclaimer/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert persists a completed run and sets r.ID.
func (s *RunStore) Insert(ctx context.Context, r *storage.RunRecord) error {
	if r == nil || r.Owner == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO reclaim_runs (
			owner, scanned, candidates, planned, closed,
			total_lamports, reclaimed_lamports, dry_run, signatures,
			skipped_non_empty, skipped_wrong_authority, skipped_disallowed_mint,
			skipped_below_min_lamports, parse_errors
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`

	row := s.pool.QueryRow(ctx, query,
		r.Owner,
		r.Report.Scanned,
		r.Report.Candidates,
		r.Report.Planned,
		r.Report.Closed,
		int64(r.Report.TotalLamports),
		int64(r.Report.ReclaimedLamports),
		r.Report.DryRun,
		r.Report.Signatures,
		r.Report.Skips.NonEmpty,
		r.Report.Skips.WrongAuthority,
		r.Report.Skips.DisallowedMint,
		r.Report.Skips.BelowMinLamports,
		r.Report.Skips.ParseError,
	)
	if err := row.Scan(&r.ID, &r.CreatedAt); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRecent retrieves the most recent runs, newest first.
func (s *RunStore) GetRecent(ctx context.Context, limit int) ([]*storage.RunRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT id, owner, scanned, candidates, planned, closed,
		       total_lamports, reclaimed_lamports, dry_run, signatures,
		       skipped_non_empty, skipped_wrong_authority, skipped_disallowed_mint,
		       skipped_below_min_lamports, parse_errors, created_at
		FROM reclaim_runs
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent runs: %w", err)
	}
	defer rows.Close()

	var out []*storage.RunRecord
	for rows.Next() {
		var (
			r                storage.RunRecord
			total, reclaimed int64
		)
		err := rows.Scan(
			&r.ID,
			&r.Owner,
			&r.Report.Scanned,
			&r.Report.Candidates,
			&r.Report.Planned,
			&r.Report.Closed,
			&total,
			&reclaimed,
			&r.Report.DryRun,
			&r.Report.Signatures,
			&r.Report.Skips.NonEmpty,
			&r.Report.Skips.WrongAuthority,
			&r.Report.Skips.DisallowedMint,
			&r.Report.Skips.BelowMinLamports,
			&r.Report.Skips.ParseError,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Report.TotalLamports = uint64(total)
		r.Report.ReclaimedLamports = uint64(reclaimed)
		if r.Report.Signatures == nil {
			r.Report.Signatures = []string{}
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// TotalReclaimed sums lamports closed across all recorded runs for owner.
func (s *RunStore) TotalReclaimed(ctx context.Context, owner string) (uint64, error) {
	query := `
		SELECT COALESCE(SUM(reclaimed_lamports), 0)
		FROM reclaim_runs
		WHERE owner = $1
	`

	var total int64
	if err := s.pool.QueryRow(ctx, query, owner).Scan(&total); err != nil {
		if isNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("total reclaimed: %w", err)
	}
	return uint64(total), nil
}
