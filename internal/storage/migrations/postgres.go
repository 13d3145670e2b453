package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"solana-rent-reclaimer/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded schema files in lexical order,
// so the numeric prefix on each file name decides when it runs. Every file
// is written to be idempotent; rerunning against an existing database is
// safe.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	names, err := fs.Glob(PostgresFS, "postgres/*.sql")
	if err != nil {
		return fmt.Errorf("list embedded migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := fs.ReadFile(PostgresFS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
