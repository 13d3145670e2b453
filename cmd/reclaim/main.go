// Package main provides the rent reclaim CLI: a single scan-and-close run,
// or a repeating loop on a fixed interval or cron schedule.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"solana-rent-reclaimer/internal/config"
	"solana-rent-reclaimer/internal/keys"
	"solana-rent-reclaimer/internal/observability"
	"solana-rent-reclaimer/internal/reclaim"
	"solana-rent-reclaimer/internal/solana"
	"solana-rent-reclaimer/internal/storage"
	"solana-rent-reclaimer/internal/storage/memory"
	"solana-rent-reclaimer/internal/storage/migrations"
	pgstore "solana-rent-reclaimer/internal/storage/postgres"
)

func main() {
	watch := flag.Bool("watch", false, "Repeat runs on a fixed interval")
	intervalSec := flag.Int("interval", 60, "Seconds between runs in watch mode")
	cronSpec := flag.String("cron", "", "Cron schedule for watch mode (overrides --interval)")
	jsonOut := flag.Bool("json", false, "Print run reports as JSON to stdout")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for run history (empty to disable)")
	flag.Parse()

	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	operator, err := keys.LoadFromFile(cfg.OwnerKeypairPath)
	if err != nil {
		logger.Error("load operator keypair", "err", err)
		os.Exit(1)
	}
	owner := operator.PublicKey()
	if !keys.IsOnCurve(owner) {
		logger.Error("operator public key is off-curve and cannot sign", "owner", owner)
		os.Exit(1)
	}

	logger.Info("boot",
		"solanaRpc", cfg.RPCURL, "owner", owner,
		"useRelay", cfg.UseRelay, "dryRun", cfg.DryRun)

	rpc := solana.NewHTTPClient(cfg.RPCURL, solana.WithCommitment(cfg.Commitment))

	if lamports, err := operatorLamports(ctx, rpc, owner); err != nil {
		logger.Warn("operator balance lookup failed", "err", err)
	} else if lamports == 0 {
		logger.Warn("operator account holds no lamports and cannot pay fees", "owner", owner)
	} else {
		logger.Info("operator balance", "lamports", lamports)
	}

	policy := reclaim.Policy{
		Owner:           owner,
		MinRentLamports: cfg.MinRentLamports,
		MaxClosePerRun:  cfg.MaxClosePerRun,
		AllowMints:      cfg.AllowMintSet(),
		DryRun:          cfg.DryRun,
	}

	var sender reclaim.Sender
	if cfg.UseRelay {
		sender = reclaim.NewRelaySender(cfg.RelayURL)
	} else {
		var ws solana.WSConfirmer
		if cfg.WSURL != "" && !cfg.DryRun {
			wsClient, err := solana.NewWSConfirmClient(ctx, cfg.WSURL, cfg.Commitment, nil)
			if err != nil {
				logger.Warn("websocket confirm unavailable, falling back to polling", "err", err)
			} else {
				defer wsClient.Close()
				ws = wsClient
			}
		}
		sender = reclaim.NewDirectSender(rpc, operator, ws)
	}

	var metrics *observability.Metrics
	if *metricsAddr != "" {
		metrics = observability.NewMetrics("")
		go serveMetrics(logger, *metricsAddr)
	}

	// Run history defaults to the in-process store so the shutdown summary
	// always has data; postgres replaces it when a DSN is configured.
	var runStore storage.RunStore = memory.NewRunStore()
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Error("connect to postgres", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Error("run migrations", "err", err)
			os.Exit(1)
		}
		runStore = pgstore.NewRunStore(pool)
	}

	runner, err := reclaim.New(reclaim.Options{
		Scanner: reclaim.NewScanner(rpc, logger),
		Sender:  sender,
		Policy:  policy,
		Logger:  logger,
		Metrics: metrics,
		OnReport: func(ctx context.Context, report *reclaim.RunReport) {
			if *jsonOut {
				printJSON(report)
			}
			rec := &storage.RunRecord{Owner: owner, Report: *report}
			if err := runStore.Insert(ctx, rec); err != nil {
				logger.Error("persist run report", "err", err)
			}
		},
	})
	if err != nil {
		logger.Error("invalid runner options", "err", err)
		os.Exit(1)
	}

	switch {
	case *cronSpec != "":
		err = runCron(ctx, logger, runner, *cronSpec)
	case *watch:
		err = runner.RunLoop(ctx, time.Duration(*intervalSec)*time.Second)
	default:
		_, err = runner.RunOnce(ctx)
	}

	// Signal cancellation kills ctx, so the summary reads on its own deadline.
	summaryCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if runs, reclaimed, sErr := sessionSummary(summaryCtx, runStore, owner); sErr != nil {
		logger.Warn("read run history", "err", sErr)
	} else {
		logger.Info("run history", "recordedRuns", runs, "reclaimedLamports", reclaimed)
	}
	cancel()

	if err != nil && ctx.Err() == nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// sessionHistoryLimit caps how much history the shutdown summary reads.
const sessionHistoryLimit = 100

// sessionSummary reads the recorded run history: how many runs the store
// holds (up to sessionHistoryLimit) and the lamports reclaimed for owner
// across all of them.
func sessionSummary(ctx context.Context, store storage.RunStore, owner string) (int, uint64, error) {
	recent, err := store.GetRecent(ctx, sessionHistoryLimit)
	if err != nil {
		return 0, 0, err
	}
	reclaimed, err := store.TotalReclaimed(ctx, owner)
	if err != nil {
		return 0, 0, err
	}
	return len(recent), reclaimed, nil
}

// operatorLamports looks up the operator account's balance. A missing
// account reports zero lamports.
func operatorLamports(ctx context.Context, rpc solana.RPCClient, owner string) (uint64, error) {
	info, err := rpc.GetAccountInfo(ctx, owner)
	if err != nil {
		return 0, err
	}
	if info == nil {
		return 0, nil
	}
	return info.Lamports, nil
}

// runCron repeats runs on a cron schedule until ctx is cancelled.
// Iteration failures are logged and do not stop the schedule.
func runCron(ctx context.Context, logger *slog.Logger, runner *reclaim.Runner, spec string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("parse cron schedule %q: %w", spec, err)
	}

	logger.Info("cron mode enabled", "schedule", spec)

	for {
		if _, err := runner.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("reclaim run failed", "err", err)
		}

		next := schedule.Next(time.Now())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(next)):
		}
	}
}

func serveMetrics(logger *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Info("starting metrics server", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server error", "err", err)
	}
}

// printJSON dumps a timestamped report to stdout for automation.
func printJSON(report *reclaim.RunReport) {
	out := struct {
		TS time.Time `json:"ts"`
		*reclaim.RunReport
	}{time.Now().UTC(), report}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		slog.Error("marshal report", "err", err)
		return
	}
	fmt.Println(string(data))
}
