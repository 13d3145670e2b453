package reclaim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"solana-rent-reclaimer/internal/observability"
	"solana-rent-reclaimer/internal/token"
)

// RunReport is the outcome of one reclaim run. It is assembled once and
// never mutated after being returned.
type RunReport struct {
	Scanned       int          `json:"scanned"`
	Candidates    int          `json:"candidates"`
	Planned       int          `json:"planned"`
	Closed        int          `json:"closed"`
	Signatures    []string     `json:"signatures"`
	Skips         SkipCounters `json:"skips"`
	TotalLamports uint64       `json:"totalLamports"`
	// ReclaimedLamports sums the rent of the accounts actually closed.
	ReclaimedLamports uint64 `json:"reclaimedLamports"`
	DryRun            bool   `json:"dryRun"`
}

// Runner coordinates one reclaim run: discovery, prioritization, batch
// selection and execution.
type Runner struct {
	scanner *Scanner
	sender  Sender
	policy  Policy
	logger  *slog.Logger
	metrics *observability.Metrics
	// onReport receives every produced report, including partial ones.
	onReport func(context.Context, *RunReport)
}

// Options for creating a Runner.
type Options struct {
	// Required
	Scanner *Scanner
	Sender  Sender
	Policy  Policy

	// Optional
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	OnReport func(context.Context, *RunReport)
}

// New creates a Runner. The policy is validated once here; an invalid
// policy is a configuration error and no run ever starts.
func New(opts Options) (*Runner, error) {
	if opts.Scanner == nil {
		return nil, fmt.Errorf("runner: scanner required")
	}
	if opts.Sender == nil && !opts.Policy.DryRun {
		return nil, fmt.Errorf("runner: sender required unless dry-run")
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		scanner:  opts.Scanner,
		sender:   opts.Sender,
		policy:   opts.Policy,
		logger:   logger,
		metrics:  opts.Metrics,
		onReport: opts.OnReport,
	}, nil
}

// RunOnce performs a single reclaim run and returns its report.
//
// A submission failure aborts the remaining batch: the partial report, with
// the signatures already collected, is returned together with the error.
// Only an enumeration failure yields a nil report.
func (r *Runner) RunOnce(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	r.logger.Info("starting reclaim scan",
		"owner", r.policy.Owner, "dryRun", r.policy.DryRun)

	discovered, err := r.scanner.Discover(ctx, r.policy)
	if err != nil {
		r.countRun("error", start)
		return nil, err
	}

	ordered := Prioritize(discovered.Candidates)
	picked := SelectBatch(ordered, r.policy.MaxClosePerRun)

	report := &RunReport{
		Scanned:    discovered.Scanned,
		Candidates: len(discovered.Candidates),
		Planned:    len(picked),
		Signatures: []string{},
		Skips:      discovered.Skips,
		DryRun:     r.policy.DryRun,
	}
	for _, c := range discovered.Candidates {
		report.TotalLamports += c.Lamports
	}

	r.logger.Info("candidates found",
		"scanned", report.Scanned,
		"candidates", report.Candidates,
		"planned", report.Planned,
		"totalLamports", report.TotalLamports,
		"skippedNonEmpty", report.Skips.NonEmpty,
		"skippedWrongAuthority", report.Skips.WrongAuthority,
		"skippedDisallowedMint", report.Skips.DisallowedMint,
		"skippedBelowMinLamports", report.Skips.BelowMinLamports,
		"parseErrors", report.Skips.ParseError)

	r.observeDiscovery(report)

	for _, c := range picked {
		r.logger.Info("closing empty token account",
			"tokenAccount", c.Account, "mint", c.Mint,
			"rentLamports", c.Lamports, "dryRun", r.policy.DryRun)

		if r.policy.DryRun {
			continue
		}

		ix := token.NewCloseAccountInstruction(c.Account, r.policy.Owner, r.policy.Owner)
		sig, err := r.sender.Send(ctx, ix)
		if err != nil {
			// Abort the remaining batch; already-closed signatures stay in
			// the partial report.
			if r.metrics != nil {
				r.metrics.SubmissionErrors.Inc()
			}
			r.countRun("partial", start)
			r.report(ctx, report)
			return report, fmt.Errorf("close %s: %w", c.Account, err)
		}

		report.Closed++
		report.Signatures = append(report.Signatures, sig)
		report.ReclaimedLamports += c.Lamports
		if r.metrics != nil {
			r.metrics.AccountsClosed.Inc()
			r.metrics.LamportsReclaimed.Add(float64(c.Lamports))
		}
		r.logger.Info("closed token account", "sig", sig, "tokenAccount", c.Account)
	}

	r.logger.Info("run complete",
		"closed", report.Closed, "planned", report.Planned, "dryRun", r.policy.DryRun)
	r.countRun("success", start)
	if r.metrics != nil {
		r.metrics.LastSuccessfulRun.SetToCurrentTime()
	}
	r.report(ctx, report)

	return report, nil
}

// RunLoop runs immediately and then repeats on a fixed interval until ctx
// is cancelled. Iterations are strictly sequential and iteration failures
// do not terminate the loop.
func (r *Runner) RunLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("runner: interval must be positive, got %s", interval)
	}

	r.logger.Info("watch mode enabled", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("reclaim run failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) report(ctx context.Context, report *RunReport) {
	if r.onReport != nil {
		r.onReport(ctx, report)
	}
}

func (r *Runner) countRun(outcome string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.RunsTotal.WithLabelValues(outcome).Inc()
	r.metrics.RunDuration.Observe(time.Since(start).Seconds())
}

func (r *Runner) observeDiscovery(report *RunReport) {
	if r.metrics == nil {
		return
	}
	r.metrics.AccountsScanned.Add(float64(report.Scanned))
	r.metrics.CandidatesFound.Add(float64(report.Candidates))
	skips := map[SkipReason]int{
		SkipNonEmpty:         report.Skips.NonEmpty,
		SkipWrongAuthority:   report.Skips.WrongAuthority,
		SkipDisallowedMint:   report.Skips.DisallowedMint,
		SkipBelowMinLamports: report.Skips.BelowMinLamports,
		SkipParseError:       report.Skips.ParseError,
	}
	for reason, n := range skips {
		if n > 0 {
			r.metrics.SkippedAccounts.WithLabelValues(string(reason)).Add(float64(n))
		}
	}
}
