// Package bot implements the Telegram notifier front-end. It scans for
// reclaimable rent and reports; it never closes accounts.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"solana-rent-reclaimer/internal/config"
	"solana-rent-reclaimer/internal/reclaim"
)

// minWatchInterval is the smallest accepted /watch interval.
const minWatchInterval = 15 * time.Second

// Bot long-polls the Telegram Bot API and serves scan commands.
type Bot struct {
	api      *apiClient
	scanner  *reclaim.Scanner
	policy   reclaim.Policy
	cfg      config.Config
	logger   *slog.Logger
	watchers *WatcherRegistry
}

// Options for creating a Bot.
type Options struct {
	Token   string
	Scanner *reclaim.Scanner
	Policy  reclaim.Policy
	Config  config.Config
	Logger  *slog.Logger
}

// New creates a Bot.
func New(opts Options) (*Bot, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("bot: token required")
	}
	if opts.Scanner == nil {
		return nil, fmt.Errorf("bot: scanner required")
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Bot{
		api:      newAPIClient(opts.Token),
		scanner:  opts.Scanner,
		policy:   opts.Policy,
		cfg:      opts.Config,
		logger:   logger,
		watchers: NewWatcherRegistry(),
	}, nil
}

// Run long-polls for updates until ctx is cancelled. Poll errors are logged
// and retried; they never stop the bot.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("telegram notifier bot starting", "owner", b.policy.Owner)
	defer b.watchers.StopAll()

	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.api.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Error("telegram poll failed", "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage dispatches one chat command.
func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return
	}

	// Group chats may address commands as "/cmd@BotName".
	command := strings.SplitN(fields[0], "@", 2)[0]
	switch command {
	case "/start":
		b.reply(ctx, msg.Chat.ID, startText)
	case "/status":
		b.reply(ctx, msg.Chat.ID, b.statusText())
	case "/scan":
		b.handleScan(ctx, msg.Chat.ID)
	case "/watch":
		b.handleWatch(ctx, msg.Chat.ID, fields[1:])
	case "/stop":
		b.handleStop(ctx, msg.Chat.ID)
	}
}

const startText = `Rent Reclaim Notifier is running.

Commands:
/scan - scan for reclaimable empty token accounts
/watch <seconds> - scan every N seconds and alert when reclaimable rent exists
/stop - stop watch mode for this chat
/status - show current config

Note: This bot does NOT close accounts. It only reports.`

func (b *Bot) statusText() string {
	allowMints := "not set"
	if len(b.policy.AllowMints) > 0 {
		allowMints = "set"
	}

	lines := []string{
		fmt.Sprintf("RPC: %s", b.cfg.RPCURL),
		fmt.Sprintf("Commitment: %s", b.cfg.Commitment),
		fmt.Sprintf("DRY_RUN: %t", b.cfg.DryRun),
		fmt.Sprintf("USE_RELAY: %t", b.cfg.UseRelay),
		fmt.Sprintf("MAX_CLOSE_PER_RUN: %d", b.cfg.MaxClosePerRun),
		fmt.Sprintf("MIN_RENT_LAMPORTS: %d", b.cfg.MinRentLamports),
		fmt.Sprintf("ALLOW_MINTS: %s", allowMints),
		fmt.Sprintf("Default interval: %s", b.cfg.TelegramDefaultInterval),
		fmt.Sprintf("Alert threshold: %d lamports", b.cfg.TelegramMinAlertLamports),
	}
	return strings.Join(lines, "\n")
}

func (b *Bot) handleScan(ctx context.Context, chatID int64) {
	summary, err := b.scan(ctx)
	if err != nil {
		b.reply(ctx, chatID, fmt.Sprintf("Scan failed: %v", err))
		return
	}
	b.reply(ctx, chatID, summary.Format(b.policy.Owner))
}

func (b *Bot) handleWatch(ctx context.Context, chatID int64, args []string) {
	interval := b.cfg.TelegramDefaultInterval
	if len(args) > 0 {
		if secs, err := strconv.Atoi(args[0]); err == nil {
			interval = time.Duration(secs) * time.Second
		}
	}
	if interval < minWatchInterval {
		interval = time.Minute
	}

	minAlert := b.cfg.TelegramMinAlertLamports
	b.reply(ctx, chatID, fmt.Sprintf(
		"Watch mode enabled. Interval: %s. Alert threshold: %d lamports.",
		interval, minAlert))

	b.watchers.Start(ctx, chatID, interval, func(tickCtx context.Context) {
		summary, err := b.scan(tickCtx)
		if err != nil {
			if tickCtx.Err() != nil {
				return
			}
			b.reply(tickCtx, chatID, fmt.Sprintf("Watch scan failed: %v", err))
			return
		}

		if summary.Candidates > 0 && summary.TotalLamports >= minAlert {
			b.reply(tickCtx, chatID,
				"Reclaimable rent detected:\n\n"+summary.Format(b.policy.Owner))
		}
	})
}

func (b *Bot) handleStop(ctx context.Context, chatID int64) {
	if b.watchers.Stop(chatID) {
		b.reply(ctx, chatID, "Watch mode stopped for this chat.")
	} else {
		b.reply(ctx, chatID, "Watch mode is not running in this chat.")
	}
}

// scan runs a discovery pass and condenses it for chat display.
func (b *Bot) scan(ctx context.Context) (ScanSummary, error) {
	discovered, err := b.scanner.Discover(ctx, b.policy)
	if err != nil {
		return ScanSummary{}, err
	}

	ordered := reclaim.Prioritize(discovered.Candidates)
	return NewScanSummary(discovered.Scanned, ordered, discovered.Skips), nil
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.api.sendMessage(ctx, chatID, text); err != nil && ctx.Err() == nil {
		b.logger.Error("telegram send failed", "chatID", chatID, "err", err)
	}
}
