// Package main provides the Telegram rent reclaim notifier entry point.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"solana-rent-reclaimer/internal/bot"
	"solana-rent-reclaimer/internal/config"
	"solana-rent-reclaimer/internal/keys"
	"solana-rent-reclaimer/internal/reclaim"
	"solana-rent-reclaimer/internal/solana"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	if cfg.TelegramBotToken == "" {
		logger.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	operator, err := keys.LoadFromFile(cfg.OwnerKeypairPath)
	if err != nil {
		logger.Error("load operator keypair", "err", err)
		os.Exit(1)
	}

	rpc := solana.NewHTTPClient(cfg.RPCURL, solana.WithCommitment(cfg.Commitment))

	policy := reclaim.Policy{
		Owner:           operator.PublicKey(),
		MinRentLamports: cfg.MinRentLamports,
		MaxClosePerRun:  cfg.MaxClosePerRun,
		AllowMints:      cfg.AllowMintSet(),
		// The notifier only reports; it never closes accounts.
		DryRun: true,
	}

	b, err := bot.New(bot.Options{
		Token:   cfg.TelegramBotToken,
		Scanner: reclaim.NewScanner(rpc, logger),
		Policy:  policy,
		Config:  cfg,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("create bot", "err", err)
		os.Exit(1)
	}

	logger.Info("notifier starting",
		"rpc", cfg.RPCURL, "ownerKeypairPath", cfg.OwnerKeypairPath)

	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
