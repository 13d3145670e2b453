// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"solana-rent-reclaimer/internal/solana"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	RPCURL           string
	WSURL            string // optional, enables WebSocket confirmation
	OwnerKeypairPath string
	Commitment       solana.Commitment

	DryRun          bool
	MinRentLamports uint64
	MaxClosePerRun  int
	AllowMints      []string

	UseRelay bool
	RelayURL string

	LogLevel slog.Level

	// Telegram notifier settings, only used by cmd/notifier.
	TelegramBotToken         string
	TelegramDefaultInterval  time.Duration
	TelegramMinAlertLamports uint64
}

// Load reads configuration from environment variables with safe defaults:
// dry-run is on unless explicitly disabled.
func Load() Config {
	commitment, ok := solana.ParseCommitment(envOrDefault("COMMITMENT", "confirmed"))
	if !ok {
		commitment = "" // rejected by Validate
	}

	return Config{
		RPCURL:           os.Getenv("SOLANA_RPC_URL"),
		WSURL:            os.Getenv("SOLANA_WS_URL"),
		OwnerKeypairPath: os.Getenv("OWNER_KEYPAIR_PATH"),
		Commitment:       commitment,

		DryRun:          envOrDefault("DRY_RUN", "1") == "1",
		MinRentLamports: envOrDefaultUint64("MIN_RENT_LAMPORTS", 0),
		MaxClosePerRun:  envOrDefaultInt("MAX_CLOSE_PER_RUN", 25),
		AllowMints:      splitList(os.Getenv("ALLOW_MINTS")),

		UseRelay: envOrDefault("USE_RELAY", "0") == "1",
		RelayURL: envOrDefault("RELAY_RPC_URL", "http://localhost:8080"),

		LogLevel: parseLogLevel(envOrDefault("LOG_LEVEL", "info")),

		TelegramBotToken:         os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramDefaultInterval:  time.Duration(envOrDefaultInt("TELEGRAM_DEFAULT_INTERVAL_SEC", 60)) * time.Second,
		TelegramMinAlertLamports: envOrDefaultUint64("TELEGRAM_MIN_ALERT_LAMPORTS", 0),
	}
}

// Validate rejects configurations that must not reach a run. Called once at
// process start; failures are fatal.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("config: SOLANA_RPC_URL is required")
	}
	if c.OwnerKeypairPath == "" {
		return fmt.Errorf("config: OWNER_KEYPAIR_PATH is required")
	}
	if c.Commitment == "" {
		return fmt.Errorf("config: COMMITMENT must be processed, confirmed or finalized")
	}
	if c.MaxClosePerRun <= 0 {
		return fmt.Errorf("config: MAX_CLOSE_PER_RUN must be positive, got %d", c.MaxClosePerRun)
	}
	return nil
}

// AllowMintSet returns the allow-set as a lookup map, nil when unrestricted.
func (c Config) AllowMintSet() map[string]struct{} {
	if len(c.AllowMints) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(c.AllowMints))
	for _, mint := range c.AllowMints {
		set[mint] = struct{}{}
	}
	return set
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultUint64(key string, defaultVal uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			slog.Warn("invalid unsigned integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
