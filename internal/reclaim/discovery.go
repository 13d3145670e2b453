package reclaim

import (
	"context"
	"fmt"
	"log/slog"

	"solana-rent-reclaimer/internal/solana"
	"solana-rent-reclaimer/internal/token"
)

// DiscoveryResult is the outcome of one scan of the owner's token accounts.
type DiscoveryResult struct {
	// Scanned is the number of accounts returned by the enumeration call,
	// including ones that failed to decode.
	Scanned    int
	Candidates []CloseCandidate
	Skips      SkipCounters
}

// Scanner discovers close candidates for an owner wallet.
type Scanner struct {
	rpc    solana.RPCClient
	logger *slog.Logger
}

// NewScanner creates a Scanner. A nil logger falls back to slog.Default.
func NewScanner(rpc solana.RPCClient, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{rpc: rpc, logger: logger}
}

// Discover enumerates all token accounts owned by the policy owner and
// classifies each one. Individual decode or balance-lookup failures are
// counted as parse errors and do not abort the scan; only a failure of the
// enumeration call itself is returned as an error.
func (s *Scanner) Discover(ctx context.Context, policy Policy) (*DiscoveryResult, error) {
	entries, err := s.rpc.GetTokenAccountsByOwner(ctx, policy.Owner, token.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("enumerate token accounts for %s: %w", policy.Owner, err)
	}

	result := &DiscoveryResult{Scanned: len(entries)}

	for _, entry := range entries {
		acc, err := token.DecodeAccount(entry.Data)
		if err != nil {
			result.Skips = result.Skips.Add(SkipParseError)
			s.logger.Warn("skip: could not parse token account",
				"tokenAccount", entry.Pubkey, "err", err)
			continue
		}

		rec := TokenAccountRecord{
			Address:        entry.Pubkey,
			Mint:           acc.Mint,
			Owner:          acc.Owner,
			Amount:         acc.Amount,
			CloseAuthority: acc.CloseAuthority,
			Lamports:       entry.Lamports,
		}

		// Enumeration normally carries lamports; fall back to a balance
		// lookup when it does not. A failed lookup is recovered as a parse
		// error rather than pricing the account at zero.
		if rec.Lamports == 0 {
			lamports, err := s.rpc.GetBalance(ctx, entry.Pubkey)
			if err != nil {
				result.Skips = result.Skips.Add(SkipParseError)
				s.logger.Warn("skip: could not fetch account balance",
					"tokenAccount", entry.Pubkey, "err", err)
				continue
			}
			rec.Lamports = lamports
		}

		if reason, ok := Classify(rec, policy); !ok {
			result.Skips = result.Skips.Add(reason)
			continue
		}

		result.Candidates = append(result.Candidates, CloseCandidate{
			Account:  rec.Address,
			Mint:     rec.Mint,
			Owner:    rec.Owner,
			Lamports: rec.Lamports,
		})
	}

	return result, nil
}
