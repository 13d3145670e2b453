package bot

import (
	"fmt"
	"strings"

	"solana-rent-reclaimer/internal/reclaim"
)

const lamportsPerSOL = 1_000_000_000

// maxExamples caps the candidates listed in a summary message.
const maxExamples = 3

// ScanSummary is the chat-facing view of one scan.
type ScanSummary struct {
	Scanned       int
	Candidates    int
	TotalLamports uint64
	TopLamports   uint64
	Skips         reclaim.SkipCounters
	Examples      []reclaim.CloseCandidate
}

// NewScanSummary condenses a discovery result. Candidates are expected in
// prioritized order.
func NewScanSummary(scanned int, ordered []reclaim.CloseCandidate, skips reclaim.SkipCounters) ScanSummary {
	s := ScanSummary{
		Scanned:    scanned,
		Candidates: len(ordered),
		Skips:      skips,
	}

	for _, c := range ordered {
		s.TotalLamports += c.Lamports
	}
	if len(ordered) > 0 {
		s.TopLamports = ordered[0].Lamports
	}

	n := len(ordered)
	if n > maxExamples {
		n = maxExamples
	}
	s.Examples = ordered[:n]

	return s
}

// lamportsToSOL renders a lamport amount as SOL with six decimals.
func lamportsToSOL(lamports uint64) string {
	return fmt.Sprintf("%.6f", float64(lamports)/lamportsPerSOL)
}

// Format renders the summary as a plain-text chat message.
func (s ScanSummary) Format(owner string) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Owner: %s", owner))
	lines = append(lines, fmt.Sprintf("Scanned: %d", s.Scanned))
	lines = append(lines, fmt.Sprintf("Reclaimable: %d", s.Candidates))
	lines = append(lines, fmt.Sprintf("Estimated rent: %s SOL (top: %s SOL)",
		lamportsToSOL(s.TotalLamports), lamportsToSOL(s.TopLamports)))
	lines = append(lines, fmt.Sprintf(
		"Skipped: non-empty=%d, wrong-auth=%d, below-min-rent=%d, not-allowed-mint=%d, parse-errors=%d",
		s.Skips.NonEmpty, s.Skips.WrongAuthority, s.Skips.BelowMinLamports,
		s.Skips.DisallowedMint, s.Skips.ParseError))

	if len(s.Examples) > 0 {
		lines = append(lines, "", "Top candidates:")
		for _, ex := range s.Examples {
			lines = append(lines, fmt.Sprintf("- %s | mint %s | lamports %d",
				ex.Account, ex.Mint, ex.Lamports))
		}
	}

	return strings.Join(lines, "\n")
}
