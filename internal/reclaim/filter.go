// Package reclaim implements the rent reclaim engine: candidate discovery,
// eligibility filtering, prioritization and batched closure of empty token
// accounts.
package reclaim

import "fmt"

// TokenAccountRecord is the decoded view of one scanned token account.
type TokenAccountRecord struct {
	Address        string
	Mint           string
	Owner          string // wallet that owns the token account
	Amount         uint64 // token balance in base units
	CloseAuthority string // empty means unset; the owner may close
	Lamports       uint64 // rent lamports held by the account
}

// CloseCandidate is an account eligible for closure. Immutable once created
// and scoped to a single run.
type CloseCandidate struct {
	Account  string `json:"account"`
	Mint     string `json:"mint"`
	Owner    string `json:"owner"`
	Lamports uint64 `json:"lamports"`
}

// SkipReason classifies why a scanned record was not a candidate.
type SkipReason string

// Skip reasons, in rule order.
const (
	SkipNonEmpty         SkipReason = "non_empty"
	SkipWrongAuthority   SkipReason = "wrong_authority"
	SkipDisallowedMint   SkipReason = "disallowed_mint"
	SkipBelowMinLamports SkipReason = "below_min_lamports"
	SkipParseError       SkipReason = "parse_error"
)

// SkipCounters accumulates per-reason skip counts for one run.
type SkipCounters struct {
	NonEmpty         int `json:"nonEmpty"`
	WrongAuthority   int `json:"wrongAuthority"`
	DisallowedMint   int `json:"disallowedMint"`
	BelowMinLamports int `json:"belowMinLamports"`
	ParseError       int `json:"parseError"`
}

// Add returns a copy of the counters with reason incremented. Counters are
// folded per run; nothing is shared across runs.
func (c SkipCounters) Add(reason SkipReason) SkipCounters {
	switch reason {
	case SkipNonEmpty:
		c.NonEmpty++
	case SkipWrongAuthority:
		c.WrongAuthority++
	case SkipDisallowedMint:
		c.DisallowedMint++
	case SkipBelowMinLamports:
		c.BelowMinLamports++
	case SkipParseError:
		c.ParseError++
	}
	return c
}

// Total sums all skip buckets.
func (c SkipCounters) Total() int {
	return c.NonEmpty + c.WrongAuthority + c.DisallowedMint + c.BelowMinLamports + c.ParseError
}

// Policy holds the immutable per-run reclaim parameters.
type Policy struct {
	// Owner is the operator wallet whose token accounts are scanned.
	Owner string
	// MinRentLamports skips accounts whose rent is not worth reclaiming.
	MinRentLamports uint64
	// MaxClosePerRun caps the batch closed in a single run. Must be positive.
	MaxClosePerRun int
	// AllowMints restricts closure to these mints when non-empty.
	AllowMints map[string]struct{}
	// DryRun reports intended closures without submitting anything.
	DryRun bool
}

// Validate rejects unusable policies before any run starts.
func (p Policy) Validate() error {
	if p.Owner == "" {
		return fmt.Errorf("policy: owner required")
	}
	if p.MaxClosePerRun <= 0 {
		return fmt.Errorf("policy: max close per run must be positive, got %d", p.MaxClosePerRun)
	}
	return nil
}

// mintAllowed reports whether the policy permits closing accounts of mint.
// An absent or empty allow-set permits every mint.
func (p Policy) mintAllowed(mint string) bool {
	if len(p.AllowMints) == 0 {
		return true
	}
	_, ok := p.AllowMints[mint]
	return ok
}

// Classify applies the eligibility rules in fixed order and returns the
// first failing rule's skip reason, or ok=true when the record may be
// closed. Rule order matters: a record is counted once, under the first
// rule it fails, and the authority check precedes the value check so value
// is never reported for accounts the operator cannot act on.
func Classify(rec TokenAccountRecord, p Policy) (SkipReason, bool) {
	if rec.Amount != 0 {
		return SkipNonEmpty, false
	}
	// Unset close authority defaults to the owner and is allowed.
	if rec.CloseAuthority != "" && rec.CloseAuthority != p.Owner {
		return SkipWrongAuthority, false
	}
	if !p.mintAllowed(rec.Mint) {
		return SkipDisallowedMint, false
	}
	if rec.Lamports < p.MinRentLamports {
		return SkipBelowMinLamports, false
	}
	return "", true
}
