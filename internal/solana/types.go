package solana

// Commitment is the durability level requested for reads and confirmations.
type Commitment string

// Supported commitment levels, weakest first.
const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// ParseCommitment validates a commitment string from configuration.
func ParseCommitment(s string) (Commitment, bool) {
	switch Commitment(s) {
	case CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized:
		return Commitment(s), true
	}
	return "", false
}

// rank orders commitments for confirmation comparisons.
func (c Commitment) rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	}
	return 0
}

// AtLeast reports whether c satisfies the durability of want.
func (c Commitment) AtLeast(want Commitment) bool {
	return c.rank() >= want.rank()
}

// TokenAccountEntry is one row of a getTokenAccountsByOwner response:
// the token account address plus its raw on-chain state.
type TokenAccountEntry struct {
	Pubkey   string
	Lamports uint64
	Owner    string // owning program, not the wallet
	Data     string // base64 encoded account data
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       string // base64 encoded
	Executable bool
	RentEpoch  uint64
}

// LatestBlockhash is the fresh reference a new transaction must carry.
type LatestBlockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}

// SignatureStatus reports the cluster-side state of a submitted transaction.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *uint64
	ConfirmationStatus Commitment
	Err                interface{} // nil when the transaction succeeded
}
