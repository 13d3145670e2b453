package solana

import "context"

// RPCClient defines the Solana RPC surface the reclaim engine consumes.
type RPCClient interface {
	// GetTokenAccountsByOwner enumerates all token accounts held by owner
	// under the given token program.
	GetTokenAccountsByOwner(ctx context.Context, owner, programID string) ([]TokenAccountEntry, error)

	// GetAccountInfo retrieves account info by public key.
	// Returns nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetBalance retrieves the lamport balance of an account.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetLatestBlockhash retrieves a fresh blockhash for transaction building.
	GetLatestBlockhash(ctx context.Context) (*LatestBlockhash, error)

	// SendTransaction submits a base64-encoded signed transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, encodedTx string) (string, error)

	// ConfirmTransaction blocks until the signature reaches the client's
	// configured commitment level or ctx expires.
	ConfirmTransaction(ctx context.Context, signature string) error
}
