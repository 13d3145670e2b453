package stub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"solana-rent-reclaimer/internal/solana"
)

// ErrNotFound is returned when a requested account is not known to the stub.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing. Zero values behave like
// an empty cluster; tests populate the maps they need.
type RPCClient struct {
	mu sync.Mutex

	// TokenAccounts maps owner address to its enumeration result.
	TokenAccounts map[string][]solana.TokenAccountEntry
	// Accounts maps pubkey to account info.
	Accounts map[string]*solana.AccountInfo
	// Balances maps pubkey to lamports for GetBalance.
	Balances map[string]uint64
	// Blockhash is returned from GetLatestBlockhash.
	Blockhash solana.LatestBlockhash

	// EnumerateErr fails GetTokenAccountsByOwner when set.
	EnumerateErr error
	// BalanceErr fails GetBalance for pubkeys in BalanceErrFor.
	BalanceErr    error
	BalanceErrFor map[string]bool

	// SendErrAt fails the Nth SendTransaction call (1-based) when > 0.
	SendErrAt int
	// SendErr is the error returned at SendErrAt.
	SendErr error
	// ConfirmErr fails every ConfirmTransaction when set.
	ConfirmErr error

	// SentTransactions records every base64 payload passed to SendTransaction.
	SentTransactions []string
	// Confirmed records every signature passed to ConfirmTransaction.
	Confirmed []string

	sendCount int
}

var _ solana.RPCClient = (*RPCClient)(nil)

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		TokenAccounts: make(map[string][]solana.TokenAccountEntry),
		Accounts:      make(map[string]*solana.AccountInfo),
		Balances:      make(map[string]uint64),
		Blockhash: solana.LatestBlockhash{
			// 32 zero bytes in base58, valid for message serialization.
			Blockhash:            "11111111111111111111111111111111",
			LastValidBlockHeight: 1000,
		},
	}
}

// GetTokenAccountsByOwner returns the configured enumeration for owner.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner, _ string) ([]solana.TokenAccountEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.EnumerateErr != nil {
		return nil, c.EnumerateErr
	}
	return c.TokenAccounts[owner], nil
}

// GetAccountInfo returns the configured account, or nil when absent.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Accounts[pubkey], nil
}

// GetBalance returns the configured lamport balance for pubkey.
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.BalanceErr != nil && c.BalanceErrFor[pubkey] {
		return 0, c.BalanceErr
	}
	return c.Balances[pubkey], nil
}

// GetLatestBlockhash returns the configured blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (*solana.LatestBlockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bh := c.Blockhash
	return &bh, nil
}

// SendTransaction records the payload and returns a deterministic signature.
func (c *RPCClient) SendTransaction(_ context.Context, encodedTx string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sendCount++
	if c.SendErrAt > 0 && c.sendCount == c.SendErrAt {
		if c.SendErr != nil {
			return "", c.SendErr
		}
		return "", errors.New("send failed")
	}

	c.SentTransactions = append(c.SentTransactions, encodedTx)
	return fmt.Sprintf("StubSig%d", c.sendCount), nil
}

// ConfirmTransaction records the signature and succeeds unless ConfirmErr is set.
func (c *RPCClient) ConfirmTransaction(_ context.Context, signature string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ConfirmErr != nil {
		return c.ConfirmErr
	}
	c.Confirmed = append(c.Confirmed, signature)
	return nil
}
