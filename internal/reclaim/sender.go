package reclaim

import (
	"context"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-rent-reclaimer/internal/keys"
	"solana-rent-reclaimer/internal/solana"
	"solana-rent-reclaimer/internal/txn"
)

// ErrRelayNotWired is returned by the relay sender until the fee-sponsoring
// relay integration is implemented.
var ErrRelayNotWired = errors.New("relay sender not wired: run with USE_RELAY=0")

// Sender submits one close instruction and blocks until the transaction is
// confirmed. Implementations are interchangeable: the dispatcher is written
// against this interface only.
type Sender interface {
	Send(ctx context.Context, ix txn.Instruction) (string, error)
}

// DirectSender signs with the operator key, pays its own fees and submits
// straight to the cluster.
type DirectSender struct {
	rpc      solana.RPCClient
	ws       solana.WSConfirmer // optional, nil confirms by polling
	operator *keys.Keypair
}

// NewDirectSender creates a DirectSender. ws may be nil; confirmation then
// polls signature statuses over HTTP.
func NewDirectSender(rpc solana.RPCClient, operator *keys.Keypair, ws solana.WSConfirmer) *DirectSender {
	return &DirectSender{rpc: rpc, ws: ws, operator: operator}
}

var _ Sender = (*DirectSender)(nil)

// Send builds, signs, submits and confirms a single-instruction transaction.
func (s *DirectSender) Send(ctx context.Context, ix txn.Instruction) (string, error) {
	blockhash, err := s.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := txn.NewSignedTransaction(
		s.operator.PublicKey(),
		[]txn.Instruction{ix},
		blockhash.Blockhash,
		s.operator.Private(),
	)
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	encoded, err := tx.EncodeBase64()
	if err != nil {
		return "", fmt.Errorf("encode transaction: %w", err)
	}

	// The transaction signature is the operator's signature over the
	// message, known before submission. Subscribing first closes the race
	// where a fast cluster confirms before the subscription lands.
	signature := base58.Encode(tx.Signatures[0])

	var confirmCh <-chan solana.SignatureNotification
	if s.ws != nil {
		if ch, err := s.ws.SubscribeSignature(ctx, signature); err == nil {
			confirmCh = ch
		}
		// Subscription failure falls back to polling.
	}

	submitted, err := s.rpc.SendTransaction(ctx, encoded)
	if err != nil {
		// The transaction never reached the cluster, so the notification
		// will not arrive. Drop the subscription instead of leaking it.
		if confirmCh != nil {
			s.ws.Forget(signature)
		}
		return "", fmt.Errorf("send transaction: %w", err)
	}
	if submitted != "" {
		signature = submitted
	}

	if confirmCh != nil {
		select {
		case notif, ok := <-confirmCh:
			if !ok {
				return "", fmt.Errorf("confirm %s: subscription closed", signature)
			}
			if notif.Err != nil {
				return "", fmt.Errorf("transaction %s failed: %v", signature, notif.Err)
			}
			return signature, nil
		case <-ctx.Done():
			return "", fmt.Errorf("confirm %s: %w", signature, ctx.Err())
		}
	}

	if err := s.rpc.ConfirmTransaction(ctx, signature); err != nil {
		return "", err
	}
	return signature, nil
}

// RelaySender is the extension point for a fee-sponsoring relay service
// that submits on the operator's behalf. It shares the Sender contract with
// DirectSender so the dispatcher never changes when it is completed.
type RelaySender struct {
	endpoint string
}

// NewRelaySender creates the relay sender stub for the given relay endpoint.
func NewRelaySender(endpoint string) *RelaySender {
	return &RelaySender{endpoint: endpoint}
}

var _ Sender = (*RelaySender)(nil)

// Send always fails until the relay integration lands.
func (s *RelaySender) Send(context.Context, txn.Instruction) (string, error) {
	return "", fmt.Errorf("%w (endpoint %s)", ErrRelayNotWired, s.endpoint)
}
