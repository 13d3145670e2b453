package solana

import "context"

// WSConfirmer defines the Solana WebSocket confirmation interface.
type WSConfirmer interface {
	// SubscribeSignature subscribes to the one-shot confirmation notification
	// for a submitted transaction signature.
	SubscribeSignature(ctx context.Context, signature string) (<-chan SignatureNotification, error)

	// Forget drops a pending subscription whose transaction was never
	// submitted. Its channel is closed without a delivery.
	Forget(signature string)

	// Close closes the WebSocket connection.
	Close() error
}

// SignatureNotification is the one-shot signatureSubscribe message delivered
// when a signature reaches the subscribed commitment level.
type SignatureNotification struct {
	Signature string
	Slot      int64
	Err       interface{} // nil when the transaction succeeded
}
