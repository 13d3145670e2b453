package txn

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// Transaction pairs a compiled message with its signatures.
type Transaction struct {
	Signatures [][]byte // 64 bytes each, one per required signer
	Message    *Message
}

// NewSignedTransaction compiles instructions into a message and signs it.
// Signers must cover every required signature, fee payer first.
func NewSignedTransaction(feePayer string, instructions []Instruction, recentBlockhash string, signers ...ed25519.PrivateKey) (*Transaction, error) {
	msg, err := NewMessage(feePayer, instructions, recentBlockhash)
	if err != nil {
		return nil, err
	}

	if len(signers) != int(msg.NumRequiredSignatures) {
		return nil, fmt.Errorf("expected %d signers, got %d", msg.NumRequiredSignatures, len(signers))
	}

	payload, err := msg.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize message: %w", err)
	}

	tx := &Transaction{Message: msg}
	for _, signer := range signers {
		tx.Signatures = append(tx.Signatures, ed25519.Sign(signer, payload))
	}

	return tx, nil
}

// Serialize encodes the signed transaction in Solana wire format.
func (t *Transaction) Serialize() ([]byte, error) {
	payload, err := t.Message.Serialize()
	if err != nil {
		return nil, err
	}

	out := appendCompactU16(nil, uint16(len(t.Signatures)))
	for i, sig := range t.Signatures {
		if len(sig) != ed25519.SignatureSize {
			return nil, fmt.Errorf("signature %d: expected %d bytes, got %d", i, ed25519.SignatureSize, len(sig))
		}
		out = append(out, sig...)
	}
	out = append(out, payload...)

	return out, nil
}

// EncodeBase64 serializes the transaction for sendTransaction with
// base64 encoding.
func (t *Transaction) EncodeBase64() (string, error) {
	raw, err := t.Serialize()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
