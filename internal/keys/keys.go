// Package keys loads and validates operator signing keys.
package keys

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Keypair is an operator signing identity.
type Keypair struct {
	private ed25519.PrivateKey
}

// LoadFromFile reads a keypair file in the standard Solana CLI format:
// a JSON array of 64 bytes (32-byte seed followed by 32-byte public key).
func LoadFromFile(path string) (*Keypair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair file: %w", err)
	}

	// The CLI format is a JSON array of byte values, not a base64 string.
	var values []int
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse keypair file %s: %w", path, err)
	}
	if len(values) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keypair file %s: expected %d bytes, got %d", path, ed25519.PrivateKeySize, len(values))
	}

	secret := make([]byte, ed25519.PrivateKeySize)
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("keypair file %s: byte %d out of range: %d", path, i, v)
		}
		secret[i] = byte(v)
	}

	kp := &Keypair{private: ed25519.PrivateKey(secret)}

	// Reject corrupt files where the embedded public key does not match
	// the seed-derived one.
	derived := ed25519.NewKeyFromSeed(secret[:32])
	if !kp.private.Equal(derived) {
		return nil, fmt.Errorf("keypair file %s: public key does not match seed", path)
	}

	return kp, nil
}

// FromSeed builds a keypair from a 32-byte seed. Used by tests.
func FromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected %d-byte seed, got %d", ed25519.SeedSize, len(seed))
	}
	return &Keypair{private: ed25519.NewKeyFromSeed(seed)}, nil
}

// Private returns the ed25519 private key for signing.
func (k *Keypair) Private() ed25519.PrivateKey {
	return k.private
}

// PublicKey returns the base58-encoded public key.
func (k *Keypair) PublicKey() string {
	return base58.Encode(k.private.Public().(ed25519.PublicKey))
}

// IsOnCurve reports whether a base58 address is a valid ed25519 point.
// Program derived addresses are off-curve and cannot sign, so an operator
// wallet must be on-curve.
func IsOnCurve(address string) bool {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
