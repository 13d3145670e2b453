// Package token decodes SPL token account state and builds token program
// instructions.
package token

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
)

// ProgramID is the SPL Token program address.
const ProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// AccountLen is the serialized size of an SPL token account.
const AccountLen = 165

// Account state values.
const (
	StateUninitialized = 0
	StateInitialized   = 1
	StateFrozen        = 2
)

// Account is a decoded SPL token account.
//
// Layout: mint(32) | owner(32) | amount(8) | delegate COption(4+32) |
// state(1) | isNative COption(4+8) | delegatedAmount(8) |
// closeAuthority COption(4+32)
type Account struct {
	Mint           string
	Owner          string
	Amount         uint64
	Delegate       string // empty when unset
	State          uint8
	IsNative       bool
	NativeAmount   uint64
	DelegatedAmout uint64
	CloseAuthority string // empty when unset; the owner may close by default
}

// DecodeAccount parses base64-encoded SPL token account data.
func DecodeAccount(data string) (*Account, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode token account data: %w", err)
	}
	return DecodeAccountBytes(raw)
}

// DecodeAccountBytes parses raw SPL token account data.
func DecodeAccountBytes(raw []byte) (*Account, error) {
	if len(raw) < AccountLen {
		return nil, fmt.Errorf("token account data too short: %d", len(raw))
	}

	acc := &Account{
		Mint:   base58.Encode(raw[0:32]),
		Owner:  base58.Encode(raw[32:64]),
		Amount: binary.LittleEndian.Uint64(raw[64:72]),
		State:  raw[108],
	}

	if binary.LittleEndian.Uint32(raw[72:76]) == 1 {
		acc.Delegate = base58.Encode(raw[76:108])
	}

	if binary.LittleEndian.Uint32(raw[109:113]) == 1 {
		acc.IsNative = true
		acc.NativeAmount = binary.LittleEndian.Uint64(raw[113:121])
	}

	acc.DelegatedAmout = binary.LittleEndian.Uint64(raw[121:129])

	if binary.LittleEndian.Uint32(raw[129:133]) == 1 {
		acc.CloseAuthority = base58.Encode(raw[133:165])
	}

	if acc.State == StateUninitialized {
		return nil, fmt.Errorf("token account not initialized")
	}

	return acc, nil
}
