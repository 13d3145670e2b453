// Package txn builds, signs and serializes legacy Solana transactions.
package txn

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// AccountMeta describes how an instruction uses an account.
type AccountMeta struct {
	Pubkey     string
	IsSigner   bool
	IsWritable bool
}

// Instruction is a single program invocation.
type Instruction struct {
	ProgramID string
	Accounts  []AccountMeta
	Data      []byte
}

// Message is a compiled legacy transaction message.
type Message struct {
	// Header counts, wire order.
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8

	// AccountKeys holds base58 addresses: writable signers first, then
	// readonly signers, writable non-signers, readonly non-signers.
	AccountKeys     []string
	RecentBlockhash string
	Instructions    []CompiledInstruction
}

// CompiledInstruction references accounts by index into Message.AccountKeys.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	AccountIndexes []uint8
	Data           []byte
}

// NewMessage compiles instructions into a message. The fee payer is placed
// first and always treated as a writable signer.
func NewMessage(feePayer string, instructions []Instruction, recentBlockhash string) (*Message, error) {
	if feePayer == "" {
		return nil, fmt.Errorf("fee payer required")
	}
	if recentBlockhash == "" {
		return nil, fmt.Errorf("recent blockhash required")
	}

	type accountFlags struct {
		signer   bool
		writable bool
	}

	flags := map[string]*accountFlags{
		feePayer: {signer: true, writable: true},
	}
	// Preserve first-seen order for accounts of equal class.
	order := []string{feePayer}

	touch := func(pubkey string, signer, writable bool) {
		f, ok := flags[pubkey]
		if !ok {
			f = &accountFlags{}
			flags[pubkey] = f
			order = append(order, pubkey)
		}
		f.signer = f.signer || signer
		f.writable = f.writable || writable
	}

	for _, ix := range instructions {
		for _, meta := range ix.Accounts {
			touch(meta.Pubkey, meta.IsSigner, meta.IsWritable)
		}
		touch(ix.ProgramID, false, false)
	}

	// Wire order: writable signers, readonly signers, writable non-signers,
	// readonly non-signers. The fee payer stays first by construction.
	classify := func(f *accountFlags) int {
		switch {
		case f.signer && f.writable:
			return 0
		case f.signer:
			return 1
		case f.writable:
			return 2
		default:
			return 3
		}
	}

	var keys []string
	for class := 0; class < 4; class++ {
		for _, pubkey := range order {
			if classify(flags[pubkey]) == class {
				keys = append(keys, pubkey)
			}
		}
	}

	index := make(map[string]uint8, len(keys))
	msg := &Message{
		AccountKeys:     keys,
		RecentBlockhash: recentBlockhash,
	}
	for i, pubkey := range keys {
		if i > 255 {
			return nil, fmt.Errorf("too many accounts: %d", len(keys))
		}
		index[pubkey] = uint8(i)

		f := flags[pubkey]
		if f.signer {
			msg.NumRequiredSignatures++
			if !f.writable {
				msg.NumReadonlySignedAccounts++
			}
		} else if !f.writable {
			msg.NumReadonlyUnsignedAccounts++
		}
	}

	for _, ix := range instructions {
		compiled := CompiledInstruction{
			ProgramIDIndex: index[ix.ProgramID],
			Data:           ix.Data,
		}
		for _, meta := range ix.Accounts {
			compiled.AccountIndexes = append(compiled.AccountIndexes, index[meta.Pubkey])
		}
		msg.Instructions = append(msg.Instructions, compiled)
	}

	return msg, nil
}

// Serialize encodes the message in Solana wire format.
func (m *Message) Serialize() ([]byte, error) {
	out := []byte{
		m.NumRequiredSignatures,
		m.NumReadonlySignedAccounts,
		m.NumReadonlyUnsignedAccounts,
	}

	out = appendCompactU16(out, uint16(len(m.AccountKeys)))
	for _, key := range m.AccountKeys {
		raw, err := base58.Decode(key)
		if err != nil {
			return nil, fmt.Errorf("decode account key %s: %w", key, err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("account key %s: expected 32 bytes, got %d", key, len(raw))
		}
		out = append(out, raw...)
	}

	blockhash, err := base58.Decode(m.RecentBlockhash)
	if err != nil {
		return nil, fmt.Errorf("decode blockhash: %w", err)
	}
	if len(blockhash) != 32 {
		return nil, fmt.Errorf("blockhash: expected 32 bytes, got %d", len(blockhash))
	}
	out = append(out, blockhash...)

	out = appendCompactU16(out, uint16(len(m.Instructions)))
	for _, ix := range m.Instructions {
		out = append(out, ix.ProgramIDIndex)
		out = appendCompactU16(out, uint16(len(ix.AccountIndexes)))
		out = append(out, ix.AccountIndexes...)
		out = appendCompactU16(out, uint16(len(ix.Data)))
		out = append(out, ix.Data...)
	}

	return out, nil
}

// appendCompactU16 appends a compact-u16 (shortvec) length prefix.
func appendCompactU16(out []byte, v uint16) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
