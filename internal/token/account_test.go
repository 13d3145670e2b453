package token

import (
	"encoding/base64"
	"encoding/binary"
	"testing"

	"github.com/mr-tron/base58"
)

func buildAccountData(mint, owner []byte, amount uint64, state byte) []byte {
	raw := make([]byte, AccountLen)
	copy(raw[0:32], mint)
	copy(raw[32:64], owner)
	binary.LittleEndian.PutUint64(raw[64:72], amount)
	raw[108] = state
	return raw
}

func fill(b byte) []byte {
	out := make([]byte, 32)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestDecodeAccountBytes(t *testing.T) {
	mint := fill(1)
	owner := fill(2)

	raw := buildAccountData(mint, owner, 42, StateInitialized)
	acc, err := DecodeAccountBytes(raw)
	if err != nil {
		t.Fatalf("DecodeAccountBytes: %v", err)
	}

	if acc.Mint != base58.Encode(mint) {
		t.Errorf("expected mint %s, got %s", base58.Encode(mint), acc.Mint)
	}
	if acc.Owner != base58.Encode(owner) {
		t.Errorf("expected owner %s, got %s", base58.Encode(owner), acc.Owner)
	}
	if acc.Amount != 42 {
		t.Errorf("expected amount 42, got %d", acc.Amount)
	}
	if acc.State != StateInitialized {
		t.Errorf("expected initialized state, got %d", acc.State)
	}
	if acc.Delegate != "" {
		t.Errorf("expected no delegate, got %s", acc.Delegate)
	}
	if acc.CloseAuthority != "" {
		t.Errorf("expected no close authority, got %s", acc.CloseAuthority)
	}
	if acc.IsNative {
		t.Error("expected non-native account")
	}
}

func TestDecodeAccountBytes_OptionalFields(t *testing.T) {
	delegate := fill(3)
	closeAuth := fill(4)

	raw := buildAccountData(fill(1), fill(2), 0, StateFrozen)

	binary.LittleEndian.PutUint32(raw[72:76], 1)
	copy(raw[76:108], delegate)

	binary.LittleEndian.PutUint32(raw[109:113], 1)
	binary.LittleEndian.PutUint64(raw[113:121], 5_000_000)

	binary.LittleEndian.PutUint64(raw[121:129], 17)

	binary.LittleEndian.PutUint32(raw[129:133], 1)
	copy(raw[133:165], closeAuth)

	acc, err := DecodeAccountBytes(raw)
	if err != nil {
		t.Fatalf("DecodeAccountBytes: %v", err)
	}

	if acc.Delegate != base58.Encode(delegate) {
		t.Errorf("expected delegate %s, got %s", base58.Encode(delegate), acc.Delegate)
	}
	if !acc.IsNative || acc.NativeAmount != 5_000_000 {
		t.Errorf("expected native amount 5000000, got native=%v amount=%d", acc.IsNative, acc.NativeAmount)
	}
	if acc.DelegatedAmout != 17 {
		t.Errorf("expected delegated amount 17, got %d", acc.DelegatedAmout)
	}
	if acc.CloseAuthority != base58.Encode(closeAuth) {
		t.Errorf("expected close authority %s, got %s", base58.Encode(closeAuth), acc.CloseAuthority)
	}
	if acc.State != StateFrozen {
		t.Errorf("expected frozen state, got %d", acc.State)
	}
}

func TestDecodeAccountBytes_Errors(t *testing.T) {
	if _, err := DecodeAccountBytes(make([]byte, AccountLen-1)); err == nil {
		t.Error("expected error for short data")
	}

	raw := buildAccountData(fill(1), fill(2), 0, StateUninitialized)
	if _, err := DecodeAccountBytes(raw); err == nil {
		t.Error("expected error for uninitialized account")
	}
}

func TestDecodeAccount(t *testing.T) {
	raw := buildAccountData(fill(1), fill(2), 7, StateInitialized)

	acc, err := DecodeAccount(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("DecodeAccount: %v", err)
	}
	if acc.Amount != 7 {
		t.Errorf("expected amount 7, got %d", acc.Amount)
	}

	if _, err := DecodeAccount("not base64!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestNewCloseAccountInstruction(t *testing.T) {
	account := base58.Encode(fill(1))
	destination := base58.Encode(fill(2))
	authority := base58.Encode(fill(3))

	ix := NewCloseAccountInstruction(account, destination, authority)

	if ix.ProgramID != ProgramID {
		t.Errorf("expected token program, got %s", ix.ProgramID)
	}
	if len(ix.Data) != 1 || ix.Data[0] != 9 {
		t.Errorf("expected data [9], got %v", ix.Data)
	}
	if len(ix.Accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(ix.Accounts))
	}

	if !ix.Accounts[0].IsWritable || ix.Accounts[0].IsSigner {
		t.Error("closed account must be writable and not a signer")
	}
	if !ix.Accounts[1].IsWritable || ix.Accounts[1].IsSigner {
		t.Error("destination must be writable and not a signer")
	}
	if !ix.Accounts[2].IsSigner || ix.Accounts[2].IsWritable {
		t.Error("authority must sign and stay readonly")
	}
}
