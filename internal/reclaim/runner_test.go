package reclaim

import (
	"bytes"
	"context"
	"testing"
	"time"

	"solana-rent-reclaimer/internal/keys"
	"solana-rent-reclaimer/internal/solana"
	"solana-rent-reclaimer/internal/solana/stub"
)

func testKeypair(t *testing.T) *keys.Keypair {
	t.Helper()
	kp, err := keys.FromSeed(bytes.Repeat([]byte{7}, 32))
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	return kp
}

func TestRunner_RunOnce_DryRun(t *testing.T) {
	operator := testKeypair(t)
	owner := operator.PublicKey()
	mint := testAddr(2)

	rpc := stub.NewRPCClient()
	rpc.TokenAccounts[owner] = []solana.TokenAccountEntry{
		{Pubkey: testAddr(10), Lamports: 2_039_280, Data: tokenAccountData(t, mint, owner, 0, "")},
		{Pubkey: testAddr(11), Lamports: 890_880, Data: tokenAccountData(t, mint, owner, 0, "")},
	}

	runner, err := New(Options{
		Scanner: NewScanner(rpc, testLogger()),
		Policy:  Policy{Owner: owner, MaxClosePerRun: 25, DryRun: true},
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if report.Planned != 2 {
		t.Errorf("expected 2 planned, got %d", report.Planned)
	}
	if report.Closed != 0 {
		t.Errorf("expected 0 closed in dry run, got %d", report.Closed)
	}
	if len(report.Signatures) != 0 {
		t.Errorf("expected no signatures in dry run, got %v", report.Signatures)
	}
	if report.TotalLamports != 2_039_280+890_880 {
		t.Errorf("expected total %d, got %d", 2_039_280+890_880, report.TotalLamports)
	}
	if !report.DryRun {
		t.Error("expected dry-run flag set")
	}
	if len(rpc.SentTransactions) != 0 {
		t.Errorf("dry run must not submit, got %d transactions", len(rpc.SentTransactions))
	}
}

func TestRunner_RunOnce_ClosesHighestValueFirst(t *testing.T) {
	operator := testKeypair(t)
	owner := operator.PublicKey()
	mint := testAddr(2)

	rpc := stub.NewRPCClient()
	rpc.TokenAccounts[owner] = []solana.TokenAccountEntry{
		{Pubkey: testAddr(10), Lamports: 50, Data: tokenAccountData(t, mint, owner, 0, "")},
		{Pubkey: testAddr(11), Lamports: 200, Data: tokenAccountData(t, mint, owner, 0, "")},
		{Pubkey: testAddr(12), Lamports: 10, Data: tokenAccountData(t, mint, owner, 0, "")},
	}

	runner, err := New(Options{
		Scanner: NewScanner(rpc, testLogger()),
		Sender:  NewDirectSender(rpc, operator, nil),
		Policy:  Policy{Owner: owner, MaxClosePerRun: 1},
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if report.Candidates != 3 {
		t.Errorf("expected 3 candidates, got %d", report.Candidates)
	}
	if report.Planned != 1 {
		t.Errorf("expected 1 planned under the cap, got %d", report.Planned)
	}
	if report.Closed != 1 {
		t.Fatalf("expected 1 closed, got %d", report.Closed)
	}
	// The 200-lamport account wins the single slot.
	if report.ReclaimedLamports != 200 {
		t.Errorf("expected 200 lamports reclaimed, got %d", report.ReclaimedLamports)
	}
	if len(report.Signatures) != 1 {
		t.Fatalf("expected 1 signature, got %d", len(report.Signatures))
	}
	if len(rpc.SentTransactions) != 1 {
		t.Errorf("expected 1 submission, got %d", len(rpc.SentTransactions))
	}
	if len(rpc.Confirmed) != 1 {
		t.Errorf("expected 1 confirmation, got %d", len(rpc.Confirmed))
	}
}

func TestRunner_RunOnce_MintAllowSet(t *testing.T) {
	operator := testKeypair(t)
	owner := operator.PublicKey()
	allowed := testAddr(2)
	blocked := testAddr(3)

	rpc := stub.NewRPCClient()
	rpc.TokenAccounts[owner] = []solana.TokenAccountEntry{
		{Pubkey: testAddr(10), Lamports: 100, Data: tokenAccountData(t, allowed, owner, 0, "")},
		{Pubkey: testAddr(11), Lamports: 100, Data: tokenAccountData(t, blocked, owner, 0, "")},
	}

	runner, err := New(Options{
		Scanner: NewScanner(rpc, testLogger()),
		Policy: Policy{
			Owner:          owner,
			MaxClosePerRun: 25,
			AllowMints:     map[string]struct{}{allowed: {}},
			DryRun:         true,
		},
		Logger: testLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if report.Candidates != 1 {
		t.Errorf("expected 1 candidate, got %d", report.Candidates)
	}
	if report.Skips.DisallowedMint != 1 {
		t.Errorf("expected 1 disallowed-mint skip, got %d", report.Skips.DisallowedMint)
	}
}

func TestRunner_RunOnce_SubmissionFailureAbortsBatch(t *testing.T) {
	operator := testKeypair(t)
	owner := operator.PublicKey()
	mint := testAddr(2)

	rpc := stub.NewRPCClient()
	rpc.TokenAccounts[owner] = []solana.TokenAccountEntry{
		{Pubkey: testAddr(10), Lamports: 300, Data: tokenAccountData(t, mint, owner, 0, "")},
		{Pubkey: testAddr(11), Lamports: 200, Data: tokenAccountData(t, mint, owner, 0, "")},
		{Pubkey: testAddr(12), Lamports: 100, Data: tokenAccountData(t, mint, owner, 0, "")},
	}
	rpc.SendErrAt = 2

	var reported *RunReport
	runner, err := New(Options{
		Scanner: NewScanner(rpc, testLogger()),
		Sender:  NewDirectSender(rpc, operator, nil),
		Policy:  Policy{Owner: owner, MaxClosePerRun: 25},
		Logger:  testLogger(),
		OnReport: func(_ context.Context, r *RunReport) {
			reported = r
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := runner.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected error from failed submission")
	}
	if report == nil {
		t.Fatal("expected partial report alongside the error")
	}

	// First close succeeded, second failed, third never attempted.
	if report.Closed != 1 {
		t.Errorf("expected 1 closed, got %d", report.Closed)
	}
	if len(report.Signatures) != 1 {
		t.Errorf("expected 1 signature, got %d", len(report.Signatures))
	}
	if report.ReclaimedLamports != 300 {
		t.Errorf("expected 300 lamports reclaimed, got %d", report.ReclaimedLamports)
	}
	if len(rpc.SentTransactions) != 1 {
		t.Errorf("expected 1 successful submission, got %d", len(rpc.SentTransactions))
	}
	if reported == nil {
		t.Error("expected the partial report delivered to the report hook")
	}
}

func TestRunner_New_Validation(t *testing.T) {
	scanner := NewScanner(stub.NewRPCClient(), testLogger())

	tests := []struct {
		name string
		opts Options
	}{
		{"missing scanner", Options{Policy: Policy{Owner: "o", MaxClosePerRun: 1, DryRun: true}}},
		{"missing sender without dry-run", Options{Scanner: scanner, Policy: Policy{Owner: "o", MaxClosePerRun: 1}}},
		{"invalid policy", Options{Scanner: scanner, Policy: Policy{MaxClosePerRun: 1, DryRun: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunner_RunLoop(t *testing.T) {
	operator := testKeypair(t)
	owner := operator.PublicKey()

	rpc := stub.NewRPCClient()

	ctx, cancel := context.WithCancel(context.Background())
	runs := 0

	runner, err := New(Options{
		Scanner: NewScanner(rpc, testLogger()),
		Policy:  Policy{Owner: owner, MaxClosePerRun: 25, DryRun: true},
		Logger:  testLogger(),
		OnReport: func(context.Context, *RunReport) {
			runs++
			cancel()
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := runner.RunLoop(ctx, time.Hour); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if runs != 1 {
		t.Errorf("expected exactly 1 run before cancellation, got %d", runs)
	}
}

func TestRunner_RunLoop_RejectsBadInterval(t *testing.T) {
	runner, err := New(Options{
		Scanner: NewScanner(stub.NewRPCClient(), testLogger()),
		Policy:  Policy{Owner: "owner", MaxClosePerRun: 1, DryRun: true},
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := runner.RunLoop(context.Background(), 0); err == nil {
		t.Error("expected error for zero interval")
	}
}
