package reclaim

import "testing"

func TestPrioritize(t *testing.T) {
	candidates := []CloseCandidate{
		{Account: "a", Lamports: 10},
		{Account: "b", Lamports: 200},
		{Account: "c", Lamports: 50},
		{Account: "d", Lamports: 200},
	}

	ordered := Prioritize(candidates)

	want := []string{"b", "d", "c", "a"}
	for i, account := range want {
		if ordered[i].Account != account {
			t.Errorf("position %d: expected %s, got %s", i, account, ordered[i].Account)
		}
	}

	// Equal-value candidates keep discovery order (b before d).
	if ordered[0].Account != "b" || ordered[1].Account != "d" {
		t.Error("expected stable order for equal lamports")
	}

	// The input slice is untouched.
	if candidates[0].Account != "a" {
		t.Error("Prioritize must not modify its input")
	}
}

func TestSelectBatch(t *testing.T) {
	ordered := []CloseCandidate{
		{Account: "a"}, {Account: "b"}, {Account: "c"},
	}

	if got := SelectBatch(ordered, 2); len(got) != 2 || got[0].Account != "a" {
		t.Errorf("expected first 2 candidates, got %v", got)
	}
	if got := SelectBatch(ordered, 3); len(got) != 3 {
		t.Errorf("expected all 3 candidates, got %d", len(got))
	}
	if got := SelectBatch(ordered, 10); len(got) != 3 {
		t.Errorf("expected all 3 candidates under a large cap, got %d", len(got))
	}
	if got := SelectBatch(nil, 5); len(got) != 0 {
		t.Errorf("expected empty batch, got %d", len(got))
	}
}
