package reclaim

import "sort"

// Prioritize orders candidates by reclaimable lamports, highest first.
// The sort is stable so equal-value candidates keep their discovery order,
// which keeps runs deterministic for a fixed enumeration order. The input
// slice is not modified.
func Prioritize(candidates []CloseCandidate) []CloseCandidate {
	ordered := make([]CloseCandidate, len(candidates))
	copy(ordered, candidates)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Lamports > ordered[j].Lamports
	})

	return ordered
}

// SelectBatch truncates the ordered candidate list to at most maxPerRun
// entries. maxPerRun is validated as positive by Policy.Validate before any
// run starts.
func SelectBatch(ordered []CloseCandidate, maxPerRun int) []CloseCandidate {
	if len(ordered) <= maxPerRun {
		return ordered
	}
	return ordered[:maxPerRun]
}
