package kaprekar

import "testing"

func TestWorker_ResetsOnlyWhenHoldingToken(t *testing.T) {
	p := Problem{Base: 10, Digits: 2}
	memo := NewMemo()
	tokens := NewTokenRing(2)

	w0 := NewWorker(0, tokens, memo)
	w1 := NewWorker(1, tokens, memo)

	total, err := MultisetCount(p.Digits, p.Base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The ring starts with worker 0 holding the token; worker 1 does not
	// hold it and should return a nil delta.
	res1, err := w1.RunChunk(Chunk{Problem: p, Start: 0, End: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res1.Delta != nil {
		t.Error("expected worker 1 to return a nil delta while not holding the token")
	}

	// Worker 0 holds the token; its chunk should return a delta and
	// advance the token to worker 1.
	res0, err := w0.RunChunk(Chunk{Problem: p, Start: 0, End: total})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res0.Delta == nil {
		t.Error("expected worker 0 to return a non-nil delta while holding the token")
	}
	if !tokens.Holds(1) {
		t.Error("expected the token to advance to worker 1 after worker 0's chunk")
	}
}

func TestWorker_ProcessesEveryMultisetInRange(t *testing.T) {
	p := Problem{Base: 10, Digits: 2}
	memo := NewMemo()
	tokens := NewTokenRing(1)
	w := NewWorker(0, tokens, memo)

	total, err := MultisetCount(p.Digits, p.Base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := w.RunChunk(Chunk{Problem: p, Start: 0, End: total})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Processed != total {
		t.Errorf("expected %d multisets processed, got %d", total, res.Processed)
	}
}

func TestWorker_RunChunk_ReportsBase10Digits2Cycle(t *testing.T) {
	p := Problem{Base: 10, Digits: 2}
	memo := NewMemo()
	tokens := NewTokenRing(1)
	w := NewWorker(0, tokens, memo)

	total, err := MultisetCount(p.Digits, p.Base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := w.RunChunk(Chunk{Problem: p, Start: 0, End: total})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.FixedPointsSeen) != 0 {
		t.Errorf("expected no non-zero fixed points for base=10 digits=2, got %v", res.FixedPointsSeen)
	}
	space, err := p.Space()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The 10 repdigits 00..99 step straight to the fixed point 0; every
	// other value lands in the cycle.
	if want := space - 10; res.WeightedCycleCount != want {
		t.Errorf("expected every non-repdigit 2-digit base-10 value to land in the {9,81,63,27,45} cycle, got weighted count %d, want %d", res.WeightedCycleCount, want)
	}
}

func TestWorker_RunChunk_TracesFromFirstStepNotFromAscendingValue(t *testing.T) {
	// 21 (digits 1,2) is not itself on the Kaprekar orbit for base 10,
	// digits 2: its first T-step is 21 -> 21-12 = 9, the cycle's canonical
	// member. If the worker incorrectly traced from asc(M) = 12 itself,
	// 12 would appear in the memo as an extra, undocumented path entry.
	p := Problem{Base: 10, Digits: 2}
	memo := NewMemo()
	tokens := NewTokenRing(1)
	w := NewWorker(0, tokens, memo)

	total, err := MultisetCount(p.Digits, p.Base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := w.RunChunk(Chunk{Problem: p, Start: 0, End: total})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	memo.Merge(res.Delta)

	if _, ok := memo.Get(12); ok {
		t.Error("expected asc(M)=12 to never be memoized directly; the trace must start from the first T-step instead")
	}
	if e, ok := memo.Get(9); !ok || e.Kind != Cycle || e.ID != 9 {
		t.Errorf("expected 9 to be memoized as the cycle's canonical member, got %+v, ok=%v", e, ok)
	}
}
