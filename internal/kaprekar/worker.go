package kaprekar

// Chunk is one unit of dispatch: a contiguous range of multiset indices for
// a single (base, digits) pair.
type Chunk struct {
	Problem    Problem
	Start, End uint64
}

// ChunkResult is what a worker reports back after processing a Chunk. It is
// the chunk-result tuple the orchestrator aggregates: which non-zero fixed
// points were seen, how much weighted traffic landed in cycles, how many
// multisets were processed, and (only on a sync chunk) the private-memo
// delta to merge.
//
// Delta is non-nil only on the chunk where the worker held the
// synchronization token: that is the sole point at which its private
// writes are handed to the async merger.
type ChunkResult struct {
	Delta              map[Value]MemoEntry
	Processed          uint64
	FixedPointsSeen    map[Value]struct{}
	WeightedCycleCount uint64
}

// Worker is the persistent, single-goroutine state behind one slot in a
// high-mem orchestration pool: a stable worker ID, a read-only snapshot of
// the shared memo refreshed only at token-sync, and a private write-memo
// that accumulates between syncs. It is grounded on the reference
// implementation's process_multiset_chunk, which keeps worker_id,
// worker_snapshot and worker_private_memo as per-process globals across
// however many chunks that worker process is handed.
type Worker struct {
	id       int
	tokens   *TokenRing
	memo     *Memo
	snapshot map[Value]MemoEntry
	private  map[Value]MemoEntry
}

// NewWorker creates a worker with the given ring position, taking its
// initial snapshot and a fresh private memo immediately.
func NewWorker(id int, tokens *TokenRing, memo *Memo) *Worker {
	return &Worker{
		id:       id,
		tokens:   tokens,
		memo:     memo,
		snapshot: memo.Snapshot(),
		private:  GetPrivateMemo(),
	}
}

// RunChunk processes every multiset in chunk. If the worker holds the
// synchronization token at the start of the chunk, it first refreshes its
// snapshot and resets its private memo to empty — this is the only place a
// worker's private state is ever reset — processes the chunk against the
// fresh view, then returns a copy of its (now freshly accumulated) private
// memo as Delta and advances the token. A worker that does not hold the
// token processes against its existing view and returns a nil Delta.
func (w *Worker) RunChunk(chunk Chunk) (ChunkResult, error) {
	hasToken := w.tokens.Holds(w.id)
	if hasToken {
		PutPrivateMemo(w.private)
		w.snapshot = w.memo.Snapshot()
		w.private = GetPrivateMemo()
	}

	view := NewCompositeView(w.snapshot, w.private)
	it, err := MultisetsRange(chunk.Problem.Digits, chunk.Problem.Base, chunk.Start, chunk.End)
	if err != nil {
		return ChunkResult{}, err
	}

	fixedPoints, weighted, processed, err := traceRange(it, chunk.Problem, view)
	if err != nil {
		return ChunkResult{}, err
	}

	if !hasToken {
		return ChunkResult{Processed: processed, FixedPointsSeen: fixedPoints, WeightedCycleCount: weighted}, nil
	}

	delta := make(map[Value]MemoEntry, len(w.private))
	for k, v := range w.private {
		delta[k] = v
	}
	w.tokens.Advance(w.id)
	return ChunkResult{Delta: delta, Processed: processed, FixedPointsSeen: fixedPoints, WeightedCycleCount: weighted}, nil
}

// traceRange runs the tracer over every multiset it yields, against view,
// and tallies the chunk-result fields §4.3 step 4 specifies: per multiset
// M with permutation count p, it traces from the first T-step
// desc(M) − asc(M) (not from asc(M) itself — asc(M) is never part of the
// documented orbit), and classifies the outcome into the fixed-point
// seen-set or the weighted cycle count, weighted by p rather than by 1.
func traceRange(it *MultisetIterator, p Problem, view MemoView) (fixedPoints map[Value]struct{}, weightedCycleCount, processed uint64, err error) {
	fixedPoints = make(map[Value]struct{})
	for {
		m, ok := it.Next()
		if !ok {
			break
		}
		asc := FromDigits(m.Digits, p.Base)
		firstStep, err := Step(asc, p.Digits, p.Base)
		if err != nil {
			return nil, 0, 0, err
		}
		result, err := Trace(firstStep, p, view)
		if err != nil {
			return nil, 0, 0, err
		}
		switch result.Kind {
		case FixedPoint:
			if result.ID != 0 {
				fixedPoints[result.ID] = struct{}{}
			}
		case Cycle:
			weightedCycleCount += m.Count
		}
		processed++
	}
	return fixedPoints, weightedCycleCount, processed, nil
}
