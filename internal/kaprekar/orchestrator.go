package kaprekar

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kaprekar-explorer/pkg/config"
)

// chunkSizeFor implements the adaptive chunk-sizing rule: divide the
// multiset space so each worker sees roughly chunksPerCore chunks, then
// clamp into [min, max] so neither a huge rectangle (chunks too coarse to
// balance) nor a tiny one (chunks smaller than the dispatch overhead is
// worth) produces a bad chunk size.
func chunkSizeFor(total uint64, workers, chunksPerCore int, min, max uint64) uint64 {
	if workers < 1 {
		workers = 1
	}
	if chunksPerCore < 1 {
		chunksPerCore = 1
	}
	size := total / uint64(workers*chunksPerCore)
	if size < min {
		size = min
	}
	if max > 0 && size > max {
		size = max
	}
	if size == 0 {
		size = 1
	}
	return size
}

// buildChunks splits [0, total) into contiguous Chunks of at most size
// multisets each.
func buildChunks(p Problem, total, size uint64) []Chunk {
	if size == 0 {
		size = total
	}
	chunks := make([]Chunk, 0, (total+size-1)/size)
	for start := uint64(0); start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		chunks = append(chunks, Chunk{Problem: p, Start: start, End: end})
	}
	return chunks
}

// writeSampler implements the deterministic 1-in-reduction write-rate
// reduction a direct-write task falls back to once its first sampled
// chunks show an excessive write rate. Keying off the value itself (rather
// than a counter) keeps the decision reproducible across runs and
// independent of goroutine scheduling order.
type writeSampler struct {
	reduction uint64
}

func (s *writeSampler) shouldWrite(key Value) bool {
	if s == nil {
		return true
	}
	return key%s.reduction == 0
}

// PairOutcome is a task's three reportable results, per §4.4's
// "Termination" bullet: the sorted non-zero fixed points seen across every
// chunk, the total weighted cycle count, and the number of distinct
// canonical cycle IDs present in the shared memo after the run settles.
type PairOutcome struct {
	FixedPointValues   []Value
	WeightedCycleCount uint64
	UniqueCycleIDs     int
}

// outcomeAccumulator merges chunk-result tallies (fixed points seen,
// weighted cycle count) across every chunk a task's workers process,
// regardless of which chunks carried a memo delta.
type outcomeAccumulator struct {
	mu                 sync.Mutex
	fixedPoints        map[Value]struct{}
	weightedCycleCount atomic.Uint64
}

func newOutcomeAccumulator() *outcomeAccumulator {
	return &outcomeAccumulator{fixedPoints: make(map[Value]struct{})}
}

func (a *outcomeAccumulator) add(fixedPoints map[Value]struct{}, weightedCycleCount uint64) {
	a.weightedCycleCount.Add(weightedCycleCount)
	if len(fixedPoints) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for id := range fixedPoints {
		a.fixedPoints[id] = struct{}{}
	}
}

func (a *outcomeAccumulator) outcome(uniqueCycleIDs int) PairOutcome {
	values := make([]Value, 0, len(a.fixedPoints))
	a.mu.Lock()
	for id := range a.fixedPoints {
		values = append(values, id)
	}
	a.mu.Unlock()
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return PairOutcome{
		FixedPointValues:   values,
		WeightedCycleCount: a.weightedCycleCount.Load(),
		UniqueCycleIDs:     uniqueCycleIDs,
	}
}

// uniqueCycleIDs scans the shared memo for the number of distinct
// canonical cycle IDs present — §4.4's third termination value, which can
// only be known after the whole shared memo has settled, not summed
// per-chunk.
func uniqueCycleIDs(memo *Memo) int {
	ids := make(map[Value]struct{})
	for _, e := range memo.Values() {
		if e.Kind == Cycle {
			ids[e.ID] = struct{}{}
		}
	}
	return len(ids)
}

// Solve runs the Kaprekar routine over every multiset of p, memoizing
// results into memo, using either the high-mem (token-synced snapshot)
// path or the direct-write (shared-memo, sampled) path per highMem, and
// returns the task's three reportable results.
func Solve(ctx context.Context, p Problem, memo *Memo, cfg config.WorkerConfig, highMem bool) (PairOutcome, error) {
	total, err := MultisetCount(p.Digits, p.Base)
	if err != nil {
		return PairOutcome{}, err
	}
	if total == 0 {
		return PairOutcome{}, nil
	}

	workers := cfg.CPUCores
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if uint64(workers) > total {
		workers = int(total)
	}
	if workers < 1 {
		workers = 1
	}

	size := chunkSizeFor(total, workers, cfg.ChunksPerCore, uint64(cfg.MinChunkSize), uint64(cfg.MaxChunkSize))
	chunks := buildChunks(p, total, size)

	acc := newOutcomeAccumulator()
	if highMem {
		if err := solveHighMem(ctx, chunks, workers, memo, acc); err != nil {
			return PairOutcome{}, err
		}
	} else if err := solveDirect(ctx, chunks, workers, memo, cfg.AllowWriteSampling, acc); err != nil {
		return PairOutcome{}, err
	}

	return acc.outcome(uniqueCycleIDs(memo)), nil
}

// solveHighMem dispatches chunks to a fixed pool of persistent Worker
// goroutines synchronized by a token ring, with an async merger goroutine
// applying each token-holder's delta to the shared memo as soon as it
// arrives rather than waiting for the whole task to finish.
func solveHighMem(ctx context.Context, chunks []Chunk, workers int, memo *Memo, acc *outcomeAccumulator) error {
	if len(chunks) == 0 {
		return nil
	}
	tokens := NewTokenRing(workers)

	chunkCh := make(chan Chunk)
	deltaCh := make(chan map[Value]MemoEntry, workers*2)
	mergeDone := make(chan struct{})

	go func() {
		for delta := range deltaCh {
			memo.Merge(delta)
		}
		close(mergeDone)
	}()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		w := NewWorker(i, tokens, memo)
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case chunk, ok := <-chunkCh:
					if !ok {
						return nil
					}
					res, err := w.RunChunk(chunk)
					if err != nil {
						return err
					}
					acc.add(res.FixedPointsSeen, res.WeightedCycleCount)
					if res.Delta != nil {
						select {
						case deltaCh <- res.Delta:
						case <-gctx.Done():
							return gctx.Err()
						}
					}
				}
			}
		})
	}
	g.Go(func() error {
		defer close(chunkCh)
		for _, c := range chunks {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chunkCh <- c:
			}
		}
		return nil
	})

	err := g.Wait()
	close(deltaCh)
	<-mergeDone
	return err
}

// writeStats counts multisets processed and memo writes made across the
// direct-write path's sampled chunks, so the write rate can be measured
// without a lock.
type writeStats struct {
	processed atomic.Int64
	writes    atomic.Int64
}

func newWriteStats() *writeStats { return &writeStats{} }

func (s *writeStats) rate() float64 {
	p := s.processed.Load()
	if p == 0 {
		return 0
	}
	return float64(s.writes.Load()) / float64(p)
}

// directView is the low-mem path's MemoView: every read and write goes
// straight to the shared, lock-guarded Memo, with writes optionally
// dropped by a write-rate sampler once one has been activated.
type directView struct {
	memo    *Memo
	sampler *writeSampler
	stats   *writeStats
}

func (v directView) Get(key Value) (MemoEntry, bool) {
	return v.memo.Get(key)
}

func (v directView) Set(key Value, entry MemoEntry) {
	v.stats.writes.Add(1)
	if !v.sampler.shouldWrite(key) {
		return
	}
	v.memo.SetDirect(key, entry)
}

// solveDirect dispatches chunks to a plain worker-goroutine pool that
// writes straight into the shared memo. The first few chunks are sampled
// for write rate; if it exceeds the threshold and sampling is allowed, a
// 1-in-10 deterministic reduction is activated for every remaining chunk.
func solveDirect(ctx context.Context, chunks []Chunk, workers int, memo *Memo, allowSampling bool, acc *outcomeAccumulator) error {
	if len(chunks) == 0 {
		return nil
	}

	const (
		sampleChunks   = 3
		sampleRateHigh = 0.2
		reduction      = 10
	)

	stats := newWriteStats()
	var samplerPtr atomic.Pointer[writeSampler]
	var activated atomic.Bool
	chunkCh := make(chan indexedChunk)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case ic, ok := <-chunkCh:
					if !ok {
						return nil
					}
					view := directView{memo: memo, sampler: samplerPtr.Load(), stats: stats}
					it, err := MultisetsRange(ic.chunk.Problem.Digits, ic.chunk.Problem.Base, ic.chunk.Start, ic.chunk.End)
					if err != nil {
						return err
					}
					fixedPoints, weighted, processed, err := traceRange(it, ic.chunk.Problem, view)
					if err != nil {
						return err
					}
					acc.add(fixedPoints, weighted)
					stats.processed.Add(int64(processed))
					if allowSampling && ic.index < sampleChunks && !activated.Load() {
						if stats.rate() > sampleRateHigh && activated.CompareAndSwap(false, true) {
							samplerPtr.Store(&writeSampler{reduction: reduction})
						}
					}
				}
			}
		})
	}
	g.Go(func() error {
		defer close(chunkCh)
		for i, c := range chunks {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chunkCh <- indexedChunk{chunk: c, index: i}:
			}
		}
		return nil
	})

	return g.Wait()
}

type indexedChunk struct {
	chunk Chunk
	index int
}
