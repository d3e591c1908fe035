package kaprekar

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/kaprekar-explorer/pkg/config"
	"github.com/kaprekar-explorer/pkg/parallel"
	"github.com/kaprekar-explorer/pkg/utils"
)

// Rectangle enumerates every (base, digits) pair in a grid, base-major then
// digits-minor, the order output is always emitted in regardless of which
// pair actually finishes computing first.
func Rectangle(cfg config.ExploreConfig) []Problem {
	problems := make([]Problem, 0, (cfg.MaxBase-cfg.MinBase+1)*(cfg.MaxDigits-cfg.MinDigits+1))
	for base := cfg.MinBase; base <= cfg.MaxBase; base++ {
		for digits := cfg.MinDigits; digits <= cfg.MaxDigits; digits++ {
			problems = append(problems, Problem{Base: base, Digits: digits})
		}
	}
	return problems
}

// pairResult is one finished pair's outcome, on its way to the ordered
// writer.
type pairResult struct {
	problem Problem
	outcome PairOutcome
}

// Driver walks a rectangle of (base, digits) pairs, splitting simple pairs
// (run many at once, one core apiece) from complex pairs (run one at a
// time, using the full orchestrated worker pool), and emits every pair's
// result in rectangle order regardless of the order pairs actually finish
// in.
type Driver struct {
	cfg    *config.Config
	logger utils.Logger
}

// NewDriver builds a Driver over cfg, logging through logger.
func NewDriver(cfg *config.Config, logger utils.Logger) *Driver {
	return &Driver{cfg: cfg, logger: logger}
}

// Run walks the configured rectangle to completion, writing CSV output as
// pairs finish. It returns the first error from any pair or from output.
func (d *Driver) Run(ctx context.Context) error {
	problems := Rectangle(d.cfg.Explore)
	if len(problems) == 0 {
		return nil
	}

	tracer := otel.Tracer("kaprekar-explorer")
	ctx, span := tracer.Start(ctx, "explore.rectangle")
	defer span.End()

	if err := d.cfg.EnsureDataDir(); err != nil {
		return err
	}
	rw, err := NewResultWriter(d.cfg.Explore, d.cfg.OutputPath)
	if err != nil {
		return err
	}
	defer rw.Close()

	order := make(map[Problem]int, len(problems))
	for i, p := range problems {
		order[p] = i
	}

	var simple, complex []Problem
	for _, p := range problems {
		if p.Complex() {
			complex = append(complex, p)
		} else {
			simple = append(simple, p)
		}
	}
	d.logger.Info("rectangle: %d pairs (%d simple, %d complex, digit-threshold=%d advisory)",
		len(problems), len(simple), len(complex), d.cfg.Explore.DigitThreshold)

	flusher := newOrderedFlusher(problems, order, rw)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.runSimple(gctx, simple, flusher) })
	g.Go(func() error { return d.runComplex(gctx, complex, flusher) })

	if err := g.Wait(); err != nil {
		return err
	}
	return flusher.err()
}

// runSimple processes every simple pair concurrently through a generic
// worker pool, one full (base, digits) space per task, since a simple pair
// is small enough that a single core finishes it quickly.
func (d *Driver) runSimple(ctx context.Context, problems []Problem, flusher *orderedFlusher) error {
	if len(problems) == 0 {
		return nil
	}
	pool := parallel.NewWorkerPool[Problem, pairResult](parallel.DefaultPoolConfig())
	results := pool.ExecuteFunc(ctx, problems, func(ctx context.Context, p Problem) (pairResult, error) {
		_, span := otel.Tracer("kaprekar-explorer").Start(ctx, "explore.pair.simple")
		defer span.End()

		total, err := MultisetCount(p.Digits, p.Base)
		if err != nil {
			return pairResult{}, err
		}
		memo := NewMemo()
		serialCfg := config.WorkerConfig{CPUCores: 1, ChunksPerCore: 1, MinChunkSize: int(total), MaxChunkSize: int(total)}
		outcome, err := Solve(ctx, p, memo, serialCfg, false)
		if err != nil {
			return pairResult{}, err
		}
		return pairResult{problem: p, outcome: outcome}, nil
	})

	for _, r := range results {
		if r.Error != nil {
			return r.Error
		}
		flusher.submit(r.Result)
	}
	return nil
}

// runComplex processes complex pairs one at a time, giving each the full
// configured worker pool, so no two complex pairs contend for the same
// cores at once.
func (d *Driver) runComplex(ctx context.Context, problems []Problem, flusher *orderedFlusher) error {
	for _, p := range problems {
		pctx, span := otel.Tracer("kaprekar-explorer").Start(ctx, "explore.pair.complex")
		total, err := MultisetCount(p.Digits, p.Base)
		if err != nil {
			span.End()
			return err
		}
		memo := NewMemo()
		outcome, err := Solve(pctx, p, memo, d.cfg.Worker, d.cfg.Explore.HighMem)
		if err != nil {
			span.End()
			return err
		}
		span.End()
		d.logger.Info("finished base=%d digits=%d (%d multisets)", p.Base, p.Digits, total)
		flusher.submit(pairResult{problem: p, outcome: outcome})
	}
	return nil
}

// orderedFlusher buffers finished pairs and writes them through rw in
// rectangle order as soon as the next-expected pair becomes available,
// regardless of which order the simple and complex producers actually
// finish in.
type orderedFlusher struct {
	mu       sync.Mutex
	order    map[Problem]int
	pending  map[int]pairResult
	nextIdx  int
	total    int
	rw       *ResultWriter
	firstErr error
}

func newOrderedFlusher(problems []Problem, order map[Problem]int, rw *ResultWriter) *orderedFlusher {
	return &orderedFlusher{order: order, pending: make(map[int]pairResult), total: len(problems), rw: rw}
}

func (f *orderedFlusher) submit(r pairResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.firstErr != nil {
		return
	}
	idx := f.order[r.problem]
	f.pending[idx] = r
	for {
		next, ok := f.pending[f.nextIdx]
		if !ok {
			return
		}
		delete(f.pending, f.nextIdx)
		if err := f.rw.WriteResult(next.problem, next.outcome); err != nil {
			f.firstErr = err
			return
		}
		f.nextIdx++
	}
}

func (f *orderedFlusher) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.firstErr
}
