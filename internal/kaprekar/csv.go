package kaprekar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kaprekar-explorer/pkg/config"
	"github.com/kaprekar-explorer/pkg/writer"
)

// SummaryRow is one (base, digits) pair's aggregate outcome: num_cycles is
// the weighted count of starting values landing in cycles, fixed_points is
// the count of distinct non-zero fixed points.
type SummaryRow struct {
	Problem    Problem
	NumCycles  uint64
	FixedPoint int
}

// FixedPointRow is one pair's non-zero fixed-point values, comma-joined in
// ascending order. A pair with no non-zero fixed points emits no row.
type FixedPointRow struct {
	Problem Problem
	Values  []Value
}

// CycleRow is one pair's count of distinct canonical cycle IDs present in
// the shared memo.
type CycleRow struct {
	Problem        Problem
	UniqueCycleIDs int
}

// Tally turns a task's PairOutcome into the three output rows. fpRow is nil
// when the pair has no non-zero fixed points, per §6's "rows appear only
// when the list is non-empty".
func Tally(p Problem, outcome PairOutcome) (SummaryRow, *FixedPointRow, CycleRow) {
	summary := SummaryRow{
		Problem:    p,
		NumCycles:  outcome.WeightedCycleCount,
		FixedPoint: len(outcome.FixedPointValues),
	}
	cycles := CycleRow{Problem: p, UniqueCycleIDs: outcome.UniqueCycleIDs}

	var fpRow *FixedPointRow
	if len(outcome.FixedPointValues) > 0 {
		fpRow = &FixedPointRow{Problem: p, Values: outcome.FixedPointValues}
	}
	return summary, fpRow, cycles
}

// joinValues renders a sorted value list as the comma-separated string §6
// specifies for fixed_point_values.
func joinValues(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(parts, ",")
}

// ResultWriter owns the three CSV outputs of an exploration run and
// guarantees every pair's rows are flushed before the next pair starts, so
// a run interrupted mid-rectangle leaves complete, readable output behind.
type ResultWriter struct {
	summary *writer.CSVWriter[SummaryRow]
	fp      *writer.CSVWriter[FixedPointRow]
	cycles  *writer.CSVWriter[CycleRow]
}

// NewResultWriter creates the three CSV files under <data-dir>/csv/, named
// per §6 from the rectangle's base and digit bounds.
func NewResultWriter(explore config.ExploreConfig, outputPath func(string) string) (*ResultWriter, error) {
	suffix := fmt.Sprintf("base%d-%d_digits%d-%d", explore.MinBase, explore.MaxBase, explore.MinDigits, explore.MaxDigits)

	summary, err := writer.NewCSVWriter(outputPath(fmt.Sprintf("kaprekar_summary_%s.csv", suffix)),
		[]string{"base", "digits", "num_cycles", "fixed_points"},
		func(r SummaryRow) []string {
			return []string{
				fmt.Sprint(r.Problem.Base), fmt.Sprint(r.Problem.Digits),
				fmt.Sprint(r.NumCycles), fmt.Sprint(r.FixedPoint),
			}
		})
	if err != nil {
		return nil, err
	}

	fp, err := writer.NewCSVWriter(outputPath(fmt.Sprintf("kaprekar_fp_%s.csv", suffix)),
		[]string{"base", "digits", "fixed_point_values"},
		func(r FixedPointRow) []string {
			return []string{
				fmt.Sprint(r.Problem.Base), fmt.Sprint(r.Problem.Digits),
				joinValues(r.Values),
			}
		})
	if err != nil {
		summary.Close()
		return nil, err
	}

	cycles, err := writer.NewCSVWriter(outputPath(fmt.Sprintf("kaprekar_cycles_%s.csv", suffix)),
		[]string{"base", "digits", "unique_cycle_ids"},
		func(r CycleRow) []string {
			return []string{
				fmt.Sprint(r.Problem.Base), fmt.Sprint(r.Problem.Digits),
				fmt.Sprint(r.UniqueCycleIDs),
			}
		})
	if err != nil {
		summary.Close()
		fp.Close()
		return nil, err
	}

	return &ResultWriter{summary: summary, fp: fp, cycles: cycles}, nil
}

// WriteResult tallies a pair's outcome and appends its rows to all three
// outputs, flushing before returning.
func (rw *ResultWriter) WriteResult(p Problem, outcome PairOutcome) error {
	summary, fpRow, cycleRow := Tally(p, outcome)

	if err := rw.summary.WriteRow(summary); err != nil {
		return err
	}
	if fpRow != nil {
		if err := rw.fp.WriteRow(*fpRow); err != nil {
			return err
		}
	}
	if err := rw.cycles.WriteRow(cycleRow); err != nil {
		return err
	}

	if err := rw.summary.Flush(); err != nil {
		return err
	}
	if err := rw.fp.Flush(); err != nil {
		return err
	}
	return rw.cycles.Flush()
}

// Close closes all three outputs, returning the first error encountered.
func (rw *ResultWriter) Close() error {
	var firstErr error
	if err := rw.summary.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := rw.fp.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := rw.cycles.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
