package kaprekar

// TraceResult is the outcome of tracing a single starting value through the
// Kaprekar routine.
type TraceResult struct {
	Kind  Kind
	ID    Value
	Path  []Value
}

// Trace follows the Kaprekar routine from start until it reaches a memo
// hit, a fixed point, or a previously-seen value in its own path (a
// cycle), memoizing every value visited along the way into view.
//
// This is a direct port of the reference implementation's analyze_number:
// on a cycle-kind memo hit it tightens the cached canonical ID against the
// minimum of the current path before returning, and rewrites every path
// entry in the memo to the tightened ID (the entry that was hit keeps its
// own ID).
func Trace(start Value, p Problem, view MemoView) (TraceResult, error) {
	current := start
	seen := make(map[Value]int, 8) // value -> index in path
	path := make([]Value, 0, 8)

	for {
		if entry, ok := view.Get(current); ok {
			if entry.Kind == Cycle && len(path) > 0 {
				id := entry.ID
				if m := minValue(path); m < id {
					id = m
				}
				tightened := MemoEntry{Kind: Cycle, ID: id}
				for _, v := range path {
					view.Set(v, tightened)
				}
				return TraceResult{Kind: Cycle, ID: id, Path: path}, nil
			}
			return TraceResult{Kind: entry.Kind, ID: entry.ID, Path: path}, nil
		}

		diff, err := Step(current, p.Digits, p.Base)
		if err != nil {
			return TraceResult{}, err
		}

		if diff == current {
			view.Set(start, MemoEntry{Kind: FixedPoint, ID: current})
			for _, v := range path {
				view.Set(v, MemoEntry{Kind: FixedPoint, ID: current})
			}
			return TraceResult{Kind: FixedPoint, ID: current, Path: path}, nil
		}

		if startIdx, ok := seen[diff]; ok {
			cycleID := diff
			if current < cycleID {
				cycleID = current
			}
			for _, v := range path[startIdx:] {
				if v < cycleID {
					cycleID = v
				}
			}
			view.Set(start, MemoEntry{Kind: Cycle, ID: cycleID})
			for _, v := range path {
				view.Set(v, MemoEntry{Kind: Cycle, ID: cycleID})
			}
			return TraceResult{Kind: Cycle, ID: cycleID, Path: path}, nil
		}

		seen[current] = len(path)
		path = append(path, current)
		current = diff
	}
}

func minValue(values []Value) Value {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
