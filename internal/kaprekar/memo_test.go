package kaprekar

import "testing"

func TestMemo_SnapshotMerge(t *testing.T) {
	memo := NewMemo()
	memo.Merge(map[Value]MemoEntry{1: {Kind: FixedPoint, ID: 1}})

	snap := memo.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 entry in snapshot, got %d", len(snap))
	}

	memo.Merge(map[Value]MemoEntry{2: {Kind: Cycle, ID: 9}})
	if memo.Len() != 2 {
		t.Errorf("expected 2 entries after second merge, got %d", memo.Len())
	}

	// snap must be unaffected by the later merge.
	if len(snap) != 1 {
		t.Errorf("snapshot mutated after merge, len=%d", len(snap))
	}
}

func TestPreferEntry_CyclePrefersSmallerID(t *testing.T) {
	existing := MemoEntry{Kind: Cycle, ID: 27}
	incoming := MemoEntry{Kind: Cycle, ID: 9}
	if got := preferEntry(existing, incoming); got.ID != 9 {
		t.Errorf("expected smaller cycle ID 9 to win, got %d", got.ID)
	}

	incoming2 := MemoEntry{Kind: Cycle, ID: 45}
	if got := preferEntry(existing, incoming2); got.ID != 27 {
		t.Errorf("expected existing smaller cycle ID 27 to survive, got %d", got.ID)
	}
}

func TestPreferEntry_FixedPointAlwaysWinsIncoming(t *testing.T) {
	existing := MemoEntry{Kind: Cycle, ID: 9}
	incoming := MemoEntry{Kind: FixedPoint, ID: 6174}
	got := preferEntry(existing, incoming)
	if got != incoming {
		t.Errorf("expected incoming fixed point to win, got %+v", got)
	}
}

func TestMemo_GetSetDirect(t *testing.T) {
	memo := NewMemo()
	memo.SetDirect(9, MemoEntry{Kind: Cycle, ID: 27})

	entry, ok := memo.Get(9)
	if !ok {
		t.Fatal("expected entry present after SetDirect")
	}
	if entry.ID != 27 {
		t.Errorf("expected ID 27, got %d", entry.ID)
	}

	// A smaller incoming cycle ID should win under the shared collision policy.
	memo.SetDirect(9, MemoEntry{Kind: Cycle, ID: 9})
	entry, _ = memo.Get(9)
	if entry.ID != 9 {
		t.Errorf("expected tightened ID 9, got %d", entry.ID)
	}
}

func TestCompositeView_PrivateFirstReadOnlySnapshotFallback(t *testing.T) {
	snapshot := map[Value]MemoEntry{1: {Kind: FixedPoint, ID: 1}}
	private := map[Value]MemoEntry{2: {Kind: Cycle, ID: 9}}
	view := NewCompositeView(snapshot, private)

	if _, ok := view.Get(1); !ok {
		t.Error("expected snapshot fallback to find key 1")
	}
	if e, ok := view.Get(2); !ok || e.ID != 9 {
		t.Error("expected private memo to find key 2")
	}

	view.Set(1, MemoEntry{Kind: Cycle, ID: 42})
	if snapshot[1].Kind != FixedPoint {
		t.Error("Set must never mutate the read-only snapshot")
	}
	if e, ok := private[1]; !ok || e.ID != 42 {
		t.Error("Set must write to the private memo")
	}
}

func TestMemoView_BothImplementationsSatisfyInterface(t *testing.T) {
	var _ MemoView = CompositeView{}
	var _ MemoView = directView{}
}
