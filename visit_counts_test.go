package ink

import "testing"

func Test_VisitCounts_IncrementAndRead(t *testing.T) {
	vc := NewVisitCounts()
	p := Path{Components: []Component{NamedComponent("knot")}}
	if vc.VisitCount(p) != 0 {
		t.Fatalf("VisitCount() for an unvisited path should be 0")
	}
	vc.IncrementVisitCount(p)
	vc.IncrementVisitCount(p)
	if vc.VisitCount(p) != 2 {
		t.Fatalf("VisitCount() = %d, want 2", vc.VisitCount(p))
	}
}

func Test_VisitCounts_TurnIndexSince_NeverVisited(t *testing.T) {
	vc := NewVisitCounts()
	p := Path{Components: []Component{NamedComponent("knot")}}
	if got := vc.TurnIndexSince(p); got != -1 {
		t.Fatalf("TurnIndexSince() for an unvisited path = %d, want -1", got)
	}
}

func Test_VisitCounts_TurnIndexSince_TracksElapsedTurns(t *testing.T) {
	vc := NewVisitCounts()
	p := Path{Components: []Component{NamedComponent("knot")}}

	vc.RecordTurnIndex(p) // visited on turn 0
	vc.NextTurn()
	vc.NextTurn()
	vc.NextTurn()

	if got := vc.TurnIndexSince(p); got != 3 {
		t.Fatalf("TurnIndexSince() = %d, want 3", got)
	}
}

func Test_VisitCounts_PatchOverlay(t *testing.T) {
	vc := NewVisitCounts()
	p := Path{Components: []Component{NamedComponent("knot")}}
	vc.IncrementVisitCount(p)

	vc.StartPatch()
	vc.IncrementVisitCount(p)
	if vc.VisitCount(p) != 2 {
		t.Fatalf("VisitCount() while patched = %d, want 2", vc.VisitCount(p))
	}
	vc.DiscardPatch()
	if vc.VisitCount(p) != 1 {
		t.Fatalf("VisitCount() after DiscardPatch() = %d, want 1", vc.VisitCount(p))
	}

	vc.StartPatch()
	vc.IncrementVisitCount(p)
	vc.ApplyPatch()
	if vc.VisitCount(p) != 2 {
		t.Fatalf("VisitCount() after ApplyPatch() = %d, want 2", vc.VisitCount(p))
	}
}

func Test_VisitCounts_Reset(t *testing.T) {
	vc := NewVisitCounts()
	p := Path{Components: []Component{NamedComponent("knot")}}
	vc.IncrementVisitCount(p)
	vc.NextTurn()

	vc.Reset()
	if vc.VisitCount(p) != 0 {
		t.Fatalf("VisitCount() after Reset() = %d, want 0", vc.VisitCount(p))
	}
	if vc.CurrentTurn() != 0 {
		t.Fatalf("CurrentTurn() after Reset() = %d, want 0", vc.CurrentTurn())
	}
}

func Test_VisitCounts_DeepCopy_IsIndependent(t *testing.T) {
	vc := NewVisitCounts()
	p := Path{Components: []Component{NamedComponent("knot")}}
	vc.IncrementVisitCount(p)

	clone := vc.deepCopy()
	vc.IncrementVisitCount(p)

	if clone.VisitCount(p) != 1 {
		t.Fatalf("deepCopy() observed a mutation made after cloning: got %d, want 1", clone.VisitCount(p))
	}
}
