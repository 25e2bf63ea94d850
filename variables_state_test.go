package ink

import "testing"

func Test_VariablesState_SetGetGlobal(t *testing.T) {
	vs := NewVariablesState(nil)
	vs.SetGlobal("score", NewIntValue(10))
	v, ok := vs.Get("score")
	if !ok {
		t.Fatalf("Get() failed to find a global that was just set")
	}
	n, _ := v.Int()
	if n != 10 {
		t.Fatalf("Get() = %d, want 10", n)
	}
}

func Test_VariablesState_DeclareGlobal_RejectsDuplicate(t *testing.T) {
	vs := NewVariablesState(nil)
	if err := vs.DeclareGlobal("x", NewIntValue(1)); err != nil {
		t.Fatalf("first DeclareGlobal() failed: %v", err)
	}
	if err := vs.DeclareGlobal("x", NewIntValue(2)); err == nil {
		t.Fatalf("expected an error re-declaring an existing global")
	}
}

func Test_VariablesState_PatchOverlay_ReadsPatchFirst(t *testing.T) {
	vs := NewVariablesState(nil)
	vs.SetGlobal("x", NewIntValue(1))

	vs.StartPatch()
	vs.SetGlobal("x", NewIntValue(2))

	v, _ := vs.Get("x")
	n, _ := v.Int()
	if n != 2 {
		t.Fatalf("Get() while patched = %d, want 2 (patch value)", n)
	}

	vs.DiscardPatch()
	v, _ = vs.Get("x")
	n, _ = v.Int()
	if n != 1 {
		t.Fatalf("Get() after DiscardPatch() = %d, want 1 (base value)", n)
	}
}

func Test_VariablesState_ApplyPatch_MergesAndNotifies(t *testing.T) {
	vs := NewVariablesState(nil)
	vs.SetGlobal("x", NewIntValue(1))

	var notified []string
	vs.ObserveChanges(func(name string, v *Value) { notified = append(notified, name) })

	vs.StartPatch()
	vs.SetGlobal("x", NewIntValue(2))
	vs.SetGlobal("y", NewIntValue(3))
	vs.ApplyPatch()

	v, _ := vs.Get("x")
	n, _ := v.Int()
	if n != 2 {
		t.Fatalf("Get(x) after ApplyPatch() = %d, want 2", n)
	}
	if len(notified) != 2 || notified[0] != "x" || notified[1] != "y" {
		t.Fatalf("notifications = %v, want [x y] in first-change order", notified)
	}
}

func Test_VariablesState_BatchDepth_DefersNotificationsToOutermost(t *testing.T) {
	vs := NewVariablesState(nil)
	var notified []string
	vs.ObserveChanges(func(name string, v *Value) { notified = append(notified, name) })

	outer := vs.BeginBatch()
	if !outer {
		t.Fatalf("first BeginBatch() should report itself as outermost")
	}
	inner := vs.BeginBatch()
	if inner {
		t.Fatalf("nested BeginBatch() should not report itself as outermost")
	}

	vs.SetGlobal("x", NewIntValue(1))
	if len(notified) != 0 {
		t.Fatalf("notifications should be deferred while still batching, got %v", notified)
	}

	vs.EndBatch() // inner returns to depth 1, still batching
	if len(notified) != 0 {
		t.Fatalf("notifications should still be deferred after the inner EndBatch(), got %v", notified)
	}

	vs.EndBatch() // outer returns to depth 0, flushes
	if len(notified) != 1 || notified[0] != "x" {
		t.Fatalf("notifications after outermost EndBatch() = %v, want [x]", notified)
	}
}

func Test_VariablesState_ResetState_RestoresDefaultSnapshot(t *testing.T) {
	vs := NewVariablesState(nil)
	vs.SetGlobal("x", NewIntValue(1))
	vs.SnapshotDefaults()
	vs.SetGlobal("x", NewIntValue(99))

	vs.ResetState()
	v, _ := vs.Get("x")
	n, _ := v.Int()
	if n != 1 {
		t.Fatalf("Get(x) after ResetState() = %d, want 1 (the snapshotted default)", n)
	}
}

func Test_VariablesState_ObserverPanicDoesNotAbortOtherObservers(t *testing.T) {
	vs := NewVariablesState(nil)
	var secondRan bool
	vs.ObserveChanges(func(name string, v *Value) { panic("boom") })
	vs.ObserveChanges(func(name string, v *Value) { secondRan = true })

	vs.SetGlobal("x", NewIntValue(1))
	if !secondRan {
		t.Fatalf("a panicking observer must not prevent later observers from running")
	}
}
