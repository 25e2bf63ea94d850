package ink

import "testing"

func newMinimalEngine(t *testing.T) *StoryEngine {
	t.Helper()
	root := NewContainer()
	root.AddContent(NewStringValue("x"))
	root.AddContent(NewControlCommand(CmdDone))
	doc := &Document{Version: currentVersion, Root: root, ListDefs: newStaticListDefs(nil)}
	return NewStoryEngine(doc)
}

func Test_Snapshot_RestoreState_RollsBackErrorsAndWarnings(t *testing.T) {
	se := newMinimalEngine(t)
	se.recordError(newRuntimeError(ErrPathApproximated, "pre-existing warning"))

	snap := se.snapshotState()

	se.recordError(newRuntimeError(ErrUnresolvedVariable, "speculative error"))
	se.recordError(newRuntimeError(ErrVersionMismatchNoncritical, "speculative warning"))
	if len(se.CurrentErrors()) != 1 || len(se.CurrentWarnings()) != 2 {
		t.Fatalf("expected the speculative error/warning to be visible before restore")
	}

	se.restoreState(snap)

	if len(se.CurrentErrors()) != 0 {
		t.Fatalf("CurrentErrors() after restoreState() = %d entries, want 0 (speculative error discarded)", len(se.CurrentErrors()))
	}
	if len(se.CurrentWarnings()) != 1 {
		t.Fatalf("CurrentWarnings() after restoreState() = %d entries, want 1 (only the pre-existing warning)", len(se.CurrentWarnings()))
	}
}

func Test_Snapshot_RestoreState_RollsBackChoicesAndOutput(t *testing.T) {
	se := newMinimalEngine(t)
	flow := se.currentFlow()
	flow.OutputStream.PushText("before")

	snap := se.snapshotState()

	flow.OutputStream.PushText(" after")
	flow.CurrentChoices = append(flow.CurrentChoices, &Choice{Text: "speculative choice"})

	se.restoreState(snap)

	if got := flow.OutputStream.Assemble().Text; got != "before" {
		t.Fatalf("output after restoreState() = %q, want %q", got, "before")
	}
	if len(flow.CurrentChoices) != 0 {
		t.Fatalf("CurrentChoices after restoreState() has %d entries, want 0", len(flow.CurrentChoices))
	}
}

func Test_Snapshot_RestoreState_DiscardsVariablePatch(t *testing.T) {
	se := newMinimalEngine(t)
	se.vars.SetGlobal("x", NewIntValue(1))

	snap := se.snapshotState()
	se.vars.SetGlobal("x", NewIntValue(2))

	v, _ := se.vars.Get("x")
	n, _ := v.Int()
	if n != 2 {
		t.Fatalf("Get(x) before restore = %d, want 2 (patch value visible)", n)
	}

	se.restoreState(snap)

	v, _ = se.vars.Get("x")
	n, _ = v.Int()
	if n != 1 {
		t.Fatalf("Get(x) after restoreState() = %d, want 1 (speculative write discarded)", n)
	}
}

func Test_Snapshot_CommitState_KeepsVariablePatch(t *testing.T) {
	se := newMinimalEngine(t)
	se.vars.SetGlobal("x", NewIntValue(1))

	snap := se.snapshotState()
	se.vars.SetGlobal("x", NewIntValue(2))
	se.commitState(snap)

	v, _ := se.vars.Get("x")
	n, _ := v.Int()
	if n != 2 {
		t.Fatalf("Get(x) after commitState() = %d, want 2 (speculative write kept)", n)
	}
}

// A tag with no accompanying text, followed by glue that goes on to fuse
// the next line's text onto this one, must still stop the lookahead right
// after the tag's preceding newline — deferring the tag (and everything
// glued past it) to the next continue — rather than letting the glue's
// eventual newline-removal silently commit the speculative steps through
// the tag and into the next line within the same continue.
func Test_Snapshot_LookaheadResolved_RestoresOnTagWithNoText(t *testing.T) {
	root := NewContainer()
	root.AddContent(NewStringValue("Line one"))
	root.AddContent(NewStringValue("\n"))
	root.AddContent(NewTag("mood: happy"))
	root.AddContent(NewGlue())
	root.AddContent(NewStringValue("more"))
	root.AddContent(NewStringValue("\n"))
	root.AddContent(NewControlCommand(CmdDone))

	doc := &Document{Version: currentVersion, Root: root, ListDefs: newStaticListDefs(nil)}
	se := NewStoryEngine(doc)

	if err := se.ContinueOneLine(); err != nil {
		t.Fatalf("ContinueOneLine() error: %v", err)
	}
	if got := se.CurrentText(); got != "Line one\n" {
		t.Fatalf("CurrentText() = %q, want %q (the tag/glue after the newline must not have been pulled in)", got, "Line one\n")
	}
	if len(se.CurrentTags()) != 0 {
		t.Fatalf("CurrentTags() = %v, want none (the tag belongs to the next line)", se.CurrentTags())
	}

	if err := se.ContinueOneLine(); err != nil {
		t.Fatalf("second ContinueOneLine() error: %v", err)
	}
	if got := se.CurrentText(); got != "more\n" {
		t.Fatalf("CurrentText() = %q, want %q (glue fuses into the deferred line, not the first one)", got, "more\n")
	}
	if tags := se.CurrentTags(); len(tags) != 1 || tags[0] != "mood: happy" {
		t.Fatalf("CurrentTags() = %v, want [\"mood: happy\"]", tags)
	}
}

func Test_Snapshot_CommitState_FoldsOntoPriorPatch(t *testing.T) {
	se := newMinimalEngine(t)
	se.vars.SetGlobal("x", NewIntValue(1))
	se.vars.SetGlobal("y", NewIntValue(1))

	// A background save starts its own patch and writes "y" into it before
	// any lookahead snapshot is taken.
	se.vars.StartPatch()
	se.vars.SetGlobal("y", NewIntValue(9))

	snap := se.snapshotState()
	se.vars.SetGlobal("x", NewIntValue(2))
	se.commitState(snap)

	// The speculative write to "x" must have folded onto the background
	// save's still-active patch, not bypassed it into the base globals.
	if se.vars.Patch() == nil {
		t.Fatalf("commitState() dropped the background save's patch entirely")
	}
	xv, ok := se.vars.Patch().GetGlobal("x")
	if !ok {
		t.Fatalf("background save's patch is missing the speculative write to x")
	}
	xn, _ := xv.Int()
	if xn != 2 {
		t.Fatalf("patched x = %d, want 2", xn)
	}
	yv, ok := se.vars.Patch().GetGlobal("y")
	if !ok {
		t.Fatalf("commitState() lost the background save's own write to y")
	}
	yn, _ := yv.Int()
	if yn != 9 {
		t.Fatalf("patched y = %d, want 9 (background save write must survive)", yn)
	}

	// Base globals must be untouched until the background save itself
	// applies its patch.
	baseY := se.vars.globals["y"]
	bn, _ := baseY.Int()
	if bn != 1 {
		t.Fatalf("base global y = %d, want 1 (unmerged while save is in flight)", bn)
	}
}
