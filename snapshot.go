// snapshot.go — newline-lookahead snapshot/restore (§4.4) and the
// output-state-change classification it depends on.
//
// Grounded on builtin_concurrency.go's deep-clone-before-mutate discipline
// (used there so a goroutine-isolated copy of an Env can run speculatively
// without corrupting the caller's state) — applied here to the engine's
// mutable runtime state so ContinueOneLine can step past a candidate line
// boundary, see whether glue or further content changes the picture, and
// either keep going or roll back to exactly the pre-speculation state.
package ink

import "strings"

const maxLookaheadSteps = 2000

// engineSnapshot captures every piece of state a speculative step can
// mutate. Content Tree RuntimeObjects are never part of a snapshot — they
// are immutable once loaded and referenced only by Pointer (§3's Ownership
// section).
type engineSnapshot struct {
	callStack       *CallStack
	evalStack       *EvaluationStack
	outputStream    *OutputStream
	choices         []*Choice
	stringMarks     []int
	currentErrors   []*RuntimeErrorDetail
	currentWarnings []*RuntimeErrorDetail

	// priorVarsPatch/priorVisitPatch are clones of whatever patch was
	// already active (e.g. a background save in progress, §4.9) at the
	// moment the snapshot was taken — nil when no patch was active. A fresh
	// patch is layered on top of these for the speculative steps; restoring
	// puts the original back exactly as it was, and committing folds the
	// speculative changes down onto it instead of onto the base state.
	priorVarsPatch  *Patch
	priorVisitPatch *Patch
}

func (se *StoryEngine) snapshotState() *engineSnapshot {
	flow := se.currentFlow()
	snap := &engineSnapshot{
		callStack:       flow.CallStack.deepCopy(),
		evalStack:       se.stack.clone(),
		outputStream:    flow.OutputStream.clone(),
		choices:         append([]*Choice(nil), flow.CurrentChoices...),
		stringMarks:     append([]int(nil), se.stringMarks...),
		currentErrors:   append([]*RuntimeErrorDetail(nil), se.currentErrors...),
		currentWarnings: append([]*RuntimeErrorDetail(nil), se.currentWarnings...),
	}
	if p := se.vars.Patch(); p != nil {
		snap.priorVarsPatch = p.clone()
	}
	if p := se.visit.Patch(); p != nil {
		snap.priorVisitPatch = p.clone()
	}
	se.vars.StartPatch()
	se.visit.StartPatch()
	return snap
}

// restoreState rolls the engine back to exactly the state snapshotState
// captured, discarding every speculative step taken since — including the
// speculative variables/visit-count writes, and reinstating whatever patch
// (if any) was already active at snapshot time (§4.4 invariant: "no
// externally-visible variable changes while resolving lookahead", and §8
// invariant 3: restoring a snapshot reverts every mutable field exactly,
// including patch contents).
func (se *StoryEngine) restoreState(s *engineSnapshot) {
	flow := se.currentFlow()
	flow.CallStack = s.callStack
	se.stack = s.evalStack
	flow.OutputStream = s.outputStream
	flow.CurrentChoices = s.choices
	se.stringMarks = s.stringMarks
	se.currentErrors = s.currentErrors
	se.currentWarnings = s.currentWarnings
	se.vars.SetPatch(s.priorVarsPatch)
	se.visit.SetPatch(s.priorVisitPatch)
}

// commitState folds the patch a resolved-forward lookahead accumulated back
// onto whatever patch was active before the snapshot (or straight into the
// base state if none was) instead of discarding it — the speculative steps
// turned out to be real, so their variable writes must stick (§4.4).
func (se *StoryEngine) commitState(s *engineSnapshot) {
	se.vars.MergeActivePatchOnto(s.priorVarsPatch)
	se.visit.MergeActivePatchOnto(s.priorVisitPatch)
}

// lookaheadResolved is called once ContinueOneLine's output stream ends in
// a newline. It speculatively steps forward to classify the line boundary
// per §4.4:
//
//   - no-change: nothing further is produced before content/choices run out
//     -> the newline is genuine; roll back and stop here.
//   - confirmed-boundary: non-whitespace content appears after the newline
//     without the newline itself being disturbed (a fresh, un-glued line
//     beginning), or a new tag appears even with no accompanying text ->
//     the earlier newline was already the true end of line; roll back to
//     the snapshot (discarding that next line/tag) and stop.
//   - newline-removed: the trailing newline is gone by the time of this
//     check (glue consumed it, fusing the two lines into one) -> the
//     candidate boundary was never real; keep the speculative state and
//     keep stepping.
//
// Returns true when the line boundary is confirmed and continueInternal
// should stop; false when it should keep looping (the speculative state is
// already live, no further action needed).
func (se *StoryEngine) lookaheadResolved() bool {
	flow := se.currentFlow()
	beforeAssembled := flow.OutputStream.Assemble()
	before := beforeAssembled.Text
	beforeTagCount := len(beforeAssembled.Tags)

	snap := se.snapshotState()
	se.inLookahead = true
	defer func() { se.inLookahead = false }()

	for i := 0; i < maxLookaheadSteps; i++ {
		if !se.CanContinue() {
			break
		}
		if len(flow.CurrentChoices) > 0 {
			break
		}
		err := se.step()
		if err != nil {
			if rd, ok := err.(*RuntimeErrorDetail); ok {
				se.recordError(rd)
				if !rd.IsWarning() {
					break
				}
				continue
			}
			break
		}

		afterAssembled := flow.OutputStream.Assemble()
		after := afterAssembled.Text
		if len(after) > len(before) {
			added := after[len(before):]
			if strings.TrimSpace(added) != "" {
				se.restoreState(snap)
				return true
			}
		}
		if len(afterAssembled.Tags) > beforeTagCount {
			se.restoreState(snap)
			return true
		}
		if !strings.HasSuffix(after, "\n") {
			se.commitState(snap)
			return false
		}
	}

	se.restoreState(snap)
	return true
}
