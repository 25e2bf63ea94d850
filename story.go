// story.go — the Story Engine's public surface (§3, §4.1, §4.6-4.9): the
// object an embedding application drives.
//
// Grounded on interpreter.go's public-API-surface shape (Interpreter is the
// single entry point bundling Core/Global state plus every Eval* method) —
// generalized from "evaluate source, return a value" to ink's
// continue/choose loop, with the private step machinery split into
// story_step.go the way interpreter_exec.go splits private execution
// helpers out of interpreter.go's public file.
package ink

import "time"

// EngineVersion is the runtime's own version string, independent of the
// compiled-document inkVersion bounds checked by loader.go.
const EngineVersion = "0.1.0"

// StoryEngine is the entry point an embedding application drives: load a
// Document, then alternate Continue*/Choose* calls, reading CurrentText,
// CurrentTags, and CurrentChoices after each.
type StoryEngine struct {
	root     *Container
	listDefs ListDefinitions

	flows *FlowRegistry
	vars  *VariablesState
	visit *VisitCounts
	stack *EvaluationStack

	externals *ExternalRegistry

	// stringMarks is the beginString/endString nesting stack (story_step.go).
	stringMarks []int

	// inLookahead is true while lookaheadResolved (snapshot.go) is
	// speculatively stepping past a candidate line boundary; external-call
	// Diverts consult it to reject calls into non-lookahead-safe functions.
	inLookahead bool

	currentErrors   []*RuntimeErrorDetail
	currentWarnings []*RuntimeErrorDetail

	// sawLookaheadUnsafeFunctionError records whether a newline-lookahead pass
	// hit a non-lookahead-safe external call, so ContinueOneLine can turn
	// that into a user-visible error instead of silently truncating (§4.4,
	// §4.7 invariant 2).
	sawLookaheadUnsafeFunctionError error

	// savedForBackground is set by CopyStateForBackgroundSave and consumed
	// by BackgroundSaveComplete (§4.9).
	savedForBackground *savedSnapshot
}

type savedSnapshot struct {
	vars  *VariablesState
	visit *VisitCounts
}

// NewStoryEngine constructs a fresh engine over an already-loaded Document.
func NewStoryEngine(doc *Document) *StoryEngine {
	se := &StoryEngine{
		root:      doc.Root,
		listDefs:  doc.ListDefs,
		stack:     NewEvaluationStack(),
		externals: NewExternalRegistry(),
		visit:     NewVisitCounts(),
	}
	se.vars = NewVariablesState(se.listDefs)
	se.flows = NewFlowRegistry(se.root.FirstChildPointer())
	se.runTopLevelDeclarations()
	se.vars.SnapshotDefaults()
	return se
}

// runTopLevelDeclarations walks the root container's content tree for
// VariableAssignments but performs none of them: no global is set here, so
// the default snapshot taken right after it holds no story globals. A
// global declared by story content is set when the step loop reaches its
// VariableAssignment.
func (se *StoryEngine) runTopLevelDeclarations() {
	for _, obj := range se.root.Content {
		walkTopLevelAssignment(se, obj)
	}
}

func walkTopLevelAssignment(se *StoryEngine, obj RuntimeObject) {
	switch v := obj.(type) {
	case *VariableAssignment:
		// A bare top-level assignment carries its literal value as the
		// immediately preceding sibling Value in compiled documents; nothing
		// is evaluated or assigned here.
		_ = v
	case *Container:
		for _, child := range v.Content {
			walkTopLevelAssignment(se, child)
		}
	}
}

// VariablesState exposes the global variable store directly, the way
// embedding applications need to read/write story globals outside of
// Continue (§4.2).
func (se *StoryEngine) VariablesState() *VariablesState { return se.vars }

// CurrentFlowName reports the active flow (§4.8).
func (se *StoryEngine) CurrentFlowName() string { return se.flows.CurrentName() }

// AliveFlowNames reports every flow currently tracked by the registry.
func (se *StoryEngine) AliveFlowNames() []string { return se.flows.AliveFlowNames() }

// SwitchFlow makes the named flow active, creating it if it does not exist
// yet (§4.8).
func (se *StoryEngine) SwitchFlow(name string) error {
	if se.savedForBackground != nil {
		return &SessionError{Kind: ErrCannotSwitchFlowWhileSaving, Message: "cannot switch flows while a background save is in progress"}
	}
	se.flows.Switch(name)
	return nil
}

// RemoveFlow deletes a non-default, non-active flow (§4.8).
func (se *StoryEngine) RemoveFlow(name string) error { return se.flows.Remove(name) }

// CurrentText returns the assembled, trimmed text produced since the last
// Continue call returned (§4.5).
func (se *StoryEngine) CurrentText() string {
	return se.flows.Current().OutputStream.Assemble().Text
}

// CurrentTags returns every tag emitted alongside CurrentText.
func (se *StoryEngine) CurrentTags() []string {
	return se.flows.Current().OutputStream.Assemble().Tags
}

// CurrentChoices returns the user-visible choices generated by the most
// recent Continue*, in the order their ChoicePoints were reached (§5
// ordering guarantee c). Invisible-default choices are tracked internally
// (see tryFollowDefaultInvisibleChoice) but never handed to the caller
// (§3's Choice lifetime note: "emitted to user only if not invisible").
func (se *StoryEngine) CurrentChoices() []*Choice {
	return visibleChoices(se.flows.Current().CurrentChoices)
}

func visibleChoices(all []*Choice) []*Choice {
	var out []*Choice
	for _, c := range all {
		if !c.IsInvisibleDefault {
			out = append(out, c)
		}
	}
	return out
}

// CurrentErrors / CurrentWarnings / HasError / HasWarning surface the
// accumulated runtime diagnostics (§7): unlike LoadError/SessionError, these
// never abort execution; they simply accrue for the caller to inspect.
func (se *StoryEngine) CurrentErrors() []*RuntimeErrorDetail   { return se.currentErrors }
func (se *StoryEngine) CurrentWarnings() []*RuntimeErrorDetail { return se.currentWarnings }
func (se *StoryEngine) HasError() bool                         { return len(se.currentErrors) > 0 }
func (se *StoryEngine) HasWarning() bool                       { return len(se.currentWarnings) > 0 }

func (se *StoryEngine) recordError(e *RuntimeErrorDetail) {
	if e.IsWarning() {
		se.currentWarnings = append(se.currentWarnings, e)
	} else {
		se.currentErrors = append(se.currentErrors, e)
	}
}

// CanContinue reports whether the active flow still has content to execute
// (§4.1).
func (se *StoryEngine) CanContinue() bool {
	f := se.flows.Current()
	return !f.CallStack.CurrentFrame().CurrentPointer.IsNull()
}

// ContinueOneLine runs the step loop until exactly one line of text (or the
// end of content) has been produced, honoring glue/newline lookahead
// (§4.1, §4.4). If resolving the lookahead required calling a non-
// lookahead-safe external function, that is reported directly as an error
// instead of being silently folded into CurrentErrors, since it means the
// line boundary itself could not be trusted (§4.7 invariant 2).
func (se *StoryEngine) ContinueOneLine() error {
	se.sawLookaheadUnsafeFunctionError = nil
	if err := se.continueInternal(true); err != nil {
		return err
	}
	if se.sawLookaheadUnsafeFunctionError != nil {
		err := se.sawLookaheadUnsafeFunctionError
		se.sawLookaheadUnsafeFunctionError = nil
		return err
	}
	return nil
}

// ContinueMaximally runs the step loop until content is exhausted, without
// stopping at each line boundary (§4.1). Any choices reached along the way
// simply accumulate in CurrentChoices — reaching a ChoicePoint does not by
// itself end the continue; the loop stops only when CanContinue is false
// and no lone invisible-default choice is left to follow, or when a
// non-warning runtime error is recorded.
func (se *StoryEngine) ContinueMaximally() error {
	return se.continueInternal(false)
}

func (se *StoryEngine) continueInternal(stopAtLineBoundary bool) error {
	outermost := se.vars.BeginBatch()
	defer func() {
		if outermost {
			se.vars.EndBatch()
		}
	}()

	se.currentErrors = nil
	se.currentWarnings = nil
	se.flows.Current().OutputStream.ResetOutput()
	se.flows.Current().CurrentChoices = nil

	for {
		for se.CanContinue() {
			if err := se.step(); err != nil {
				if rd, ok := err.(*RuntimeErrorDetail); ok {
					se.recordError(rd)
					if !rd.IsWarning() {
						return nil
					}
					continue
				}
				return err
			}
			if stopAtLineBoundary && se.flows.Current().OutputStream.EndsInNewline() {
				if se.lookaheadResolved() {
					return nil
				}
			}
		}
		followed, err := se.tryFollowDefaultInvisibleChoice()
		if err != nil {
			return err
		}
		if !followed {
			return nil
		}
	}
}

// tryFollowDefaultInvisibleChoice auto-selects a lone invisible-default
// choice left outstanding once ordinary stepping has nothing further to
// produce, performing the same selection sequence as ChooseChoiceIndex
// minus exposing the choice to the caller (§4.6:
// "try-follow-default-invisible-choice... when continuation would
// otherwise end with exactly one such choice outstanding").
func (se *StoryEngine) tryFollowDefaultInvisibleChoice() (followed bool, err error) {
	flow := se.currentFlow()
	if len(flow.CurrentChoices) != 1 || !flow.CurrentChoices[0].IsInvisibleDefault {
		return false, nil
	}
	choice := flow.CurrentChoices[0]
	if choice.ThreadAtGeneration != nil {
		flow.CallStack.SetCurrentThreadByReference(choice.ThreadAtGeneration)
	}
	se.visit.NextTurn()
	flow.CurrentChoices = nil
	if err := se.divertToPath(choice.TargetPath, false); err != nil {
		return false, err
	}
	return true, nil
}

// ContinueAsync and AsyncContinueComplete implement the cooperative async
// variant (§4.1): async continue steps until content runs out or, checked
// after each step, more than millisecsLimitAsync milliseconds of wall-clock
// time have elapsed, and reports whether it finished; completion keeps
// stepping until CanContinue is false. This engine has no goroutine of its
// own — "async" here means "resumable in bounded slices", matching how
// ink's own ContinueAsync is a polling API, not a background thread.
func (se *StoryEngine) ContinueAsync(millisecsLimitAsync float64) (done bool, err error) {
	se.currentErrors = nil
	se.currentWarnings = nil
	se.flows.Current().OutputStream.ResetOutput()
	se.flows.Current().CurrentChoices = nil
	limit := time.Duration(millisecsLimitAsync * float64(time.Millisecond))
	start := time.Now()
	for se.CanContinue() {
		if err := se.step(); err != nil {
			if rd, ok := err.(*RuntimeErrorDetail); ok {
				se.recordError(rd)
				if !rd.IsWarning() {
					return true, nil
				}
			} else {
				return false, err
			}
		}
		if time.Since(start) > limit {
			break
		}
	}
	return !se.CanContinue(), nil
}

func (se *StoryEngine) AsyncContinueComplete() error {
	for se.CanContinue() {
		if err := se.step(); err != nil {
			if rd, ok := err.(*RuntimeErrorDetail); ok {
				se.recordError(rd)
				if !rd.IsWarning() {
					return nil
				}
				continue
			}
			return err
		}
	}
	return nil
}

// ChooseChoiceIndex selects one of CurrentChoices, restores the thread it
// was generated on, diverts to its target, and advances the turn counter
// (§4.6).
func (se *StoryEngine) ChooseChoiceIndex(index int) error {
	choices := visibleChoices(se.flows.Current().CurrentChoices)
	if index < 0 || index >= len(choices) {
		return &SessionError{Kind: ErrOutOfRangeChoice, Message: "choice index out of range"}
	}
	choice := choices[index]

	cs := se.flows.Current().CallStack
	if choice.ThreadAtGeneration != nil {
		cs.SetCurrentThreadByReference(choice.ThreadAtGeneration)
	}

	se.visit.NextTurn()
	se.flows.Current().CurrentChoices = nil

	return se.divertToPath(choice.TargetPath, false)
}

// ChoosePath diverts directly to an absolute path, bypassing choice
// selection entirely (§4.6 "ChoosePath").
func (se *StoryEngine) ChoosePath(p Path) error {
	return se.divertToPath(p, false)
}

// BindExternalFunction registers a host callback under name (§4.7).
func (se *StoryEngine) BindExternalFunction(name string, fn ExternalFunc, lookaheadSafe bool) {
	se.externals.Bind(name, fn, lookaheadSafe)
}

func (se *StoryEngine) UnbindExternalFunction(name string) { se.externals.Unbind(name) }

// EvaluateFunction calls a named knot/stitch as a pure function: pushes a
// temporary frame, runs it to completion, and returns its result plus any
// text it printed (§4.1 "EvaluateFunction").
func (se *StoryEngine) EvaluateFunction(name string, args ...*Value) (result *Value, text string, err error) {
	target, ok := se.root.NamedChild(name)
	if !ok {
		return nil, "", &SessionError{Kind: ErrInvalidDivertTarget, Message: "unknown function: " + name}
	}
	targetContainer, ok := target.(*Container)
	if !ok {
		return nil, "", &SessionError{Kind: ErrInvalidDivertTarget, Message: "not a callable container: " + name}
	}

	flow := se.flows.Current()
	startStackHeight := se.stack.Height()
	for _, a := range args {
		se.stack.Push(a)
	}
	startOutputLen := flow.OutputStream.Len()

	// Run the call on a forked thread so that when its frame naturally
	// exhausts, step's handleExhaustedFrame pops the thread and control
	// returns to the original thread exactly where it was left — the main
	// story's pointer is never touched by an EvaluateFunction call.
	origThreadIndex := flow.CallStack.CurrentThread().Index
	flow.CallStack.ForkThread()
	flow.CallStack.PushFrame(FrameFunction, targetContainer.FirstChildPointer(), se.stack.Height())

	for flow.CallStack.CurrentThread().Index != origThreadIndex {
		if err := se.step(); err != nil {
			if rd, ok := err.(*RuntimeErrorDetail); ok {
				se.recordError(rd)
				if !rd.IsWarning() {
					break
				}
				continue
			}
			return nil, "", err
		}
	}
	for flow.CallStack.CurrentThread().Index != origThreadIndex && flow.CallStack.CanPopThread() {
		flow.CallStack.PopThread()
	}

	text = flow.OutputStream.EntriesFrom(startOutputLen)
	flow.OutputStream.Truncate(startOutputLen)

	if se.stack.Height() > startStackHeight {
		result, _ = se.stack.Pop()
	}
	se.stack.TruncateTo(startStackHeight)
	return result, text, nil
}

// ResetState reinstates globals/visit-counts to their defaults, replaces
// the flow registry with a fresh one holding only the default flow at the
// story root, and empties the evaluation stack (§4.1 `reset-state`).
func (se *StoryEngine) ResetState() {
	se.vars.ResetState()
	se.visit.Reset()
	se.flows = NewFlowRegistry(se.root.FirstChildPointer())
	se.stack = NewEvaluationStack()
	se.currentErrors = nil
	se.currentWarnings = nil
}

// ResetCallstack rewinds only the active flow's callstack, leaving globals
// and visit counts intact (§4.1).
func (se *StoryEngine) ResetCallstack() {
	se.flows.flows[se.flows.currentKey] = newFlow(se.flows.currentKey, se.root.FirstChildPointer())
}

// CopyStateForBackgroundSave takes an ownership-transferring clone of
// variables/visit-counts for a background serializer while leaving the live
// engine free to keep running against fresh patches (§4.9).
func (se *StoryEngine) CopyStateForBackgroundSave() error {
	if se.savedForBackground != nil {
		return &SessionError{Kind: ErrSaveInProgress, Message: "a background save is already in progress"}
	}
	se.savedForBackground = &savedSnapshot{vars: se.vars, visit: se.visit}
	se.vars = se.vars.deepCopy()
	se.visit = se.visit.deepCopy()
	se.vars.StartPatch()
	se.visit.StartPatch()
	return nil
}

// BackgroundSaveComplete merges whatever the live engine did onto patches
// since CopyStateForBackgroundSave into the live engine's own base maps,
// and discards the saved snapshot (§4.9).
func (se *StoryEngine) BackgroundSaveComplete() error {
	if se.savedForBackground == nil {
		return &SessionError{Kind: ErrAsyncOperationInProgress, Message: "no background save is in progress"}
	}
	se.vars.ApplyPatch()
	se.visit.ApplyPatch()
	se.savedForBackground = nil
	return nil
}

func (se *StoryEngine) currentFlow() *Flow { return se.flows.Current() }

// CallStack exposes the active flow's callstack for host-side debug tooling
// (cmd/inkrun's "/stack" command; trace.DumpCallStack).
func (se *StoryEngine) CallStack() *CallStack { return se.flows.Current().CallStack }
