// story_step.go — the step loop (§4.1), flow-control dispatch (§4.2),
// pointer advancement (§4.3), and the visitChangedContainersDueToDivert
// resolution of Open Question (b).
//
// Grounded on vm.go's opcode-dispatch `for { fetch; switch; exec }` runner
// shape — generalized from a flat instruction array with an integer
// program counter to a tree of RuntimeObjects addressed by Pointer, the way
// ink's own VM walks a compiled tree rather than a flat bytecode array.
package ink

import "fmt"

// step executes exactly one content object at the current pointer and
// advances it, or performs a structural transition (descending into a
// container, popping an exhausted frame/thread) with no content executed.
func (se *StoryEngine) step() error {
	flow := se.currentFlow()
	cs := flow.CallStack
	frame := cs.CurrentFrame()

	if frame == nil {
		return nil
	}

	ptr := frame.CurrentPointer
	if ptr.IsNull() {
		return se.handleExhaustedFrame()
	}

	obj := ptr.Resolve()
	if obj == nil {
		frame.CurrentPointer = se.nextPointer(ptr)
		return nil
	}
	traceStep(se.currentFlow().Name, ptr, obj)

	if container, ok := obj.(*Container); ok {
		se.enterContainer(ptr, container)
		frame.CurrentPointer = container.FirstChildPointer()
		return nil
	}

	if err := se.execute(obj, frame); err != nil {
		return err
	}

	// A divert, done or end has already moved the pointer; only advance
	// when execute left it where it was.
	if frame.CurrentPointer == ptr {
		frame.CurrentPointer = se.nextPointer(ptr)
	}
	return nil
}

// handleExhaustedFrame runs when the current frame's pointer has run off
// the end of its content: pop the frame/thread per §4.8, or end the flow if
// nothing remains.
func (se *StoryEngine) handleExhaustedFrame() error {
	flow := se.currentFlow()
	cs := flow.CallStack

	if cs.CanPopThread() {
		cs.PopThread()
		return nil
	}

	if cs.ElementsInCurrentThread() > 1 {
		popped := cs.PopFrame()
		se.stack.TruncateTo(popped.EvalStackHeightOnEntry)
		return nil
	}

	// Nothing left anywhere: the flow is done. Leave the pointer null;
	// CanContinue will now report false.
	return nil
}

// nextPointer finds the next sibling of ptr, climbing through parent
// containers when ptr was the last child at its level, stopping at the
// story root (§4.3).
func (se *StoryEngine) nextPointer(ptr Pointer) Pointer {
	if ptr.Container == nil {
		return NullPointer
	}
	if ptr.Index == -1 {
		// Pointing at the container itself with no specific child: there is
		// no "next" from here except climbing, since FirstChildPointer is
		// handled by the caller before nextPointer is ever consulted for a
		// container with content.
		return se.climbToNextAfter(ptr.Container)
	}
	newIndex := ptr.Index + 1
	if newIndex < len(ptr.Container.Content) {
		return Pointer{Container: ptr.Container, Index: newIndex}
	}
	return se.climbToNextAfter(ptr.Container)
}

// climbToNextAfter returns the pointer just past c within c's parent,
// recursing upward until a sibling is found or the root is reached.
func (se *StoryEngine) climbToNextAfter(c *Container) Pointer {
	parent, ok := c.Parent().(*Container)
	if !ok {
		return NullPointer
	}
	return se.nextPointer(Pointer{Container: parent, Index: c.ownIndex()})
}

// enterContainer records visit/turn-count bookkeeping on descent into a
// freshly-reached container (§4.1 invariant: "entering a container with
// VisitsShouldBeCounted increments its visit count").
func (se *StoryEngine) enterContainer(at Pointer, c *Container) {
	if c.CountingAtStartOnly && at.Index != -1 && at.Index != 0 {
		return
	}
	if c.VisitsShouldBeCounted {
		se.visit.IncrementVisitCount(c.Path())
	}
	if c.TurnIndexShouldBeCounted {
		se.visit.RecordTurnIndex(c.Path())
	}
}

func (se *StoryEngine) execute(obj RuntimeObject, frame *Frame) error {
	switch v := obj.(type) {
	case *Value:
		return se.execValue(v, frame)
	case *ControlCommand:
		return se.execControlCommand(v, frame)
	case *Divert:
		return se.execDivert(v, frame)
	case *VariableReference:
		return se.execVariableReference(v, frame)
	case *VariableAssignment:
		return se.execVariableAssignment(v, frame)
	case *NativeFunctionCall:
		return se.execNativeFunctionCall(v)
	case *ChoicePoint:
		return se.execChoicePoint(v, frame)
	case *Tag:
		se.currentFlow().OutputStream.PushBeginTag()
		se.currentFlow().OutputStream.PushText(v.Text)
		se.currentFlow().OutputStream.PushEndTag()
		return nil
	case *Glue:
		se.currentFlow().OutputStream.PushGlue()
		return nil
	default:
		return fmt.Errorf("unrecognized content object %T", obj)
	}
}

func (se *StoryEngine) execValue(v *Value, frame *Frame) error {
	if frame.InExpressionEvaluation {
		se.stack.Push(v)
		return nil
	}
	if s, ok := v.Str(); ok {
		se.currentFlow().OutputStream.PushText(s)
		return nil
	}
	se.stack.Push(v)
	return nil
}

func (se *StoryEngine) execControlCommand(c *ControlCommand, frame *Frame) error {
	os := se.currentFlow().OutputStream
	switch c.Type {
	case CmdEvalStart:
		frame.InExpressionEvaluation = true
	case CmdEvalEnd:
		frame.InExpressionEvaluation = false
	case CmdEvalOutput:
		v, err := se.stack.Pop()
		if err != nil {
			return err
		}
		os.PushText(v.ContentString())
	case CmdPopEvaluatedValue, CmdDuplicate:
		v, err := se.stack.Pop()
		if err != nil {
			return err
		}
		if c.Type == CmdDuplicate {
			se.stack.Push(v)
			se.stack.Push(v)
		}
	case CmdBeginString:
		se.stringMarks = append(se.stringMarks, os.Len())
	case CmdEndString:
		if len(se.stringMarks) == 0 {
			return newRuntimeError(ErrUnexpectedEndOfContent, "endString with no matching beginString")
		}
		mark := se.stringMarks[len(se.stringMarks)-1]
		se.stringMarks = se.stringMarks[:len(se.stringMarks)-1]
		captured := os.EntriesFrom(mark)
		os.Truncate(mark)
		se.stack.Push(NewStringValue(captured))
	case CmdNoOp:
		// Nothing.
	case CmdChoiceCount:
		se.stack.Push(NewIntValue(len(se.currentFlow().CurrentChoices)))
	case CmdTurns:
		se.stack.Push(NewIntValue(se.visit.CurrentTurn()))
	case CmdTurnsSince:
		target, err := se.stack.Pop()
		if err != nil {
			return err
		}
		p, ok := target.DivertTarget()
		if !ok {
			return newRuntimeError(ErrTypeMismatch, "TURNS_SINCE target must be a divert target")
		}
		se.stack.Push(NewIntValue(se.visit.TurnIndexSince(p)))
	case CmdSequenceShuffleIndex:
		length, err := se.stack.Pop()
		if err != nil {
			return err
		}
		n, _ := length.Int()
		idx := 0
		if n > 0 {
			idx = se.visit.CurrentTurn() % n
		}
		se.stack.Push(NewIntValue(idx))
	case CmdStartThread:
		se.currentFlow().CallStack.ForkThread()
	case CmdDone:
		cs := se.currentFlow().CallStack
		if cs.CanPopThread() {
			cs.PopThread()
		} else {
			frame.CurrentPointer = NullPointer
		}
	case CmdEnd:
		cs := se.currentFlow().CallStack
		for cs.CanPopThread() {
			cs.PopThread()
		}
		frame.CurrentPointer = NullPointer
	case CmdListFromInt:
		nameVal, err := se.stack.Pop()
		if err != nil {
			return err
		}
		numVal, err := se.stack.Pop()
		if err != nil {
			return err
		}
		origin, _ := nameVal.Str()
		n, _ := numVal.Int()
		lv, ok := ListFromInt(se.listDefs, origin, n)
		if !ok {
			se.stack.Push(NewListValue(NewEmptyList(origin)))
		} else {
			se.stack.Push(NewListValue(lv))
		}
	case CmdListRange:
		maxVal, err := se.stack.Pop()
		if err != nil {
			return err
		}
		minVal, err := se.stack.Pop()
		if err != nil {
			return err
		}
		listVal, err := se.stack.Pop()
		if err != nil {
			return err
		}
		l, ok := listVal.List()
		if !ok || len(l.OriginNames) == 0 {
			return newRuntimeError(ErrTypeMismatch, "listRange requires a list operand with a known origin")
		}
		minN, _ := minVal.Int()
		maxN, _ := maxVal.Int()
		se.stack.Push(NewListValue(ListRange(se.listDefs, l.OriginNames[0], minN, maxN)))
	case CmdListRandom:
		listVal, err := se.stack.Pop()
		if err != nil {
			return err
		}
		l, ok := listVal.List()
		if !ok {
			return newRuntimeError(ErrTypeMismatch, "listRandom requires a list operand")
		}
		se.stack.Push(NewListValue(l.MinItem()))
	case CmdBeginTag:
		os.PushBeginTag()
	case CmdEndTag:
		os.PushEndTag()
	default:
		return fmt.Errorf("unhandled control command %v", c.Type)
	}
	return nil
}

func (se *StoryEngine) execDivert(d *Divert, frame *Frame) error {
	if d.IsConditional {
		cond, err := se.stack.Pop()
		if err != nil {
			return err
		}
		_, truthy := truthiness(cond)
		if !truthy {
			return nil
		}
	}

	target := d.TargetPath
	if d.HasVariableTarget() {
		v, ok := se.readVariable(d.VariableDivertTargetName, frame)
		if !ok {
			return newRuntimeErrorAt(ErrUnresolvedVariable, "unresolved variable divert target", d.Path())
		}
		p, ok := v.DivertTarget()
		if !ok {
			return newRuntimeError(ErrTypeMismatch, "variable divert target is not a divert target value")
		}
		target = p
	}

	if d.IsExternal {
		args, err := se.stack.PopN(d.ExternalArgs)
		if err != nil {
			return err
		}
		result, err := se.externals.Call(targetExternalName(target), args, se.inLookahead)
		if err != nil {
			if sessionErr, ok := err.(*SessionError); ok {
				if sessionErr.Kind == ErrExternalNotLookaheadSafe && se.inLookahead {
					se.sawLookaheadUnsafeFunctionError = sessionErr
				}
				return newRuntimeError(sessionErr.Kind, sessionErr.Message)
			}
			return err
		}
		if result == nil {
			result = NullValue()
		}
		se.stack.Push(result)
		return nil
	}

	return se.divertToPath(target, d.PushesToStack, d.StackPushType)
}

// targetExternalName resolves the function name an external-call Divert
// addresses — the last named component of its target path (§4.7).
func targetExternalName(p Path) string {
	if last, ok := p.Last(); ok {
		return last.String()
	}
	return p.String()
}

// divertToPath is the shared implementation behind Divert execution,
// ChooseChoiceIndex, and ChoosePath: resolve an absolute path, optionally
// push a callstack frame, and update the thread's previous-pointer for
// visitChangedContainersDueToDivert.
func (se *StoryEngine) divertToPath(p Path, pushFrame bool, pushType ...FrameType) error {
	flow := se.currentFlow()
	cs := flow.CallStack

	newPtr, err := se.root.ContentAtPath(p)
	if err != nil {
		return err
	}

	thread := cs.CurrentThread()
	oldPtr := cs.CurrentFrame().CurrentPointer
	thread.PreviousPointer = oldPtr

	if pushFrame {
		ft := FrameFunction
		if len(pushType) > 0 {
			ft = pushType[0]
		}
		cs.PushFrame(ft, newPtr, se.stack.Height())
	} else {
		cs.CurrentFrame().CurrentPointer = newPtr
	}

	se.visitChangedContainersDueToDivert(oldPtr, newPtr)
	return nil
}

// visitChangedContainersDueToDivert resolves Open Question (b): a divert
// can jump into or out of arbitrarily many containers in one step, skipping
// the ordinary one-step-at-a-time descent that enterContainer normally
// handles. This walks both the old and new pointer's containing-path
// chains (root to leaf), compares them container by container to find where
// they diverge, and fires enterContainer for every container on the new
// chain beyond that point — exactly the containers the divert "entered"
// that a step-by-step walk would have counted individually. When the new
// pointer addresses a container itself (Index -1), that container is left
// to step, which counts it as it descends into it.
func (se *StoryEngine) visitChangedContainersDueToDivert(oldPtr, newPtr Pointer) {
	if newPtr.IsNull() {
		return
	}
	newChain := containingChain(newPtr)
	if newPtr.Index == -1 {
		newChain = newChain[:len(newChain)-1]
	}
	if oldPtr.IsNull() {
		for _, c := range newChain {
			se.enterContainer(Pointer{Container: c, Index: -1}, c)
		}
		return
	}
	oldChain := containingChain(oldPtr)

	common := 0
	for common < len(oldChain) && common < len(newChain) && oldChain[common] == newChain[common] {
		common++
	}
	for i := common; i < len(newChain); i++ {
		c := newChain[i]
		se.enterContainer(Pointer{Container: c, Index: -1}, c)
	}
}

// containingChain returns every ancestor container of p's own container,
// root-to-leaf, including p's own container itself as the final element.
func containingChain(p Pointer) []*Container {
	var chain []*Container
	for c := p.Container; c != nil; {
		chain = append(chain, c)
		parent, ok := c.Parent().(*Container)
		if !ok {
			break
		}
		c = parent
	}
	// Reverse to root-to-leaf order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (se *StoryEngine) readVariable(name string, frame *Frame) (*Value, bool) {
	if v, ok := frame.TemporaryVariables[name]; ok {
		return v, true
	}
	return se.vars.Get(name)
}

func (se *StoryEngine) execVariableReference(v *VariableReference, frame *Frame) error {
	if v.HasPathForCount {
		se.stack.Push(NewIntValue(se.visit.VisitCount(v.PathForCount)))
		return nil
	}
	val, ok := se.readVariable(v.Name, frame)
	if !ok {
		return newRuntimeErrorAt(ErrUnresolvedVariable, "unresolved variable: "+v.Name, v.Path())
	}
	se.stack.Push(val)
	return nil
}

func (se *StoryEngine) execVariableAssignment(a *VariableAssignment, frame *Frame) error {
	val, err := se.stack.Pop()
	if err != nil {
		return err
	}
	if a.IsGlobal {
		if a.IsNewDeclaration {
			return se.vars.DeclareGlobal(a.VariableName, val)
		}
		se.vars.SetGlobal(a.VariableName, val)
		return nil
	}
	frame.TemporaryVariables[a.VariableName] = val
	return nil
}

func (se *StoryEngine) execNativeFunctionCall(n *NativeFunctionCall) error {
	args, err := se.stack.PopN(n.NumberOfParameters)
	if err != nil {
		return err
	}
	result, nerr := EvaluateNativeFunctionCall(n, args, se.listDefs)
	if nerr != nil {
		return newRuntimeErrorAt(ErrTypeMismatch, nerr.Error(), n.Path())
	}
	se.stack.Push(result)
	return nil
}

func (se *StoryEngine) execChoicePoint(c *ChoicePoint, frame *Frame) error {
	if c.HasCondition {
		cond, err := se.stack.Pop()
		if err != nil {
			return err
		}
		_, truthy := truthiness(cond)
		if !truthy {
			return nil
		}
	}
	if c.OnceOnly && se.visit.VisitCount(c.PathOnChoice) > 0 {
		return nil
	}

	flow := se.currentFlow()
	choice := &Choice{
		Text:                c.Text,
		SourcePath:          c.Path(),
		TargetPath:          c.PathOnChoice,
		IsInvisibleDefault:  c.IsInvisibleDefault,
		OriginalChoicePoint: c,
		OriginalThreadIndex: flow.CallStack.CurrentThread().Index,
		ThreadAtGeneration:  flow.CallStack.CurrentThread().clone(flow.CallStack.CurrentThread().Index),
		Index:               len(visibleChoices(flow.CurrentChoices)),
	}
	flow.CurrentChoices = append(flow.CurrentChoices, choice)
	return nil
}
