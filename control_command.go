// control_command.go — the flow-control variants of the Content Tree.
//
// These are the RuntimeObject kinds that the step loop (story_step.go)
// dispatches on to move the pointer, push/pop callstack frames, or mutate
// state, as opposed to the data-carrying Value kinds in content.go. Each
// gets its own struct (rather than overloading Value.Data) because each is
// switched on individually and benefits from named fields; see DESIGN.md's
// "Content Tree & Values" entry for the rationale, grounded on §9's
// "class hierarchy → tagged variant" design note.
package ink

// CommandType is the fixed effect set of ControlCommand, kept as a plain
// int-backed enum — data in this codebase is tagged with strings (see
// Divert/VariableReference names), control is tagged with ints, mirroring
// vm.go's opcode enum used for VM instruction dispatch.
type CommandType int

const (
	CmdEvalStart CommandType = iota
	CmdEvalEnd
	CmdEvalOutput
	CmdDuplicate
	CmdPopEvaluatedValue
	CmdBeginString
	CmdEndString
	CmdNoOp
	CmdChoiceCount
	CmdTurns
	CmdTurnsSince // turns since the popped divert target was last visited
	CmdSequenceShuffleIndex
	CmdStartThread
	CmdDone
	CmdEnd
	CmdListFromInt
	CmdListRange
	CmdListRandom
	CmdBeginTag
	CmdEndTag
)

func (c CommandType) String() string {
	names := [...]string{
		"ev", "/ev", "out", "du", "pop",
		"str", "/str", "nop",
		"choiceCnt", "turn", "visit", "seq",
		"thread", "done", "end",
		"listInt", "range", "lrnd",
		"#", "/#",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return "?"
}

// ControlCommand is a fixed-effect instruction in the Content Tree.
type ControlCommand struct {
	objectBase
	Type CommandType
}

func NewControlCommand(t CommandType) *ControlCommand {
	c := &ControlCommand{Type: t}
	attachSelf(&c.objectBase, c)
	return c
}

// FrameType enumerates the three kinds of callstack frame (§3).
type FrameType int

const (
	FrameTunnel FrameType = iota
	FrameFunction
	FrameNone
)

// Divert is an unconditional (or conditionally-guarded) jump.
type Divert struct {
	objectBase

	TargetPath Path
	// VariableDivertTargetName, when non-empty, means the divert target is
	// held in a variable of this name rather than encoded as a literal path.
	VariableDivertTargetName string

	PushesToStack bool
	StackPushType FrameType
	IsExternal    bool
	IsConditional bool
	// ExternalArgs is the declared argument count for an external-call
	// divert (§4.7); meaningless when IsExternal is false.
	ExternalArgs int
}

func NewDivert(target Path) *Divert {
	d := &Divert{TargetPath: target}
	attachSelf(&d.objectBase, d)
	return d
}

func (d *Divert) HasVariableTarget() bool { return d.VariableDivertTargetName != "" }

// VariableReference reads a named variable (temp-frame, then patch
// globals, then base globals — §4.2).
type VariableReference struct {
	objectBase
	Name string
	// PathForCount, when set, means this reference wants a visit/turn count
	// for the named container rather than a plain variable value (ink's
	// READ_COUNT(...) construct).
	PathForCount Path
	HasPathForCount bool
}

func NewVariableReference(name string) *VariableReference {
	v := &VariableReference{Name: name}
	attachSelf(&v.objectBase, v)
	return v
}

// NewVariableReferenceForCount builds the READ_COUNT(...)-style reference
// that asks for a container's visit/turn count rather than a plain
// variable value.
func NewVariableReferenceForCount(path Path) *VariableReference {
	v := &VariableReference{PathForCount: path, HasPathForCount: true}
	attachSelf(&v.objectBase, v)
	return v
}

// VariableAssignment writes the top of the evaluation stack into a
// variable, global or temporary, declared or reassigned.
type VariableAssignment struct {
	objectBase
	VariableName     string
	IsGlobal         bool
	IsNewDeclaration bool
}

func NewVariableAssignment(name string, isGlobal, isNew bool) *VariableAssignment {
	v := &VariableAssignment{VariableName: name, IsGlobal: isGlobal, IsNewDeclaration: isNew}
	attachSelf(&v.objectBase, v)
	return v
}

// NativeFunctionCall pops a fixed arity from the evaluation stack, computes
// a result per its Name, and pushes it back (§4.2).
type NativeFunctionCall struct {
	objectBase
	Name               string
	NumberOfParameters int
}

func NewNativeFunctionCall(name string, arity int) *NativeFunctionCall {
	n := &NativeFunctionCall{Name: name, NumberOfParameters: arity}
	attachSelf(&n.objectBase, n)
	return n
}

// ChoicePoint generates a Choice when reached, subject to its flags.
type ChoicePoint struct {
	objectBase

	PathOnChoice Path

	// Text is the choice's display text, copied at load time (loader.go)
	// from the choice point's plain "text" field rather than derived from
	// the output stream on every visit.
	Text string

	HasCondition         bool
	HasStartContent      bool
	HasChoiceOnlyContent bool
	OnceOnly             bool
	IsInvisibleDefault   bool
}

func NewChoicePoint(target Path) *ChoicePoint {
	c := &ChoicePoint{PathOnChoice: target}
	attachSelf(&c.objectBase, c)
	return c
}

// Tag is a legacy literal tag embedded directly in content (superseded by
// the BeginTag/EndTag ControlCommand pair but still emitted by some
// compiled documents).
type Tag struct {
	objectBase
	Text string
}

func NewTag(text string) *Tag {
	t := &Tag{Text: text}
	attachSelf(&t.objectBase, t)
	return t
}

// Glue suppresses surrounding whitespace/newlines across its position
// during output assembly (§4.5).
type Glue struct {
	objectBase
}

func NewGlue() *Glue {
	g := &Glue{}
	attachSelf(&g.objectBase, g)
	return g
}
