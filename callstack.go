// callstack.go — Callstack, Thread, and Frame (§3, §4.8).
//
// Each Frame's temporary-variable scope is grounded on interpreter.go's Env
// (a map plus a parent link, with Define/Set/Get climbing parent-ward) —
// except ink's temp-variable scoping is flatter than MindScript's lexical
// nesting: a frame's temporaries are visible only within that frame, not to
// frames below it on the callstack, so each Frame owns exactly one flat
// map rather than a chain. The *chain* idea survives in how a Thread is a
// stack of Frames and a CallStack is a stack of Threads.
//
// Deep-copying a CallStack (for the newline-lookahead snapshot, §4.4, and
// background save, §4.9) is grounded on builtin_concurrency.go's
// deepSnapshotEnvInto: walk the structure, clone every mutable map, and
// keep pointer identity stable for anything treated as immutable
// (RuntimeObjects from the Content Tree are never cloned, only referenced).
package ink

// Frame is one entry in a Thread's stack (§3).
type Frame struct {
	Type FrameType

	// CurrentPointer is where this frame is currently executing. For the
	// frame beneath a pushed call/tunnel, step advances it past the Divert
	// that made the call right after the push, so popping back to it
	// resumes exactly after the call (§4.8).
	CurrentPointer Pointer

	TemporaryVariables map[string]*Value

	EvalStackHeightOnEntry int

	// FunctionStartInOutputStream is a slot for the output-stream offset at
	// which this frame's content began; PushFrame leaves it at 0 and nothing
	// in the package reads it.
	FunctionStartInOutputStream int

	InExpressionEvaluation bool
}

func newFrame(t FrameType, startPointer Pointer, evalHeight int) *Frame {
	return &Frame{
		Type:                   t,
		CurrentPointer:         startPointer,
		TemporaryVariables:     map[string]*Value{},
		EvalStackHeightOnEntry: evalHeight,
	}
}

func (f *Frame) clone() *Frame {
	nf := *f
	nf.TemporaryVariables = make(map[string]*Value, len(f.TemporaryVariables))
	for k, v := range f.TemporaryVariables {
		nf.TemporaryVariables[k] = v
	}
	return &nf
}

// Thread is an independently advancing slice of frames (§3, §4.8).
type Thread struct {
	Frames []*Frame
	Index  int

	// PreviousPointer records the current frame's pointer just before the
	// most recent divert (set by divertToPath); nothing reads it back.
	PreviousPointer Pointer
}

func newThread(index int) *Thread {
	return &Thread{Index: index}
}

func (t *Thread) TopFrame() *Frame {
	if len(t.Frames) == 0 {
		return nil
	}
	return t.Frames[len(t.Frames)-1]
}

func (t *Thread) PushFrame(f *Frame) { t.Frames = append(t.Frames, f) }

func (t *Thread) PopFrame() *Frame {
	if len(t.Frames) == 0 {
		return nil
	}
	last := len(t.Frames) - 1
	f := t.Frames[last]
	t.Frames = t.Frames[:last]
	return f
}

func (t *Thread) clone(newIndex int) *Thread {
	nt := &Thread{Index: newIndex, PreviousPointer: t.PreviousPointer}
	nt.Frames = make([]*Frame, len(t.Frames))
	for i, f := range t.Frames {
		nt.Frames[i] = f.clone()
	}
	return nt
}

// CallStack is a stack of Threads; the active thread is the top (§3).
// Invariant: at a terminal step, only one thread may remain (enforced by
// the step loop, not by this type).
type CallStack struct {
	threads  []*Thread
	nextIdx  int
}

// NewCallStack creates a callstack with a single thread holding one
// FrameNone frame pointed at the story root.
func NewCallStack(root Pointer) *CallStack {
	cs := &CallStack{}
	th := newThread(0)
	th.PushFrame(newFrame(FrameNone, root, 0))
	cs.threads = append(cs.threads, th)
	cs.nextIdx = 1
	return cs
}

func (cs *CallStack) CurrentThread() *Thread { return cs.threads[len(cs.threads)-1] }

func (cs *CallStack) CurrentFrame() *Frame { return cs.CurrentThread().TopFrame() }

// CanPopThread reports whether more than one thread remains, i.e. a
// forked thread can legally be popped on `done` (§4.8).
func (cs *CallStack) CanPopThread() bool { return len(cs.threads) > 1 }

// PushFrame pushes a new frame of the given type onto the current thread,
// starting at startPointer and capturing the evaluation stack height at
// entry (§3's Frame fields).
func (cs *CallStack) PushFrame(t FrameType, startPointer Pointer, evalHeight int) {
	cs.CurrentThread().PushFrame(newFrame(t, startPointer, evalHeight))
}

// PopFrame pops a frame off the current thread. Returns nil if the thread
// has no frames left (the caller is expected to check beforehand via
// CurrentFrame/elements remaining).
func (cs *CallStack) PopFrame() *Frame { return cs.CurrentThread().PopFrame() }

// ElementsInCurrentThread is the number of frames on the active thread.
func (cs *CallStack) ElementsInCurrentThread() int { return len(cs.CurrentThread().Frames) }

// ForkThread starts a new thread (§4.8 `startThread`): it shares every
// frame below the current top but gets its own clone of the top frame, so
// both threads can independently mutate their own temporaries from here on.
func (cs *CallStack) ForkThread() {
	parent := cs.CurrentThread()
	child := &Thread{Index: cs.nextIdx, PreviousPointer: parent.PreviousPointer}
	cs.nextIdx++
	child.Frames = make([]*Frame, len(parent.Frames))
	for i, f := range parent.Frames {
		if i == len(parent.Frames)-1 {
			child.Frames[i] = f.clone()
		} else {
			child.Frames[i] = f
		}
	}
	cs.threads = append(cs.threads, child)
}

// PopThread discards the current (topmost) thread, resuming the parent
// thread beneath it (§4.8: "on done within a forked thread, the thread is
// popped and execution resumes on the parent thread").
func (cs *CallStack) PopThread() {
	if len(cs.threads) > 1 {
		cs.threads = cs.threads[:len(cs.threads)-1]
	}
}

// ThreadCount reports how many threads remain on the callstack.
func (cs *CallStack) ThreadCount() int { return len(cs.threads) }

// SetCurrentThreadByReference restores a specific thread as active,
// matching it by Index — used when a choice's back-reference identifies
// the thread it was generated on (§4.6).
func (cs *CallStack) SetCurrentThreadByReference(th *Thread) {
	for i, t := range cs.threads {
		if t.Index == th.Index {
			// Move the referenced thread to the top.
			cs.threads = append(cs.threads[:i], cs.threads[i+1:]...)
			cs.threads = append(cs.threads, t)
			return
		}
	}
	// Not found among live threads: reinstate it verbatim (it was captured
	// at choice-generation time and may have since been popped).
	cs.threads = append(cs.threads, th)
}

// deepCopy clones every thread/frame, the way builtin_concurrency.go's
// deepSnapshotEnvInto clones an Env chain: new maps everywhere mutable
// state lives, shared references to anything treated as immutable
// (Content Tree objects via Pointer).
func (cs *CallStack) deepCopy() *CallStack {
	nc := &CallStack{nextIdx: cs.nextIdx}
	nc.threads = make([]*Thread, len(cs.threads))
	for i, t := range cs.threads {
		nc.threads[i] = t.clone(t.Index)
	}
	return nc
}
