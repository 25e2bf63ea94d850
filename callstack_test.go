package ink

import "testing"

func Test_CallStack_NewCallStack_SingleThreadFrame(t *testing.T) {
	root := NewContainer()
	cs := NewCallStack(root.FirstChildPointer())
	if cs.ThreadCount() != 1 {
		t.Fatalf("ThreadCount() = %d, want 1", cs.ThreadCount())
	}
	if cs.ElementsInCurrentThread() != 1 {
		t.Fatalf("ElementsInCurrentThread() = %d, want 1", cs.ElementsInCurrentThread())
	}
	if cs.CurrentFrame().Type != FrameNone {
		t.Fatalf("initial frame type = %v, want FrameNone", cs.CurrentFrame().Type)
	}
}

func Test_CallStack_PushPopFrame(t *testing.T) {
	root := NewContainer()
	cs := NewCallStack(root.FirstChildPointer())
	cs.PushFrame(FrameFunction, root.FirstChildPointer(), 0)
	if cs.ElementsInCurrentThread() != 2 {
		t.Fatalf("ElementsInCurrentThread() after push = %d, want 2", cs.ElementsInCurrentThread())
	}
	popped := cs.PopFrame()
	if popped.Type != FrameFunction {
		t.Fatalf("PopFrame() returned type %v, want FrameFunction", popped.Type)
	}
	if cs.ElementsInCurrentThread() != 1 {
		t.Fatalf("ElementsInCurrentThread() after pop = %d, want 1", cs.ElementsInCurrentThread())
	}
}

func Test_CallStack_ForkThread_SharesLowerFramesIndependentTop(t *testing.T) {
	root := NewContainer()
	cs := NewCallStack(root.FirstChildPointer())
	cs.CurrentFrame().TemporaryVariables["x"] = NewIntValue(1)

	cs.ForkThread()
	if cs.ThreadCount() != 2 {
		t.Fatalf("ThreadCount() after fork = %d, want 2", cs.ThreadCount())
	}
	if !cs.CanPopThread() {
		t.Fatalf("CanPopThread() should be true with two threads live")
	}

	// Mutating the forked thread's top frame must not affect the parent's.
	cs.CurrentFrame().TemporaryVariables["x"] = NewIntValue(2)

	cs.PopThread()
	v := cs.CurrentFrame().TemporaryVariables["x"]
	n, _ := v.Int()
	if n != 1 {
		t.Fatalf("parent thread's temp var leaked the child's mutation: got %d, want 1", n)
	}
}

func Test_CallStack_PopThread_NoopWithOneThread(t *testing.T) {
	root := NewContainer()
	cs := NewCallStack(root.FirstChildPointer())
	cs.PopThread()
	if cs.ThreadCount() != 1 {
		t.Fatalf("PopThread() on a single-thread callstack must be a no-op, got %d threads", cs.ThreadCount())
	}
}

func Test_CallStack_SetCurrentThreadByReference(t *testing.T) {
	root := NewContainer()
	cs := NewCallStack(root.FirstChildPointer())
	cs.ForkThread()
	forked := cs.CurrentThread()
	cs.PopThread() // back to the original thread

	cs.SetCurrentThreadByReference(forked)
	if cs.CurrentThread().Index != forked.Index {
		t.Fatalf("SetCurrentThreadByReference() did not restore the referenced thread")
	}
}

func Test_CallStack_DeepCopy_IsIndependent(t *testing.T) {
	root := NewContainer()
	cs := NewCallStack(root.FirstChildPointer())
	cs.CurrentFrame().TemporaryVariables["x"] = NewIntValue(1)

	clone := cs.deepCopy()
	cs.CurrentFrame().TemporaryVariables["x"] = NewIntValue(2)

	v := clone.CurrentFrame().TemporaryVariables["x"]
	n, _ := v.Int()
	if n != 1 {
		t.Fatalf("deepCopy() observed a mutation made after cloning: got %d, want 1", n)
	}
}
