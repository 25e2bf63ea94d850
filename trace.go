// trace.go — step tracing, gated by an environment toggle.
//
// Grounded on debug_spans.go's DebuggingMode: a single public bool read
// from an environment variable at process start, hosts may also flip it
// programmatically, and the hot path (story_step.go's step) only pays for
// the trace write when the flag is set.
package ink

import (
	"fmt"
	"io"
	"os"
)

// DebugMode controls whether StoryEngine.step emits a trace line per
// content object executed. Initialized from INK_DEBUG at process start;
// hosts and tests may override it directly.
var DebugMode = os.Getenv("INK_DEBUG") != ""

// TraceWriter receives trace lines when DebugMode is true. Defaults to
// stderr; tests may redirect it to capture output.
var TraceWriter io.Writer = os.Stderr

// traceStep writes one line describing the object about to execute at ptr.
// story_step.go's step calls it on every step; it writes only when
// DebugMode is set.
func traceStep(flowName string, ptr Pointer, obj RuntimeObject) {
	if !DebugMode {
		return
	}
	fmt.Fprintf(TraceWriter, "[%s] %s: %s\n", flowName, ptr.Path().String(), describeObject(obj))
}

func describeObject(obj RuntimeObject) string {
	switch v := obj.(type) {
	case *Value:
		return "value " + v.String()
	case *ControlCommand:
		return "control " + v.Type.String()
	case *Divert:
		return "divert -> " + v.TargetPath.String()
	case *VariableReference:
		if v.HasPathForCount {
			return "read-count " + v.PathForCount.String()
		}
		return "read-var " + v.Name
	case *VariableAssignment:
		return "assign " + v.VariableName
	case *NativeFunctionCall:
		return "native " + v.Name
	case *ChoicePoint:
		return "choice-point -> " + v.PathOnChoice.String()
	case *Tag:
		return "tag #" + v.Text
	case *Glue:
		return "glue"
	case *Container:
		return "container " + v.OwnName
	default:
		return fmt.Sprintf("%T", obj)
	}
}

// DumpCallStack renders a compact human-readable view of a flow's
// callstack, for REPL/debug use (cmd/inkrun's "/stack" command).
func DumpCallStack(w io.Writer, cs *CallStack) {
	for ti := 0; ti < cs.ThreadCount(); ti++ {
		th := cs.threads[ti]
		fmt.Fprintf(w, "thread %d:\n", th.Index)
		for fi, f := range th.Frames {
			fmt.Fprintf(w, "  frame %d [%s] @ %s\n", fi, frameTypeName(f.Type), f.CurrentPointer.Path().String())
		}
	}
}

func frameTypeName(t FrameType) string {
	switch t {
	case FrameTunnel:
		return "tunnel"
	case FrameFunction:
		return "function"
	default:
		return "none"
	}
}
