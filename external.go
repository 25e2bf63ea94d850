// external.go — the external function registry (§3, §4.7): host-provided
// functions bound to names declared EXTERNAL in a story, invoked when the
// step loop encounters an external-call Divert.
//
// Grounded on interpreter.go's RegisterNative/NativeImpl (name -> callback
// registration, with the callback receiving bound arguments rather than a
// raw stack) for the registration shape, and on oracles.go's execOracle
// (a host callback invoked mid-evaluation, with a fallback path when no
// oracle is bound) for the "fall back to interpreted content when nothing
// is bound" rule (§4.7 invariant 3).
package ink

import "fmt"

// ExternalFunc is the host-side implementation of a declared EXTERNAL
// function. It receives the arguments in call order and returns the single
// value to push back onto the Evaluation Stack (NullValue() for functions
// with no meaningful return).
type ExternalFunc func(args []*Value) (*Value, error)

type externalBinding struct {
	fn            ExternalFunc
	lookaheadSafe bool
}

// ExternalRegistry owns every bound external function by name.
type ExternalRegistry struct {
	bound map[string]externalBinding
}

func NewExternalRegistry() *ExternalRegistry {
	return &ExternalRegistry{bound: map[string]externalBinding{}}
}

// Bind registers fn under name. lookaheadSafe mirrors ink's
// BindExternalFunctionGeneral: when true, the function may be invoked
// during newline-lookahead speculative evaluation (§4.4); when false, a
// lookahead call into it is an error (§4.7 invariant 2).
func (r *ExternalRegistry) Bind(name string, fn ExternalFunc, lookaheadSafe bool) {
	r.bound[name] = externalBinding{fn: fn, lookaheadSafe: lookaheadSafe}
}

func (r *ExternalRegistry) Unbind(name string) {
	delete(r.bound, name)
}

func (r *ExternalRegistry) IsBound(name string) bool {
	_, ok := r.bound[name]
	return ok
}

// Call invokes the function bound to name. inLookahead is true when the
// story is speculatively evaluating past a newline (§4.4); calling a
// non-lookahead-safe external function in that state is an error rather
// than a silent skip, since the host function may have side effects the
// speculative evaluation will later discard (§4.7 invariant 2).
func (r *ExternalRegistry) Call(name string, args []*Value, inLookahead bool) (*Value, error) {
	b, ok := r.bound[name]
	if !ok {
		return nil, &SessionError{Kind: ErrMissingExternal, Message: fmt.Sprintf("external function %q is not bound", name)}
	}
	if inLookahead && !b.lookaheadSafe {
		return nil, &SessionError{Kind: ErrExternalNotLookaheadSafe, Message: fmt.Sprintf("external function %q is not safe to call during lookahead", name)}
	}
	return b.fn(args)
}
