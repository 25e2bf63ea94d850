package ink

import "testing"

func Test_ExternalRegistry_BindAndCall(t *testing.T) {
	r := NewExternalRegistry()
	r.Bind("double", func(args []*Value) (*Value, error) {
		n, _ := args[0].Int()
		return NewIntValue(n * 2), nil
	}, false)

	if !r.IsBound("double") {
		t.Fatalf("IsBound(double) should be true after Bind")
	}
	v, err := r.Call("double", []*Value{NewIntValue(21)}, false)
	if err != nil {
		t.Fatalf("Call(double) error: %v", err)
	}
	n, _ := v.Int()
	if n != 42 {
		t.Fatalf("Call(double, 21) = %d, want 42", n)
	}
}

func Test_ExternalRegistry_Unbind(t *testing.T) {
	r := NewExternalRegistry()
	r.Bind("noop", func(args []*Value) (*Value, error) { return NullValue(), nil }, true)
	r.Unbind("noop")
	if r.IsBound("noop") {
		t.Fatalf("IsBound(noop) should be false after Unbind")
	}
}

func Test_ExternalRegistry_Call_MissingFunction(t *testing.T) {
	r := NewExternalRegistry()
	_, err := r.Call("missing", nil, false)
	se, ok := err.(*SessionError)
	if !ok || se.Kind != ErrMissingExternal {
		t.Fatalf("Call(missing) error = %v, want ErrMissingExternal", err)
	}
}

func Test_ExternalRegistry_Call_RejectsUnsafeDuringLookahead(t *testing.T) {
	r := NewExternalRegistry()
	r.Bind("sideEffect", func(args []*Value) (*Value, error) { return NullValue(), nil }, false)

	_, err := r.Call("sideEffect", nil, true)
	se, ok := err.(*SessionError)
	if !ok || se.Kind != ErrExternalNotLookaheadSafe {
		t.Fatalf("Call(sideEffect, inLookahead=true) error = %v, want ErrExternalNotLookaheadSafe", err)
	}

	if _, err := r.Call("sideEffect", nil, false); err != nil {
		t.Fatalf("Call(sideEffect, inLookahead=false) error: %v", err)
	}
}

func Test_ExternalRegistry_Call_AllowsLookaheadSafeDuringLookahead(t *testing.T) {
	r := NewExternalRegistry()
	r.Bind("pure", func(args []*Value) (*Value, error) { return NewIntValue(7), nil }, true)

	v, err := r.Call("pure", nil, true)
	if err != nil {
		t.Fatalf("Call(pure, inLookahead=true) error: %v", err)
	}
	n, _ := v.Int()
	if n != 7 {
		t.Fatalf("Call(pure) = %d, want 7", n)
	}
}
