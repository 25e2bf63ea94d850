// content.go — the Content Tree's runtime object model.
//
// Every addressable thing in a compiled story is a RuntimeObject: a node
// that knows its parent (for path resolution) and can report its own Path.
// The variant set is closed (§3 of the spec): Container, Value, Divert,
// ControlCommand, VariableReference, VariableAssignment, NativeFunctionCall,
// ChoicePoint, Tag, Glue. Dispatch over the set is a type switch in
// story_step.go, not virtual method overrides — the class hierarchy in the
// original runtime becomes a tagged variant here (see DESIGN.md).
//
// Data-carrying variants (the various Value kinds) share one struct with a
// Kind tag and an `any` payload, mirroring the teacher's Value{Tag, Data}
// carrier. Flow-control variants get their own struct each, since they are
// switched on individually in the step loop and benefit from named fields
// rather than an untyped payload.
package ink

import "fmt"

// RuntimeObject is the capability set every content-tree node satisfies:
// it can resolve its own Path by walking its Parent chain, and it
// participates in visit-count bookkeeping by virtue of being addressable.
type RuntimeObject interface {
	Parent() RuntimeObject
	SetParent(RuntimeObject)
	Path() Path

	// ownName and ownIndex are set by the Container that holds this object
	// and are used to compute Path lazily without storing it redundantly.
	ownName() (string, bool)
	ownIndex() int
	setOwnName(string)
	setOwnIndex(int)
}

// objectBase is embedded by every RuntimeObject variant. It carries the
// parent link and positional identity used for Path computation, analogous
// to how the teacher's Env carries a parent link for lexical resolution.
type objectBase struct {
	parent RuntimeObject
	self   RuntimeObject
	name   string
	index  int
	named  bool
}

func (b *objectBase) Parent() RuntimeObject     { return b.parent }
func (b *objectBase) SetParent(p RuntimeObject) { b.parent = p }
func (b *objectBase) ownName() (string, bool)   { return b.name, b.named }
func (b *objectBase) ownIndex() int             { return b.index }
func (b *objectBase) setOwnName(n string)       { b.name, b.named = n, true }
func (b *objectBase) setOwnIndex(i int)         { b.index = i }

// Path walks the parent chain, accumulating one Component per level, until
// it reaches a nil parent (the root container). Named children contribute a
// NamedComponent; positional children contribute an IndexComponent. This is
// the general form of spans.go's NodePath-by-child-index addressing,
// extended with names the way ink's compiled containers are addressed.
func (b *objectBase) Path() Path {
	var comps []Component
	var cur RuntimeObject = holderOf(b)
	for cur != nil {
		p := cur.Parent()
		if p == nil {
			break
		}
		if name, ok := cur.ownName(); ok {
			comps = append(comps, NamedComponent(name))
		} else {
			comps = append(comps, IndexComponent(cur.ownIndex()))
		}
		cur = p
	}
	reverseComponents(comps)
	return Path{Components: comps}
}

// holderOf lets Path() above recurse starting from "this" object even though
// objectBase itself doesn't know which concrete RuntimeObject wraps it; the
// concrete wrapper is threaded through via the self field set by attach.
func holderOf(b *objectBase) RuntimeObject {
	if b.self != nil {
		return b.self
	}
	return nil
}

// attachSelf is called once by every constructor so objectBase.Path can
// start its walk at the concrete wrapping object rather than at the
// embedded struct (Go has no implicit "self" for embedded types).
func attachSelf(b *objectBase, self RuntimeObject) { b.self = self }

// ValueKind enumerates the data-carrying variants of Value. This mirrors
// types.go's ValueTag, restricted to the kinds §3 assigns to "Value<T>".
type ValueKind int

const (
	ValueInt ValueKind = iota
	ValueFloat
	ValueString
	ValueBool
	ValueDivertTarget
	ValueVariablePointer
	ValueList
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "Int"
	case ValueFloat:
		return "Float"
	case ValueString:
		return "String"
	case ValueBool:
		return "Bool"
	case ValueDivertTarget:
		return "DivertTarget"
	case ValueVariablePointer:
		return "VariablePointer"
	case ValueList:
		return "List"
	default:
		return "Unknown"
	}
}

// VariablePointerRef is the payload of a ValueVariablePointer: a reference
// to a named variable, optionally resolved to the callstack depth it was
// found at (ContextIndex == -1 means "not yet resolved").
type VariablePointerRef struct {
	Name         string
	ContextIndex int
}

// Value is the universal data carrier for the Content Tree and the
// Evaluation Stack, mirroring types.go's Value{Tag, Data}: a discriminant
// plus an `any` payload whose concrete type is determined by Kind.
type Value struct {
	objectBase
	Kind ValueKind
	Data any
}

func newValue(kind ValueKind, data any) *Value {
	v := &Value{Kind: kind, Data: data}
	attachSelf(&v.objectBase, v)
	return v
}

func NewIntValue(n int) *Value              { return newValue(ValueInt, n) }
func NewFloatValue(f float64) *Value        { return newValue(ValueFloat, f) }
func NewStringValue(s string) *Value        { return newValue(ValueString, s) }
func NewBoolValue(b bool) *Value            { return newValue(ValueBool, b) }
func NewDivertTargetValue(p Path) *Value    { return newValue(ValueDivertTarget, p) }
func NewListValue(l *ListValue) *Value      { return newValue(ValueList, l) }
func NewVariablePointerValue(name string, contextIndex int) *Value {
	return newValue(ValueVariablePointer, VariablePointerRef{Name: name, ContextIndex: contextIndex})
}

// Null is represented as a Value whose Kind is ValueInt and whose Data is
// the nullMarker sentinel — matching how the Evaluation Stack needs a
// "no value" placeholder for external-function calls with no return value.
// A dedicated sentinel avoids accidental collision with Int(0).
type nullMarker struct{}

var nullSentinel = nullMarker{}

// NullValue constructs the placeholder pushed for external calls that
// return nothing (§4.7).
func NullValue() *Value { return newValue(ValueInt, nullSentinel) }

func (v *Value) IsNull() bool {
	_, ok := v.Data.(nullMarker)
	return ok
}

func (v *Value) Int() (int, bool) {
	n, ok := v.Data.(int)
	return n, ok
}
func (v *Value) Float() (float64, bool) {
	f, ok := v.Data.(float64)
	return f, ok
}
func (v *Value) Str() (string, bool) {
	s, ok := v.Data.(string)
	return s, ok
}
func (v *Value) Bool() (bool, bool) {
	b, ok := v.Data.(bool)
	return b, ok
}
func (v *Value) DivertTarget() (Path, bool) {
	p, ok := v.Data.(Path)
	return p, ok
}
func (v *Value) List() (*ListValue, bool) {
	l, ok := v.Data.(*ListValue)
	return l, ok
}
func (v *Value) VariablePointer() (VariablePointerRef, bool) {
	r, ok := v.Data.(VariablePointerRef)
	return r, ok
}

// ContentString renders v the way it appears in story output when an
// expression's result lands on the output stream (CmdEvalOutput, string
// interpolation): numbers in their plain decimal form, strings unquoted,
// booleans as "true"/"false". Unlike String, this is never used for
// debugging — it is the actual text a reader sees.
func (v *Value) ContentString() string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind {
	case ValueInt:
		return fmt.Sprintf("%d", v.Data.(int))
	case ValueFloat:
		return fmt.Sprintf("%g", v.Data.(float64))
	case ValueString:
		return v.Data.(string)
	case ValueBool:
		return fmt.Sprintf("%v", v.Data.(bool))
	case ValueList:
		return v.Data.(*ListValue).String()
	default:
		return ""
	}
}

// String renders a debug form; never used for story output (that's
// output_stream.go's job) — only for trace.go and test failure messages,
// mirroring types.go's Value.String doc comment disclaimer.
func (v *Value) String() string {
	if v.IsNull() {
		return "null"
	}
	switch v.Kind {
	case ValueInt:
		return fmt.Sprintf("%d", v.Data.(int))
	case ValueFloat:
		return fmt.Sprintf("%g", v.Data.(float64))
	case ValueString:
		return fmt.Sprintf("%q", v.Data.(string))
	case ValueBool:
		return fmt.Sprintf("%v", v.Data.(bool))
	case ValueDivertTarget:
		return "-> " + v.Data.(Path).String()
	case ValueVariablePointer:
		return "varptr:" + v.Data.(VariablePointerRef).Name
	case ValueList:
		return v.Data.(*ListValue).String()
	default:
		return "<value>"
	}
}
