// path.go — Path and Pointer: addressing into the Content Tree.
//
// A Path generalizes spans.go's NodePath (a slice of child indexes forming
// a stable structural address) with the two extra things ink paths need:
// named components (a container can be addressed by name, not just by
// position) and an explicit "parent" marker component for relative paths
// that walk upward before walking down. Path.asMapKey reuses spans.go's
// pathKey technique (serialize to a "." joined string) so that visit-count
// and turn-index maps can key on Path the way SpanIndex keys on NodePath.
package ink

import (
	"strconv"
	"strings"
)

// Component is one step of a Path: either a name, a nonnegative index, or
// the special "parent" marker (walk up one level without naming a child).
type Component struct {
	name      string
	index     int
	isIndex   bool
	isParent  bool
}

// NamedComponent addresses a child by its name in the owning container's
// named-content map.
func NamedComponent(name string) Component { return Component{name: name} }

// IndexComponent addresses a child by its position in the owning
// container's content list.
func IndexComponent(i int) Component { return Component{index: i, isIndex: true} }

// ParentComponent walks up one level ("^" in ink's own path syntax).
func ParentComponent() Component { return Component{isParent: true} }

func (c Component) IsParent() bool { return c.isParent }
func (c Component) IsIndex() bool  { return c.isIndex }
func (c Component) Name() string   { return c.name }
func (c Component) Index() int     { return c.index }

func (c Component) Equals(o Component) bool {
	if c.isParent || o.isParent {
		return c.isParent == o.isParent
	}
	if c.isIndex != o.isIndex {
		return false
	}
	if c.isIndex {
		return c.index == o.index
	}
	return c.name == o.name
}

func (c Component) String() string {
	switch {
	case c.isParent:
		return "^"
	case c.isIndex:
		return strconv.Itoa(c.index)
	default:
		return c.name
	}
}

// Path is an ordered sequence of Components, optionally relative (starting
// with one or more ParentComponent markers, or simply not anchored at the
// content tree's root). Paths compose and compare structurally.
type Path struct {
	Components []Component
	IsRelative bool
}

// EmptyPath is the zero-length, non-relative path: the content root itself.
var EmptyPath = Path{}

func (p Path) String() string {
	if len(p.Components) == 0 {
		if p.IsRelative {
			return "."
		}
		return ""
	}
	parts := make([]string, len(p.Components))
	for i, c := range p.Components {
		parts[i] = c.String()
	}
	prefix := ""
	if p.IsRelative {
		prefix = "."
	}
	return prefix + strings.Join(parts, ".")
}

// Head returns the first component and whether the path is non-empty.
func (p Path) Head() (Component, bool) {
	if len(p.Components) == 0 {
		return Component{}, false
	}
	return p.Components[0], true
}

// Tail returns every component after the first.
func (p Path) Tail() Path {
	if len(p.Components) <= 1 {
		return Path{IsRelative: p.IsRelative}
	}
	return Path{Components: p.Components[1:], IsRelative: p.IsRelative}
}

func (p Path) Last() (Component, bool) {
	if len(p.Components) == 0 {
		return Component{}, false
	}
	return p.Components[len(p.Components)-1], true
}

// PathByAppendingComponent returns a new Path with c appended.
func (p Path) PathByAppendingComponent(c Component) Path {
	comps := make([]Component, len(p.Components)+1)
	copy(comps, p.Components)
	comps[len(p.Components)] = c
	return Path{Components: comps, IsRelative: p.IsRelative}
}

// PathByAppendingPath concatenates two paths, resolving leading
// ParentComponents in `other` against the tail of `p` the way ink's own
// relative-divert-target resolution works: each leading "^" in other drops
// one trailing component of p before the remainder of other is appended.
func (p Path) PathByAppendingPath(other Path) Path {
	result := append([]Component(nil), p.Components...)
	rest := other.Components
	for len(rest) > 0 && rest[0].IsParent() {
		if len(result) > 0 {
			result = result[:len(result)-1]
		}
		rest = rest[1:]
	}
	result = append(result, rest...)
	return Path{Components: result, IsRelative: p.IsRelative && other.IsRelative}
}

// Equals compares two paths structurally, component by component.
func (p Path) Equals(o Path) bool {
	if p.IsRelative != o.IsRelative {
		return false
	}
	if len(p.Components) != len(o.Components) {
		return false
	}
	for i := range p.Components {
		if !p.Components[i].Equals(o.Components[i]) {
			return false
		}
	}
	return true
}

// asMapKey serializes the path into a compact string suitable as a map key
// for visit-count/turn-index bookkeeping — the same trick spans.go's
// pathKey uses for NodePath, generalized to allow name components.
func (p Path) asMapKey() string {
	var b strings.Builder
	if p.IsRelative {
		b.WriteByte('.')
	}
	for i, c := range p.Components {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(c.String())
	}
	return b.String()
}

// reverseComponents reverses a Component slice in place — used by
// objectBase.Path() in content.go, which accumulates components walking
// from leaf to root and must flip them to root-to-leaf order.
func reverseComponents(comps []Component) {
	for i, j := 0, len(comps)-1; i < j; i, j = i+1, j-1 {
		comps[i], comps[j] = comps[j], comps[i]
	}
}

// CommonAncestorDepth returns how many leading components p and o share,
// i.e. the depth at which the two paths diverge.
func CommonAncestorDepth(p, o Path) int {
	n := len(p.Components)
	if len(o.Components) < n {
		n = len(o.Components)
	}
	i := 0
	for i < n && p.Components[i].Equals(o.Components[i]) {
		i++
	}
	return i
}

// Pointer is a cursor into the Content Tree: a container plus an index into
// its content list. Index == -1 means "the container itself" (used when a
// divert targets a container with no specific child, e.g. a knot's root).
type Pointer struct {
	Container *Container
	Index     int
}

// NullPointer is the "nowhere" pointer, used when a thread/flow has nothing
// left to execute (content done, or about to trigger implicit return).
var NullPointer = Pointer{Container: nil, Index: -1}

func (p Pointer) IsNull() bool { return p.Container == nil }

// Resolve yields the object the pointer addresses: the indexed child, the
// container itself (Index == -1), or nil if Index runs past the end.
func (p Pointer) Resolve() RuntimeObject {
	if p.Container == nil {
		return nil
	}
	if p.Index == -1 {
		return p.Container
	}
	if p.Index < 0 || p.Index >= len(p.Container.Content) {
		return nil
	}
	return p.Container.Content[p.Index]
}

// Path computes the absolute Path this pointer denotes, used when pushing a
// return pointer or a choice target onto the callstack.
func (p Pointer) Path() Path {
	if p.Container == nil {
		return EmptyPath
	}
	if p.Index >= 0 {
		return p.Container.Path().PathByAppendingComponent(IndexComponent(p.Index))
	}
	return p.Container.Path()
}
