// container.go — Container: the ordered, addressable node of the Content
// Tree (§3). A Container is simultaneously a code block and, when named, a
// unit addressable from anywhere else in the story (a knot, a stitch, a
// gather).
//
// The named/positional duality mirrors types.go's MapObject, which pairs an
// `Entries map[string]Value` lookup table with a `Keys []string` slice that
// preserves insertion order. Here, `Content` plays the role of `Keys`
// (the order content executes in) and `named` plays the role of `Entries`
// (O(1) lookup by name) — except every named child also has a position in
// Content, since execution always proceeds positionally; the name is only
// an alternate address.
package ink

// Container is an ordered sequence of children plus a keyed mapping of
// named children (a strict subset of Content, addressable by name).
type Container struct {
	objectBase

	Content []RuntimeObject
	named   map[string]RuntimeObject

	// OwnName, when non-empty, is this container's own name as seen by its
	// parent — set via AddNamedContent on the parent, mirrored here for
	// convenience (diagnostics, such as trace.go's object descriptions).
	OwnName string

	VisitsShouldBeCounted    bool
	TurnIndexShouldBeCounted bool
	CountingAtStartOnly      bool
}

// NewContainer returns an empty, unattached container.
func NewContainer() *Container {
	c := &Container{named: map[string]RuntimeObject{}}
	attachSelf(&c.objectBase, c)
	return c
}

// AddContent appends obj to the content list and records its positional
// identity so Path() can address it later. obj must not already have a
// parent (containers own their children; see spec.md's Ownership section).
func (c *Container) AddContent(obj RuntimeObject) {
	obj.setOwnIndex(len(c.Content))
	obj.SetParent(c)
	c.Content = append(c.Content, obj)
}

// AddNamedContent appends obj to the content list (it is still reachable
// positionally during execution) and additionally indexes it by name so
// diverts can target it directly.
func (c *Container) AddNamedContent(name string, obj RuntimeObject) {
	obj.setOwnName(name)
	if sub, ok := obj.(*Container); ok {
		sub.OwnName = name
	}
	c.AddContent(obj)
	c.named[name] = obj
}

// NamedChild looks up a direct named child.
func (c *Container) NamedChild(name string) (RuntimeObject, bool) {
	obj, ok := c.named[name]
	return obj, ok
}

// FirstChildPointer returns the pointer to this container's first piece of
// content, descending into nested containers with no content of their own
// is NOT performed here — that's the step loop's job (§4.1 step (2)).
func (c *Container) FirstChildPointer() Pointer {
	if len(c.Content) == 0 {
		return Pointer{Container: c, Index: -1}
	}
	return Pointer{Container: c, Index: 0}
}

// ContentAtPath resolves a Path (absolute, rooted at c) to a Pointer,
// walking one component at a time. Absolute paths are resolved from the
// story root; relative paths (leading ParentComponents) are resolved by
// the caller first climbing the callstack's current container before
// calling this with the already-adjusted remainder.
func (c *Container) ContentAtPath(p Path) (Pointer, error) {
	cur := c
	comps := p.Components
	for i := 0; i < len(comps); i++ {
		comp := comps[i]
		last := i == len(comps)-1

		if comp.IsParent() {
			parent, _ := cur.Parent().(*Container)
			if parent == nil {
				return NullPointer, &RuntimeErrorDetail{Kind: ErrInvalidDivertTarget, Message: "path climbs above root: " + p.String()}
			}
			cur = parent
			continue
		}

		if comp.IsIndex() {
			if last {
				return Pointer{Container: cur, Index: comp.Index()}, nil
			}
			if comp.Index() < 0 || comp.Index() >= len(cur.Content) {
				return NullPointer, &RuntimeErrorDetail{Kind: ErrInvalidDivertTarget, Message: "index out of range in path: " + p.String()}
			}
			next, ok := cur.Content[comp.Index()].(*Container)
			if !ok {
				return NullPointer, &RuntimeErrorDetail{Kind: ErrInvalidDivertTarget, Message: "path component is not a container: " + p.String()}
			}
			cur = next
			continue
		}

		// Named component.
		obj, ok := cur.NamedChild(comp.Name())
		if !ok {
			return NullPointer, &RuntimeErrorDetail{Kind: ErrInvalidDivertTarget, Message: "unresolved named path component %s in " + p.String(), Name: comp.Name()}
		}
		if last {
			if sub, ok := obj.(*Container); ok {
				return Pointer{Container: sub, Index: -1}, nil
			}
			return Pointer{Container: cur, Index: obj.ownIndex()}, nil
		}
		sub, ok := obj.(*Container)
		if !ok {
			return NullPointer, &RuntimeErrorDetail{Kind: ErrInvalidDivertTarget, Message: "path component is not a container: " + p.String()}
		}
		cur = sub
	}
	return Pointer{Container: cur, Index: -1}, nil
}
