// flow.go — Flow and the Flow Registry (§3, §4.8): named, independent
// execution contexts, switchable, sharing globals.
//
// Grounded on modules.go's named module registry: a map keyed by canonical
// name, "resolve by name, create on first use" semantics, and explicit
// illegal-operation guards (modules.go guards import cycles; flows guard
// removing the default/active flow and switching while a background save
// is in flight, §4.8).
package ink

const defaultFlowName = "default"

// Flow bundles everything a story can independently advance: its own
// callstack, output stream, and generated choices. Globals are *not*
// part of a Flow — they live once on the Story Engine and are shared
// across every flow (§4.8: "globals are shared across flows").
type Flow struct {
	Name            string
	CallStack       *CallStack
	OutputStream    *OutputStream
	CurrentChoices  []*Choice
}

func newFlow(name string, root Pointer) *Flow {
	return &Flow{
		Name:         name,
		CallStack:    NewCallStack(root),
		OutputStream: NewOutputStream(),
	}
}

func (f *Flow) deepCopy() *Flow {
	return &Flow{
		Name:           f.Name,
		CallStack:      f.CallStack.deepCopy(),
		OutputStream:   f.OutputStream.clone(),
		CurrentChoices: append([]*Choice(nil), f.CurrentChoices...),
	}
}

// FlowRegistry owns every live Flow and tracks which one is active.
type FlowRegistry struct {
	flows      map[string]*Flow
	currentKey string
	root       Pointer
}

func NewFlowRegistry(root Pointer) *FlowRegistry {
	fr := &FlowRegistry{flows: map[string]*Flow{}, root: root}
	fr.flows[defaultFlowName] = newFlow(defaultFlowName, root)
	fr.currentKey = defaultFlowName
	return fr
}

func (fr *FlowRegistry) Current() *Flow { return fr.flows[fr.currentKey] }

func (fr *FlowRegistry) CurrentName() string { return fr.currentKey }

// AliveFlowNames returns every flow's name in map iteration order, which
// is not stable; "default" is not guaranteed to come first.
func (fr *FlowRegistry) AliveFlowNames() []string {
	names := make([]string, 0, len(fr.flows))
	for n := range fr.flows {
		names = append(names, n)
	}
	return names
}

// Switch creates the flow if absent and makes it active (§4.8).
func (fr *FlowRegistry) Switch(name string) {
	if _, ok := fr.flows[name]; !ok {
		fr.flows[name] = newFlow(name, fr.root)
	}
	fr.currentKey = name
}

// Remove deletes a non-default, non-active flow (§4.8: "remove-flow is
// illegal on the default flow or the active flow").
func (fr *FlowRegistry) Remove(name string) error {
	if name == defaultFlowName {
		return &SessionError{Kind: ErrCannotRemoveDefaultFlow, Message: "cannot remove the default flow"}
	}
	if name == fr.currentKey {
		return &SessionError{Kind: ErrCannotRemoveDefaultFlow, Message: "cannot remove the active flow"}
	}
	if _, ok := fr.flows[name]; !ok {
		return &SessionError{Kind: ErrUnknownFlow, Message: "unknown flow: " + name}
	}
	delete(fr.flows, name)
	return nil
}

func (fr *FlowRegistry) deepCopy() *FlowRegistry {
	nf := &FlowRegistry{flows: make(map[string]*Flow, len(fr.flows)), currentKey: fr.currentKey, root: fr.root}
	for k, v := range fr.flows {
		nf.flows[k] = v.deepCopy()
	}
	return nf
}
