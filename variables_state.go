// variables_state.go — global variables, the default-globals snapshot,
// change-notification batching, and the patch overlay (§3, §4.2, §4.9).
//
// Grounded on interpreter.go's Env (nearest-binding Get/Set) generalized
// into a two-tier lookup — patch, then base — per spec.md's invariant
// "reads consult patch first, then globals". Change-notification batching
// (observers fire once per name, in first-change order, only for the
// outermost continue) is new relative to the teacher's Env, which has no
// notification concept; it is grounded on the *shape* of
// builtin_concurrency.go's "batch work, flush once" discipline for
// goroutine-safe isolates, applied here to a single-threaded call-depth
// counter instead of a channel.
package ink

// VariablesState holds every global the story program can see.
type VariablesState struct {
	globals        map[string]*Value
	defaultGlobals map[string]*Value

	patch *Patch

	observers []func(name string, v *Value)

	// batchDepth > 0 means change notifications are being collected rather
	// than dispatched immediately; only the outermost Continue call (depth
	// transitioning 0 -> 1) owns the batch (§4.1 Reentrancy).
	batchDepth  int
	batchedKeys []string
	batchedSeen map[string]bool

	listDefs ListDefinitions
}

func NewVariablesState(listDefs ListDefinitions) *VariablesState {
	return &VariablesState{
		globals:        map[string]*Value{},
		defaultGlobals: map[string]*Value{},
		listDefs:       listDefs,
	}
}

// SnapshotDefaults records the current globals as the default snapshot used
// by ResetState (§4.1 `reset-state`, invariant 2). NewStoryEngine calls it
// once, right after runTopLevelDeclarations.
func (vs *VariablesState) SnapshotDefaults() {
	vs.defaultGlobals = make(map[string]*Value, len(vs.globals))
	for k, v := range vs.globals {
		vs.defaultGlobals[k] = v
	}
}

// ObserveChanges registers a change-notification callback; multiple
// observers are supported and called in registration order (§9).
func (vs *VariablesState) ObserveChanges(fn func(name string, v *Value)) {
	vs.observers = append(vs.observers, fn)
}

// StartPatch begins copy-on-write mode: all subsequent global writes land
// in the new patch instead of vs.globals (§4.9).
func (vs *VariablesState) StartPatch() { vs.patch = NewPatch() }

// Patch returns the active patch, or nil if none is in effect.
func (vs *VariablesState) Patch() *Patch { return vs.patch }

// SetPatch installs an already-constructed patch (used when restoring a
// snapshot, §4.4).
func (vs *VariablesState) SetPatch(p *Patch) { vs.patch = p }

// ApplyPatch merges the active patch into the base globals and clears it,
// dispatching change notifications for every variable the patch touched.
func (vs *VariablesState) ApplyPatch() {
	if vs.patch == nil {
		return
	}
	changed := vs.patch.changedOrder
	for k, v := range vs.patch.Globals {
		vs.globals[k] = v
	}
	vs.patch = nil
	for _, name := range changed {
		vs.notify(name, vs.globals[name])
	}
}

// DiscardPatch drops the active patch without merging it.
func (vs *VariablesState) DiscardPatch() { vs.patch = nil }

// MergeActivePatchOnto folds the active patch's changes onto prior and
// makes prior the active patch — or, when prior is nil, applies the active
// patch straight into the base globals the way ApplyPatch does (§4.4: a
// resolved-forward lookahead's writes must land wherever the writes
// beneath it were already going, not skip ahead of an in-flight background
// save's patch, §4.9).
func (vs *VariablesState) MergeActivePatchOnto(prior *Patch) {
	if vs.patch == nil {
		vs.patch = prior
		return
	}
	if prior == nil {
		vs.ApplyPatch()
		return
	}
	cur := vs.patch
	changed := cur.mergeInto(prior.Globals, prior.VisitCounts, prior.TurnIndices)
	for _, name := range changed {
		if !prior.ChangedVariables[name] {
			prior.ChangedVariables[name] = true
			prior.changedOrder = append(prior.changedOrder, name)
		}
	}
	vs.patch = prior
	for _, name := range changed {
		v, _ := vs.Get(name)
		vs.notify(name, v)
	}
}

// BeginBatch increments the reentrancy depth; only the transition from 0
// marks the outermost call (§4.1 "identified by a recursion counter").
func (vs *VariablesState) BeginBatch() (isOutermost bool) {
	vs.batchDepth++
	if vs.batchDepth == 1 {
		vs.batchedKeys = nil
		vs.batchedSeen = map[string]bool{}
		return true
	}
	return false
}

// EndBatch decrements the reentrancy depth; when it returns to 0, queued
// notifications are flushed in first-change order (§5 ordering guarantee b).
func (vs *VariablesState) EndBatch() {
	vs.batchDepth--
	if vs.batchDepth > 0 {
		return
	}
	keys := vs.batchedKeys
	vs.batchedKeys = nil
	vs.batchedSeen = nil
	for _, k := range keys {
		v, _ := vs.Get(k)
		vs.dispatch(k, v)
	}
}

// notify queues (if batching) or dispatches (if not) a single change.
func (vs *VariablesState) notify(name string, v *Value) {
	if vs.batchDepth > 0 {
		if !vs.batchedSeen[name] {
			vs.batchedSeen[name] = true
			vs.batchedKeys = append(vs.batchedKeys, name)
		}
		return
	}
	vs.dispatch(name, v)
}

func (vs *VariablesState) dispatch(name string, v *Value) {
	for _, obs := range vs.observers {
		func() {
			defer func() { _ = recover() }() // one bad observer must not abort the batch (§9)
			obs(name, v)
		}()
	}
}

// SetGlobal writes a global, landing in the patch if one is active
// (§4.2 VariableAssignment: "if global and a patch exists, write to patch
// and mark changed"). Observers hear about a patched write when the patch
// is merged (ApplyPatch / MergeActivePatchOnto), not here.
func (vs *VariablesState) SetGlobal(name string, v *Value) {
	if vs.patch != nil {
		vs.patch.SetGlobal(name, v)
		return
	}
	vs.globals[name] = v
	vs.notify(name, v)
}

// DeclareGlobal defines a brand-new global. Fails if the name already
// exists (§4.2).
func (vs *VariablesState) DeclareGlobal(name string, v *Value) error {
	if _, exists := vs.Get(name); exists {
		return newRuntimeError(ErrUnresolvedVariable, "global already declared: "+name)
	}
	vs.SetGlobal(name, v)
	return nil
}

// Get reads a global, patch first then base (§3 invariant).
func (vs *VariablesState) Get(name string) (*Value, bool) {
	if vs.patch != nil {
		if v, ok := vs.patch.GetGlobal(name); ok {
			return v, true
		}
	}
	v, ok := vs.globals[name]
	return v, ok
}

// ResetState restores globals to the default-globals snapshot and drops
// any active patch (§4.1 `reset-state`, invariant 2).
func (vs *VariablesState) ResetState() {
	vs.globals = make(map[string]*Value, len(vs.defaultGlobals))
	for k, v := range vs.defaultGlobals {
		vs.globals[k] = v
	}
	vs.patch = nil
}

// deepCopy clones globals (and the active patch, if any) for use by a
// state snapshot or background-save clone (§4.4, §4.9).
func (vs *VariablesState) deepCopy() *VariablesState {
	nv := &VariablesState{
		globals:        make(map[string]*Value, len(vs.globals)),
		defaultGlobals: vs.defaultGlobals, // immutable once snapshotted; share
		observers:      vs.observers,       // callback identities are shared
		listDefs:       vs.listDefs,
	}
	for k, v := range vs.globals {
		nv.globals[k] = v
	}
	if vs.patch != nil {
		nv.patch = vs.patch.clone()
	}
	return nv
}
