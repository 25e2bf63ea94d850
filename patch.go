// patch.go — the copy-on-write overlay (§3, §9) shared by Variables State
// and Visit/Turn Counts.
//
// Grounded on builtin_concurrency.go's deep-clone-with-a-seen-map
// discipline, generalized here from "clone an entire Env graph" to "record
// only what changed since the base state was captured". A Patch is the
// mergeable diff: reads consult the patch first, then the base; merging
// walks the patch's maps once and writes them into the base's; discarding
// a patch simply drops the struct.
package ink

// Patch holds tentative global-variable and visit/turn-count changes above
// a base VariablesState/VisitCounts. See §4.9 for the background-save
// lifecycle that creates and merges patches.
type Patch struct {
	Globals          map[string]*Value
	VisitCounts      map[string]int
	TurnIndices      map[string]int
	ChangedVariables map[string]bool

	// changedOrder preserves first-change order, the way types.go's
	// MapObject pairs an Entries map with an ordered Keys slice — needed
	// here so change-notifications can be dispatched "in first-change
	// order" per spec.md §5's ordering guarantee (b).
	changedOrder []string
}

func NewPatch() *Patch {
	return &Patch{
		Globals:          map[string]*Value{},
		VisitCounts:      map[string]int{},
		TurnIndices:      map[string]int{},
		ChangedVariables: map[string]bool{},
	}
}

func (p *Patch) SetGlobal(name string, v *Value) {
	p.Globals[name] = v
	if !p.ChangedVariables[name] {
		p.changedOrder = append(p.changedOrder, name)
	}
	p.ChangedVariables[name] = true
}

func (p *Patch) GetGlobal(name string) (*Value, bool) {
	v, ok := p.Globals[name]
	return v, ok
}

func (p *Patch) SetVisitCount(pathKey string, n int) { p.VisitCounts[pathKey] = n }
func (p *Patch) GetVisitCount(pathKey string) (int, bool) {
	n, ok := p.VisitCounts[pathKey]
	return n, ok
}

func (p *Patch) SetTurnIndex(pathKey string, n int) { p.TurnIndices[pathKey] = n }
func (p *Patch) GetTurnIndex(pathKey string) (int, bool) {
	n, ok := p.TurnIndices[pathKey]
	return n, ok
}

// clone deep-copies a Patch, used when a newline-lookahead snapshot is
// taken while a patch is already live (§4.4 step 1: "patch is started
// fresh on the live state" — the snapshot keeps the *old* patch contents
// frozen by cloning rather than sharing).
func (p *Patch) clone() *Patch {
	np := NewPatch()
	for k, v := range p.Globals {
		np.Globals[k] = v
	}
	for k, v := range p.VisitCounts {
		np.VisitCounts[k] = v
	}
	for k, v := range p.TurnIndices {
		np.TurnIndices[k] = v
	}
	for k, v := range p.ChangedVariables {
		np.ChangedVariables[k] = v
	}
	np.changedOrder = append(np.changedOrder, p.changedOrder...)
	return np
}

// mergeInto additively applies p's entries onto base's maps (§3: "Merges
// additively into the base").
func (p *Patch) mergeInto(globals map[string]*Value, visitCounts, turnIndices map[string]int) []string {
	for k, v := range p.Globals {
		globals[k] = v
	}
	for k, v := range p.VisitCounts {
		visitCounts[k] = v
	}
	for k, v := range p.TurnIndices {
		turnIndices[k] = v
	}
	return append([]string(nil), p.changedOrder...)
}
