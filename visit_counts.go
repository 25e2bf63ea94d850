// visit_counts.go — per-container visit and turn-index counters, under the
// same patch-overlay discipline as Variables State (§3, §9).
//
// Grounded on debug_spans.go's DebuggingMode-gated counter/toggle idiom,
// generalized from "a single debug flag" to "a first-class counter store",
// sharing patch.go's Patch type since both Variables State and Visit Counts
// follow the identical "patch first, base second; merge additively"
// discipline (§9's design note calls this out explicitly).
package ink

// VisitCounts tracks, per container path, how many times that container
// has been visited (and, for turn-index counting, the turn number of the
// most recent visit), with an optional patch overlay for copy-on-write.
type VisitCounts struct {
	visits      map[string]int
	turnIndices map[string]int
	patch       *Patch
	currentTurn int
}

func NewVisitCounts() *VisitCounts {
	return &VisitCounts{visits: map[string]int{}, turnIndices: map[string]int{}}
}

func (vc *VisitCounts) StartPatch() { vc.patch = NewPatch() }
func (vc *VisitCounts) Patch() *Patch { return vc.patch }
func (vc *VisitCounts) SetPatch(p *Patch) { vc.patch = p }

func (vc *VisitCounts) ApplyPatch() {
	if vc.patch == nil {
		return
	}
	for k, v := range vc.patch.VisitCounts {
		vc.visits[k] = v
	}
	for k, v := range vc.patch.TurnIndices {
		vc.turnIndices[k] = v
	}
	vc.patch = nil
}

func (vc *VisitCounts) DiscardPatch() { vc.patch = nil }

// MergeActivePatchOnto folds the active patch's changes onto prior and
// makes prior the active patch — or, when prior is nil, applies the active
// patch straight into the base maps the way ApplyPatch does. Mirrors
// VariablesState.MergeActivePatchOnto; see its comment for why this needs
// to fold onto a prior patch rather than always hit the base.
func (vc *VisitCounts) MergeActivePatchOnto(prior *Patch) {
	if vc.patch == nil {
		vc.patch = prior
		return
	}
	if prior == nil {
		vc.ApplyPatch()
		return
	}
	vc.patch.mergeInto(prior.Globals, prior.VisitCounts, prior.TurnIndices)
	vc.patch = prior
}

// VisitCount reads the count for a container path, patch first, base
// second (§3 invariant, mirrored from VariablesState.Get).
func (vc *VisitCounts) VisitCount(p Path) int {
	key := p.asMapKey()
	if vc.patch != nil {
		if n, ok := vc.patch.GetVisitCount(key); ok {
			return n
		}
	}
	return vc.visits[key]
}

// IncrementVisitCount bumps the count for p by one, landing in the patch
// if one is active.
func (vc *VisitCounts) IncrementVisitCount(p Path) {
	key := p.asMapKey()
	n := vc.VisitCount(p) + 1
	if vc.patch != nil {
		vc.patch.SetVisitCount(key, n)
		return
	}
	vc.visits[key] = n
}

// TurnIndexSince reads how many turns have elapsed since p was last
// visited, or -1 if it has never been visited (ink's TURNS_SINCE()).
func (vc *VisitCounts) TurnIndexSince(p Path) int {
	key := p.asMapKey()
	var last int
	var ok bool
	if vc.patch != nil {
		last, ok = vc.patch.GetTurnIndex(key)
	}
	if !ok {
		last, ok = vc.turnIndices[key]
	}
	if !ok {
		return -1
	}
	return vc.currentTurn - last
}

// RecordTurnIndex stamps p with the current turn number.
func (vc *VisitCounts) RecordTurnIndex(p Path) {
	key := p.asMapKey()
	if vc.patch != nil {
		vc.patch.SetTurnIndex(key, vc.currentTurn)
		return
	}
	vc.turnIndices[key] = vc.currentTurn
}

// NextTurn advances the turn counter — called by Story Engine on each
// choice selection (§4.6 step 3: "increments the turn counter").
func (vc *VisitCounts) NextTurn() { vc.currentTurn++ }

func (vc *VisitCounts) CurrentTurn() int { return vc.currentTurn }

// Reset zeroes every counter (§4.1 `reset-state`, invariant 2).
func (vc *VisitCounts) Reset() {
	vc.visits = map[string]int{}
	vc.turnIndices = map[string]int{}
	vc.patch = nil
	vc.currentTurn = 0
}

func (vc *VisitCounts) deepCopy() *VisitCounts {
	nv := &VisitCounts{
		visits:      make(map[string]int, len(vc.visits)),
		turnIndices: make(map[string]int, len(vc.turnIndices)),
		currentTurn: vc.currentTurn,
	}
	for k, v := range vc.visits {
		nv.visits[k] = v
	}
	for k, v := range vc.turnIndices {
		nv.turnIndices[k] = v
	}
	if vc.patch != nil {
		nv.patch = vc.patch.clone()
	}
	return nv
}
