// choice.go — Choice (§3, §4.6): a presented option, alive from the moment
// its ChoicePoint's condition is satisfied until it is consumed by
// Choose or discarded at the next continue.
//
// Grounded on interpreter.go's ParamSpec{Name, Type} — a small immutable
// descriptor struct — generalized to the richer fields ink needs, with the
// explicit reminder from spec.md's Ownership section that Choice holds
// back-references "by path, never by owning link".
package ink

// Choice is a single presented (or invisible-default) option.
type Choice struct {
	Text string

	// SourcePath is the path of the ChoicePoint that generated this choice.
	SourcePath Path

	// ThreadAtGeneration is a snapshot (clone) of the thread the ChoicePoint
	// was reached on. Selecting this choice hands it to
	// SetCurrentThreadByReference, which brings the live thread with the
	// same Index to the top and reinstates this clone only when no live
	// thread has that Index (§4.6 step 1).
	ThreadAtGeneration *Thread

	IsInvisibleDefault bool

	// OriginalChoicePoint is the ChoicePoint object this choice came from
	// (never owned by Choice — a plain back-reference into the Content
	// Tree, per spec.md's Ownership section).
	OriginalChoicePoint *ChoicePoint

	OriginalThreadIndex int

	// TargetPath is where the pointer goes when this choice is chosen.
	TargetPath Path

	// Index is assigned when the choice is generated: the number of visible
	// choices generated before it, which for a visible choice is its
	// position in CurrentChoices, stable until the next continue.
	Index int
}
