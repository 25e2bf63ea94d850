package ink

import "testing"

func Test_FlowRegistry_StartsOnDefault(t *testing.T) {
	fr := NewFlowRegistry(Pointer{})
	if fr.CurrentName() != defaultFlowName {
		t.Fatalf("CurrentName() = %q, want %q", fr.CurrentName(), defaultFlowName)
	}
	if fr.Current() == nil {
		t.Fatalf("Current() should never be nil")
	}
}

func Test_FlowRegistry_SwitchCreatesOnFirstUse(t *testing.T) {
	fr := NewFlowRegistry(Pointer{})
	fr.Switch("side-quest")
	if fr.CurrentName() != "side-quest" {
		t.Fatalf("CurrentName() = %q, want %q", fr.CurrentName(), "side-quest")
	}
	if len(fr.AliveFlowNames()) != 2 {
		t.Fatalf("AliveFlowNames() has %d entries, want 2 (default + side-quest)", len(fr.AliveFlowNames()))
	}

	fr.Current().CurrentChoices = []*Choice{{Text: "only in side-quest"}}
	fr.Switch(defaultFlowName)
	if len(fr.Current().CurrentChoices) != 0 {
		t.Fatalf("switching back to default should not see side-quest's choices")
	}

	fr.Switch("side-quest")
	if len(fr.Current().CurrentChoices) != 1 {
		t.Fatalf("switching back to side-quest should preserve its prior state")
	}
}

func Test_FlowRegistry_Remove_RejectsDefaultAndActive(t *testing.T) {
	fr := NewFlowRegistry(Pointer{})
	if err := fr.Remove(defaultFlowName); err == nil {
		t.Fatalf("expected an error removing the default flow")
	}

	fr.Switch("alt")
	if err := fr.Remove("alt"); err == nil {
		t.Fatalf("expected an error removing the currently active flow")
	}

	fr.Switch(defaultFlowName)
	if err := fr.Remove("alt"); err != nil {
		t.Fatalf("Remove(alt) error: %v", err)
	}
	if len(fr.AliveFlowNames()) != 1 {
		t.Fatalf("AliveFlowNames() after removal has %d entries, want 1", len(fr.AliveFlowNames()))
	}
}

func Test_FlowRegistry_Remove_RejectsUnknownFlow(t *testing.T) {
	fr := NewFlowRegistry(Pointer{})
	if err := fr.Remove("nope"); err == nil {
		t.Fatalf("expected an error removing a flow that was never created")
	}
}

func Test_FlowRegistry_DeepCopy_IsIndependent(t *testing.T) {
	fr := NewFlowRegistry(Pointer{})
	fr.Current().CurrentChoices = []*Choice{{Text: "a"}}

	clone := fr.deepCopy()
	fr.Current().CurrentChoices = append(fr.Current().CurrentChoices, &Choice{Text: "b"})

	if len(clone.Current().CurrentChoices) != 1 {
		t.Fatalf("deepCopy() observed a mutation made after cloning: got %d choices, want 1", len(clone.Current().CurrentChoices))
	}
}
