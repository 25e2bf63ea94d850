package ink

import "testing"

func Test_LoadDocument_RejectsVersionTooNew(t *testing.T) {
	doc := []byte(`{"inkVersion": 999, "root": [["^hi",null],"done",null]}`)
	_, err := LoadDocument(doc)
	le, ok := err.(*LoadError)
	if !ok || le.Kind != ErrVersionTooNew {
		t.Fatalf("LoadDocument() error = %v, want ErrVersionTooNew", err)
	}
}

func Test_LoadDocument_RejectsVersionTooOld(t *testing.T) {
	doc := []byte(`{"inkVersion": 1, "root": [["^hi",null],"done",null]}`)
	_, err := LoadDocument(doc)
	le, ok := err.(*LoadError)
	if !ok || le.Kind != ErrVersionTooOld {
		t.Fatalf("LoadDocument() error = %v, want ErrVersionTooOld", err)
	}
}

func Test_LoadDocument_RejectsMissingRoot(t *testing.T) {
	doc := []byte(`{"inkVersion": 21}`)
	_, err := LoadDocument(doc)
	le, ok := err.(*LoadError)
	if !ok || le.Kind != ErrMissingRoot {
		t.Fatalf("LoadDocument() error = %v, want ErrMissingRoot", err)
	}
}

func Test_LoadDocument_SimpleTextAndEnd(t *testing.T) {
	doc := []byte(`{"inkVersion": 21, "root": [["^Hello world!","\n","end",null]]}`)
	d, err := LoadDocument(doc)
	if err != nil {
		t.Fatalf("LoadDocument() error: %v", err)
	}
	if len(d.Root.Content) != 1 {
		t.Fatalf("Root.Content has %d entries, want 1", len(d.Root.Content))
	}
	inner, ok := d.Root.Content[0].(*Container)
	if !ok {
		t.Fatalf("Root.Content[0] is %T, want *Container", d.Root.Content[0])
	}
	if len(inner.Content) != 3 {
		t.Fatalf("inner container has %d entries, want 3", len(inner.Content))
	}
	text, ok := inner.Content[0].(*Value)
	if !ok {
		t.Fatalf("first entry is %T, want *Value", inner.Content[0])
	}
	s, _ := text.Str()
	if s != "Hello world!" {
		t.Fatalf("decoded text = %q, want %q", s, "Hello world!")
	}
	cmd, ok := inner.Content[2].(*ControlCommand)
	if !ok || cmd.Type != CmdEnd {
		t.Fatalf("third entry = %#v, want ControlCommand(end)", inner.Content[2])
	}
}

func Test_LoadDocument_NamedContainerMetadata(t *testing.T) {
	doc := []byte(`{"inkVersion": 21, "root": [
		[["^hi",null], {"flags": 3}],
		{"named": {"knot": 0}}
	]}`)
	d, err := LoadDocument(doc)
	if err != nil {
		t.Fatalf("LoadDocument() error: %v", err)
	}
	knot, ok := d.Root.NamedChild("knot")
	if !ok {
		t.Fatalf("expected a named child \"knot\"")
	}
	c, ok := knot.(*Container)
	if !ok {
		t.Fatalf("named child is %T, want *Container", knot)
	}
	if !c.VisitsShouldBeCounted || !c.TurnIndexShouldBeCounted {
		t.Fatalf("flags = %d, expected both visit and turn counting set", 3)
	}
}

func Test_LoadDocument_Divert(t *testing.T) {
	doc := []byte(`{"inkVersion": 21, "root": [{"->":"knot"}, null]}`)
	d, err := LoadDocument(doc)
	if err != nil {
		t.Fatalf("LoadDocument() error: %v", err)
	}
	div, ok := d.Root.Content[0].(*Divert)
	if !ok {
		t.Fatalf("first entry is %T, want *Divert", d.Root.Content[0])
	}
	if div.TargetPath.String() != "knot" {
		t.Fatalf("divert target = %q, want %q", div.TargetPath.String(), "knot")
	}
}

func Test_LoadDocument_ListDefs(t *testing.T) {
	doc := []byte(`{"inkVersion": 21, "root": [["^hi",null]], "listDefs": {"Weekday": {"Monday": 1, "Tuesday": 2}}}`)
	d, err := LoadDocument(doc)
	if err != nil {
		t.Fatalf("LoadDocument() error: %v", err)
	}
	n, ok := d.ListDefs.ItemValue("Weekday", "Tuesday")
	if !ok || n != 2 {
		t.Fatalf("ItemValue(Weekday, Tuesday) = %d, %v, want 2, true", n, ok)
	}
}

func Test_ParsePathString_ParentAndIndexComponents(t *testing.T) {
	p := parsePathString("^.knot.2")
	if len(p.Components) != 3 {
		t.Fatalf("parsePathString() produced %d components, want 3", len(p.Components))
	}
	if !p.Components[0].IsParent() {
		t.Fatalf("first component should be a parent marker")
	}
	if p.Components[1].Name() != "knot" {
		t.Fatalf("second component = %q, want knot", p.Components[1].Name())
	}
	if !p.Components[2].IsIndex() || p.Components[2].Index() != 2 {
		t.Fatalf("third component = %v, want index 2", p.Components[2])
	}
}
