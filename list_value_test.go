package ink

import "testing"

type fakeListDefs struct {
	origins map[string]map[string]int
}

func (d *fakeListDefs) ItemValue(originName, itemName string) (int, bool) {
	items, ok := d.origins[originName]
	if !ok {
		return 0, false
	}
	n, ok := items[itemName]
	return n, ok
}

func (d *fakeListDefs) ItemsInRange(originName string, min, max int) []ListItem {
	var out []ListItem
	for name, rank := range d.origins[originName] {
		if rank >= min && rank <= max {
			out = append(out, ListItem{OriginName: originName, ItemName: name})
		}
	}
	return out
}

func (d *fakeListDefs) AllOrigins() []string {
	var out []string
	for o := range d.origins {
		out = append(out, o)
	}
	return out
}

func (d *fakeListDefs) AllItemsIn(originName string) []ListItem {
	var out []ListItem
	for name := range d.origins[originName] {
		out = append(out, ListItem{OriginName: originName, ItemName: name})
	}
	return out
}

func newWeekdayDefs() *fakeListDefs {
	return &fakeListDefs{origins: map[string]map[string]int{
		"Weekday": {"Monday": 1, "Tuesday": 2, "Wednesday": 3},
	}}
}

func itemList(origin string, itemsWithRank map[string]int) *ListValue {
	l := NewEmptyList(origin)
	for name, rank := range itemsWithRank {
		l.Add(ListItem{OriginName: origin, ItemName: name}, rank)
	}
	return l
}

func Test_ListValue_UnionIntersectWithout(t *testing.T) {
	a := itemList("Weekday", map[string]int{"Monday": 1, "Tuesday": 2})
	b := itemList("Weekday", map[string]int{"Tuesday": 2, "Wednesday": 3})

	union := a.Union(b)
	if len(union.Items) != 3 {
		t.Fatalf("Union() has %d items, want 3", len(union.Items))
	}

	inter := a.Intersect(b)
	if len(inter.Items) != 1 || !inter.Contains(ListItem{OriginName: "Weekday", ItemName: "Tuesday"}) {
		t.Fatalf("Intersect() = %v, want just Tuesday", inter)
	}

	diff := a.Without(b)
	if len(diff.Items) != 1 || !diff.Contains(ListItem{OriginName: "Weekday", ItemName: "Monday"}) {
		t.Fatalf("Without() = %v, want just Monday", diff)
	}
}

func Test_ListValue_HasAndHasNot(t *testing.T) {
	a := itemList("Weekday", map[string]int{"Monday": 1, "Tuesday": 2})
	sub := itemList("Weekday", map[string]int{"Monday": 1})
	other := itemList("Weekday", map[string]int{"Wednesday": 3})

	if !a.Has(sub) {
		t.Fatalf("Has() should report true for a subset")
	}
	if a.Has(other) {
		t.Fatalf("Has() should report false when the argument isn't a subset")
	}
	if !a.HasNot(other) {
		t.Fatalf("HasNot() should report true when no items overlap")
	}
	if a.HasNot(sub) {
		t.Fatalf("HasNot() should report false when items do overlap")
	}
}

func Test_ListValue_MinMaxItem(t *testing.T) {
	l := itemList("Weekday", map[string]int{"Monday": 1, "Tuesday": 2, "Wednesday": 3})
	max := l.MaxItem()
	if len(max.Items) != 1 || !max.Contains(ListItem{OriginName: "Weekday", ItemName: "Wednesday"}) {
		t.Fatalf("MaxItem() = %v, want Wednesday", max)
	}
	min := l.MinItem()
	if len(min.Items) != 1 || !min.Contains(ListItem{OriginName: "Weekday", ItemName: "Monday"}) {
		t.Fatalf("MinItem() = %v, want Monday", min)
	}
}

func Test_ListValue_Equals(t *testing.T) {
	a := itemList("Weekday", map[string]int{"Monday": 1})
	b := itemList("Weekday", map[string]int{"Monday": 1})
	c := itemList("Weekday", map[string]int{"Tuesday": 2})
	if !a.Equals(b) {
		t.Fatalf("expected equal lists to compare equal")
	}
	if a.Equals(c) {
		t.Fatalf("did not expect differing lists to compare equal")
	}
}

func Test_ListFromInt_And_ListRange(t *testing.T) {
	defs := newWeekdayDefs()

	single, ok := ListFromInt(defs, "Weekday", 2)
	if !ok || len(single.Items) != 1 || !single.Contains(ListItem{OriginName: "Weekday", ItemName: "Tuesday"}) {
		t.Fatalf("ListFromInt(2) = %v, %v, want just Tuesday", single, ok)
	}

	rng := ListRange(defs, "Weekday", 1, 2)
	if len(rng.Items) != 2 {
		t.Fatalf("ListRange(1,2) has %d items, want 2", len(rng.Items))
	}

	_, ok = ListFromInt(defs, "Weekday", 99)
	if ok {
		t.Fatalf("ListFromInt(99) should fail: no item has that rank")
	}
}

func Test_ListValue_AllPossibleItems(t *testing.T) {
	defs := newWeekdayDefs()
	l := NewEmptyList("Weekday")
	all := l.AllPossibleItems(defs)
	if len(all.Items) != 3 {
		t.Fatalf("AllPossibleItems() has %d items, want 3", len(all.Items))
	}
}

func Test_ListValue_String_IsDeterministicallyOrdered(t *testing.T) {
	l := itemList("Weekday", map[string]int{"Wednesday": 3, "Monday": 1, "Tuesday": 2})
	got := l.String()
	want := "Monday, Tuesday, Wednesday"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
