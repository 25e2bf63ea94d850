// list_value.go — List Value Arithmetic (§3, §4.2): set-valued,
// bitflag-style values with named origins and ordered items.
//
// Grounded on types.go's structural comparison helpers (equalS/equalNode,
// compare-by-structural-identity) generalized from type S-expressions to
// list items, and on modules.go's "sort exported keys lexicographically for
// deterministic order" idiom, applied here to tie-break iteration order
// when multiple origins contribute items with the same numeric value.
package ink

import "sort"

// ListItem is one member of a list's defining set: a name scoped to the
// named origin list it came from. Its integer rank is not stored here; a
// ListValue keeps it alongside the item.
type ListItem struct {
	OriginName string
	ItemName   string
}

func (li ListItem) Equals(o ListItem) bool {
	return li.OriginName == o.OriginName && li.ItemName == o.ItemName
}

func (li ListItem) fullName() string {
	if li.OriginName == "" {
		return li.ItemName
	}
	return li.OriginName + "." + li.ItemName
}

// ListDefinitions is the external collaborator that stores named list
// definitions and their item->rank assignments (§1 Non-goals: "list
// definition storage" is specified only by this query interface).
type ListDefinitions interface {
	// ItemValue returns the integer rank for a named origin+item pair.
	ItemValue(originName, itemName string) (int, bool)
	// ItemsInRange returns every item whose rank is in [min, max] for a
	// given origin, used by the "listRange" control command.
	ItemsInRange(originName string, min, max int) []ListItem
	// AllOrigins returns every known origin list's name, used by
	// "listFromInt" lookups that don't pin an origin.
	AllOrigins() []string
	// AllItemsIn returns every item defined for an origin.
	AllItemsIn(originName string) []ListItem
}

// ListValue is a set of ListItems, each carrying its own integer rank
// (from its origin's definition), forming a bitflag-like structure without
// an actual bitmask — sets are compared and combined by item identity, not
// by numeric value, except where §4.2 specifies numeric semantics
// (ordering, range selection).
type ListValue struct {
	Items map[ListItem]int // item -> rank, duplicated from the origin for fast comparisons
	// OriginNames records which origin lists this value is allowed to draw
	// new items from (relevant for listFromInt / listRandom when the value
	// is currently empty and has no items to infer an origin from).
	OriginNames []string
}

func NewEmptyList(origins ...string) *ListValue {
	return &ListValue{Items: map[ListItem]int{}, OriginNames: append([]string(nil), origins...)}
}

func NewListFromItems(items map[ListItem]int) *ListValue {
	lv := &ListValue{Items: map[ListItem]int{}}
	for k, v := range items {
		lv.Items[k] = v
	}
	return lv
}

func (l *ListValue) Add(item ListItem, rank int) {
	l.Items[item] = rank
}

func (l *ListValue) Contains(item ListItem) bool {
	_, ok := l.Items[item]
	return ok
}

// sortedItems returns items ordered by rank, tie-broken by origin name
// then item name lexicographically — the deterministic-order idiom from
// modules.go's sorted export keys.
func (l *ListValue) sortedItems() []ListItem {
	items := make([]ListItem, 0, len(l.Items))
	for it := range l.Items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		ri, rj := l.Items[items[i]], l.Items[items[j]]
		if ri != rj {
			return ri < rj
		}
		if items[i].OriginName != items[j].OriginName {
			return items[i].OriginName < items[j].OriginName
		}
		return items[i].ItemName < items[j].ItemName
	})
	return items
}

func (l *ListValue) String() string {
	items := l.sortedItems()
	s := ""
	for i, it := range items {
		if i > 0 {
			s += ", "
		}
		s += it.ItemName
	}
	return s
}

// Union implements ink's "+" / "||" list operator: set union (§4.2).
func (l *ListValue) Union(o *ListValue) *ListValue {
	r := NewEmptyList(l.OriginNames...)
	for k, v := range l.Items {
		r.Items[k] = v
	}
	for k, v := range o.Items {
		r.Items[k] = v
	}
	return r
}

// Intersect implements "^" (set intersection, §4.2).
func (l *ListValue) Intersect(o *ListValue) *ListValue {
	r := NewEmptyList(l.OriginNames...)
	for k, v := range l.Items {
		if o.Contains(k) {
			r.Items[k] = v
		}
	}
	return r
}

// Without implements "-" (set difference).
func (l *ListValue) Without(o *ListValue) *ListValue {
	r := NewEmptyList(l.OriginNames...)
	for k, v := range l.Items {
		if !o.Contains(k) {
			r.Items[k] = v
		}
	}
	return r
}

// Has implements the "has" native function: o is a subset of l.
func (l *ListValue) Has(o *ListValue) bool {
	for k := range o.Items {
		if !l.Contains(k) {
			return false
		}
	}
	return true
}

// HasNot implements "hasnt": none of o's items appear in l.
func (l *ListValue) HasNot(o *ListValue) bool {
	for k := range o.Items {
		if l.Contains(k) {
			return false
		}
	}
	return true
}

func (l *ListValue) Equals(o *ListValue) bool {
	if len(l.Items) != len(o.Items) {
		return false
	}
	for k, v := range l.Items {
		if ov, ok := o.Items[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// MaxItem / MinItem implement ink's LIST_MAX/LIST_MIN: the single item
// with the highest/lowest rank, as a singleton list.
func (l *ListValue) MaxItem() *ListValue {
	items := l.sortedItems()
	if len(items) == 0 {
		return NewEmptyList(l.OriginNames...)
	}
	last := items[len(items)-1]
	r := NewEmptyList(l.OriginNames...)
	r.Items[last] = l.Items[last]
	return r
}

func (l *ListValue) MinItem() *ListValue {
	items := l.sortedItems()
	if len(items) == 0 {
		return NewEmptyList(l.OriginNames...)
	}
	first := items[0]
	r := NewEmptyList(l.OriginNames...)
	r.Items[first] = l.Items[first]
	return r
}

// AllPossibleItems returns every item defined across l's origin lists,
// used by ink's LIST_ALL.
func (l *ListValue) AllPossibleItems(defs ListDefinitions) *ListValue {
	r := NewEmptyList(l.OriginNames...)
	for _, origin := range l.OriginNames {
		for _, it := range defs.AllItemsIn(origin) {
			if rank, ok := defs.ItemValue(it.OriginName, it.ItemName); ok {
				r.Items[it] = rank
			}
		}
	}
	return r
}

// ListFromInt builds a single-item list by numeric rank within the given
// origin (the "listFromInt" control command, §4.2).
func ListFromInt(defs ListDefinitions, originName string, n int) (*ListValue, bool) {
	for _, it := range defs.AllItemsIn(originName) {
		if rank, ok := defs.ItemValue(it.OriginName, it.ItemName); ok && rank == n {
			r := NewEmptyList(originName)
			r.Items[it] = rank
			return r, true
		}
	}
	return nil, false
}

// ListRange builds a list of every item in [min, max] within the given
// origin (the "listRange" control command, §4.2).
func ListRange(defs ListDefinitions, originName string, min, max int) *ListValue {
	r := NewEmptyList(originName)
	for _, it := range defs.ItemsInRange(originName, min, max) {
		if rank, ok := defs.ItemValue(it.OriginName, it.ItemName); ok {
			r.Items[it] = rank
		}
	}
	return r
}
