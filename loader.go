// loader.go — the Document loader (§6): decodes a compiled story's
// tagged-JSON wire format into a Content Tree.
//
// §1's Non-goals exclude a compiler, but name no loader-free way to drive
// the engine either, so this is added as the minimal external collaborator
// needed to exercise everything else (SPEC_FULL.md's supplemented-features
// section records this decision). Grounded on builtin_json.go's
// Go-JSON<->typed-value converters — the "walk json.RawMessage/any, switch
// on its dynamic shape, build a typed value" technique — applied here to
// RuntimeObjects instead of MindScript Values.
package ink

import (
	"encoding/json"
	"fmt"
)

const (
	minCompatVersion = 18
	currentVersion   = 21
)

// Document is a loaded, ready-to-run story: an immutable Content Tree plus
// its list definitions. Once constructed it is never mutated — every
// StoryEngine built from it gets its own fresh runtime state.
type Document struct {
	Version  int
	Root     *Container
	ListDefs ListDefinitions
}

// LoadDocument decodes raw compiled-story JSON per §6.
func LoadDocument(data []byte) (*Document, error) {
	var wire struct {
		InkVersion int             `json:"inkVersion"`
		Root       json.RawMessage `json:"root"`
		ListDefs   map[string]map[string]int `json:"listDefs"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &LoadError{Kind: ErrMalformedDocument, Message: err.Error()}
	}
	if wire.InkVersion > currentVersion {
		return nil, &LoadError{Kind: ErrVersionTooNew, Message: fmt.Sprintf("document version %d is newer than supported version %d", wire.InkVersion, currentVersion)}
	}
	if wire.InkVersion < minCompatVersion {
		return nil, &LoadError{Kind: ErrVersionTooOld, Message: fmt.Sprintf("document version %d is older than the minimum supported version %d", wire.InkVersion, minCompatVersion)}
	}
	if len(wire.Root) == 0 {
		return nil, &LoadError{Kind: ErrMissingRoot, Message: "document has no root container"}
	}

	var rootRaw any
	if err := json.Unmarshal(wire.Root, &rootRaw); err != nil {
		return nil, &LoadError{Kind: ErrMalformedDocument, Message: err.Error()}
	}
	root, err := parseContainer(rootRaw)
	if err != nil {
		return nil, &LoadError{Kind: ErrMalformedDocument, Message: err.Error()}
	}

	var defs ListDefinitions
	if len(wire.ListDefs) > 0 {
		defs = newStaticListDefs(wire.ListDefs)
	} else {
		defs = newStaticListDefs(nil)
	}

	return &Document{Version: wire.InkVersion, Root: root, ListDefs: defs}, nil
}

// parseContainer decodes a JSON array into a Container: every element
// except a possible trailing metadata object becomes one child, in order;
// the trailing object (if present) carries naming/counting metadata.
func parseContainer(raw any) (*Container, error) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a container array, got %T", raw)
	}

	c := NewContainer()
	n := len(arr)

	var meta map[string]any
	if n > 0 {
		if m, ok := arr[n-1].(map[string]any); ok {
			meta = m
			n--
		}
	}

	for i := 0; i < n; i++ {
		obj, err := parseObject(arr[i])
		if err != nil {
			return nil, err
		}
		if obj == nil {
			continue
		}
		c.AddContent(obj)
	}

	if meta != nil {
		if named, ok := meta["named"].(map[string]any); ok {
			for name, idxAny := range named {
				idx, ok := idxAny.(float64)
				if !ok || int(idx) < 0 || int(idx) >= len(c.Content) {
					return nil, fmt.Errorf("named content %q has an invalid index", name)
				}
				obj := c.Content[int(idx)]
				obj.setOwnName(name)
				if sub, ok := obj.(*Container); ok {
					sub.OwnName = name
				}
				c.named[name] = obj
			}
		}
		if flagsF, ok := meta["flags"].(float64); ok {
			flags := int(flagsF)
			c.VisitsShouldBeCounted = flags&1 != 0
			c.TurnIndexShouldBeCounted = flags&2 != 0
			c.CountingAtStartOnly = flags&4 != 0
		}
	}

	return c, nil
}

// parseObject decodes one content-tree leaf or nested container. Returns
// (nil, nil) for a JSON null, which compiled documents use as an explicit
// "nothing here" placeholder.
func parseObject(raw any) (RuntimeObject, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		return parseContainer(v)
	case string:
		return parseStringLeaf(v)
	case float64:
		if v == float64(int(v)) {
			return NewIntValue(int(v)), nil
		}
		return NewFloatValue(v), nil
	case bool:
		return NewBoolValue(v), nil
	case map[string]any:
		return parseTaggedObject(v)
	default:
		return nil, fmt.Errorf("unrecognized content object of JSON type %T", raw)
	}
}

// parseStringLeaf handles every bare-string tag: literal text ("^..."),
// the newline sentinel, glue, and named control commands (matched against
// ControlCommand.String()'s vocabulary). Tags are not strings; they arrive
// as "#t" objects handled by parseTaggedObject.
func parseStringLeaf(s string) (RuntimeObject, error) {
	if s == "\n" {
		return NewStringValue("\n"), nil
	}
	if s == "<>" {
		return NewGlue(), nil
	}
	if len(s) > 0 && s[0] == '^' {
		return NewStringValue(s[1:]), nil
	}
	if cmd, ok := controlCommandByTag[s]; ok {
		return NewControlCommand(cmd), nil
	}
	return nil, fmt.Errorf("unrecognized string leaf %q", s)
}

var controlCommandByTag = func() map[string]CommandType {
	m := map[string]CommandType{}
	for t := CmdEvalStart; t <= CmdEndTag; t++ {
		m[t.String()] = t
	}
	return m
}()

// parseTaggedObject decodes every object-keyed content leaf: divert
// targets/pointers/references/assignments, native calls, choice points,
// and legacy tags.
func parseTaggedObject(m map[string]any) (RuntimeObject, error) {
	if p, ok := strField(m, "^->"); ok {
		return NewDivertTargetValueAsLeaf(p), nil
	}
	if name, ok := strField(m, "VAR?"); ok {
		ci := -1
		if ciF, ok := m["ci"].(float64); ok {
			ci = int(ciF)
		}
		return NewVariablePointerValue(name, ci), nil
	}
	if p, ok := strField(m, "CNT?"); ok {
		return NewVariableReferenceForCount(parsePathString(p)), nil
	}
	if name, ok := strField(m, "VAR"); ok {
		return NewVariableReference(name), nil
	}
	if name, ok := strField(m, "VAR="); ok {
		isNew, _ := m["new"].(bool)
		return NewVariableAssignment(name, true, isNew), nil
	}
	if name, ok := strField(m, "temp="); ok {
		isNew, _ := m["new"].(bool)
		return NewVariableAssignment(name, false, isNew), nil
	}
	if p, ok := strField(m, "->"); ok {
		return parseDivert(p, m)
	}
	if name, ok := strField(m, "f()"); ok {
		arity := 0
		if n, ok := m["n"].(float64); ok {
			arity = int(n)
		}
		return NewNativeFunctionCall(name, arity), nil
	}
	if p, ok := strField(m, "*"); ok {
		return parseChoicePoint(p, m)
	}
	if text, ok := strField(m, "#t"); ok {
		return NewTag(text), nil
	}
	return nil, fmt.Errorf("unrecognized tagged object with keys %v", keysOf(m))
}

func parseDivert(p string, m map[string]any) (RuntimeObject, error) {
	d := NewDivert(parsePathString(p))
	if isVar, _ := m["var"].(bool); isVar {
		d.VariableDivertTargetName = p
		d.TargetPath = EmptyPath
	}
	if cond, _ := m["cond"].(bool); cond {
		d.IsConditional = true
	}
	if ext, _ := m["external"].(bool); ext {
		d.IsExternal = true
		if n, ok := m["exArgs"].(float64); ok {
			d.ExternalArgs = int(n)
		}
	}
	if pushes, ok := m["pushes"].(string); ok {
		d.PushesToStack = true
		switch pushes {
		case "function":
			d.StackPushType = FrameFunction
		case "tunnel":
			d.StackPushType = FrameTunnel
		default:
			d.StackPushType = FrameNone
		}
	}
	return d, nil
}

func parseChoicePoint(p string, m map[string]any) (RuntimeObject, error) {
	c := NewChoicePoint(parsePathString(p))
	if flagsF, ok := m["flg"].(float64); ok {
		flags := int(flagsF)
		c.HasCondition = flags&1 != 0
		c.HasStartContent = flags&2 != 0
		c.HasChoiceOnlyContent = flags&4 != 0
		c.OnceOnly = flags&8 != 0
		c.IsInvisibleDefault = flags&16 != 0
	}
	if text, ok := m["text"].(string); ok {
		c.Text = text
	}
	return c, nil
}

func strField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// parsePathString splits a dotted path string ("knot.stitch.3") into a
// Path, treating "^" components as ParentComponent and pure-digit
// components as IndexComponent.
func parsePathString(s string) Path {
	if s == "" {
		return EmptyPath
	}
	var comps []Component
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			part := s[start:i]
			start = i + 1
			if part == "" {
				continue
			}
			if part == "^" {
				comps = append(comps, ParentComponent())
				continue
			}
			if isAllDigits(part) {
				n := 0
				for _, r := range part {
					n = n*10 + int(r-'0')
				}
				comps = append(comps, IndexComponent(n))
				continue
			}
			comps = append(comps, NamedComponent(part))
		}
	}
	return Path{Components: comps}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NewDivertTargetValueAsLeaf builds a Value-kind divert target leaf from
// its wire-format path string — a thin wrapper so parseTaggedObject reads
// uniformly with the other "^..." single-key forms.
func NewDivertTargetValueAsLeaf(pathStr string) *Value {
	return NewDivertTargetValue(parsePathString(pathStr))
}

// staticListDefs is the ListDefinitions implementation backing a loaded
// Document: a plain nested map, since list definitions are load-time
// constants that never change during a story's execution (§1 Non-goals).
type staticListDefs struct {
	origins map[string]map[string]int
	order   []string
}

func newStaticListDefs(raw map[string]map[string]int) *staticListDefs {
	d := &staticListDefs{origins: map[string]map[string]int{}}
	for origin, items := range raw {
		d.origins[origin] = items
		d.order = append(d.order, origin)
	}
	return d
}

func (d *staticListDefs) ItemValue(originName, itemName string) (int, bool) {
	items, ok := d.origins[originName]
	if !ok {
		return 0, false
	}
	n, ok := items[itemName]
	return n, ok
}

func (d *staticListDefs) ItemsInRange(originName string, min, max int) []ListItem {
	var out []ListItem
	for name, rank := range d.origins[originName] {
		if rank >= min && rank <= max {
			out = append(out, ListItem{OriginName: originName, ItemName: name})
		}
	}
	return out
}

func (d *staticListDefs) AllOrigins() []string { return append([]string(nil), d.order...) }

func (d *staticListDefs) AllItemsIn(originName string) []ListItem {
	var out []ListItem
	for name := range d.origins[originName] {
		out = append(out, ListItem{OriginName: originName, ItemName: name})
	}
	return out
}
