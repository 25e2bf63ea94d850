// output_stream.go — the Output Stream (§3, §4.5): an ordered sequence of
// text glyphs, tags, glue markers, and control markers, assembled into
// current-text/current-tags by a single left-to-right pass.
//
// Grounded on interpreter_ops.go's "emitter" (the private op-core that
// turns evaluated program output into text) for the overall "walk entries,
// build a string, handle whitespace" shape, and on printer.go's
// string/whitespace helpers (quoteString and friends) for the trimming
// primitives used below.
package ink

import "strings"

type outputEntryKind int

const (
	entryText outputEntryKind = iota
	entryGlue
	entryBeginTag
	entryEndTag
	entryFunctionStart
	entryFunctionEnd
)

type outputEntry struct {
	kind outputEntryKind
	text string // valid when kind == entryText
}

// OutputStream is the ordered entry list plus incremental assembly state.
type OutputStream struct {
	entries []outputEntry
}

func NewOutputStream() *OutputStream { return &OutputStream{} }

func (os *OutputStream) PushText(s string) {
	if s == "" {
		return
	}
	os.entries = append(os.entries, outputEntry{kind: entryText, text: s})
}

func (os *OutputStream) PushGlue() {
	os.entries = append(os.entries, outputEntry{kind: entryGlue})
}

func (os *OutputStream) PushBeginTag() {
	os.entries = append(os.entries, outputEntry{kind: entryBeginTag})
}

func (os *OutputStream) PushEndTag() {
	os.entries = append(os.entries, outputEntry{kind: entryEndTag})
}

func (os *OutputStream) PushFunctionStart() {
	os.entries = append(os.entries, outputEntry{kind: entryFunctionStart})
}

func (os *OutputStream) PushFunctionEnd() {
	os.entries = append(os.entries, outputEntry{kind: entryFunctionEnd})
}

// Len reports the number of entries, used by "beginString"/"endString"
// (§4.2) to slice out exactly the range added since beginString.
func (os *OutputStream) Len() int { return len(os.entries) }

// Truncate drops every entry from index i onward, used when collecting a
// beginString..endString range into a single string value.
func (os *OutputStream) Truncate(i int) {
	if i < len(os.entries) {
		os.entries = os.entries[:i]
	}
}

// ResetOutput drops every entry, the way a fresh Continue call starts with
// an empty output stream rather than accumulating text/tags across calls
// (§4.1, §8 invariant 1: CurrentText/CurrentTags report only what the most
// recent Continue produced).
func (os *OutputStream) ResetOutput() { os.entries = nil }

// EntriesFrom returns the text-only content of entries[i:] concatenated
// verbatim (no glue/trim processing) — used to materialize a
// beginString..endString span as a literal string value (§4.2).
func (os *OutputStream) EntriesFrom(i int) string {
	var b strings.Builder
	for _, e := range os.entries[i:] {
		if e.kind == entryText {
			b.WriteString(e.text)
		}
	}
	return b.String()
}

// Assembled is the result of a single left-to-right pass over the entries.
type Assembled struct {
	Text string
	Tags []string
}

// Assemble performs the §4.5 pass: glue resolution, whitespace trimming,
// newline collapsing, and tag extraction.
func (os *OutputStream) Assemble() Assembled {
	var text strings.Builder
	var tags []string

	atLineStart := true
	skipLeadingSpace := false
	var curTag strings.Builder
	inTag := false

	for _, e := range os.entries {
		switch e.kind {
		case entryBeginTag:
			inTag = true
			curTag.Reset()
		case entryEndTag:
			inTag = false
			tags = append(tags, strings.TrimSpace(curTag.String()))
			curTag.Reset()
		case entryFunctionStart, entryFunctionEnd:
			// Pure bookkeeping markers; they carry no text.
		case entryGlue:
			// Trim trailing whitespace already written — including a
			// single trailing newline, since glue joins two lines into
			// one — and arrange for the next text chunk to have its own
			// leading run trimmed too (§4.5: "scanning backward...
			// trailing whitespace on the left is trimmed; scanning
			// forward... leading whitespace on the right is trimmed").
			trimTrailingInlineWhitespace(&text)
			skipLeadingSpace = true
			tail := text.String()
			atLineStart = tail == "" || strings.HasSuffix(tail, "\n")
		case entryText:
			chunk := e.text
			if inTag {
				curTag.WriteString(chunk)
				continue
			}
			if atLineStart || skipLeadingSpace {
				chunk = strings.TrimLeft(chunk, " \t")
			}
			skipLeadingSpace = false
			for _, r := range chunk {
				if r == '\n' {
					if atLineStart {
						// Dropping a consecutive (already-trimmed-to-empty)
						// line per invariant (b).
						continue
					}
					text.WriteRune(r)
					atLineStart = true
					continue
				}
				text.WriteRune(r)
				if r != ' ' && r != '\t' {
					atLineStart = false
				}
			}
		}
	}

	return Assembled{Text: text.String(), Tags: tags}
}

// EndsInNewline reports whether the assembled text, ignoring no trailing
// characters, currently ends in a single newline — the condition a step
// checks to decide whether the line may be complete (§4.1, §4.5 invariant).
func (os *OutputStream) EndsInNewline() bool {
	a := os.Assemble()
	return strings.HasSuffix(a.Text, "\n")
}

// trimTrailingInlineWhitespace removes trailing spaces/tabs and, if that
// exposes a trailing newline, removes that single newline too (and any
// spaces/tabs ahead of it) — glue suppresses whitespace *and* a line break
// across its position, fusing two lines into one. strings.Builder has no
// native truncate, so this rebuilds the tail; acceptable since glue markers
// are rare relative to text volume.
func trimTrailingInlineWhitespace(b *strings.Builder) {
	s := b.String()
	trimmed := strings.TrimRight(s, " \t")
	if rest := strings.TrimSuffix(trimmed, "\n"); rest != trimmed {
		trimmed = strings.TrimRight(rest, " \t")
	}
	if len(trimmed) == len(s) {
		return
	}
	b.Reset()
	b.WriteString(trimmed)
}

func (os *OutputStream) clone() *OutputStream {
	entries := make([]outputEntry, len(os.entries))
	copy(entries, os.entries)
	return &OutputStream{entries: entries}
}
