// internal/snippet/template.go
package snippet

import (
	"fmt"
	"strings"

	"github.com/plume-editor/plume/internal/types"
)

// TemplateError reports a malformed placeholder marker. Insertion never
// partially applies a template that fails to parse.
type TemplateError struct {
	Pos int // rune offset into the template source
	Msg string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("snippet template: %s at offset %d", e.Msg, e.Pos)
}

// Template is a parsed snippet body: literal text interleaved with tab-stop
// markers. Marker syntax: `$1`, `${1}`, `${1:default}`; `$0` marks where the
// cursor lands when the session ends. Repeating a tab index makes the
// occurrences mirrors of each other. `\$`, `\}` and `\\` escape literally.
type Template struct {
	segments []segment
}

type segment struct {
	literal string // used when marker is false
	marker  bool
	index   int
	def     string
}

// Parse parses a template body. The returned error, when non-nil, is always
// a *TemplateError.
func Parse(src string) (*Template, error) {
	runes := []rune(src)
	t := &Template{}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch r {
		case '\\':
			if i+1 >= len(runes) {
				return nil, &TemplateError{Pos: i, Msg: "dangling escape"}
			}
			lit.WriteRune(runes[i+1])
			i += 2
		case '$':
			seg, next, err := parseMarker(runes, i)
			if err != nil {
				return nil, err
			}
			flush()
			t.segments = append(t.segments, seg)
			i = next
		default:
			lit.WriteRune(r)
			i++
		}
	}
	flush()

	if err := t.checkMirrors(); err != nil {
		return nil, err
	}
	return t, nil
}

// parseMarker consumes a marker starting at the '$' at position i.
func parseMarker(runes []rune, i int) (segment, int, error) {
	start := i
	i++ // past '$'
	if i >= len(runes) {
		return segment{}, 0, &TemplateError{Pos: start, Msg: "lone '$'"}
	}

	braced := runes[i] == '{'
	if braced {
		i++
	}

	d := i
	for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
		i++
	}
	if i == d {
		return segment{}, 0, &TemplateError{Pos: start, Msg: "marker missing tab index"}
	}
	index := 0
	for _, r := range runes[d:i] {
		index = index*10 + int(r-'0')
	}

	seg := segment{marker: true, index: index}
	if !braced {
		return seg, i, nil
	}

	if i < len(runes) && runes[i] == ':' {
		i++
		var def strings.Builder
		for i < len(runes) && runes[i] != '}' {
			if runes[i] == '\\' && i+1 < len(runes) {
				def.WriteRune(runes[i+1])
				i += 2
				continue
			}
			def.WriteRune(runes[i])
			i++
		}
		seg.def = def.String()
	}
	if i >= len(runes) || runes[i] != '}' {
		return segment{}, 0, &TemplateError{Pos: start, Msg: "unterminated '${' marker"}
	}
	return seg, i + 1, nil
}

// checkMirrors rejects templates whose mirrored occurrences declare
// conflicting defaults, and a defaulted end stop (the cursor target holds
// no text).
func (t *Template) checkMirrors() error {
	defs := make(map[int]string)
	for _, seg := range t.segments {
		if !seg.marker {
			continue
		}
		if seg.index == 0 && seg.def != "" {
			return &TemplateError{Msg: "end stop '$0' cannot carry a default"}
		}
		prev, seen := defs[seg.index]
		switch {
		case !seen || prev == "":
			defs[seg.index] = seg.def
		case seg.def != "" && seg.def != prev:
			return &TemplateError{Msg: fmt.Sprintf("conflicting defaults for tab stop %d", seg.index)}
		}
	}
	return nil
}

// Materialized is the result of laying a template out at a position.
type Materialized struct {
	Text   string
	Extent types.Range
	Stops  []*Stop
	// Final is the explicit end-stop position; FinalSet is false when the
	// template has no $0 (session end then targets Extent.End).
	Final    types.Position
	FinalSet bool
}

// Materialize renders the template at a buffer position. indent is prefixed
// to every continuation line so multi-line snippets align with their
// insertion point.
func (t *Template) Materialize(at types.Position, indent string) Materialized {
	// The first occurrence carrying a default defines the mirror group's
	// text; checkMirrors already rejected conflicting defaults.
	groupText := make(map[int]string)
	for _, seg := range t.segments {
		if seg.marker && seg.index != 0 {
			if cur, ok := groupText[seg.index]; !ok || (cur == "" && seg.def != "") {
				groupText[seg.index] = seg.def
			}
		}
	}

	var out strings.Builder
	pos := at
	m := Materialized{}
	stops := make(map[int]*Stop)

	place := func(text string) {
		text = strings.ReplaceAll(text, "\n", "\n"+indent)
		out.WriteString(text)
		pos = types.Advance(pos, text)
	}

	for _, seg := range t.segments {
		if !seg.marker {
			place(seg.literal)
			continue
		}
		if seg.index == 0 {
			m.Final = pos
			m.FinalSet = true
			continue
		}
		start := pos
		place(groupText[seg.index])
		stop, ok := stops[seg.index]
		if !ok {
			stop = &Stop{Index: seg.index}
			stops[seg.index] = stop
			m.Stops = append(m.Stops, stop)
		}
		stop.Ranges = append(stop.Ranges, types.Range{Start: start, End: pos})
	}

	m.Text = out.String()
	m.Extent = types.Range{Start: at, End: pos}
	sortStops(m.Stops)
	return m
}

func sortStops(stops []*Stop) {
	for i := 1; i < len(stops); i++ {
		for j := i; j > 0 && stops[j-1].Index > stops[j].Index; j-- {
			stops[j-1], stops[j] = stops[j], stops[j-1]
		}
	}
}
