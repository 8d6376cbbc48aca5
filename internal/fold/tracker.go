// internal/fold/tracker.go
package fold

import (
	"strings"

	"github.com/google/uuid"

	"github.com/plume-editor/plume/internal/logger"
	"github.com/plume-editor/plume/internal/syntax"
	"github.com/plume-editor/plume/internal/types"
)

// Region is one collapsible line range. StartLine is the header row, which
// stays visible when collapsed; rows StartLine+1 through EndLine are the
// hidden body. Regions form a forest: a child's lines are fully contained
// in its parent's.
type Region struct {
	ID        uuid.UUID
	StartLine int
	EndLine   int
	Collapsed bool
	Parent    *Region
}

// LineInfo is the read surface the tracker needs from the buffer.
type LineInfo interface {
	LineCount() int
	LineText(index int) (string, error)
}

// SpanSource supplies token spans so bracket counting skips brackets inside
// strings and comments.
type SpanSource interface {
	SpansForLine(index int) []syntax.Span
}

// Tracker derives fold regions from a structural signal (indentation depth
// or bracket nesting, per the language rules) and keeps their collapsed
// state across edits. Regions are derived, disposable state; identity and
// the collapsed flag are carried across a rebuild by header line, so a
// collapsed region whose header is deleted is removed rather than silently
// reattached.
type Tracker struct {
	src      LineInfo
	spans    SpanSource
	signal   syntax.FoldSignal
	tabWidth int
	regions  []*Region
}

// NewTracker builds the tracker and derives the initial forest.
func NewTracker(src LineInfo, spans SpanSource, signal syntax.FoldSignal, tabWidth int) *Tracker {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	t := &Tracker{src: src, spans: spans, signal: signal, tabWidth: tabWidth}
	t.regions = t.derive()
	return t
}

// FoldableRegions returns the forest in start-line order. The slice and its
// regions are the tracker's own; callers treat them as read-only and use
// Toggle for state changes.
func (t *Tracker) FoldableRegions() []*Region {
	return t.regions
}

// Toggle flips one region's collapsed flag. Returns false for an unknown
// id (the region was rebuilt away since the caller saw it).
func (t *Tracker) Toggle(id uuid.UUID) bool {
	for _, r := range t.regions {
		if r.ID == id {
			r.Collapsed = !r.Collapsed
			logger.DebugTagf("fold", "region %s lines %d-%d collapsed=%v", r.ID, r.StartLine, r.EndLine, r.Collapsed)
			return true
		}
	}
	return false
}

// Rebuild re-derives the forest after an edit. Regions whose lines lie
// outside the edit shift with it and keep identity; a region whose header
// line is matched in the new forest keeps its id and collapsed flag, while
// a collapsed region whose header was deleted disappears and its previously
// hidden rows become plain visible lines.
func (t *Tracker) Rebuild(e types.EditInfo) {
	carry := make(map[int]*Region, len(t.regions))
	for _, r := range t.regions {
		if lineDeleted(r.StartLine, e) {
			continue
		}
		// A header is anchored at column 0 of its line; translating that
		// anchor handles deletions ending exactly at the header as well as
		// edits strictly above it.
		start := types.TranslatePosition(types.Position{Line: r.StartLine}, e, true).Line
		carry[start] = r
	}

	fresh := t.derive()
	for _, r := range fresh {
		if old, ok := carry[r.StartLine]; ok {
			r.ID = old.ID
			r.Collapsed = old.Collapsed
		}
	}
	t.regions = fresh
}

// Refresh re-derives the forest from scratch (language change, full
// reload), keeping state for headers that still exist.
func (t *Tracker) Refresh() {
	t.Rebuild(types.EditInfo{})
}

// HiddenLines returns the set of rows concealed by collapsed regions. A
// collapsed parent hides its descendants' rows without touching their own
// flags.
func (t *Tracker) HiddenLines() map[int]bool {
	hidden := make(map[int]bool)
	for _, r := range t.regions {
		if !r.Collapsed {
			continue
		}
		for line := r.StartLine + 1; line <= r.EndLine; line++ {
			hidden[line] = true
		}
	}
	return hidden
}

// VisibleLines lists the rows the presentation layer should draw, in order.
func (t *Tracker) VisibleLines() []int {
	hidden := t.HiddenLines()
	out := make([]int, 0, t.src.LineCount())
	for i := 0; i < t.src.LineCount(); i++ {
		if !hidden[i] {
			out = append(out, i)
		}
	}
	return out
}

// RegionAtHeader returns the innermost region whose header is the given
// line, for the shell's fold-toggle affordance.
func (t *Tracker) RegionAtHeader(line int) *Region {
	var found *Region
	for _, r := range t.regions {
		if r.StartLine == line {
			found = r
		}
	}
	return found
}

// lineDeleted reports whether an edit removed the given (pre-edit) line
// entirely.
func lineDeleted(line int, e types.EditInfo) bool {
	if e.LineDelta >= 0 {
		return false
	}
	first := e.Range.Start.Line
	if e.Range.Start.Col > 0 {
		first++
	}
	last := e.Range.End.Line
	if e.Range.End.Col == 0 {
		last--
	}
	if last-first+1 > -e.LineDelta {
		last = first - e.LineDelta - 1
	}
	return line >= first && line <= last
}

func (t *Tracker) derive() []*Region {
	if t.signal == syntax.FoldBrackets {
		return t.deriveBrackets()
	}
	return t.deriveIndentation()
}

// deriveIndentation opens a region at each line whose successor is indented
// deeper, closing it when indentation returns to the header's level. Blank
// lines extend the enclosing region but never end one.
func (t *Tracker) deriveIndentation() []*Region {
	type open struct {
		region *Region
		depth  int
	}
	var regions []*Region
	var stack []open

	prevDepth := -1
	lastNonBlank := -1
	for i := 0; i < t.src.LineCount(); i++ {
		d := t.indentDepth(i)
		if d < 0 {
			continue
		}
		for len(stack) > 0 && d <= stack[len(stack)-1].depth {
			stack[len(stack)-1].region.EndLine = lastNonBlank
			stack = stack[:len(stack)-1]
		}
		if prevDepth >= 0 && d > prevDepth {
			r := &Region{ID: uuid.New(), StartLine: lastNonBlank}
			if len(stack) > 0 {
				r.Parent = stack[len(stack)-1].region
			}
			regions = append(regions, r)
			stack = append(stack, open{region: r, depth: prevDepth})
		}
		prevDepth = d
		lastNonBlank = i
	}
	for len(stack) > 0 {
		stack[len(stack)-1].region.EndLine = lastNonBlank
		stack = stack[:len(stack)-1]
	}
	return compactRegions(regions)
}

// deriveBrackets opens a region at each line that leaves bracket depth
// higher than it entered, closing it on the line where depth returns.
// Brackets are read through token spans, so string and comment content
// never contributes.
func (t *Tracker) deriveBrackets() []*Region {
	type open struct {
		region *Region
		depth  int
	}
	var regions []*Region
	var stack []open

	depth := 0
	for i := 0; i < t.src.LineCount(); i++ {
		delta := t.bracketDelta(i)
		end := depth + delta
		for len(stack) > 0 && end <= stack[len(stack)-1].depth {
			stack[len(stack)-1].region.EndLine = i
			stack = stack[:len(stack)-1]
		}
		if end > depth {
			r := &Region{ID: uuid.New(), StartLine: i}
			if len(stack) > 0 {
				r.Parent = stack[len(stack)-1].region
			}
			regions = append(regions, r)
			stack = append(stack, open{region: r, depth: depth})
		}
		depth = end
	}
	last := t.src.LineCount() - 1
	for len(stack) > 0 {
		stack[len(stack)-1].region.EndLine = last
		stack = stack[:len(stack)-1]
	}
	return compactRegions(regions)
}

// compactRegions drops degenerate single-line regions and sorts by header.
func compactRegions(regions []*Region) []*Region {
	out := regions[:0]
	for _, r := range regions {
		if r.EndLine > r.StartLine {
			out = append(out, r)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].StartLine > out[j].StartLine; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// indentDepth returns a line's indentation level in tab-width units, or -1
// for a blank line.
func (t *Tracker) indentDepth(i int) int {
	text, err := t.src.LineText(i)
	if err != nil {
		return -1
	}
	if strings.TrimSpace(text) == "" {
		return -1
	}
	width := 0
	for _, r := range text {
		switch r {
		case ' ':
			width++
		case '\t':
			width += t.tabWidth
		default:
			return width / t.tabWidth
		}
	}
	return -1
}

// bracketDelta counts net bracket nesting contributed by a line.
func (t *Tracker) bracketDelta(i int) int {
	text, err := t.src.LineText(i)
	if err != nil {
		return 0
	}
	runes := []rune(text)
	delta := 0
	for _, span := range t.spans.SpansForLine(i) {
		if span.Category != syntax.CategoryBracket {
			continue
		}
		for col := span.StartCol; col < span.EndCol && col < len(runes); col++ {
			switch runes[col] {
			case '(', '[', '{':
				delta++
			case ')', ']', '}':
				delta--
			}
		}
	}
	return delta
}
