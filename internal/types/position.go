// internal/types/position.go
package types

import "strings"

// Position is a location within the buffer.
// Line is the 0-based line index.
// Col is the 0-based column (rune) index within the line.
type Position struct {
	Line int
	Col  int // Rune index
}

// Compare returns -1, 0 or 1 depending on document order.
func (p Position) Compare(o Position) int {
	if p.Line != o.Line {
		if p.Line < o.Line {
			return -1
		}
		return 1
	}
	if p.Col != o.Col {
		if p.Col < o.Col {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether p comes strictly before o in document order.
func (p Position) Before(o Position) bool { return p.Compare(o) < 0 }

// After reports whether p comes strictly after o in document order.
func (p Position) After(o Position) bool { return p.Compare(o) > 0 }

// Range is a half-open span of buffer text: [Start, End).
type Range struct {
	Start Position
	End   Position
}

// IsEmpty reports whether the range covers no text.
func (r Range) IsEmpty() bool { return r.Start == r.End }

// Contains reports whether pos lies within [Start, End).
func (r Range) Contains(pos Position) bool {
	return pos.Compare(r.Start) >= 0 && pos.Compare(r.End) < 0
}

// Touches reports whether pos lies within [Start, End]. Cursor positions
// sit between characters, so a cursor "inside" a range includes its end.
func (r Range) Touches(pos Position) bool {
	return pos.Compare(r.Start) >= 0 && pos.Compare(r.End) <= 0
}

// Overlaps reports whether two ranges share at least one position.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Compare(o.End) < 0 && o.Start.Compare(r.End) < 0
}

// NormalizeRange swaps Start and End if they are out of document order.
func NormalizeRange(r Range) Range {
	if r.Start.After(r.End) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Advance returns the position just after text inserted at pos.
func Advance(pos Position, text string) Position {
	if text == "" {
		return pos
	}
	lines := strings.Count(text, "\n")
	if lines == 0 {
		pos.Col += len([]rune(text))
		return pos
	}
	last := text[strings.LastIndexByte(text, '\n')+1:]
	return Position{Line: pos.Line + lines, Col: len([]rune(last))}
}
