// internal/types/edit.go
package types

import "strings"

// EditInfo describes a single buffer mutation. Every component that holds
// positions translates them through an EditInfo instead of rescanning the
// buffer; that keeps a keystroke O(1) for position bookkeeping.
type EditInfo struct {
	// Range is the replaced span in pre-edit coordinates. For a pure
	// insertion Start == End.
	Range Range
	// NewEnd is the position just past the inserted text, in post-edit
	// coordinates. For a pure deletion NewEnd == Range.Start.
	NewEnd Position
	// Text is the inserted text ("" for deletions).
	Text string
	// Deleted is the removed length in runes, counting each newline as one.
	Deleted int
	// LineDelta is lines added minus lines removed.
	LineDelta int
}

// InsertEdit builds the EditInfo for text inserted at pos.
func InsertEdit(pos Position, text string) EditInfo {
	return EditInfo{
		Range:     Range{Start: pos, End: pos},
		NewEnd:    Advance(pos, text),
		Text:      text,
		LineDelta: strings.Count(text, "\n"),
	}
}

// DeleteEdit builds the EditInfo for removing [start, end).
func DeleteEdit(start, end Position, deletedRunes int) EditInfo {
	return EditInfo{
		Range:     Range{Start: start, End: end},
		NewEnd:    start,
		Deleted:   deletedRunes,
		LineDelta: start.Line - end.Line,
	}
}

// TranslatePosition shifts p across an edit.
//
// biasRight decides the boundary case of an insertion landing exactly on p:
// with biasRight the position moves past the inserted text (range starts),
// without it the position stays put (range ends, so the insertion is not
// absorbed). Positions inside a deleted span collapse onto NewEnd.
func TranslatePosition(p Position, e EditInfo, biasRight bool) Position {
	start, oldEnd := e.Range.Start, e.Range.End

	switch cmp := p.Compare(start); {
	case cmp < 0:
		return p
	case cmp == 0:
		if biasRight && e.Range.IsEmpty() {
			return e.NewEnd
		}
		return p
	}

	if p.Compare(oldEnd) < 0 {
		// Inside the replaced span.
		return e.NewEnd
	}

	res := Position{Line: p.Line + e.LineDelta, Col: p.Col}
	if p.Line == oldEnd.Line {
		res.Col = e.NewEnd.Col + (p.Col - oldEnd.Col)
	}
	return res
}

// TranslateRange shifts a tracked range across an edit made elsewhere.
// An insertion exactly at the range start pushes the whole range right;
// an insertion exactly at the range end is not absorbed.
func TranslateRange(r Range, e EditInfo) Range {
	return Range{
		Start: TranslatePosition(r.Start, e, true),
		End:   TranslatePosition(r.End, e, false),
	}
}

// TranslateEnclosing shifts a range that should absorb insertions at
// either boundary (the snippet session extent behaves this way).
func TranslateEnclosing(r Range, e EditInfo) Range {
	return Range{
		Start: TranslatePosition(r.Start, e, false),
		End:   TranslatePosition(r.End, e, true),
	}
}
