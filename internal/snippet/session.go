// internal/snippet/session.go
package snippet

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/plume-editor/plume/internal/types"
)

// Stop is one tab stop of an active session. Ranges[0] is the primary
// occurrence (where the caret goes); any further ranges are mirrors that
// hold identical text at all times.
type Stop struct {
	Index     int
	Ranges    []types.Range
	Confirmed bool

	// edited flips on the first insertion, after which the default text is
	// gone and later input appends instead of replacing.
	edited bool
}

// Session tracks one inserted snippet across edits. Unlike token spans and
// fold regions it has identity: its ranges are translated edit by edit,
// never re-derived from buffer content.
type Session struct {
	ID     uuid.UUID
	Extent types.Range
	Stops  []*Stop

	active   int // index into Stops; -1 once every stop is confirmed
	final    types.Position
	finalSet bool
}

func newSession(m Materialized) *Session {
	s := &Session{
		ID:       uuid.New(),
		Extent:   m.Extent,
		Stops:    m.Stops,
		active:   -1,
		final:    m.Final,
		finalSet: m.FinalSet,
	}
	if len(s.Stops) > 0 {
		s.active = 0
	}
	return s
}

func (s *Session) activeStop() *Stop {
	if s.active < 0 || s.active >= len(s.Stops) {
		return nil
	}
	return s.Stops[s.active]
}

// advance moves focus to the next unconfirmed stop after the current one.
// Order is monotonic; it never wraps. Returns false when none remains.
func (s *Session) advance() bool {
	for i := s.active + 1; i < len(s.Stops); i++ {
		if !s.Stops[i].Confirmed {
			s.active = i
			return true
		}
	}
	s.active = -1
	return false
}

// endPosition is where the caret belongs when the session finishes.
func (s *Session) endPosition() types.Position {
	if s.finalSet {
		return s.final
	}
	return s.Extent.End
}

// translate shifts every tracked range through one edit. grow, when non-nil,
// points at the range the edit happened inside of; that range absorbs
// boundary insertions while all others use sibling semantics.
func (s *Session) translate(e types.EditInfo, grow *types.Range) {
	s.Extent = types.TranslateEnclosing(s.Extent, e)
	if s.finalSet {
		s.final = types.TranslatePosition(s.final, e, false)
	}
	for _, st := range s.Stops {
		for i := range st.Ranges {
			if grow == &st.Ranges[i] {
				st.Ranges[i] = types.TranslateEnclosing(st.Ranges[i], e)
			} else {
				st.Ranges[i] = types.TranslateRange(st.Ranges[i], e)
			}
			if st.Ranges[i].End.Before(st.Ranges[i].Start) {
				// Structurally impossible under the serialized-edit
				// contract; if it happens an edit bypassed the buffer.
				panic(fmt.Sprintf("snippet: placeholder range inverted after edit %+v", e))
			}
		}
	}
}

// refreshes builds the restyle list: the active stop in the primary style,
// every other unconfirmed stop in the pending style.
func (s *Session) refreshes() []Refresh {
	var out []Refresh
	for i, st := range s.Stops {
		if st.Confirmed {
			continue
		}
		kind := RefreshPending
		if i == s.active {
			kind = RefreshActive
		}
		for _, r := range st.Ranges {
			out = append(out, Refresh{Range: r, Kind: kind})
		}
	}
	return out
}

// allEmpty reports whether every stop currently holds no text.
func (s *Session) allEmpty() bool {
	for _, st := range s.Stops {
		for _, r := range st.Ranges {
			if !r.IsEmpty() {
				return false
			}
		}
	}
	return true
}
