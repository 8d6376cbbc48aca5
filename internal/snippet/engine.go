// internal/snippet/engine.go
package snippet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/plume-editor/plume/internal/logger"
	"github.com/plume-editor/plume/internal/types"
)

// State is the engine's lifecycle state.
type State uint8

const (
	StateInactive State = iota
	StateActive
)

// ReentryPolicy decides what happens when a snippet is inserted while a
// session is already active.
type ReentryPolicy uint8

const (
	// ReentryConfirmPrior ends the running session (keeping its text) and
	// starts the new one.
	ReentryConfirmPrior ReentryPolicy = iota
	// ReentryReject refuses the new insertion.
	ReentryReject
)

// ParseReentryPolicy maps the configuration string to a policy.
func ParseReentryPolicy(s string) (ReentryPolicy, error) {
	switch s {
	case "", "confirm-prior":
		return ReentryConfirmPrior, nil
	case "reject":
		return ReentryReject, nil
	}
	return 0, fmt.Errorf("unknown snippet reentry policy %q", s)
}

// ErrSessionActive is returned by InsertSnippet under ReentryReject.
var ErrSessionActive = errors.New("snippet session already active")

// Buffer is the mutation surface the engine needs. Edits the engine makes
// here must NOT be echoed back through OnEdit; the engine translates its
// own edits itself.
type Buffer interface {
	Insert(pos types.Position, text []byte) (types.EditInfo, error)
	Delete(start, end types.Position) (types.EditInfo, error)
	LineText(index int) (string, error)
}

// Options configures an Engine.
type Options struct {
	// AutoPair makes opening brackets/quotes typed inside a placeholder
	// insert their closing character immediately after the caret.
	AutoPair bool
	Reentry  ReentryPolicy
}

// autoPairs maps openers to their closing character.
var autoPairs = map[rune]rune{
	'(':  ')',
	'[':  ']',
	'{':  '}',
	'"':  '"',
	'\'': '\'',
}

// Engine is the snippet state machine. All input routing happens before
// default editing: the caller offers each keystroke, and a Handled=false
// result means "behave as if no snippet existed". Every method is a no-op
// returning unhandled when the engine is Inactive.
type Engine struct {
	buf     Buffer
	opts    Options
	state   State
	session *Session
}

// NewEngine creates an engine over buf.
func NewEngine(buf Buffer, opts Options) *Engine {
	return &Engine{buf: buf, opts: opts}
}

// State returns the engine's lifecycle state.
func (eng *Engine) State() State { return eng.state }

// SessionID returns the active session's identity.
func (eng *Engine) SessionID() (uuid.UUID, bool) {
	if eng.state != StateActive {
		return uuid.UUID{}, false
	}
	return eng.session.ID, true
}

// ActivePlaceholderRange reports where insertion should land while a
// placeholder has focus. Completion acceptance must consult this instead of
// the raw cursor position.
func (eng *Engine) ActivePlaceholderRange() (types.Range, bool) {
	if eng.state != StateActive {
		return types.Range{}, false
	}
	st := eng.session.activeStop()
	if st == nil {
		return types.Range{}, false
	}
	return st.Ranges[0], true
}

// Overlays returns the current placeholder styling list, for renderers
// that repaint from live state rather than consuming Effects.Refresh.
func (eng *Engine) Overlays() []Refresh {
	if eng.state != StateActive {
		return nil
	}
	return eng.session.refreshes()
}

// InsertSnippet parses and inserts a template at a position, starting a
// session focused on the lowest tab stop. A parse failure leaves the buffer
// unmodified. Under ReentryReject an active session makes this return
// ErrSessionActive; under ReentryConfirmPrior the running session ends
// first, keeping its text.
func (eng *Engine) InsertSnippet(template string, at types.Position) (Effects, error) {
	tpl, err := Parse(template)
	if err != nil {
		return unhandled(), err
	}

	var fx Effects
	if eng.state == StateActive {
		if eng.opts.Reentry == ReentryReject {
			return unhandled(), ErrSessionActive
		}
		logger.DebugTagf("snippet", "confirming prior session %s for reentry", eng.session.ID)
		eng.endSession(&fx)
	}

	m := tpl.Materialize(at, eng.indentAt(at))
	if _, err := eng.buf.Insert(at, []byte(m.Text)); err != nil {
		return unhandled(), fmt.Errorf("inserting snippet text: %w", err)
	}

	fx.Handled = true
	s := newSession(m)
	if s.activeStop() == nil {
		// No tab stops: nothing to track.
		fx.cursorAt(s.endPosition())
		return fx, nil
	}

	eng.state = StateActive
	eng.session = s
	fx.SessionStarted = true
	fx.cursorAt(s.activeStop().Ranges[0].Start)
	fx.Refresh = s.refreshes()
	logger.DebugTagf("snippet", "session %s started with %d stop(s)", s.ID, len(s.Stops))
	return fx, nil
}

// HandleKeystroke routes one typed character. Inside the active placeholder
// the engine performs the insertion itself: the first keystroke replaces the
// untouched default, mirrors receive the same text, and auto-paired closers
// land immediately after the caret inside the placeholder rather than past
// the snippet's other ranges.
func (eng *Engine) HandleKeystroke(r rune, cursor types.Position) Effects {
	st := eng.focusedStop(cursor)
	if st == nil {
		return unhandled()
	}

	if !st.edited && !st.Ranges[0].IsEmpty() {
		eng.clearStop(st)
		cursor = st.Ranges[0].Start
	}
	st.edited = true

	text := string(r)
	caretText := text
	if eng.opts.AutoPair {
		if closer, ok := autoPairs[r]; ok {
			text = string(r) + string(closer)
		}
	}

	caret := eng.insertIntoStop(st, cursor, text, caretText)
	fx := handled()
	fx.cursorAt(caret)
	fx.Refresh = eng.session.refreshes()
	return fx
}

// InsertText is the completion-acceptance and paste path: same contract as
// a keystroke, for a whole string, with no auto-pairing.
func (eng *Engine) InsertText(text string, cursor types.Position) Effects {
	if text == "" {
		return unhandled()
	}
	st := eng.focusedStop(cursor)
	if st == nil {
		return unhandled()
	}

	if !st.edited && !st.Ranges[0].IsEmpty() {
		eng.clearStop(st)
		cursor = st.Ranges[0].Start
	}
	st.edited = true

	caret := eng.insertIntoStop(st, cursor, text, text)
	fx := handled()
	fx.cursorAt(caret)
	fx.Refresh = eng.session.refreshes()
	return fx
}

// HandleBackspace contains deletion within the active placeholder: content
// shrinks one rune at a time (mirrors included) and the session never ends
// incidentally. The one deliberate exit is backspacing at the session start
// when every placeholder is already empty.
func (eng *Engine) HandleBackspace(cursor types.Position) Effects {
	st := eng.focusedStop(cursor)
	if st == nil {
		return unhandled()
	}
	primary := st.Ranges[0]

	if primary.IsEmpty() {
		if cursor == eng.session.Extent.Start && eng.session.allEmpty() {
			var fx Effects
			fx.Handled = true
			eng.endSession(&fx)
			return fx
		}
		return handled()
	}
	if !cursor.After(primary.Start) || cursor.Col == 0 {
		// Nothing inside the placeholder before the caret; swallow rather
		// than eat surrounding text.
		return handled()
	}

	st.edited = true
	caret := eng.deleteFromStop(st, cursor)
	fx := handled()
	fx.cursorAt(caret)
	fx.Refresh = eng.session.refreshes()
	return fx
}

// HandleTab confirms the active placeholder (edited or accepted as-is) and
// moves focus to the next unconfirmed stop. Order is monotonic; once the
// last stop is confirmed the session ends with the caret at the snippet's
// end stop.
func (eng *Engine) HandleTab() Effects {
	if eng.state != StateActive {
		return unhandled()
	}
	st := eng.session.activeStop()
	if st == nil {
		var fx Effects
		fx.Handled = true
		eng.endSession(&fx)
		return fx
	}
	st.Confirmed = true

	fx := handled()
	if !eng.session.advance() {
		eng.endSession(&fx)
		return fx
	}
	next := eng.session.activeStop()
	fx.cursorAt(next.Ranges[0].Start)
	fx.Refresh = eng.session.refreshes()
	return fx
}

// HandleEnter confirms the active placeholder. If other stops remain
// unconfirmed the newline itself is not consumed: focus advances but the
// caller applies its normal line break. Confirming the last stop ends the
// session like Tab does.
func (eng *Engine) HandleEnter() Effects {
	if eng.state != StateActive {
		return unhandled()
	}
	st := eng.session.activeStop()
	if st == nil {
		var fx Effects
		fx.Handled = true
		eng.endSession(&fx)
		return fx
	}
	st.Confirmed = true

	if !eng.session.advance() {
		fx := handled()
		eng.endSession(&fx)
		return fx
	}
	fx := unhandled()
	fx.Refresh = eng.session.refreshes()
	return fx
}

// HandleEscape abandons placeholder tracking from any state, leaving the
// inserted text as plain buffer content.
func (eng *Engine) HandleEscape() Effects {
	if eng.state != StateActive {
		return unhandled()
	}
	var fx Effects
	fx.Handled = true
	eng.endSession(&fx)
	fx.Cursor = nil // Escape leaves the caret where it is
	return fx
}

// OnEdit translates every tracked range through an edit made outside the
// engine (normal typing away from the placeholder, Enter's newline, paste
// outside the session). Engine-initiated edits must not be echoed here.
func (eng *Engine) OnEdit(e types.EditInfo) {
	if eng.state != StateActive {
		return
	}
	eng.session.translate(e, nil)
}

func (eng *Engine) endSession(fx *Effects) {
	end := eng.session.endPosition()
	logger.DebugTagf("snippet", "session %s ended", eng.session.ID)
	eng.state = StateInactive
	eng.session = nil
	fx.SessionEnded = true
	fx.cursorAt(end)
}

// focusedStop returns the active stop when the engine is Active and the
// cursor sits within its primary range, else nil.
func (eng *Engine) focusedStop(cursor types.Position) *Stop {
	if eng.state != StateActive {
		return nil
	}
	st := eng.session.activeStop()
	if st == nil {
		return nil
	}
	r := st.Ranges[0]
	if cursor.Before(r.Start) || cursor.After(r.End) {
		return nil
	}
	return st
}

// clearStop deletes a stop's default text from every occurrence, rearmost
// first so earlier positions stay valid until their turn.
func (eng *Engine) clearStop(st *Stop) {
	for {
		best := -1
		for i := range st.Ranges {
			if st.Ranges[i].IsEmpty() {
				continue
			}
			if best == -1 || st.Ranges[best].Start.Before(st.Ranges[i].Start) {
				best = i
			}
		}
		if best == -1 {
			return
		}
		r := st.Ranges[best]
		e := eng.mustEdit(eng.buf.Delete(r.Start, r.End))
		eng.session.translate(e, nil)
	}
}

// insertIntoStop inserts text at the caret inside the stop's primary range
// and replays it into every mirror, keeping all tracked ranges translated.
// caretText is the prefix of text the caret lands after (shorter than text
// for auto-paired insertions). Returns the final caret position.
func (eng *Engine) insertIntoStop(st *Stop, cursor types.Position, text, caretText string) types.Position {
	primary := &st.Ranges[0]
	lineOff := cursor.Line - primary.Start.Line
	colOff := cursor.Col
	if lineOff == 0 {
		colOff = cursor.Col - primary.Start.Col
	}

	e := eng.mustEdit(eng.buf.Insert(cursor, []byte(text)))
	eng.session.translate(e, primary)
	caret := types.Advance(cursor, caretText)

	for i := 1; i < len(st.Ranges); i++ {
		pos := mirrorPos(st.Ranges[i].Start, lineOff, colOff)
		e := eng.mustEdit(eng.buf.Insert(pos, []byte(text)))
		eng.session.translate(e, &st.Ranges[i])
		caret = types.TranslatePosition(caret, e, false)
	}
	return caret
}

// deleteFromStop removes the rune before the caret from the primary range
// and from every mirror. Returns the caret position after deletion.
func (eng *Engine) deleteFromStop(st *Stop, cursor types.Position) types.Position {
	from := types.Position{Line: cursor.Line, Col: cursor.Col - 1}
	primary := st.Ranges[0]
	lineOff := from.Line - primary.Start.Line
	colOff := from.Col
	if lineOff == 0 {
		colOff = from.Col - primary.Start.Col
	}

	e := eng.mustEdit(eng.buf.Delete(from, cursor))
	eng.session.translate(e, nil)
	caret := from

	for i := 1; i < len(st.Ranges); i++ {
		pos := mirrorPos(st.Ranges[i].Start, lineOff, colOff)
		to := types.Position{Line: pos.Line, Col: pos.Col + 1}
		e := eng.mustEdit(eng.buf.Delete(pos, to))
		eng.session.translate(e, nil)
		caret = types.TranslatePosition(caret, e, false)
	}
	return caret
}

// mirrorPos maps a caret offset within the primary occurrence onto another
// occurrence's coordinates.
func mirrorPos(start types.Position, lineOff, colOff int) types.Position {
	if lineOff == 0 {
		return types.Position{Line: start.Line, Col: start.Col + colOff}
	}
	return types.Position{Line: start.Line + lineOff, Col: colOff}
}

// mustEdit asserts a buffer operation succeeded. Under the serialized-edit
// contract every position the engine computes is in bounds; a failure here
// means an edit bypassed the buffer.
func (eng *Engine) mustEdit(e types.EditInfo, err error) types.EditInfo {
	if err != nil {
		panic(fmt.Sprintf("snippet: buffer rejected engine edit: %v", err))
	}
	return e
}

// indentAt returns the leading whitespace of the insertion line up to the
// caret, used to align a multi-line snippet's continuation lines.
func (eng *Engine) indentAt(at types.Position) string {
	text, err := eng.buf.LineText(at.Line)
	if err != nil {
		return ""
	}
	runes := []rune(text)
	if at.Col < len(runes) {
		runes = runes[:at.Col]
	}
	var b strings.Builder
	for _, r := range runes {
		if r != ' ' && r != '\t' {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}
