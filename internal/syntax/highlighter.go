// internal/syntax/highlighter.go
package syntax

import (
	"context"
	"sync"

	"github.com/plume-editor/plume/internal/logger"
	"github.com/plume-editor/plume/internal/types"
)

// LineSource is the read surface the highlighter needs from the buffer.
type LineSource interface {
	LineCount() int
	LineText(index int) (string, error)
}

type lineCache struct {
	spans []Span
	exit  State
	// valid means spans/exit reflect the current text. exitKnown survives
	// invalidation: it marks exit as the last computed boundary state, which
	// lets a re-lex detect that the state crossing into the next line did
	// not change and stop propagating there.
	valid     bool
	exitKnown bool
}

// Highlighter keeps a per-line span cache and recomputes only invalidated
// lines. Invalidation propagates forward exactly as far as a line's exit
// state changes (an opened or closed multi-line construct); an edit on an
// ordinary line therefore re-lexes that line alone. Edits landing inside a
// construct that started earlier need no backward rescan: the edited line
// re-enters through the previous line's cached exit state.
type Highlighter struct {
	mu    sync.Mutex
	src   LineSource
	rules *Rules
	lines []lineCache

	// [dirtyLo, dirtyHi] bounds every invalid line; dirtyLo > dirtyHi
	// means the cache is fully current.
	dirtyLo, dirtyHi int

	recomputes int
	generation uint64
}

// New creates a highlighter over src. A nil rules value classifies
// everything as plain (unknown file types still get a span partition).
func New(src LineSource, rules *Rules) *Highlighter {
	if rules == nil {
		rules = &Rules{Name: "plain"}
	}
	h := &Highlighter{src: src, rules: rules}
	h.resetLocked()
	return h
}

// SetRules swaps the language rules and invalidates the whole cache.
func (h *Highlighter) SetRules(rules *Rules) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if rules == nil {
		rules = &Rules{Name: "plain"}
	}
	h.rules = rules
	h.resetLocked()
}

// Rules returns the active language rules.
func (h *Highlighter) Rules() *Rules {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rules
}

func (h *Highlighter) resetLocked() {
	h.lines = make([]lineCache, h.src.LineCount())
	h.dirtyLo, h.dirtyHi = 0, len(h.lines)-1
	h.generation++
}

// OnEdit splices the line cache to match the buffer and marks the minimal
// dirty window. Called synchronously after every buffer mutation, in edit
// order.
func (h *Highlighter) OnEdit(e types.EditInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()

	startLine := e.Range.Start.Line
	oldEndLine := e.Range.End.Line
	newEndLine := oldEndLine + e.LineDelta

	if startLine < 0 || oldEndLine >= len(h.lines) {
		// Contract violation: the edit was not produced by the buffer
		// this highlighter tracks.
		logger.Errorf("syntax: edit %+v outside cached bounds (%d lines)", e, len(h.lines))
		h.resetLocked()
		return
	}

	fresh := make([]lineCache, newEndLine-startLine+1)
	// The last replaced line's old exit state carries over to the window's
	// last line: if re-lexing reproduces it, propagation stops at the
	// window edge.
	old := h.lines[oldEndLine]
	fresh[len(fresh)-1] = lineCache{exit: old.exit, exitKnown: old.exitKnown}
	tail := h.lines[oldEndLine+1:]
	h.lines = append(h.lines[:startLine], append(fresh, tail...)...)

	if h.dirtyLo > h.dirtyHi {
		h.dirtyLo, h.dirtyHi = startLine, newEndLine
	} else {
		// Merge with the existing window. A tail beyond the edit shifts
		// with it; a tail ending inside the replaced lines collapses onto
		// the window's new end, so a deletion can never leave the bound
		// pointing past the spliced cache.
		if h.dirtyHi > oldEndLine {
			h.dirtyHi += e.LineDelta
		} else if h.dirtyHi >= startLine {
			h.dirtyHi = newEndLine
		}
		if startLine < h.dirtyLo {
			h.dirtyLo = startLine
		}
		if newEndLine > h.dirtyHi {
			h.dirtyHi = newEndLine
		}
	}
	if h.dirtyHi > len(h.lines)-1 {
		h.dirtyHi = len(h.lines) - 1
	}
	h.generation++
}

// SpansForLine returns the current span partition for a line, synchronously
// recomputing whatever the answer depends on. The returned slice is a
// read-only view; callers must not mutate it.
func (h *Highlighter) SpansForLine(index int) []Span {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.lines) {
		return nil
	}
	h.ensureCleanLocked(index)
	return h.lines[index].spans
}

// CachedSpans returns the best currently-available classification for a
// line without forcing recomputation. The second result reports whether
// the spans are current. Consumers like the minimap use this to avoid
// blocking on lines whose recompute is still pending.
func (h *Highlighter) CachedSpans(index int) ([]Span, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.lines) {
		return nil, false
	}
	entry := h.lines[index]
	return entry.spans, entry.valid && !h.pendingLocked(index)
}

// EndState returns the lexer state at the end of a line, recomputing as
// needed. The fold tracker uses it to skip lines inside open constructs.
func (h *Highlighter) EndState(index int) State {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.lines) {
		return State{}
	}
	h.ensureCleanLocked(index)
	return h.lines[index].exit
}

// Pending reports whether any line still awaits recomputation.
func (h *Highlighter) Pending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dirtyLo <= h.dirtyHi
}

// CatchUp recomputes up to batch pending lines, returning true once the
// cache is fully current. The background manager calls this repeatedly;
// ctx cancellation (a superseding edit) stops the walk between lines.
func (h *Highlighter) CatchUp(ctx context.Context, batch int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	start := h.generation
	for processed := 0; h.dirtyLo <= h.dirtyHi && processed < batch; processed++ {
		if ctx.Err() != nil || h.generation != start {
			return false
		}
		h.stepLocked()
	}
	return h.dirtyLo > h.dirtyHi
}

// RecomputeCount returns the number of line lexes performed so far.
// Exposed for instrumentation in tests.
func (h *Highlighter) RecomputeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recomputes
}

// ResetRecomputeCount clears the instrumentation counter.
func (h *Highlighter) ResetRecomputeCount() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recomputes = 0
}

// pendingLocked reports whether index is inside the dirty window and thus
// possibly stale.
func (h *Highlighter) pendingLocked(index int) bool {
	return h.dirtyLo <= h.dirtyHi && index >= h.dirtyLo && index <= h.dirtyHi
}

func (h *Highlighter) ensureCleanLocked(upto int) {
	for h.dirtyLo <= h.dirtyHi && h.dirtyLo <= upto {
		h.stepLocked()
	}
}

// stepLocked processes the lowest pending line, extending the window when
// its exit state changed (bounded propagation).
func (h *Highlighter) stepLocked() {
	i := h.dirtyLo
	h.dirtyLo++

	if h.lines[i].valid {
		return
	}

	enter := State{}
	if i > 0 {
		enter = h.lines[i-1].exit
	}
	text, err := h.src.LineText(i)
	if err != nil {
		text = ""
	}

	prevExit := h.lines[i].exit
	exitKnown := h.lines[i].exitKnown
	spans, exit := LexLine(text, enter, h.rules)
	h.lines[i] = lineCache{spans: spans, exit: exit, valid: true, exitKnown: true}
	h.recomputes++

	if i+1 < len(h.lines) && (!exitKnown || exit != prevExit) {
		// The construct state crossing this boundary changed: the next
		// line must re-lex with the new entry state.
		if h.lines[i+1].valid {
			h.lines[i+1].valid = false
		}
		if h.dirtyLo > i+1 {
			h.dirtyLo = i + 1
		}
		if h.dirtyHi < i+1 {
			h.dirtyHi = i + 1
		}
	}
}
