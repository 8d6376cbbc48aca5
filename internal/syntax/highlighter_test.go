// internal/syntax/highlighter_test.go
package syntax

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plume-editor/plume/internal/types"
)

// scriptSource is a minimal in-memory LineSource whose mutations mirror the
// buffer contract: every change produces the EditInfo the highlighter sees.
type scriptSource struct {
	lines []string
}

func newScriptSource(text string) *scriptSource {
	return &scriptSource{lines: strings.Split(text, "\n")}
}

func (s *scriptSource) LineCount() int { return len(s.lines) }

func (s *scriptSource) LineText(i int) (string, error) {
	if i < 0 || i >= len(s.lines) {
		return "", fmt.Errorf("line %d out of range", i)
	}
	return s.lines[i], nil
}

// setLine replaces one line's text and returns the matching edit.
func (s *scriptSource) setLine(i int, text string) types.EditInfo {
	old := s.lines[i]
	s.lines[i] = text
	e := types.DeleteEdit(
		types.Position{Line: i, Col: 0},
		types.Position{Line: i, Col: len([]rune(old))},
		len([]rune(old)),
	)
	e.Text = text
	e.NewEnd = types.Position{Line: i, Col: len([]rune(text))}
	return e
}

// insertLine inserts a new line before index i.
func (s *scriptSource) insertLine(i int, text string) types.EditInfo {
	s.lines = append(s.lines[:i], append([]string{text}, s.lines[i:]...)...)
	return types.InsertEdit(types.Position{Line: i, Col: 0}, text+"\n")
}

// deleteLine removes line i.
func (s *scriptSource) deleteLine(i int) types.EditInfo {
	removed := s.lines[i]
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	return types.DeleteEdit(
		types.Position{Line: i, Col: 0},
		types.Position{Line: i + 1, Col: 0},
		len([]rune(removed))+1,
	)
}

// deleteTail removes lines i through the end, joining at the previous
// line's end the way a buffer delete does.
func (s *scriptSource) deleteTail(i int) types.EditInfo {
	start := types.Position{Line: i - 1, Col: len([]rune(s.lines[i-1]))}
	last := len(s.lines) - 1
	end := types.Position{Line: last, Col: len([]rune(s.lines[last]))}
	deleted := 0
	for _, l := range s.lines[i:] {
		deleted += len([]rune(l)) + 1
	}
	s.lines = s.lines[:i]
	return types.DeleteEdit(start, end, deleted)
}

func drain(h *Highlighter) {
	for !h.CatchUp(context.Background(), 1024) {
	}
}

func TestHighlighterInitialFullPass(t *testing.T) {
	src := newScriptSource("x = 1\ny = 2\nz = 3")
	h := New(src, testRulesPython())

	spans := h.SpansForLine(2)
	require.NotEmpty(t, spans)
	assert.False(t, h.Pending())
	assert.Equal(t, 3, h.RecomputeCount())
}

func TestHighlighterSingleLineEditRelexesOneLine(t *testing.T) {
	src := newScriptSource("a = 1\nb = 2\nc = 3\nd = 4")
	h := New(src, testRulesPython())
	drain(h)
	h.ResetRecomputeCount()

	h.OnEdit(src.setLine(1, "b = 20  # changed"))
	drain(h)

	// An ordinary line keeps a normal exit state, so the change stops there.
	assert.Equal(t, 1, h.RecomputeCount())
	spans := h.SpansForLine(1)
	assert.Equal(t, CategoryComment, spans[len(spans)-1].Category)
}

func TestHighlighterPropagationStopsWhereStateConverges(t *testing.T) {
	src := newScriptSource("l0\nl1\nl2\nl3\nl4\nl5\nl6\nl7")
	h := New(src, testRulesGo())
	drain(h)
	h.ResetRecomputeCount()

	// Opening a block comment on line 2 must re-lex lines 2..7: every
	// following line's entry state changed.
	h.OnEdit(src.setLine(2, "/* opened"))
	drain(h)
	assert.Equal(t, 6, h.RecomputeCount())
	for i := 3; i < 8; i++ {
		spans := h.SpansForLine(i)
		require.Len(t, spans, 1, "line %d", i)
		assert.Equal(t, CategoryComment, spans[0].Category, "line %d", i)
	}

	// Closing it on line 4 re-lexes 4..7 back to normal.
	h.ResetRecomputeCount()
	h.OnEdit(src.setLine(4, "done */"))
	drain(h)
	assert.Equal(t, 4, h.RecomputeCount())
	spans := h.SpansForLine(5)
	assert.NotEqual(t, CategoryComment, spans[0].Category)
}

func TestHighlighterEditInsideOpenConstruct(t *testing.T) {
	src := newScriptSource("/* top\ninside\nstill inside\n*/\nafter")
	h := New(src, testRulesGo())
	drain(h)
	h.ResetRecomputeCount()

	// Editing a line inside the comment re-enters via the cached entry
	// state; its exit state is unchanged so nothing propagates.
	h.OnEdit(src.setLine(1, "inside, edited"))
	drain(h)
	assert.Equal(t, 1, h.RecomputeCount())
	spans := h.SpansForLine(1)
	require.Len(t, spans, 1)
	assert.Equal(t, CategoryComment, spans[0].Category)
}

func TestHighlighterLineInsertAndDelete(t *testing.T) {
	src := newScriptSource("a = 1\nb = 2\nc = 3")
	h := New(src, testRulesPython())
	drain(h)

	h.OnEdit(src.insertLine(1, "new = 0"))
	spans := h.SpansForLine(1)
	require.NotEmpty(t, spans)
	assert.Equal(t, CategoryIdentifier, spans[0].Category)
	// The shifted lines keep their classifications.
	spans = h.SpansForLine(3)
	assert.Equal(t, CategoryIdentifier, spans[0].Category)

	h.OnEdit(src.deleteLine(0))
	require.Equal(t, 3, src.LineCount())
	spans = h.SpansForLine(0)
	require.NotEmpty(t, spans)
	assert.Equal(t, "new = 0"[spans[0].StartCol:spans[0].EndCol], "new")
}

func TestHighlighterTrailingDeleteWhilePending(t *testing.T) {
	src := newScriptSource("a = 1\nb = 2\nc = 3\nd = 4\ne = 5\nf = 6")
	h := New(src, testRulesPython())

	// A partial read leaves the file's tail pending.
	h.SpansForLine(2)
	require.True(t, h.Pending())

	// Deleting the last two lines must pull the pending window back inside
	// the shrunk cache; the background pass then finishes without walking
	// past the end.
	h.OnEdit(src.deleteTail(4))
	require.Equal(t, 4, src.LineCount())
	done := h.CatchUp(context.Background(), 1024)
	assert.True(t, done)
	assert.False(t, h.Pending())
	spans := h.SpansForLine(3)
	require.NotEmpty(t, spans)
	assert.Equal(t, CategoryIdentifier, spans[0].Category)
}

func TestHighlighterSyncReadDuringPendingWindow(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "line%d = %d\n", i, i)
	}
	src := newScriptSource(strings.TrimSuffix(b.String(), "\n"))
	h := New(src, testRulesPython())

	// Reading deep into the file forces everything up to it clean.
	spans := h.SpansForLine(150)
	require.NotEmpty(t, spans)
	_, current := h.CachedSpans(150)
	assert.True(t, current)
	// Later lines are still pending until a catch-up pass runs.
	_, current = h.CachedSpans(199)
	assert.False(t, current)

	done := h.CatchUp(context.Background(), 1024)
	assert.True(t, done)
	assert.False(t, h.Pending())
}

func TestHighlighterCatchUpCancellation(t *testing.T) {
	src := newScriptSource(strings.Repeat("x = 1\n", 63) + "x = 1")
	h := New(src, testRulesPython())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := h.CatchUp(ctx, 1024)
	assert.False(t, done)
	assert.True(t, h.Pending())
}

func TestHighlighterCachedSpansNeverBlock(t *testing.T) {
	src := newScriptSource("a\nb\nc")
	h := New(src, testRulesPython())

	// Nothing lexed yet: the cache answers stale-but-fast.
	spans, current := h.CachedSpans(1)
	assert.Nil(t, spans)
	assert.False(t, current)
	assert.Equal(t, 0, h.RecomputeCount())
}

func TestHighlighterSetRulesInvalidatesAll(t *testing.T) {
	src := newScriptSource("// comment\nx = 1")
	h := New(src, testRulesGo())
	drain(h)
	spans := h.SpansForLine(0)
	require.Equal(t, CategoryComment, spans[0].Category)

	h.SetRules(testRulesPython())
	spans = h.SpansForLine(0)
	// "//" is not a comment leader in the new language.
	assert.NotEqual(t, CategoryComment, spans[0].Category)
}

func TestHighlighterEndState(t *testing.T) {
	src := newScriptSource("/* open\ninside\nclose */")
	h := New(src, testRulesGo())

	assert.True(t, h.EndState(0).Open())
	assert.True(t, h.EndState(1).Open())
	assert.False(t, h.EndState(2).Open())
}
