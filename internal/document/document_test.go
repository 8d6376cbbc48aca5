// internal/document/document_test.go
package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plume-editor/plume/internal/buffer"
	"github.com/plume-editor/plume/internal/clipboard"
	"github.com/plume-editor/plume/internal/config"
	"github.com/plume-editor/plume/internal/event"
	"github.com/plume-editor/plume/internal/snippet"
	"github.com/plume-editor/plume/internal/syntax"
	"github.com/plume-editor/plume/internal/types"
)

func newTestDocument(t *testing.T, name, content string) (*Document, *event.Manager) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	buf := buffer.NewSliceBuffer()
	require.NoError(t, buf.Load(path))

	events := event.NewManager()
	doc, err := New(buf, config.NewDefaultConfig(), events, snippet.NewRegistry(), clipboard.NewManager(false), func() {})
	require.NoError(t, err)
	t.Cleanup(doc.Close)
	return doc, events
}

func line(t *testing.T, d *Document, i int) string {
	t.Helper()
	text, err := d.Buffer().LineText(i)
	require.NoError(t, err)
	return text
}

func TestTypingUpdatesBufferSpansAndCursor(t *testing.T) {
	doc, events := newTestDocument(t, "a.py", "x = 1")

	var edits int
	events.Subscribe(event.TypeBufferModified, func(e event.Event) bool {
		edits++
		return false
	})

	doc.SetCursor(types.Position{Line: 0, Col: 5})
	doc.InsertRune(' ')
	doc.InsertRune('#')

	assert.Equal(t, "x = 1 #", line(t, doc, 0))
	assert.Equal(t, 2, edits)
	assert.Equal(t, types.Position{Line: 0, Col: 7}, doc.Cursor())

	spans := doc.SpansForLine(0)
	last := spans[len(spans)-1]
	assert.Equal(t, syntax.CategoryComment, last.Category)
}

func TestExpandSnippetFromTriggerWord(t *testing.T) {
	doc, events := newTestDocument(t, "a.py", "for")

	var started bool
	events.Subscribe(event.TypeSnippetSessionStarted, func(e event.Event) bool {
		started = true
		return false
	})

	doc.SetCursor(types.Position{Line: 0, Col: 3})
	require.True(t, doc.ExpandSnippet())

	assert.True(t, started)
	assert.Equal(t, "for item in items:", line(t, doc, 0))
	assert.Equal(t, "    pass", line(t, doc, 1))
	assert.Equal(t, snippet.StateActive, doc.Snippets().State())
	// Caret sits on the first placeholder.
	assert.Equal(t, types.Position{Line: 0, Col: 4}, doc.Cursor())
}

func TestExpandSnippetUnknownTrigger(t *testing.T) {
	doc, _ := newTestDocument(t, "a.py", "zzz")
	doc.SetCursor(types.Position{Line: 0, Col: 3})
	assert.False(t, doc.ExpandSnippet())
	assert.Equal(t, "zzz", line(t, doc, 0))
}

func TestSnippetSessionKeystrokesAreIntercepted(t *testing.T) {
	doc, events := newTestDocument(t, "a.py", "for")

	var ended bool
	events.Subscribe(event.TypeSnippetSessionEnded, func(e event.Event) bool {
		ended = true
		return false
	})

	doc.SetCursor(types.Position{Line: 0, Col: 3})
	require.True(t, doc.ExpandSnippet())

	doc.InsertRune('x')
	assert.Equal(t, "for x in items:", line(t, doc, 0))

	doc.InsertTab()
	doc.InsertTab()
	doc.InsertNewline() // confirms the last placeholder, ends the session
	assert.True(t, ended)
	assert.Equal(t, snippet.StateInactive, doc.Snippets().State())
	assert.Equal(t, types.Position{Line: 1, Col: 8}, doc.Cursor())
}

func TestEscapeLeavesTextInPlace(t *testing.T) {
	doc, _ := newTestDocument(t, "a.py", "for")
	doc.SetCursor(types.Position{Line: 0, Col: 3})
	require.True(t, doc.ExpandSnippet())

	require.True(t, doc.Escape())
	assert.Equal(t, snippet.StateInactive, doc.Snippets().State())
	assert.Equal(t, "for item in items:", line(t, doc, 0))

	// Second Escape is a plain no-op.
	assert.False(t, doc.Escape())
}

func TestAutoPairAndSkipOver(t *testing.T) {
	doc, _ := newTestDocument(t, "a.py", "")

	doc.InsertRune('(')
	assert.Equal(t, "()", line(t, doc, 0))
	assert.Equal(t, types.Position{Line: 0, Col: 1}, doc.Cursor())

	// Typing the closer steps over the auto-inserted one.
	doc.InsertRune(')')
	assert.Equal(t, "()", line(t, doc, 0))
	assert.Equal(t, types.Position{Line: 0, Col: 2}, doc.Cursor())
}

func TestAutoIndentAfterColon(t *testing.T) {
	doc, _ := newTestDocument(t, "a.py", "def f():")
	doc.SetCursor(types.Position{Line: 0, Col: 8})

	doc.InsertNewline()
	assert.Equal(t, "    ", line(t, doc, 1))
	assert.Equal(t, types.Position{Line: 1, Col: 4}, doc.Cursor())
}

func TestBackspaceJoinsLines(t *testing.T) {
	doc, _ := newTestDocument(t, "a.py", "ab\ncd")
	doc.SetCursor(types.Position{Line: 1, Col: 0})

	doc.Backspace()
	assert.Equal(t, "abcd", line(t, doc, 0))
	assert.Equal(t, 1, doc.Buffer().LineCount())
	assert.Equal(t, types.Position{Line: 0, Col: 2}, doc.Cursor())
}

func TestToggleFoldFromHeaderLine(t *testing.T) {
	doc, events := newTestDocument(t, "a.py", "def f():\n    a\n    b\ntail")

	var changed bool
	events.Subscribe(event.TypeFoldsChanged, func(e event.Event) bool {
		changed = true
		return false
	})

	doc.SetCursor(types.Position{Line: 0, Col: 0})
	require.True(t, doc.ToggleFold())
	assert.True(t, changed)
	assert.Equal(t, []int{0, 3}, doc.Folds().VisibleLines())

	doc.SetCursor(types.Position{Line: 3, Col: 0})
	assert.False(t, doc.ToggleFold())
}

func TestAcceptCompletionInsidePlaceholderReplaysMirrors(t *testing.T) {
	doc, _ := newTestDocument(t, "a.go", "")
	require.True(t, doc.InsertSnippet("f(${1:x}, $1)"))

	doc.AcceptCompletion("value")
	assert.Equal(t, "f(value, value)", line(t, doc, 0))
}

func TestYankAndPaste(t *testing.T) {
	doc, _ := newTestDocument(t, "a.py", "hello\nworld")

	doc.SetCursor(types.Position{Line: 0, Col: 0})
	doc.YankLine()

	doc.SetCursor(types.Position{Line: 1, Col: 5})
	doc.Paste()
	assert.Equal(t, "worldhello", line(t, doc, 1))
	assert.Equal(t, 3, doc.Buffer().LineCount())
}

func TestSaveDispatchesEvent(t *testing.T) {
	doc, events := newTestDocument(t, "a.py", "x = 1")

	var saved bool
	events.Subscribe(event.TypeBufferSaved, func(e event.Event) bool {
		saved = true
		return false
	})

	doc.InsertRune('!')
	require.NoError(t, doc.Save(""))
	assert.True(t, saved)
	assert.False(t, doc.Buffer().IsModified())
}

func TestCursorClamping(t *testing.T) {
	doc, _ := newTestDocument(t, "a.py", "short\nlonger line")

	doc.SetCursor(types.Position{Line: 99, Col: 99})
	assert.Equal(t, types.Position{Line: 1, Col: 11}, doc.Cursor())

	doc.MoveCursor(-5, 0)
	assert.Equal(t, 0, doc.Cursor().Line)
	assert.LessOrEqual(t, doc.Cursor().Col, 5)
}
