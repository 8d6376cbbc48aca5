// internal/completion/controller_test.go
package completion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plume-editor/plume/internal/buffer"
	"github.com/plume-editor/plume/internal/clipboard"
	"github.com/plume-editor/plume/internal/config"
	"github.com/plume-editor/plume/internal/document"
	"github.com/plume-editor/plume/internal/event"
	"github.com/plume-editor/plume/internal/snippet"
	"github.com/plume-editor/plume/internal/types"
)

func newTestController(t *testing.T, content string) (*Controller, *document.Document) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	buf := buffer.NewSliceBuffer()
	require.NoError(t, buf.Load(path))

	events := event.NewManager()
	doc, err := document.New(buf, config.NewDefaultConfig(), events, snippet.NewRegistry(), clipboard.NewManager(false), func() {})
	require.NoError(t, err)
	t.Cleanup(doc.Close)
	return NewController(doc, events), doc
}

func TestTriggerListsMatchingWords(t *testing.T) {
	c, doc := newTestController(t, "baggage = banner + ba\nbase = 1")
	doc.SetCursor(types.Position{Line: 0, Col: 21})

	require.True(t, c.Trigger())
	assert.True(t, c.Visible())
	assert.Equal(t, []string{"baggage", "banner", "base"}, c.Items())
	assert.Equal(t, 0, c.Selected())
}

func TestTriggerWithoutPrefix(t *testing.T) {
	c, doc := newTestController(t, "word ")
	doc.SetCursor(types.Position{Line: 0, Col: 5})
	assert.False(t, c.Trigger())
	assert.False(t, c.Visible())
}

func TestSelectionWraps(t *testing.T) {
	c, doc := newTestController(t, "alpha ambient azure a")
	doc.SetCursor(types.Position{Line: 0, Col: 21})
	require.True(t, c.Trigger())
	require.Len(t, c.Items(), 3)

	c.Next()
	c.Next()
	c.Next()
	assert.Equal(t, 0, c.Selected())
	c.Prev()
	assert.Equal(t, 2, c.Selected())
}

func TestAcceptInsertsRemainder(t *testing.T) {
	c, doc := newTestController(t, "baggage = 1\nba")
	doc.SetCursor(types.Position{Line: 1, Col: 2})
	require.True(t, c.Trigger())

	require.True(t, c.Accept())
	assert.False(t, c.Visible())
	text, err := doc.Buffer().LineText(1)
	require.NoError(t, err)
	assert.Equal(t, "baggage", text)
	assert.Equal(t, types.Position{Line: 1, Col: 7}, doc.Cursor())
}

func TestAcceptInsidePlaceholderReplaysMirrors(t *testing.T) {
	c, doc := newTestController(t, "count = 1\n")
	doc.SetCursor(types.Position{Line: 1, Col: 0})
	require.True(t, doc.InsertSnippet("f(${1:x}, $1)"))

	doc.InsertRune('c')
	doc.InsertRune('o')
	require.True(t, c.Trigger())
	assert.Equal(t, []string{"count"}, c.Items())

	require.True(t, c.Accept())
	text, err := doc.Buffer().LineText(1)
	require.NoError(t, err)
	assert.Equal(t, "f(count, count)", text)
}

func TestSnippetSessionEndDismisses(t *testing.T) {
	c, doc := newTestController(t, "banner = 1\nba")
	doc.SetCursor(types.Position{Line: 1, Col: 2})
	require.True(t, c.Trigger())
	require.True(t, c.Visible())

	require.True(t, doc.InsertSnippet("x$1"))
	doc.Escape()
	assert.False(t, c.Visible())
}

func TestEditRefiltersAndDismissesOnNoMatch(t *testing.T) {
	c, doc := newTestController(t, "banner = 1\nba")
	doc.SetCursor(types.Position{Line: 1, Col: 2})
	require.True(t, c.Trigger())

	doc.InsertRune('z') // "baz" matches nothing
	assert.False(t, c.Visible())
}
