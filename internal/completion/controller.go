// internal/completion/controller.go
package completion

import (
	"sort"
	"unicode"

	"github.com/plume-editor/plume/internal/document"
	"github.com/plume-editor/plume/internal/event"
	"github.com/plume-editor/plume/internal/logger"
	"github.com/plume-editor/plume/internal/types"
)

// Controller drives word completion for one document: candidates are the
// identifiers already present in the buffer, filtered by the prefix before
// the caret. While a snippet placeholder is active, accepted text is routed
// through the snippet engine so mirrors replay; when the session ends the
// popup dismisses itself.
type Controller struct {
	doc      *document.Document
	items    []string
	selected int
	visible  bool
	prefix   string
}

// NewController wires a controller to its document's event stream.
func NewController(doc *document.Document, events *event.Manager) *Controller {
	c := &Controller{doc: doc}
	events.Subscribe(event.TypeSnippetSessionEnded, func(e event.Event) bool {
		c.Dismiss()
		return false
	})
	// Both edits and caret motion can invalidate the prefix; the buffer
	// event fires before the caret settles, so listen to both.
	refilter := func(e event.Event) bool {
		if c.visible {
			c.refilter()
		}
		return false
	}
	events.Subscribe(event.TypeBufferModified, refilter)
	events.Subscribe(event.TypeCursorMoved, refilter)
	return c
}

// Trigger opens the popup for the word before the caret. Returns false when
// there is no prefix or nothing matches.
func (c *Controller) Trigger() bool {
	prefix := c.prefixBeforeCursor()
	if prefix == "" {
		c.Dismiss()
		return false
	}
	items := c.candidates(prefix)
	if len(items) == 0 {
		c.Dismiss()
		return false
	}
	c.prefix = prefix
	c.items = items
	c.selected = 0
	c.visible = true
	logger.DebugTagf("completion", "open: prefix=%q candidates=%d", prefix, len(items))
	return true
}

// Visible reports whether the popup is open.
func (c *Controller) Visible() bool { return c.visible }

// Items returns the current candidate list.
func (c *Controller) Items() []string { return c.items }

// Selected returns the highlighted candidate index.
func (c *Controller) Selected() int { return c.selected }

// Next moves the highlight down, wrapping.
func (c *Controller) Next() {
	if c.visible && len(c.items) > 0 {
		c.selected = (c.selected + 1) % len(c.items)
	}
}

// Prev moves the highlight up, wrapping.
func (c *Controller) Prev() {
	if c.visible && len(c.items) > 0 {
		c.selected = (c.selected + len(c.items) - 1) % len(c.items)
	}
}

// Accept commits the highlighted candidate by inserting the part the user
// has not typed yet. The document routes the insertion through the snippet
// engine when a placeholder is active.
func (c *Controller) Accept() bool {
	if !c.visible || c.selected >= len(c.items) {
		return false
	}
	item := c.items[c.selected]
	remainder := item[len(c.prefix):]
	c.Dismiss()
	if remainder == "" {
		return true
	}
	c.doc.AcceptCompletion(remainder)
	return true
}

// Dismiss closes the popup.
func (c *Controller) Dismiss() {
	c.visible = false
	c.items = nil
	c.selected = 0
	c.prefix = ""
}

// refilter re-runs the candidate query after a buffer change, closing the
// popup when the prefix no longer matches anything.
func (c *Controller) refilter() {
	prefix := c.prefixBeforeCursor()
	if prefix == "" {
		c.Dismiss()
		return
	}
	items := c.candidates(prefix)
	if len(items) == 0 {
		c.Dismiss()
		return
	}
	c.prefix = prefix
	c.items = items
	if c.selected >= len(items) {
		c.selected = 0
	}
}

// prefixBeforeCursor returns the identifier fragment ending at the caret.
func (c *Controller) prefixBeforeCursor() string {
	cur := c.doc.Cursor()
	text, err := c.doc.Buffer().LineText(cur.Line)
	if err != nil {
		return ""
	}
	runes := []rune(text)
	col := cur.Col
	if col > len(runes) {
		col = len(runes)
	}
	start := col
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	return string(runes[start:col])
}

// candidates scans the buffer for identifiers starting with prefix. The
// word being typed itself is excluded so the popup never offers a no-op.
func (c *Controller) candidates(prefix string) []string {
	seen := make(map[string]bool)
	buf := c.doc.Buffer()
	for i := 0; i < buf.LineCount(); i++ {
		text, err := buf.LineText(i)
		if err != nil {
			continue
		}
		for _, word := range splitWords(text) {
			if len(word) > len(prefix) && word[:len(prefix)] == prefix {
				seen[word] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for word := range seen {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}

// ActiveRange exposes the snippet placeholder the insertion would target,
// for popup placement near the caret.
func (c *Controller) ActiveRange() (types.Range, bool) {
	return c.doc.Snippets().ActivePlaceholderRange()
}

func splitWords(text string) []string {
	var words []string
	start := -1
	runes := []rune(text)
	for i, r := range runes {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, string(runes[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, string(runes[start:]))
	}
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
