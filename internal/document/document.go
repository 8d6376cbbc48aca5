// internal/document/document.go
package document

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/plume-editor/plume/internal/buffer"
	"github.com/plume-editor/plume/internal/clipboard"
	"github.com/plume-editor/plume/internal/config"
	"github.com/plume-editor/plume/internal/event"
	"github.com/plume-editor/plume/internal/fold"
	"github.com/plume-editor/plume/internal/logger"
	"github.com/plume-editor/plume/internal/snippet"
	"github.com/plume-editor/plume/internal/syntax"
	"github.com/plume-editor/plume/internal/syntax/lang"
	"github.com/plume-editor/plume/internal/types"
)

// Document is the per-document context: one buffer plus one instance each
// of the highlighter, snippet engine and fold tracker, all serialized on
// the owner's event loop. Nothing here is shared across open documents.
type Document struct {
	buf      *buffer.SliceBuffer
	events   *event.Manager
	rules    *syntax.Rules
	hl       *syntax.Highlighter
	hlMgr    *syntax.Manager
	folds    *fold.Tracker
	snippets *snippet.Engine
	registry *snippet.Registry
	clip     *clipboard.Manager
	cfg      *config.Config

	cursor types.Position
}

// New creates a document over an already-loaded buffer. redraw is handed to
// the background highlight manager.
func New(buf *buffer.SliceBuffer, cfg *config.Config, events *event.Manager, registry *snippet.Registry, clip *clipboard.Manager, redraw func()) (*Document, error) {
	d := &Document{
		buf:      buf,
		events:   events,
		registry: registry,
		clip:     clip,
		cfg:      cfg,
	}

	d.rules = lang.NewRegistry().ForFile(buf.FilePath())
	d.hl = syntax.New(buf, d.rules)
	d.hlMgr = syntax.NewManager(d.hl, redraw)

	signal := syntax.FoldIndentation
	if d.rules != nil {
		signal = d.rules.Fold
	}
	d.folds = fold.NewTracker(buf, d.hl, signal, cfg.Editor.TabWidth)

	reentry, err := snippet.ParseReentryPolicy(cfg.Snippet.Reentry)
	if err != nil {
		return nil, fmt.Errorf("configuring snippet engine: %w", err)
	}
	d.snippets = snippet.NewEngine(engineBuffer{d}, snippet.Options{
		AutoPair: cfg.Editor.AutoPair,
		Reentry:  reentry,
	})

	d.hlMgr.NotifyEdit() // warm the span cache off the input path
	return d, nil
}

// engineBuffer is the mutation surface handed to the snippet engine. Its
// edits update the derived state (highlighter, folds) and notify listeners,
// but do NOT feed back into the engine's own OnEdit: the engine translates
// its edits itself.
type engineBuffer struct {
	d *Document
}

func (b engineBuffer) Insert(pos types.Position, text []byte) (types.EditInfo, error) {
	e, err := b.d.buf.Insert(pos, text)
	if err != nil {
		return e, err
	}
	b.d.applyDerived(e)
	return e, nil
}

func (b engineBuffer) Delete(start, end types.Position) (types.EditInfo, error) {
	e, err := b.d.buf.Delete(start, end)
	if err != nil {
		return e, err
	}
	b.d.applyDerived(e)
	return e, nil
}

func (b engineBuffer) LineText(index int) (string, error) {
	return b.d.buf.LineText(index)
}

// applyDerived updates everything derived from buffer content after one
// edit, in a fixed order: spans first (folds read them), then folds, then
// listeners.
func (d *Document) applyDerived(e types.EditInfo) {
	d.hl.OnEdit(e)
	d.hlMgr.NotifyEdit()
	d.folds.Rebuild(e)
	d.events.Dispatch(event.TypeBufferModified, event.BufferModifiedData{Edit: e})
}

// apply handles an edit made outside the snippet engine: derived state
// updates plus placeholder range translation.
func (d *Document) apply(e types.EditInfo) {
	d.applyDerived(e)
	d.snippets.OnEdit(e)
}

// --- Accessors ---

func (d *Document) Buffer() *buffer.SliceBuffer  { return d.buf }
func (d *Document) Snippets() *snippet.Engine    { return d.snippets }
func (d *Document) Folds() *fold.Tracker         { return d.folds }
func (d *Document) Highlighter() *syntax.Manager { return d.hlMgr }
func (d *Document) Cursor() types.Position       { return d.cursor }

// Rules returns the document's language rules (nil for plain text).
func (d *Document) Rules() *syntax.Rules { return d.rules }

// SpansForLine returns current spans, synchronously recomputed as needed.
func (d *Document) SpansForLine(index int) []syntax.Span {
	return d.hl.SpansForLine(index)
}

// CachedSpans is the non-blocking variant for the minimap.
func (d *Document) CachedSpans(index int) ([]syntax.Span, bool) {
	return d.hl.CachedSpans(index)
}

// Close stops the document's background work.
func (d *Document) Close() {
	d.hlMgr.Shutdown()
}

// --- Cursor ---

// SetCursor clamps and moves the caret.
func (d *Document) SetCursor(pos types.Position) {
	d.cursor = d.clamp(pos)
	d.events.Dispatch(event.TypeCursorMoved, event.CursorMovedData{NewPosition: d.cursor})
}

// MoveCursor shifts the caret by whole lines/columns, clamped to content.
func (d *Document) MoveCursor(deltaLine, deltaCol int) {
	d.SetCursor(types.Position{Line: d.cursor.Line + deltaLine, Col: d.cursor.Col + deltaCol})
}

func (d *Document) clamp(pos types.Position) types.Position {
	if pos.Line < 0 {
		pos.Line = 0
	}
	if max := d.buf.LineCount() - 1; pos.Line > max {
		pos.Line = max
	}
	text, err := d.buf.LineText(pos.Line)
	if err != nil {
		return types.Position{}
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	if n := len([]rune(text)); pos.Col > n {
		pos.Col = n
	}
	return pos
}

// --- Editing operations ---

// InsertRune handles one typed character: the snippet engine gets first
// refusal, then auto-pairing, then a plain insert.
func (d *Document) InsertRune(r rune) {
	if fx := d.snippets.HandleKeystroke(r, d.cursor); fx.Handled {
		d.applyEffects(fx)
		return
	}

	text := string(r)
	if d.cfg.Editor.AutoPair {
		switch {
		case d.skipOverCloser(r):
			d.SetCursor(types.Position{Line: d.cursor.Line, Col: d.cursor.Col + 1})
			return
		case isPairOpener(r) && d.shouldPair():
			text = string(r) + string(pairCloser(r))
		}
	}

	e, err := d.buf.Insert(d.cursor, []byte(text))
	if err != nil {
		logger.Errorf("document: insert failed: %v", err)
		return
	}
	d.apply(e)
	d.SetCursor(types.Advance(d.cursor, string(r)))
}

// InsertNewline handles Enter: snippet confirmation first, then a line
// break carrying the current indentation (plus one level after a
// block-opening line when auto-indent is on).
func (d *Document) InsertNewline() {
	if fx := d.snippets.HandleEnter(); fx.Handled {
		d.applyEffects(fx)
		return
	}

	text := "\n"
	if d.cfg.Editor.AutoIndent {
		text += d.newlineIndent()
	}
	e, err := d.buf.Insert(d.cursor, []byte(text))
	if err != nil {
		logger.Errorf("document: newline insert failed: %v", err)
		return
	}
	d.apply(e)
	d.SetCursor(e.NewEnd)
}

// Backspace deletes the rune before the caret, joining lines at column 0.
// Inside a snippet placeholder deletion is contained by the engine.
func (d *Document) Backspace() {
	if fx := d.snippets.HandleBackspace(d.cursor); fx.Handled {
		d.applyEffects(fx)
		return
	}

	if d.cursor.Col == 0 {
		if d.cursor.Line == 0 {
			return
		}
		prevText, err := d.buf.LineText(d.cursor.Line - 1)
		if err != nil {
			return
		}
		join := types.Position{Line: d.cursor.Line - 1, Col: len([]rune(prevText))}
		e, err := d.buf.Delete(join, types.Position{Line: d.cursor.Line, Col: 0})
		if err != nil {
			logger.Errorf("document: line join failed: %v", err)
			return
		}
		d.apply(e)
		d.SetCursor(join)
		return
	}

	from := types.Position{Line: d.cursor.Line, Col: d.cursor.Col - 1}
	e, err := d.buf.Delete(from, d.cursor)
	if err != nil {
		logger.Errorf("document: backspace failed: %v", err)
		return
	}
	d.apply(e)
	d.SetCursor(from)
}

// DeleteForward deletes the rune under the caret, joining with the next
// line at end of line. The caret does not move.
func (d *Document) DeleteForward() {
	text, err := d.buf.LineText(d.cursor.Line)
	if err != nil {
		return
	}
	end := types.Position{Line: d.cursor.Line, Col: d.cursor.Col + 1}
	if d.cursor.Col >= len([]rune(text)) {
		if d.cursor.Line == d.buf.LineCount()-1 {
			return
		}
		end = types.Position{Line: d.cursor.Line + 1, Col: 0}
	}
	e, err := d.buf.Delete(d.cursor, end)
	if err != nil {
		logger.Errorf("document: delete failed: %v", err)
		return
	}
	d.apply(e)
}

// InsertTab handles the Tab key: placeholder advance while a session is
// active, otherwise a literal tab.
func (d *Document) InsertTab() {
	if fx := d.snippets.HandleTab(); fx.Handled {
		d.applyEffects(fx)
		return
	}

	e, err := d.buf.Insert(d.cursor, []byte("\t"))
	if err != nil {
		logger.Errorf("document: tab insert failed: %v", err)
		return
	}
	d.apply(e)
	d.SetCursor(e.NewEnd)
}

// Escape abandons the active snippet session, if any. Reports whether the
// key was consumed.
func (d *Document) Escape() bool {
	fx := d.snippets.HandleEscape()
	if fx.Handled {
		d.applyEffects(fx)
	}
	return fx.Handled
}

// --- Snippets ---

// ExpandSnippet replaces the word before the caret with the template it
// triggers. Returns false when no trigger matches.
func (d *Document) ExpandSnippet() bool {
	word, start := d.wordBeforeCursor()
	if word == "" {
		return false
	}
	body, ok := d.registry.Lookup(d.languageName(), word)
	if !ok {
		return false
	}

	e, err := d.buf.Delete(start, d.cursor)
	if err != nil {
		logger.Errorf("document: trigger word delete failed: %v", err)
		return false
	}
	d.apply(e)
	d.cursor = start

	return d.InsertSnippet(body)
}

// InsertSnippet inserts a template body at the caret and starts a session.
func (d *Document) InsertSnippet(body string) bool {
	fx, err := d.snippets.InsertSnippet(body, d.cursor)
	if err != nil {
		logger.Warnf("document: snippet rejected: %v", err)
		return false
	}
	d.applyEffects(fx)
	return true
}

// AcceptCompletion commits completion text. While a placeholder is active
// the engine owns the insertion point and mirror replay; otherwise the text
// lands at the caret.
func (d *Document) AcceptCompletion(text string) {
	if fx := d.snippets.InsertText(text, d.cursor); fx.Handled {
		d.applyEffects(fx)
		return
	}
	e, err := d.buf.Insert(d.cursor, []byte(text))
	if err != nil {
		logger.Errorf("document: completion insert failed: %v", err)
		return
	}
	d.apply(e)
	d.SetCursor(e.NewEnd)
}

// --- Folds ---

// ToggleFold flips the region headed at the caret's line.
func (d *Document) ToggleFold() bool {
	r := d.folds.RegionAtHeader(d.cursor.Line)
	if r == nil {
		return false
	}
	d.folds.Toggle(r.ID)
	d.events.Dispatch(event.TypeFoldsChanged, event.FoldsChangedData{})
	return true
}

// --- Clipboard ---

// YankLine copies the caret's line (with its newline) to the clipboard.
func (d *Document) YankLine() {
	text, err := d.buf.LineText(d.cursor.Line)
	if err != nil {
		return
	}
	d.clip.Write(text + "\n")
}

// Paste inserts clipboard content. Inside a placeholder it behaves like a
// completion acceptance so mirrors stay consistent.
func (d *Document) Paste() {
	text := d.clip.Read()
	if text == "" {
		return
	}
	d.AcceptCompletion(text)
}

// --- Persistence ---

// Save writes the buffer and announces it.
func (d *Document) Save(filePath string) error {
	if err := d.buf.Save(filePath); err != nil {
		return err
	}
	d.events.Dispatch(event.TypeBufferSaved, event.BufferSavedData{FilePath: d.buf.FilePath()})
	return nil
}

// --- Helpers ---

func (d *Document) applyEffects(fx snippet.Effects) {
	if fx.SessionStarted {
		if id, ok := d.snippets.SessionID(); ok {
			d.events.Dispatch(event.TypeSnippetSessionStarted, event.SnippetSessionData{SessionID: id})
		}
	}
	if fx.SessionEnded {
		d.events.Dispatch(event.TypeSnippetSessionEnded, event.SnippetSessionData{})
	}
	if fx.Cursor != nil {
		d.SetCursor(*fx.Cursor)
	}
}

func (d *Document) languageName() string {
	if d.rules == nil {
		return ""
	}
	return d.rules.Name
}

// wordBeforeCursor returns the identifier immediately before the caret and
// its start position.
func (d *Document) wordBeforeCursor() (string, types.Position) {
	text, err := d.buf.LineText(d.cursor.Line)
	if err != nil {
		return "", d.cursor
	}
	runes := []rune(text)
	col := d.cursor.Col
	if col > len(runes) {
		col = len(runes)
	}
	start := col
	for start > 0 && (unicode.IsLetter(runes[start-1]) || unicode.IsDigit(runes[start-1]) || runes[start-1] == '_') {
		start--
	}
	return string(runes[start:col]), types.Position{Line: d.cursor.Line, Col: start}
}

// newlineIndent computes the indentation carried onto a new line: the
// current line's leading whitespace, deepened by one level after a line
// that opens a block (':' for colon languages, '{' '(' '[' otherwise).
func (d *Document) newlineIndent() string {
	text, err := d.buf.LineText(d.cursor.Line)
	if err != nil {
		return ""
	}
	runes := []rune(text)
	head := runes
	if d.cursor.Col < len(head) {
		head = head[:d.cursor.Col]
	}

	var indent strings.Builder
	for _, r := range head {
		if r != ' ' && r != '\t' {
			break
		}
		indent.WriteRune(r)
	}

	trimmed := strings.TrimRight(string(head), " \t")
	if trimmed != "" {
		last := trimmed[len(trimmed)-1]
		colonLang := d.rules != nil && d.rules.IndentAfterColon
		if (colonLang && last == ':') || last == '{' || last == '(' || last == '[' {
			if strings.Contains(indent.String(), "\t") || d.cfg.Editor.TabWidth <= 0 {
				indent.WriteByte('\t')
			} else {
				indent.WriteString(strings.Repeat(" ", d.cfg.Editor.TabWidth))
			}
		}
	}
	return indent.String()
}

// skipOverCloser reports whether typing r should just step over an
// identical closer already at the caret.
func (d *Document) skipOverCloser(r rune) bool {
	if !isPairCloser(r) {
		return false
	}
	text, err := d.buf.LineText(d.cursor.Line)
	if err != nil {
		return false
	}
	runes := []rune(text)
	return d.cursor.Col < len(runes) && runes[d.cursor.Col] == r
}

// shouldPair avoids auto-closing right before a word character.
func (d *Document) shouldPair() bool {
	text, err := d.buf.LineText(d.cursor.Line)
	if err != nil {
		return true
	}
	runes := []rune(text)
	if d.cursor.Col >= len(runes) {
		return true
	}
	next := runes[d.cursor.Col]
	return !(unicode.IsLetter(next) || unicode.IsDigit(next) || next == '_')
}

func isPairOpener(r rune) bool {
	switch r {
	case '(', '[', '{', '"', '\'':
		return true
	}
	return false
}

func isPairCloser(r rune) bool {
	switch r {
	case ')', ']', '}', '"', '\'':
		return true
	}
	return false
}

func pairCloser(r rune) rune {
	switch r {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return r
}
