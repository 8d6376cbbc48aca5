// internal/tui/drawing.go
package tui

import (
	"fmt"
	"math"

	"github.com/rivo/uniseg"

	"github.com/plume-editor/plume/internal/completion"
	"github.com/plume-editor/plume/internal/config"
	"github.com/plume-editor/plume/internal/document"
	"github.com/plume-editor/plume/internal/logger"
	"github.com/plume-editor/plume/internal/minimap"
	"github.com/plume-editor/plume/internal/snippet"
	"github.com/plume-editor/plume/internal/syntax"
	"github.com/plume-editor/plume/internal/theme"
	"github.com/plume-editor/plume/internal/types"
)

const minimapWidth = config.MinimapWidth

// View bundles what one frame needs: the document, the viewport into its
// fold-elided rows, and the optional surfaces.
type View struct {
	Doc        *document.Document
	Completion *completion.Controller

	// TopRow indexes into the fold-elided visible rows, not buffer lines.
	TopRow  int
	LeftCol int // horizontal scroll in visual columns

	TabWidth    int
	ShowMinimap bool
}

// minimapSource adapts the document to the minimap's non-blocking read
// surface.
type minimapSource struct {
	doc *document.Document
}

func (s minimapSource) LineCount() int                          { return s.doc.Buffer().LineCount() }
func (s minimapSource) LineText(i int) (string, error)          { return s.doc.Buffer().LineText(i) }
func (s minimapSource) CachedSpans(i int) ([]syntax.Span, bool) { return s.doc.CachedSpans(i) }

// VisualColumn converts a rune index on a line to its visual column.
func VisualColumn(line string, runeIndex int) int {
	if runeIndex <= 0 {
		return 0
	}
	visualWidth := 0
	currentRuneIndex := 0

	gr := uniseg.NewGraphemes(line)
	for gr.Next() {
		if currentRuneIndex >= runeIndex {
			break
		}
		visualWidth += gr.Width()
		currentRuneIndex += len(gr.Runes())
	}
	return visualWidth
}

// isPositionWithin checks pos against the half-open range [start, end).
func isPositionWithin(pos, start, end types.Position) bool {
	if pos.Line < start.Line || pos.Line > end.Line {
		return false
	}
	if pos.Line == start.Line && pos.Col < start.Col {
		return false
	}
	if pos.Line == end.Line && pos.Col >= end.Col {
		return false
	}
	return true
}

// DrawBuffer draws the visible, fold-elided portion of the document.
func DrawBuffer(tuiManager *TUI, view *View, activeTheme *theme.Theme) {
	if activeTheme == nil {
		activeTheme = theme.GetCurrentTheme()
	}
	doc := view.Doc

	defaultStyle := activeTheme.GetStyle("Default")
	gutterStyle := activeTheme.GetStyle("Gutter")
	foldStyle := activeTheme.GetStyle("FoldIndicator")
	foldedLineStyle := activeTheme.GetStyle("FoldedLine")
	activePH := activeTheme.GetStyle("PlaceholderActive")
	pendingPH := activeTheme.GetStyle("PlaceholderPending")

	width, height := tuiManager.Size()
	statusBarHeight := 1
	viewHeight := height - statusBarHeight
	if viewHeight <= 0 || width <= 0 {
		return
	}

	rows := doc.Folds().VisibleLines()
	lineCount := doc.Buffer().LineCount()
	if lineCount == 0 {
		lineCount = 1
	}

	// Gutter: line numbers plus one fold-indicator column.
	maxDigits := int(math.Log10(float64(lineCount))) + 1
	gutterWidth := maxDigits + 2
	if gutterWidth >= width {
		gutterWidth = 0
	}
	textAreaWidth := width - gutterWidth
	if view.ShowMinimap && textAreaWidth > minimapWidth*2 {
		textAreaWidth -= minimapWidth + 1
	}

	overlays := doc.Snippets().Overlays()

	for screenY := 0; screenY < viewHeight; screenY++ {
		rowIdx := view.TopRow + screenY

		for fillX := 0; fillX < gutterWidth+textAreaWidth; fillX++ {
			tuiManager.screen.SetContent(fillX, screenY, ' ', nil, defaultStyle)
		}

		if rowIdx < 0 || rowIdx >= len(rows) {
			continue
		}
		bufferLineIdx := rows[rowIdx]

		region := doc.Folds().RegionAtHeader(bufferLineIdx)
		collapsed := region != nil && region.Collapsed

		// --- Gutter ---
		if gutterWidth > 0 {
			lineNumStr := fmt.Sprintf("%*d", maxDigits, bufferLineIdx+1)
			numStyle := gutterStyle
			if doc.Cursor().Line == bufferLineIdx {
				numStyle = gutterStyle.Bold(true)
			}
			for i, r := range lineNumStr {
				tuiManager.screen.SetContent(i, screenY, r, nil, numStyle)
			}
			if region != nil {
				indicator := '▾'
				if collapsed {
					indicator = '▸'
				}
				tuiManager.screen.SetContent(maxDigits, screenY, indicator, nil, foldStyle)
			}
		}

		// --- Text ---
		lineStr, err := doc.Buffer().LineText(bufferLineIdx)
		if err != nil {
			logger.Debugf("draw: line %d unavailable: %v", bufferLineIdx, err)
			continue
		}
		spans := doc.SpansForLine(bufferLineIdx)

		gr := uniseg.NewGraphemes(lineStr)
		currentVisualX := 0
		currentRuneIndex := 0

		for gr.Next() {
			clusterRunes := gr.Runes()
			clusterWidth := gr.Width()
			clusterVisualStart := currentVisualX
			screenX := (clusterVisualStart - view.LeftCol) + gutterWidth

			if clusterVisualStart+clusterWidth > view.LeftCol && clusterVisualStart < view.LeftCol+textAreaWidth {
				currentStyle := defaultStyle
				currentPos := types.Position{Line: bufferLineIdx, Col: currentRuneIndex}

				for _, span := range spans {
					if currentRuneIndex >= span.StartCol && currentRuneIndex < span.EndCol {
						currentStyle = activeTheme.GetStyle(span.Category.String())
						break
					}
				}
				for _, ov := range overlays {
					if !isPositionWithin(currentPos, ov.Range.Start, ov.Range.End) {
						continue
					}
					if ov.Kind == snippet.RefreshActive {
						currentStyle = activePH
					} else {
						currentStyle = pendingPH
					}
					break
				}
				if collapsed {
					currentStyle = foldedLineStyle
				}

				if screenX >= gutterWidth && screenX < gutterWidth+textAreaWidth {
					mainRune := clusterRunes[0]
					if mainRune == '\t' {
						tw := view.TabWidth
						if tw <= 0 {
							tw = 4
						}
						spaces := tw - (clusterVisualStart % tw)
						for i := 0; i < spaces && screenX+i < gutterWidth+textAreaWidth; i++ {
							tuiManager.screen.SetContent(screenX+i, screenY, ' ', nil, currentStyle)
						}
						clusterWidth = spaces
					} else {
						tuiManager.screen.SetContent(screenX, screenY, mainRune, clusterRunes[1:], currentStyle)
						for cw := 1; cw < clusterWidth; cw++ {
							if screenX+cw < gutterWidth+textAreaWidth {
								tuiManager.screen.SetContent(screenX+cw, screenY, ' ', nil, currentStyle)
							}
						}
					}
				}
			}

			currentVisualX += clusterWidth
			currentRuneIndex += len(clusterRunes)
			if currentVisualX >= view.LeftCol+textAreaWidth {
				break
			}
		}

		// Collapsed headers get an ellipsis marker after their text.
		if collapsed {
			markerX := (currentVisualX - view.LeftCol) + gutterWidth + 1
			for _, r := range " ⋯" {
				if markerX < gutterWidth+textAreaWidth {
					tuiManager.screen.SetContent(markerX, screenY, r, nil, foldStyle)
					markerX++
				}
			}
		}
	}

	if view.ShowMinimap {
		drawMinimap(tuiManager, view, activeTheme, width, viewHeight)
	}
	drawCompletion(tuiManager, view, activeTheme, gutterWidth, textAreaWidth, viewHeight)
}

// drawMinimap paints the condensed document column on the right edge. It
// reads only cached spans, so it never waits on the highlighter.
func drawMinimap(tuiManager *TUI, view *View, activeTheme *theme.Theme, width, viewHeight int) {
	if width <= minimapWidth*2 {
		return
	}
	left := width - minimapWidth
	base := activeTheme.GetStyle("Minimap")

	for y := 0; y < viewHeight; y++ {
		tuiManager.screen.SetContent(left-1, y, '│', nil, base)
		for x := 0; x < minimapWidth; x++ {
			tuiManager.screen.SetContent(left+x, y, ' ', nil, base)
		}
	}

	frame := minimap.Render(minimapSource{doc: view.Doc}, minimapWidth, viewHeight)
	for y, blocks := range frame.Rows {
		for _, b := range blocks {
			style := activeTheme.GetStyle(b.Category.String()).Dim(true)
			for x := b.StartCol; x < b.EndCol && x < minimapWidth; x++ {
				tuiManager.screen.SetContent(left+x, y, '▪', nil, style)
			}
		}
	}
}

// drawCompletion paints the candidate popup below the caret.
func drawCompletion(tuiManager *TUI, view *View, activeTheme *theme.Theme, gutterWidth, textAreaWidth, viewHeight int) {
	c := view.Completion
	if c == nil || !c.Visible() {
		return
	}
	items := c.Items()
	if len(items) == 0 {
		return
	}

	popupStyle := activeTheme.GetStyle("StatusBar")
	selectedStyle := popupStyle.Reverse(true)

	popupWidth := 0
	for _, item := range items {
		if w := uniseg.StringWidth(item) + 2; w > popupWidth {
			popupWidth = w
		}
	}
	maxItems := len(items)
	if maxItems > 8 {
		maxItems = 8
	}

	cursor := view.Doc.Cursor()
	screenY := screenRowFor(view, cursor.Line) + 1
	lineStr, _ := view.Doc.Buffer().LineText(cursor.Line)
	screenX := (VisualColumn(lineStr, cursor.Col) - view.LeftCol) + gutterWidth
	if screenX+popupWidth > gutterWidth+textAreaWidth {
		screenX = gutterWidth + textAreaWidth - popupWidth
	}
	if screenX < gutterWidth {
		screenX = gutterWidth
	}

	first := 0
	if c.Selected() >= maxItems {
		first = c.Selected() - maxItems + 1
	}
	for i := 0; i < maxItems && screenY+i < viewHeight; i++ {
		item := items[first+i]
		style := popupStyle
		if first+i == c.Selected() {
			style = selectedStyle
		}
		x := screenX
		for _, r := range " " + item {
			if x >= gutterWidth+textAreaWidth {
				break
			}
			tuiManager.screen.SetContent(x, screenY+i, r, nil, style)
			x++
		}
		for ; x < screenX+popupWidth && x < gutterWidth+textAreaWidth; x++ {
			tuiManager.screen.SetContent(x, screenY+i, ' ', nil, style)
		}
	}
}

// screenRowFor maps a buffer line to its screen row through the fold
// elision, or -1 when the line is hidden or scrolled off.
func screenRowFor(view *View, bufferLine int) int {
	rows := view.Doc.Folds().VisibleLines()
	for i, l := range rows {
		if l == bufferLine {
			return i - view.TopRow
		}
	}
	return -1
}

// DrawCursor positions the terminal cursor, hiding it when the caret's line
// is folded away or scrolled out of view.
func DrawCursor(tuiManager *TUI, view *View) {
	doc := view.Doc
	cursor := doc.Cursor()

	width, height := tuiManager.Size()
	viewHeight := height - 1

	lineCount := doc.Buffer().LineCount()
	if lineCount == 0 {
		lineCount = 1
	}
	maxDigits := int(math.Log10(float64(lineCount))) + 1
	gutterWidth := maxDigits + 2
	if gutterWidth >= width {
		gutterWidth = 0
	}
	textAreaWidth := width - gutterWidth
	if view.ShowMinimap && textAreaWidth > minimapWidth*2 {
		textAreaWidth -= minimapWidth + 1
	}

	screenY := screenRowFor(view, cursor.Line)
	if screenY < 0 || screenY >= viewHeight {
		tuiManager.screen.HideCursor()
		return
	}

	lineStr, err := doc.Buffer().LineText(cursor.Line)
	if err != nil {
		tuiManager.screen.HideCursor()
		return
	}
	screenX := (VisualColumn(lineStr, cursor.Col) - view.LeftCol) + gutterWidth
	if screenX < gutterWidth || screenX >= gutterWidth+textAreaWidth {
		tuiManager.screen.HideCursor()
		return
	}
	tuiManager.screen.ShowCursor(screenX, screenY)
}
