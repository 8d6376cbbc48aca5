// internal/minimap/minimap.go
package minimap

import (
	"github.com/plume-editor/plume/internal/syntax"
)

// Source is the read surface the minimap projects from. CachedSpans must
// never block: a line whose spans are not computed yet is drawn as plain
// and picked up on a later frame.
type Source interface {
	LineCount() int
	LineText(index int) (string, error)
	CachedSpans(index int) ([]syntax.Span, bool)
}

// Block is one colored run on a minimap row, in minimap columns.
type Block struct {
	StartCol int
	EndCol   int
	Category syntax.Category
}

// Frame is one rendered minimap. Rows[i] holds the blocks for minimap row
// i; Stale reports that at least one projected line had no cached spans,
// so the caller should redraw once the highlighter catches up.
type Frame struct {
	Rows  [][]Block
	Stale bool
}

// Render projects the buffer onto a width x height grid. Each minimap row
// condenses a run of buffer lines; within a row, columns are scaled down
// from the longest projected line. Rendering reads only cached state.
func Render(src Source, width, height int) Frame {
	frame := Frame{}
	if width <= 0 || height <= 0 {
		return frame
	}

	total := src.LineCount()
	linesPerRow := (total + height - 1) / height
	if linesPerRow < 1 {
		linesPerRow = 1
	}

	for start := 0; start < total; start += linesPerRow {
		// One representative line per row keeps the projection cheap;
		// condensing a whole run adds cost without adding legibility at
		// minimap scale.
		row, cached := projectLine(src, start, width)
		if !cached {
			frame.Stale = true
		}
		frame.Rows = append(frame.Rows, row)
		if len(frame.Rows) == height {
			break
		}
	}
	return frame
}

func projectLine(src Source, index, width int) ([]Block, bool) {
	text, err := src.LineText(index)
	if err != nil {
		return nil, true
	}
	n := len([]rune(text))
	if n == 0 {
		return nil, true
	}

	spans, ok := src.CachedSpans(index)
	if !ok {
		return []Block{{StartCol: 0, EndCol: scaleCol(n, n, width), Category: syntax.CategoryPlain}}, false
	}

	var blocks []Block
	for _, span := range spans {
		start := scaleCol(span.StartCol, n, width)
		end := scaleCol(span.EndCol, n, width)
		if end <= start {
			end = start + 1
		}
		if end > width {
			end = width
		}
		if start >= width {
			break
		}
		// Merge with the previous block when scaling collapses adjacent
		// spans of the same category onto the same columns.
		if len(blocks) > 0 && blocks[len(blocks)-1].Category == span.Category && blocks[len(blocks)-1].EndCol >= start {
			if end > blocks[len(blocks)-1].EndCol {
				blocks[len(blocks)-1].EndCol = end
			}
			continue
		}
		if len(blocks) > 0 && start < blocks[len(blocks)-1].EndCol {
			start = blocks[len(blocks)-1].EndCol
			if end <= start {
				continue
			}
		}
		blocks = append(blocks, Block{StartCol: start, EndCol: end, Category: span.Category})
	}
	return blocks, true
}

// scaleCol maps a rune column on a line of length n onto minimap columns.
// Lines at or under the minimap width map 1:1.
func scaleCol(col, n, width int) int {
	if n <= width {
		return col
	}
	return col * width / n
}
