// internal/minimap/minimap_test.go
package minimap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plume-editor/plume/internal/syntax"
)

type fakeSource struct {
	lines    []string
	spans    map[int][]syntax.Span
	uncached map[int]bool
}

func (s *fakeSource) LineCount() int { return len(s.lines) }

func (s *fakeSource) LineText(i int) (string, error) {
	if i < 0 || i >= len(s.lines) {
		return "", fmt.Errorf("line %d out of range", i)
	}
	return s.lines[i], nil
}

func (s *fakeSource) CachedSpans(i int) ([]syntax.Span, bool) {
	if s.uncached[i] {
		return nil, false
	}
	return s.spans[i], true
}

func plainSpan(n int) []syntax.Span {
	return []syntax.Span{{StartCol: 0, EndCol: n, Category: syntax.CategoryPlain}}
}

func TestRenderMapsShortLinesOneToOne(t *testing.T) {
	src := &fakeSource{
		lines: []string{"if x:", ""},
		spans: map[int][]syntax.Span{
			0: {
				{StartCol: 0, EndCol: 2, Category: syntax.CategoryKeyword},
				{StartCol: 2, EndCol: 4, Category: syntax.CategoryPlain},
				{StartCol: 4, EndCol: 5, Category: syntax.CategoryOperator},
			},
		},
	}

	frame := Render(src, 20, 10)
	assert.False(t, frame.Stale)
	assert.Len(t, frame.Rows, 2)
	assert.Equal(t, []Block{
		{StartCol: 0, EndCol: 2, Category: syntax.CategoryKeyword},
		{StartCol: 2, EndCol: 4, Category: syntax.CategoryPlain},
		{StartCol: 4, EndCol: 5, Category: syntax.CategoryOperator},
	}, frame.Rows[0])
	assert.Empty(t, frame.Rows[1])
}

func TestRenderScalesLongLines(t *testing.T) {
	line := make([]byte, 100)
	for i := range line {
		line[i] = 'x'
	}
	src := &fakeSource{
		lines: []string{string(line)},
		spans: map[int][]syntax.Span{0: plainSpan(100)},
	}

	frame := Render(src, 10, 5)
	assert.Len(t, frame.Rows, 1)
	assert.Equal(t, []Block{{StartCol: 0, EndCol: 10, Category: syntax.CategoryPlain}}, frame.Rows[0])
}

func TestRenderCondensesManyLines(t *testing.T) {
	src := &fakeSource{spans: map[int][]syntax.Span{}}
	for i := 0; i < 30; i++ {
		src.lines = append(src.lines, "x")
		src.spans[i] = plainSpan(1)
	}

	frame := Render(src, 10, 10)
	assert.Len(t, frame.Rows, 10)
}

func TestRenderMarksUncachedLinesStale(t *testing.T) {
	src := &fakeSource{
		lines:    []string{"cached", "pending"},
		spans:    map[int][]syntax.Span{0: plainSpan(6)},
		uncached: map[int]bool{1: true},
	}

	frame := Render(src, 20, 10)
	assert.True(t, frame.Stale)
	// The pending line still yields a plain block of the right width.
	assert.Equal(t, []Block{{StartCol: 0, EndCol: 7, Category: syntax.CategoryPlain}}, frame.Rows[1])
}

func TestRenderZeroSize(t *testing.T) {
	src := &fakeSource{lines: []string{"x"}, spans: map[int][]syntax.Span{0: plainSpan(1)}}
	assert.Empty(t, Render(src, 0, 10).Rows)
	assert.Empty(t, Render(src, 10, 0).Rows)
}
