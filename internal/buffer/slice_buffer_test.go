package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plume-editor/plume/internal/types"
)

func TestInsertSingleLine(t *testing.T) {
	sb := NewSliceBufferFromString("hello world")

	edit, err := sb.Insert(types.Position{Line: 0, Col: 5}, []byte(","))
	require.NoError(t, err)

	text, _ := sb.LineText(0)
	assert.Equal(t, "hello, world", text)
	assert.Equal(t, types.Position{Line: 0, Col: 5}, edit.Range.Start)
	assert.Equal(t, types.Position{Line: 0, Col: 6}, edit.NewEnd)
	assert.Equal(t, 0, edit.LineDelta)
	assert.True(t, sb.IsModified())
}

func TestInsertMultiLine(t *testing.T) {
	sb := NewSliceBufferFromString("abXYcd")

	edit, err := sb.Insert(types.Position{Line: 0, Col: 2}, []byte("1\n2\n3"))
	require.NoError(t, err)

	assert.Equal(t, 3, sb.LineCount())
	l0, _ := sb.LineText(0)
	l1, _ := sb.LineText(1)
	l2, _ := sb.LineText(2)
	assert.Equal(t, "ab1", l0)
	assert.Equal(t, "2", l1)
	assert.Equal(t, "3XYcd", l2)
	assert.Equal(t, types.Position{Line: 2, Col: 1}, edit.NewEnd)
	assert.Equal(t, 2, edit.LineDelta)
}

func TestInsertClampsPosition(t *testing.T) {
	sb := NewSliceBufferFromString("ab")

	edit, err := sb.Insert(types.Position{Line: 9, Col: 99}, []byte("!"))
	require.NoError(t, err)

	text, _ := sb.LineText(0)
	assert.Equal(t, "ab!", text)
	assert.Equal(t, types.Position{Line: 0, Col: 2}, edit.Range.Start)
}

func TestDeleteWithinLine(t *testing.T) {
	sb := NewSliceBufferFromString("hello, world")

	edit, err := sb.Delete(types.Position{Line: 0, Col: 5}, types.Position{Line: 0, Col: 7})
	require.NoError(t, err)

	text, _ := sb.LineText(0)
	assert.Equal(t, "helloworld", text)
	assert.Equal(t, 2, edit.Deleted)
	assert.Equal(t, types.Position{Line: 0, Col: 5}, edit.NewEnd)
}

func TestDeleteAcrossLines(t *testing.T) {
	sb := NewSliceBufferFromString("one\ntwo\nthree")

	edit, err := sb.Delete(types.Position{Line: 0, Col: 2}, types.Position{Line: 2, Col: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, sb.LineCount())
	text, _ := sb.LineText(0)
	assert.Equal(t, "onhree", text)
	assert.Equal(t, -2, edit.LineDelta)
	// "e\ntwo\nt" is 7 runes including the two newlines.
	assert.Equal(t, 7, edit.Deleted)
}

func TestDeleteSwappedRange(t *testing.T) {
	sb := NewSliceBufferFromString("abcdef")

	_, err := sb.Delete(types.Position{Line: 0, Col: 4}, types.Position{Line: 0, Col: 1})
	require.NoError(t, err)

	text, _ := sb.LineText(0)
	assert.Equal(t, "aef", text)
}

func TestDeleteNeverLeavesEmptyBuffer(t *testing.T) {
	sb := NewSliceBufferFromString("only")

	_, err := sb.Delete(types.Position{Line: 0, Col: 0}, types.Position{Line: 0, Col: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, sb.LineCount())
	text, _ := sb.LineText(0)
	assert.Equal(t, "", text)
}

func TestTextInRange(t *testing.T) {
	sb := NewSliceBufferFromString("one\ntwo\nthree")

	got, err := sb.TextInRange(types.Range{
		Start: types.Position{Line: 0, Col: 1},
		End:   types.Position{Line: 2, Col: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "ne\ntwo\nthr", got)

	got, err = sb.TextInRange(types.Range{
		Start: types.Position{Line: 1, Col: 0},
		End:   types.Position{Line: 1, Col: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "two", got)
}

func TestUnicodeColumns(t *testing.T) {
	sb := NewSliceBufferFromString("héllo")

	edit, err := sb.Insert(types.Position{Line: 0, Col: 2}, []byte("ü"))
	require.NoError(t, err)

	text, _ := sb.LineText(0)
	assert.Equal(t, "héüllo", text)
	assert.Equal(t, types.Position{Line: 0, Col: 3}, edit.NewEnd)

	_, err = sb.Delete(types.Position{Line: 0, Col: 2}, types.Position{Line: 0, Col: 3})
	require.NoError(t, err)
	text, _ = sb.LineText(0)
	assert.Equal(t, "héllo", text)
}

func TestLineOutOfBounds(t *testing.T) {
	sb := NewSliceBufferFromString("a")
	_, err := sb.Line(3)
	assert.Error(t, err)
}
