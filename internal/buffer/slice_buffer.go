// internal/buffer/slice_buffer.go
package buffer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/plume-editor/plume/internal/types"
)

// SliceBuffer keeps the document as a slice of line byte slices. Positions
// are (line, rune-column) pairs; they are validated and clamped on every
// mutation so the buffer never holds an out-of-bounds position.
type SliceBuffer struct {
	lines    [][]byte
	filePath string
	modified bool
}

// NewSliceBuffer creates an empty buffer containing a single empty line.
func NewSliceBuffer() *SliceBuffer {
	return &SliceBuffer{lines: [][]byte{[]byte("")}}
}

// NewSliceBufferFromString is a convenience constructor used heavily in tests.
func NewSliceBufferFromString(content string) *SliceBuffer {
	parts := strings.Split(content, "\n")
	lines := make([][]byte, len(parts))
	for i, p := range parts {
		lines[i] = []byte(p)
	}
	return &SliceBuffer{lines: lines}
}

// Load reads a file into the buffer, replacing existing content.
// A missing file yields an empty buffer bound to that path.
func (sb *SliceBuffer) Load(filePath string) error {
	sb.modified = false

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sb.lines = [][]byte{[]byte("")}
			sb.filePath = filePath
			return nil
		}
		return fmt.Errorf("failed to open file '%s': %w", filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	newLines := [][]byte{}
	for scanner.Scan() {
		line := scanner.Bytes()
		lineCopy := make([]byte, len(line))
		copy(lineCopy, line)
		newLines = append(newLines, lineCopy)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file '%s': %w", filePath, err)
	}
	if len(newLines) == 0 {
		newLines = append(newLines, []byte(""))
	}
	sb.lines = newLines
	sb.filePath = filePath
	return nil
}

func (sb *SliceBuffer) Lines() [][]byte { return sb.lines }

func (sb *SliceBuffer) LineCount() int { return len(sb.lines) }

func (sb *SliceBuffer) Line(index int) ([]byte, error) {
	if index < 0 || index >= len(sb.lines) {
		return nil, fmt.Errorf("line index %d out of bounds (0-%d)", index, len(sb.lines)-1)
	}
	return sb.lines[index], nil
}

func (sb *SliceBuffer) LineText(index int) (string, error) {
	b, err := sb.Line(index)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (sb *SliceBuffer) Bytes() []byte {
	var buf bytes.Buffer
	for i, line := range sb.lines {
		buf.Write(line)
		if i < len(sb.lines)-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// Save writes the buffer content to filePath, or the stored path when empty.
func (sb *SliceBuffer) Save(filePath string) error {
	path := sb.filePath
	if filePath != "" {
		path = filePath
	}
	if path == "" {
		return errors.New("no file path specified for saving")
	}
	if err := os.WriteFile(path, sb.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	sb.filePath = path
	sb.modified = false
	return nil
}

func (sb *SliceBuffer) IsModified() bool { return sb.modified }

func (sb *SliceBuffer) FilePath() string { return sb.filePath }

// --- Mutations ---

// Insert places text at pos, splitting lines on '\n'. The returned EditInfo
// is computed against the validated (clamped) position.
func (sb *SliceBuffer) Insert(pos types.Position, text []byte) (types.EditInfo, error) {
	if len(text) == 0 {
		return types.EditInfo{Range: types.Range{Start: pos, End: pos}, NewEnd: pos}, nil
	}

	validPos, byteOffset := sb.clampPosition(pos)
	sb.modified = true

	currentLine := sb.lines[validPos.Line]
	insertLines := bytes.Split(text, []byte("\n"))

	tail := make([]byte, len(currentLine[byteOffset:]))
	copy(tail, currentLine[byteOffset:])

	head := make([]byte, byteOffset)
	copy(head, currentLine[:byteOffset])
	sb.lines[validPos.Line] = append(head, insertLines[0]...)

	if len(insertLines) > 1 {
		newLines := make([][]byte, len(insertLines)-1)
		for i := 1; i < len(insertLines); i++ {
			lineCopy := make([]byte, len(insertLines[i]))
			copy(lineCopy, insertLines[i])
			newLines[i-1] = lineCopy
		}
		newLines[len(newLines)-1] = append(newLines[len(newLines)-1], tail...)
		rest := make([][]byte, len(sb.lines[validPos.Line+1:]))
		copy(rest, sb.lines[validPos.Line+1:])
		sb.lines = append(sb.lines[:validPos.Line+1], append(newLines, rest...)...)
	} else {
		sb.lines[validPos.Line] = append(sb.lines[validPos.Line], tail...)
	}

	return types.InsertEdit(validPos, string(text)), nil
}

// Delete removes [start, end). Positions are clamped and normalized first.
func (sb *SliceBuffer) Delete(start, end types.Position) (types.EditInfo, error) {
	r := types.NormalizeRange(types.Range{Start: start, End: end})
	vStart, startOffset := sb.clampPosition(r.Start)
	vEnd, endOffset := sb.clampPosition(r.End)

	if vStart == vEnd {
		return types.DeleteEdit(vStart, vStart, 0), nil
	}

	removed, err := sb.TextInRange(types.Range{Start: vStart, End: vEnd})
	if err != nil {
		return types.EditInfo{}, fmt.Errorf("invalid delete range: %w", err)
	}

	sb.modified = true
	startLine := sb.lines[vStart.Line]

	if vStart.Line == vEnd.Line {
		sb.lines[vStart.Line] = append(startLine[:startOffset], startLine[endOffset:]...)
	} else {
		endLine := sb.lines[vEnd.Line]
		merged := make([]byte, 0, startOffset+len(endLine)-endOffset)
		merged = append(merged, startLine[:startOffset]...)
		merged = append(merged, endLine[endOffset:]...)
		sb.lines[vStart.Line] = merged
		sb.lines = append(sb.lines[:vStart.Line+1], sb.lines[vEnd.Line+1:]...)
	}

	if len(sb.lines) == 0 {
		sb.lines = [][]byte{[]byte("")}
	}

	return types.DeleteEdit(vStart, vEnd, utf8.RuneCountInString(removed)), nil
}

// TextInRange returns the text covered by r, with '\n' between lines.
func (sb *SliceBuffer) TextInRange(r types.Range) (string, error) {
	r = types.NormalizeRange(r)
	if r.Start.Line < 0 || r.End.Line >= len(sb.lines) {
		return "", fmt.Errorf("range %v out of bounds (0-%d lines)", r, len(sb.lines)-1)
	}

	var out strings.Builder
	for lineIdx := r.Start.Line; lineIdx <= r.End.Line; lineIdx++ {
		line := sb.lines[lineIdx]
		from, to := 0, len(line)
		if lineIdx == r.Start.Line {
			from = runeIndexToByteOffset(line, r.Start.Col)
		}
		if lineIdx == r.End.Line {
			to = runeIndexToByteOffset(line, r.End.Col)
		}
		if from > to {
			from = to
		}
		out.Write(line[from:to])
		if lineIdx < r.End.Line {
			out.WriteByte('\n')
		}
	}
	return out.String(), nil
}

// clampPosition brings pos into buffer bounds and returns the byte offset
// of its column on the (possibly clamped) line.
func (sb *SliceBuffer) clampPosition(pos types.Position) (types.Position, int) {
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= len(sb.lines) {
		pos.Line = len(sb.lines) - 1
	}
	line := sb.lines[pos.Line]
	if pos.Col < 0 {
		pos.Col = 0
	}
	if n := utf8.RuneCount(line); pos.Col > n {
		pos.Col = n
	}
	return pos, runeIndexToByteOffset(line, pos.Col)
}

// runeIndexToByteOffset converts a rune index to a byte offset, clamping
// past-end indexes to the line length.
func runeIndexToByteOffset(line []byte, runeIndex int) int {
	if runeIndex <= 0 {
		return 0
	}
	offset := 0
	for i := 0; i < runeIndex && offset < len(line); i++ {
		_, size := utf8.DecodeRune(line[offset:])
		offset += size
	}
	return offset
}

var _ Buffer = (*SliceBuffer)(nil)
