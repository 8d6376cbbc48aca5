// internal/buffer/buffer.go
package buffer

import "github.com/plume-editor/plume/internal/types"

// Buffer defines the text buffer contract the editing core consumes.
// Mutations report an EditInfo so position-holding components can shift
// their state instead of rescanning the document.
type Buffer interface {
	Load(filePath string) error
	Lines() [][]byte
	Line(index int) ([]byte, error)
	LineText(index int) (string, error)
	LineCount() int
	Insert(pos types.Position, text []byte) (types.EditInfo, error)
	Delete(start, end types.Position) (types.EditInfo, error)
	TextInRange(r types.Range) (string, error)
	Save(filePath string) error
	Bytes() []byte
	FilePath() string
	IsModified() bool
}
