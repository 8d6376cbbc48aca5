// internal/syntax/lang/registry_test.go
package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plume-editor/plume/internal/syntax"
)

func TestForFileKnownExtensions(t *testing.T) {
	r := NewRegistry()

	py := r.ForFile("/tmp/script.py")
	require.NotNil(t, py)
	assert.Equal(t, "python", py.Name)
	assert.Equal(t, syntax.FoldIndentation, py.Fold)

	gr := r.ForFile("main.go")
	require.NotNil(t, gr)
	assert.Equal(t, "go", gr.Name)
	assert.Equal(t, syntax.FoldBrackets, gr.Fold)
}

func TestForFileCaseInsensitiveAndUnknown(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r.ForFile("SCRIPT.PY"))
	assert.Nil(t, r.ForFile("notes.txt"))
	assert.Nil(t, r.ForFile("Makefile"))
}

func TestRegisterOverride(t *testing.T) {
	r := NewRegistry()
	custom := &syntax.Rules{Name: "custom"}
	r.Register(custom, ".py")
	assert.Equal(t, "custom", r.ForFile("a.py").Name)
}

func TestBuiltinKeywords(t *testing.T) {
	assert.True(t, Python().IsKeyword("def"))
	assert.False(t, Python().IsKeyword("func"))
	assert.True(t, Go().IsKeyword("func"))
	assert.False(t, Go().IsKeyword("def"))
}
