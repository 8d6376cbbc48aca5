// internal/snippet/template_test.go
package snippet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plume-editor/plume/internal/types"
)

func TestParseMarkers(t *testing.T) {
	tpl, err := Parse("for ${1:item} in $2:\n    ${3}")
	require.NoError(t, err)

	m := tpl.Materialize(types.Position{}, "")
	assert.Equal(t, "for item in :\n    ", m.Text)
	require.Len(t, m.Stops, 3)
	assert.Equal(t, types.Range{Start: types.Position{Line: 0, Col: 4}, End: types.Position{Line: 0, Col: 8}}, m.Stops[0].Ranges[0])
	assert.True(t, m.Stops[1].Ranges[0].IsEmpty())
	assert.Equal(t, types.Position{Line: 1, Col: 4}, m.Stops[2].Ranges[0].Start)
}

func TestParseEscapes(t *testing.T) {
	tpl, err := Parse(`cost: \$${1:10} \\ done`)
	require.NoError(t, err)
	m := tpl.Materialize(types.Position{}, "")
	assert.Equal(t, `cost: $10 \ done`, m.Text)

	tpl, err = Parse(`${1:a \} b}`)
	require.NoError(t, err)
	m = tpl.Materialize(types.Position{}, "")
	assert.Equal(t, "a } b", m.Text)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"lone dollar", "end $"},
		{"dollar before non-digit", "get $price"},
		{"dangling escape", `oops \`},
		{"unterminated brace", "${1:never closed"},
		{"missing index", "${:x}"},
		{"conflicting mirror defaults", "${1:a} and ${1:b}"},
		{"defaulted end stop", "x ${0:end}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			require.Error(t, err)
			var terr *TemplateError
			assert.ErrorAs(t, err, &terr)
		})
	}
}

func TestMaterializeIndentsContinuationLines(t *testing.T) {
	tpl, err := Parse("if ${1:cond}:\n    ${2:pass}")
	require.NoError(t, err)

	m := tpl.Materialize(types.Position{Line: 3, Col: 8}, "        ")
	assert.Equal(t, "if cond:\n            pass", m.Text)
	// The second stop starts past the original indent plus the template's own.
	assert.Equal(t, types.Position{Line: 4, Col: 12}, m.Stops[1].Ranges[0].Start)
	assert.Equal(t, types.Range{
		Start: types.Position{Line: 3, Col: 8},
		End:   types.Position{Line: 4, Col: 16},
	}, m.Extent)
}

func TestMaterializeMirrorsShareText(t *testing.T) {
	tpl, err := Parse("${1:name} = ${1}; use($1)")
	require.NoError(t, err)

	m := tpl.Materialize(types.Position{}, "")
	assert.Equal(t, "name = name; use(name)", m.Text)
	require.Len(t, m.Stops, 1)
	require.Len(t, m.Stops[0].Ranges, 3)
	for _, r := range m.Stops[0].Ranges {
		assert.Equal(t, 4, r.End.Col-r.Start.Col)
	}
}

func TestMaterializeEndStop(t *testing.T) {
	tpl, err := Parse("if ${1:x} {\n\t$0\n}")
	require.NoError(t, err)

	m := tpl.Materialize(types.Position{}, "")
	assert.Equal(t, "if x {\n\t\n}", m.Text)
	require.True(t, m.FinalSet)
	assert.Equal(t, types.Position{Line: 1, Col: 1}, m.Final)
}

func TestMaterializeStopsSortedByIndex(t *testing.T) {
	tpl, err := Parse("${2:second} ${1:first}")
	require.NoError(t, err)
	m := tpl.Materialize(types.Position{}, "")
	require.Len(t, m.Stops, 2)
	assert.Equal(t, 1, m.Stops[0].Index)
	assert.Equal(t, 2, m.Stops[1].Index)
	// Tab order follows indices even though stop 2 appears first in text.
	assert.True(t, m.Stops[1].Ranges[0].Start.Before(m.Stops[0].Ranges[0].Start))
}
