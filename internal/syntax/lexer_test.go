// internal/syntax/lexer_test.go
package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRulesPython() *Rules {
	return &Rules{
		Name: "python",
		Keywords: map[string]struct{}{
			"def": {}, "for": {}, "in": {}, "return": {}, "if": {},
		},
		LineComment:      "#",
		Quotes:           []rune{'"', '\''},
		TripleQuotes:     []string{`"""`, "'''"},
		IndentAfterColon: true,
		Fold:             FoldIndentation,
	}
}

func testRulesGo() *Rules {
	return &Rules{
		Name: "go",
		Keywords: map[string]struct{}{
			"func": {}, "return": {}, "var": {}, "for": {},
		},
		LineComment:       "//",
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
		Quotes:            []rune{'"', '\'', '`'},
		Fold:              FoldBrackets,
	}
}

func categories(spans []Span) []Category {
	out := make([]Category, len(spans))
	for i, s := range spans {
		out[i] = s.Category
	}
	return out
}

// assertPartition checks the structural invariant: spans are ordered,
// non-overlapping, non-empty, and cover the whole line.
func assertPartition(t *testing.T, text string, spans []Span) {
	t.Helper()
	col := 0
	for _, s := range spans {
		require.Equal(t, col, s.StartCol, "gap or overlap before span %+v", s)
		require.Greater(t, s.EndCol, s.StartCol, "empty span %+v", s)
		col = s.EndCol
	}
	require.Equal(t, len([]rune(text)), col, "spans do not cover the line")
}

func TestLexLineKeywordsAndIdentifiers(t *testing.T) {
	text := "for item in items:"
	spans, exit := LexLine(text, State{}, testRulesPython())

	assertPartition(t, text, spans)
	assert.False(t, exit.Open())
	assert.Equal(t, []Category{
		CategoryKeyword, CategoryPlain, CategoryIdentifier, CategoryPlain,
		CategoryKeyword, CategoryPlain, CategoryIdentifier, CategoryOperator,
	}, categories(spans))
}

func TestLexLineLineComment(t *testing.T) {
	text := "x = 1  # counter"
	spans, exit := LexLine(text, State{}, testRulesPython())

	assertPartition(t, text, spans)
	assert.False(t, exit.Open())
	last := spans[len(spans)-1]
	assert.Equal(t, CategoryComment, last.Category)
	assert.Equal(t, len([]rune(text)), last.EndCol)
}

func TestLexLineStringWithEscapes(t *testing.T) {
	text := `print("he said \"hi\"") + 'x'`
	spans, exit := LexLine(text, State{}, testRulesPython())

	assertPartition(t, text, spans)
	assert.False(t, exit.Open())

	var strSpans []Span
	for _, s := range spans {
		if s.Category == CategoryString {
			strSpans = append(strSpans, s)
		}
	}
	require.Len(t, strSpans, 2)
	assert.Equal(t, `"he said \"hi\""`, string([]rune(text)[strSpans[0].StartCol:strSpans[0].EndCol]))
	assert.Equal(t, `'x'`, string([]rune(text)[strSpans[1].StartCol:strSpans[1].EndCol]))
}

func TestLexLineUnterminatedStringRunsToEOL(t *testing.T) {
	text := `s = "no closing quote`
	spans, exit := LexLine(text, State{}, testRulesPython())

	assertPartition(t, text, spans)
	// Single-line strings never leak state across the line boundary.
	assert.False(t, exit.Open())
	last := spans[len(spans)-1]
	assert.Equal(t, CategoryString, last.Category)
	assert.Equal(t, len([]rune(text)), last.EndCol)
}

func TestLexLineBlockCommentOpensState(t *testing.T) {
	rules := testRulesGo()

	spans, exit := LexLine("x := 1 /* start", State{}, rules)
	assertPartition(t, "x := 1 /* start", spans)
	require.True(t, exit.Open())

	// Next line is consumed as comment until the closer.
	text := "still inside */ y := 2"
	spans, exit2 := LexLine(text, exit, rules)
	assertPartition(t, text, spans)
	assert.False(t, exit2.Open())
	assert.Equal(t, CategoryComment, spans[0].Category)
	assert.Equal(t, len([]rune("still inside */")), spans[0].EndCol)
}

func TestLexLineBlockCommentWholeLineInside(t *testing.T) {
	rules := testRulesGo()
	_, open := LexLine("/* top", State{}, rules)
	require.True(t, open.Open())

	text := "entirely inside the comment"
	spans, exit := LexLine(text, open, rules)
	assertPartition(t, text, spans)
	assert.True(t, exit.Open())
	require.Len(t, spans, 1)
	assert.Equal(t, CategoryComment, spans[0].Category)
}

func TestLexLineTripleQuoteState(t *testing.T) {
	rules := testRulesPython()

	spans, exit := LexLine(`doc = """summary`, State{}, rules)
	assertPartition(t, `doc = """summary`, spans)
	require.True(t, exit.Open())

	spans, exit = LexLine(`ends here."""`, exit, rules)
	assertPartition(t, `ends here."""`, spans)
	assert.False(t, exit.Open())
	require.Len(t, spans, 1)
	assert.Equal(t, CategoryString, spans[0].Category)

	// A triple quote closed on its own line stays self-contained.
	spans, exit = LexLine(`"""one line"""`, State{}, rules)
	assertPartition(t, `"""one line"""`, spans)
	assert.False(t, exit.Open())
	require.Len(t, spans, 1)
	assert.Equal(t, CategoryString, spans[0].Category)
}

func TestLexLineNumbers(t *testing.T) {
	text := "a = 10 + 0xFF + 3.14"
	spans, _ := LexLine(text, State{}, testRulesGo())
	assertPartition(t, text, spans)

	var nums []string
	for _, s := range spans {
		if s.Category == CategoryNumber {
			nums = append(nums, string([]rune(text)[s.StartCol:s.EndCol]))
		}
	}
	assert.Equal(t, []string{"10", "0xFF", "3.14"}, nums)
}

func TestLexLineBracketsAndOperators(t *testing.T) {
	text := "items[i] += f(x)"
	spans, _ := LexLine(text, State{}, testRulesGo())
	assertPartition(t, text, spans)

	var brackets, ops int
	for _, s := range spans {
		switch s.Category {
		case CategoryBracket:
			brackets++
		case CategoryOperator:
			ops++
		}
	}
	assert.Equal(t, 4, brackets)
	assert.Equal(t, 1, ops) // "+=" merges into one operator span
}

func TestLexLineEmptyAndPlain(t *testing.T) {
	spans, exit := LexLine("", State{}, testRulesPython())
	assert.Empty(t, spans)
	assert.False(t, exit.Open())

	text := "    "
	spans, _ = LexLine(text, State{}, testRulesPython())
	assertPartition(t, text, spans)
	require.Len(t, spans, 1)
	assert.Equal(t, CategoryPlain, spans[0].Category)
}

func TestLexLineUnicodeColumns(t *testing.T) {
	text := `name = "héllo wörld"`
	spans, _ := LexLine(text, State{}, testRulesPython())
	assertPartition(t, text, spans)
	last := spans[len(spans)-1]
	assert.Equal(t, CategoryString, last.Category)
	assert.Equal(t, `"héllo wörld"`, string([]rune(text)[last.StartCol:last.EndCol]))
}

func TestLexLineNilLanguageIsPlain(t *testing.T) {
	rules := &Rules{Name: "plain"}
	text := "anything at all 123"
	spans, exit := LexLine(text, State{}, rules)
	assertPartition(t, text, spans)
	assert.False(t, exit.Open())
	for _, s := range spans {
		assert.NotEqual(t, CategoryKeyword, s.Category)
		assert.NotEqual(t, CategoryComment, s.Category)
		assert.NotEqual(t, CategoryString, s.Category)
	}
}
