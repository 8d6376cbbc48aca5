// internal/syntax/rules.go
package syntax

// FoldSignal selects the structural signal the fold tracker derives
// regions from for a given language.
type FoldSignal uint8

const (
	FoldIndentation FoldSignal = iota
	FoldBrackets
)

// Rules describes the lexical shape of a language: enough for span
// classification and fold derivation, deliberately short of a full grammar.
type Rules struct {
	Name string

	Keywords map[string]struct{}

	// LineComment starts a comment running to end of line ("#", "//").
	LineComment string
	// BlockCommentOpen/Close delimit a multi-line comment. Empty when the
	// language has none.
	BlockCommentOpen  string
	BlockCommentClose string

	// Quotes are single-line string delimiters.
	Quotes []rune
	// TripleQuotes are multi-line string delimiters checked before Quotes.
	TripleQuotes []string

	// IndentAfterColon makes the auto-indenter add a level after a line
	// ending in ':' (Python-style blocks).
	IndentAfterColon bool

	Fold FoldSignal
}

// IsKeyword reports whether word is a keyword of the language.
func (r *Rules) IsKeyword(word string) bool {
	_, ok := r.Keywords[word]
	return ok
}

// State is the lexer's condition at a line boundary: either normal, or
// inside a multi-line construct that a later line must close. A line's
// spans are a pure function of (line text, entry State, Rules), which is
// what makes bounded-propagation recomputation possible.
type State struct {
	kind  stateKind
	delim string // closing delimiter when inside a multi-line string
}

type stateKind uint8

const (
	stateNormal stateKind = iota
	stateBlockComment
	stateString
)

// Open reports whether the state is inside an unclosed multi-line construct.
func (s State) Open() bool { return s.kind != stateNormal }
