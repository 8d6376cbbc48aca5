// internal/syntax/lang/registry.go
package lang

import (
	"path/filepath"
	"strings"

	"github.com/plume-editor/plume/internal/syntax"
)

// Registry maps file extensions to language rules. The zero value is not
// usable; construct with NewRegistry, which pre-registers the built-in
// languages.
type Registry struct {
	byExt map[string]*syntax.Rules
}

// NewRegistry returns a registry with the built-in languages registered.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]*syntax.Rules)}
	r.Register(Python(), ".py", ".pyi")
	r.Register(Go(), ".go")
	return r
}

// Register binds rules to one or more extensions (with leading dot).
// Later registrations win, so configuration can override built-ins.
func (r *Registry) Register(rules *syntax.Rules, exts ...string) {
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = rules
	}
}

// ForFile returns the rules for a file path, or nil when the extension is
// unknown (callers treat nil as plain text).
func (r *Registry) ForFile(path string) *syntax.Rules {
	return r.byExt[strings.ToLower(filepath.Ext(path))]
}

func keywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Python returns rules for Python: '#' comments, triple-quoted strings,
// colon-introduced blocks, indentation-derived folds.
func Python() *syntax.Rules {
	return &syntax.Rules{
		Name: "python",
		Keywords: keywordSet(
			"False", "None", "True", "and", "as", "assert", "async",
			"await", "break", "class", "continue", "def", "del", "elif",
			"else", "except", "finally", "for", "from", "global", "if",
			"import", "in", "is", "lambda", "nonlocal", "not", "or",
			"pass", "raise", "return", "try", "while", "with", "yield",
		),
		LineComment:      "#",
		Quotes:           []rune{'"', '\''},
		TripleQuotes:     []string{`"""`, "'''"},
		IndentAfterColon: true,
		Fold:             syntax.FoldIndentation,
	}
}

// Go returns rules for Go: line and block comments, raw strings,
// brace-derived folds.
func Go() *syntax.Rules {
	return &syntax.Rules{
		Name: "go",
		Keywords: keywordSet(
			"break", "case", "chan", "const", "continue", "default",
			"defer", "else", "fallthrough", "for", "func", "go", "goto",
			"if", "import", "interface", "map", "package", "range",
			"return", "select", "struct", "switch", "type", "var",
		),
		LineComment:       "//",
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
		Quotes:            []rune{'"', '\'', '`'},
		Fold:              syntax.FoldBrackets,
	}
}
