// internal/syntax/lexer.go
package syntax

import "unicode"

// LexLine classifies one line of text given the state the previous line
// ended in. It returns the line's span partition and the state at the end
// of the line. The lexer never fails: anything unrecognized is emitted as
// a plain span, and an unterminated construct classifies the rest of the
// line as that construct's category.
func LexLine(text string, enter State, rules *Rules) ([]Span, State) {
	lx := &lineLexer{runes: []rune(text), rules: rules}

	i := 0
	switch enter.kind {
	case stateBlockComment:
		end, found := lx.indexFrom(0, rules.BlockCommentClose)
		if !found {
			lx.emit(0, len(lx.runes), CategoryComment)
			return lx.spans, enter
		}
		i = end
		lx.emit(0, i, CategoryComment)
	case stateString:
		end, found := lx.indexFrom(0, enter.delim)
		if !found {
			lx.emit(0, len(lx.runes), CategoryString)
			return lx.spans, enter
		}
		i = end
		lx.emit(0, i, CategoryString)
	}

	exit := lx.lexNormal(i)
	return lx.spans, exit
}

type lineLexer struct {
	runes []rune
	rules *Rules
	spans []Span
}

// lexNormal consumes from i to end of line in the normal state, returning
// the exit state (normal unless a multi-line construct is left open).
func (lx *lineLexer) lexNormal(i int) State {
	n := len(lx.runes)
	for i < n {
		r := lx.runes[i]

		if lx.rules.LineComment != "" && lx.hasPrefix(i, lx.rules.LineComment) {
			lx.emit(i, n, CategoryComment)
			return State{}
		}

		if lx.rules.BlockCommentOpen != "" && lx.hasPrefix(i, lx.rules.BlockCommentOpen) {
			after := i + len([]rune(lx.rules.BlockCommentOpen))
			end, found := lx.indexFrom(after, lx.rules.BlockCommentClose)
			if !found {
				lx.emit(i, n, CategoryComment)
				return State{kind: stateBlockComment}
			}
			lx.emit(i, end, CategoryComment)
			i = end
			continue
		}

		if delim := lx.tripleAt(i); delim != "" {
			after := i + len([]rune(delim))
			end, found := lx.indexFrom(after, delim)
			if !found {
				lx.emit(i, n, CategoryString)
				return State{kind: stateString, delim: delim}
			}
			lx.emit(i, end, CategoryString)
			i = end
			continue
		}

		if lx.isQuote(r) {
			end := lx.scanString(i, r)
			lx.emit(i, end, CategoryString)
			i = end
			continue
		}

		if unicode.IsDigit(r) {
			end := lx.scanNumber(i)
			lx.emit(i, end, CategoryNumber)
			i = end
			continue
		}

		if isIdentStart(r) {
			end := i + 1
			for end < n && isIdentPart(lx.runes[end]) {
				end++
			}
			cat := CategoryIdentifier
			if lx.rules.IsKeyword(string(lx.runes[i:end])) {
				cat = CategoryKeyword
			}
			lx.emit(i, end, cat)
			i = end
			continue
		}

		if isBracket(r) {
			lx.emit(i, i+1, CategoryBracket)
			i++
			continue
		}

		if isOperator(r) {
			end := i + 1
			for end < n && isOperator(lx.runes[end]) {
				end++
			}
			lx.emit(i, end, CategoryOperator)
			i = end
			continue
		}

		// Whitespace and anything unclassified.
		end := i + 1
		for end < n && !lx.classifiable(end) {
			end++
		}
		lx.emit(i, end, CategoryPlain)
		i = end
	}
	return State{}
}

// scanString consumes a single-line string starting at the quote at i.
// An unterminated string runs to end of line rather than erroring.
func (lx *lineLexer) scanString(i int, quote rune) int {
	n := len(lx.runes)
	j := i + 1
	for j < n {
		switch lx.runes[j] {
		case '\\':
			j += 2
			continue
		case quote:
			return j + 1
		}
		j++
	}
	return n
}

func (lx *lineLexer) scanNumber(i int) int {
	n := len(lx.runes)
	j := i + 1
	for j < n {
		r := lx.runes[j]
		if unicode.IsDigit(r) || unicode.IsLetter(r) || r == '.' || r == '_' {
			j++
			continue
		}
		break
	}
	return j
}

// classifiable reports whether the rune at i would start a non-plain span.
func (lx *lineLexer) classifiable(i int) bool {
	r := lx.runes[i]
	if lx.isQuote(r) || unicode.IsDigit(r) || isIdentStart(r) || isBracket(r) || isOperator(r) {
		return true
	}
	if lx.rules.LineComment != "" && lx.hasPrefix(i, lx.rules.LineComment) {
		return true
	}
	if lx.rules.BlockCommentOpen != "" && lx.hasPrefix(i, lx.rules.BlockCommentOpen) {
		return true
	}
	return lx.tripleAt(i) != ""
}

func (lx *lineLexer) tripleAt(i int) string {
	for _, delim := range lx.rules.TripleQuotes {
		if lx.hasPrefix(i, delim) {
			return delim
		}
	}
	return ""
}

func (lx *lineLexer) isQuote(r rune) bool {
	for _, q := range lx.rules.Quotes {
		if r == q {
			return true
		}
	}
	return false
}

func (lx *lineLexer) hasPrefix(i int, s string) bool {
	for _, r := range s {
		if i >= len(lx.runes) || lx.runes[i] != r {
			return false
		}
		i++
	}
	return true
}

// indexFrom finds s in the line at or after i, returning the column just
// past the match.
func (lx *lineLexer) indexFrom(i int, s string) (end int, found bool) {
	if s == "" {
		return i, true
	}
	for ; i <= len(lx.runes)-len([]rune(s)); i++ {
		if lx.hasPrefix(i, s) {
			return i + len([]rune(s)), true
		}
	}
	return 0, false
}

// emit appends a span, merging into the previous one when the category
// matches so partitions stay compact.
func (lx *lineLexer) emit(start, end int, cat Category) {
	if end <= start {
		return
	}
	if n := len(lx.spans); n > 0 && lx.spans[n-1].EndCol == start && lx.spans[n-1].Category == cat {
		lx.spans[n-1].EndCol = end
		return
	}
	lx.spans = append(lx.spans, Span{StartCol: start, EndCol: end, Category: cat})
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

func isBracket(r rune) bool {
	switch r {
	case '(', ')', '[', ']', '{', '}':
		return true
	}
	return false
}

func isOperator(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '%', '=', '<', '>', '!', '&', '|', '^', '~', ':', ';', ',', '.', '?', '@':
		return true
	}
	return false
}
