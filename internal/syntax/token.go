// internal/syntax/token.go
package syntax

// Category classifies a token span. The set is closed; new classifications
// are added here as variants, never as ad-hoc strings.
type Category uint8

const (
	CategoryPlain Category = iota
	CategoryKeyword
	CategoryString
	CategoryComment
	CategoryNumber
	CategoryIdentifier
	CategoryOperator
	CategoryBracket
)

var categoryNames = [...]string{
	CategoryPlain:      "plain",
	CategoryKeyword:    "keyword",
	CategoryString:     "string",
	CategoryComment:    "comment",
	CategoryNumber:     "number",
	CategoryIdentifier: "identifier",
	CategoryOperator:   "operator",
	CategoryBracket:    "bracket",
}

// String returns the category's theme style name.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "plain"
}

// Span is one classified run of a line. StartCol/EndCol are rune columns,
// half-open. The spans of a line form an ordered, non-overlapping partition
// of its text.
type Span struct {
	StartCol int
	EndCol   int
	Category Category
}
