// Package expr checks boolean SQL expressions such as CHECK constraint bodies.
//
// It is not a SQL parser. Expressions are split into tokens and the token
// sequence is run through a small state machine that only tracks whether an
// operand is expected next. That is enough to catch dangling operators,
// missing operands and unbalanced parentheses while staying dialect neutral.
package expr

import "fmt"

// Kind classifies a token.
type Kind int

const (
	Identifier Kind = iota
	Number
	String
	Operator
	Logical
	Keyword
	LParen
	RParen
	Comma
	Unknown
)

var kindNames = [...]string{
	Identifier: "identifier",
	Number:     "number",
	String:     "string",
	Operator:   "operator",
	Logical:    "logical",
	Keyword:    "keyword",
	LParen:     "left paren",
	RParen:     "right paren",
	Comma:      "comma",
	Unknown:    "unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexical unit of an expression. Position is the rune offset of
// the first character of the token in the input.
type Token struct {
	Kind     Kind
	Text     string
	Position int
}

// isOperand reports whether the token is a literal or a name.
func (t Token) isOperand() bool {
	return t.Kind == Identifier || t.Kind == Number || t.Kind == String
}

func (t Token) is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// keywords are the SQL words the grammar knows about. Anything else made of
// letters is an identifier.
var keywords = map[string]bool{
	"BETWEEN": true,
	"IN":      true,
	"IS":      true,
	"LIKE":    true,
	"ILIKE":   true,
	"NULL":    true,
	"TRUE":    true,
	"FALSE":   true,
	"CASE":    true,
	"WHEN":    true,
	"THEN":    true,
	"ELSE":    true,
	"END":     true,
	"CAST":    true,
	"AS":      true,
	"TO":      true,
	"EXISTS":  true,
	"ESCAPE":  true,
	"SIMILAR": true,
	"ANY":     true,
	"ALL":     true,
	"SOME":    true,
}

var logicals = map[string]bool{
	"AND": true,
	"OR":  true,
	"NOT": true,
}

// operators lists the multi-character operators, longest first, so that the
// tokenizer can match greedily.
var operators = []string{
	"!~*", "->>", "#>>",
	"<=", ">=", "<>", "!=", "==", "::", "||", "~*", "!~", "->", "#>", "@>", "<@", "&&", "<<", ">>",
	"=", "<", ">", "+", "-", "*", "/", "%", "~", "&", "|", "^",
}
