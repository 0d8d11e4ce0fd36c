package expr

import (
	"fmt"
	"strings"
)

const (
	msgEmpty       = "expression cannot be empty"
	msgUnbalanced  = "unbalanced parentheses"
	msgIncomplete  = "incomplete expression"
	msgUnterminate = "unterminated literal"
)

// Result is the outcome of Validate. Position is the rune offset of the
// offending token and is nil when no single token is to blame.
type Result struct {
	Valid    bool   `json:"isValid"`
	Error    string `json:"error,omitempty"`
	Position *int   `json:"position,omitempty"`
}

// SyntaxError is the error form of an invalid Result.
type SyntaxError struct {
	Message  string
	Position *int
}

func (e *SyntaxError) Error() string {
	if e.Position == nil {
		return e.Message
	}
	return fmt.Sprintf("%s at position %d", e.Message, *e.Position)
}

// Err returns nil for a valid result and a *SyntaxError otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &SyntaxError{Message: r.Error, Position: r.Position}
}

func ok() Result {
	return Result{Valid: true}
}

func fail(msg string) Result {
	return Result{Error: msg}
}

func failAt(msg string, pos int) Result {
	return Result{Error: msg, Position: &pos}
}

// Validate reports whether expression is a syntactically plausible boolean
// SQL expression.
func Validate(expression string) Result {
	if strings.TrimSpace(expression) == "" {
		return fail(msgEmpty)
	}

	tokens := Tokenize(expression)
	for _, t := range tokens {
		if t.Kind != Unknown {
			continue
		}
		if strings.ContainsAny(t.Text[:1], "'\"`[") {
			return failAt(msgUnterminate, t.Position)
		}
		return failAt(fmt.Sprintf("unexpected character '%s'", t.Text), t.Position)
	}

	if r := checkParens(tokens); !r.Valid {
		return r
	}
	return checkGrammar(tokens)
}

func checkParens(tokens []Token) Result {
	depth := 0
	for _, t := range tokens {
		switch t.Kind {
		case LParen:
			depth++
		case RParen:
			depth--
			if depth < 0 {
				return failAt(msgUnbalanced, t.Position)
			}
		}
	}
	if depth != 0 {
		return fail(msgUnbalanced)
	}
	return ok()
}

// checkGrammar walks the tokens once, tracking only whether the next token
// has to be an operand.
func checkGrammar(tokens []Token) Result {
	expecting := true

	for i, t := range tokens {
		var prev, next Token
		if i > 0 {
			prev = tokens[i-1]
		}
		if i+1 < len(tokens) {
			next = tokens[i+1]
		}

		switch t.Kind {
		case Identifier, Number, String:
			if !expecting && !introducesOperand(prev) {
				return failAt(fmt.Sprintf("unexpected %s '%s'", t.Kind, t.Text), t.Position)
			}
			expecting = false

		case Operator:
			switch {
			case expecting && (t.Text == "+" || t.Text == "-"):
				// unary sign, still waiting for the operand
			case expecting && t.Text == "*" && prev.Kind == LParen:
				// count(*)
				expecting = false
			case expecting:
				return failAt(fmt.Sprintf("unexpected operator '%s'", t.Text), t.Position)
			default:
				expecting = true
			}

		case Logical:
			if t.Text == "NOT" {
				if !expecting && !prev.is(Keyword, "IS") && !negatesPredicate(next) {
					return failAt("unexpected NOT", t.Position)
				}
				expecting = true
				continue
			}
			if expecting {
				return failAt(fmt.Sprintf("unexpected %s", t.Text), t.Position)
			}
			expecting = true

		case Keyword:
			switch t.Text {
			case "NULL", "TRUE", "FALSE":
				if !expecting && !introducesOperand(prev) {
					return failAt(fmt.Sprintf("unexpected %s", t.Text), t.Position)
				}
				expecting = false
			case "END":
				expecting = false
			case "IS", "IN", "LIKE", "ILIKE", "BETWEEN", "SIMILAR":
				if expecting && !prev.is(Logical, "NOT") {
					return failAt(fmt.Sprintf("unexpected %s", t.Text), t.Position)
				}
				expecting = true
			default:
				// CASE, CAST, EXISTS, WHEN, THEN, ELSE, AS, TO and the rest
				// all leave an operand to follow.
				expecting = true
			}

		case LParen:
			expecting = true

		case RParen:
			expecting = false

		case Comma:
			if expecting {
				return failAt("unexpected comma", t.Position)
			}
			expecting = true
		}
	}

	if expecting && len(tokens) > 0 {
		last := lastNonRParen(tokens)
		if last != nil && dangles(*last) {
			return failAt(msgIncomplete, last.Position)
		}
	}
	return ok()
}

// introducesOperand reports whether t is a keyword directly followed by an
// operand, as in "x IS NULL" or "x BETWEEN 1 AND 2".
func introducesOperand(t Token) bool {
	if t.Kind != Keyword {
		return false
	}
	switch t.Text {
	case "IS", "BETWEEN", "IN", "LIKE", "ILIKE", "AS", "TO", "WHEN", "THEN", "ELSE":
		return true
	}
	return false
}

func negatesPredicate(t Token) bool {
	if t.Kind != Keyword {
		return false
	}
	switch t.Text {
	case "LIKE", "ILIKE", "IN", "BETWEEN", "SIMILAR":
		return true
	}
	return false
}

func lastNonRParen(tokens []Token) *Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Kind != RParen {
			return &tokens[i]
		}
	}
	return nil
}

// dangles reports whether an expression ending in t is missing its right
// hand side.
func dangles(t Token) bool {
	switch t.Kind {
	case Operator, Comma:
		return true
	case Logical:
		return t.Text != "NOT"
	case Keyword:
		switch t.Text {
		case "NULL", "TRUE", "FALSE", "END":
			return false
		}
		return true
	}
	return false
}
