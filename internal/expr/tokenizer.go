package expr

import (
	"strings"
	"unicode"
)

// Tokenize splits s into tokens from left to right. It never fails: input it
// cannot classify comes back as Unknown tokens, including unterminated string
// literals and quoted identifiers.
func Tokenize(s string) []Token {
	l := lexer{src: []rune(s)}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return l.tokens
		}
		l.next()
	}
}

type lexer struct {
	src    []rune
	pos    int
	tokens []Token
}

func (l *lexer) emit(kind Kind, text string, start int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Position: start})
}

func (l *lexer) peek(offset int) rune {
	if l.pos+offset < len(l.src) {
		return l.src[l.pos+offset]
	}
	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
}

func (l *lexer) next() {
	start := l.pos
	c := l.src[l.pos]

	switch {
	case c == '\'':
		l.quoted('\'', '\'', String)
	case c == '"':
		l.quoted('"', '"', Identifier)
	case c == '`':
		l.quoted('`', '`', Identifier)
	case c == '[':
		l.quoted('[', ']', Identifier)
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		l.number()
	case c == '(':
		l.pos++
		l.emit(LParen, "(", start)
	case c == ')':
		l.pos++
		l.emit(RParen, ")", start)
	case c == ',':
		l.pos++
		l.emit(Comma, ",", start)
	case isWordStart(c):
		l.word()
	default:
		if op := l.operator(); op != "" {
			l.pos += len([]rune(op))
			l.emit(Operator, op, start)
			return
		}
		l.pos++
		l.emit(Unknown, string(c), start)
	}
}

// quoted scans a span delimited by open and close. A doubled closing
// character inside the span is an escaped literal character.
func (l *lexer) quoted(open, close rune, kind Kind) {
	start := l.pos
	var b strings.Builder
	l.pos++
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == close {
			if l.peek(1) == close && open == close {
				b.WriteRune(close)
				l.pos += 2
				continue
			}
			l.pos++
			l.emit(kind, b.String(), start)
			return
		}
		b.WriteRune(c)
		l.pos++
	}
	l.emit(Unknown, string(l.src[start:]), start)
}

func (l *lexer) number() {
	start := l.pos
	seenDot := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isDigit(c) {
			l.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			l.pos++
			continue
		}
		break
	}
	if c := l.peek(0); c == 'e' || c == 'E' {
		offset := 1
		if sign := l.peek(1); sign == '+' || sign == '-' {
			offset = 2
		}
		if isDigit(l.peek(offset)) {
			l.pos += offset
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}
	l.emit(Number, string(l.src[start:l.pos]), start)
}

func (l *lexer) word() {
	start := l.pos
	for l.pos < len(l.src) && isWordPart(l.src[l.pos]) {
		l.pos++
	}
	text := string(l.src[start:l.pos])
	upper := strings.ToUpper(text)
	switch {
	case logicals[upper]:
		l.emit(Logical, upper, start)
	case keywords[upper]:
		l.emit(Keyword, upper, start)
	default:
		l.emit(Identifier, text, start)
	}
}

func (l *lexer) operator() string {
	rest := string(l.src[l.pos:min(l.pos+3, len(l.src))])
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			return op
		}
	}
	return ""
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isWordStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

// isWordPart allows dots so that qualified names such as orders.total stay a
// single identifier.
func isWordPart(c rune) bool {
	return c == '_' || c == '$' || c == '.' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
