package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	var tests = []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "comparison",
			input: "price >= 10",
			want: []Token{
				{Identifier, "price", 0},
				{Operator, ">=", 6},
				{Number, "10", 9},
			},
		},
		{
			name:  "keywords are upper cased, identifiers keep their case",
			input: "Name is not null",
			want: []Token{
				{Identifier, "Name", 0},
				{Keyword, "IS", 5},
				{Logical, "NOT", 8},
				{Keyword, "NULL", 12},
			},
		},
		{
			name:  "escaped quote inside string",
			input: "'it''s'",
			want:  []Token{{String, "it's", 0}},
		},
		{
			name:  "dialect quoting",
			input: "\"a b\" `c` [d e]",
			want: []Token{
				{Identifier, "a b", 0},
				{Identifier, "c", 6},
				{Identifier, "d e", 10},
			},
		},
		{
			name:  "scientific notation and leading dot",
			input: "1.5E+10 .25 3e",
			want: []Token{
				{Number, "1.5E+10", 0},
				{Number, ".25", 8},
				{Number, "3", 12},
				{Identifier, "e", 13},
			},
		},
		{
			name:  "greedy operators",
			input: "a::int!~*b->>c",
			want: []Token{
				{Identifier, "a", 0},
				{Operator, "::", 1},
				{Identifier, "int", 3},
				{Operator, "!~*", 6},
				{Identifier, "b", 9},
				{Operator, "->>", 10},
				{Identifier, "c", 13},
			},
		},
		{
			name:  "parens and commas",
			input: "f(a, b)",
			want: []Token{
				{Identifier, "f", 0},
				{LParen, "(", 1},
				{Identifier, "a", 2},
				{Comma, ",", 3},
				{Identifier, "b", 5},
				{RParen, ")", 6},
			},
		},
		{
			name:  "unknown character",
			input: "a ? b",
			want: []Token{
				{Identifier, "a", 0},
				{Unknown, "?", 2},
				{Identifier, "b", 4},
			},
		},
		{
			name:  "positions count runes",
			input: "'é' = x",
			want: []Token{
				{String, "é", 0},
				{Operator, "=", 4},
				{Identifier, "x", 6},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize("   "))
}
