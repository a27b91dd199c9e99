// Package text provides the tokenizer feeding all word-counting metrics.
package text

import (
	"strings"
	"unicode"
)

// Token is a normalized word with its 0-based position in the parent text
type Token struct {
	Value    string
	Position int
}

// Tokenize splits a text into lower-cased word tokens with contiguous positions.
// Splitting happens on whitespace and punctuation; apostrophes inside a word are
// kept so contractions stay single tokens. Pure function, deterministic.
func Tokenize(text string) []Token {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	tokens := make([]Token, 0, len(fields))
	pos := 0
	for _, f := range fields {
		// Trim apostrophes kept by the splitter when they wrap the whole token
		f = strings.Trim(f, "'")
		if f == "" {
			continue
		}
		tokens = append(tokens, Token{Value: f, Position: pos})
		pos++
	}
	return tokens
}

// Counts returns plain occurrence frequencies for a token sequence
func Counts(tokens []Token) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t.Value]++
	}
	return counts
}
