// Package subst rewrites embedded LaTeX commands into the target markup,
// resolving citations and cross-references against auxiliary metadata.
package subst

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind distinguishes plain text from command calls.
type Kind int

const (
	Text Kind = iota
	Call
)

// Token is either a run of plain text or a single \name{arg} call.
type Token struct {
	Kind Kind
	// Raw is the exact source text of the token.
	Raw string
	// Name and Arg are set for calls.
	Name string
	Arg  string
}

// Tokenize splits text into plain text runs and command calls. A call is a
// backslash, one or more word characters, and a brace argument of at least
// one character on the same line, closed by the first following brace.
// Nested braces are not supported.
func Tokenize(text string) []Token {
	var tokens []Token
	start := 0
	for i := 0; i < len(text); {
		j := strings.IndexByte(text[i:], '\\')
		if j < 0 {
			break
		}
		i += j

		tok, n := scanCall(text[i:])
		if n == 0 {
			i++
			continue
		}
		if start < i {
			tokens = append(tokens, Token{Kind: Text, Raw: text[start:i]})
		}
		tokens = append(tokens, tok)
		i += n
		start = i
	}
	if start < len(text) {
		tokens = append(tokens, Token{Kind: Text, Raw: text[start:]})
	}
	return tokens
}

// scanCall matches a call at the start of s and returns its length, or 0.
func scanCall(s string) (Token, int) {
	i := 1 // backslash
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isWordRune(r) {
			break
		}
		i += size
	}
	name := s[1:i]
	if name == "" || i >= len(s) || s[i] != '{' {
		return Token{}, 0
	}

	argStart := i + 1
	if argStart >= len(s) || s[argStart] == '\n' {
		return Token{}, 0
	}
	// The first argument character may itself be a closing brace.
	_, first := utf8.DecodeRuneInString(s[argStart:])
	rest := s[argStart+first:]
	end := strings.IndexAny(rest, "}\n")
	if end < 0 || rest[end] == '\n' {
		return Token{}, 0
	}
	argEnd := argStart + first + end
	n := argEnd + 1
	return Token{
		Kind: Call,
		Raw:  s[:n],
		Name: name,
		Arg:  s[argStart:argEnd],
	}, n
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me, unicode.Pc)
}
