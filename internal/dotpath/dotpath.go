package dotpath

import (
	"math"
	"strconv"
	"strings"
)

// Separator splits path segments. It cannot be escaped.
const Separator = "."

// Token is a single path segment: either an array index or an object field.
type Token struct {
	Field   string // raw segment text, set for both kinds
	Index   uint64
	IsIndex bool
}

// Path is a parsed dot-notation path.
type Path []Token

// Parse splits path on the separator. Segments made only of ASCII digits
// become index tokens, everything else is a field token. Trailing empty
// segments are dropped, so "a." addresses a. Parse never fails; the empty
// string, or a path made only of separators, yields a single empty field
// token.
func Parse(path string) Path {
	segments := strings.Split(path, Separator)
	for len(segments) > 1 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	tokens := make(Path, 0, len(segments))
	for _, segment := range segments {
		tokens = append(tokens, parseToken(segment))
	}
	return tokens
}

func parseToken(segment string) Token {
	if !isDigits(segment) {
		return Token{Field: segment}
	}

	index, err := strconv.ParseUint(segment, 10, 64)
	if err != nil {
		// overflow: keep the token an index so it is always out of range
		index = math.MaxUint64
	}
	return Token{Field: segment, Index: index, IsIndex: true}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String returns the segment text.
func (t Token) String() string {
	return t.Field
}

// String rejoins the tokens with the separator.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, tok := range p {
		parts[i] = tok.Field
	}
	return strings.Join(parts, Separator)
}

// Last returns the final token. It panics on an empty path.
func (p Path) Last() Token {
	return p[len(p)-1]
}

// Parent returns the path without its final token.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}
