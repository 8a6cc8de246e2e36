package enumscan

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokTemplate
	tokPunct
	tokComment
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits TypeScript source into tokens. Whitespace is dropped, comments
// are kept so that a marker comment can be matched against the statement
// after it. The lexer only needs to be exact for the declarations it looks
// for; anything else only has to keep brace depth right.
func lex(src string) []token {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			toks = append(toks, token{tokComment, src[i : i+end], i})
			i += end
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				end = len(src) - i
			} else {
				end += 4
			}
			toks = append(toks, token{tokComment, src[i : i+end], i})
			i += end
		case r == '"' || r == '\'':
			end := scanQuoted(src, i, byte(r))
			toks = append(toks, token{tokString, src[i:end], i})
			i = end
		case r == '`':
			end := scanTemplate(src, i)
			toks = append(toks, token{tokTemplate, src[i:end], i})
			i = end
		case r >= '0' && r <= '9' || r == '.' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9':
			end := i + 1
			for end < len(src) && isNumberPart(src, end) {
				end++
			}
			toks = append(toks, token{tokNumber, src[i:end], i})
			i = end
		case isIdentStart(r):
			end := i + size
			for end < len(src) {
				r2, s2 := utf8.DecodeRuneInString(src[end:])
				if !isIdentPart(r2) {
					break
				}
				end += s2
			}
			toks = append(toks, token{tokIdent, src[i:end], i})
			i = end
		default:
			toks = append(toks, token{tokPunct, src[i : i+size], i})
			i += size
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)})
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isNumberPart(src string, i int) bool {
	c := src[i]
	switch {
	case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '.':
		return true
	case c == '+' || c == '-':
		prev := src[i-1]
		// exponent sign, but not in hex literals such as 0xE-1
		return (prev == 'e' || prev == 'E') && !strings.HasPrefix(strings.ToLower(lastNumberStart(src, i)), "0x")
	}
	return false
}

func lastNumberStart(src string, i int) string {
	j := i
	for j > 0 && (isAlnum(src[j-1]) || src[j-1] == '.' || src[j-1] == '_') {
		j--
	}
	return src[j:i]
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// scanQuoted returns the offset just past the closing quote.
func scanQuoted(src string, start int, quote byte) int {
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		case '\n':
			return i
		}
	}
	return len(src)
}

// scanTemplate returns the offset just past the closing backtick, skipping
// over substitutions.
func scanTemplate(src string, start int) int {
	depth := 0
	for i := start + 1; i < len(src); i++ {
		switch c := src[i]; {
		case c == '\\':
			i++
		case c == '$' && depth == 0 && i+1 < len(src) && src[i+1] == '{':
			depth = 1
			i++
		case depth > 0 && c == '{':
			depth++
		case depth > 0 && c == '}':
			depth--
		case depth > 0 && (c == '"' || c == '\''):
			i = scanQuoted(src, i, c) - 1
		case depth == 0 && c == '`':
			return i + 1
		}
	}
	return len(src)
}
