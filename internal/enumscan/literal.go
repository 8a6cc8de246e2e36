package enumscan

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errBadLiteral = errors.New("malformed literal")

// parseNumber reads a TypeScript numeric literal: decimal, exponent, hex,
// octal and binary forms, with optional underscore separators.
func parseNumber(text string) (float64, error) {
	s := strings.ReplaceAll(text, "_", "")
	if strings.HasSuffix(s, "n") {
		return 0, errBadLiteral
	}
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			n, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				return 0, errBadLiteral
			}
			return float64(n), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, errBadLiteral
	}
	return f, nil
}

// unquote decodes a single- or double-quoted string literal, or a template
// literal without substitutions.
func unquote(text string) (string, error) {
	if len(text) < 2 || text[len(text)-1] != text[0] {
		return "", errBadLiteral
	}
	if text[0] == '`' && strings.Contains(text, "${") {
		return "", errBadLiteral
	}
	body := text[1 : len(text)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(body) {
			return "", errBadLiteral
		}
		switch e := body[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case 'x':
			if i+2 >= len(body) {
				return "", errBadLiteral
			}
			n, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", errBadLiteral
			}
			b.WriteRune(rune(n))
			i += 2
		case 'u':
			r, width, err := unicodeEscape(body[i+1:])
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += width
		default:
			b.WriteByte(e)
		}
	}
	return b.String(), nil
}

// unicodeEscape reads the part of a \u escape after the u, returning the rune
// and the number of bytes consumed.
func unicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, errBadLiteral
		}
		n, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || n > utf8.MaxRune {
			return 0, 0, errBadLiteral
		}
		return rune(n), end + 1, nil
	}
	if len(s) < 4 {
		return 0, 0, errBadLiteral
	}
	n, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, errBadLiteral
	}
	return rune(n), 4, nil
}
