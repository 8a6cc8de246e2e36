package compiler

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type runeClass int

const (
	classSep runeClass = iota
	classUpper
	classLower
	classDigit
)

func classify(r rune) runeClass {
	switch {
	case unicode.IsUpper(r):
		return classUpper
	case unicode.IsLetter(r):
		return classLower
	case unicode.IsDigit(r):
		return classDigit
	default:
		return classSep
	}
}

// words splits s at separators, lower-to-upper transitions, letter/digit
// boundaries, and before the last capital of an acronym followed by a
// lowercase letter ("HTTPResponse" -> "HTTP", "Response").
func words(s string) []string {
	s = strings.NewReplacer("'", "", "’", "").Replace(s)
	rs := []rune(s)
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range rs {
		c := classify(r)
		if c == classSep {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := classify(cur[len(cur)-1])
			switch {
			case prev == classLower && c == classUpper:
				flush()
			case (prev == classDigit) != (c == classDigit):
				flush()
			case prev == classUpper && c == classUpper && i+1 < len(rs) && classify(rs[i+1]) == classLower:
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// camelCase lowercases the first word and title-cases the rest:
// "find_pet-by id" -> "findPetById", "getHTTPResponse" -> "getHttpResponse".
func camelCase(s string) string {
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)
	var b strings.Builder
	for i, w := range words(s) {
		w = lower.String(w)
		if i > 0 {
			w = title.String(w)
		}
		b.WriteString(w)
	}
	return b.String()
}

// capitalize upper-cases the first character and keeps the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// nameTable hands out unique identifiers within one namespace.
type nameTable struct {
	used map[string]struct{}
}

func newNameTable() *nameTable {
	return &nameTable{used: map[string]struct{}{}}
}

func (t *nameTable) taken(name string) bool {
	_, ok := t.used[name]
	return ok
}

// claim returns base if free, else base followed by the first free number
// starting at 1.
func (t *nameTable) claim(base string) string {
	name := base
	for i := 1; t.taken(name); i++ {
		name = base + strconv.Itoa(i)
	}
	t.used[name] = struct{}{}
	return name
}
