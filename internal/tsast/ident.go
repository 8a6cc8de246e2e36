package tsast

import "unicode"

// reserved holds the ECMAScript reserved words, strict-mode ones included.
var reserved = map[string]struct{}{
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {},
	"debugger": {}, "default": {}, "delete": {}, "do": {}, "else": {}, "enum": {},
	"export": {}, "extends": {}, "false": {}, "finally": {}, "for": {}, "function": {},
	"if": {}, "import": {}, "in": {}, "instanceof": {}, "new": {}, "null": {},
	"return": {}, "super": {}, "switch": {}, "this": {}, "throw": {}, "true": {},
	"try": {}, "typeof": {}, "var": {}, "void": {}, "while": {}, "with": {},
	"implements": {}, "interface": {}, "let": {}, "package": {}, "private": {},
	"protected": {}, "public": {}, "static": {}, "yield": {}, "await": {},
}

// IsReserved reports whether s is a reserved word.
func IsReserved(s string) bool {
	_, ok := reserved[s]
	return ok
}

// IsIdentifier reports whether s can be used as a binding name: an
// identifier name that is not reserved.
func IsIdentifier(s string) bool {
	return IsIdentifierName(s) && !IsReserved(s)
}

// IsIdentifierName reports whether s can be written unquoted in property or
// member position, where reserved words are allowed.
func IsIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Pc, r)):
		default:
			return false
		}
	}
	return true
}
