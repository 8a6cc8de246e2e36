// Package enumscan extracts string and number enums from TypeScript sources
// and renders them as OpenAPI component schemas.
package enumscan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// IgnoreMarker placed directly before a declaration excludes it.
const IgnoreMarker = "/* open-ts: ignore-convert-enums */"

// Value types of an Enum.
const (
	TypeString = "string"
	TypeNumber = "number"
)

// Enum is one extracted enum. Values are string or float64, never mixed.
type Enum struct {
	Name   string
	Type   string
	Values []any
	File   string
}

// Scanner finds enums in TypeScript files.
type Scanner struct {
	log *zap.Logger
}

// New returns a Scanner that reports skipped candidates on log.
func New(log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{log: log}
}

// ScanDir walks dir for .ts files in lexical order and returns every enum
// found, with duplicate names numbered and the result sorted by name.
func (s *Scanner) ScanDir(ctx context.Context, dir string) ([]Enum, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("enumscan: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("enumscan: %s is not a directory", dir)
	}
	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".ts") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumscan: walk %s: %w", dir, err)
	}

	var out []Enum
	used := map[string]struct{}{}
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("enumscan: %w", err)
		}
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			rel = file
		}
		for _, e := range s.ScanSource(filepath.ToSlash(rel), string(src)) {
			e.Name = uniqueName(used, e.Name)
			out = append(out, e)
		}
		s.log.Debug("scanned file", zap.String("file", rel))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func uniqueName(used map[string]struct{}, base string) string {
	name := base
	for i := 1; ; i++ {
		if _, taken := used[name]; !taken {
			break
		}
		name = base + strconv.Itoa(i)
	}
	used[name] = struct{}{}
	return name
}

// ScanSource returns the enums declared in src, in source order. file is
// only used in log output and on the returned values.
func (s *Scanner) ScanSource(file, src string) []Enum {
	p := &parser{src: src, file: file, log: s.log}
	p.init(lex(src))
	return p.run()
}

type parser struct {
	src  string
	file string
	log  *zap.Logger

	toks []token
	// ignored[i] is set when the marker comment directly precedes toks[i].
	ignored []bool
	pos     int
}

func (p *parser) init(raw []token) {
	marked := false
	for _, t := range raw {
		if t.kind == tokComment {
			marked = strings.TrimSpace(t.text) == IgnoreMarker
			continue
		}
		p.toks = append(p.toks, t)
		p.ignored = append(p.ignored, marked)
		marked = false
	}
}

func (p *parser) peek(n int) token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func isPunct(t token, s string) bool { return t.kind == tokPunct && t.text == s }
func isWord(t token, s string) bool  { return t.kind == tokIdent && t.text == s }

func (p *parser) run() []Enum {
	var out []Enum
	for p.pos < len(p.toks) && p.peek(0).kind != tokEOF {
		start := p.pos
		prevDot := start > 0 && isPunct(p.toks[start-1], ".")
		switch t := p.peek(0); {
		case !prevDot && isWord(t, "enum") && p.peek(1).kind == tokIdent && isPunct(p.peek(2), "{"):
			name := p.peek(1).text
			ignored := p.statementIgnored(start)
			p.pos += 3
			if e, ok := p.enumBody(name); ok && !ignored {
				out = append(out, e)
			}
		case !prevDot && isWord(t, "const") && p.peek(1).kind == tokIdent && isPunct(p.peek(2), "=") && isPunct(p.peek(3), "{"):
			name := p.peek(1).text
			ignored := p.statementIgnored(start)
			p.pos += 4
			e, ok := p.objectBody(name)
			if isWord(p.peek(0), "as") && isWord(p.peek(1), "const") {
				p.pos += 2
				if ok && !ignored {
					out = append(out, e)
				}
			}
		default:
			p.pos++
		}
	}
	return out
}

// statementIgnored walks back over declaration modifiers to the first token
// of the statement and reports whether the marker precedes it.
func (p *parser) statementIgnored(i int) bool {
	for i > 0 {
		prev := p.toks[i-1]
		if prev.kind != tokIdent {
			break
		}
		switch prev.text {
		case "export", "declare", "const", "default":
			i--
			continue
		}
		break
	}
	return p.ignored[i]
}

func (p *parser) warn(name, reason string) {
	p.log.Warn("unsupported enum skipped",
		zap.String("file", p.file),
		zap.String("enum", name),
		zap.String("reason", reason))
}

// enumBody parses the members of an enum after its opening brace and leaves
// the cursor after the closing brace.
func (p *parser) enumBody(name string) (Enum, bool) {
	e := Enum{Name: name, File: p.file}
	ok := true
	var prev any
	for {
		t := p.peek(0)
		if t.kind == tokEOF {
			return e, false
		}
		if isPunct(t, "}") {
			p.pos++
			break
		}
		if isPunct(t, ",") {
			p.pos++
			continue
		}
		p.pos++ // member name
		var value any
		if isPunct(p.peek(0), "=") {
			p.pos++
			init := p.expression()
			v, err := p.literal(init)
			if err != nil && ok {
				p.warn(name, "unsupported initializer: "+p.text(init))
				ok = false
			}
			value = v
		} else {
			switch pv := prev.(type) {
			case nil:
				value = float64(0)
			case float64:
				value = pv + 1
			default:
				if ok {
					p.warn(name, "member without initializer after a string member")
					ok = false
				}
			}
		}
		prev = value
		if ok {
			ok = e.add(value, func(reason string) { p.warn(name, reason) })
		}
	}
	return e, ok && len(e.Values) > 0
}

// objectBody parses the properties of an object literal after its opening
// brace and leaves the cursor after the closing brace.
func (p *parser) objectBody(name string) (Enum, bool) {
	e := Enum{Name: name, File: p.file}
	ok := true
	for {
		t := p.peek(0)
		if t.kind == tokEOF {
			return e, false
		}
		if isPunct(t, "}") {
			p.pos++
			break
		}
		if isPunct(t, ",") {
			p.pos++
			continue
		}
		var value any
		switch t.kind {
		case tokIdent, tokString, tokNumber:
			if isPunct(p.peek(1), ":") {
				p.pos += 2
				val := p.expression()
				v, err := p.literal(val)
				if err != nil && ok {
					p.warn(name, "unsupported value: "+p.text(val))
					ok = false
				}
				value = v
				break
			}
			fallthrough
		default:
			member := p.expression()
			if ok {
				p.warn(name, "unsupported member: "+p.text(member))
				ok = false
			}
		}
		if ok {
			ok = e.add(value, func(reason string) { p.warn(name, reason) })
		}
	}
	return e, ok && len(e.Values) > 0
}

// add appends v, rejecting a value whose type differs from the enum's.
func (e *Enum) add(v any, warn func(string)) bool {
	kind := TypeString
	if _, num := v.(float64); num {
		kind = TypeNumber
	}
	if e.Type == "" {
		e.Type = kind
	}
	if e.Type != kind {
		warn("mixed types: " + e.Type + " and " + kind)
		return false
	}
	e.Values = append(e.Values, v)
	return true
}

// expression consumes tokens up to the next comma or closing brace at the
// current nesting level and returns the consumed range.
func (p *parser) expression() []token {
	start := p.pos
	depth := 0
	for {
		t := p.peek(0)
		if t.kind == tokEOF {
			break
		}
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]":
				depth--
			case "}":
				if depth == 0 {
					return p.toks[start:p.pos]
				}
				depth--
			case ",":
				if depth == 0 {
					return p.toks[start:p.pos]
				}
			}
		}
		p.pos++
	}
	return p.toks[start:p.pos]
}

// literal evaluates a string literal, a template without substitutions, or
// an optionally signed number.
func (p *parser) literal(expr []token) (any, error) {
	sign := 1.0
	if len(expr) == 2 && (isPunct(expr[0], "-") || isPunct(expr[0], "+")) {
		if expr[0].text == "-" {
			sign = -1
		}
		expr = expr[1:]
		if expr[0].kind != tokNumber {
			return nil, errBadLiteral
		}
	}
	if len(expr) != 1 {
		return nil, errBadLiteral
	}
	switch expr[0].kind {
	case tokString, tokTemplate:
		return unquote(expr[0].text)
	case tokNumber:
		f, err := parseNumber(expr[0].text)
		if err != nil {
			return nil, err
		}
		return sign * f, nil
	}
	return nil, errBadLiteral
}

// text returns the source covered by toks.
func (p *parser) text(toks []token) string {
	if len(toks) == 0 {
		return ""
	}
	last := toks[len(toks)-1]
	return p.src[toks[0].pos : last.pos+len(last.text)]
}
