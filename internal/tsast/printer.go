package tsast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
)

const indentUnit = "    "

// Print renders f as TypeScript source. The output ends with a newline.
func Print(f *File) string {
	p := &printer{}
	for _, d := range f.Decls {
		p.decl(d)
	}
	return p.b.String()
}

// PrintType renders a single type at top-level indentation.
func PrintType(t Type) string {
	return typeString(t, 0)
}

type printer struct {
	b     strings.Builder
	level int
}

func (p *printer) line(format string, args ...any) {
	p.b.WriteString(strings.Repeat(indentUnit, p.level))
	if len(args) == 0 {
		p.b.WriteString(format)
	} else {
		fmt.Fprintf(&p.b, format, args...)
	}
	p.b.WriteByte('\n')
}

func exportPrefix(export bool) string {
	if export {
		return "export "
	}
	return ""
}

func (p *printer) decl(d Decl) {
	switch d := d.(type) {
	case Import:
		p.line("import { %s } from %s;", strings.Join(d.Names, ", "), Quote(d.From))
	case Comment:
		p.line("%s", d)
	case TypeAlias:
		p.line("%stype %s = %s;", exportPrefix(d.Export), d.Name, typeString(d.Type, p.level))
	case Enum:
		p.line("%senum %s {", exportPrefix(d.Export), d.Name)
		p.level++
		for i, m := range d.Members {
			sep := ","
			if i == len(d.Members)-1 {
				sep = ""
			}
			p.line("%s = %s%s", PropertyName(m.Name), exprString(m.Value, p.level), sep)
		}
		p.level--
		p.line("}")
	case Interface:
		p.line("%sinterface %s {", exportPrefix(d.Export), d.Name)
		p.level++
		for _, m := range d.Members {
			p.line("%s;", memberString(m, p.level))
		}
		p.level--
		p.line("}")
	case Class:
		mods := exportPrefix(d.Export)
		if d.Default {
			mods += "default "
		}
		p.line("%sclass %s {", mods, d.Name)
		p.level++
		for _, m := range d.Members {
			p.classMember(m)
		}
		p.level--
		p.line("}")
	default:
		panic(fmt.Sprintf("tsast: unknown declaration %T", d))
	}
}

func (p *printer) classMember(m ClassMember) {
	switch m := m.(type) {
	case Property:
		p.doc(m.Doc)
		for _, d := range m.Decorators {
			p.line("@%s", decoratorString(d, p.level))
		}
		opt := ""
		if m.Optional {
			opt = "?"
		}
		p.line("%s%s: %s;", PropertyName(m.Name), opt, typeString(m.Type, p.level))
	case Constructor:
		p.line("constructor(%s) {", p.params(m.Params))
		p.body(m.Body)
		p.line("}")
	case Method:
		p.doc(m.Doc)
		async := ""
		if m.Async {
			async = "async "
		}
		p.line("%s%s(%s) {", async, m.Name, p.params(m.Params))
		p.body(m.Body)
		p.line("}")
	default:
		panic(fmt.Sprintf("tsast: unknown class member %T", m))
	}
}

func (p *printer) body(stmts []Stmt) {
	p.level++
	for _, s := range stmts {
		switch s := s.(type) {
		case Return:
			if s.X == nil {
				p.line("return;")
			} else {
				p.line("return %s;", exprString(s.X, p.level))
			}
		case ExprStmt:
			p.line("%s;", exprString(s.X, p.level))
		default:
			panic(fmt.Sprintf("tsast: unknown statement %T", s))
		}
	}
	p.level--
}

func (p *printer) params(params []Param) string {
	return paramsString(params, p.level)
}

// doc writes a JSDoc block. Every line of text becomes one " * " line; a
// "*/" inside the text is written as "*\/" so the block stays open.
func (p *printer) doc(text string) {
	if text == "" {
		return
	}
	p.line("/**")
	for _, l := range strings.Split(text, "\n") {
		l = strings.ReplaceAll(strings.TrimRight(l, "\r"), "*/", "*\\/")
		p.line("%s", strings.TrimRight(" * "+l, " \t"))
	}
	p.line(" */")
}

func paramsString(params []Param, level int) string {
	parts := make([]string, len(params))
	for i, prm := range params {
		opt := ""
		if prm.Optional {
			opt = "?"
		}
		parts[i] = prm.Name + opt + ": " + typeString(prm.Type, level)
	}
	return strings.Join(parts, ", ")
}

func decoratorString(d Decorator, level int) string {
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = exprString(a, level)
	}
	return d.Name + "(" + strings.Join(args, ", ") + ")"
}

// DecoratorString renders d without the leading @.
func DecoratorString(d Decorator) string {
	return decoratorString(d, 0)
}

func typeString(t Type, level int) string {
	switch t := t.(type) {
	case nil:
		return string(Any)
	case Keyword:
		return string(t)
	case Ref:
		if len(t.Args) == 0 {
			return t.Name
		}
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = typeString(a, level)
		}
		return t.Name + "<" + strings.Join(args, ", ") + ">"
	case Union:
		parts := make([]string, 0, len(t))
		for _, m := range flattenUnion(t) {
			s := typeString(m, level)
			if _, fn := m.(Func); fn {
				s = "(" + s + ")"
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, " | ")
	case Intersection:
		parts := make([]string, len(t))
		for i, m := range t {
			s := typeString(m, level)
			switch m.(type) {
			case Union, Func:
				s = "(" + s + ")"
			}
			parts[i] = s
		}
		return strings.Join(parts, " & ")
	case Array:
		s := typeString(t.Elem, level)
		switch t.Elem.(type) {
		case Union, Intersection, Func:
			s = "(" + s + ")"
		}
		return s + "[]"
	case Literal:
		if len(t.Members) == 0 {
			return "{}"
		}
		var b strings.Builder
		b.WriteString("{\n")
		inner := strings.Repeat(indentUnit, level+1)
		for _, m := range t.Members {
			b.WriteString(inner)
			b.WriteString(memberString(m, level+1))
			b.WriteString(";\n")
		}
		b.WriteString(strings.Repeat(indentUnit, level))
		b.WriteString("}")
		return b.String()
	case Func:
		return "(" + paramsString(t.Params, level) + ") => " + typeString(t.Result, level)
	default:
		panic(fmt.Sprintf("tsast: unknown type %T", t))
	}
}

func flattenUnion(u Union) []Type {
	var out []Type
	for _, m := range u {
		if inner, ok := m.(Union); ok {
			out = append(out, flattenUnion(inner)...)
			continue
		}
		out = append(out, m)
	}
	return out
}

func memberString(m Member, level int) string {
	switch m := m.(type) {
	case PropertySignature:
		opt := ""
		if m.Optional {
			opt = "?"
		}
		return PropertyName(m.Name) + opt + ": " + typeString(m.Type, level)
	case IndexSignature:
		return "[" + m.Key + ": " + typeString(m.KeyType, level) + "]: " + typeString(m.Type, level)
	default:
		panic(fmt.Sprintf("tsast: unknown member %T", m))
	}
}

func exprString(e Expr, level int) string {
	switch e := e.(type) {
	case Ident:
		return string(e)
	case Str:
		return Quote(string(e))
	case Num:
		return FormatNumber(float64(e))
	case Raw:
		return string(e)
	case This:
		return "this"
	case Empty:
		return "{}"
	case Template:
		var b strings.Builder
		b.WriteByte('`')
		b.WriteString(escapeTemplate(e.Head))
		for _, s := range e.Spans {
			b.WriteString("${")
			b.WriteString(exprString(s.Expr, level))
			b.WriteString("}")
			b.WriteString(escapeTemplate(s.Tail))
		}
		b.WriteByte('`')
		return b.String()
	case Call:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = exprString(a, level)
		}
		return exprString(e.Callee, level) + "(" + strings.Join(args, ", ") + ")"
	case Prop:
		return exprString(e.X, level) + "." + e.Name
	case Await:
		return "await " + exprString(e.X, level)
	case As:
		return exprString(e.X, level) + " as " + typeString(e.Type, level)
	case Assign:
		return exprString(e.Left, level) + " = " + exprString(e.Right, level)
	default:
		panic(fmt.Sprintf("tsast: unknown expression %T", e))
	}
}

var templateEscaper = strings.NewReplacer("\\", "\\\\", "`", "\\`", "${", "\\${")

func escapeTemplate(s string) string { return templateEscaper.Replace(s) }

// Quote renders s as a double-quoted string literal.
func Quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(b)
}

// FormatNumber renders f the way a JavaScript numeric literal reads.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if a := math.Abs(f); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	s = strings.Replace(s, "e-0", "e-", 1)
	return strings.Replace(s, "e+0", "e+", 1)
}

// PropertyName renders name bare when it is an identifier name, quoted otherwise.
func PropertyName(name string) string {
	if IsIdentifierName(name) {
		return name
	}
	return Quote(name)
}
