package compiler

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/Konosh93/open-ts/internal/spec"
	"github.com/Konosh93/open-ts/internal/tsast"
	"go.uber.org/zap"
)

// EnumRef is an enum declaration generated for a referenced schema.
type EnumRef struct {
	Name   string
	Values []any
	// ValueType is "string" or "number".
	ValueType string
}

// aliasFor returns the named type for ref, declaring it on first use. The
// name is recorded before the target is compiled, so a schema that refers
// back to itself sees the name instead of recursing.
func (c *compilation) aliasFor(ref string) (tsast.Type, error) {
	if t, ok := c.aliases[ref]; ok {
		return t, nil
	}
	target, err := c.lookup(ref)
	if err != nil {
		return nil, err
	}
	display := target.Title
	if display == "" {
		display = lastSegment(ref)
	}
	name := c.names.claim(typeName(display))
	named := tsast.Ref{Name: name}
	c.aliases[ref] = named

	if len(target.Enum) > 0 {
		c.registerEnum(ref, name, target.Enum)
	}

	def, err := c.typeOf(target)
	if err != nil {
		return nil, err
	}
	c.typeDecls = append(c.typeDecls, tsast.TypeAlias{Export: true, Name: name, Type: def})
	c.log.Debug("declared type", zap.String("ref", ref), zap.String("name", name))
	return named, nil
}

// enumFor returns the enum declared for ref, compiling the ref first if it
// has not been seen yet. It is nil when the target has no usable enum.
func (c *compilation) enumFor(ref string) (*EnumRef, error) {
	if _, err := c.aliasFor(ref); err != nil {
		return nil, err
	}
	return c.enums[ref], nil
}

func (c *compilation) registerEnum(ref, aliasName string, values []any) {
	var (
		kept      []any
		valueType string
		seen      = map[string]struct{}{}
	)
	for _, v := range values {
		var kind, key string
		switch v := v.(type) {
		case nil:
			continue
		case string:
			kind, key = "string", "s:"+v
		case float64, float32, int, int32, int64, uint64:
			kind, key = "number", "n:"+tsast.FormatNumber(toFloat(v))
		default:
			kind = "unsupported"
		}
		if kind == "unsupported" || (valueType != "" && kind != valueType) {
			c.log.Warn("enum has mixed or unsupported value types; skipping", zap.String("schema", ref))
			return
		}
		valueType = kind
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		return
	}

	e := &EnumRef{Name: c.names.claim(aliasName + "Enum"), Values: kept, ValueType: valueType}
	c.enums[ref] = e
	decl := tsast.Enum{Export: true, Name: e.Name}
	for _, v := range kept {
		var value tsast.Expr
		var label string
		if s, ok := v.(string); ok {
			value, label = tsast.Str(s), s
		} else {
			f := toFloat(v)
			value, label = tsast.Num(f), tsast.FormatNumber(f)
		}
		decl.Members = append(decl.Members, tsast.EnumMember{Name: "_" + label, Value: value})
	}
	c.enumDecls = append(c.enumDecls, decl)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return 0
}

// classForRef returns the validator class for a referenced object, building
// it on first use. The class name is registered before its properties are
// compiled so that cyclic object graphs terminate.
func (c *compilation) classForRef(ref string) (string, error) {
	if name, ok := c.refClasses[ref]; ok {
		return name, nil
	}
	target, err := c.resolve(spec.NewRef(ref))
	if err != nil {
		return "", err
	}
	name := c.names.claim(typeName(lastSegment(ref)) + "Validator")
	c.refClasses[ref] = name
	if err := c.buildValidator(target, name); err != nil {
		return "", err
	}
	return name, nil
}

// inlineClassName numbers nested classes per property name: the first
// inline object under "data" is Data1, the next Data2.
func (c *compilation) inlineClassName(prop string) string {
	base := capitalize(typeName(prop))
	for {
		c.classSeq[prop]++
		name := base + strconv.Itoa(c.classSeq[prop]) + "Validator"
		if !c.names.taken(name) {
			return c.names.claim(name)
		}
	}
}

// typeName turns a schema key into something usable as a type name.
func typeName(s string) string {
	if tsast.IsIdentifier(s) {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || tsast.IsReserved(out) {
		out = "_" + out
	}
	return out
}
