package compiler

import (
	"strings"

	"github.com/Konosh93/open-ts/internal/spec"
	"github.com/Konosh93/open-ts/internal/tsast"
)

// ValidatorClass is a class-validator class for an object schema.
type ValidatorClass struct {
	Name  string
	Rules []PropertyRule
}

// PropertyRule is one validated property. Decorators are ordered: presence,
// nullability guard, enum membership, then type rules.
type PropertyRule struct {
	Name       string
	Required   bool
	Nullable   bool
	Type       tsast.Type
	Decorators []Decorator
	Doc        string
}

// validatorFor builds and emits "<name>Validator" for schema. Schemas that
// do not resolve to an object with declared properties get no class, and
// validatorFor returns nil.
func (c *compilation) validatorFor(s *spec.Schema, name string) (*ValidatorClass, error) {
	target, err := c.resolve(s)
	if err != nil {
		return nil, err
	}
	if target == nil || len(target.Properties) == 0 {
		return nil, nil
	}
	className := c.names.claim(name + "Validator")
	if err := c.buildValidator(target, className); err != nil {
		return nil, err
	}
	return c.classDecls[len(c.classDecls)-1], nil
}

// buildValidator compiles the rules of target and appends the class. Nested
// classes are appended while the rules are compiled, so they precede it.
func (c *compilation) buildValidator(target *spec.Schema, className string) error {
	vc := &ValidatorClass{Name: className}
	for _, p := range target.Properties {
		rule, err := c.ruleFor(p.Schema, p.Name, target.IsRequired(p.Name))
		if err != nil {
			return err
		}
		vc.Rules = append(vc.Rules, rule)
	}
	c.classDecls = append(c.classDecls, vc)
	return nil
}

func (c *compilation) ruleFor(prop *spec.Schema, name string, required bool) (PropertyRule, error) {
	params, err := c.resolve(prop)
	if err != nil {
		return PropertyRule{}, err
	}
	if params == nil {
		params = &spec.Schema{}
	}
	rule := PropertyRule{Name: name, Required: required, Nullable: params.Nullable}
	add := func(d Decorator) {
		c.use(d)
		rule.Decorators = append(rule.Decorators, d)
	}

	if required {
		add(validator("IsNotEmpty"))
		if params.Nullable {
			add(validator("ValidateIf", tsast.Raw("o => "+accessor("o", name)+" !== null")))
		}
	} else {
		add(validator("IsOptional"))
	}

	if prop != nil && prop.Kind == spec.KindRef {
		e, err := c.enumFor(prop.Ref)
		if err != nil {
			return PropertyRule{}, err
		}
		if e != nil {
			add(validator("IsEnum", tsast.Ident(e.Name)))
		}
	}

	switch params.Type {
	case "string":
		maxLen := uint64(0)
		if params.MaxLength != nil {
			maxLen = *params.MaxLength
		}
		switch {
		case params.MinLength > 0 && maxLen > 0:
			add(validator("Length", tsast.Num(float64(params.MinLength)), tsast.Num(float64(maxLen))))
		case maxLen > 0:
			add(validator("MaxLength", tsast.Num(float64(maxLen))))
		case params.MinLength > 0:
			add(validator("MinLength", tsast.Num(float64(params.MinLength))))
		}
		f, err := c.formats.Lookup(params.Format)
		if err != nil {
			return PropertyRule{}, err
		}
		if f != nil {
			add(f.Decorator)
		}
		if params.Pattern != "" {
			add(validator("Matches", tsast.Raw(regexLiteral(params.Pattern))))
		}
	case "number", "integer":
		if params.Type == "integer" {
			add(validator("IsInt"))
		}
		if params.Minimum != nil {
			add(validator("Min", tsast.Num(*params.Minimum)))
		}
		if params.Maximum != nil {
			add(validator("Max", tsast.Num(*params.Maximum)))
		}
	case "boolean":
		add(validator("IsBoolean"))
	case "array":
		add(validator("IsArray"))
		if items := params.Items; items != nil && items.Kind == spec.KindRef {
			e, err := c.enumFor(items.Ref)
			if err != nil {
				return PropertyRule{}, err
			}
			if e != nil {
				add(validator("IsEnum", tsast.Ident(e.Name), tsast.Raw("{ each: true }")))
			}
		}
	case "object":
		if len(params.Properties) == 0 {
			add(validator("IsObject"))
			break
		}
		nested, err := c.nestedClass(prop, name, params)
		if err != nil {
			return PropertyRule{}, err
		}
		add(validator("ValidateNested"))
		add(transformer("Type", tsast.Raw("() => "+nested)))
	}

	if rule.Type, err = c.classTypeOf(prop); err != nil {
		return PropertyRule{}, err
	}
	rule.Doc = propertyDoc(prop, params, name)
	return rule, nil
}

func (c *compilation) nestedClass(prop *spec.Schema, name string, params *spec.Schema) (string, error) {
	if prop.Kind == spec.KindRef {
		return c.classForRef(prop.Ref)
	}
	className := c.inlineClassName(name)
	if err := c.buildValidator(params, className); err != nil {
		return "", err
	}
	return className, nil
}

func propertyDoc(prop, resolved *spec.Schema, name string) string {
	if prop != nil && prop.Description != "" {
		return prop.Description
	}
	if resolved != nil && resolved.Description != "" {
		return resolved.Description
	}
	return name
}

// accessor renders obj.name, or obj["name"] when name is not an identifier name.
func accessor(obj, name string) string {
	if tsast.IsIdentifierName(name) {
		return obj + "." + name
	}
	return obj + "[" + tsast.Quote(name) + "]"
}

// regexLiteral wraps pattern in slashes, escaping any unescaped slash.
func regexLiteral(pattern string) string {
	var b strings.Builder
	b.WriteByte('/')
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '/':
			b.WriteByte('\\')
		case r == '\n':
			b.WriteString(`\n`)
			continue
		}
		b.WriteRune(r)
	}
	b.WriteByte('/')
	return b.String()
}
