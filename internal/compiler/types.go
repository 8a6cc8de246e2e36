package compiler

import (
	"fmt"

	"github.com/Konosh93/open-ts/internal/spec"
	"github.com/Konosh93/open-ts/internal/tsast"
	"go.uber.org/zap"
)

// dateMode controls how date formats are typed.
type dateMode int

const (
	// dateUnion accepts both the wire string and a Date.
	dateUnion dateMode = iota
	// dateCast is used on validator classes, where class-transformer has
	// already produced a Date.
	dateCast
)

var dateType = tsast.Ref{Name: "Date"}

// typeOf is the TypeScript type for a schema, including "| null" for
// nullable schemas. A missing schema is any.
func (c *compilation) typeOf(s *spec.Schema) (tsast.Type, error) {
	if s == nil {
		return tsast.Any, nil
	}
	t, err := c.baseTypeOf(s, dateUnion)
	if err != nil {
		return nil, err
	}
	if s.Nullable {
		return tsast.Union{t, tsast.Null}, nil
	}
	return t, nil
}

// classTypeOf is the declared type of a validator class property.
func (c *compilation) classTypeOf(s *spec.Schema) (tsast.Type, error) {
	if s == nil {
		return tsast.Any, nil
	}
	return c.baseTypeOf(s, dateCast)
}

func (c *compilation) baseTypeOf(s *spec.Schema, mode dateMode) (tsast.Type, error) {
	switch s.Kind {
	case spec.KindRef:
		return c.aliasFor(s.Ref)
	case spec.KindOneOf:
		return c.combine(s.OneOf, tsast.NewUnion)
	case spec.KindAnyOf:
		return c.combine(s.AnyOf, tsast.NewUnion)
	case spec.KindAllOf:
		return c.combine(s.AllOf, tsast.NewIntersection)
	case spec.KindArray:
		elem, err := c.typeOf(s.Items)
		if err != nil {
			return nil, err
		}
		return tsast.Array{Elem: elem}, nil
	case spec.KindObject:
		return c.objectType(s)
	case spec.KindPrimitive:
		return c.primitiveType(s, mode), nil
	case spec.KindAny:
		return tsast.Any, nil
	default:
		return nil, fmt.Errorf("compiler: unhandled schema kind %v", s.Kind)
	}
}

func (c *compilation) combine(members []*spec.Schema, join func(...tsast.Type) tsast.Type) (tsast.Type, error) {
	types := make([]tsast.Type, 0, len(members))
	for _, m := range members {
		t, err := c.typeOf(m)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return join(types...), nil
}

func (c *compilation) objectType(s *spec.Schema) (tsast.Type, error) {
	c.checkRequired(s)
	lit := tsast.Literal{}
	for _, p := range s.Properties {
		t, err := c.typeOf(p.Schema)
		if err != nil {
			return nil, err
		}
		lit.Members = append(lit.Members, tsast.PropertySignature{
			Name:     p.Name,
			Optional: !s.IsRequired(p.Name),
			Type:     t,
		})
	}
	if ap := s.AdditionalProperties; ap != nil {
		var t tsast.Type = tsast.Any
		if ap.Schema != nil {
			var err error
			if t, err = c.typeOf(ap.Schema); err != nil {
				return nil, err
			}
		}
		lit.Members = append(lit.Members, tsast.IndexSignature{Key: "key", KeyType: tsast.String, Type: t})
	}
	return lit, nil
}

func (c *compilation) checkRequired(s *spec.Schema) {
	for _, name := range s.Required {
		if _, ok := s.Property(name); !ok {
			c.log.Warn("required property is not declared",
				zap.String("property", name),
				zap.Strings("properties", s.PropertyNames()))
		}
	}
}

func (c *compilation) primitiveType(s *spec.Schema, mode dateMode) tsast.Type {
	switch s.Type {
	case "string":
		if c.formats.IsDate(s.Format) {
			if mode == dateCast {
				return dateType
			}
			return tsast.Union{tsast.String, dateType}
		}
		return tsast.String
	case "integer", "number":
		return tsast.Number
	case "boolean":
		return tsast.Boolean
	case "null":
		return tsast.Null
	default:
		return tsast.Any
	}
}
