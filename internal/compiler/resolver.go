package compiler

import (
	"strconv"
	"strings"

	"github.com/Konosh93/open-ts/internal/spec"
	"github.com/go-openapi/jsonpointer"
)

// maxRefHops bounds chains of schemas that are nothing but a $ref.
const maxRefHops = 64

// resolve follows s until it is no longer a reference. Non-reference nodes
// (and nil) pass through unchanged.
func (c *compilation) resolve(s *spec.Schema) (*spec.Schema, error) {
	for hops := 0; s != nil && s.Kind == spec.KindRef; hops++ {
		if hops == maxRefHops {
			return nil, &DocumentStructureError{Ref: s.Ref, Message: "reference chain does not end in a schema"}
		}
		target, err := c.lookup(s.Ref)
		if err != nil {
			return nil, err
		}
		s = target
	}
	return s, nil
}

// lookup returns the node a same-document reference points to, without
// following the target if it is itself a reference.
func (c *compilation) lookup(ref string) (*spec.Schema, error) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, &DocumentStructureError{Ref: ref, Unsupported: true, Message: "only same-document references are supported"}
	}
	ptr, err := jsonpointer.New(ref[1:])
	if err != nil {
		return nil, &DocumentStructureError{Ref: ref, Message: err.Error()}
	}
	s, ok := c.walkDocument(ptr.DecodedTokens())
	if !ok || s == nil {
		return nil, &DocumentStructureError{Ref: ref, Message: "reference does not point to a schema"}
	}
	return s, nil
}

func (c *compilation) walkDocument(toks []string) (*spec.Schema, bool) {
	if len(toks) < 3 || toks[0] != "components" {
		return nil, false
	}
	comps := c.doc.Components
	name, rest := toks[2], toks[3:]
	switch toks[1] {
	case "schemas":
		s, ok := comps.Schemas[name]
		if !ok {
			return nil, false
		}
		return c.walkSchema(s, rest)
	case "parameters":
		p, ok := comps.Parameters[name]
		if !ok || len(rest) == 0 || rest[0] != "schema" {
			return nil, false
		}
		return c.walkSchema(p.Schema, rest[1:])
	case "requestBodies":
		b, ok := comps.RequestBodies[name]
		if !ok {
			return nil, false
		}
		return c.walkContent(b.Content, rest)
	case "responses":
		r, ok := comps.Responses[name]
		if !ok {
			return nil, false
		}
		return c.walkContent(r.Content, rest)
	}
	return nil, false
}

func (c *compilation) walkContent(content []spec.Media, toks []string) (*spec.Schema, bool) {
	if len(toks) < 3 || toks[0] != "content" || toks[2] != "schema" {
		return nil, false
	}
	s, ok := spec.MediaFor(content, toks[1])
	if !ok {
		return nil, false
	}
	return c.walkSchema(s, toks[3:])
}

func (c *compilation) walkSchema(s *spec.Schema, toks []string) (*spec.Schema, bool) {
	for len(toks) > 0 {
		if s == nil {
			return nil, false
		}
		if s.Kind == spec.KindRef {
			target, err := c.resolve(s)
			if err != nil {
				return nil, false
			}
			s = target
			continue
		}
		tok := toks[0]
		toks = toks[1:]
		switch tok {
		case "items":
			s = s.Items
		case "additionalProperties":
			if s.AdditionalProperties == nil {
				return nil, false
			}
			s = s.AdditionalProperties.Schema
		case "properties":
			if len(toks) == 0 {
				return nil, false
			}
			p, ok := s.Property(toks[0])
			if !ok {
				return nil, false
			}
			s, toks = p, toks[1:]
		case "oneOf", "anyOf", "allOf":
			list := map[string][]*spec.Schema{"oneOf": s.OneOf, "anyOf": s.AnyOf, "allOf": s.AllOf}[tok]
			if len(toks) == 0 {
				return nil, false
			}
			i, err := strconv.Atoi(toks[0])
			if err != nil || i < 0 || i >= len(list) {
				return nil, false
			}
			s, toks = list[i], toks[1:]
		default:
			return nil, false
		}
	}
	return s, s != nil
}

// lastSegment returns the final path segment of a reference.
func lastSegment(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
