package spec

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/jsonpointer"
)

// BuildOption configures how the Document is built from an OpenAPI doc.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	pathRes     []*regexp.Regexp
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) BuildOption {
	return func(c *buildConfig) {
		for _, m := range methods {
			if c.methods == nil {
				c.methods = make(map[HttpMethod]struct{}, len(methods))
			}
			c.methods[m] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only path items whose path matches at least one of
// the provided regular expressions. An invalid pattern never matches.
func WithPathPatterns(patterns []string) BuildOption {
	return func(c *buildConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// Normalize converts a loaded OpenAPI v3 document into a Document. order
// supplies the source key order; it may be nil, in which case map-backed
// collections come out sorted.
func Normalize(doc *openapi3.T, order *OrderIndex, opts ...BuildOption) (*Document, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	n := &normalizer{order: order, cfg: cfg}

	out := &Document{}
	if doc.Info != nil {
		out.Title = strings.TrimSpace(doc.Info.Title)
		out.Version = strings.TrimSpace(doc.Info.Version)
	}
	out.Components = n.components(doc.Components)

	for _, p := range orderedKeys(doc.Paths, order, []string{"paths"}) {
		item := doc.Paths[p]
		if item == nil || !n.pathAllowed(p) {
			continue
		}
		out.Paths = append(out.Paths, n.pathItem(p, item))
	}
	return out, nil
}

type normalizer struct {
	order *OrderIndex
	cfg   *buildConfig
}

func (n *normalizer) components(c *openapi3.Components) Components {
	out := Components{
		Schemas:       map[string]*Schema{},
		Parameters:    map[string]*Parameter{},
		RequestBodies: map[string]*RequestBody{},
		Responses:     map[string]*Response{},
	}
	if c == nil {
		return out
	}
	for name, ref := range c.Schemas {
		if ref == nil {
			continue
		}
		out.Schemas[name] = n.schema(ref, []string{"components", "schemas", name})
	}
	for name, ref := range c.Parameters {
		if p := n.parameter(ref, []string{"components", "parameters", name}); p != nil {
			out.Parameters[name] = p
		}
	}
	for name, ref := range c.RequestBodies {
		if b := n.requestBody(ref, []string{"components", "requestBodies", name}); b != nil {
			out.RequestBodies[name] = b
		}
	}
	for name, ref := range c.Responses {
		if r := n.response(name, ref, []string{"components", "responses", name}); r != nil {
			out.Responses[name] = r
		}
	}
	return out
}

var pathItemMetaKeys = map[string]struct{}{
	"summary":     {},
	"description": {},
	"servers":     {},
	"parameters":  {},
	"$ref":        {},
}

func (n *normalizer) pathItem(p string, item *openapi3.PathItem) PathItem {
	path := []string{"paths", p}
	out := PathItem{Path: p}
	for i, pref := range item.Parameters {
		if pm := n.parameter(pref, child(path, "parameters", strconv.Itoa(i))); pm != nil {
			out.Parameters = append(out.Parameters, *pm)
		}
	}

	keys := n.order.Keys(path...)
	if len(keys) == 0 {
		for _, m := range Methods {
			if operationOf(item, m) != nil {
				keys = append(keys, string(m))
			}
		}
	}
	for _, key := range keys {
		if _, meta := pathItemMetaKeys[key]; meta || strings.HasPrefix(key, "x-") {
			continue
		}
		m, ok := ParseMethod(key)
		if !ok {
			out.Unsupported = append(out.Unsupported, key)
			continue
		}
		op := operationOf(item, m)
		if op == nil || !n.methodAllowed(m) || !n.tagsAllowed(op.Tags) {
			continue
		}
		out.Operations = append(out.Operations, n.operation(m, op, child(path, key)))
	}
	return out
}

func operationOf(item *openapi3.PathItem, m HttpMethod) *openapi3.Operation {
	switch m {
	case GET:
		return item.Get
	case PUT:
		return item.Put
	case POST:
		return item.Post
	case DELETE:
		return item.Delete
	case OPTIONS:
		return item.Options
	case HEAD:
		return item.Head
	case PATCH:
		return item.Patch
	case TRACE:
		return item.Trace
	}
	return nil
}

func (n *normalizer) operation(m HttpMethod, op *openapi3.Operation, path []string) Operation {
	out := Operation{
		Method:      m,
		OperationID: strings.TrimSpace(op.OperationID),
		Summary:     op.Summary,
		Description: op.Description,
	}
	for _, t := range op.Tags {
		if t = strings.TrimSpace(t); t != "" {
			out.Tags = append(out.Tags, t)
		}
	}
	for i, pref := range op.Parameters {
		if pm := n.parameter(pref, child(path, "parameters", strconv.Itoa(i))); pm != nil {
			out.Parameters = append(out.Parameters, *pm)
		}
	}
	if op.RequestBody != nil {
		out.RequestBody = n.requestBody(op.RequestBody, child(path, "requestBody"))
	}
	respPath := child(path, "responses")
	for _, code := range orderedKeys(op.Responses, n.order, respPath) {
		if r := n.response(code, op.Responses[code], child(respPath, code)); r != nil {
			out.Responses = append(out.Responses, *r)
		}
	}
	return out
}

func (n *normalizer) parameter(pref *openapi3.ParameterRef, path []string) *Parameter {
	if pref == nil || pref.Value == nil {
		return nil
	}
	if pref.Ref != "" {
		path = pointerPath(pref.Ref)
	}
	p := pref.Value
	return &Parameter{
		Name:        strings.TrimSpace(p.Name),
		In:          strings.TrimSpace(p.In),
		Required:    p.Required,
		Description: p.Description,
		Schema:      n.schema(p.Schema, child(path, "schema")),
	}
}

func (n *normalizer) requestBody(ref *openapi3.RequestBodyRef, path []string) *RequestBody {
	if ref == nil || ref.Value == nil {
		return nil
	}
	if ref.Ref != "" {
		path = pointerPath(ref.Ref)
	}
	return &RequestBody{
		Required: ref.Value.Required,
		Content:  n.content(ref.Value.Content, child(path, "content")),
	}
}

func (n *normalizer) response(code string, ref *openapi3.ResponseRef, path []string) *Response {
	if ref == nil || ref.Value == nil {
		return nil
	}
	if ref.Ref != "" {
		path = pointerPath(ref.Ref)
	}
	out := &Response{Status: code}
	if ref.Value.Description != nil {
		out.Description = *ref.Value.Description
	}
	out.Content = n.content(ref.Value.Content, child(path, "content"))
	return out
}

func (n *normalizer) content(content openapi3.Content, path []string) []Media {
	if len(content) == 0 {
		return nil
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Media, 0, len(keys))
	for _, mime := range keys {
		mt := content[mime]
		if mt == nil {
			continue
		}
		out = append(out, Media{Mime: mime, Schema: n.schema(mt.Schema, child(path, mime, "schema"))})
	}
	return out
}

// schema converts a kin schema tree. Referenced schemas are not followed:
// they become Ref nodes, which keeps the conversion finite for cyclic graphs.
func (n *normalizer) schema(ref *openapi3.SchemaRef, path []string) *Schema {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		return NewRef(ref.Ref)
	}
	v := ref.Value
	if v == nil {
		return &Schema{Kind: KindAny}
	}
	s := &Schema{
		Type:        strings.TrimSpace(v.Type),
		Title:       v.Title,
		Description: v.Description,
		Format:      strings.TrimSpace(v.Format),
		Pattern:     v.Pattern,
		Nullable:    v.Nullable,
		Minimum:     v.Min,
		Maximum:     v.Max,
		MinLength:   v.MinLength,
		MaxLength:   v.MaxLength,
		Required:    append([]string(nil), v.Required...),
	}
	if len(v.Enum) > 0 {
		s.Enum = append([]any(nil), v.Enum...)
	}
	if v.Items != nil {
		s.Items = n.schema(v.Items, child(path, "items"))
	}
	propPath := child(path, "properties")
	for _, name := range orderedKeys(v.Properties, n.order, propPath) {
		s.Properties = append(s.Properties, Property{
			Name:   name,
			Schema: n.schema(v.Properties[name], child(propPath, name)),
		})
	}
	switch {
	case v.AdditionalProperties.Schema != nil:
		s.AdditionalProperties = &AdditionalProperties{
			Schema: n.schema(v.AdditionalProperties.Schema, child(path, "additionalProperties")),
		}
	case v.AdditionalProperties.Has != nil && *v.AdditionalProperties.Has:
		s.AdditionalProperties = &AdditionalProperties{}
	}
	s.OneOf = n.schemas(v.OneOf, child(path, "oneOf"))
	s.AnyOf = n.schemas(v.AnyOf, child(path, "anyOf"))
	s.AllOf = n.schemas(v.AllOf, child(path, "allOf"))
	s.Classify()
	return s
}

func (n *normalizer) schemas(refs openapi3.SchemaRefs, path []string) []*Schema {
	var out []*Schema
	for i, r := range refs {
		if r == nil {
			continue
		}
		out = append(out, n.schema(r, child(path, strconv.Itoa(i))))
	}
	return out
}

func (n *normalizer) pathAllowed(p string) bool {
	if len(n.cfg.pathRes) == 0 {
		return true
	}
	for _, re := range n.cfg.pathRes {
		if re.MatchString(p) {
			return true
		}
	}
	return false
}

func (n *normalizer) methodAllowed(m HttpMethod) bool {
	if len(n.cfg.methods) == 0 {
		return true
	}
	_, ok := n.cfg.methods[m]
	return ok
}

func (n *normalizer) tagsAllowed(tags []string) bool {
	if len(n.cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := n.cfg.includeTags[strings.TrimSpace(t)]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := n.cfg.excludeTags[strings.TrimSpace(t)]; blocked {
			return false
		}
	}
	return true
}

// pointerPath turns an internal "#/a/b" reference into index tokens. Other
// references have no known location.
func pointerPath(ref string) []string {
	if !strings.HasPrefix(ref, "#/") {
		return nil
	}
	ptr, err := jsonpointer.New(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return nil
	}
	return ptr.DecodedTokens()
}
