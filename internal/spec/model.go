package spec

// Normalized document model consumed by the compiler. Everything here is
// plain data: references are kept as Ref-only schema nodes and resolved lazily
// by the compiler against Document.Components.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	PUT     HttpMethod = "put"
	POST    HttpMethod = "post"
	DELETE  HttpMethod = "delete"
	OPTIONS HttpMethod = "options"
	HEAD    HttpMethod = "head"
	PATCH   HttpMethod = "patch"
	TRACE   HttpMethod = "trace"
)

// Methods lists the operation keys a path item may carry, in the order used
// when the source key order is unknown.
var Methods = []HttpMethod{GET, PUT, POST, DELETE, OPTIONS, HEAD, PATCH, TRACE}

// ParseMethod reports whether key names one of the supported operations.
func ParseMethod(key string) (HttpMethod, bool) {
	for _, m := range Methods {
		if string(m) == key {
			return m, true
		}
	}
	return "", false
}

type Document struct {
	Title      string
	Version    string
	Paths      []PathItem
	Components Components
}

type Components struct {
	Schemas       map[string]*Schema
	Parameters    map[string]*Parameter
	RequestBodies map[string]*RequestBody
	Responses     map[string]*Response
}

type PathItem struct {
	Path       string
	Parameters []Parameter
	Operations []Operation
	// Unsupported holds keys that look like operations but are not one of Methods.
	Unsupported []string
}

type Operation struct {
	Method      HttpMethod
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response
}

type Parameter struct {
	Name        string
	In          string // path|query|header|cookie
	Required    bool
	Description string
	Schema      *Schema
}

type RequestBody struct {
	Required bool
	Content  []Media
}

type Response struct {
	Status      string // 200, 2XX, default
	Description string
	Content     []Media
}

type Media struct {
	Mime   string
	Schema *Schema
}

// MediaFor returns the schema registered under mime, if any.
func MediaFor(content []Media, mime string) (*Schema, bool) {
	for _, m := range content {
		if m.Mime == mime {
			return m.Schema, true
		}
	}
	return nil, false
}

// Kind is the shape of a schema node, decided once in dispatch order:
// ref, oneOf, anyOf, allOf, items, properties/additionalProperties, type.
type Kind int

const (
	KindAny Kind = iota
	KindRef
	KindOneOf
	KindAnyOf
	KindAllOf
	KindArray
	KindObject
	KindPrimitive
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindRef:
		return "ref"
	case KindOneOf:
		return "oneOf"
	case KindAnyOf:
		return "anyOf"
	case KindAllOf:
		return "allOf"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindPrimitive:
		return "primitive"
	default:
		return "unknown"
	}
}

type Schema struct {
	Kind Kind
	Ref  string

	Type        string
	Title       string
	Description string
	Format      string
	Pattern     string
	Nullable    bool
	Enum        []any

	Minimum   *float64
	Maximum   *float64
	MinLength uint64
	MaxLength *uint64

	Items                *Schema
	Properties           []Property
	Required             []string
	AdditionalProperties *AdditionalProperties

	OneOf []*Schema
	AnyOf []*Schema
	AllOf []*Schema
}

// Property is a named object member; Schema.Properties keeps document order.
type Property struct {
	Name   string
	Schema *Schema
}

// AdditionalProperties is present only when extra keys are allowed. A nil
// Schema means any value.
type AdditionalProperties struct {
	Schema *Schema
}

// Property looks up a declared property by name.
func (s *Schema) Property(name string) (*Schema, bool) {
	if s == nil {
		return nil, false
	}
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// PropertyNames returns declared property names in order.
func (s *Schema) PropertyNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		names = append(names, p.Name)
	}
	return names
}

// Classify recomputes Kind from the populated fields.
func (s *Schema) Classify() {
	switch {
	case s.Ref != "":
		s.Kind = KindRef
	case len(s.OneOf) > 0:
		s.Kind = KindOneOf
	case len(s.AnyOf) > 0:
		s.Kind = KindAnyOf
	case len(s.AllOf) > 0:
		s.Kind = KindAllOf
	case s.Items != nil:
		s.Kind = KindArray
	case len(s.Properties) > 0 || s.AdditionalProperties != nil:
		s.Kind = KindObject
	case s.Type != "":
		s.Kind = KindPrimitive
	default:
		s.Kind = KindAny
	}
}

// Clone returns a shallow copy; child nodes are shared.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// NewRef builds a reference node.
func NewRef(ref string) *Schema {
	return &Schema{Kind: KindRef, Ref: ref}
}
