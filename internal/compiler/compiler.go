// Package compiler turns a normalized OpenAPI document into a single
// TypeScript module: type aliases, enums, class-validator classes and a
// default-exported client class with one async method per operation.
//
// A compilation is single-threaded and owns all of its tables; nothing is
// shared between calls to Compile.
package compiler

import (
	"github.com/Konosh93/open-ts/internal/spec"
	"github.com/Konosh93/open-ts/internal/tsast"
	"go.uber.org/zap"
)

// DefaultClientName is the name of the generated agent class.
const DefaultClientName = "APIAgent"

type Options struct {
	// ClientName overrides DefaultClientName.
	ClientName string
	// Formats overrides DefaultFormats.
	Formats *FormatTable
	Logger  *zap.Logger
}

// Result is the outcome of a successful compilation.
type Result struct {
	Source     string
	Operations []OperationSummary
}

// OperationSummary describes one generated client method.
type OperationSummary struct {
	Name     string
	Method   string
	Path     string
	Response string
}

// Compile compiles doc. Any error is fatal and no partial source is returned.
func Compile(doc *spec.Document, opts Options) (*Result, error) {
	c := newCompilation(doc, opts)
	if err := c.compileOperations(); err != nil {
		return nil, err
	}
	return &Result{
		Source:     tsast.Print(c.assemble()),
		Operations: c.summaries,
	}, nil
}

// compilation is the context threaded through every component. It owns the
// memo tables for refs, the name tables and the emitted declarations.
type compilation struct {
	doc        *spec.Document
	log        *zap.Logger
	formats    *FormatTable
	clientName string

	aliases    map[string]tsast.Type // by $ref
	enums      map[string]*EnumRef   // by $ref; nil value means no enum
	refClasses map[string]string     // by $ref
	classSeq   map[string]int        // by property name
	names      *nameTable            // type-space declarations
	operations map[string]struct{}

	validatorImports   *importSet
	transformerImports *importSet

	typeDecls  []tsast.TypeAlias
	enumDecls  []tsast.Enum
	classDecls []*ValidatorClass
	methods    []tsast.Method
	verbs      map[spec.HttpMethod]bool
	summaries  []OperationSummary
}

func newCompilation(doc *spec.Document, opts Options) *compilation {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	formats := opts.Formats
	if formats == nil {
		formats = DefaultFormats()
	}
	name := opts.ClientName
	if name == "" {
		name = DefaultClientName
	}
	if doc == nil {
		doc = &spec.Document{}
	}
	c := &compilation{
		doc:                doc,
		log:                log,
		formats:            formats,
		clientName:         name,
		aliases:            map[string]tsast.Type{},
		enums:              map[string]*EnumRef{},
		refClasses:         map[string]string{},
		classSeq:           map[string]int{},
		names:              newNameTable(),
		operations:         map[string]struct{}{},
		validatorImports:   &importSet{},
		transformerImports: &importSet{},
		verbs:              map[spec.HttpMethod]bool{},
	}
	for _, reserved := range preludeNames {
		c.names.claim(reserved)
	}
	c.names.claim(name)
	return c
}

// importSet keeps decorator names in first-use order.
type importSet struct {
	order []string
	seen  map[string]struct{}
}

func (s *importSet) add(name string) {
	if s.seen == nil {
		s.seen = map[string]struct{}{}
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.order = append(s.order, name)
}

func (s *importSet) names() []string { return s.order }

// use records the import a decorator needs.
func (c *compilation) use(d Decorator) {
	switch d.Library {
	case ClassTransformer:
		c.transformerImports.add(d.Name)
	default:
		c.validatorImports.add(d.Name)
	}
}
