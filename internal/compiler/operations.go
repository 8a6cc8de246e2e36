package compiler

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Konosh93/open-ts/internal/spec"
	"github.com/Konosh93/open-ts/internal/tsast"
	"go.uber.org/zap"
)

// contentPreference is the order in which a body schema is picked from a
// content map.
var contentPreference = []string{
	"*/*",
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// bodyVerbs take a body argument on the HTTP client.
var bodyVerbs = map[spec.HttpMethod]bool{spec.POST: true, spec.PUT: true, spec.PATCH: true}

func (c *compilation) compileOperations() error {
	for _, item := range c.doc.Paths {
		if len(item.Unsupported) > 0 {
			return &UnsupportedMethodError{Path: item.Path, Method: strings.ToUpper(item.Unsupported[0])}
		}
		for i := range item.Operations {
			if err := c.compileOperation(item, &item.Operations[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// operationIDPunct matches anything but word characters and whitespace.
var operationIDPunct = regexp.MustCompile(`[^\w\s]`)

func (c *compilation) compileOperation(item spec.PathItem, op *spec.Operation) error {
	invalid := func(msg string) error {
		return &InvalidOperationError{Method: strings.ToUpper(string(op.Method)), Path: item.Path, OperationID: op.OperationID, Message: msg}
	}
	if op.OperationID == "" {
		return invalid("operationId is missing")
	}
	if operationIDPunct.MatchString(op.OperationID) {
		return invalid("operationId may only contain letters, digits, underscores and spaces")
	}
	name := camelCase(op.OperationID)
	if !tsast.IsIdentifier(name) {
		return invalid("operationId does not form a valid identifier")
	}
	if _, dup := c.operations[name]; dup {
		return invalid("duplicate operationId")
	}
	c.operations[name] = struct{}{}
	title := capitalize(name)
	log := c.log.With(zap.String("operation", name))

	params := mergeParameters(item.Parameters, op.Parameters)
	var pathParams, queryParams []spec.Parameter
	for _, p := range params {
		switch p.In {
		case "path":
			pathParams = append(pathParams, p)
		case "query":
			queryParams = append(queryParams, p)
		}
	}
	args := argumentNames(pathParams)

	method := tsast.Method{Doc: op.Summary, Async: true, Name: name}
	if method.Doc == "" {
		method.Doc = op.Description
	}
	for _, p := range pathParams {
		t, err := c.typeOf(p.Schema)
		if err != nil {
			return err
		}
		method.Params = append(method.Params, tsast.Param{Name: args[p.Name], Type: t})
	}

	url, err := pathTemplate(item.Path, pathParams, args)
	if err != nil {
		return invalid(err.Error())
	}
	callArgs := []tsast.Expr{url}

	body := op.RequestBody
	if body != nil && !bodyVerbs[op.Method] {
		log.Warn("request body ignored: the HTTP client takes no body for this method", zap.String("method", string(op.Method)))
		body = nil
	}
	if body != nil {
		schema := schemaFromContent(body.Content)
		bodyType, err := c.typeAlias(schema, title+"RequestBody")
		if err != nil {
			return err
		}
		if _, err := c.validatorFor(schema, bodyType.Name); err != nil {
			return err
		}
		method.Params = append(method.Params, tsast.Param{Name: "body", Type: bodyType})
		callArgs = append(callArgs, tsast.Ident("body"))
	} else if bodyVerbs[op.Method] {
		callArgs = append(callArgs, tsast.Empty{})
	}

	if len(queryParams) > 0 {
		schema := queryObject(queryParams)
		queryType, err := c.typeAlias(schema, title+"Query")
		if err != nil {
			return err
		}
		if _, err := c.validatorFor(schema, queryType.Name); err != nil {
			return err
		}
		method.Params = append(method.Params, tsast.Param{Name: "query", Type: queryType})
		callArgs = append(callArgs, tsast.Ident("query"))
	} else {
		callArgs = append(callArgs, tsast.Empty{})
	}

	resultType, err := c.responseType(op.Responses, title+"ResponseBody")
	if err != nil {
		return err
	}
	var result tsast.Expr = tsast.Await{X: tsast.Call{
		Callee: tsast.Prop{X: tsast.Prop{X: tsast.This{}, Name: "httpClient"}, Name: string(op.Method)},
		Args:   callArgs,
	}}
	if kw, ok := resultType.(tsast.Keyword); !ok || kw != tsast.Void {
		result = tsast.As{X: result, Type: resultType}
	}
	method.Body = []tsast.Stmt{tsast.Return{X: result}}

	c.methods = append(c.methods, method)
	c.verbs[op.Method] = true
	c.summaries = append(c.summaries, OperationSummary{
		Name:     name,
		Method:   strings.ToUpper(string(op.Method)),
		Path:     item.Path,
		Response: tsast.PrintType(resultType),
	})
	log.Debug("compiled operation", zap.String("path", item.Path))
	return nil
}

// typeAlias declares name = typeOf(schema) and returns a reference to it.
func (c *compilation) typeAlias(schema *spec.Schema, name string) (tsast.Ref, error) {
	t, err := c.typeOf(schema)
	if err != nil {
		return tsast.Ref{}, err
	}
	name = c.names.claim(name)
	c.typeDecls = append(c.typeDecls, tsast.TypeAlias{Export: true, Name: name, Type: t})
	return tsast.Ref{Name: name}, nil
}

func (c *compilation) responseType(responses []spec.Response, name string) (tsast.Type, error) {
	res := okResponse(responses)
	if res == nil || len(res.Content) == 0 {
		return tsast.Void, nil
	}
	return c.typeAlias(schemaFromContent(res.Content), name)
}

// okResponse is the sole response, or else the first with a status below 400.
func okResponse(responses []spec.Response) *spec.Response {
	if len(responses) == 1 {
		return &responses[0]
	}
	for i := range responses {
		if code, ok := leadingInt(responses[i].Status); ok && code < 400 {
			return &responses[i]
		}
	}
	return nil
}

// leadingInt parses the leading decimal digits of s, so "2XX" reads as 2.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}

func schemaFromContent(content []spec.Media) *spec.Schema {
	for _, mime := range contentPreference {
		if s, ok := spec.MediaFor(content, mime); ok {
			if s != nil {
				return s
			}
			break
		}
	}
	return &spec.Schema{Kind: spec.KindPrimitive, Type: "string"}
}

// mergeParameters appends operation parameters to the path-level ones; an
// operation parameter replaces a path-level one with the same location and name.
func mergeParameters(pathLevel, opLevel []spec.Parameter) []spec.Parameter {
	key := func(p spec.Parameter) string { return p.In + ":" + p.Name }
	overrides := make(map[string]spec.Parameter, len(opLevel))
	for _, p := range opLevel {
		overrides[key(p)] = p
	}
	out := make([]spec.Parameter, 0, len(pathLevel)+len(opLevel))
	used := map[string]bool{}
	for _, p := range pathLevel {
		if o, ok := overrides[key(p)]; ok {
			p = o
			used[key(p)] = true
		}
		out = append(out, p)
	}
	for _, p := range opLevel {
		if !used[key(p)] {
			out = append(out, p)
		}
	}
	return out
}

// argumentNames assigns a method argument name to every path parameter.
// Names are the camel-cased parameter name with any dotted prefix removed,
// handed out shortest parameter name first so collisions number stably.
func argumentNames(params []spec.Parameter) map[string]string {
	sorted := append([]spec.Parameter(nil), params...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i].Name) < len(sorted[j].Name) })
	table := newNameTable()
	table.claim("body")
	table.claim("query")
	out := make(map[string]string, len(params))
	for _, p := range sorted {
		if _, done := out[p.Name]; done {
			continue
		}
		base := p.Name
		if i := strings.LastIndex(base, "."); i > 0 {
			base = base[i+1:]
		}
		base = camelCase(base)
		if !tsast.IsIdentifier(base) {
			base = "_" + base
		}
		out[p.Name] = table.claim(base)
	}
	return out
}

// pathTemplate rewrites "/pets/{id}" into a template literal. Placeholders
// bind to the path parameter of the same name, else to the path parameter at
// the same position.
func pathTemplate(path string, params []spec.Parameter, args map[string]string) (tsast.Expr, error) {
	var t tsast.Template
	rest := path
	open := strings.Index(rest, "{")
	if open < 0 {
		return tsast.Str(path), nil
	}
	t.Head, rest = rest[:open], rest[open:]
	for i := 0; rest != ""; i++ {
		end := strings.Index(rest, "}")
		if end < 2 {
			return nil, fmt.Errorf("malformed path template %q", path)
		}
		placeholder := rest[1:end]
		rest = rest[end+1:]
		tail := rest
		if next := strings.Index(rest, "{"); next >= 0 {
			tail, rest = rest[:next], rest[next:]
		} else {
			rest = ""
		}
		arg, ok := bindPlaceholder(placeholder, i, params, args)
		if !ok {
			return nil, fmt.Errorf("path placeholder {%s} has no matching path parameter", placeholder)
		}
		t.Spans = append(t.Spans, tsast.Span{Expr: tsast.Ident(arg), Tail: tail})
	}
	return t, nil
}

func bindPlaceholder(placeholder string, pos int, params []spec.Parameter, args map[string]string) (string, bool) {
	for _, p := range params {
		if p.Name == placeholder {
			return args[p.Name], true
		}
	}
	if pos < len(params) {
		return args[params[pos].Name], true
	}
	return "", false
}

// queryObject folds query parameters into one object schema. Each property
// carries its parameter's description.
func queryObject(params []spec.Parameter) *spec.Schema {
	obj := &spec.Schema{Type: "object"}
	for _, p := range params {
		prop := p.Schema.Clone()
		if prop == nil {
			prop = &spec.Schema{Kind: spec.KindAny}
		}
		prop.Description = p.Description
		obj.Properties = append(obj.Properties, spec.Property{Name: p.Name, Schema: prop})
		if p.Required {
			obj.Required = append(obj.Required, p.Name)
		}
	}
	obj.Classify()
	return obj
}
