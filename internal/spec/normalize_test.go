package spec

import (
	"context"
	"strings"
	"testing"
)

const sampleSpec = `openapi: 3.0.0
info:
  title: Sample API
  version: "1.0.0"
paths:
  /pets:
    parameters:
      - in: query
        name: limit
        schema:
          type: integer
    post:
      operationId: createPet
      tags: [write, animal]
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        "201":
          description: created
    get:
      operationId: findPets
      summary: List pets
      tags: [read, animal]
      parameters:
        - in: query
          name: limit
          required: true
          description: max items
          schema:
            type: integer
      responses:
        default:
          description: error
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
  /admin:
    get:
      operationId: admin
      tags: [admin]
      responses:
        "200": { description: ok }
components:
  schemas:
    Pet:
      type: object
      required: [name, id]
      properties:
        name:
          type: string
          nullable: true
        id:
          type: integer
          format: int64
        tags:
          type: array
          items:
            type: string
        meta:
          type: object
          additionalProperties: true
        kind:
          oneOf:
            - type: string
            - type: integer
`

func normalizeSample(t *testing.T, opts ...BuildOption) *Document {
	t.Helper()
	src, err := LoadData(context.Background(), []byte(sampleSpec))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc, err := Normalize(src.Doc, src.Order, opts...)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return doc
}

func TestNormalize_PathsAndVerbsInSourceOrder(t *testing.T) {
	t.Parallel()
	doc := normalizeSample(t)
	if len(doc.Paths) != 2 || doc.Paths[0].Path != "/pets" || doc.Paths[1].Path != "/admin" {
		t.Fatalf("unexpected paths: %+v", doc.Paths)
	}
	ops := doc.Paths[0].Operations
	if len(ops) != 2 || ops[0].Method != POST || ops[1].Method != GET {
		t.Fatalf("expected post then get, got %+v", ops)
	}
	if len(doc.Paths[0].Parameters) != 1 || doc.Paths[0].Parameters[0].Name != "limit" {
		t.Fatalf("expected path-level parameter kept separately")
	}
	get := ops[1]
	if get.Parameters[0].Description != "max items" || !get.Parameters[0].Required {
		t.Fatalf("operation parameter lost details: %+v", get.Parameters[0])
	}
	if len(get.Responses) != 2 || get.Responses[0].Status != "default" || get.Responses[1].Status != "200" {
		t.Fatalf("expected responses in source order, got %+v", get.Responses)
	}
}

func TestNormalize_SchemaKindsAndPropertyOrder(t *testing.T) {
	t.Parallel()
	doc := normalizeSample(t)
	pet := doc.Components.Schemas["Pet"]
	if pet == nil || pet.Kind != KindObject {
		t.Fatalf("expected object Pet, got %+v", pet)
	}
	if got := strings.Join(pet.PropertyNames(), ","); got != "name,id,tags,meta,kind" {
		t.Fatalf("property order = %q", got)
	}
	want := map[string]Kind{
		"name": KindPrimitive,
		"id":   KindPrimitive,
		"tags": KindArray,
		"meta": KindObject,
		"kind": KindOneOf,
	}
	for name, kind := range want {
		s, ok := pet.Property(name)
		if !ok || s.Kind != kind {
			t.Fatalf("%s: expected %v, got %+v", name, kind, s)
		}
	}
	name, _ := pet.Property("name")
	if !name.Nullable {
		t.Fatalf("expected nullable name")
	}
	meta, _ := pet.Property("meta")
	if meta.AdditionalProperties == nil || meta.AdditionalProperties.Schema != nil {
		t.Fatalf("expected additionalProperties: true, got %+v", meta.AdditionalProperties)
	}
	if !pet.IsRequired("id") || pet.IsRequired("tags") {
		t.Fatalf("required flags wrong: %v", pet.Required)
	}
}

func TestNormalize_RefsStayUnresolved(t *testing.T) {
	t.Parallel()
	doc := normalizeSample(t)
	post := doc.Paths[0].Operations[0]
	schema, ok := MediaFor(post.RequestBody.Content, "application/json")
	if !ok || schema.Kind != KindRef || schema.Ref != "#/components/schemas/Pet" {
		t.Fatalf("expected ref node, got %+v", schema)
	}
	get := doc.Paths[0].Operations[1]
	list, _ := MediaFor(get.Responses[1].Content, "application/json")
	if list.Kind != KindArray || list.Items.Kind != KindRef {
		t.Fatalf("expected array of refs, got %+v", list)
	}
}

func TestNormalize_TagFilters(t *testing.T) {
	t.Parallel()
	doc := normalizeSample(t, WithIncludeTags([]string{"animal"}), WithExcludeTags([]string{"write"}))
	var ids []string
	for _, p := range doc.Paths {
		for _, op := range p.Operations {
			ids = append(ids, op.OperationID)
		}
	}
	if strings.Join(ids, ",") != "findPets" {
		t.Fatalf("unexpected operations: %v", ids)
	}
}

func TestNormalize_MethodAndPathFilters(t *testing.T) {
	t.Parallel()
	doc := normalizeSample(t, WithMethods([]HttpMethod{GET}), WithPathPatterns([]string{"^/admin$"}))
	if len(doc.Paths) != 1 || doc.Paths[0].Path != "/admin" || len(doc.Paths[0].Operations) != 1 {
		t.Fatalf("unexpected result: %+v", doc.Paths)
	}
}

func TestNormalize_WithoutOrderFallsBackToSorted(t *testing.T) {
	t.Parallel()
	src, err := LoadData(context.Background(), []byte(sampleSpec))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc, err := Normalize(src.Doc, nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if doc.Paths[0].Path != "/admin" {
		t.Fatalf("expected sorted paths, got %s first", doc.Paths[0].Path)
	}
	if got := strings.Join(doc.Components.Schemas["Pet"].PropertyNames(), ","); got != "id,kind,meta,name,tags" {
		t.Fatalf("expected sorted properties, got %q", got)
	}
	if ops := doc.Paths[1].Operations; ops[0].Method != GET || ops[1].Method != POST {
		t.Fatalf("expected canonical verb order without index")
	}
}

func TestOrderIndex_Remap(t *testing.T) {
	t.Parallel()
	idx := NewOrderIndex([]byte("definitions:\n  Pet:\n    properties:\n      b: {}\n      a: {}\n")).
		Remap([]string{"components", "schemas"}, []string{"definitions"})
	if got := strings.Join(idx.Keys("components", "schemas", "Pet", "properties"), ","); got != "b,a" {
		t.Fatalf("remapped keys = %q", got)
	}
	if NewOrderIndex([]byte("{not yaml")).Keys("paths") != nil {
		t.Fatalf("expected empty index for invalid input")
	}
}

func TestClassify_DispatchOrder(t *testing.T) {
	t.Parallel()
	cases := []struct {
		s    Schema
		want Kind
	}{
		{Schema{Ref: "#/x", Type: "string"}, KindRef},
		{Schema{OneOf: []*Schema{{}}, AnyOf: []*Schema{{}}}, KindOneOf},
		{Schema{AnyOf: []*Schema{{}}, Items: &Schema{}}, KindAnyOf},
		{Schema{AllOf: []*Schema{{}}, Type: "object"}, KindAllOf},
		{Schema{Items: &Schema{}, Type: "array"}, KindArray},
		{Schema{AdditionalProperties: &AdditionalProperties{}}, KindObject},
		{Schema{Type: "object"}, KindPrimitive},
		{Schema{}, KindAny},
	}
	for _, c := range cases {
		s := c.s
		s.Classify()
		if s.Kind != c.want {
			t.Fatalf("classify %+v: got %v want %v", c.s, s.Kind, c.want)
		}
	}
}
