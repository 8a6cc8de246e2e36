package compiler

import (
	"testing"

	"github.com/Konosh93/open-ts/internal/spec"
	"github.com/stretchr/testify/assert"
)

func TestCamelCase(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"find_pet-by id":  "findPetById",
		"getHTTPResponse": "getHttpResponse",
		"ListPets":        "listPets",
		"pet2owner":       "pet2Owner",
		"don't stop":      "dontStop",
		"__get__":         "get",
		"":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, camelCase(in), in)
	}
}

func TestCapitalize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "GetPet", capitalize("getPet"))
	assert.Equal(t, "Élan", capitalize("élan"))
	assert.Equal(t, "", capitalize(""))
}

func TestNameTable_Claim(t *testing.T) {
	t.Parallel()
	table := newNameTable()
	assert.Equal(t, "Pet", table.claim("Pet"))
	assert.Equal(t, "Pet1", table.claim("Pet"))
	assert.Equal(t, "Pet2", table.claim("Pet"))
	assert.True(t, table.taken("Pet1"))
	assert.False(t, table.taken("Pet3"))
}

func TestTypeName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Pet", typeName("Pet"))
	assert.Equal(t, "pet_v2", typeName("pet.v2"))
	assert.Equal(t, "_1Pet", typeName("1Pet"))
	assert.Equal(t, "_class", typeName("class"))
}

func TestArgumentNames(t *testing.T) {
	t.Parallel()
	params := []spec.Parameter{
		{Name: "pet.id", In: "path"},
		{Name: "id", In: "path"},
		{Name: "body", In: "path"},
		{Name: "owner_name", In: "path"},
	}
	got := argumentNames(params)
	assert.Equal(t, map[string]string{
		"id":         "id",
		"body":       "body1",
		"pet.id":     "id1",
		"owner_name": "ownerName",
	}, got)
}

func TestMergeParameters_OperationOverrides(t *testing.T) {
	t.Parallel()
	pathLevel := []spec.Parameter{{Name: "id", In: "path", Description: "outer"}, {Name: "q", In: "query"}}
	opLevel := []spec.Parameter{{Name: "limit", In: "query"}, {Name: "id", In: "path", Description: "inner"}}
	got := mergeParameters(pathLevel, opLevel)
	assert.Equal(t, []spec.Parameter{
		{Name: "id", In: "path", Description: "inner"},
		{Name: "q", In: "query"},
		{Name: "limit", In: "query"},
	}, got)
}

func TestOkResponse(t *testing.T) {
	t.Parallel()
	only := []spec.Response{{Status: "default"}}
	assert.Equal(t, "default", okResponse(only).Status)

	mixed := []spec.Response{{Status: "404"}, {Status: "default"}, {Status: "2XX"}, {Status: "201"}}
	assert.Equal(t, "2XX", okResponse(mixed).Status)

	assert.Nil(t, okResponse([]spec.Response{{Status: "500"}, {Status: "default"}}))
	assert.Nil(t, okResponse(nil))
}

func TestRegexLiteral(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `/^a\/b$/`, regexLiteral("^a/b$"))
	assert.Equal(t, `/^a\/b$/`, regexLiteral(`^a\/b$`))
	assert.Equal(t, `/\d+/`, regexLiteral(`\d+`))
}

func TestAccessor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "o.count", accessor("o", "count"))
	assert.Equal(t, `o["x-count"]`, accessor("o", "x-count"))
	assert.Equal(t, "o.default", accessor("o", "default"))
}
