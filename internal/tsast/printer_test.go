package tsast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintType(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		typ  Type
		want string
	}{
		{"keyword", String, "string"},
		{"nil is any", nil, "any"},
		{"generic ref", Ref{Name: "Promise", Args: []Type{Any}}, "Promise<any>"},
		{"flattened union", Union{String, Union{Number, Null}}, "string | number | null"},
		{"array of union", Array{Elem: Union{String, Number}}, "(string | number)[]"},
		{"intersection of union", Intersection{Ref{Name: "A"}, Union{Ref{Name: "B"}, Null}}, "A & (B | null)"},
		{"empty literal", Literal{}, "{}"},
		{"single member union collapses", NewUnion(Boolean), "boolean"},
		{"function in union", Union{Func{Result: Void}, Null}, "(() => void) | null"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, c.want, PrintType(c.typ))
		})
	}
}

func TestPrintType_LiteralIsMultiline(t *testing.T) {
	t.Parallel()
	lit := Literal{Members: []Member{
		PropertySignature{Name: "id", Type: Number},
		PropertySignature{Name: "x-tag", Optional: true, Type: Array{Elem: String}},
		IndexSignature{Key: "key", KeyType: String, Type: Any},
	}}
	want := "{\n    id: number;\n    \"x-tag\"?: string[];\n    [key: string]: any;\n}"
	assert.Equal(t, want, PrintType(lit))
}

func TestPrint_File(t *testing.T) {
	t.Parallel()
	file := &File{Decls: []Decl{
		Import{Names: []string{"IsInt", "IsOptional"}, From: "class-validator"},
		Comment("/*\n * generated\n*/"),
		TypeAlias{Name: "OperationWithoutBody", Type: Func{
			Params: []Param{{Name: "path", Type: String}, {Name: "query", Type: Literal{Members: []Member{IndexSignature{Key: "key", KeyType: String, Type: Any}}}}},
			Result: Ref{Name: "Promise", Args: []Type{Any}},
		}},
		TypeAlias{Export: true, Name: "Pet", Type: Literal{Members: []Member{
			PropertySignature{Name: "age", Optional: true, Type: Union{Number, Null}},
		}}},
		Enum{Export: true, Name: "StatusEnum", Members: []EnumMember{
			{Name: "_available", Value: Str("available")},
			{Name: "_-1", Value: Num(-1)},
		}},
		Class{Export: true, Name: "PetValidator", Members: []ClassMember{
			Property{
				Doc:        "age",
				Decorators: []Decorator{{Name: "IsOptional"}, {Name: "Min", Args: []Expr{Num(18)}}},
				Name:       "age",
				Type:       Number,
			},
		}},
		Class{Export: true, Default: true, Name: "APIAgent", Members: []ClassMember{
			Property{Name: "httpClient", Type: Ref{Name: "HTTPClient"}},
			Constructor{
				Params: []Param{{Name: "httpClient", Type: Ref{Name: "HTTPClient"}}},
				Body:   []Stmt{ExprStmt{X: Assign{Left: Prop{X: This{}, Name: "httpClient"}, Right: Ident("httpClient")}}},
			},
			Method{
				Doc:    "Find a pet\n",
				Async:  true,
				Name:   "findPetById",
				Params: []Param{{Name: "id", Type: Number}},
				Body: []Stmt{Return{X: As{
					X: Await{X: Call{
						Callee: Prop{X: Prop{X: This{}, Name: "httpClient"}, Name: "get"},
						Args:   []Expr{Template{Head: "/pets/", Spans: []Span{{Expr: Ident("id")}}}, Empty{}},
					}},
					Type: Ref{Name: "FindPetByIdResponseBody"},
				}}},
			},
		}},
	}}

	want := `import { IsInt, IsOptional } from "class-validator";
/*
 * generated
*/
type OperationWithoutBody = (path: string, query: {
    [key: string]: any;
}) => Promise<any>;
export type Pet = {
    age?: number | null;
};
export enum StatusEnum {
    _available = "available",
    "_-1" = -1
}
export class PetValidator {
    /**
     * age
     */
    @IsOptional()
    @Min(18)
    age: number;
}
export default class APIAgent {
    httpClient: HTTPClient;
    constructor(httpClient: HTTPClient) {
        this.httpClient = httpClient;
    }
    /**
     * Find a pet
     *
     */
    async findPetById(id: number) {
        return await this.httpClient.get(` + "`/pets/${id}`" + `, {}) as FindPetByIdResponseBody;
    }
}
`
	require.Equal(t, want, Print(file))
}

func TestQuoteAndNumbers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `"a\"b"`, Quote(`a"b`))
	assert.Equal(t, `"<tag>"`, Quote("<tag>"))
	assert.Equal(t, "18", FormatNumber(18))
	assert.Equal(t, "-3", FormatNumber(-3))
	assert.Equal(t, "0.5", FormatNumber(0.5))
	assert.Equal(t, "1e-7", FormatNumber(1e-7))
}

func TestTemplateEscaping(t *testing.T) {
	t.Parallel()
	got := exprString(Template{Head: "/a`b", Spans: []Span{{Expr: Ident("x"), Tail: "/${raw}"}}}, 0)
	assert.Equal(t, "`/a\\`b${x}/\\${raw}`", got)
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()
	for _, ok := range []string{"pet", "_x", "$el", "petId2", "ümlaut"} {
		assert.True(t, IsIdentifier(ok), ok)
	}
	for _, bad := range []string{"", "2fa", "x-tag", "delete", "class", "a b"} {
		assert.False(t, IsIdentifier(bad), bad)
	}
	assert.Equal(t, `"x-tag"`, PropertyName("x-tag"))
}

func TestIsIdentifierName_AllowsReservedWords(t *testing.T) {
	t.Parallel()
	for _, ok := range []string{"delete", "default", "class", "pet"} {
		assert.True(t, IsIdentifierName(ok), ok)
		assert.Equal(t, ok, PropertyName(ok))
	}
	for _, bad := range []string{"", "2fa", "x-tag", "a b"} {
		assert.False(t, IsIdentifierName(bad), bad)
	}
	got := PrintType(Literal{Members: []Member{PropertySignature{Name: "default", Type: String}}})
	assert.Contains(t, got, "    default: string;")
}

func TestPrint_DocEscapesCommentClose(t *testing.T) {
	t.Parallel()
	got := Print(&File{Decls: []Decl{
		Class{Name: "Upload", Members: []ClassMember{
			Property{Doc: "Accepts */* payloads\nsee a/*/b", Name: "file", Type: String},
		}},
	}})
	assert.Contains(t, got, "     * Accepts *\\/* payloads\n")
	assert.Contains(t, got, "     * see a/*\\/b\n")
	assert.Equal(t, 1, strings.Count(got, "*/"), got)
}

func TestPrint_CommentWithPercent(t *testing.T) {
	t.Parallel()
	got := Print(&File{Decls: []Decl{Comment("// 100% generated")}})
	assert.Equal(t, "// 100% generated\n", got)
}
