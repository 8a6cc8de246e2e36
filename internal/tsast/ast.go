// Package tsast is a small TypeScript syntax tree covering what the client
// generator emits, together with a printer whose layout follows the
// TypeScript compiler's own printer (four-space indent, one member per line,
// no blank lines between statements).
package tsast

// Type is a TypeScript type node.
type Type interface{ isType() }

// Keyword is a built-in type such as any, string or null.
type Keyword string

const (
	Any     Keyword = "any"
	Unknown Keyword = "unknown"
	String  Keyword = "string"
	Number  Keyword = "number"
	Boolean Keyword = "boolean"
	Void    Keyword = "void"
	Null    Keyword = "null"
)

// Ref names a declared type, optionally with type arguments.
type Ref struct {
	Name string
	Args []Type
}

type Union []Type

type Intersection []Type

type Array struct{ Elem Type }

// Literal is an object type literal.
type Literal struct{ Members []Member }

// Func is a function type.
type Func struct {
	Params []Param
	Result Type
}

func (Keyword) isType()      {}
func (Ref) isType()          {}
func (Union) isType()        {}
func (Intersection) isType() {}
func (Array) isType()        {}
func (Literal) isType()      {}
func (Func) isType()         {}

// NewUnion builds a union, collapsing a single member to itself.
func NewUnion(members ...Type) Type {
	if len(members) == 1 {
		return members[0]
	}
	return Union(members)
}

// NewIntersection builds an intersection, collapsing a single member.
func NewIntersection(members ...Type) Type {
	if len(members) == 1 {
		return members[0]
	}
	return Intersection(members)
}

// Member is an element of a type literal or interface body.
type Member interface{ isMember() }

type PropertySignature struct {
	Name     string
	Optional bool
	Type     Type
}

// IndexSignature prints as [Key: KeyType]: Type.
type IndexSignature struct {
	Key     string
	KeyType Type
	Type    Type
}

func (PropertySignature) isMember() {}
func (IndexSignature) isMember()    {}

type Param struct {
	Name     string
	Optional bool
	Type     Type
}

// Expr is an expression node.
type Expr interface{ isExpr() }

type (
	Ident string
	// Str is a string literal.
	Str string
	// Num is a numeric literal.
	Num float64
	// Raw is emitted verbatim, for arrow functions and regex literals.
	Raw   string
	This  struct{}
	Empty struct{} // {}
)

// Template is a template literal: Head, then each span's expression and tail.
type Template struct {
	Head  string
	Spans []Span
}

type Span struct {
	Expr Expr
	Tail string
}

type Call struct {
	Callee Expr
	Args   []Expr
}

// Prop is a property access X.Name.
type Prop struct {
	X    Expr
	Name string
}

type Await struct{ X Expr }

type As struct {
	X    Expr
	Type Type
}

type Assign struct{ Left, Right Expr }

func (Ident) isExpr()    {}
func (Str) isExpr()      {}
func (Num) isExpr()      {}
func (Raw) isExpr()      {}
func (This) isExpr()     {}
func (Empty) isExpr()    {}
func (Template) isExpr() {}
func (Call) isExpr()     {}
func (Prop) isExpr()     {}
func (Await) isExpr()    {}
func (As) isExpr()       {}
func (Assign) isExpr()   {}

// Stmt is a statement inside a function body.
type Stmt interface{ isStmt() }

type Return struct{ X Expr }
type ExprStmt struct{ X Expr }

func (Return) isStmt()   {}
func (ExprStmt) isStmt() {}

// Decl is a top-level statement.
type Decl interface{ isDecl() }

type Import struct {
	Names []string
	From  string
}

// Comment is a block comment printed as-is, delimiters included.
type Comment string

type TypeAlias struct {
	Export bool
	Name   string
	Type   Type
}

type Enum struct {
	Export  bool
	Name    string
	Members []EnumMember
}

type EnumMember struct {
	Name  string
	Value Expr
}

type Interface struct {
	Export  bool
	Name    string
	Members []Member
}

type Class struct {
	Export  bool
	Default bool
	Name    string
	Members []ClassMember
}

func (Import) isDecl()    {}
func (Comment) isDecl()   {}
func (TypeAlias) isDecl() {}
func (Enum) isDecl()      {}
func (Interface) isDecl() {}
func (Class) isDecl()     {}

// ClassMember is a property, constructor or method of a class.
type ClassMember interface{ isClassMember() }

type Decorator struct {
	Name string
	Args []Expr
}

type Property struct {
	Doc        string
	Decorators []Decorator
	Name       string
	Optional   bool
	Type       Type
}

type Constructor struct {
	Params []Param
	Body   []Stmt
}

type Method struct {
	Doc    string
	Async  bool
	Name   string
	Params []Param
	Body   []Stmt
}

func (Property) isClassMember()    {}
func (Constructor) isClassMember() {}
func (Method) isClassMember()      {}

// File is one compilation unit.
type File struct {
	Decls []Decl
}
