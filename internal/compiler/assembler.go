package compiler

import (
	"github.com/Konosh93/open-ts/internal/spec"
	"github.com/Konosh93/open-ts/internal/tsast"
)

const generatedHeader = "/*\n * This file is auto-generated. Do NOT modify this file manually.\n*/"

// preludeNames are declared by the prelude or used from the TypeScript
// standard library; generated declarations never take them.
var preludeNames = []string{"OperationWithoutBody", "OperationWithBody", "HTTPClient", "Date", "Promise"}

var (
	operationWithoutBody = tsast.Ref{Name: "OperationWithoutBody"}
	operationWithBody    = tsast.Ref{Name: "OperationWithBody"}
	httpClient           = tsast.Ref{Name: "HTTPClient"}
	queryMap             = tsast.Literal{Members: []tsast.Member{tsast.IndexSignature{Key: "key", KeyType: tsast.String, Type: tsast.Any}}}
)

// assemble lays the module out in its fixed order: imports, prelude, type
// aliases, enums, validator classes, agent class.
func (c *compilation) assemble() *tsast.File {
	f := &tsast.File{}
	if names := c.validatorImports.names(); len(names) > 0 {
		f.Decls = append(f.Decls, tsast.Import{Names: names, From: ClassValidator.Module()})
	}
	if names := c.transformerImports.names(); len(names) > 0 {
		f.Decls = append(f.Decls, tsast.Import{Names: names, From: ClassTransformer.Module()})
	}
	f.Decls = append(f.Decls, c.prelude()...)
	for _, d := range c.typeDecls {
		f.Decls = append(f.Decls, d)
	}
	for _, d := range c.enumDecls {
		f.Decls = append(f.Decls, d)
	}
	for _, vc := range c.classDecls {
		f.Decls = append(f.Decls, vc.declaration())
	}
	f.Decls = append(f.Decls, c.agent())
	return f
}

func (c *compilation) prelude() []tsast.Decl {
	promise := tsast.Ref{Name: "Promise", Args: []tsast.Type{tsast.Any}}
	client := tsast.Interface{Export: true, Name: httpClient.Name, Members: []tsast.Member{
		tsast.PropertySignature{Name: "get", Type: operationWithoutBody},
		tsast.PropertySignature{Name: "post", Type: operationWithBody},
		tsast.PropertySignature{Name: "put", Type: operationWithBody},
		tsast.PropertySignature{Name: "delete", Type: operationWithoutBody},
		tsast.PropertySignature{Name: "patch", Type: operationWithBody},
	}}
	for _, m := range spec.Methods {
		switch m {
		case spec.OPTIONS, spec.HEAD, spec.TRACE:
			if c.verbs[m] {
				client.Members = append(client.Members, tsast.PropertySignature{Name: string(m), Type: operationWithoutBody})
			}
		}
	}
	client.Members = append(client.Members, tsast.PropertySignature{
		Name: "setHeaders",
		Type: tsast.Func{
			Params: []tsast.Param{{Name: "headers", Type: tsast.Literal{Members: []tsast.Member{
				tsast.IndexSignature{Key: "key", KeyType: tsast.String, Type: tsast.String},
			}}}},
			Result: tsast.Void,
		},
	})

	return []tsast.Decl{
		tsast.Comment(generatedHeader),
		tsast.TypeAlias{Name: operationWithoutBody.Name, Type: tsast.Func{
			Params: []tsast.Param{{Name: "path", Type: tsast.String}, {Name: "query", Type: queryMap}},
			Result: promise,
		}},
		tsast.TypeAlias{Name: operationWithBody.Name, Type: tsast.Func{
			Params: []tsast.Param{{Name: "path", Type: tsast.String}, {Name: "body", Type: tsast.Any}, {Name: "query", Type: queryMap}},
			Result: promise,
		}},
		client,
	}
}

func (vc *ValidatorClass) declaration() tsast.Class {
	cls := tsast.Class{Export: true, Name: vc.Name}
	for _, r := range vc.Rules {
		prop := tsast.Property{Doc: r.Doc, Name: r.Name, Type: r.Type}
		for _, d := range r.Decorators {
			prop.Decorators = append(prop.Decorators, tsast.Decorator{Name: d.Name, Args: d.Args})
		}
		cls.Members = append(cls.Members, prop)
	}
	return cls
}

func (c *compilation) agent() tsast.Class {
	cls := tsast.Class{Export: true, Default: true, Name: c.clientName, Members: []tsast.ClassMember{
		tsast.Property{Name: "httpClient", Type: httpClient},
		tsast.Constructor{
			Params: []tsast.Param{{Name: "httpClient", Type: httpClient}},
			Body: []tsast.Stmt{tsast.ExprStmt{X: tsast.Assign{
				Left:  tsast.Prop{X: tsast.This{}, Name: "httpClient"},
				Right: tsast.Ident("httpClient"),
			}}},
		},
	}}
	for _, m := range c.methods {
		cls.Members = append(cls.Members, m)
	}
	return cls
}
