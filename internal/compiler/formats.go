package compiler

import (
	"github.com/Konosh93/open-ts/internal/tsast"
)

// Library is the npm package a decorator is imported from.
type Library int

const (
	ClassValidator Library = iota
	ClassTransformer
)

func (l Library) Module() string {
	if l == ClassTransformer {
		return "class-transformer"
	}
	return "class-validator"
}

// Decorator is one validation or transformation decorator on a class property.
type Decorator struct {
	Name    string
	Args    []tsast.Expr
	Library Library
}

func (d Decorator) String() string {
	return tsast.DecoratorString(tsast.Decorator{Name: d.Name, Args: d.Args})
}

func validator(name string, args ...tsast.Expr) Decorator {
	return Decorator{Name: name, Args: args, Library: ClassValidator}
}

func transformer(name string, args ...tsast.Expr) Decorator {
	return Decorator{Name: name, Args: args, Library: ClassTransformer}
}

// FormatRule is what a string format contributes to a validator property.
type FormatRule struct {
	Decorator Decorator
	// Date marks formats whose values are carried as Date objects.
	Date bool
}

// FormatTable maps string formats to rules. Supported lists the formats that
// must have a rule; formats outside it are ignored.
type FormatTable struct {
	Supported []string
	Rules     map[string]FormatRule
}

// DefaultFormats returns the built-in table.
func DefaultFormats() *FormatTable {
	dateRule := FormatRule{Decorator: transformer("Type", tsast.Raw("() => Date")), Date: true}
	return &FormatTable{
		Supported: []string{"date", "date-time", "email", "int64"},
		Rules: map[string]FormatRule{
			"date":      dateRule,
			"date-time": dateRule,
			"email":     {Decorator: validator("IsEmail")},
			"int64":     {Decorator: validator("IsInt")},
		},
	}
}

func (t *FormatTable) supports(format string) bool {
	for _, f := range t.Supported {
		if f == format {
			return true
		}
	}
	return false
}

// Lookup returns the rule for format, nil for formats the table does not
// support, and a FormatLookupError when a supported format lacks a rule.
func (t *FormatTable) Lookup(format string) (*FormatRule, error) {
	if format == "" || !t.supports(format) {
		return nil, nil
	}
	r, ok := t.Rules[format]
	if !ok {
		return nil, &FormatLookupError{Format: format}
	}
	return &r, nil
}

// IsDate reports whether values of format are dates.
func (t *FormatTable) IsDate(format string) bool {
	r, err := t.Lookup(format)
	return err == nil && r != nil && r.Date
}
