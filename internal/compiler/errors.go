package compiler

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrDocumentStructure indicates a reference or document shape the
	// compiler cannot follow.
	ErrDocumentStructure = errors.New("document structure error")

	// ErrUnsupportedMethod indicates a path item key that is not an HTTP verb.
	ErrUnsupportedMethod = errors.New("unsupported method")

	// ErrInvalidOperation indicates an operation that cannot become a method.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrFormatLookup indicates the format table is inconsistent.
	ErrFormatLookup = errors.New("format lookup error")
)

// DocumentStructureError is raised when a $ref cannot be followed.
type DocumentStructureError struct {
	Ref     string
	Message string
	// Unsupported is set for references outside the current document.
	Unsupported bool
}

func (e *DocumentStructureError) Error() string {
	msg := "document structure error"
	if e.Unsupported {
		msg = "unsupported reference"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *DocumentStructureError) Is(target error) bool {
	return target == ErrDocumentStructure
}

// UnsupportedMethodError names a path item key outside the supported verbs.
type UnsupportedMethodError struct {
	Path   string
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method %q on path %s", e.Method, e.Path)
}

func (e *UnsupportedMethodError) Is(target error) bool {
	return target == ErrUnsupportedMethod
}

// InvalidOperationError reports a missing, malformed or duplicate
// operationId, or a path template that cannot be bound.
type InvalidOperationError struct {
	Method      string
	Path        string
	OperationID string
	Message     string
}

func (e *InvalidOperationError) Error() string {
	msg := fmt.Sprintf("invalid operation %s %s", e.Method, e.Path)
	if e.OperationID != "" {
		msg += fmt.Sprintf(" (%s)", e.OperationID)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *InvalidOperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

// FormatLookupError is raised when a format is listed as supported but has
// no rule entry.
type FormatLookupError struct {
	Format string
}

func (e *FormatLookupError) Error() string {
	return fmt.Sprintf("format %q is listed as supported but has no rule", e.Format)
}

func (e *FormatLookupError) Is(target error) bool {
	return target == ErrFormatLookup
}
