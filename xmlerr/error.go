// Package xmlerr defines the closed set of error kinds shared by the
// decode and encode drivers.
package xmlerr

import "fmt"

// Kind is a closed set of failure categories. Every error the drivers
// return carries exactly one of these.
type Kind int

const (
	// ExpectedElement means a structural mismatch: a required element was
	// absent, or an end tag did not match its opening tag.
	ExpectedElement Kind = iota
	// ExpectedString means character data was required but not found.
	ExpectedString
	// ExpectedBool means the text content was not one of the recognized
	// truthy/falsy tokens.
	ExpectedBool
	// ExpectedInt means the text content did not parse as the target
	// integer width.
	ExpectedInt
	// ExpectedFloat means the text content did not parse as a float.
	// Unlike the Rust original this is never aliased to ExpectedInt.
	ExpectedFloat
	// ExpectedChar means the text content was not exactly one Unicode
	// scalar value.
	ExpectedChar
	// Unsupported marks an operation the engine cannot express in XML.
	Unsupported
	// ParserError wraps a failure from the underlying XML tokenizer.
	ParserError
	// EmitterError wraps a failure from the underlying XML writer.
	EmitterError
	// Custom carries a caller-supplied message with no more specific kind.
	Custom
)

func (k Kind) String() string {
	switch k {
	case ExpectedElement:
		return "ExpectedElement"
	case ExpectedString:
		return "ExpectedString"
	case ExpectedBool:
		return "ExpectedBool"
	case ExpectedInt:
		return "ExpectedInt"
	case ExpectedFloat:
		return "ExpectedFloat"
	case ExpectedChar:
		return "ExpectedChar"
	case Unsupported:
		return "Unsupported"
	case ParserError:
		return "ParserError"
	case EmitterError:
		return "EmitterError"
	case Custom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by this module. It mirrors the
// teacher's SyntaxError{Msg, Line, Err} shape, generalized with a Kind.
type Error struct {
	Kind Kind
	Msg  string
	Line int   // 0 if unknown
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("xmlserde: %s at line %d: %s", e.Kind, e.Line, e.Msg)
	}
	if e.Msg != "" {
		return fmt.Sprintf("xmlserde: %s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("xmlserde: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap wraps an externally-originated error (from the parser or emitter)
// exactly once, tagging it with kind.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	if existing, ok := err.(*Error); ok {
		return existing
	}
	return &Error{Kind: kind, Msg: err.Error(), Err: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
