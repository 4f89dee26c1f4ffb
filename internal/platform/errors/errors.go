// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
)

// ErrorCode defines supported error codes used across the engine
// Values are stable for wire compatibility; add sparingly
type ErrorCode uint16

const (
	// CodeUnknown is for unclassified errors
	CodeUnknown ErrorCode = iota

	// CodePanic is for recovered panics
	CodePanic

	// CodeInvalidArgument is for bad call parameters (flags, API arguments)
	CodeInvalidArgument

	// CodeValidation is for option and rules-file validation failures
	CodeValidation

	// CodeInvalidInput is for input that is not a row stream at all
	// (undecodable file, wrong top-level JSON shape, foreign SQLite schema)
	CodeInvalidInput

	// CodeMalformedRow is for a single rejected row; runs recover from it
	// and tally the row as degraded
	CodeMalformedRow

	// CodeNotFound is for missing files and resources
	CodeNotFound

	// CodeJSON is for JSON parsing errors
	CodeJSON

	// CodeSnapshot is for browser snapshot read failures
	CodeSnapshot

	// CodeRules is for unusable rules content
	CodeRules
)

// Process exit codes, sysexits-style
const (
	ExitOK      = 0
	ExitError   = 1
	ExitUsage   = 2
	ExitData    = 65
	ExitNoInput = 66
	ExitIO      = 74
)

// ExitCodeFor turns an ErrorCode into a process exit code
func ExitCodeFor(c ErrorCode) int {
	switch c {
	case CodeInvalidArgument, CodeValidation:
		return ExitUsage
	case CodeInvalidInput, CodeMalformedRow, CodeJSON, CodeRules:
		return ExitData
	case CodeNotFound:
		return ExitNoInput
	case CodeSnapshot:
		return ExitIO
	case CodeUnknown, CodePanic:
		return ExitError
	default:
		return ExitError
	}
}

// ErrNotFound is a sentinel not found error for convenience
var ErrNotFound = New(CodeNotFound, "not found")

// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; code is machine facing
// field is optional (for validation); op is optional operation tag
// orig is the wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Wire is the JSON-serializable form emitted on stderr by the CLIs
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// ToWire converts an *Error to a Wire payload
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// WireFrom converts any error into a Wire payload with best-effort mapping
// If err is nil, returns the zero-value Wire (no error)
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: CodeUnknown, Message: err.Error()}
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return CodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// ExitCode returns the mapped process exit code for any error; nil maps to 0
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return ExitCodeFor(CodeOf(err))
}

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Mutators (copy-on-write)

// WithCode re-codes an *Error (copy-on-write). If err isn't *Error, wraps it
func WithCode(err error, code ErrorCode) error {
	if e, ok := As(err); ok {
		c := *e
		c.code = code
		return &c
	}
	return &Error{code: code, msg: err.Error(), orig: err}
}

// WithField attaches a field to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// WithFieldChain sets field on *Error or wraps a foreign error into an *Error with Unknown code (copy-on-write)
func WithFieldChain(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return &Error{code: CodeUnknown, msg: err.Error(), field: field, orig: err}
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// WrapIf wraps only when err != nil (helper for 1-liners)
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

// Sugar

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(CodeNotFound, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(CodeInvalidArgument, format, a...) }

// Validationf returns a validation error
func Validationf(format string, a ...any) error { return Newf(CodeValidation, format, a...) }

// InvalidInputf returns an invalid input error
func InvalidInputf(format string, a ...any) error { return Newf(CodeInvalidInput, format, a...) }

// MalformedRowf returns a malformed row error
func MalformedRowf(format string, a ...any) error { return Newf(CodeMalformedRow, format, a...) }

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error { return Newf(CodeJSON, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(CodePanic, format, a...) }

// Snapshotf returns a snapshot read error
func Snapshotf(format string, a ...any) error { return Newf(CodeSnapshot, format, a...) }

// Rulesf returns a rules content error
func Rulesf(format string, a ...any) error { return Newf(CodeRules, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(CodeUnknown, format, a...) }
