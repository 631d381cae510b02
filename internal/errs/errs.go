// Package errs defines the tagged error codes that cross the public
// API boundary of the schema compiler, expression engine, and CAN
// codec. Callers compare against a named code with errors.Is and an
// *Error carrying that code, or type-assert to *Error and read .Code;
// the underlying cause, when there is one, is still reachable via
// errors.Unwrap.
package errs

import "fmt"

// Code is the tagged error-code enum. Zero is not a valid code; OK is
// represented by a nil error, matching normal Go convention rather
// than a literal zero value crossing the API.
type Code int

const (
	OOM Code = iota + 1
	PIDDoesNotExist
	InvalidParameter
	InvalidPath
	CannotOpenFile
	UnknownID
	InvalidDLC
	InvalidMode
	InvalidPID
	UnknownModePID
	UnknownUnit
	InvalidDataBytes
	ParseFail
)

var strerror = map[Code]string{
	OOM:               "out of memory",
	PIDDoesNotExist:   "pid does not exist",
	InvalidParameter:  "invalid parameter",
	InvalidPath:       "invalid path",
	CannotOpenFile:    "cannot open file",
	UnknownID:         "unknown CAN identifier",
	InvalidDLC:        "invalid dlc",
	InvalidMode:       "invalid mode",
	InvalidPID:        "invalid pid",
	UnknownModePID:    "unknown mode/pid",
	UnknownUnit:       "unknown unit",
	InvalidDataBytes:  "invalid data bytes",
	ParseFail:         "parse failure",
}

// String returns the fixed English phrase for the code (the
// strerror-like helper spec.md §6 asks for).
func (c Code) String() string {
	if s, ok := strerror[c]; ok {
		return s
	}
	return "unknown error code"
}

// Error is a Code paired with optional context and an optional
// wrapped cause.
type Error struct {
	Code  Code
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code.String(), e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an *Error carrying code with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error carrying code, a formatted message, and an
// underlying cause reachable via errors.Unwrap/errors.Is.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), cause: cause}
}

// Is reports whether target is an *Error with the same Code as e, so
// that errors.Is(err, &errs.Error{Code: code}) matches err or any
// *Error in its wrap chain carrying code (most callers instead do a
// type assertion to *Error and compare .Code directly).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}
