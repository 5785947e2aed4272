package hdt

import "fmt"

// Kind classifies why an operation failed, per spec.md §7. It is a
// closed sum type: every exported function that can fail returns an
// *Error carrying one of these.
type Kind int

const (
	_ Kind = iota
	IOError
	ParseError
	FormatError
	InvalidState
	NotFound
	NotImplemented
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case IOError:
		return "IOError"
	case ParseError:
		return "ParseError"
	case FormatError:
		return "FormatError"
	case InvalidState:
		return "InvalidState"
	case NotFound:
		return "NotFound"
	case NotImplemented:
		return "NotImplemented"
	case Cancelled:
		return "Cancelled"
	default:
		return "unknown"
	}
}

// Error is the error type every exported function in this package
// returns on failure. Line is a 1-based input line number, set only
// for ParseError; it is zero otherwise.
type Error struct {
	Kind Kind
	Line int
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("hdt: %s: line %d: %s", e.Kind, e.Line, e.msg)
	}
	return fmt.Sprintf("hdt: %s: %s", e.Kind, e.msg)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is one of this package's Kind sentinels
// (ErrNotFound and friends), so callers compare with errors.Is instead
// of reaching into Kind directly.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func newParseError(line int, format string, args ...interface{}) *Error {
	return &Error{Kind: ParseError, Line: line, msg: fmt.Sprintf(format, args...)}
}

// wrapError lifts an internal package's narrow sentinel error (e.g.
// bitutil.ErrOutOfRange, adjacency.ErrNotFound) into an *Error of the
// given Kind at the package boundary.
func wrapError(kind Kind, err error) *Error {
	return &Error{Kind: kind, msg: err.Error(), err: err}
}

// Sentinel errors for errors.Is(err, hdt.ErrNotFound)-style checks.
var (
	ErrIOError        = &Error{Kind: IOError, msg: "I/O error"}
	ErrParseError     = &Error{Kind: ParseError, msg: "parse error"}
	ErrFormatError    = &Error{Kind: FormatError, msg: "format error"}
	ErrInvalidState   = &Error{Kind: InvalidState, msg: "invalid state"}
	ErrNotFound       = &Error{Kind: NotFound, msg: "not found"}
	ErrNotImplemented = &Error{Kind: NotImplemented, msg: "not implemented"}
	ErrCancelled      = &Error{Kind: Cancelled, msg: "cancelled"}
)
