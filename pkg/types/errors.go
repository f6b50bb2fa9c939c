package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a specific failure.
type ErrorCode string

// Error codes. The first letter selects the error kind.
const (
	// L01xx: lexical errors
	ErrUnexpectedChar   ErrorCode = "L0101"
	ErrNumberOutOfRange ErrorCode = "L0102"
	ErrMalformedNumber  ErrorCode = "L0103"

	// P02xx: syntax errors
	ErrUnexpectedToken ErrorCode = "P0201"
	ErrExpectedToken   ErrorCode = "P0202"
	ErrUnexpectedEnd   ErrorCode = "P0203"
	ErrUnmatchedParen  ErrorCode = "P0204"
	ErrNestingTooDeep  ErrorCode = "P0205"
	ErrEmptyExpression ErrorCode = "P0206"

	// E10xx: evaluation errors
	ErrDivideByZero   ErrorCode = "E1001"
	ErrInvalidOperand ErrorCode = "E1002"
	ErrInvalidNode    ErrorCode = "E1003"
)

// ErrorKind groups error codes into the four failure classes callers match on.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindLexError
	KindParseError
	KindDivisionByZero
	KindTypeError
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindLexError:
		return "LexError"
	case KindParseError:
		return "ParseError"
	case KindDivisionByZero:
		return "DivisionByZero"
	case KindTypeError:
		return "TypeError"
	default:
		return "Error"
	}
}

// Sentinel errors for use with errors.Is. Every *Error matches the sentinel
// of its kind.
var (
	ErrLex            = errors.New("lex error")
	ErrParse          = errors.New("parse error")
	ErrDivisionByZero = errors.New("division by zero")
	ErrType           = errors.New("type error")
)

// Kind returns the kind an error code belongs to.
func (c ErrorCode) Kind() ErrorKind {
	switch {
	case strings.HasPrefix(string(c), "L"):
		return KindLexError
	case strings.HasPrefix(string(c), "P"):
		return KindParseError
	case c == ErrDivideByZero:
		return KindDivisionByZero
	case c == ErrInvalidOperand, c == ErrInvalidNode:
		return KindTypeError
	default:
		return KindUnknown
	}
}

// Error is a structured evaluation error.
//
// Position is a byte offset into the source, or -1 when unknown. Line and
// Column are 1-based and zero when unknown. Token is the offending text
// and Expected, for parse errors, what the parser was looking for.
type Error struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Position int       `json:"position"`
	Line     int       `json:"line,omitempty"`
	Column   int       `json:"column,omitempty"`
	Token    string    `json:"token,omitempty"`
	Expected string    `json:"expected,omitempty"`
	Err      error     `json:"-"`
}

// NewError creates a new error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s at line %d, column %d: %s", e.Code, e.Line, e.Column, e.Message)
	case e.Position >= 0:
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Kind returns the error's kind.
func (e *Error) Kind() ErrorKind {
	return e.Code.Kind()
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrLex:
		return e.Kind() == KindLexError
	case ErrParse:
		return e.Kind() == KindParseError
	case ErrDivisionByZero:
		return e.Kind() == KindDivisionByZero
	case ErrType:
		return e.Kind() == KindTypeError
	}
	return false
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithExpected records what the parser expected to find.
func (e *Error) WithExpected(expected string) *Error {
	e.Expected = expected
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// WithSource fills Line and Column from the error's byte position in source.
func (e *Error) WithSource(source string) *Error {
	if e.Position < 0 || e.Position > len(source) {
		return e
	}
	e.Line, e.Column = LineColumn(source, e.Position)
	return e
}

// LineColumn converts a byte offset in source into a 1-based line and column.
// Columns count runes.
func LineColumn(source string, offset int) (line, column int) {
	line, column = 1, 1
	for i, r := range source {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}
