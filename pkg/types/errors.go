package types

import (
	"fmt"
	"strings"
)

// ErrorCode represents a dice notation error code.
type ErrorCode string

// ErrorKind separates input that does not match the grammar from input that
// parses but breaks a rule while being evaluated.
type ErrorKind int

const (
	KindSyntax ErrorKind = iota
	KindFatal
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindFatal:
		return "fatal error"
	default:
		return "unknown error"
	}
}

// Error codes. S01xx codes are syntax errors, D01xx are raised while building
// the tree, D02xx while evaluating it.
const (
	// S01xx: Syntax errors
	ErrUnexpectedToken  ErrorCode = "S0101"
	ErrUnexpectedEnd    ErrorCode = "S0102"
	ErrInvalidCharacter ErrorCode = "S0103"
	ErrNumberOutOfRange ErrorCode = "S0104"
	ErrEmptyExpression  ErrorCode = "S0105"
	ErrNestingTooDeep   ErrorCode = "S0106"

	// D01xx: Dice construction errors
	ErrInvalidOperator ErrorCode = "D0101"
	ErrInvalidFudge    ErrorCode = "D0102"
	ErrInvalidSides    ErrorCode = "D0103"
	ErrUnknownDiceKind ErrorCode = "D0104"
	ErrStackedDice     ErrorCode = "D0105"

	// D02xx: Evaluation errors
	ErrTooManyDice       ErrorCode = "D0201"
	ErrNegativeAmount    ErrorCode = "D0202"
	ErrInvertedRange     ErrorCode = "D0203"
	ErrDivisionByZero    ErrorCode = "D0204"
	ErrExplodeThreshold  ErrorCode = "D0205"
	ErrTooManyExplosions ErrorCode = "D0206"
	ErrRerollThreshold   ErrorCode = "D0207"
	ErrSuccessThreshold  ErrorCode = "D0208"
	ErrNestedDice        ErrorCode = "D0209"
	ErrNotASequence      ErrorCode = "D0210"
	ErrNotARoll          ErrorCode = "D0211"
	ErrRangeTooLarge     ErrorCode = "D0212"
	ErrIntegerOverflow   ErrorCode = "D0213"
)

// Kind reports whether the code is a syntax or a fatal error.
func (c ErrorCode) Kind() ErrorKind {
	if strings.HasPrefix(string(c), "S") {
		return KindSyntax
	}
	return KindFatal
}

// Error represents a structured dice notation error. Position is a byte
// offset into Source pointing at the sub-expression responsible.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Source   string
	Err      error
}

// NewError creates a new dice notation error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Errorf creates an error for source with a formatted message.
func Errorf(source string, position int, code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: position,
		Source:   source,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Kind reports whether e is a syntax or a fatal error.
func (e *Error) Kind() ErrorKind {
	return e.Code.Kind()
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// WithSource attaches the expression text the position refers to.
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

// LineCol converts the byte offset of e into a 1-based line and column.
func (e *Error) LineCol() (line, col int) {
	line, col = 1, 1
	pos := e.Position
	if pos > len(e.Source) {
		pos = len(e.Source)
	}
	for i := 0; i < pos; i++ {
		if e.Source[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// PrettyPrint renders the source of err with a caret line under the error
// position. Short messages are right-justified so they end in " ^" under the
// offending column; longer ones follow a "^ " marker.
//
//	1d6 + d0
//	       ^ Number of sides must be one or more
func PrettyPrint(err *Error) string {
	if err == nil {
		return ""
	}
	line, col := err.LineCol()
	lines := strings.Split(err.Source, "\n")

	var marker string
	if len(err.Message) < col-1 {
		marker = rjust(err.Message+" ^", col)
	} else {
		marker = rjust("^ ", col+1) + err.Message
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:line]...)
	out = append(out, marker)
	out = append(out, lines[line:]...)
	return strings.Join(out, "\n")
}

func rjust(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
