package compiler

import (
	"errors"
	"fmt"
)

// ErrSyntax is wrapped by every error the lexer and parser report.
var ErrSyntax = errors.New("syntax error")

// ErrResourceExhausted is wrapped, alongside ErrSyntax, when source nests
// deeper than MaxNesting. The evaluator reports the same kind for deep
// recursion.
var ErrResourceExhausted = errors.New("recursion depth exceeded")

// SyntaxError is a malformed-source error with its location.
type SyntaxError struct {
	Pos Position
	Msg string

	// Incomplete is set when the input ended before the construct was
	// closed, so more input could still make it valid.
	Incomplete bool

	// Err is an additional error kind, if any.
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSyntax, e.Err}
	}
	return []error{ErrSyntax}
}

// IsIncomplete reports whether err was caused by input ending inside an
// open set or parenthesis.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Incomplete
}
