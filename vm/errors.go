package vm

import (
	"errors"
	"fmt"

	"github.com/chazu/nick/compiler"
)

// Evaluation error kinds. Every error returned by the interpreter wraps
// exactly one of these (or compiler.ErrSyntax from Run).
var (
	// ErrUnsupportedCombination: the pair of operand types has no combine rule.
	ErrUnsupportedCombination = errors.New("unsupported combination")

	// ErrKeyType: a set key or function pattern is not a bit sequence.
	ErrKeyType = errors.New("key is not a bit sequence")

	// ErrSliceBounds: a slice range is missing a bound, has a non-bit bound,
	// or falls outside the sliced sequence.
	ErrSliceBounds = errors.New("slice bounds out of range")

	// ErrResourceExhausted: evaluation nested deeper than the interpreter's
	// MaxDepth, or the source nested deeper than the parser allows.
	ErrResourceExhausted = compiler.ErrResourceExhausted
)

// EvalError is a runtime failure at a source location.
type EvalError struct {
	Kind   error
	Pos    compiler.Position
	Detail string
}

func (e *EvalError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Pos.Line == 0 {
		return msg
	}
	return fmt.Sprintf("line %d:%d: %s", e.Pos.Line, e.Pos.Column, msg)
}

func (e *EvalError) Unwrap() error { return e.Kind }

func evalError(kind error, node compiler.Node, format string, args ...interface{}) error {
	err := &EvalError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
	if node != nil {
		err.Pos = node.Span().Start
	}
	return err
}
