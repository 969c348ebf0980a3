package compiler

import "github.com/chazu/nick/bits"

// ---------------------------------------------------------------------------
// AST: expression trees for the bit language
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span
	node() // marker method
}

// Expr is the interface for expression nodes. A nil Expr stands for an
// absent operand and evaluates to null.
type Expr interface {
	Node
	expr() // marker method
}

// Literal is a bit sequence written in the source.
type Literal struct {
	SpanVal Span
	Value   bits.BitSeq
}

func (n *Literal) Span() Span { return n.SpanVal }
func (n *Literal) node()      {}
func (n *Literal) expr()      {}

// ScopeRef is `$`, the current scope.
type ScopeRef struct {
	SpanVal Span
}

func (n *ScopeRef) Span() Span { return n.SpanVal }
func (n *ScopeRef) node()      {}
func (n *ScopeRef) expr()      {}

// SetEntry is one `key = value` statement of a set literal. Implicit keys
// are filled in by the parser as integer literals.
type SetEntry struct {
	Key   Expr
	Value Expr
}

// SetConstructor is a `{ ... }` literal.
type SetConstructor struct {
	SpanVal Span
	Entries []SetEntry
}

func (n *SetConstructor) Span() Span { return n.SpanVal }
func (n *SetConstructor) node()      {}
func (n *SetConstructor) expr()      {}

// FunctionConstructor is `pattern : body`.
type FunctionConstructor struct {
	SpanVal Span
	Pattern Expr
	Body    Expr
}

func (n *FunctionConstructor) Span() Span { return n.SpanVal }
func (n *FunctionConstructor) node()      {}
func (n *FunctionConstructor) expr()      {}

// Combine is the implicit binary operator between adjacent operands.
type Combine struct {
	SpanVal Span
	Left    Expr
	Right   Expr
}

func (n *Combine) Span() Span { return n.SpanVal }
func (n *Combine) node()      {}
func (n *Combine) expr()      {}

// spanOf returns the span of e, or a zero-width span at pos for an absent
// operand.
func spanOf(e Expr, pos Position) Span {
	if e == nil {
		return Span{Start: pos, End: pos}
	}
	return e.Span()
}
