package vm

import (
	"github.com/tliron/commonlog"

	"github.com/chazu/nick/compiler"
)

// ---------------------------------------------------------------------------
// Interpreter: tree-walking evaluator
// ---------------------------------------------------------------------------

// DefaultMaxDepth is the default bound on evaluation nesting.
const DefaultMaxDepth = 10000

// Interpreter evaluates expression trees. The current scope is always passed
// explicitly; the interpreter itself only holds limits and per-run
// statistics, so one Interpreter must not run two evaluations at once.
type Interpreter struct {
	// MaxDepth bounds how deeply evaluation may nest (subexpressions plus
	// function calls). Operands of one chain share a level. Exceeding it
	// fails with ErrResourceExhausted.
	MaxDepth int

	log commonlog.Logger

	// Statistics for the last run.
	calls   int
	deepest int
}

// Stats describes the work done by the last evaluation.
type Stats struct {
	Calls    int // function applications
	MaxDepth int // deepest nesting reached
}

// NewInterpreter creates an interpreter with the default depth limit.
func NewInterpreter() *Interpreter {
	return &Interpreter{
		MaxDepth: DefaultMaxDepth,
		log:      commonlog.GetLogger("nick.vm"),
	}
}

// Stats returns statistics for the last evaluation.
func (in *Interpreter) Stats() Stats {
	return Stats{Calls: in.calls, MaxDepth: in.deepest}
}

// Run parses and evaluates src under an empty scope.
func (in *Interpreter) Run(src string) (Value, error) {
	expr, err := compiler.Parse(src)
	if err != nil {
		return nil, err
	}
	return in.Eval(expr, EmptySet())
}

// Eval evaluates e under scope.
func (in *Interpreter) Eval(e compiler.Expr, scope *Set) (Value, error) {
	in.calls, in.deepest = 0, 0
	v, err := in.eval(e, scope, 0)
	if err != nil {
		in.log.Debugf("evaluation failed after %d calls (depth %d): %v", in.calls, in.deepest, err)
		return nil, err
	}
	in.log.Debugf("evaluation finished: %d calls, depth %d", in.calls, in.deepest)
	return v, nil
}

// Combine applies the combine operator to two values.
func (in *Interpreter) Combine(a, b Value) (Value, error) {
	return in.combine(a, b, nil, 0)
}

// Apply calls fn with arg.
func (in *Interpreter) Apply(fn *Function, arg Value) (Value, error) {
	return in.apply(fn, arg, nil, 0)
}

func (in *Interpreter) eval(e compiler.Expr, scope *Set, depth int) (Value, error) {
	if depth > in.MaxDepth {
		return nil, evalError(ErrResourceExhausted, e, "limit is %d", in.MaxDepth)
	}
	if depth > in.deepest {
		in.deepest = depth
	}

	switch n := e.(type) {
	case nil:
		return Nil, nil

	case *compiler.Literal:
		return BitsOf(n.Value), nil

	case *compiler.ScopeRef:
		return scope, nil

	case *compiler.SetConstructor:
		set := EmptySet()
		for _, entry := range n.Entries {
			k, err := in.eval(entry.Key, scope, depth+1)
			if err != nil {
				return nil, err
			}
			key, ok := k.(Bits)
			if !ok {
				return nil, evalError(ErrKeyType, entry.Key, "set key is %s", kindOf(k))
			}
			v, err := in.eval(entry.Value, scope, depth+1)
			if err != nil {
				return nil, err
			}
			set = set.With(key.BitSeq, v)
		}
		return set, nil

	case *compiler.FunctionConstructor:
		p, err := in.eval(n.Pattern, scope, depth+1)
		if err != nil {
			return nil, err
		}
		pattern, ok := p.(Bits)
		if !ok {
			return nil, evalError(ErrKeyType, n, "function pattern is %s", kindOf(p))
		}
		return &Function{Scope: scope, Pattern: pattern.BitSeq, Body: n.Body}, nil

	case *compiler.Combine:
		// A chain `a b c` nests on its left. Walk the spine in a loop so
		// the length of a chain does not count toward MaxDepth.
		var chain []*compiler.Combine
		var head compiler.Expr = n
		for {
			c, ok := head.(*compiler.Combine)
			if !ok {
				break
			}
			chain = append(chain, c)
			head = c.Left
		}

		acc, err := in.eval(head, scope, depth+1)
		if err != nil {
			return nil, err
		}
		for i := len(chain) - 1; i >= 0; i-- {
			c := chain[i]
			b, err := in.eval(c.Right, scope, depth+1)
			if err != nil {
				return nil, err
			}
			acc, err = in.combine(acc, b, c, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	}

	return nil, evalError(ErrUnsupportedCombination, e, "unknown expression %T", e)
}

// apply binds the argument over the captured scope and evaluates the body.
func (in *Interpreter) apply(fn *Function, arg Value, at compiler.Node, depth int) (Value, error) {
	if depth >= in.MaxDepth {
		return nil, evalError(ErrResourceExhausted, at, "limit is %d", in.MaxDepth)
	}
	in.calls++
	return in.eval(fn.Body, fn.Scope.With(fn.Pattern, arg), depth+1)
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}
