package vm

import (
	"github.com/chazu/nick/bits"
	"github.com/chazu/nick/compiler"
)

// ---------------------------------------------------------------------------
// Combine: the single binary operator, dispatched on operand kinds
// ---------------------------------------------------------------------------
//
//	left \ right | Bits        | Set            | Function          | Null
//	Bits         | concatenate | slice {0:from, 1:to} | fold over bits | length
//	Set          | lookup      | merge          | fold over values  | enumerate keys
//	Null         | type tag of the right operand
//	Function     | call with the right operand

func (in *Interpreter) combine(a, b Value, at compiler.Node, depth int) (Value, error) {
	switch l := a.(type) {
	case Null:
		return Int(uint64(kindOf(b))), nil

	case *Function:
		return in.apply(l, b, at, depth)

	case Bits:
		switch r := b.(type) {
		case Bits:
			return BitsOf(bits.Concat(l.BitSeq, r.BitSeq)), nil
		case *Set:
			return sliceBits(l, r, at)
		case *Function:
			return in.fold(l.Len(), func(i int) (Value, error) {
				return in.apply(r, Int(uint64(l.Bit(i))), at, depth)
			}, at, depth)
		case Null:
			return Int(uint64(l.Len())), nil
		}

	case *Set:
		switch r := b.(type) {
		case Bits:
			if v, ok := l.Get(r.BitSeq); ok {
				return v, nil
			}
			return Nil, nil
		case *Set:
			return l.Merge(r), nil
		case *Function:
			return in.fold(l.Len(), func(i int) (Value, error) {
				return in.apply(r, l.At(i).Value, at, depth)
			}, at, depth)
		case Null:
			return enumerateKeys(l), nil
		}
	}

	return nil, evalError(ErrUnsupportedCombination, at, "%s with %s", kindOf(a), kindOf(b))
}

// fold calls step for 0..n-1 and combines the results left to right.
// An empty fold yields null.
func (in *Interpreter) fold(n int, step func(i int) (Value, error), at compiler.Node, depth int) (Value, error) {
	var acc Value
	for i := 0; i < n; i++ {
		v, err := step(i)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = v
			continue
		}
		acc, err = in.combine(acc, v, at, depth)
		if err != nil {
			return nil, err
		}
	}
	if acc == nil {
		return Nil, nil
	}
	return acc, nil
}

func sliceBits(b Bits, r *Set, at compiler.Node) (Value, error) {
	from, err := sliceBound(r, 0, at)
	if err != nil {
		return nil, err
	}
	to, err := sliceBound(r, 1, at)
	if err != nil {
		return nil, err
	}
	if from > to || to > uint64(b.Len()) {
		return nil, evalError(ErrSliceBounds, at, "[%d:%d] of %d bits", from, to, b.Len())
	}
	return BitsOf(b.Slice(int(from), int(to))), nil
}

func sliceBound(r *Set, i uint64, at compiler.Node) (uint64, error) {
	v, ok := r.Get(bits.Encode(i))
	if !ok {
		return 0, evalError(ErrSliceBounds, at, "missing bound %d", i)
	}
	b, ok := v.(Bits)
	if !ok {
		return 0, evalError(ErrSliceBounds, at, "bound %d is %s", i, kindOf(v))
	}
	return bits.Decode(b.BitSeq), nil
}

// enumerateKeys returns {0: k0, 1: k1, ...} over s's keys in order.
func enumerateKeys(s *Set) *Set {
	out := EmptySet()
	for i := 0; i < s.Len(); i++ {
		out = out.With(bits.Encode(uint64(i)), BitsOf(s.At(i).Key))
	}
	return out
}
