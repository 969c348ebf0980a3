package vm

import (
	"github.com/chazu/nick/bits"
	"github.com/chazu/nick/compiler"
)

// ---------------------------------------------------------------------------
// Runtime values
// ---------------------------------------------------------------------------

// Kind identifies the runtime type of a value. The numeric values are the
// tags returned by a type query, which combines a null value with x
// (`($ missing) x`).
type Kind uint8

const (
	KindNull     Kind = 0
	KindBits     Kind = 1
	KindSet      Kind = 2
	KindFunction Kind = 3
)

var kindNames = [...]string{
	KindNull:     "Null",
	KindBits:     "Bits",
	KindSet:      "Set",
	KindFunction: "Function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Value is a runtime value: Null, Bits, *Set or *Function.
type Value interface {
	Kind() Kind
}

// Null is the unit value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

// Nil is the null value.
var Nil Value = Null{}

// Bits is a bit sequence value.
type Bits struct {
	bits.BitSeq
}

func (Bits) Kind() Kind { return KindBits }

// BitsOf wraps a bit sequence as a value.
func BitsOf(b bits.BitSeq) Bits {
	return Bits{BitSeq: b}
}

// Int returns the encoding of x as a value.
func Int(x uint64) Bits {
	return Bits{BitSeq: bits.Encode(x)}
}

// String returns the UTF-8 bytes of s as a value.
func String(s string) Bits {
	return Bits{BitSeq: bits.FromString(s)}
}

// Function is a closure. Calling it with an argument binds Pattern to the
// argument on top of Scope and evaluates Body there.
type Function struct {
	Scope   *Set
	Pattern bits.BitSeq
	Body    compiler.Expr
}

func (*Function) Kind() Kind { return KindFunction }

// IsNull reports whether v is null.
func IsNull(v Value) bool {
	_, ok := v.(Null)
	return ok || v == nil
}
