// Package bits implements the bit sequence, the only primitive data type of
// the language, and the codec between non-negative integers and their
// minimal bit sequence encoding.
//
// Bits are packed into bytes most-significant-bit first. The unused trailing
// bits of the final byte are always zero, so two sequences are equal exactly
// when their lengths and packed bytes are equal.
package bits

import (
	"encoding/binary"
	mathbits "math/bits"
	"strings"
)

// BitSeq is an immutable sequence of bits with an explicit length.
type BitSeq struct {
	data []byte
	n    int
}

// Empty is the zero-length bit sequence.
var Empty = BitSeq{}

// New builds a sequence of n bits from data. Bits past n are cleared and
// data is copied, so the caller keeps ownership of its slice.
func New(data []byte, n int) BitSeq {
	if n <= 0 {
		return Empty
	}
	nb := byteLen(n)
	buf := make([]byte, nb)
	copy(buf, data)
	if rem := n % 8; rem != 0 {
		buf[nb-1] &= 0xFF << (8 - rem)
	}
	return BitSeq{data: buf, n: n}
}

// FromBytes returns the sequence holding every bit of b (8 per byte).
func FromBytes(b []byte) BitSeq {
	return New(b, len(b)*8)
}

// FromString returns the sequence holding the UTF-8 bytes of s.
func FromString(s string) BitSeq {
	return FromBytes([]byte(s))
}

// FromDigits builds a sequence from a backtick literal body. Each rune is
// one bit: '1' sets it, any other rune leaves it clear.
func FromDigits(s string) BitSeq {
	runes := []rune(s)
	buf := make([]byte, byteLen(len(runes)))
	for i, r := range runes {
		if r == '1' {
			buf[i/8] |= 0x80 >> (i % 8)
		}
	}
	return BitSeq{data: buf, n: len(runes)}
}

func byteLen(n int) int {
	return (n + 7) / 8
}

// Len returns the number of bits.
func (b BitSeq) Len() int { return b.n }

// Bit returns bit i (0 = first) as 0 or 1.
func (b BitSeq) Bit(i int) uint8 {
	return (b.data[i/8] >> (7 - i%8)) & 1
}

// Bytes returns a copy of the packed bytes.
func (b BitSeq) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Key returns a canonical string for b, usable as a map key. Two sequences
// have the same key exactly when they are equal.
func (b BitSeq) Key() string {
	var sb strings.Builder
	sb.Write(binary.AppendUvarint(nil, uint64(b.n)))
	sb.Write(b.data)
	return sb.String()
}

// FromKey is the inverse of Key.
func FromKey(k string) (BitSeq, bool) {
	n, w := binary.Uvarint([]byte(k))
	if w <= 0 {
		return Empty, false
	}
	data := []byte(k[w:])
	if len(data) != byteLen(int(n)) {
		return Empty, false
	}
	return New(data, int(n)), true
}

// Equal reports whether a and b hold the same bits.
func (b BitSeq) Equal(o BitSeq) bool {
	if b.n != o.n {
		return false
	}
	for i := range b.data {
		if b.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// String renders the bits as '0' and '1' digits.
func (b BitSeq) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		sb.WriteByte('0' + b.Bit(i))
	}
	return sb.String()
}

// Concat returns the bits of a followed by the bits of b.
func Concat(a, b BitSeq) BitSeq {
	n := a.n + b.n
	if n == 0 {
		return Empty
	}
	buf := make([]byte, byteLen(n))
	copy(buf, a.data)
	if a.n%8 == 0 {
		copy(buf[a.n/8:], b.data)
		return BitSeq{data: buf, n: n}
	}
	for i := 0; i < b.n; i++ {
		if b.Bit(i) == 1 {
			j := a.n + i
			buf[j/8] |= 0x80 >> (j % 8)
		}
	}
	return BitSeq{data: buf, n: n}
}

// Slice returns bits [from, to). The caller guarantees 0 <= from <= to <= Len.
func (b BitSeq) Slice(from, to int) BitSeq {
	n := to - from
	if n <= 0 {
		return Empty
	}
	if from%8 == 0 {
		return New(b.data[from/8:], n)
	}
	buf := make([]byte, byteLen(n))
	for i := 0; i < n; i++ {
		if b.Bit(from+i) == 1 {
			buf[i/8] |= 0x80 >> (i % 8)
		}
	}
	return BitSeq{data: buf, n: n}
}

// Encode maps x to its minimal bit sequence: bit i of the result is bit i
// of x counting from the least significant end. Zero encodes as a single
// clear bit.
func Encode(x uint64) BitSeq {
	n := mathbits.Len64(x)
	if n == 0 {
		n = 1
	}
	buf := make([]byte, byteLen(n))
	for i := 0; i < n; i++ {
		if x>>i&1 == 1 {
			buf[i/8] |= 0x80 >> (i % 8)
		}
	}
	return BitSeq{data: buf, n: n}
}

// Decode is the inverse of Encode. Only the first 64 bits contribute.
func Decode(b BitSeq) uint64 {
	var x uint64
	n := b.n
	if n > 64 {
		n = 64
	}
	for i := 0; i < n; i++ {
		x |= uint64(b.Bit(i)) << i
	}
	return x
}
