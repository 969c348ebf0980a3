package hash

import (
	"encoding/binary"
	"fmt"

	"github.com/chazu/nick/compiler"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of expression trees.
//
// Encoding conventions:
//   - First byte: HashVersion (0x01)
//   - Lengths and counts: uint32 big-endian
//   - Literals: bit length + packed bytes (trailing bits zero)
//   - Child nodes: serialized inline (flat, pre-order)
// ---------------------------------------------------------------------------

// Serialize produces a deterministic byte serialization of an expression
// tree. The returned bytes are suitable for hashing with SHA-256.
func Serialize(e compiler.Expr) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.serializeNode(e)
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) serializeNode(e compiler.Expr) {
	switch n := e.(type) {
	case nil:
		s.writeByte(TagAbsent)

	case *compiler.Literal:
		s.writeByte(TagLiteral)
		s.writeUint32(uint32(n.Value.Len()))
		s.buf = append(s.buf, n.Value.Bytes()...)

	case *compiler.ScopeRef:
		s.writeByte(TagScopeRef)

	case *compiler.SetConstructor:
		s.writeByte(TagSetConstructor)
		s.writeUint32(uint32(len(n.Entries)))
		for _, entry := range n.Entries {
			s.serializeNode(entry.Key)
			s.serializeNode(entry.Value)
		}

	case *compiler.FunctionConstructor:
		s.writeByte(TagFunctionConstructor)
		s.serializeNode(n.Pattern)
		s.serializeNode(n.Body)

	case *compiler.Combine:
		s.writeByte(TagCombine)
		s.serializeNode(n.Left)
		s.serializeNode(n.Right)

	default:
		panic(fmt.Sprintf("hash: unknown expression node %T", e))
	}
}
