// Package wire encodes runtime values as canonical CBOR.
//
// Bit sequences travel as their bit length plus packed bytes; sets as an
// array of entries in iteration order, so decoding restores the order.
// Functions hold an expression tree and a captured scope and have no wire
// form.
package wire

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/nick/bits"
	"github.com/chazu/nick/vm"
)

// ErrNotSerializable is returned when a value contains a function.
var ErrNotSerializable = errors.New("wire: functions cannot be serialized")

// node is the wire form of one value.
type node struct {
	Kind    vm.Kind `cbor:"1,keyasint"`
	Len     int     `cbor:"2,keyasint,omitempty"` // bit length
	Data    []byte  `cbor:"3,keyasint,omitempty"` // packed bits, MSB first
	Entries []entry `cbor:"4,keyasint,omitempty"`
}

type entry struct {
	KeyLen int    `cbor:"1,keyasint"`
	Key    []byte `cbor:"2,keyasint"`
	Value  node   `cbor:"3,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	encMode = em

	// Each set level costs three CBOR levels (map, entry array, entry map).
	dm, err := cbor.DecOptions{MaxNestedLevels: 4096}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

// Marshal serializes v to CBOR bytes.
func Marshal(v vm.Value) ([]byte, error) {
	n, err := toNode(v)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(n)
}

// Unmarshal deserializes a value from CBOR bytes.
func Unmarshal(data []byte) (vm.Value, error) {
	var n node
	if err := decMode.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("wire: unmarshal value: %w", err)
	}
	return fromNode(n)
}

func toNode(v vm.Value) (node, error) {
	switch x := v.(type) {
	case nil, vm.Null:
		return node{Kind: vm.KindNull}, nil
	case vm.Bits:
		return node{Kind: vm.KindBits, Len: x.Len(), Data: x.Bytes()}, nil
	case *vm.Set:
		n := node{Kind: vm.KindSet, Entries: make([]entry, 0, x.Len())}
		for _, e := range x.Entries() {
			val, err := toNode(e.Value)
			if err != nil {
				return node{}, err
			}
			n.Entries = append(n.Entries, entry{KeyLen: e.Key.Len(), Key: e.Key.Bytes(), Value: val})
		}
		return n, nil
	case *vm.Function:
		return node{}, ErrNotSerializable
	}
	return node{}, fmt.Errorf("wire: unknown value type %T", v)
}

func fromNode(n node) (vm.Value, error) {
	switch n.Kind {
	case vm.KindNull:
		return vm.Nil, nil
	case vm.KindBits:
		b, err := decodeBits(n.Len, n.Data)
		if err != nil {
			return nil, err
		}
		return vm.BitsOf(b), nil
	case vm.KindSet:
		entries := make([]vm.Entry, 0, len(n.Entries))
		for _, e := range n.Entries {
			k, err := decodeBits(e.KeyLen, e.Key)
			if err != nil {
				return nil, err
			}
			v, err := fromNode(e.Value)
			if err != nil {
				return nil, err
			}
			entries = append(entries, vm.Entry{Key: k, Value: v})
		}
		return vm.NewSet(entries...), nil
	}
	return nil, fmt.Errorf("wire: unknown value kind %d", n.Kind)
}

func decodeBits(n int, data []byte) (bits.BitSeq, error) {
	if n < 0 || len(data) != (n+7)/8 {
		return bits.Empty, fmt.Errorf("wire: %d bytes cannot hold %d bits", len(data), n)
	}
	return bits.New(data, n), nil
}
