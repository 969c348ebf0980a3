package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/nick/bits"
	"github.com/chazu/nick/vm"
)

func roundTrip(t *testing.T, v vm.Value) vm.Value {
	t.Helper()
	data, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return got
}

func TestRoundTripNull(t *testing.T) {
	if got := roundTrip(t, vm.Nil); !vm.IsNull(got) {
		t.Errorf("got %s, want Null", got.Kind())
	}
}

func TestRoundTripBits(t *testing.T) {
	tests := []bits.BitSeq{
		bits.Empty,
		bits.Encode(0),
		bits.Encode(5),
		bits.FromDigits("1011001"),
		bits.FromString("hello"),
	}
	for _, want := range tests {
		got, ok := roundTrip(t, vm.BitsOf(want)).(vm.Bits)
		if !ok {
			t.Fatalf("%s: not Bits", want)
		}
		if !got.Equal(want) {
			t.Errorf("got %s, want %s", got.String(), want)
		}
	}
}

func TestRoundTripSetKeepsOrder(t *testing.T) {
	v, err := vm.NewInterpreter().Run(`{z = 1; a = {inner = x}; m = ""}`)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := roundTrip(t, v).(*vm.Set)
	if !ok {
		t.Fatal("not a Set")
	}

	var keys []string
	for _, e := range got.Entries() {
		keys = append(keys, string(e.Key.Bytes()))
	}
	if len(keys) != 3 || keys[0] != "z" || keys[1] != "a" || keys[2] != "m" {
		t.Errorf("keys = %v, want [z a m]", keys)
	}

	inner, _ := got.Get(bits.FromString("a"))
	x, _ := inner.(*vm.Set).Get(bits.FromString("inner"))
	if string(x.(vm.Bits).Bytes()) != "x" {
		t.Errorf("nested value = %v", x)
	}
	m, _ := got.Get(bits.FromString("m"))
	if m.(vm.Bits).Len() != 0 {
		t.Errorf("empty string length = %d", m.(vm.Bits).Len())
	}
}

func TestMarshalDeterministic(t *testing.T) {
	v, err := vm.NewInterpreter().Run(`{a = 1; b = {c = 2}}`)
	if err != nil {
		t.Fatal(err)
	}
	d1, _ := Marshal(v)
	d2, _ := Marshal(v)
	if !bytes.Equal(d1, d2) {
		t.Error("encoding is not deterministic")
	}
}

func TestMarshalFunction(t *testing.T) {
	v, err := vm.NewInterpreter().Run(`{f = x: $ x}`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Marshal(v); !errors.Is(err, ErrNotSerializable) {
		t.Errorf("error = %v, want ErrNotSerializable", err)
	}
}

func TestUnmarshalRejectsBadInput(t *testing.T) {
	garbage := []byte{0xff, 0x00}
	if _, err := Unmarshal(garbage); err == nil {
		t.Error("garbage accepted")
	}

	short, _ := cbor.Marshal(node{Kind: vm.KindBits, Len: 17, Data: []byte{1, 2}})
	if _, err := Unmarshal(short); err == nil {
		t.Error("length mismatch accepted")
	}

	unknown, _ := cbor.Marshal(node{Kind: 7})
	if _, err := Unmarshal(unknown); err == nil {
		t.Error("unknown kind accepted")
	}
}
