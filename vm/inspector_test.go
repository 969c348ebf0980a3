package vm

import (
	"strings"
	"testing"

	"github.com/chazu/nick/bits"
)

func TestInspectNull(t *testing.T) {
	r := Inspect(Nil)
	if r.Type != "Null" || r.Tag != KindNull {
		t.Errorf("got %s/%d, want Null/0", r.Type, r.Tag)
	}
	if got := r.String(); got != "Null(0): null\n" {
		t.Errorf("String() = %q", got)
	}
}

func TestInspectBits(t *testing.T) {
	tests := []struct {
		value Bits
		want  string
	}{
		{Int(5), "Bits(1): `101` len=3 hex=a0\n"},
		{Int(0), "Bits(1): `0` len=1 hex=00\n"},
		{String("ab"), "Bits(1): `0110000101100010` len=16 hex=6162 text=\"ab\"\n"},
		{BitsOf(bits.Empty), "Bits(1): `` len=0\n"},
	}
	for _, tt := range tests {
		if got := Inspect(tt.value).String(); got != tt.want {
			t.Errorf("Inspect(%s) = %q, want %q", tt.value.String(), got, tt.want)
		}
	}
}

func TestInspectLongBitsTruncated(t *testing.T) {
	r := Inspect(String(strings.Repeat("x", 100)))
	if r.Size != 800 {
		t.Errorf("Size = %d, want 800", r.Size)
	}
	if !strings.HasSuffix(r.Value, "...`") {
		t.Errorf("Value not truncated: %q", r.Value)
	}
}

func TestInspectSet(t *testing.T) {
	s := NewSet(
		Entry{Key: bits.FromString("k"), Value: String("v")},
		Entry{Key: bits.Encode(3), Value: EmptySet()},
	)
	r := Inspect(s)
	if r.Type != "Set" || r.Tag != KindSet || r.Size != 2 {
		t.Fatalf("got %s/%d size %d", r.Type, r.Tag, r.Size)
	}
	if len(r.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(r.Entries))
	}
	if r.Entries[0].Key.Text != "k" || r.Entries[0].Value.Text != "v" {
		t.Errorf("first entry = %+v", r.Entries[0])
	}
	if r.Entries[1].Value.Type != "Set" {
		t.Errorf("second value type = %s", r.Entries[1].Value.Type)
	}

	out := r.String()
	if !strings.Contains(out, `[0] "k" = "v"`) {
		t.Errorf("String() missing first entry:\n%s", out)
	}
}

func TestInspectSetPreviewLimit(t *testing.T) {
	s := EmptySet()
	for i := 0; i < 25; i++ {
		s = s.With(bits.Encode(uint64(i)), Int(uint64(i)))
	}
	r := Inspect(s)
	if r.Size != 25 || len(r.Entries) != MaxElementPreview {
		t.Errorf("size %d entries %d", r.Size, len(r.Entries))
	}
	if !strings.Contains(r.PrettyPrint(), "showing 10 of 25") {
		t.Error("PrettyPrint missing preview note")
	}
}

func TestInspectDepthZero(t *testing.T) {
	s := NewSet(Entry{Key: bits.Encode(0), Value: Int(1)})
	if r := InspectDepth(s, 0); len(r.Entries) != 0 || r.Size != 1 {
		t.Errorf("depth 0 should summarize: %+v", r)
	}
}

func TestInspectFunction(t *testing.T) {
	fn := &Function{Scope: EmptySet(), Pattern: bits.FromDigits("1")}
	r := Inspect(fn)
	if r.Type != "Function" || r.Tag != KindFunction {
		t.Errorf("got %s/%d", r.Type, r.Tag)
	}
	if r.Value != "<function `1`>" {
		t.Errorf("Value = %q", r.Value)
	}
}

func TestFormatNested(t *testing.T) {
	v, err := NewInterpreter().Run(`{a = {b = c}}`)
	if err != nil {
		t.Fatal(err)
	}
	want := "Set(2): {1 entries}\n" +
		"  key \"a\":\n" +
		"    Set(2): {1 entries}\n" +
		"      key \"b\":\n" +
		"        Bits(1): `01100011` len=8 hex=63 text=\"c\"\n"
	if got := Format(v); got != want {
		t.Errorf("Format =\n%s\nwant\n%s", got, want)
	}
}
