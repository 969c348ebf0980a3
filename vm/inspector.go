package vm

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chazu/nick/bits"
)

// InspectionResult contains structured information about an inspected value:
// its type tag plus its raw content.
type InspectionResult struct {
	Type    string      // Null, Bits, Set, Function
	Tag     Kind        // type-query tag
	Value   string      // one-line rendering
	Size    int         // Bits: bit length; Set: entry count
	Hex     string      // Bits: packed bytes, MSB first
	Text    string      // Bits: the bytes as text when they are printable UTF-8
	Entries []EntryInfo // Set: entries in iteration order (limited)
}

// EntryInfo is one inspected set entry.
type EntryInfo struct {
	Key   *InspectionResult
	Value *InspectionResult
}

// MaxElementPreview is the maximum number of set entries to preview.
const MaxElementPreview = 10

// MaxBitPreview is the maximum number of bits rendered as digits.
const MaxBitPreview = 128

// DefaultInspectDepth is the default nesting depth for inspection.
const DefaultInspectDepth = 3

// Inspect inspects a value with the default maximum depth.
func Inspect(v Value) *InspectionResult {
	return InspectDepth(v, DefaultInspectDepth)
}

// InspectDepth inspects a value with a specified maximum nesting depth.
// When depth reaches 0, nested sets are shown as summaries only.
func InspectDepth(v Value, depth int) *InspectionResult {
	switch x := v.(type) {
	case nil, Null:
		return &InspectionResult{Type: "Null", Tag: KindNull, Value: "null"}
	case Bits:
		return inspectBits(x.BitSeq)
	case *Set:
		return inspectSet(x, depth)
	case *Function:
		return &InspectionResult{
			Type:  "Function",
			Tag:   KindFunction,
			Value: fmt.Sprintf("<function %s>", bitDigits(x.Pattern)),
		}
	}
	return &InspectionResult{Type: "Unknown", Value: fmt.Sprintf("%T", v)}
}

func inspectBits(b bits.BitSeq) *InspectionResult {
	r := &InspectionResult{
		Type:  "Bits",
		Tag:   KindBits,
		Size:  b.Len(),
		Value: bitDigits(b),
		Hex:   hex.EncodeToString(b.Bytes()),
	}
	if b.Len() > 0 && b.Len()%8 == 0 {
		data := b.Bytes()
		if utf8.Valid(data) && printable(string(data)) {
			r.Text = string(data)
		}
	}
	return r
}

func inspectSet(s *Set, depth int) *InspectionResult {
	r := &InspectionResult{
		Type:  "Set",
		Tag:   KindSet,
		Size:  s.Len(),
		Value: fmt.Sprintf("{%d entries}", s.Len()),
	}
	if depth <= 0 {
		return r
	}
	n := s.Len()
	if n > MaxElementPreview {
		n = MaxElementPreview
	}
	for i := 0; i < n; i++ {
		e := s.At(i)
		r.Entries = append(r.Entries, EntryInfo{
			Key:   inspectBits(e.Key),
			Value: InspectDepth(e.Value, depth-1),
		})
	}
	return r
}

// bitDigits renders b as backtick-quoted 0/1 digits, truncated past
// MaxBitPreview.
func bitDigits(b bits.BitSeq) string {
	if b.Len() <= MaxBitPreview {
		return "`" + b.String() + "`"
	}
	return "`" + b.Slice(0, MaxBitPreview).String() + "...`"
}

func printable(s string) bool {
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' || r == 0x7f || r == utf8.RuneError {
			return false
		}
	}
	return true
}

// String returns a one-level representation of the inspection result.
func (r *InspectionResult) String() string {
	var sb strings.Builder
	r.header(&sb, "")
	for idx, e := range r.Entries {
		fmt.Fprintf(&sb, "  [%d] %s = %s\n", idx, e.Key.label(), e.Value.label())
	}
	return sb.String()
}

// PrettyPrint returns a detailed multi-line representation with full nesting.
func (r *InspectionResult) PrettyPrint() string {
	var sb strings.Builder
	r.prettyPrint(&sb, 0)
	return sb.String()
}

func (r *InspectionResult) prettyPrint(sb *strings.Builder, indent int) {
	prefix := strings.Repeat("  ", indent)
	r.header(sb, prefix)
	if r.Type == "Set" && r.Size > len(r.Entries) && len(r.Entries) > 0 {
		fmt.Fprintf(sb, "%s  entries (showing %d of %d):\n", prefix, len(r.Entries), r.Size)
	}
	for _, e := range r.Entries {
		fmt.Fprintf(sb, "%s  key %s:\n", prefix, e.Key.label())
		e.Value.prettyPrint(sb, indent+2)
	}
}

func (r *InspectionResult) header(sb *strings.Builder, prefix string) {
	sb.WriteString(prefix)
	fmt.Fprintf(sb, "%s(%d): %s", r.Type, r.Tag, r.Value)
	if r.Type == "Bits" {
		fmt.Fprintf(sb, " len=%d", r.Size)
		if r.Hex != "" {
			sb.WriteString(" hex=" + r.Hex)
		}
		if r.Text != "" {
			fmt.Fprintf(sb, " text=%q", r.Text)
		}
	}
	sb.WriteString("\n")
}

// label is the short form used for set keys and shallow entries.
func (r *InspectionResult) label() string {
	if r.Text != "" {
		return fmt.Sprintf("%q", r.Text)
	}
	return r.Value
}

// Format renders v in the structured debug form printed by the CLI.
func Format(v Value) string {
	return InspectDepth(v, DefaultInspectDepth).PrettyPrint()
}
