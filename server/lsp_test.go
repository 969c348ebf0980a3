package server

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/nick/compiler"
)

// ---------------------------------------------------------------------------
// Position helpers
// ---------------------------------------------------------------------------

func TestOffsetOf(t *testing.T) {
	tests := []struct {
		text string
		pos  protocol.Position
		want int
	}{
		{"ab\ncd", protocol.Position{Line: 0, Character: 0}, 0},
		{"ab\ncd", protocol.Position{Line: 1, Character: 1}, 4},
		{"ab\ncd", protocol.Position{Line: 0, Character: 10}, 2},
		{"a", protocol.Position{Line: 5, Character: 0}, 1},
		{"é x", protocol.Position{Line: 0, Character: 2}, 3},
	}
	for _, tt := range tests {
		if got := offsetOf(tt.text, tt.pos); got != tt.want {
			t.Errorf("offsetOf(%q, %v) = %d, want %d", tt.text, tt.pos, got, tt.want)
		}
	}
}

func TestLSPPosition(t *testing.T) {
	if got := lspPosition(compiler.Position{}); got != (protocol.Position{}) {
		t.Errorf("unknown position = %v, want origin", got)
	}
	got := lspPosition(compiler.Position{Offset: 9, Line: 2, Column: 4})
	if got.Line != 1 || got.Character != 3 {
		t.Errorf("got %v, want 1:3", got)
	}
}

func TestTokenAt(t *testing.T) {
	tok, ok := tokenAt("foo $ bar", 4)
	if !ok || tok.Type != compiler.TokenDollar {
		t.Errorf("tokenAt(4) = %v, %v; want $", tok, ok)
	}
	tok, ok = tokenAt("foo $ bar", 7)
	if !ok || tok.Literal != "bar" {
		t.Errorf("tokenAt(7) = %v, %v; want bar", tok, ok)
	}
	if _, ok := tokenAt("foo  bar", 3); ok {
		t.Error("tokenAt on whitespace found a token")
	}
	if _, ok := tokenAt("foo", 3); ok {
		t.Error("tokenAt past the end found a token")
	}
}

func TestTokenRangeMultiLine(t *testing.T) {
	tok, ok := tokenAt("\"a\nb\"", 0)
	if !ok {
		t.Fatal("no token")
	}
	r := tokenRange("\"a\nb\"", tok)
	if r.Start.Line != 0 || r.Start.Character != 0 || r.End.Line != 1 || r.End.Character != 2 {
		t.Errorf("range = %v", r)
	}
}

// ---------------------------------------------------------------------------
// Hover
// ---------------------------------------------------------------------------

func hoverText(t *testing.T, text string, line, char int) string {
	t.Helper()
	h := hover(text, protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)})
	if h == nil {
		return ""
	}
	return h.Contents.(protocol.MarkupContent).Value
}

func TestHoverNumber(t *testing.T) {
	got := hoverText(t, "x 5", 0, 2)
	for _, want := range []string{"3 bits", "`101`", "hex: `a0`", "integer: 5"} {
		if !strings.Contains(got, want) {
			t.Errorf("hover missing %q:\n%s", want, got)
		}
	}
}

func TestHoverText(t *testing.T) {
	got := hoverText(t, `k = "hi"`, 0, 5)
	if !strings.Contains(got, `text: "hi"`) || !strings.Contains(got, "16 bits") {
		t.Errorf("hover = %q", got)
	}
}

func TestHoverPunctuation(t *testing.T) {
	tests := []struct {
		char int
		want string
	}{
		{1, "function constructor"},
		{3, "scope reference"},
	}
	for _, tt := range tests {
		if got := hoverText(t, "x: $ x", 0, tt.char); !strings.Contains(got, tt.want) {
			t.Errorf("hover at %d = %q, want mention of %q", tt.char, got, tt.want)
		}
	}
}

func TestHoverNothing(t *testing.T) {
	if got := hoverText(t, "a   b", 0, 2); got != "" {
		t.Errorf("hover on whitespace = %q", got)
	}
	if got := hoverText(t, "# note # a", 0, 3); got != "" {
		t.Errorf("hover on comment = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

func newTestLSP(t *testing.T) *LspServer {
	t.Helper()
	s := NewLSP(0)
	t.Cleanup(s.worker.Stop)
	return s
}

func TestDiagnoseClean(t *testing.T) {
	s := newTestLSP(t)
	if d := s.diagnose(`{a = b} a`); len(d) != 0 {
		t.Errorf("diagnostics = %v, want none", d)
	}
}

func TestDiagnoseSyntaxError(t *testing.T) {
	s := newTestLSP(t)
	d := s.diagnose("x\n  {a")
	if len(d) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(d))
	}
	if *d[0].Severity != protocol.DiagnosticSeverityError {
		t.Errorf("severity = %v, want error", *d[0].Severity)
	}
	if d[0].Range.Start.Line != 1 || d[0].Range.Start.Character != 2 {
		t.Errorf("position = %v, want 1:2", d[0].Range.Start)
	}
	if !strings.Contains(d[0].Message, "unterminated set") {
		t.Errorf("message = %q", d[0].Message)
	}
}

func TestDiagnoseEvalError(t *testing.T) {
	s := newTestLSP(t)
	d := s.diagnose(`{ (x:x) = v }`)
	if len(d) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(d))
	}
	if *d[0].Severity != protocol.DiagnosticSeverityWarning {
		t.Errorf("severity = %v, want warning", *d[0].Severity)
	}
	if !strings.Contains(d[0].Message, "key is not a bit sequence") {
		t.Errorf("message = %q", d[0].Message)
	}
}

func TestDiagnoseRunawayRecursion(t *testing.T) {
	s := newTestLSP(t)
	d := s.diagnose(`(f: $ f ($ f)) (f: $ f ($ f))`)
	if len(d) != 1 || !strings.Contains(d[0].Message, "recursion depth exceeded") {
		t.Errorf("diagnostics = %v", d)
	}
}

func TestDiagnoseDeepNesting(t *testing.T) {
	s := newTestLSP(t)
	n := 10 * compiler.MaxNesting
	d := s.diagnose(strings.Repeat("{", n) + strings.Repeat("}", n))
	if len(d) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(d))
	}
	if *d[0].Severity != protocol.DiagnosticSeverityError {
		t.Errorf("severity = %v, want error", *d[0].Severity)
	}
	if !strings.Contains(d[0].Message, "nesting deeper than") {
		t.Errorf("message = %q", d[0].Message)
	}
}
