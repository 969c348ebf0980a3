package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/nick/bits"
	"github.com/chazu/nick/cache"
	"github.com/chazu/nick/compiler"
	"github.com/chazu/nick/manifest"
	"github.com/chazu/nick/vm"
	"github.com/chazu/nick/vm/wire"
)

func TestWriteResultInspect(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResult(&buf, vm.Int(5), manifest.FormatInspect); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "Bits(1): `101` len=3 hex=a0\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteResultHex(t *testing.T) {
	var buf bytes.Buffer
	if err := writeResult(&buf, vm.String("ab"), manifest.FormatHex); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "6162\n" {
		t.Errorf("got %q, want 6162", buf.String())
	}
	if err := writeResult(&buf, vm.EmptySet(), manifest.FormatHex); err == nil {
		t.Error("hex output of a set succeeded")
	}
}

func TestWriteResultCBOR(t *testing.T) {
	var buf bytes.Buffer
	v := vm.NewSet(vm.Entry{Key: bits.FromString("k"), Value: vm.String("v")})
	if err := writeResult(&buf, v, manifest.FormatCBOR); err != nil {
		t.Fatal(err)
	}
	got, err := wire.Unmarshal(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := got.(*vm.Set); !ok || s.Len() != 1 {
		t.Errorf("decoded %v", vm.Inspect(got))
	}
}

func TestWriteResultUnknownFormat(t *testing.T) {
	if err := writeResult(&bytes.Buffer{}, vm.Nil, "xml"); err == nil {
		t.Error("unknown format accepted")
	}
}

func newRunner(out *bytes.Buffer) *runner {
	return &runner{interp: vm.NewInterpreter(), format: manifest.FormatInspect, out: out}
}

func TestRunnerDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	r := newRunner(&buf)
	r.showTokens = true
	r.showTree = true
	if err := r.run(`"ab" "cd"`); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"TOKENS", "1:1\tLITERAL", "TREE", "Combine", "hash: ", `text="abcd"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunnerErrors(t *testing.T) {
	r := newRunner(&bytes.Buffer{})
	if err := r.run(`{a`); err == nil {
		t.Error("syntax error not reported")
	}
	if err := r.run(`{ (x:x) = v }`); err == nil {
		t.Error("evaluation error not reported")
	}
}

func TestRunnerCache(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	var buf bytes.Buffer
	r := newRunner(&buf)
	r.cache = c
	r.format = manifest.FormatHex

	if err := r.run(`"x" "y"`); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.Len(); n != 1 {
		t.Fatalf("cache holds %d results, want 1", n)
	}

	// A stored result is served without evaluating.
	expr, _ := compiler.Parse(`"x" "y"`)
	if err := c.Put(cacheKey(expr, r.interp.MaxDepth), vm.Int(7)); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if err := r.run(`"x"   "y"`); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "e0\n" {
		t.Errorf("got %q, want cached e0", buf.String())
	}
}

func TestRunnerCacheKeyIncludesDepthLimit(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	var buf bytes.Buffer
	r := newRunner(&buf)
	r.cache = c
	r.format = manifest.FormatHex

	src := `(f: $ f ($ f)) (f: $ f ($ f))`
	expr, _ := compiler.Parse(src)
	if err := c.Put(cacheKey(expr, vm.DefaultMaxDepth), vm.Int(7)); err != nil {
		t.Fatal(err)
	}

	r.interp.MaxDepth = 50
	if err := r.run(src); !errors.Is(err, vm.ErrResourceExhausted) {
		t.Errorf("error = %v, want ErrResourceExhausted", err)
	}
	if cacheKey(expr, 50) == cacheKey(expr, vm.DefaultMaxDepth) {
		t.Error("depth limit does not change the cache key")
	}
}

func TestRunnerDoesNotCacheFunctions(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	r := newRunner(&bytes.Buffer{})
	r.cache = c
	if err := r.run(`x: $ x`); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.Len(); n != 0 {
		t.Errorf("cache holds %d results, want 0", n)
	}
}

func TestSessionLet(t *testing.T) {
	s := newSession(vm.NewInterpreter(), manifest.FormatHex)
	var out bytes.Buffer

	if err := s.eval(`abc`, &out); err != nil {
		t.Fatal(err)
	}
	if s.command(":let name", &out) {
		t.Fatal(":let asked to quit")
	}
	out.Reset()
	if err := s.eval(`$ name`, &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "616263\n" {
		t.Errorf("got %q, want 616263", out.String())
	}

	s.command(":reset", &out)
	out.Reset()
	if err := s.eval(`$ name`, &out); err == nil {
		t.Errorf("after :reset, $ name printed %q; want a hex error for Null", out.String())
	}
}

func TestSessionCommands(t *testing.T) {
	s := newSession(vm.NewInterpreter(), manifest.FormatCBOR)
	if s.format != manifest.FormatInspect {
		t.Errorf("REPL format = %q, want inspect", s.format)
	}

	var out bytes.Buffer
	if !s.command(":quit", &out) || !s.command(":q", &out) {
		t.Error(":quit did not quit")
	}

	tests := []struct {
		cmd  string
		want string
	}{
		{":help", ":let NAME"},
		{":scope", "Set(2): {0 entries}"},
		{":tokens a $", "$"},
		{":tree a b", "Combine"},
		{":stats", "calls:"},
		{":let", "usage"},
		{":bogus", "Unknown command"},
	}
	for _, tt := range tests {
		out.Reset()
		s.command(tt.cmd, &out)
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("%s output = %q, want mention of %q", tt.cmd, out.String(), tt.want)
		}
	}
}
