package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/chazu/nick/cache"
	"github.com/chazu/nick/compiler"
	"github.com/chazu/nick/compiler/hash"
	"github.com/chazu/nick/manifest"
	"github.com/chazu/nick/vm"
	"github.com/chazu/nick/vm/wire"
)

// runner evaluates whole programs and prints their results.
type runner struct {
	interp     *vm.Interpreter
	cache      *cache.Cache // nil when caching is off
	format     string
	showTokens bool
	showTree   bool
	out        io.Writer
}

// run evaluates src under an empty scope and writes the result.
func (r *runner) run(src string) error {
	if r.showTokens {
		if err := writeTokens(r.out, src); err != nil {
			return err
		}
	}

	expr, err := compiler.Parse(src)
	if err != nil {
		return err
	}

	if r.showTree {
		fmt.Fprintln(r.out, "TREE")
		fmt.Fprint(r.out, compiler.Dump(expr))
		fmt.Fprintf(r.out, "hash: %s\n\n", hash.HexHash(expr))
	}

	v, err := r.eval(expr, cacheKey(expr, r.interp.MaxDepth))
	if err != nil {
		return err
	}
	return writeResult(r.out, v, r.format)
}

// cacheKey identifies a result by the program's tree hash and the depth
// limit it was evaluated under.
func cacheKey(expr compiler.Expr, maxDepth int) string {
	return fmt.Sprintf("%s/%d", hash.HexHash(expr), maxDepth)
}

// eval consults the cache before evaluating and stores fresh results.
func (r *runner) eval(expr compiler.Expr, key string) (vm.Value, error) {
	if r.cache != nil {
		v, err := r.cache.Get(key)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			log.Warningf("result cache: %v", err)
		}
	}

	v, err := r.interp.Eval(expr, vm.EmptySet())
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Put(key, v); err != nil && !errors.Is(err, wire.ErrNotSerializable) {
			log.Warningf("result cache: %v", err)
		}
	}
	return v, nil
}

func writeTokens(w io.Writer, src string) error {
	tokens, err := compiler.Tokenize(src)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "TOKENS")
	for _, tok := range tokens {
		fmt.Fprintf(w, "%d:%d\t%s\n", tok.Pos.Line, tok.Pos.Column, tok)
	}
	fmt.Fprintln(w)
	return nil
}

// writeResult prints v in the given output format.
func writeResult(w io.Writer, v vm.Value, format string) error {
	switch format {
	case manifest.FormatInspect, "":
		_, err := fmt.Fprint(w, vm.Format(v))
		return err

	case manifest.FormatHex:
		b, ok := v.(vm.Bits)
		if !ok {
			return fmt.Errorf("hex output needs a bit sequence, got %s", v.Kind())
		}
		_, err := fmt.Fprintln(w, hex.EncodeToString(b.Bytes()))
		return err

	case manifest.FormatCBOR:
		data, err := wire.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}
