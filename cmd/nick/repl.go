package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/chazu/nick/bits"
	"github.com/chazu/nick/compiler"
	"github.com/chazu/nick/compiler/hash"
	"github.com/chazu/nick/manifest"
	"github.com/chazu/nick/vm"
)

const (
	banner      = "nick REPL (:help for commands, :quit or Ctrl-D to exit)"
	promptMain  = "nick> "
	promptCont  = "  ... "
	historyFile = ".nick_history"
)

// session is the REPL state. Each entry is evaluated under scope; :let
// extends it with the last result.
type session struct {
	interp *vm.Interpreter
	format string
	scope  *vm.Set
	last   vm.Value
}

func newSession(interp *vm.Interpreter, format string) *session {
	if format == manifest.FormatCBOR {
		format = manifest.FormatInspect
	}
	return &session{interp: interp, format: format, scope: vm.EmptySet(), last: vm.Nil}
}

func runREPL(r *runner) {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s := newSession(r.interp, r.format)
	for {
		src, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			if s.command(strings.TrimSpace(src), os.Stdout) {
				return
			}
			continue
		}
		if err := s.eval(src, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

// readByParseProbe reads lines until they form a complete expression (or
// a parse error that more input cannot fix).
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := compiler.Parse(src); compiler.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}

// eval evaluates one entry under the session scope.
func (s *session) eval(src string, out io.Writer) error {
	expr, err := compiler.Parse(src)
	if err != nil {
		return err
	}
	v, err := s.interp.Eval(expr, s.scope)
	if err != nil {
		return err
	}
	s.last = v
	return writeResult(out, v, s.format)
}

// command runs a REPL command and reports whether the REPL should exit.
func (s *session) command(line string, out io.Writer) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case ":quit", ":q":
		return true

	case ":help", ":h", ":?":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :let NAME       Bind the last result to NAME in the scope ($ NAME)")
		fmt.Fprintln(out, "  :scope          Show the current scope")
		fmt.Fprintln(out, "  :reset          Clear the scope")
		fmt.Fprintln(out, "  :tokens EXPR    Show the tokens of EXPR")
		fmt.Fprintln(out, "  :tree EXPR      Show the parse tree of EXPR and its hash")
		fmt.Fprintln(out, "  :stats          Show statistics of the last evaluation")
		fmt.Fprintln(out, "  :quit, :q       Exit REPL")

	case ":let":
		if arg == "" {
			fmt.Fprintln(out, "usage: :let NAME")
			break
		}
		s.scope = s.scope.With(bits.FromString(arg), s.last)
		fmt.Fprintf(out, "%s bound (%s)\n", arg, s.last.Kind())

	case ":scope":
		fmt.Fprint(out, vm.Format(s.scope))

	case ":reset":
		s.scope = vm.EmptySet()
		s.last = vm.Nil
		fmt.Fprintln(out, "scope cleared")

	case ":tokens":
		if err := writeTokens(out, arg); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}

	case ":tree":
		expr, err := compiler.Parse(arg)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			break
		}
		fmt.Fprint(out, compiler.Dump(expr))
		fmt.Fprintf(out, "hash: %s\n", hash.HexHash(expr))

	case ":stats":
		st := s.interp.Stats()
		fmt.Fprintf(out, "calls: %d, max depth: %d\n", st.Calls, st.MaxDepth)

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
	return false
}
