// nick CLI - evaluates programs in the bit language
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/nick/cache"
	"github.com/chazu/nick/manifest"
	"github.com/chazu/nick/server"
	"github.com/chazu/nick/vm"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("nick")

func main() {
	expr := flag.String("e", "", "Evaluate the given expression instead of a file")
	showTokens := flag.Bool("tokens", false, "Print the token stream before the result")
	showTree := flag.Bool("tree", false, "Print the parse tree and its hash before the result")
	format := flag.String("format", "", "Output format: inspect, hex or cbor (default from nick.toml, else inspect)")
	maxDepth := flag.Int("max-depth", 0, "Evaluation depth limit (default from nick.toml)")
	configPath := flag.String("config", "", "Path to nick.toml (default: search upward from the working directory)")
	verbose := flag.Bool("v", false, "Verbose (debug) logging")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	lspMode := flag.Bool("lsp", false, "Start the language server on stdio")
	noCache := flag.Bool("no-cache", false, "Do not read or write the result cache")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nick [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Evaluates one expression and prints the resulting value.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  nick prog.nick             # Evaluate a file\n")
		fmt.Fprintf(os.Stderr, "  nick -e '{a; b} (v: $ v)'  # Evaluate an expression\n")
		fmt.Fprintf(os.Stderr, "  nick -tokens -tree prog.nick\n")
		fmt.Fprintf(os.Stderr, "  nick -i                    # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  nick -lsp                  # Language server for editors\n")
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override the manifest.
	if *format != "" {
		if !manifest.ValidFormat(*format) {
			fmt.Fprintf(os.Stderr, "Error: unknown output format %q\n", *format)
			os.Exit(2)
		}
		cfg.Output.Format = *format
	}
	if *maxDepth > 0 {
		cfg.Eval.MaxDepth = *maxDepth
	}
	if *verbose {
		cfg.Log.Verbosity = 2
	}

	configureLogging(cfg)

	if *lspMode {
		srv := server.NewLSP(cfg.Eval.MaxDepth)
		if err := srv.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	interp := vm.NewInterpreter()
	interp.MaxDepth = cfg.Eval.MaxDepth

	r := &runner{
		interp:     interp,
		format:     cfg.Output.Format,
		showTokens: *showTokens,
		showTree:   *showTree,
		out:        os.Stdout,
	}

	var src string
	switch {
	case *expr != "":
		src = *expr
	case flag.NArg() == 1:
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		src = string(data)
	case flag.NArg() > 1:
		flag.Usage()
		os.Exit(2)
	}

	if *interactive || (*expr == "" && flag.NArg() == 0) {
		runREPL(r)
		return
	}

	if path := cfg.CachePath(); path != "" && !*noCache {
		c, err := cache.Open(path)
		if err != nil {
			log.Warningf("result cache disabled: %v", err)
		} else {
			defer c.Close()
			r.cache = c
		}
	}

	if err := r.run(src); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if r.cache != nil {
			r.cache.Close()
		}
		os.Exit(1)
	}
}

// loadConfig reads the manifest named by path, or the nearest nick.toml
// above the working directory, or falls back to the defaults.
func loadConfig(path string) (*manifest.Manifest, error) {
	if path != "" {
		return manifest.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return manifest.Default(), nil
	}
	m, err := manifest.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return manifest.Default(), nil
	}
	return m, nil
}

func configureLogging(cfg *manifest.Manifest) {
	var path *string
	if f := cfg.LogFile(); f != "" {
		path = &f
	}
	commonlog.Configure(cfg.Log.Verbosity, path)
}
