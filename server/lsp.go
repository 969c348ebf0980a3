package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/nick/bits"
	"github.com/chazu/nick/compiler"
	"github.com/chazu/nick/vm"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "nick-lsp"

// DefaultLSPMaxDepth bounds evaluation of open documents. It is lower than
// the interpreter default so diagnostics stay responsive while typing.
const DefaultLSPMaxDepth = 2000

var log = commonlog.GetLogger("nick.lsp")

// LspServer publishes diagnostics and hover information for nick source
// files. Documents are parsed on every change and, when they parse, evaluated
// through a Worker so runtime errors show up as warnings.
type LspServer struct {
	worker *Worker

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server. maxDepth bounds document evaluation;
// zero or less selects DefaultLSPMaxDepth.
func NewLSP(maxDepth int) *LspServer {
	if maxDepth <= 0 {
		maxDepth = DefaultLSPMaxDepth
	}
	interp := vm.NewInterpreter()
	interp.MaxDepth = maxDepth

	s := &LspServer{
		worker:  NewWorker(interp),
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover: s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "nick LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Hover ---

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.mu.Lock()
	text, ok := s.docs[string(params.TextDocument.URI)]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}
	return hover(text, params.Position), nil
}

var punctuationRoles = map[compiler.TokenType]string{
	compiler.TokenDollar:    "**$** scope reference: the current scope as a set",
	compiler.TokenLParen:    "**(** group start",
	compiler.TokenRParen:    "**)** group end",
	compiler.TokenLBrace:    "**{** set constructor start",
	compiler.TokenRBrace:    "**}** set constructor end",
	compiler.TokenEquals:    "**=** separates a set entry's key from its value",
	compiler.TokenSemicolon: "**;** ends a set statement",
	compiler.TokenColon:     "**:** function constructor: `pattern : body`",
}

// hover describes the token under pos.
func hover(text string, pos protocol.Position) *protocol.Hover {
	tok, ok := tokenAt(text, offsetOf(text, pos))
	if !ok {
		return nil
	}

	var value string
	switch tok.Type {
	case compiler.TokenLiteral:
		value = describeLiteral(tok.Bits)
	case compiler.TokenError:
		value = "**error** " + tok.Literal
	default:
		value = punctuationRoles[tok.Type]
	}
	if value == "" {
		return nil
	}

	rng := tokenRange(text, tok)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
		Range: &rng,
	}
}

func describeLiteral(b bits.BitSeq) string {
	r := vm.Inspect(vm.BitsOf(b))

	var sb strings.Builder
	fmt.Fprintf(&sb, "**literal** %d bits\n\n", r.Size)
	fmt.Fprintf(&sb, "- bits: %s\n", r.Value)
	if r.Hex != "" {
		fmt.Fprintf(&sb, "- hex: `%s`\n", r.Hex)
	}
	if b.Len() <= 64 {
		fmt.Fprintf(&sb, "- integer: %d\n", bits.Decode(b))
	}
	if r.Text != "" {
		fmt.Fprintf(&sb, "- text: %q\n", r.Text)
	}
	return sb.String()
}

// tokenAt returns the token covering byte offset off.
func tokenAt(text string, off int) (compiler.Token, bool) {
	l := compiler.NewLexer(text)
	for {
		tok := l.NextToken()
		if tok.Type == compiler.TokenEOF || tok.Pos.Offset > off {
			return compiler.Token{}, false
		}
		if off < tok.Pos.Offset+len(tok.Literal) {
			return tok, true
		}
	}
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := s.diagnose(text)
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnose parses text and, if it parses, evaluates it. Syntax errors are
// reported as errors and evaluation failures as warnings.
func (s *LspServer) diagnose(text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	expr, err := compiler.Parse(text)
	if err != nil {
		var se *compiler.SyntaxError
		if errors.As(err, &se) {
			diagnostics = append(diagnostics, diagnostic(se.Pos, protocol.DiagnosticSeverityError, se.Msg))
		}
		return diagnostics
	}

	result, err := s.worker.Do(func(in *vm.Interpreter) interface{} {
		_, evalErr := in.Eval(expr, vm.EmptySet())
		return evalErr
	})
	if err != nil {
		log.Errorf("evaluation worker: %v", err)
		return diagnostics
	}

	var ee *vm.EvalError
	if evalErr, _ := result.(error); errors.As(evalErr, &ee) {
		msg := ee.Kind.Error()
		if ee.Detail != "" {
			msg += ": " + ee.Detail
		}
		diagnostics = append(diagnostics, diagnostic(ee.Pos, protocol.DiagnosticSeverityWarning, msg))
	}
	return diagnostics
}

func diagnostic(pos compiler.Position, severity protocol.DiagnosticSeverity, msg string) protocol.Diagnostic {
	source := lspName
	p := lspPosition(pos)
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: p, End: p},
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}
}

// --- Position conversion ---

// lspPosition converts a 1-based source position to a 0-based LSP position.
// An unknown position maps to the start of the document.
func lspPosition(pos compiler.Position) protocol.Position {
	if pos.Line == 0 {
		return protocol.Position{}
	}
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(pos.Column - 1),
	}
}

// offsetOf converts an LSP position to a byte offset in text. Characters
// are counted as runes; positions past a line's end clamp to it.
func offsetOf(text string, pos protocol.Position) int {
	off := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		i := strings.IndexByte(text[off:], '\n')
		if i < 0 {
			return len(text)
		}
		off += i + 1
	}
	for ch := protocol.UInteger(0); ch < pos.Character && off < len(text) && text[off] != '\n'; ch++ {
		_, size := utf8.DecodeRuneInString(text[off:])
		off += size
	}
	return off
}

func tokenRange(text string, tok compiler.Token) protocol.Range {
	start := lspPosition(tok.Pos)
	end := start
	for _, r := range tok.Literal {
		if r == '\n' {
			end.Line++
			end.Character = 0
		} else {
			end.Character++
		}
	}
	return protocol.Range{Start: start, End: end}
}

func boolPtr(b bool) *bool {
	return &b
}
