package compiler

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chazu/nick/bits"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for the bit language
// ---------------------------------------------------------------------------

// Lexer splits source text into tokens.
//
// Words are runs of ordinary characters and become their UTF-8 bytes. A run
// of decimal digits at the start of a word is a number and becomes its
// minimal bit encoding. Quoted forms produce literals directly: "..." is
// text, '...' is hex and `...` lists individual bits. A backslash makes the
// next character ordinary. '#' opens and closes a comment.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Tokenize scans the whole input. The returned slice always ends with a
// TokenEOF token.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenError {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: tok.Literal}
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
		l.readPos = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.position()
	if l.atEOF() {
		return Token{Type: TokenEOF, Pos: pos}
	}

	if typ, ok := punctuation[byte(l.ch)]; ok && l.ch < utf8.RuneSelf {
		lit := string(l.ch)
		l.readChar()
		return Token{Type: typ, Literal: lit, Pos: pos}
	}

	switch {
	case isQuote(l.ch):
		return l.readQuoted(pos)
	case isDigit(l.ch):
		return l.readNumber(pos)
	default:
		return l.readWord(pos)
	}
}

// skipWhitespaceAndComments skips separators. A comment runs from '#' to
// the next unescaped '#' or to the end of input.
func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEOF() {
		switch {
		case isWhitespace(l.ch):
			l.readChar()
		case l.ch == '#':
			l.readChar()
			for !l.atEOF() && l.ch != '#' {
				if l.ch == '\\' {
					l.readChar()
				}
				l.readChar()
			}
			l.readChar()
		default:
			return
		}
	}
}

// readWord reads a run of ordinary characters.
func (l *Lexer) readWord(pos Position) Token {
	var sb strings.Builder
	for !l.atEOF() {
		if l.ch == '\\' {
			l.readChar()
			if l.atEOF() {
				break
			}
		} else if isSeparator(l.ch) {
			break
		}
		sb.WriteString(l.input[l.pos:l.readPos])
		l.readChar()
	}
	if sb.Len() == 0 {
		// A lone escape at the end of input.
		return Token{Type: TokenEOF, Pos: l.position()}
	}
	return Token{
		Type:    TokenLiteral,
		Bits:    bits.FromString(sb.String()),
		Literal: l.input[pos.Offset:l.pos],
		Pos:     pos,
	}
}

// readNumber reads a run of decimal digits. Digits that follow other
// ordinary characters are part of a word instead.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	for !l.atEOF() && isDigit(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	x, err := strconv.ParseUint(lit, 10, 64)
	if err != nil {
		return Token{Type: TokenError, Literal: "number literal out of range: " + lit, Pos: pos}
	}
	return Token{Type: TokenLiteral, Bits: bits.Encode(x), Literal: lit, Pos: pos}
}

// readQuoted reads a quoted form up to its matching delimiter. An
// unterminated form runs to the end of input.
func (l *Lexer) readQuoted(pos Position) Token {
	delim := l.ch
	l.readChar()

	var sb strings.Builder
	for !l.atEOF() {
		if l.ch == '\\' {
			l.readChar()
			if l.atEOF() {
				break
			}
		} else if l.ch == delim {
			l.readChar()
			break
		}
		sb.WriteString(l.input[l.pos:l.readPos])
		l.readChar()
	}

	body := sb.String()
	var value bits.BitSeq
	switch delim {
	case '"':
		value = bits.FromString(body)
	case '\'':
		value = decodeHexPrefix(body)
	case '`':
		value = bits.FromDigits(body)
	}
	return Token{Type: TokenLiteral, Bits: value, Literal: l.input[pos.Offset:l.pos], Pos: pos}
}

// decodeHexPrefix decodes byte pairs up to the first invalid character.
func decodeHexPrefix(s string) bits.BitSeq {
	buf := make([]byte, len(s)/2)
	n, _ := hex.Decode(buf, []byte(s))
	return bits.FromBytes(buf[:n])
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isQuote(r rune) bool {
	return r == '"' || r == '\'' || r == '`'
}

// isSeparator reports whether r ends a word.
func isSeparator(r rune) bool {
	if isWhitespace(r) || isQuote(r) || r == '#' {
		return true
	}
	_, ok := punctuation[byte(r)]
	return ok && r < utf8.RuneSelf
}
