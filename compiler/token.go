package compiler

import (
	"fmt"

	"github.com/chazu/nick/bits"
)

// ---------------------------------------------------------------------------
// Token types for the bit language lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError

	// TokenLiteral is a bit sequence: a word, a number or a quoted form.
	TokenLiteral

	// Punctuation
	TokenDollar    // $
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenEquals    // =
	TokenSemicolon // ;
	TokenColon     // :
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenError:     "ERROR",
	TokenLiteral:   "LITERAL",
	TokenDollar:    "$",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
	TokenEquals:    "=",
	TokenSemicolon: ";",
	TokenColon:     ":",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// punctuation maps single-character tokens to their types.
var punctuation = map[byte]TokenType{
	'$': TokenDollar,
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'=': TokenEquals,
	';': TokenSemicolon,
	':': TokenColon,
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Bits    bits.BitSeq // value of a literal token
	Literal string      // the raw source text
	Pos     Position    // start position
}

func (t Token) String() string {
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if t.Type != TokenLiteral {
		return t.Type.String()
	}
	lit := t.Literal
	if len(lit) > 20 {
		lit = lit[:20] + "..."
	}
	return fmt.Sprintf("%s(%q len=%d)", t.Type, lit, t.Bits.Len())
}
