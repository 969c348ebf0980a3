package compiler

import (
	"fmt"

	"github.com/chazu/nick/bits"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent over a token slice
// ---------------------------------------------------------------------------
//
// Every operand in a group is folded left into a Combine chain, so
// `a b c` is Combine(Combine(a, b), c). `:` turns the operand before it
// into a function pattern and everything after it, up to the next
// terminator, into the body. `;`, `=`, `)` and `}` end a group without
// being consumed.

// MaxNesting bounds how deeply parentheses, sets and function bodies may
// nest in source.
const MaxNesting = 10000

// Parser parses a token slice into an expression tree.
type Parser struct {
	tokens []Token
}

// NewParser creates a parser for the given tokens. The slice must end with
// a TokenEOF token, as returned by Tokenize.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes and parses a complete source text.
func Parse(input string) (Expr, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens parses a complete token slice.
func ParseTokens(tokens []Token) (Expr, error) {
	return NewParser(tokens).ParseExpression()
}

// ParseExpression parses the whole input as one expression. A terminator
// with nothing to close is an error.
func (p *Parser) ParseExpression() (Expr, error) {
	e, i, err := p.group(0, 0)
	if err != nil {
		return nil, err
	}
	if tok := p.tokens[i]; tok.Type != TokenEOF {
		return nil, p.errorAt(tok.Pos, false, "unexpected %s", tok.Type)
	}
	return e, nil
}

func (p *Parser) errorAt(pos Position, incomplete bool, format string, args ...interface{}) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...), Incomplete: incomplete}
}

func (p *Parser) tooDeep(i int) error {
	if i >= len(p.tokens) {
		i = len(p.tokens) - 1
	}
	return &SyntaxError{
		Pos: p.tokens[i].Pos,
		Msg: fmt.Sprintf("nesting deeper than %d levels", MaxNesting),
		Err: ErrResourceExhausted,
	}
}

// group parses a chain of operands starting at index start. It returns the
// tree and the index of the token that ended it.
func (p *Parser) group(start, depth int) (Expr, int, error) {
	if depth > MaxNesting {
		return nil, 0, p.tooDeep(start)
	}

	var branch Expr

	operate := func(t Expr, pos Position) {
		if branch == nil {
			branch = t
			return
		}
		branch = &Combine{
			SpanVal: makeSpan(branch.Span().Start, spanOf(t, pos).End),
			Left:    branch,
			Right:   t,
		}
	}

	for i := start; i < len(p.tokens); i++ {
		tok := p.tokens[i]

		switch tok.Type {
		case TokenLiteral:
			operate(&Literal{SpanVal: tokenSpan(tok), Value: tok.Bits}, tok.Pos)

		case TokenDollar:
			operate(&ScopeRef{SpanVal: tokenSpan(tok)}, tok.Pos)

		case TokenEOF, TokenSemicolon, TokenEquals, TokenRParen, TokenRBrace:
			return branch, i, nil

		case TokenLParen:
			sub, j, err := p.group(i+1, depth+1)
			if err != nil {
				return nil, 0, err
			}
			switch end := p.tokens[j]; end.Type {
			case TokenRParen:
			case TokenEOF:
				return nil, 0, p.errorAt(tok.Pos, true, "unclosed '('")
			default:
				return nil, 0, p.errorAt(end.Pos, false, "expected ')', got %s", end.Type)
			}
			i = j
			operate(sub, tok.Pos)

		case TokenLBrace:
			set, j, err := p.groupSet(i+1, depth+1)
			if err != nil {
				return nil, 0, err
			}
			i = j
			operate(set, tok.Pos)

		case TokenColon:
			var pattern Expr
			if c, ok := branch.(*Combine); ok {
				pattern = c.Right
				branch = c.Left
			} else {
				pattern = branch
				branch = nil
			}

			body, j, err := p.group(i+1, depth+1)
			if err != nil {
				return nil, 0, err
			}
			// Leave the terminator for this loop to see.
			i = j - 1

			fnStart := tok.Pos
			if pattern != nil {
				fnStart = pattern.Span().Start
			}
			operate(&FunctionConstructor{
				SpanVal: makeSpan(fnStart, spanOf(body, p.tokens[j].Pos).End),
				Pattern: pattern,
				Body:    body,
			}, fnStart)

		default:
			return nil, 0, p.errorAt(tok.Pos, false, "unexpected %s", tok)
		}
	}

	return branch, len(p.tokens) - 1, nil
}

// groupSet parses the statements of a set literal starting just after its
// '{'. It returns the constructor and the index of the closing '}'.
func (p *Parser) groupSet(start, depth int) (Expr, int, error) {
	open := p.tokens[start-1]
	if depth > MaxNesting {
		return nil, 0, p.tooDeep(start - 1)
	}

	var entries []SetEntry
	var key Expr
	var index uint64

	i := start
	for {
		value, j, err := p.group(i, depth)
		if err != nil {
			return nil, 0, err
		}
		tok := p.tokens[j]

		switch tok.Type {
		case TokenEOF:
			return nil, 0, p.errorAt(open.Pos, true, "unterminated set")

		case TokenRParen:
			return nil, 0, p.errorAt(tok.Pos, false, "unexpected ')' in set")

		case TokenEquals:
			if value == nil {
				return nil, 0, p.errorAt(tok.Pos, false, "missing key before '='")
			}
			key = value

		case TokenSemicolon, TokenRBrace:
			if value != nil {
				if key == nil {
					key = &Literal{
						SpanVal: Span{Start: value.Span().Start, End: value.Span().Start},
						Value:   bits.Encode(index),
					}
					index++
				}
				entries = append(entries, SetEntry{Key: key, Value: value})
			}
			key = nil
		}

		if tok.Type == TokenRBrace {
			return &SetConstructor{
				SpanVal: makeSpan(open.Pos, endOf(tok)),
				Entries: entries,
			}, j, nil
		}
		i = j + 1
	}
}

func tokenSpan(tok Token) Span {
	return makeSpan(tok.Pos, endOf(tok))
}

func endOf(tok Token) Position {
	end := tok.Pos
	end.Offset += len(tok.Literal)
	end.Column += len([]rune(tok.Literal))
	return end
}

func makeSpan(start, end Position) Span {
	return Span{Start: start, End: end}
}
