package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandrolain/gocalc/pkg/types"
)

// Parser implements a precedence-climbing parser for arithmetic expressions.
// It follows Pratt's "Top Down Operator Precedence" scheme: prefix positions
// dispatch on the current token, infix positions loop while the next operator
// binds tighter than the caller's right binding power.
type Parser struct {
	lexer   *Lexer
	current Token
	opts    CompileOptions
	arena   *types.NodeArena
	depth   int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultMaxDepth
	}

	p := &Parser{
		lexer: NewLexer(input),
		opts:  options,
		arena: types.NewNodeArena(),
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire expression and returns it.
func (p *Parser) Parse() (*types.Expression, error) {
	if p.current.Type == TokenEOF {
		return nil, p.error(types.ErrEmptyExpression, TokenNumber.String())
	}

	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	switch p.current.Type {
	case TokenEOF:
	case TokenParenClose:
		return nil, p.errorf(types.ErrUnmatchedParen, TokenEOF.String(), "unmatched %s", p.current.Type)
	default:
		return nil, p.error(types.ErrUnexpectedToken, "operator")
	}

	return types.NewExpressionWithArena(node, p.lexer.input, p.arena), nil
}

// Binding powers. Higher values bind more tightly.
const (
	bpAdditive       = 50 // + -
	bpMultiplicative = 60 // * / %
	bpPrefix         = 70 // unary - +
)

// precedence is the infix binding power of each operator token.
var precedence = [...]int{
	TokenPlus:  bpAdditive,
	TokenMinus: bpAdditive,
	TokenMult:  bpMultiplicative,
	TokenDiv:   bpMultiplicative,
	TokenMod:   bpMultiplicative,
}

// getPrecedence returns the infix precedence of a token type, 0 if the token
// cannot continue an expression.
func (p *Parser) getPrecedence(tt TokenType) int {
	if int(tt) < len(precedence) {
		return precedence[tt]
	}
	return 0
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

// expect checks if the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.error(types.ErrExpectedToken, tt.String())
	}
	p.advance()
	return nil
}

// error creates a parser error naming what was expected and what was found.
// A pending lexer error takes precedence: it is the real cause.
func (p *Parser) error(code types.ErrorCode, expected string) error {
	return p.errorf(code, expected, "expected %s but found %s", expected, describe(p.current))
}

func (p *Parser) errorf(code types.ErrorCode, expected, format string, args ...any) error {
	if p.current.Type == TokenError {
		return p.lexer.Error()
	}
	return types.NewError(code, fmt.Sprintf(format, args...), p.current.Position).
		WithToken(p.current.String()).
		WithExpected(expected).
		WithSource(p.lexer.input)
}

// describe names a token for error messages.
func describe(t Token) string {
	switch t.Type {
	case TokenNumber:
		return "number " + t.Value
	case TokenEOF:
		return "end of input"
	default:
		return strconv.Quote(t.Value)
	}
}

// enter tracks nesting depth and fails once it exceeds MaxDepth. Only
// parentheses and prefix signs nest; right operands of infix operators do
// not count.
func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		return p.errorf(types.ErrNestingTooDeep, "", "expression nested more than %d levels deep", p.opts.MaxDepth)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// parseExpression parses an expression with operator precedence.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) (*types.Node, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	// Operators of equal precedence stop the inner call, which makes every
	// level left-associative.
	for rbp < p.getPrecedence(p.current.Type) {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parsePrefix parses an expression that does not need a left-hand side.
func (p *Parser) parsePrefix() (*types.Node, error) {
	switch p.current.Type {
	case TokenNumber:
		return p.parseNumber()
	case TokenParenOpen:
		return p.parseGrouping()
	case TokenMinus, TokenPlus:
		return p.parseUnary()
	case TokenEOF:
		return nil, p.error(types.ErrUnexpectedEnd, TokenNumber.String())
	default:
		return nil, p.error(types.ErrUnexpectedToken, TokenNumber.String())
	}
}

// parseInfix parses a binary operator and its right operand.
func (p *Parser) parseInfix(left *types.Node) (*types.Node, error) {
	token := p.current
	prec := p.getPrecedence(token.Type)
	p.advance()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	node := p.arena.Alloc(types.NodeBinary, token.Position)
	node.Op = token.Value[0]
	node.LHS = left
	node.RHS = right
	return node, nil
}

// parseNumber parses an integer or decimal literal.
func (p *Parser) parseNumber() (*types.Node, error) {
	token := p.current

	var value types.Value
	if strings.IndexByte(token.Value, '.') >= 0 {
		f, err := strconv.ParseFloat(token.Value, 64)
		if err != nil {
			return nil, types.NewError(types.ErrNumberOutOfRange, "number out of range: "+token.Value, token.Position).
				WithToken(token.Value).
				WithCause(err).
				WithSource(p.lexer.input)
		}
		value = types.Float(f)
	} else {
		i, err := strconv.ParseInt(token.Value, 10, 64)
		if err != nil {
			return nil, types.NewError(types.ErrNumberOutOfRange, "number out of range: "+token.Value, token.Position).
				WithToken(token.Value).
				WithCause(err).
				WithSource(p.lexer.input)
		}
		value = types.Int(i)
	}

	p.advance()

	node := p.arena.Alloc(types.NodeLiteral, token.Position)
	node.Value = value
	return node, nil
}

// parseGrouping parses a parenthesised expression. Parentheses produce no
// node of their own.
func (p *Parser) parseGrouping() (*types.Node, error) {
	open := p.current
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	p.advance()

	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type == TokenEOF {
		return nil, p.errorf(types.ErrUnmatchedParen, TokenParenClose.String(),
			"expected %s to match ( at position %d but found end of input", TokenParenClose, open.Position)
	}
	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	return node, nil
}

// parseUnary parses a prefix sign.
func (p *Parser) parseUnary() (*types.Node, error) {
	token := p.current
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	p.advance()

	operand, err := p.parseExpression(bpPrefix)
	if err != nil {
		return nil, err
	}

	node := p.arena.Alloc(types.NodeUnary, token.Position)
	node.Op = token.Value[0]
	node.LHS = operand
	return node, nil
}
