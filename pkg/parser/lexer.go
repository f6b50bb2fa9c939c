package parser

import (
	"fmt"
	"iter"
	"strconv"
	"unicode/utf8"

	"github.com/sandrolain/gocalc/pkg/types"
)

const eof = -1

// Lexer converts an arithmetic expression into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
//
// Tokens are produced lazily by Next. The sequence is finite: after the input
// is exhausted every call returns TokenEOF, and after an error every call
// returns the same TokenError. Reset rewinds to the start of the input.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     *types.Error
	errTok  Token
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
func (l *Lexer) Next() Token {
	if l.err != nil {
		return l.errTok
	}

	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	if tt := lookupSymbol1(ch); tt > 0 {
		return l.newToken(tt)
	}

	if isDigit(ch) {
		l.backup()
		return l.scanNumber()
	}

	return l.error(types.ErrUnexpectedChar, fmt.Sprintf("unexpected character %q", ch))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// Reset rewinds the lexer to the beginning of its input and clears any error.
func (l *Lexer) Reset() {
	l.start = 0
	l.current = 0
	l.width = 0
	l.err = nil
	l.errTok = Token{}
}

// All returns an iterator over the tokens of the input, starting from the
// beginning. The final element is either the TokenEOF token with a nil error
// or a TokenError token paired with the lexing error.
func (l *Lexer) All() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		l.Reset()
		for {
			t := l.Next()
			switch t.Type {
			case TokenError:
				yield(t, l.Error())
				return
			case TokenEOF:
				yield(t, nil)
				return
			}
			if !yield(t, nil) {
				return
			}
		}
	}
}

// Tokenize returns all tokens of input, ending with TokenEOF.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	for t, err := range NewLexer(input).All() {
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// scanNumber reads a number literal from the current position.
// Format: [0-9]+(\.[0-9]+)?
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)

	isFloat := false
	if l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrMalformedNumber, "expected digit after decimal point")
		}
		isFloat = true
	}

	text := l.input[l.start:l.current]
	var err error
	if isFloat {
		_, err = strconv.ParseFloat(text, 64)
	} else {
		_, err = strconv.ParseInt(text, 10, 64)
	}
	if err != nil {
		return l.error(types.ErrNumberOutOfRange, fmt.Sprintf("number out of range: %s", text))
	}

	return l.newToken(TokenNumber)
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = types.NewError(code, message, t.Position).
		WithToken(t.Value).
		WithSource(l.input)
	l.errTok = t
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
