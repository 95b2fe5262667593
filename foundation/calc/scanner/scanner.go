// File: scanner.go
// Title: Lexical Scanner
// Description: Converts program text into tokens on demand. The scanner
//              never fails: text it cannot classify becomes an illegal token
//              and is left for the evaluator to reject.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package scanner

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

const eof rune = -1

// Scanner produces tokens from a source string one NextToken call at a time
type Scanner struct {
	input  string
	offset int // byte offset of the next unread rune
	line   int
	column int
}

// New creates a scanner positioned at the start of input
func New(input string) *Scanner {
	return &Scanner{
		input:  input,
		line:   1,
		column: 1,
	}
}

// NextToken returns the next token. Once the input is exhausted every call
// returns an EOF token at the end position.
func (s *Scanner) NextToken() Token {
	s.skipWhitespace()

	pos := s.position()
	r := s.peek()

	switch {
	case r == eof:
		return Token{Kind: TokenEOF, Pos: pos}
	case isIdentStart(r):
		return s.readIdentifier(pos)
	case isDigit(r):
		return s.readLiteral(pos)
	}

	s.readRune()

	var kind Kind
	switch r {
	case '=':
		kind = TokenAssign
	case '+':
		kind = TokenPlus
	case '-':
		kind = TokenMinus
	case '*':
		kind = TokenMultiply
	case ';':
		kind = TokenSemicolon
	case '(':
		kind = TokenLeftParen
	case ')':
		kind = TokenRightParen
	default:
		return Token{Kind: TokenIllegal, Text: s.input[pos.Offset:s.offset], Pos: pos}
	}
	return Token{Kind: kind, Pos: pos}
}

// Tokenize scans input completely. The result ends with exactly one EOF token.
func Tokenize(input string) []Token {
	s := New(input)
	var tokens []Token
	for {
		tok := s.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

func (s *Scanner) readIdentifier(pos Position) Token {
	for isIdentPart(s.peek()) {
		s.readRune()
	}
	return Token{Kind: TokenIdentifier, Text: s.input[pos.Offset:s.offset], Pos: pos}
}

func (s *Scanner) readLiteral(pos Position) Token {
	for isDigit(s.peek()) {
		s.readRune()
	}
	text := s.input[pos.Offset:s.offset]

	if len(text) > 1 && text[0] == '0' {
		return Token{Kind: TokenIllegal, Text: text, Pos: pos}
	}
	value, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return Token{Kind: TokenIllegal, Text: text, Pos: pos}
	}
	return Token{Kind: TokenLiteral, Value: int32(value), Pos: pos}
}

func (s *Scanner) skipWhitespace() {
	for {
		r := s.peek()
		if r == eof || !unicode.IsSpace(r) {
			return
		}
		s.readRune()
	}
}

func (s *Scanner) position() Position {
	return Position{Offset: s.offset, Line: s.line, Column: s.column}
}

func (s *Scanner) peek() rune {
	if s.offset >= len(s.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(s.input[s.offset:])
	return r
}

func (s *Scanner) readRune() {
	if s.offset >= len(s.input) {
		return
	}
	r, width := utf8.DecodeRuneInString(s.input[s.offset:])
	s.offset += width
	if r == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// isDigit accepts ASCII digits only; other Unicode digits are illegal
func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
