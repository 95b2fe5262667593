// File: token.go
// Title: Token Definitions
// Description: Token kinds of the assignment language and the Token value
//              produced by the scanner.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package scanner

import (
	"fmt"
	"strconv"
)

// Kind represents the kind of a lexical token
type Kind int

const (
	// Special tokens
	TokenEOF Kind = iota
	TokenIllegal

	// Identifiers and literals
	TokenIdentifier // x, total_2
	TokenLiteral    // 0, 42

	// Operators
	TokenAssign   // =
	TokenPlus     // +
	TokenMinus    // -
	TokenMultiply // *

	// Delimiters
	TokenSemicolon  // ;
	TokenLeftParen  // (
	TokenRightParen // )
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenIdentifier:
		return "IDENTIFIER"
	case TokenLiteral:
		return "LITERAL"
	case TokenAssign:
		return "ASSIGN"
	case TokenPlus:
		return "PLUS"
	case TokenMinus:
		return "MINUS"
	case TokenMultiply:
		return "MULTIPLY"
	case TokenSemicolon:
		return "SEMICOLON"
	case TokenLeftParen:
		return "LEFT_PAREN"
	case TokenRightParen:
		return "RIGHT_PAREN"
	default:
		return "UNKNOWN"
	}
}

// symbol returns the source text of single-character kinds
func (k Kind) symbol() string {
	switch k {
	case TokenAssign:
		return "="
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenMultiply:
		return "*"
	case TokenSemicolon:
		return ";"
	case TokenLeftParen:
		return "("
	case TokenRightParen:
		return ")"
	default:
		return ""
	}
}

// Position locates a token in the source
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column in runes (1-based)
}

// String returns line:column
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is one lexical unit. Identifiers carry their name in Text, literals
// their value in Value. Illegal tokens keep the offending source text in Text.
type Token struct {
	Kind  Kind
	Text  string
	Value int32
	Pos   Position
}

// Ident creates an identifier token
func Ident(name string) Token {
	return Token{Kind: TokenIdentifier, Text: name}
}

// Lit creates a literal token
func Lit(value int32) Token {
	return Token{Kind: TokenLiteral, Value: value}
}

// Of creates a token of a payload-free kind
func Of(kind Kind) Token {
	return Token{Kind: kind}
}

// Equal compares kind and payload. Positions and the text of illegal
// tokens are not compared.
func (t Token) Equal(other Token) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TokenIdentifier:
		return t.Text == other.Text
	case TokenLiteral:
		return t.Value == other.Value
	default:
		return true
	}
}

// Lexeme returns the source text the token stands for
func (t Token) Lexeme() string {
	switch t.Kind {
	case TokenIdentifier, TokenIllegal:
		return t.Text
	case TokenLiteral:
		return strconv.FormatInt(int64(t.Value), 10)
	case TokenEOF:
		return ""
	default:
		return t.Kind.symbol()
	}
}

// String returns a description suitable for error messages
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of input"
	case TokenIdentifier:
		return fmt.Sprintf("identifier %q", t.Text)
	case TokenLiteral:
		return fmt.Sprintf("literal %d", t.Value)
	case TokenIllegal:
		return fmt.Sprintf("illegal token %q", t.Text)
	default:
		return "'" + t.Kind.symbol() + "'"
	}
}
