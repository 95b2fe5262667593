// File: doc.go
// Title: Scanner Package Documentation
// Description: Lexical analysis for the integer assignment language.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19

/*
Package scanner turns program text into tokens.

Tokens are produced lazily, one per NextToken call. Whitespace separates
tokens and is otherwise ignored. Recognized tokens:

	identifier   letter or '_' followed by letters, digits or '_'
	literal      decimal digits without a leading zero, fitting int32
	= + - * ; ( )

Anything else, including literals like 007 or 2147483648, becomes an
ILLEGAL token. After the input is exhausted the scanner returns EOF
forever.
*/
package scanner
