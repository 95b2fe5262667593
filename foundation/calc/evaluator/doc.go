// Package evaluator parses and evaluates programs of the integer assignment
// language in a single pass.
//
// A program is a sequence of assignments such as
//
//	x = 1 + 2 * 3;
//	y = -(x - 10) * 2;
//
// Values are 32-bit signed integers with wrapping arithmetic. A run either
// returns every binding or, on the first error, nothing.
package evaluator
