// File: doc.go
// Title: Calc Package Documentation
// Description: Integer assignment language: scanner, evaluator and engine.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19

/*
Package calc evaluates programs written in a small assignment language.

	x = 1 + 2 * 3;
	y = (x - 5) * -2;

The language knows 32-bit integers, the operators + - * with the usual
precedence, parentheses, unary + and -, and variables. A program is a
sequence of assignments; the result is the final value of every variable.

The work is split across three packages:

  - scanner turns source text into tokens on demand
  - evaluator parses and evaluates in a single recursive-descent pass
  - calc (this package) adds limits, logging and mdwerror codes

Usage:

	engine, err := calc.New(calc.Options{Logger: logger})
	if err != nil {
		return err
	}
	result, err := engine.Evaluate(ctx, "x = 1 + 2 * 3;")
	if err != nil {
		return err
	}
	fmt.Println(result.Bindings["x"]) // 7
*/
package calc
