/*
Package expr implements the condition language used by dialog cases.

# Overview

An expression is parsed once into an immutable tree of Nodes and then
evaluated against a set of root bindings (normally ctx and sys) and a
Library of functions and constants. Evaluation produces a Value, a tagged
union of Null, Bool, Int, Float, String, Array and Object.

# Syntax

Operators, lowest binding first:

	||                 logical or (boolean operands, short-circuit)
	&&                 logical and (boolean operands, short-circuit)
	== !=              equality, any operands
	< <= > >=          ordering, numbers or strings
	..                 integer range, start inclusive, end exclusive
	+ -                addition, subtraction
	* / %              multiplication, division, remainder
	- !                prefix negation and logical not
	a.b                member access

Primaries:

	42  4.2            integer and float literals
	true false         boolean literals
	"text" 'text'      strings, no escape sequences
	ctx  MAX_INT       identifiers: root bindings, then constants
	array(1, 2)        array literal
	name(a, b)         function call
	( expr )           grouping

# Semantics

Arithmetic is numeric only. Mixing Int and Float promotes to Float.
Int division truncates, but division or remainder by zero produces the
IEEE result (Inf or NaN) instead of an error.

Equality compares numbers by value and everything else structurally.
Values of unrelated kinds are unequal rather than an error.

Reading a field of an object that does not have it, or of null, yields
null. Reading a field of any other kind is a type mismatch.

# Usage

	ev := expr.New(expr.WithLibrary(lib))
	v, err := ev.Evaluate("ctx.tier == 'gold' && 0..3 == array(0, 1, 2)", map[string]expr.Value{
	    "ctx": expr.FromStrings(map[string]string{"tier": "gold"}),
	})

# Errors

Parse failures and evaluation failures are *errors.Error values from the
dfs errors package, carrying the byte offset of the offending token.
*/
package expr
