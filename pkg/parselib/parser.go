// Package parselib is a small backtracking parser-combinator library.
//
// Parsers work over an immutable Cursor of comparable elements and thread an
// opaque state value of type S that the library itself never inspects.
//
// Failures follow a commit protocol. A parser built with NewParser turns a clean
// failure into a committed one when the failure reports a cursor different from the
// one the parser was called with, i.e. when input was consumed before the mismatch.
// Choice and Many only recover from clean failures, so once a production has consumed
// input its failure propagates. Attempt restores backtracking for a single parser.
package parselib

// Result is what a parser produces on success.
type Result[V any, S any, E comparable] struct {
	Value V
	State S
	Rest  Cursor[E]
}

// Parser is a composable parsing capability.
type Parser[V any, S any, E comparable] interface {
	Parse(state S, in Cursor[E]) (Result[V, S, E], error)
}

// ParserFunc is a raw parsing function. It implements Parser without any
// reclassification of failures; use NewParser or NewBacktrackParser to choose a policy.
type ParserFunc[V any, S any, E comparable] func(state S, in Cursor[E]) (Result[V, S, E], error)

func (f ParserFunc[V, S, E]) Parse(state S, in Cursor[E]) (Result[V, S, E], error) {
	return f(state, in)
}

// NewParser wraps fn with the commit-on-consume policy: a clean failure whose reported
// cursor differs from the entry cursor is returned as committed.
func NewParser[V any, S any, E comparable](fn ParserFunc[V, S, E]) Parser[V, S, E] {
	return committing[V, S, E]{fn: fn}
}

type committing[V any, S any, E comparable] struct {
	fn ParserFunc[V, S, E]
}

func (p committing[V, S, E]) Parse(state S, in Cursor[E]) (Result[V, S, E], error) {
	res, err := p.fn(state, in)
	if err == nil {
		return res, nil
	}
	f, ok := err.(*Failure[E])
	if !ok {
		return res, err
	}
	switch f.Kind {
	case Clean:
		if f.Remaining.Equal(in) {
			return res, err
		}
		return res, &Failure[E]{Kind: Committed, Remaining: f.Remaining}
	default:
		return res, err
	}
}

// NewBacktrackParser wraps fn with the always-backtrackable policy: failures are
// returned exactly as fn reported them.
func NewBacktrackParser[V any, S any, E comparable](fn ParserFunc[V, S, E]) Parser[V, S, E] {
	return fn
}

// Attempt downgrades a committed failure from p to a clean failure reporting the
// cursor Attempt was called with, so an enclosing Choice may try other alternatives.
func Attempt[V any, S any, E comparable](p Parser[V, S, E]) Parser[V, S, E] {
	return ParserFunc[V, S, E](func(state S, in Cursor[E]) (Result[V, S, E], error) {
		res, err := p.Parse(state, in)
		if f, ok := err.(*Failure[E]); ok && f.Kind == Committed {
			return Result[V, S, E]{}, NoMatch(in)
		}
		return res, err
	})
}
