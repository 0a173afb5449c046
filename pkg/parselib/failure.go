package parselib

import (
	"errors"
	"fmt"
)

// FailureKind classifies a parse failure.
type FailureKind int

const (
	// Clean means no consumption is attributable to the caller; a choice may try its next alternative.
	Clean FailureKind = iota
	// Committed means input was consumed before the failure; sibling alternatives are not tried.
	Committed
	// Leftover is reported by RunAll when the parse succeeded but input remained.
	Leftover
)

func (k FailureKind) String() string {
	switch k {
	case Clean:
		return "clean"
	case Committed:
		return "committed"
	case Leftover:
		return "leftover"
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

// Sentinel errors for classifying failures with errors.Is.
var (
	ErrNoMatch       = errors.New("no match")
	ErrCommitted     = errors.New("committed parse failed")
	ErrLeftoverInput = errors.New("input not fully consumed")
)

// Failure is the error returned by a parser that did not match.
type Failure[E comparable] struct {
	Kind FailureKind
	// Remaining is the cursor reported by whoever raised the failure. For a clean
	// failure this is not necessarily the cursor the failing parser was called with.
	Remaining Cursor[E]
}

func (f *Failure[E]) Error() string {
	return fmt.Sprintf("%s at offset %d (%d remaining)", f.sentinel(), f.Remaining.Offset(), f.Remaining.Len())
}

// Is makes errors.Is match the sentinel corresponding to the failure kind.
func (f *Failure[E]) Is(target error) bool {
	return target == f.sentinel()
}

func (f *Failure[E]) sentinel() error {
	switch f.Kind {
	case Committed:
		return ErrCommitted
	case Leftover:
		return ErrLeftoverInput
	}
	return ErrNoMatch
}

// NoMatch returns a clean failure reporting the given cursor.
func NoMatch[E comparable](at Cursor[E]) error {
	return &Failure[E]{Kind: Clean, Remaining: at}
}

// AsFailure extracts a *Failure from err, following wrapped errors.
func AsFailure[E comparable](err error) (*Failure[E], bool) {
	var f *Failure[E]
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// ZeroProgressError is the panic value raised when a repeated parser succeeds without
// consuming input. It signals a malformed grammar, never a parse outcome.
type ZeroProgressError struct {
	Offset int
}

func (e ZeroProgressError) Error() string {
	return fmt.Sprintf("parselib: repeated parser succeeded without consuming input at offset %d", e.Offset)
}
