package parser

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// Fatal error classes. They indicate a bug in the scanner, the tables or the
// reduction actions, never bad input: bad input produces diagnostics.
var (
	ErrScanner = errors.New("scanner produced an unknown token kind")
	ErrTables  = errors.New("inconsistent parsing tables")
	ErrAction  = errors.New("reduction action failed")
)

// FatalError aborts a parse.
type FatalError struct {
	Class error // ErrScanner, ErrTables or ErrAction
	State int
	Span  token.Span
	Err   error // underlying cause, may be nil
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s in state %d at %s: %s", e.Class, e.State, e.Span, e.Err)
	}
	return fmt.Sprintf("%s in state %d at %s", e.Class, e.State, e.Span)
}

// Unwrap exposes both the class and the cause to errors.Is and errors.As.
func (e *FatalError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Class}
	}
	return []error{e.Class, e.Err}
}

func fatal(class error, state int, span token.Span, cause error) *FatalError {
	return &FatalError{Class: class, State: state, Span: span, Err: cause}
}
