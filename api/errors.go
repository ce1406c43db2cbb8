package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// Reasons for failures. Use errors.Is on any error returned by this module to match them, or
// errors.As with *LookupError, *DomainError or *InvariantError to get the details.
var (
	ErrUnknownSymbol    = errors.New("unknown symbol")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrNoOneHotEntry    = errors.New("no one-hot entry")
	ErrRowWidthMismatch = errors.New("row width does not match vocabulary size")

	ErrNonPositiveProbability = errors.New("non-positive probability")
	ErrNonFiniteProbability   = errors.New("non-finite probability")
	ErrNonPositiveTemperature = errors.New("non-positive temperature")
	ErrLengthMismatch         = errors.New("length does not match vocabulary size")
	ErrNegativeSteps          = errors.New("negative number of steps")

	ErrInvariant = errors.New("internal invariant violated")
)

// LookupError is returned when a symbol or index is not in the vocabulary, or when a row of a
// one-hot matrix can't be resolved to an index.
type LookupError struct {
	// Reason is one of ErrUnknownSymbol, ErrIndexOutOfRange, ErrNoOneHotEntry or ErrRowWidthMismatch.
	Reason error

	Symbol rune // Set for ErrUnknownSymbol.
	Index  int  // Set for ErrIndexOutOfRange, and the offending width for ErrRowWidthMismatch.

	// Position of the offending rune (Encode) or row (Decode), or -1 if not applicable.
	Position int
}

// Error implements error.
func (e *LookupError) Error() string {
	var msg string
	switch e.Reason {
	case ErrUnknownSymbol:
		msg = fmt.Sprintf("%v %q", e.Reason, e.Symbol)
	case ErrIndexOutOfRange, ErrRowWidthMismatch:
		msg = fmt.Sprintf("%v: %d", e.Reason, e.Index)
	default:
		msg = fmt.Sprint(e.Reason)
	}
	if e.Position >= 0 {
		msg = fmt.Sprintf("%s at position %d", msg, e.Position)
	}
	return "lookup error: " + msg
}

// Unwrap returns the Reason, so errors.Is(err, ErrUnknownSymbol) works.
func (e *LookupError) Unwrap() error { return e.Reason }

// NewLookupError creates a LookupError with a stack trace attached.
func NewLookupError(reason error, symbol rune, index, position int) error {
	return errors.WithStack(&LookupError{Reason: reason, Symbol: symbol, Index: index, Position: position})
}

// DomainError is returned when the sampler preconditions are violated.
type DomainError struct {
	// Reason is one of ErrNonPositiveProbability, ErrNonFiniteProbability, ErrNonPositiveTemperature,
	// ErrLengthMismatch or ErrNegativeSteps.
	Reason error

	Value float64 // Offending value.
	Index int     // Offending entry of the probability vector, or -1.
}

// Error implements error.
func (e *DomainError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("domain error: %v %g at index %d", e.Reason, e.Value, e.Index)
	}
	return fmt.Sprintf("domain error: %v %g", e.Reason, e.Value)
}

// Unwrap returns the Reason.
func (e *DomainError) Unwrap() error { return e.Reason }

// NewDomainError creates a DomainError with a stack trace attached.
func NewDomainError(reason error, value float64, index int) error {
	return errors.WithStack(&DomainError{Reason: reason, Value: value, Index: index})
}

// InvariantError signals a bug: a state that a correct implementation can never reach.
type InvariantError struct {
	Msg string
}

// Error implements error.
func (e *InvariantError) Error() string { return fmt.Sprintf("%v: %s", ErrInvariant, e.Msg) }

// Unwrap returns ErrInvariant.
func (e *InvariantError) Unwrap() error { return ErrInvariant }

// NewInvariantError creates an InvariantError with a formatted message and a stack trace attached.
func NewInvariantError(format string, args ...any) error {
	return errors.WithStack(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}
