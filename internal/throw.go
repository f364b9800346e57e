package internal

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Threading errors up and down the recursive divide and conquer would add a
// ton of complexity to the code. Instead, we use panics, and the public API
// recovers to convert to an error.

type ErrorKind int

const (
	// A caller broke a documented precondition: duplicate points, too few
	// points, unsorted merge inputs, or a malformed wire record.
	KindPrecondition ErrorKind = iota
)

func (k ErrorKind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinel so callers can use errors.Is without caring about the message.
var ErrPrecondition = stderrors.New("precondition violated")

type Error struct {
	Kind  ErrorKind
	cause error
}

func (e *Error) Error() string { return e.cause.Error() }

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	return target == ErrPrecondition && e.Kind == KindPrecondition
}

// Build an error of the given kind without panicking. Used by code that
// returns errors directly, like the wire decoder.
func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func preconditionf(format string, args ...interface{}) *Error {
	return newError(KindPrecondition, errors.Errorf(format, args...))
}

// Panic with a precondition *Error.
func fatalf(format string, args ...interface{}) {
	panic(preconditionf(format, args...))
}

func HandlePanicRecover(r interface{}) error {
	if r != nil {
		if err, ok := r.(*Error); ok {
			return err
		}
		panic(r)
	}
	return nil
}

// Wrap cause as a precondition error, for callers outside the package that
// validate their own inputs.
func NewPreconditionError(cause error) error {
	return newError(KindPrecondition, cause)
}
