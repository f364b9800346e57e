package internal

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError_Kinds(t *testing.T) {
	err := NewPreconditionError(errors.New("bad input"))
	assert.True(t, errors.Is(err, ErrPrecondition))
	assert.False(t, errors.Is(err, io.EOF))
	assert.EqualError(t, err, "bad input")
	assert.Equal(t, "precondition", KindPrecondition.String())
	assert.Equal(t, "ErrorKind(1)", ErrorKind(1).String())

	// Only precondition errors match the sentinel
	other := &Error{Kind: ErrorKind(1), cause: errors.New("other")}
	assert.False(t, errors.Is(other, ErrPrecondition))
}

func TestHandlePanicRecover(t *testing.T) {
	assert.NoError(t, HandlePanicRecover(nil))
	err := func() (err error) {
		defer func() { err = HandlePanicRecover(recover()) }()
		fatalf("need %d points", 2)
		return nil
	}()
	assert.EqualError(t, err, "need 2 points")
	assert.Panics(t, func() { _ = HandlePanicRecover("not ours") })
}
