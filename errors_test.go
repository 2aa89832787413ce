package sav

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapTruncatedNormalizesEOF(t *testing.T) {
	assert.ErrorIs(t, wrapTruncated(io.EOF), ErrTruncated)
	assert.ErrorIs(t, wrapTruncated(io.ErrUnexpectedEOF), ErrTruncated)
}

func TestWrapTruncatedPassesThroughOtherErrorsAsIO(t *testing.T) {
	other := errors.New("disk full")
	assert.ErrorIs(t, wrapTruncated(other), ErrIO)
}

func TestWrapTruncatedNil(t *testing.T) {
	assert.NoError(t, wrapTruncated(nil))
}
