package sav

import (
	"errors"
	"fmt"
	"io"
)

// Error kinds per the container's error handling design. All errors
// returned by this package can be compared against these with
// errors.Is, regardless of how many layers of pfx.Err call-site context
// wrap them.
var (
	// ErrTruncated is returned when the byte source ends before a field
	// finished decoding.
	ErrTruncated = errors.New("sav: truncated input")

	// ErrOutOfRange is returned by the checked sparse-vector accessors
	// when the requested index is outside the allowed bound.
	ErrOutOfRange = errors.New("sav: index out of range")

	// ErrInvalidPloidy is returned when a file header declares a ploidy
	// of 256 or greater.
	ErrInvalidPloidy = errors.New("sav: ploidy must be less than 256")

	// ErrIO wraps a failure from the underlying byte stream that isn't
	// itself a truncation (e.g. a write failing because a disk filled
	// up, or a storage backend returning a non-EOF error).
	ErrIO = errors.New("sav: io failure")
)

// wrapTruncated normalizes io.EOF and io.ErrUnexpectedEOF (both of which
// a byteReader can legitimately return mid-field) into ErrTruncated,
// leaving any other error to be treated as ErrIO by the caller.
func wrapTruncated(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return fmt.Errorf("%w: %v", ErrIO, err)
}
