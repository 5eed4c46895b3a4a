// Package qerr defines the error kinds shared by the encoder, decoder and
// gate builders. Call sites wrap these sentinels with context so callers can
// match them with errors.Is.
package qerr

import "errors"

var (
	// ErrOutOfRange reports a pixel value, position or bit index outside its
	// valid domain.
	ErrOutOfRange = errors.New("value out of range")

	// ErrDegenerateVector reports an attempt to normalize an all-zero vector.
	ErrDegenerateVector = errors.New("degenerate zero-norm vector")

	// ErrDimension reports a dimension that is not a power of two, a pixel
	// depth below one, or mismatched array shapes.
	ErrDimension = errors.New("invalid dimension")
)
