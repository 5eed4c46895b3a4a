// Package statevector builds normalized basis vectors for pixel values and
// image positions and combines them with a Kronecker product.
package statevector

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"neqrscramble/pkg/qerr"
	"neqrscramble/pkg/qindex"
)

// Normalize returns v scaled to unit L2 norm. v is left untouched.
func Normalize(v []float64) ([]float64, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("normalize empty vector: %w", qerr.ErrDegenerateVector)
	}
	norm := floats.Norm(v, 2)
	if norm == 0 {
		return nil, fmt.Errorf("normalize vector of length %d: %w", len(v), qerr.ErrDegenerateVector)
	}
	return floats.ScaleTo(make([]float64, len(v)), 1/norm, v), nil
}

// PixelBasis returns the basis vector of length 2^depth for a pixel value
func PixelBasis(value, depth int) ([]float64, error) {
	if depth < 1 {
		return nil, fmt.Errorf("pixel depth %d must be at least 1: %w", depth, qerr.ErrDimension)
	}
	size := 1 << depth
	if value < 0 || value >= size {
		return nil, fmt.Errorf("pixel value %d not in [0, %d): %w", value, size, qerr.ErrOutOfRange)
	}
	v := make([]float64, size)
	v[value] = 1
	return Normalize(v)
}

// PositionIndex returns the offset of (x, y) inside the position space.
// x occupies the high bits and y the low bits, matching qindex.Layout.
func PositionIndex(x, y, yDim int) int {
	return yDim*x + y
}

// PositionBasis returns the basis vector of length xDim*yDim for (x, y)
func PositionBasis(x, y, xDim, yDim int) ([]float64, error) {
	if _, err := qindex.Log2(xDim); err != nil {
		return nil, fmt.Errorf("xDim: %w", err)
	}
	if _, err := qindex.Log2(yDim); err != nil {
		return nil, fmt.Errorf("yDim: %w", err)
	}
	if x < 0 || x >= xDim || y < 0 || y >= yDim {
		return nil, fmt.Errorf("position (%d, %d) outside %dx%d: %w", x, y, xDim, yDim, qerr.ErrOutOfRange)
	}
	v := make([]float64, xDim*yDim)
	v[PositionIndex(x, y, yDim)] = 1
	return Normalize(v)
}

// Tensor returns the Kronecker product a ⊗ b
func Tensor(a, b []float64) []float64 {
	out := make([]float64, len(a)*len(b))
	for i, av := range a {
		if av == 0 {
			continue
		}
		floats.ScaleTo(out[i*len(b):(i+1)*len(b)], av, b)
	}
	return out
}

// Nonzero counts the entries of v that are not exactly zero
func Nonzero(v []float64) int {
	count := 0
	for _, x := range v {
		if x != 0 {
			count++
		}
	}
	return count
}
