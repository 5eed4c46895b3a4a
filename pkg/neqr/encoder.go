// Package neqr encodes images into NEQR state vectors and decodes state
// vectors back into images by simulated measurement.
package neqr

import (
	"fmt"

	"neqrscramble/internal/models"
	"neqrscramble/pkg/parallel"
	"neqrscramble/pkg/qerr"
	"neqrscramble/pkg/qindex"
	"neqrscramble/pkg/statevector"
)

// Encoder builds NEQR state vectors. The zero value uses one worker per CPU.
type Encoder struct {
	// Workers is the number of goroutines summing pixel contributions
	Workers int
}

// Encode encodes img with the default Encoder
func Encode(img models.Image, depth int) ([]float64, error) {
	return Encoder{}.Encode(img, depth)
}

// Encode returns the normalized NEQR state of img, of length
// 2^depth * xDim * yDim. img is indexed img[y][x].
//
// Pixel (x, y) contributes PixelBasis(img[y][x]) ⊗ PositionBasis(x, y), a
// single unit amplitude at basis index Join(img[y][x], x, y). Distinct
// positions own distinct indices, so workers split the columns and write
// straight into one pre-sized vector, which is normalized once at the end.
func (e Encoder) Encode(img models.Image, depth int) ([]float64, error) {
	dims, err := img.Dims()
	if err != nil {
		return nil, err
	}
	layout, err := qindex.NewLayout(depth, dims.X, dims.Y)
	if err != nil {
		return nil, err
	}
	if err := validatePixels(img, depth); err != nil {
		return nil, err
	}

	total := make([]float64, layout.Size())
	parallel.For(dims.X, e.Workers, func(_, start, end int) {
		for x := start; x < end; x++ {
			for y := 0; y < dims.Y; y++ {
				total[layout.Join(img[y][x], x, y)] += 1
			}
		}
	})

	return statevector.Normalize(total)
}

// validatePixels checks every intensity before any work is done
func validatePixels(img models.Image, depth int) error {
	limit := 1 << depth
	for y, row := range img {
		for x, v := range row {
			if v < 0 || v >= limit {
				return fmt.Errorf("pixel (%d, %d) = %d not in [0, %d): %w", x, y, v, limit, qerr.ErrOutOfRange)
			}
		}
	}
	return nil
}
