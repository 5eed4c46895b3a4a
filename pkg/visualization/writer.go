// Package visualization writes NEQR images to disk and renders them as text
// so encode, scramble and decode stages can be inspected.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"neqrscramble/internal/models"
	"neqrscramble/pkg/qerr"
)

// ToGray converts img (indexed img[row][col]) to a 16-bit grayscale image,
// stretching intensities in [0, 2^depth) over the full range.
func ToGray(img models.Image, depth int) (*image.Gray16, error) {
	dims, err := img.Dims()
	if err != nil {
		return nil, err
	}
	if depth < 1 || depth > 16 {
		return nil, fmt.Errorf("pixel depth %d not in [1, 16]: %w", depth, qerr.ErrDimension)
	}

	maxValue := (1 << depth) - 1
	gray := image.NewGray16(image.Rect(0, 0, dims.X, dims.Y))
	for row := 0; row < dims.Y; row++ {
		for col := 0; col < dims.X; col++ {
			v := img[row][col]
			if v < 0 || v > maxValue {
				return nil, fmt.Errorf("pixel (%d, %d) = %d not in [0, %d]: %w", col, row, v, maxValue, qerr.ErrOutOfRange)
			}
			gray.SetGray16(col, row, color.Gray16{Y: uint16(v * 65535 / maxValue)})
		}
	}
	return gray, nil
}

// SaveImage writes img to path. The format follows the file extension:
// ".bmp" writes a bitmap, anything else a PNG.
func SaveImage(img models.Image, depth int, path string) error {
	gray, err := ToGray(img, depth)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		err = bmp.Encode(file, gray)
	default:
		err = png.Encode(file, gray)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// Render prints img one row per line with right-aligned values
func Render(img models.Image) string {
	width := 1
	for _, row := range img {
		for _, v := range row {
			if w := len(fmt.Sprint(v)); w > width {
				width = w
			}
		}
	}

	var sb strings.Builder
	for _, row := range img {
		for i, v := range row {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%*d", width, v)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
