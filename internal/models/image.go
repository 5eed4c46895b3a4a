package models

import (
	"fmt"

	"neqrscramble/pkg/qerr"
)

// Image is a 2-D grid of pixel intensities indexed as Image[y][x]
// (rows are y, columns are x).
type Image [][]int

// Dims holds the width (X) and height (Y) of an image in pixels.
type Dims struct {
	X int
	Y int
}

// Size returns the number of pixel positions
func (d Dims) Size() int {
	return d.X * d.Y
}

// NewImage allocates a zeroed image with yDim rows of xDim columns
func NewImage(xDim, yDim int) Image {
	img := make(Image, yDim)
	for y := range img {
		img[y] = make([]int, xDim)
	}
	return img
}

// Dims returns the image dimensions. Ragged or empty images are rejected.
func (img Image) Dims() (Dims, error) {
	if len(img) == 0 || len(img[0]) == 0 {
		return Dims{}, fmt.Errorf("empty image: %w", qerr.ErrDimension)
	}
	width := len(img[0])
	for y, row := range img {
		if len(row) != width {
			return Dims{}, fmt.Errorf("row %d has %d columns, expected %d: %w",
				y, len(row), width, qerr.ErrDimension)
		}
	}
	return Dims{X: width, Y: len(img)}, nil
}

// Transpose returns a new image with rows and columns exchanged
func (img Image) Transpose() Image {
	if len(img) == 0 {
		return Image{}
	}
	out := NewImage(len(img), len(img[0]))
	for y, row := range img {
		for x, v := range row {
			out[x][y] = v
		}
	}
	return out
}

// Equal reports whether two images have the same shape and values
func (img Image) Equal(other Image) bool {
	if len(img) != len(other) {
		return false
	}
	for y := range img {
		if len(img[y]) != len(other[y]) {
			return false
		}
		for x := range img[y] {
			if img[y][x] != other[y][x] {
				return false
			}
		}
	}
	return true
}
