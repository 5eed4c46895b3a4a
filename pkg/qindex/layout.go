// Package qindex maps logical pixel, x and y bit indices onto absolute bit
// positions of a composite NEQR basis index.
//
// A basis index is treated as a fixed-width big-endian bit string: position 0
// is the most significant pixel-value bit and the last YBits positions hold
// the y coordinate. The three ranges are
//
//	pixel [0, Depth)
//	x     [Depth, Depth+XBits)
//	y     [Depth+XBits, Depth+XBits+YBits)
//
// All helpers work on plain integers with shifts and masks.
package qindex

import (
	"fmt"
	"math/bits"

	"neqrscramble/pkg/qerr"
)

// Layout describes how a composite basis index is partitioned
type Layout struct {
	// Depth is the number of pixel-value bits
	Depth int

	// XBits is log2 of the image width
	XBits int

	// YBits is log2 of the image height
	YBits int
}

// Log2 returns log2(n) for a positive power of two
func Log2(n int) (int, error) {
	if n <= 0 || n&(n-1) != 0 {
		return 0, fmt.Errorf("%d is not a positive power of two: %w", n, qerr.ErrDimension)
	}
	return bits.TrailingZeros(uint(n)), nil
}

// NewLayout builds the layout for an image of xDim by yDim pixels with the
// given pixel depth.
func NewLayout(depth, xDim, yDim int) (Layout, error) {
	if depth < 1 {
		return Layout{}, fmt.Errorf("pixel depth %d must be at least 1: %w", depth, qerr.ErrDimension)
	}
	xBits, err := Log2(xDim)
	if err != nil {
		return Layout{}, fmt.Errorf("xDim: %w", err)
	}
	yBits, err := Log2(yDim)
	if err != nil {
		return Layout{}, fmt.Errorf("yDim: %w", err)
	}
	if depth+xBits+yBits >= bits.UintSize-1 {
		return Layout{}, fmt.Errorf("%d index bits exceed machine word: %w",
			depth+xBits+yBits, qerr.ErrDimension)
	}
	return Layout{Depth: depth, XBits: xBits, YBits: yBits}, nil
}

// Width is the number of bits in a basis index
func (l Layout) Width() int {
	return l.Depth + l.XBits + l.YBits
}

// Size is the number of basis states, 2^Width
func (l Layout) Size() int {
	return 1 << l.Width()
}

// XDim is the image width in pixels
func (l Layout) XDim() int { return 1 << l.XBits }

// YDim is the image height in pixels
func (l Layout) YDim() int { return 1 << l.YBits }

// PixelAbsolute returns the absolute position of pixel-value bit i
func (l Layout) PixelAbsolute(i int) (int, error) {
	if i < 0 || i >= l.Depth {
		return 0, fmt.Errorf("pixel bit %d not in [0, %d): %w", i, l.Depth, qerr.ErrOutOfRange)
	}
	return i, nil
}

// XAbsolute returns the absolute position of x bit i
func (l Layout) XAbsolute(i int) (int, error) {
	if i < 0 || i >= l.XBits {
		return 0, fmt.Errorf("x bit %d not in [0, %d): %w", i, l.XBits, qerr.ErrOutOfRange)
	}
	return l.Depth + i, nil
}

// YAbsolute returns the absolute position of y bit i
func (l Layout) YAbsolute(i int) (int, error) {
	if i < 0 || i >= l.YBits {
		return 0, fmt.Errorf("y bit %d not in [0, %d): %w", i, l.YBits, qerr.ErrOutOfRange)
	}
	return l.Depth + l.XBits + i, nil
}

// CheckPosition verifies that pos addresses a bit of the index
func (l Layout) CheckPosition(pos int) error {
	if pos < 0 || pos >= l.Width() {
		return fmt.Errorf("bit position %d not in [0, %d): %w", pos, l.Width(), qerr.ErrOutOfRange)
	}
	return nil
}

// CheckIndex verifies that index is a basis index of this layout
func (l Layout) CheckIndex(index int) error {
	if index < 0 || index >= l.Size() {
		return fmt.Errorf("basis index %d not in [0, %d): %w", index, l.Size(), qerr.ErrOutOfRange)
	}
	return nil
}

// shift converts an MSB-first position into a right-shift amount
func (l Layout) shift(pos int) uint {
	return uint(l.Width() - 1 - pos)
}

// Bit returns the bit at position pos of index (0 or 1). pos is not checked.
func (l Layout) Bit(index, pos int) int {
	return (index >> l.shift(pos)) & 1
}

// SwapBits exchanges the bits at positions a and b of index
func (l Layout) SwapBits(index, a, b int) int {
	if l.Bit(index, a) == l.Bit(index, b) {
		return index
	}
	return index ^ (1 << l.shift(a)) ^ (1 << l.shift(b))
}

// Split decomposes a basis index into its pixel value and x, y coordinates
func (l Layout) Split(index int) (pixel, x, y int) {
	y = index & (1<<l.YBits - 1)
	x = (index >> l.YBits) & (1<<l.XBits - 1)
	pixel = index >> (l.XBits + l.YBits)
	return pixel, x, y
}

// Join is the inverse of Split
func (l Layout) Join(pixel, x, y int) int {
	return pixel<<(l.XBits+l.YBits) | x<<l.YBits | y
}

// String renders the layout for log output
func (l Layout) String() string {
	return fmt.Sprintf("depth=%d xBits=%d yBits=%d", l.Depth, l.XBits, l.YBits)
}

// Format renders index as its fixed-width big-endian bit string
func (l Layout) Format(index int) string {
	return fmt.Sprintf("%0*b", l.Width(), index)
}
