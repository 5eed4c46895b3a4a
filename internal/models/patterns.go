package models

import "fmt"

// NewPattern generates a synthetic xDim by yDim test image with intensities
// in [0, 2^depth).
func NewPattern(name string, xDim, yDim, depth int) (Image, error) {
	levels := 1 << depth
	img := NewImage(xDim, yDim)
	for y := 0; y < yDim; y++ {
		for x := 0; x < xDim; x++ {
			switch name {
			case "checker":
				img[y][x] = ((x + y) % 2) * (levels - 1)
			case "gradient":
				img[y][x] = (x + y) % levels
			case "diagonal":
				if x == y {
					img[y][x] = levels - 1
				}
			case "ramp":
				img[y][x] = (y*xDim + x) % levels
			default:
				return nil, fmt.Errorf("unknown pattern %q", name)
			}
		}
	}
	return img, nil
}
