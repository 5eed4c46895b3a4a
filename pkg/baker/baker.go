// Package baker composes the generalized baker-map permutation used to
// scramble NEQR encoded images.
package baker

import (
	"fmt"

	"neqrscramble/pkg/gate"
	"neqrscramble/pkg/qerr"
	"neqrscramble/pkg/qindex"
)

// Step is one swap of the baker-map sequence, in absolute bit positions
type Step struct {
	A       int
	B       int
	Control int // gate.NoControl when unconditional
}

// String renders the step for log output
func (s Step) String() string {
	if s.Control == gate.NoControl {
		return fmt.Sprintf("swap(%d,%d)", s.A, s.B)
	}
	return fmt.Sprintf("cswap(%d;%d,%d)", s.Control, s.A, s.B)
}

// Steps returns the ordered swap sequence of the baker map for an image of
// xDim by yDim pixels. Both dimensions need at least 4 pixels, since the
// first two steps address x bit n_x-2 and y bit 1.
func Steps(xDim, yDim, depth int) ([]Step, error) {
	layout, err := qindex.NewLayout(depth, xDim, yDim)
	if err != nil {
		return nil, err
	}
	return steps(layout)
}

func steps(layout qindex.Layout) ([]Step, error) {
	nx, ny := layout.XBits, layout.YBits
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("baker map needs at least 2 x and 2 y bits, got %d and %d: %w",
			nx, ny, qerr.ErrDimension)
	}

	var (
		out []Step
		err error
	)
	x := func(i int) int {
		pos, e := layout.XAbsolute(i)
		if e != nil && err == nil {
			err = e
		}
		return pos
	}
	y := func(j int) int {
		pos, e := layout.YAbsolute(j)
		if e != nil && err == nil {
			err = e
		}
		return pos
	}
	swap := func(a, b int) { out = append(out, Step{A: a, B: b, Control: gate.NoControl}) }
	cswap := func(a, b, c int) { out = append(out, Step{A: a, B: b, Control: c}) }

	swap(x(nx-2), y(0))
	swap(x(nx-1), y(1))
	for j := 0; j < ny-2; j++ {
		swap(y(j), y(j+2))
	}
	for i := 0; i < nx-2; i++ {
		swap(x(nx-1-i), x(nx-3-i))
	}
	for j := 0; j < ny-2; j++ {
		cswap(y(ny-2-j), y(ny-3-j), y(ny-1))
	}
	for i := 0; i < nx-2; i++ {
		cswap(x(i+1), x(i+2), y(ny-1))
	}

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Composer builds baker-map gates
type Composer struct {
	// Builder constructs the individual swap gates
	Builder gate.SwapBuilder
}

// Build composes the baker map with the default Composer
func Build(xDim, yDim, depth int) (*gate.Permutation, error) {
	return Composer{}.Build(xDim, yDim, depth)
}

// Build returns the baker-map gate for an xDim by yDim image of the given
// pixel depth. Each step's swap gate is left-multiplied onto the product of
// the steps before it, so the first step acts first.
func (c Composer) Build(xDim, yDim, depth int) (*gate.Permutation, error) {
	layout, err := qindex.NewLayout(depth, xDim, yDim)
	if err != nil {
		return nil, err
	}
	seq, err := steps(layout)
	if err != nil {
		return nil, err
	}

	var acc *gate.Permutation
	for i, s := range seq {
		g, err := c.Builder.BuildSwap(layout, s.A, s.B, s.Control)
		if err != nil {
			return nil, fmt.Errorf("step %d %s: %w", i, s, err)
		}
		if acc == nil {
			acc = g
			continue
		}
		if acc, err = g.Compose(acc); err != nil {
			return nil, fmt.Errorf("step %d %s: %w", i, s, err)
		}
	}
	return acc, nil
}

// Scramble applies the baker map to an encoded state vector
func Scramble(g *gate.Permutation, state []float64) ([]float64, error) {
	return g.Apply(state)
}

// Unscramble applies the inverse baker map, recovering the state passed to Scramble
func Unscramble(g *gate.Permutation, state []float64) ([]float64, error) {
	return g.Inverse().Apply(state)
}
