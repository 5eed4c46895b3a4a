// Package gate builds permutation gates over the NEQR basis.
//
// A gate is stored as an index map rather than a dense matrix: Perm[i] is the
// basis index that input basis index i is sent to, so the dense form G has
// G[Perm[i]][i] = 1 and every other entry 0.
package gate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"neqrscramble/pkg/parallel"
	"neqrscramble/pkg/qerr"
	"neqrscramble/pkg/qindex"
)

// DenseLimit is the largest basis size Dense will materialize
const DenseLimit = 1 << 12

// Permutation is an immutable permutation gate over a layout's basis
type Permutation struct {
	layout qindex.Layout
	perm   []int
}

// Identity returns the identity gate for layout
func Identity(layout qindex.Layout) *Permutation {
	perm := make([]int, layout.Size())
	for i := range perm {
		perm[i] = i
	}
	return &Permutation{layout: layout, perm: perm}
}

// FromMapping wraps a caller-supplied index map after checking that it is a
// permutation of the layout's basis. The slice is copied.
func FromMapping(layout qindex.Layout, mapping []int) (*Permutation, error) {
	p := &Permutation{layout: layout, perm: append([]int(nil), mapping...)}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Layout returns the basis layout the gate acts on
func (p *Permutation) Layout() qindex.Layout {
	return p.layout
}

// Len returns the basis size N
func (p *Permutation) Len() int {
	return len(p.perm)
}

// At returns the output index for input basis index i
func (p *Permutation) At(i int) int {
	return p.perm[i]
}

// Mapping returns a copy of the index map
func (p *Permutation) Mapping() []int {
	return append([]int(nil), p.perm...)
}

// Validate checks that every output index is in range and hit exactly once
func (p *Permutation) Validate() error {
	n := p.layout.Size()
	if len(p.perm) != n {
		return fmt.Errorf("gate has %d entries, expected %d: %w", len(p.perm), n, qerr.ErrDimension)
	}
	seen := make([]bool, n)
	for i, out := range p.perm {
		if out < 0 || out >= n {
			return fmt.Errorf("entry %d maps to %d outside [0, %d): %w", i, out, n, qerr.ErrOutOfRange)
		}
		if seen[out] {
			return fmt.Errorf("output index %d is hit twice: %w", out, qerr.ErrOutOfRange)
		}
		seen[out] = true
	}
	return nil
}

// IsIdentity reports whether the gate maps every index to itself
func (p *Permutation) IsIdentity() bool {
	for i, out := range p.perm {
		if out != i {
			return false
		}
	}
	return true
}

// Equal reports whether two gates have the same index map
func (p *Permutation) Equal(other *Permutation) bool {
	if len(p.perm) != len(other.perm) {
		return false
	}
	for i := range p.perm {
		if p.perm[i] != other.perm[i] {
			return false
		}
	}
	return true
}

// Compose returns the matrix product p·inner, the gate that applies inner
// first and then p.
func (p *Permutation) Compose(inner *Permutation) (*Permutation, error) {
	if len(p.perm) != len(inner.perm) {
		return nil, fmt.Errorf("compose %d-state gate with %d-state gate: %w",
			len(p.perm), len(inner.perm), qerr.ErrDimension)
	}
	perm := make([]int, len(p.perm))
	for i, mid := range inner.perm {
		perm[i] = p.perm[mid]
	}
	return &Permutation{layout: p.layout, perm: perm}, nil
}

// Inverse returns the gate that undoes p
func (p *Permutation) Inverse() *Permutation {
	inv := make([]int, len(p.perm))
	for i, out := range p.perm {
		inv[out] = i
	}
	return &Permutation{layout: p.layout, perm: inv}
}

// Apply returns G·v for a state vector v of length N
func (p *Permutation) Apply(v []float64) ([]float64, error) {
	if len(v) != len(p.perm) {
		return nil, fmt.Errorf("apply %d-state gate to vector of length %d: %w",
			len(p.perm), len(v), qerr.ErrDimension)
	}
	out := make([]float64, len(v))
	parallel.For(len(v), 0, func(_, start, end int) {
		for i := start; i < end; i++ {
			out[p.perm[i]] = v[i]
		}
	})
	return out, nil
}

// Dense materializes the N×N {0,1} matrix of the gate
func (p *Permutation) Dense() (*mat.Dense, error) {
	n := len(p.perm)
	if n > DenseLimit {
		return nil, fmt.Errorf("dense %dx%d gate exceeds limit %d: %w", n, n, DenseLimit, qerr.ErrDimension)
	}
	m := mat.NewDense(n, n, nil)
	for i, out := range p.perm {
		m.Set(out, i, 1)
	}
	return m, nil
}
