package gate

import (
	"fmt"

	"neqrscramble/pkg/parallel"
	"neqrscramble/pkg/qerr"
	"neqrscramble/pkg/qindex"
)

// NoControl disables the control bit of a swap
const NoControl = -1

// SwapBuilder builds two-qubit swap gates. The zero value uses one worker per CPU.
type SwapBuilder struct {
	Workers int
}

// BuildSwap builds a swap gate with the default SwapBuilder
func BuildSwap(layout qindex.Layout, a, b, control int) (*Permutation, error) {
	return SwapBuilder{}.BuildSwap(layout, a, b, control)
}

// BuildSwap returns the gate exchanging the bits at absolute positions a and
// b of every basis index. With a control position, only indices whose
// control bit is 1 are swapped; pass NoControl for an unconditional swap.
// The control bit must differ from a and b.
// Indices whose two bits agree map to themselves.
func (s SwapBuilder) BuildSwap(layout qindex.Layout, a, b, control int) (*Permutation, error) {
	if err := layout.CheckPosition(a); err != nil {
		return nil, fmt.Errorf("swap bit a: %w", err)
	}
	if err := layout.CheckPosition(b); err != nil {
		return nil, fmt.Errorf("swap bit b: %w", err)
	}
	if control != NoControl {
		if err := layout.CheckPosition(control); err != nil {
			return nil, fmt.Errorf("control bit: %w", err)
		}
		if control == a || control == b {
			return nil, fmt.Errorf("control bit %d coincides with a swapped bit: %w", control, qerr.ErrOutOfRange)
		}
	}

	n := layout.Size()
	perm := make([]int, n)
	parallel.For(n, s.Workers, func(_, start, end int) {
		for i := start; i < end; i++ {
			perm[i] = i
			if control != NoControl && layout.Bit(i, control) != 1 {
				continue
			}
			if layout.Bit(i, a) != layout.Bit(i, b) {
				perm[i] = layout.SwapBits(i, a, b)
			}
		}
	})

	return &Permutation{layout: layout, perm: perm}, nil
}
