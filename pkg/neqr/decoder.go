package neqr

import (
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"neqrscramble/internal/models"
	"neqrscramble/pkg/parallel"
	"neqrscramble/pkg/qerr"
	"neqrscramble/pkg/qindex"
)

// Sampler draws basis indices from the squared amplitudes of a state vector
type Sampler struct {
	cdf         []float64
	lastNonzero int
}

// NewSampler builds the cumulative distribution of |v[i]|^2.
// NaN and infinite amplitudes are rejected.
func NewSampler(v []float64) (*Sampler, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("sample empty vector: %w", qerr.ErrDegenerateVector)
	}

	probs := make([]float64, len(v))
	lastNonzero := -1
	for i, a := range v {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return nil, fmt.Errorf("amplitude %d is %v: %w", i, a, qerr.ErrOutOfRange)
		}
		probs[i] = a * a
		if math.IsInf(probs[i], 1) {
			return nil, fmt.Errorf("amplitude %d squares past float range: %w", i, qerr.ErrOutOfRange)
		}
		if probs[i] > 0 {
			lastNonzero = i
		}
	}
	if lastNonzero < 0 {
		return nil, fmt.Errorf("sample vector of length %d: %w", len(v), qerr.ErrDegenerateVector)
	}

	cdf := floats.CumSum(make([]float64, len(probs)), probs)
	return &Sampler{cdf: cdf, lastNonzero: lastNonzero}, nil
}

// Len returns the number of basis states
func (s *Sampler) Len() int {
	return len(s.cdf)
}

// CDF returns the inclusive prefix sums of the probabilities
func (s *Sampler) CDF() []float64 {
	return s.cdf
}

// Sample maps r in [0, 1) to the first index whose cumulative probability
// exceeds r scaled by the total probability. r below cdf[0] gives index 0;
// r at or beyond the final cumulative value, which only happens through
// rounding, gives the last index with nonzero probability.
func (s *Sampler) Sample(r float64) int {
	target := r * s.cdf[len(s.cdf)-1]
	i := sort.Search(len(s.cdf), func(i int) bool {
		return s.cdf[i] > target
	})
	if i >= len(s.cdf) {
		return s.lastNonzero
	}
	return i
}

// Decoder reconstructs images by repeated measurement.
// The zero value uses seed 0 and one worker per CPU.
type Decoder struct {
	// Workers is the number of goroutines resolving shots
	Workers int

	// Seed seeds the random source; equal seeds give equal images
	Seed uint64
}

// Decode decodes vec with a time-seeded Decoder
func Decode(vec []float64, depth, xDim, yDim, shots int) (models.Image, error) {
	d := Decoder{Seed: uint64(time.Now().UnixNano())}
	return d.Decode(vec, depth, xDim, yDim, shots)
}

// Decode measures vec shots times and writes each outcome's pixel value to
// out[x][y]. Unlike an input image, the returned models.Image is indexed
// [x][y]: it has xDim rows of yDim entries, and out.Transpose() gives the
// usual [y][x] orientation. Cells never hit keep
// the value 0, and a later shot on the same cell overwrites an earlier one.
//
// Random draws are taken sequentially from one source before the shots are
// resolved in parallel, and results are applied in shot order, so the image
// depends only on Seed and not on Workers.
func (d Decoder) Decode(vec []float64, depth, xDim, yDim, shots int) (models.Image, error) {
	layout, err := qindex.NewLayout(depth, xDim, yDim)
	if err != nil {
		return nil, err
	}
	if len(vec) != layout.Size() {
		return nil, fmt.Errorf("state vector length %d, expected %d for %s: %w",
			len(vec), layout.Size(), layout, qerr.ErrDimension)
	}
	if shots < 0 {
		return nil, fmt.Errorf("shot count %d is negative: %w", shots, qerr.ErrOutOfRange)
	}
	sampler, err := NewSampler(vec)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(d.Seed))
	draws := make([]float64, shots)
	for i := range draws {
		draws[i] = rng.Float64()
	}

	outcomes := make([]int, shots)
	parallel.For(shots, d.Workers, func(_, start, end int) {
		for n := start; n < end; n++ {
			outcomes[n] = sampler.Sample(draws[n])
		}
	})

	out := make(models.Image, xDim)
	for x := range out {
		out[x] = make([]int, yDim)
	}
	for _, index := range outcomes {
		pixel, x, y := layout.Split(index)
		out[x][y] = pixel
	}
	return out, nil
}
