package neqr

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"neqrscramble/internal/models"
	"neqrscramble/pkg/qerr"
	"neqrscramble/pkg/qindex"
	"neqrscramble/pkg/statevector"
)

// createTestImage fills an xDim by yDim image from a pattern function
func createTestImage(xDim, yDim int, pattern func(x, y int) int) models.Image {
	img := models.NewImage(xDim, yDim)
	for y := 0; y < yDim; y++ {
		for x := 0; x < xDim; x++ {
			img[y][x] = pattern(x, y)
		}
	}
	return img
}

// TestEncodeNormalization verifies the encoded state has unit norm
func TestEncodeNormalization(t *testing.T) {
	images := []struct {
		name  string
		img   models.Image
		depth int
	}{
		{"2x2 checker", models.Image{{0, 1}, {1, 0}}, 1},
		{"4x4 gradient", createTestImage(4, 4, func(x, y int) int { return (x + y) % 4 }), 2},
		{"8x2 constant", createTestImage(8, 2, func(x, y int) int { return 5 }), 3},
		{"2x8 zeros", createTestImage(2, 8, func(x, y int) int { return 0 }), 1},
	}

	for _, tc := range images {
		v, err := Encode(tc.img, tc.depth)
		if err != nil {
			t.Fatalf("%s: Encode failed: %v", tc.name, err)
		}
		dims, _ := tc.img.Dims()
		if want := (1 << tc.depth) * dims.Size(); len(v) != want {
			t.Errorf("%s: expected length %d, got %d", tc.name, want, len(v))
		}
		sum := floats.Dot(v, v)
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("%s: expected sum of squares 1, got %.12f", tc.name, sum)
		}
	}
}

// TestEncodeSparsity verifies one amplitude of 1/sqrt(xDim*yDim) per position
func TestEncodeSparsity(t *testing.T) {
	xDim, yDim, depth := 4, 2, 2
	img := createTestImage(xDim, yDim, func(x, y int) int { return (3*x + y) % 4 })
	v, err := Encode(img, depth)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if n := statevector.Nonzero(v); n != xDim*yDim {
		t.Errorf("Expected %d nonzero entries, got %d", xDim*yDim, n)
	}

	layout, _ := qindex.NewLayout(depth, xDim, yDim)
	amp := 1 / math.Sqrt(float64(xDim*yDim))
	for y := 0; y < yDim; y++ {
		for x := 0; x < xDim; x++ {
			idx := layout.Join(img[y][x], x, y)
			if math.Abs(v[idx]-amp) > 1e-12 {
				t.Errorf("Expected amplitude %f at pixel (%d, %d), got %f", amp, x, y, v[idx])
			}
		}
	}
}

// TestEncodeWorkerIndependence verifies the result does not depend on worker count
func TestEncodeWorkerIndependence(t *testing.T) {
	img := createTestImage(8, 4, func(x, y int) int { return (x * y) % 8 })
	base, err := Encoder{Workers: 1}.Encode(img, 3)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for _, workers := range []int{2, 3, 8, 16} {
		v, err := Encoder{Workers: workers}.Encode(img, 3)
		if err != nil {
			t.Fatalf("Encode with %d workers failed: %v", workers, err)
		}
		if !floats.EqualApprox(base, v, 1e-12) {
			t.Errorf("Expected identical encoding with %d workers", workers)
		}
	}
}

// TestEncodeValidation verifies bad input fails before any work is done
func TestEncodeValidation(t *testing.T) {
	tests := []struct {
		name  string
		img   models.Image
		depth int
		want  error
	}{
		{"value too large", models.Image{{0, 2}, {1, 0}}, 1, qerr.ErrOutOfRange},
		{"negative value", models.Image{{0, -1}, {1, 0}}, 1, qerr.ErrOutOfRange},
		{"width not power of two", models.Image{{0, 1, 0}, {1, 0, 1}}, 1, qerr.ErrDimension},
		{"ragged rows", models.Image{{0, 1}, {1}}, 1, qerr.ErrDimension},
		{"empty", models.Image{}, 1, qerr.ErrDimension},
		{"zero depth", models.Image{{0, 0}, {0, 0}}, 0, qerr.ErrDimension},
	}
	for _, tt := range tests {
		v, err := Encode(tt.img, tt.depth)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
		if v != nil {
			t.Errorf("%s: expected no partial result", tt.name)
		}
	}
}

// TestSamplerBoundaries verifies the first and last intervals are reachable
func TestSamplerBoundaries(t *testing.T) {
	s, err := NewSampler([]float64{0.5, 0.5, math.Sqrt(0.5)})
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	cdf := s.CDF()
	if !floats.EqualApprox(cdf, []float64{0.25, 0.5, 1}, 1e-12) {
		t.Fatalf("Expected cdf [0.25 0.5 1], got %v", cdf)
	}

	tests := []struct {
		r    float64
		want int
	}{
		{0, 0},
		{0.1, 0},
		{0.2499, 0},
		{0.25, 1},
		{0.4999, 1},
		{0.5, 2},
		{0.75, 2},
		{0.999999, 2},
	}
	for _, tt := range tests {
		if got := s.Sample(tt.r); got != tt.want {
			t.Errorf("Sample(%v): expected %d, got %d", tt.r, tt.want, got)
		}
	}
}

// TestSamplerZeroTail verifies zero-probability trailing states are never chosen
func TestSamplerZeroTail(t *testing.T) {
	s, err := NewSampler([]float64{math.Sqrt(0.5), math.Sqrt(0.4), 0, 0})
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	for _, r := range []float64{0.95, 0.999999, 1} {
		if got := s.Sample(r); got != 1 {
			t.Errorf("Sample(%v): expected 1, got %d", r, got)
		}
	}
	if got := s.Sample(0.3); got != 0 {
		t.Errorf("Sample(0.3): expected 0, got %d", got)
	}
}

// TestSamplerDegenerate verifies an all-zero vector is rejected
func TestSamplerDegenerate(t *testing.T) {
	if _, err := NewSampler([]float64{0, 0}); !errors.Is(err, qerr.ErrDegenerateVector) {
		t.Errorf("Expected ErrDegenerateVector, got %v", err)
	}
	if _, err := NewSampler(nil); !errors.Is(err, qerr.ErrDegenerateVector) {
		t.Errorf("Expected ErrDegenerateVector for empty vector, got %v", err)
	}
}

// TestDecodeSingleState verifies a one-hot state always decodes to its pixel
func TestDecodeSingleState(t *testing.T) {
	depth, xDim, yDim := 2, 4, 4
	layout, _ := qindex.NewLayout(depth, xDim, yDim)
	v := make([]float64, layout.Size())
	v[layout.Join(3, 1, 2)] = 1

	for seed := uint64(0); seed < 5; seed++ {
		out, err := Decoder{Seed: seed}.Decode(v, depth, xDim, yDim, 50)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		for x := 0; x < xDim; x++ {
			for y := 0; y < yDim; y++ {
				want := 0
				if x == 1 && y == 2 {
					want = 3
				}
				if out[x][y] != want {
					t.Errorf("seed %d: expected out[%d][%d]=%d, got %d", seed, x, y, want, out[x][y])
				}
			}
		}
	}
}

// TestRoundTrip verifies a 2x2 image survives encode and decode
func TestRoundTrip(t *testing.T) {
	img := models.Image{{0, 1}, {1, 0}}
	v, err := Encode(img, 1)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Majority vote over independent decodes
	votes := make(map[[3]int]int)
	runs := 15
	for seed := 0; seed < runs; seed++ {
		out, err := Decoder{Seed: uint64(seed)}.Decode(v, 1, 2, 2, 1000)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		for x := 0; x < 2; x++ {
			for y := 0; y < 2; y++ {
				votes[[3]int{x, y, out[x][y]}]++
			}
		}
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if votes[[3]int{x, y, img[y][x]}] <= runs/2 {
				t.Errorf("Expected majority value %d at (%d, %d)", img[y][x], x, y)
			}
		}
	}
}

// TestRoundTripNonSquare verifies the decoder returns the transposed layout
func TestRoundTripNonSquare(t *testing.T) {
	img := createTestImage(4, 2, func(x, y int) int { return x + 4*y })
	v, err := Encode(img, 3)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out, err := Decoder{Seed: 7}.Decode(v, 3, 4, 2, 4000)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out) != 4 || len(out[0]) != 2 {
		t.Fatalf("Expected 4x2 result, got %dx%d", len(out), len(out[0]))
	}
	if !out.Equal(img.Transpose()) {
		t.Errorf("Expected %v, got %v", img.Transpose(), out)
	}
}

// TestDecodeWorkerIndependence verifies equal seeds give equal images
func TestDecodeWorkerIndependence(t *testing.T) {
	img := createTestImage(4, 4, func(x, y int) int { return (x ^ y) & 3 })
	v, _ := Encode(img, 2)
	// Perturb amplitudes so repeated shots on a cell can disagree
	for i := range v {
		if v[i] == 0 {
			v[i] = 0.01
		}
	}

	base, err := Decoder{Seed: 42, Workers: 1}.Decode(v, 2, 4, 4, 300)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	for _, workers := range []int{2, 5, 32} {
		out, err := Decoder{Seed: 42, Workers: workers}.Decode(v, 2, 4, 4, 300)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if !out.Equal(base) {
			t.Errorf("Expected identical images with %d workers", workers)
		}
	}
}

// TestDecodeValidation verifies decode rejects bad arguments
func TestDecodeValidation(t *testing.T) {
	v := make([]float64, 8)
	v[0] = 1

	if _, err := Decode(v, 1, 2, 4, 10); !errors.Is(err, qerr.ErrDimension) {
		t.Errorf("Expected ErrDimension for length mismatch, got %v", err)
	}
	if _, err := Decode(v, 1, 3, 2, 10); !errors.Is(err, qerr.ErrDimension) {
		t.Errorf("Expected ErrDimension for xDim=3, got %v", err)
	}
	if _, err := Decode(v, 1, 2, 2, -1); !errors.Is(err, qerr.ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange for negative shots, got %v", err)
	}
	if _, err := Decode(make([]float64, 8), 1, 2, 2, 10); !errors.Is(err, qerr.ErrDegenerateVector) {
		t.Errorf("Expected ErrDegenerateVector for zero vector, got %v", err)
	}

	out, err := Decode(v, 1, 2, 2, 0)
	if err != nil {
		t.Fatalf("Decode with zero shots failed: %v", err)
	}
	if !out.Equal(models.Image{{0, 0}, {0, 0}}) {
		t.Errorf("Expected blank image for zero shots, got %v", out)
	}
}

// tensorSum builds the encoding the long way: one dense Kronecker product per
// pixel, summed and normalized.
func tensorSum(t *testing.T, img models.Image, depth int) []float64 {
	dims, err := img.Dims()
	if err != nil {
		t.Fatalf("Dims failed: %v", err)
	}
	total := make([]float64, (1<<depth)*dims.Size())
	for x := 0; x < dims.X; x++ {
		for y := 0; y < dims.Y; y++ {
			pixel, err := statevector.PixelBasis(img[y][x], depth)
			if err != nil {
				t.Fatalf("PixelBasis failed: %v", err)
			}
			position, err := statevector.PositionBasis(x, y, dims.X, dims.Y)
			if err != nil {
				t.Fatalf("PositionBasis failed: %v", err)
			}
			floats.Add(total, statevector.Tensor(pixel, position))
		}
	}
	v, err := statevector.Normalize(total)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return v
}

// TestEncodeMatchesTensorSum verifies the direct index write equals the
// summed Kronecker products
func TestEncodeMatchesTensorSum(t *testing.T) {
	images := []struct {
		name  string
		img   models.Image
		depth int
	}{
		{"2x2 checker", models.Image{{0, 1}, {1, 0}}, 1},
		{"4x4 gradient", createTestImage(4, 4, func(x, y int) int { return (x + y) % 4 }), 2},
		{"8x2 ramp", createTestImage(8, 2, func(x, y int) int { return (x + 8*y) % 8 }), 3},
		{"2x8 xor", createTestImage(2, 8, func(x, y int) int { return (x ^ y) % 16 }), 4},
		{"16x16 depth 8", createTestImage(16, 16, func(x, y int) int { return (x*16 + y) % 256 }), 8},
	}

	for _, tc := range images {
		want := tensorSum(t, tc.img, tc.depth)
		for _, workers := range []int{1, 3, 16} {
			got, err := Encoder{Workers: workers}.Encode(tc.img, tc.depth)
			if err != nil {
				t.Fatalf("%s: Encode failed: %v", tc.name, err)
			}
			if !floats.Equal(got, want) {
				t.Errorf("%s: expected encoding equal to tensor sum with %d workers", tc.name, workers)
			}
		}
	}
}

// TestSamplerNonFinite verifies NaN and infinite amplitudes are rejected
func TestSamplerNonFinite(t *testing.T) {
	tests := []struct {
		name string
		v    []float64
	}{
		{"NaN", []float64{math.NaN(), 1}},
		{"positive infinity", []float64{0.5, math.Inf(1)}},
		{"negative infinity", []float64{math.Inf(-1), 0.5}},
		{"square overflows", []float64{1e200, 0}},
	}
	for _, tt := range tests {
		s, err := NewSampler(tt.v)
		if !errors.Is(err, qerr.ErrOutOfRange) {
			t.Errorf("%s: expected ErrOutOfRange, got %v", tt.name, err)
		}
		if s != nil {
			t.Errorf("%s: expected no sampler", tt.name)
		}
	}

	v := []float64{math.NaN(), 0.5, 0.5, 0.5}
	if _, err := Decode(v, 1, 1, 2, 10); !errors.Is(err, qerr.ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange from Decode, got %v", err)
	}
}
