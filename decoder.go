package fractal

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Sequence is the list of images produced by decoding: index 0 is the seed
// and index i is the image after i full passes over the code book.
type Sequence []*mat.Dense

// Final returns the last image of the sequence, or nil if it is empty.
func (s Sequence) Final() *mat.Dense {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// Deltas returns, for each i >= 1, the largest absolute per-pixel
// difference between iterations i-1 and i. A shrinking tail indicates
// convergence.
func (s Sequence) Deltas() []float64 {
	if len(s) < 2 {
		return nil
	}
	deltas := make([]float64, len(s)-1)
	for i := 1; i < len(s); i++ {
		deltas[i-1] = MaxDelta(s[i-1], s[i])
	}
	return deltas
}

// MaxDelta returns max |a - b| over all pixels of two equally sized images.
func MaxDelta(a, b mat.Matrix) float64 {
	var diff mat.Dense
	diff.Sub(a, b)
	return floats.Norm(diff.RawMatrix().Data, math.Inf(1))
}

// Decoder reconstructs images from code books by fixed-point iteration.
type Decoder struct {
	// Workers is the number of goroutines range block rows are split
	// across within one iteration.
	Workers int
	// Seed initialises the random seed image.
	Seed int64
	// Progress, if non-nil, is called after every iteration.
	Progress ProgressFunc
}

// DecoderOption is a functional option for configuring a Decoder.
type DecoderOption func(*Decoder)

// NewDecoder creates a Decoder with the given options.
// Default values: Workers=GOMAXPROCS, Seed=current time.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		Workers: runtime.GOMAXPROCS(0),
		Seed:    time.Now().UnixNano(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithDecoderWorkers sets the number of decoding goroutines (minimum 1).
func WithDecoderWorkers(n int) DecoderOption {
	return func(d *Decoder) {
		d.Workers = n
	}
}

// WithSeed fixes the seed of the random starting image.
func WithSeed(seed int64) DecoderOption {
	return func(d *Decoder) {
		d.Seed = seed
	}
}

// WithDecoderProgress sets the per-iteration progress callback.
func WithDecoderProgress(fn ProgressFunc) DecoderOption {
	return func(d *Decoder) {
		d.Progress = fn
	}
}

// Decompress decodes book with a default Decoder.
func Decompress(book *CodeBook, iterations int) (Sequence, error) {
	return NewDecoder().Decompress(book, iterations)
}

// Decompress starts from an image of uniform random integers in [0, 256)
// and applies book iterations times. The returned sequence has
// iterations+1 images, the seed first.
func (d *Decoder) Decompress(book *CodeBook, iterations int) (Sequence, error) {
	if err := book.Validate(); err != nil {
		return nil, err
	}
	return d.DecompressFrom(book, RandomImage(book.Height(), book.Width(), d.Seed), iterations)
}

// DecompressFrom is like Decompress but iterates from the given seed image,
// which becomes element 0 of the sequence and is not modified.
func (d *Decoder) DecompressFrom(book *CodeBook, seed *mat.Dense, iterations int) (Sequence, error) {
	if err := book.Validate(); err != nil {
		return nil, err
	}
	if iterations < 0 {
		return nil, fmt.Errorf("%w: negative iteration count %d", ErrInvalidParameters, iterations)
	}
	if seed == nil {
		return nil, fmt.Errorf("%w: nil seed image", ErrInvalidParameters)
	}
	if r, c := seed.Dims(); r != book.Height() || c != book.Width() {
		return nil, fmt.Errorf("%w: seed is %dx%d, code book expects %dx%d",
			ErrInvalidParameters, c, r, book.Width(), book.Height())
	}

	seq := make(Sequence, 0, iterations+1)
	seq = append(seq, seed)
	for i := 1; i <= iterations; i++ {
		next := mat.NewDense(book.Height(), book.Width(), nil)
		d.pass(book, seq[i-1], next)
		seq = append(seq, next)
		if d.Progress != nil {
			d.Progress(i, iterations)
		}
	}
	return seq, nil
}

// Apply runs a single pass of book over prev and returns the new image.
// Applied to the original image it yields the collage, whose squared error
// against the original is the sum of the encoder's block residuals.
func (d *Decoder) Apply(book *CodeBook, prev *mat.Dense) (*mat.Dense, error) {
	seq, err := d.DecompressFrom(book, prev, 1)
	if err != nil {
		return nil, err
	}
	return seq[1], nil
}

// pass writes one iteration into next, reading only from prev. Range blocks
// partition the image, so rows can be processed concurrently without
// locking.
func (d *Decoder) pass(book *CodeBook, prev, next *mat.Dense) {
	p := book.Params
	size, factor := p.RangeSize, p.Factor()

	forEachRow(book.Rows, d.Workers, func(row int) {
		shrunk := mat.NewDense(size, size, nil)
		for col := 0; col < book.Cols; col++ {
			e := book.At(row, col)
			top, left := e.DomainRow*p.Stride, e.DomainCol*p.Stride
			resampleInto(shrunk, prev.Slice(top, top+p.DomainSize, left, left+p.DomainSize), factor)

			dst := next.Slice(row*size, (row+1)*size, col*size, (col+1)*size).(*mat.Dense)
			applySymmetryInto(dst, shrunk, e.Symmetry)
			dst.Apply(func(_, _ int, v float64) float64 {
				return e.Alpha*v + e.Beta
			}, dst)
		}
	})
}

// RandomImage returns a height x width image of independent uniform random
// integers in [0, 256) drawn from a source seeded with seed.
func RandomImage(height, width int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, height*width)
	for i := range data {
		data[i] = float64(rng.Intn(256))
	}
	return mat.NewDense(height, width, data)
}
