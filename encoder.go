package fractal

import (
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ProgressFunc is called after each range block is encoded (or each decode
// iteration completes) with the number of finished units and the total.
// With more than one worker it may be called from several goroutines, but
// never concurrently.
type ProgressFunc func(done, total int)

// Encoder performs the exhaustive fractal code book search.
// An Encoder holds no per-image state and may be reused.
type Encoder struct {
	// ContrastBound clamps the fitted contrast to [-ContrastBound,
	// ContrastBound].
	ContrastBound float64
	// Workers is the number of goroutines range block rows are split
	// across. The result does not depend on it.
	Workers int
	// Progress, if non-nil, receives one call per encoded range block.
	Progress ProgressFunc
}

// EncoderOption is a functional option for configuring an Encoder.
type EncoderOption func(*Encoder)

// NewEncoder creates an Encoder with the given options.
// Default values: ContrastBound=DefaultContrastBound, Workers=GOMAXPROCS.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{
		ContrastBound: DefaultContrastBound,
		Workers:       runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithContrastBound sets the contraction bound on fitted contrasts.
func WithContrastBound(bound float64) EncoderOption {
	return func(e *Encoder) {
		e.ContrastBound = bound
	}
}

// WithWorkers sets the number of encoding goroutines (minimum 1).
func WithWorkers(n int) EncoderOption {
	return func(e *Encoder) {
		e.Workers = n
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) EncoderOption {
	return func(e *Encoder) {
		e.Progress = fn
	}
}

// Compress encodes img with a default Encoder.
func Compress(img *mat.Dense, p Params) (*CodeBook, error) {
	return NewEncoder().Compress(img, p)
}

// Compress encodes img into a code book with one entry per range block.
// Parameters are validated before the search starts; on error no code
// book is returned.
func (e *Encoder) Compress(img *mat.Dense, p Params) (*CodeBook, error) {
	cands, err := GenerateCandidates(img, p)
	if err != nil {
		return nil, err
	}

	height, width := img.Dims()
	book := newCodeBook(p, height/p.RangeSize, width/p.RangeSize)
	total := len(book.Entries)

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		if e.Progress == nil {
			return
		}
		mu.Lock()
		done++
		e.Progress(done, total)
		mu.Unlock()
	}

	forEachRow(book.Rows, e.Workers, func(row int) {
		target := make([]float64, p.RangeSize*p.RangeSize)
		for col := 0; col < book.Cols; col++ {
			copyBlock(target, img, row*p.RangeSize, col*p.RangeSize, p.RangeSize)
			book.Entries[row*book.Cols+col] = e.bestMatch(cands, target)
			report()
		}
	})
	return book, nil
}

// bestMatch scans every candidate for the minimum-residual fit of target.
// Ties go to the earliest candidate in enumeration order.
func (e *Encoder) bestMatch(cands *Candidates, target []float64) CodeEntry {
	sumR := floats.Sum(target)
	best, bestResidual := 0, math.Inf(1)
	var bestAlpha, bestBeta float64

	for i := 0; i < cands.Len(); i++ {
		d := cands.Block(i)
		alpha, beta := fitAffine(d, target, cands.sum[i], cands.sumSq[i], sumR, e.ContrastBound)
		res := residual(d, target, alpha, beta)
		if res < bestResidual {
			best, bestResidual = i, res
			bestAlpha, bestBeta = alpha, beta
		}
	}

	return CodeEntry{
		DomainRow: cands.Rows[best],
		DomainCol: cands.Cols[best],
		Symmetry:  cands.Syms[best],
		Alpha:     bestAlpha,
		Beta:      bestBeta,
	}
}

// copyBlock copies the size x size block of img at (top, left) into dst in
// row-major order.
func copyBlock(dst []float64, img *mat.Dense, top, left, size int) {
	block := img.Slice(top, top+size, left, left+size)
	for i := 0; i < size; i++ {
		mat.Row(dst[i*size:(i+1)*size], i, block)
	}
}

// forEachRow calls fn for every row in [0, rows), spread over up to
// workers goroutines. Each row is visited exactly once.
func forEachRow(rows, workers int, fn func(row int)) {
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}
	if workers <= 1 {
		for row := 0; row < rows; row++ {
			fn(row)
		}
		return
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for row := w; row < rows; row += workers {
				fn(row)
			}
		}(w)
	}
	wg.Wait()
}
