package fractal

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Candidates is the set of resampled, symmetry-transformed domain blocks an
// encoder searches for one image and one set of Params. It is stored as a
// struct of arrays: candidate i has position (Rows[i], Cols[i]) in stride
// units, symmetry Syms[i] and its RangeSize x RangeSize pixels at
// Pixels[i*BlockLen() : (i+1)*BlockLen()] in row-major order.
type Candidates struct {
	Size   int
	Rows   []int
	Cols   []int
	Syms   []Symmetry
	Pixels []float64

	// Per-candidate sum and sum of squares, used by the affine fitter.
	sum   []float64
	sumSq []float64
}

// Len returns the number of candidates.
func (c *Candidates) Len() int {
	return len(c.Rows)
}

// BlockLen returns the number of pixels in one candidate block.
func (c *Candidates) BlockLen() int {
	return c.Size * c.Size
}

// Block returns the pixels of candidate i in row-major order. The slice
// aliases the candidate pool.
func (c *Candidates) Block(i int) []float64 {
	n := c.BlockLen()
	return c.Pixels[i*n : (i+1)*n]
}

// Dense returns candidate i as a Size x Size matrix sharing the pool's
// storage.
func (c *Candidates) Dense(i int) *mat.Dense {
	return mat.NewDense(c.Size, c.Size, c.Block(i))
}

// GenerateCandidates enumerates every domain block position (sliding window
// of step p.Stride) crossed with every enabled symmetry. Each domain block is
// resampled by p.Factor() and transformed once, so the result can be reused
// for every range block. Enumeration order is row position, column
// position, flip direction, rotation.
func GenerateCandidates(img *mat.Dense, p Params) (*Candidates, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidParameters)
	}
	height, width := img.Dims()
	if err := p.Validate(height, width); err != nil {
		return nil, err
	}

	syms := Symmetries(p.Rotate, p.Flip)
	rowsN, colsN := p.DomainPositions(height), p.DomainPositions(width)
	count := rowsN * colsN * len(syms)
	size := p.RangeSize
	blockLen := size * size

	c := &Candidates{
		Size:   size,
		Rows:   make([]int, 0, count),
		Cols:   make([]int, 0, count),
		Syms:   make([]Symmetry, 0, count),
		Pixels: make([]float64, count*blockLen),
		sum:    make([]float64, 0, count),
		sumSq:  make([]float64, 0, count),
	}

	factor := p.Factor()
	shrunk := mat.NewDense(size, size, nil)
	for k := 0; k < rowsN; k++ {
		for l := 0; l < colsN; l++ {
			top, left := k*p.Stride, l*p.Stride
			domain := img.Slice(top, top+p.DomainSize, left, left+p.DomainSize)
			resampleInto(shrunk, domain, factor)

			for _, sym := range syms {
				i := len(c.Rows)
				block := mat.NewDense(size, size, c.Pixels[i*blockLen:(i+1)*blockLen])
				applySymmetryInto(block, shrunk, sym)

				pix := c.Block(i)
				c.Rows = append(c.Rows, k)
				c.Cols = append(c.Cols, l)
				c.Syms = append(c.Syms, sym)
				c.sum = append(c.sum, floats.Sum(pix))
				c.sumSq = append(c.sumSq, floats.Dot(pix, pix))
			}
		}
	}
	return c, nil
}
