package fractal

import (
	"gonum.org/v1/gonum/mat"
)

// Resample shrinks block by averaging non-overlapping factor x factor cells
// into single pixels. The block dimensions must be divisible by factor.
func Resample(block mat.Matrix, factor int) *mat.Dense {
	r, c := block.Dims()
	dst := mat.NewDense(r/factor, c/factor, nil)
	resampleInto(dst, block, factor)
	return dst
}

// resampleInto writes the factor-reduced src into dst, which must already
// have the reduced dimensions.
func resampleInto(dst *mat.Dense, src mat.Matrix, factor int) {
	if factor == 1 {
		dst.Copy(src)
		return
	}
	rows, cols := dst.Dims()
	cell := float64(factor * factor)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var sum float64
			for di := 0; di < factor; di++ {
				for dj := 0; dj < factor; dj++ {
					sum += src.At(i*factor+di, j*factor+dj)
				}
			}
			dst.Set(i, j, sum/cell)
		}
	}
}

// ApplySymmetry returns a copy of the square block with sym applied: the
// flip first, then a counter-clockwise rotation. Rotations are exact pixel
// permutations.
func ApplySymmetry(block mat.Matrix, sym Symmetry) *mat.Dense {
	n, _ := block.Dims()
	dst := mat.NewDense(n, n, nil)
	applySymmetryInto(dst, block, sym)
	return dst
}

// applySymmetryInto writes sym(src) into dst. dst and src must be square,
// equally sized and must not share storage.
func applySymmetryInto(dst *mat.Dense, src mat.Matrix, sym Symmetry) {
	n, _ := dst.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			si, sj := sym.source(i, j, n)
			dst.Set(i, j, src.At(si, sj))
		}
	}
}

// source maps an output pixel of an n x n block back to the input pixel it
// is read from.
func (s Symmetry) source(i, j, n int) (int, int) {
	last := n - 1
	// Undo the rotation to find the pixel in the flipped block.
	var a, b int
	switch s.Rotation % 4 {
	case Rotate0:
		a, b = i, j
	case Rotate90:
		a, b = j, last-i
	case Rotate180:
		a, b = last-i, last-j
	case Rotate270:
		a, b = last-j, i
	}
	switch s.Flip {
	case FlipVertical:
		a = last - a
	case FlipHorizontal:
		b = last - b
	}
	return a, b
}

// ApplyAffine returns alpha*block + beta, computed pointwise.
func ApplyAffine(block mat.Matrix, alpha, beta float64) *mat.Dense {
	var dst mat.Dense
	dst.Apply(func(_, _ int, v float64) float64 {
		return alpha*v + beta
	}, block)
	return &dst
}

// TransformBlock applies sym and then the affine luminance map to block.
func TransformBlock(block mat.Matrix, sym Symmetry, alpha, beta float64) *mat.Dense {
	return ApplyAffine(ApplySymmetry(block, sym), alpha, beta)
}
