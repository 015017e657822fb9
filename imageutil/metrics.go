package imageutil

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MaxPixelValue is the peak intensity used by PSNR.
const MaxPixelValue = 255.0

// MSE returns the mean squared error between two equally sized images, or
// math.MaxFloat64 if their dimensions differ.
func MSE(a, b mat.Matrix) float64 {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return math.MaxFloat64
	}
	var diff mat.Dense
	diff.Sub(a, b)
	d := diff.RawMatrix().Data
	return floats.Dot(d, d) / float64(ar*ac)
}

// RMSE returns the root mean squared error between two images.
func RMSE(a, b mat.Matrix) float64 {
	return math.Sqrt(MSE(a, b))
}

// PSNR returns the peak signal-to-noise ratio in dB of compressed against
// original. Identical images yield +Inf.
func PSNR(original, compressed mat.Matrix) float64 {
	mse := MSE(original, compressed)
	if math.Abs(mse) <= 1e-8 {
		return math.Inf(1)
	}
	return 20 * math.Log10(MaxPixelValue/math.Sqrt(mse))
}

// PeakError returns the largest signed difference decoded - original.
func PeakError(original, decoded mat.Matrix) float64 {
	var diff mat.Dense
	diff.Sub(decoded, original)
	return floats.Max(diff.RawMatrix().Data)
}
