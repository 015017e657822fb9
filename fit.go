package fractal

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// degenerateTolerance is the relative variance below which a domain block is
// treated as constant.
const degenerateTolerance = 1e-12

// FitAffine finds the contrast alpha and brightness beta minimising
// sum((rng - (alpha*domain + beta))^2) subject to |alpha| <= bound. The two
// blocks must have the same shape. A constant domain block yields alpha = 0
// and beta = mean(rng).
func FitAffine(domain, rng mat.Matrix, bound float64) (alpha, beta float64) {
	d, r := flatten(domain), flatten(rng)
	return fitAffine(d, r, floats.Sum(d), floats.Dot(d, d), floats.Sum(r), bound)
}

// Residual returns sum((rng - (alpha*domain + beta))^2).
func Residual(domain, rng mat.Matrix, alpha, beta float64) float64 {
	return residual(flatten(domain), flatten(rng), alpha, beta)
}

// fitAffine solves the bounded two-variable least squares problem in closed
// form. sumD, sumDD and sumR are the sum of d, the sum of d squared and the
// sum of r.
//
// With beta eliminated the objective is a convex parabola in alpha, so the
// bounded optimum is the unconstrained optimum clamped to [-bound, bound],
// and beta is then the exact optimum for that alpha.
func fitAffine(d, r []float64, sumD, sumDD, sumR, bound float64) (alpha, beta float64) {
	n := float64(len(d))
	if n == 0 {
		return 0, 0
	}
	denom := n*sumDD - sumD*sumD
	if denom <= degenerateTolerance*math.Max(1, n*sumDD) {
		return 0, sumR / n
	}
	alpha = (n*floats.Dot(d, r) - sumD*sumR) / denom
	alpha = math.Max(-bound, math.Min(bound, alpha))
	beta = (sumR - alpha*sumD) / n
	return alpha, beta
}

func residual(d, r []float64, alpha, beta float64) float64 {
	var sum float64
	for i, v := range d {
		e := r[i] - (alpha*v + beta)
		sum += e * e
	}
	return sum
}

// flatten returns the elements of m in row-major order.
func flatten(m mat.Matrix) []float64 {
	if d, ok := m.(*mat.Dense); ok {
		raw := d.RawMatrix()
		if raw.Stride == raw.Cols {
			return raw.Data[:raw.Rows*raw.Cols]
		}
	}
	var c mat.Dense
	c.CloneFrom(m)
	return c.RawMatrix().Data
}
