package regress

import (
	"errors"
	"fmt"
	"math"
)

// weightFloor keeps the IRLS weight matrix away from singularity when fitted
// probabilities saturate near 0 or 1.
const weightFloor = 1e-10

// conditioning is added to the Hessian diagonal before solving. It keeps a
// constant-zero feature column (gradient zero, curvature zero) at a zero
// coefficient instead of aborting on a singular system. It is orders of
// magnitude below the fit tolerance, not a regularization penalty.
const conditioning = 1e-9

// Logistic fits unregularized logistic regression by iteratively reweighted
// least squares (Newton-Raphson on the log-likelihood).
type Logistic struct {
	maxIterations int
	tolerance     float64
}

// NewLogistic creates a Logistic solver. maxIterations caps the Newton
// steps; tolerance is the max absolute coefficient delta that counts as
// converged.
func NewLogistic(maxIterations int, tolerance float64) *Logistic {
	return &Logistic{maxIterations: maxIterations, tolerance: tolerance}
}

// Fit solves for the coefficient vector maximizing the Bernoulli
// log-likelihood. The intercept is handled as an implicit leading column.
// Reaching the iteration cap returns the latest estimate with Converged
// false rather than an error.
func (l *Logistic) Fit(x [][]float64, y []float64) (FitResult, error) {
	n := len(x)
	if n == 0 {
		return FitResult{}, errors.New("empty design matrix")
	}
	if len(y) != n {
		return FitResult{}, fmt.Errorf("label count %d does not match row count %d", len(y), n)
	}
	p := len(x[0]) + 1 // implicit intercept column

	beta := make([]float64, p)
	for iter := 1; iter <= l.maxIterations; iter++ {
		// Newton step: solve (X'WX) delta = X'(y - mu).
		hessian := newMatrix(p)
		gradient := make([]float64, p)
		for i, row := range x {
			eta := beta[0]
			for j, v := range row {
				eta += beta[j+1] * v
			}
			mu := sigmoid(eta)
			w := mu * (1 - mu)
			if w < weightFloor {
				w = weightFloor
			}
			resid := y[i] - mu

			for a := 0; a < p; a++ {
				xa := designValue(row, a)
				gradient[a] += xa * resid
				for b := a; b < p; b++ {
					hessian[a][b] += w * xa * designValue(row, b)
				}
			}
		}
		// Mirror the upper triangle and condition the diagonal.
		for a := 0; a < p; a++ {
			for b := 0; b < a; b++ {
				hessian[a][b] = hessian[b][a]
			}
			hessian[a][a] += conditioning
		}

		delta, err := solve(hessian, gradient)
		if err != nil {
			return FitResult{}, fmt.Errorf("newton step %d: %w", iter, err)
		}

		maxDelta := 0.0
		for a := 0; a < p; a++ {
			beta[a] += delta[a]
			if d := math.Abs(delta[a]); d > maxDelta {
				maxDelta = d
			}
		}
		if maxDelta < l.tolerance {
			return FitResult{
				Coefficients: beta[1:],
				Intercept:    beta[0],
				Converged:    true,
				Iterations:   iter,
			}, nil
		}
	}

	return FitResult{
		Coefficients: beta[1:],
		Intercept:    beta[0],
		Converged:    false,
		Iterations:   l.maxIterations,
	}, nil
}

// designValue returns column a of the design row, with column 0 the implicit
// intercept.
func designValue(row []float64, a int) float64 {
	if a == 0 {
		return 1
	}
	return row[a-1]
}

func sigmoid(eta float64) float64 {
	return 1 / (1 + math.Exp(-eta))
}

func newMatrix(p int) [][]float64 {
	m := make([][]float64, p)
	for i := range m {
		m[i] = make([]float64, p)
	}
	return m
}

// solve performs Gaussian elimination with partial pivoting on a copy of the
// system. A vanishing pivot means the design matrix is rank-deficient.
func solve(a [][]float64, b []float64) ([]float64, error) {
	p := len(b)
	m := newMatrix(p)
	for i := range a {
		copy(m[i], a[i])
	}
	rhs := make([]float64, p)
	copy(rhs, b)

	for col := 0; col < p; col++ {
		pivot := col
		for r := col + 1; r < p; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, errors.New("singular system: design matrix is rank-deficient")
		}
		m[col], m[pivot] = m[pivot], m[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]

		for r := col + 1; r < p; r++ {
			factor := m[r][col] / m[col][col]
			for c := col; c < p; c++ {
				m[r][c] -= factor * m[col][c]
			}
			rhs[r] -= factor * rhs[col]
		}
	}

	x := make([]float64, p)
	for r := p - 1; r >= 0; r-- {
		sum := rhs[r]
		for c := r + 1; c < p; c++ {
			sum -= m[r][c] * x[c]
		}
		x[r] = sum / m[r][r]
	}
	return x, nil
}
