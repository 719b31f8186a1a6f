// Package regress fits one binary-classification model per expertise shape
// and assembles the named-coefficient results for reporting.
//
// The numeric solver is decoupled behind the Fitter interface: the engine
// only needs fit(design matrix, labels) -> (coefficients, intercept), so any
// compliant unregularized logistic regression can supply it.
package regress

// FitResult holds the outcome of a single model fit. Coefficients are in
// design-matrix column order; the intercept is separate.
type FitResult struct {
	Coefficients []float64
	Intercept    float64
	Converged    bool
	Iterations   int
}

// Fitter fits a binary-classification model. x is row-major with one row per
// observation; y holds 0/1 labels, one per row. A non-convergent fit is not
// an error: the best coefficients found are returned with Converged false.
type Fitter interface {
	Fit(x [][]float64, y []float64) (FitResult, error)
}
