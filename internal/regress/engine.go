package regress

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/anvgorok/repshape/internal/logger"
	"github.com/anvgorok/repshape/internal/models"
)

// designColumns maps design-matrix column index to reported coefficient
// name. The length bucket is one-hot encoded against the Medium reference
// category; booleans encode as 0/1.
var designColumns = []string{
	models.CoefLengthLong,
	models.CoefLengthShort,
	models.CoefCode,
	models.CoefImage,
	models.CoefRef,
}

// Engine fits one model per shape segment and maps coefficients back to the
// fixed named-coefficient set.
type Engine struct {
	fitter         Fitter
	minSegmentSize int
	parallel       bool
}

// NewEngine creates an Engine. Segments with fewer than minSegmentSize
// answers are omitted from the result, not zero-filled. With parallel set,
// segments fit concurrently; segments share no mutable state, so the result
// is identical either way.
func NewEngine(fitter Fitter, minSegmentSize int, parallel bool) *Engine {
	return &Engine{fitter: fitter, minSegmentSize: minSegmentSize, parallel: parallel}
}

// FitAll groups answers by shape and fits each segment that meets the size
// floor. A non-convergent fit is a per-segment warning, not an error; a fit
// that fails outright (rank-deficient segment) aborts the run.
func (e *Engine) FitAll(ctx context.Context, answers []models.AnswerFeatures) (map[models.Shape]models.SegmentResult, error) {
	segments := make(map[models.Shape][]models.AnswerFeatures)
	for _, a := range answers {
		segments[a.Shape] = append(segments[a.Shape], a)
	}

	results := make(map[models.Shape]models.SegmentResult)
	var mu sync.Mutex

	fitSegment := func(shape models.Shape, seg []models.AnswerFeatures) error {
		result, err := e.fitOne(shape, seg)
		if err != nil {
			return fmt.Errorf("failed to fit segment %s: %w", shape, err)
		}
		mu.Lock()
		results[shape] = result
		mu.Unlock()
		return nil
	}

	if e.parallel {
		g, _ := errgroup.WithContext(ctx)
		for shape, seg := range segments {
			if len(seg) < e.minSegmentSize {
				logger.Info("Segment %s omitted: %d answers below floor of %d", shape, len(seg), e.minSegmentSize)
				continue
			}
			shape, seg := shape, seg
			g.Go(func() error {
				return fitSegment(shape, seg)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return results, nil
	}

	for shape, seg := range segments {
		if len(seg) < e.minSegmentSize {
			logger.Info("Segment %s omitted: %d answers below floor of %d", shape, len(seg), e.minSegmentSize)
			continue
		}
		if err := fitSegment(shape, seg); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (e *Engine) fitOne(shape models.Shape, seg []models.AnswerFeatures) (models.SegmentResult, error) {
	x := make([][]float64, len(seg))
	y := make([]float64, len(seg))
	for i, a := range seg {
		x[i] = encode(a)
		if a.Preferred() {
			y[i] = 1
		}
	}

	fit, err := e.fitter.Fit(x, y)
	if err != nil {
		return models.SegmentResult{}, err
	}

	coefs := make(map[string]float64, len(designColumns))
	for j, name := range designColumns {
		coefs[name] = fit.Coefficients[j]
	}

	result := models.SegmentResult{
		Shape:        shape,
		Coefficients: coefs,
		Intercept:    fit.Intercept,
		Observations: len(seg),
		Converged:    fit.Converged,
	}
	if !fit.Converged {
		result.Warning = fmt.Sprintf("did not converge after %d iterations; coefficients are provisional", fit.Iterations)
		logger.Warn("Segment %s: %s", shape, result.Warning)
	}
	return result, nil
}

// encode one-hot encodes an answer's features in designColumns order.
func encode(a models.AnswerFeatures) []float64 {
	row := make([]float64, len(designColumns))
	if a.LengthBucket == models.LengthLong {
		row[0] = 1
	}
	if a.LengthBucket == models.LengthShort {
		row[1] = 1
	}
	if a.HasCode {
		row[2] = 1
	}
	if a.HasImage {
		row[3] = 1
	}
	if a.HasRef {
		row[4] = 1
	}
	return row
}
