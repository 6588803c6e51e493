// Package preprocessing provides feature scaling transformers.
package preprocessing

import (
	"math"
	"runtime"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tripml/core/model"
	"github.com/YuminosukeSato/tripml/core/parallel"
	"github.com/YuminosukeSato/tripml/pkg/errors"
)

// StandardScaler standardizes features to zero mean and unit variance.
type StandardScaler struct {
	model.BaseEstimator

	// Mean holds the per-feature mean.
	Mean []float64

	// Scale holds the per-feature standard deviation.
	Scale []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int

	// WithMean controls whether the mean is subtracted.
	WithMean bool

	// WithStd controls whether values are divided by the standard deviation.
	WithStd bool
}

// NewStandardScaler creates a StandardScaler.
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault creates a StandardScaler that centers and scales.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// moments accumulates per-feature sums over a row partition.
type moments struct {
	sum   []float64
	sumSq []float64
}

// Fit computes the per-feature mean and standard deviation of X. The raw
// moments are accumulated per row partition and reduced.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	total, err := parallel.MapReduce(
		parallel.Split(r, runtime.NumCPU()),
		func(rng parallel.Range) (moments, error) {
			m := moments{sum: make([]float64, c), sumSq: make([]float64, c)}
			for i := rng.Start; i < rng.End; i++ {
				for j := 0; j < c; j++ {
					v := X.At(i, j)
					m.sum[j] += v
					m.sumSq[j] += v * v
				}
			}
			return m, nil
		},
		func(acc, partial moments) moments {
			for j := 0; j < c; j++ {
				acc.sum[j] += partial.sum[j]
				acc.sumSq[j] += partial.sumSq[j]
			}
			return acc
		},
	)
	if err != nil {
		return err
	}

	if s.WithMean {
		for j := 0; j < c; j++ {
			s.Mean[j] = total.sum[j] / float64(r)
		}
	}

	if s.WithStd {
		for j := 0; j < c; j++ {
			variance := total.sumSq[j]/float64(r) - s.Mean[j]*s.Mean[j]
			if variance < 0 {
				variance = 0
			}
			s.Scale[j] = math.Sqrt(variance)

			// A constant feature keeps scale 1 so Transform is a no-op on it.
			if s.Scale[j] == 0 {
				s.Scale[j] = 1.0
			}
		}
	} else {
		for j := 0; j < c; j++ {
			s.Scale[j] = 1.0
		}
	}

	s.SetFitted()
	return nil
}

// Transform standardizes X with the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return out, nil
}

// FitTransform fits the scaler and transforms X in one call.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized values back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}
	return out, nil
}
