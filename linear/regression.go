// Package linear provides the ordinary least squares estimator used by the
// pipeline.
package linear

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tripml/core/model"
	"github.com/YuminosukeSato/tripml/core/parallel"
	"github.com/YuminosukeSato/tripml/metrics"
	"github.com/YuminosukeSato/tripml/pkg/errors"
)

const modelVersion = "1.0.0"

// LinearRegression is an ordinary least squares regression model. The fit
// solves the least-squares system with a QR factorization, which is more
// numerically stable than the explicit normal equations.
type LinearRegression struct {
	state *model.StateManager

	// hyperparameters
	fitIntercept bool // whether to learn the intercept
	copyX        bool // whether to copy the input matrix before fitting

	// learned parameters
	coef_      []float64
	intercept_ float64

	nFeatures_ int
	nSamples_  int
}

// NewLinearRegression creates a linear regression model. By default the
// intercept is fitted and the input matrix is copied.
func NewLinearRegression(options ...Option) *LinearRegression {
	lr := &LinearRegression{
		state:        model.NewStateManager(),
		fitIntercept: true,
		copyX:        true,
	}

	for _, opt := range options {
		opt(lr)
	}

	return lr
}

// Fit trains the model on X (n_samples x n_features) and y (n_samples x 1).
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != rows {
		return errors.NewDimensionError("LinearRegression.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	lr.nSamples_ = rows
	lr.nFeatures_ = cols

	var XWork mat.Matrix
	if lr.copyX {
		XWork = mat.DenseCopyOf(X)
	} else {
		XWork = X
	}

	var XFit mat.Matrix
	if lr.fitIntercept {
		// Prepend a column of ones for the intercept term: [1 | X].
		XWithIntercept := mat.NewDense(rows, cols+1, nil)

		const parallelThreshold = 1000
		parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				XWithIntercept.Set(i, 0, 1.0)
				for j := 0; j < cols; j++ {
					XWithIntercept.Set(i, j+1, XWork.At(i, j))
				}
			}
		})
		XFit = XWithIntercept
	} else {
		XFit = XWork
	}

	_, qrCols := XFit.Dims()
	if rows < qrCols {
		return errors.NewModelError("LinearRegression.Fit", "underdetermined system", errors.ErrSingularMatrix)
	}

	var qr mat.QR
	qr.Factorize(XFit)

	coefficients := mat.NewDense(qrCols, 1, nil)
	if err := qr.SolveTo(coefficients, false, y); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	if lr.fitIntercept {
		lr.intercept_ = coefficients.At(0, 0)
		lr.coef_ = make([]float64, cols)
		for i := 0; i < cols; i++ {
			lr.coef_[i] = coefficients.At(i+1, 0)
		}
	} else {
		lr.intercept_ = 0.0
		lr.coef_ = make([]float64, cols)
		for i := 0; i < cols; i++ {
			lr.coef_[i] = coefficients.At(i, 0)
		}
	}

	lr.state.SetFitted()
	lr.state.SetDimensions(lr.nFeatures_, lr.nSamples_)
	return nil
}

// Predict returns predictions y = X*coef + intercept as an n x 1 matrix.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	rows, cols := X.Dims()
	if cols != lr.nFeatures_ {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.nFeatures_, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		pred := lr.intercept_
		for j := 0; j < cols; j++ {
			pred += X.At(i, j) * lr.coef_[j]
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Score returns the coefficient of determination R^2 of the prediction.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.state.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}

	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, predictions)
}

// Coef returns a copy of the learned weight coefficients.
func (lr *LinearRegression) Coef() []float64 {
	if lr.coef_ == nil {
		return nil
	}
	coef := make([]float64, len(lr.coef_))
	copy(coef, lr.coef_)
	return coef
}

// Intercept returns the learned intercept.
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept_
}

// IsFitted returns whether the model has been fitted.
func (lr *LinearRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// GetParams returns the model's hyperparameters.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
		"copy_X":        lr.copyX,
	}
}

// SetParams sets the model's hyperparameters.
func (lr *LinearRegression) SetParams(params map[string]interface{}) error {
	if v, ok := params["fit_intercept"].(bool); ok {
		lr.fitIntercept = v
	}
	if v, ok := params["copy_X"].(bool); ok {
		lr.copyX = v
	}
	return nil
}

// ExportWeights exports the fitted parameters for persistence. A checksum of
// the coefficients is included so imports can detect corruption.
func (lr *LinearRegression) ExportWeights() (*model.ModelWeights, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "ExportWeights")
	}

	weights := &model.ModelWeights{
		ModelType:       "LinearRegression",
		Version:         modelVersion,
		Coefficients:    lr.Coef(),
		Intercept:       lr.intercept_,
		IsFitted:        true,
		Hyperparameters: lr.GetParams(),
		Metadata: map[string]interface{}{
			"n_features": lr.nFeatures_,
			"n_samples":  lr.nSamples_,
		},
	}

	data, _ := json.Marshal(weights.Coefficients)
	hash := sha256.Sum256(data)
	weights.Metadata["checksum"] = hex.EncodeToString(hash[:])

	return weights, nil
}

// ImportWeights restores fitted parameters exported by ExportWeights.
func (lr *LinearRegression) ImportWeights(weights *model.ModelWeights) error {
	if weights == nil {
		return errors.NewValueError("LinearRegression.ImportWeights", "weights cannot be nil")
	}
	if weights.ModelType != "LinearRegression" {
		return errors.Newf("model type mismatch: expected LinearRegression, got %s", weights.ModelType)
	}

	if err := lr.SetParams(weights.Hyperparameters); err != nil {
		return err
	}

	lr.coef_ = make([]float64, len(weights.Coefficients))
	copy(lr.coef_, weights.Coefficients)
	lr.intercept_ = weights.Intercept

	if v, ok := weights.Metadata["n_features"].(float64); ok {
		lr.nFeatures_ = int(v)
	}
	if v, ok := weights.Metadata["n_samples"].(float64); ok {
		lr.nSamples_ = int(v)
	}

	if checksumStr, ok := weights.Metadata["checksum"].(string); ok {
		data, _ := json.Marshal(weights.Coefficients)
		hash := sha256.Sum256(data)
		if checksumStr != hex.EncodeToString(hash[:]) {
			return errors.Newf("checksum mismatch: weights may be corrupted")
		}
	}

	lr.state.SetFitted()
	lr.state.SetDimensions(lr.nFeatures_, lr.nSamples_)
	return nil
}

// String returns the string representation of the model.
func (lr *LinearRegression) String() string {
	if !lr.state.IsFitted() {
		return fmt.Sprintf("LinearRegression(fit_intercept=%t, copy_X=%t)", lr.fitIntercept, lr.copyX)
	}
	return fmt.Sprintf("LinearRegression(fit_intercept=%t, n_features=%d, fitted=true)", lr.fitIntercept, lr.nFeatures_)
}
