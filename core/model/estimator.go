package model

import "gonum.org/v1/gonum/mat"

// Fitter is the interface for trainable models.
type Fitter interface {
	// Fit trains the model on the given data.
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for models that can predict.
type Predictor interface {
	// Predict returns predictions for the input data.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute a goodness-of-fit score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor combines the interfaces a regression estimator satisfies.
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// Transformer is the interface for data transformations.
type Transformer interface {
	// Fit learns the transformation parameters.
	Fit(X mat.Matrix) error

	// Transform applies the transformation.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits and transforms in one call.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// LinearModel is the interface for linear estimators exposing their
// learned parameters.
type LinearModel interface {
	// Coef returns the learned weight coefficients.
	Coef() []float64
	// Intercept returns the learned intercept.
	Intercept() float64
}
