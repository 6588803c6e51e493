package linear

// Option is a function that configures LinearRegression.
type Option func(*LinearRegression)

// WithFitIntercept sets whether to calculate the intercept.
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// WithCopyX sets whether to copy the X matrix before fitting.
func WithCopyX(copy bool) Option {
	return func(lr *LinearRegression) {
		lr.copyX = copy
	}
}
