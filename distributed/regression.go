package distributed

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tripml/core/model"
	"github.com/YuminosukeSato/tripml/core/parallel"
	"github.com/YuminosukeSato/tripml/metrics"
	"github.com/YuminosukeSato/tripml/pkg/errors"
	"github.com/YuminosukeSato/tripml/pkg/log"
)

// LinearRegression is the partitioned form of the OLS estimator. It is bound
// to a Cluster: Fit scatters row ranges across the workers, each worker
// computes the partial Gram products of its partition, and the aggregated
// normal equations are solved centrally.
//
// The fitted coefficients match the single-node estimator on the same data
// up to the floating-point reduction order.
type LinearRegression struct {
	state   *model.StateManager
	cluster *Cluster

	fitIntercept bool

	coef_      []float64
	intercept_ float64

	nFeatures_   int
	nSamples_    int
	nPartitions_ int
}

// Option configures the distributed LinearRegression.
type Option func(*LinearRegression)

// WithFitIntercept sets whether to calculate the intercept.
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// NewLinearRegression creates a distributed linear regression model bound to
// the given cluster.
func NewLinearRegression(cluster *Cluster, options ...Option) *LinearRegression {
	lr := &LinearRegression{
		state:        model.NewStateManager(),
		cluster:      cluster,
		fitIntercept: true,
	}

	for _, opt := range options {
		opt(lr)
	}

	return lr
}

// gramPartial is one partition's contribution to the normal equations:
// G = Z^T Z and b = Z^T y over the partition's rows, where Z is the design
// matrix [1 | X] (or X when the intercept is disabled).
type gramPartial struct {
	g *mat.SymDense
	b *mat.VecDense
}

// Fit trains the model. It satisfies model.Fitter; use FitContext to allow
// cancellation between partitions.
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	return lr.FitContext(context.Background(), X, y)
}

// FitContext trains the model, aborting between partitions when ctx is done.
func (lr *LinearRegression) FitContext(ctx context.Context, X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("distributed.LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != rows {
		return errors.NewDimensionError("distributed.LinearRegression.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("distributed.LinearRegression.Fit", "y must be a column vector")
	}

	dim := cols
	if lr.fitIntercept {
		dim++
	}

	ranges := parallel.Split(rows, lr.cluster.Workers())
	lr.nPartitions_ = len(ranges)

	partials := make([]gramPartial, len(ranges))
	taskErrs := make([]error, len(ranges))

	var wg sync.WaitGroup
	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "distributed.LinearRegression.Fit")
		}

		wg.Add(1)
		i, r := i, r
		if err := lr.cluster.Submit(func() {
			defer wg.Done()
			partials[i] = computeGramPartial(X, y, r, dim, lr.fitIntercept)
			taskErrs[i] = errors.CheckNumericalStability(
				"distributed.LinearRegression.Fit", partials[i].g.RawSymmetric().Data, i)
		}); err != nil {
			wg.Done()
			return err
		}
	}
	wg.Wait()

	for _, err := range taskErrs {
		if err != nil {
			return err
		}
	}

	// Aggregate the partial Gram products; the reduction is associative so
	// partition order only affects floating-point rounding.
	gram := mat.NewSymDense(dim, nil)
	rhs := mat.NewVecDense(dim, nil)
	for _, p := range partials {
		gram.AddSym(gram, p.g)
		rhs.AddVec(rhs, p.b)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return errors.NewModelError("distributed.LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	solution := mat.NewVecDense(dim, nil)
	if err := chol.SolveVecTo(solution, rhs); err != nil {
		return errors.NewModelError("distributed.LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	if lr.fitIntercept {
		lr.intercept_ = solution.AtVec(0)
		lr.coef_ = make([]float64, cols)
		for i := 0; i < cols; i++ {
			lr.coef_[i] = solution.AtVec(i + 1)
		}
	} else {
		lr.intercept_ = 0
		lr.coef_ = make([]float64, cols)
		for i := 0; i < cols; i++ {
			lr.coef_[i] = solution.AtVec(i)
		}
	}

	lr.nFeatures_ = cols
	lr.nSamples_ = rows
	lr.state.SetFitted()
	lr.state.SetDimensions(cols, rows)

	lr.cluster.logger.Debug("distributed fit complete",
		log.ModelNameKey, "LinearRegression",
		log.OperationKey, "fit",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.PartitionsKey, len(ranges),
	)
	return nil
}

func computeGramPartial(X, y mat.Matrix, r parallel.Range, dim int, fitIntercept bool) gramPartial {
	g := mat.NewSymDense(dim, nil)
	b := mat.NewVecDense(dim, nil)
	z := make([]float64, dim)

	_, cols := X.Dims()
	for i := r.Start; i < r.End; i++ {
		if fitIntercept {
			z[0] = 1
			for j := 0; j < cols; j++ {
				z[j+1] = X.At(i, j)
			}
		} else {
			for j := 0; j < cols; j++ {
				z[j] = X.At(i, j)
			}
		}

		yi := y.At(i, 0)
		for a := 0; a < dim; a++ {
			b.SetVec(a, b.AtVec(a)+z[a]*yi)
			for c := a; c < dim; c++ {
				g.SetSym(a, c, g.At(a, c)+z[a]*z[c])
			}
		}
	}

	return gramPartial{g: g, b: b}
}

// Predict fans the prediction rows out across the cluster workers.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("distributed.LinearRegression", "Predict")
	}

	rows, cols := X.Dims()
	if cols != lr.nFeatures_ {
		return nil, errors.NewDimensionError("distributed.LinearRegression.Predict", lr.nFeatures_, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)

	var wg sync.WaitGroup
	for _, r := range parallel.Split(rows, lr.cluster.Workers()) {
		wg.Add(1)
		r := r
		if err := lr.cluster.Submit(func() {
			defer wg.Done()
			for i := r.Start; i < r.End; i++ {
				pred := lr.intercept_
				for j := 0; j < cols; j++ {
					pred += X.At(i, j) * lr.coef_[j]
				}
				predictions.Set(i, 0, pred)
			}
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	return predictions, nil
}

// Score returns the coefficient of determination R^2 of the prediction.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.state.IsFitted() {
		return 0, errors.NewNotFittedError("distributed.LinearRegression", "Score")
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

// Partitions returns the number of partitions used by the last fit.
func (lr *LinearRegression) Partitions() int {
	return lr.nPartitions_
}

// String returns the string representation of the model.
func (lr *LinearRegression) String() string {
	if !lr.state.IsFitted() {
		return fmt.Sprintf("distributed.LinearRegression(workers=%d, fit_intercept=%t)", lr.cluster.Workers(), lr.fitIntercept)
	}
	return fmt.Sprintf("distributed.LinearRegression(workers=%d, n_features=%d, partitions=%d, fitted=true)",
		lr.cluster.Workers(), lr.nFeatures_, lr.nPartitions_)
}
