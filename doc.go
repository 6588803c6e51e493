// Package tripml implements a trip-fare regression pipeline: SQL extraction
// of trip records into in-memory tables, a crude positional train/test split,
// ordinary least squares estimators in single-node and distributed form, and
// regression scoring with plotting.
//
// # Quick Start
//
// Extract a dataset with SQL and fit a model:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "gonum.org/v1/gonum/mat"
//
//	    "github.com/YuminosukeSato/tripml/dataset"
//	    "github.com/YuminosukeSato/tripml/linear"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    engine, err := dataset.OpenInMemory()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer engine.Close()
//
//	    if _, err := engine.RegisterCSV(ctx, "trips", "trips.csv"); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    table, err := engine.Query(ctx,
//	        "SELECT passenger_count, trip_distance, trip_time, fare_amount FROM trips")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    train, test, err := table.Split(0.8)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    _ = test
//
//	    X, y, err := train.FeatureTargetSplit("fare_amount")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    yCol := mat.NewDense(y.Len(), 1, nil)
//	    for i := 0; i < y.Len(); i++ {
//	        yCol.Set(i, 0, y.AtVec(i))
//	    }
//
//	    model := linear.NewLinearRegression()
//	    if err := model.Fit(X, yCol); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(model.Coef(), model.Intercept())
//	}
//
// # Packages
//
// The module is organized into several packages:
//
//   - dataset: SQL extraction engine and the in-memory columnar Table
//   - linear: single-node ordinary least squares (QR factorization)
//   - distributed: cluster context and the partitioned fit
//   - metrics: regression metrics (MSE, RMSE, MAE, R²)
//   - preprocessing: feature scaling
//   - visualize: actual-vs-predicted and residual plots
//   - core/model: estimator interfaces, state tracking, weight persistence
//   - core/parallel: row-range splitting and parallel execution helpers
//
// # Distributed Fit
//
// The distributed estimator scatters row partitions across a Cluster and
// aggregates each partition's partial Gram products before solving. The
// resulting coefficients match the single-node fit on the same data:
//
//	cluster := distributed.NewCluster(4)
//	defer cluster.Close()
//
//	model := distributed.NewLinearRegression(cluster)
//	if err := model.FitContext(ctx, X, yCol); err != nil {
//	    log.Fatal(err)
//	}
package tripml
