// Command tripml runs the trip-fare regression pipeline end to end: register
// a CSV of trips as a table, extract rows with a SQL query, split them by
// position into train and test sets, fit an ordinary least squares model
// (single-node or distributed across workers), score the predictions and
// optionally plot them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tripml/core/model"
	"github.com/YuminosukeSato/tripml/dataset"
	"github.com/YuminosukeSato/tripml/distributed"
	"github.com/YuminosukeSato/tripml/linear"
	"github.com/YuminosukeSato/tripml/metrics"
	"github.com/YuminosukeSato/tripml/pkg/log"
	"github.com/YuminosukeSato/tripml/preprocessing"
	"github.com/YuminosukeSato/tripml/visualize"
)

type config struct {
	dbPath    string
	csvPath   string
	tableName string
	query     string
	target    string
	trainFrac float64
	workers   int
	scale     string
	plotPath  string
	residPath string
	headRows  int
	logLevel  string
}

func parseFlags() config {
	var cfg config

	flag.StringVar(&cfg.dbPath, "db", ":memory:", "database file backing the query engine")
	flag.StringVar(&cfg.csvPath, "csv", "", "CSV file to register as a table before querying")
	flag.StringVar(&cfg.tableName, "table", "trips", "table name for the registered CSV")
	flag.StringVar(&cfg.query, "query", "", "SELECT statement extracting the dataset (default: all columns of the table)")
	flag.StringVar(&cfg.target, "target", "fare_amount", "target column to predict")
	flag.Float64Var(&cfg.trainFrac, "train-frac", 0.8, "fraction of rows (by position) used for training")
	flag.IntVar(&cfg.workers, "workers", 0, "cluster workers for the distributed fit (0 = single-node)")
	flag.StringVar(&cfg.scale, "scale", "", "feature scaling before fitting (standard|minmax)")
	flag.StringVar(&cfg.plotPath, "plot", "", "write an actual-vs-predicted PNG to this path")
	flag.StringVar(&cfg.residPath, "residuals", "", "write a residuals PNG to this path")
	flag.IntVar(&cfg.headRows, "head", 10, "result rows to print")
	flag.StringVar(&cfg.logLevel, "log-level", defaultLogLevel(), "log level (debug|info|warn|error)")
	flag.Parse()

	if cfg.query == "" {
		cfg.query = fmt.Sprintf("SELECT * FROM %s", cfg.tableName)
	}
	return cfg
}

func defaultLogLevel() string {
	if v := os.Getenv("TRIPML_LOG_LEVEL"); v != "" {
		return v
	}
	return "info"
}

func main() {
	cfg := parseFlags()
	log.SetupLogger(cfg.logLevel)

	if err := run(context.Background(), cfg); err != nil {
		slog.Error("pipeline failed", log.ErrAttr(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	logger := log.GetLoggerWithName("tripml")

	engine, err := dataset.Open(cfg.dbPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	if cfg.csvPath != "" {
		if _, err := engine.RegisterCSV(ctx, cfg.tableName, cfg.csvPath); err != nil {
			return err
		}
	}

	table, err := engine.Query(ctx, cfg.query)
	if err != nil {
		return err
	}
	logger.Info("dataset extracted",
		log.QueryKey, cfg.query,
		log.SamplesKey, table.NumRows(),
		log.FeaturesKey, table.NumCols()-1,
	)

	train, test, err := table.Split(cfg.trainFrac)
	if err != nil {
		return err
	}
	logger.Info("positional split",
		log.TrainRowsKey, train.NumRows(),
		log.TestRowsKey, test.NumRows(),
	)

	XTrain, yTrain, err := train.FeatureTargetSplit(cfg.target)
	if err != nil {
		return err
	}
	XTest, yTest, err := test.FeatureTargetSplit(cfg.target)
	if err != nil {
		return err
	}

	var trainFeatures, testFeatures mat.Matrix = XTrain, XTest
	if cfg.scale != "" {
		var scaler model.Transformer
		switch cfg.scale {
		case "standard":
			scaler = preprocessing.NewStandardScalerDefault()
		case "minmax":
			scaler = preprocessing.NewMinMaxScalerDefault()
		default:
			return fmt.Errorf("unknown scale mode %q (want standard or minmax)", cfg.scale)
		}

		trainFeatures, err = scaler.FitTransform(XTrain)
		if err != nil {
			return err
		}
		testFeatures, err = scaler.Transform(XTest)
		if err != nil {
			return err
		}
	}

	predictions, err := fitAndPredict(ctx, cfg, logger, trainFeatures, yTrain, testFeatures)
	if err != nil {
		return err
	}

	return report(cfg, logger, test, yTest, predictions)
}

func fitAndPredict(ctx context.Context, cfg config, logger log.Logger, XTrain mat.Matrix, yTrain *mat.VecDense, XTest mat.Matrix) (mat.Matrix, error) {
	rows, _ := XTrain.Dims()
	yCol := mat.NewDense(yTrain.Len(), 1, nil)
	for i := 0; i < yTrain.Len(); i++ {
		yCol.Set(i, 0, yTrain.AtVec(i))
	}

	start := time.Now()

	if cfg.workers > 0 {
		cluster := distributed.NewCluster(cfg.workers)
		defer cluster.Close()

		lr := distributed.NewLinearRegression(cluster)
		if err := lr.FitContext(ctx, XTrain, yCol); err != nil {
			return nil, err
		}
		logger.Info("distributed fit complete",
			log.ModelNameKey, "LinearRegression",
			log.WorkersKey, cfg.workers,
			log.PartitionsKey, lr.Partitions(),
			log.SamplesKey, rows,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
		return lr.Predict(XTest)
	}

	lr := linear.NewLinearRegression()
	if err := lr.Fit(XTrain, yCol); err != nil {
		return nil, err
	}
	logger.Info("fit complete",
		log.ModelNameKey, "LinearRegression",
		log.SamplesKey, rows,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return lr.Predict(XTest)
}

func report(cfg config, logger log.Logger, test *dataset.Table, yTest *mat.VecDense, predictions mat.Matrix) error {
	rows, _ := predictions.Dims()
	predVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		predVec.SetVec(i, predictions.At(i, 0))
	}

	r2, err := metrics.R2Score(yTest, predVec)
	if err != nil {
		return err
	}
	mse, err := metrics.MSE(yTest, predVec)
	if err != nil {
		return err
	}
	rmse, err := metrics.RMSE(yTest, predVec)
	if err != nil {
		return err
	}
	mae, err := metrics.MAE(yTest, predVec)
	if err != nil {
		return err
	}

	logger.Info("scores",
		log.OperationKey, "score",
		log.TestRowsKey, test.NumRows(),
		log.R2ScoreKey, r2,
		log.MSEKey, mse,
	)

	actual := make([]float64, rows)
	predicted := make([]float64, rows)
	for i := 0; i < rows; i++ {
		actual[i] = yTest.AtVec(i)
		predicted[i] = predVec.AtVec(i)
	}
	results, err := dataset.NewTable(
		[]string{"actual", "predicted"},
		[][]float64{actual, predicted},
	)
	if err != nil {
		return err
	}

	fmt.Println(results.Head(cfg.headRows))
	fmt.Printf("R2:   %.6f\n", r2)
	fmt.Printf("MSE:  %.6f\n", mse)
	fmt.Printf("RMSE: %.6f\n", rmse)
	fmt.Printf("MAE:  %.6f\n", mae)

	if cfg.plotPath != "" {
		if err := visualize.ActualVsPredicted(yTest, predVec, cfg.plotPath); err != nil {
			return err
		}
		logger.Info("plot written", "path", cfg.plotPath)
	}
	if cfg.residPath != "" {
		if err := visualize.Residuals(yTest, predVec, cfg.residPath); err != nil {
			return err
		}
		logger.Info("residuals plot written", "path", cfg.residPath)
	}

	return nil
}
