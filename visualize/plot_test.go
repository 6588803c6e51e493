package visualize

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestActualVsPredictedWritesPNG(t *testing.T) {
	yTrue := mat.NewVecDense(5, []float64{6.5, 13.0, 5.0, 18.5, 9.5})
	yPred := mat.NewVecDense(5, []float64{6.8, 12.1, 5.4, 19.0, 9.2})

	path := filepath.Join(t.TempDir(), "scatter.png")
	if err := ActualVsPredicted(yTrue, yPred, path); err != nil {
		t.Fatalf("ActualVsPredicted() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output file is empty")
	}
}

func TestResidualsWritesPNG(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{6.5, 13.0, 5.0, 18.5})
	yPred := mat.NewVecDense(4, []float64{6.8, 12.1, 5.4, 19.0})

	path := filepath.Join(t.TempDir(), "residuals.png")
	if err := Residuals(yTrue, yPred, path); err != nil {
		t.Fatalf("Residuals() error = %v", err)
	}

	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty output file, err = %v", err)
	}
}

func TestDimensionValidation(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	yPred := mat.NewVecDense(2, []float64{1, 2})

	path := filepath.Join(t.TempDir(), "bad.png")
	if err := ActualVsPredicted(yTrue, yPred, path); err == nil {
		t.Error("ActualVsPredicted() expected dimension error")
	}
	if err := Residuals(yTrue, yPred, path); err == nil {
		t.Error("Residuals() expected dimension error")
	}
}
