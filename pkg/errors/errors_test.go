package errors

import (
	"math"
	"strings"
	"testing"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("LinearRegression", "Predict")

	var notFitted *NotFittedError
	if !As(err, &notFitted) {
		t.Fatalf("expected NotFittedError in chain, got %T", err)
	}
	if notFitted.ModelName != "LinearRegression" {
		t.Errorf("ModelName = %q, want %q", notFitted.ModelName, "LinearRegression")
	}
	if !strings.Contains(err.Error(), "Call Fit() before using Predict()") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestDimensionError(t *testing.T) {
	tests := []struct {
		name     string
		axis     int
		wantWord string
	}{
		{name: "row axis", axis: 0, wantWord: "rows"},
		{name: "feature axis", axis: 1, wantWord: "features"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDimensionError("Fit", 10, 7, tt.axis)
			if !strings.Contains(err.Error(), tt.wantWord) {
				t.Errorf("Error() = %q, want axis name %q", err.Error(), tt.wantWord)
			}

			var dim *DimensionError
			if !As(err, &dim) {
				t.Fatal("expected DimensionError in chain")
			}
			if dim.Expected != 10 || dim.Got != 7 {
				t.Errorf("got Expected=%d Got=%d, want 10/7", dim.Expected, dim.Got)
			}
		})
	}
}

func TestQueryErrorUnwrap(t *testing.T) {
	cause := New("no such table: trips")
	err := NewQueryError("Engine.Query", "SELECT * FROM trips", cause)

	if !Is(err, cause) {
		t.Error("expected Is(err, cause) to be true")
	}

	var qerr *QueryError
	if !As(err, &qerr) {
		t.Fatal("expected QueryError in chain")
	}
	if qerr.Query != "SELECT * FROM trips" {
		t.Errorf("Query = %q", qerr.Query)
	}
}

func TestSentinelWrapping(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "loading trips")
	if !Is(wrapped, ErrEmptyData) {
		t.Error("expected Is(wrapped, ErrEmptyData) to be true")
	}

	modelErr := NewModelError("Fit", "empty data", ErrEmptyData)
	if !Is(modelErr, ErrEmptyData) {
		t.Error("expected ModelError to unwrap to ErrEmptyData")
	}
}

func TestWarningHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(nil)

	warning := NewDataConversionWarning("NULL", "float64", "NULL fare_amount scanned as 0")
	Warn(warning)

	if captured == nil {
		t.Fatal("warning handler not invoked")
	}
	if !strings.Contains(captured.Error(), "NULL fare_amount") {
		t.Errorf("unexpected warning: %v", captured)
	}
}

func TestZerologWarnFuncTakesPrecedence(t *testing.T) {
	var viaHandler, viaZerolog error
	SetWarningHandler(func(w error) { viaHandler = w })
	SetZerologWarnFunc(func(w error) { viaZerolog = w })
	defer func() {
		SetWarningHandler(nil)
		SetZerologWarnFunc(nil)
	}()

	Warn(NewDataConversionWarning("text", "float64", "parsed"))

	if viaZerolog == nil {
		t.Fatal("zerolog sink not invoked")
	}
	if viaHandler != nil {
		t.Error("plain handler should not run when a zerolog sink is set")
	}
}

func TestCheckNumericalStability(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		wantErr bool
	}{
		{name: "finite values", values: []float64{1.5, -2.0, 0}, wantErr: false},
		{name: "contains NaN", values: []float64{1.0, math.NaN(), 3.0}, wantErr: true},
		{name: "contains Inf", values: []float64{math.Inf(1), 1.0}, wantErr: true},
		{name: "empty", values: nil, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckNumericalStability("gram_aggregate", tt.values, 2)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckNumericalStability() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
