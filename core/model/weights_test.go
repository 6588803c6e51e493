package model

import "testing"

func fittedWeights() *ModelWeights {
	return &ModelWeights{
		ModelType:    "LinearRegression",
		Version:      "1.0.0",
		Coefficients: []float64{0.5, 2.2, 0.002},
		Intercept:    2.5,
		Features:     []string{"passenger_count", "trip_distance", "trip_time"},
		Hyperparameters: map[string]interface{}{
			"fit_intercept": true,
		},
		Metadata: map[string]interface{}{
			"n_samples": 1600,
		},
		IsFitted: true,
	}
}

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ModelWeights)
		wantErr bool
	}{
		{name: "valid", mutate: func(*ModelWeights) {}, wantErr: false},
		{name: "missing type", mutate: func(w *ModelWeights) { w.ModelType = "" }, wantErr: true},
		{name: "missing version", mutate: func(w *ModelWeights) { w.Version = "" }, wantErr: true},
		{name: "unfitted with coefficients", mutate: func(w *ModelWeights) { w.IsFitted = false }, wantErr: true},
		{name: "fitted without coefficients", mutate: func(w *ModelWeights) { w.Coefficients = nil }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := fittedWeights()
			tt.mutate(w)
			err := w.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWeightsJSONRoundTrip(t *testing.T) {
	w := fittedWeights()

	data, err := w.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var restored ModelWeights
	if err := restored.FromJSON(data); err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}

	if restored.ModelType != w.ModelType || restored.Intercept != w.Intercept {
		t.Errorf("round trip mismatch: %+v", restored)
	}
	if len(restored.Coefficients) != len(w.Coefficients) {
		t.Fatalf("coefficients length = %d, want %d", len(restored.Coefficients), len(w.Coefficients))
	}
	for i := range w.Coefficients {
		if restored.Coefficients[i] != w.Coefficients[i] {
			t.Errorf("coefficient %d = %v, want %v", i, restored.Coefficients[i], w.Coefficients[i])
		}
	}
}

func TestWeightsCloneIsDeep(t *testing.T) {
	w := fittedWeights()
	clone := w.Clone()

	clone.Coefficients[0] = 99
	clone.Hyperparameters["fit_intercept"] = false

	if w.Coefficients[0] == 99 {
		t.Error("Clone() shares the coefficients slice")
	}
	if w.Hyperparameters["fit_intercept"] == false {
		t.Error("Clone() shares the hyperparameters map")
	}
}
