package model

import (
	"encoding/json"
	"fmt"
)

// ModelWeights is the serialization form of a fitted linear estimator.
type ModelWeights struct {
	// ModelType is the estimator kind (e.g. LinearRegression).
	ModelType string `json:"model_type"`

	// Version is used for compatibility checks on import.
	Version string `json:"version"`

	// Coefficients are the learned weights.
	Coefficients []float64 `json:"coefficients"`

	// Intercept is the learned intercept.
	Intercept float64 `json:"intercept"`

	// Features optionally names the feature columns in order.
	Features []string `json:"features,omitempty"`

	// Hyperparameters holds the estimator configuration.
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// Metadata holds training statistics (sample counts, checksum).
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted records whether the source model was fitted.
	IsFitted bool `json:"is_fitted"`
}

// ToJSON serializes the weights as indented JSON.
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON deserializes the weights from JSON.
func (mw *ModelWeights) FromJSON(data []byte) error {
	return json.Unmarshal(data, mw)
}

// Validate checks internal consistency.
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return fmt.Errorf("model_type is required")
	}

	if mw.Version == "" {
		return fmt.Errorf("version is required")
	}

	if !mw.IsFitted && len(mw.Coefficients) > 0 {
		return fmt.Errorf("unfitted model should not have coefficients")
	}

	if mw.IsFitted && len(mw.Coefficients) == 0 {
		return fmt.Errorf("fitted model must have coefficients")
	}

	return nil
}

// Clone creates a deep copy.
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:       mw.ModelType,
		Version:         mw.Version,
		Intercept:       mw.Intercept,
		IsFitted:        mw.IsFitted,
		Coefficients:    make([]float64, len(mw.Coefficients)),
		Features:        make([]string, len(mw.Features)),
		Hyperparameters: make(map[string]interface{}),
		Metadata:        make(map[string]interface{}),
	}

	copy(clone.Coefficients, mw.Coefficients)
	copy(clone.Features, mw.Features)

	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}

	for k, v := range mw.Metadata {
		clone.Metadata[k] = v
	}

	return clone
}
