package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact bundles everything inference needs: the fitted scaler, the
// logistic-regression weights, and the categorical encoder tables, all
// versioned together so the encoder and the model cannot drift apart.
// Read-only after Load; shared across requests without locking.
type Artifact struct {
	Version      string        `json:"version"`
	FeatureNames []string      `json:"feature_names"`
	Scaler       Scaler        `json:"scaler"`
	Model        Coefficients  `json:"model"`
	Encoders     EncoderTables `json:"encoders"`
}

// Scaler holds per-feature standardization parameters (z-score).
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Coefficients holds the logistic-regression weights.
type Coefficients struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// EncoderTables holds the categorical mappings fitted at training time.
// Target maps carry per-value fraud means for high-cardinality columns;
// GlobalMean is the fallback for values unseen during training.
type EncoderTables struct {
	Target     map[string]map[string]float64 `json:"target"`
	GlobalMean float64                       `json:"global_mean"`
	Categories []string                      `json:"categories"`
	States     []string                      `json:"states"`
}

// Load reads and validates a model artifact. A missing or invalid artifact
// is fatal for the caller: the process must not serve without one.
func Load(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("validate artifact: %w", err)
	}

	return &a, nil
}

// Validate checks internal consistency of the artifact: every per-feature
// array must line up with the feature list.
func (a *Artifact) Validate() error {
	n := len(a.FeatureNames)
	if n == 0 {
		return fmt.Errorf("feature_names is empty")
	}
	if len(a.Scaler.Mean) != n {
		return fmt.Errorf("scaler.mean has %d entries, want %d", len(a.Scaler.Mean), n)
	}
	if len(a.Scaler.Scale) != n {
		return fmt.Errorf("scaler.scale has %d entries, want %d", len(a.Scaler.Scale), n)
	}
	if len(a.Model.Coef) != n {
		return fmt.Errorf("model.coef has %d entries, want %d", len(a.Model.Coef), n)
	}
	for i, s := range a.Scaler.Scale {
		if s == 0 {
			return fmt.Errorf("scaler.scale[%d] (%s) is zero", i, a.FeatureNames[i])
		}
	}
	if a.Version == "" {
		return fmt.Errorf("version is required")
	}
	return nil
}

// NumFeatures returns the expected feature vector length.
func (a *Artifact) NumFeatures() int {
	return len(a.FeatureNames)
}

// TargetMean looks up the fitted target encoding for a value of the given
// column, falling back to the global fraud mean for values unseen at
// training time.
func (a *Artifact) TargetMean(column, value string) float64 {
	if table, ok := a.Encoders.Target[column]; ok {
		if mean, ok := table[value]; ok {
			return mean
		}
	}
	return a.Encoders.GlobalMean
}
