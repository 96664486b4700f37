package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArtifact(t *testing.T) {
	a, err := Load(filepath.Join("testdata", "model.json"))
	require.NoError(t, err)

	assert.Equal(t, "test-2024.06.1", a.Version)
	assert.Equal(t, 12, a.NumFeatures())
	assert.Len(t, a.Model.Coef, a.NumFeatures())
	assert.Len(t, a.Scaler.Mean, a.NumFeatures())
}

func TestLoadArtifactMissing(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "no_such_model.json"))
	require.Error(t, err)
}

func TestValidateShapeMismatch(t *testing.T) {
	a := &Artifact{
		Version:      "v1",
		FeatureNames: []string{"amt", "hour"},
		Scaler:       Scaler{Mean: []float64{0}, Scale: []float64{1, 1}},
		Model:        Coefficients{Coef: []float64{0.5, 0.1}},
	}
	require.Error(t, a.Validate())
}

func TestValidateZeroScale(t *testing.T) {
	a := &Artifact{
		Version:      "v1",
		FeatureNames: []string{"amt"},
		Scaler:       Scaler{Mean: []float64{0}, Scale: []float64{0}},
		Model:        Coefficients{Coef: []float64{0.5}},
	}
	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scale")
}

func TestTargetMeanFallback(t *testing.T) {
	a, err := Load(filepath.Join("testdata", "model.json"))
	require.NoError(t, err)

	assert.Equal(t, 0.0213, a.TargetMean("merchant", "fraud_Kirlin and Sons"))
	// unseen value falls back to the global fraud mean
	assert.Equal(t, 0.005727, a.TargetMean("merchant", "never seen this one"))
	assert.Equal(t, 0.005727, a.TargetMean("no_such_column", "x"))
}

func TestPredictShapeMismatch(t *testing.T) {
	a, err := Load(filepath.Join("testdata", "model.json"))
	require.NoError(t, err)

	_, perr := a.Predict([]float64{1, 2, 3})
	require.ErrorIs(t, perr, ErrShapeMismatch)
}

func TestPredictInterceptOnly(t *testing.T) {
	// The test artifact has all-zero coefficients so probability depends
	// only on the intercept, making the expected value exact.
	a, err := Load(filepath.Join("testdata", "model.json"))
	require.NoError(t, err)

	p, perr := a.Predict(make([]float64, a.NumFeatures()))
	require.NoError(t, perr)
	assert.InDelta(t, 0.00026, p, 0.00002)
}

func TestPredictKnownWeights(t *testing.T) {
	a := &Artifact{
		Version:      "v1",
		FeatureNames: []string{"x"},
		Scaler:       Scaler{Mean: []float64{0}, Scale: []float64{1}},
		Model:        Coefficients{Coef: []float64{1}, Intercept: 0},
	}
	require.NoError(t, a.Validate())

	p, err := a.Predict([]float64{0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	p, err = a.Predict([]float64{2})
	require.NoError(t, err)
	assert.InDelta(t, 0.8807970779778823, p, 1e-12)
}

func TestSigmoidStable(t *testing.T) {
	assert.InDelta(t, 1.0, sigmoid(1000), 1e-12)
	assert.InDelta(t, 0.0, sigmoid(-1000), 1e-12)
	assert.False(t, sigmoid(-1000) < 0)
}
