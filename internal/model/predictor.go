package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrShapeMismatch reports a feature vector whose length disagrees with the
// loaded artifact. This is version skew between encoder and model, not a
// user error.
var ErrShapeMismatch = errors.New("model: feature vector shape mismatch")

// Predict applies the scaler transform and the logistic model to a feature
// vector, returning the fraud probability in [0,1]. Pure function over the
// immutable artifact.
func (a *Artifact) Predict(x []float64) (float64, error) {
	if len(x) != len(a.Model.Coef) {
		return 0, fmt.Errorf("%w: got %d features, model expects %d",
			ErrShapeMismatch, len(x), len(a.Model.Coef))
	}

	logit := a.Model.Intercept
	for i, v := range x {
		z := (v - a.Scaler.Mean[i]) / a.Scaler.Scale[i]
		logit += a.Model.Coef[i] * z
	}

	return sigmoid(logit), nil
}

func sigmoid(z float64) float64 {
	// Split on sign to avoid overflow in exp for large |z|.
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
