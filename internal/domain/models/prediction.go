package models

import "time"

// Classification labels kept verbatim for API compatibility with the
// original service.
const (
	LabelFraud    = "Fraude"
	LabelNotFraud = "Não Fraude"
)

// FraudThreshold is the decision boundary on fraud probability.
const FraudThreshold = 0.5

// PredictionResult is the output entity of a single scoring.
type PredictionResult struct {
	FraudProbability float64 `json:"fraud_probability"`
	Confidence       float64 `json:"confidence"`
	Classification   string  `json:"classification"`
}

// IsFraud reports whether the result crossed the decision boundary.
func (p *PredictionResult) IsFraud() bool {
	return p.Classification == LabelFraud
}

// BatchPredictionResult pairs per-item results with their input order.
type BatchPredictionResult struct {
	Results []PredictionResult `json:"results"`
	Total   int                `json:"total"`
}

// ScoredTransaction is the audit/event record emitted for every scoring:
// the prediction plus enough of the input to investigate it later.
type ScoredTransaction struct {
	ScoredAt         time.Time `json:"scored_at"`
	TransNum         string    `json:"trans_num,omitempty"`
	Merchant         string    `json:"merchant"`
	Category         string    `json:"category"`
	Amt              float64   `json:"amt"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	FraudProbability float64   `json:"fraud_probability"`
	Confidence       float64   `json:"confidence"`
	Classification   string    `json:"classification"`
	ModelVersion     string    `json:"model_version"`
}
