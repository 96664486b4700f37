package repository

import (
	"context"

	"FraudSight/internal/domain/models"
)

// AuditStore persists scored transactions for later investigation.
type AuditStore interface {
	Store(ctx context.Context, st *models.ScoredTransaction) error
	StoreBatch(ctx context.Context, sts []*models.ScoredTransaction) error
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits scored transactions to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, st *models.ScoredTransaction) error
	PublishBatch(ctx context.Context, sts []*models.ScoredTransaction) error
	Close() error
}

// Metrics abstracts domain metric recording.
type Metrics interface {
	RecordPrediction(classification string, probability float64)
	RecordError(kind string)
	RecordCacheLookup(hit bool)
	RecordInferenceLatency(seconds float64)
}
