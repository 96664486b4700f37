package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"FraudSight/internal/domain/models"
	"FraudSight/internal/domain/repository"
	"FraudSight/internal/features"
	"FraudSight/internal/model"
	"FraudSight/pkg/cache"
	xlogger "FraudSight/pkg/logger"
)

// AlertBroadcaster pushes fraud-classified scorings to live subscribers.
type AlertBroadcaster interface {
	Broadcast(st *models.ScoredTransaction)
}

// Scorer orchestrates a prediction: encode the record, run inference,
// threshold, then fan out to the side channels (cache, audit store, event
// topic, alert stream). Side-channel failures never fail the response; they
// are logged and counted.
type Scorer struct {
	artifact *model.Artifact
	encoder  *features.Encoder
	logger   *xlogger.Logger
	metrics  repository.Metrics

	cache    cache.Service // nil when caching disabled
	cacheTTL time.Duration
	audit    repository.AuditStore // nil when clickhouse disabled
	pub      repository.Publisher  // nil when kafka disabled
	alerts   AlertBroadcaster      // nil when alert stream disabled
}

// ScorerOption configures optional side channels.
type ScorerOption func(*Scorer)

// WithCache enables prediction caching keyed by trans_num.
func WithCache(c cache.Service, ttl time.Duration) ScorerOption {
	return func(s *Scorer) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithAuditStore enables audit persistence of scored transactions.
func WithAuditStore(a repository.AuditStore) ScorerOption {
	return func(s *Scorer) { s.audit = a }
}

// WithPublisher enables event publishing of scored transactions.
func WithPublisher(p repository.Publisher) ScorerOption {
	return func(s *Scorer) { s.pub = p }
}

// WithAlerts enables live fraud-alert broadcasting.
func WithAlerts(b AlertBroadcaster) ScorerOption {
	return func(s *Scorer) { s.alerts = b }
}

// NewScorer creates a scorer over a loaded artifact.
func NewScorer(artifact *model.Artifact, encoder *features.Encoder, logger *xlogger.Logger, metrics repository.Metrics, opts ...ScorerOption) *Scorer {
	s := &Scorer{
		artifact: artifact,
		encoder:  encoder,
		logger:   logger,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ModelVersion returns the loaded artifact version.
func (s *Scorer) ModelVersion() string {
	return s.artifact.Version
}

// Score predicts fraud for a single transaction. Deterministic given the
// loaded artifact: identical input yields an identical result, which is what
// makes caching by trans_num safe.
func (s *Scorer) Score(ctx context.Context, rec *models.TransactionRecord) (*models.PredictionResult, error) {
	if res, ok := s.cachedResult(ctx, rec.TransNum); ok {
		return res, nil
	}

	res, err := s.infer(rec)
	if err != nil {
		return nil, err
	}

	s.storeCached(ctx, rec.TransNum, res)
	s.fanOut(ctx, []*models.ScoredTransaction{s.scored(rec, res)})
	return res, nil
}

// BatchItemError reports which item of a batch failed to score.
type BatchItemError struct {
	Index int
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("transaction %d: %v", e.Index, e.Err)
}

func (e *BatchItemError) Unwrap() error { return e.Err }

// ScoreBatch predicts fraud for multiple transactions, preserving input
// order. Items are scored independently; the first encoding or inference
// failure aborts the batch with the failing index.
func (s *Scorer) ScoreBatch(ctx context.Context, recs []*models.TransactionRecord) ([]models.PredictionResult, error) {
	results := make([]models.PredictionResult, 0, len(recs))
	scored := make([]*models.ScoredTransaction, 0, len(recs))

	for i, rec := range recs {
		if res, ok := s.cachedResult(ctx, rec.TransNum); ok {
			results = append(results, *res)
			continue
		}

		res, err := s.infer(rec)
		if err != nil {
			return nil, &BatchItemError{Index: i, Err: err}
		}

		s.storeCached(ctx, rec.TransNum, res)
		results = append(results, *res)
		scored = append(scored, s.scored(rec, res))
	}

	s.fanOut(ctx, scored)
	return results, nil
}

func (s *Scorer) infer(rec *models.TransactionRecord) (*models.PredictionResult, error) {
	start := time.Now()

	vec, err := s.encoder.Encode(rec)
	if err != nil {
		s.metrics.RecordError("schema")
		return nil, err
	}

	p, err := s.artifact.Predict(vec)
	if err != nil {
		s.metrics.RecordError("inference")
		return nil, err
	}

	s.metrics.RecordInferenceLatency(time.Since(start).Seconds())

	res := &models.PredictionResult{
		FraudProbability: p,
		Confidence:       math.Max(p, 1-p),
	}
	if p >= models.FraudThreshold {
		res.Classification = models.LabelFraud
	} else {
		res.Classification = models.LabelNotFraud
	}

	s.metrics.RecordPrediction(res.Classification, p)
	return res, nil
}

func (s *Scorer) scored(rec *models.TransactionRecord, res *models.PredictionResult) *models.ScoredTransaction {
	return &models.ScoredTransaction{
		ScoredAt:         time.Now().UTC(),
		TransNum:         rec.TransNum,
		Merchant:         rec.Merchant,
		Category:         rec.Category,
		Amt:              rec.Amt,
		City:             rec.City,
		State:            rec.State,
		FraudProbability: res.FraudProbability,
		Confidence:       res.Confidence,
		Classification:   res.Classification,
		ModelVersion:     s.artifact.Version,
	}
}

// fanOut delivers scored transactions to audit, events, and alerts.
// Best-effort: failures are logged and counted, never surfaced.
func (s *Scorer) fanOut(ctx context.Context, sts []*models.ScoredTransaction) {
	if len(sts) == 0 {
		return
	}

	if s.audit != nil {
		if err := s.audit.StoreBatch(ctx, sts); err != nil {
			s.metrics.RecordError("audit")
			s.logger.Warn("audit store failed", xlogger.Error(err), xlogger.Int("count", len(sts)))
		}
	}

	if s.pub != nil {
		if err := s.pub.PublishBatch(ctx, sts); err != nil {
			s.metrics.RecordError("publish")
			s.logger.Warn("event publish failed", xlogger.Error(err), xlogger.Int("count", len(sts)))
		}
	}

	if s.alerts != nil {
		for _, st := range sts {
			if st.Classification == models.LabelFraud {
				s.alerts.Broadcast(st)
			}
		}
	}
}

func (s *Scorer) cachedResult(ctx context.Context, transNum string) (*models.PredictionResult, bool) {
	if s.cache == nil || transNum == "" {
		return nil, false
	}

	var res models.PredictionResult
	if err := s.cache.Get(ctx, cacheKey(transNum), &res); err != nil {
		s.metrics.RecordCacheLookup(false)
		return nil, false
	}
	s.metrics.RecordCacheLookup(true)
	return &res, true
}

func (s *Scorer) storeCached(ctx context.Context, transNum string, res *models.PredictionResult) {
	if s.cache == nil || transNum == "" {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(transNum), res, s.cacheTTL); err != nil {
		s.logger.Debug("prediction cache set failed", xlogger.Error(err))
	}
}

func cacheKey(transNum string) string {
	return "prediction:" + transNum
}
