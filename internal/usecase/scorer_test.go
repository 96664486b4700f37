package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"FraudSight/internal/domain/models"
	"FraudSight/internal/features"
	"FraudSight/internal/model"
	"FraudSight/pkg/cache"
	xlogger "FraudSight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// amtArtifact scores purely on the (unscaled) transaction amount:
// p = sigmoid(0.1 * amt - 2), so amt=20 sits exactly on the boundary.
func amtArtifact(t *testing.T) *model.Artifact {
	t.Helper()
	a := &model.Artifact{
		Version:      "scorer-test",
		FeatureNames: []string{"amt"},
		Scaler:       model.Scaler{Mean: []float64{0}, Scale: []float64{1}},
		Model:        model.Coefficients{Coef: []float64{0.1}, Intercept: -2},
		Encoders:     model.EncoderTables{GlobalMean: 0.005},
	}
	require.NoError(t, a.Validate())
	return a
}

type fakeMetrics struct {
	mu          sync.Mutex
	predictions map[string]int
	errors      map[string]int
	cacheHits   int
	cacheMisses int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{predictions: map[string]int{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordPrediction(classification string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[classification]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}
}

func (m *fakeMetrics) RecordInferenceLatency(float64) {}

type capturingPublisher struct {
	mu     sync.Mutex
	events []*models.ScoredTransaction
}

func (p *capturingPublisher) Publish(_ context.Context, st *models.ScoredTransaction) error {
	return p.PublishBatch(context.Background(), []*models.ScoredTransaction{st})
}

func (p *capturingPublisher) PublishBatch(_ context.Context, sts []*models.ScoredTransaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, sts...)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

type capturingBroadcaster struct {
	mu     sync.Mutex
	events []*models.ScoredTransaction
}

func (b *capturingBroadcaster) Broadcast(st *models.ScoredTransaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, st)
}

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func record(amt float64, transNum string) *models.TransactionRecord {
	return &models.TransactionRecord{
		TransDateTransTime: "2023-01-15 14:30",
		Merchant:           "fraud_Kirlin and Sons",
		Category:           "personal_care",
		Amt:                amt,
		City:               "Malvern",
		State:              "AR",
		Lat:                34.36,
		Long:               -92.81,
		CityPop:            2071,
		Job:                "Mechanical engineer",
		DOB:                "15-03-1988",
		TransNum:           transNum,
		MerchLat:           34.4,
		MerchLong:          -92.9,
	}
}

func TestScoreNotFraud(t *testing.T) {
	art := amtArtifact(t)
	s := NewScorer(art, features.NewEncoder(art), testLogger(t), newFakeMetrics())

	res, err := s.Score(context.Background(), record(5, ""))
	require.NoError(t, err)

	// p = sigmoid(0.5 - 2) = sigmoid(-1.5)
	assert.InDelta(t, 0.18242552, res.FraudProbability, 1e-6)
	assert.InDelta(t, 1-res.FraudProbability, res.Confidence, 1e-12)
	assert.Equal(t, models.LabelNotFraud, res.Classification)
	assert.False(t, res.IsFraud())
}

func TestScoreFraud(t *testing.T) {
	art := amtArtifact(t)
	m := newFakeMetrics()
	s := NewScorer(art, features.NewEncoder(art), testLogger(t), m)

	res, err := s.Score(context.Background(), record(50, ""))
	require.NoError(t, err)

	// p = sigmoid(5 - 2) = sigmoid(3)
	assert.InDelta(t, 0.95257413, res.FraudProbability, 1e-6)
	assert.Equal(t, res.FraudProbability, res.Confidence)
	assert.Equal(t, models.LabelFraud, res.Classification)
	assert.Equal(t, 1, m.predictions[models.LabelFraud])
}

func TestScoreBoundaryIsFraud(t *testing.T) {
	art := amtArtifact(t)
	s := NewScorer(art, features.NewEncoder(art), testLogger(t), newFakeMetrics())

	// amt=20 gives logit 0, p exactly 0.5: classified as fraud
	res, err := s.Score(context.Background(), record(20, ""))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.FraudProbability, 1e-12)
	assert.Equal(t, models.LabelFraud, res.Classification)
}

func TestScoreSchemaErrorCounted(t *testing.T) {
	art := amtArtifact(t)
	m := newFakeMetrics()
	s := NewScorer(art, features.NewEncoder(art), testLogger(t), m)

	rec := record(5, "")
	rec.DOB = "not a date"

	_, err := s.Score(context.Background(), rec)
	require.Error(t, err)

	var schemaErr *features.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, 1, m.errors["schema"])
}

func TestScoreCachedByTransNum(t *testing.T) {
	art := amtArtifact(t)
	m := newFakeMetrics()
	mc := cache.NewMemoryCache()
	defer mc.Close()

	s := NewScorer(art, features.NewEncoder(art), testLogger(t), m,
		WithCache(mc, time.Minute))

	first, err := s.Score(context.Background(), record(5, "abc123"))
	require.NoError(t, err)
	second, err := s.Score(context.Background(), record(5, "abc123"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, m.cacheMisses)
	assert.Equal(t, 1, m.cacheHits)
	// only the first call ran inference
	assert.Equal(t, 1, m.predictions[models.LabelNotFraud])
}

func TestScoreNoTransNumSkipsCache(t *testing.T) {
	art := amtArtifact(t)
	m := newFakeMetrics()
	mc := cache.NewMemoryCache()
	defer mc.Close()

	s := NewScorer(art, features.NewEncoder(art), testLogger(t), m,
		WithCache(mc, time.Minute))

	_, err := s.Score(context.Background(), record(5, ""))
	require.NoError(t, err)
	_, err = s.Score(context.Background(), record(5, ""))
	require.NoError(t, err)

	assert.Equal(t, 0, m.cacheHits)
	assert.Equal(t, 2, m.predictions[models.LabelNotFraud])
}

func TestScoreBatchPreservesOrder(t *testing.T) {
	art := amtArtifact(t)
	s := NewScorer(art, features.NewEncoder(art), testLogger(t), newFakeMetrics())

	recs := []*models.TransactionRecord{
		record(5, "t1"),
		record(50, "t2"),
		record(5, "t3"),
	}

	results, err := s.ScoreBatch(context.Background(), recs)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, models.LabelNotFraud, results[0].Classification)
	assert.Equal(t, models.LabelFraud, results[1].Classification)
	assert.Equal(t, models.LabelNotFraud, results[2].Classification)
}

func TestScoreBatchReportsFailingIndex(t *testing.T) {
	art := amtArtifact(t)
	s := NewScorer(art, features.NewEncoder(art), testLogger(t), newFakeMetrics())

	bad := record(5, "t2")
	bad.TransDateTransTime = "not a timestamp"

	_, err := s.ScoreBatch(context.Background(), []*models.TransactionRecord{
		record(5, "t1"),
		bad,
	})
	require.Error(t, err)

	var itemErr *BatchItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 1, itemErr.Index)

	var schemaErr *features.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "trans_date_trans_time", schemaErr.Field)
}

func TestScorePublishesScoredTransaction(t *testing.T) {
	art := amtArtifact(t)
	pub := &capturingPublisher{}
	s := NewScorer(art, features.NewEncoder(art), testLogger(t), newFakeMetrics(),
		WithPublisher(pub))

	_, err := s.Score(context.Background(), record(50, "evt-1"))
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	st := pub.events[0]
	assert.Equal(t, "evt-1", st.TransNum)
	assert.Equal(t, models.LabelFraud, st.Classification)
	assert.Equal(t, "scorer-test", st.ModelVersion)
	assert.False(t, st.ScoredAt.IsZero())
}

func TestAlertsOnlyForFraud(t *testing.T) {
	art := amtArtifact(t)
	b := &capturingBroadcaster{}
	s := NewScorer(art, features.NewEncoder(art), testLogger(t), newFakeMetrics(),
		WithAlerts(b))

	_, err := s.Score(context.Background(), record(5, "ok"))
	require.NoError(t, err)
	_, err = s.Score(context.Background(), record(50, "bad"))
	require.NoError(t, err)

	require.Len(t, b.events, 1)
	assert.Equal(t, "bad", b.events[0].TransNum)
}
