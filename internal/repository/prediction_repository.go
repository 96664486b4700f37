package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"FraudSight/internal/domain/models"
	"FraudSight/internal/domain/repository"
	pkgkafka "FraudSight/pkg/kafka"
)

// ClickHouseAuditStore implements AuditStore over a ClickHouse table.
type ClickHouseAuditStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseAuditStore creates a ClickHouse-backed audit store.
func NewClickHouseAuditStore(db *sql.DB, table string) repository.AuditStore {
	return &ClickHouseAuditStore{db: db, table: table}
}

const auditColumns = "(scored_at, trans_num, merchant, category, amt, city, state, fraud_probability, confidence, classification, model_version)"

func (s *ClickHouseAuditStore) Store(ctx context.Context, st *models.ScoredTransaction) error {
	q := fmt.Sprintf("INSERT INTO %s %s VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, auditColumns)
	_, err := s.db.ExecContext(ctx, q,
		st.ScoredAt,
		st.TransNum,
		st.Merchant,
		st.Category,
		st.Amt,
		st.City,
		st.State,
		st.FraudProbability,
		st.Confidence,
		st.Classification,
		st.ModelVersion,
	)
	return err
}

func (s *ClickHouseAuditStore) StoreBatch(ctx context.Context, sts []*models.ScoredTransaction) error {
	if len(sts) == 0 {
		return nil
	}

	values := make([]string, 0, len(sts))
	args := make([]interface{}, 0, len(sts)*11)
	for _, st := range sts {
		if st == nil {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			st.ScoredAt,
			st.TransNum,
			st.Merchant,
			st.Category,
			st.Amt,
			st.City,
			st.State,
			st.FraudProbability,
			st.Confidence,
			st.Classification,
			st.ModelVersion,
		)
	}
	if len(values) == 0 {
		return nil
	}

	q := fmt.Sprintf("INSERT INTO %s %s VALUES %s", s.table, auditColumns, strings.Join(values, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *ClickHouseAuditStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseAuditStore) Close() error {
	return nil // Connection pool managed by pkg/clickhouse client
}

// KafkaPredictionPublisher implements Publisher over a Kafka topic. The
// message key is the trans_num (falling back to merchant) so replays of the
// same transaction land on the same partition.
type KafkaPredictionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPredictionPublisher creates a Kafka-backed publisher.
func NewKafkaPredictionPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPredictionPublisher{producer: producer, topic: topic}
}

func (p *KafkaPredictionPublisher) Publish(ctx context.Context, st *models.ScoredTransaction) error {
	return p.producer.Publish(ctx, p.topic, eventKey(st), st)
}

func (p *KafkaPredictionPublisher) PublishBatch(ctx context.Context, sts []*models.ScoredTransaction) error {
	if len(sts) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(sts))
	for _, st := range sts {
		msgs = append(msgs, pkgkafka.Message{Key: eventKey(st), Value: st})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPredictionPublisher) Close() error {
	return p.producer.Close()
}

func eventKey(st *models.ScoredTransaction) []byte {
	if st.TransNum != "" {
		return []byte(st.TransNum)
	}
	return []byte(st.Merchant)
}
