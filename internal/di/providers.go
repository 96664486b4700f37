package di

import (
	"context"
	"fmt"
	"time"

	"FraudSight/internal/domain/repository"
	"FraudSight/internal/features"
	"FraudSight/internal/handler/api"
	"FraudSight/internal/model"
	internalrepo "FraudSight/internal/repository"
	"FraudSight/internal/service/stream"
	"FraudSight/internal/usecase"
	"FraudSight/pkg/cache"
	pkgch "FraudSight/pkg/clickhouse"
	"FraudSight/pkg/config"
	xhttp "FraudSight/pkg/http"
	pkgkafka "FraudSight/pkg/kafka"
	applogger "FraudSight/pkg/logger"
	"FraudSight/pkg/metrics"
	"FraudSight/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lcfg := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lcfg.Level == "" {
		lcfg.Level = "info"
	}
	if lcfg.Format == "" {
		lcfg.Format = "console"
	}
	if lcfg.Output == "" {
		lcfg.Output = "stdout"
	}
	return applogger.New(lcfg)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideArtifact loads the model artifact. Failure here is fatal: the
// process must not serve without a valid model.
func ProvideArtifact(cfg *config.Config) (*model.Artifact, error) {
	a, err := model.Load(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("model artifact: %w", err)
	}
	return a, nil
}

// ProvideEncoder creates the feature encoder bound to the artifact.
func ProvideEncoder(artifact *model.Artifact) *features.Encoder {
	return features.NewEncoder(artifact)
}

// ProvideCache creates the prediction cache, nil when disabled. With Redis
// enabled the cache is layered (memory L1, Redis L2); otherwise memory only.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	if cfg.Cache.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MaxSize)), nil
	}

	return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MaxSize)), nil
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the audit
// schema, nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := auditTable(cfg)
	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.ClickHouse.Database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			scored_at DateTime,
			trans_num String,
			merchant String,
			category String,
			amt Float64,
			city String,
			state String,
			fraud_probability Float64,
			confidence Float64,
			classification String,
			model_version String
		) ENGINE=MergeTree ORDER BY (scored_at, trans_num)`, table),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideAuditStore creates the ClickHouse audit store, nil when disabled.
func ProvideAuditStore(chClient *pkgch.Client, cfg *config.Config) repository.AuditStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseAuditStore(chClient.DB(), auditTable(cfg))
}

// ProvideKafkaProducer creates a Kafka producer, nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvidePublisher creates the Kafka prediction publisher, nil when disabled.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPredictionPublisher(producer, cfg.Kafka.Topic)
}

// ProvideHub creates the fraud-alert WebSocket hub, nil when disabled.
func ProvideHub(cfg *config.Config, logger *applogger.Logger) *stream.Hub {
	if !cfg.Alerts.Enabled {
		return nil
	}
	return stream.NewHub(logger, cfg.Alerts.BufferSize)
}

// ProvideScorer assembles the prediction service with enabled side channels.
func ProvideScorer(
	cfg *config.Config,
	artifact *model.Artifact,
	encoder *features.Encoder,
	logger *applogger.Logger,
	m repository.Metrics,
	cacheSvc cache.Service,
	audit repository.AuditStore,
	pub repository.Publisher,
	hub *stream.Hub,
) *usecase.Scorer {
	opts := make([]usecase.ScorerOption, 0, 4)
	if cacheSvc != nil {
		ttl := cfg.Cache.TTL
		if ttl <= 0 {
			ttl = time.Hour
		}
		opts = append(opts, usecase.WithCache(cacheSvc, ttl))
	}
	if audit != nil {
		opts = append(opts, usecase.WithAuditStore(audit))
	}
	if pub != nil {
		opts = append(opts, usecase.WithPublisher(pub))
	}
	if hub != nil {
		opts = append(opts, usecase.WithAlerts(hub))
	}
	return usecase.NewScorer(artifact, encoder, logger, m, opts...)
}

// ProvideHandler creates the Echo route handler.
func ProvideHandler(logger *applogger.Logger, scorer *usecase.Scorer, hub *stream.Hub) xhttp.Handler {
	return api.NewPredictionsHandler(logger, scorer, hub)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	hub *stream.Hub,
	cacheSvc cache.Service,
	pub repository.Publisher,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, logger, handler, hub, cacheSvc, pub, chClient)
}

func auditTable(cfg *config.Config) string {
	table := cfg.ClickHouse.Table
	if table == "" {
		table = "predictions"
	}
	return cfg.ClickHouse.Database + "." + table
}
