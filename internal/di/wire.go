//go:build wireinject
// +build wireinject

package di

import (
	"FraudSight/pkg/config"
	"FraudSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Model artifact and encoder
		ProvideArtifact,
		ProvideEncoder,

		// Infrastructure clients (nil when disabled in config)
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideAuditStore,
		ProvidePublisher,

		// Alert stream
		ProvideHub,

		// Use case and handler
		ProvideScorer,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
