//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"CryptoLiquidity/pkg/config"
	"CryptoLiquidity/pkg/logger"
	"CryptoLiquidity/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Artifacts are loaded here, so an error means the process must not serve.
func InitializeApp(cfg *config.Config, l *logger.Logger) (*server.App, func(), error) {
	wire.Build(
		// Metrics
		ProvideRegistry,
		ProvideMetrics,

		// Artifacts
		ProvideSchema,
		ProvideScaler,
		ProvidePredictor,

		// Infrastructure
		ProvideCacheStore,
		ProvidePredictionCache,
		ProvideLimiter,

		// Use cases
		ProvideLiquidityPredictor,

		// HTTP
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
