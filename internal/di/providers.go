package di

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"CryptoLiquidity/internal/domain/repository"
	domsvc "CryptoLiquidity/internal/domain/service"
	"CryptoLiquidity/internal/handler/api"
	"CryptoLiquidity/internal/handler/web"
	"CryptoLiquidity/internal/service/cache"
	"CryptoLiquidity/internal/service/ratelimit"
	"CryptoLiquidity/internal/services/analytics"
	"CryptoLiquidity/internal/services/artifact"
	"CryptoLiquidity/internal/services/features"
	"CryptoLiquidity/internal/usecase"
	"CryptoLiquidity/pkg/config"
	xhttp "CryptoLiquidity/pkg/http"
	"CryptoLiquidity/pkg/logger"
	"CryptoLiquidity/pkg/metrics"
	"CryptoLiquidity/pkg/server"
)

// ProvideRegistry creates the Prometheus registry shared by the pipeline and HTTP metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.New(reg)
}

// ProvideSchema returns the feature schema artifacts are checked against.
func ProvideSchema() artifact.Schema {
	return artifact.Schema{Version: features.SchemaVersion, Fields: features.Fields()}
}

// ProvideScaler loads the fitted scaler. Failure aborts startup.
func ProvideScaler(cfg *config.Config, schema artifact.Schema, rec *metrics.Recorder, l *logger.Logger) (domsvc.Scaler, error) {
	s, err := artifact.LoadScaler(cfg.Predictor.ScalerPath, schema)
	if err != nil {
		return nil, err
	}
	rec.RecordArtifact("scaler", s.Kind(), schema.Version, s.Width())
	l.Info("scaler loaded",
		logger.String("path", cfg.Predictor.ScalerPath),
		logger.String("kind", s.Kind()),
		logger.Int("width", s.Width()),
	)
	return s, nil
}

// ProvidePredictor loads the local model or probes the model service,
// depending on predictor.backend. Failure aborts startup.
func ProvidePredictor(cfg *config.Config, schema artifact.Schema, rec *metrics.Recorder, l *logger.Logger) (domsvc.Predictor, error) {
	if cfg.Predictor.Backend == config.BackendHTTP {
		p := analytics.NewHTTPPredictor(cfg.Predictor.URL, cfg.Predictor.Timeout, cfg.Predictor.Retries, schema.Version, schema.Width())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Predictor.Timeout*2)
		defer cancel()
		if err := p.Probe(ctx); err != nil {
			return nil, err
		}
		rec.RecordArtifact("model", "http", schema.Version, p.Width())
		l.Info("model service reachable", logger.String("url", cfg.Predictor.URL))
		return p, nil
	}

	m, err := artifact.LoadModel(cfg.Predictor.ModelPath, schema)
	if err != nil {
		return nil, err
	}
	kind := "unknown"
	if k, ok := m.(interface{ Kind() string }); ok {
		kind = k.Kind()
	}
	rec.RecordArtifact("model", kind, schema.Version, m.Width())
	l.Info("model loaded",
		logger.String("path", cfg.Predictor.ModelPath),
		logger.String("kind", kind),
		logger.Int("width", m.Width()),
	)
	return m, nil
}

// ProvideCacheStore creates the byte store behind the prediction cache:
// Redis when both cache.enabled and cache.redis.enabled, in-memory otherwise.
func ProvideCacheStore(cfg *config.Config, l *logger.Logger) (cache.BytesCache, func(), error) {
	if !cfg.Cache.Enabled || !cfg.Cache.Redis.Enabled {
		return cache.NewTTLCache(4096), func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Cache.Redis.Timeout)
	defer cancel()
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected", logger.String("addr", cfg.Cache.Redis.Addr))
	return rc, func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", logger.Error(err))
		}
	}, nil
}

// ProvidePredictionCache returns nil when caching is disabled.
func ProvidePredictionCache(cfg *config.Config, store cache.BytesCache, schema artifact.Schema) repository.PredictionCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	return cache.NewPredictionCache(store, schema.Version)
}

// ProvideLimiter returns nil when rate limiting is disabled; a nil Limiter allows everything.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideLiquidityPredictor creates the prediction use case.
func ProvideLiquidityPredictor(
	cfg *config.Config,
	scaler domsvc.Scaler,
	model domsvc.Predictor,
	rec *metrics.Recorder,
	pc repository.PredictionCache,
	l *logger.Logger,
) *usecase.LiquidityPredictor {
	opts := []usecase.Option{usecase.WithMetrics(rec), usecase.WithLogger(l)}
	if pc != nil {
		opts = append(opts, usecase.WithCache(pc, cfg.Cache.TTL))
	}
	return usecase.NewLiquidityPredictor(scaler, model, opts...)
}

// ProvideHandlers creates the API and form handlers.
func ProvideHandlers(l *logger.Logger, uc *usecase.LiquidityPredictor, lim *ratelimit.Limiter) xhttp.Handler {
	return xhttp.Handlers{
		api.NewPredictEchoHandler(l, uc, lim),
		web.NewPredictWebHandler(l, uc, lim),
	}
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, l *logger.Logger, reg *prometheus.Registry, h xhttp.Handler) (*xhttp.Server, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l),
		xhttp.WithRenderer(renderer),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path))
	}
	return xhttp.NewServer(h, opts...), nil
}

// ProvideApp creates the application server.
func ProvideApp(l *logger.Logger, srv *xhttp.Server) *server.App {
	return server.New(l, srv)
}
