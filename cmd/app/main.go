package main

import (
	"context"
	"flag"
	"log"
	"os"

	"CryptoLiquidity/internal/di"
	"CryptoLiquidity/pkg/config"
	"CryptoLiquidity/pkg/logger"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	scalerPath := flag.String("scaler", "", "scaler artifact path (overrides config)")
	modelPath := flag.String("model", "", "model artifact path (overrides config)")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath, func(c *config.Config) {
		if *scalerPath != "" {
			c.Predictor.ScalerPath = *scalerPath
		}
		if *modelPath != "" {
			c.Predictor.ModelPath = *modelPath
		}
	})
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	l, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	l.Info("starting",
		logger.String("env", cfg.Environment),
		logger.String("backend", cfg.Predictor.Backend),
		logger.Int("port", cfg.Server.Port),
	)

	// Wire DI: artifacts are loaded here, before anything listens
	app, cleanup, err := di.InitializeApp(cfg, l)
	if err != nil {
		l.Fatal("app initialization failed", logger.Error(err))
	}

	// Run application (blocks until signal)
	err = app.Run(context.Background())
	cleanup()
	if err != nil {
		l.Error("app error", logger.Error(err))
		os.Exit(1)
	}
}
