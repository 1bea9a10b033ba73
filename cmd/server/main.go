// VindexChain AI module - reputation scoring, market forecasts and chat
package main

import (
	"context"
	"os"

	"github.com/vindexchain/ai-module/internal/config"
	"github.com/vindexchain/ai-module/internal/logging"
	"github.com/vindexchain/ai-module/internal/server"
	"github.com/vindexchain/ai-module/internal/traces"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "development").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Create logger
	logger := logging.New(cfg.LogLevel, cfg.Env)

	logger.Info("starting ai-module",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
		"env", cfg.Env,
	)

	ctx := context.Background()

	// Tracing (no-op when OTLP endpoint is not configured)
	shutdownTraces, err := traces.Init(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTraces(context.Background()); err != nil {
			logger.Error("trace shutdown error", "error", err)
		}
	}()

	// Create and run server
	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
