package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/forestd/internal/artifact"
	"github.com/kailas-cloud/forestd/internal/config"
	"github.com/kailas-cloud/forestd/internal/lifecycle"
	logpkg "github.com/kailas-cloud/forestd/internal/logger"
	"github.com/kailas-cloud/forestd/internal/metrics"
	chiTransport "github.com/kailas-cloud/forestd/internal/transport/chi"
	healthuc "github.com/kailas-cloud/forestd/internal/usecase/health"
	predictuc "github.com/kailas-cloud/forestd/internal/usecase/predict"
	"github.com/kailas-cloud/forestd/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logOptions(cfg.Logging))
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting forestd inference server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("artifact", cfg.Model.ArtifactPath),
	)

	metrics.RegisterModelMetrics()

	// The model is loaded once, before the listener opens; there is no fallback.
	state := lifecycle.New()
	predictSvc, err := predictuc.Startup(context.Background(), artifact.NewStore(cfg.Model.ArtifactPath), state, logger)
	if err != nil {
		logger.Fatal("Failed to load model", zap.Error(err), zap.Stringer("state", state.State()))
	}
	predictSvc.WithMaxBatchRows(cfg.HTTP.MaxBatchRows)

	healthSvc := healthuc.New(predictSvc, state)

	server := chiTransport.NewServer(predictSvc, healthSvc, logger).
		WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes).
		WithReadiness(state)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("addr", addr), zap.Error(err))
	}
	if err := state.MarkServing(); err != nil {
		logger.Fatal("Failed to enter serving state", zap.Error(err))
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func logOptions(c config.LoggingConfig) logpkg.Options {
	return logpkg.Options{
		Level:      c.Level,
		File:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	}
}
