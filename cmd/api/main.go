package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/cloud-classification-api/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/cloud-classification-api/internal/adapter/kafka"
	"github.com/couchcryptid/cloud-classification-api/internal/classifier"
	"github.com/couchcryptid/cloud-classification-api/internal/config"
	"github.com/couchcryptid/cloud-classification-api/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// A local .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	gin.SetMode(gin.ReleaseMode)

	rng := classifier.NewUnseededRandom()
	if cfg.RandomSeedSet {
		rng = classifier.NewRandom(cfg.RandomSeed)
		logger.Info("deterministic predictions enabled", "seed", cfg.RandomSeed)
	}
	opts := []classifier.Option{classifier.WithRandom(rng)}

	// Prediction events are feature-flagged via PREDICTION_EVENTS_ENABLED.
	var writer *kafkaadapter.Writer
	if cfg.EventsEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger, metrics)
		opts = append(opts, classifier.WithPublisher(writer))
		metrics.EventsEnabled.Set(1)
		logger.Info("prediction events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaPredictionTopic)
	} else {
		logger.Info("prediction events disabled")
	}

	c := classifier.New(classifier.Settings{
		MinDelay:     cfg.PredictionDelayMin,
		MaxDelay:     cfg.PredictionDelayMax,
		ModelVersion: cfg.ModelVersion,
		APIVersion:   config.APIVersion,
	}, logger, metrics, opts...)

	srv := httpadapter.NewServer(cfg, c, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
