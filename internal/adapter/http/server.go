package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/cloud-classification-api/internal/config"
	"github.com/couchcryptid/cloud-classification-api/internal/domain"
	"github.com/couchcryptid/cloud-classification-api/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Predictor produces mock classifications for uploads.
type Predictor interface {
	Predict(ctx context.Context, upload domain.Upload) (domain.Prediction, error)
	Info() domain.ModelInfo
	CheckReadiness(ctx context.Context) error
}

// Server exposes the classification API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	predictor  Predictor
	cfg        *config.Config
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces the real clock used for response timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer creates an HTTP server with the public API routes plus
// /healthz, /readyz, and /metrics.
func NewServer(cfg *config.Config, predictor Predictor, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Server {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	s := &Server{
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// Responses are held back by the simulated delay.
			WriteTimeout: cfg.PredictionDelayMax + 30*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine:    engine,
		predictor: predictor,
		cfg:       cfg,
		clock:     clockwork.NewRealClock(),
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(s)
	}

	engine.Use(
		s.recovery(),
		requestID(),
		s.observe(),
		corsMiddleware(cfg),
	)

	engine.GET("/", s.handleRoot)
	engine.GET("/health", s.handleHealth)
	engine.GET("/ping", s.handlePing)
	engine.GET("/model-info", s.handleModelInfo)
	engine.GET("/cloud-types", s.handleCloudTypes)
	engine.POST("/predict-cloud", s.limitBody(cfg.MaxRequestBytes), s.handlePredict)

	engine.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	engine.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(predictor)))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.NoRoute(s.handleNotFound)
	engine.NoMethod(s.handleMethodNotAllowed)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
