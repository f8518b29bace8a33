package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/couchcryptid/cloud-classification-api/internal/domain"
	"github.com/couchcryptid/cloud-classification-api/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Confidence bounds of a mock prediction.
const (
	MinConfidence = 0.75
	MaxConfidence = 0.98
)

// EventPublisher receives every successful prediction.
type EventPublisher interface {
	PublishPrediction(ctx context.Context, p domain.Prediction) error
}

// Settings control the mock prediction behaviour.
type Settings struct {
	MinDelay     time.Duration
	MaxDelay     time.Duration
	ModelVersion string
	APIVersion   string
}

// Classifier produces mock cloud classifications for validated uploads.
type Classifier struct {
	settings  Settings
	catalog   []domain.CloudType
	rng       Random
	clock     clockwork.Clock
	publisher EventPublisher
	newID     func() string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithRandom replaces the default runtime-seeded random source.
func WithRandom(r Random) Option {
	return func(c *Classifier) { c.rng = r }
}

// WithClock replaces the real clock used for the delay and timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Classifier) { c.clock = clock }
}

// WithPublisher sends each successful prediction to p.
func WithPublisher(p EventPublisher) Option {
	return func(c *Classifier) { c.publisher = p }
}

// WithIDGenerator replaces the UUID generator for prediction IDs.
func WithIDGenerator(fn func() string) Option {
	return func(c *Classifier) { c.newID = fn }
}

// New creates a Classifier over the static cloud catalog.
func New(settings Settings, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Classifier {
	c := &Classifier{
		settings: settings,
		catalog:  domain.CloudTypes(),
		clock:    clockwork.NewRealClock(),
		newID:    uuid.NewString,
		logger:   logger,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = NewUnseededRandom()
	}
	return c
}

// CheckReadiness returns nil once the catalog is loaded.
func (c *Classifier) CheckReadiness(_ context.Context) error {
	if len(c.catalog) == 0 {
		return errors.New("cloud catalog is empty")
	}
	return nil
}

// Info describes the mock model.
func (c *Classifier) Info() domain.ModelInfo {
	return domain.ModelInfo{
		ModelVersion:    c.settings.ModelVersion,
		APIVersion:      c.settings.APIVersion,
		Mock:            true,
		Classes:         domain.CloudTypeNames(),
		ConfidenceRange: [2]float64{MinConfidence, MaxConfidence},
		ProcessingDelay: domain.ProcessingDelay{
			MinSeconds: c.settings.MinDelay.Seconds(),
			MaxSeconds: c.settings.MaxDelay.Seconds(),
		},
	}
}

// Predict waits for the simulated processing delay, then returns a cloud type
// drawn uniformly from the catalog. The wait is abandoned when ctx is done.
func (c *Classifier) Predict(ctx context.Context, upload domain.Upload) (domain.Prediction, error) {
	if err := domain.ValidateUpload(upload); err != nil {
		return domain.Prediction{}, err
	}

	c.metrics.PredictionsInFlight.Inc()
	defer c.metrics.PredictionsInFlight.Dec()

	start := c.clock.Now()
	if err := sleepWithContext(ctx, c.clock, c.drawDelay()); err != nil {
		return domain.Prediction{}, fmt.Errorf("simulate processing: %w", err)
	}

	ct := c.catalog[c.rng.IntN(len(c.catalog))]
	confidence := round3(MinConfidence + c.rng.Float64()*(MaxConfidence-MinConfidence))
	elapsed := c.clock.Since(start)

	prediction := domain.NewPrediction(ct, confidence, round3(elapsed.Seconds()), upload.FileInfo(), domain.PredictionMetadata{
		PredictionID: c.newID(),
		ModelVersion: c.settings.ModelVersion,
		Timestamp:    c.clock.Now().Unix(),
		APIVersion:   c.settings.APIVersion,
	})

	c.metrics.Predictions.WithLabelValues(ct.Name).Inc()
	c.metrics.PredictionDuration.Observe(elapsed.Seconds())
	c.logger.Info("prediction served",
		"prediction_id", prediction.Metadata.PredictionID,
		"cloud_type", ct.Name,
		"confidence", confidence,
		"processing_time", prediction.ProcessingTime,
		"filename", upload.Filename,
		"size_bytes", upload.Size(),
	)

	if c.publisher != nil {
		if err := c.publisher.PublishPrediction(ctx, prediction); err != nil {
			c.logger.Warn("publish prediction event failed",
				"error", err,
				"prediction_id", prediction.Metadata.PredictionID,
			)
		}
	}

	return prediction, nil
}

// drawDelay picks a duration uniformly in [MinDelay, MaxDelay].
func (c *Classifier) drawDelay() time.Duration {
	span := c.settings.MaxDelay - c.settings.MinDelay
	f := c.rng.Float64()
	if span <= 0 {
		return c.settings.MinDelay
	}
	return c.settings.MinDelay + time.Duration(f*float64(span))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
