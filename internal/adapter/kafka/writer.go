package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/cloud-classification-api/internal/config"
	"github.com/couchcryptid/cloud-classification-api/internal/domain"
	"github.com/couchcryptid/cloud-classification-api/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of kafkago.Writer used for publishing.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes prediction events to a Kafka topic.
// It implements classifier.EventPublisher.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates an asynchronous Kafka producer for the prediction topic.
// Delivery outcomes are reported through the completion callback so a slow
// broker never holds back an HTTP response.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &Writer{logger: logger, metrics: metrics}
	w.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaPredictionTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   w.complete,
	}
	return w
}

// PublishPrediction enqueues one prediction event.
func (w *Writer) PublishPrediction(ctx context.Context, p domain.Prediction) error {
	msg, err := serializeToMessage(p)
	if err != nil {
		w.metrics.EventsPublished.WithLabelValues("error").Inc()
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish prediction %s: %w", p.Metadata.PredictionID, err)
	}
	return nil
}

// Close flushes pending messages and releases the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) complete(msgs []kafkago.Message, err error) {
	if err != nil {
		w.metrics.EventsPublished.WithLabelValues("error").Add(float64(len(msgs)))
		w.logger.Warn("prediction events not delivered", "count", len(msgs), "error", err)
		return
	}
	w.metrics.EventsPublished.WithLabelValues("success").Add(float64(len(msgs)))
	w.logger.Debug("prediction events delivered", "count", len(msgs))
}

// serializeToMessage marshals a Prediction into a Kafka message.
func serializeToMessage(p domain.Prediction) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction: %w", err)
	}
	predictedAt := time.Unix(p.Metadata.Timestamp, 0).UTC()
	return kafkago.Message{
		Key:   []byte(p.Metadata.PredictionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "cloud_type", Value: []byte(p.CloudType)},
			{Key: "predicted_at", Value: []byte(predictedAt.Format(time.RFC3339))},
		},
	}, nil
}
