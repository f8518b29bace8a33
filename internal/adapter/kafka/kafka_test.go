package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/cloud-classification-api/internal/config"
	"github.com/couchcryptid/cloud-classification-api/internal/domain"
	"github.com/couchcryptid/cloud-classification-api/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testPrediction() domain.Prediction {
	ct, _ := domain.LookupCloudType("Cumulus")
	return domain.NewPrediction(ct, 0.912, 1.1,
		domain.FileInfo{Filename: "sky.png", ContentType: "image/png", SizeBytes: 2048, SizeKB: 2},
		domain.PredictionMetadata{
			PredictionID: "pred-1",
			ModelVersion: "1.0.0",
			Timestamp:    time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC).Unix(),
			APIVersion:   "2.0.0",
		})
}

func newTestWriter(fw *fakeWriter) (*Writer, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return &Writer{
		writer:  fw,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: metrics,
	}, metrics
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(testPrediction())
	require.NoError(t, err)

	assert.Equal(t, []byte("pred-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"cloud_type":"Cumulus"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "cloud_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("Cumulus"), msg.Headers[0].Value)
	assert.Equal(t, "predicted_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[1].Value)

	var decoded domain.Prediction
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, testPrediction(), decoded)
}

func TestPublishPrediction(t *testing.T) {
	fw := &fakeWriter{}
	w, _ := newTestWriter(fw)

	require.NoError(t, w.PublishPrediction(context.Background(), testPrediction()))
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, []byte("pred-1"), fw.msgs[0].Key)
}

func TestPublishPrediction_WriteError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	w, metrics := newTestWriter(fw)

	err := w.PublishPrediction(context.Background(), testPrediction())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pred-1")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("error")))
}

func TestCompletionCountsOutcomes(t *testing.T) {
	w, metrics := newTestWriter(&fakeWriter{})

	w.complete(make([]kafkago.Message, 3), nil)
	w.complete(make([]kafkago.Message, 2), errors.New("leader not available"))

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("error")))
}

func TestNewWriterUsesPredictionTopic(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaPredictionTopic: "cloud-predictions"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())

	kw, ok := w.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "cloud-predictions", kw.Topic)
	assert.True(t, kw.Async)
	require.NoError(t, w.Close())
}

func TestClose(t *testing.T) {
	fw := &fakeWriter{}
	w, _ := newTestWriter(fw)
	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}
