package classifier_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/cloud-classification-api/internal/classifier"
	"github.com/couchcryptid/cloud-classification-api/internal/domain"
	"github.com/couchcryptid/cloud-classification-api/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

// scriptedRandom replays fixed draws so tests control every random choice.
type scriptedRandom struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

func (s *scriptedRandom) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRandom) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.ints[0] % n
	s.ints = s.ints[1:]
	return v
}

type mockPublisher struct {
	mu        sync.Mutex
	published []domain.Prediction
	err       error
}

func (m *mockPublisher) PublishPrediction(_ context.Context, p domain.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, p)
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	baseTime = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	settings = classifier.Settings{
		MinDelay:     500 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		ModelVersion: "1.0.0",
		APIVersion:   "2.0.0",
	}
)

func testUpload() domain.Upload {
	return domain.Upload{Filename: "photo.jpg", ContentType: "application/octet-stream", Data: make([]byte, 500)}
}

// --- tests ---

func TestPredict_WaitsForDrawnDelay(t *testing.T) {
	clock := clockwork.NewFakeClockAt(baseTime)
	rng := &scriptedRandom{floats: []float64{0.5, 0.0}, ints: []int{4}}
	metrics := observability.NewMetricsForTesting()

	c := classifier.New(settings, discardLogger(), metrics,
		classifier.WithClock(clock),
		classifier.WithRandom(rng),
		classifier.WithIDGenerator(func() string { return "pred-1" }),
	)

	type result struct {
		p   domain.Prediction
		err error
	}
	done := make(chan result, 1)
	go func() {
		p, err := c.Predict(context.Background(), testUpload())
		done <- result{p, err}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	// 0.5 of the [0.5s, 2s] span.
	clock.Advance(1249 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("prediction returned before the delay elapsed")
	default:
	}
	clock.Advance(time.Millisecond)

	var r result
	select {
	case r = <-done:
	case <-ctx.Done():
		t.Fatal("prediction did not complete after the delay")
	}
	require.NoError(t, r.err)

	p := r.p
	assert.True(t, p.Success)
	assert.Equal(t, "Cirrus", p.CloudType)
	assert.Equal(t, "Ci", p.Abbreviation)
	assert.Equal(t, 0.75, p.Confidence)
	assert.Equal(t, 1.25, p.ProcessingTime)
	assert.NotEmpty(t, p.Description)
	assert.NotEmpty(t, p.WeatherSignificance)
	assert.NotEmpty(t, p.Altitude)
	assert.NotEmpty(t, p.Appearance)

	assert.Equal(t, domain.FileInfo{
		Filename:    "photo.jpg",
		ContentType: "application/octet-stream",
		SizeBytes:   500,
		SizeKB:      0.49,
	}, p.FileInfo)
	assert.Equal(t, domain.PredictionMetadata{
		PredictionID: "pred-1",
		ModelVersion: "1.0.0",
		Timestamp:    baseTime.Add(1250 * time.Millisecond).Unix(),
		APIVersion:   "2.0.0",
	}, p.Metadata)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Predictions.WithLabelValues("Cirrus")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PredictionsInFlight))
}

func TestPredict_ConfidenceRounding(t *testing.T) {
	tests := []struct {
		name string
		draw float64
		want float64
	}{
		{"lower bound", 0.0, 0.75},
		{"upper bound", 0.99999, 0.98},
		{"rounds to three decimals", 0.123456, 0.778},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &scriptedRandom{floats: []float64{0, tt.draw}, ints: []int{0}}
			c := classifier.New(classifier.Settings{}, discardLogger(), observability.NewMetricsForTesting(),
				classifier.WithRandom(rng))

			p, err := c.Predict(context.Background(), testUpload())
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Confidence)
		})
	}
}

func TestPredict_PropertiesWithSeededSource(t *testing.T) {
	names := map[string]bool{}
	for _, n := range domain.CloudTypeNames() {
		names[n] = true
	}

	c := classifier.New(classifier.Settings{}, discardLogger(), observability.NewMetricsForTesting(),
		classifier.WithRandom(classifier.NewRandom(7)))

	seen := map[string]int{}
	for range 500 {
		p, err := c.Predict(context.Background(), testUpload())
		require.NoError(t, err)
		assert.True(t, names[p.CloudType], "unexpected cloud type %q", p.CloudType)
		assert.GreaterOrEqual(t, p.Confidence, classifier.MinConfidence)
		assert.LessOrEqual(t, p.Confidence, classifier.MaxConfidence)
		assert.NotEmpty(t, p.Metadata.PredictionID)
		seen[p.CloudType]++
	}
	assert.Len(t, seen, domain.CloudTypeCount, "every cloud type should be drawn at least once")
}

func TestPredict_SameSeedSameSequence(t *testing.T) {
	run := func() []string {
		c := classifier.New(classifier.Settings{}, discardLogger(), observability.NewMetricsForTesting(),
			classifier.WithRandom(classifier.NewRandom(99)))
		var out []string
		for range 20 {
			p, err := c.Predict(context.Background(), testUpload())
			require.NoError(t, err)
			out = append(out, p.CloudType)
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestPredict_ContextCancelledDuringDelay(t *testing.T) {
	clock := clockwork.NewFakeClockAt(baseTime)
	pub := &mockPublisher{}
	c := classifier.New(settings, discardLogger(), observability.NewMetricsForTesting(),
		classifier.WithClock(clock),
		classifier.WithRandom(&scriptedRandom{floats: []float64{1}}),
		classifier.WithPublisher(pub),
	)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Predict(ctx, testUpload())
		errCh <- err
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	cancel()

	err := <-errCh
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, pub.published)
}

func TestPredict_ConcurrentRequestsDoNotSerialize(t *testing.T) {
	clock := clockwork.NewFakeClockAt(baseTime)
	c := classifier.New(settings, discardLogger(), observability.NewMetricsForTesting(),
		classifier.WithClock(clock),
		classifier.WithRandom(classifier.NewRandom(1)),
	)

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Predict(context.Background(), testUpload())
			errs <- err
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// All requests are waiting at the same time.
	require.NoError(t, clock.BlockUntilContext(ctx, n))
	clock.Advance(settings.MaxDelay)

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestPredict_RejectsInvalidUpload(t *testing.T) {
	pub := &mockPublisher{}
	c := classifier.New(classifier.Settings{}, discardLogger(), observability.NewMetricsForTesting(),
		classifier.WithPublisher(pub))

	_, err := c.Predict(context.Background(), domain.Upload{Filename: "a.png", ContentType: "image/png"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyFile)
	assert.Empty(t, pub.published)
}

func TestPredict_PublishesEvent(t *testing.T) {
	pub := &mockPublisher{}
	c := classifier.New(classifier.Settings{}, discardLogger(), observability.NewMetricsForTesting(),
		classifier.WithPublisher(pub),
		classifier.WithRandom(classifier.NewRandom(3)))

	p, err := c.Predict(context.Background(), testUpload())
	require.NoError(t, err)
	require.Len(t, pub.published, 1)
	assert.Equal(t, p, pub.published[0])
}

func TestPredict_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker unavailable")}
	c := classifier.New(classifier.Settings{}, discardLogger(), observability.NewMetricsForTesting(),
		classifier.WithPublisher(pub))

	p, err := c.Predict(context.Background(), testUpload())
	require.NoError(t, err)
	assert.True(t, p.Success)
	assert.Len(t, pub.published, 1)
}

func TestInfo(t *testing.T) {
	c := classifier.New(settings, discardLogger(), observability.NewMetricsForTesting())
	info := c.Info()

	assert.Equal(t, "1.0.0", info.ModelVersion)
	assert.Equal(t, "2.0.0", info.APIVersion)
	assert.True(t, info.Mock)
	assert.Equal(t, domain.CloudTypeNames(), info.Classes)
	assert.Equal(t, [2]float64{0.75, 0.98}, info.ConfidenceRange)
	assert.Equal(t, 0.5, info.ProcessingDelay.MinSeconds)
	assert.Equal(t, 2.0, info.ProcessingDelay.MaxSeconds)
}

func TestCheckReadiness(t *testing.T) {
	c := classifier.New(settings, discardLogger(), observability.NewMetricsForTesting())
	assert.NoError(t, c.CheckReadiness(context.Background()))
}
