package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// APIVersion is the version of the HTTP contract served by this build.
const APIVersion = "2.0.0"

// DefaultCORSOrigins are the local React and Vite development servers.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	CORSAllowedOrigins []string
	MaxRequestBytes    int64

	// Mock prediction behaviour.
	PredictionDelayMin time.Duration
	PredictionDelayMax time.Duration
	ModelVersion       string
	RandomSeed         uint64
	RandomSeedSet      bool

	// Prediction event stream.
	EventsEnabled        bool
	KafkaBrokers         []string
	KafkaPredictionTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	delayMin, err := parseNonNegativeDuration("PREDICTION_DELAY_MIN", "500ms")
	if err != nil {
		return nil, err
	}
	delayMax, err := parseNonNegativeDuration("PREDICTION_DELAY_MAX", "2s")
	if err != nil {
		return nil, err
	}
	if delayMin > delayMax {
		return nil, fmt.Errorf("PREDICTION_DELAY_MIN (%s) must not exceed PREDICTION_DELAY_MAX (%s)", delayMin, delayMax)
	}

	maxRequestBytes, err := parseMaxRequestBytes()
	if err != nil {
		return nil, err
	}

	origins, err := parseOrigins(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", strings.Join(DefaultCORSOrigins, ",")))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        httpAddr(),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CORSAllowedOrigins: origins,
		MaxRequestBytes:    maxRequestBytes,

		PredictionDelayMin: delayMin,
		PredictionDelayMax: delayMax,
		ModelVersion:       sharedcfg.EnvOrDefault("MODEL_VERSION", "1.0.0"),

		EventsEnabled:        os.Getenv("PREDICTION_EVENTS_ENABLED") == "true",
		KafkaBrokers:         sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaPredictionTopic: sharedcfg.EnvOrDefault("KAFKA_PREDICTION_TOPIC", "cloud-predictions"),
	}

	if s := os.Getenv("RANDOM_SEED"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, errors.New("invalid RANDOM_SEED")
		}
		cfg.RandomSeed = seed
		cfg.RandomSeedSet = true
	}

	if cfg.EventsEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when PREDICTION_EVENTS_ENABLED is true")
		}
		if cfg.KafkaPredictionTopic == "" {
			return nil, errors.New("KAFKA_PREDICTION_TOPIC is required when PREDICTION_EVENTS_ENABLED is true")
		}
	}

	return cfg, nil
}

// AllowsAllOrigins reports whether the CORS list is the "*" wildcard.
func (c *Config) AllowsAllOrigins() bool {
	return len(c.CORSAllowedOrigins) == 1 && c.CORSAllowedOrigins[0] == "*"
}

// httpAddr prefers HTTP_ADDR, then the PORT override set by hosting
// platforms, then :8000.
func httpAddr() string {
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		return addr
	}
	return ":" + sharedcfg.EnvOrDefault("PORT", "8000")
}

func parseNonNegativeDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseMaxRequestBytes() (int64, error) {
	s := os.Getenv("MAX_REQUEST_BYTES")
	if s == "" {
		return 32 << 20, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid MAX_REQUEST_BYTES")
	}
	// The ceiling must leave room for a maximum-size file plus multipart framing.
	if n <= 10<<20 {
		return 0, errors.New("MAX_REQUEST_BYTES must exceed the 10MB upload limit")
	}
	return n, nil
}

func parseOrigins(raw string) ([]string, error) {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return nil, fmt.Errorf("invalid CORS_ALLOWED_ORIGINS entry %q: must start with http:// or https://", o)
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		return nil, errors.New("CORS_ALLOWED_ORIGINS is required")
	}
	for _, o := range origins {
		if o == "*" && len(origins) > 1 {
			return nil, errors.New("CORS_ALLOWED_ORIGINS: \"*\" cannot be combined with explicit origins")
		}
	}
	return origins, nil
}
