package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	PostgresDSN string

	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaChartTopic string

	ProviderBaseURL string
	ProviderToken   string
	ProviderTimeout time.Duration

	CacheRetention time.Duration
	EvictInterval  time.Duration

	RulershipScheme string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is merged in first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	providerTimeout, err := parseDuration("PROVIDER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheRetention, err := parseDuration("CACHE_RETENTION", "720h")
	if err != nil {
		return nil, err
	}
	evictInterval, err := parseDuration("EVICT_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	kafkaBrokers := parseBrokers(envOrDefault("KAFKA_BROKERS", ""))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    kafkaBrokers,
		KafkaChartTopic: envOrDefault("KAFKA_CHART_TOPIC", "natal-charts"),

		ProviderBaseURL: envOrDefault("PROVIDER_BASE_URL", "https://api.horizonapi.dev/v1"),
		ProviderToken:   os.Getenv("PROVIDER_TOKEN"),
		ProviderTimeout: providerTimeout,

		CacheRetention: cacheRetention,
		EvictInterval:  evictInterval,

		RulershipScheme: envOrDefault("RULERSHIP_SCHEME", "traditional"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.PostgresDSN == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if cfg.ProviderToken == "" {
		return nil, errors.New("PROVIDER_TOKEN is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if s := cfg.RulershipScheme; s != "traditional" && s != "modern" {
		return nil, fmt.Errorf("invalid RULERSHIP_SCHEME %q", s)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
