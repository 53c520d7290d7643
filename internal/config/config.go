package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/shopspring/decimal"

	"github.com/couchcryptid/wind-site-assessment/internal/domain"
)

const maxAssessWorkers = 64

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration
	AssessWorkers      int

	// Assessment engine tunables.
	WindProfileLaw      domain.ProfileLaw
	QuadratureTolerance float64
	TieEpsilonKm        float64
	GridCostBaseEUR     decimal.Decimal
	GridCostPerKmEUR    decimal.Decimal

	// Mapbox reverse geocoding for site names.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err2 := time.ParseDuration(mapboxTimeoutStr)
	if err2 != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	workers, err := parseAssessWorkers()
	if err != nil {
		return nil, err
	}

	law, err := domain.ParseProfileLaw(sharedcfg.EnvOrDefault("WIND_PROFILE_LAW", string(domain.LawLog)))
	if err != nil {
		return nil, fmt.Errorf("invalid WIND_PROFILE_LAW: %w", err)
	}

	tolerance, err := parseFloat("CF_QUADRATURE_TOLERANCE", domain.DefaultQuadratureTolerance)
	if err != nil {
		return nil, err
	}
	if !(tolerance > 0) {
		return nil, errors.New("CF_QUADRATURE_TOLERANCE must be positive")
	}

	epsilon, err := parseFloat("GRID_TIE_EPSILON_KM", domain.DefaultTieEpsilonKm)
	if err != nil {
		return nil, err
	}
	if !(epsilon >= 0) {
		return nil, errors.New("GRID_TIE_EPSILON_KM must not be negative")
	}

	costBase, err := parseEUR("GRID_COST_BASE_EUR", domain.DefaultConnectionBaseEUR)
	if err != nil {
		return nil, err
	}
	costPerKm, err := parseEUR("GRID_COST_PER_KM_EUR", domain.DefaultConnectionPerKmEUR)
	if err != nil {
		return nil, err
	}

	mapboxCacheSize := parseMapboxCacheSize()

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "site-assessment-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "site-assessment-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "site-assessor"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		AssessWorkers:      workers,

		WindProfileLaw:      law,
		QuadratureTolerance: tolerance,
		TieEpsilonKm:        epsilon,
		GridCostBaseEUR:     costBase,
		GridCostPerKmEUR:    costPerKm,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.KafkaSourceTopic == cfg.KafkaSinkTopic {
		return nil, errors.New("KAFKA_SOURCE_TOPIC and KAFKA_SINK_TOPIC must differ")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// Aggregator returns the engine configuration derived from the environment.
func (c *Config) Aggregator() domain.AggregatorConfig {
	return domain.AggregatorConfig{
		QuadratureTolerance: c.QuadratureTolerance,
		TieEpsilonKm:        c.TieEpsilonKm,
		Cost:                domain.CostModel{BaseEUR: c.GridCostBaseEUR, PerKmEUR: c.GridCostPerKmEUR},
		Weights:             domain.DefaultScoreWeights(),
	}
}

func parseAssessWorkers() (int, error) {
	s := sharedcfg.EnvOrDefault("ASSESS_WORKERS", "4")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxAssessWorkers {
		return 0, fmt.Errorf("invalid ASSESS_WORKERS %q: must be an integer in [1, %d]", s, maxAssessWorkers)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func parseEUR(key string, def decimal.Decimal) (decimal.Decimal, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if v.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: must not be negative", key, s)
	}
	return v, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
