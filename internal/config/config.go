package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/epw-station-etl/internal/domain"
)

// DefaultIndexURL is the EnergyPlus weather index published by NREL.
const DefaultIndexURL = "https://raw.githubusercontent.com/NREL/EnergyPlus/develop/weather/master.geojson"

const maxHeaderBytes = 64 * 1024

// Config holds all scraper settings, populated from environment variables.
type Config struct {
	IndexURL   string
	OutputPath string
	UserAgent  string

	// Header fetch configuration.
	HeaderBytes    int
	MaxRetries     int
	FetchTimeout   time.Duration
	FetchRetryWait time.Duration

	// Politeness delay between consecutive fetches.
	MinDelay time.Duration
	MaxDelay time.Duration

	SourcePriorityFile string
	SourcePriority     []domain.SourceRank

	LogLevel        string
	LogFormat       string
	LogFile         string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Optional Kafka loader; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	headerBytes, err := parseIntInRange("HEADER_BYTES", 512, 1, maxHeaderBytes)
	if err != nil {
		return nil, err
	}
	maxRetries, err := parseIntInRange("FETCH_MAX_RETRIES", 3, 1, 10)
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "15s", false)
	if err != nil {
		return nil, err
	}
	retryWait, err := parseDuration("FETCH_RETRY_WAIT", "500ms", true)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("REQUEST_MIN_DELAY", "250ms", true)
	if err != nil {
		return nil, err
	}
	maxDelay, err := parseDuration("REQUEST_MAX_DELAY", "750ms", true)
	if err != nil {
		return nil, err
	}

	priorityFile := os.Getenv("SOURCE_PRIORITY_FILE")
	priority := domain.DefaultSourcePriority
	if priorityFile != "" {
		priority, err = LoadPriorityFile(priorityFile)
		if err != nil {
			return nil, err
		}
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		IndexURL:   sharedcfg.EnvOrDefault("INDEX_URL", DefaultIndexURL),
		OutputPath: sharedcfg.EnvOrDefault("OUTPUT_PATH", "output/weather_file_locations.csv"),
		UserAgent:  sharedcfg.EnvOrDefault("USER_AGENT", "epw-station-etl/1.0"),

		HeaderBytes:    headerBytes,
		MaxRetries:     maxRetries,
		FetchTimeout:   fetchTimeout,
		FetchRetryWait: retryWait,
		MinDelay:       minDelay,
		MaxDelay:       maxDelay,

		SourcePriorityFile: priorityFile,
		SourcePriority:     priority,

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         os.Getenv("LOG_FILE"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-station-locations"),
	}

	if cfg.IndexURL == "" {
		return nil, errors.New("INDEX_URL is required")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether locations are also published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseIntInRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
