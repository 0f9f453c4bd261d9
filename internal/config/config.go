package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all builder settings, populated from environment variables.
type Config struct {
	DataDir   string
	OutputDir string

	// PayloadVersion is the manually bumped republication counter.
	PayloadVersion      int
	RegionalOffsetsFile string

	LogLevel        string
	LogFormat       string
	MetricsTextfile string

	// Publication notice; disabled when KafkaBrokers is empty.
	KafkaBrokers   []string
	KafkaTopic     string
	PublishTimeout time.Duration
}

// PublishEnabled reports whether a publication notice should be produced.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from the environment, after merging an optional
// .env file in the working directory, applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("OUTPUT_DIR", ".")
	v.SetDefault("PAYLOAD_VERSION", 1)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("KAFKA_TOPIC", "prayer-months-published")
	v.SetDefault("PUBLISH_TIMEOUT", "10s")

	cfg := &Config{
		DataDir:             v.GetString("DATA_DIR"),
		OutputDir:           v.GetString("OUTPUT_DIR"),
		PayloadVersion:      v.GetInt("PAYLOAD_VERSION"),
		RegionalOffsetsFile: v.GetString("REGIONAL_OFFSETS_FILE"),
		LogLevel:            strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:           strings.ToLower(v.GetString("LOG_FORMAT")),
		MetricsTextfile:     v.GetString("METRICS_TEXTFILE"),
		KafkaBrokers:        parseBrokers(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:          v.GetString("KAFKA_TOPIC"),
		PublishTimeout:      v.GetDuration("PUBLISH_TIMEOUT"),
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR must not be empty")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR must not be empty")
	}
	if cfg.PayloadVersion <= 0 {
		return nil, errors.New("PAYLOAD_VERSION must be a positive integer")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	if cfg.PublishTimeout <= 0 {
		return nil, errors.New("invalid PUBLISH_TIMEOUT")
	}
	if cfg.PublishEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
