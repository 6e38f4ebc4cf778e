// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultClassifierURL is the hosted emotion model used when none is configured.
const DefaultClassifierURL = "https://api-inference.huggingface.co/models/j-hartmann/emotion-english-distilroberta-base"

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Server     ServerConfig
	Batch      BatchConfig
	Classifier ClassifierConfig
	YouTube    YouTubeConfig
	Redis      RedisConfig
	RabbitMQ   RabbitMQConfig
	Logging    LoggingConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     string
}

// BatchConfig controls the fan-out of a single analyze request. MaxURLs of 0
// accepts batches of any size.
type BatchConfig struct {
	Workers int
	MaxURLs int
}

// ClassifierConfig points at the emotion scoring model.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ClassifierConfig struct {
	URL       string
	APIKey    string
	Timeout   time.Duration
	Threshold float64
}

// YouTubeConfig selects and tunes the metadata extractor. An empty APIKey
// selects the page scraper instead of the Data API. Once QuotaThreshold
// percent of DailyQuota units are spent, lookups fall back to the scraper.
type YouTubeConfig struct {
	APIKey         string
	Timeout        time.Duration
	DailyQuota     int
	QuotaThreshold int
}

// RedisConfig configures the optional metadata cache. An empty URL disables it.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// RabbitMQConfig contains RabbitMQ connection and exchange configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Enabled    bool
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	// APP_SERVER_PORT maps to server.port
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	}
	if c.Batch.MaxURLs < 0 {
		return fmt.Errorf("batch.maxurls must not be negative, got %d", c.Batch.MaxURLs)
	}
	if c.Classifier.Threshold < 0 || c.Classifier.Threshold > 1 {
		return fmt.Errorf("classifier.threshold must be within [0, 1], got %v", c.Classifier.Threshold)
	}
	if c.Classifier.URL == "" {
		return fmt.Errorf("classifier.url is required")
	}
	return nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 4000)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)
	viper.SetDefault("server.corsorigins", "*")

	// Batch
	viper.SetDefault("batch.workers", 5)
	viper.SetDefault("batch.maxurls", 100)

	// Classifier
	viper.SetDefault("classifier.url", DefaultClassifierURL)
	viper.SetDefault("classifier.apikey", "")
	viper.SetDefault("classifier.timeout", 30*time.Second)
	viper.SetDefault("classifier.threshold", 0.4)

	// YouTube
	viper.SetDefault("youtube.apikey", "")
	viper.SetDefault("youtube.timeout", 30*time.Second)
	viper.SetDefault("youtube.dailyquota", 10000)
	viper.SetDefault("youtube.quotathreshold", 90)

	// Redis
	viper.SetDefault("redis.url", "")
	viper.SetDefault("redis.ttl", time.Hour)

	// RabbitMQ
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "video.classifications")
	viper.SetDefault("rabbitmq.queue", "video.classifications.results")
	viper.SetDefault("rabbitmq.routingkey", "classification.#")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
