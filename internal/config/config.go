// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/dannyrandall/moviereviews/internal/reviews"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

type Config struct {
	// AWS
	Region string

	// Reviews table
	StoreBackend  string
	TableName     string
	ReviewerIndex string
	DateIndex     string

	// Translation
	SourceLanguage           string
	TranslateConcurrency     int
	// Consecutive Translate failures that open the circuit breaker; 0 disables it.
	TranslateBreakerFailures int
	TranslateBreakerOpen     time.Duration

	// Cognito
	UserPoolClientID string

	// Review submission queue
	ReviewQueueURL string
	AddReviewURL   string

	// HTTP
	ListenAddr     string
	RequestTimeout time.Duration

	// Logging and tracing
	Environment   string
	LogLevel      string
	LogFile       string
	EnableTracing bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory, if there is one, is loaded first without overriding
// variables that are already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("STORE_BACKEND", StoreDynamoDB)
	v.SetDefault("REVIEWER_INDEX_NAME", reviews.DefaultReviewerIndex)
	v.SetDefault("DATE_INDEX_NAME", reviews.DefaultDateIndex)
	v.SetDefault("SOURCE_LANGUAGE", "en")
	v.SetDefault("TRANSLATE_CONCURRENCY", 8)
	v.SetDefault("TRANSLATE_BREAKER_FAILURES", 5)
	v.SetDefault("TRANSLATE_BREAKER_OPEN", 30*time.Second)
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	_ = v.BindEnv("REGION", "REGION", "AWS_REGION")
	_ = v.BindEnv("REVIEW_QUEUE_URL", "REVIEW_QUEUE_URL", "COPILOT_QUEUE_URI")

	cfg := &Config{
		Region:                   v.GetString("REGION"),
		StoreBackend:             v.GetString("STORE_BACKEND"),
		TableName:                v.GetString("TABLE_NAME"),
		ReviewerIndex:            v.GetString("REVIEWER_INDEX_NAME"),
		DateIndex:                v.GetString("DATE_INDEX_NAME"),
		SourceLanguage:           v.GetString("SOURCE_LANGUAGE"),
		TranslateConcurrency:     v.GetInt("TRANSLATE_CONCURRENCY"),
		TranslateBreakerFailures: v.GetInt("TRANSLATE_BREAKER_FAILURES"),
		TranslateBreakerOpen:     v.GetDuration("TRANSLATE_BREAKER_OPEN"),
		UserPoolClientID:         v.GetString("USER_POOL_CLIENT_ID"),
		ReviewQueueURL:           v.GetString("REVIEW_QUEUE_URL"),
		AddReviewURL:             v.GetString("ADD_REVIEW_URL"),
		ListenAddr:               v.GetString("LISTEN_ADDR"),
		RequestTimeout:           v.GetDuration("REQUEST_TIMEOUT"),
		Environment:              v.GetString("ENVIRONMENT"),
		LogLevel:                 v.GetString("LOG_LEVEL"),
		LogFile:                  v.GetString("LOG_FILE"),
		EnableTracing:            v.GetBool("ENABLE_TRACING"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every binary needs.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreDynamoDB:
		if c.TableName == "" {
			return errors.New("TABLE_NAME is not set")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreDynamoDB, StoreMemory, c.StoreBackend)
	}
	if c.TranslateConcurrency < 1 {
		return fmt.Errorf("TRANSLATE_CONCURRENCY must be at least 1, got %d", c.TranslateConcurrency)
	}
	if c.TranslateBreakerFailures < 0 {
		return fmt.Errorf("TRANSLATE_BREAKER_FAILURES must not be negative, got %d", c.TranslateBreakerFailures)
	}
	if c.TranslateBreakerFailures > 0 && c.TranslateBreakerOpen <= 0 {
		return fmt.Errorf("TRANSLATE_BREAKER_OPEN must be positive, got %s", c.TranslateBreakerOpen)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
