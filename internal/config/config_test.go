package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TABLE_NAME", "MovieReviews")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "MovieReviews", cfg.TableName)
	assert.Equal(t, StoreDynamoDB, cfg.StoreBackend)
	assert.Equal(t, "reviewerNameIndex", cfg.ReviewerIndex)
	assert.Equal(t, "reviewDateIndex", cfg.DateIndex)
	assert.Equal(t, "en", cfg.SourceLanguage)
	assert.Equal(t, 8, cfg.TranslateConcurrency)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.EnableTracing)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TABLE_NAME", "Reviews")
	t.Setenv("REGION", "eu-west-1")
	t.Setenv("DATE_INDEX_NAME", "byDate")
	t.Setenv("TRANSLATE_CONCURRENCY", "2")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("ENABLE_TRACING", "true")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("COPILOT_QUEUE_URI", "https://sqs.eu-west-1.amazonaws.com/123/reviews")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "byDate", cfg.DateIndex)
	assert.Equal(t, 2, cfg.TranslateConcurrency)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.EnableTracing)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://sqs.eu-west-1.amazonaws.com/123/reviews", cfg.ReviewQueueURL)
}

func TestLoad_MissingTable(t *testing.T) {
	t.Setenv("TABLE_NAME", "")

	_, err := Load()

	assert.ErrorContains(t, err, "TABLE_NAME")
}

func TestLoad_MemoryNeedsNoTable(t *testing.T) {
	t.Setenv("TABLE_NAME", "")
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
}

func TestValidate(t *testing.T) {
	valid := Config{StoreBackend: StoreMemory, TranslateConcurrency: 1, RequestTimeout: time.Second}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.StoreBackend = "postgres"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.TranslateConcurrency = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.RequestTimeout = 0
	assert.Error(t, bad.Validate())
}

func TestLoad_TranslateBreaker(t *testing.T) {
	t.Setenv("TABLE_NAME", "Reviews")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.TranslateBreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.TranslateBreakerOpen)

	t.Setenv("TRANSLATE_BREAKER_FAILURES", "0")
	t.Setenv("TRANSLATE_BREAKER_OPEN", "0s")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.TranslateBreakerFailures)

	t.Setenv("TRANSLATE_BREAKER_FAILURES", "-1")
	_, err = Load()
	assert.ErrorContains(t, err, "TRANSLATE_BREAKER_FAILURES")
}
