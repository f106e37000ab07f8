// Package app assembles the review service from its configuration. Every
// binary builds its collaborators here so the wiring lives in one place.
package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awstranslate "github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/dannyrandall/moviereviews/internal/api"
	"github.com/dannyrandall/moviereviews/internal/auth"
	"github.com/dannyrandall/moviereviews/internal/config"
	"github.com/dannyrandall/moviereviews/internal/logging"
	"github.com/dannyrandall/moviereviews/internal/metrics"
	"github.com/dannyrandall/moviereviews/internal/reviews"
	"github.com/dannyrandall/moviereviews/internal/reviewstore"
	"github.com/dannyrandall/moviereviews/internal/translate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// App holds the assembled service.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      reviews.Store
	Dispatcher *reviews.Dispatcher
	Service    *reviews.Service

	// Auth is nil when no user pool client is configured.
	Auth *auth.Client
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Production: cfg.IsProduction(),
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
	})
}

// LoadAWSConfig loads the default AWS configuration, pinned to cfg.Region
// when it is set.
func LoadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// New wires the service. Lookup and translation counters are registered with
// reg unless it is nil.
func New(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger, reg prometheus.Registerer) *App {
	a := &App{Config: cfg, Logger: logger}

	switch cfg.StoreBackend {
	case config.StoreMemory:
		logger.Warn("using in-memory review store", zap.Int("seed_reviews", len(reviews.SeedReviews())))
		a.Store = reviewstore.NewMemory(cfg.ReviewerIndex, cfg.DateIndex, reviews.SeedReviews()...)
	default:
		logger.Info("using dynamodb review store", zap.String("table", cfg.TableName))
		a.Store = reviewstore.NewDynamo(dynamodb.NewFromConfig(awsCfg), cfg.TableName, logger)
	}

	opts := []reviews.Option{
		reviews.WithIndexes(cfg.ReviewerIndex, cfg.DateIndex),
		reviews.WithSourceLanguage(cfg.SourceLanguage),
		reviews.WithTranslateConcurrency(cfg.TranslateConcurrency),
	}
	if reg != nil {
		opts = append(opts, reviews.WithRecorder(metrics.New(reg)))
	}
	translator := translate.New(awstranslate.NewFromConfig(awsCfg),
		translate.WithCircuitBreaker(uint32(cfg.TranslateBreakerFailures), cfg.TranslateBreakerOpen, func(from, to gobreaker.State) {
			logger.Warn("translate circuit breaker changed state",
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		}))
	a.Dispatcher = reviews.NewDispatcher(a.Store, translator, opts...)
	a.Service = reviews.NewService(a.Store)

	if cfg.UserPoolClientID != "" {
		a.Auth = auth.New(cip.NewFromConfig(awsCfg), cfg.UserPoolClientID)
	} else {
		logger.Info("USER_POOL_CLIENT_ID is not set, auth routes are disabled")
	}

	return a
}

// Handler returns the HTTP handler set for the service.
func (a *App) Handler() *api.Handler {
	h := &api.Handler{
		Lookup:  a.Dispatcher,
		Reviews: a.Service,
		Logger:  a.Logger,
		Timeout: a.Config.RequestTimeout,
	}
	// a nil *auth.Client must stay a nil interface
	if a.Auth != nil {
		h.Auth = a.Auth
	}
	return h
}
