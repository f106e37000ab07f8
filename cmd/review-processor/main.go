package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/dannyrandall/moviereviews/internal/app"
	"github.com/dannyrandall/moviereviews/internal/config"
	"github.com/dannyrandall/moviereviews/internal/copilot"
	"github.com/dannyrandall/moviereviews/internal/otel"
	"github.com/dannyrandall/moviereviews/internal/reviewqueue"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	otelotel "go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("unable to load config: %s", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("unable to build logger: %s", err)
	}
	defer logger.Sync()

	if cfg.ReviewQueueURL == "" {
		logger.Fatal("REVIEW_QUEUE_URL is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcName := copilot.ServiceName("review-processor")
	if cfg.EnableTracing {
		shutdown, err := otel.SetupTracer(ctx, svcName)
		if err != nil {
			logger.Fatal("unable to setup otel tracer", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("unable to flush traces", zap.Error(err))
			}
		}()
	}

	awsCfg, err := app.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("unable to load aws config", zap.Error(err))
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	addReviewURL := cfg.AddReviewURL
	if addReviewURL == "" {
		addReviewURL = copilot.ServiceURL("reviews", 8080, "/movies/reviews")
	}

	q := &reviewqueue.Queue{
		SQS:          sqs.NewFromConfig(awsCfg),
		HTTP:         otelhttp.DefaultClient,
		Tracer:       otelotel.Tracer(svcName),
		Logger:       logger,
		AddReviewURL: addReviewURL,
		QueueName:    fmt.Sprintf("%s-%s-addReview", copilot.App(), copilot.Environment()),
		QueueURL:     cfg.ReviewQueueURL,
	}

	logger.Info("waiting for reviews", zap.String("queue_url", q.QueueURL), zap.String("add_review_url", addReviewURL))

	if err := q.ReceiveAndProcess(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("unable to receive and process", zap.Error(err))
	}
}
