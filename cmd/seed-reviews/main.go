// Command seed-reviews loads the seed reviews into the reviews table.
package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dannyrandall/moviereviews/internal/app"
	"github.com/dannyrandall/moviereviews/internal/config"
	"github.com/dannyrandall/moviereviews/internal/reviews"
	"github.com/dannyrandall/moviereviews/internal/reviewstore"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("unable to load config: %s", err)
	}
	if cfg.StoreBackend != config.StoreDynamoDB {
		log.Fatalf("seeding needs the %s store backend, got %s", config.StoreDynamoDB, cfg.StoreBackend)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("unable to build logger: %s", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	awsCfg, err := app.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("unable to load aws config", zap.Error(err))
	}

	seed := reviews.SeedReviews()
	store := reviewstore.NewDynamo(dynamodb.NewFromConfig(awsCfg), cfg.TableName, logger)
	if err := store.BatchPut(ctx, seed); err != nil {
		logger.Fatal("unable to seed reviews", zap.String("table", cfg.TableName), zap.Error(err))
	}
	logger.Info("seeded reviews", zap.String("table", cfg.TableName), zap.Int("count", len(seed)))
}
