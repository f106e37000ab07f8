package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/dannyrandall/moviereviews/internal/api"
	"github.com/dannyrandall/moviereviews/internal/app"
	"github.com/dannyrandall/moviereviews/internal/config"
	"github.com/dannyrandall/moviereviews/internal/copilot"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	svcName := copilot.ServiceName("reviews-xray")

	awsCfg, err := app.LoadAWSConfig(setupCtx, cfg)
	if err != nil {
		logger.Fatal("unable to load aws config", zap.Error(err))
	}
	awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)

	a := app.New(cfg, awsCfg, logger, nil)
	router := api.NewRouter(a.Handler())

	if err := app.Serve(ctx, logger, cfg.ListenAddr, xray.Handler(xray.NewFixedSegmentNamer(svcName), router)); err != nil {
		logger.Error("error serving", zap.Error(err))
	}
}
