package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dannyrandall/moviereviews/internal/api"
	"github.com/dannyrandall/moviereviews/internal/app"
	"github.com/dannyrandall/moviereviews/internal/config"
	"github.com/dannyrandall/moviereviews/internal/copilot"
	"github.com/dannyrandall/moviereviews/internal/otel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
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

	// Timeout for setup functions
	setupCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	svcName := copilot.ServiceName("reviews")
	if cfg.EnableTracing {
		shutdown, err := otel.SetupTracer(setupCtx, svcName)
		if err != nil {
			logger.Fatal("unable to setup otel tracer", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("unable to flush traces", zap.Error(err))
			}
		}()
	}

	awsCfg, err := app.LoadAWSConfig(setupCtx, cfg)
	if err != nil {
		logger.Fatal("unable to load aws config", zap.Error(err))
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := app.New(cfg, awsCfg, logger, reg)
	router := api.NewRouter(a.Handler())
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if err := app.Serve(ctx, logger, cfg.ListenAddr, otelhttp.NewHandler(router, svcName)); err != nil {
		logger.Error("error serving", zap.Error(err))
	}
}
