package main

import (
	"context"
	"log"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/dannyrandall/moviereviews/internal/api"
	"github.com/dannyrandall/moviereviews/internal/app"
	"github.com/dannyrandall/moviereviews/internal/config"
	"go.uber.org/zap"
)

type handler struct {
	adapter *chiadapter.ChiLambda
	logger  *zap.Logger
}

// handle serves one API Gateway REST proxy event. The gateway's request ID
// is used unless the caller sent one.
func (h *handler) handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	withGatewayRequestID(&req)

	resp, err := h.adapter.ProxyWithContext(ctx, req)
	if err != nil {
		h.logger.Error("unable to proxy request",
			zap.String("method", req.HTTPMethod),
			zap.String("path", req.Path),
			zap.Error(err))
	}
	return resp, err
}

const requestIDHeader = "X-Request-Id"

// withGatewayRequestID sets the request ID header to the gateway's request ID
// unless the caller already sent one. The proxy reads MultiValueHeaders when
// the event has them, so both header maps are updated.
func withGatewayRequestID(req *events.APIGatewayProxyRequest) {
	id := req.RequestContext.RequestID
	if id == "" {
		return
	}
	for k, v := range req.Headers {
		if strings.EqualFold(k, requestIDHeader) && v != "" {
			return
		}
	}
	for k, vs := range req.MultiValueHeaders {
		if strings.EqualFold(k, requestIDHeader) && len(vs) > 0 && vs[0] != "" {
			return
		}
	}

	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	req.Headers[requestIDHeader] = id
	if req.MultiValueHeaders != nil {
		req.MultiValueHeaders[requestIDHeader] = []string{id}
	}
}

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

	awsCfg, err := app.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Fatal("unable to load aws config", zap.Error(err))
	}
	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}

	a := app.New(cfg, awsCfg, logger, nil)
	h := &handler{
		adapter: chiadapter.New(api.NewRouter(a.Handler())),
		logger:  logger,
	}
	lambda.Start(h.handle)
}
