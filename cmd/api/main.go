package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/ordering-bff/internal/attestation"
	"github.com/imrishuroy/ordering-bff/internal/aws"
	"github.com/imrishuroy/ordering-bff/internal/commerce"
	"github.com/imrishuroy/ordering-bff/internal/config"
	"github.com/imrishuroy/ordering-bff/internal/content"
	"github.com/imrishuroy/ordering-bff/internal/docs"
	"github.com/imrishuroy/ordering-bff/internal/handlers"
	"github.com/imrishuroy/ordering-bff/internal/location"
	"github.com/imrishuroy/ordering-bff/internal/logging"
	"github.com/imrishuroy/ordering-bff/internal/metrics"
	"github.com/imrishuroy/ordering-bff/internal/store"
)

type routerDeps struct {
	cfg        *config.Config
	logger     logrus.FieldLogger
	prom       *metrics.Prometheus
	cloudWatch *aws.MetricsRecorder
	handlers   handlers.HandlerConfig
}

func setupRouter(d routerDeps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			"Origin", "Content-Type", logging.HeaderRequestID,
			attestation.HeaderClientName, attestation.HeaderAppCheckToken,
		},
		ExposeHeaders: []string{logging.HeaderRequestID},
	}))
	r.Use(logging.RequestLogger(d.logger))
	r.Use(d.prom.Middleware())
	if d.cloudWatch != nil {
		r.Use(d.cloudWatch.FlushMiddleware(d.logger))
	}

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.prom.Handler()))

	if d.cfg.SwaggerEnabled() {
		if err := docs.Register(r, d.cfg.APIPrefix); err != nil {
			return nil, err
		}
	}

	handlers.RegisterAPIRoutes(r, d.cfg.RoutePrefix(), d.handlers)

	return r, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	prom := metrics.NewPrometheus()
	recorders := metrics.Multi{prom}

	var (
		clients    *aws.AWSClients
		cloudWatch *aws.MetricsRecorder
		storeOpts  []store.Option
	)
	if cfg.MirrorEventsQueueURL != "" || cfg.CloudWatchNamespace != "" {
		clients, err = aws.NewAWSClients(ctx)
		if err != nil {
			logger.WithError(err).Fatal("failed to init aws clients")
		}
	}
	if cfg.CloudWatchNamespace != "" {
		cloudWatch = aws.NewMetricsRecorder(clients.CloudWatch, cfg.CloudWatchNamespace)
		recorders = append(recorders, cloudWatch)
	}
	if cfg.MirrorEventsQueueURL != "" {
		storeOpts = append(storeOpts, store.WithEventPublisher(aws.NewPublisher(clients.SQS, cfg.MirrorEventsQueueURL)))
	}

	verifier, err := attestation.NewFirebaseVerifier(ctx, attestation.FirebaseConfig{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.FirebaseStorageBucket,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to init app check verifier")
	}

	commerceClient, err := commerce.NewClient(commerce.Config{
		StoreID:    cfg.SwellStoreID,
		SecretKey:  cfg.SwellSecretKey,
		BaseURL:    cfg.SwellAPIURL,
		HTTPClient: metrics.NewHTTPClient(recorders, metrics.SystemCommerce),
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to init commerce client")
	}

	contentClient, err := content.NewClient(content.Config{
		ProjectID:  cfg.SanityProjectID,
		Dataset:    cfg.SanityDataset,
		APIVersion: cfg.SanityAPIVersion,
		Token:      cfg.SanityAPIToken,
		HTTPClient: metrics.NewHTTPClient(recorders, metrics.SystemContent),
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to init content store client")
	}

	gateway := location.NewClient(cfg.APIGatewayBaseURL, metrics.NewHTTPClient(recorders, metrics.SystemGateway))

	r, err := setupRouter(routerDeps{
		cfg:        cfg,
		logger:     logger,
		prom:       prom,
		cloudWatch: cloudWatch,
		handlers: handlers.HandlerConfig{
			Location: location.NewService(gateway, logger),
			Store:    store.NewService(commerceClient, contentClient, logger, storeOpts...),
			Verifier: verifier,
			Logger:   logger,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to set up router")
	}

	// if RUN_LOCAL is set, run local HTTP server for development.
	if cfg.RunLocal {
		addr := ":" + strconv.Itoa(cfg.APIPort)
		logger.WithField("addr", addr).Info("running local server")
		if err := r.Run(addr); err != nil {
			logger.WithError(err).Fatal("failed to run local server")
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
