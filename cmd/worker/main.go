package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/ordering-bff/internal/aws"
	"github.com/imrishuroy/ordering-bff/internal/commerce"
	"github.com/imrishuroy/ordering-bff/internal/config"
	"github.com/imrishuroy/ordering-bff/internal/content"
	"github.com/imrishuroy/ordering-bff/internal/logging"
	"github.com/imrishuroy/ordering-bff/internal/metrics"
	"github.com/imrishuroy/ordering-bff/internal/store"
)

const localSQSBody = `{"type":"product.updated","data":{"id":"local-product-1"}}`

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	var (
		recorder   metrics.Recorder = metrics.Nop{}
		cloudWatch *aws.MetricsRecorder
		storeOpts  []store.Option
	)
	if cfg.MirrorEventsQueueURL != "" || cfg.CloudWatchNamespace != "" {
		clients, err := aws.NewAWSClients(ctx)
		if err != nil {
			logger.WithError(err).Fatal("failed to init aws clients")
		}
		if cfg.CloudWatchNamespace != "" {
			cloudWatch = aws.NewMetricsRecorder(clients.CloudWatch, cfg.CloudWatchNamespace)
			recorder = cloudWatch
		}
		if cfg.MirrorEventsQueueURL != "" {
			storeOpts = append(storeOpts, store.WithEventPublisher(aws.NewPublisher(clients.SQS, cfg.MirrorEventsQueueURL)))
		}
	}

	commerceClient, err := commerce.NewClient(commerce.Config{
		StoreID:    cfg.SwellStoreID,
		SecretKey:  cfg.SwellSecretKey,
		BaseURL:    cfg.SwellAPIURL,
		HTTPClient: metrics.NewHTTPClient(recorder, metrics.SystemCommerce),
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to init commerce client")
	}
	contentClient, err := content.NewClient(content.Config{
		ProjectID:  cfg.SanityProjectID,
		Dataset:    cfg.SanityDataset,
		APIVersion: cfg.SanityAPIVersion,
		Token:      cfg.SanityAPIToken,
		HTTPClient: metrics.NewHTTPClient(recorder, metrics.SystemContent),
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to init content store client")
	}

	processor := NewProcessor(store.NewService(commerceClient, contentClient, logger, storeOpts...), logger)
	handle := func(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
		resp, err := processor.Handle(ctx, ev)
		if cloudWatch != nil {
			if ferr := cloudWatch.Flush(ctx); ferr != nil {
				logger.WithError(ferr).Warn("flush cloudwatch metrics failed")
			}
		}
		return resp, err
	}

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if cfg.RunLocal {
		body := cfg.LocalSQSBody
		if body == "" {
			body = localSQSBody
		}
		resp, err := handle(ctx, events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		})
		if err != nil || len(resp.BatchItemFailures) > 0 {
			logger.WithError(err).Fatal("local handler error")
		}
		return
	}

	lambda.Start(handle)
}
