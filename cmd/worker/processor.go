package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/ordering-bff/internal/content"
)

// ProductMirror is the part of the store service the worker drives.
type ProductMirror interface {
	UpdateProduct(ctx context.Context, id string) (*content.CommitResult, error)
	DeleteProduct(ctx context.Context, id string) (*content.CommitResult, error)
}

var errMalformedMessage = errors.New("malformed webhook message")

// Processor applies queued product webhooks to the content store mirror.
type Processor struct {
	mirror ProductMirror
	logger logrus.FieldLogger
}

// NewProcessor creates a new worker processor.
func NewProcessor(mirror ProductMirror, logger logrus.FieldLogger) *Processor {
	return &Processor{mirror: mirror, logger: logger}
}

// Handle processes an SQS batch and reports the messages that failed so
// only those are redelivered (and eventually moved to the DLQ).
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.logger.WithError(err).WithField("message_id", rec.MessageId).Error("product sync failed")
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	msg, ok := parseWebhookMessage(rec.Body)
	if !ok {
		return errMalformedMessage
	}
	log := p.logger.WithFields(logrus.Fields{
		"message_id": rec.MessageId,
		"event_type": msg.Type,
		"product_id": msg.ProductID,
	})

	var (
		result *content.CommitResult
		err    error
	)
	switch msg.Type {
	case eventProductCreated, eventProductUpdated:
		if msg.ProductID == "" {
			return fmt.Errorf("%w: no product id", errMalformedMessage)
		}
		result, err = p.mirror.UpdateProduct(ctx, msg.ProductID)
	case eventProductDeleted:
		if msg.ProductID == "" {
			return fmt.Errorf("%w: no product id", errMalformedMessage)
		}
		result, err = p.mirror.DeleteProduct(ctx, msg.ProductID)
	default:
		log.Debug("ignoring event")
		return nil
	}
	if err != nil {
		return err
	}

	log.WithField("transaction_id", result.TransactionID).Info("product mirror synced")
	return nil
}
