package aws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/smithy-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/ordering-bff/internal/metrics"
)

// maxDatumsPerCall caps one PutMetricData request.
const maxDatumsPerCall = 1000

// MetricsRecorder buffers upstream observations and ships them to CloudWatch
// on Flush. It implements metrics.Recorder.
type MetricsRecorder struct {
	client    CloudWatchAPI
	namespace string
	nowFunc   func() time.Time

	mu     sync.Mutex
	datums []cwtypes.MetricDatum
}

func NewMetricsRecorder(client CloudWatchAPI, namespace string) *MetricsRecorder {
	return &MetricsRecorder{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

func (r *MetricsRecorder) ObserveUpstream(system, method string, status int, elapsed time.Duration) {
	now := sdkaws.Time(r.nowFunc())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datums = append(r.datums,
		cwtypes.MetricDatum{
			MetricName: awsString("UpstreamRequests"),
			Dimensions: []cwtypes.Dimension{
				{Name: awsString("System"), Value: awsString(system)},
				{Name: awsString("Method"), Value: awsString(method)},
				{Name: awsString("Outcome"), Value: awsString(metrics.Outcome(status))},
			},
			Unit:      cwtypes.StandardUnitCount,
			Value:     sdkaws.Float64(1),
			Timestamp: now,
		},
		cwtypes.MetricDatum{
			MetricName: awsString("UpstreamLatency"),
			Dimensions: []cwtypes.Dimension{
				{Name: awsString("System"), Value: awsString(system)},
			},
			Unit:      cwtypes.StandardUnitMilliseconds,
			Value:     sdkaws.Float64(float64(elapsed) / float64(time.Millisecond)),
			Timestamp: now,
		},
	)
}

// Flush sends every buffered datum. Datums of a failed call are dropped.
func (r *MetricsRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	pending := r.datums
	r.datums = nil
	r.mu.Unlock()

	for len(pending) > 0 {
		n := len(pending)
		if n > maxDatumsPerCall {
			n = maxDatumsPerCall
		}
		_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  &r.namespace,
			MetricData: pending[:n],
		})
		if err != nil {
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				return fmt.Errorf("put metric data (%s): %w", apiErr.ErrorCode(), err)
			}
			return fmt.Errorf("put metric data: %w", err)
		}
		pending = pending[n:]
	}
	return nil
}

// FlushMiddleware flushes after each request, before a Lambda invocation is
// frozen.
func (r *MetricsRecorder) FlushMiddleware(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if err := r.Flush(c.Request.Context()); err != nil {
			logger.WithError(err).Warn("flush cloudwatch metrics failed")
		}
	}
}
