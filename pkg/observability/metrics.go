package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// MetricsClient is the part of the CloudWatch client Metrics uses
type MetricsClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics handles application metrics. A nil client turns every call into
// a no-op.
type Metrics struct {
	namespace string
	client    MetricsClient
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client MetricsClient, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordCommandExecution records latency and count of a command or query
func (m *Metrics) RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error) {
	if m == nil || m.client == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	dims := []types.Dimension{
		{Name: aws.String("CommandName"), Value: aws.String(commandName)},
		{Name: aws.String("Status"), Value: aws.String(status)},
	}

	m.put(ctx,
		types.MetricDatum{
			MetricName: aws.String("CommandExecution"),
			Dimensions: dims,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  aws.Time(time.Now()),
		},
		types.MetricDatum{
			MetricName: aws.String("CommandCount"),
			Dimensions: dims,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(time.Now()),
		},
	)
}

// RecordLatency records latency for any operation
func (m *Metrics) RecordLatency(ctx context.Context, operation string, latency time.Duration) {
	if m == nil || m.client == nil {
		return
	}

	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("OperationLatency"),
		Dimensions: []types.Dimension{
			{Name: aws.String("Operation"), Value: aws.String(operation)},
		},
		Value:     aws.Float64(float64(latency.Milliseconds())),
		Unit:      types.StandardUnitMilliseconds,
		Timestamp: aws.Time(time.Now()),
	})
}

// RecordCount records a business counter such as GraphNodesCreated
func (m *Metrics) RecordCount(ctx context.Context, metricName string, value int, dimensions map[string]string) {
	if m == nil || m.client == nil || value == 0 {
		return
	}

	dims := make([]types.Dimension, 0, len(dimensions))
	for k, v := range dimensions {
		dims = append(dims, types.Dimension{Name: aws.String(k), Value: aws.String(v)})
	}

	m.put(ctx, types.MetricDatum{
		MetricName: aws.String(metricName),
		Dimensions: dims,
		Value:      aws.Float64(float64(value)),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
	})
}

func (m *Metrics) put(ctx context.Context, data ...types.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		// metrics never fail the operation
		m.logger.Warn("Failed to send metrics", zap.Error(err), zap.String("namespace", m.namespace))
	}
}
