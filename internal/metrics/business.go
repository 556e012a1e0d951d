package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status values shared by the recorders.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusDenied   = "denied"
	StatusDegraded = "degraded"
)

// BusinessMetrics records vault operations. Domain is "assets" or "outbox";
// operation names the pipeline step, e.g. "asset_ingest" or "upload_retry".
type BusinessMetrics interface {
	RecordOperation(ctx context.Context, domain, operation, status string)
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordAssetBytes adds n plaintext bytes moved by operation.
	RecordAssetBytes(ctx context.Context, operation string, n int64)

	// RecordOutboxBatch records how one worker pass settled its events.
	RecordOutboxBatch(ctx context.Context, processed, retried, failed int)
}

type businessMetrics struct {
	operations  metric.Int64Counter
	durations   metric.Float64Histogram
	assetBytes  metric.Int64Counter
	outboxItems metric.Int64Counter
}

// NewBusinessMetrics creates the OpenTelemetry instruments, prefixed with namespace.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)
	b := &businessMetrics{}

	var err error
	if b.operations, err = meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of vault operations"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	if b.durations, err = meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of vault operations in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	if b.assetBytes, err = meter.Int64Counter(
		fmt.Sprintf("%s_asset_bytes_total", namespace),
		metric.WithDescription("Plaintext asset bytes ingested or served"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create asset bytes counter: %w", err)
	}

	if b.outboxItems, err = meter.Int64Counter(
		fmt.Sprintf("%s_outbox_events_total", namespace),
		metric.WithDescription("Upload retry events settled by the outbox worker"),
		metric.WithUnit("{event}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create outbox event counter: %w", err)
	}

	return b, nil
}

func operationAttrs(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordAssetBytes(ctx context.Context, operation string, n int64) {
	if n <= 0 {
		return
	}
	b.assetBytes.Add(ctx, n, metric.WithAttributes(attribute.String("operation", operation)))
}

func (b *businessMetrics) RecordOutboxBatch(ctx context.Context, processed, retried, failed int) {
	for outcome, n := range map[string]int{"processed": processed, "retried": retried, "failed": failed} {
		if n > 0 {
			b.outboxItems.Add(ctx, int64(n), metric.WithAttributes(attribute.String("outcome", outcome)))
		}
	}
}

// NoOpBusinessMetrics discards everything. It is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (n *NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}

func (n *NoOpBusinessMetrics) RecordAssetBytes(context.Context, string, int64) {}

func (n *NoOpBusinessMetrics) RecordOutboxBatch(context.Context, int, int, int) {}
