package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine matches name{...labels...} value, tolerating the scope labels
// the exporter adds.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	assert.Regexp(t, name+`\{[^}]*`+labels+`[^}]*\} `+value, output)
}

func newTestBusinessMetrics(t *testing.T, namespace string) (*Provider, BusinessMetrics) {
	t.Helper()
	provider, err := NewProvider(namespace)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := NewBusinessMetrics(provider.MeterProvider(), namespace)
	require.NoError(t, err)
	return provider, bm
}

func TestBusinessMetrics_Operations(t *testing.T) {
	provider, bm := newTestBusinessMetrics(t, "vault")
	ctx := context.Background()

	bm.RecordOperation(ctx, "assets", "asset_download", StatusSuccess)
	bm.RecordOperation(ctx, "assets", "asset_download", StatusSuccess)
	bm.RecordOperation(ctx, "assets", "asset_download", StatusDenied)
	bm.RecordOperation(ctx, "assets", "asset_ingest", StatusDegraded)
	bm.RecordDuration(ctx, "assets", "asset_download", 40*time.Millisecond, StatusSuccess)
	bm.RecordDuration(ctx, "assets", "asset_download", 60*time.Millisecond, StatusSuccess)

	out := scrape(t, provider)
	assertMetricLine(t, out, `vault_operations_total`,
		`domain="assets".*operation="asset_download".*status="success"`, `2`)
	assertMetricLine(t, out, `vault_operations_total`,
		`operation="asset_download".*status="denied"`, `1`)
	assertMetricLine(t, out, `vault_operations_total`,
		`operation="asset_ingest".*status="degraded"`, `1`)
	assertMetricLine(t, out, `vault_operation_duration_seconds_count`,
		`operation="asset_download".*status="success"`, `2`)
}

func TestBusinessMetrics_RecordAssetBytes(t *testing.T) {
	provider, bm := newTestBusinessMetrics(t, "vault")
	ctx := context.Background()

	bm.RecordAssetBytes(ctx, "asset_ingest", 1024)
	bm.RecordAssetBytes(ctx, "asset_ingest", 1024)
	bm.RecordAssetBytes(ctx, "asset_download", 0)

	out := scrape(t, provider)
	assertMetricLine(t, out, `vault_asset_bytes_total`, `operation="asset_ingest"`, `2048`)
	assert.NotRegexp(t, `vault_asset_bytes_total\{[^}]*operation="asset_download"`, out)
}

func TestBusinessMetrics_RecordOutboxBatch(t *testing.T) {
	provider, bm := newTestBusinessMetrics(t, "vault")
	ctx := context.Background()

	bm.RecordOutboxBatch(ctx, 3, 1, 0)
	bm.RecordOutboxBatch(ctx, 0, 0, 2)

	out := scrape(t, provider)
	assertMetricLine(t, out, `vault_outbox_events_total`, `outcome="processed"`, `3`)
	assertMetricLine(t, out, `vault_outbox_events_total`, `outcome="retried"`, `1`)
	assertMetricLine(t, out, `vault_outbox_events_total`, `outcome="failed"`, `2`)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		bm.RecordOperation(ctx, "assets", "asset_chat", StatusError)
		bm.RecordDuration(ctx, "assets", "asset_chat", time.Second, StatusError)
		bm.RecordAssetBytes(ctx, "asset_download", 10)
		bm.RecordOutboxBatch(ctx, 1, 1, 1)
	})
}
