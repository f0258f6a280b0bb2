package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/erp/garment/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestNewEngineMetrics(t *testing.T) {
	m, err := telemetry.NewEngineMetrics(noop.NewMeterProvider().Meter("test"), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestNewEngineMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewEngineMetrics(nil, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Equal(t, "NewEngineMetrics: meter cannot be nil", err.Error())
}

func TestEngineMetrics_NilReceiver(t *testing.T) {
	var m *telemetry.EngineMetrics
	ctx := context.Background()

	// Should not panic
	m.RecordPnLComputed(ctx, uuid.New(), telemetry.ReportOrder, time.Millisecond)
	m.RecordVersionCreated(ctx, uuid.New())
	m.RecordPeriodCache(ctx, true)
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestEngineMetrics_Counters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewEngineMetrics(provider.Meter("test"), nil)
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	m.RecordPnLComputed(ctx, tenantID, telemetry.ReportOrder, 3*time.Millisecond)
	m.RecordPnLComputed(ctx, tenantID, telemetry.ReportPeriod, 40*time.Millisecond)
	m.RecordVersionCreated(ctx, tenantID)
	m.RecordPeriodCache(ctx, false)
	m.RecordPeriodCache(ctx, true)
	m.RecordPeriodCache(ctx, true)

	assert.Equal(t, int64(2), counterValue(t, reader, "erp_pnl_computed_total"))
	assert.Equal(t, int64(1), counterValue(t, reader, "erp_costing_version_created_total"))
	assert.Equal(t, int64(3), counterValue(t, reader, "erp_pnl_period_cache_total"))
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.TracingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestStartServiceSpan(t *testing.T) {
	ctx, span := telemetry.StartServiceSpan(context.Background(), "pnl", "order")
	defer span.End()

	assert.NotNil(t, ctx)
	telemetry.RecordError(span, assert.AnError)
	telemetry.RecordError(nil, assert.AnError)
	assert.Equal(t, "", telemetry.GetTraceID(context.Background()))
}
