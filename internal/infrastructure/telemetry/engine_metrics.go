package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when metrics are built without a meter.
var ErrMeterNil = errors.New("NewEngineMetrics: meter cannot be nil")

// ReportKind labels which P&L computation ran.
type ReportKind string

const (
	ReportOrder  ReportKind = "order"
	ReportColor  ReportKind = "color"
	ReportPeriod ReportKind = "period"
)

// Metric attribute keys.
var (
	AttrTenantID    = attribute.Key("tenant_id")
	AttrReport      = attribute.Key("report")
	AttrCacheResult = attribute.Key("cache_result")
)

// ComputeDurationBuckets are boundaries for report computation time (seconds).
var ComputeDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// EngineMetrics counts P&L runs and costing versions.
// A nil *EngineMetrics records nothing.
type EngineMetrics struct {
	logger *zap.Logger

	pnlComputed     metric.Int64Counter
	versionCreated  metric.Int64Counter
	periodCache     metric.Int64Counter
	computeDuration metric.Float64Histogram
}

// NewEngineMetrics registers the financial engine instruments on meter.
func NewEngineMetrics(meter metric.Meter, logger *zap.Logger) (*EngineMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &EngineMetrics{logger: logger}

	var err error
	if m.pnlComputed, err = meter.Int64Counter("erp_pnl_computed_total",
		metric.WithDescription("Total number of P&L computations"),
		metric.WithUnit("{reports}")); err != nil {
		return nil, fmt.Errorf("failed to create counter erp_pnl_computed_total: %w", err)
	}
	if m.versionCreated, err = meter.Int64Counter("erp_costing_version_created_total",
		metric.WithDescription("Total number of costing sheet versions created"),
		metric.WithUnit("{versions}")); err != nil {
		return nil, fmt.Errorf("failed to create counter erp_costing_version_created_total: %w", err)
	}
	if m.periodCache, err = meter.Int64Counter("erp_pnl_period_cache_total",
		metric.WithDescription("Period P&L cache lookups by result"),
		metric.WithUnit("{lookups}")); err != nil {
		return nil, fmt.Errorf("failed to create counter erp_pnl_period_cache_total: %w", err)
	}
	if m.computeDuration, err = meter.Float64Histogram("erp_pnl_compute_duration_seconds",
		metric.WithDescription("Time spent computing P&L reports"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(ComputeDurationBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create histogram erp_pnl_compute_duration_seconds: %w", err)
	}
	return m, nil
}

// RecordPnLComputed records one P&L computation and its duration.
func (m *EngineMetrics) RecordPnLComputed(ctx context.Context, tenantID uuid.UUID, kind ReportKind, elapsed time.Duration) {
	if m == nil {
		return
	}
	report := AttrReport.String(string(kind))
	m.pnlComputed.Add(ctx, 1, metric.WithAttributes(AttrTenantID.String(tenantID.String()), report))
	m.computeDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(report))
}

// RecordVersionCreated records a new costing sheet version.
func (m *EngineMetrics) RecordVersionCreated(ctx context.Context, tenantID uuid.UUID) {
	if m == nil {
		return
	}
	m.versionCreated.Add(ctx, 1, metric.WithAttributes(AttrTenantID.String(tenantID.String())))
}

// RecordPeriodCache records a period cache hit or miss.
func (m *EngineMetrics) RecordPeriodCache(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.periodCache.Add(ctx, 1, metric.WithAttributes(AttrCacheResult.String(result)))
}
