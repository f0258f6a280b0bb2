// Package report provides the P&L application service: order, color and
// period reports over purchase orders, costs, production and invoices.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/garment/internal/domain/report"
	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/erp/garment/internal/domain/trade"
	"github.com/erp/garment/internal/infrastructure/export"
	"github.com/erp/garment/internal/infrastructure/logger"
	"github.com/erp/garment/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PeriodCache stores serialized period reports
type PeriodCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Repositories groups the record sources of the P&L engine
type Repositories struct {
	Orders     trade.PurchaseOrderRepository
	Costs      trade.OrderCostRepository
	Production trade.ProductionOrderRepository
	Invoices   trade.CustomerInvoiceRepository
}

// Settings holds the reporting defaults
type Settings struct {
	BaseCurrency       valueobject.Currency
	DefaultGranularity report.Granularity
	CacheTTL           time.Duration
}

// PnLService computes order, color and period P&L reports
type PnLService struct {
	repos    Repositories
	settings Settings
	cache    PeriodCache
	log      *zap.Logger
	metrics  *telemetry.EngineMetrics
	now      func() time.Time
}

// NewPnLService creates a new PnLService
func NewPnLService(repos Repositories, settings Settings, log *zap.Logger) *PnLService {
	if log == nil {
		log = zap.NewNop()
	}
	if settings.BaseCurrency == "" {
		settings.BaseCurrency = valueobject.DefaultBaseCurrency
	}
	if settings.DefaultGranularity == "" {
		settings.DefaultGranularity = report.GranularityMonthly
	}
	return &PnLService{
		repos:    repos,
		settings: settings,
		log:      log.Named("pnl"),
		now:      time.Now,
	}
}

// SetPeriodCache enables cache-aside for period reports
func (s *PnLService) SetPeriodCache(cache PeriodCache) {
	s.cache = cache
}

// SetEngineMetrics sets the metrics collector
func (s *PnLService) SetEngineMetrics(m *telemetry.EngineMetrics) {
	s.metrics = m
}

// GetOrderPnL returns the P&L of one order, or nil when the order does not exist
func (s *PnLService) GetOrderPnL(ctx context.Context, tenantID, poID uuid.UUID) (*OrderPnLResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pnl", "order",
		attribute.String(telemetry.SpanAttrPOID, poID.String()))
	defer span.End()
	start := time.Now()

	in, err := s.loadOrder(ctx, tenantID, poID)
	if err != nil || in == nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	p, err := report.AggregateOrder(*in)
	if err != nil {
		s.warnRate(ctx, in.Order, err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordPnLComputed(ctx, tenantID, telemetry.ReportOrder, time.Since(start))
	resp := ToOrderPnLResponse(p, s.settings.BaseCurrency)
	return &resp, nil
}

// GetColorPnL allocates an order's costs across its style/color lines, or
// returns nil when the order does not exist.
func (s *PnLService) GetColorPnL(ctx context.Context, tenantID, poID uuid.UUID) (*ColorPnLResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pnl", "color",
		attribute.String(telemetry.SpanAttrPOID, poID.String()))
	defer span.End()
	start := time.Now()

	in, err := s.loadOrder(ctx, tenantID, poID)
	if err != nil || in == nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	a, err := report.AllocateColors(*in)
	if err != nil {
		s.warnRate(ctx, in.Order, err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	log := logger.Enrich(ctx, s.log)
	for _, m := range a.AmbiguousProductionOrders {
		log.Warn("Production order matched several order lines, assigned to the first",
			zap.String("po_number", a.PONumber),
			zap.String("production_no", m.ProductionNo),
			zap.String("style_no", m.StyleNo),
			zap.String("color", m.Color),
			zap.Int("candidates", m.CandidateCount),
		)
	}

	s.metrics.RecordPnLComputed(ctx, tenantID, telemetry.ReportColor, time.Since(start))
	resp := ToColorPnLResponse(a, s.settings.BaseCurrency)
	return &resp, nil
}

// GetPeriodPnL buckets the portfolio by anchor period. Results are cached per
// tenant, granularity and window when a cache is configured.
func (s *PnLService) GetPeriodPnL(ctx context.Context, tenantID uuid.UUID, q PeriodQuery) (*PeriodPnLResponse, error) {
	filter, err := s.filterFor(q)
	if err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "pnl", "period",
		attribute.String(telemetry.SpanAttrGranularity, string(filter.Granularity)))
	defer span.End()

	key := PeriodCacheKey(tenantID, filter)
	if cached := s.cachedPeriod(ctx, key); cached != nil {
		return cached, nil
	}

	start := time.Now()
	p, err := s.computePeriod(ctx, tenantID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordPnLComputed(ctx, tenantID, telemetry.ReportPeriod, time.Since(start))

	resp := ToPeriodPnLResponse(p, filter, s.settings.BaseCurrency, s.now().UTC())
	s.storePeriod(ctx, key, &resp)
	return &resp, nil
}

// ExportPeriodPnL renders a freshly computed period report as an xlsx file
func (s *PnLService) ExportPeriodPnL(ctx context.Context, tenantID uuid.UUID, q PeriodQuery) ([]byte, string, error) {
	filter, err := s.filterFor(q)
	if err != nil {
		return nil, "", err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "pnl", "period_export",
		attribute.String(telemetry.SpanAttrGranularity, string(filter.Granularity)))
	defer span.End()

	p, err := s.computePeriod(ctx, tenantID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, "", err
	}
	data, err := export.PeriodWorkbookBytes(p, s.settings.BaseCurrency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, "", err
	}
	return data, export.PeriodFileName(filter.Granularity), nil
}

// InvalidatePeriods drops every cached period report of a tenant
func (s *PnLService) InvalidatePeriods(ctx context.Context, tenantID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeletePrefix(ctx, tenantID.String()+":")
}

// PeriodCacheKey identifies a period report by tenant, granularity and window
func PeriodCacheKey(tenantID uuid.UUID, f report.PeriodFilter) string {
	return strings.Join([]string{
		tenantID.String(),
		string(f.Granularity),
		dateKey(f.Range.Start),
		dateKey(f.Range.End),
	}, ":")
}

func dateKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func (s *PnLService) filterFor(q PeriodQuery) (report.PeriodFilter, error) {
	g := s.settings.DefaultGranularity
	if strings.TrimSpace(q.Granularity) != "" {
		parsed, err := report.ParseGranularity(q.Granularity)
		if err != nil {
			return report.PeriodFilter{}, err
		}
		g = parsed
	}
	if q.StartDate != nil && q.EndDate != nil && q.EndDate.Before(*q.StartDate) {
		return report.PeriodFilter{}, shared.NewDomainError(shared.ErrInvalidInput.Code, "end_date must not be before start_date")
	}
	return report.PeriodFilter{
		Granularity: g,
		Range:       shared.DateRange{Start: q.StartDate, End: q.EndDate},
	}, nil
}

// loadOrder returns nil inputs when the order does not exist
func (s *PnLService) loadOrder(ctx context.Context, tenantID, poID uuid.UUID) (*report.OrderInputs, error) {
	po, err := s.repos.Orders.FindByIDForTenant(ctx, tenantID, poID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	in := &report.OrderInputs{Order: po}
	if in.Costs, err = s.repos.Costs.FindByPO(ctx, tenantID, poID); err != nil {
		return nil, fmt.Errorf("load order costs: %w", err)
	}
	if in.Production, err = s.repos.Production.FindByPO(ctx, tenantID, poID); err != nil {
		return nil, fmt.Errorf("load production orders: %w", err)
	}
	if in.Invoices, err = s.repos.Invoices.FindByPO(ctx, tenantID, poID); err != nil {
		return nil, fmt.Errorf("load customer invoices: %w", err)
	}
	return in, nil
}

// computePeriod loads each record type once for the whole portfolio
func (s *PnLService) computePeriod(ctx context.Context, tenantID uuid.UUID, filter report.PeriodFilter) (*report.PeriodPnL, error) {
	orders, err := s.repos.Orders.FindActiveForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load purchase orders: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(orders))
	for _, po := range orders {
		ids = append(ids, po.ID)
	}

	in := report.PortfolioInputs{Orders: orders}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		costs, err := s.repos.Costs.FindByPOs(gctx, tenantID, ids)
		if err != nil {
			return fmt.Errorf("load order costs: %w", err)
		}
		in.Costs = costs
		return nil
	})
	g.Go(func() error {
		production, err := s.repos.Production.FindByPOs(gctx, tenantID, ids)
		if err != nil {
			return fmt.Errorf("load production orders: %w", err)
		}
		in.Production = production
		return nil
	})
	g.Go(func() error {
		invoices, err := s.repos.Invoices.FindByPOs(gctx, tenantID, ids)
		if err != nil {
			return fmt.Errorf("load customer invoices: %w", err)
		}
		in.Invoices = invoices
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p, err := report.BucketPeriods(in, filter)
	if err != nil {
		if errors.Is(err, shared.ErrMissingExchangeRate) {
			logger.Enrich(ctx, s.log).Warn("Period P&L aborted by order without exchange rate", zap.Error(err))
		}
		return nil, err
	}
	if p.UndatedOrders > 0 {
		logger.Enrich(ctx, s.log).Debug("Orders without anchor date excluded from period P&L",
			zap.Int("count", p.UndatedOrders))
	}
	return p, nil
}

func (s *PnLService) cachedPeriod(ctx context.Context, key string) *PeriodPnLResponse {
	if s.cache == nil {
		return nil
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Enrich(ctx, s.log).Warn("Period P&L cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !ok {
		s.metrics.RecordPeriodCache(ctx, false)
		return nil
	}
	var resp PeriodPnLResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Enrich(ctx, s.log).Warn("Discarding corrupt period P&L cache entry", zap.String("key", key), zap.Error(err))
		return nil
	}
	s.metrics.RecordPeriodCache(ctx, true)
	return &resp
}

func (s *PnLService) storePeriod(ctx context.Context, key string, resp *PeriodPnLResponse) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Enrich(ctx, s.log).Warn("Failed to encode period P&L for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.settings.CacheTTL); err != nil {
		logger.Enrich(ctx, s.log).Warn("Period P&L cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *PnLService) warnRate(ctx context.Context, po *trade.PurchaseOrder, err error) {
	if !errors.Is(err, shared.ErrMissingExchangeRate) {
		return
	}
	logger.Enrich(ctx, s.log).Warn("Order has no usable exchange rate",
		zap.String("po_id", po.ID.String()),
		zap.String("po_number", po.PONumber),
	)
}
