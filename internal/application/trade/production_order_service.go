// Package trade provides the data-entry side of order records feeding the
// P&L engine.
package trade

import (
	"context"

	"github.com/erp/garment/internal/domain/trade"
	"github.com/erp/garment/internal/infrastructure/logger"
	"github.com/erp/garment/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PeriodInvalidator drops cached period reports of a tenant
type PeriodInvalidator interface {
	InvalidatePeriods(ctx context.Context, tenantID uuid.UUID) error
}

// ProductionOrderService handles production order registration
type ProductionOrderService struct {
	orderRepo      trade.PurchaseOrderRepository
	productionRepo trade.ProductionOrderRepository
	invalidator    PeriodInvalidator
	log            *zap.Logger
}

// NewProductionOrderService creates a new ProductionOrderService
func NewProductionOrderService(orderRepo trade.PurchaseOrderRepository, productionRepo trade.ProductionOrderRepository, log *zap.Logger) *ProductionOrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductionOrderService{
		orderRepo:      orderRepo,
		productionRepo: productionRepo,
		log:            log.Named("production"),
	}
}

// SetPeriodInvalidator sets the cache that must forget stale period reports
func (s *ProductionOrderService) SetPeriodInvalidator(inv PeriodInvalidator) {
	s.invalidator = inv
}

// Register links a production order to its purchase order line and saves it.
// A style/color that matches several lines is rejected unless the line is
// given explicitly.
func (s *ProductionOrderService) Register(ctx context.Context, tenantID uuid.UUID, req RegisterProductionOrderRequest) (*ProductionOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "production", "register",
		attribute.String(telemetry.SpanAttrPOID, req.POID.String()))
	defer span.End()

	po, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, req.POID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	prod, err := trade.NewProductionOrder(tenantID, po, req.toInput())
	if err != nil {
		logger.Enrich(ctx, s.log).Debug("Production order rejected",
			zap.String("po_number", po.PONumber),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.productionRepo.Save(ctx, prod); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.invalidator != nil {
		if err := s.invalidator.InvalidatePeriods(ctx, tenantID); err != nil {
			logger.Enrich(ctx, s.log).Warn("Failed to invalidate period P&L cache", zap.Error(err))
		}
	}

	logger.Enrich(ctx, s.log).Info("Production order registered",
		zap.String("production_order_id", prod.ID.String()),
		zap.String("po_number", po.PONumber),
		zap.Bool("shared", prod.POLineItemID == nil),
	)
	resp := ToProductionOrderResponse(prod, po)
	return &resp, nil
}
