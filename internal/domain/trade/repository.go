package trade

import (
	"context"

	"github.com/google/uuid"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByIDForTenant returns shared.ErrNotFound when the order does not exist
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindActiveForTenant returns every order that is not cancelled
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]*PurchaseOrder, error)

	// Save creates or updates an order and its line items
	Save(ctx context.Context, po *PurchaseOrder) error
}

// OrderCostRepository defines the interface for order cost persistence
type OrderCostRepository interface {
	FindByPO(ctx context.Context, tenantID, poID uuid.UUID) ([]*OrderCost, error)

	// FindByPOs loads the costs of many orders
	FindByPOs(ctx context.Context, tenantID uuid.UUID, poIDs []uuid.UUID) ([]*OrderCost, error)

	Save(ctx context.Context, cost *OrderCost) error
}

// ProductionOrderRepository defines the interface for production order persistence
type ProductionOrderRepository interface {
	FindByPO(ctx context.Context, tenantID, poID uuid.UUID) ([]*ProductionOrder, error)

	// FindByPOs loads the production orders of many orders
	FindByPOs(ctx context.Context, tenantID uuid.UUID, poIDs []uuid.UUID) ([]*ProductionOrder, error)

	Save(ctx context.Context, prod *ProductionOrder) error
}

// CustomerInvoiceRepository defines the interface for customer invoice persistence
type CustomerInvoiceRepository interface {
	FindByPO(ctx context.Context, tenantID, poID uuid.UUID) ([]*CustomerInvoice, error)

	// FindByPOs loads the invoices of many orders
	FindByPOs(ctx context.Context, tenantID uuid.UUID, poIDs []uuid.UUID) ([]*CustomerInvoice, error)

	Save(ctx context.Context, invoice *CustomerInvoice) error
}
