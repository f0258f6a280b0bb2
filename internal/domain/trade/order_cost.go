package trade

import (
	"strings"
	"time"

	"github.com/erp/garment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostCategory classifies an order cost. Values outside the known set are kept.
type CostCategory string

const (
	CostCategoryFabric     CostCategory = "FABRIC"
	CostCategoryTrim       CostCategory = "TRIM"
	CostCategoryFreight    CostCategory = "FREIGHT"
	CostCategoryDuty       CostCategory = "DUTY"
	CostCategoryTesting    CostCategory = "TESTING"
	CostCategoryCommission CostCategory = "COMMISSION"
	CostCategoryOther      CostCategory = "OTHER"
)

// NormalizeCostCategory upper-cases a category, defaulting blanks to OTHER
func NormalizeCostCategory(v string) CostCategory {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return CostCategoryOther
	}
	return CostCategory(v)
}

// OrderCost is a cost booked against an order, already in base currency
type OrderCost struct {
	shared.TenantEntity
	POID            uuid.UUID
	POLineItemID    *uuid.UUID // nil means shared across the order
	Category        CostCategory
	Description     string
	TotalCostBase   decimal.Decimal
	VATGrossAmount  *decimal.Decimal
	VATRefundAmount *decimal.Decimal
	Notes           string
	IncurredAt      *time.Time
}

// NewOrderCost creates a cost record
func NewOrderCost(tenantID, poID uuid.UUID, category string, totalCostBase decimal.Decimal) (*OrderCost, error) {
	if poID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PO", "PO ID cannot be empty")
	}
	return &OrderCost{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		POID:          poID,
		Category:      NormalizeCostCategory(category),
		TotalCostBase: totalCostBase,
	}, nil
}

// IsShared reports whether the cost is not tied to a line item
func (c *OrderCost) IsShared() bool {
	return c.POLineItemID == nil
}

// SetVATBreakdown records the gross amount and refunded VAT of the cost
func (c *OrderCost) SetVATBreakdown(gross, refund decimal.Decimal) error {
	if gross.IsNegative() || refund.IsNegative() {
		return shared.NewDomainError("INVALID_VAT_BREAKDOWN", "VAT amounts cannot be negative")
	}
	c.VATGrossAmount = &gross
	c.VATRefundAmount = &refund
	c.Touch()
	return nil
}
