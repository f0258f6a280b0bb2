package trade

import (
	"strings"

	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionOrder is a factory production run billed against an order line
type ProductionOrder struct {
	shared.TenantEntity
	POID             uuid.UUID
	POLineItemID     *uuid.UUID
	ProductionNo     string
	StyleNo          string
	Color            string
	FactoryName      string
	Quantity         decimal.Decimal
	ProdInvoiceTotal decimal.Decimal // gross, base currency
	VATRefundRate    decimal.Decimal // percent, per factory
}

// ProductionOrderInput holds the registration fields of a production order
type ProductionOrderInput struct {
	POLineItemID     *uuid.UUID
	ProductionNo     string
	StyleNo          string
	Color            string
	FactoryName      string
	Quantity         decimal.Decimal
	ProdInvoiceTotal decimal.Decimal
	VATRefundRate    decimal.Decimal
}

// NewProductionOrder registers a production order against po. The order line
// is resolved from the explicit line ID or from a unique style/color match;
// a style/color that matches several lines must be linked explicitly.
func NewProductionOrder(tenantID uuid.UUID, po *PurchaseOrder, in ProductionOrderInput) (*ProductionOrder, error) {
	if po == nil {
		return nil, shared.ErrNotFound
	}
	if in.ProdInvoiceTotal.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TOTAL", "Production invoice total cannot be negative")
	}
	if in.VATRefundRate.IsNegative() || in.VATRefundRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_VAT_RATE", "VAT refund rate must be between 0 and 100")
	}

	prod := &ProductionOrder{
		TenantEntity:     shared.NewTenantEntity(tenantID),
		POID:             po.ID,
		ProductionNo:     strings.TrimSpace(in.ProductionNo),
		StyleNo:          strings.TrimSpace(in.StyleNo),
		Color:            strings.TrimSpace(in.Color),
		FactoryName:      strings.TrimSpace(in.FactoryName),
		Quantity:         in.Quantity,
		ProdInvoiceTotal: in.ProdInvoiceTotal,
		VATRefundRate:    in.VATRefundRate,
	}

	if in.POLineItemID != nil {
		line := po.FindLineItem(*in.POLineItemID)
		if line == nil {
			return nil, shared.NewDomainError("INVALID_LINE_ITEM", "Line item does not belong to PO "+po.PONumber)
		}
		id := line.ID
		prod.POLineItemID = &id
		if prod.StyleNo == "" {
			prod.StyleNo = line.StyleNo
		}
		if prod.Color == "" {
			prod.Color = line.Color
		}
		return prod, nil
	}

	matches := po.LinesMatching(prod.StyleNo, prod.Color)
	switch len(matches) {
	case 0:
		// Kept unlinked; its cost is shared across the order.
	case 1:
		id := matches[0].ID
		prod.POLineItemID = &id
	default:
		return nil, shared.NewDomainError(shared.ErrAmbiguousLineMatch.Code,
			"Style "+prod.StyleNo+" / "+prod.Color+" matches several lines of PO "+po.PONumber+"; link a line item explicitly")
	}
	return prod, nil
}

// VATRefund returns prodInvoiceTotal * vatRefundRate/100
func (p *ProductionOrder) VATRefund() decimal.Decimal {
	return valueobject.PercentOf(p.ProdInvoiceTotal, p.VATRefundRate)
}

// NetCost returns the production cost after the factory's VAT refund
func (p *ProductionOrder) NetCost() decimal.Decimal {
	return p.ProdInvoiceTotal.Sub(p.VATRefund())
}

// LineMatch is the outcome of resolving a production order to an order line
type LineMatch struct {
	Line      *PurchaseOrderLineItem
	Ambiguous bool // several lines share the style/color and the first was taken
}

// ResolveLine finds the order line this production order belongs to. An
// explicit line ID wins; otherwise the first style/color match is taken.
func (p *ProductionOrder) ResolveLine(po *PurchaseOrder) LineMatch {
	if p.POLineItemID != nil {
		if line := po.FindLineItem(*p.POLineItemID); line != nil {
			return LineMatch{Line: line}
		}
	}
	matches := po.LinesMatching(p.StyleNo, p.Color)
	if len(matches) == 0 {
		return LineMatch{}
	}
	return LineMatch{Line: matches[0], Ambiguous: len(matches) > 1}
}
