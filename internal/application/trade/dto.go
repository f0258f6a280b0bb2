package trade

import (
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/erp/garment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterProductionOrderRequest represents a request to register a factory
// production run against a purchase order
type RegisterProductionOrderRequest struct {
	POID             uuid.UUID                 `json:"po_id" binding:"required"`
	POLineItemID     *uuid.UUID                `json:"po_line_item_id"`
	ProductionNo     string                    `json:"production_no" binding:"max=50"`
	StyleNo          string                    `json:"style_no" binding:"max=50"`
	Color            string                    `json:"color" binding:"max=50"`
	FactoryName      string                    `json:"factory_name" binding:"max=200"`
	Quantity         valueobject.LenientNumber `json:"quantity"`
	ProdInvoiceTotal valueobject.LenientNumber `json:"prod_invoice_total"`
	VATRefundRate    valueobject.LenientNumber `json:"vat_refund_rate"`
}

func (r RegisterProductionOrderRequest) toInput() trade.ProductionOrderInput {
	return trade.ProductionOrderInput{
		POLineItemID:     r.POLineItemID,
		ProductionNo:     r.ProductionNo,
		StyleNo:          r.StyleNo,
		Color:            r.Color,
		FactoryName:      r.FactoryName,
		Quantity:         r.Quantity.Decimal(),
		ProdInvoiceTotal: r.ProdInvoiceTotal.Decimal(),
		VATRefundRate:    r.VATRefundRate.Decimal(),
	}
}

// ProductionOrderResponse represents a registered production order
type ProductionOrderResponse struct {
	ID               uuid.UUID       `json:"id"`
	POID             uuid.UUID       `json:"po_id"`
	PONumber         string          `json:"po_number"`
	POLineItemID     *uuid.UUID      `json:"po_line_item_id"`
	ProductionNo     string          `json:"production_no"`
	StyleNo          string          `json:"style_no"`
	Color            string          `json:"color"`
	FactoryName      string          `json:"factory_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	ProdInvoiceTotal decimal.Decimal `json:"prod_invoice_total"`
	VATRefundRate    decimal.Decimal `json:"vat_refund_rate"`
	VATRefund        decimal.Decimal `json:"vat_refund"`
	NetCost          decimal.Decimal `json:"net_cost"`
	IsShared         bool            `json:"is_shared"`
}

// ToProductionOrderResponse converts a production order to its response
func ToProductionOrderResponse(p *trade.ProductionOrder, po *trade.PurchaseOrder) ProductionOrderResponse {
	return ProductionOrderResponse{
		ID:               p.ID,
		POID:             p.POID,
		PONumber:         po.PONumber,
		POLineItemID:     p.POLineItemID,
		ProductionNo:     p.ProductionNo,
		StyleNo:          p.StyleNo,
		Color:            p.Color,
		FactoryName:      p.FactoryName,
		Quantity:         p.Quantity,
		ProdInvoiceTotal: valueobject.RoundMoney(p.ProdInvoiceTotal),
		VATRefundRate:    p.VATRefundRate,
		VATRefund:        valueobject.RoundMoney(p.VATRefund()),
		NetCost:          valueobject.RoundMoney(p.NetCost()),
		IsShared:         p.POLineItemID == nil,
	}
}
