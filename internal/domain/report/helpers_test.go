package report

import (
	"testing"
	"time"

	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/erp/garment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, dd int) *time.Time {
	t := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return &t
}

func newOrder(t *testing.T, number string, rate string) *trade.PurchaseOrder {
	t.Helper()
	po, err := trade.NewPurchaseOrder(uuid.New(), number, "Acme Apparel", valueobject.USD, d(rate))
	require.NoError(t, err)
	po.Status = trade.PurchaseOrderStatusConfirmed
	return po
}

func addLine(t *testing.T, po *trade.PurchaseOrder, style, color, qty, price string) *trade.PurchaseOrderLineItem {
	t.Helper()
	item, err := po.AddLineItem(style, color, d(qty), d(price))
	require.NoError(t, err)
	return item
}

func cost(po *trade.PurchaseOrder, category trade.CostCategory, amount string, lineID *uuid.UUID) *trade.OrderCost {
	return &trade.OrderCost{POID: po.ID, POLineItemID: lineID, Category: category, TotalCostBase: d(amount)}
}

func production(po *trade.PurchaseOrder, style, color, total, vat string) *trade.ProductionOrder {
	p := &trade.ProductionOrder{POID: po.ID, StyleNo: style, Color: color, ProdInvoiceTotal: d(total), VATRefundRate: d(vat)}
	p.ID = uuid.New()
	return p
}

func invoice(po *trade.PurchaseOrder, status trade.InvoiceStatus, total string, lines ...trade.InvoiceLineItem) *trade.CustomerInvoice {
	return &trade.CustomerInvoice{POID: po.ID, Status: status, TotalAmount: d(total), LineItems: lines}
}

func idPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
