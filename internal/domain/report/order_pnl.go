package report

import (
	"sort"
	"time"

	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/erp/garment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderInputs is the snapshot of records feeding one order's P&L
type OrderInputs struct {
	Order      *trade.PurchaseOrder
	Costs      []*trade.OrderCost
	Production []*trade.ProductionOrder
	Invoices   []*trade.CustomerInvoice // any status; non-qualifying ones are ignored
}

// CostSummary aggregates order costs of one category
type CostSummary struct {
	Category  trade.CostCategory
	Count     int
	Amount    decimal.Decimal
	VATGross  decimal.Decimal
	VATRefund decimal.Decimal
}

// OrderPnL is the profit and loss of one purchase order in base currency.
// Actual-branch fields are nil unless a qualifying invoice exists.
type OrderPnL struct {
	POID          uuid.UUID
	PONumber      string
	CustomerName  string
	Currency      valueobject.Currency
	ExchangeRate  decimal.Decimal
	ShippingTerms trade.Incoterm
	Status        trade.PurchaseOrderStatus
	AnchorDate    *time.Time
	TotalQuantity decimal.Decimal

	IsActual     bool
	InvoiceCount int
	EstRevenue   decimal.Decimal
	ActRevenue   *decimal.Decimal

	OrderCostTotal      decimal.Decimal
	ProductionCostTotal decimal.Decimal
	VATRefund           decimal.Decimal
	TotalCosts          decimal.Decimal
	NetCosts            decimal.Decimal

	EstProfit       decimal.Decimal
	EstMargin       decimal.Decimal
	ActProfit       *decimal.Decimal
	ActMargin       *decimal.Decimal
	RevenueVariance *decimal.Decimal

	CostSummary []CostSummary

	Costs              []*trade.OrderCost
	ProductionOrders   []*trade.ProductionOrder
	QualifyingInvoices []*trade.CustomerInvoice
}

// BestAvailableRevenue returns invoiced revenue when actual, else the estimate
func (p *OrderPnL) BestAvailableRevenue() decimal.Decimal {
	if p.ActRevenue != nil {
		return *p.ActRevenue
	}
	return p.EstRevenue
}

// AggregateOrder merges direct costs, production invoices and VAT refunds
// against estimated and invoiced revenue. It fails only when the order has no
// usable exchange rate.
func AggregateOrder(in OrderInputs) (*OrderPnL, error) {
	po := in.Order
	rate, err := po.Rate()
	if err != nil {
		return nil, err
	}

	out := &OrderPnL{
		POID:             po.ID,
		PONumber:         po.PONumber,
		CustomerName:     po.CustomerName,
		Currency:         po.Currency,
		ExchangeRate:     rate,
		ShippingTerms:    po.ShippingTerms,
		Status:           po.Status,
		AnchorDate:       po.AnchorDate(),
		TotalQuantity:    po.TotalQuantity(),
		Costs:            in.Costs,
		ProductionOrders: in.Production,
	}

	for _, c := range in.Costs {
		out.OrderCostTotal = out.OrderCostTotal.Add(c.TotalCostBase)
	}
	out.CostSummary = summarizeCosts(in.Costs)

	for _, p := range in.Production {
		out.ProductionCostTotal = out.ProductionCostTotal.Add(p.ProdInvoiceTotal)
		out.VATRefund = out.VATRefund.Add(p.VATRefund())
	}
	out.TotalCosts = out.OrderCostTotal.Add(out.ProductionCostTotal)
	out.NetCosts = out.TotalCosts.Sub(out.VATRefund)

	out.EstRevenue = po.TotalAmount.Mul(rate)
	out.EstProfit, out.EstMargin = ProfitAndMargin(out.EstRevenue, out.NetCosts)

	out.QualifyingInvoices = trade.FilterQualifying(in.Invoices)
	out.InvoiceCount = len(out.QualifyingInvoices)
	out.IsActual = out.InvoiceCount > 0
	if out.IsActual {
		invoiced := decimal.Zero
		for _, inv := range out.QualifyingInvoices {
			invoiced = invoiced.Add(inv.TotalAmount)
		}
		act := invoiced.Mul(rate)
		profit, margin := ProfitAndMargin(act, out.NetCosts)
		out.ActRevenue = &act
		out.ActProfit = &profit
		out.ActMargin = &margin
		out.RevenueVariance = ptr(act.Sub(out.EstRevenue))
	}
	return out, nil
}

func summarizeCosts(costs []*trade.OrderCost) []CostSummary {
	byCategory := make(map[trade.CostCategory]*CostSummary)
	for _, c := range costs {
		s, ok := byCategory[c.Category]
		if !ok {
			s = &CostSummary{Category: c.Category}
			byCategory[c.Category] = s
		}
		s.Count++
		s.Amount = s.Amount.Add(c.TotalCostBase)
		s.VATGross = s.VATGross.Add(valueobject.OrZero(c.VATGrossAmount))
		s.VATRefund = s.VATRefund.Add(valueobject.OrZero(c.VATRefundAmount))
	}
	out := make([]CostSummary, 0, len(byCategory))
	for _, s := range byCategory {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Category < out[j].Category
	})
	return out
}
