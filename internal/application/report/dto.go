package report

import (
	"time"

	"github.com/erp/garment/internal/domain/report"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/erp/garment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PeriodQuery selects the granularity and optional inclusive anchor window
type PeriodQuery struct {
	Granularity string     `form:"granularity"`
	StartDate   *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate     *time.Time `form:"end_date" time_format:"2006-01-02"`
}

// CostSummaryResponse aggregates order costs of one category
type CostSummaryResponse struct {
	Category  string          `json:"category"`
	Count     int             `json:"count"`
	Amount    decimal.Decimal `json:"amount"`
	VATGross  decimal.Decimal `json:"vat_gross"`
	VATRefund decimal.Decimal `json:"vat_refund"`
}

// OrderCostResponse is one cost record of an order
type OrderCostResponse struct {
	ID            uuid.UUID       `json:"id"`
	POLineItemID  *uuid.UUID      `json:"po_line_item_id"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	TotalCostBase decimal.Decimal `json:"total_cost_base"`
	IsShared      bool            `json:"is_shared"`
	IncurredAt    *time.Time      `json:"incurred_at"`
}

// ProductionOrderResponse is one production run billed against an order
type ProductionOrderResponse struct {
	ID               uuid.UUID       `json:"id"`
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
}

// InvoiceResponse is one qualifying customer invoice
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	Status        string          `json:"status"`
	InvoiceDate   *time.Time      `json:"invoice_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// OrderPnLResponse is the P&L of one purchase order in base currency.
// Actual-branch fields are null until a qualifying invoice exists.
type OrderPnLResponse struct {
	POID          uuid.UUID       `json:"po_id"`
	PONumber      string          `json:"po_number"`
	CustomerName  string          `json:"customer_name"`
	Currency      string          `json:"currency"`
	BaseCurrency  string          `json:"base_currency"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	ShippingTerms string          `json:"shipping_terms"`
	Status        string          `json:"status"`
	AnchorDate    *time.Time      `json:"anchor_date"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`

	IsActual     bool             `json:"is_actual"`
	InvoiceCount int              `json:"invoice_count"`
	EstRevenue   decimal.Decimal  `json:"est_revenue"`
	ActRevenue   *decimal.Decimal `json:"act_revenue"`

	OrderCostTotal      decimal.Decimal `json:"order_cost_total"`
	ProductionCostTotal decimal.Decimal `json:"production_cost_total"`
	VATRefund           decimal.Decimal `json:"vat_refund"`
	TotalCosts          decimal.Decimal `json:"total_costs"`
	NetCosts            decimal.Decimal `json:"net_costs"`

	EstProfit       decimal.Decimal  `json:"est_profit"`
	EstMargin       decimal.Decimal  `json:"est_margin"`
	ActProfit       *decimal.Decimal `json:"act_profit"`
	ActMargin       *decimal.Decimal `json:"act_margin"`
	RevenueVariance *decimal.Decimal `json:"revenue_variance"`

	CostSummary      []CostSummaryResponse     `json:"cost_summary"`
	Costs            []OrderCostResponse       `json:"costs"`
	ProductionOrders []ProductionOrderResponse `json:"production_orders"`
	Invoices         []InvoiceResponse         `json:"invoices"`
}

// ColorLineResponse is the P&L of one style/color line
type ColorLineResponse struct {
	LineItemID      uuid.UUID        `json:"line_item_id"`
	StyleNo         string           `json:"style_no"`
	Color           string           `json:"color"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	LineTotal       decimal.Decimal  `json:"line_total"`
	EstRevenue      decimal.Decimal  `json:"est_revenue"`
	ActRevenue      *decimal.Decimal `json:"act_revenue"`
	RevenueShare    decimal.Decimal  `json:"revenue_share"`
	DirectCosts     decimal.Decimal  `json:"direct_costs"`
	ProductionCosts decimal.Decimal  `json:"production_costs"`
	AllocatedCosts  decimal.Decimal  `json:"allocated_costs"`
	TotalCosts      decimal.Decimal  `json:"total_costs"`
	EstProfit       decimal.Decimal  `json:"est_profit"`
	EstMargin       decimal.Decimal  `json:"est_margin"`
	ActProfit       *decimal.Decimal `json:"act_profit"`
	ActMargin       *decimal.Decimal `json:"act_margin"`
}

// AmbiguousMatchResponse flags a production order assigned by first match
type AmbiguousMatchResponse struct {
	ProductionOrderID uuid.UUID `json:"production_order_id"`
	ProductionNo      string    `json:"production_no"`
	StyleNo           string    `json:"style_no"`
	Color             string    `json:"color"`
	AssignedLineID    uuid.UUID `json:"assigned_line_id"`
	CandidateCount    int       `json:"candidate_count"`
}

// ColorPnLResponse is the color-level allocation of one order
type ColorPnLResponse struct {
	POID                      uuid.UUID                `json:"po_id"`
	PONumber                  string                   `json:"po_number"`
	BaseCurrency              string                   `json:"base_currency"`
	IsActual                  bool                     `json:"is_actual"`
	TotalRevenue              decimal.Decimal          `json:"total_revenue"`
	UnallocatedTotal          decimal.Decimal          `json:"unallocated_total"`
	UnallocatedProdTotal      decimal.Decimal          `json:"unallocated_prod_total"`
	Lines                     []ColorLineResponse      `json:"lines"`
	AmbiguousProductionOrders []AmbiguousMatchResponse `json:"ambiguous_production_orders"`
}

// PeriodBucketResponse aggregates every order anchored in one period
type PeriodBucketResponse struct {
	PeriodKey             string          `json:"period_key"`
	POCount               int             `json:"po_count"`
	ActualPOCount         int             `json:"actual_po_count"`
	EstimatedPOCount      int             `json:"estimated_po_count"`
	TotalQty              decimal.Decimal `json:"total_qty"`
	EstRevenue            decimal.Decimal `json:"est_revenue"`
	ActualInvoicedRevenue decimal.Decimal `json:"actual_invoiced_revenue"`
	BestAvailableRevenue  decimal.Decimal `json:"best_available_revenue"`
	TotalCosts            decimal.Decimal `json:"total_costs"`
	EstProfit             decimal.Decimal `json:"est_profit"`
	EstMargin             decimal.Decimal `json:"est_margin"`
	Profit                decimal.Decimal `json:"profit"`
	Margin                decimal.Decimal `json:"margin"`
}

// PeriodPnLResponse is the portfolio P&L bucketed by period
type PeriodPnLResponse struct {
	Granularity             string                 `json:"granularity"`
	BaseCurrency            string                 `json:"base_currency"`
	RevenueBasis            string                 `json:"revenue_basis"`
	RevenueBasisDescription string                 `json:"revenue_basis_description"`
	StartDate               *time.Time             `json:"start_date"`
	EndDate                 *time.Time             `json:"end_date"`
	Periods                 []PeriodBucketResponse `json:"periods"`
	Totals                  PeriodBucketResponse   `json:"totals"`
	UndatedOrders           int                    `json:"undated_orders"`
	GeneratedAt             time.Time              `json:"generated_at"`
}

// ToOrderPnLResponse rounds money to 2 places and margins to 2 places
func ToOrderPnLResponse(p *report.OrderPnL, base valueobject.Currency) OrderPnLResponse {
	resp := OrderPnLResponse{
		POID:                p.POID,
		PONumber:            p.PONumber,
		CustomerName:        p.CustomerName,
		Currency:            p.Currency.String(),
		BaseCurrency:        base.String(),
		ExchangeRate:        p.ExchangeRate,
		ShippingTerms:       string(p.ShippingTerms),
		Status:              p.Status.String(),
		AnchorDate:          p.AnchorDate,
		TotalQuantity:       p.TotalQuantity,
		IsActual:            p.IsActual,
		InvoiceCount:        p.InvoiceCount,
		EstRevenue:          valueobject.RoundMoney(p.EstRevenue),
		ActRevenue:          valueobject.RoundMoneyPtr(p.ActRevenue),
		OrderCostTotal:      valueobject.RoundMoney(p.OrderCostTotal),
		ProductionCostTotal: valueobject.RoundMoney(p.ProductionCostTotal),
		VATRefund:           valueobject.RoundMoney(p.VATRefund),
		TotalCosts:          valueobject.RoundMoney(p.TotalCosts),
		NetCosts:            valueobject.RoundMoney(p.NetCosts),
		EstProfit:           valueobject.RoundMoney(p.EstProfit),
		EstMargin:           valueobject.RoundPercent(p.EstMargin),
		ActProfit:           valueobject.RoundMoneyPtr(p.ActProfit),
		ActMargin:           valueobject.RoundPercentPtr(p.ActMargin),
		RevenueVariance:     valueobject.RoundMoneyPtr(p.RevenueVariance),
	}

	resp.CostSummary = make([]CostSummaryResponse, 0, len(p.CostSummary))
	for _, s := range p.CostSummary {
		resp.CostSummary = append(resp.CostSummary, CostSummaryResponse{
			Category:  string(s.Category),
			Count:     s.Count,
			Amount:    valueobject.RoundMoney(s.Amount),
			VATGross:  valueobject.RoundMoney(s.VATGross),
			VATRefund: valueobject.RoundMoney(s.VATRefund),
		})
	}

	resp.Costs = make([]OrderCostResponse, 0, len(p.Costs))
	for _, c := range p.Costs {
		resp.Costs = append(resp.Costs, OrderCostResponse{
			ID:            c.ID,
			POLineItemID:  c.POLineItemID,
			Category:      string(c.Category),
			Description:   c.Description,
			TotalCostBase: valueobject.RoundMoney(c.TotalCostBase),
			IsShared:      c.IsShared(),
			IncurredAt:    c.IncurredAt,
		})
	}

	resp.ProductionOrders = make([]ProductionOrderResponse, 0, len(p.ProductionOrders))
	for _, po := range p.ProductionOrders {
		resp.ProductionOrders = append(resp.ProductionOrders, ToProductionOrderResponse(po))
	}

	resp.Invoices = make([]InvoiceResponse, 0, len(p.QualifyingInvoices))
	for _, inv := range p.QualifyingInvoices {
		resp.Invoices = append(resp.Invoices, InvoiceResponse{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			Status:        string(inv.Status),
			InvoiceDate:   inv.InvoiceDate,
			TotalAmount:   valueobject.RoundMoney(inv.TotalAmount),
		})
	}
	return resp
}

// ToProductionOrderResponse renders a production order with its net cost
func ToProductionOrderResponse(p *trade.ProductionOrder) ProductionOrderResponse {
	return ProductionOrderResponse{
		ID:               p.ID,
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
	}
}

// ToColorPnLResponse rounds money to 2 places and revenue share to 6 places
func ToColorPnLResponse(a *report.ColorAllocation, base valueobject.Currency) ColorPnLResponse {
	resp := ColorPnLResponse{
		POID:                      a.POID,
		PONumber:                  a.PONumber,
		BaseCurrency:              base.String(),
		IsActual:                  a.IsActual,
		TotalRevenue:              valueobject.RoundMoney(a.TotalRevenue),
		UnallocatedTotal:          valueobject.RoundMoney(a.UnallocatedTotal),
		UnallocatedProdTotal:      valueobject.RoundMoney(a.UnallocatedProdTotal),
		Lines:                     make([]ColorLineResponse, 0, len(a.Lines)),
		AmbiguousProductionOrders: make([]AmbiguousMatchResponse, 0, len(a.AmbiguousProductionOrders)),
	}
	for _, l := range a.Lines {
		resp.Lines = append(resp.Lines, ColorLineResponse{
			LineItemID:      l.LineItemID,
			StyleNo:         l.StyleNo,
			Color:           l.Color,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			LineTotal:       valueobject.RoundMoney(l.LineTotal),
			EstRevenue:      valueobject.RoundMoney(l.EstRevenue),
			ActRevenue:      valueobject.RoundMoneyPtr(l.ActRevenue),
			RevenueShare:    valueobject.RoundShare(l.RevenueShare),
			DirectCosts:     valueobject.RoundMoney(l.DirectCosts),
			ProductionCosts: valueobject.RoundMoney(l.ProductionCosts),
			AllocatedCosts:  valueobject.RoundMoney(l.AllocatedCosts),
			TotalCosts:      valueobject.RoundMoney(l.TotalCosts),
			EstProfit:       valueobject.RoundMoney(l.EstProfit),
			EstMargin:       valueobject.RoundPercent(l.EstMargin),
			ActProfit:       valueobject.RoundMoneyPtr(l.ActProfit),
			ActMargin:       valueobject.RoundPercentPtr(l.ActMargin),
		})
	}
	for _, m := range a.AmbiguousProductionOrders {
		resp.AmbiguousProductionOrders = append(resp.AmbiguousProductionOrders, AmbiguousMatchResponse(m))
	}
	return resp
}

func toBucketResponse(b report.PeriodBucket) PeriodBucketResponse {
	return PeriodBucketResponse{
		PeriodKey:             b.PeriodKey,
		POCount:               b.POCount,
		ActualPOCount:         b.ActualPOCount,
		EstimatedPOCount:      b.POCount - b.ActualPOCount,
		TotalQty:              b.TotalQty,
		EstRevenue:            valueobject.RoundMoney(b.EstRevenue),
		ActualInvoicedRevenue: valueobject.RoundMoney(b.ActualInvoicedRevenue),
		BestAvailableRevenue:  valueobject.RoundMoney(b.BestAvailableRevenue),
		TotalCosts:            valueobject.RoundMoney(b.TotalCosts),
		EstProfit:             valueobject.RoundMoney(b.EstProfit),
		EstMargin:             valueobject.RoundPercent(b.EstMargin),
		Profit:                valueobject.RoundMoney(b.Profit),
		Margin:                valueobject.RoundPercent(b.Margin),
	}
}

// ToPeriodPnLResponse renders every bucket and the grand totals
func ToPeriodPnLResponse(p *report.PeriodPnL, filter report.PeriodFilter, base valueobject.Currency, at time.Time) PeriodPnLResponse {
	resp := PeriodPnLResponse{
		Granularity:             string(p.Granularity),
		BaseCurrency:            base.String(),
		RevenueBasis:            p.RevenueBasis,
		RevenueBasisDescription: report.RevenueBasisDescription,
		StartDate:               filter.Range.Start,
		EndDate:                 filter.Range.End,
		Periods:                 make([]PeriodBucketResponse, 0, len(p.Periods)),
		Totals:                  toBucketResponse(p.Totals),
		UndatedOrders:           p.UndatedOrders,
		GeneratedAt:             at,
	}
	for _, b := range p.Periods {
		resp.Periods = append(resp.Periods, toBucketResponse(b))
	}
	return resp
}
