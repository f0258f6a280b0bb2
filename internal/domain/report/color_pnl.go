package report

import (
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/erp/garment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ColorPnL is the P&L of one style/color line of an order, in base currency
type ColorPnL struct {
	LineItemID uuid.UUID
	StyleNo    string
	Color      string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal // order currency
	LineTotal  decimal.Decimal // order currency

	EstRevenue   decimal.Decimal
	ActRevenue   *decimal.Decimal
	RevenueShare decimal.Decimal

	DirectCosts     decimal.Decimal
	ProductionCosts decimal.Decimal
	AllocatedCosts  decimal.Decimal
	TotalCosts      decimal.Decimal

	EstProfit decimal.Decimal
	EstMargin decimal.Decimal
	ActProfit *decimal.Decimal
	ActMargin *decimal.Decimal
}

// AmbiguousMatch flags a production order whose style/color matched several
// order lines and was assigned to the first one.
type AmbiguousMatch struct {
	ProductionOrderID uuid.UUID
	ProductionNo      string
	StyleNo           string
	Color             string
	AssignedLineID    uuid.UUID
	CandidateCount    int
}

// ColorAllocation splits an order's costs across its lines
type ColorAllocation struct {
	POID                      uuid.UUID
	PONumber                  string
	IsActual                  bool
	TotalRevenue              decimal.Decimal
	UnallocatedTotal          decimal.Decimal
	UnallocatedProdTotal      decimal.Decimal
	Lines                     []ColorPnL
	AmbiguousProductionOrders []AmbiguousMatch
}

// SharedTotal is the pool spread across lines by revenue share
func (a *ColorAllocation) SharedTotal() decimal.Decimal {
	return a.UnallocatedTotal.Add(a.UnallocatedProdTotal)
}

type styleColor struct {
	styleNo string
	color   string
}

// AllocateColors assigns direct and production costs to their lines and
// spreads shared costs by each line's share of order revenue.
func AllocateColors(in OrderInputs) (*ColorAllocation, error) {
	po := in.Order
	rate, err := po.Rate()
	if err != nil {
		return nil, err
	}

	out := &ColorAllocation{POID: po.ID, PONumber: po.PONumber}

	direct := make(map[uuid.UUID]decimal.Decimal, len(po.LineItems))
	for _, c := range in.Costs {
		if c.POLineItemID != nil && po.FindLineItem(*c.POLineItemID) != nil {
			direct[*c.POLineItemID] = direct[*c.POLineItemID].Add(c.TotalCostBase)
			continue
		}
		out.UnallocatedTotal = out.UnallocatedTotal.Add(c.TotalCostBase)
	}

	production := make(map[uuid.UUID]decimal.Decimal, len(po.LineItems))
	for _, p := range in.Production {
		m := p.ResolveLine(po)
		if m.Line == nil {
			out.UnallocatedProdTotal = out.UnallocatedProdTotal.Add(p.NetCost())
			continue
		}
		production[m.Line.ID] = production[m.Line.ID].Add(p.NetCost())
		if m.Ambiguous {
			out.AmbiguousProductionOrders = append(out.AmbiguousProductionOrders, AmbiguousMatch{
				ProductionOrderID: p.ID,
				ProductionNo:      p.ProductionNo,
				StyleNo:           p.StyleNo,
				Color:             p.Color,
				AssignedLineID:    m.Line.ID,
				CandidateCount:    len(po.LinesMatching(p.StyleNo, p.Color)),
			})
		}
	}

	lineRevenue := make([]decimal.Decimal, len(po.LineItems))
	for i, item := range po.LineItems {
		lineRevenue[i] = item.LineTotal.Mul(rate)
		out.TotalRevenue = out.TotalRevenue.Add(lineRevenue[i])
	}

	qualifying := trade.FilterQualifying(in.Invoices)
	out.IsActual = len(qualifying) > 0
	var actual []decimal.Decimal
	if out.IsActual {
		actual = invoicedByLine(po, qualifying, lineRevenue, rate)
	}

	pool := out.SharedTotal()
	out.Lines = make([]ColorPnL, 0, len(po.LineItems))
	for i, item := range po.LineItems {
		share := valueobject.SafeRatio(lineRevenue[i], out.TotalRevenue)
		line := ColorPnL{
			LineItemID:      item.ID,
			StyleNo:         item.StyleNo,
			Color:           item.Color,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			LineTotal:       item.LineTotal,
			EstRevenue:      lineRevenue[i],
			RevenueShare:    share,
			DirectCosts:     direct[item.ID],
			ProductionCosts: production[item.ID],
			AllocatedCosts:  pool.Mul(share),
		}
		line.TotalCosts = line.DirectCosts.Add(line.ProductionCosts).Add(line.AllocatedCosts)
		line.EstProfit, line.EstMargin = ProfitAndMargin(line.EstRevenue, line.TotalCosts)
		if out.IsActual {
			profit, margin := ProfitAndMargin(actual[i], line.TotalCosts)
			line.ActRevenue = ptr(actual[i])
			line.ActProfit = &profit
			line.ActMargin = &margin
		}
		out.Lines = append(out.Lines, line)
	}
	return out, nil
}

// invoicedByLine sums invoice line totals per style/color in base currency.
// When several order lines share a style/color the invoiced amount is split
// between them by estimated revenue, or evenly if they carry none.
func invoicedByLine(po *trade.PurchaseOrder, invoices []*trade.CustomerInvoice, lineRevenue []decimal.Decimal, rate decimal.Decimal) []decimal.Decimal {
	invoiced := make(map[styleColor]decimal.Decimal)
	for _, inv := range invoices {
		for _, li := range inv.LineItems {
			key := styleColor{li.StyleNo, li.Color}
			invoiced[key] = invoiced[key].Add(li.LineTotal.Mul(rate))
		}
	}

	groupRevenue := make(map[styleColor]decimal.Decimal)
	groupSize := make(map[styleColor]int)
	for i, item := range po.LineItems {
		key := styleColor{item.StyleNo, item.Color}
		groupRevenue[key] = groupRevenue[key].Add(lineRevenue[i])
		groupSize[key]++
	}

	out := make([]decimal.Decimal, len(po.LineItems))
	for i, item := range po.LineItems {
		key := styleColor{item.StyleNo, item.Color}
		amount := invoiced[key]
		switch {
		case groupSize[key] == 1:
			out[i] = amount
		case groupRevenue[key].IsPositive():
			out[i] = amount.Mul(lineRevenue[i]).Div(groupRevenue[key])
		default:
			out[i] = amount.Div(decimal.NewFromInt(int64(groupSize[key])))
		}
	}
	return out
}
