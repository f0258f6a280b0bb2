package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Granularity is the width of a reporting period
type Granularity string

const (
	GranularityMonthly   Granularity = "MONTHLY"
	GranularityQuarterly Granularity = "QUARTERLY"
	GranularityAnnual    Granularity = "ANNUAL"
)

// ParseGranularity accepts granularity names case-insensitively
func ParseGranularity(v string) (Granularity, error) {
	g := Granularity(strings.ToUpper(strings.TrimSpace(v)))
	switch g {
	case GranularityMonthly, GranularityQuarterly, GranularityAnnual:
		return g, nil
	}
	return "", shared.NewDomainError(shared.ErrInvalidGranularity.Code, "Unsupported period granularity: "+v)
}

// PeriodKey formats t as YYYY-MM, YYYY-Qn or YYYY. All three formats sort
// chronologically as strings.
func PeriodKey(t time.Time, g Granularity) string {
	switch g {
	case GranularityQuarterly:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case GranularityAnnual:
		return fmt.Sprintf("%04d", t.Year())
	default:
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	}
}

// RevenueBasisBestAvailable labels bucket revenue that mixes invoiced and
// estimated figures.
const RevenueBasisBestAvailable = "BEST_AVAILABLE"

// RevenueBasisDescription explains the best-available revenue figure
const RevenueBasisDescription = "Invoiced revenue for orders with qualifying invoices, estimated PO revenue for orders not yet invoiced"

// TotalsKey is the period key of the grand-total row
const TotalsKey = "TOTAL"

// PeriodBucket aggregates every order anchored in one period
type PeriodBucket struct {
	PeriodKey             string
	POCount               int
	ActualPOCount         int
	TotalQty              decimal.Decimal
	EstRevenue            decimal.Decimal
	ActualInvoicedRevenue decimal.Decimal
	BestAvailableRevenue  decimal.Decimal
	TotalCosts            decimal.Decimal
	EstProfit             decimal.Decimal
	EstMargin             decimal.Decimal
	Profit                decimal.Decimal // best-available revenue minus costs
	Margin                decimal.Decimal
}

func (b *PeriodBucket) add(p *OrderPnL) {
	b.POCount++
	b.TotalQty = b.TotalQty.Add(p.TotalQuantity)
	b.EstRevenue = b.EstRevenue.Add(p.EstRevenue)
	if p.IsActual {
		b.ActualPOCount++
		b.ActualInvoicedRevenue = b.ActualInvoicedRevenue.Add(*p.ActRevenue)
	}
	b.BestAvailableRevenue = b.BestAvailableRevenue.Add(p.BestAvailableRevenue())
	b.TotalCosts = b.TotalCosts.Add(p.NetCosts)
}

func (b *PeriodBucket) merge(o PeriodBucket) {
	b.POCount += o.POCount
	b.ActualPOCount += o.ActualPOCount
	b.TotalQty = b.TotalQty.Add(o.TotalQty)
	b.EstRevenue = b.EstRevenue.Add(o.EstRevenue)
	b.ActualInvoicedRevenue = b.ActualInvoicedRevenue.Add(o.ActualInvoicedRevenue)
	b.BestAvailableRevenue = b.BestAvailableRevenue.Add(o.BestAvailableRevenue)
	b.TotalCosts = b.TotalCosts.Add(o.TotalCosts)
}

func (b *PeriodBucket) derive() {
	b.EstProfit, b.EstMargin = ProfitAndMargin(b.EstRevenue, b.TotalCosts)
	b.Profit, b.Margin = ProfitAndMargin(b.BestAvailableRevenue, b.TotalCosts)
}

// PortfolioInputs holds every record of the portfolio, loaded once per type
type PortfolioInputs struct {
	Orders     []*trade.PurchaseOrder
	Costs      []*trade.OrderCost
	Production []*trade.ProductionOrder
	Invoices   []*trade.CustomerInvoice
}

// PeriodFilter selects the granularity and optional inclusive anchor window
type PeriodFilter struct {
	Granularity Granularity
	Range       shared.DateRange
}

// PeriodPnL is the portfolio P&L bucketed by period
type PeriodPnL struct {
	Granularity  Granularity
	RevenueBasis string
	Periods      []PeriodBucket
	Totals       PeriodBucket
	// UndatedOrders counts orders skipped for lack of any anchor date
	UndatedOrders int
}

type portfolioIndex struct {
	costs      map[uuid.UUID][]*trade.OrderCost
	production map[uuid.UUID][]*trade.ProductionOrder
	invoices   map[uuid.UUID][]*trade.CustomerInvoice
}

func indexPortfolio(in PortfolioInputs) portfolioIndex {
	idx := portfolioIndex{
		costs:      make(map[uuid.UUID][]*trade.OrderCost),
		production: make(map[uuid.UUID][]*trade.ProductionOrder),
		invoices:   make(map[uuid.UUID][]*trade.CustomerInvoice),
	}
	for _, c := range in.Costs {
		idx.costs[c.POID] = append(idx.costs[c.POID], c)
	}
	for _, p := range in.Production {
		idx.production[p.POID] = append(idx.production[p.POID], p)
	}
	for _, inv := range in.Invoices {
		idx.invoices[inv.POID] = append(idx.invoices[inv.POID], inv)
	}
	return idx
}

// BucketPeriods assigns each non-cancelled order to the period of its anchor
// date and aggregates revenue and costs per period. An order without a usable
// exchange rate fails the whole run.
func BucketPeriods(in PortfolioInputs, filter PeriodFilter) (*PeriodPnL, error) {
	g := filter.Granularity
	if g == "" {
		g = GranularityMonthly
	}
	if _, err := ParseGranularity(string(g)); err != nil {
		return nil, err
	}

	idx := indexPortfolio(in)
	buckets := make(map[string]*PeriodBucket)
	out := &PeriodPnL{Granularity: g, RevenueBasis: RevenueBasisBestAvailable}

	for _, po := range in.Orders {
		if po.IsCancelled() {
			continue
		}
		anchor := po.AnchorDate()
		if anchor == nil {
			out.UndatedOrders++
			continue
		}
		if !filter.Range.Contains(*anchor) {
			continue
		}
		p, err := AggregateOrder(OrderInputs{
			Order:      po,
			Costs:      idx.costs[po.ID],
			Production: idx.production[po.ID],
			Invoices:   idx.invoices[po.ID],
		})
		if err != nil {
			return nil, err
		}
		key := PeriodKey(*anchor, g)
		b, ok := buckets[key]
		if !ok {
			b = &PeriodBucket{PeriodKey: key}
			buckets[key] = b
		}
		b.add(p)
	}

	out.Periods = make([]PeriodBucket, 0, len(buckets))
	for _, b := range buckets {
		b.derive()
		out.Periods = append(out.Periods, *b)
	}
	sort.Slice(out.Periods, func(i, j int) bool {
		return out.Periods[i].PeriodKey < out.Periods[j].PeriodKey
	})

	out.Totals = PeriodBucket{PeriodKey: TotalsKey}
	for _, b := range out.Periods {
		out.Totals.merge(b)
	}
	out.Totals.derive()
	return out, nil
}
