package report

import (
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProfitAndMargin returns revenue-costs and its margin percent. Margin is
// zero whenever revenue is not positive.
func ProfitAndMargin(revenue, costs decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	profit := revenue.Sub(costs)
	return profit, valueobject.SafePercent(profit, revenue)
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
