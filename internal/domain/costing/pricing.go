package costing

import (
	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// AgentCommission is charged on cost, not on the derived price
func AgentCommission(totalQuoted, agentCommPercent decimal.Decimal) decimal.Decimal {
	return valueobject.PercentOf(totalQuoted, agentCommPercent)
}

// ValidateTargetMargin rejects margins that would make the price infinite or negative
func ValidateTargetMargin(targetMarginPercent decimal.Decimal) error {
	if targetMarginPercent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return shared.ErrInvalidTargetMargin
	}
	return nil
}

// SellingPrice back-solves the price that yields the target margin on
// totalQuoted plus commission.
func SellingPrice(totalQuoted, agentCommPercent, targetMarginPercent decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateTargetMargin(targetMarginPercent); err != nil {
		return decimal.Zero, err
	}
	base := totalQuoted.Add(AgentCommission(totalQuoted, agentCommPercent))
	return base.Div(one.Sub(valueobject.Fraction(targetMarginPercent))), nil
}

// ImpliedMargin reverse-computes the margin percent a given price achieves
func ImpliedMargin(totalQuoted, agentCommAmount, price decimal.Decimal) decimal.Decimal {
	return valueobject.SafePercent(price.Sub(totalQuoted).Sub(agentCommAmount), price)
}
