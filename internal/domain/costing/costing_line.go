package costing

import (
	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostingLine is one itemized cost (material, labor, trim...) priced in the
// sheet's local currency.
type CostingLine struct {
	ID           uuid.UUID
	Description  string
	Supplier     string
	Unit         string
	UnitPrice    *decimal.Decimal // nil treated as 0
	Consumption  *decimal.Decimal // nil treated as 0
	VATRefund    bool
	VATPercent   decimal.Decimal  // accepted as given, not clamped to [0,100]
	ExchangeRate *decimal.Decimal // overrides the sheet default when set
}

// LineInput carries the editable fields of a costing line
type LineInput struct {
	Description  string
	Supplier     string
	Unit         string
	UnitPrice    *decimal.Decimal
	Consumption  *decimal.Decimal
	VATRefund    bool
	VATPercent   decimal.Decimal
	ExchangeRate *decimal.Decimal
}

// NewCostingLine creates a costing line. Negative price or consumption is
// rejected so that local cost can never go below zero.
func NewCostingLine(in LineInput) (CostingLine, error) {
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return CostingLine{}, shared.NewDomainError("INVALID_UNIT_PRICE", "Unit price cannot be negative")
	}
	if in.Consumption != nil && in.Consumption.IsNegative() {
		return CostingLine{}, shared.NewDomainError("INVALID_CONSUMPTION", "Consumption cannot be negative")
	}
	if in.ExchangeRate != nil && !in.ExchangeRate.IsPositive() {
		return CostingLine{}, shared.NewDomainError(shared.ErrMissingExchangeRate.Code, "Line exchange rate must be positive")
	}
	return CostingLine{
		ID:           uuid.New(),
		Description:  in.Description,
		Supplier:     in.Supplier,
		Unit:         in.Unit,
		UnitPrice:    valueobject.ClonePtr(in.UnitPrice),
		Consumption:  valueobject.ClonePtr(in.Consumption),
		VATRefund:    in.VATRefund,
		VATPercent:   in.VATPercent,
		ExchangeRate: valueobject.ClonePtr(in.ExchangeRate),
	}, nil
}

// GrossLocal returns unitPrice * consumption before any VAT refund
func (l CostingLine) GrossLocal() decimal.Decimal {
	return valueobject.OrZero(l.UnitPrice).Mul(valueobject.OrZero(l.Consumption))
}

// CostLocal returns the net local-currency cost of the line
func (l CostingLine) CostLocal() decimal.Decimal {
	gross := l.GrossLocal()
	if !l.VATRefund {
		return gross
	}
	return gross.Sub(valueobject.PercentOf(gross, l.VATPercent))
}

// EffectiveRate returns the line override or the sheet default. A missing or
// non-positive rate is an error rather than an implicit 1:1 conversion.
func (l CostingLine) EffectiveRate(defaultRate decimal.Decimal) (decimal.Decimal, error) {
	rate := defaultRate
	if l.ExchangeRate != nil {
		rate = *l.ExchangeRate
	}
	if !rate.IsPositive() {
		return decimal.Zero, shared.ErrMissingExchangeRate
	}
	return rate, nil
}

// CostQuoted converts the local cost into the quote currency
func (l CostingLine) CostQuoted(defaultRate decimal.Decimal) (decimal.Decimal, error) {
	rate, err := l.EffectiveRate(defaultRate)
	if err != nil {
		return decimal.Zero, err
	}
	return l.CostLocal().Div(rate), nil
}

// Evaluate returns (costLocal, costQuoted) for the line
func (l CostingLine) Evaluate(defaultRate decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	quoted, err := l.CostQuoted(defaultRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return l.CostLocal(), quoted, nil
}

// Clone returns a copy of the line that shares no pointer storage with the
// receiver. The ID is regenerated so each version owns distinct rows.
func (l CostingLine) Clone() CostingLine {
	return CostingLine{
		ID:           uuid.New(),
		Description:  l.Description,
		Supplier:     l.Supplier,
		Unit:         l.Unit,
		UnitPrice:    valueobject.ClonePtr(l.UnitPrice),
		Consumption:  valueobject.ClonePtr(l.Consumption),
		VATRefund:    l.VATRefund,
		VATPercent:   l.VATPercent,
		ExchangeRate: valueobject.ClonePtr(l.ExchangeRate),
	}
}
