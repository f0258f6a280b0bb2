package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Rounding places applied at response boundaries
const (
	MoneyPlaces   int32 = 2
	PercentPlaces int32 = 2
	SharePlaces   int32 = 6
)

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds a monetary amount for output
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// RoundPercent rounds a percentage for output
func RoundPercent(d decimal.Decimal) decimal.Decimal {
	return d.Round(PercentPlaces)
}

// RoundShare rounds a ratio for output
func RoundShare(d decimal.Decimal) decimal.Decimal {
	return d.Round(SharePlaces)
}

// RoundMoneyPtr rounds an optional amount, keeping nil as nil
func RoundMoneyPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := RoundMoney(*d)
	return &r
}

// RoundPercentPtr rounds an optional percentage, keeping nil as nil
func RoundPercentPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := RoundPercent(*d)
	return &r
}

// SafePercent returns numerator/denominator*100, or zero when the denominator
// is not positive.
func SafePercent(numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return numerator.Div(denominator).Mul(hundred)
}

// SafeRatio returns numerator/denominator, or zero when the denominator is not
// positive.
func SafeRatio(numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}

// PercentOf returns amount*percent/100
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// Fraction converts a percentage into a fraction (13 -> 0.13)
func Fraction(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(hundred)
}

// LenientDecimal parses user-entered numerics. Blank or unparseable input is
// treated as zero.
func LenientDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// OrZero dereferences an optional decimal
func OrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// ClonePtr copies an optional decimal so the result shares no storage
func ClonePtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := d.Copy()
	return &c
}
