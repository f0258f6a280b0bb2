package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LenientNumber is an optional user-entered number. It unmarshals from a JSON
// number, a numeric string, blank or null. Unparseable text becomes zero.
type LenientNumber struct {
	value *decimal.Decimal
}

// NewLenientNumber wraps a known value
func NewLenientNumber(d decimal.Decimal) LenientNumber {
	return LenientNumber{value: &d}
}

// UnmarshalJSON implements json.Unmarshaler
func (n *LenientNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		n.value = nil
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		n.value = nil
		return nil
	}
	d := LenientDecimal(s)
	n.value = &d
	return nil
}

// MarshalJSON implements json.Marshaler
func (n LenientNumber) MarshalJSON() ([]byte, error) {
	if n.value == nil {
		return []byte("null"), nil
	}
	return n.value.MarshalJSON()
}

// IsSet reports whether a non-blank value was supplied
func (n LenientNumber) IsSet() bool {
	return n.value != nil
}

// Ptr returns a copy of the value, nil when blank
func (n LenientNumber) Ptr() *decimal.Decimal {
	return ClonePtr(n.value)
}

// Decimal returns the value, zero when blank
func (n LenientNumber) Decimal() decimal.Decimal {
	return OrZero(n.value)
}
