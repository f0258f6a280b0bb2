package trade

import (
	"strings"
	"time"

	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a customer purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft        PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusConfirmed    PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusInProduction PurchaseOrderStatus = "IN_PRODUCTION"
	PurchaseOrderStatusShipped      PurchaseOrderStatus = "SHIPPED"
	PurchaseOrderStatusCompleted    PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderStatusCancelled    PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusConfirmed, PurchaseOrderStatusInProduction,
		PurchaseOrderStatusShipped, PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// Incoterm is the shipping term of an order
type Incoterm string

const (
	IncotermFOB Incoterm = "FOB"
	IncotermCIF Incoterm = "CIF"
	IncotermDDP Incoterm = "DDP"
	IncotermEXW Incoterm = "EXW"
)

// ParseIncoterm normalizes free-form shipping terms. Unknown values are kept
// as given.
func ParseIncoterm(v string) Incoterm {
	return Incoterm(strings.ToUpper(strings.TrimSpace(v)))
}

// AnchorsOnInHouseDate reports whether the buyer takes delivery at destination,
// in which case the in-house date anchors reporting.
func (i Incoterm) AnchorsOnInHouseDate() bool {
	return i == IncotermDDP || i == IncotermEXW
}

// PurchaseOrderLineItem is one style/color line of an order
type PurchaseOrderLineItem struct {
	ID          uuid.UUID
	StyleNo     string
	Color       string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Matches reports whether the line has the given style and color
func (l PurchaseOrderLineItem) Matches(styleNo, color string) bool {
	return l.StyleNo == styleNo && l.Color == color
}

// PurchaseOrder is a customer order priced in the order currency
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	PONumber      string
	CustomerName  string
	TotalAmount   decimal.Decimal
	Currency      valueobject.Currency
	ExchangeRate  *decimal.Decimal // order currency -> base currency
	ShippingTerms Incoterm
	OrderDate     *time.Time
	ShipByDate    *time.Time
	IHDate        *time.Time
	Status        PurchaseOrderStatus
	LineItems     []PurchaseOrderLineItem
}

// NewPurchaseOrder creates a draft purchase order
func NewPurchaseOrder(tenantID uuid.UUID, poNumber, customerName string, currency valueobject.Currency, exchangeRate decimal.Decimal) (*PurchaseOrder, error) {
	if strings.TrimSpace(poNumber) == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if !exchangeRate.IsPositive() {
		return nil, shared.NewDomainError(shared.ErrMissingExchangeRate.Code, "Exchange rate must be positive for PO "+poNumber)
	}
	rate := exchangeRate
	return &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PONumber:            poNumber,
		CustomerName:        customerName,
		TotalAmount:         decimal.Zero,
		Currency:            currency,
		ExchangeRate:        &rate,
		Status:              PurchaseOrderStatusDraft,
		LineItems:           make([]PurchaseOrderLineItem, 0),
	}, nil
}

// AddLineItem appends a line and recomputes the order total
func (po *PurchaseOrder) AddLineItem(styleNo, color string, quantity, unitPrice decimal.Decimal) (*PurchaseOrderLineItem, error) {
	if strings.TrimSpace(styleNo) == "" {
		return nil, shared.NewDomainError("INVALID_STYLE", "Style number cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	po.LineItems = append(po.LineItems, PurchaseOrderLineItem{
		ID:        uuid.New(),
		StyleNo:   styleNo,
		Color:     color,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: quantity.Mul(unitPrice),
	})
	po.recalculateTotal()
	po.Touch()
	return &po.LineItems[len(po.LineItems)-1], nil
}

func (po *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range po.LineItems {
		total = total.Add(item.LineTotal)
	}
	po.TotalAmount = total
}

// IsCancelled reports whether the order is excluded from aggregation
func (po *PurchaseOrder) IsCancelled() bool {
	return po.Status == PurchaseOrderStatusCancelled
}

// Rate returns the required exchange rate to base currency
func (po *PurchaseOrder) Rate() (decimal.Decimal, error) {
	if po.ExchangeRate == nil || !po.ExchangeRate.IsPositive() {
		return decimal.Zero, shared.NewDomainError(shared.ErrMissingExchangeRate.Code, "Missing exchange rate for PO "+po.PONumber)
	}
	return *po.ExchangeRate, nil
}

// ToBase converts an order-currency amount into base currency
func (po *PurchaseOrder) ToBase(amount decimal.Decimal) (decimal.Decimal, error) {
	rate, err := po.Rate()
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// EstimatedRevenue returns totalAmount converted into base currency
func (po *PurchaseOrder) EstimatedRevenue() (decimal.Decimal, error) {
	return po.ToBase(po.TotalAmount)
}

// TotalQuantity sums line quantities
func (po *PurchaseOrder) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range po.LineItems {
		total = total.Add(item.Quantity)
	}
	return total
}

// FindLineItem returns the line item with the given ID
func (po *PurchaseOrder) FindLineItem(id uuid.UUID) *PurchaseOrderLineItem {
	for i := range po.LineItems {
		if po.LineItems[i].ID == id {
			return &po.LineItems[i]
		}
	}
	return nil
}

// LinesMatching returns every line with the given style and color, in order
func (po *PurchaseOrder) LinesMatching(styleNo, color string) []*PurchaseOrderLineItem {
	var out []*PurchaseOrderLineItem
	for i := range po.LineItems {
		if po.LineItems[i].Matches(styleNo, color) {
			out = append(out, &po.LineItems[i])
		}
	}
	return out
}

// AnchorDate selects the date that assigns the order to a reporting period.
// DDP and EXW anchor on the in-house date, everything else on the ship-by
// date; both fall back to the order date. Nil means the order has no date.
func (po *PurchaseOrder) AnchorDate() *time.Time {
	primary := po.ShipByDate
	if po.ShippingTerms.AnchorsOnInHouseDate() {
		primary = po.IHDate
	}
	if primary != nil {
		return primary
	}
	return po.OrderDate
}
