package trade

import (
	"time"

	"github.com/erp/garment/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of a customer invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusSent          InvoiceStatus = "SENT"
	InvoiceStatusAcknowledged  InvoiceStatus = "ACKNOWLEDGED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusFullyPaid     InvoiceStatus = "FULLY_PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
	InvoiceStatusVoid          InvoiceStatus = "VOID"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusAcknowledged,
		InvoiceStatusPartiallyPaid, InvoiceStatusFullyPaid, InvoiceStatusCancelled, InvoiceStatusVoid:
		return true
	}
	return false
}

// CountsAsRevenue reports whether an invoice in this status makes revenue actual
func (s InvoiceStatus) CountsAsRevenue() bool {
	switch s {
	case InvoiceStatusSent, InvoiceStatusAcknowledged, InvoiceStatusPartiallyPaid, InvoiceStatusFullyPaid:
		return true
	}
	return false
}

// QualifyingStatuses lists the statuses that make revenue actual
func QualifyingStatuses() []InvoiceStatus {
	return []InvoiceStatus{InvoiceStatusSent, InvoiceStatusAcknowledged, InvoiceStatusPartiallyPaid, InvoiceStatusFullyPaid}
}

// InvoiceLineItem is one style/color line of a customer invoice
type InvoiceLineItem struct {
	StyleNo   string
	Color     string
	Quantity  decimal.Decimal
	LineTotal decimal.Decimal
}

// CustomerInvoice bills the customer for shipped goods, in order currency
type CustomerInvoice struct {
	shared.TenantEntity
	POID          uuid.UUID
	InvoiceNumber string
	Status        InvoiceStatus
	InvoiceDate   *time.Time
	TotalAmount   decimal.Decimal
	LineItems     []InvoiceLineItem
}

// IsQualifying reports whether the invoice counts as actual revenue
func (i *CustomerInvoice) IsQualifying() bool {
	return i.Status.CountsAsRevenue()
}

// FilterQualifying keeps the invoices that count as actual revenue
func FilterQualifying(invoices []*CustomerInvoice) []*CustomerInvoice {
	out := make([]*CustomerInvoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.IsQualifying() {
			out = append(out, inv)
		}
	}
	return out
}
