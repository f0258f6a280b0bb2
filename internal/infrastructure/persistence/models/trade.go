package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/erp/garment/internal/domain/trade"
)

// PurchaseOrderModel is the persistence model for the customer PurchaseOrder aggregate.
type PurchaseOrderModel struct {
	TenantAggregateModel
	PONumber      string                       `gorm:"column:po_number;type:varchar(50);not null;index"`
	CustomerName  string                       `gorm:"type:varchar(200);not null"`
	TotalAmount   decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	Currency      string                       `gorm:"type:varchar(3);not null"`
	ExchangeRate  *decimal.Decimal             `gorm:"type:decimal(18,8)"`
	ShippingTerms string                       `gorm:"type:varchar(10)"`
	OrderDate     *time.Time                   `gorm:"type:date"`
	ShipByDate    *time.Time                   `gorm:"type:date"`
	IHDate        *time.Time                   `gorm:"column:ih_date;type:date"`
	Status        trade.PurchaseOrderStatus    `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Items         []PurchaseOrderLineItemModel `gorm:"foreignKey:POID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	po := &trade.PurchaseOrder{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		PONumber:            m.PONumber,
		CustomerName:        m.CustomerName,
		TotalAmount:         m.TotalAmount,
		Currency:            valueobject.Currency(m.Currency),
		ExchangeRate:        valueobject.ClonePtr(m.ExchangeRate),
		ShippingTerms:       trade.ParseIncoterm(m.ShippingTerms),
		OrderDate:           m.OrderDate,
		ShipByDate:          m.ShipByDate,
		IHDate:              m.IHDate,
		Status:              m.Status,
		LineItems:           make([]trade.PurchaseOrderLineItem, len(m.Items)),
	}
	for i := range m.Items {
		po.LineItems[i] = m.Items[i].ToDomain()
	}
	return po
}

// PurchaseOrderModelFromDomain creates a model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(po *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		PONumber:      po.PONumber,
		CustomerName:  po.CustomerName,
		TotalAmount:   po.TotalAmount,
		Currency:      po.Currency.String(),
		ExchangeRate:  valueobject.ClonePtr(po.ExchangeRate),
		ShippingTerms: string(po.ShippingTerms),
		OrderDate:     po.OrderDate,
		ShipByDate:    po.ShipByDate,
		IHDate:        po.IHDate,
		Status:        po.Status,
		Items:         make([]PurchaseOrderLineItemModel, len(po.LineItems)),
	}
	m.FromDomainTenantAggregateRoot(po.TenantAggregateRoot)
	for i, item := range po.LineItems {
		m.Items[i] = PurchaseOrderLineItemModelFromDomain(po.ID, i, item, po.UpdatedAt)
	}
	return m
}

// PurchaseOrderLineItemModel is one style/color line of a purchase order.
type PurchaseOrderLineItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	POID        uuid.UUID       `gorm:"column:po_id;type:uuid;not null;index"`
	Position    int             `gorm:"not null;default:0"`
	StyleNo     string          `gorm:"type:varchar(50);not null"`
	Color       string          `gorm:"type:varchar(50)"`
	Description string          `gorm:"type:varchar(500)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLineItemModel) TableName() string {
	return "purchase_order_line_items"
}

// ToDomain converts the model to a domain line item
func (m *PurchaseOrderLineItemModel) ToDomain() trade.PurchaseOrderLineItem {
	return trade.PurchaseOrderLineItem{
		ID:          m.ID,
		StyleNo:     m.StyleNo,
		Color:       m.Color,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
	}
}

// PurchaseOrderLineItemModelFromDomain creates the line model at position pos of poID
func PurchaseOrderLineItemModelFromDomain(poID uuid.UUID, pos int, l trade.PurchaseOrderLineItem, at time.Time) PurchaseOrderLineItemModel {
	return PurchaseOrderLineItemModel{
		ID:          l.ID,
		POID:        poID,
		Position:    pos,
		StyleNo:     l.StyleNo,
		Color:       l.Color,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		LineTotal:   l.LineTotal,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

// OrderCostModel is the persistence model for OrderCost
type OrderCostModel struct {
	TenantModel
	POID            uuid.UUID        `gorm:"column:po_id;type:uuid;not null;index"`
	POLineItemID    *uuid.UUID       `gorm:"column:po_line_item_id;type:uuid;index"`
	Category        string           `gorm:"type:varchar(30);not null;default:'OTHER'"`
	Description     string           `gorm:"type:varchar(500)"`
	TotalCostBase   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	VATGrossAmount  *decimal.Decimal `gorm:"column:vat_gross_amount;type:decimal(18,4)"`
	VATRefundAmount *decimal.Decimal `gorm:"column:vat_refund_amount;type:decimal(18,4)"`
	Notes           string           `gorm:"type:text"`
	IncurredAt      *time.Time       `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (OrderCostModel) TableName() string {
	return "order_costs"
}

// ToDomain converts the model to a domain OrderCost
func (m *OrderCostModel) ToDomain() *trade.OrderCost {
	return &trade.OrderCost{
		TenantEntity:    m.ToTenantEntity(),
		POID:            m.POID,
		POLineItemID:    m.POLineItemID,
		Category:        trade.NormalizeCostCategory(m.Category),
		Description:     m.Description,
		TotalCostBase:   m.TotalCostBase,
		VATGrossAmount:  valueobject.ClonePtr(m.VATGrossAmount),
		VATRefundAmount: valueobject.ClonePtr(m.VATRefundAmount),
		Notes:           m.Notes,
		IncurredAt:      m.IncurredAt,
	}
}

// OrderCostModelFromDomain creates a model from a domain OrderCost
func OrderCostModelFromDomain(c *trade.OrderCost) *OrderCostModel {
	m := &OrderCostModel{
		POID:            c.POID,
		POLineItemID:    c.POLineItemID,
		Category:        string(c.Category),
		Description:     c.Description,
		TotalCostBase:   c.TotalCostBase,
		VATGrossAmount:  valueobject.ClonePtr(c.VATGrossAmount),
		VATRefundAmount: valueobject.ClonePtr(c.VATRefundAmount),
		Notes:           c.Notes,
		IncurredAt:      c.IncurredAt,
	}
	m.FromDomainTenantEntity(c.TenantEntity)
	return m
}

// ProductionOrderModel is the persistence model for ProductionOrder
type ProductionOrderModel struct {
	TenantModel
	POID             uuid.UUID       `gorm:"column:po_id;type:uuid;not null;index"`
	POLineItemID     *uuid.UUID      `gorm:"column:po_line_item_id;type:uuid;index"`
	ProductionNo     string          `gorm:"type:varchar(50)"`
	StyleNo          string          `gorm:"type:varchar(50)"`
	Color            string          `gorm:"type:varchar(50)"`
	FactoryName      string          `gorm:"type:varchar(200)"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProdInvoiceTotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VATRefundRate    decimal.Decimal `gorm:"column:vat_refund_rate;type:decimal(8,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductionOrderModel) TableName() string {
	return "production_orders"
}

// ToDomain converts the model to a domain ProductionOrder
func (m *ProductionOrderModel) ToDomain() *trade.ProductionOrder {
	return &trade.ProductionOrder{
		TenantEntity:     m.ToTenantEntity(),
		POID:             m.POID,
		POLineItemID:     m.POLineItemID,
		ProductionNo:     m.ProductionNo,
		StyleNo:          m.StyleNo,
		Color:            m.Color,
		FactoryName:      m.FactoryName,
		Quantity:         m.Quantity,
		ProdInvoiceTotal: m.ProdInvoiceTotal,
		VATRefundRate:    m.VATRefundRate,
	}
}

// ProductionOrderModelFromDomain creates a model from a domain ProductionOrder
func ProductionOrderModelFromDomain(p *trade.ProductionOrder) *ProductionOrderModel {
	m := &ProductionOrderModel{
		POID:             p.POID,
		POLineItemID:     p.POLineItemID,
		ProductionNo:     p.ProductionNo,
		StyleNo:          p.StyleNo,
		Color:            p.Color,
		FactoryName:      p.FactoryName,
		Quantity:         p.Quantity,
		ProdInvoiceTotal: p.ProdInvoiceTotal,
		VATRefundRate:    p.VATRefundRate,
	}
	m.FromDomainTenantEntity(p.TenantEntity)
	return m
}

// CustomerInvoiceModel is the persistence model for CustomerInvoice
type CustomerInvoiceModel struct {
	TenantModel
	POID          uuid.UUID                  `gorm:"column:po_id;type:uuid;not null;index"`
	InvoiceNumber string                     `gorm:"type:varchar(50);not null"`
	Status        trade.InvoiceStatus        `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	InvoiceDate   *time.Time                 `gorm:"type:date"`
	TotalAmount   decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	Items         []CustomerInvoiceLineModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (CustomerInvoiceModel) TableName() string {
	return "customer_invoices"
}

// ToDomain converts the model to a domain CustomerInvoice
func (m *CustomerInvoiceModel) ToDomain() *trade.CustomerInvoice {
	inv := &trade.CustomerInvoice{
		TenantEntity:  m.ToTenantEntity(),
		POID:          m.POID,
		InvoiceNumber: m.InvoiceNumber,
		Status:        m.Status,
		InvoiceDate:   m.InvoiceDate,
		TotalAmount:   m.TotalAmount,
		LineItems:     make([]trade.InvoiceLineItem, len(m.Items)),
	}
	for i, item := range m.Items {
		inv.LineItems[i] = trade.InvoiceLineItem{
			StyleNo:   item.StyleNo,
			Color:     item.Color,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		}
	}
	return inv
}

// CustomerInvoiceModelFromDomain creates a model from a domain CustomerInvoice
func CustomerInvoiceModelFromDomain(inv *trade.CustomerInvoice) *CustomerInvoiceModel {
	m := &CustomerInvoiceModel{
		POID:          inv.POID,
		InvoiceNumber: inv.InvoiceNumber,
		Status:        inv.Status,
		InvoiceDate:   inv.InvoiceDate,
		TotalAmount:   inv.TotalAmount,
		Items:         make([]CustomerInvoiceLineModel, len(inv.LineItems)),
	}
	m.FromDomainTenantEntity(inv.TenantEntity)
	for i, item := range inv.LineItems {
		m.Items[i] = CustomerInvoiceLineModel{
			ID:        uuid.New(),
			InvoiceID: inv.ID,
			Position:  i,
			StyleNo:   item.StyleNo,
			Color:     item.Color,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		}
	}
	return m
}

// CustomerInvoiceLineModel is one style/color line of a customer invoice.
// Lines have no domain identity so they are replaced wholesale on save.
type CustomerInvoiceLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null;default:0"`
	StyleNo   string          `gorm:"type:varchar(50)"`
	Color     string          `gorm:"type:varchar(50)"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (CustomerInvoiceLineModel) TableName() string {
	return "customer_invoice_lines"
}
