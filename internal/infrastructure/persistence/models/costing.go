package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/garment/internal/domain/costing"
	"github.com/erp/garment/internal/domain/shared/valueobject"
)

// CostingSheetModel is one persisted costing version. (subject, revision)
// is unique so concurrent clones cannot both take a revision.
type CostingSheetModel struct {
	TenantAggregateModel
	SubjectID           uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_costing_subject_revision,priority:1"`
	RevisionNo          int                `gorm:"not null;uniqueIndex:idx_costing_subject_revision,priority:2"`
	VersionLabel        string             `gorm:"type:varchar(50);not null"`
	SourceID            *uuid.UUID         `gorm:"type:uuid"`
	LocalCurrency       string             `gorm:"type:varchar(3);not null"`
	QuoteCurrency       string             `gorm:"type:varchar(3);not null"`
	DefaultExchangeRate decimal.Decimal    `gorm:"type:decimal(18,8);not null"`
	AgentCommPercent    decimal.Decimal    `gorm:"type:decimal(8,4);not null;default:0"`
	TargetMarginPercent decimal.Decimal    `gorm:"type:decimal(8,4);not null;default:0"`
	ActualQuotedPrice   *decimal.Decimal   `gorm:"type:decimal(18,4)"`
	Remark              string             `gorm:"type:text"`
	Lines               []CostingLineModel `gorm:"foreignKey:SheetID;references:ID"`
}

// TableName returns the table name for GORM
func (CostingSheetModel) TableName() string {
	return "costing_sheets"
}

// ToDomain converts the model to a domain CostingSheet. Lines are grouped
// by segment in stored position order.
func (m *CostingSheetModel) ToDomain() *costing.CostingSheet {
	sheet := &costing.CostingSheet{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		SubjectID:           m.SubjectID,
		RevisionNo:          m.RevisionNo,
		VersionLabel:        m.VersionLabel,
		SourceID:            m.SourceID,
		LocalCurrency:       valueobject.Currency(m.LocalCurrency),
		QuoteCurrency:       valueobject.Currency(m.QuoteCurrency),
		DefaultExchangeRate: m.DefaultExchangeRate,
		AgentCommPercent:    m.AgentCommPercent,
		TargetMarginPercent: m.TargetMarginPercent,
		ActualQuotedPrice:   valueobject.ClonePtr(m.ActualQuotedPrice),
		Remark:              m.Remark,
		Segments:            make(map[costing.Segment][]costing.CostingLine),
	}
	for _, l := range m.Lines {
		seg := costing.Segment(l.Segment)
		sheet.Segments[seg] = append(sheet.Segments[seg], l.ToDomain())
	}
	return sheet
}

// CostingSheetModelFromDomain creates a model from a domain CostingSheet
func CostingSheetModelFromDomain(s *costing.CostingSheet) *CostingSheetModel {
	m := &CostingSheetModel{
		SubjectID:           s.SubjectID,
		RevisionNo:          s.RevisionNo,
		VersionLabel:        s.VersionLabel,
		SourceID:            s.SourceID,
		LocalCurrency:       s.LocalCurrency.String(),
		QuoteCurrency:       s.QuoteCurrency.String(),
		DefaultExchangeRate: s.DefaultExchangeRate,
		AgentCommPercent:    s.AgentCommPercent,
		TargetMarginPercent: s.TargetMarginPercent,
		ActualQuotedPrice:   valueobject.ClonePtr(s.ActualQuotedPrice),
		Remark:              s.Remark,
		Lines:               make([]CostingLineModel, 0, s.LineCount()),
	}
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	for _, seg := range costing.AllSegments {
		for i, line := range s.Segments[seg] {
			m.Lines = append(m.Lines, CostingLineModelFromDomain(s.ID, seg, i, line))
		}
	}
	return m
}

// CostingLineModel is one line of a costing sheet segment
type CostingLineModel struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key"`
	SheetID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Segment      string           `gorm:"type:varchar(20);not null"`
	Position     int              `gorm:"not null;default:0"`
	Description  string           `gorm:"type:varchar(500)"`
	Supplier     string           `gorm:"type:varchar(200)"`
	Unit         string           `gorm:"type:varchar(20)"`
	UnitPrice    *decimal.Decimal `gorm:"type:decimal(18,6)"`
	Consumption  *decimal.Decimal `gorm:"type:decimal(18,6)"`
	VATRefund    bool             `gorm:"column:vat_refund;not null;default:false"`
	VATPercent   decimal.Decimal  `gorm:"column:vat_percent;type:decimal(8,4);not null;default:0"`
	ExchangeRate *decimal.Decimal `gorm:"type:decimal(18,8)"`
}

// TableName returns the table name for GORM
func (CostingLineModel) TableName() string {
	return "costing_lines"
}

// ToDomain converts the model to a domain CostingLine
func (m *CostingLineModel) ToDomain() costing.CostingLine {
	return costing.CostingLine{
		ID:           m.ID,
		Description:  m.Description,
		Supplier:     m.Supplier,
		Unit:         m.Unit,
		UnitPrice:    valueobject.ClonePtr(m.UnitPrice),
		Consumption:  valueobject.ClonePtr(m.Consumption),
		VATRefund:    m.VATRefund,
		VATPercent:   m.VATPercent,
		ExchangeRate: valueobject.ClonePtr(m.ExchangeRate),
	}
}

// CostingLineModelFromDomain creates a line model at position pos of segment seg
func CostingLineModelFromDomain(sheetID uuid.UUID, seg costing.Segment, pos int, l costing.CostingLine) CostingLineModel {
	return CostingLineModel{
		ID:           l.ID,
		SheetID:      sheetID,
		Segment:      string(seg),
		Position:     pos,
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
