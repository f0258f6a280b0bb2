package costing

import (
	"strings"
	"time"

	"github.com/erp/garment/internal/domain/costing"
	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// SheetSettingsRequest carries the sheet-level inputs of a costing version.
// Numeric fields accept numbers or numeric strings; blank means zero.
type SheetSettingsRequest struct {
	VersionLabel        string                    `json:"version_label" binding:"max=50"`
	LocalCurrency       string                    `json:"local_currency" binding:"required,len=3,currency"`
	QuoteCurrency       string                    `json:"quote_currency" binding:"required,len=3,currency"`
	DefaultExchangeRate valueobject.LenientNumber `json:"default_exchange_rate"`
	AgentCommPercent    valueobject.LenientNumber `json:"agent_comm_percent"`
	TargetMarginPercent valueobject.LenientNumber `json:"target_margin_percent"`
	ActualQuotedPrice   valueobject.LenientNumber `json:"actual_quoted_price"` // blank keeps the auto price
	Remark              string                    `json:"remark" binding:"max=2000"`
}

// CostingLineRequest is one line of a segment
type CostingLineRequest struct {
	Description  string                    `json:"description" binding:"max=500"`
	Supplier     string                    `json:"supplier" binding:"max=200"`
	Unit         string                    `json:"unit" binding:"max=20"`
	UnitPrice    valueobject.LenientNumber `json:"unit_price"`
	Consumption  valueobject.LenientNumber `json:"consumption"`
	VATRefund    bool                      `json:"vat_refund"`
	VATPercent   valueobject.LenientNumber `json:"vat_percent"`
	ExchangeRate valueobject.LenientNumber `json:"exchange_rate"` // blank uses the sheet default
}

// CreateSheetRequest creates the first version of a subject's costing sheet
type CreateSheetRequest struct {
	SubjectID uuid.UUID `json:"subject_id" binding:"required"`
	SheetSettingsRequest
	Segments map[string][]CostingLineRequest `json:"segments" binding:"dive,dive"`
}

// UpdateSheetRequest edits the active version. Only the segments present in
// the map are replaced; a nil Settings keeps the current sheet settings.
type UpdateSheetRequest struct {
	Settings *SheetSettingsRequest          `json:"settings"`
	Segments map[string][]CostingLineRequest `json:"segments" binding:"dive,dive"`
}

// CreateVersionRequest clones a version into a new revision
type CreateVersionRequest struct {
	VersionLabel string `json:"version_label" binding:"max=50"`
}

func (r SheetSettingsRequest) toSettings() (costing.SheetSettings, error) {
	local, err := valueobject.ParseCurrency(r.LocalCurrency)
	if err != nil {
		return costing.SheetSettings{}, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	quote, err := valueobject.ParseCurrency(r.QuoteCurrency)
	if err != nil {
		return costing.SheetSettings{}, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	return costing.SheetSettings{
		VersionLabel:        strings.TrimSpace(r.VersionLabel),
		LocalCurrency:       local,
		QuoteCurrency:       quote,
		DefaultExchangeRate: r.DefaultExchangeRate.Decimal(),
		AgentCommPercent:    r.AgentCommPercent.Decimal(),
		TargetMarginPercent: r.TargetMarginPercent.Decimal(),
		ActualQuotedPrice:   r.ActualQuotedPrice.Ptr(),
		Remark:              r.Remark,
	}, nil
}

func (r CostingLineRequest) toInput() costing.LineInput {
	return costing.LineInput{
		Description:  strings.TrimSpace(r.Description),
		Supplier:     strings.TrimSpace(r.Supplier),
		Unit:         strings.TrimSpace(r.Unit),
		UnitPrice:    r.UnitPrice.Ptr(),
		Consumption:  r.Consumption.Ptr(),
		VATRefund:    r.VATRefund,
		VATPercent:   r.VATPercent.Decimal(),
		ExchangeRate: r.ExchangeRate.Ptr(),
	}
}

// applySegments replaces the lines of every segment named in the map
func applySegments(sheet *costing.CostingSheet, segments map[string][]CostingLineRequest) error {
	for name, lines := range segments {
		seg, err := costing.ParseSegment(name)
		if err != nil {
			return err
		}
		inputs := make([]costing.LineInput, 0, len(lines))
		for _, l := range lines {
			inputs = append(inputs, l.toInput())
		}
		if err := sheet.SetLines(seg, inputs); err != nil {
			return err
		}
	}
	return nil
}

// ==================== Responses ====================

// LineResponse is a costing line with its evaluated cost
type LineResponse struct {
	ID            uuid.UUID        `json:"id"`
	Description   string           `json:"description"`
	Supplier      string           `json:"supplier"`
	Unit          string           `json:"unit"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	Consumption   *decimal.Decimal `json:"consumption"`
	VATRefund     bool             `json:"vat_refund"`
	VATPercent    decimal.Decimal  `json:"vat_percent"`
	ExchangeRate  *decimal.Decimal `json:"exchange_rate"`
	EffectiveRate decimal.Decimal  `json:"effective_rate"`
	CostLocal     decimal.Decimal  `json:"cost_local"`
	CostQuoted    decimal.Decimal  `json:"cost_quoted"`
}

// SegmentResponse is one segment with its subtotal
type SegmentResponse struct {
	Segment     string          `json:"segment"`
	LineCount   int             `json:"line_count"`
	TotalLocal  decimal.Decimal `json:"total_local"`
	TotalQuoted decimal.Decimal `json:"total_quoted"`
	Lines       []LineResponse  `json:"lines"`
}

// PricingResponse holds the resolved price and profit of a sheet
type PricingResponse struct {
	TotalLocal           decimal.Decimal  `json:"total_local"`
	TotalQuoted          decimal.Decimal  `json:"total_quoted"`
	AgentCommAmount      decimal.Decimal  `json:"agent_comm_amount"`
	AutoSellingPrice     decimal.Decimal  `json:"auto_selling_price"`
	EffectivePrice       decimal.Decimal  `json:"effective_price"`
	PriceOverridden      bool             `json:"price_overridden"`
	GrossProfit          decimal.Decimal  `json:"gross_profit"`
	GrossProfitPercent   decimal.Decimal  `json:"gross_profit_percent"`
	ImpliedMarginPercent *decimal.Decimal `json:"implied_margin_percent"` // set when the price is overridden
}

// SheetResponse is one costing version with its computed figures
type SheetResponse struct {
	ID                  uuid.UUID         `json:"id"`
	SubjectID           uuid.UUID         `json:"subject_id"`
	RevisionNo          int               `json:"revision_no"`
	VersionLabel        string            `json:"version_label"`
	SourceID            *uuid.UUID        `json:"source_id"`
	IsActive            bool              `json:"is_active"`
	LocalCurrency       string            `json:"local_currency"`
	QuoteCurrency       string            `json:"quote_currency"`
	DefaultExchangeRate decimal.Decimal   `json:"default_exchange_rate"`
	AgentCommPercent    decimal.Decimal   `json:"agent_comm_percent"`
	TargetMarginPercent decimal.Decimal   `json:"target_margin_percent"`
	ActualQuotedPrice   *decimal.Decimal  `json:"actual_quoted_price"`
	Remark              string            `json:"remark"`
	Segments            []SegmentResponse `json:"segments"`
	Pricing             PricingResponse   `json:"pricing"`
	Version             int               `json:"version"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// VersionSummaryResponse lists one version in a subject's history
type VersionSummaryResponse struct {
	ID             uuid.UUID       `json:"id"`
	RevisionNo     int             `json:"revision_no"`
	VersionLabel   string          `json:"version_label"`
	SourceID       *uuid.UUID      `json:"source_id"`
	IsActive       bool            `json:"is_active"`
	LineCount      int             `json:"line_count"`
	TotalQuoted    decimal.Decimal `json:"total_quoted"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CreateVersionResponse returns the refreshed history and the new version
type CreateVersionResponse struct {
	Versions []VersionSummaryResponse `json:"versions"`
	Costing  *SheetResponse           `json:"costing"`
}

// ToSheetResponse renders a sheet with its computed figures. Money is rounded
// to 2 places and percentages to 2 places; inputs are returned as stored.
func ToSheetResponse(sheet *costing.CostingSheet, computed *costing.Computed, isActive bool) SheetResponse {
	resp := SheetResponse{
		ID:                  sheet.ID,
		SubjectID:           sheet.SubjectID,
		RevisionNo:          sheet.RevisionNo,
		VersionLabel:        sheet.VersionLabel,
		SourceID:            sheet.SourceID,
		IsActive:            isActive,
		LocalCurrency:       sheet.LocalCurrency.String(),
		QuoteCurrency:       sheet.QuoteCurrency.String(),
		DefaultExchangeRate: sheet.DefaultExchangeRate,
		AgentCommPercent:    sheet.AgentCommPercent,
		TargetMarginPercent: sheet.TargetMarginPercent,
		ActualQuotedPrice:   sheet.ActualQuotedPrice,
		Remark:              sheet.Remark,
		Version:             sheet.Version,
		CreatedAt:           sheet.CreatedAt,
		UpdatedAt:           sheet.UpdatedAt,
	}

	costs := make(map[uuid.UUID]costing.LineCost, len(computed.Lines))
	for _, lc := range computed.Lines {
		costs[lc.LineID] = lc
	}

	resp.Segments = make([]SegmentResponse, 0, len(computed.Segments))
	for _, st := range computed.Segments {
		seg := SegmentResponse{
			Segment:     st.Segment.String(),
			LineCount:   st.LineCount,
			TotalLocal:  valueobject.RoundMoney(st.TotalLocal),
			TotalQuoted: valueobject.RoundMoney(st.TotalQuoted),
			Lines:       make([]LineResponse, 0, st.LineCount),
		}
		for _, l := range sheet.Lines(st.Segment) {
			lc := costs[l.ID]
			seg.Lines = append(seg.Lines, LineResponse{
				ID:            l.ID,
				Description:   l.Description,
				Supplier:      l.Supplier,
				Unit:          l.Unit,
				UnitPrice:     l.UnitPrice,
				Consumption:   l.Consumption,
				VATRefund:     l.VATRefund,
				VATPercent:    l.VATPercent,
				ExchangeRate:  l.ExchangeRate,
				EffectiveRate: lc.EffectiveRate,
				CostLocal:     valueobject.RoundMoney(lc.CostLocal),
				CostQuoted:    valueobject.RoundMoney(lc.CostQuoted),
			})
		}
		resp.Segments = append(resp.Segments, seg)
	}

	resp.Pricing = PricingResponse{
		TotalLocal:         valueobject.RoundMoney(computed.TotalLocal),
		TotalQuoted:        valueobject.RoundMoney(computed.TotalQuoted),
		AgentCommAmount:    valueobject.RoundMoney(computed.AgentCommAmount),
		AutoSellingPrice:   valueobject.RoundMoney(computed.AutoSellingPrice),
		EffectivePrice:     valueobject.RoundMoney(computed.EffectivePrice),
		PriceOverridden:    computed.PriceOverridden,
		GrossProfit:        valueobject.RoundMoney(computed.GrossProfit),
		GrossProfitPercent: valueobject.RoundPercent(computed.GrossProfitPercent),
	}
	if computed.PriceOverridden {
		implied := costing.ImpliedMargin(computed.TotalQuoted, computed.AgentCommAmount, computed.EffectivePrice)
		resp.Pricing.ImpliedMarginPercent = valueobject.RoundPercentPtr(&implied)
	}
	return resp
}

// ToVersionSummaries renders a history in revision order
func ToVersionSummaries(history costing.VersionHistory) []VersionSummaryResponse {
	out := make([]VersionSummaryResponse, 0, len(history))
	for _, v := range history {
		item := VersionSummaryResponse{
			ID:           v.ID,
			RevisionNo:   v.RevisionNo,
			VersionLabel: v.VersionLabel,
			SourceID:     v.SourceID,
			IsActive:     history.IsActive(v.ID),
			LineCount:    v.LineCount(),
			CreatedAt:    v.CreatedAt,
		}
		if computed, err := v.Compute(); err == nil {
			item.TotalQuoted = valueobject.RoundMoney(computed.TotalQuoted)
			item.EffectivePrice = valueobject.RoundMoney(computed.EffectivePrice)
		}
		out = append(out, item)
	}
	return out
}
