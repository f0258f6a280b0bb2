package costing

import (
	"strconv"
	"strings"

	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostingSheet is one version of a costing worksheet for a style or costing
// request. Each version owns its own line slices.
type CostingSheet struct {
	shared.TenantAggregateRoot
	SubjectID           uuid.UUID
	RevisionNo          int
	VersionLabel        string
	SourceID            *uuid.UUID
	LocalCurrency       valueobject.Currency
	QuoteCurrency       valueobject.Currency
	DefaultExchangeRate decimal.Decimal // 1 quote unit = rate local units
	AgentCommPercent    decimal.Decimal
	TargetMarginPercent decimal.Decimal
	ActualQuotedPrice   *decimal.Decimal
	Remark              string
	Segments            map[Segment][]CostingLine
}

// SheetSettings are the sheet-level inputs of a costing version
type SheetSettings struct {
	VersionLabel        string
	LocalCurrency       valueobject.Currency
	QuoteCurrency       valueobject.Currency
	DefaultExchangeRate decimal.Decimal
	AgentCommPercent    decimal.Decimal
	TargetMarginPercent decimal.Decimal
	ActualQuotedPrice   *decimal.Decimal
	Remark              string
}

// NewCostingSheet creates revision 1 of a subject's costing sheet
func NewCostingSheet(tenantID, subjectID uuid.UUID, settings SheetSettings) (*CostingSheet, error) {
	if subjectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject ID cannot be empty")
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	label := settings.VersionLabel
	if label == "" {
		label = "V1"
	}
	return &CostingSheet{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SubjectID:           subjectID,
		RevisionNo:          1,
		VersionLabel:        label,
		LocalCurrency:       settings.LocalCurrency,
		QuoteCurrency:       settings.QuoteCurrency,
		DefaultExchangeRate: settings.DefaultExchangeRate,
		AgentCommPercent:    settings.AgentCommPercent,
		TargetMarginPercent: settings.TargetMarginPercent,
		ActualQuotedPrice:   valueobject.ClonePtr(settings.ActualQuotedPrice),
		Remark:              settings.Remark,
		Segments:            make(map[Segment][]CostingLine),
	}, nil
}

func validateSettings(s SheetSettings) error {
	if !s.LocalCurrency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", "Invalid local currency: "+s.LocalCurrency.String())
	}
	if !s.QuoteCurrency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", "Invalid quote currency: "+s.QuoteCurrency.String())
	}
	if !s.DefaultExchangeRate.IsPositive() {
		return shared.NewDomainError(shared.ErrMissingExchangeRate.Code, "Default exchange rate must be positive")
	}
	if s.AgentCommPercent.IsNegative() {
		return shared.NewDomainError("INVALID_AGENT_COMMISSION", "Agent commission cannot be negative")
	}
	if err := ValidateTargetMargin(s.TargetMarginPercent); err != nil {
		return err
	}
	if s.ActualQuotedPrice != nil && s.ActualQuotedPrice.IsNegative() {
		return shared.NewDomainError("INVALID_QUOTED_PRICE", "Quoted price cannot be negative")
	}
	return nil
}

// Settings returns the current sheet-level inputs
func (s *CostingSheet) Settings() SheetSettings {
	return SheetSettings{
		VersionLabel:        s.VersionLabel,
		LocalCurrency:       s.LocalCurrency,
		QuoteCurrency:       s.QuoteCurrency,
		DefaultExchangeRate: s.DefaultExchangeRate,
		AgentCommPercent:    s.AgentCommPercent,
		TargetMarginPercent: s.TargetMarginPercent,
		ActualQuotedPrice:   valueobject.ClonePtr(s.ActualQuotedPrice),
		Remark:              s.Remark,
	}
}

// UpdateSettings replaces the sheet-level inputs after validation
func (s *CostingSheet) UpdateSettings(settings SheetSettings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}
	if settings.VersionLabel != "" {
		s.VersionLabel = settings.VersionLabel
	}
	s.LocalCurrency = settings.LocalCurrency
	s.QuoteCurrency = settings.QuoteCurrency
	s.DefaultExchangeRate = settings.DefaultExchangeRate
	s.AgentCommPercent = settings.AgentCommPercent
	s.TargetMarginPercent = settings.TargetMarginPercent
	s.ActualQuotedPrice = valueobject.ClonePtr(settings.ActualQuotedPrice)
	s.Remark = settings.Remark
	s.Touch()
	s.IncrementVersion()
	return nil
}

// SetLines replaces every line of one segment
func (s *CostingSheet) SetLines(segment Segment, inputs []LineInput) error {
	if !segment.IsValid() {
		return shared.NewDomainError(shared.ErrInvalidSegment.Code, "Unknown costing segment: "+segment.String())
	}
	lines := make([]CostingLine, 0, len(inputs))
	for _, in := range inputs {
		line, err := NewCostingLine(in)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}
	if s.Segments == nil {
		s.Segments = make(map[Segment][]CostingLine)
	}
	s.Segments[segment] = lines
	s.Touch()
	return nil
}

// AddLine appends one line to a segment
func (s *CostingSheet) AddLine(segment Segment, in LineInput) (CostingLine, error) {
	if !segment.IsValid() {
		return CostingLine{}, shared.NewDomainError(shared.ErrInvalidSegment.Code, "Unknown costing segment: "+segment.String())
	}
	line, err := NewCostingLine(in)
	if err != nil {
		return CostingLine{}, err
	}
	if s.Segments == nil {
		s.Segments = make(map[Segment][]CostingLine)
	}
	s.Segments[segment] = append(s.Segments[segment], line)
	s.Touch()
	return line, nil
}

// Lines returns the lines of a segment
func (s *CostingSheet) Lines(segment Segment) []CostingLine {
	return s.Segments[segment]
}

// LineCount returns the number of lines across all segments
func (s *CostingSheet) LineCount() int {
	n := 0
	for _, lines := range s.Segments {
		n += len(lines)
	}
	return n
}

// Clone deep-copies the sheet into a new version with the given revision.
// The clone records the receiver as its source.
func (s *CostingSheet) Clone(revisionNo int, label string) *CostingSheet {
	sourceID := s.ID
	if strings.TrimSpace(label) == "" {
		label = defaultLabel(revisionNo)
	}
	clone := &CostingSheet{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(s.TenantID),
		SubjectID:           s.SubjectID,
		RevisionNo:          revisionNo,
		VersionLabel:        label,
		SourceID:            &sourceID,
		LocalCurrency:       s.LocalCurrency,
		QuoteCurrency:       s.QuoteCurrency,
		DefaultExchangeRate: s.DefaultExchangeRate,
		AgentCommPercent:    s.AgentCommPercent,
		TargetMarginPercent: s.TargetMarginPercent,
		ActualQuotedPrice:   valueobject.ClonePtr(s.ActualQuotedPrice),
		Remark:              s.Remark,
		Segments:            make(map[Segment][]CostingLine, len(s.Segments)),
	}
	for seg, lines := range s.Segments {
		copied := make([]CostingLine, len(lines))
		for i, line := range lines {
			copied[i] = line.Clone()
		}
		clone.Segments[seg] = copied
	}
	return clone
}

func defaultLabel(revisionNo int) string {
	return "V" + strconv.Itoa(revisionNo)
}

// SegmentTotal is the subtotal of one segment
type SegmentTotal struct {
	Segment     Segment
	LineCount   int
	TotalLocal  decimal.Decimal
	TotalQuoted decimal.Decimal
}

// LineCost is the evaluated cost of one line
type LineCost struct {
	Segment       Segment
	LineID        uuid.UUID
	EffectiveRate decimal.Decimal
	CostLocal     decimal.Decimal
	CostQuoted    decimal.Decimal
}

// Computed holds the derived figures of a sheet. Values keep full precision.
type Computed struct {
	Segments           []SegmentTotal
	Lines              []LineCost
	TotalLocal         decimal.Decimal
	TotalQuoted        decimal.Decimal
	AgentCommAmount    decimal.Decimal
	AutoSellingPrice   decimal.Decimal
	EffectivePrice     decimal.Decimal
	PriceOverridden    bool
	GrossProfit        decimal.Decimal
	GrossProfitPercent decimal.Decimal
}

// Compute evaluates every line and resolves the selling price. It has no side
// effects on the sheet.
func (s *CostingSheet) Compute() (*Computed, error) {
	if err := ValidateTargetMargin(s.TargetMarginPercent); err != nil {
		return nil, err
	}

	out := &Computed{
		Segments: make([]SegmentTotal, 0, len(AllSegments)),
		Lines:    make([]LineCost, 0, s.LineCount()),
	}
	for _, seg := range AllSegments {
		subtotal := SegmentTotal{Segment: seg, TotalLocal: decimal.Zero, TotalQuoted: decimal.Zero}
		for _, line := range s.Segments[seg] {
			rate, err := line.EffectiveRate(s.DefaultExchangeRate)
			if err != nil {
				return nil, err
			}
			local := line.CostLocal()
			quoted := local.Div(rate)
			out.Lines = append(out.Lines, LineCost{
				Segment:       seg,
				LineID:        line.ID,
				EffectiveRate: rate,
				CostLocal:     local,
				CostQuoted:    quoted,
			})
			subtotal.LineCount++
			subtotal.TotalLocal = subtotal.TotalLocal.Add(local)
			subtotal.TotalQuoted = subtotal.TotalQuoted.Add(quoted)
		}
		out.Segments = append(out.Segments, subtotal)
		out.TotalLocal = out.TotalLocal.Add(subtotal.TotalLocal)
		out.TotalQuoted = out.TotalQuoted.Add(subtotal.TotalQuoted)
	}

	out.AgentCommAmount = AgentCommission(out.TotalQuoted, s.AgentCommPercent)
	auto, err := SellingPrice(out.TotalQuoted, s.AgentCommPercent, s.TargetMarginPercent)
	if err != nil {
		return nil, err
	}
	out.AutoSellingPrice = auto
	out.EffectivePrice = auto
	if s.ActualQuotedPrice != nil {
		out.EffectivePrice = *s.ActualQuotedPrice
		out.PriceOverridden = true
	}
	out.GrossProfit = out.EffectivePrice.Sub(out.TotalQuoted).Sub(out.AgentCommAmount)
	out.GrossProfitPercent = valueobject.SafePercent(out.GrossProfit, out.EffectivePrice)
	return out, nil
}
