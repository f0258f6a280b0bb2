package costing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/erp/garment/internal/domain/costing"
	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockCostingSheetRepository is a mock implementation of CostingSheetRepository
type MockCostingSheetRepository struct {
	mock.Mock
}

func (m *MockCostingSheetRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*costing.CostingSheet, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.CostingSheet), args.Error(1)
}

func (m *MockCostingSheetRepository) FindBySubject(ctx context.Context, tenantID, subjectID uuid.UUID) ([]*costing.CostingSheet, error) {
	args := m.Called(ctx, tenantID, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*costing.CostingSheet), args.Error(1)
}

func (m *MockCostingSheetRepository) FindBySubjectAndRevision(ctx context.Context, tenantID, subjectID uuid.UUID, revisionNo int) (*costing.CostingSheet, error) {
	args := m.Called(ctx, tenantID, subjectID, revisionNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.CostingSheet), args.Error(1)
}

func (m *MockCostingSheetRepository) Create(ctx context.Context, sheet *costing.CostingSheet) error {
	args := m.Called(ctx, sheet)
	return args.Error(0)
}

func (m *MockCostingSheetRepository) Update(ctx context.Context, sheet *costing.CostingSheet) error {
	args := m.Called(ctx, sheet)
	return args.Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func num(s string) valueobject.LenientNumber {
	return valueobject.NewLenientNumber(dec(s))
}

func newSheet(t *testing.T, tenantID, subjectID uuid.UUID) *costing.CostingSheet {
	t.Helper()
	sheet, err := costing.NewCostingSheet(tenantID, subjectID, costing.SheetSettings{
		LocalCurrency:       valueobject.CNY,
		QuoteCurrency:       valueobject.USD,
		DefaultExchangeRate: dec("7"),
		AgentCommPercent:    dec("5"),
		TargetMarginPercent: dec("20"),
	})
	require.NoError(t, err)
	price, cons := dec("20"), dec("1.5")
	_, err = sheet.AddLine(costing.SegmentFabric, costing.LineInput{Description: "Shell", UnitPrice: &price, Consumption: &cons})
	require.NoError(t, err)
	return sheet
}

func settingsRequest() SheetSettingsRequest {
	return SheetSettingsRequest{
		LocalCurrency:       "cny",
		QuoteCurrency:       "USD",
		DefaultExchangeRate: num("7"),
		AgentCommPercent:    num("5"),
		TargetMarginPercent: num("20"),
	}
}

func TestCostingService_CreateInitial(t *testing.T) {
	ctx := context.Background()
	tenantID, subjectID := uuid.New(), uuid.New()

	t.Run("creates revision 1 with computed pricing", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, zap.NewNop())

		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{}, nil)
		repo.On("FindBySubjectAndRevision", mock.Anything, tenantID, subjectID, 1).Return(nil, shared.ErrNotFound)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*costing.CostingSheet")).Return(nil)

		resp, err := svc.CreateInitial(ctx, tenantID, CreateSheetRequest{
			SubjectID:            subjectID,
			SheetSettingsRequest: settingsRequest(),
			Segments: map[string][]CostingLineRequest{
				"fabric": {{Description: "Shell", UnitPrice: num("20"), Consumption: num("1.5")}},
				"LABOR":  {{Description: "CMT", UnitPrice: num("14"), Consumption: num("1")}},
			},
		})
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.Equal(t, 1, resp.RevisionNo)
		assert.Equal(t, "V1", resp.VersionLabel)
		assert.True(t, resp.IsActive)
		assert.Equal(t, "CNY", resp.LocalCurrency)
		// 30+14 = 44 CNY / 7 = 6.2857 USD
		assert.Equal(t, "44", resp.Pricing.TotalLocal.String())
		assert.Equal(t, "6.29", resp.Pricing.TotalQuoted.String())
		// (6.2857 * 1.05) / 0.8 = 8.25
		assert.Equal(t, "8.25", resp.Pricing.AutoSellingPrice.String())
		assert.False(t, resp.Pricing.PriceOverridden)
		assert.Nil(t, resp.Pricing.ImpliedMarginPercent)
		assert.Len(t, resp.Segments, len(costing.AllSegments))
		repo.AssertExpectations(t)
	})

	t.Run("returns active version when subject already has costing", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)

		existing := newSheet(t, tenantID, subjectID)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{existing}, nil)

		resp, err := svc.CreateInitial(ctx, tenantID, CreateSheetRequest{SubjectID: subjectID, SheetSettingsRequest: settingsRequest()})
		require.NoError(t, err)
		assert.Equal(t, existing.ID, resp.ID)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique violation returns the concurrently created record", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		core, logs := observer.New(zap.WarnLevel)
		svc := NewCostingService(repo, zap.New(core))

		winner := newSheet(t, tenantID, subjectID)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{}, nil)
		repo.On("FindBySubjectAndRevision", mock.Anything, tenantID, subjectID, 1).Return(nil, shared.ErrNotFound).Once()
		repo.On("Create", mock.Anything, mock.Anything).Return(shared.NewDomainError(shared.ErrAlreadyExists.Code, "duplicate")).Once()
		repo.On("FindBySubjectAndRevision", mock.Anything, tenantID, subjectID, 1).Return(winner, nil).Once()

		resp, err := svc.CreateInitial(ctx, tenantID, CreateSheetRequest{SubjectID: subjectID, SheetSettingsRequest: settingsRequest()})
		require.NoError(t, err)
		assert.Equal(t, winner.ID, resp.ID)
		assert.Equal(t, 1, logs.FilterMessageSnippet("concurrently").Len())
		repo.AssertExpectations(t)
	})

	t.Run("rejects target margin of 100", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{}, nil)

		req := CreateSheetRequest{SubjectID: subjectID, SheetSettingsRequest: settingsRequest()}
		req.TargetMarginPercent = num("100")

		resp, err := svc.CreateInitial(ctx, tenantID, req)
		assert.Nil(t, resp)
		assert.True(t, errors.Is(err, shared.ErrInvalidTargetMargin))
	})

	t.Run("rejects unknown segment", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{}, nil)

		_, err := svc.CreateInitial(ctx, tenantID, CreateSheetRequest{
			SubjectID:            subjectID,
			SheetSettingsRequest: settingsRequest(),
			Segments:             map[string][]CostingLineRequest{"embroidery": {{}}},
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidSegment))
	})

	t.Run("rejects invalid currency", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{}, nil)

		req := CreateSheetRequest{SubjectID: subjectID, SheetSettingsRequest: settingsRequest()}
		req.QuoteCurrency = "XXZ"

		_, err := svc.CreateInitial(ctx, tenantID, req)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_CURRENCY", domainErr.Code)
	})
}

func TestCostingService_GetActiveAndVersions(t *testing.T) {
	ctx := context.Background()
	tenantID, subjectID := uuid.New(), uuid.New()

	v1 := newSheet(t, tenantID, subjectID)
	v2 := v1.Clone(2, "")
	v3 := v2.Clone(3, "Buyer counter")

	t.Run("active is the highest revision", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{v3, v1, v2}, nil)

		resp, err := svc.GetActive(ctx, tenantID, subjectID)
		require.NoError(t, err)
		assert.Equal(t, v3.ID, resp.ID)
		assert.Equal(t, "Buyer counter", resp.VersionLabel)
	})

	t.Run("versions are ordered by revision", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{v2, v3, v1}, nil)

		versions, err := svc.GetVersions(ctx, tenantID, subjectID)
		require.NoError(t, err)
		require.Len(t, versions, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{versions[0].RevisionNo, versions[1].RevisionNo, versions[2].RevisionNo})
		assert.False(t, versions[0].IsActive)
		assert.True(t, versions[2].IsActive)
		assert.Equal(t, "V2", versions[1].VersionLabel)
		assert.Equal(t, v1.ID, *versions[1].SourceID)
	})

	t.Run("no costing yields nil", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{}, nil)

		resp, err := svc.GetActive(ctx, tenantID, subjectID)
		require.NoError(t, err)
		assert.Nil(t, resp)
	})
}

func TestCostingService_GetSheet(t *testing.T) {
	ctx := context.Background()
	tenantID, subjectID := uuid.New(), uuid.New()
	v1 := newSheet(t, tenantID, subjectID)
	v2 := v1.Clone(2, "")

	t.Run("historical version is not active", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, v1.ID).Return(v1, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{v1, v2}, nil)

		resp, err := svc.GetSheet(ctx, tenantID, v1.ID)
		require.NoError(t, err)
		assert.False(t, resp.IsActive)
	})

	t.Run("missing sheet yields nil", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		id := uuid.New()
		repo.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, shared.ErrNotFound)

		resp, err := svc.GetSheet(ctx, tenantID, id)
		require.NoError(t, err)
		assert.Nil(t, resp)
	})
}

func TestCostingService_UpdateSheet(t *testing.T) {
	ctx := context.Background()
	tenantID, subjectID := uuid.New(), uuid.New()

	t.Run("edits the active version", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		v1 := newSheet(t, tenantID, subjectID)
		before := v1.Version

		repo.On("FindByIDForTenant", mock.Anything, tenantID, v1.ID).Return(v1, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{v1}, nil)
		repo.On("Update", mock.Anything, v1).Return(nil)

		settings := settingsRequest()
		settings.ActualQuotedPrice = num("8")
		resp, err := svc.UpdateSheet(ctx, tenantID, v1.ID, UpdateSheetRequest{
			Settings: &settings,
			Segments: map[string][]CostingLineRequest{
				"trim": {{Description: "Zipper", UnitPrice: num("3.5"), Consumption: num("2")}},
			},
		})
		require.NoError(t, err)
		assert.True(t, resp.Pricing.PriceOverridden)
		assert.Equal(t, "8", resp.Pricing.EffectivePrice.String())
		require.NotNil(t, resp.Pricing.ImpliedMarginPercent)
		assert.Equal(t, resp.Pricing.GrossProfitPercent.String(), resp.Pricing.ImpliedMarginPercent.String())
		assert.Len(t, v1.Lines(costing.SegmentTrim), 1)
		assert.Len(t, v1.Lines(costing.SegmentFabric), 1, "segments not in the request are kept")
		assert.Greater(t, v1.Version, before)
		repo.AssertExpectations(t)
	})

	t.Run("historical version is immutable", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		v1 := newSheet(t, tenantID, subjectID)
		v2 := v1.Clone(2, "")

		repo.On("FindByIDForTenant", mock.Anything, tenantID, v1.ID).Return(v1, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{v1, v2}, nil)

		_, err := svc.UpdateSheet(ctx, tenantID, v1.ID, UpdateSheetRequest{})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing sheet is not found", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		id := uuid.New()
		repo.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, shared.ErrNotFound)

		_, err := svc.UpdateSheet(ctx, tenantID, id, UpdateSheetRequest{})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestCostingService_CreateVersion(t *testing.T) {
	ctx := context.Background()
	tenantID, subjectID := uuid.New(), uuid.New()

	t.Run("clones into the next revision", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		v1 := newSheet(t, tenantID, subjectID)
		v2 := v1.Clone(2, "")

		repo.On("FindByIDForTenant", mock.Anything, tenantID, v1.ID).Return(v1, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{v1, v2}, nil)
		repo.On("FindBySubjectAndRevision", mock.Anything, tenantID, subjectID, 3).Return(nil, shared.ErrNotFound)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(s *costing.CostingSheet) bool {
			return s.RevisionNo == 3 && s.SourceID != nil && *s.SourceID == v1.ID
		})).Return(nil)

		resp, err := svc.CreateVersion(ctx, tenantID, v1.ID, CreateVersionRequest{VersionLabel: "Retry"})
		require.NoError(t, err)
		require.Len(t, resp.Versions, 3)
		assert.Equal(t, 3, resp.Costing.RevisionNo)
		assert.Equal(t, "Retry", resp.Costing.VersionLabel)
		assert.True(t, resp.Costing.IsActive)
		assert.True(t, resp.Versions[2].IsActive)
		assert.NotEqual(t, v1.Lines(costing.SegmentFabric)[0].ID, resp.Costing.Segments[0].Lines[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("existing revision is returned instead of failing", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		v1 := newSheet(t, tenantID, subjectID)
		raced := v1.Clone(2, "")

		repo.On("FindByIDForTenant", mock.Anything, tenantID, v1.ID).Return(v1, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{v1}, nil)
		repo.On("FindBySubjectAndRevision", mock.Anything, tenantID, subjectID, 2).Return(raced, nil)

		resp, err := svc.CreateVersion(ctx, tenantID, v1.ID, CreateVersionRequest{})
		require.NoError(t, err)
		assert.Equal(t, raced.ID, resp.Costing.ID)
		assert.Len(t, resp.Versions, 2)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		repo := new(MockCostingSheetRepository)
		svc := NewCostingService(repo, nil)
		v1 := newSheet(t, tenantID, subjectID)
		boom := errors.New("connection reset")

		repo.On("FindByIDForTenant", mock.Anything, tenantID, v1.ID).Return(v1, nil)
		repo.On("FindBySubject", mock.Anything, tenantID, subjectID).Return([]*costing.CostingSheet{v1}, nil)
		repo.On("FindBySubjectAndRevision", mock.Anything, tenantID, subjectID, 2).Return(nil, shared.ErrNotFound)
		repo.On("Create", mock.Anything, mock.Anything).Return(boom)

		_, err := svc.CreateVersion(ctx, tenantID, v1.ID, CreateVersionRequest{})
		assert.ErrorIs(t, err, boom)
	})
}

func TestSheetResponse_JSONShape(t *testing.T) {
	sheet := newSheet(t, uuid.New(), uuid.New())
	computed, err := sheet.Compute()
	require.NoError(t, err)

	data, err := json.Marshal(ToSheetResponse(sheet, computed, true))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	pricing := body["pricing"].(map[string]any)
	assert.Equal(t, "4.29", pricing["total_quoted"])
	assert.Nil(t, body["actual_quoted_price"])
	assert.Contains(t, body, "segments")
}
