package handler

import (
	"context"
	"net/http"
	"testing"

	costingapp "github.com/erp/garment/internal/application/costing"
	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCostingService struct {
	mock.Mock
}

func (m *MockCostingService) CreateInitial(ctx context.Context, tenantID uuid.UUID, req costingapp.CreateSheetRequest) (*costingapp.SheetResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costingapp.SheetResponse), args.Error(1)
}

func (m *MockCostingService) GetVersions(ctx context.Context, tenantID, subjectID uuid.UUID) ([]costingapp.VersionSummaryResponse, error) {
	args := m.Called(ctx, tenantID, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]costingapp.VersionSummaryResponse), args.Error(1)
}

func (m *MockCostingService) GetActive(ctx context.Context, tenantID, subjectID uuid.UUID) (*costingapp.SheetResponse, error) {
	args := m.Called(ctx, tenantID, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costingapp.SheetResponse), args.Error(1)
}

func (m *MockCostingService) GetSheet(ctx context.Context, tenantID, id uuid.UUID) (*costingapp.SheetResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costingapp.SheetResponse), args.Error(1)
}

func (m *MockCostingService) UpdateSheet(ctx context.Context, tenantID, id uuid.UUID, req costingapp.UpdateSheetRequest) (*costingapp.SheetResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costingapp.SheetResponse), args.Error(1)
}

func (m *MockCostingService) CreateVersion(ctx context.Context, tenantID, sourceID uuid.UUID, req costingapp.CreateVersionRequest) (*costingapp.CreateVersionResponse, error) {
	args := m.Called(ctx, tenantID, sourceID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costingapp.CreateVersionResponse), args.Error(1)
}

func costingRouter(svc CostingService) *gin.Engine {
	h := NewCostingHandler(svc)
	r := newTestRouter()
	r.POST("/costing/sheets", h.CreateSheet)
	r.GET("/costing/subjects/:subjectId/versions", h.ListVersions)
	r.GET("/costing/subjects/:subjectId/active", h.GetActive)
	r.GET("/costing/sheets/:id", h.GetSheet)
	r.PUT("/costing/sheets/:id", h.UpdateSheet)
	r.POST("/costing/sheets/:id/versions", h.CreateVersion)
	return r
}

func sampleSheet() *costingapp.SheetResponse {
	return &costingapp.SheetResponse{
		ID:            uuid.New(),
		SubjectID:     uuid.New(),
		RevisionNo:    1,
		IsActive:      true,
		LocalCurrency: "CNY",
		QuoteCurrency: "USD",
		Pricing: costingapp.PricingResponse{
			TotalQuoted:    decimal.RequireFromString("6.29"),
			EffectivePrice: decimal.RequireFromString("8.25"),
		},
	}
}

func TestCostingHandler_CreateSheet(t *testing.T) {
	t.Run("creates with lenient numbers", func(t *testing.T) {
		svc := new(MockCostingService)
		sheet := sampleSheet()
		svc.On("CreateInitial", mock.Anything, testTenant, mock.MatchedBy(func(req costingapp.CreateSheetRequest) bool {
			return req.SubjectID == sheet.SubjectID &&
				req.DefaultExchangeRate.Decimal().Equal(decimal.NewFromInt(7)) &&
				req.AgentCommPercent.Decimal().IsZero() &&
				len(req.Segments["FABRIC"]) == 1
		})).Return(sheet, nil)

		body := `{"subject_id":"` + sheet.SubjectID.String() + `","local_currency":"CNY","quote_currency":"USD",` +
			`"default_exchange_rate":"7","agent_comm_percent":"n/a",` +
			`"segments":{"FABRIC":[{"description":"Shell","unit_price":20,"consumption":"1.5"}]}}`
		w := doRequest(costingRouter(svc), http.MethodPost, "/costing/sheets", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"effective_price":"8.25"`)
		svc.AssertExpectations(t)
	})

	t.Run("validation failure lists fields", func(t *testing.T) {
		svc := new(MockCostingService)
		w := doRequest(costingRouter(svc), http.MethodPost, "/costing/sheets", `{"local_currency":"CNY"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		fields := make([]string, 0, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"subject_id", "quote_currency"}, fields)
		svc.AssertNotCalled(t, "CreateInitial", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := doRequest(costingRouter(new(MockCostingService)), http.MethodPost, "/costing/sheets", `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})

	t.Run("target margin of 100 is rejected", func(t *testing.T) {
		svc := new(MockCostingService)
		svc.On("CreateInitial", mock.Anything, testTenant, mock.Anything).Return(nil, shared.ErrInvalidTargetMargin)
		body := `{"subject_id":"` + uuid.NewString() + `","local_currency":"CNY","quote_currency":"USD","target_margin_percent":100}`
		w := doRequest(costingRouter(svc), http.MethodPost, "/costing/sheets", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidTargetMargin, decodeResponse(t, w).Error.Code)
	})
}

func TestCostingHandler_Reads(t *testing.T) {
	t.Run("versions", func(t *testing.T) {
		svc := new(MockCostingService)
		subjectID := uuid.New()
		svc.On("GetVersions", mock.Anything, testTenant, subjectID).Return([]costingapp.VersionSummaryResponse{
			{RevisionNo: 1}, {RevisionNo: 2, IsActive: true},
		}, nil)

		w := doRequest(costingRouter(svc), http.MethodGet, "/costing/subjects/"+subjectID.String()+"/versions", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeResponse(t, w).Data, 2)
	})

	t.Run("active missing is 404", func(t *testing.T) {
		svc := new(MockCostingService)
		subjectID := uuid.New()
		svc.On("GetActive", mock.Anything, testTenant, subjectID).Return(nil, nil)

		w := doRequest(costingRouter(svc), http.MethodGet, "/costing/subjects/"+subjectID.String()+"/active", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
	})

	t.Run("sheet found", func(t *testing.T) {
		svc := new(MockCostingService)
		sheet := sampleSheet()
		svc.On("GetSheet", mock.Anything, testTenant, sheet.ID).Return(sheet, nil)

		w := doRequest(costingRouter(svc), http.MethodGet, "/costing/sheets/"+sheet.ID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"revision_no":1`)
	})

	t.Run("sheet missing is 404", func(t *testing.T) {
		svc := new(MockCostingService)
		id := uuid.New()
		svc.On("GetSheet", mock.Anything, testTenant, id).Return(nil, nil)
		w := doRequest(costingRouter(svc), http.MethodGet, "/costing/sheets/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad subject id", func(t *testing.T) {
		w := doRequest(costingRouter(new(MockCostingService)), http.MethodGet, "/costing/subjects/abc/active", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCostingHandler_UpdateSheet(t *testing.T) {
	t.Run("historical version is immutable", func(t *testing.T) {
		svc := new(MockCostingService)
		id := uuid.New()
		svc.On("UpdateSheet", mock.Anything, testTenant, id, mock.Anything).
			Return(nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Only the active costing version can be edited"))

		w := doRequest(costingRouter(svc), http.MethodPut, "/costing/sheets/"+id.String(), `{"segments":{}}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, decodeResponse(t, w).Error.Code)
	})

	t.Run("updates active version", func(t *testing.T) {
		svc := new(MockCostingService)
		sheet := sampleSheet()
		svc.On("UpdateSheet", mock.Anything, testTenant, sheet.ID, mock.MatchedBy(func(req costingapp.UpdateSheetRequest) bool {
			return req.Settings == nil && len(req.Segments["TRIMS"]) == 1
		})).Return(sheet, nil)

		w := doRequest(costingRouter(svc), http.MethodPut, "/costing/sheets/"+sheet.ID.String(), `{"segments":{"TRIMS":[{"description":"Button"}]}}`)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}

func TestCostingHandler_CreateVersion(t *testing.T) {
	t.Run("without body", func(t *testing.T) {
		svc := new(MockCostingService)
		id := uuid.New()
		created := sampleSheet()
		created.RevisionNo = 2
		svc.On("CreateVersion", mock.Anything, testTenant, id, costingapp.CreateVersionRequest{}).Return(&costingapp.CreateVersionResponse{
			Versions: []costingapp.VersionSummaryResponse{{RevisionNo: 1}, {RevisionNo: 2, IsActive: true}},
			Costing:  created,
		}, nil)

		w := doRequest(costingRouter(svc), http.MethodPost, "/costing/sheets/"+id.String()+"/versions", nil)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"versions"`)
		assert.Contains(t, w.Body.String(), `"costing"`)
	})

	t.Run("with label", func(t *testing.T) {
		svc := new(MockCostingService)
		id := uuid.New()
		svc.On("CreateVersion", mock.Anything, testTenant, id, costingapp.CreateVersionRequest{VersionLabel: "v2 cheaper trims"}).
			Return(&costingapp.CreateVersionResponse{Costing: sampleSheet()}, nil)

		w := doRequest(costingRouter(svc), http.MethodPost, "/costing/sheets/"+id.String()+"/versions", `{"version_label":"v2 cheaper trims"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing source", func(t *testing.T) {
		svc := new(MockCostingService)
		id := uuid.New()
		svc.On("CreateVersion", mock.Anything, testTenant, id, mock.Anything).Return(nil, shared.ErrNotFound)
		w := doRequest(costingRouter(svc), http.MethodPost, "/costing/sheets/"+id.String()+"/versions", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
