package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	reportapp "github.com/erp/garment/internal/application/report"
	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/infrastructure/export"
	"github.com/erp/garment/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPnLService struct {
	mock.Mock
}

func (m *MockPnLService) GetOrderPnL(ctx context.Context, tenantID, poID uuid.UUID) (*reportapp.OrderPnLResponse, error) {
	args := m.Called(ctx, tenantID, poID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.OrderPnLResponse), args.Error(1)
}

func (m *MockPnLService) GetColorPnL(ctx context.Context, tenantID, poID uuid.UUID) (*reportapp.ColorPnLResponse, error) {
	args := m.Called(ctx, tenantID, poID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.ColorPnLResponse), args.Error(1)
}

func (m *MockPnLService) GetPeriodPnL(ctx context.Context, tenantID uuid.UUID, q reportapp.PeriodQuery) (*reportapp.PeriodPnLResponse, error) {
	args := m.Called(ctx, tenantID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.PeriodPnLResponse), args.Error(1)
}

func (m *MockPnLService) ExportPeriodPnL(ctx context.Context, tenantID uuid.UUID, q reportapp.PeriodQuery) ([]byte, string, error) {
	args := m.Called(ctx, tenantID, q)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func pnlRouter(svc PnLService) *gin.Engine {
	h := NewPnLHandler(svc)
	r := newTestRouter()
	r.GET("/pnl/orders/:id", h.GetOrderPnL)
	r.GET("/pnl/orders/:id/colors", h.GetColorPnL)
	r.GET("/pnl/periods", h.GetPeriodPnL)
	r.GET("/pnl/periods/export", h.ExportPeriodPnL)
	return r
}

func TestPnLHandler_GetOrderPnL(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(MockPnLService)
		id := uuid.New()
		svc.On("GetOrderPnL", mock.Anything, testTenant, id).Return(&reportapp.OrderPnLResponse{
			POID:       id,
			PONumber:   "PO-1",
			EstRevenue: decimal.RequireFromString("2000"),
		}, nil)

		w := doRequest(pnlRouter(svc), http.MethodGet, "/pnl/orders/"+id.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"po_number":"PO-1"`)
		assert.Contains(t, w.Body.String(), `"act_revenue":null`)
	})

	t.Run("missing order is 404", func(t *testing.T) {
		svc := new(MockPnLService)
		id := uuid.New()
		svc.On("GetOrderPnL", mock.Anything, testTenant, id).Return(nil, nil)
		w := doRequest(pnlRouter(svc), http.MethodGet, "/pnl/orders/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing rate is 422", func(t *testing.T) {
		svc := new(MockPnLService)
		id := uuid.New()
		svc.On("GetOrderPnL", mock.Anything, testTenant, id).
			Return(nil, shared.NewDomainError(shared.ErrMissingExchangeRate.Code, "Missing exchange rate for PO PO-1"))

		w := doRequest(pnlRouter(svc), http.MethodGet, "/pnl/orders/"+id.String(), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeMissingExchangeRate, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "PO-1")
	})

	t.Run("tenant header is passed through", func(t *testing.T) {
		svc := new(MockPnLService)
		tenantID, id := uuid.New(), uuid.New()
		svc.On("GetOrderPnL", mock.Anything, tenantID, id).Return(nil, nil)

		r := pnlRouter(svc)
		req := newRequestWithTenant(http.MethodGet, "/pnl/orders/"+id.String(), tenantID)
		w := serve(r, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		svc.AssertExpectations(t)
	})
}

func TestPnLHandler_GetColorPnL(t *testing.T) {
	svc := new(MockPnLService)
	id := uuid.New()
	svc.On("GetColorPnL", mock.Anything, testTenant, id).Return(&reportapp.ColorPnLResponse{
		POID: id,
		Lines: []reportapp.ColorLineResponse{
			{StyleNo: "ST-1", Color: "NAVY", RevenueShare: decimal.RequireFromString("0.625")},
		},
		AmbiguousProductionOrders: []reportapp.AmbiguousMatchResponse{},
	}, nil)

	w := doRequest(pnlRouter(svc), http.MethodGet, "/pnl/orders/"+id.String()+"/colors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"revenue_share":"0.625"`)
}

func TestPnLHandler_GetPeriodPnL(t *testing.T) {
	t.Run("binds query", func(t *testing.T) {
		svc := new(MockPnLService)
		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		svc.On("GetPeriodPnL", mock.Anything, testTenant, mock.MatchedBy(func(q reportapp.PeriodQuery) bool {
			return q.Granularity == "quarterly" && q.StartDate != nil && q.StartDate.Equal(start) && q.EndDate == nil
		})).Return(&reportapp.PeriodPnLResponse{Granularity: "QUARTERLY", Periods: []reportapp.PeriodBucketResponse{}}, nil)

		w := doRequest(pnlRouter(svc), http.MethodGet, "/pnl/periods?granularity=quarterly&start_date=2025-01-01", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"granularity":"QUARTERLY"`)
		svc.AssertExpectations(t)
	})

	t.Run("bad date", func(t *testing.T) {
		w := doRequest(pnlRouter(new(MockPnLService)), http.MethodGet, "/pnl/periods?start_date=01/02/2025", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad granularity", func(t *testing.T) {
		svc := new(MockPnLService)
		svc.On("GetPeriodPnL", mock.Anything, testTenant, mock.Anything).Return(nil, shared.ErrInvalidGranularity)
		w := doRequest(pnlRouter(svc), http.MethodGet, "/pnl/periods?granularity=weekly", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidGranularity, decodeResponse(t, w).Error.Code)
	})
}

func TestPnLHandler_ExportPeriodPnL(t *testing.T) {
	t.Run("downloads workbook", func(t *testing.T) {
		svc := new(MockPnLService)
		svc.On("ExportPeriodPnL", mock.Anything, testTenant, mock.Anything).Return([]byte("PK\x03\x04"), "pnl_monthly.xlsx", nil)

		w := doRequest(pnlRouter(svc), http.MethodGet, "/pnl/periods/export", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="pnl_monthly.xlsx"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "PK\x03\x04", w.Body.String())
	})

	t.Run("error renders json", func(t *testing.T) {
		svc := new(MockPnLService)
		svc.On("ExportPeriodPnL", mock.Anything, testTenant, mock.Anything).Return(nil, "", shared.ErrMissingExchangeRate)
		w := doRequest(pnlRouter(svc), http.MethodGet, "/pnl/periods/export", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, w.Header().Get("Content-Disposition"))
	})
}
