package handler

import (
	"context"
	"fmt"
	"net/http"

	reportapp "github.com/erp/garment/internal/application/report"
	"github.com/erp/garment/internal/infrastructure/export"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PnLService is the P&L application service
type PnLService interface {
	GetOrderPnL(ctx context.Context, tenantID, poID uuid.UUID) (*reportapp.OrderPnLResponse, error)
	GetColorPnL(ctx context.Context, tenantID, poID uuid.UUID) (*reportapp.ColorPnLResponse, error)
	GetPeriodPnL(ctx context.Context, tenantID uuid.UUID, q reportapp.PeriodQuery) (*reportapp.PeriodPnLResponse, error)
	ExportPeriodPnL(ctx context.Context, tenantID uuid.UUID, q reportapp.PeriodQuery) ([]byte, string, error)
}

// PnLHandler handles order, color and period P&L endpoints
type PnLHandler struct {
	BaseHandler
	service PnLService
}

// NewPnLHandler creates a new PnLHandler
func NewPnLHandler(service PnLService) *PnLHandler {
	return &PnLHandler{service: service}
}

// GetOrderPnL godoc
// @ID           getOrderPnL
// @Summary      Get order P&L
// @Description  Returns the P&L of one purchase order
// @Tags         pnl
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the configured tenant)"
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} dto.Response{data=reportapp.OrderPnLResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /pnl/orders/{id} [get]
func (h *PnLHandler) GetOrderPnL(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	pnl, err := h.service.GetOrderPnL(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if pnl == nil {
		h.NotFound(c, "Purchase order not found")
		return
	}
	h.Success(c, pnl)
}

// GetColorPnL godoc
// @ID           getColorPnL
// @Summary      Get style/color P&L
// @Description  Returns the style/color allocation of one purchase order
// @Tags         pnl
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the configured tenant)"
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} dto.Response{data=reportapp.ColorPnLResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /pnl/orders/{id}/colors [get]
func (h *PnLHandler) GetColorPnL(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	pnl, err := h.service.GetColorPnL(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if pnl == nil {
		h.NotFound(c, "Purchase order not found")
		return
	}
	h.Success(c, pnl)
}

// GetPeriodPnL godoc
// @ID           getPeriodPnL
// @Summary      Get period P&L
// @Description  Returns the portfolio P&L bucketed by period
// @Tags         pnl
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the configured tenant)"
// @Param        granularity query string false "MONTHLY, QUARTERLY or ANNUAL"
// @Param        start_date query string false "Inclusive start (YYYY-MM-DD)"
// @Param        end_date query string false "Inclusive end (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=reportapp.PeriodPnLResponse}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /pnl/periods [get]
func (h *PnLHandler) GetPeriodPnL(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q reportapp.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query: dates must be YYYY-MM-DD")
		return
	}

	pnl, err := h.service.GetPeriodPnL(c.Request.Context(), tenantID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pnl)
}

// ExportPeriodPnL godoc
// @ID           exportPeriodPnL
// @Summary      Export period P&L
// @Description  Downloads the period P&L as an xlsx workbook
// @Tags         pnl
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the configured tenant)"
// @Param        granularity query string false "MONTHLY, QUARTERLY or ANNUAL"
// @Param        start_date query string false "Inclusive start (YYYY-MM-DD)"
// @Param        end_date query string false "Inclusive end (YYYY-MM-DD)"
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /pnl/periods/export [get]
func (h *PnLHandler) ExportPeriodPnL(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q reportapp.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query: dates must be YYYY-MM-DD")
		return
	}

	data, filename, err := h.service.ExportPeriodPnL(c.Request.Context(), tenantID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentTypeXLSX, data)
}
