package handler

import (
	"context"

	tradeapp "github.com/erp/garment/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductionOrderService registers factory production runs
type ProductionOrderService interface {
	Register(ctx context.Context, tenantID uuid.UUID, req tradeapp.RegisterProductionOrderRequest) (*tradeapp.ProductionOrderResponse, error)
}

// ProductionOrderHandler handles production order endpoints
type ProductionOrderHandler struct {
	BaseHandler
	service ProductionOrderService
}

// NewProductionOrderHandler creates a new ProductionOrderHandler
func NewProductionOrderHandler(service ProductionOrderService) *ProductionOrderHandler {
	return &ProductionOrderHandler{service: service}
}

// Register godoc
// @ID           registerProductionOrder
// @Summary      Register production order
// @Description  Links a production order to its purchase order line
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the configured tenant)"
// @Param        request body tradeapp.RegisterProductionOrderRequest true "Production order"
// @Success      201 {object} dto.Response{data=tradeapp.ProductionOrderResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /production-orders [post]
func (h *ProductionOrderHandler) Register(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req tradeapp.RegisterProductionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Register(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
