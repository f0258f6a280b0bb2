package handler

import (
	"context"

	costingapp "github.com/erp/garment/internal/application/costing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CostingService is the costing sheet application service
type CostingService interface {
	CreateInitial(ctx context.Context, tenantID uuid.UUID, req costingapp.CreateSheetRequest) (*costingapp.SheetResponse, error)
	GetVersions(ctx context.Context, tenantID, subjectID uuid.UUID) ([]costingapp.VersionSummaryResponse, error)
	GetActive(ctx context.Context, tenantID, subjectID uuid.UUID) (*costingapp.SheetResponse, error)
	GetSheet(ctx context.Context, tenantID, id uuid.UUID) (*costingapp.SheetResponse, error)
	UpdateSheet(ctx context.Context, tenantID, id uuid.UUID, req costingapp.UpdateSheetRequest) (*costingapp.SheetResponse, error)
	CreateVersion(ctx context.Context, tenantID, sourceID uuid.UUID, req costingapp.CreateVersionRequest) (*costingapp.CreateVersionResponse, error)
}

// CostingHandler handles costing sheet endpoints
type CostingHandler struct {
	BaseHandler
	service CostingService
}

// NewCostingHandler creates a new CostingHandler
func NewCostingHandler(service CostingService) *CostingHandler {
	return &CostingHandler{service: service}
}

// CreateSheet godoc
// @ID           createCostingSheet
// @Summary      Create costing sheet
// @Description  Creates revision 1 of a subject's costing, or returns the active version when one exists.
// @Tags         costing
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the configured tenant)"
// @Param        request body costingapp.CreateSheetRequest true "Sheet settings and lines"
// @Success      201 {object} dto.Response{data=costingapp.SheetResponse}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /costing/sheets [post]
func (h *CostingHandler) CreateSheet(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req costingapp.CreateSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	sheet, err := h.service.CreateInitial(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sheet)
}

// ListVersions godoc
// @ID           listCostingVersions
// @Summary      List costing versions
// @Description  Lists a subject's versions by revision ascending
// @Tags         costing
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the configured tenant)"
// @Param        subjectId path string true "Subject ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]costingapp.VersionSummaryResponse}
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /costing/subjects/{subjectId}/versions [get]
func (h *CostingHandler) ListVersions(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	subjectID, ok := h.pathID(c, "subjectId")
	if !ok {
		return
	}

	versions, err := h.service.GetVersions(c.Request.Context(), tenantID, subjectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, versions)
}

// GetActive godoc
// @ID           getActiveCosting
// @Summary      Get active costing version
// @Description  Returns the active version with computed pricing
// @Tags         costing
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the configured tenant)"
// @Param        subjectId path string true "Subject ID" format(uuid)
// @Success      200 {object} dto.Response{data=costingapp.SheetResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /costing/subjects/{subjectId}/active [get]
func (h *CostingHandler) GetActive(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	subjectID, ok := h.pathID(c, "subjectId")
	if !ok {
		return
	}

	sheet, err := h.service.GetActive(c.Request.Context(), tenantID, subjectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if sheet == nil {
		h.NotFound(c, "Costing not found")
		return
	}
	h.Success(c, sheet)
}

// GetSheet godoc
// @ID           getCostingSheet
// @Summary      Get costing version
// @Description  Returns one version with computed pricing
// @Tags         costing
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the configured tenant)"
// @Param        id path string true "Costing sheet ID" format(uuid)
// @Success      200 {object} dto.Response{data=costingapp.SheetResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /costing/sheets/{id} [get]
func (h *CostingHandler) GetSheet(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	sheet, err := h.service.GetSheet(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if sheet == nil {
		h.NotFound(c, "Costing sheet not found")
		return
	}
	h.Success(c, sheet)
}

// UpdateSheet godoc
// @ID           updateCostingSheet
// @Summary      Update active costing version
// @Description  Edits the active version
// @Tags         costing
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the configured tenant)"
// @Param        id path string true "Costing sheet ID" format(uuid)
// @Param        request body costingapp.UpdateSheetRequest true "Sheet changes"
// @Success      200 {object} dto.Response{data=costingapp.SheetResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /costing/sheets/{id} [put]
func (h *CostingHandler) UpdateSheet(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req costingapp.UpdateSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	sheet, err := h.service.UpdateSheet(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sheet)
}

// CreateVersion godoc
// @ID           createCostingVersion
// @Summary      Create costing version
// @Description  Copies a version into the next revision. The body is optional.
// @Tags         costing
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (defaults to the configured tenant)"
// @Param        id path string true "Source costing sheet ID" format(uuid)
// @Param        request body costingapp.CreateVersionRequest false "Version label"
// @Success      201 {object} dto.Response{data=costingapp.CreateVersionResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /costing/sheets/{id}/versions [post]
func (h *CostingHandler) CreateVersion(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req costingapp.CreateVersionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	resp, err := h.service.CreateVersion(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
