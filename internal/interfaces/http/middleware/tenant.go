package middleware

import (
	"net/http"

	"github.com/erp/garment/internal/infrastructure/logger"
	"github.com/erp/garment/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantHeader selects the tenant of a request
const TenantHeader = "X-Tenant-ID"

const tenantIDKey = "tenant_id"

// Tenant resolves the tenant from X-Tenant-ID, falling back to
// defaultTenant. A header that is not a UUID is rejected with 400.
func Tenant(defaultTenant uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := defaultTenant
		if raw := c.GetHeader(TenantHeader); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeBadRequest, "X-Tenant-ID must be a UUID", GetRequestID(c)))
				return
			}
			tenantID = parsed
		}

		c.Set(tenantIDKey, tenantID.String())
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID.String()))
		c.Next()
	}
}

// GetTenantID returns the tenant resolved by Tenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(tenantIDKey)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
