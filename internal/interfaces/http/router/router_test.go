package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/garment/internal/interfaces/http/handler"
	"github.com/erp/garment/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))
	r.Register(NewDomainGroup("test", "/things").
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) }).
		POST("/:id", func(c *gin.Context) { c.Status(http.StatusCreated) }))
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/things", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v2/things/1", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDomainGroup_Middleware(t *testing.T) {
	engine := gin.New()
	called := false
	g := NewDomainGroup("guarded", "/guarded").
		Use(func(c *gin.Context) { called = true; c.Next() }).
		GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, "guarded", g.Name())
	assert.Equal(t, "/guarded", g.Prefix())

	NewRouter(engine).Register(g).Setup()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/guarded/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	engine, err := NewEngine(EngineConfig{
		ServiceName:   "garment-erp",
		DefaultTenant: uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		CORS:          middleware.DefaultCORSConfig(),
	}, Handlers{
		System:     handler.NewSystemHandler("garment-erp", "test", nil),
		Costing:    handler.NewCostingHandler(nil),
		PnL:        handler.NewPnLHandler(nil),
		Production: handler.NewProductionOrderHandler(nil),
	}, zap.NewNop())
	require.NoError(t, err)
	return engine
}

func TestNewEngine_Routes(t *testing.T) {
	engine := newTestEngine(t)

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /api/v1/system/info",
		"POST /api/v1/costing/sheets",
		"GET /api/v1/costing/sheets/:id",
		"PUT /api/v1/costing/sheets/:id",
		"POST /api/v1/costing/sheets/:id/versions",
		"GET /api/v1/costing/subjects/:subjectId/versions",
		"GET /api/v1/costing/subjects/:subjectId/active",
		"GET /api/v1/pnl/orders/:id",
		"GET /api/v1/pnl/orders/:id/colors",
		"GET /api/v1/pnl/periods",
		"GET /api/v1/pnl/periods/export",
		"POST /api/v1/production-orders",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
	assert.Len(t, registered, len(expected))
}

func TestNewEngine_Middleware(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("health skips tenant resolution", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(middleware.TenantHeader, "not-a-uuid")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("api rejects malformed tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil)
		req.Header.Set(middleware.TenantHeader, "not-a-uuid")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("panics become 500", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pnl/orders/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)
	})
}
