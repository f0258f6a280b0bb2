package router

import (
	"github.com/erp/garment/internal/infrastructure/logger"
	"github.com/erp/garment/internal/interfaces/http/handler"
	"github.com/erp/garment/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig configures the middleware chain
type EngineConfig struct {
	ServiceName    string
	TracingEnabled bool
	DefaultTenant  uuid.UUID
	CORS           middleware.CORSConfig
	TrustedProxies []string
	MaxBodyBytes   int64
	Meter          metric.Meter // nil disables HTTP metrics
}

// Handlers groups the HTTP handlers served by the engine
type Handlers struct {
	System     *handler.SystemHandler
	Costing    *handler.CostingHandler
	PnL        *handler.PnLHandler
	Production *handler.ProductionOrderHandler
}

// NewEngine builds the gin engine with the middleware chain and every route.
// Health checks sit outside /api and skip the tenant middleware.
func NewEngine(cfg EngineConfig, h Handlers, log *zap.Logger) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.TracingEnabled {
		engine.Use(middleware.Tracing(cfg.ServiceName))
	}
	if cfg.Meter != nil {
		httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(httpMetrics)
	}
	engine.Use(logger.GinMiddleware(log), middleware.BodyLimit(cfg.MaxBodyBytes))

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/ready", h.System.Ready)
	}

	r := NewRouter(engine)
	for _, g := range APIGroups(h) {
		g.Use(middleware.Tenant(cfg.DefaultTenant), middleware.SpanAttributes())
		r.Register(g)
	}
	r.Setup()
	return engine, nil
}

// APIGroups declares the versioned API, one group per bounded context
func APIGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.System != nil {
		groups = append(groups, NewDomainGroup("system", "/system").
			GET("/info", h.System.GetSystemInfo))
	}

	if h.Costing != nil {
		groups = append(groups, NewDomainGroup("costing", "/costing").
			POST("/sheets", h.Costing.CreateSheet).
			GET("/sheets/:id", h.Costing.GetSheet).
			PUT("/sheets/:id", h.Costing.UpdateSheet).
			POST("/sheets/:id/versions", h.Costing.CreateVersion).
			GET("/subjects/:subjectId/versions", h.Costing.ListVersions).
			GET("/subjects/:subjectId/active", h.Costing.GetActive))
	}

	if h.PnL != nil {
		groups = append(groups, NewDomainGroup("pnl", "/pnl").
			GET("/orders/:id", h.PnL.GetOrderPnL).
			GET("/orders/:id/colors", h.PnL.GetColorPnL).
			GET("/periods", h.PnL.GetPeriodPnL).
			GET("/periods/export", h.PnL.ExportPeriodPnL))
	}

	if h.Production != nil {
		groups = append(groups, NewDomainGroup("production", "/production-orders").
			POST("", h.Production.Register))
	}
	return groups
}
