package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	costingapp "github.com/erp/garment/internal/application/costing"
	reportapp "github.com/erp/garment/internal/application/report"
	tradeapp "github.com/erp/garment/internal/application/trade"
	"github.com/erp/garment/internal/infrastructure/cache"
	"github.com/erp/garment/internal/infrastructure/config"
	"github.com/erp/garment/internal/infrastructure/logger"
	"github.com/erp/garment/internal/infrastructure/persistence"
	"github.com/erp/garment/internal/infrastructure/telemetry"
	"github.com/erp/garment/internal/interfaces/http/handler"
	"github.com/erp/garment/internal/interfaces/http/middleware"
	"github.com/erp/garment/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting garment order financial engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	engineMetrics, err := telemetry.NewEngineMetrics(meterProvider.Meter("garment-erp/engine"), log)
	if err != nil {
		log.Fatal("Failed to register engine metrics", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, log.Named("gorm"), cfg.Telemetry.DBSlowQueryThresh)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		FullSQL: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	orderCostRepo := persistence.NewGormOrderCostRepository(db.DB)
	productionOrderRepo := persistence.NewGormProductionOrderRepository(db.DB)
	customerInvoiceRepo := persistence.NewGormCustomerInvoiceRepository(db.DB)
	costingSheetRepo := persistence.NewGormCostingSheetRepository(db.DB)

	costingService := costingapp.NewCostingService(costingSheetRepo, log)
	costingService.SetEngineMetrics(engineMetrics)

	pnlService := reportapp.NewPnLService(reportapp.Repositories{
		Orders:     purchaseOrderRepo,
		Costs:      orderCostRepo,
		Production: productionOrderRepo,
		Invoices:   customerInvoiceRepo,
	}, reportapp.Settings{
		BaseCurrency:       cfg.Report.BaseCurrency,
		DefaultGranularity: cfg.Report.DefaultGranularity,
		CacheTTL:           cfg.Report.CacheTTL,
	}, log)
	pnlService.SetEngineMetrics(engineMetrics)

	if cfg.Report.CacheEnabled {
		store, err := cache.NewStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(!cfg.IsProduction()),
		).CreateStore()
		if err != nil {
			log.Fatal("Failed to create period cache", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Error closing period cache", zap.Error(err))
			}
		}()
		pnlService.SetPeriodCache(store)
	}

	productionService := tradeapp.NewProductionOrderService(purchaseOrderRepo, productionOrderRepo, log)
	productionService.SetPeriodInvalidator(pnlService)

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engineCfg := router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tracerProvider.IsEnabled(),
		DefaultTenant:  cfg.App.DefaultTenantID,
		CORS:           cors,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	}
	if meterProvider.IsEnabled() {
		engineCfg.Meter = meterProvider.Meter("http.server")
	}

	engine, err := router.NewEngine(engineCfg, router.Handlers{
		System:     handler.NewSystemHandler(cfg.App.Name, version, db),
		Costing:    handler.NewCostingHandler(costingService),
		PnL:        handler.NewPnLHandler(pnlService),
		Production: handler.NewProductionOrderHandler(productionService),
	}, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
