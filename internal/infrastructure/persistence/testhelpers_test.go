package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/erp/garment/internal/domain/shared/valueobject"
	"github.com/erp/garment/internal/domain/trade"
	"github.com/erp/garment/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.PurchaseOrderModel{},
		&models.PurchaseOrderLineItemModel{},
		&models.OrderCostModel{},
		&models.ProductionOrderModel{},
		&models.CustomerInvoiceModel{},
		&models.CustomerInvoiceLineModel{},
		&models.CostingSheetModel{},
		&models.CostingLineModel{},
	))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func newTestOrder(t *testing.T, tenantID uuid.UUID, number string) *trade.PurchaseOrder {
	t.Helper()
	po, err := trade.NewPurchaseOrder(tenantID, number, "Acme Apparel", valueobject.USD, dec("1"))
	require.NoError(t, err)
	po.ShippingTerms = trade.IncotermFOB
	po.OrderDate = day("2025-01-10")
	po.ShipByDate = day("2025-03-01")
	_, err = po.AddLineItem("ST-100", "NAVY", dec("100"), dec("10"))
	require.NoError(t, err)
	_, err = po.AddLineItem("ST-100", "RED", dec("50"), dec("12"))
	require.NoError(t, err)
	return po
}
