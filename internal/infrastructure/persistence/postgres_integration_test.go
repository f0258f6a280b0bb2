//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/domain/trade"
	"github.com/erp/garment/internal/infrastructure/config"
	"github.com/erp/garment/internal/infrastructure/migration"
	"github.com/erp/garment/migrations"
)

// newPostgresDatabase starts a throwaway PostgreSQL, applies the embedded
// migrations and connects through NewDatabase.
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("garment_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		DBName:       "garment_test",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		LogLevel:     "silent",
	}

	sqlDB, err := sql.Open("postgres", cfg.DSN())
	require.NoError(t, err)
	defer sqlDB.Close()
	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := NewDatabase(cfg, zap.NewNop(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPostgres_Repositories(t *testing.T) {
	db := newPostgresDatabase(t)
	ctx := context.Background()
	tenantID := uuid.New()
	require.NoError(t, db.Ping())

	orders := NewGormPurchaseOrderRepository(db.DB)
	po := newTestOrder(t, tenantID, "PO-PG-1")
	require.NoError(t, orders.Save(ctx, po))

	found, err := orders.FindByIDForTenant(ctx, tenantID, po.ID)
	require.NoError(t, err)
	require.Len(t, found.LineItems, 2)
	assert.True(t, found.TotalAmount.Equal(dec("1600")))

	productions := NewGormProductionOrderRepository(db.DB)
	prod, err := trade.NewProductionOrder(tenantID, found, trade.ProductionOrderInput{
		ProductionNo:     "MO-1",
		StyleNo:          "ST-100",
		Color:            "NAVY",
		FactoryName:      "Ningbo Knit",
		ProdInvoiceTotal: dec("400"),
		VATRefundRate:    dec("13"),
	})
	require.NoError(t, err)
	require.NoError(t, productions.Save(ctx, prod))

	byPO, err := productions.FindByPOs(ctx, tenantID, []uuid.UUID{po.ID})
	require.NoError(t, err)
	require.Len(t, byPO, 1)
	require.NotNil(t, byPO[0].POLineItemID)
	assert.Equal(t, found.LineItems[0].ID, *byPO[0].POLineItemID)
	assert.True(t, byPO[0].NetCost().Equal(dec("348")))

	t.Run("duplicate costing revision maps to already exists", func(t *testing.T) {
		sheets := NewGormCostingSheetRepository(db.DB)
		v1 := newTestSheet(t, tenantID, uuid.New())
		require.NoError(t, sheets.Create(ctx, v1))
		require.NoError(t, sheets.Create(ctx, v1.Clone(2, "")))
		assert.ErrorIs(t, sheets.Create(ctx, v1.Clone(2, "race")), shared.ErrAlreadyExists)

		versions, err := sheets.FindBySubject(ctx, tenantID, v1.SubjectID)
		require.NoError(t, err)
		require.Len(t, versions, 2)
		assert.Equal(t, 2, versions[1].RevisionNo)
	})
}
