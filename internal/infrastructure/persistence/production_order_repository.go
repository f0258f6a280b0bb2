package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/garment/internal/domain/trade"
	"github.com/erp/garment/internal/infrastructure/persistence/models"
)

// GormProductionOrderRepository implements trade.ProductionOrderRepository using GORM
type GormProductionOrderRepository struct {
	db *gorm.DB
}

// NewGormProductionOrderRepository creates a new GormProductionOrderRepository
func NewGormProductionOrderRepository(db *gorm.DB) *GormProductionOrderRepository {
	return &GormProductionOrderRepository{db: db}
}

// FindByPO returns the production orders of one purchase order
func (r *GormProductionOrderRepository) FindByPO(ctx context.Context, tenantID, poID uuid.UUID) ([]*trade.ProductionOrder, error) {
	return r.find(ctx, tenantID, poID)
}

// FindByPOs returns the production orders of many purchase orders, one
// query per id batch
func (r *GormProductionOrderRepository) FindByPOs(ctx context.Context, tenantID uuid.UUID, poIDs []uuid.UUID) ([]*trade.ProductionOrder, error) {
	return findInPOBatches(poIDs, func(batch []uuid.UUID) ([]*trade.ProductionOrder, error) {
		return r.find(ctx, tenantID, batch...)
	})
}

func (r *GormProductionOrderRepository) find(ctx context.Context, tenantID uuid.UUID, poIDs ...uuid.UUID) ([]*trade.ProductionOrder, error) {
	var rows []models.ProductionOrderModel
	if err := r.db.WithContext(ctx).
		Scopes(poScope(tenantID, poIDs...)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*trade.ProductionOrder, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a production order
func (r *GormProductionOrderRepository) Save(ctx context.Context, prod *trade.ProductionOrder) error {
	return r.db.WithContext(ctx).Save(models.ProductionOrderModelFromDomain(prod)).Error
}
