package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/garment/internal/domain/trade"
	"github.com/erp/garment/internal/infrastructure/persistence/models"
)

// GormOrderCostRepository implements trade.OrderCostRepository using GORM
type GormOrderCostRepository struct {
	db *gorm.DB
}

// NewGormOrderCostRepository creates a new GormOrderCostRepository
func NewGormOrderCostRepository(db *gorm.DB) *GormOrderCostRepository {
	return &GormOrderCostRepository{db: db}
}

// FindByPO returns the cost rows of one order
func (r *GormOrderCostRepository) FindByPO(ctx context.Context, tenantID, poID uuid.UUID) ([]*trade.OrderCost, error) {
	return r.find(ctx, tenantID, poID)
}

// FindByPOs returns the cost rows of many orders, one query per id batch
func (r *GormOrderCostRepository) FindByPOs(ctx context.Context, tenantID uuid.UUID, poIDs []uuid.UUID) ([]*trade.OrderCost, error) {
	return findInPOBatches(poIDs, func(batch []uuid.UUID) ([]*trade.OrderCost, error) {
		return r.find(ctx, tenantID, batch...)
	})
}

func (r *GormOrderCostRepository) find(ctx context.Context, tenantID uuid.UUID, poIDs ...uuid.UUID) ([]*trade.OrderCost, error) {
	var rows []models.OrderCostModel
	if err := r.db.WithContext(ctx).
		Scopes(poScope(tenantID, poIDs...)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	costs := make([]*trade.OrderCost, len(rows))
	for i := range rows {
		costs[i] = rows[i].ToDomain()
	}
	return costs, nil
}

// Save creates or updates a cost row
func (r *GormOrderCostRepository) Save(ctx context.Context, cost *trade.OrderCost) error {
	return r.db.WithContext(ctx).Save(models.OrderCostModelFromDomain(cost)).Error
}
