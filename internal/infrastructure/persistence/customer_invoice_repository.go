package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/garment/internal/domain/trade"
	"github.com/erp/garment/internal/infrastructure/persistence/models"
)

// GormCustomerInvoiceRepository implements trade.CustomerInvoiceRepository using GORM
type GormCustomerInvoiceRepository struct {
	db *gorm.DB
}

// NewGormCustomerInvoiceRepository creates a new GormCustomerInvoiceRepository
func NewGormCustomerInvoiceRepository(db *gorm.DB) *GormCustomerInvoiceRepository {
	return &GormCustomerInvoiceRepository{db: db}
}

// FindByPO returns every invoice of one order regardless of status; the
// caller decides which statuses count as revenue.
func (r *GormCustomerInvoiceRepository) FindByPO(ctx context.Context, tenantID, poID uuid.UUID) ([]*trade.CustomerInvoice, error) {
	return r.find(ctx, tenantID, poID)
}

// FindByPOs returns the invoices of many orders, one query per id batch
func (r *GormCustomerInvoiceRepository) FindByPOs(ctx context.Context, tenantID uuid.UUID, poIDs []uuid.UUID) ([]*trade.CustomerInvoice, error) {
	return findInPOBatches(poIDs, func(batch []uuid.UUID) ([]*trade.CustomerInvoice, error) {
		return r.find(ctx, tenantID, batch...)
	})
}

func (r *GormCustomerInvoiceRepository) find(ctx context.Context, tenantID uuid.UUID, poIDs ...uuid.UUID) ([]*trade.CustomerInvoice, error) {
	var rows []models.CustomerInvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(poScope(tenantID, poIDs...)).
		Preload("Items", orderByPosition).
		Order("invoice_date ASC, invoice_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*trade.CustomerInvoice, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Save upserts the invoice header and replaces its lines
func (r *GormCustomerInvoiceRepository) Save(ctx context.Context, inv *trade.CustomerInvoice) error {
	model := models.CustomerInvoiceModelFromDomain(inv)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.CustomerInvoiceLineModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}
