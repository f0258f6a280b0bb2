package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/garment/internal/domain/costing"
	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/infrastructure/persistence/models"
)

// GormCostingSheetRepository implements costing.CostingSheetRepository using GORM
type GormCostingSheetRepository struct {
	db *gorm.DB
}

// NewGormCostingSheetRepository creates a new GormCostingSheetRepository
func NewGormCostingSheetRepository(db *gorm.DB) *GormCostingSheetRepository {
	return &GormCostingSheetRepository{db: db}
}

func (r *GormCostingSheetRepository) query(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Preload("Lines", orderByPosition)
}

// FindByIDForTenant finds one version with its lines
func (r *GormCostingSheetRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*costing.CostingSheet, error) {
	var model models.CostingSheetModel
	if err := r.query(ctx, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySubject returns all versions of a subject ordered by revision
func (r *GormCostingSheetRepository) FindBySubject(ctx context.Context, tenantID, subjectID uuid.UUID) ([]*costing.CostingSheet, error) {
	var rows []models.CostingSheetModel
	if err := r.query(ctx, tenantID).
		Where("subject_id = ?", subjectID).
		Order("revision_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	sheets := make([]*costing.CostingSheet, len(rows))
	for i := range rows {
		sheets[i] = rows[i].ToDomain()
	}
	return sheets, nil
}

// FindBySubjectAndRevision finds one revision of a subject
func (r *GormCostingSheetRepository) FindBySubjectAndRevision(ctx context.Context, tenantID, subjectID uuid.UUID, revisionNo int) (*costing.CostingSheet, error) {
	var model models.CostingSheetModel
	if err := r.query(ctx, tenantID).
		Where("subject_id = ? AND revision_no = ?", subjectID, revisionNo).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a version and its lines in one transaction
func (r *GormCostingSheetRepository) Create(ctx context.Context, sheet *costing.CostingSheet) error {
	model := models.CostingSheetModelFromDomain(sheet)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Lines) == 0 {
			return nil
		}
		return tx.Create(&model.Lines).Error
	})
	if isUniqueViolation(err) {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code,
			fmt.Sprintf("Costing revision %d already exists for subject %s", sheet.RevisionNo, sheet.SubjectID))
	}
	return err
}

// Update rewrites the version header and replaces its lines. The caller
// bumps sheet.Version once; the stored row must still hold Version-1.
func (r *GormCostingSheetRepository) Update(ctx context.Context, sheet *costing.CostingSheet) error {
	model := models.CostingSheetModelFromDomain(sheet)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CostingSheetModel{}).
			Where("id = ? AND tenant_id = ? AND version = ?", sheet.ID, sheet.TenantID, sheet.Version-1).
			Updates(map[string]any{
				"version_label":         model.VersionLabel,
				"local_currency":        model.LocalCurrency,
				"quote_currency":        model.QuoteCurrency,
				"default_exchange_rate": model.DefaultExchangeRate,
				"agent_comm_percent":    model.AgentCommPercent,
				"target_margin_percent": model.TargetMarginPercent,
				"actual_quoted_price":   model.ActualQuotedPrice,
				"remark":                model.Remark,
				"version":               model.Version,
				"updated_at":            model.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.CostingSheetModel{}).
				Where("id = ? AND tenant_id = ?", sheet.ID, sheet.TenantID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}
		if err := tx.Where("sheet_id = ?", sheet.ID).Delete(&models.CostingLineModel{}).Error; err != nil {
			return err
		}
		if len(model.Lines) == 0 {
			return nil
		}
		return tx.Create(&model.Lines).Error
	})
}
