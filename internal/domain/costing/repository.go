package costing

import (
	"context"

	"github.com/google/uuid"
)

// CostingSheetRepository persists costing sheet versions
type CostingSheetRepository interface {
	// FindByIDForTenant returns shared.ErrNotFound when the version does not exist
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CostingSheet, error)
	// FindBySubject returns versions ordered by revision number ascending
	FindBySubject(ctx context.Context, tenantID, subjectID uuid.UUID) ([]*CostingSheet, error)
	// FindBySubjectAndRevision returns shared.ErrNotFound when no such revision exists
	FindBySubjectAndRevision(ctx context.Context, tenantID, subjectID uuid.UUID, revisionNo int) (*CostingSheet, error)
	// Create inserts a new version with its lines. A duplicate
	// (subject, revision) yields shared.ErrAlreadyExists.
	Create(ctx context.Context, sheet *CostingSheet) error
	// Update replaces the sheet settings and lines of an existing version.
	// A row changed since it was loaded yields shared.ErrConcurrencyConflict.
	Update(ctx context.Context, sheet *CostingSheet) error
}
