// Package costing provides the costing sheet application service: version
// history, edits of the active version and computed pricing.
package costing

import (
	"context"
	"errors"

	"github.com/erp/garment/internal/domain/costing"
	"github.com/erp/garment/internal/domain/shared"
	"github.com/erp/garment/internal/infrastructure/logger"
	"github.com/erp/garment/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CostingService handles costing sheet operations
type CostingService struct {
	repo    costing.CostingSheetRepository
	log     *zap.Logger
	metrics *telemetry.EngineMetrics
}

// NewCostingService creates a new CostingService
func NewCostingService(repo costing.CostingSheetRepository, log *zap.Logger) *CostingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CostingService{
		repo: repo,
		log:  log.Named("costing"),
	}
}

// SetEngineMetrics sets the metrics collector
func (s *CostingService) SetEngineMetrics(m *telemetry.EngineMetrics) {
	s.metrics = m
}

// CreateInitial creates revision 1 for a subject. When the subject already
// has versions the active one is returned instead.
func (s *CostingService) CreateInitial(ctx context.Context, tenantID uuid.UUID, req CreateSheetRequest) (*SheetResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "costing", "create_initial",
		attribute.String(telemetry.SpanAttrSubjectID, req.SubjectID.String()))
	defer span.End()

	history, err := s.history(ctx, tenantID, req.SubjectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if active := history.Active(); active != nil {
		return s.render(active, true)
	}

	settings, err := req.SheetSettingsRequest.toSettings()
	if err != nil {
		return nil, err
	}
	sheet, err := costing.NewCostingSheet(tenantID, req.SubjectID, settings)
	if err != nil {
		return nil, err
	}
	if err := applySegments(sheet, req.Segments); err != nil {
		return nil, err
	}
	if _, err := sheet.Compute(); err != nil {
		return nil, err
	}

	created, err := s.insert(ctx, sheet)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return s.render(created, true)
}

// GetVersions lists a subject's versions by revision ascending
func (s *CostingService) GetVersions(ctx context.Context, tenantID, subjectID uuid.UUID) ([]VersionSummaryResponse, error) {
	history, err := s.history(ctx, tenantID, subjectID)
	if err != nil {
		return nil, err
	}
	return ToVersionSummaries(history), nil
}

// GetActive returns the highest revision with computed figures, or nil when
// the subject has no costing yet.
func (s *CostingService) GetActive(ctx context.Context, tenantID, subjectID uuid.UUID) (*SheetResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "costing", "get_active",
		attribute.String(telemetry.SpanAttrSubjectID, subjectID.String()))
	defer span.End()

	history, err := s.history(ctx, tenantID, subjectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	active := history.Active()
	if active == nil {
		return nil, nil
	}
	return s.render(active, true)
}

// GetSheet returns one version with computed figures, or nil when missing
func (s *CostingService) GetSheet(ctx context.Context, tenantID, id uuid.UUID) (*SheetResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "costing", "get_sheet",
		attribute.String(telemetry.SpanAttrSheetID, id.String()))
	defer span.End()

	sheet, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	history, err := s.history(ctx, tenantID, sheet.SubjectID)
	if err != nil {
		return nil, err
	}
	return s.render(sheet, history.IsActive(sheet.ID))
}

// UpdateSheet edits the active version in place. Historical versions are
// immutable.
func (s *CostingService) UpdateSheet(ctx context.Context, tenantID, id uuid.UUID, req UpdateSheetRequest) (*SheetResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "costing", "update_sheet",
		attribute.String(telemetry.SpanAttrSheetID, id.String()))
	defer span.End()

	sheet, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	history, err := s.history(ctx, tenantID, sheet.SubjectID)
	if err != nil {
		return nil, err
	}
	if !history.IsActive(sheet.ID) {
		return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Only the active costing version can be edited")
	}

	if req.Settings != nil {
		settings, err := req.Settings.toSettings()
		if err != nil {
			return nil, err
		}
		if err := sheet.UpdateSettings(settings); err != nil {
			return nil, err
		}
	} else {
		sheet.IncrementVersion()
	}
	if err := applySegments(sheet, req.Segments); err != nil {
		return nil, err
	}
	if _, err := sheet.Compute(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, sheet); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	logger.Enrich(ctx, s.log).Info("Costing sheet updated",
		zap.String("sheet_id", sheet.ID.String()),
		zap.Int("revision_no", sheet.RevisionNo),
	)
	return s.render(sheet, true)
}

// CreateVersion deep-copies a version into revision max+1 of its subject and
// returns the refreshed history with the new version.
func (s *CostingService) CreateVersion(ctx context.Context, tenantID, sourceID uuid.UUID, req CreateVersionRequest) (*CreateVersionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "costing", "create_version",
		attribute.String(telemetry.SpanAttrSheetID, sourceID.String()))
	defer span.End()

	source, err := s.repo.FindByIDForTenant(ctx, tenantID, sourceID)
	if err != nil {
		return nil, err
	}
	history, err := s.history(ctx, tenantID, source.SubjectID)
	if err != nil {
		return nil, err
	}

	clone := source.Clone(history.NextRevision(), req.VersionLabel)
	created, err := s.insert(ctx, clone)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if history.Find(created.ID) == nil {
		history = history.Append(created)
	}
	resp, err := s.render(created, history.IsActive(created.ID))
	if err != nil {
		return nil, err
	}
	return &CreateVersionResponse{
		Versions: ToVersionSummaries(history),
		Costing:  resp,
	}, nil
}

// insert re-queries (subject, revision) before and after a failed insert so
// concurrent creators converge on the same record.
func (s *CostingService) insert(ctx context.Context, sheet *costing.CostingSheet) (*costing.CostingSheet, error) {
	existing, err := s.repo.FindBySubjectAndRevision(ctx, sheet.TenantID, sheet.SubjectID, sheet.RevisionNo)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.repo.Create(ctx, sheet); err != nil {
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		logger.Enrich(ctx, s.log).Warn("Costing revision created concurrently, returning existing record",
			zap.String("subject_id", sheet.SubjectID.String()),
			zap.Int("revision_no", sheet.RevisionNo),
		)
		return s.repo.FindBySubjectAndRevision(ctx, sheet.TenantID, sheet.SubjectID, sheet.RevisionNo)
	}

	s.metrics.RecordVersionCreated(ctx, sheet.TenantID)
	logger.Enrich(ctx, s.log).Info("Costing version created",
		zap.String("sheet_id", sheet.ID.String()),
		zap.String("subject_id", sheet.SubjectID.String()),
		zap.Int("revision_no", sheet.RevisionNo),
	)
	return sheet, nil
}

func (s *CostingService) history(ctx context.Context, tenantID, subjectID uuid.UUID) (costing.VersionHistory, error) {
	versions, err := s.repo.FindBySubject(ctx, tenantID, subjectID)
	if err != nil {
		return nil, err
	}
	return costing.NewVersionHistory(versions), nil
}

func (s *CostingService) render(sheet *costing.CostingSheet, isActive bool) (*SheetResponse, error) {
	computed, err := sheet.Compute()
	if err != nil {
		return nil, err
	}
	resp := ToSheetResponse(sheet, computed, isActive)
	return &resp, nil
}
