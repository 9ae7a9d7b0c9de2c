package persistence

import (
	"context"
	"errors"

	"github.com/brightcart/backend/internal/domain/reconciliation"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRunRepository implements reconciliation.RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Create persists a finished run record
func (r *GormRunRepository) Create(ctx context.Context, run *reconciliation.Run) error {
	model := models.ReconciliationRunModelFromDomain(run)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a run by ID
func (r *GormRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.Run, error) {
	var model models.ReconciliationRunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns runs matching the filter, newest first
func (r *GormRunRepository) FindAll(ctx context.Context, filter reconciliation.RunFilter) ([]*reconciliation.Run, int64, error) {
	var runModels []*models.ReconciliationRunModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ReconciliationRunModel{})

	if filter.Operation != nil {
		query = query.Where("operation = ?", *filter.Operation)
	}
	if filter.Actor != "" {
		query = query.Where("actor = ?", filter.Actor)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("started_at DESC").Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&runModels).Error; err != nil {
		return nil, 0, err
	}

	runs := make([]*reconciliation.Run, len(runModels))
	for i, model := range runModels {
		runs[i] = model.ToDomain()
	}
	return runs, total, nil
}

// Ensure GormRunRepository implements reconciliation.RunRepository
var _ reconciliation.RunRepository = (*GormRunRepository)(nil)
