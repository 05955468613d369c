package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/institute/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*enrollment.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a batch by ID within a tenant
func (r *GormBatchRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*enrollment.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all batches for a tenant, newest first
func (r *GormBatchRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]enrollment.Batch, error) {
	query := r.db.WithContext(ctx).
		Model(&models.BatchModel{}).
		Where("tenant_id = ?", tenantID)

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var batchModels []models.BatchModel
	if err := query.Order("start_date DESC").Find(&batchModels).Error; err != nil {
		return nil, err
	}

	batches := make([]enrollment.Batch, len(batchModels))
	for i, model := range batchModels {
		batches[i] = *model.ToDomain()
	}
	return batches, nil
}

// Create inserts a new batch
func (r *GormBatchRepository) Create(ctx context.Context, batch *enrollment.Batch) error {
	model := models.BatchModelFromDomain(batch)
	return r.db.WithContext(ctx).Create(model).Error
}

// Save persists an existing batch with an optimistic version check. The
// row's version advances by exactly one per save, regardless of how many
// fields changed.
func (r *GormBatchRepository) Save(ctx context.Context, batch *enrollment.Batch) error {
	model := models.BatchModelFromDomain(batch)
	model.Version = batch.Version + 1
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", batch.ID, batch.Version).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The batch record has been modified by another transaction")
	}
	batch.IncrementVersion()
	return nil
}

// Delete deletes a batch within a tenant
func (r *GormBatchRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BatchModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormBatchRepository implements BatchRepository
var _ enrollment.BatchRepository = (*GormBatchRepository)(nil)
