package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/institute/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStudentRepository implements StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// FindByID finds a student by its ID
func (r *GormStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*enrollment.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a student by ID within a tenant
func (r *GormStudentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*enrollment.Student, error) {
	var model models.StudentModel
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

// FindByIDForUpdate finds a student by ID and locks the row for the duration
// of the surrounding transaction. Ledger mutations load through this method so
// concurrent payments against the same student serialize.
func (r *GormStudentRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*enrollment.Student, error) {
	query := r.db.WithContext(ctx)
	// SELECT ... FOR UPDATE is a no-op on SQLite, which tests run against
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model models.StudentModel
	if err := query.
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPhone finds a student by phone number within a tenant
func (r *GormStudentRepository) FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*enrollment.Student, error) {
	if phone == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
	}
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND phone = ?", tenantID, phone).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all students for a tenant matching the filter
func (r *GormStudentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter enrollment.StudentFilter) ([]enrollment.Student, error) {
	var studentModels []models.StudentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.StudentModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&studentModels).Error; err != nil {
		return nil, err
	}

	students := make([]enrollment.Student, len(studentModels))
	for i, model := range studentModels {
		students[i] = *model.ToDomain()
	}
	return students, nil
}

// CountForTenant counts students for a tenant matching the filter
func (r *GormStudentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter enrollment.StudentFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.StudentModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new student
func (r *GormStudentRepository) Create(ctx context.Context, student *enrollment.Student) error {
	model := models.StudentModelFromDomain(student)
	return r.db.WithContext(ctx).Create(model).Error
}

// Save persists an existing student with an optimistic version check.
// The row's version advances by exactly one per save, regardless of how many
// fields changed. Returns a conflict error if the version has changed
// concurrently.
func (r *GormStudentRepository) Save(ctx context.Context, student *enrollment.Student) error {
	model := models.StudentModelFromDomain(student)
	model.Version = student.Version + 1
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", student.ID, student.Version).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The student record has been modified by another transaction")
	}
	student.IncrementVersion()
	return nil
}

// Delete deletes a student within a tenant. Payments cascade at the database
// level via the foreign key.
func (r *GormStudentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.StudentModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormStudentRepository) applyFilter(query *gorm.DB, filter enrollment.StudentFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("enrollment_date DESC, name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStudentRepository) applyFilterWithoutPagination(query *gorm.DB, filter enrollment.StudentFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.BatchID != nil {
		query = query.Where("batch_id = ?", *filter.BatchID)
	}

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	return query
}

// Ensure GormStudentRepository implements StudentRepository
var _ enrollment.StudentRepository = (*GormStudentRepository)(nil)
