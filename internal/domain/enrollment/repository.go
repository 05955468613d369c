package enrollment

import (
	"context"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/shared"
)

// StudentFilter holds query options for listing students
type StudentFilter struct {
	shared.Filter
	BatchID    *uuid.UUID
	ActiveOnly bool
}

// StudentRepository defines persistence operations for the Student aggregate
type StudentRepository interface {
	// FindByID finds a student by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)

	// FindByIDForTenant finds a student by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Student, error)

	// FindByIDForUpdate finds a student and locks its row for the duration of
	// the surrounding transaction. Ledger mutations must load through this
	// method so concurrent payments against the same student serialize instead
	// of losing updates.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Student, error)

	// FindByPhone finds a student by phone number (unique per tenant)
	FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*Student, error)

	// FindAllForTenant lists students for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter StudentFilter) ([]Student, error)

	// CountForTenant counts students matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter StudentFilter) (int64, error)

	// Create inserts a new student
	Create(ctx context.Context, student *Student) error

	// Save persists an existing student with an optimistic version check
	Save(ctx context.Context, student *Student) error

	// Delete removes a student; payments cascade at the storage layer
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// BatchRepository defines persistence operations for Batch
type BatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Batch, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]Batch, error)
	Create(ctx context.Context, batch *Batch) error
	Save(ctx context.Context, batch *Batch) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
