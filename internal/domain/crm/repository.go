package crm

import (
	"context"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/shared"
)

// LeadFilter holds query options for listing leads
type LeadFilter struct {
	shared.Filter
	Status         *LeadStatus
	AssignedUserID *uuid.UUID
}

// LeadRepository defines persistence operations for the Lead aggregate
type LeadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Lead, error)

	// FindByIDForUpdate locks the lead row for the duration of the surrounding
	// transaction so two concurrent conversions of the same lead serialize.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Lead, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter LeadFilter) ([]Lead, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter LeadFilter) (int64, error)
	Create(ctx context.Context, lead *Lead) error
	Save(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
