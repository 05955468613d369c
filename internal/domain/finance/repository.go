package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/shared"
)

// PaymentFilter holds query options for listing payments
type PaymentFilter struct {
	shared.Filter
	StudentID *uuid.UUID
	Method    *PaymentMethod
	From      *time.Time
	To        *time.Time
}

// PaymentRepository defines persistence operations for the Payment aggregate
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindByStudent returns all payments of a student ordered by payment date
	FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]Payment, error)

	// FindAllForTenant lists payments for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)

	Create(ctx context.Context, payment *Payment) error
	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
