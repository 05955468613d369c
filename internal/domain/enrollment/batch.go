package enrollment

import (
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Batch represents a course batch students enroll into. It is a read-mostly
// collaborator for enrollment and invoice rendering and carries no ledger
// logic of its own.
type Batch struct {
	shared.TenantAggregateRoot
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	Fee         decimal.Decimal `json:"fee"`
	Capacity    int             `json:"capacity"`
	TrainerID   *uuid.UUID      `json:"trainer_id,omitempty"`
	IsActive    bool            `json:"is_active"`
}

// NewBatch creates a new batch
func NewBatch(tenantID uuid.UUID, name string, startDate time.Time, fee decimal.Decimal, capacity int) (*Batch, error) {
	if name == "" {
		return nil, shared.NewDomainError("MISSING_FIELD", "Batch name cannot be empty")
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError("MISSING_FIELD", "Batch start date is required")
	}
	if fee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Batch fee cannot be negative")
	}
	if capacity < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Batch capacity cannot be negative")
	}

	return &Batch{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		StartDate:           startDate,
		Fee:                 fee,
		Capacity:            capacity,
		IsActive:            true,
	}, nil
}

// SetDescription sets the batch description
func (b *Batch) SetDescription(description string) {
	b.Description = description
	b.UpdatedAt = time.Now()
}

// SetEndDate sets the end date; it must not precede the start date.
func (b *Batch) SetEndDate(endDate time.Time) error {
	if endDate.Before(b.StartDate) {
		return shared.NewDomainError("INVALID_INPUT", "Batch end date cannot precede start date")
	}
	b.EndDate = &endDate
	b.UpdatedAt = time.Now()
	return nil
}

// AssignTrainer assigns a trainer to the batch
func (b *Batch) AssignTrainer(trainerID uuid.UUID) {
	b.TrainerID = &trainerID
	b.UpdatedAt = time.Now()
}

// Close marks the batch inactive
func (b *Batch) Close() {
	b.IsActive = false
	b.UpdatedAt = time.Now()
}
