package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest carries the input for recording a new payment
type RecordPaymentRequest struct {
	TenantID       uuid.UUID
	StudentID      uuid.UUID
	Amount         decimal.Decimal
	PaymentDate    time.Time // zero value defaults to now
	Method         finance.PaymentMethod
	Reference      string
	Notes          string
	NextDueDate    *time.Time
	IdempotencyKey string // optional; a replayed key returns the original payment
}

// UpdatePaymentRequest carries the partial set of fields to change on a
// payment. Nil fields are left untouched.
type UpdatePaymentRequest struct {
	Amount      *decimal.Decimal
	PaymentDate *time.Time
	Method      *finance.PaymentMethod
	Reference   *string
	Notes       *string
	NextDueDate *time.Time
}

// PaymentResult is the service-level view of a payment plus the owning
// student's ledger after the operation committed.
type PaymentResult struct {
	Payment *finance.Payment `json:"payment"`
	FeePaid decimal.Decimal  `json:"fee_paid"`
	FeeDue  decimal.Decimal  `json:"fee_due"`
}
