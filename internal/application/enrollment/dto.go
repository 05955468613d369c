package enrollment

import (
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// EnrollStudentRequest carries the input for enrolling a student directly,
// without going through the lead pipeline. An InitialPayment above zero
// creates a payment record in the same transaction so the ledger stays equal
// to the sum of the student's payments.
type EnrollStudentRequest struct {
	TenantID       uuid.UUID
	Name           string
	Phone          string
	Email          string
	ParentName     string
	ParentPhone    string
	BatchID        uuid.UUID
	EnrollmentDate time.Time
	TotalFee       decimal.Decimal
	InitialPayment decimal.Decimal
	PaymentMethod  finance.PaymentMethod
	Notes          string
}

// UpdateStudentRequest carries the partial set of fields to change on a
// student. Nil fields are left untouched. TotalFee changes recompute FeeDue;
// FeePaid is never writable directly, it only moves through payments.
type UpdateStudentRequest struct {
	Phone       *string
	Email       *string
	ParentName  *string
	ParentPhone *string
	BatchID     *uuid.UUID
	TotalFee    *decimal.Decimal
	Notes       *string
}

// EnrollmentResult reports what an enrollment produced. Payment is nil when
// no initial payment was taken.
type EnrollmentResult struct {
	Student *enrollment.Student `json:"student"`
	Payment *finance.Payment    `json:"payment,omitempty"`
}

// CreateBatchRequest carries the input for creating a batch
type CreateBatchRequest struct {
	TenantID  uuid.UUID
	Name      string
	StartDate time.Time
	EndDate   *time.Time
	Fee       decimal.Decimal
	Capacity  int
	TrainerID *uuid.UUID
}
