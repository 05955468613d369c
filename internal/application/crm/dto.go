package crm

import (
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/crm"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// CaptureLeadRequest carries the input for capturing a new lead
type CaptureLeadRequest struct {
	TenantID       uuid.UUID
	Name           string
	Phone          string
	Email          string
	Source         string
	CourseInterest string
	Notes          string
	AssignedUserID *uuid.UUID
}

// UpdateLeadRequest carries the partial set of fields to change on a lead.
// Nil fields are left untouched.
type UpdateLeadRequest struct {
	Status         *crm.LeadStatus
	Email          *string
	Notes          *string
	AssignedUserID *uuid.UUID
}

// ConvertLeadRequest carries the input for converting a lead to a student.
// InitialPayment of zero means the student enrolls without money changing
// hands; PaymentMethod is then ignored.
type ConvertLeadRequest struct {
	TenantID       uuid.UUID
	LeadID         uuid.UUID
	BatchID        uuid.UUID
	EnrollmentDate time.Time
	TotalFee       decimal.Decimal
	InitialPayment decimal.Decimal
	PaymentMethod  finance.PaymentMethod
	PaymentDate    time.Time
	Reference      string
}

// ConversionResult reports what a conversion produced. Payment is nil when no
// initial payment was taken.
type ConversionResult struct {
	Lead    *crm.Lead           `json:"lead"`
	Student *enrollment.Student `json:"student"`
	Payment *finance.Payment    `json:"payment,omitempty"`
}
