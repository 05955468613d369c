package enrollment

import (
	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the enrollment context
const (
	EventTypeStudentEnrolled    = "enrollment.student_enrolled"
	EventTypeStudentDeactivated = "enrollment.student_deactivated"
	EventTypeBatchCreated       = "enrollment.batch_created"
)

// StudentEnrolledEvent is published when a student is enrolled, directly or
// through lead conversion.
type StudentEnrolledEvent struct {
	shared.BaseDomainEvent
	StudentName    string          `json:"student_name"`
	StudentEmail   string          `json:"student_email"`
	Phone          string          `json:"phone"`
	BatchID        uuid.UUID       `json:"batch_id"`
	TotalFee       decimal.Decimal `json:"total_fee"`
	FeeDue         decimal.Decimal `json:"fee_due"`
	FromLeadID     *uuid.UUID      `json:"from_lead_id,omitempty"`
	EnrollmentDate string          `json:"enrollment_date"`
}

// NewStudentEnrolledEvent creates a StudentEnrolledEvent from a student
func NewStudentEnrolledEvent(s *Student) *StudentEnrolledEvent {
	return &StudentEnrolledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentEnrolled, "Student", s.ID, s.TenantID),
		StudentName:     s.Name,
		StudentEmail:    s.Email,
		Phone:           s.Phone,
		BatchID:         s.BatchID,
		TotalFee:        s.TotalFee,
		FeeDue:          s.FeeDue,
		FromLeadID:      s.ConvertedFromLeadID,
		EnrollmentDate:  s.EnrollmentDate.Format("2006-01-02"),
	}
}

// StudentDeactivatedEvent is published when a student is deactivated
type StudentDeactivatedEvent struct {
	shared.BaseDomainEvent
	StudentName string `json:"student_name"`
}

// NewStudentDeactivatedEvent creates a StudentDeactivatedEvent
func NewStudentDeactivatedEvent(s *Student) *StudentDeactivatedEvent {
	return &StudentDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentDeactivated, "Student", s.ID, s.TenantID),
		StudentName:     s.Name,
	}
}
