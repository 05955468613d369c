package enrollment

import (
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/institute/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Student represents an enrolled student aggregate root. It exclusively owns
// the fee ledger triple (TotalFee, FeePaid, FeeDue) and guarantees
// FeeDue = TotalFee - FeePaid after every committed mutation.
type Student struct {
	shared.TenantAggregateRoot
	Name                string          `json:"name"`
	Phone               string          `json:"phone"`
	Email               string          `json:"email"`
	ParentName          string          `json:"parent_name"`
	ParentPhone         string          `json:"parent_phone"`
	EnrollmentDate      time.Time       `json:"enrollment_date"`
	BatchID             uuid.UUID       `json:"batch_id"`
	TotalFee            decimal.Decimal `json:"total_fee"`
	FeePaid             decimal.Decimal `json:"fee_paid"`
	FeeDue              decimal.Decimal `json:"fee_due"`
	IsActive            bool            `json:"is_active"`
	Notes               string          `json:"notes"`
	ConvertedFromLeadID *uuid.UUID      `json:"converted_from_lead_id,omitempty"`
}

// NewStudent creates a new student and initializes the fee ledger.
// FeePaid starts at initialPayment (zero if no payment was taken at
// enrollment) and FeeDue at totalFee - initialPayment.
func NewStudent(
	tenantID uuid.UUID,
	name, phone string,
	batchID uuid.UUID,
	enrollmentDate time.Time,
	totalFee decimal.Decimal,
	initialPayment decimal.Decimal,
) (*Student, error) {
	if name == "" {
		return nil, shared.NewDomainError("MISSING_FIELD", "Student name cannot be empty")
	}
	if phone == "" {
		return nil, shared.NewDomainError("MISSING_FIELD", "Student phone cannot be empty")
	}
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("MISSING_FIELD", "Batch is required")
	}
	if enrollmentDate.IsZero() {
		return nil, shared.NewDomainError("MISSING_FIELD", "Enrollment date is required")
	}
	if totalFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total fee cannot be negative")
	}
	if initialPayment.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Initial payment cannot be negative")
	}

	s := &Student{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Phone:               phone,
		EnrollmentDate:      enrollmentDate,
		BatchID:             batchID,
		TotalFee:            totalFee,
		FeePaid:             initialPayment,
		FeeDue:              totalFee.Sub(initialPayment),
		IsActive:            true,
	}

	return s, nil
}

// CompleteEnrollment raises the enrollment event. Callers invoke it after the
// optional fields (contact details, lead origin, notes) have been applied so
// the event carries the full snapshot.
func (s *Student) CompleteEnrollment() {
	s.AddDomainEvent(NewStudentEnrolledEvent(s))
}

// ApplyPaymentDelta reconciles the ledger by a signed delta. A positive delta
// records money received, a negative delta backs out part of an earlier
// payment (amount edit or deletion). FeeDue may go negative, which represents
// a credit balance carried by the student; FeePaid itself can never drop
// below zero because payments sum to it.
func (s *Student) ApplyPaymentDelta(delta decimal.Decimal) error {
	newPaid := s.FeePaid.Add(delta)
	if newPaid.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment delta would make fee paid negative")
	}

	s.FeePaid = newPaid
	s.FeeDue = s.TotalFee.Sub(s.FeePaid)
	s.UpdatedAt = time.Now()

	return nil
}

// UpdateTotalFee changes the agreed total fee and recomputes FeeDue.
func (s *Student) UpdateTotalFee(totalFee decimal.Decimal) error {
	if totalFee.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Total fee cannot be negative")
	}
	s.TotalFee = totalFee
	s.FeeDue = s.TotalFee.Sub(s.FeePaid)
	s.UpdatedAt = time.Now()
	return nil
}

// HasCreditBalance returns true if the student has paid more than the total fee
func (s *Student) HasCreditBalance() bool {
	return s.FeeDue.IsNegative()
}

// UpdateContact updates the student's own and parent contact details.
func (s *Student) UpdateContact(phone, email, parentName, parentPhone string) error {
	if phone == "" {
		return shared.NewDomainError("MISSING_FIELD", "Student phone cannot be empty")
	}
	s.Phone = phone
	s.Email = email
	s.ParentName = parentName
	s.ParentPhone = parentPhone
	s.UpdatedAt = time.Now()
	return nil
}

// AssignBatch moves the student to a different batch.
func (s *Student) AssignBatch(batchID uuid.UUID) error {
	if batchID == uuid.Nil {
		return shared.NewDomainError("MISSING_FIELD", "Batch is required")
	}
	s.BatchID = batchID
	s.UpdatedAt = time.Now()
	return nil
}

// SetNotes sets free-form notes
func (s *Student) SetNotes(notes string) {
	s.Notes = notes
	s.UpdatedAt = time.Now()
}

// MarkConvertedFrom stamps the lead this student was converted from.
func (s *Student) MarkConvertedFrom(leadID uuid.UUID) {
	s.ConvertedFromLeadID = &leadID
}

// Deactivate marks the student inactive (left or completed)
func (s *Student) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
}

// Reactivate marks the student active again
func (s *Student) Reactivate() {
	s.IsActive = true
	s.UpdatedAt = time.Now()
}

// GetTotalFeeMoney returns the total fee as Money
func (s *Student) GetTotalFeeMoney() valueobject.Money {
	return valueobject.NewMoneyINR(s.TotalFee)
}

// GetFeePaidMoney returns the paid amount as Money
func (s *Student) GetFeePaidMoney() valueobject.Money {
	return valueobject.NewMoneyINR(s.FeePaid)
}

// GetFeeDueMoney returns the outstanding amount as Money
func (s *Student) GetFeeDueMoney() valueobject.Money {
	return valueobject.NewMoneyINR(s.FeeDue)
}
