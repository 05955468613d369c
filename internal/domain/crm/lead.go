package crm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/shared"
)

// LeadStatus represents the follow-up status of a lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusQualified LeadStatus = "QUALIFIED"
	LeadStatusDropped   LeadStatus = "DROPPED"
	LeadStatusConverted LeadStatus = "CONVERTED"
)

// IsValid checks if the status is a valid LeadStatus
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
		LeadStatusDropped, LeadStatusConverted:
		return true
	}
	return false
}

// String returns the string representation of LeadStatus
func (s LeadStatus) String() string {
	return string(s)
}

// IsTerminal returns true once no further follow-up happens on the lead
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusDropped || s == LeadStatusConverted
}

// Lead represents a prospective student aggregate root. A lead converts to a
// student exactly once; a converted lead is never re-converted.
type Lead struct {
	shared.TenantAggregateRoot
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	Source         string     `json:"source"`
	CourseInterest string     `json:"course_interest"`
	Status         LeadStatus `json:"status"`
	Notes          string     `json:"notes"`
	AssignedUserID *uuid.UUID `json:"assigned_user_id,omitempty"`
	ConvertedAt    *time.Time `json:"converted_at,omitempty"`
}

// NewLead creates a new lead in NEW status
func NewLead(tenantID uuid.UUID, name, phone, source, courseInterest string) (*Lead, error) {
	if name == "" {
		return nil, shared.NewDomainError("MISSING_FIELD", "Lead name cannot be empty")
	}
	if phone == "" {
		return nil, shared.NewDomainError("MISSING_FIELD", "Lead phone cannot be empty")
	}

	l := &Lead{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Phone:               phone,
		Source:              source,
		CourseInterest:      courseInterest,
		Status:              LeadStatusNew,
	}

	l.AddDomainEvent(NewLeadCapturedEvent(l))

	return l, nil
}

// UpdateStatus moves the lead through the follow-up workflow. Converting is
// not reachable through this method; conversion goes through Convert so the
// student back-reference is always stamped in the same transaction.
func (l *Lead) UpdateStatus(status LeadStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown lead status %q", status))
	}
	if status == LeadStatusConverted {
		return shared.NewDomainError("INVALID_STATE", "Lead conversion must go through the conversion pipeline")
	}
	if l.Status == LeadStatusConverted {
		return shared.NewDomainError("INVALID_STATE", "A converted lead cannot change status")
	}

	l.Status = status
	l.UpdatedAt = time.Now()

	return nil
}

// Convert flips the lead to CONVERTED. Returns an error if the lead is
// already converted or was dropped.
func (l *Lead) Convert(studentID uuid.UUID) error {
	if l.Status == LeadStatusConverted {
		return shared.NewDomainError("INVALID_STATE", "Lead has already been converted")
	}
	if l.Status == LeadStatusDropped {
		return shared.NewDomainError("INVALID_STATE", "A dropped lead cannot be converted")
	}

	now := time.Now()
	l.Status = LeadStatusConverted
	l.ConvertedAt = &now
	l.UpdatedAt = now

	l.AddDomainEvent(NewLeadConvertedEvent(l, studentID))

	return nil
}

// Assign assigns the lead to a user for follow-up
func (l *Lead) Assign(userID uuid.UUID) {
	l.AssignedUserID = &userID
	l.UpdatedAt = time.Now()
}

// SetNotes sets free-form notes
func (l *Lead) SetNotes(notes string) {
	l.Notes = notes
	l.UpdatedAt = time.Now()
}

// SetEmail sets the optional email address
func (l *Lead) SetEmail(email string) {
	l.Email = email
	l.UpdatedAt = time.Now()
}

// IsConverted returns true if the lead has been converted to a student
func (l *Lead) IsConverted() bool {
	return l.Status == LeadStatusConverted
}
