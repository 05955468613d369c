package crm

import (
	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/shared"
)

// Event types for the CRM context
const (
	EventTypeLeadCaptured  = "crm.lead_captured"
	EventTypeLeadConverted = "crm.lead_converted"
)

// LeadCapturedEvent is published when a lead enters the pipeline
type LeadCapturedEvent struct {
	shared.BaseDomainEvent
	LeadName       string `json:"lead_name"`
	Phone          string `json:"phone"`
	Source         string `json:"source"`
	CourseInterest string `json:"course_interest"`
}

// NewLeadCapturedEvent creates a LeadCapturedEvent
func NewLeadCapturedEvent(l *Lead) *LeadCapturedEvent {
	return &LeadCapturedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadCaptured, "Lead", l.ID, l.TenantID),
		LeadName:        l.Name,
		Phone:           l.Phone,
		Source:          l.Source,
		CourseInterest:  l.CourseInterest,
	}
}

// LeadConvertedEvent is published when a lead becomes a student
type LeadConvertedEvent struct {
	shared.BaseDomainEvent
	LeadName  string    `json:"lead_name"`
	StudentID uuid.UUID `json:"student_id"`
}

// NewLeadConvertedEvent creates a LeadConvertedEvent
func NewLeadConvertedEvent(l *Lead, studentID uuid.UUID) *LeadConvertedEvent {
	return &LeadConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadConverted, "Lead", l.ID, l.TenantID),
		LeadName:        l.Name,
		StudentID:       studentID,
	}
}
