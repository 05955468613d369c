package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/crm"
)

// LeadModel is the persistence model for the Lead aggregate.
type LeadModel struct {
	TenantAggregateModel
	Name           string         `gorm:"type:varchar(200);not null"`
	Phone          string         `gorm:"type:varchar(50);not null;index"`
	Email          string         `gorm:"type:varchar(200)"`
	Source         string         `gorm:"type:varchar(100)"`
	CourseInterest string         `gorm:"type:varchar(200)"`
	Status         crm.LeadStatus `gorm:"type:varchar(20);not null;default:'NEW';index"`
	Notes          string         `gorm:"type:text"`
	AssignedUserID *uuid.UUID     `gorm:"type:uuid;index"`
	ConvertedAt    *time.Time     ``
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the persistence model to a domain Lead entity.
func (m *LeadModel) ToDomain() *crm.Lead {
	l := &crm.Lead{
		Name:           m.Name,
		Phone:          m.Phone,
		Email:          m.Email,
		Source:         m.Source,
		CourseInterest: m.CourseInterest,
		Status:         m.Status,
		Notes:          m.Notes,
		AssignedUserID: m.AssignedUserID,
		ConvertedAt:    m.ConvertedAt,
	}
	m.PopulateTenantAggregateRoot(&l.TenantAggregateRoot)
	return l
}

// FromDomain populates the persistence model from a domain Lead entity.
func (m *LeadModel) FromDomain(l *crm.Lead) {
	m.FromDomainTenantAggregateRoot(l.TenantAggregateRoot)
	m.Name = l.Name
	m.Phone = l.Phone
	m.Email = l.Email
	m.Source = l.Source
	m.CourseInterest = l.CourseInterest
	m.Status = l.Status
	m.Notes = l.Notes
	m.AssignedUserID = l.AssignedUserID
	m.ConvertedAt = l.ConvertedAt
}

// LeadModelFromDomain creates a new persistence model from a domain Lead entity.
func LeadModelFromDomain(l *crm.Lead) *LeadModel {
	m := &LeadModel{}
	m.FromDomain(l)
	return m
}
