package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/shopspring/decimal"
)

// StudentModel is the persistence model for the Student aggregate.
// FeePaid and FeeDue are stored denormalized alongside TotalFee so the
// ledger can be read without summing payments.
type StudentModel struct {
	TenantAggregateModel
	Name                string          `gorm:"type:varchar(200);not null"`
	Phone               string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_student_tenant_phone,priority:2"`
	Email               string          `gorm:"type:varchar(200)"`
	ParentName          string          `gorm:"type:varchar(200)"`
	ParentPhone         string          `gorm:"type:varchar(50)"`
	EnrollmentDate      time.Time       `gorm:"not null"`
	BatchID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalFee            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FeePaid             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FeeDue              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive            bool            `gorm:"not null;default:true"`
	Notes               string          `gorm:"type:text"`
	ConvertedFromLeadID *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the persistence model to a domain Student entity.
func (m *StudentModel) ToDomain() *enrollment.Student {
	s := &enrollment.Student{
		Name:                m.Name,
		Phone:               m.Phone,
		Email:               m.Email,
		ParentName:          m.ParentName,
		ParentPhone:         m.ParentPhone,
		EnrollmentDate:      m.EnrollmentDate,
		BatchID:             m.BatchID,
		TotalFee:            m.TotalFee,
		FeePaid:             m.FeePaid,
		FeeDue:              m.FeeDue,
		IsActive:            m.IsActive,
		Notes:               m.Notes,
		ConvertedFromLeadID: m.ConvertedFromLeadID,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Student entity.
func (m *StudentModel) FromDomain(s *enrollment.Student) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.Name = s.Name
	m.Phone = s.Phone
	m.Email = s.Email
	m.ParentName = s.ParentName
	m.ParentPhone = s.ParentPhone
	m.EnrollmentDate = s.EnrollmentDate
	m.BatchID = s.BatchID
	m.TotalFee = s.TotalFee
	m.FeePaid = s.FeePaid
	m.FeeDue = s.FeeDue
	m.IsActive = s.IsActive
	m.Notes = s.Notes
	m.ConvertedFromLeadID = s.ConvertedFromLeadID
}

// StudentModelFromDomain creates a new persistence model from a domain Student entity.
func StudentModelFromDomain(s *enrollment.Student) *StudentModel {
	m := &StudentModel{}
	m.FromDomain(s)
	return m
}

// BatchModel is the persistence model for the Batch aggregate.
type BatchModel struct {
	TenantAggregateModel
	Name        string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_batch_tenant_name,priority:2"`
	Description string          `gorm:"type:text"`
	StartDate   time.Time       `gorm:"not null"`
	EndDate     *time.Time      ``
	Fee         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Capacity    int             `gorm:"not null;default:0"`
	TrainerID   *uuid.UUID      `gorm:"type:uuid"`
	IsActive    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "batches"
}

// ToDomain converts the persistence model to a domain Batch entity.
func (m *BatchModel) ToDomain() *enrollment.Batch {
	b := &enrollment.Batch{
		Name:        m.Name,
		Description: m.Description,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Fee:         m.Fee,
		Capacity:    m.Capacity,
		TrainerID:   m.TrainerID,
		IsActive:    m.IsActive,
	}
	m.PopulateTenantAggregateRoot(&b.TenantAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain Batch entity.
func (m *BatchModel) FromDomain(b *enrollment.Batch) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.Name = b.Name
	m.Description = b.Description
	m.StartDate = b.StartDate
	m.EndDate = b.EndDate
	m.Fee = b.Fee
	m.Capacity = b.Capacity
	m.TrainerID = b.TrainerID
	m.IsActive = b.IsActive
}

// BatchModelFromDomain creates a new persistence model from a domain Batch entity.
func BatchModelFromDomain(b *enrollment.Batch) *BatchModel {
	m := &BatchModel{}
	m.FromDomain(b)
	return m
}
