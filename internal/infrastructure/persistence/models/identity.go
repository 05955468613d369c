package models

import (
	"github.com/institute/backend/internal/domain/identity"
)

// TenantModel is the persistence model for the Tenant aggregate.
type TenantModel struct {
	AggregateModel
	Name     string `gorm:"type:varchar(200);not null"`
	Address  string `gorm:"type:text"`
	Phone    string `gorm:"type:varchar(50)"`
	Email    string `gorm:"type:varchar(200)"`
	Website  string `gorm:"type:varchar(200)"`
	GSTIN    string `gorm:"type:varchar(50)"`
	LogoKey  string `gorm:"type:varchar(500)"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *identity.Tenant {
	t := &identity.Tenant{
		Name:     m.Name,
		Address:  m.Address,
		Phone:    m.Phone,
		Email:    m.Email,
		Website:  m.Website,
		GSTIN:    m.GSTIN,
		LogoKey:  m.LogoKey,
		IsActive: m.IsActive,
	}
	m.PopulateAggregateRoot(&t.BaseAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Name = t.Name
	m.Address = t.Address
	m.Phone = t.Phone
	m.Email = t.Email
	m.Website = t.Website
	m.GSTIN = t.GSTIN
	m.LogoKey = t.LogoKey
	m.IsActive = t.IsActive
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant entity.
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}
