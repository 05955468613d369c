package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/shared"
)

// Tenant represents one training institute (organization). Its settings bag
// feeds the invoice header and the email footer.
type Tenant struct {
	shared.BaseAggregateRoot
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Website  string `json:"website"`
	GSTIN    string `json:"gstin"`
	LogoKey  string `json:"logo_key"` // storage object key, empty if no logo uploaded
	IsActive bool   `json:"is_active"`
}

// NewTenant creates a new tenant
func NewTenant(name string) (*Tenant, error) {
	if name == "" {
		return nil, shared.NewDomainError("MISSING_FIELD", "Organization name cannot be empty")
	}
	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		IsActive:          true,
	}, nil
}

// UpdateSettings replaces the organization settings bag
func (t *Tenant) UpdateSettings(name, address, phone, email, website, gstin string) error {
	if name == "" {
		return shared.NewDomainError("MISSING_FIELD", "Organization name cannot be empty")
	}
	t.Name = name
	t.Address = address
	t.Phone = phone
	t.Email = email
	t.Website = website
	t.GSTIN = gstin
	t.UpdatedAt = time.Now()
	return nil
}

// SetLogoKey records where the uploaded logo lives in object storage
func (t *Tenant) SetLogoKey(key string) {
	t.LogoKey = key
	t.UpdatedAt = time.Now()
}

// TenantRepository defines persistence operations for Tenant
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	Create(ctx context.Context, tenant *Tenant) error
	Save(ctx context.Context, tenant *Tenant) error
}
