package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment aggregate.
// The foreign key to students carries ON DELETE CASCADE so deleting a
// student removes its payment history in one statement.
type PaymentModel struct {
	TenantAggregateModel
	StudentID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentDate    time.Time             `gorm:"not null;index"`
	Method         finance.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference      string                `gorm:"type:varchar(200)"`
	Notes          string                `gorm:"type:text"`
	NextDueDate    *time.Time            ``
	IdempotencyKey string                `gorm:"type:varchar(200);uniqueIndex:idx_payment_tenant_idem,priority:2,where:idempotency_key <> ''"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *finance.Payment {
	p := &finance.Payment{
		StudentID:      m.StudentID,
		Amount:         m.Amount,
		PaymentDate:    m.PaymentDate,
		Method:         m.Method,
		Reference:      m.Reference,
		Notes:          m.Notes,
		NextDueDate:    m.NextDueDate,
		IdempotencyKey: m.IdempotencyKey,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.StudentID = p.StudentID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Method = p.Method
	m.Reference = p.Reference
	m.Notes = p.Notes
	m.NextDueDate = p.NextDueDate
	m.IdempotencyKey = p.IdempotencyKey
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
