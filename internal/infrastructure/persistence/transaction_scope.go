package persistence

import (
	"context"

	appcrm "github.com/institute/backend/internal/application/crm"
	appfinance "github.com/institute/backend/internal/application/finance"
	"github.com/institute/backend/internal/domain/crm"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
	"gorm.io/gorm"
)

// GormTransactionScope implements the payment TransactionScope using GORM
// transactions. All repository operations performed inside Execute share one
// database transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appfinance.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories scoped to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// StudentRepo returns the student repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StudentRepo() enrollment.StudentRepository {
	return NewGormStudentRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentRepo() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// GormConversionScope implements the lead conversion scope using GORM
// transactions. Lead flip, student insert and the optional initial payment
// commit or roll back as one unit.
type GormConversionScope struct {
	db *gorm.DB
}

// NewGormConversionScope creates a new GormConversionScope
func NewGormConversionScope(db *gorm.DB) *GormConversionScope {
	return &GormConversionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormConversionScope) Execute(ctx context.Context, fn func(repos appcrm.ConversionRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormConversionRepositories{tx: tx})
	})
}

// gormConversionRepositories provides repositories scoped to one transaction.
type gormConversionRepositories struct {
	tx *gorm.DB
}

// LeadRepo returns the lead repository scoped to the current transaction.
func (r *gormConversionRepositories) LeadRepo() crm.LeadRepository {
	return NewGormLeadRepository(r.tx)
}

// StudentRepo returns the student repository scoped to the current transaction.
func (r *gormConversionRepositories) StudentRepo() enrollment.StudentRepository {
	return NewGormStudentRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormConversionRepositories) PaymentRepo() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Ensure the scopes implement their application interfaces
var (
	_ appfinance.TransactionScope          = (*GormTransactionScope)(nil)
	_ appfinance.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ appcrm.ConversionScope               = (*GormConversionScope)(nil)
	_ appcrm.ConversionRepositories        = (*gormConversionRepositories)(nil)
)
