package crm

import (
	"context"

	"github.com/institute/backend/internal/domain/crm"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
)

// ConversionScope provides transactional access to the repositories a lead
// conversion touches. Creating the student, recording the optional first
// payment and flipping the lead to CONVERTED commit or roll back as one unit.
type ConversionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos ConversionRepositories) error) error
}

// ConversionRepositories provides access to the repositories participating in
// a lead conversion transaction.
type ConversionRepositories interface {
	// LeadRepo returns the lead repository scoped to the current transaction
	LeadRepo() crm.LeadRepository
	// StudentRepo returns the student repository scoped to the current transaction
	StudentRepo() enrollment.StudentRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() finance.PaymentRepository
}

// NoOpConversionScope runs the function without a real transaction. It is
// used in tests where atomicity is exercised elsewhere.
type NoOpConversionScope struct {
	leadRepo    crm.LeadRepository
	studentRepo enrollment.StudentRepository
	paymentRepo finance.PaymentRepository
}

// NewNoOpConversionScope creates a NoOpConversionScope over the given repositories.
func NewNoOpConversionScope(
	leadRepo crm.LeadRepository,
	studentRepo enrollment.StudentRepository,
	paymentRepo finance.PaymentRepository,
) *NoOpConversionScope {
	return &NoOpConversionScope{
		leadRepo:    leadRepo,
		studentRepo: studentRepo,
		paymentRepo: paymentRepo,
	}
}

// Execute runs the function without transaction boundaries.
func (s *NoOpConversionScope) Execute(_ context.Context, fn func(repos ConversionRepositories) error) error {
	return fn(s)
}

// LeadRepo returns the lead repository.
func (s *NoOpConversionScope) LeadRepo() crm.LeadRepository {
	return s.leadRepo
}

// StudentRepo returns the student repository.
func (s *NoOpConversionScope) StudentRepo() enrollment.StudentRepository {
	return s.studentRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpConversionScope) PaymentRepo() finance.PaymentRepository {
	return s.paymentRepo
}
