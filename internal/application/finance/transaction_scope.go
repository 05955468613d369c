package finance

import (
	"context"

	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
)

// TransactionScope provides transactional access to the repositories a ledger
// mutation touches. All repository operations performed inside Execute share
// one database transaction and commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories participating
// in a payment transaction. The Student row is the only shared resource: it
// must be loaded through FindByIDForUpdate inside the transaction so that two
// concurrent payments against the same student serialize instead of both
// reading the pre-update fee_paid (lost update).
type TransactionalRepositories interface {
	// StudentRepo returns the student repository scoped to the current transaction
	StudentRepo() enrollment.StudentRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() finance.PaymentRepository
}

// NoOpTransactionScope runs the function without a real transaction. It is
// used in tests where atomicity is exercised elsewhere.
type NoOpTransactionScope struct {
	studentRepo enrollment.StudentRepository
	paymentRepo finance.PaymentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(
	studentRepo enrollment.StudentRepository,
	paymentRepo finance.PaymentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		studentRepo: studentRepo,
		paymentRepo: paymentRepo,
	}
}

// Execute runs the function without transaction boundaries.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StudentRepo returns the student repository.
func (s *NoOpTransactionScope) StudentRepo() enrollment.StudentRepository {
	return s.studentRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() finance.PaymentRepository {
	return s.paymentRepo
}
