package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService records, edits and deletes payments and keeps the owning
// student's fee ledger reconciled. Every ledger-affecting operation runs in a
// single transaction with the student row locked; domain events are published
// only after the transaction committed so a slow mail provider can never hold
// a database lock.
type PaymentService struct {
	txScope     TransactionScope
	studentRepo enrollment.StudentRepository
	paymentRepo finance.PaymentRepository
	idempotency shared.IdempotencyStore
	idemCfg     shared.IdempotencyConfig
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService. The idempotency store may
// be nil, in which case replay protection is disabled.
func NewPaymentService(
	txScope TransactionScope,
	studentRepo enrollment.StudentRepository,
	paymentRepo finance.PaymentRepository,
	idempotency shared.IdempotencyStore,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		txScope:     txScope,
		studentRepo: studentRepo,
		paymentRepo: paymentRepo,
		idempotency: idempotency,
		idemCfg:     shared.DefaultIdempotencyConfig(),
		publisher:   publisher,
		logger:      logger,
	}
}

// RecordPayment inserts a payment and applies its amount to the student's
// ledger in one transaction. When an idempotency key is supplied and has been
// seen before, the originally created payment is returned and nothing is
// written.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	if req.Amount.IsNegative() {
		return nil, shared.ErrInvalidAmount
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		if existing, err := s.replayPayment(ctx, req); existing != nil || err != nil {
			return existing, err
		}
	}

	var (
		payment *finance.Payment
		result  PaymentResult
		events  []shared.DomainEvent
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		student, err := repos.StudentRepo().FindByIDForUpdate(ctx, req.TenantID, req.StudentID)
		if err != nil {
			return err
		}

		payment, err = finance.NewPayment(req.TenantID, student.ID, req.Amount, req.PaymentDate, req.Method)
		if err != nil {
			return err
		}
		payment.SetReference(req.Reference)
		payment.SetNotes(req.Notes)
		payment.SetNextDueDate(req.NextDueDate)
		payment.SetIdempotencyKey(req.IdempotencyKey)

		if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		if err := student.ApplyPaymentDelta(req.Amount); err != nil {
			return err
		}
		if err := repos.StudentRepo().Save(ctx, student); err != nil {
			return fmt.Errorf("failed to save student ledger: %w", err)
		}

		result = PaymentResult{Payment: payment, FeePaid: student.FeePaid, FeeDue: student.FeeDue}
		events = collectEvents(payment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		if _, err := s.idempotency.Remember(ctx, req.IdempotencyKey, payment.ID.String(), s.idemCfg.TTL); err != nil {
			s.logger.Warn("failed to remember idempotency key",
				zap.String("key", req.IdempotencyKey), zap.Error(err))
		}
	}

	s.publishAfterCommit(ctx, events)

	return &result, nil
}

// UpdatePayment applies a partial update to a payment. When the amount
// changes, the student's ledger is reconciled by the exact decimal delta in
// the same transaction, so fee_paid always equals the sum of the student's
// current payment amounts no matter how many times a payment is edited.
func (s *PaymentService) UpdatePayment(ctx context.Context, tenantID, paymentID uuid.UUID, req UpdatePaymentRequest) (*PaymentResult, error) {
	var (
		result PaymentResult
		events []shared.DomainEvent
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByIDForTenant(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}

		oldAmount := payment.Amount
		delta := decimal.Zero

		if req.Amount != nil {
			delta, err = payment.ChangeAmount(*req.Amount)
			if err != nil {
				return err
			}
		}
		if req.Method != nil {
			if err := payment.ChangeMethod(*req.Method); err != nil {
				return err
			}
		}
		if req.PaymentDate != nil {
			if err := payment.ChangeDate(*req.PaymentDate); err != nil {
				return err
			}
		}
		if req.Reference != nil {
			payment.SetReference(*req.Reference)
		}
		if req.Notes != nil {
			payment.SetNotes(*req.Notes)
		}
		if req.NextDueDate != nil {
			payment.SetNextDueDate(req.NextDueDate)
		}

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		student, err := repos.StudentRepo().FindByIDForUpdate(ctx, tenantID, payment.StudentID)
		if err != nil {
			return err
		}
		if !delta.IsZero() {
			if err := student.ApplyPaymentDelta(delta); err != nil {
				return err
			}
			if err := repos.StudentRepo().Save(ctx, student); err != nil {
				return fmt.Errorf("failed to save student ledger: %w", err)
			}
			payment.AddDomainEvent(finance.NewPaymentEditedEvent(payment, oldAmount, delta))
		}

		result = PaymentResult{Payment: payment, FeePaid: student.FeePaid, FeeDue: student.FeeDue}
		events = collectEvents(payment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishAfterCommit(ctx, events)

	return &result, nil
}

// DeletePayment removes a payment and backs its amount out of the student's
// ledger in one transaction.
func (s *PaymentService) DeletePayment(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByIDForTenant(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}

		student, err := repos.StudentRepo().FindByIDForUpdate(ctx, tenantID, payment.StudentID)
		if err != nil {
			return err
		}

		if err := repos.PaymentRepo().Delete(ctx, tenantID, payment.ID); err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}

		if err := student.ApplyPaymentDelta(payment.Amount.Neg()); err != nil {
			return err
		}
		if err := repos.StudentRepo().Save(ctx, student); err != nil {
			return fmt.Errorf("failed to save student ledger: %w", err)
		}

		payment.ClearDomainEvents()
		payment.AddDomainEvent(finance.NewPaymentDeletedEvent(payment))
		events = collectEvents(payment)
		return nil
	})
	if err != nil {
		return err
	}

	s.publishAfterCommit(ctx, events)

	return nil
}

// GetPayment returns a single payment
func (s *PaymentService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*finance.Payment, error) {
	return s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
}

// ListPayments lists payments for a tenant with paging
func (s *PaymentService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) ([]finance.Payment, int64, error) {
	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// replayPayment returns the previously created payment for a seen
// idempotency key, or nil if the key is new.
func (s *PaymentService) replayPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	stored, err := s.idempotency.Lookup(ctx, req.IdempotencyKey)
	if err != nil {
		s.logger.Warn("idempotency lookup failed, proceeding without replay protection",
			zap.String("key", req.IdempotencyKey), zap.Error(err))
		return nil, nil
	}
	if stored == "" {
		return nil, nil
	}

	paymentID, err := uuid.Parse(stored)
	if err != nil {
		return nil, nil
	}
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, req.TenantID, paymentID)
	if err != nil {
		return nil, err
	}
	student, err := s.studentRepo.FindByIDForTenant(ctx, req.TenantID, payment.StudentID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("replayed payment for idempotency key",
		zap.String("key", req.IdempotencyKey), zap.String("payment_id", stored))
	return &PaymentResult{Payment: payment, FeePaid: student.FeePaid, FeeDue: student.FeeDue}, nil
}

// publishAfterCommit hands domain events to the event bus. Failures are
// logged and swallowed: notification delivery must never fail a committed
// financial write.
func (s *PaymentService) publishAfterCommit(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish payment events", zap.Error(err))
	}
}

// collectEvents drains the pending domain events of an aggregate
func collectEvents(agg shared.AggregateRoot) []shared.DomainEvent {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	return events
}
