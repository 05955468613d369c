package enrollment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appfinance "github.com/institute/backend/internal/application/finance"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/institute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StudentService manages direct enrollment and student record maintenance.
// It shares the student+payment transaction scope with the payment service so
// an enrollment that takes money at the counter writes the student and the
// payment atomically.
type StudentService struct {
	txScope     appfinance.TransactionScope
	studentRepo enrollment.StudentRepository
	batchRepo   enrollment.BatchRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	txScope appfinance.TransactionScope,
	studentRepo enrollment.StudentRepository,
	batchRepo enrollment.BatchRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		txScope:     txScope,
		studentRepo: studentRepo,
		batchRepo:   batchRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// EnrollStudent enrolls a student directly. When an initial payment is taken
// it is recorded as a payment row in the same transaction, so FeePaid always
// equals the sum of the student's payment amounts.
func (s *StudentService) EnrollStudent(ctx context.Context, req EnrollStudentRequest) (*EnrollmentResult, error) {
	if req.InitialPayment.IsPositive() && req.PaymentMethod == "" {
		return nil, shared.NewDomainError("MISSING_FIELD", "Payment method is required when an initial payment is taken")
	}

	if _, err := s.batchRepo.FindByIDForTenant(ctx, req.TenantID, req.BatchID); err != nil {
		return nil, err
	}
	if existing, err := s.studentRepo.FindByPhone(ctx, req.TenantID, req.Phone); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("A student with phone %s already exists", req.Phone))
	}

	var (
		result EnrollmentResult
		events []shared.DomainEvent
	)

	err := s.txScope.Execute(ctx, func(repos appfinance.TransactionalRepositories) error {
		student, err := enrollment.NewStudent(
			req.TenantID,
			req.Name,
			req.Phone,
			req.BatchID,
			req.EnrollmentDate,
			req.TotalFee,
			req.InitialPayment,
		)
		if err != nil {
			return err
		}
		if req.Email != "" || req.ParentName != "" || req.ParentPhone != "" {
			if err := student.UpdateContact(req.Phone, req.Email, req.ParentName, req.ParentPhone); err != nil {
				return err
			}
		}
		if req.Notes != "" {
			student.SetNotes(req.Notes)
		}
		student.CompleteEnrollment()

		if err := repos.StudentRepo().Create(ctx, student); err != nil {
			return fmt.Errorf("failed to create student: %w", err)
		}

		var payment *finance.Payment
		if req.InitialPayment.IsPositive() {
			payment, err = finance.NewPayment(req.TenantID, student.ID, req.InitialPayment, req.EnrollmentDate, req.PaymentMethod)
			if err != nil {
				return err
			}
			if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
				return fmt.Errorf("failed to create enrollment payment: %w", err)
			}
		}

		result = EnrollmentResult{Student: student, Payment: payment}
		events = student.GetDomainEvents()
		student.ClearDomainEvents()
		if payment != nil {
			events = append(events, payment.GetDomainEvents()...)
			payment.ClearDomainEvents()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishAfterCommit(ctx, events)

	return &result, nil
}

// GetStudent returns a single student
func (s *StudentService) GetStudent(ctx context.Context, tenantID, studentID uuid.UUID) (*enrollment.Student, error) {
	return s.studentRepo.FindByIDForTenant(ctx, tenantID, studentID)
}

// ListStudents lists students for a tenant with paging
func (s *StudentService) ListStudents(ctx context.Context, tenantID uuid.UUID, filter enrollment.StudentFilter) ([]enrollment.Student, int64, error) {
	students, err := s.studentRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.studentRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// UpdateStudent applies a partial update to a student record. A total fee
// change runs against the locked row because it recomputes FeeDue.
func (s *StudentService) UpdateStudent(ctx context.Context, tenantID, studentID uuid.UUID, req UpdateStudentRequest) (*enrollment.Student, error) {
	var updated *enrollment.Student

	err := s.txScope.Execute(ctx, func(repos appfinance.TransactionalRepositories) error {
		student, err := repos.StudentRepo().FindByIDForUpdate(ctx, tenantID, studentID)
		if err != nil {
			return err
		}

		if req.Phone != nil || req.Email != nil || req.ParentName != nil || req.ParentPhone != nil {
			phone := student.Phone
			if req.Phone != nil {
				phone = *req.Phone
			}
			email := student.Email
			if req.Email != nil {
				email = *req.Email
			}
			parentName := student.ParentName
			if req.ParentName != nil {
				parentName = *req.ParentName
			}
			parentPhone := student.ParentPhone
			if req.ParentPhone != nil {
				parentPhone = *req.ParentPhone
			}
			if err := student.UpdateContact(phone, email, parentName, parentPhone); err != nil {
				return err
			}
		}
		if req.BatchID != nil {
			if _, err := s.batchRepo.FindByIDForTenant(ctx, tenantID, *req.BatchID); err != nil {
				return err
			}
			if err := student.AssignBatch(*req.BatchID); err != nil {
				return err
			}
		}
		if req.TotalFee != nil {
			if err := student.UpdateTotalFee(*req.TotalFee); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			student.SetNotes(*req.Notes)
		}

		if err := repos.StudentRepo().Save(ctx, student); err != nil {
			return fmt.Errorf("failed to save student: %w", err)
		}
		updated = student
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeactivateStudent marks a student inactive without touching the ledger
func (s *StudentService) DeactivateStudent(ctx context.Context, tenantID, studentID uuid.UUID) error {
	student, err := s.studentRepo.FindByIDForTenant(ctx, tenantID, studentID)
	if err != nil {
		return err
	}
	student.Deactivate()
	return s.studentRepo.Save(ctx, student)
}

// DeleteStudent removes a student; the storage layer cascades the student's
// payments.
func (s *StudentService) DeleteStudent(ctx context.Context, tenantID, studentID uuid.UUID) error {
	return s.studentRepo.Delete(ctx, tenantID, studentID)
}

func (s *StudentService) publishAfterCommit(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish enrollment events", zap.Error(err))
	}
}
