package crm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/crm"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/institute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LeadService manages the lead pipeline from capture through conversion.
// Conversion is the critical path: the new student, the optional first
// payment and the lead status flip commit in one transaction, so a crash can
// never leave a converted lead without its student or a student without the
// payment that was taken at the counter.
type LeadService struct {
	convScope ConversionScope
	leadRepo  crm.LeadRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewLeadService creates a new LeadService
func NewLeadService(
	convScope ConversionScope,
	leadRepo crm.LeadRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{
		convScope: convScope,
		leadRepo:  leadRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// CaptureLead registers a new lead in NEW status
func (s *LeadService) CaptureLead(ctx context.Context, req CaptureLeadRequest) (*crm.Lead, error) {
	lead, err := crm.NewLead(req.TenantID, req.Name, req.Phone, req.Source, req.CourseInterest)
	if err != nil {
		return nil, err
	}
	if req.Email != "" {
		lead.SetEmail(req.Email)
	}
	if req.Notes != "" {
		lead.SetNotes(req.Notes)
	}
	if req.AssignedUserID != nil {
		lead.Assign(*req.AssignedUserID)
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.publishAfterCommit(ctx, collectEvents(lead))

	return lead, nil
}

// GetLead returns a single lead
func (s *LeadService) GetLead(ctx context.Context, tenantID, leadID uuid.UUID) (*crm.Lead, error) {
	return s.leadRepo.FindByIDForTenant(ctx, tenantID, leadID)
}

// ListLeads lists leads for a tenant with paging
func (s *LeadService) ListLeads(ctx context.Context, tenantID uuid.UUID, filter crm.LeadFilter) ([]crm.Lead, int64, error) {
	leads, err := s.leadRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.leadRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// UpdateLead applies a partial update to a lead. Status changes go through
// the follow-up workflow; setting CONVERTED this way is rejected.
func (s *LeadService) UpdateLead(ctx context.Context, tenantID, leadID uuid.UUID, req UpdateLeadRequest) (*crm.Lead, error) {
	lead, err := s.leadRepo.FindByIDForTenant(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if err := lead.UpdateStatus(*req.Status); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		lead.SetEmail(*req.Email)
	}
	if req.Notes != nil {
		lead.SetNotes(*req.Notes)
	}
	if req.AssignedUserID != nil {
		lead.Assign(*req.AssignedUserID)
	}

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}

	return lead, nil
}

// DeleteLead removes a lead
func (s *LeadService) DeleteLead(ctx context.Context, tenantID, leadID uuid.UUID) error {
	return s.leadRepo.Delete(ctx, tenantID, leadID)
}

// ConvertLeadToStudent enrolls a lead as a student. The lead row is locked
// for the duration of the transaction, so a double-submitted conversion
// serializes and the second attempt fails on the already-converted check.
func (s *LeadService) ConvertLeadToStudent(ctx context.Context, req ConvertLeadRequest) (*ConversionResult, error) {
	if req.BatchID == uuid.Nil {
		return nil, shared.NewDomainError("MISSING_FIELD", "Batch is required to convert a lead")
	}
	if req.EnrollmentDate.IsZero() {
		return nil, shared.NewDomainError("MISSING_FIELD", "Enrollment date is required to convert a lead")
	}
	if req.TotalFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total fee cannot be negative")
	}
	if req.InitialPayment.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Initial payment cannot be negative")
	}
	if req.InitialPayment.IsPositive() && req.PaymentMethod == "" {
		return nil, shared.NewDomainError("MISSING_FIELD", "Payment method is required when an initial payment is taken")
	}
	var (
		result ConversionResult
		events []shared.DomainEvent
	)

	err := s.convScope.Execute(ctx, func(repos ConversionRepositories) error {
		lead, err := repos.LeadRepo().FindByIDForUpdate(ctx, req.TenantID, req.LeadID)
		if err != nil {
			return err
		}

		student, err := enrollment.NewStudent(
			req.TenantID,
			lead.Name,
			lead.Phone,
			req.BatchID,
			req.EnrollmentDate,
			req.TotalFee,
			req.InitialPayment,
		)
		if err != nil {
			return err
		}
		if lead.Email != "" {
			if err := student.UpdateContact(lead.Phone, lead.Email, "", ""); err != nil {
				return err
			}
		}
		student.MarkConvertedFrom(lead.ID)
		student.CompleteEnrollment()

		// Convert validates the lead state, so a double-submitted or dropped
		// lead is rejected before anything is written.
		if err := lead.Convert(student.ID); err != nil {
			return err
		}

		if err := repos.StudentRepo().Create(ctx, student); err != nil {
			return fmt.Errorf("failed to create student: %w", err)
		}

		var payment *finance.Payment
		if req.InitialPayment.IsPositive() {
			paymentDate := req.PaymentDate
			if paymentDate.IsZero() {
				paymentDate = req.EnrollmentDate
			}
			payment, err = finance.NewPayment(req.TenantID, student.ID, req.InitialPayment, paymentDate, req.PaymentMethod)
			if err != nil {
				return err
			}
			payment.SetReference(req.Reference)
			if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
				return fmt.Errorf("failed to create initial payment: %w", err)
			}
		}

		if err := repos.LeadRepo().Save(ctx, lead); err != nil {
			return fmt.Errorf("failed to save lead: %w", err)
		}

		result = ConversionResult{Lead: lead, Student: student, Payment: payment}
		events = append(collectEvents(student), collectEvents(lead)...)
		if payment != nil {
			events = append(events, collectEvents(payment)...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishAfterCommit(ctx, events)

	return &result, nil
}

// publishAfterCommit hands domain events to the event bus. Failures are
// logged and swallowed: a slow or broken mail provider must never fail a
// committed conversion.
func (s *LeadService) publishAfterCommit(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish lead events", zap.Error(err))
	}
}

// collectEvents drains the pending domain events of an aggregate
func collectEvents(agg shared.AggregateRoot) []shared.DomainEvent {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	return events
}
