package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/institute/backend/internal/domain/identity"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/institute/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentReceiptHandler emails a receipt to the student after a payment is
// recorded. Students without an email address are skipped silently.
type PaymentReceiptHandler struct {
	students enrollment.StudentRepository
	tenants  identity.TenantRepository
	sender   Sender
	logger   *zap.Logger
}

// NewPaymentReceiptHandler creates a PaymentReceiptHandler
func NewPaymentReceiptHandler(
	students enrollment.StudentRepository,
	tenants identity.TenantRepository,
	sender Sender,
	logger *zap.Logger,
) *PaymentReceiptHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentReceiptHandler{
		students: students,
		tenants:  tenants,
		sender:   sender,
		logger:   logger.Named("payment-receipt"),
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *PaymentReceiptHandler) EventTypes() []string {
	return []string{finance.EventTypePaymentRecorded}
}

// Handle sends the receipt email for a recorded payment
func (h *PaymentReceiptHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	recorded, ok := event.(*finance.PaymentRecordedEvent)
	if !ok {
		return nil
	}

	student, err := h.students.FindByIDForTenant(ctx, recorded.TenantID(), recorded.StudentID)
	if err != nil {
		return fmt.Errorf("failed to load student for receipt: %w", err)
	}
	if student.Email == "" {
		h.logger.Debug("skipping receipt, student has no email address",
			zap.String("student_id", student.ID.String()))
		return nil
	}

	tenant, err := h.tenants.FindByID(ctx, recorded.TenantID())
	if err != nil {
		return fmt.Errorf("failed to load organization for receipt: %w", err)
	}

	subject := fmt.Sprintf("Payment received - %s", tenant.Name)
	body := receiptBody(student, tenant, recorded)

	if err := h.sender.Send(ctx, student.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send payment receipt: %w", err)
	}

	h.logger.Info("payment receipt sent",
		zap.String("student_id", student.ID.String()),
		zap.String("payment_id", recorded.AggregateID().String()))
	return nil
}

func receiptBody(student *enrollment.Student, tenant *identity.Tenant, e *finance.PaymentRecordedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", student.Name)
	fmt.Fprintf(&b, "We have received your payment of %s on %s (%s).\n\n",
		formatAmount(e.Amount), e.PaymentDate, e.Method)
	fmt.Fprintf(&b, "Total fee:       %s\n", formatAmount(student.TotalFee))
	fmt.Fprintf(&b, "Paid so far:     %s\n", formatAmount(student.FeePaid))
	fmt.Fprintf(&b, "Balance due:     %s\n\n", formatAmount(student.FeeDue))
	writeFooter(&b, tenant)
	return b.String()
}

// EnrollmentConfirmationHandler emails a welcome message after a student is
// enrolled, whether directly or through lead conversion.
type EnrollmentConfirmationHandler struct {
	tenants identity.TenantRepository
	sender  Sender
	logger  *zap.Logger
}

// NewEnrollmentConfirmationHandler creates an EnrollmentConfirmationHandler
func NewEnrollmentConfirmationHandler(
	tenants identity.TenantRepository,
	sender Sender,
	logger *zap.Logger,
) *EnrollmentConfirmationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentConfirmationHandler{
		tenants: tenants,
		sender:  sender,
		logger:  logger.Named("enrollment-confirmation"),
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *EnrollmentConfirmationHandler) EventTypes() []string {
	return []string{enrollment.EventTypeStudentEnrolled}
}

// Handle sends the enrollment confirmation email
func (h *EnrollmentConfirmationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	enrolled, ok := event.(*enrollment.StudentEnrolledEvent)
	if !ok {
		return nil
	}
	if enrolled.StudentEmail == "" {
		h.logger.Debug("skipping confirmation, student has no email address",
			zap.String("student_id", enrolled.AggregateID().String()))
		return nil
	}

	tenant, err := h.tenants.FindByID(ctx, enrolled.TenantID())
	if err != nil {
		return fmt.Errorf("failed to load organization for confirmation: %w", err)
	}

	subject := fmt.Sprintf("Welcome to %s", tenant.Name)
	body := confirmationBody(tenant, enrolled)

	if err := h.sender.Send(ctx, enrolled.StudentEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send enrollment confirmation: %w", err)
	}

	h.logger.Info("enrollment confirmation sent",
		zap.String("student_id", enrolled.AggregateID().String()))
	return nil
}

func confirmationBody(tenant *identity.Tenant, e *enrollment.StudentEnrolledEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", e.StudentName)
	fmt.Fprintf(&b, "Your enrollment with %s is confirmed, effective %s.\n\n", tenant.Name, e.EnrollmentDate)
	fmt.Fprintf(&b, "Total fee:       %s\n", formatAmount(e.TotalFee))
	fmt.Fprintf(&b, "Balance due:     %s\n\n", formatAmount(e.FeeDue))
	b.WriteString("Please keep this email for your records.\n\n")
	writeFooter(&b, tenant)
	return b.String()
}

func formatAmount(amount decimal.Decimal) string {
	return fmt.Sprintf("%s %s", valueobject.CurrencySymbol(valueobject.DefaultCurrency), amount.StringFixed(2))
}

func writeFooter(b *strings.Builder, tenant *identity.Tenant) {
	fmt.Fprintf(b, "Regards,\n%s\n", tenant.Name)
	if tenant.Phone != "" {
		fmt.Fprintf(b, "%s\n", tenant.Phone)
	}
	if tenant.Address != "" {
		fmt.Fprintf(b, "%s\n", tenant.Address)
	}
}
