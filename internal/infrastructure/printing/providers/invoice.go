package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	appidentity "github.com/institute/backend/internal/application/identity"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/institute/backend/internal/domain/identity"
	"github.com/institute/backend/internal/domain/shared"
	infra "github.com/institute/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceProvider implements infra.InvoiceDataProvider. It loads the
// payment(s), the owning student, the batch name and the tenant letterhead,
// and embeds the logo as a data URL. A missing or unreadable logo never fails
// the render.
type InvoiceProvider struct {
	paymentRepo finance.PaymentRepository
	studentRepo enrollment.StudentRepository
	batchRepo   enrollment.BatchRepository
	tenantRepo  identity.TenantRepository
	storage     appidentity.ObjectStorage
	logger      *zap.Logger
}

// NewInvoiceProvider creates a new InvoiceProvider.
func NewInvoiceProvider(
	paymentRepo finance.PaymentRepository,
	studentRepo enrollment.StudentRepository,
	batchRepo enrollment.BatchRepository,
	tenantRepo identity.TenantRepository,
	storage appidentity.ObjectStorage,
	logger *zap.Logger,
) *InvoiceProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceProvider{
		paymentRepo: paymentRepo,
		studentRepo: studentRepo,
		batchRepo:   batchRepo,
		tenantRepo:  tenantRepo,
		storage:     storage,
		logger:      logger,
	}
}

// GetPaymentInvoiceData loads the data for a single-payment invoice.
func (p *InvoiceProvider) GetPaymentInvoiceData(ctx context.Context, tenantID, paymentID uuid.UUID) (*infra.InvoiceData, error) {
	payment, err := p.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	student, err := p.studentRepo.FindByIDForTenant(ctx, tenantID, payment.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}

	data := &infra.InvoiceData{
		InvoiceNo:    invoiceNumber("INV", payment.ID),
		InvoiceDate:  payment.PaymentDate,
		Organization: p.loadOrganization(ctx, tenantID),
		Student:      p.buildStudentInfo(ctx, student),
		Lines: []infra.PaymentLine{{
			Description: payment.Method.DisplayText(),
			Date:        payment.PaymentDate,
			Reference:   payment.Reference,
			Amount:      payment.Amount,
		}},
		TotalAmount: payment.Amount,
		NextDueDate: payment.NextDueDate,
		Terms:       infra.InvoiceTerms,
	}

	return data, nil
}

// GetConsolidatedInvoiceData loads all payments of a student into one
// summary invoice annotated with the covered date range.
func (p *InvoiceProvider) GetConsolidatedInvoiceData(ctx context.Context, tenantID, studentID uuid.UUID) (*infra.InvoiceData, error) {
	student, err := p.studentRepo.FindByIDForTenant(ctx, tenantID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}

	payments, err := p.paymentRepo.FindByStudent(ctx, tenantID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	if len(payments) == 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "Student has no payments to invoice")
	}

	lines := make([]infra.PaymentLine, 0, len(payments))
	total := decimal.Zero
	from := payments[0].PaymentDate
	to := payments[0].PaymentDate
	for i := range payments {
		pay := &payments[i]
		lines = append(lines, infra.PaymentLine{
			Description: pay.Method.DisplayText(),
			Date:        pay.PaymentDate,
			Reference:   pay.Reference,
			Amount:      pay.Amount,
		})
		total = total.Add(pay.Amount)
		if pay.PaymentDate.Before(from) {
			from = pay.PaymentDate
		}
		if pay.PaymentDate.After(to) {
			to = pay.PaymentDate
		}
	}

	data := &infra.InvoiceData{
		InvoiceNo:    invoiceNumber("CINV", student.ID),
		InvoiceDate:  time.Now(),
		Organization: p.loadOrganization(ctx, tenantID),
		Student:      p.buildStudentInfo(ctx, student),
		Lines:        lines,
		TotalAmount:  total,
		Consolidated: true,
		PeriodFrom:   &from,
		PeriodTo:     &to,
		Terms:        infra.InvoiceTerms,
	}

	return data, nil
}

// loadOrganization builds the letterhead block. Settings or logo failures
// degrade to a blank block rather than failing the invoice.
func (p *InvoiceProvider) loadOrganization(ctx context.Context, tenantID uuid.UUID) infra.OrganizationInfo {
	tenant, err := p.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		p.logger.Warn("failed to load tenant settings for invoice",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return infra.OrganizationInfo{}
	}

	info := infra.OrganizationInfo{
		Name:    tenant.Name,
		Address: tenant.Address,
		Phone:   tenant.Phone,
		Email:   tenant.Email,
		Website: tenant.Website,
		GSTIN:   tenant.GSTIN,
	}

	if tenant.LogoKey != "" && p.storage != nil {
		if logo, contentType, err := p.storage.GetObject(ctx, tenant.LogoKey); err == nil && len(logo) > 0 {
			if contentType == "" {
				contentType = "image/png"
			}
			info.LogoDataURL = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(logo)
		} else if err != nil {
			p.logger.Warn("failed to load tenant logo, rendering without it",
				zap.String("logo_key", tenant.LogoKey), zap.Error(err))
		}
	}

	return info
}

func (p *InvoiceProvider) buildStudentInfo(ctx context.Context, student *enrollment.Student) infra.StudentInfo {
	info := infra.StudentInfo{
		ID:       student.ID,
		Name:     student.Name,
		Phone:    student.Phone,
		Email:    student.Email,
		TotalFee: student.TotalFee,
		FeePaid:  student.FeePaid,
		FeeDue:   student.FeeDue,
	}

	if batch, err := p.batchRepo.FindByIDForTenant(ctx, student.TenantID, student.BatchID); err == nil {
		info.BatchName = batch.Name
	}

	return info
}

// invoiceNumber derives a stable human-readable number from the entity id
func invoiceNumber(prefix string, id uuid.UUID) string {
	return prefix + "-" + strings.ToUpper(id.String()[:8])
}

// Ensure InvoiceProvider implements InvoiceDataProvider
var _ infra.InvoiceDataProvider = (*InvoiceProvider)(nil)
