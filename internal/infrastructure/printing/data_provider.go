package printing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceDataProvider loads everything an invoice render needs: the
// payment(s), the owning student and the organization settings of the tenant.
type InvoiceDataProvider interface {
	// GetPaymentInvoiceData loads the data for a single-payment invoice
	GetPaymentInvoiceData(ctx context.Context, tenantID, paymentID uuid.UUID) (*InvoiceData, error)
	// GetConsolidatedInvoiceData loads the data for a consolidated invoice
	// covering all payments of one student
	GetConsolidatedInvoiceData(ctx context.Context, tenantID, studentID uuid.UUID) (*InvoiceData, error)
}

// OrganizationInfo is the tenant letterhead block on the invoice
type OrganizationInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	GSTIN   string `json:"gstin"`
	// LogoDataURL is a data: URL with the logo image, empty when the tenant
	// has no logo or the asset could not be loaded
	LogoDataURL string `json:"logoDataUrl"`
}

// StudentInfo is the Bill To block on the invoice
type StudentInfo struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email"`
	BatchName string          `json:"batchName"`
	TotalFee  decimal.Decimal `json:"totalFee"`
	FeePaid   decimal.Decimal `json:"feePaid"`
	FeeDue    decimal.Decimal `json:"feeDue"`
}

// PaymentLine is one row of the payment-details table
type PaymentLine struct {
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceData is the data bound to the invoice template
type InvoiceData struct {
	InvoiceNo    string           `json:"invoiceNo"`
	InvoiceDate  time.Time        `json:"invoiceDate"`
	Organization OrganizationInfo `json:"organization"`
	Student      StudentInfo      `json:"student"`
	Lines        []PaymentLine    `json:"lines"`
	TotalAmount  decimal.Decimal  `json:"totalAmount"`
	NextDueDate  *time.Time       `json:"nextDueDate,omitempty"`

	// Consolidated is true when the invoice summarizes all payments of a
	// student; PeriodFrom/PeriodTo then span the covered payment dates.
	Consolidated bool       `json:"consolidated"`
	PeriodFrom   *time.Time `json:"periodFrom,omitempty"`
	PeriodTo     *time.Time `json:"periodTo,omitempty"`

	Terms []string `json:"terms"`
}

// InvoiceTerms is the fixed Terms & Conditions block printed on every invoice
var InvoiceTerms = []string{
	"Fees once paid are not refundable or transferable under any circumstances.",
	"This receipt is valid only when accompanied by a confirmed bank or cash entry.",
	"The balance fee, if any, must be cleared on or before the next due date.",
	"Classes may be suspended for accounts with overdue balances without prior notice.",
	"Any discrepancy in this invoice must be reported within 7 days of issue.",
	"All disputes are subject to the jurisdiction of the institute's registered city.",
}
