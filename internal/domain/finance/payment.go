package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/institute/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodBankTransfer,
		PaymentMethodOnline, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// DisplayText returns the human-readable label used on invoices
func (m PaymentMethod) DisplayText() string {
	switch m {
	case PaymentMethodCash:
		return "Cash Payment"
	case PaymentMethodCheck:
		return "Check Payment"
	case PaymentMethodBankTransfer:
		return "Bank Transfer"
	case PaymentMethodOnline:
		return "Online Payment"
	default:
		return "Other Payment"
	}
}

// Payment represents a single fee payment made by a student. Payments are
// append-mostly: only the amount, date, method, reference, notes and next due
// date are mutable, and an amount change must be reconciled against the
// owning student's ledger in the same transaction.
type Payment struct {
	shared.TenantAggregateRoot
	StudentID      uuid.UUID       `json:"student_id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentDate    time.Time       `json:"payment_date"`
	Method         PaymentMethod   `json:"method"`
	Reference      string          `json:"reference"`
	Notes          string          `json:"notes"`
	NextDueDate    *time.Time      `json:"next_due_date,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// NewPayment creates a new payment record
func NewPayment(
	tenantID, studentID uuid.UUID,
	amount decimal.Decimal,
	paymentDate time.Time,
	method PaymentMethod,
) (*Payment, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("MISSING_FIELD", "Student is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown payment method %q", method))
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StudentID:           studentID,
		Amount:              amount,
		PaymentDate:         paymentDate,
		Method:              method,
	}

	p.AddDomainEvent(NewPaymentRecordedEvent(p))

	return p, nil
}

// ChangeAmount updates the payment amount and returns the signed delta the
// owning student's ledger must be reconciled by. A zero delta means the
// amount did not change.
func (p *Payment) ChangeAmount(newAmount decimal.Decimal) (decimal.Decimal, error) {
	if newAmount.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}

	delta := newAmount.Sub(p.Amount)
	if delta.IsZero() {
		return decimal.Zero, nil
	}

	p.Amount = newAmount
	p.UpdatedAt = time.Now()

	return delta, nil
}

// ChangeMethod updates the payment method
func (p *Payment) ChangeMethod(method PaymentMethod) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown payment method %q", method))
	}
	p.Method = method
	p.UpdatedAt = time.Now()
	return nil
}

// ChangeDate updates the payment date
func (p *Payment) ChangeDate(paymentDate time.Time) error {
	if paymentDate.IsZero() {
		return shared.NewDomainError("MISSING_FIELD", "Payment date is required")
	}
	p.PaymentDate = paymentDate
	p.UpdatedAt = time.Now()
	return nil
}

// SetReference sets the external reference (check number, UTR, ...)
func (p *Payment) SetReference(reference string) {
	p.Reference = reference
	p.UpdatedAt = time.Now()
}

// SetNotes sets free-form notes
func (p *Payment) SetNotes(notes string) {
	p.Notes = notes
	p.UpdatedAt = time.Now()
}

// SetNextDueDate records when the next installment is expected
func (p *Payment) SetNextDueDate(next *time.Time) {
	p.NextDueDate = next
	p.UpdatedAt = time.Now()
}

// SetIdempotencyKey stamps the caller-supplied idempotency key
func (p *Payment) SetIdempotencyKey(key string) {
	p.IdempotencyKey = key
}

// GetAmountMoney returns the amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(p.Amount)
}
