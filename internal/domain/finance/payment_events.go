package finance

import (
	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the finance context
const (
	EventTypePaymentRecorded = "finance.payment_recorded"
	EventTypePaymentEdited   = "finance.payment_edited"
	EventTypePaymentDeleted  = "finance.payment_deleted"
)

// PaymentRecordedEvent is published after a payment commits. The notification
// handler uses it to send the payment receipt email.
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	StudentID   uuid.UUID       `json:"student_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	PaymentDate string          `json:"payment_date"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, "Payment", p.ID, p.TenantID),
		StudentID:       p.StudentID,
		Amount:          p.Amount,
		Method:          p.Method,
		PaymentDate:     p.PaymentDate.Format("2006-01-02"),
	}
}

// PaymentEditedEvent is published after a payment edit commits
type PaymentEditedEvent struct {
	shared.BaseDomainEvent
	StudentID uuid.UUID       `json:"student_id"`
	OldAmount decimal.Decimal `json:"old_amount"`
	NewAmount decimal.Decimal `json:"new_amount"`
	Delta     decimal.Decimal `json:"delta"`
}

// NewPaymentEditedEvent creates a PaymentEditedEvent
func NewPaymentEditedEvent(p *Payment, oldAmount, delta decimal.Decimal) *PaymentEditedEvent {
	return &PaymentEditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentEdited, "Payment", p.ID, p.TenantID),
		StudentID:       p.StudentID,
		OldAmount:       oldAmount,
		NewAmount:       p.Amount,
		Delta:           delta,
	}
}

// PaymentDeletedEvent is published after a payment deletion commits
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	StudentID uuid.UUID       `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewPaymentDeletedEvent creates a PaymentDeletedEvent
func NewPaymentDeletedEvent(p *Payment) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeleted, "Payment", p.ID, p.TenantID),
		StudentID:       p.StudentID,
		Amount:          p.Amount,
	}
}
