package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T, amount string) *Payment {
	t.Helper()
	p, err := NewPayment(uuid.New(), uuid.New(),
		decimal.RequireFromString(amount), time.Now(), PaymentMethodCash)
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	t.Run("creates payment with defaults", func(t *testing.T) {
		p, err := NewPayment(uuid.New(), uuid.New(), decimal.NewFromInt(15000), time.Time{}, "")
		require.NoError(t, err)
		assert.Equal(t, PaymentMethodCash, p.Method)
		assert.False(t, p.PaymentDate.IsZero())
	})

	t.Run("publishes recorded event", func(t *testing.T) {
		p := newTestPayment(t, "15000")
		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePaymentRecorded, events[0].EventType())
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.New(), decimal.NewFromInt(-1), time.Now(), PaymentMethodCash)
		assert.ErrorContains(t, err, "cannot be negative")
	})

	t.Run("allows zero amount", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.New(), decimal.Zero, time.Now(), PaymentMethodCash)
		assert.NoError(t, err)
	})

	t.Run("rejects missing student", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.Nil, decimal.NewFromInt(1), time.Now(), PaymentMethodCash)
		assert.Error(t, err)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), uuid.New(), decimal.NewFromInt(1), time.Now(), PaymentMethod("CRYPTO"))
		assert.Error(t, err)
	})
}

func TestPaymentMethod(t *testing.T) {
	valid := []PaymentMethod{PaymentMethodCash, PaymentMethodCheck,
		PaymentMethodBankTransfer, PaymentMethodOnline, PaymentMethodOther}
	for _, m := range valid {
		assert.True(t, m.IsValid(), "%s should be valid", m)
		assert.NotEmpty(t, m.DisplayText())
	}
	assert.False(t, PaymentMethod("").IsValid())
}

func TestChangeAmount(t *testing.T) {
	t.Run("returns signed delta", func(t *testing.T) {
		p := newTestPayment(t, "15000")
		delta, err := p.ChangeAmount(decimal.NewFromInt(20000))
		require.NoError(t, err)
		assert.True(t, delta.Equal(decimal.NewFromInt(5000)))
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(20000)))
	})

	t.Run("shrinking the amount yields a negative delta", func(t *testing.T) {
		p := newTestPayment(t, "15000")
		delta, err := p.ChangeAmount(decimal.NewFromInt(12000))
		require.NoError(t, err)
		assert.True(t, delta.Equal(decimal.NewFromInt(-3000)))
	})

	t.Run("same amount is a no-op", func(t *testing.T) {
		p := newTestPayment(t, "15000")
		v := p.Version
		delta, err := p.ChangeAmount(decimal.NewFromInt(15000))
		require.NoError(t, err)
		assert.True(t, delta.IsZero())
		assert.Equal(t, v, p.Version)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		p := newTestPayment(t, "15000")
		_, err := p.ChangeAmount(decimal.NewFromInt(-1))
		assert.Error(t, err)
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(15000)))
	})
}

func TestPaymentMutators(t *testing.T) {
	p := newTestPayment(t, "500")

	require.NoError(t, p.ChangeMethod(PaymentMethodOnline))
	assert.Equal(t, PaymentMethodOnline, p.Method)
	assert.Error(t, p.ChangeMethod(PaymentMethod("UPI2")))

	d := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.ChangeDate(d))
	assert.Equal(t, d, p.PaymentDate)
	assert.Error(t, p.ChangeDate(time.Time{}))

	p.SetReference("UTR-0042")
	assert.Equal(t, "UTR-0042", p.Reference)

	next := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	p.SetNextDueDate(&next)
	require.NotNil(t, p.NextDueDate)
}
