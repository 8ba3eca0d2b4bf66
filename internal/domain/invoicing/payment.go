package invoicing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Modality classifies a payment relative to the balance it was applied to
type Modality string

const (
	ModalityTotal      Modality = "total"
	ModalityHalf       Modality = "50_porciento"
	ModalityAdjustable Modality = "ajustable"
)

// IsValid checks if the modality is known
func (m Modality) IsValid() bool {
	return m == ModalityTotal || m == ModalityHalf || m == ModalityAdjustable
}

var two = decimal.NewFromInt(2)

// ClassifyModality decides whether a payment settles the balance, covers half
// of it or is a partial amount. The reference is the pending balance, or the
// invoice total when nothing is pending.
func ClassifyModality(amount, pendingBalance, total decimal.Decimal) Modality {
	reference := total
	if pendingBalance.IsPositive() {
		reference = pendingBalance
	}

	if shared.WithinEpsilon(amount, reference) || amount.GreaterThanOrEqual(reference) {
		return ModalityTotal
	}
	if shared.WithinEpsilon(amount, reference.Div(two)) {
		return ModalityHalf
	}
	return ModalityAdjustable
}

// Payment is an immutable record of money received against an invoice
type Payment struct {
	shared.BaseEntity
	InvoiceID       uuid.UUID
	Amount          decimal.Decimal
	Date            time.Time
	Modality        Modality
	AdministratorID uuid.UUID // copied from the invoice for reporting
	CreatedBy       uuid.UUID
	RequestKey      string // client idempotency key, empty when not supplied
}

func newPayment(inv *Invoice, amount decimal.Decimal, date time.Time, modality Modality, createdBy uuid.UUID, requestKey string) *Payment {
	return &Payment{
		BaseEntity:      shared.NewBaseEntity(),
		InvoiceID:       inv.ID,
		Amount:          amount,
		Date:            date,
		Modality:        modality,
		AdministratorID: inv.AdministratorID,
		CreatedBy:       createdBy,
		RequestKey:      strings.TrimSpace(requestKey),
	}
}

// PaymentTotals is the aggregate of every payment of one invoice
type PaymentTotals struct {
	Sum             decimal.Decimal
	Count           int64
	LastPaymentDate *time.Time
}
