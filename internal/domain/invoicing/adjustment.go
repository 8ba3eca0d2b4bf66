package invoicing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MarginAdjustment is a confidential margin added to one invoice line. It is
// paid out to the administrator only after approval: pendiente -> aprobado -> pagado.
type MarginAdjustment struct {
	shared.BaseEntity
	InvoiceItemID uuid.UUID
	InvoiceID     uuid.UUID
	Amount        decimal.Decimal
	Note          string
	Approved      bool
	Paid          bool
	ApprovedAt    *time.Time
	PaidAt        *time.Time
}

// NewMarginAdjustment creates a pending adjustment on an invoice line
func NewMarginAdjustment(inv *Invoice, itemID uuid.UUID, amount decimal.Decimal, note string) (*MarginAdjustment, error) {
	if _, ok := inv.ItemByID(itemID); !ok {
		return nil, shared.ErrNotFound.WithMessage("Invoice item not found")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Adjustment amount cannot be zero")
	}
	if inv.Status == InvoiceStatusAnnulled {
		return nil, shared.ErrInvalidState.WithMessage("Cannot adjust an annulled invoice")
	}

	inv.MarkHasAdjustments()
	return &MarginAdjustment{
		BaseEntity:    shared.NewBaseEntity(),
		InvoiceItemID: itemID,
		InvoiceID:     inv.ID,
		Amount:        amount,
		Note:          strings.TrimSpace(note),
	}, nil
}

// Status returns the ledger state name
func (a *MarginAdjustment) Status() string {
	switch {
	case a.Paid:
		return "pagado"
	case a.Approved:
		return "aprobado"
	default:
		return "pendiente"
	}
}

// Approve marks the adjustment approved. Approving twice is a no-op.
func (a *MarginAdjustment) Approve(at time.Time) {
	if a.Approved {
		return
	}
	a.Approved = true
	a.ApprovedAt = &at
	a.UpdatedAt = at
}

// Pay marks an approved adjustment paid
func (a *MarginAdjustment) Pay(at time.Time) error {
	if a.Paid {
		return ErrAdjustmentPaid
	}
	if !a.Approved {
		return ErrAdjustmentNotApproved
	}
	a.Paid = true
	a.PaidAt = &at
	a.UpdatedAt = at
	return nil
}
