package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AdjustmentPayout is the receipt of one bulk payment of settled margin
// adjustments to an administrator.
type AdjustmentPayout struct {
	shared.BaseAggregateRoot
	AdministratorID uuid.UUID
	Count           int
	Total           decimal.Decimal
	InvoiceCount    int
	AdjustmentIDs   []uuid.UUID
	PaidAt          time.Time
	PaidBy          uuid.UUID
}

// NewAdjustmentPayout pays every given adjustment and returns the receipt.
// Every adjustment must be approved, unpaid and belong to the administrator's invoices.
func NewAdjustmentPayout(administratorID, paidBy uuid.UUID, adjustments []MarginAdjustment, paidAt time.Time) (*AdjustmentPayout, error) {
	if administratorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ADMINISTRATOR", "Administrator ID cannot be empty")
	}
	if len(adjustments) == 0 {
		return nil, ErrNoPendingAdjustments
	}

	payout := &AdjustmentPayout{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AdministratorID:   administratorID,
		Total:             decimal.Zero,
		AdjustmentIDs:     make([]uuid.UUID, 0, len(adjustments)),
		PaidAt:            paidAt,
		PaidBy:            paidBy,
	}

	invoices := make(map[uuid.UUID]struct{})
	for i := range adjustments {
		if err := adjustments[i].Pay(paidAt); err != nil {
			return nil, err
		}
		payout.Total = payout.Total.Add(adjustments[i].Amount)
		payout.AdjustmentIDs = append(payout.AdjustmentIDs, adjustments[i].ID)
		invoices[adjustments[i].InvoiceID] = struct{}{}
	}
	payout.Count = len(adjustments)
	payout.InvoiceCount = len(invoices)

	payout.AddDomainEvent(NewAdjustmentsPaidEvent(payout))
	return payout, nil
}
