package invoicing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/shopspring/decimal"
)

// DefaultDueDays is the payment term applied to new invoices
const DefaultDueDays = 30

// InvoiceItem is one billed line, copied from a budget item
type InvoiceItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Position    int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal // quantity x unit price, never rounded
	IsMaterial  bool
}

// Invoice is a billable document generated from a final budget
type Invoice struct {
	shared.BaseAggregateRoot
	Number              string
	Kind                InvoiceKind
	BudgetFinalID       *uuid.UUID
	BudgetBaseID        *uuid.UUID // legacy direct linkage, never set by the factory
	AdministratorID     uuid.UUID
	Total               decimal.Decimal // rounded sum of item subtotals
	TotalPaid           decimal.Decimal
	PendingBalance      decimal.Decimal
	DueDate             time.Time
	Status              InvoiceStatus
	HasAdjustments      bool
	AdjustmentsApproved bool
	LastPaymentDate     *time.Time
	Items               []InvoiceItem
}

// NewInvoiceFromBudget builds the invoice for one item group of a final budget.
// The header total is rounded; the initial pending balance keeps the exact
// unrounded sum, and the first payment recomputes it from the rounded total.
func NewInvoiceFromBudget(budget *works.BudgetFinal, group ItemGroup, issuedAt time.Time, dueDays int) (*Invoice, error) {
	if budget == nil {
		return nil, shared.ErrInvalidInput.WithMessage("Budget is required")
	}
	if len(group.Items) == 0 {
		return nil, ErrNoInvoiceableItems
	}
	if !group.Kind.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Unknown invoice kind %q", group.Kind))
	}
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}

	budgetID := budget.ID
	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            InvoiceNumber(budget.Code, group.Kind, issuedAt),
		Kind:              group.Kind,
		BudgetFinalID:     &budgetID,
		AdministratorID:   budget.AdministratorID,
		TotalPaid:         decimal.Zero,
		DueDate:           issuedAt.AddDate(0, 0, dueDays),
		Status:            InvoiceStatusPending,
		Items:             make([]InvoiceItem, 0, len(group.Items)),
	}
	inv.CreatedAt = issuedAt
	inv.UpdatedAt = issuedAt

	calculated := decimal.Zero
	for i, bi := range group.Items {
		subtotal := bi.Subtotal()
		calculated = calculated.Add(subtotal)
		inv.Items = append(inv.Items, InvoiceItem{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Position:    i + 1,
			Description: bi.Description,
			Quantity:    bi.Quantity,
			UnitPrice:   bi.UnitPrice,
			Subtotal:    subtotal,
			IsMaterial:  bi.IsMaterial,
		})
	}

	inv.Total = shared.RoundAmount(calculated)
	inv.PendingBalance = calculated

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// ItemIDs returns the ids of the invoice lines
func (inv *Invoice) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(inv.Items))
	for _, item := range inv.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// RecordPayment validates a payment against the current balance and returns
// it with its modality. It does not touch the totals: those are recomputed
// from the persisted ledger through ApplyPaymentTotals.
func (inv *Invoice) RecordPayment(amount decimal.Decimal, date time.Time, createdBy uuid.UUID, originalTotal *decimal.Decimal, requestKey string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}
	if createdBy == uuid.Nil {
		return nil, shared.ErrUnauthorized.WithMessage("The payment creator is required")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Payment date is required")
	}
	if !inv.Status.AcceptsPayments() {
		return nil, shared.ErrInvalidState.WithMessage(fmt.Sprintf("Cannot record a payment on an invoice in %s status", inv.Status))
	}
	if originalTotal != nil && !originalTotal.Equal(inv.Total) {
		return nil, ErrTotalMismatch.WithMessage(fmt.Sprintf(
			"The invoice total is %s, not %s; reload the invoice", inv.Total.String(), originalTotal.String()))
	}
	if inv.PendingBalance.LessThanOrEqual(shared.Epsilon) {
		return nil, ErrInvoiceAlreadyPaid
	}
	if amount.Sub(inv.PendingBalance).GreaterThanOrEqual(shared.Epsilon) {
		return nil, ErrAmountExceedsBalance.WithMessage(fmt.Sprintf(
			"The payment of %s exceeds the pending balance of %s", amount.String(), inv.PendingBalance.String()))
	}

	modality := ClassifyModality(amount, inv.PendingBalance, inv.Total)
	p := newPayment(inv, amount, date, modality, createdBy, requestKey)
	inv.AddDomainEvent(NewPaymentRecordedEvent(inv, p))
	return p, nil
}

// RemovePayment registers the deletion of one of the invoice's payments
func (inv *Invoice) RemovePayment(p *Payment) error {
	if p.InvoiceID != inv.ID {
		return shared.ErrInvalidInput.WithMessage("The payment does not belong to this invoice")
	}
	inv.AddDomainEvent(NewPaymentDeletedEvent(inv, p))
	return nil
}

// ApplyPaymentTotals recomputes paid amount, balance and status from the sum
// of every persisted payment. The balance is always derived from the invoice
// total, never adjusted incrementally.
func (inv *Invoice) ApplyPaymentTotals(totalPaid decimal.Decimal, lastPaymentDate *time.Time) {
	inv.TotalPaid = totalPaid
	inv.PendingBalance = inv.Total.Sub(totalPaid)
	inv.LastPaymentDate = lastPaymentDate

	switch {
	case inv.PendingBalance.LessThanOrEqual(shared.Epsilon):
		inv.Status = InvoiceStatusPaid
	case totalPaid.IsPositive():
		inv.Status = InvoiceStatusPartiallyPaid
	default:
		inv.Status = InvoiceStatusUnpaid
	}
	inv.touch()
}

// MarkHasAdjustments flags that margin adjustments exist on the invoice.
// A new adjustment clears a previous approval.
func (inv *Invoice) MarkHasAdjustments() {
	inv.HasAdjustments = true
	inv.AdjustmentsApproved = false
	inv.touch()
}

// MarkAdjustmentsApproved records a bulk approval of the invoice's adjustments
func (inv *Invoice) MarkAdjustmentsApproved(count int64, approvedAt time.Time) {
	inv.AdjustmentsApproved = true
	inv.touch()
	inv.AddDomainEvent(NewAdjustmentsApprovedEvent(inv, count, approvedAt))
}

// MarkDeleted queues the deletion event; the rows are removed by the repository
func (inv *Invoice) MarkDeleted(budgetRolledBack bool) {
	inv.AddDomainEvent(NewInvoiceDeletedEvent(inv, budgetRolledBack))
}

// ItemByID returns the line with the given id
func (inv *Invoice) ItemByID(id uuid.UUID) (*InvoiceItem, bool) {
	for i := range inv.Items {
		if inv.Items[i].ID == id {
			return &inv.Items[i], true
		}
	}
	return nil, false
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}
