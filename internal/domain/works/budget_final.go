package works

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BudgetStatus is the lifecycle status of a final (client-facing) budget
type BudgetStatus string

const (
	BudgetStatusDraft    BudgetStatus = "borrador"
	BudgetStatusSent     BudgetStatus = "enviado"
	BudgetStatusBudgeted BudgetStatus = "presupuestado"
	BudgetStatusInvoiced BudgetStatus = "facturado"
	BudgetStatusRejected BudgetStatus = "rechazado"
)

// budgetStatusAccepted is a legacy spelling of presupuestado
const budgetStatusAccepted = "aceptado"

// ParseBudgetStatus converts a stored or user-supplied code to a BudgetStatus
func ParseBudgetStatus(s string) (BudgetStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == budgetStatusAccepted {
		return BudgetStatusBudgeted, nil
	}
	status := BudgetStatus(s)
	if !status.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown budget status %q", s))
	}
	return status, nil
}

// IsValid checks if the status is a known BudgetStatus
func (s BudgetStatus) IsValid() bool {
	switch s {
	case BudgetStatusDraft, BudgetStatusSent, BudgetStatusBudgeted,
		BudgetStatusInvoiced, BudgetStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of BudgetStatus
func (s BudgetStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses with no forward transition
func (s BudgetStatus) IsTerminal() bool {
	return s == BudgetStatusInvoiced || s == BudgetStatusRejected
}

// BudgetItem is one line of a final budget
type BudgetItem struct {
	ID            uuid.UUID
	BudgetFinalID uuid.UUID
	Position      int
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	IsMaterial    bool
}

// Subtotal returns quantity x unit price, unrounded
func (i BudgetItem) Subtotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// BudgetItemInput carries the data to create a budget line
type BudgetItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	IsMaterial  bool
}

// BudgetFinal is the administrator-approved budget that invoices are generated from
type BudgetFinal struct {
	shared.BaseAggregateRoot
	Code            string
	BudgetBaseID    *uuid.UUID
	TaskID          *uuid.UUID
	AdministratorID uuid.UUID
	Total           decimal.Decimal
	Status          BudgetStatus
	Approved        bool
	Rejected        bool
	Items           []BudgetItem
}

// NormalizeBudgetCode upper-cases code and joins its words with dashes.
// Codes are stored normalized, so two codes that differ only in case or
// spacing are the same code and yield the same invoice numbers.
func NormalizeBudgetCode(code string) string {
	return cases.Upper(language.Und).String(strings.Join(strings.Fields(code), "-"))
}

// NewBudgetFinal creates a draft final budget. A budget may be created
// without items; it cannot be invoiced until it has some.
func NewBudgetFinal(code string, administratorID uuid.UUID, taskID, budgetBaseID *uuid.UUID, items []BudgetItemInput) (*BudgetFinal, error) {
	code = NormalizeBudgetCode(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Budget code cannot be empty")
	}
	if len(code) > 40 {
		return nil, shared.NewDomainError("INVALID_CODE", "Budget code cannot exceed 40 characters")
	}
	if administratorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ADMINISTRATOR", "Administrator ID cannot be empty")
	}

	b := &BudgetFinal{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		BudgetBaseID:      budgetBaseID,
		TaskID:            taskID,
		AdministratorID:   administratorID,
		Status:            BudgetStatusDraft,
		Items:             make([]BudgetItem, 0, len(items)),
	}
	for _, in := range items {
		if err := b.AddItem(in); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// AddItem appends a line and recomputes the total
func (b *BudgetFinal) AddItem(in BudgetItemInput) error {
	if b.Status != BudgetStatusDraft {
		return shared.ErrInvalidState.WithMessage("Items can only be added to a draft budget")
	}
	if strings.TrimSpace(in.Description) == "" {
		return shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if !in.Quantity.IsPositive() {
		return shared.NewDomainError("INVALID_ITEM", "Item quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_ITEM", "Item unit price cannot be negative")
	}

	b.Items = append(b.Items, BudgetItem{
		ID:            uuid.New(),
		BudgetFinalID: b.ID,
		Position:      len(b.Items) + 1,
		Description:   strings.TrimSpace(in.Description),
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		IsMaterial:    in.IsMaterial,
	})
	b.recalculateTotal()
	return nil
}

func (b *BudgetFinal) recalculateTotal() {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Subtotal())
	}
	b.Total = total
}

// Send moves a draft budget to enviado
func (b *BudgetFinal) Send() error {
	return b.transition(eventSend)
}

// Approve accepts the budget; it becomes presupuestado and approved
func (b *BudgetFinal) Approve() error {
	if err := b.transition(eventApprove); err != nil {
		return err
	}
	b.Approved = true
	b.Rejected = false
	return nil
}

// Reject closes the budget as rechazado
func (b *BudgetFinal) Reject() error {
	if err := b.transition(eventReject); err != nil {
		return err
	}
	b.Approved = false
	b.Rejected = true
	return nil
}

// MarkInvoiced records that invoices were generated from the budget
func (b *BudgetFinal) MarkInvoiced() error {
	return b.transition(eventInvoice)
}

// CanBeInvoiced reports whether the lifecycle accepts the invoice event now
func (b *BudgetFinal) CanBeInvoiced() bool {
	next, err := nextBudgetStatus(b.Status, len(b.Items), eventInvoice)
	return err == nil && next == BudgetStatusInvoiced
}

// RollbackInvoicing is the compensating step run when the last invoice of the
// budget is deleted: the budget returns to presupuestado and loses approval.
func (b *BudgetFinal) RollbackInvoicing() {
	from := b.Status
	b.Status = BudgetStatusBudgeted
	b.Approved = false
	b.touch()
	b.AddDomainEvent(NewBudgetFinalStatusChangedEvent(b, from))
}

func (b *BudgetFinal) transition(event string) error {
	from := b.Status
	next, err := nextBudgetStatus(from, len(b.Items), event)
	if err != nil {
		return err
	}
	b.Status = next
	b.touch()
	b.AddDomainEvent(NewBudgetFinalStatusChangedEvent(b, from))
	return nil
}

func (b *BudgetFinal) touch() {
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
