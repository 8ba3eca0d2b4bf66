package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeInvoiceCreated      = "InvoiceCreated"
	EventTypeInvoiceDeleted      = "InvoiceDeleted"
	EventTypePaymentRecorded     = "PaymentRecorded"
	EventTypePaymentDeleted      = "PaymentDeleted"
	EventTypeAdjustmentsApproved = "AdjustmentsApproved"
	EventTypeAdjustmentsPaid     = "AdjustmentsPaid"
)

const aggregateTypeInvoice = "Invoice"

// InvoiceCreatedEvent is raised when an invoice is generated from a budget
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	Number          string          `json:"number"`
	Kind            InvoiceKind     `json:"kind"`
	BudgetFinalID   *uuid.UUID      `json:"budget_final_id,omitempty"`
	AdministratorID uuid.UUID       `json:"administrator_id"`
	Total           decimal.Decimal `json:"total"`
	DueDate         time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return EventTypeInvoiceCreated
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, aggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		Number:          inv.Number,
		Kind:            inv.Kind,
		BudgetFinalID:   inv.BudgetFinalID,
		AdministratorID: inv.AdministratorID,
		Total:           inv.Total,
		DueDate:         inv.DueDate,
	}
}

// InvoiceDeletedEvent is raised when an invoice and its lines are removed
type InvoiceDeletedEvent struct {
	shared.BaseDomainEvent
	InvoiceID        uuid.UUID  `json:"invoice_id"`
	Number           string     `json:"number"`
	BudgetFinalID    *uuid.UUID `json:"budget_final_id,omitempty"`
	BudgetRolledBack bool       `json:"budget_rolled_back"`
}

// EventType returns the event type name
func (e *InvoiceDeletedEvent) EventType() string {
	return EventTypeInvoiceDeleted
}

// NewInvoiceDeletedEvent creates a new InvoiceDeletedEvent
func NewInvoiceDeletedEvent(inv *Invoice, budgetRolledBack bool) *InvoiceDeletedEvent {
	return &InvoiceDeletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeInvoiceDeleted, aggregateTypeInvoice, inv.ID),
		InvoiceID:        inv.ID,
		Number:           inv.Number,
		BudgetFinalID:    inv.BudgetFinalID,
		BudgetRolledBack: budgetRolledBack,
	}
}

// PaymentRecordedEvent is raised when a payment is recorded on an invoice
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	PaymentID       uuid.UUID       `json:"payment_id"`
	AdministratorID uuid.UUID       `json:"administrator_id"`
	Amount          decimal.Decimal `json:"amount"`
	Modality        Modality        `json:"modality"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return EventTypePaymentRecorded
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(inv *Invoice, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, aggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		PaymentID:       p.ID,
		AdministratorID: inv.AdministratorID,
		Amount:          p.Amount,
		Modality:        p.Modality,
	}
}

// PaymentDeletedEvent is raised when a payment is removed from an invoice
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *PaymentDeletedEvent) EventType() string {
	return EventTypePaymentDeleted
}

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(inv *Invoice, p *Payment) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeleted, aggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		PaymentID:       p.ID,
		Amount:          p.Amount,
	}
}

// AdjustmentsApprovedEvent is raised when an invoice's adjustments are approved
type AdjustmentsApprovedEvent struct {
	shared.BaseDomainEvent
	InvoiceID  uuid.UUID `json:"invoice_id"`
	Count      int64     `json:"count"`
	ApprovedAt time.Time `json:"approved_at"`
}

// EventType returns the event type name
func (e *AdjustmentsApprovedEvent) EventType() string {
	return EventTypeAdjustmentsApproved
}

// NewAdjustmentsApprovedEvent creates a new AdjustmentsApprovedEvent
func NewAdjustmentsApprovedEvent(inv *Invoice, count int64, approvedAt time.Time) *AdjustmentsApprovedEvent {
	return &AdjustmentsApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdjustmentsApproved, aggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		Count:           count,
		ApprovedAt:      approvedAt,
	}
}

// AdjustmentsPaidEvent is raised when settled adjustments are paid out
type AdjustmentsPaidEvent struct {
	shared.BaseDomainEvent
	PayoutID        uuid.UUID       `json:"payout_id"`
	AdministratorID uuid.UUID       `json:"administrator_id"`
	Count           int             `json:"count"`
	Total           decimal.Decimal `json:"total"`
	InvoiceCount    int             `json:"invoice_count"`
}

// EventType returns the event type name
func (e *AdjustmentsPaidEvent) EventType() string {
	return EventTypeAdjustmentsPaid
}

// NewAdjustmentsPaidEvent creates a new AdjustmentsPaidEvent
func NewAdjustmentsPaidEvent(p *AdjustmentPayout) *AdjustmentsPaidEvent {
	return &AdjustmentsPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdjustmentsPaid, "AdjustmentPayout", p.ID),
		PayoutID:        p.ID,
		AdministratorID: p.AdministratorID,
		Count:           p.Count,
		Total:           p.Total,
		InvoiceCount:    p.InvoiceCount,
	}
}
