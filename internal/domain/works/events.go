package works

import (
	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
)

// EventTypeBudgetFinalStatusChanged is published on every final budget transition
const EventTypeBudgetFinalStatusChanged = "BudgetFinalStatusChanged"

// BudgetFinalStatusChangedEvent is raised when a final budget changes status
type BudgetFinalStatusChangedEvent struct {
	shared.BaseDomainEvent
	BudgetFinalID uuid.UUID    `json:"budget_final_id"`
	TaskID        *uuid.UUID   `json:"task_id,omitempty"`
	Code          string       `json:"code"`
	FromStatus    BudgetStatus `json:"from_status"`
	ToStatus      BudgetStatus `json:"to_status"`
	Approved      bool         `json:"approved"`
}

// EventType returns the event type name
func (e *BudgetFinalStatusChangedEvent) EventType() string {
	return EventTypeBudgetFinalStatusChanged
}

// NewBudgetFinalStatusChangedEvent creates a new BudgetFinalStatusChangedEvent
func NewBudgetFinalStatusChangedEvent(b *BudgetFinal, from BudgetStatus) *BudgetFinalStatusChangedEvent {
	return &BudgetFinalStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetFinalStatusChanged, "BudgetFinal", b.ID),
		BudgetFinalID:   b.ID,
		TaskID:          b.TaskID,
		Code:            b.Code,
		FromStatus:      from,
		ToStatus:        b.Status,
		Approved:        b.Approved,
	}
}
