package settlement

import (
	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EventTypeSettlementAdjustmentRecorded is published when the administrator share of a task is adjusted
const EventTypeSettlementAdjustmentRecorded = "SettlementAdjustmentRecorded"

// SettlementAdjustmentRecordedEvent is raised after a settlement adjustment is stored
type SettlementAdjustmentRecordedEvent struct {
	shared.BaseDomainEvent
	AdjustmentID  uuid.UUID       `json:"adjustment_id"`
	BudgetFinalID uuid.UUID       `json:"budget_final_id"`
	TaskID        uuid.UUID       `json:"task_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *SettlementAdjustmentRecordedEvent) EventType() string {
	return EventTypeSettlementAdjustmentRecorded
}

// NewSettlementAdjustmentRecordedEvent creates a new SettlementAdjustmentRecordedEvent
func NewSettlementAdjustmentRecordedEvent(a *SettlementAdjustment) *SettlementAdjustmentRecordedEvent {
	return &SettlementAdjustmentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementAdjustmentRecorded, "Task", a.TaskID),
		AdjustmentID:    a.ID,
		BudgetFinalID:   a.BudgetFinalID,
		TaskID:          a.TaskID,
		Amount:          a.Amount,
	}
}
