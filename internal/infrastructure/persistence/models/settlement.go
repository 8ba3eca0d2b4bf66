package models

import (
	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/settlement"
	"github.com/shopspring/decimal"
)

// SettlementAdjustmentModel is the persistence model for a settlement adjustment.
type SettlementAdjustmentModel struct {
	BaseModel
	BudgetFinalID uuid.UUID       `gorm:"type:uuid;not null;index"`
	TaskID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Note          string          `gorm:"type:varchar(500)"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (SettlementAdjustmentModel) TableName() string {
	return "settlement_adjustments"
}

// ToDomain converts the persistence model to a domain SettlementAdjustment.
func (m *SettlementAdjustmentModel) ToDomain() settlement.SettlementAdjustment {
	return settlement.SettlementAdjustment{
		BaseEntity:    m.BaseModel.entity(),
		BudgetFinalID: m.BudgetFinalID,
		TaskID:        m.TaskID,
		Amount:        m.Amount,
		Note:          m.Note,
		CreatedBy:     m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain SettlementAdjustment.
func (m *SettlementAdjustmentModel) FromDomain(a *settlement.SettlementAdjustment) {
	m.setEntity(a.BaseEntity)
	m.BudgetFinalID = a.BudgetFinalID
	m.TaskID = a.TaskID
	m.Amount = a.Amount
	m.Note = a.Note
	m.CreatedBy = a.CreatedBy
}

// AllModels lists every persistence model, in dependency order, for AutoMigrate in tests.
func AllModels() []any {
	return []any{
		&TaskModel{},
		&BudgetBaseModel{},
		&BudgetFinalModel{},
		&BudgetItemModel{},
		&WorkerModel{},
		&WorkEntryModel{},
		&ExpenseModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&PaymentModel{},
		&MarginAdjustmentModel{},
		&AdjustmentPayoutModel{},
		&SettlementAdjustmentModel{},
	}
}
