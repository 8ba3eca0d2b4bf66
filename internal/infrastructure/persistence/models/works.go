package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TaskModel is the persistence model for the Task aggregate root.
type TaskModel struct {
	AggregateModel
	Title        string           `gorm:"type:varchar(200);not null"`
	BuildingRef  string           `gorm:"type:varchar(100)"`
	Status       works.TaskStatus `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	SupervisorID uuid.UUID        `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the persistence model to a domain Task entity.
func (m *TaskModel) ToDomain() *works.Task {
	t := &works.Task{
		Title:        m.Title,
		BuildingRef:  m.BuildingRef,
		Status:       m.Status,
		SupervisorID: m.SupervisorID,
	}
	m.fillRoot(&t.BaseAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain Task entity.
func (m *TaskModel) FromDomain(t *works.Task) {
	m.setRoot(t.BaseAggregateRoot)
	m.Title = t.Title
	m.BuildingRef = t.BuildingRef
	m.Status = t.Status
	m.SupervisorID = t.SupervisorID
}

// TaskModelFromDomain creates a new persistence model from a domain Task entity.
func TaskModelFromDomain(t *works.Task) *TaskModel {
	m := &TaskModel{}
	m.FromDomain(t)
	return m
}

// BudgetBaseModel is the persistence model for the BudgetBase aggregate root.
type BudgetBaseModel struct {
	AggregateModel
	TaskID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Total  decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Status works.BudgetBaseStatus `gorm:"type:varchar(20);not null;default:'borrador'"`
}

// TableName returns the table name for GORM
func (BudgetBaseModel) TableName() string {
	return "budget_bases"
}

// ToDomain converts the persistence model to a domain BudgetBase entity.
func (m *BudgetBaseModel) ToDomain() *works.BudgetBase {
	b := &works.BudgetBase{
		TaskID: m.TaskID,
		Total:  m.Total,
		Status: m.Status,
	}
	m.fillRoot(&b.BaseAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain BudgetBase entity.
func (m *BudgetBaseModel) FromDomain(b *works.BudgetBase) {
	m.setRoot(b.BaseAggregateRoot)
	m.TaskID = b.TaskID
	m.Total = b.Total
	m.Status = b.Status
}

// BudgetBaseModelFromDomain creates a new persistence model from a domain BudgetBase entity.
func BudgetBaseModelFromDomain(b *works.BudgetBase) *BudgetBaseModel {
	m := &BudgetBaseModel{}
	m.FromDomain(b)
	return m
}

// BudgetFinalModel is the persistence model for the BudgetFinal aggregate root.
type BudgetFinalModel struct {
	AggregateModel
	Code            string            `gorm:"type:varchar(40);not null;uniqueIndex"`
	BudgetBaseID    *uuid.UUID        `gorm:"type:uuid;index"`
	TaskID          *uuid.UUID        `gorm:"type:uuid;index"`
	AdministratorID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Total           decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Status          string            `gorm:"type:varchar(20);not null;default:'borrador';index"`
	Approved        bool              `gorm:"not null;default:false"`
	Rejected        bool              `gorm:"not null;default:false"`
	Items           []BudgetItemModel `gorm:"foreignKey:BudgetFinalID;references:ID"`
}

// TableName returns the table name for GORM
func (BudgetFinalModel) TableName() string {
	return "budget_finals"
}

// ToDomain converts the persistence model to a domain BudgetFinal entity.
// Rows written by older clients may still carry the "aceptado" spelling.
func (m *BudgetFinalModel) ToDomain() *works.BudgetFinal {
	status, err := works.ParseBudgetStatus(m.Status)
	if err != nil {
		status = works.BudgetStatus(m.Status)
	}
	b := &works.BudgetFinal{
		Code:            m.Code,
		BudgetBaseID:    m.BudgetBaseID,
		TaskID:          m.TaskID,
		AdministratorID: m.AdministratorID,
		Total:           m.Total,
		Status:          status,
		Approved:        m.Approved,
		Rejected:        m.Rejected,
		Items:           make([]works.BudgetItem, len(m.Items)),
	}
	m.fillRoot(&b.BaseAggregateRoot)
	for i, item := range m.Items {
		b.Items[i] = item.ToDomain()
	}
	return b
}

// FromDomain populates the persistence model from a domain BudgetFinal entity.
func (m *BudgetFinalModel) FromDomain(b *works.BudgetFinal) {
	m.setRoot(b.BaseAggregateRoot)
	m.Code = b.Code
	m.BudgetBaseID = b.BudgetBaseID
	m.TaskID = b.TaskID
	m.AdministratorID = b.AdministratorID
	m.Total = b.Total
	m.Status = b.Status.String()
	m.Approved = b.Approved
	m.Rejected = b.Rejected
	m.Items = make([]BudgetItemModel, len(b.Items))
	for i, item := range b.Items {
		m.Items[i].FromDomain(item)
		m.Items[i].BudgetFinalID = b.ID
	}
}

// BudgetFinalModelFromDomain creates a new persistence model from a domain BudgetFinal entity.
func BudgetFinalModelFromDomain(b *works.BudgetFinal) *BudgetFinalModel {
	m := &BudgetFinalModel{}
	m.FromDomain(b)
	return m
}

// BudgetItemModel is the persistence model for the BudgetItem entity.
type BudgetItemModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	BudgetFinalID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position      int             `gorm:"not null"`
	Description   string          `gorm:"type:varchar(500);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsMaterial    bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (BudgetItemModel) TableName() string {
	return "budget_items"
}

// ToDomain converts the persistence model to a domain BudgetItem.
func (m *BudgetItemModel) ToDomain() works.BudgetItem {
	return works.BudgetItem{
		ID:            m.ID,
		BudgetFinalID: m.BudgetFinalID,
		Position:      m.Position,
		Description:   m.Description,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		IsMaterial:    m.IsMaterial,
	}
}

// FromDomain populates the persistence model from a domain BudgetItem.
func (m *BudgetItemModel) FromDomain(i works.BudgetItem) {
	m.ID = i.ID
	m.BudgetFinalID = i.BudgetFinalID
	m.Position = i.Position
	m.Description = i.Description
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.IsMaterial = i.IsMaterial
}

// WorkerModel is the persistence model for the Worker aggregate root.
type WorkerModel struct {
	AggregateModel
	Name      string          `gorm:"type:varchar(200);not null"`
	DailyRate decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Active    bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WorkerModel) TableName() string {
	return "workers"
}

// ToDomain converts the persistence model to a domain Worker entity.
func (m *WorkerModel) ToDomain() *works.Worker {
	w := &works.Worker{
		Name:      m.Name,
		DailyRate: m.DailyRate,
		Active:    m.Active,
	}
	m.fillRoot(&w.BaseAggregateRoot)
	return w
}

// FromDomain populates the persistence model from a domain Worker entity.
func (m *WorkerModel) FromDomain(w *works.Worker) {
	m.setRoot(w.BaseAggregateRoot)
	m.Name = w.Name
	m.DailyRate = w.DailyRate
	m.Active = w.Active
}

// WorkEntryModel is the persistence model for the WorkEntry entity.
type WorkEntryModel struct {
	BaseModel
	TaskID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	WorkerID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Date     datatypes.Date `gorm:"not null"`
	DayType  works.DayType  `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (WorkEntryModel) TableName() string {
	return "work_entries"
}

// ToDomain converts the persistence model to a domain WorkEntry entity.
func (m *WorkEntryModel) ToDomain() works.WorkEntry {
	return works.WorkEntry{
		BaseEntity: m.BaseModel.entity(),
		TaskID:     m.TaskID,
		WorkerID:   m.WorkerID,
		Date:       time.Time(m.Date),
		DayType:    m.DayType,
	}
}

// FromDomain populates the persistence model from a domain WorkEntry entity.
func (m *WorkEntryModel) FromDomain(e *works.WorkEntry) {
	m.setEntity(e.BaseEntity)
	m.TaskID = e.TaskID
	m.WorkerID = e.WorkerID
	m.Date = datatypes.Date(e.Date)
	m.DayType = e.DayType
}

// ExpenseModel is the persistence model for the Expense entity.
type ExpenseModel struct {
	BaseModel
	TaskID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	Category    works.ExpenseCategory `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Description string                `gorm:"type:varchar(500)"`
	ReceiptKey  string                `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense entity.
func (m *ExpenseModel) ToDomain() works.Expense {
	return works.Expense{
		BaseEntity:  m.BaseModel.entity(),
		TaskID:      m.TaskID,
		Category:    m.Category,
		Amount:      m.Amount,
		Description: m.Description,
		ReceiptKey:  m.ReceiptKey,
	}
}

// FromDomain populates the persistence model from a domain Expense entity.
func (m *ExpenseModel) FromDomain(e *works.Expense) {
	m.setEntity(e.BaseEntity)
	m.TaskID = e.TaskID
	m.Category = e.Category
	m.Amount = e.Amount
	m.Description = e.Description
	m.ReceiptKey = e.ReceiptKey
}
