package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// One budget yields at most one invoice per kind.
type InvoiceModel struct {
	AggregateModel
	Number              string                  `gorm:"type:varchar(60);not null;uniqueIndex"`
	Kind                invoicing.InvoiceKind   `gorm:"type:varchar(20);not null;default:'regular';uniqueIndex:idx_invoices_budget_kind,priority:2"`
	BudgetFinalID       *uuid.UUID              `gorm:"type:uuid;uniqueIndex:idx_invoices_budget_kind,priority:1"`
	BudgetBaseID        *uuid.UUID              `gorm:"type:uuid;index"`
	AdministratorID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	Total               decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPaid           decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	PendingBalance      decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	DueDate             time.Time               `gorm:"not null"`
	Status              invoicing.InvoiceStatus `gorm:"type:smallint;not null;default:1;index"`
	HasAdjustments      bool                    `gorm:"not null;default:false"`
	AdjustmentsApproved bool                    `gorm:"not null;default:false"`
	LastPaymentDate     *time.Time
	Items               []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		Number:              m.Number,
		Kind:                m.Kind,
		BudgetFinalID:       m.BudgetFinalID,
		BudgetBaseID:        m.BudgetBaseID,
		AdministratorID:     m.AdministratorID,
		Total:               m.Total,
		TotalPaid:           m.TotalPaid,
		PendingBalance:      m.PendingBalance,
		DueDate:             m.DueDate,
		Status:              m.Status,
		HasAdjustments:      m.HasAdjustments,
		AdjustmentsApproved: m.AdjustmentsApproved,
		LastPaymentDate:     m.LastPaymentDate,
		Items:               make([]invoicing.InvoiceItem, len(m.Items)),
	}
	m.fillRoot(&inv.BaseAggregateRoot)
	for i, item := range m.Items {
		inv.Items[i] = item.ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.setRoot(inv.BaseAggregateRoot)
	m.Number = inv.Number
	m.Kind = inv.Kind
	m.BudgetFinalID = inv.BudgetFinalID
	m.BudgetBaseID = inv.BudgetBaseID
	m.AdministratorID = inv.AdministratorID
	m.Total = inv.Total
	m.TotalPaid = inv.TotalPaid
	m.PendingBalance = inv.PendingBalance
	m.DueDate = inv.DueDate
	m.Status = inv.Status
	m.HasAdjustments = inv.HasAdjustments
	m.AdjustmentsApproved = inv.AdjustmentsApproved
	m.LastPaymentDate = inv.LastPaymentDate
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i].FromDomain(item)
		m.Items[i].InvoiceID = inv.ID
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice entity.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for the InvoiceItem entity.
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsMaterial  bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() invoicing.InvoiceItem {
	return invoicing.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Position:    m.Position,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Subtotal:    m.Subtotal,
		IsMaterial:  m.IsMaterial,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem.
func (m *InvoiceItemModel) FromDomain(i invoicing.InvoiceItem) {
	m.ID = i.ID
	m.InvoiceID = i.InvoiceID
	m.Position = i.Position
	m.Description = i.Description
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.Subtotal = i.Subtotal
	m.IsMaterial = i.IsMaterial
}

// PaymentModel is the persistence model for the Payment entity.
// RequestKey is NULL when the client sent no key.
type PaymentModel struct {
	BaseModel
	InvoiceID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Date            datatypes.Date     `gorm:"not null"`
	Modality        invoicing.Modality `gorm:"type:varchar(20);not null"`
	AdministratorID uuid.UUID          `gorm:"type:uuid;not null;index"`
	CreatedBy       uuid.UUID          `gorm:"type:uuid;not null"`
	RequestKey      *string            `gorm:"type:varchar(100);uniqueIndex"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *invoicing.Payment {
	p := &invoicing.Payment{
		BaseEntity:      m.BaseModel.entity(),
		InvoiceID:       m.InvoiceID,
		Amount:          m.Amount,
		Date:            time.Time(m.Date),
		Modality:        m.Modality,
		AdministratorID: m.AdministratorID,
		CreatedBy:       m.CreatedBy,
	}
	if m.RequestKey != nil {
		p.RequestKey = *m.RequestKey
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *invoicing.Payment) {
	m.setEntity(p.BaseEntity)
	m.InvoiceID = p.InvoiceID
	m.Amount = p.Amount
	m.Date = datatypes.Date(p.Date)
	m.Modality = p.Modality
	m.AdministratorID = p.AdministratorID
	m.CreatedBy = p.CreatedBy
	m.RequestKey = nil
	if p.RequestKey != "" {
		key := p.RequestKey
		m.RequestKey = &key
	}
}

// MarginAdjustmentModel is the persistence model for the MarginAdjustment entity.
type MarginAdjustmentModel struct {
	BaseModel
	InvoiceItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Note          string          `gorm:"type:varchar(500)"`
	Approved      bool            `gorm:"not null;default:false;index:idx_margin_adjustments_settled,priority:1"`
	Paid          bool            `gorm:"not null;default:false;index:idx_margin_adjustments_settled,priority:2"`
	ApprovedAt    *time.Time
	PaidAt        *time.Time
}

// TableName returns the table name for GORM
func (MarginAdjustmentModel) TableName() string {
	return "margin_adjustments"
}

// ToDomain converts the persistence model to a domain MarginAdjustment entity.
func (m *MarginAdjustmentModel) ToDomain() *invoicing.MarginAdjustment {
	return &invoicing.MarginAdjustment{
		BaseEntity:    m.BaseModel.entity(),
		InvoiceItemID: m.InvoiceItemID,
		InvoiceID:     m.InvoiceID,
		Amount:        m.Amount,
		Note:          m.Note,
		Approved:      m.Approved,
		Paid:          m.Paid,
		ApprovedAt:    m.ApprovedAt,
		PaidAt:        m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain MarginAdjustment entity.
func (m *MarginAdjustmentModel) FromDomain(a *invoicing.MarginAdjustment) {
	m.setEntity(a.BaseEntity)
	m.InvoiceItemID = a.InvoiceItemID
	m.InvoiceID = a.InvoiceID
	m.Amount = a.Amount
	m.Note = a.Note
	m.Approved = a.Approved
	m.Paid = a.Paid
	m.ApprovedAt = a.ApprovedAt
	m.PaidAt = a.PaidAt
}

// AdjustmentPayoutModel is the persistence model for the AdjustmentPayout receipt.
type AdjustmentPayoutModel struct {
	AggregateModel
	AdministratorID uuid.UUID                      `gorm:"type:uuid;not null;index"`
	Count           int                            `gorm:"not null"`
	Total           decimal.Decimal                `gorm:"type:decimal(18,4);not null"`
	InvoiceCount    int                            `gorm:"not null"`
	AdjustmentIDs   datatypes.JSONSlice[uuid.UUID] `gorm:"not null"`
	PaidAt          time.Time                      `gorm:"not null"`
	PaidBy          uuid.UUID                      `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (AdjustmentPayoutModel) TableName() string {
	return "adjustment_payouts"
}

// ToDomain converts the persistence model to a domain AdjustmentPayout.
func (m *AdjustmentPayoutModel) ToDomain() *invoicing.AdjustmentPayout {
	p := &invoicing.AdjustmentPayout{
		AdministratorID: m.AdministratorID,
		Count:           m.Count,
		Total:           m.Total,
		InvoiceCount:    m.InvoiceCount,
		AdjustmentIDs:   []uuid.UUID(m.AdjustmentIDs),
		PaidAt:          m.PaidAt,
		PaidBy:          m.PaidBy,
	}
	m.fillRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain AdjustmentPayout.
func (m *AdjustmentPayoutModel) FromDomain(p *invoicing.AdjustmentPayout) {
	m.setRoot(p.BaseAggregateRoot)
	m.AdministratorID = p.AdministratorID
	m.Count = p.Count
	m.Total = p.Total
	m.InvoiceCount = p.InvoiceCount
	m.AdjustmentIDs = datatypes.NewJSONSlice(p.AdjustmentIDs)
	m.PaidAt = p.PaidAt
	m.PaidBy = p.PaidBy
}
