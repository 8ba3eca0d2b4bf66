package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// ==================== Invoice DTOs ====================

// InvoiceItemResponse represents one invoice line in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	IsMaterial  bool            `json:"is_material"`
}

// InvoiceResponse represents an invoice with its lines
type InvoiceResponse struct {
	ID                  uuid.UUID               `json:"id"`
	Number              string                  `json:"number"`
	Kind                invoicing.InvoiceKind   `json:"kind"`
	BudgetFinalID       *uuid.UUID              `json:"budget_final_id,omitempty"`
	BudgetBaseID        *uuid.UUID              `json:"budget_base_id,omitempty"`
	AdministratorID     uuid.UUID               `json:"administrator_id"`
	Total               decimal.Decimal         `json:"total"`
	TotalPaid           decimal.Decimal         `json:"total_paid"`
	PendingBalance      decimal.Decimal         `json:"pending_balance"`
	DueDate             time.Time               `json:"due_date"`
	Status              invoicing.InvoiceStatus `json:"status"`
	HasAdjustments      bool                    `json:"has_adjustments"`
	AdjustmentsApproved bool                    `json:"adjustments_approved"`
	LastPaymentDate     *time.Time              `json:"last_payment_date,omitempty"`
	Items               []InvoiceItemResponse   `json:"items,omitempty"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

// InvoiceListFilter narrows an invoice listing
type InvoiceListFilter struct {
	AdministratorID *uuid.UUID
	BudgetFinalID   *uuid.UUID
	Status          *int
	OrderBy         string
	OrderDir        string
	Page            int
	PageSize        int
}

// CreateInvoicesResult is returned by a budget conversion
type CreateInvoicesResult struct {
	BudgetFinalID uuid.UUID         `json:"budget_final_id"`
	InvoiceIDs    []uuid.UUID       `json:"invoice_ids"`
	Invoices      []InvoiceResponse `json:"invoices"`
}

// DeleteInvoiceResult is returned after an invoice was removed
type DeleteInvoiceResult struct {
	InvoiceID        uuid.UUID  `json:"invoice_id"`
	BudgetFinalID    *uuid.UUID `json:"budget_final_id,omitempty"`
	BudgetRolledBack bool       `json:"budget_rolled_back"`
	TaskRolledBack   bool       `json:"task_rolled_back"`
}

// ToInvoiceResponse converts a domain invoice to its response
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                  inv.ID,
		Number:              inv.Number,
		Kind:                inv.Kind,
		BudgetFinalID:       inv.BudgetFinalID,
		BudgetBaseID:        inv.BudgetBaseID,
		AdministratorID:     inv.AdministratorID,
		Total:               inv.Total,
		TotalPaid:           inv.TotalPaid,
		PendingBalance:      inv.PendingBalance,
		DueDate:             inv.DueDate,
		Status:              inv.Status,
		HasAdjustments:      inv.HasAdjustments,
		AdjustmentsApproved: inv.AdjustmentsApproved,
		LastPaymentDate:     inv.LastPaymentDate,
		Items:               make([]InvoiceItemResponse, len(inv.Items)),
		CreatedAt:           inv.CreatedAt,
		UpdatedAt:           inv.UpdatedAt,
	}
	for i, item := range inv.Items {
		resp.Items[i] = InvoiceItemResponse{
			ID:          item.ID,
			Position:    item.Position,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
			IsMaterial:  item.IsMaterial,
		}
	}
	return resp
}

// ToInvoiceResponses converts a slice of domain invoices
func ToInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses
}

// ==================== Payment DTOs ====================

// RecordPaymentRequest represents a request to record a payment on an invoice.
// OriginalTotal is the invoice total the client displayed; when sent it must
// still match the stored total.
type RecordPaymentRequest struct {
	InvoiceID     uuid.UUID        `json:"-"`
	Amount        decimal.Decimal  `json:"amount" binding:"required"`
	Date          time.Time        `json:"date" binding:"required"`
	OriginalTotal *decimal.Decimal `json:"original_total"`
	RequestKey    string           `json:"request_key" binding:"omitempty,max=100"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID          `json:"id"`
	InvoiceID       uuid.UUID          `json:"invoice_id"`
	Amount          decimal.Decimal    `json:"amount"`
	Date            time.Time          `json:"date"`
	Modality        invoicing.Modality `json:"modality"`
	AdministratorID uuid.UUID          `json:"administrator_id"`
	CreatedBy       uuid.UUID          `json:"created_by"`
	RequestKey      string             `json:"request_key,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// PaymentResult is returned after a payment was recorded or removed. It
// carries the invoice as recomputed from the payment ledger.
type PaymentResult struct {
	Payment  PaymentResponse `json:"payment"`
	Invoice  InvoiceResponse `json:"invoice"`
	Replayed bool            `json:"replayed"`
}

// ToPaymentResponse converts a domain payment to its response
func ToPaymentResponse(p *invoicing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
		Date:            p.Date,
		Modality:        p.Modality,
		AdministratorID: p.AdministratorID,
		CreatedBy:       p.CreatedBy,
		RequestKey:      p.RequestKey,
		CreatedAt:       p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of domain payments
func ToPaymentResponses(payments []invoicing.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}

// ==================== Adjustment DTOs ====================

// RegisterAdjustmentRequest represents a request to add a margin adjustment to an invoice line
type RegisterAdjustmentRequest struct {
	InvoiceItemID uuid.UUID       `json:"-"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Note          string          `json:"note" binding:"max=500"`
}

// AdjustmentResponse represents a margin adjustment in API responses
type AdjustmentResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceItemID uuid.UUID       `json:"invoice_item_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note,omitempty"`
	Status        string          `json:"status"`
	Approved      bool            `json:"approved"`
	Paid          bool            `json:"paid"`
	ApprovedAt    *time.Time      `json:"approved_at,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ApproveAdjustmentsResult is returned after an invoice's adjustments were approved
type ApproveAdjustmentsResult struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Approved  int64     `json:"approved"`
}

// PayoutResult summarizes one payout of settled adjustments
type PayoutResult struct {
	PayoutID        uuid.UUID       `json:"payout_id"`
	AdministratorID uuid.UUID       `json:"administrator_id"`
	Count           int             `json:"count"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	InvoiceCount    int             `json:"invoice_count"`
	AdjustmentIDs   []uuid.UUID     `json:"adjustment_ids"`
	PaidAt          time.Time       `json:"paid_at"`
	PaidBy          uuid.UUID       `json:"paid_by"`
}

// ToAdjustmentResponse converts a domain adjustment to its response
func ToAdjustmentResponse(a *invoicing.MarginAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:            a.ID,
		InvoiceItemID: a.InvoiceItemID,
		InvoiceID:     a.InvoiceID,
		Amount:        a.Amount,
		Note:          a.Note,
		Status:        a.Status(),
		Approved:      a.Approved,
		Paid:          a.Paid,
		ApprovedAt:    a.ApprovedAt,
		PaidAt:        a.PaidAt,
		CreatedAt:     a.CreatedAt,
	}
}

// ToAdjustmentResponses converts a slice of domain adjustments
func ToAdjustmentResponses(adjustments []invoicing.MarginAdjustment) []AdjustmentResponse {
	responses := make([]AdjustmentResponse, len(adjustments))
	for i := range adjustments {
		responses[i] = ToAdjustmentResponse(&adjustments[i])
	}
	return responses
}

// ToPayoutResult converts a payout receipt to its result
func ToPayoutResult(p *invoicing.AdjustmentPayout) PayoutResult {
	return PayoutResult{
		PayoutID:        p.ID,
		AdministratorID: p.AdministratorID,
		Count:           p.Count,
		TotalPaid:       p.Total,
		InvoiceCount:    p.InvoiceCount,
		AdjustmentIDs:   p.AdjustmentIDs,
		PaidAt:          p.PaidAt,
		PaidBy:          p.PaidBy,
	}
}

// ToPayoutResults converts a slice of payout receipts
func ToPayoutResults(payouts []invoicing.AdjustmentPayout) []PayoutResult {
	results := make([]PayoutResult, len(payouts))
	for i := range payouts {
		results[i] = ToPayoutResult(&payouts[i])
	}
	return results
}
