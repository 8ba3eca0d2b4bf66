package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoicingapp "github.com/maintledger/backend/internal/application/invoicing"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/interfaces/http/dto"
	"github.com/maintledger/backend/internal/interfaces/http/middleware"
)

// InvoiceOperations is the invoice lifecycle used by InvoiceHandler
type InvoiceOperations interface {
	CreateInvoices(ctx context.Context, caller shared.Caller, budgetFinalID uuid.UUID) (*invoicingapp.CreateInvoicesResult, error)
	DeleteInvoice(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*invoicingapp.DeleteInvoiceResult, error)
	GetByID(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*invoicingapp.InvoiceResponse, error)
	List(ctx context.Context, caller shared.Caller, filter invoicingapp.InvoiceListFilter) ([]invoicingapp.InvoiceResponse, int64, error)
}

var _ InvoiceOperations = (*invoicingapp.InvoiceService)(nil)

// InvoiceHandler serves invoice creation, lookup and deletion
type InvoiceHandler struct {
	BaseHandler
	invoices InvoiceOperations
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices InvoiceOperations) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// invoiceListQuery is the query string of GET /invoices
type invoiceListQuery struct {
	dto.Pagination
	AdministratorID string `form:"administrator_id" binding:"omitempty,uuid"`
	BudgetFinalID   string `form:"budget_final_id" binding:"omitempty,uuid"`
	Status          *int   `form:"status" binding:"omitempty,min=1,max=6"`
	OrderBy         string `form:"order_by" binding:"omitempty,max=40"`
	OrderDir        string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}

// CreateInvoices converts an approved final budget into its invoices.
// POST /budgets/final/:id/invoices
func (h *InvoiceHandler) CreateInvoices(c *gin.Context) {
	budgetID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.invoices.CreateInvoices(c.Request.Context(), middleware.GetCaller(c), budgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Invoices created", result)
}

// DeleteInvoice removes an unpaid invoice and rolls back its budget and task.
// DELETE /invoices/:id
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	invoiceID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.invoices.DeleteInvoice(c.Request.Context(), middleware.GetCaller(c), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Invoice deleted", result)
}

// GetInvoice returns one invoice with its lines.
// GET /invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoiceID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoices.GetByID(c.Request.Context(), middleware.GetCaller(c), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "", invoice)
}

// ListInvoices returns a page of invoices.
// GET /invoices?administrator_id=&budget_final_id=&status=&order_by=&order_dir=&page=&page_size=
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var q invoiceListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page := q.Pagination.Normalize()

	filter := invoicingapp.InvoiceListFilter{
		AdministratorID: optionalUUID(q.AdministratorID),
		BudgetFinalID:   optionalUUID(q.BudgetFinalID),
		Status:          q.Status,
		OrderBy:         q.OrderBy,
		OrderDir:        q.OrderDir,
		Page:            page.Page,
		PageSize:        page.PageSize,
	}
	invoices, total, err := h.invoices.List(c.Request.Context(), middleware.GetCaller(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, page.Page, page.PageSize)
}
