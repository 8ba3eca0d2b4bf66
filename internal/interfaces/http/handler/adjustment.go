package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoicingapp "github.com/maintledger/backend/internal/application/invoicing"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/interfaces/http/middleware"
)

// AdjustmentOperations is the margin adjustment ledger used by AdjustmentHandler
type AdjustmentOperations interface {
	RegisterAdjustment(ctx context.Context, caller shared.Caller, req invoicingapp.RegisterAdjustmentRequest) (*invoicingapp.AdjustmentResponse, error)
	ApproveAdjustments(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*invoicingapp.ApproveAdjustmentsResult, error)
	PayAdjustment(ctx context.Context, caller shared.Caller, adjustmentID uuid.UUID) (*invoicingapp.PayoutResult, error)
	PaySettledAdjustments(ctx context.Context, caller shared.Caller, administratorID uuid.UUID) (*invoicingapp.PayoutResult, error)
	ListPendingAdjustments(ctx context.Context, caller shared.Caller, administratorID uuid.UUID) ([]invoicingapp.AdjustmentResponse, error)
	ListInvoiceAdjustments(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) ([]invoicingapp.AdjustmentResponse, error)
	ListPayouts(ctx context.Context, caller shared.Caller, administratorID uuid.UUID) ([]invoicingapp.PayoutResult, error)
}

var _ AdjustmentOperations = (*invoicingapp.AdjustmentService)(nil)

// AdjustmentHandler serves margin adjustments and their payouts
type AdjustmentHandler struct {
	BaseHandler
	adjustments AdjustmentOperations
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(adjustments AdjustmentOperations) *AdjustmentHandler {
	return &AdjustmentHandler{adjustments: adjustments}
}

// RegisterAdjustment adds a margin adjustment to an invoice line.
// POST /invoice-items/:id/adjustments
func (h *AdjustmentHandler) RegisterAdjustment(c *gin.Context) {
	itemID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req invoicingapp.RegisterAdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.InvoiceItemID = itemID

	adjustment, err := h.adjustments.RegisterAdjustment(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Adjustment registered", adjustment)
}

// ListInvoiceAdjustments returns the adjustments of an invoice.
// GET /invoices/:id/adjustments
func (h *AdjustmentHandler) ListInvoiceAdjustments(c *gin.Context) {
	invoiceID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	adjustments, err := h.adjustments.ListInvoiceAdjustments(c.Request.Context(), middleware.GetCaller(c), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "", adjustments)
}

// ApproveAdjustments approves every adjustment of an invoice.
// POST /invoices/:id/adjustments/approve
func (h *AdjustmentHandler) ApproveAdjustments(c *gin.Context) {
	invoiceID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.adjustments.ApproveAdjustments(c.Request.Context(), middleware.GetCaller(c), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Adjustments approved", result)
}

// PayAdjustment pays a single approved adjustment.
// POST /adjustments/:id/pay
func (h *AdjustmentHandler) PayAdjustment(c *gin.Context) {
	adjustmentID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.adjustments.PayAdjustment(c.Request.Context(), middleware.GetCaller(c), adjustmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Adjustment paid", result)
}

// ListPendingAdjustments returns approved, unpaid adjustments on settled
// invoices of an administrator.
// GET /administrators/:id/adjustments/pending
func (h *AdjustmentHandler) ListPendingAdjustments(c *gin.Context) {
	administratorID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	adjustments, err := h.adjustments.ListPendingAdjustments(c.Request.Context(), middleware.GetCaller(c), administratorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "", adjustments)
}

// PaySettledAdjustments pays every pending adjustment of an administrator.
// POST /administrators/:id/adjustments/pay
func (h *AdjustmentHandler) PaySettledAdjustments(c *gin.Context) {
	administratorID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.adjustments.PaySettledAdjustments(c.Request.Context(), middleware.GetCaller(c), administratorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Adjustments paid", result)
}

// ListPayouts returns the payout receipts of an administrator.
// GET /administrators/:id/payouts
func (h *AdjustmentHandler) ListPayouts(c *gin.Context) {
	administratorID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	payouts, err := h.adjustments.ListPayouts(c.Request.Context(), middleware.GetCaller(c), administratorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "", payouts)
}
