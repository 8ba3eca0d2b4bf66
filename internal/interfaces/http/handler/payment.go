package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoicingapp "github.com/maintledger/backend/internal/application/invoicing"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/interfaces/http/middleware"
)

// PaymentOperations is the payment ledger used by PaymentHandler
type PaymentOperations interface {
	RecordPayment(ctx context.Context, caller shared.Caller, req invoicingapp.RecordPaymentRequest) (*invoicingapp.PaymentResult, error)
	DeletePayment(ctx context.Context, caller shared.Caller, paymentID uuid.UUID) (*invoicingapp.PaymentResult, error)
	ListPayments(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) ([]invoicingapp.PaymentResponse, error)
}

var _ PaymentOperations = (*invoicingapp.PaymentService)(nil)

// PaymentHandler serves payments against invoices
type PaymentHandler struct {
	BaseHandler
	payments PaymentOperations
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentOperations) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RecordPayment registers a payment and returns the recomputed invoice.
// A replayed request_key answers 200 with the original payment.
// POST /invoices/:id/payments
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	invoiceID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req invoicingapp.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.InvoiceID = invoiceID

	result, err := h.payments.RecordPayment(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Replayed {
		h.Success(c, "Payment already recorded", result)
		return
	}
	h.Created(c, "Payment recorded", result)
}

// DeletePayment removes a payment and recomputes its invoice.
// DELETE /payments/:id
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	paymentID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.payments.DeletePayment(c.Request.Context(), middleware.GetCaller(c), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Payment deleted", result)
}

// ListPayments returns the payments of an invoice.
// GET /invoices/:id/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	invoiceID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	payments, err := h.payments.ListPayments(c.Request.Context(), middleware.GetCaller(c), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "", payments)
}
