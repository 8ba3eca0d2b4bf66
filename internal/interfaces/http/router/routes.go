package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/interfaces/http/middleware"
)

var (
	adminOnly = []shared.Role{shared.RoleAdmin}
	anyRole   = []shared.Role{shared.RoleAdmin, shared.RoleSupervisor}
)

// route is one authenticated endpoint under /api/v1
type route struct {
	method string
	path   string
	roles  []shared.Role
	// idempotent routes honour the Idempotency-Key header
	idempotent bool
	handler    gin.HandlerFunc
}

func routes(h Handlers) []route {
	return []route{
		{http.MethodGet, "/health", nil, false, h.System.Health},

		{http.MethodGet, "/invoices", adminOnly, false, h.Invoice.ListInvoices},
		{http.MethodGet, "/invoices/:id", adminOnly, false, h.Invoice.GetInvoice},
		{http.MethodDelete, "/invoices/:id", adminOnly, false, h.Invoice.DeleteInvoice},
		{http.MethodPost, "/invoices/:id/payments", adminOnly, true, h.Payment.RecordPayment},
		{http.MethodGet, "/invoices/:id/payments", adminOnly, false, h.Payment.ListPayments},
		{http.MethodGet, "/invoices/:id/adjustments", adminOnly, false, h.Adjustment.ListInvoiceAdjustments},
		{http.MethodPost, "/invoices/:id/adjustments/approve", adminOnly, false, h.Adjustment.ApproveAdjustments},
		{http.MethodDelete, "/payments/:id", adminOnly, false, h.Payment.DeletePayment},
		{http.MethodPost, "/invoice-items/:id/adjustments", adminOnly, false, h.Adjustment.RegisterAdjustment},
		{http.MethodPost, "/adjustments/:id/pay", adminOnly, false, h.Adjustment.PayAdjustment},

		{http.MethodGet, "/administrators/:id/adjustments/pending", adminOnly, false, h.Adjustment.ListPendingAdjustments},
		{http.MethodPost, "/administrators/:id/adjustments/pay", adminOnly, false, h.Adjustment.PaySettledAdjustments},
		{http.MethodGet, "/administrators/:id/payouts", adminOnly, false, h.Adjustment.ListPayouts},

		{http.MethodPost, "/budgets/base", anyRole, false, h.Works.CreateBudgetBase},
		{http.MethodPost, "/budgets/final", adminOnly, false, h.Works.CreateBudgetFinal},
		{http.MethodGet, "/budgets/final/:id", adminOnly, false, h.Works.GetBudgetFinal},
		{http.MethodPost, "/budgets/final/:id/send", adminOnly, false, h.Works.SendBudget},
		{http.MethodPost, "/budgets/final/:id/approve", adminOnly, false, h.Works.ApproveBudget},
		{http.MethodPost, "/budgets/final/:id/reject", adminOnly, false, h.Works.RejectBudget},
		{http.MethodPost, "/budgets/final/:id/invoices", adminOnly, true, h.Invoice.CreateInvoices},
		{http.MethodPost, "/budgets/final/:id/settlement-adjustments", adminOnly, false, h.Settlement.RecordAdjustment},

		{http.MethodPost, "/tasks", adminOnly, false, h.Works.CreateTask},
		{http.MethodGet, "/tasks/:id/settlement", anyRole, false, h.Settlement.GetSettlement},
		{http.MethodPost, "/tasks/:id/work-entries", anyRole, false, h.Works.RecordWorkEntry},
		{http.MethodPost, "/tasks/:id/receipts", anyRole, false, h.Works.RequestReceiptUpload},
		{http.MethodPost, "/tasks/:id/expenses", anyRole, false, h.Works.RecordExpense},

		{http.MethodPost, "/workers", adminOnly, false, h.Works.RegisterWorker},
	}
}

// mount registers table on api. Routes without roles are public; a nil
// idempotency handler disables Idempotency-Key support.
func mount(api *gin.RouterGroup, table []route, idempotency gin.HandlerFunc) {
	for _, rt := range table {
		var chain []gin.HandlerFunc
		if rt.roles != nil {
			chain = append(chain, middleware.RequireRole(rt.roles...))
		}
		if rt.idempotent && idempotency != nil {
			chain = append(chain, idempotency)
		}
		api.Handle(rt.method, rt.path, append(chain, rt.handler)...)
	}
}
