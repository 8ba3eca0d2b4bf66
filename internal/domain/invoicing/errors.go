package invoicing

import "github.com/maintledger/backend/internal/domain/shared"

// Invoicing errors. Integrity conflicts carry distinct codes so callers can
// tell them apart from a generic failure.
var (
	ErrEmptyBudget           = shared.NewDomainError("EMPTY_BUDGET", "The budget has no items to invoice")
	ErrNoInvoiceableItems    = shared.NewDomainError("NO_INVOICEABLE_ITEMS", "No invoiceable items were found in the budget")
	ErrAlreadyInvoiced       = shared.NewDomainError("ALREADY_INVOICED", "Invoices already exist for this budget")
	ErrInvoiceNumberTaken    = shared.NewDomainError("INVOICE_NUMBER_TAKEN", "Another budget already holds this invoice number")
	ErrHasPayments           = shared.NewDomainError("HAS_PAYMENTS", "The invoice has payments; delete its payments first")
	ErrAmountExceedsBalance  = shared.NewDomainError("AMOUNT_EXCEEDS_BALANCE", "The payment exceeds the pending balance")
	ErrTotalMismatch         = shared.NewDomainError("TOTAL_MISMATCH", "The invoice total changed since it was loaded")
	ErrInvoiceAlreadyPaid    = shared.NewDomainError("INVOICE_ALREADY_PAID", "The invoice is already fully paid")
	ErrNoAdjustments         = shared.NewDomainError("NO_ADJUSTMENTS", "The invoice has no margin adjustments")
	ErrNoPendingAdjustments  = shared.NewDomainError("NO_PENDING_ADJUSTMENTS", "There are no approved adjustments pending payment")
	ErrAdjustmentNotApproved = shared.NewDomainError("ADJUSTMENT_NOT_APPROVED", "The adjustment must be approved before it can be paid")
	ErrAdjustmentPaid        = shared.NewDomainError("ADJUSTMENT_ALREADY_PAID", "The adjustment has already been paid")
)
