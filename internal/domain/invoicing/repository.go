package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	AdministratorID *uuid.UUID
	BudgetFinalID   *uuid.UUID
	Status          *InvoiceStatus
	// OrderBy names a column; unknown columns fall back to created_at
	OrderBy         string
	OrderDir        string
	Page            int
	PageSize        int
}

// InvoiceRepository defines persistence operations for invoices.
// Loaded invoices carry their items ordered by position.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate loads the invoice holding a row lock until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByItemID(ctx context.Context, itemID uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)
	CountByBudgetFinal(ctx context.Context, budgetFinalID uuid.UUID) (int64, error)
	// Create inserts the header and its items. A second invoice of the same
	// kind for one budget fails with ErrAlreadyInvoiced; a number held by
	// another budget's invoice fails with ErrInvoiceNumberTaken.
	Create(ctx context.Context, invoice *Invoice) error
	// Save updates header fields only
	Save(ctx context.Context, invoice *Invoice) error
	DeleteItems(ctx context.Context, invoiceID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines persistence operations for payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	FindByRequestKey(ctx context.Context, key string) (*Payment, error)
	CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)
	// Totals sums every persisted payment of the invoice
	Totals(ctx context.Context, invoiceID uuid.UUID) (PaymentTotals, error)
	Create(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MarginAdjustmentRepository defines persistence operations for margin adjustments
type MarginAdjustmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MarginAdjustment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*MarginAdjustment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]MarginAdjustment, error)
	// FindSettledUnpaidForUpdate locks the approved, unpaid adjustments on
	// invoices of the administrator
	FindSettledUnpaidForUpdate(ctx context.Context, administratorID uuid.UUID) ([]MarginAdjustment, error)
	FindSettledUnpaid(ctx context.Context, administratorID uuid.UUID) ([]MarginAdjustment, error)
	CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)
	Create(ctx context.Context, adjustment *MarginAdjustment) error
	Save(ctx context.Context, adjustment *MarginAdjustment) error
	// ApproveByInvoice approves every unapproved adjustment of the invoice
	ApproveByInvoice(ctx context.Context, invoiceID uuid.UUID, at time.Time) (int64, error)
	// MarkPaid flags the given adjustments paid; only approved, unpaid rows are touched
	MarkPaid(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error)
	DeleteByInvoiceItems(ctx context.Context, itemIDs []uuid.UUID) (int64, error)
}

// AdjustmentPayoutRepository stores payout receipts
type AdjustmentPayoutRepository interface {
	Create(ctx context.Context, payout *AdjustmentPayout) error
	FindByAdministrator(ctx context.Context, administratorID uuid.UUID) ([]AdjustmentPayout, error)
}
