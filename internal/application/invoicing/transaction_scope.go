package invoicing

import (
	"context"

	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/maintledger/backend/internal/domain/works"
)

// TransactionScope provides transactional access to the invoicing repositories.
// Every repository handed to fn shares one database transaction, committed
// when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories touched by
// invoice creation, payment reconciliation, adjustment payouts and the
// rollback of a budget after its last invoice is deleted.
//
// Rows that are read in order to be mutated are loaded through the
// ForUpdate variants so concurrent writers serialize on them.
type TransactionalRepositories interface {
	InvoiceRepo() invoicing.InvoiceRepository
	PaymentRepo() invoicing.PaymentRepository
	AdjustmentRepo() invoicing.MarginAdjustmentRepository
	PayoutRepo() invoicing.AdjustmentPayoutRepository
	BudgetRepo() works.BudgetFinalRepository
	TaskRepo() works.TaskRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Used in unit tests with in-memory mocks.
type NoOpTransactionScope struct {
	invoiceRepo    invoicing.InvoiceRepository
	paymentRepo    invoicing.PaymentRepository
	adjustmentRepo invoicing.MarginAdjustmentRepository
	payoutRepo     invoicing.AdjustmentPayoutRepository
	budgetRepo     works.BudgetFinalRepository
	taskRepo       works.TaskRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo invoicing.InvoiceRepository,
	paymentRepo invoicing.PaymentRepository,
	adjustmentRepo invoicing.MarginAdjustmentRepository,
	payoutRepo invoicing.AdjustmentPayoutRepository,
	budgetRepo works.BudgetFinalRepository,
	taskRepo works.TaskRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		adjustmentRepo: adjustmentRepo,
		payoutRepo:     payoutRepo,
		budgetRepo:     budgetRepo,
		taskRepo:       taskRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() invoicing.InvoiceRepository {
	return s.invoiceRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() invoicing.PaymentRepository {
	return s.paymentRepo
}

// AdjustmentRepo returns the margin adjustment repository.
func (s *NoOpTransactionScope) AdjustmentRepo() invoicing.MarginAdjustmentRepository {
	return s.adjustmentRepo
}

// PayoutRepo returns the payout repository.
func (s *NoOpTransactionScope) PayoutRepo() invoicing.AdjustmentPayoutRepository {
	return s.payoutRepo
}

// BudgetRepo returns the final budget repository.
func (s *NoOpTransactionScope) BudgetRepo() works.BudgetFinalRepository {
	return s.budgetRepo
}

// TaskRepo returns the task repository.
func (s *NoOpTransactionScope) TaskRepo() works.TaskRepository {
	return s.taskRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
