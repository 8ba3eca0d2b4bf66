package persistence

import (
	"context"

	appinv "github.com/maintledger/backend/internal/application/invoicing"
	appworks "github.com/maintledger/backend/internal/application/works"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/maintledger/backend/internal/domain/works"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormWorksTransactionScope runs budget lifecycle changes in a GORM transaction.
type GormWorksTransactionScope struct {
	db *gorm.DB
}

// NewGormWorksTransactionScope creates a new GormWorksTransactionScope.
func NewGormWorksTransactionScope(db *gorm.DB) *GormWorksTransactionScope {
	return &GormWorksTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormWorksTransactionScope) Execute(ctx context.Context, fn func(repos appworks.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// InvoiceRepo returns the invoice repository scoped to the current transaction.
func (r *gormTransactionalRepositories) InvoiceRepo() invoicing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentRepo() invoicing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// AdjustmentRepo returns the margin adjustment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AdjustmentRepo() invoicing.MarginAdjustmentRepository {
	return NewGormMarginAdjustmentRepository(r.tx)
}

// PayoutRepo returns the payout repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PayoutRepo() invoicing.AdjustmentPayoutRepository {
	return NewGormAdjustmentPayoutRepository(r.tx)
}

// BudgetRepo returns the final budget repository scoped to the current transaction.
func (r *gormTransactionalRepositories) BudgetRepo() works.BudgetFinalRepository {
	return NewGormBudgetFinalRepository(r.tx)
}

// TaskRepo returns the task repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TaskRepo() works.TaskRepository {
	return NewGormTaskRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

var _ appworks.TransactionScope = (*GormWorksTransactionScope)(nil)
var _ appworks.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
