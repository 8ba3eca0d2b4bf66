// Package bootstrap assembles repositories and application services over a
// database connection. The HTTP server and the command line tool share it.
package bootstrap

import (
	invoicingapp "github.com/maintledger/backend/internal/application/invoicing"
	settlementapp "github.com/maintledger/backend/internal/application/settlement"
	worksapp "github.com/maintledger/backend/internal/application/works"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/infrastructure/config"
	"github.com/maintledger/backend/internal/infrastructure/persistence"
	"github.com/maintledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReceiptStore is the object storage behind receipt uploads and links
type ReceiptStore interface {
	worksapp.ReceiptStorage
	settlementapp.ReceiptURLSigner
}

// Services holds the application services of the engine
type Services struct {
	Invoices    *invoicingapp.InvoiceService
	Payments    *invoicingapp.PaymentService
	Adjustments *invoicingapp.AdjustmentService
	Settlements *settlementapp.Service
	Works       *worksapp.Service
}

// NewServices wires GORM repositories into the application services
func NewServices(db *gorm.DB, cfg config.InvoicingConfig, log *zap.Logger) *Services {
	if log == nil {
		log = zap.NewNop()
	}

	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	adjustmentRepo := persistence.NewGormMarginAdjustmentRepository(db)
	payoutRepo := persistence.NewGormAdjustmentPayoutRepository(db)
	settlementAdjustmentRepo := persistence.NewGormSettlementAdjustmentRepository(db)
	taskRepo := persistence.NewGormTaskRepository(db)
	budgetBaseRepo := persistence.NewGormBudgetBaseRepository(db)
	budgetRepo := persistence.NewGormBudgetFinalRepository(db)
	workerRepo := persistence.NewGormWorkerRepository(db)
	workEntryRepo := persistence.NewGormWorkEntryRepository(db)
	expenseRepo := persistence.NewGormExpenseRepository(db)

	txScope := persistence.NewGormTransactionScope(db)

	invoices := invoicingapp.NewInvoiceService(txScope, invoiceRepo, log.Named("invoices"))
	if cfg.DueDays > 0 {
		invoices.SetDueDays(cfg.DueDays)
	}

	return &Services{
		Invoices:    invoices,
		Payments:    invoicingapp.NewPaymentService(txScope, invoiceRepo, paymentRepo, log.Named("payments")),
		Adjustments: invoicingapp.NewAdjustmentService(txScope, invoiceRepo, adjustmentRepo, payoutRepo, log.Named("adjustments")),
		Settlements: settlementapp.NewService(settlementapp.Repositories{
			Tasks:       taskRepo,
			BudgetBases: budgetBaseRepo,
			Budgets:     budgetRepo,
			Workers:     workerRepo,
			WorkEntries: workEntryRepo,
			Expenses:    expenseRepo,
			Adjustments: settlementAdjustmentRepo,
		}, log.Named("settlement")),
		Works: worksapp.NewService(persistence.NewGormWorksTransactionScope(db), worksapp.Repositories{
			Tasks:       taskRepo,
			BudgetBases: budgetBaseRepo,
			Budgets:     budgetRepo,
			Workers:     workerRepo,
			WorkEntries: workEntryRepo,
			Expenses:    expenseRepo,
		}, log.Named("works")),
	}
}

// SetEventPublisher makes every mutating service publish its domain events
func (s *Services) SetEventPublisher(publisher shared.EventPublisher) {
	s.Invoices.SetEventPublisher(publisher)
	s.Payments.SetEventPublisher(publisher)
	s.Adjustments.SetEventPublisher(publisher)
	s.Settlements.SetEventPublisher(publisher)
	s.Works.SetEventPublisher(publisher)
}

// SetBusinessMetrics enables business metric recording
func (s *Services) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.Invoices.SetBusinessMetrics(metrics)
	s.Payments.SetBusinessMetrics(metrics)
	s.Adjustments.SetBusinessMetrics(metrics)
}

// SetReceiptStore enables receipt uploads and download links
func (s *Services) SetReceiptStore(store ReceiptStore) {
	s.Works.SetReceiptStorage(store)
	s.Settlements.SetReceiptSigner(store)
}
