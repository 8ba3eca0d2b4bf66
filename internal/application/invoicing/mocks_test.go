package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]invoicing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) CountByBudgetFinal(ctx context.Context, budgetFinalID uuid.UUID) (int64, error) {
	args := m.Called(ctx, budgetFinalID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) DeleteItems(ctx context.Context, invoiceID uuid.UUID) error {
	return m.Called(ctx, invoiceID).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoicing.Payment, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]invoicing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByRequestKey(ctx context.Context, key string) (*invoicing.Payment, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) Totals(ctx context.Context, invoiceID uuid.UUID) (invoicing.PaymentTotals, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(invoicing.PaymentTotals), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *invoicing.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.MarginAdjustment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.MarginAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*invoicing.MarginAdjustment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.MarginAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoicing.MarginAdjustment, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]invoicing.MarginAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) FindSettledUnpaidForUpdate(ctx context.Context, administratorID uuid.UUID) ([]invoicing.MarginAdjustment, error) {
	args := m.Called(ctx, administratorID)
	return args.Get(0).([]invoicing.MarginAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) FindSettledUnpaid(ctx context.Context, administratorID uuid.UUID) ([]invoicing.MarginAdjustment, error) {
	args := m.Called(ctx, administratorID)
	return args.Get(0).([]invoicing.MarginAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdjustmentRepository) Create(ctx context.Context, adjustment *invoicing.MarginAdjustment) error {
	return m.Called(ctx, adjustment).Error(0)
}

func (m *MockAdjustmentRepository) Save(ctx context.Context, adjustment *invoicing.MarginAdjustment) error {
	return m.Called(ctx, adjustment).Error(0)
}

func (m *MockAdjustmentRepository) ApproveByInvoice(ctx context.Context, invoiceID uuid.UUID, at time.Time) (int64, error) {
	args := m.Called(ctx, invoiceID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdjustmentRepository) MarkPaid(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	args := m.Called(ctx, ids, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdjustmentRepository) DeleteByInvoiceItems(ctx context.Context, itemIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, itemIDs)
	return args.Get(0).(int64), args.Error(1)
}

type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) Create(ctx context.Context, payout *invoicing.AdjustmentPayout) error {
	return m.Called(ctx, payout).Error(0)
}

func (m *MockPayoutRepository) FindByAdministrator(ctx context.Context, administratorID uuid.UUID) ([]invoicing.AdjustmentPayout, error) {
	args := m.Called(ctx, administratorID)
	return args.Get(0).([]invoicing.AdjustmentPayout), args.Error(1)
}

type MockBudgetFinalRepository struct {
	mock.Mock
}

func (m *MockBudgetFinalRepository) FindByID(ctx context.Context, id uuid.UUID) (*works.BudgetFinal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*works.BudgetFinal), args.Error(1)
}

func (m *MockBudgetFinalRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*works.BudgetFinal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*works.BudgetFinal), args.Error(1)
}

func (m *MockBudgetFinalRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]works.BudgetFinal, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).([]works.BudgetFinal), args.Error(1)
}

func (m *MockBudgetFinalRepository) Save(ctx context.Context, budget *works.BudgetFinal) error {
	return m.Called(ctx, budget).Error(0)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*works.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*works.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*works.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*works.Task), args.Error(1)
}

func (m *MockTaskRepository) Save(ctx context.Context, task *works.Task) error {
	return m.Called(ctx, task).Error(0)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

// =============================================================================
// Fixtures
// =============================================================================

type testRepos struct {
	invoices    *MockInvoiceRepository
	payments    *MockPaymentRepository
	adjustments *MockAdjustmentRepository
	payouts     *MockPayoutRepository
	budgets     *MockBudgetFinalRepository
	tasks       *MockTaskRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		invoices:    new(MockInvoiceRepository),
		payments:    new(MockPaymentRepository),
		adjustments: new(MockAdjustmentRepository),
		payouts:     new(MockPayoutRepository),
		budgets:     new(MockBudgetFinalRepository),
		tasks:       new(MockTaskRepository),
	}
}

func (r *testRepos) scope() *NoOpTransactionScope {
	return NewNoOpTransactionScope(r.invoices, r.payments, r.adjustments, r.payouts, r.budgets, r.tasks)
}

func (r *testRepos) assertExpectations(t mock.TestingT) {
	r.invoices.AssertExpectations(t)
	r.payments.AssertExpectations(t)
	r.adjustments.AssertExpectations(t)
	r.payouts.AssertExpectations(t)
	r.budgets.AssertExpectations(t)
	r.tasks.AssertExpectations(t)
}

func adminCaller() shared.Caller {
	return shared.Caller{UserID: uuid.New(), Username: "admin", Role: shared.RoleAdmin}
}

func supervisorCaller() shared.Caller {
	return shared.Caller{UserID: uuid.New(), Username: "supervisor", Role: shared.RoleSupervisor}
}
