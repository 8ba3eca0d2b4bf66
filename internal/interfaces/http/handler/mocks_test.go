package handler

import (
	"context"

	"github.com/google/uuid"
	invoicingapp "github.com/maintledger/backend/internal/application/invoicing"
	settlementapp "github.com/maintledger/backend/internal/application/settlement"
	worksapp "github.com/maintledger/backend/internal/application/works"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockInvoiceOperations implements InvoiceOperations for testing
type MockInvoiceOperations struct {
	mock.Mock
}

func (m *MockInvoiceOperations) CreateInvoices(ctx context.Context, caller shared.Caller, budgetFinalID uuid.UUID) (*invoicingapp.CreateInvoicesResult, error) {
	args := m.Called(ctx, caller, budgetFinalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.CreateInvoicesResult), args.Error(1)
}

func (m *MockInvoiceOperations) DeleteInvoice(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*invoicingapp.DeleteInvoiceResult, error) {
	args := m.Called(ctx, caller, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.DeleteInvoiceResult), args.Error(1)
}

func (m *MockInvoiceOperations) GetByID(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*invoicingapp.InvoiceResponse, error) {
	args := m.Called(ctx, caller, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceOperations) List(ctx context.Context, caller shared.Caller, filter invoicingapp.InvoiceListFilter) ([]invoicingapp.InvoiceResponse, int64, error) {
	args := m.Called(ctx, caller, filter)
	return args.Get(0).([]invoicingapp.InvoiceResponse), args.Get(1).(int64), args.Error(2)
}

// MockPaymentOperations implements PaymentOperations for testing
type MockPaymentOperations struct {
	mock.Mock
}

func (m *MockPaymentOperations) RecordPayment(ctx context.Context, caller shared.Caller, req invoicingapp.RecordPaymentRequest) (*invoicingapp.PaymentResult, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.PaymentResult), args.Error(1)
}

func (m *MockPaymentOperations) DeletePayment(ctx context.Context, caller shared.Caller, paymentID uuid.UUID) (*invoicingapp.PaymentResult, error) {
	args := m.Called(ctx, caller, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.PaymentResult), args.Error(1)
}

func (m *MockPaymentOperations) ListPayments(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) ([]invoicingapp.PaymentResponse, error) {
	args := m.Called(ctx, caller, invoiceID)
	return args.Get(0).([]invoicingapp.PaymentResponse), args.Error(1)
}

// MockAdjustmentOperations implements AdjustmentOperations for testing
type MockAdjustmentOperations struct {
	mock.Mock
}

func (m *MockAdjustmentOperations) RegisterAdjustment(ctx context.Context, caller shared.Caller, req invoicingapp.RegisterAdjustmentRequest) (*invoicingapp.AdjustmentResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.AdjustmentResponse), args.Error(1)
}

func (m *MockAdjustmentOperations) ApproveAdjustments(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*invoicingapp.ApproveAdjustmentsResult, error) {
	args := m.Called(ctx, caller, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.ApproveAdjustmentsResult), args.Error(1)
}

func (m *MockAdjustmentOperations) PayAdjustment(ctx context.Context, caller shared.Caller, adjustmentID uuid.UUID) (*invoicingapp.PayoutResult, error) {
	args := m.Called(ctx, caller, adjustmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.PayoutResult), args.Error(1)
}

func (m *MockAdjustmentOperations) PaySettledAdjustments(ctx context.Context, caller shared.Caller, administratorID uuid.UUID) (*invoicingapp.PayoutResult, error) {
	args := m.Called(ctx, caller, administratorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.PayoutResult), args.Error(1)
}

func (m *MockAdjustmentOperations) ListPendingAdjustments(ctx context.Context, caller shared.Caller, administratorID uuid.UUID) ([]invoicingapp.AdjustmentResponse, error) {
	args := m.Called(ctx, caller, administratorID)
	return args.Get(0).([]invoicingapp.AdjustmentResponse), args.Error(1)
}

func (m *MockAdjustmentOperations) ListInvoiceAdjustments(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) ([]invoicingapp.AdjustmentResponse, error) {
	args := m.Called(ctx, caller, invoiceID)
	return args.Get(0).([]invoicingapp.AdjustmentResponse), args.Error(1)
}

func (m *MockAdjustmentOperations) ListPayouts(ctx context.Context, caller shared.Caller, administratorID uuid.UUID) ([]invoicingapp.PayoutResult, error) {
	args := m.Called(ctx, caller, administratorID)
	return args.Get(0).([]invoicingapp.PayoutResult), args.Error(1)
}

// MockSettlementOperations implements SettlementOperations for testing
type MockSettlementOperations struct {
	mock.Mock
}

func (m *MockSettlementOperations) ComputeSettlement(ctx context.Context, caller shared.Caller, taskID uuid.UUID) (*settlementapp.SettlementResponse, error) {
	args := m.Called(ctx, caller, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlementapp.SettlementResponse), args.Error(1)
}

func (m *MockSettlementOperations) RecordSettlementAdjustment(ctx context.Context, caller shared.Caller, req settlementapp.RecordAdjustmentRequest) (*settlementapp.SettlementAdjustmentResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlementapp.SettlementAdjustmentResponse), args.Error(1)
}

// MockWorksOperations implements WorksOperations for testing
type MockWorksOperations struct {
	mock.Mock
}

func (m *MockWorksOperations) CreateTask(ctx context.Context, caller shared.Caller, req worksapp.CreateTaskRequest) (*worksapp.TaskResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worksapp.TaskResponse), args.Error(1)
}

func (m *MockWorksOperations) CreateBudgetBase(ctx context.Context, caller shared.Caller, req worksapp.CreateBudgetBaseRequest) (*worksapp.BudgetBaseResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worksapp.BudgetBaseResponse), args.Error(1)
}

func (m *MockWorksOperations) CreateBudgetFinal(ctx context.Context, caller shared.Caller, req worksapp.CreateBudgetFinalRequest) (*worksapp.BudgetFinalResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worksapp.BudgetFinalResponse), args.Error(1)
}

func (m *MockWorksOperations) budget(args mock.Arguments) (*worksapp.BudgetFinalResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worksapp.BudgetFinalResponse), args.Error(1)
}

func (m *MockWorksOperations) GetBudgetFinal(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*worksapp.BudgetFinalResponse, error) {
	return m.budget(m.Called(ctx, caller, budgetID))
}

func (m *MockWorksOperations) SendBudget(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*worksapp.BudgetFinalResponse, error) {
	return m.budget(m.Called(ctx, caller, budgetID))
}

func (m *MockWorksOperations) ApproveBudget(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*worksapp.BudgetFinalResponse, error) {
	return m.budget(m.Called(ctx, caller, budgetID))
}

func (m *MockWorksOperations) RejectBudget(ctx context.Context, caller shared.Caller, budgetID uuid.UUID) (*worksapp.BudgetFinalResponse, error) {
	return m.budget(m.Called(ctx, caller, budgetID))
}

func (m *MockWorksOperations) RegisterWorker(ctx context.Context, caller shared.Caller, req worksapp.RegisterWorkerRequest) (*worksapp.WorkerResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worksapp.WorkerResponse), args.Error(1)
}

func (m *MockWorksOperations) RecordWorkEntry(ctx context.Context, caller shared.Caller, req worksapp.RecordWorkEntryRequest) (*worksapp.WorkEntryResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worksapp.WorkEntryResponse), args.Error(1)
}

func (m *MockWorksOperations) RequestReceiptUpload(ctx context.Context, caller shared.Caller, req worksapp.ReceiptUploadRequest) (*worksapp.ReceiptUploadResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worksapp.ReceiptUploadResponse), args.Error(1)
}

func (m *MockWorksOperations) RecordExpense(ctx context.Context, caller shared.Caller, req worksapp.RecordExpenseRequest) (*worksapp.ExpenseResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worksapp.ExpenseResponse), args.Error(1)
}
