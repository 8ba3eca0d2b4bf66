package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/settlement"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

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

type MockBudgetBaseRepository struct {
	mock.Mock
}

func (m *MockBudgetBaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*works.BudgetBase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*works.BudgetBase), args.Error(1)
}

func (m *MockBudgetBaseRepository) FindLatestByTask(ctx context.Context, taskID uuid.UUID) (*works.BudgetBase, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*works.BudgetBase), args.Error(1)
}

func (m *MockBudgetBaseRepository) Save(ctx context.Context, budget *works.BudgetBase) error {
	return m.Called(ctx, budget).Error(0)
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

type MockWorkerRepository struct {
	mock.Mock
}

func (m *MockWorkerRepository) FindByID(ctx context.Context, id uuid.UUID) (*works.Worker, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*works.Worker), args.Error(1)
}

func (m *MockWorkerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]works.Worker, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]works.Worker), args.Error(1)
}

func (m *MockWorkerRepository) Save(ctx context.Context, worker *works.Worker) error {
	return m.Called(ctx, worker).Error(0)
}

type MockWorkEntryRepository struct {
	mock.Mock
}

func (m *MockWorkEntryRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]works.WorkEntry, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).([]works.WorkEntry), args.Error(1)
}

func (m *MockWorkEntryRepository) Save(ctx context.Context, entry *works.WorkEntry) error {
	return m.Called(ctx, entry).Error(0)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]works.Expense, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).([]works.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *works.Expense) error {
	return m.Called(ctx, expense).Error(0)
}

type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) Create(ctx context.Context, adjustment *settlement.SettlementAdjustment) error {
	return m.Called(ctx, adjustment).Error(0)
}

func (m *MockAdjustmentRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]settlement.SettlementAdjustment, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).([]settlement.SettlementAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) FindByBudgetFinal(ctx context.Context, budgetFinalID uuid.UUID) ([]settlement.SettlementAdjustment, error) {
	args := m.Called(ctx, budgetFinalID)
	return args.Get(0).([]settlement.SettlementAdjustment), args.Error(1)
}

type MockReceiptSigner struct {
	mock.Mock
}

func (m *MockReceiptSigner) GenerateDownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

// =============================================================================
// Fixtures
// =============================================================================

type fixture struct {
	tasks       *MockTaskRepository
	bases       *MockBudgetBaseRepository
	budgets     *MockBudgetFinalRepository
	workers     *MockWorkerRepository
	entries     *MockWorkEntryRepository
	expenses    *MockExpenseRepository
	adjustments *MockAdjustmentRepository
	service     *Service
}

func newFixture() *fixture {
	f := &fixture{
		tasks:       new(MockTaskRepository),
		bases:       new(MockBudgetBaseRepository),
		budgets:     new(MockBudgetFinalRepository),
		workers:     new(MockWorkerRepository),
		entries:     new(MockWorkEntryRepository),
		expenses:    new(MockExpenseRepository),
		adjustments: new(MockAdjustmentRepository),
	}
	f.service = NewService(Repositories{
		Tasks:       f.tasks,
		BudgetBases: f.bases,
		Budgets:     f.budgets,
		Workers:     f.workers,
		WorkEntries: f.entries,
		Expenses:    f.expenses,
		Adjustments: f.adjustments,
	}, nil)
	return f
}

func admin() shared.Caller {
	return shared.Caller{UserID: uuid.New(), Username: "admin", Role: shared.RoleAdmin}
}

func supervisor(id uuid.UUID) shared.Caller {
	return shared.Caller{UserID: id, Username: "super", Role: shared.RoleSupervisor}
}

// stubTask wires a task with base 13000, one worker 10 full days at 700 and
// 6000 of materials, which settles to net 0.
func (f *fixture) stubTask(t *testing.T, supervisorID uuid.UUID, receiptKey string) *works.Task {
	t.Helper()
	task, err := works.NewTask("Fachada", "B-12", supervisorID)
	require.NoError(t, err)
	base, err := works.NewBudgetBase(task.ID, decimal.NewFromInt(13000))
	require.NoError(t, err)
	worker, err := works.NewWorker("Luis", decimal.NewFromInt(700))
	require.NoError(t, err)
	expense, err := works.NewExpense(task.ID, works.ExpenseCategoryMaterials, decimal.NewFromInt(6000), "Pintura", receiptKey)
	require.NoError(t, err)

	entries := make([]works.WorkEntry, 0, 10)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		e, err := works.NewWorkEntry(task.ID, worker.ID, day.AddDate(0, 0, i), works.DayTypeFull)
		require.NoError(t, err)
		entries = append(entries, *e)
	}

	f.tasks.On("FindByID", mock.Anything, task.ID).Return(task, nil)
	f.bases.On("FindLatestByTask", mock.Anything, task.ID).Return(base, nil)
	f.expenses.On("FindByTask", mock.Anything, task.ID).Return([]works.Expense{*expense}, nil)
	f.entries.On("FindByTask", mock.Anything, task.ID).Return(entries, nil)
	f.workers.On("FindByIDs", mock.Anything, []uuid.UUID{worker.ID}).Return([]works.Worker{*worker}, nil)
	f.adjustments.On("FindByTask", mock.Anything, task.ID).Return([]settlement.SettlementAdjustment{}, nil)
	return task
}

// =============================================================================
// Tests
// =============================================================================

func TestService_ComputeSettlement(t *testing.T) {
	ctx := context.Background()

	t.Run("admin reads any task", func(t *testing.T) {
		f := newFixture()
		task := f.stubTask(t, uuid.New(), "")

		resp, err := f.service.ComputeSettlement(ctx, admin(), task.ID)
		require.NoError(t, err)

		assert.True(t, resp.RealExpenses.Equal(decimal.NewFromInt(13000)))
		assert.True(t, resp.NetProfit.IsZero())
		assert.True(t, resp.SupervisorShare.IsZero())
		assert.True(t, resp.ProfitabilityPct.IsZero())
		require.Len(t, resp.Labor, 1)
		assert.Equal(t, 10, resp.Labor[0].FullDays)
		assert.True(t, resp.Labor[0].Cost.Equal(decimal.NewFromInt(7000)))
		require.Len(t, resp.Materials, 1)
		assert.False(t, resp.Materials[0].HasReceipt)
	})

	t.Run("supervisor reads own task", func(t *testing.T) {
		f := newFixture()
		supID := uuid.New()
		task := f.stubTask(t, supID, "")

		_, err := f.service.ComputeSettlement(ctx, supervisor(supID), task.ID)
		require.NoError(t, err)
	})

	t.Run("supervisor cannot read another task", func(t *testing.T) {
		f := newFixture()
		task, err := works.NewTask("Tejado", "B-3", uuid.New())
		require.NoError(t, err)
		f.tasks.On("FindByID", mock.Anything, task.ID).Return(task, nil)

		_, err = f.service.ComputeSettlement(ctx, supervisor(uuid.New()), task.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrForbidden))
		f.bases.AssertNotCalled(t, "FindLatestByTask", mock.Anything, mock.Anything)
	})

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.ComputeSettlement(ctx, shared.Caller{}, uuid.New())
		assert.True(t, errors.Is(err, shared.ErrUnauthorized))
		f.tasks.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("missing base budget", func(t *testing.T) {
		f := newFixture()
		task, err := works.NewTask("Tejado", "B-3", uuid.New())
		require.NoError(t, err)
		f.tasks.On("FindByID", mock.Anything, task.ID).Return(task, nil)
		f.bases.On("FindLatestByTask", mock.Anything, task.ID).Return(nil, shared.ErrNotFound)

		_, err = f.service.ComputeSettlement(ctx, admin(), task.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("signs receipt urls", func(t *testing.T) {
		f := newFixture()
		signer := new(MockReceiptSigner)
		f.service.SetReceiptSigner(signer)
		task := f.stubTask(t, uuid.New(), "receipts/x/1.pdf")
		expires := time.Now().Add(15 * time.Minute)
		signer.On("GenerateDownloadURL", mock.Anything, "receipts/x/1.pdf").Return("https://s3/receipt", expires, nil)

		resp, err := f.service.ComputeSettlement(ctx, admin(), task.ID)
		require.NoError(t, err)
		require.Len(t, resp.Materials, 1)
		assert.True(t, resp.Materials[0].HasReceipt)
		assert.Equal(t, "https://s3/receipt", resp.Materials[0].ReceiptURL)
		require.NotNil(t, resp.Materials[0].ReceiptExpiresAt)
	})

	t.Run("signing failure keeps the settlement", func(t *testing.T) {
		f := newFixture()
		signer := new(MockReceiptSigner)
		f.service.SetReceiptSigner(signer)
		task := f.stubTask(t, uuid.New(), "receipts/x/2.pdf")
		signer.On("GenerateDownloadURL", mock.Anything, "receipts/x/2.pdf").Return("", time.Time{}, errors.New("s3 down"))

		resp, err := f.service.ComputeSettlement(ctx, admin(), task.ID)
		require.NoError(t, err)
		assert.Empty(t, resp.Materials[0].ReceiptURL)
		assert.True(t, resp.Materials[0].HasReceipt)
	})
}

func TestService_RecordSettlementAdjustment(t *testing.T) {
	ctx := context.Background()

	newBudget := func(t *testing.T, withTask bool) *works.BudgetFinal {
		t.Helper()
		var taskID *uuid.UUID
		if withTask {
			id := uuid.New()
			taskID = &id
		}
		b, err := works.NewBudgetFinal("PF-001", uuid.New(), taskID, nil, nil)
		require.NoError(t, err)
		return b
	}

	t.Run("records and publishes", func(t *testing.T) {
		f := newFixture()
		publisher := new(MockEventPublisher)
		f.service.SetEventPublisher(publisher)
		budget := newBudget(t, true)
		f.budgets.On("FindByID", mock.Anything, budget.ID).Return(budget, nil)
		f.adjustments.On("Create", mock.Anything, mock.AnythingOfType("*settlement.SettlementAdjustment")).Return(nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		caller := admin()
		resp, err := f.service.RecordSettlementAdjustment(ctx, caller, RecordAdjustmentRequest{
			BudgetFinalID: budget.ID,
			Amount:        decimal.NewFromInt(-250),
			Note:          " descuento ",
		})
		require.NoError(t, err)
		assert.Equal(t, *budget.TaskID, resp.TaskID)
		assert.Equal(t, "descuento", resp.Note)
		assert.Equal(t, caller.UserID, resp.CreatedBy)
		assert.True(t, resp.Amount.Equal(decimal.NewFromInt(-250)))
		publisher.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("publish failure is not surfaced", func(t *testing.T) {
		f := newFixture()
		publisher := new(MockEventPublisher)
		f.service.SetEventPublisher(publisher)
		budget := newBudget(t, true)
		f.budgets.On("FindByID", mock.Anything, budget.ID).Return(budget, nil)
		f.adjustments.On("Create", mock.Anything, mock.Anything).Return(nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus closed"))

		_, err := f.service.RecordSettlementAdjustment(ctx, admin(), RecordAdjustmentRequest{
			BudgetFinalID: budget.ID,
			Amount:        decimal.NewFromInt(100),
		})
		assert.NoError(t, err)
	})

	t.Run("supervisor is forbidden", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.RecordSettlementAdjustment(ctx, supervisor(uuid.New()), RecordAdjustmentRequest{
			BudgetFinalID: uuid.New(),
			Amount:        decimal.NewFromInt(100),
		})
		assert.True(t, errors.Is(err, shared.ErrForbidden))
		f.budgets.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("budget without task", func(t *testing.T) {
		f := newFixture()
		budget := newBudget(t, false)
		f.budgets.On("FindByID", mock.Anything, budget.ID).Return(budget, nil)

		_, err := f.service.RecordSettlementAdjustment(ctx, admin(), RecordAdjustmentRequest{
			BudgetFinalID: budget.ID,
			Amount:        decimal.NewFromInt(100),
		})
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "BUDGET_WITHOUT_TASK", domainErr.Code)
		f.adjustments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("zero amount", func(t *testing.T) {
		f := newFixture()
		budget := newBudget(t, true)
		f.budgets.On("FindByID", mock.Anything, budget.ID).Return(budget, nil)

		_, err := f.service.RecordSettlementAdjustment(ctx, admin(), RecordAdjustmentRequest{
			BudgetFinalID: budget.ID,
			Amount:        decimal.Zero,
		})
		assert.Error(t, err)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		f := newFixture()
		budget := newBudget(t, true)
		f.budgets.On("FindByID", mock.Anything, budget.ID).Return(budget, nil)
		f.adjustments.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		_, err := f.service.RecordSettlementAdjustment(ctx, admin(), RecordAdjustmentRequest{
			BudgetFinalID: budget.ID,
			Amount:        decimal.NewFromInt(100),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save settlement adjustment")
	})
}
