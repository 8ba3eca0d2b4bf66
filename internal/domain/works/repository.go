package works

import (
	"context"

	"github.com/google/uuid"
)

// TaskRepository defines persistence operations for tasks
type TaskRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	// FindByIDForUpdate loads the task holding a row lock until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Task, error)
	Save(ctx context.Context, task *Task) error
}

// BudgetBaseRepository defines persistence operations for base budgets
type BudgetBaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BudgetBase, error)
	// FindLatestByTask returns the newest approved base budget of a task,
	// falling back to the newest draft; rejected ones are skipped
	FindLatestByTask(ctx context.Context, taskID uuid.UUID) (*BudgetBase, error)
	Save(ctx context.Context, budget *BudgetBase) error
}

// BudgetFinalRepository defines persistence operations for final budgets.
// Loaded budgets always carry their items ordered by position.
type BudgetFinalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BudgetFinal, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*BudgetFinal, error)
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]BudgetFinal, error)
	Save(ctx context.Context, budget *BudgetFinal) error
}

// WorkerRepository defines persistence operations for workers
type WorkerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Worker, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Worker, error)
	Save(ctx context.Context, worker *Worker) error
}

// WorkEntryRepository defines persistence operations for work logs
type WorkEntryRepository interface {
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]WorkEntry, error)
	Save(ctx context.Context, entry *WorkEntry) error
}

// ExpenseRepository defines persistence operations for task expenses
type ExpenseRepository interface {
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]Expense, error)
	Save(ctx context.Context, expense *Expense) error
}
