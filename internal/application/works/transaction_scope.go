package works

import (
	"context"

	"github.com/maintledger/backend/internal/domain/works"
)

// TransactionScope runs budget lifecycle changes that also move the task
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the repositories sharing one transaction
type TransactionalRepositories interface {
	BudgetRepo() works.BudgetFinalRepository
	TaskRepo() works.TaskRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Used in unit tests with in-memory mocks.
type NoOpTransactionScope struct {
	budgetRepo works.BudgetFinalRepository
	taskRepo   works.TaskRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(budgetRepo works.BudgetFinalRepository, taskRepo works.TaskRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{budgetRepo: budgetRepo, taskRepo: taskRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BudgetRepo returns the final budget repository.
func (s *NoOpTransactionScope) BudgetRepo() works.BudgetFinalRepository {
	return s.budgetRepo
}

// TaskRepo returns the task repository.
func (s *NoOpTransactionScope) TaskRepo() works.TaskRepository {
	return s.taskRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
