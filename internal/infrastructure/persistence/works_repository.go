package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/maintledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate locks the selected rows until the surrounding transaction ends.
// SQLite ignores the clause.
var forUpdate = clause.Locking{Strength: "UPDATE"}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*works.Task, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a task by ID and locks its row
func (r *GormTaskRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*works.Task, error) {
	return r.find(r.db.WithContext(ctx).Clauses(forUpdate), id)
}

func (r *GormTaskRepository) find(query *gorm.DB, id uuid.UUID) (*works.Task, error) {
	var model models.TaskModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Task not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, task *works.Task) error {
	return r.db.WithContext(ctx).Save(models.TaskModelFromDomain(task)).Error
}

// GormBudgetBaseRepository implements BudgetBaseRepository using GORM
type GormBudgetBaseRepository struct {
	db *gorm.DB
}

// NewGormBudgetBaseRepository creates a new GormBudgetBaseRepository
func NewGormBudgetBaseRepository(db *gorm.DB) *GormBudgetBaseRepository {
	return &GormBudgetBaseRepository{db: db}
}

// FindByID finds a base budget by ID
func (r *GormBudgetBaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*works.BudgetBase, error) {
	var model models.BudgetBaseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Base budget not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestByTask returns the settlement baseline of a task: the newest
// approved base budget, else the newest draft. Rejected estimates never count.
func (r *GormBudgetBaseRepository) FindLatestByTask(ctx context.Context, taskID uuid.UUID) (*works.BudgetBase, error) {
	var model models.BudgetBaseModel
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND status <> ?", taskID, works.BudgetBaseStatusRejected).
		Order(clause.Expr{SQL: "CASE WHEN status = ? THEN 0 ELSE 1 END", Vars: []interface{}{works.BudgetBaseStatusApproved}}).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("The task has no base budget")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a base budget
func (r *GormBudgetBaseRepository) Save(ctx context.Context, budget *works.BudgetBase) error {
	return r.db.WithContext(ctx).Save(models.BudgetBaseModelFromDomain(budget)).Error
}

// GormBudgetFinalRepository implements BudgetFinalRepository using GORM
type GormBudgetFinalRepository struct {
	db *gorm.DB
}

// NewGormBudgetFinalRepository creates a new GormBudgetFinalRepository
func NewGormBudgetFinalRepository(db *gorm.DB) *GormBudgetFinalRepository {
	return &GormBudgetFinalRepository{db: db}
}

// FindByID finds a final budget by ID with its items
func (r *GormBudgetFinalRepository) FindByID(ctx context.Context, id uuid.UUID) (*works.BudgetFinal, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a final budget by ID and locks its row
func (r *GormBudgetFinalRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*works.BudgetFinal, error) {
	return r.find(r.db.WithContext(ctx).Clauses(forUpdate), id)
}

func (r *GormBudgetFinalRepository) find(query *gorm.DB, id uuid.UUID) (*works.BudgetFinal, error) {
	var model models.BudgetFinalModel
	if err := query.
		Preload("Items", byPosition).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Final budget not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTask returns the final budgets of a task
func (r *GormBudgetFinalRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]works.BudgetFinal, error) {
	var rows []models.BudgetFinalModel
	if err := r.db.WithContext(ctx).
		Preload("Items", byPosition).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	budgets := make([]works.BudgetFinal, len(rows))
	for i := range rows {
		budgets[i] = *rows[i].ToDomain()
	}
	return budgets, nil
}

// Save creates or updates a final budget and synchronizes its items
func (r *GormBudgetFinalRepository) Save(ctx context.Context, budget *works.BudgetFinal) error {
	model := models.BudgetFinalModelFromDomain(budget)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists.WithMessage("A budget with this code already exists")
			}
			return err
		}

		// Delete items no longer on the budget
		itemIDs := make([]uuid.UUID, len(model.Items))
		for i, item := range model.Items {
			itemIDs[i] = item.ID
		}
		remove := tx.Where("budget_final_id = ?", budget.ID)
		if len(itemIDs) > 0 {
			remove = remove.Where("id NOT IN ?", itemIDs)
		}
		if err := remove.Delete(&models.BudgetItemModel{}).Error; err != nil {
			return err
		}

		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormWorkerRepository implements WorkerRepository using GORM
type GormWorkerRepository struct {
	db *gorm.DB
}

// NewGormWorkerRepository creates a new GormWorkerRepository
func NewGormWorkerRepository(db *gorm.DB) *GormWorkerRepository {
	return &GormWorkerRepository{db: db}
}

// FindByID finds a worker by ID
func (r *GormWorkerRepository) FindByID(ctx context.Context, id uuid.UUID) (*works.Worker, error) {
	var model models.WorkerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Worker not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds workers by IDs; unknown ids are skipped
func (r *GormWorkerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]works.Worker, error) {
	if len(ids) == 0 {
		return []works.Worker{}, nil
	}
	var rows []models.WorkerModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	workers := make([]works.Worker, len(rows))
	for i := range rows {
		workers[i] = *rows[i].ToDomain()
	}
	return workers, nil
}

// Save creates or updates a worker
func (r *GormWorkerRepository) Save(ctx context.Context, worker *works.Worker) error {
	var model models.WorkerModel
	model.FromDomain(worker)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormWorkEntryRepository implements WorkEntryRepository using GORM
type GormWorkEntryRepository struct {
	db *gorm.DB
}

// NewGormWorkEntryRepository creates a new GormWorkEntryRepository
func NewGormWorkEntryRepository(db *gorm.DB) *GormWorkEntryRepository {
	return &GormWorkEntryRepository{db: db}
}

// FindByTask returns the work log of a task ordered by date
func (r *GormWorkEntryRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]works.WorkEntry, error) {
	var rows []models.WorkEntryModel
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]works.WorkEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Save creates or updates a work entry
func (r *GormWorkEntryRepository) Save(ctx context.Context, entry *works.WorkEntry) error {
	var model models.WorkEntryModel
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByTask returns the expenses of a task in creation order
func (r *GormExpenseRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]works.Expense, error) {
	var rows []models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	expenses := make([]works.Expense, len(rows))
	for i := range rows {
		expenses[i] = rows[i].ToDomain()
	}
	return expenses, nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *works.Expense) error {
	var model models.ExpenseModel
	model.FromDomain(expense)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Ensure interface compliance
var (
	_ works.TaskRepository        = (*GormTaskRepository)(nil)
	_ works.BudgetBaseRepository  = (*GormBudgetBaseRepository)(nil)
	_ works.BudgetFinalRepository = (*GormBudgetFinalRepository)(nil)
	_ works.WorkerRepository      = (*GormWorkerRepository)(nil)
	_ works.WorkEntryRepository   = (*GormWorkEntryRepository)(nil)
	_ works.ExpenseRepository     = (*GormExpenseRepository)(nil)
)
