package works

import (
	"strings"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies a real expense of a task
type ExpenseCategory string

const (
	ExpenseCategoryMaterials ExpenseCategory = "materiales"
	ExpenseCategoryOther     ExpenseCategory = "otros"
)

// IsValid checks if the category is known
func (c ExpenseCategory) IsValid() bool {
	return c == ExpenseCategoryMaterials || c == ExpenseCategoryOther
}

// Expense is a real cost incurred on a task, usually backed by a scanned receipt
type Expense struct {
	shared.BaseEntity
	TaskID      uuid.UUID
	Category    ExpenseCategory
	Amount      decimal.Decimal
	Description string
	ReceiptKey  string // object key of the receipt image in receipt storage
}

// NewExpense creates a task expense
func NewExpense(taskID uuid.UUID, category ExpenseCategory, amount decimal.Decimal, description, receiptKey string) (*Expense, error) {
	if taskID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TASK", "Task ID cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category must be materiales or otros")
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}
	return &Expense{
		BaseEntity:  shared.NewBaseEntity(),
		TaskID:      taskID,
		Category:    category,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		ReceiptKey:  strings.TrimSpace(receiptKey),
	}, nil
}

// IsMaterial reports whether the expense counts toward real materials cost
func (e Expense) IsMaterial() bool {
	return e.Category == ExpenseCategoryMaterials
}
