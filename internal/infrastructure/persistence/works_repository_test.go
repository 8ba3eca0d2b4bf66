package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Base budgets
// ============================================

func TestGormBudgetBaseRepository_FindLatestByTask(t *testing.T) {
	db := setupInvoicingTestDB(t)
	repo := NewGormBudgetBaseRepository(db)
	ctx := context.Background()
	taskID := uuid.New()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	save := func(total int64, status works.BudgetBaseStatus, age time.Duration) *works.BudgetBase {
		t.Helper()
		b, err := works.NewBudgetBase(taskID, decimal.NewFromInt(total))
		require.NoError(t, err)
		b.Status = status
		b.CreatedAt = start.Add(age)
		require.NoError(t, repo.Save(ctx, b))
		return b
	}

	draft := save(900, works.BudgetBaseStatusDraft, 0)

	found, err := repo.FindLatestByTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, found.ID)

	approved := save(1000, works.BudgetBaseStatusApproved, time.Hour)
	save(1200, works.BudgetBaseStatusDraft, 2*time.Hour)
	save(5000, works.BudgetBaseStatusRejected, 3*time.Hour)

	found, err = repo.FindLatestByTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, approved.ID, found.ID, "approved estimate wins over newer draft and rejected ones")

	_, err = repo.FindLatestByTask(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormBudgetBaseRepository_OnlyRejected(t *testing.T) {
	db := setupInvoicingTestDB(t)
	repo := NewGormBudgetBaseRepository(db)
	ctx := context.Background()
	taskID := uuid.New()

	b, err := works.NewBudgetBase(taskID, decimal.NewFromInt(700))
	require.NoError(t, err)
	b.Status = works.BudgetBaseStatusRejected
	require.NoError(t, repo.Save(ctx, b))

	_, err = repo.FindLatestByTask(ctx, taskID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
