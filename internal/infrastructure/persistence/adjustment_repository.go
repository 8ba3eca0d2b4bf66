package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/maintledger/backend/internal/domain/settlement"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMarginAdjustmentRepository implements MarginAdjustmentRepository using GORM
type GormMarginAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormMarginAdjustmentRepository creates a new GormMarginAdjustmentRepository
func NewGormMarginAdjustmentRepository(db *gorm.DB) *GormMarginAdjustmentRepository {
	return &GormMarginAdjustmentRepository{db: db}
}

// FindByID finds an adjustment by ID
func (r *GormMarginAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.MarginAdjustment, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an adjustment by ID and locks its row
func (r *GormMarginAdjustmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*invoicing.MarginAdjustment, error) {
	return r.find(r.db.WithContext(ctx).Clauses(forUpdate), id)
}

func (r *GormMarginAdjustmentRepository) find(query *gorm.DB, id uuid.UUID) (*invoicing.MarginAdjustment, error) {
	var model models.MarginAdjustmentModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Adjustment not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice returns the adjustments of an invoice
func (r *GormMarginAdjustmentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoicing.MarginAdjustment, error) {
	var rows []models.MarginAdjustmentModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toMarginAdjustments(rows), nil
}

// FindSettledUnpaidForUpdate locks and returns the approved, unpaid
// adjustments on invoices of the administrator
func (r *GormMarginAdjustmentRepository) FindSettledUnpaidForUpdate(ctx context.Context, administratorID uuid.UUID) ([]invoicing.MarginAdjustment, error) {
	query := r.db.WithContext(ctx).Clauses(clause.Locking{
		Strength: "UPDATE",
		Table:    clause.Table{Name: models.MarginAdjustmentModel{}.TableName()},
	})
	return r.findSettledUnpaid(query, administratorID)
}

// FindSettledUnpaid returns the approved, unpaid adjustments on invoices of the administrator
func (r *GormMarginAdjustmentRepository) FindSettledUnpaid(ctx context.Context, administratorID uuid.UUID) ([]invoicing.MarginAdjustment, error) {
	return r.findSettledUnpaid(r.db.WithContext(ctx), administratorID)
}

func (r *GormMarginAdjustmentRepository) findSettledUnpaid(query *gorm.DB, administratorID uuid.UUID) ([]invoicing.MarginAdjustment, error) {
	var rows []models.MarginAdjustmentModel
	if err := query.
		Select("margin_adjustments.*").
		Joins("JOIN invoices ON invoices.id = margin_adjustments.invoice_id").
		Where("invoices.administrator_id = ?", administratorID).
		Where("margin_adjustments.approved = ? AND margin_adjustments.paid = ?", true, false).
		Order("margin_adjustments.created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toMarginAdjustments(rows), nil
}

// CountByInvoice counts the adjustments of an invoice
func (r *GormMarginAdjustmentRepository) CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MarginAdjustmentModel{}).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error
	return count, err
}

// Create inserts an adjustment
func (r *GormMarginAdjustmentRepository) Create(ctx context.Context, adjustment *invoicing.MarginAdjustment) error {
	var model models.MarginAdjustmentModel
	model.FromDomain(adjustment)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Save updates an adjustment
func (r *GormMarginAdjustmentRepository) Save(ctx context.Context, adjustment *invoicing.MarginAdjustment) error {
	var model models.MarginAdjustmentModel
	model.FromDomain(adjustment)
	return r.db.WithContext(ctx).Save(&model).Error
}

// ApproveByInvoice approves every unapproved adjustment of the invoice
func (r *GormMarginAdjustmentRepository) ApproveByInvoice(ctx context.Context, invoiceID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MarginAdjustmentModel{}).
		Where("invoice_id = ? AND approved = ?", invoiceID, false).
		Updates(map[string]interface{}{
			"approved":    true,
			"approved_at": at,
			"updated_at":  at,
		})
	return result.RowsAffected, result.Error
}

// MarkPaid flags approved, unpaid adjustments paid
func (r *GormMarginAdjustmentRepository) MarkPaid(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.MarginAdjustmentModel{}).
		Where("id IN ? AND approved = ? AND paid = ?", ids, true, false).
		Updates(map[string]interface{}{
			"paid":       true,
			"paid_at":    at,
			"updated_at": at,
		})
	return result.RowsAffected, result.Error
}

// DeleteByInvoiceItems removes the adjustments attached to the given lines
func (r *GormMarginAdjustmentRepository) DeleteByInvoiceItems(ctx context.Context, itemIDs []uuid.UUID) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("invoice_item_id IN ?", itemIDs).
		Delete(&models.MarginAdjustmentModel{})
	return result.RowsAffected, result.Error
}

func toMarginAdjustments(rows []models.MarginAdjustmentModel) []invoicing.MarginAdjustment {
	adjustments := make([]invoicing.MarginAdjustment, len(rows))
	for i := range rows {
		adjustments[i] = *rows[i].ToDomain()
	}
	return adjustments
}

// GormAdjustmentPayoutRepository implements AdjustmentPayoutRepository using GORM
type GormAdjustmentPayoutRepository struct {
	db *gorm.DB
}

// NewGormAdjustmentPayoutRepository creates a new GormAdjustmentPayoutRepository
func NewGormAdjustmentPayoutRepository(db *gorm.DB) *GormAdjustmentPayoutRepository {
	return &GormAdjustmentPayoutRepository{db: db}
}

// Create stores a payout receipt
func (r *GormAdjustmentPayoutRepository) Create(ctx context.Context, payout *invoicing.AdjustmentPayout) error {
	var model models.AdjustmentPayoutModel
	model.FromDomain(payout)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByAdministrator returns the payouts made to an administrator, newest first
func (r *GormAdjustmentPayoutRepository) FindByAdministrator(ctx context.Context, administratorID uuid.UUID) ([]invoicing.AdjustmentPayout, error) {
	var rows []models.AdjustmentPayoutModel
	if err := r.db.WithContext(ctx).
		Where("administrator_id = ?", administratorID).
		Order("paid_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payouts := make([]invoicing.AdjustmentPayout, len(rows))
	for i := range rows {
		payouts[i] = *rows[i].ToDomain()
	}
	return payouts, nil
}

// GormSettlementAdjustmentRepository implements settlement.AdjustmentRepository using GORM
type GormSettlementAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormSettlementAdjustmentRepository creates a new GormSettlementAdjustmentRepository
func NewGormSettlementAdjustmentRepository(db *gorm.DB) *GormSettlementAdjustmentRepository {
	return &GormSettlementAdjustmentRepository{db: db}
}

// Create stores a settlement adjustment
func (r *GormSettlementAdjustmentRepository) Create(ctx context.Context, adjustment *settlement.SettlementAdjustment) error {
	var model models.SettlementAdjustmentModel
	model.FromDomain(adjustment)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByTask returns the settlement adjustments recorded for a task
func (r *GormSettlementAdjustmentRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]settlement.SettlementAdjustment, error) {
	return r.findWhere(ctx, "task_id = ?", taskID)
}

// FindByBudgetFinal returns the settlement adjustments recorded against a final budget
func (r *GormSettlementAdjustmentRepository) FindByBudgetFinal(ctx context.Context, budgetFinalID uuid.UUID) ([]settlement.SettlementAdjustment, error) {
	return r.findWhere(ctx, "budget_final_id = ?", budgetFinalID)
}

func (r *GormSettlementAdjustmentRepository) findWhere(ctx context.Context, cond string, arg uuid.UUID) ([]settlement.SettlementAdjustment, error) {
	var rows []models.SettlementAdjustmentModel
	if err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	adjustments := make([]settlement.SettlementAdjustment, len(rows))
	for i := range rows {
		adjustments[i] = rows[i].ToDomain()
	}
	return adjustments, nil
}

// Ensure interface compliance
var (
	_ invoicing.MarginAdjustmentRepository = (*GormMarginAdjustmentRepository)(nil)
	_ invoicing.AdjustmentPayoutRepository = (*GormAdjustmentPayoutRepository)(nil)
	_ settlement.AdjustmentRepository      = (*GormSettlementAdjustmentRepository)(nil)
)
