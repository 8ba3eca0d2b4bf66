package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID with its items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an invoice by ID and locks its row
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	return r.find(r.db.WithContext(ctx).Clauses(forUpdate), id)
}

func (r *GormInvoiceRepository) find(query *gorm.DB, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := query.
		Preload("Items", byPosition).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Invoice not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByItemID finds the invoice owning the given line
func (r *GormInvoiceRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) (*invoicing.Invoice, error) {
	var item models.InvoiceItemModel
	if err := r.db.WithContext(ctx).Select("invoice_id").First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Invoice item not found")
		}
		return nil, err
	}
	return r.FindByID(ctx, item.InvoiceID)
}

// FindAll returns a page of invoices matching the filter, newest first unless
// another order is requested, and the total match count
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	if filter.AdministratorID != nil {
		query = query.Where("administrator_id = ?", *filter.AdministratorID)
	}
	if filter.BudgetFinalID != nil {
		query = query.Where("budget_final_id = ?", *filter.BudgetFinalID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := shared.NewPage(filter.Page, filter.PageSize)

	var rows []models.InvoiceModel
	if err := query.
		Preload("Items", byPosition).
		Order(orderBy(invoiceColumns, filter.OrderBy, filter.OrderDir, "created_at")).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]invoicing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, total, nil
}

// CountByBudgetFinal counts invoices generated from a budget
func (r *GormInvoiceRepository) CountByBudgetFinal(ctx context.Context, budgetFinalID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("budget_final_id = ?", budgetFinalID).
		Count(&count).Error
	return count, err
}

// Create inserts the invoice header and its items
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.duplicateCause(ctx, invoice, err)
	}
	return err
}

// duplicateCause tells which unique index rejected an insert. It runs after
// the insert's savepoint has been rolled back, so the outer transaction is
// still usable.
func (r *GormInvoiceRepository) duplicateCause(ctx context.Context, invoice *invoicing.Invoice, err error) error {
	db := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	var n int64
	if invoice.BudgetFinalID != nil {
		if cerr := db.Session(&gorm.Session{}).
			Where("budget_final_id = ? AND kind = ?", *invoice.BudgetFinalID, invoice.Kind).
			Count(&n).Error; cerr != nil {
			return err
		}
		if n > 0 {
			return invoicing.ErrAlreadyInvoiced
		}
	}
	if cerr := db.Session(&gorm.Session{}).Where("number = ?", invoice.Number).Count(&n).Error; cerr != nil {
		return err
	}
	if n > 0 {
		return invoicing.ErrInvoiceNumberTaken.WithMessage(fmt.Sprintf("Invoice number %s is already in use", invoice.Number))
	}
	return err
}

// Save updates the invoice header. Items are immutable once created.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{
			"total":                invoice.Total,
			"total_paid":           invoice.TotalPaid,
			"pending_balance":      invoice.PendingBalance,
			"due_date":             invoice.DueDate,
			"status":               invoice.Status,
			"has_adjustments":      invoice.HasAdjustments,
			"adjustments_approved": invoice.AdjustmentsApproved,
			"last_payment_date":    invoice.LastPaymentDate,
			"version":              invoice.Version,
			"updated_at":           invoice.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.WithMessage("Invoice not found")
	}
	return nil
}

// DeleteItems removes every line of the invoice
func (r *GormInvoiceRepository) DeleteItems(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&models.InvoiceItemModel{}).Error
}

// Delete removes the invoice header
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.WithMessage("Invoice not found")
	}
	return nil
}

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Payment not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice returns the payments of an invoice ordered by date
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoicing.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]invoicing.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// FindByRequestKey finds the payment recorded under a client request key
func (r *GormPaymentRepository) FindByRequestKey(ctx context.Context, key string) (*invoicing.Payment, error) {
	if key == "" {
		return nil, shared.ErrNotFound
	}
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "request_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Payment not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountByInvoice counts the payments of an invoice
func (r *GormPaymentRepository) CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error
	return count, err
}

// Totals sums every payment of the invoice and finds the latest payment date
func (r *GormPaymentRepository) Totals(ctx context.Context, invoiceID uuid.UUID) (invoicing.PaymentTotals, error) {
	var agg struct {
		Sum   decimal.Decimal
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) AS sum, COUNT(*) AS count").
		Where("invoice_id = ?", invoiceID).
		Scan(&agg).Error; err != nil {
		return invoicing.PaymentTotals{}, err
	}

	totals := invoicing.PaymentTotals{Sum: agg.Sum, Count: agg.Count}
	if agg.Count == 0 {
		return totals, nil
	}

	var latest models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("date DESC, created_at DESC").
		First(&latest).Error; err != nil {
		return invoicing.PaymentTotals{}, err
	}
	last := time.Time(latest.Date)
	totals.LastPaymentDate = &last
	return totals, nil
}

// Create inserts a payment. A reused request key fails with ErrDuplicateRequest.
func (r *GormPaymentRepository) Create(ctx context.Context, payment *invoicing.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrDuplicateRequest
		}
		return err
	}
	return nil
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.WithMessage("Payment not found")
	}
	return nil
}

// Ensure interface compliance
var (
	_ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
	_ invoicing.PaymentRepository = (*GormPaymentRepository)(nil)
)
