package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// openInvoiceStatuses are the invoice status codes that still carry a balance:
// pendiente, no_pagado, parcialmente_pagado and vencido.
var openInvoiceStatuses = []int{1, 2, 3, 4}

// GormReceivablesMetricsProvider implements ReceivablesMetricsProvider using GORM.
// It queries the invoices table directly for aggregated metrics.
type GormReceivablesMetricsProvider struct {
	db *gorm.DB
}

// NewGormReceivablesMetricsProvider creates a new GormReceivablesMetricsProvider.
func NewGormReceivablesMetricsProvider(db *gorm.DB) *GormReceivablesMetricsProvider {
	return &GormReceivablesMetricsProvider{db: db}
}

// GetOutstandingByAdministrator returns the open invoice count and pending balance per administrator.
func (p *GormReceivablesMetricsProvider) GetOutstandingByAdministrator(ctx context.Context) (map[uuid.UUID]OutstandingReceivables, error) {
	type result struct {
		AdministratorID uuid.UUID       `gorm:"column:administrator_id"`
		InvoiceCount    int64           `gorm:"column:invoice_count"`
		PendingBalance  decimal.Decimal `gorm:"column:pending_balance"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("invoices").
		Select("administrator_id, COUNT(*) as invoice_count, COALESCE(SUM(pending_balance), 0) as pending_balance").
		Where("status IN ?", openInvoiceStatuses).
		Group("administrator_id").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]OutstandingReceivables, len(results))
	for _, r := range results {
		m[r.AdministratorID] = OutstandingReceivables{
			InvoiceCount:   r.InvoiceCount,
			PendingBalance: r.PendingBalance,
		}
	}

	return m, nil
}
