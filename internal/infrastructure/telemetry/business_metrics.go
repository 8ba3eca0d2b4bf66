package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the settlement engine.
// It tracks invoicing, payment activity, margin payouts and outstanding receivables.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	invoiceCreatedTotal  *Counter
	invoiceAmountTotal   *Counter
	invoiceDeletedTotal  *Counter
	paymentTotal         *Counter
	paymentAmountTotal   *Counter
	adjustmentPaidTotal  *Counter
	adjustmentPaidAmount *Counter

	// Gauge metrics (point-in-time values)
	outstandingInvoices *Gauge
	outstandingBalance  *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	receivablesProvider ReceivablesMetricsProvider
}

// ReceivablesMetricsProvider provides outstanding invoice data for periodic metrics collection.
// This interface allows the telemetry layer to query receivables without
// depending on the invoicing domain directly.
type ReceivablesMetricsProvider interface {
	// GetOutstandingByAdministrator returns the open invoice count and pending balance per administrator
	GetOutstandingByAdministrator(ctx context.Context) (map[uuid.UUID]OutstandingReceivables, error)
}

// OutstandingReceivables is the open balance of one administrator
type OutstandingReceivables struct {
	InvoiceCount   int64
	PendingBalance decimal.Decimal
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter               metric.Meter
	Logger              *zap.Logger
	CollectInterval     time.Duration // Default: 5 minutes
	ReceivablesProvider ReceivablesMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:               cfg.Meter,
		logger:              logger,
		stopChan:            make(chan struct{}),
		receivablesProvider: cfg.ReceivablesProvider,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.invoiceCreatedTotal, "maint_invoice_created_total", "Total number of invoices generated from budgets", "{invoices}"},
		{&bm.invoiceAmountTotal, "maint_invoice_amount_total", "Total invoiced amount in cents", "{cents}"},
		{&bm.invoiceDeletedTotal, "maint_invoice_deleted_total", "Total number of invoices deleted", "{invoices}"},
		{&bm.paymentTotal, "maint_payment_total", "Total number of payment operations", "{payments}"},
		{&bm.paymentAmountTotal, "maint_payment_amount_total", "Total amount collected in cents", "{cents}"},
		{&bm.adjustmentPaidTotal, "maint_adjustment_paid_total", "Total number of margin adjustments paid out", "{adjustments}"},
		{&bm.adjustmentPaidAmount, "maint_adjustment_paid_amount_total", "Total margin paid out in cents", "{cents}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.outstandingInvoices, err = NewGauge(
		cfg.Meter,
		"maint_outstanding_invoices",
		"Number of invoices with a pending balance",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.outstandingBalance, err = NewGauge(
		cfg.Meter,
		"maint_outstanding_balance",
		"Pending balance of open invoices in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// =============================================================================
// Invoice Metrics
// =============================================================================

// RecordInvoiceCreated records an invoice generated from a budget.
func (bm *BusinessMetrics) RecordInvoiceCreated(ctx context.Context, administratorID uuid.UUID, kind string, total decimal.Decimal) {
	if bm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrAdministratorID.String(administratorID.String()),
		AttrInvoiceKind.String(kind),
	}
	bm.invoiceCreatedTotal.Inc(ctx, attrs...)
	bm.invoiceAmountTotal.Add(ctx, toCents(total), attrs...)
}

// RecordInvoiceDeleted records an invoice deletion.
func (bm *BusinessMetrics) RecordInvoiceDeleted(ctx context.Context, administratorID uuid.UUID, budgetRolledBack bool) {
	if bm == nil {
		return
	}
	bm.invoiceDeletedTotal.Inc(ctx,
		AttrAdministratorID.String(administratorID.String()),
		AttrBudgetRolledBack.Bool(budgetRolledBack),
	)
}

// =============================================================================
// Payment Metrics
// =============================================================================

// PaymentOperation labels what happened to a payment.
type PaymentOperation string

const (
	PaymentOperationRecorded PaymentOperation = "recorded"
	PaymentOperationDeleted  PaymentOperation = "deleted"
	PaymentOperationRejected PaymentOperation = "rejected"
)

// RecordPayment records a payment operation. Amount is only added for recorded payments.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, modality string, operation PaymentOperation, amount decimal.Decimal) {
	if bm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrPaymentModality.String(modality),
		AttrPaymentStatus.String(string(operation)),
	}
	bm.paymentTotal.Inc(ctx, attrs...)
	if operation == PaymentOperationRecorded {
		bm.paymentAmountTotal.Add(ctx, toCents(amount), attrs...)
	}
}

// =============================================================================
// Adjustment Metrics
// =============================================================================

// RecordAdjustmentsPaid records margin adjustments paid out to an administrator.
func (bm *BusinessMetrics) RecordAdjustmentsPaid(ctx context.Context, administratorID uuid.UUID, count int, total decimal.Decimal) {
	if bm == nil {
		return
	}
	attr := AttrAdministratorID.String(administratorID.String())
	bm.adjustmentPaidTotal.Add(ctx, int64(count), attr)
	bm.adjustmentPaidAmount.Add(ctx, toCents(total), attr)
}

// =============================================================================
// Receivables Metrics
// =============================================================================

// RecordOutstanding records the open invoices and pending balance of an administrator.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOutstanding(ctx context.Context, administratorID uuid.UUID, outstanding OutstandingReceivables) {
	attr := AttrAdministratorID.String(administratorID.String())
	bm.outstandingInvoices.Record(ctx, outstanding.InvoiceCount, attr)
	bm.outstandingBalance.Record(ctx, toCents(outstanding.PendingBalance), attr)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects receivables metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectReceivablesMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectReceivablesMetrics(ctx)
		}
	}
}

// collectReceivablesMetrics collects outstanding balance gauges for every administrator.
func (bm *BusinessMetrics) collectReceivablesMetrics(ctx context.Context) {
	if bm.receivablesProvider == nil {
		bm.logger.Debug("No receivables provider configured, skipping receivables metrics collection")
		return
	}

	outstanding, err := bm.receivablesProvider.GetOutstandingByAdministrator(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get outstanding receivables", zap.Error(err))
		return
	}

	for administratorID, o := range outstanding {
		bm.RecordOutstanding(ctx, administratorID, o)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned by NewBusinessMetrics without a meter
var ErrMeterNil = errors.New("business metrics need a meter")
