package invoicing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var paymentDate = time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)

func unpaidInvoice(t *testing.T) *invoicing.Invoice {
	t.Helper()
	_, inv := invoicedBudget(t)
	return inv
}

func TestPaymentService_RecordPayment(t *testing.T) {
	repos := newTestRepos()
	publisher := &recordingPublisher{}
	svc := NewPaymentService(repos.scope(), repos.invoices, repos.payments, nil)
	svc.SetEventPublisher(publisher)

	inv := unpaidInvoice(t)
	caller := adminCaller()

	repos.invoices.On("FindByIDForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	repos.payments.On("Create", mock.Anything, mock.AnythingOfType("*invoicing.Payment")).Return(nil)
	repos.payments.On("Totals", mock.Anything, inv.ID).Return(invoicing.PaymentTotals{
		Sum:             decimal.NewFromInt(400),
		Count:           1,
		LastPaymentDate: &paymentDate,
	}, nil)
	repos.invoices.On("Save", mock.Anything, inv).Return(nil)

	result, err := svc.RecordPayment(context.Background(), caller, RecordPaymentRequest{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(400),
		Date:      paymentDate,
	})
	require.NoError(t, err)

	assert.Equal(t, invoicing.ModalityHalf, result.Payment.Modality)
	assert.Equal(t, caller.UserID, result.Payment.CreatedBy)
	assert.False(t, result.Replayed)
	assert.Equal(t, invoicing.InvoiceStatusPartiallyPaid, result.Invoice.Status)
	assert.True(t, result.Invoice.PendingBalance.Equal(decimal.NewFromInt(400)))
	assert.True(t, result.Invoice.TotalPaid.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, []string{invoicing.EventTypePaymentRecorded}, publisher.types())
	repos.assertExpectations(t)
}

func TestPaymentService_RecordPayment_SettlesInvoice(t *testing.T) {
	repos := newTestRepos()
	svc := NewPaymentService(repos.scope(), repos.invoices, repos.payments, nil)

	inv := unpaidInvoice(t)
	inv.ApplyPaymentTotals(decimal.NewFromInt(500), &paymentDate)

	repos.invoices.On("FindByIDForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	repos.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	repos.payments.On("Totals", mock.Anything, inv.ID).Return(invoicing.PaymentTotals{
		Sum:   decimal.NewFromInt(800),
		Count: 2,
	}, nil)
	repos.invoices.On("Save", mock.Anything, inv).Return(nil)

	result, err := svc.RecordPayment(context.Background(), adminCaller(), RecordPaymentRequest{
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(300),
		Date:      paymentDate,
	})
	require.NoError(t, err)

	assert.Equal(t, invoicing.ModalityTotal, result.Payment.Modality)
	assert.Equal(t, invoicing.InvoiceStatusPaid, result.Invoice.Status)
	assert.True(t, result.Invoice.PendingBalance.IsZero())
}

func TestPaymentService_RecordPayment_Rejections(t *testing.T) {
	stale := decimal.NewFromInt(750)
	tests := []struct {
		name    string
		req     func(inv *invoicing.Invoice) RecordPaymentRequest
		wantErr error
	}{
		{
			name: "exceeds balance",
			req: func(inv *invoicing.Invoice) RecordPaymentRequest {
				return RecordPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(801), Date: paymentDate}
			},
			wantErr: invoicing.ErrAmountExceedsBalance,
		},
		{
			name: "stale total",
			req: func(inv *invoicing.Invoice) RecordPaymentRequest {
				return RecordPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(10), Date: paymentDate, OriginalTotal: &stale}
			},
			wantErr: invoicing.ErrTotalMismatch,
		},
		{
			name: "zero amount",
			req: func(inv *invoicing.Invoice) RecordPaymentRequest {
				return RecordPaymentRequest{InvoiceID: inv.ID, Amount: decimal.Zero, Date: paymentDate}
			},
			wantErr: shared.ErrInvalidAmount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := newTestRepos()
			svc := NewPaymentService(repos.scope(), repos.invoices, repos.payments, nil)
			inv := unpaidInvoice(t)

			repos.invoices.On("FindByIDForUpdate", mock.Anything, inv.ID).Return(inv, nil)

			_, err := svc.RecordPayment(context.Background(), adminCaller(), tt.req(inv))
			assert.ErrorIs(t, err, tt.wantErr)
			repos.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			repos.invoices.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentService_RecordPayment_RequiresAdmin(t *testing.T) {
	repos := newTestRepos()
	svc := NewPaymentService(repos.scope(), repos.invoices, repos.payments, nil)

	_, err := svc.RecordPayment(context.Background(), supervisorCaller(), RecordPaymentRequest{
		InvoiceID: uuid.New(),
		Amount:    decimal.NewFromInt(10),
		Date:      paymentDate,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestPaymentService_RecordPayment_ReplaysRequestKey(t *testing.T) {
	repos := newTestRepos()
	svc := NewPaymentService(repos.scope(), repos.invoices, repos.payments, nil)

	inv := unpaidInvoice(t)
	existing, err := inv.RecordPayment(decimal.NewFromInt(400), paymentDate, uuid.New(), nil, "pago-7")
	require.NoError(t, err)

	repos.payments.On("FindByRequestKey", mock.Anything, "pago-7").Return(existing, nil)
	repos.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

	result, err := svc.RecordPayment(context.Background(), adminCaller(), RecordPaymentRequest{
		InvoiceID:  inv.ID,
		Amount:     decimal.NewFromInt(400),
		Date:       paymentDate,
		RequestKey: " pago-7 ",
	})
	require.NoError(t, err)

	assert.True(t, result.Replayed)
	assert.Equal(t, existing.ID, result.Payment.ID)
	repos.invoices.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	repos.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_RequestKeyOfAnotherInvoice(t *testing.T) {
	repos := newTestRepos()
	svc := NewPaymentService(repos.scope(), repos.invoices, repos.payments, nil)

	other := unpaidInvoice(t)
	existing, err := other.RecordPayment(decimal.NewFromInt(100), paymentDate, uuid.New(), nil, "pago-8")
	require.NoError(t, err)

	repos.payments.On("FindByRequestKey", mock.Anything, "pago-8").Return(existing, nil)

	_, err = svc.RecordPayment(context.Background(), adminCaller(), RecordPaymentRequest{
		InvoiceID:  uuid.New(),
		Amount:     decimal.NewFromInt(100),
		Date:       paymentDate,
		RequestKey: "pago-8",
	})
	assert.ErrorIs(t, err, shared.ErrDuplicateRequest)
}

func TestPaymentService_RecordPayment_ConcurrentDuplicateKey(t *testing.T) {
	repos := newTestRepos()
	svc := NewPaymentService(repos.scope(), repos.invoices, repos.payments, nil)

	inv := unpaidInvoice(t)
	winner, err := inv.RecordPayment(decimal.NewFromInt(200), paymentDate, uuid.New(), nil, "pago-9")
	require.NoError(t, err)

	repos.payments.On("FindByRequestKey", mock.Anything, "pago-9").Return(nil, shared.ErrNotFound).Once()
	repos.invoices.On("FindByIDForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	repos.payments.On("Create", mock.Anything, mock.Anything).Return(shared.ErrDuplicateRequest)
	repos.payments.On("FindByRequestKey", mock.Anything, "pago-9").Return(winner, nil).Once()
	repos.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

	result, err := svc.RecordPayment(context.Background(), adminCaller(), RecordPaymentRequest{
		InvoiceID:  inv.ID,
		Amount:     decimal.NewFromInt(200),
		Date:       paymentDate,
		RequestKey: "pago-9",
	})
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, winner.ID, result.Payment.ID)
}

func TestPaymentService_DeletePayment(t *testing.T) {
	repos := newTestRepos()
	publisher := &recordingPublisher{}
	svc := NewPaymentService(repos.scope(), repos.invoices, repos.payments, nil)
	svc.SetEventPublisher(publisher)

	inv := unpaidInvoice(t)
	p, err := inv.RecordPayment(decimal.NewFromInt(800), paymentDate, uuid.New(), nil, "")
	require.NoError(t, err)
	inv.ApplyPaymentTotals(p.Amount, &paymentDate)
	inv.ClearDomainEvents()
	require.Equal(t, invoicing.InvoiceStatusPaid, inv.Status)

	repos.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	repos.invoices.On("FindByIDForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	repos.payments.On("Delete", mock.Anything, p.ID).Return(nil)
	repos.payments.On("Totals", mock.Anything, inv.ID).Return(invoicing.PaymentTotals{Sum: decimal.Zero}, nil)
	repos.invoices.On("Save", mock.Anything, inv).Return(nil)

	result, err := svc.DeletePayment(context.Background(), adminCaller(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, invoicing.InvoiceStatusUnpaid, result.Invoice.Status)
	assert.True(t, result.Invoice.PendingBalance.Equal(decimal.NewFromInt(800)))
	assert.Nil(t, result.Invoice.LastPaymentDate)
	assert.Equal(t, []string{invoicing.EventTypePaymentDeleted}, publisher.types())
	repos.assertExpectations(t)
}
