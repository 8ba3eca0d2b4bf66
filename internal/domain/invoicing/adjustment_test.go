package invoicing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMarginAdjustment(t *testing.T) {
	inv := createTestInvoice(t, item("Reparación", "1", "1000", false))
	inv.AdjustmentsApproved = true

	adj, err := NewMarginAdjustment(inv, inv.Items[0].ID, dec("150"), "  margen pactado ")
	require.NoError(t, err)

	assert.Equal(t, inv.ID, adj.InvoiceID)
	assert.Equal(t, inv.Items[0].ID, adj.InvoiceItemID)
	assert.Equal(t, "margen pactado", adj.Note)
	assert.Equal(t, "pendiente", adj.Status())
	assert.True(t, inv.HasAdjustments)
	assert.False(t, inv.AdjustmentsApproved, "a new adjustment clears the approval")
}

func TestNewMarginAdjustment_Negative(t *testing.T) {
	inv := createTestInvoice(t, item("Reparación", "1", "1000", false))

	adj, err := NewMarginAdjustment(inv, inv.Items[0].ID, dec("-40"), "")
	require.NoError(t, err)
	assert.True(t, adj.Amount.IsNegative())
}

func TestNewMarginAdjustment_Validation(t *testing.T) {
	inv := createTestInvoice(t, item("Reparación", "1", "1000", false))

	_, err := NewMarginAdjustment(inv, uuid.New(), dec("10"), "")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = NewMarginAdjustment(inv, inv.Items[0].ID, dec("0"), "")
	assert.ErrorIs(t, err, shared.ErrInvalidAmount)

	inv.Status = InvoiceStatusAnnulled
	_, err = NewMarginAdjustment(inv, inv.Items[0].ID, dec("10"), "")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestMarginAdjustment_Lifecycle(t *testing.T) {
	adj := &MarginAdjustment{BaseEntity: shared.NewBaseEntity(), Amount: dec("10")}
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, adj.Pay(now), ErrAdjustmentNotApproved)

	adj.Approve(now)
	assert.Equal(t, "aprobado", adj.Status())
	require.NotNil(t, adj.ApprovedAt)

	later := now.Add(time.Hour)
	adj.Approve(later)
	assert.Equal(t, now, *adj.ApprovedAt, "approving twice keeps the first approval")

	require.NoError(t, adj.Pay(later))
	assert.Equal(t, "pagado", adj.Status())
	assert.Equal(t, later, *adj.PaidAt)

	assert.ErrorIs(t, adj.Pay(later), ErrAdjustmentPaid)
}

func TestInvoice_MarkAdjustmentsApproved(t *testing.T) {
	inv := createTestInvoice(t, item("Reparación", "1", "1000", false))
	inv.ClearDomainEvents()

	inv.MarkAdjustmentsApproved(3, issuedAt)

	assert.True(t, inv.AdjustmentsApproved)
	require.Len(t, inv.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeAdjustmentsApproved, inv.GetDomainEvents()[0].EventType())
}

func approvedAdjustment(invoiceID uuid.UUID, amount string) MarginAdjustment {
	adj := MarginAdjustment{
		BaseEntity: shared.NewBaseEntity(),
		InvoiceID:  invoiceID,
		Amount:     dec(amount),
	}
	adj.Approve(issuedAt)
	return adj
}

func TestNewAdjustmentPayout(t *testing.T) {
	adminID := uuid.New()
	paidBy := uuid.New()
	invoiceA, invoiceB := uuid.New(), uuid.New()
	adjustments := []MarginAdjustment{
		approvedAdjustment(invoiceA, "100"),
		approvedAdjustment(invoiceA, "50.5"),
		approvedAdjustment(invoiceB, "-20"),
	}
	paidAt := issuedAt.Add(24 * time.Hour)

	payout, err := NewAdjustmentPayout(adminID, paidBy, adjustments, paidAt)
	require.NoError(t, err)

	assert.Equal(t, adminID, payout.AdministratorID)
	assert.Equal(t, paidBy, payout.PaidBy)
	assert.Equal(t, 3, payout.Count)
	assert.Equal(t, 2, payout.InvoiceCount)
	assert.True(t, payout.Total.Equal(dec("130.5")), "total %s", payout.Total)
	assert.Len(t, payout.AdjustmentIDs, 3)
	for _, adj := range adjustments {
		assert.True(t, adj.Paid)
		assert.Equal(t, paidAt, *adj.PaidAt)
	}
	require.Len(t, payout.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeAdjustmentsPaid, payout.GetDomainEvents()[0].EventType())
}

func TestNewAdjustmentPayout_Rejections(t *testing.T) {
	_, err := NewAdjustmentPayout(uuid.New(), uuid.New(), nil, issuedAt)
	assert.ErrorIs(t, err, ErrNoPendingAdjustments)

	_, err = NewAdjustmentPayout(uuid.Nil, uuid.New(), []MarginAdjustment{approvedAdjustment(uuid.New(), "1")}, issuedAt)
	require.Error(t, err)

	pending := MarginAdjustment{BaseEntity: shared.NewBaseEntity(), Amount: dec("5")}
	_, err = NewAdjustmentPayout(uuid.New(), uuid.New(), []MarginAdjustment{approvedAdjustment(uuid.New(), "1"), pending}, issuedAt)
	assert.ErrorIs(t, err, ErrAdjustmentNotApproved)
}
