package cli

import (
	"context"

	"github.com/google/uuid"
	invoicingapp "github.com/maintledger/backend/internal/application/invoicing"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/spf13/cobra"
)

func newSettlementCommand(run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "settlement <task-id>",
		Short: "Compute the profit split of a task",
		Example: `  finctl settlement 0b5c9e0e-1d7a-4f55-9d5e-6a3f1c2e8b10 \
    --actor 4a1f2c3d-0000-4000-8000-000000000001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], func(ctx context.Context, o Operations, caller shared.Caller, id uuid.UUID) invoicingapp.Result {
				settlement, err := o.ComputeSettlement(ctx, caller, id)
				return resultOf("Settlement computed", settlement, err)
			})
		},
	}
}

func newAdjustmentsCommand(run runFunc) *cobra.Command {
	adjustments := &cobra.Command{
		Use:   "adjustments",
		Short: "Margin adjustment payouts",
	}
	adjustments.AddCommand(&cobra.Command{
		Use:   "pay <administrator-id>",
		Short: "Pay every approved, unpaid margin adjustment on the invoices of an administrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], func(ctx context.Context, o Operations, caller shared.Caller, id uuid.UUID) invoicingapp.Result {
				payout, err := o.PaySettledAdjustments(ctx, caller, id)
				return resultOf("Adjustments paid", payout, err)
			})
		},
	})
	return adjustments
}

func newInvoicesCommand(run runFunc) *cobra.Command {
	invoices := &cobra.Command{
		Use:   "invoices",
		Short: "Invoice operations",
	}
	invoices.AddCommand(&cobra.Command{
		Use:   "create <budget-id>",
		Short: "Create the invoices of an approved final budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], func(ctx context.Context, o Operations, caller shared.Caller, id uuid.UUID) invoicingapp.Result {
				created, err := o.CreateInvoices(ctx, caller, id)
				return resultOf("Invoices created", created, err)
			})
		},
	})
	return invoices
}
