// Package cli implements finctl, the operator command line for settlements,
// invoice creation and adjustment payouts.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	invoicingapp "github.com/maintledger/backend/internal/application/invoicing"
	settlementapp "github.com/maintledger/backend/internal/application/settlement"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/spf13/cobra"
)

// ErrOperationFailed is returned after a failed Result has been printed, so
// the process exits non-zero without printing the error twice
var ErrOperationFailed = errors.New("operation failed")

// Operations is the subset of the application services finctl drives
type Operations interface {
	ComputeSettlement(ctx context.Context, caller shared.Caller, taskID uuid.UUID) (*settlementapp.SettlementResponse, error)
	PaySettledAdjustments(ctx context.Context, caller shared.Caller, administratorID uuid.UUID) (*invoicingapp.PayoutResult, error)
	CreateInvoices(ctx context.Context, caller shared.Caller, budgetFinalID uuid.UUID) (*invoicingapp.CreateInvoicesResult, error)
}

// NewRootCommand builds the finctl command tree. ops is resolved lazily so
// that --help works without a database.
func NewRootCommand(version string, ops func(ctx context.Context) (Operations, error)) *cobra.Command {
	var actor string

	root := &cobra.Command{
		Use:   "finctl",
		Short: "Operate the settlement engine from the command line",
		Long: `finctl runs settlement, invoicing and payout operations against the
configured database. Every command acts as an administrator identified by
--actor.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&actor, "actor", "", "UUID of the administrator running the command (required)")
	_ = root.MarkPersistentFlagRequired("actor")

	run := func(cmd *cobra.Command, idArg string, fn func(ctx context.Context, o Operations, caller shared.Caller, id uuid.UUID) invoicingapp.Result) error {
		caller, err := actorCaller(actor)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(idArg)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", idArg, err)
		}
		o, err := ops(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), fn(cmd.Context(), o, caller, id))
	}

	root.AddCommand(
		newSettlementCommand(run),
		newAdjustmentsCommand(run),
		newInvoicesCommand(run),
	)
	return root
}

type runFunc func(cmd *cobra.Command, idArg string, fn func(ctx context.Context, o Operations, caller shared.Caller, id uuid.UUID) invoicingapp.Result) error

func actorCaller(actor string) (shared.Caller, error) {
	id, err := uuid.Parse(actor)
	if err != nil || id == uuid.Nil {
		return shared.Caller{}, fmt.Errorf("--actor must be a non-nil UUID, got %q", actor)
	}
	return shared.Caller{UserID: id, Username: "finctl", Role: shared.RoleAdmin}, nil
}

// printResult writes the Result as indented JSON
func printResult(w io.Writer, result invoicingapp.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !result.Success {
		return ErrOperationFailed
	}
	return nil
}

func resultOf(message string, data any, err error) invoicingapp.Result {
	if err != nil {
		return invoicingapp.ResultFromError(err)
	}
	return invoicingapp.OK(message, data)
}
