package works

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
	"github.com/maintledger/backend/internal/domain/shared"
)

// Lifecycle events of a final budget
const (
	eventSend    = "send"
	eventApprove = "approve"
	eventReject  = "reject"
	eventInvoice = "invoice"
)

// ErrBudgetTransition is returned when the lifecycle refuses an event
var ErrBudgetTransition = shared.NewDomainError("INVALID_STATE", "Budget transition not allowed")

type budgetLifecycleContext struct {
	ItemCount int
}

func newBudgetLifecycle(current BudgetStatus, itemCount int) (*statekit.Interpreter[budgetLifecycleContext], error) {
	builder := statekit.NewMachine[budgetLifecycleContext]("budget-final").
		WithInitial(statekit.StateID(current)).
		WithContext(budgetLifecycleContext{ItemCount: itemCount}).
		WithGuard("hasItems", func(ctx budgetLifecycleContext, _ statekit.Event) bool {
			return ctx.ItemCount > 0
		})

	builder.State(statekit.StateID(BudgetStatusDraft)).
		On(eventSend).Target(statekit.StateID(BudgetStatusSent)).
		On(eventApprove).Target(statekit.StateID(BudgetStatusBudgeted)).
		On(eventReject).Target(statekit.StateID(BudgetStatusRejected)).
		Done()

	builder.State(statekit.StateID(BudgetStatusSent)).
		On(eventApprove).Target(statekit.StateID(BudgetStatusBudgeted)).
		On(eventReject).Target(statekit.StateID(BudgetStatusRejected)).
		On(eventInvoice).Target(statekit.StateID(BudgetStatusInvoiced)).Guard("hasItems").
		Done()

	builder.State(statekit.StateID(BudgetStatusBudgeted)).
		On(eventInvoice).Target(statekit.StateID(BudgetStatusInvoiced)).Guard("hasItems").
		Done()

	// facturado only leaves through RollbackInvoicing
	builder.State(statekit.StateID(BudgetStatusInvoiced)).Done()
	builder.State(statekit.StateID(BudgetStatusRejected)).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build budget lifecycle: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return interpreter, nil
}

// nextBudgetStatus runs event against a machine positioned at current and
// returns the resulting status. An event that leaves the machine where it was
// is either undefined for that state or blocked by a guard.
func nextBudgetStatus(current BudgetStatus, itemCount int, event string) (BudgetStatus, error) {
	if !current.IsValid() {
		return "", ErrBudgetTransition.WithMessage(fmt.Sprintf("Unknown budget status %q", current))
	}
	interp, err := newBudgetLifecycle(current, itemCount)
	if err != nil {
		return "", err
	}

	interp.Send(statekit.Event{Type: statekit.EventType(event)})
	next := BudgetStatus(interp.State().Value)
	if next == current {
		return "", ErrBudgetTransition.WithMessage(
			fmt.Sprintf("Cannot %s a budget in %s status", event, current))
	}
	return next, nil
}
