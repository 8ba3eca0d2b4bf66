package settlement

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/domain/works"
	"github.com/shopspring/decimal"
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// ErrUnknownWorker is returned when a work entry references a worker that cannot be resolved
var ErrUnknownWorker = shared.NewDomainError("UNKNOWN_WORKER", "A work entry references an unknown worker")

// Inputs gathers everything a settlement is computed from
type Inputs struct {
	TaskID      uuid.UUID
	BudgetBase  *works.BudgetBase
	Expenses    []works.Expense
	WorkEntries []works.WorkEntry
	Workers     map[uuid.UUID]works.Worker
	Adjustments []SettlementAdjustment
}

// LaborLine is the labor cost of one worker on the task
type LaborLine struct {
	WorkerID   uuid.UUID       `json:"worker_id"`
	WorkerName string          `json:"worker_name"`
	FullDays   int             `json:"full_days"`
	HalfDays   int             `json:"half_days"`
	Days       decimal.Decimal `json:"days"`
	DailyRate  decimal.Decimal `json:"daily_rate"`
	Cost       decimal.Decimal `json:"cost"`
}

// ExpenseLine is one materials expense counted in the settlement
type ExpenseLine struct {
	ExpenseID   uuid.UUID       `json:"expense_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ReceiptKey  string          `json:"receipt_key,omitempty"`
}

// Settlement is the computed profit-sharing projection of a task. It is
// never stored; every read recomputes it.
type Settlement struct {
	TaskID           uuid.UUID
	BudgetBaseID     uuid.UUID
	BudgetBaseTotal  decimal.Decimal
	MaterialsCost    decimal.Decimal
	LaborCost        decimal.Decimal
	RealExpenses     decimal.Decimal
	NetProfit        decimal.Decimal
	SupervisorShare  decimal.Decimal
	AdminAdjustment  decimal.Decimal
	AdminShare       decimal.Decimal
	TotalProfit      decimal.Decimal
	ProfitabilityPct decimal.Decimal
	Labor            []LaborLine
	Materials        []ExpenseLine
}

// Calculate computes the settlement of a task. Net profit is measured against
// the base budget total and split in halves between supervisor and
// administrator; the administrator half also receives the settlement
// adjustments. A negative net profit is reported as is.
func Calculate(in Inputs) (*Settlement, error) {
	if in.BudgetBase == nil {
		return nil, shared.ErrNotFound.WithMessage("The task has no base budget")
	}

	s := &Settlement{
		TaskID:          in.TaskID,
		BudgetBaseID:    in.BudgetBase.ID,
		BudgetBaseTotal: in.BudgetBase.Total,
		MaterialsCost:   decimal.Zero,
		LaborCost:       decimal.Zero,
		AdminAdjustment: decimal.Zero,
	}

	for _, e := range in.Expenses {
		if !e.IsMaterial() {
			continue
		}
		s.MaterialsCost = s.MaterialsCost.Add(e.Amount)
		s.Materials = append(s.Materials, ExpenseLine{
			ExpenseID:   e.ID,
			Description: e.Description,
			Amount:      e.Amount,
			ReceiptKey:  e.ReceiptKey,
		})
	}

	labor, err := laborLines(in.WorkEntries, in.Workers)
	if err != nil {
		return nil, err
	}
	for _, line := range labor {
		s.LaborCost = s.LaborCost.Add(line.Cost)
	}
	s.Labor = labor

	for _, adj := range in.Adjustments {
		s.AdminAdjustment = s.AdminAdjustment.Add(adj.Amount)
	}

	s.RealExpenses = s.MaterialsCost.Add(s.LaborCost)
	s.NetProfit = s.BudgetBaseTotal.Sub(s.RealExpenses)
	half := shared.RoundAmount(s.NetProfit.Div(two))
	s.SupervisorShare = half
	s.AdminShare = half.Add(s.AdminAdjustment)
	s.TotalProfit = s.SupervisorShare.Add(s.AdminShare)

	s.ProfitabilityPct = decimal.Zero
	if s.RealExpenses.IsPositive() {
		s.ProfitabilityPct = s.NetProfit.Div(s.RealExpenses).Mul(hundred).Round(2)
	}

	return s, nil
}

func laborLines(entries []works.WorkEntry, workers map[uuid.UUID]works.Worker) ([]LaborLine, error) {
	byWorker := make(map[uuid.UUID]*LaborLine)
	for _, entry := range entries {
		worker, ok := workers[entry.WorkerID]
		if !ok {
			return nil, ErrUnknownWorker.WithMessage(fmt.Sprintf("Work entry %s references unknown worker %s", entry.ID, entry.WorkerID))
		}
		line, ok := byWorker[entry.WorkerID]
		if !ok {
			line = &LaborLine{
				WorkerID:   worker.ID,
				WorkerName: worker.Name,
				Days:       decimal.Zero,
				DailyRate:  worker.DailyRate,
				Cost:       decimal.Zero,
			}
			byWorker[entry.WorkerID] = line
		}
		if entry.DayType == works.DayTypeHalf {
			line.HalfDays++
		} else {
			line.FullDays++
		}
		line.Days = line.Days.Add(entry.DayType.Weight())
		line.Cost = line.Cost.Add(entry.Cost(worker.DailyRate))
	}

	lines := make([]LaborLine, 0, len(byWorker))
	for _, line := range byWorker {
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].WorkerName < lines[j].WorkerName
	})
	return lines, nil
}
