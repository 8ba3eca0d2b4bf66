package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/settlement"
	"github.com/shopspring/decimal"
)

// LaborLineResponse is the labor cost of one worker
type LaborLineResponse struct {
	WorkerID   uuid.UUID       `json:"worker_id"`
	WorkerName string          `json:"worker_name"`
	FullDays   int             `json:"full_days"`
	HalfDays   int             `json:"half_days"`
	Days       decimal.Decimal `json:"days"`
	DailyRate  decimal.Decimal `json:"daily_rate"`
	Cost       decimal.Decimal `json:"cost"`
}

// ExpenseLineResponse is a materials expense with a temporary link to its receipt
type ExpenseLineResponse struct {
	ExpenseID        uuid.UUID       `json:"expense_id"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	HasReceipt       bool            `json:"has_receipt"`
	ReceiptURL       string          `json:"receipt_url,omitempty"`
	ReceiptExpiresAt *time.Time      `json:"receipt_expires_at,omitempty"`
}

// SettlementAdjustmentResponse is a manual delta on the administrator share
type SettlementAdjustmentResponse struct {
	ID            uuid.UUID       `json:"id"`
	BudgetFinalID uuid.UUID       `json:"budget_final_id"`
	TaskID        uuid.UUID       `json:"task_id"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note,omitempty"`
	CreatedBy     uuid.UUID       `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SettlementResponse is the profit-sharing breakdown of a task
type SettlementResponse struct {
	TaskID           uuid.UUID                      `json:"task_id"`
	BudgetBaseID     uuid.UUID                      `json:"budget_base_id"`
	BudgetBaseTotal  decimal.Decimal                `json:"budget_base_total"`
	MaterialsCost    decimal.Decimal                `json:"materials_cost"`
	LaborCost        decimal.Decimal                `json:"labor_cost"`
	RealExpenses     decimal.Decimal                `json:"gastos_reales"`
	NetProfit        decimal.Decimal                `json:"ganancia_neta"`
	SupervisorShare  decimal.Decimal                `json:"supervisor"`
	AdminAdjustment  decimal.Decimal                `json:"ajuste_admin"`
	AdminShare       decimal.Decimal                `json:"admin"`
	TotalProfit      decimal.Decimal                `json:"total"`
	ProfitabilityPct decimal.Decimal                `json:"rentabilidad"`
	Labor            []LaborLineResponse            `json:"labor"`
	Materials        []ExpenseLineResponse          `json:"materials"`
	Adjustments      []SettlementAdjustmentResponse `json:"adjustments"`
}

// RecordAdjustmentRequest adds a signed delta to the administrator share of a task
type RecordAdjustmentRequest struct {
	BudgetFinalID uuid.UUID       `json:"-"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Note          string          `json:"note" binding:"max=500"`
}

// ToSettlementResponse converts a computed settlement. Receipt URLs are filled in by the service.
func ToSettlementResponse(s *settlement.Settlement, adjustments []settlement.SettlementAdjustment) SettlementResponse {
	resp := SettlementResponse{
		TaskID:           s.TaskID,
		BudgetBaseID:     s.BudgetBaseID,
		BudgetBaseTotal:  s.BudgetBaseTotal,
		MaterialsCost:    s.MaterialsCost,
		LaborCost:        s.LaborCost,
		RealExpenses:     s.RealExpenses,
		NetProfit:        s.NetProfit,
		SupervisorShare:  s.SupervisorShare,
		AdminAdjustment:  s.AdminAdjustment,
		AdminShare:       s.AdminShare,
		TotalProfit:      s.TotalProfit,
		ProfitabilityPct: s.ProfitabilityPct,
		Labor:            make([]LaborLineResponse, len(s.Labor)),
		Materials:        make([]ExpenseLineResponse, len(s.Materials)),
		Adjustments:      ToAdjustmentResponses(adjustments),
	}
	for i, l := range s.Labor {
		resp.Labor[i] = LaborLineResponse(l)
	}
	for i, m := range s.Materials {
		resp.Materials[i] = ExpenseLineResponse{
			ExpenseID:   m.ExpenseID,
			Description: m.Description,
			Amount:      m.Amount,
			HasReceipt:  m.ReceiptKey != "",
		}
	}
	return resp
}

// ToAdjustmentResponse converts a settlement adjustment
func ToAdjustmentResponse(a *settlement.SettlementAdjustment) SettlementAdjustmentResponse {
	return SettlementAdjustmentResponse{
		ID:            a.ID,
		BudgetFinalID: a.BudgetFinalID,
		TaskID:        a.TaskID,
		Amount:        a.Amount,
		Note:          a.Note,
		CreatedBy:     a.CreatedBy,
		CreatedAt:     a.CreatedAt,
	}
}

// ToAdjustmentResponses converts a slice of settlement adjustments
func ToAdjustmentResponses(adjustments []settlement.SettlementAdjustment) []SettlementAdjustmentResponse {
	out := make([]SettlementAdjustmentResponse, len(adjustments))
	for i := range adjustments {
		out[i] = ToAdjustmentResponse(&adjustments[i])
	}
	return out
}
