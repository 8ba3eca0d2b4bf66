package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	settlementapp "github.com/maintledger/backend/internal/application/settlement"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/interfaces/http/middleware"
)

// SettlementOperations computes profit sharing for SettlementHandler
type SettlementOperations interface {
	ComputeSettlement(ctx context.Context, caller shared.Caller, taskID uuid.UUID) (*settlementapp.SettlementResponse, error)
	RecordSettlementAdjustment(ctx context.Context, caller shared.Caller, req settlementapp.RecordAdjustmentRequest) (*settlementapp.SettlementAdjustmentResponse, error)
}

var _ SettlementOperations = (*settlementapp.Service)(nil)

// SettlementHandler serves task settlements
type SettlementHandler struct {
	BaseHandler
	settlements SettlementOperations
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlements SettlementOperations) *SettlementHandler {
	return &SettlementHandler{settlements: settlements}
}

// GetSettlement returns the profit-sharing breakdown of a task.
// GET /tasks/:id/settlement
func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	taskID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.settlements.ComputeSettlement(c.Request.Context(), middleware.GetCaller(c), taskID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "", result)
}

// RecordAdjustment adds a delta to the administrator share of a budget's task.
// POST /budgets/final/:id/settlement-adjustments
func (h *SettlementHandler) RecordAdjustment(c *gin.Context) {
	budgetID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req settlementapp.RecordAdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.BudgetFinalID = budgetID

	adjustment, err := h.settlements.RecordSettlementAdjustment(c.Request.Context(), middleware.GetCaller(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Settlement adjustment recorded", adjustment)
}
