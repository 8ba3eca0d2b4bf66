package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/maintledger/backend/internal/domain/invoicing"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", shared.ErrForbidden.WithMessage("not your task"), http.StatusForbidden, "FORBIDDEN"},
		{"wrapped rule", errors.Join(errors.New("ctx"), invoicing.ErrHasPayments), http.StatusConflict, "HAS_PAYMENTS"},
		{"balance", invoicing.ErrAmountExceedsBalance, http.StatusUnprocessableEntity, "AMOUNT_EXCEEDS_BALANCE"},
		{"storage failure", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			r := gin.New()
			r.GET("/x", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := doRequest(r, http.MethodGet, "/x", nil)
			assert.Equal(t, tt.wantStatus, w.Code)

			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_HandleErrorHidesInternalDetails(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { h.HandleError(c, errors.New("pq: password authentication failed")) })

	w := doRequest(r, http.MethodGet, "/x", nil)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestBaseHandler_BindJSON(t *testing.T) {
	type body struct {
		Name string `json:"name" binding:"required"`
	}
	h := &BaseHandler{}
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var b body
		if h.BindJSON(c, &b) {
			h.Created(c, "ok", b)
		}
	})

	w := doRequest(r, http.MethodPost, "/x", map[string]string{"name": "roof"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, http.MethodPost, "/x", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "name", resp.Error.Details[0].Field)

	w = doRequest(r, http.MethodPost, "/x", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
}

func TestBaseHandler_ParamUUID(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.GET("/x/:id", func(c *gin.Context) {
		if id, ok := h.ParamUUID(c, "id"); ok {
			h.Success(c, "", id)
		}
	})

	w := doRequest(r, http.MethodGet, "/x/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)

	w = doRequest(r, http.MethodGet, "/x/6f1c2a4e-8a55-4a8e-9d38-0c1f4b8f6a21", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
