package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantDB     string
	}{
		{"no database", nil, http.StatusOK, "unconfigured"},
		{"reachable", PingerFunc(func(context.Context) error { return nil }), http.StatusOK, "ok"},
		{"unreachable", PingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }), http.StatusServiceUnavailable, "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("maintledger", "test", tt.db)
			r := gin.New()
			r.GET("/health", h.Health)

			w := doRequest(r, http.MethodGet, "/health", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			data := decodeResponse(t, w).Data.(map[string]any)
			assert.Equal(t, tt.wantDB, data["database"])
			assert.Equal(t, "maintledger", data["name"])
		})
	}
}
