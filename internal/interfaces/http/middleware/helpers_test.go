package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/infrastructure/auth"
	"github.com/maintledger/backend/internal/infrastructure/config"
	"github.com/maintledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role shared.Role) (string, shared.Caller) {
	t.Helper()
	caller := shared.Caller{UserID: uuid.New(), Username: "tester", Role: role}
	token, _, err := svc.GenerateAccessToken(caller)
	require.NoError(t, err)
	return token, caller
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// withCaller injects an authenticated caller without going through JWTAuth
func withCaller(caller shared.Caller) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CallerKey, caller)
		c.Next()
	}
}
