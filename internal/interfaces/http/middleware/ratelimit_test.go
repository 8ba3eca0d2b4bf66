package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func TestRateLimiter(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
	limiter := NewRateLimiter(2, time.Minute)
	limiter.now = clock.Now

	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.Equal(t, 0, limiter.Remaining("a"))

	assert.True(t, limiter.Allow("b"), "keys are independent")

	clock.now = clock.now.Add(time.Minute)
	assert.Equal(t, 2, limiter.Remaining("a"))
	assert.True(t, limiter.Allow("a"))

	limiter.Sweep()
	assert.Len(t, limiter.clients, 1)
}

func TestRateLimit_Middleware(t *testing.T) {
	caller := shared.Caller{UserID: uuid.New(), Role: shared.RoleSupervisor}
	limiter := NewRateLimiter(1, time.Hour)

	router := gin.New()
	router.Use(withCaller(caller), RateLimit(limiter))
	router.GET("/api/v1/tasks/:id/settlement", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/1/settlement", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/1/settlement", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"RATE_LIMITED"`)
	_, limited := limiter.clients["user:"+caller.UserID.String()]
	assert.True(t, limited)
}
