package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/infrastructure/cache"
	"github.com/maintledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func (failingStore) Release(context.Context, string) error { return nil }

func (failingStore) Close() error { return nil }

func newIdempotentRouter(store shared.IdempotencyStore, status *int, calls *int) *gin.Engine {
	caller := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}
	router := gin.New()
	router.Use(withCaller(caller))
	router.POST("/api/v1/invoices/:id/payments",
		Idempotency(store, shared.DefaultIdempotencyConfig(), nil),
		func(c *gin.Context) {
			*calls++
			c.Status(*status)
		})
	return router
}

func postWithKey(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/abc/payments", nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_RejectsRepeatedKey(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	status, calls := http.StatusCreated, 0
	router := newIdempotentRouter(store, &status, &calls)

	assert.Equal(t, http.StatusCreated, postWithKey(router, "k-1").Code)

	w := postWithKey(router, "k-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeDuplicate, resp.Error.Code)
	assert.Equal(t, 1, calls)

	assert.Equal(t, http.StatusCreated, postWithKey(router, "k-2").Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ReleasesOnFailure(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	status, calls := http.StatusUnprocessableEntity, 0
	router := newIdempotentRouter(store, &status, &calls)

	assert.Equal(t, http.StatusUnprocessableEntity, postWithKey(router, "k-1").Code)
	status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, postWithKey(router, "k-1").Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_WithoutHeader(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	status, calls := http.StatusCreated, 0
	router := newIdempotentRouter(store, &status, &calls)

	postWithKey(router, "")
	postWithKey(router, "")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_OversizedKey(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	status, calls := http.StatusCreated, 0
	router := newIdempotentRouter(store, &status, &calls)

	w := postWithKey(router, strings.Repeat("k", 101))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, calls)
}

func TestIdempotency_StoreFailureFailsOpen(t *testing.T) {
	status, calls := http.StatusCreated, 0
	router := newIdempotentRouter(failingStore{}, &status, &calls)

	assert.Equal(t, http.StatusCreated, postWithKey(router, "k-1").Code)
	assert.Equal(t, http.StatusCreated, postWithKey(router, "k-1").Code)
	assert.Equal(t, 2, calls)
}
