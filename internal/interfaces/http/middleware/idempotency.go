package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the optional client supplied request key
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 100

// Idempotency claims the Idempotency-Key header before the handler runs. A
// key that is already claimed is rejected with DUPLICATE_REQUEST; a key whose
// request failed is released so the client may retry it. Requests without the
// header pass through.
func Idempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	if !cfg.Enabled || store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abort(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}

		// Keys are per caller and per route
		scoped := GetCaller(c).UserID.String() + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key
		ctx := c.Request.Context()

		claimed, err := store.MarkProcessed(ctx, scoped, ttl)
		if err != nil {
			log.Warn("idempotency store unavailable, continuing without claim",
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !claimed {
			abort(c, http.StatusConflict, dto.ErrCodeDuplicate, shared.ErrDuplicateRequest.Message)
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := store.Release(releaseCtx, scoped); err != nil {
				log.Warn("failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
