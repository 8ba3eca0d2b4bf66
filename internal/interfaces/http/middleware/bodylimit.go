package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maintledger/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects declared bodies over limit up front and caps streamed
// ones, so reads past limit fail with *http.MaxBytesError
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			abort(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooBig, "Request body is too large")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
