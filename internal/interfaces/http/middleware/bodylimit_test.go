package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		body          string
		contentLength int64
		wantStatus    int
	}{
		{"within limit", `{"amount":"10.00"}`, 18, http.StatusOK},
		{"declared too large", strings.Repeat("x", 200), 200, http.StatusRequestEntityTooLarge},
		{"streamed too large", strings.Repeat("x", 200), -1, http.StatusRequestEntityTooLarge},
		{"streamed within limit", "ok", -1, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(BodyLimit(64))
			router.POST("/api/v1/invoices/:id/payments", func(c *gin.Context) {
				if _, err := io.ReadAll(c.Request.Body); err != nil {
					var tooBig *http.MaxBytesError
					if errors.As(err, &tooBig) {
						c.Status(http.StatusRequestEntityTooLarge)
						return
					}
					c.Status(http.StatusBadRequest)
					return
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/x/payments", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	t.Run("error envelope", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(8))
		router.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("x", 9)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"REQUEST_TOO_LARGE"`)
	})

	t.Run("GET without body", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(8))
		router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
