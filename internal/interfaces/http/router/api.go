package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/infrastructure/logger"
	"github.com/maintledger/backend/internal/interfaces/http/dto"
	"github.com/maintledger/backend/internal/interfaces/http/handler"
	"github.com/maintledger/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers of the API
type Handlers struct {
	Invoice    *handler.InvoiceHandler
	Payment    *handler.PaymentHandler
	Adjustment *handler.AdjustmentHandler
	Settlement *handler.SettlementHandler
	Works      *handler.WorksHandler
	System     *handler.SystemHandler
}

// Config configures the middleware chain around the handlers.
// Nil Meter, RateLimiter or IdempotencyStore disable the matching middleware.
type Config struct {
	Logger           *zap.Logger
	Validator        middleware.TokenValidator
	CORS             middleware.CORSConfig
	Tracing          middleware.TracingConfig
	Meter            metric.Meter
	MaxBodySize      int64
	TrustedProxies   []string
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore shared.IdempotencyStore
	Idempotency      shared.IdempotencyConfig
}

// New builds the gin engine serving the API
func New(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(log),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Tracing(cfg.Tracing),
		middleware.SpanErrorMarker(),
		middleware.CORS(cfg.CORS),
		middleware.Secure(),
	)
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter))
	}
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeRouteNotFound,
			"No route for "+c.Request.Method+" "+c.Request.URL.Path, middleware.GetRequestID(c)))
	})

	engine.GET("/health", h.System.Health)

	jwtCfg := middleware.DefaultJWTConfig(cfg.Validator)
	jwtCfg.Logger = log

	api := engine.Group("/api/v1", middleware.JWTAuth(jwtCfg), middleware.TracingAttributeInjector())
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	var idempotency gin.HandlerFunc
	if cfg.IdempotencyStore != nil && cfg.Idempotency.Enabled {
		idempotency = middleware.Idempotency(cfg.IdempotencyStore, cfg.Idempotency, log)
	}
	mount(api, routes(h), idempotency)

	return engine, nil
}
