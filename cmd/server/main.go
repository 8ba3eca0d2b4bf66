package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appevent "github.com/maintledger/backend/internal/application/event"
	"github.com/maintledger/backend/internal/bootstrap"
	"github.com/maintledger/backend/internal/domain/shared"
	"github.com/maintledger/backend/internal/infrastructure/auth"
	"github.com/maintledger/backend/internal/infrastructure/cache"
	"github.com/maintledger/backend/internal/infrastructure/config"
	"github.com/maintledger/backend/internal/infrastructure/event"
	"github.com/maintledger/backend/internal/infrastructure/logger"
	"github.com/maintledger/backend/internal/infrastructure/migration"
	"github.com/maintledger/backend/internal/infrastructure/persistence"
	"github.com/maintledger/backend/internal/infrastructure/revalidation"
	"github.com/maintledger/backend/internal/infrastructure/storage"
	"github.com/maintledger/backend/internal/infrastructure/telemetry"
	"github.com/maintledger/backend/internal/interfaces/http/handler"
	"github.com/maintledger/backend/internal/interfaces/http/middleware"
	"github.com/maintledger/backend/internal/interfaces/http/router"
	"github.com/maintledger/backend/migrations"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const logTimeFormat = "2006-01-02T15:04:05.000Z07:00"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logTimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	telemetry.ServiceVersion = version

	// Export logs to the collector alongside the configured output
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logs provider", zap.Error(err))
	}
	log = logsProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	defer func() {
		_ = logger.Sync(log)
	}()

	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting settlement backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName:   cfg.Telemetry.ServiceName,
		ProfileCPU:        true,
		ProfileAllocSpace: true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := plugin.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	if cfg.Database.MigrateOnStart {
		if err := migrateUp(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	services := bootstrap.NewServices(db.DB, cfg.Invoicing, log)

	// Receipt storage is optional; without it intake rejects receipt uploads
	if cfg.Storage.Enabled() {
		store, err := storage.NewS3ReceiptStore(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize receipt storage", zap.Error(err))
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Warn("Receipt bucket check failed", zap.String("bucket", store.Bucket()), zap.Error(err))
		}
		services.SetReceiptStore(store)
	}

	// Idempotency store backs both the Idempotency-Key middleware and
	// duplicate event suppression
	idempotencyStore, err := cache.NewIdempotencyStore(ctx, cfg.Redis, cfg.App.Env == "development", log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	// Revalidation hook: mutations publish events, the handler forwards the
	// affected paths to the webhook in the background
	notifier := revalidation.NewNotifier(cfg.Revalidation, log.Named("revalidation"))
	notifier.Start(ctx)

	eventBus := event.NewDispatcher(log.Named("events"))
	eventBus.Subscribe(event.NewDedupHandler(
		appevent.NewRevalidationHandler(notifier, log),
		idempotencyStore,
		cfg.Idempotency.TTL,
		log,
	))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	services.SetEventPublisher(eventBus)

	var meter metric.Meter
	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		meter = meterProvider.Meter(cfg.Telemetry.ServiceName)
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:               meter,
			Logger:              log,
			CollectInterval:     cfg.Telemetry.ReceivablesCollection,
			ReceivablesProvider: telemetry.NewGormReceivablesMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		businessMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.ReceivablesCollection)
		services.SetBusinessMetrics(businessMetrics)
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitRequests > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	var routeStore shared.IdempotencyStore
	if cfg.Idempotency.Enabled {
		routeStore = idempotencyStore
	}

	engine, err := router.New(router.Config{
		Logger:    log,
		Validator: auth.NewJWTService(cfg.JWT),
		CORS:      corsCfg,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		Meter:            meter,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		RateLimiter:      limiter,
		IdempotencyStore: routeStore,
		Idempotency: shared.IdempotencyConfig{
			Enabled: cfg.Idempotency.Enabled,
			TTL:     cfg.Idempotency.TTL,
		},
	}, router.Handlers{
		Invoice:    handler.NewInvoiceHandler(services.Invoices),
		Payment:    handler.NewPaymentHandler(services.Payments),
		Adjustment: handler.NewAdjustmentHandler(services.Adjustments),
		Settlement: handler.NewSettlementHandler(services.Settlements),
		Works:      handler.NewWorksHandler(services.Works),
		System:     handler.NewSystemHandler(cfg.App.Name, version, handler.PingerFunc(db.PingContext)),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Drain in dependency order: no new events once HTTP is down, then
	// deliver what is queued, then flush telemetry
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus stop failed", zap.Error(err))
	}
	if err := notifier.Stop(shutdownCtx); err != nil {
		log.Warn("Revalidation queue not drained", zap.Error(err))
	}
	if businessMetrics != nil {
		businessMetrics.Stop()
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logs provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func migrateUp(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log.Named("migrate"))
	if err != nil {
		return err
	}
	// Close would also close the shared *sql.DB
	return m.Up()
}
