package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSlowQueryThreshold = 200 * time.Millisecond
	queryStartKey             = "telemetry:query_start"
)

// DBTracingConfig holds database span options
type DBTracingConfig struct {
	// LogFullSQL keeps bound variables in db.statement
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracingPlugin installs otelgorm and annotates its spans with row counts,
// errors and slow query markers.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the plugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = defaultSlowQueryThreshold
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm wires the plugin into every gorm processor
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	// The annotation must run while the otelgorm span is still open
	cb := db.Callback()
	hooks := []struct {
		callback interface {
			Register(name string, fn func(*gorm.DB)) error
		}
		name string
		fn   func(*gorm.DB)
	}{
		{cb.Create().Before("gorm:create"), "before_create", markQueryStart},
		{cb.Create().After("gorm:create").Before("otel:after:create"), "after_create", p.annotate},
		{cb.Query().Before("gorm:query"), "before_query", markQueryStart},
		{cb.Query().After("gorm:query").Before("otel:after:query"), "after_query", p.annotate},
		{cb.Update().Before("gorm:update"), "before_update", markQueryStart},
		{cb.Update().After("gorm:update").Before("otel:after:update"), "after_update", p.annotate},
		{cb.Delete().Before("gorm:delete"), "before_delete", markQueryStart},
		{cb.Delete().After("gorm:delete").Before("otel:after:delete"), "after_delete", p.annotate},
		{cb.Row().Before("gorm:row"), "before_row", markQueryStart},
		{cb.Row().After("gorm:row").Before("otel:after:row"), "after_row", p.annotate},
		{cb.Raw().Before("gorm:raw"), "before_raw", markQueryStart},
		{cb.Raw().After("gorm:raw").Before("otel:after:raw"), "after_raw", p.annotate},
	}
	for _, h := range hooks {
		if err := h.callback.Register("telemetry:"+h.name, h.fn); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	v, ok := db.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, _ := v.(time.Time)
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		p.logger.Warn("Slow query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
		)
	}
}
