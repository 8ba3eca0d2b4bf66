package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

// =============================================================================
// Providers
// =============================================================================

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	tp, err := NewTracerProvider(ctx, Config{Enabled: false}, log)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, MetricsConfig{Enabled: false}, log)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, LogsConfig{Enabled: false}, log)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.Same(t, log, lp.Bridge(log, zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

// =============================================================================
// Instruments
// =============================================================================

func TestInstruments_Record(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	meter := provider.Meter("test")

	counter, err := NewCounter(meter, "invoices_created_total", "Invoices created", "{invoice}")
	require.NoError(t, err)
	counter.Inc(ctx, AttrInvoiceKind.String("regular"))
	counter.Add(ctx, 2, AttrInvoiceKind.String("regular"))

	hist, err := NewHistogram(meter, HistogramOpts{
		Name:       "request_duration_seconds",
		Unit:       "s",
		Boundaries: HTTPDurationBuckets,
	})
	require.NoError(t, err)
	hist.RecordDuration(ctx, 30*time.Millisecond)

	gauge, err := NewGauge(meter, "open_invoices", "Open invoices", "{invoice}")
	require.NoError(t, err)
	gauge.Record(ctx, 7)
	gauge.Record(ctx, 4)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	got := map[string]metricdata.Aggregation{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		got[m.Name] = m.Data
	}

	sum := got["invoices_created_total"].(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	h := got["request_duration_seconds"].(metricdata.Histogram[float64])
	require.Len(t, h.DataPoints, 1)
	assert.Equal(t, uint64(1), h.DataPoints[0].Count)
	assert.Equal(t, HTTPDurationBuckets, h.DataPoints[0].Bounds)

	g := got["open_invoices"].(metricdata.Gauge[int64])
	require.Len(t, g.DataPoints, 1)
	assert.Equal(t, int64(4), g.DataPoints[0].Value)
}

// =============================================================================
// Logs
// =============================================================================

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	log := zap.New(core).With(zap.String("component", "settlement"))

	log.Info("dropped")
	log.Warn("kept")
	log.Error("kept too")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, "settlement", logs.All()[0].ContextMap()["component"])
	assert.False(t, core.Enabled(zapcore.DebugLevel))
}

// =============================================================================
// Profiler
// =============================================================================

func TestProfiler(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "maintledger"}, zap.NewNop())
	assert.Error(t, err)

	types := ProfilerConfig{ProfileCPU: true, ProfileGoroutines: true}.profileTypes()
	assert.Len(t, types, 2)
}

// =============================================================================
// Span helpers
// =============================================================================

func TestServiceSpanHelpers(t *testing.T) {
	sr := useSpanRecorder(t)

	_, span := StartServiceSpan(context.Background(), "invoice", "create")
	SetAttributes(span,
		SpanAttrBudgetID, "b-1",
		"count", 2,
		42, "skipped",
		"paid", false,
	)
	AddEvent(span, "invoices_created", "count", int64(2))
	RecordError(span, nil)
	RecordError(span, errors.New("budget already invoiced"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, "invoice.create", s.Name())
	assert.Equal(t, codes.Error, s.Status().Code)

	attrs := attrMap(s.Attributes())
	assert.Equal(t, "b-1", attrs[SpanAttrBudgetID].AsString())
	assert.Equal(t, int64(2), attrs["count"].AsInt64())
	assert.False(t, attrs["paid"].AsBool())
	assert.Len(t, attrs, 3)

	var names []string
	for _, e := range s.Events() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"invoices_created", "exception"}, names)
}

// =============================================================================
// Database tracing
// =============================================================================

func openTracedDB(t *testing.T, cfg DBTracingConfig, log *zap.Logger) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, NewDBTracingPlugin(cfg, log).RegisterOtelGorm(db))
	return db
}

func TestDBTracingPlugin_EmitsQuerySpans(t *testing.T) {
	sr := useSpanRecorder(t)
	db := openTracedDB(t, DBTracingConfig{DBSystem: "sqlite"}, zap.NewNop())

	require.NoError(t, db.Exec("CREATE TABLE receipts (id INTEGER PRIMARY KEY, note TEXT)").Error)
	require.NoError(t, db.Exec("INSERT INTO receipts (note) VALUES (?)", "secret-note").Error)

	var count int64
	require.NoError(t, db.Table("receipts").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NotEmpty(t, sr.Ended())
	for _, s := range sr.Ended() {
		stmt := attrMap(s.Attributes())["db.statement"].AsString()
		assert.NotContains(t, stmt, "secret-note")
	}
}

type tracedInvoice struct {
	ID     uint `gorm:"primaryKey"`
	Number string
}

func (tracedInvoice) TableName() string { return "invoices" }

func TestDBTracingPlugin_Annotate(t *testing.T) {
	sr := useSpanRecorder(t)
	core, logs := observer.New(zapcore.WarnLevel)
	db := openTracedDB(t, DBTracingConfig{DBSystem: "sqlite", SlowQueryThresh: time.Nanosecond}, zap.New(core))
	ctx := context.Background()

	require.NoError(t, db.WithContext(ctx).AutoMigrate(&tracedInvoice{}))
	require.NoError(t, db.WithContext(ctx).Create(&tracedInvoice{Number: "FAC-OBRA-7-202610"}).Error)
	require.Error(t, db.WithContext(ctx).Exec("INSERT INTO missing_table (id) VALUES (1)").Error)

	var created, failed sdktrace.ReadOnlySpan
	for _, s := range sr.Ended() {
		attrs := attrMap(s.Attributes())
		if attrs["db.sql.table"].AsString() == "invoices" && s.Name() == "gorm.Create" {
			created = s
		}
		if s.Status().Code == codes.Error {
			failed = s
		}
	}

	require.NotNil(t, created)
	attrs := attrMap(created.Attributes())
	assert.Equal(t, int64(1), attrs["db.rows_affected"].AsInt64())
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Contains(t, attrs, "db.query_duration_ms")

	require.NotNil(t, failed)
	assert.Contains(t, failed.Status().Description, "missing_table")

	assert.GreaterOrEqual(t, logs.FilterMessage("Slow query").Len(), 2)
	tables := make(map[string]bool)
	for _, e := range logs.FilterMessage("Slow query").All() {
		tables[e.ContextMap()["table"].(string)] = true
	}
	assert.True(t, tables["invoices"])
}

func TestDBTracingPlugin_FastQueriesAreNotFlagged(t *testing.T) {
	sr := useSpanRecorder(t)
	core, logs := observer.New(zapcore.WarnLevel)
	db := openTracedDB(t, DBTracingConfig{DBSystem: "sqlite", SlowQueryThresh: time.Hour}, zap.New(core))

	require.NoError(t, db.AutoMigrate(&tracedInvoice{}))
	require.NoError(t, db.Create(&tracedInvoice{Number: "FAC-OBRA-8-202610"}).Error)

	require.NotEmpty(t, sr.Ended())
	for _, s := range sr.Ended() {
		assert.NotContains(t, attrMap(s.Attributes()), "db.slow_query")
	}
	assert.Zero(t, logs.FilterMessage("Slow query").Len())
}

func TestDBTracingPlugin_Defaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop())
	assert.Equal(t, defaultSlowQueryThreshold, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)
}
