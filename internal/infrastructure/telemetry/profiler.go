package telemetry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig selects the Pyroscope server and the profiles pushed to it
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string

	ProfileCPU        bool
	ProfileAllocSpace bool
	ProfileInuseSpace bool
	ProfileGoroutines bool
}

func (c ProfilerConfig) profileTypes() []pyroscope.ProfileType {
	var types []pyroscope.ProfileType
	for _, p := range []struct {
		on bool
		t  pyroscope.ProfileType
	}{
		{c.ProfileCPU, pyroscope.ProfileCPU},
		{c.ProfileAllocSpace, pyroscope.ProfileAllocSpace},
		{c.ProfileInuseSpace, pyroscope.ProfileInuseSpace},
		{c.ProfileGoroutines, pyroscope.ProfileGoroutines},
	} {
		if p.on {
			types = append(types, p.t)
		}
	}
	return types
}

// Profiler runs continuous profiling for the lifetime of the server
type Profiler struct {
	profiler *pyroscope.Profiler
	once     sync.Once
	stopErr  error
}

// NewProfiler starts profiling when enabled. A disabled profiler is a no-op.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{}
	if !cfg.Enabled {
		return p, nil
	}
	if cfg.ServerAddress == "" || cfg.ApplicationName == "" {
		return nil, errors.New("profiler needs a server address and an application name")
	}

	tags := map[string]string{}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}

	prof, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          pyroscopeLogger{logger.Named("pyroscope").Sugar()},
		Tags:            tags,
		ProfileTypes:    cfg.profileTypes(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}
	p.profiler = prof

	logger.Info("Profiling enabled", zap.String("server_address", cfg.ServerAddress))
	return p, nil
}

// IsEnabled reports whether profiles are being pushed
func (p *Profiler) IsEnabled() bool {
	return p.profiler != nil
}

// Stop flushes and stops the profiler. Later calls return the first result.
func (p *Profiler) Stop() error {
	p.once.Do(func() {
		if p.profiler != nil {
			p.stopErr = p.profiler.Stop()
		}
	})
	return p.stopErr
}

type pyroscopeLogger struct {
	*zap.SugaredLogger
}
