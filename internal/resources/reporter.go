package resources

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ReporterConfig controls periodic reporting.
type ReporterConfig struct {
	Interval time.Duration
	// SystemMemWarnPercent logs a warning when host memory use reaches it. Zero disables.
	SystemMemWarnPercent float64
	CPUSample            time.Duration
}

// DefaultReporterConfig returns a 10 minute report with a 90% memory warning.
func DefaultReporterConfig() ReporterConfig {
	return ReporterConfig{
		Interval:             10 * time.Minute,
		SystemMemWarnPercent: 90,
		CPUSample:            100 * time.Millisecond,
	}
}

// Reporter logs resource usage on a fixed interval and hands each sample to
// an optional sink.
type Reporter struct {
	config   ReporterConfig
	logger   zerolog.Logger
	sink     func(Usage)
	snapshot func(time.Duration) Usage
}

// NewReporter creates a new reporter
func NewReporter(config ReporterConfig, logger zerolog.Logger) *Reporter {
	if config.Interval <= 0 {
		config.Interval = DefaultReporterConfig().Interval
	}
	return &Reporter{
		config:   config,
		logger:   logger.With().Str("component", "ResourceReporter").Logger(),
		snapshot: Snapshot,
	}
}

// WithSink registers a callback that receives every sample.
func (r *Reporter) WithSink(sink func(Usage)) *Reporter {
	r.sink = sink
	return r
}

// Run reports once immediately and then on every interval until ctx is done.
func (r *Reporter) Run(ctx context.Context) {
	r.logger.Info().Dur("interval", r.config.Interval).Msg("Resource reporter started")

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	r.ReportOnce()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Resource reporter stopped")
			return
		case <-ticker.C:
			r.ReportOnce()
		}
	}
}

// ReportOnce samples, logs and forwards usage.
func (r *Reporter) ReportOnce() Usage {
	usage := r.snapshot(r.config.CPUSample)

	if r.config.SystemMemWarnPercent > 0 && usage.SystemMemUsedPercent >= r.config.SystemMemWarnPercent {
		r.logger.Warn().
			Float64("used_percent", usage.SystemMemUsedPercent).
			Float64("threshold_percent", r.config.SystemMemWarnPercent).
			Int64("used_mb", usage.SystemMemUsedMB).
			Int64("total_mb", usage.SystemMemTotalMB).
			Msg("System memory usage exceeded threshold")
	}

	r.logger.Info().
		Int64("alloc_mb", usage.AllocMB).
		Int64("sys_mb", usage.SysMB).
		Int("goroutines", usage.Goroutines).
		Int64("gc_count", usage.GCCount).
		Float64("system_mem_percent", usage.SystemMemUsedPercent).
		Float64("cpu_percent", usage.CPUUsagePercent).
		Msg("Current resource usage")

	if r.sink != nil {
		r.sink(usage)
	}
	return usage
}
