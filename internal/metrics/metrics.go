// Package metrics exposes device counters to Prometheus. A nil *Metrics is
// valid and records nothing.
package metrics

import (
	"time"

	"github.com/aleister1102/webwatch/internal/models"
	"github.com/aleister1102/webwatch/internal/resources"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "webwatch"

// Command results.
const (
	ResultApplied   = "applied"
	ResultRejected  = "rejected"
	ResultIgnored   = "ignored"
	ResultNotFound  = "not_found"
	ResultMalformed = "malformed"
)

// Metrics holds every collector on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	checks         *prometheus.CounterVec
	commands       *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	sites          prometheus.Gauge
	brokerUp       prometheus.Gauge
	systemMemUsed  prometheus.Gauge
	reconnects     prometheus.Counter
	publishFailure prometheus.Counter
}

// New registers all collectors, plus Go runtime and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Check cycles by reported event kind.",
		}, []string{"kind"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Inbound commands by type and result.",
		}, []string{"type", "result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of page fetches.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8},
		}),
		sites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sites",
			Help:      "Configured sites.",
		}),
		brokerUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "broker_connected",
			Help:      "1 when the MQTT session is up.",
		}),
		systemMemUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_memory_used_percent",
			Help:      "Host memory in use.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broker_reconnect_attempts_total",
			Help:      "MQTT reconnection attempts.",
		}),
		publishFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Events that could not be published.",
		}),
	}

	m.registry.MustRegister(
		m.checks, m.commands, m.fetchDuration, m.sites, m.brokerUp,
		m.systemMemUsed, m.reconnects, m.publishFailure,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing the exporter.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveCheck(kind models.EventKind) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ObserveCommand(commandType, result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(commandType, result).Inc()
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}

func (m *Metrics) SetSites(n int) {
	if m == nil {
		return
	}
	m.sites.Set(float64(n))
}

func (m *Metrics) SetBrokerConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.brokerUp.Set(1)
	} else {
		m.brokerUp.Set(0)
	}
}

func (m *Metrics) IncReconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) IncPublishFailure() {
	if m == nil {
		return
	}
	m.publishFailure.Inc()
}

// ObserveUsage is a resources.Reporter sink.
func (m *Metrics) ObserveUsage(u resources.Usage) {
	if m == nil {
		return
	}
	m.systemMemUsed.Set(u.SystemMemUsedPercent)
}
