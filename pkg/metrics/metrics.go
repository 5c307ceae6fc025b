// Package metrics exports library admin telemetry as Prometheus counters.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "libadmin"

// Telemetry counts every recorded event by name and tracks failure events
// separately. It satisfies admin.Telemetry and commands.Telemetry.
type Telemetry struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	errors   *prometheus.CounterVec
	requests *prometheus.HistogramVec
}

// New registers the library admin collectors on a dedicated registry.
// Process and Go runtime collectors are included.
func New() *Telemetry {
	registry := prometheus.NewRegistry()
	t := &Telemetry{
		registry: registry,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Library admin telemetry events by name.",
		}, []string{"event"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_errors_total",
			Help:      "Telemetry events that carried an error payload.",
		}, []string{"event"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
	registry.MustRegister(
		t.events,
		t.errors,
		t.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return t
}

// Record increments the event counter.
func (t *Telemetry) Record(_ context.Context, event string, payload map[string]any) {
	if t == nil {
		return
	}
	event = strings.TrimSpace(event)
	if event == "" {
		event = "unknown"
	}
	t.events.WithLabelValues(event).Inc()
	if _, ok := payload["error"]; ok {
		t.errors.WithLabelValues(event).Inc()
	}
}

// ObserveRequest records the latency of a served request.
func (t *Telemetry) ObserveRequest(method string, status int, elapsed time.Duration) {
	if t == nil {
		return
	}
	t.requests.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry for custom collectors.
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{Registry: t.registry})
}
