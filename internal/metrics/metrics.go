// Package metrics exposes prometheus counters for outline extraction.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the counters of one process. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	filesExtracted  prometheus.Counter
	extractFailures prometheus.Counter
	unitsEmitted    prometheus.Counter
	cacheRequests   *prometheus.CounterVec
}

// New creates counters registered on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		filesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jsoutline",
			Name:      "files_extracted_total",
			Help:      "Files parsed and outlined.",
		}),
		extractFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jsoutline",
			Name:      "extract_failures_total",
			Help:      "Files that could not be read or parsed.",
		}),
		unitsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jsoutline",
			Name:      "units_emitted_total",
			Help:      "Outline units produced.",
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsoutline",
			Name:      "outline_cache_requests_total",
			Help:      "Outline cache lookups by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.filesExtracted, m.extractFailures, m.unitsEmitted, m.cacheRequests)
	return m
}

// ObserveExtraction records the outcome of outlining one file.
func (m *Metrics) ObserveExtraction(units int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.extractFailures.Inc()
		return
	}
	m.filesExtracted.Inc()
	m.unitsEmitted.Add(float64(units))
}

// ObserveCache records a cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

// Registry returns the registry the counters live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
