// Package metrics exports dataset cache and training progress to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "digits"

// Prometheus holds the collectors of one registry.
type Prometheus struct {
	registry *prometheus.Registry

	cache    *prometheus.CounterVec
	accuracy *prometheus.GaugeVec
	loss     *prometheus.GaugeVec
	epoch    prometheus.Gauge
}

// NewPrometheusMetrics registers every collector on a fresh registry.
func NewPrometheusMetrics() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_events_total",
				Help:      "Dataset cache hits, misses and evictions.",
			}, []string{"cache", "event"}),
		accuracy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "accuracy_percent",
				Help:      "Accuracy of the last evaluation.",
			}, []string{"split"}),
		loss: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "loss",
				Help:      "Mean negative log likelihood of the last evaluation.",
			}, []string{"split"}),
		epoch: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "epoch",
				Help:      "Last finished epoch.",
			}),
	}
	p.registry.MustRegister(p.cache, p.accuracy, p.loss, p.epoch)
	return p
}

// Registry returns the registry the collectors live in
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Cache returns an observer counting the events of the named cache.
func (p *Prometheus) Cache(name string) *CacheCounter {
	return &CacheCounter{
		hits:      p.cache.WithLabelValues(name, "hit"),
		misses:    p.cache.WithLabelValues(name, "miss"),
		evictions: p.cache.WithLabelValues(name, "evict"),
	}
}

// Epoch records the evaluation of a finished epoch.
func (p *Prometheus) Epoch(epoch int, split string, loss, accuracy float64) {
	p.epoch.Set(float64(epoch))
	p.loss.WithLabelValues(split).Set(loss)
	p.accuracy.WithLabelValues(split).Set(accuracy)
}

// Serve exposes /metrics on addr in the background.
func (p *Prometheus) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
}

// CacheCounter implements datasets.CacheObserver.
type CacheCounter struct {
	hits, misses, evictions prometheus.Counter
}

func (c *CacheCounter) Hit()   { c.hits.Inc() }
func (c *CacheCounter) Miss()  { c.misses.Inc() }
func (c *CacheCounter) Evict() { c.evictions.Inc() }
