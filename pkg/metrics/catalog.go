package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ReloadResultOK    = "ok"
	ReloadResultStale = "stale"
	ReloadResultError = "error"
)

// CatalogMetrics records snapshot reloads, degraded stored fields and query volume.
// A nil *CatalogMetrics is valid and records nothing.
type CatalogMetrics struct {
	reloads        *prometheus.CounterVec
	reloadDuration prometheus.Histogram
	malformed      *prometheus.CounterVec
	queries        *prometheus.CounterVec
}

// NewCatalogMetrics registers the catalog metrics on the provided registerer.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	reloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_snapshot_reloads_total",
		Help: "Catalog snapshot reloads by result.",
	}, []string{"result"})
	reloadDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_snapshot_reload_duration_seconds",
		Help:    "Time spent loading references, products and categories.",
		Buckets: prometheus.DefBuckets,
	})
	malformed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_malformed_fields_total",
		Help: "Stored fields that could not be decoded and were treated as empty.",
	}, []string{"entity", "field"})
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_queries_total",
		Help: "Catalog listing and detail queries by viewer role.",
	}, []string{"role"})
	reg.MustRegister(reloads, reloadDuration, malformed, queries)
	return &CatalogMetrics{
		reloads:        reloads,
		reloadDuration: reloadDuration,
		malformed:      malformed,
		queries:        queries,
	}
}

// ObserveReload records one reload attempt.
func (c *CatalogMetrics) ObserveReload(result string, duration time.Duration) {
	if c == nil || c.reloads == nil {
		return
	}
	c.reloads.WithLabelValues(normalizeLabel(result)).Inc()
	c.reloadDuration.Observe(duration.Seconds())
}

// IncMalformed counts a stored field that failed to decode.
func (c *CatalogMetrics) IncMalformed(entity, field string) {
	if c == nil || c.malformed == nil {
		return
	}
	c.malformed.WithLabelValues(normalizeLabel(entity), normalizeLabel(field)).Inc()
}

// IncQuery counts a catalog read for the viewer role.
func (c *CatalogMetrics) IncQuery(role string) {
	if c == nil || c.queries == nil {
		return
	}
	c.queries.WithLabelValues(normalizeLabel(role)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
