package multiblog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the resolution core. A nil
// *Metrics records nothing.
type Metrics struct {
	DocumentsDropped *prometheus.CounterVec
	ContentFetches   *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	CacheLookups     *prometheus.CounterVec
	StaticPaths      prometheus.Gauge
	TenantsFailed    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DocumentsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multiblog",
			Name:      "documents_dropped_total",
			Help:      "Documents excluded for lacking a title or a route.",
		}, []string{"source"}),
		ContentFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multiblog",
			Name:      "content_fetches_total",
			Help:      "Content source list calls by result.",
		}, []string{"result"}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "multiblog",
			Name:      "content_fetch_duration_seconds",
			Help:      "Duration of content source list calls.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multiblog",
			Name:      "post_cache_lookups_total",
			Help:      "Post cache lookups by result.",
		}, []string{"result"}),
		StaticPaths: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "multiblog",
			Name:      "static_paths",
			Help:      "Paths emitted by the last static path enumeration.",
		}),
		TenantsFailed: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "multiblog",
			Name:      "enumeration_tenants_failed",
			Help:      "Tenants whose fetch failed during the last enumeration.",
		}),
	}
}

func (m *Metrics) dropped(source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.DocumentsDropped.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) fetched(err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ContentFetches.WithLabelValues(result).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) enumerated(paths, failed int) {
	if m == nil {
		return
	}
	m.StaticPaths.Set(float64(paths))
	m.TenantsFailed.Set(float64(failed))
}
