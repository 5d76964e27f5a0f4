// Package metrics exposes Prometheus instruments for layout preparation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "companymap"

// Recorder records preparation metrics on its own registry. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	layouts         prometheus.Counter
	skipped         *prometheus.CounterVec
	geocodes        *prometheus.CounterVec
	points          prometheus.Gauge
	pointsJittered  prometheus.Gauge
	groupsJittered  prometheus.Gauge
	prepareDuration prometheus.Histogram
}

// NewRecorder creates a Recorder with a fresh registry that also carries the
// Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		layouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Number of layouts prepared.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_skipped_total",
			Help:      "Company records left off the map, by reason.",
		}, []string{"reason"}),
		geocodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding attempts for headquarters without coordinates, by result.",
		}, []string{"result"}),
		points: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layout_points",
			Help:      "Points in the most recent layout.",
		}),
		pointsJittered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layout_points_jittered",
			Help:      "Points displaced because they shared coordinates, in the most recent layout.",
		}),
		groupsJittered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layout_groups_jittered",
			Help:      "Collocated groups spread apart in the most recent layout.",
		}),
		prepareDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prepare_duration_seconds",
			Help:      "Time spent preparing a layout.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30, 120},
		}),
	}

	r.registry.MustRegister(
		r.layouts, r.skipped, r.geocodes,
		r.points, r.pointsJittered, r.groupsJittered,
		r.prepareDuration,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveLayout records the outcome of one preparation run.
func (r *Recorder) ObserveLayout(points, pointsJittered, groupsJittered int, skipped map[string]int, took time.Duration) {
	if r == nil {
		return
	}
	r.layouts.Inc()
	r.points.Set(float64(points))
	r.pointsJittered.Set(float64(pointsJittered))
	r.groupsJittered.Set(float64(groupsJittered))
	for reason, n := range skipped {
		r.skipped.WithLabelValues(reason).Add(float64(n))
	}
	r.prepareDuration.Observe(took.Seconds())
}

// ObserveGeocode records a geocoding attempt; result is "ok", "miss" or "error".
func (r *Recorder) ObserveGeocode(result string) {
	if r == nil {
		return
	}
	r.geocodes.WithLabelValues(result).Inc()
}
