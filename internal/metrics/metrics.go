// Package metrics exposes Prometheus collectors for build activity.
package metrics

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/blogerr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors for the preview server. All collectors are
// registered on a private registry so tests can run side by side.
type Metrics struct {
	registry *prometheus.Registry

	buildsTotal   *prometheus.CounterVec
	buildDuration prometheus.Histogram
	buildErrors   *prometheus.CounterVec
	postsBuilt    prometheus.Gauge
	tagsBuilt     prometheus.Gauge
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		buildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogbuilder_builds_total",
			Help: "Total build passes by status.",
		}, []string{"status"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blogbuilder_build_duration_seconds",
			Help:    "Duration of build passes.",
			Buckets: prometheus.DefBuckets,
		}),
		buildErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogbuilder_build_errors_total",
			Help: "Build errors by category.",
		}, []string{"category"}),
		postsBuilt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blogbuilder_posts",
			Help: "Posts in the most recent successful build.",
		}),
		tagsBuilt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blogbuilder_tags",
			Help: "Distinct tags in the most recent successful build.",
		}),
	}

	m.registry.MustRegister(m.buildsTotal, m.buildDuration, m.buildErrors, m.postsBuilt, m.tagsBuilt)
	return m
}

// ObserveBuildSuccess records a successful build pass.
func (m *Metrics) ObserveBuildSuccess(duration time.Duration, posts, tags int) {
	m.buildsTotal.WithLabelValues("success").Inc()
	m.buildDuration.Observe(duration.Seconds())
	m.postsBuilt.Set(float64(posts))
	m.tagsBuilt.Set(float64(tags))
}

// ObserveBuildFailure records a failed build pass and classifies the error.
func (m *Metrics) ObserveBuildFailure(duration time.Duration, err error) {
	m.buildsTotal.WithLabelValues("failed").Inc()
	m.buildDuration.Observe(duration.Seconds())
	m.buildErrors.WithLabelValues(string(blogerr.CategoryOf(err))).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
