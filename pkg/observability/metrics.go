package observability

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the render counters.
type Metrics struct {
	ViewsCreated   *prometheus.CounterVec
	ViewsRefreshed *prometheus.CounterVec
	ViewsStopped   prometheus.Counter
	RenderErrors   *prometheus.CounterVec
	LookupFailures *prometheus.CounterVec
	FlushReruns    prometheus.Histogram
	FlushDuration  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ViewsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_views_created_total",
			Help: "Views rendered for the first time, by renderable name.",
		}, []string{"name"}),
		ViewsRefreshed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_views_refreshed_total",
			Help: "View reruns after an invalidation, by renderable name.",
		}, []string{"name"}),
		ViewsStopped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_views_stopped_total",
			Help: "Views torn down.",
		}),
		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_render_errors_total",
			Help: "View runs that returned an error, by renderable name.",
		}, []string{"name"}),
		LookupFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_lookup_failures_total",
			Help: "Template names that no lookup scope resolved.",
		}, []string{"template"}),
		FlushReruns: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbor_flush_reruns",
			Help:    "Computations rerun per flush.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbor_flush_duration_seconds",
			Help:    "Time spent flushing.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ViewsCreated, m.ViewsRefreshed, m.ViewsStopped,
			m.RenderErrors, m.LookupFailures, m.FlushReruns, m.FlushDuration)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnViewCreated: func(e *domain.ViewEvent) {
			m.ViewsCreated.WithLabelValues(e.Name).Inc()
			if e.Err != nil {
				m.RenderErrors.WithLabelValues(e.Name).Inc()
			}
		},
		OnViewRefreshed: func(e *domain.ViewEvent) {
			m.ViewsRefreshed.WithLabelValues(e.Name).Inc()
			if e.Err != nil {
				m.RenderErrors.WithLabelValues(e.Name).Inc()
			}
		},
		OnViewStopped: func(*domain.ViewEvent) {
			m.ViewsStopped.Inc()
		},
		OnLookupFailed: func(e *domain.LookupEvent) {
			m.LookupFailures.WithLabelValues(e.Name).Inc()
		},
		OnFlush: func(e *domain.FlushEvent) {
			m.FlushReruns.Observe(float64(e.Reruns))
			m.FlushDuration.Observe(e.Duration.Seconds())
		},
	}
}
