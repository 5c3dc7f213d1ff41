// Package metrics provides Prometheus instrumentation for the assignment engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the service's Prometheus collectors behind one custom
// registry so the default Go collectors don't leak in.
type Registry struct {
	registry *prometheus.Registry

	RankingsTotal      prometheus.Counter
	RankingDuration    prometheus.Histogram
	CandidatesExcluded *prometheus.CounterVec

	OffersCreated  prometheus.Counter
	OffersAccepted prometheus.Counter
	OffersRejected prometheus.Counter
	OffersExpired  prometheus.Counter

	Escalations     prometheus.Counter
	Broadcasts      prometheus.Counter
	TasksUnassigned prometheus.Counter
}

// New builds a Registry with all collectors registered.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	const ns = "artello"
	const sub = "assignment"

	return &Registry{
		registry: reg,
		RankingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "rankings_total",
			Help: "Ranking passes executed.",
		}),
		RankingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: sub, Name: "ranking_duration_seconds",
			Help:    "Wall time of one ranking pass.",
			Buckets: prometheus.DefBuckets,
		}),
		CandidatesExcluded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "candidates_excluded_total",
			Help: "Candidates knocked out by exclusion rules.",
		}, []string{"rule"}),
		OffersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "offers_created_total",
			Help: "Task offers created.",
		}),
		OffersAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "offers_accepted_total",
			Help: "Task offers accepted by artists.",
		}),
		OffersRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "offers_rejected_total",
			Help: "Task offers rejected by artists.",
		}),
		OffersExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "offers_expired_total",
			Help: "Task offers that timed out.",
		}),
		Escalations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "escalations_total",
			Help: "Escalation level increases after pool exhaustion.",
		}),
		Broadcasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "broadcasts_total",
			Help: "Level-3 broadcast rounds.",
		}),
		TasksUnassigned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "tasks_unassigned_total",
			Help: "Tasks parked after every assignment path was exhausted.",
		}),
	}
}

// Handler serves the registry at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
