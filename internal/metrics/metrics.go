package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
)

// Metrics records feeding activity. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry        *prometheus.Registry
	feedEvents      *prometheus.CounterVec
	feedKg          *prometheus.CounterVec
	animalStatus    *prometheus.GaugeVec
	persistFailures prometheus.Counter
}

// New registers the herdfeed collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		feedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "herdfeed",
			Name:      "feed_events_total",
			Help:      "Feed events recorded, by group.",
		}, []string{"group"}),
		feedKg: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "herdfeed",
			Name:      "feed_delivered_kg_total",
			Help:      "Kilograms of feed delivered, by group and feed type.",
		}, []string{"group", "feed_type"}),
		animalStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "herdfeed",
			Name:      "animals",
			Help:      "Registered animals by current feed status.",
		}, []string{"status"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "herdfeed",
			Name:      "state_save_failures_total",
			Help:      "Failed attempts to persist the farm state.",
		}),
	}

	m.registry.MustRegister(m.feedEvents, m.feedKg, m.animalStatus, m.persistFailures)
	return m
}

// ObserveFeedEvent counts one recorded event.
func (m *Metrics) ObserveFeedEvent(event models.FeedEvent) {
	if m == nil {
		return
	}
	m.feedEvents.WithLabelValues(string(event.Group)).Inc()
	m.feedKg.WithLabelValues(string(event.Group), event.FeedType).Add(event.TotalKg)
}

// SetStatusCounts publishes the current registry distribution.
func (m *Metrics) SetStatusCounts(c models.StatusCounts) {
	if m == nil {
		return
	}
	m.animalStatus.WithLabelValues(string(models.StatusOK)).Set(float64(c.OK))
	m.animalStatus.WithLabelValues(string(models.StatusUnderfed)).Set(float64(c.Underfed))
	m.animalStatus.WithLabelValues(string(models.StatusMissed)).Set(float64(c.Missed))
	m.animalStatus.WithLabelValues(string(models.StatusPending)).Set(float64(c.Pending))
}

// PersistFailed counts one failed state save.
func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
