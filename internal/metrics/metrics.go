package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abrezinsky/ldtab/internal/models"
)

const namespace = "ldtab"

// Metrics holds the engine counters on a dedicated registry
type Metrics struct {
	registry *prometheus.Registry

	roundsCreated     prometheus.Counter
	judgesAssigned    prometheus.Counter
	ballotsSubmitted  prometheus.Counter
	roundsFinalized   *prometheus.CounterVec
	eliminations      prometheus.Counter
	mutationsRejected *prometheus.CounterVec
	wsClients         prometheus.Gauge
}

// New creates and registers every collector
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		roundsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_created_total",
			Help:      "Rounds opened.",
		}),
		judgesAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judges_assigned_total",
			Help:      "Judges added to a round panel.",
		}),
		ballotsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ballots_submitted_total",
			Help:      "Ballots accepted, including replacements.",
		}),
		roundsFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_finalized_total",
			Help:      "Rounds closed, by debate type.",
		}, []string{"type"}),
		eliminations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eliminations_total",
			Help:      "Debaters eliminated by finalizing an elimination round.",
		}),
		mutationsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_rejected_total",
			Help:      "Mutations refused, by reason.",
		}, []string{"reason"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected websocket clients.",
		}),
	}
	m.registry.MustRegister(
		m.roundsCreated,
		m.judgesAssigned,
		m.ballotsSubmitted,
		m.roundsFinalized,
		m.eliminations,
		m.mutationsRejected,
		m.wsClients,
	)
	return m
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RoundCreated()    { m.roundsCreated.Inc() }
func (m *Metrics) JudgeAssigned()   { m.judgesAssigned.Inc() }
func (m *Metrics) BallotSubmitted() { m.ballotsSubmitted.Inc() }
func (m *Metrics) Elimination()     { m.eliminations.Inc() }

func (m *Metrics) RoundFinalized(t models.DebateType) {
	m.roundsFinalized.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) MutationRejected(reason string) {
	m.mutationsRejected.WithLabelValues(reason).Inc()
}

// ClientConnected and ClientDisconnected track the websocket gauge
func (m *Metrics) ClientConnected()    { m.wsClients.Inc() }
func (m *Metrics) ClientDisconnected() { m.wsClients.Dec() }
