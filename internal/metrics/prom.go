package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// promMetrics holds all Prometheus series, registered on a collector-owned
// registry so multiple collectors can coexist in one process.
type promMetrics struct {
	registry *prometheus.Registry

	FailuresTotal   *prometheus.CounterVec
	SuccessesTotal  *prometheus.CounterVec
	TripsTotal      *prometheus.CounterVec
	RecoveriesTotal *prometheus.CounterVec

	PeerState         *prometheus.GaugeVec
	CooldownRemaining *prometheus.GaugeVec

	ProbeDuration *prometheus.HistogramVec
}

func newPromMetrics() *promMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &promMetrics{
		registry: registry,

		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exo_peer_failures_total",
				Help: "Total number of recorded peer failures",
			},
			[]string{"peer"},
		),

		SuccessesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exo_peer_successes_total",
				Help: "Total number of recorded peer successes",
			},
			[]string{"peer"},
		),

		TripsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exo_peer_trips_total",
				Help: "Total number of circuit breaker trips per peer",
			},
			[]string{"peer"},
		),

		RecoveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exo_peer_recoveries_total",
				Help: "Total number of cooldown recoveries per peer",
			},
			[]string{"peer"},
		),

		PeerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "exo_peer_state",
				Help: "Peer circuit breaker state (0=OPEN, 1=CLOSED)",
			},
			[]string{"peer"},
		),

		CooldownRemaining: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "exo_peer_cooldown_remaining_seconds",
				Help: "Seconds until a tripped peer becomes eligible again",
			},
			[]string{"peer"},
		),

		ProbeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "exo_peer_probe_duration_seconds",
				Help:    "Probe round-trip duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"peer"},
		),
	}
}
