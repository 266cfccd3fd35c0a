package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type EventType string

const (
	EventFailureRecorded EventType = "failure_recorded"
	EventSuccessRecorded EventType = "success_recorded"
	EventPeerTripped     EventType = "peer_tripped"
	EventPeerRecovered   EventType = "peer_recovered"
	EventProbeCompleted  EventType = "probe_completed"
)

type Event struct {
	Type       EventType
	Timestamp  time.Time
	Peer       string
	Duration   time.Duration
	StatusCode int
}

type Collector struct {
	eventCh chan Event
	totals  *totals
	prom    *promMetrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan Event, bufferSize),
		totals:  newTotals(),
		prom:    newPromMetrics(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- Event {
	return c.eventCh
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

// PromHandler serves the collector's Prometheus registry.
func (c *Collector) PromHandler() http.Handler {
	return promhttp.HandlerFor(c.prom.registry, promhttp.HandlerOpts{})
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event Event) {
	switch event.Type {
	case EventFailureRecorded:
		c.totals.addFailure(event.Peer)
		c.prom.FailuresTotal.WithLabelValues(event.Peer).Inc()

	case EventSuccessRecorded:
		c.totals.addSuccess(event.Peer)
		c.prom.SuccessesTotal.WithLabelValues(event.Peer).Inc()

	case EventPeerTripped:
		c.totals.addTrip(event.Peer)
		c.prom.TripsTotal.WithLabelValues(event.Peer).Inc()
		c.prom.PeerState.WithLabelValues(event.Peer).Set(0)

	case EventPeerRecovered:
		c.totals.addRecovery(event.Peer)
		c.prom.RecoveriesTotal.WithLabelValues(event.Peer).Inc()
		c.prom.PeerState.WithLabelValues(event.Peer).Set(1)

	case EventProbeCompleted:
		c.totals.recordProbe(event.Peer, event.Duration, event.StatusCode)
		c.prom.ProbeDuration.WithLabelValues(event.Peer).Observe(event.Duration.Seconds())
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}
