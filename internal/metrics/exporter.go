package metrics

import (
	"context"
	"time"

	"github.com/michalkomar/exo/internal/peerhealth"
)

// Exporter periodically refreshes state-derived gauges from the tracker.
type Exporter struct {
	collector *Collector
	tracker   *peerhealth.Tracker
	interval  time.Duration
}

func NewExporter(collector *Collector, tracker *peerhealth.Tracker, interval time.Duration) *Exporter {
	return &Exporter{
		collector: collector,
		tracker:   tracker,
		interval:  interval,
	}
}

// Start begins the export loop; it returns when ctx is cancelled.
func (e *Exporter) Start(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.export()
		}
	}
}

func (e *Exporter) export() {
	for peer, status := range e.tracker.Snapshot() {
		state := 1.0
		if status.State == peerhealth.StateOpen {
			state = 0.0
		}
		e.collector.prom.PeerState.WithLabelValues(peer).Set(state)
		e.collector.prom.CooldownRemaining.WithLabelValues(peer).Set(status.CooldownRemaining.Seconds())
	}
}
