package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/michalkomar/exo/internal/peerhealth"
)

// Snapshot merges the collector's totals with the tracker's live per-peer
// breaker state.
func (c *Collector) Snapshot(tracker *peerhealth.Tracker) Snapshot {
	snap := c.totals.snapshot()

	for peer, status := range tracker.Snapshot() {
		pm := snap.Peers[peer]
		pm.State = status.State.String()
		pm.ConsecutiveFailures = status.ConsecutiveFailures
		pm.CooldownRemainingSeconds = status.CooldownRemaining.Seconds()
		snap.Peers[peer] = pm
	}

	// Peers known only to the collector (e.g. pruned from the tracker)
	// default to CLOSED
	for peer, pm := range snap.Peers {
		if pm.State == "" {
			pm.State = peerhealth.StateClosed.String()
			snap.Peers[peer] = pm
		}
	}

	return snap
}

// StatusHandler serves the merged snapshot as JSON.
func (c *Collector) StatusHandler(tracker *peerhealth.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := c.Snapshot(tracker)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
