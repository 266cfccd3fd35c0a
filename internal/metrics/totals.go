package metrics

import (
	"sync"
	"time"
)

// totals is the collector's internal per-peer accounting, exposed through
// Snapshot for the JSON status surface.
type totals struct {
	mutex      sync.RWMutex
	failures   map[string]int64
	successes  map[string]int64
	trips      map[string]int64
	recoveries map[string]int64
	lastProbe  map[string]probeResult
	startTime  time.Time
}

type probeResult struct {
	duration   time.Duration
	statusCode int
	at         time.Time
}

func newTotals() *totals {
	return &totals{
		failures:   make(map[string]int64),
		successes:  make(map[string]int64),
		trips:      make(map[string]int64),
		recoveries: make(map[string]int64),
		lastProbe:  make(map[string]probeResult),
		startTime:  time.Now(),
	}
}

func (t *totals) addFailure(peer string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.failures[peer]++
}

func (t *totals) addSuccess(peer string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.successes[peer]++
}

func (t *totals) addTrip(peer string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.trips[peer]++
}

func (t *totals) addRecovery(peer string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.recoveries[peer]++
}

func (t *totals) recordProbe(peer string, duration time.Duration, statusCode int) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.lastProbe[peer] = probeResult{
		duration:   duration,
		statusCode: statusCode,
		at:         time.Now(),
	}
}

// Snapshot is the JSON-serialisable view returned by the status endpoint.
type Snapshot struct {
	Uptime time.Duration          `json:"uptime"`
	Peers  map[string]PeerMetrics `json:"peers"`
}

type PeerMetrics struct {
	State                    string        `json:"state"`
	ConsecutiveFailures      int           `json:"consecutive_failures"`
	CooldownRemainingSeconds float64       `json:"cooldown_remaining_seconds,omitempty"`
	FailuresTotal            int64         `json:"failures_total"`
	SuccessesTotal           int64         `json:"successes_total"`
	Trips                    int64         `json:"trips"`
	Recoveries               int64         `json:"recoveries"`
	LastProbeStatus          int           `json:"last_probe_status,omitempty"`
	LastProbeDuration        time.Duration `json:"last_probe_duration,omitempty"`
}

func (t *totals) snapshot() Snapshot {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	snap := Snapshot{
		Uptime: time.Since(t.startTime),
		Peers:  make(map[string]PeerMetrics),
	}

	// Collect all peers seen by any counter
	allPeers := make(map[string]bool)
	for peer := range t.failures {
		allPeers[peer] = true
	}
	for peer := range t.successes {
		allPeers[peer] = true
	}
	for peer := range t.trips {
		allPeers[peer] = true
	}
	for peer := range t.lastProbe {
		allPeers[peer] = true
	}

	for peer := range allPeers {
		pm := PeerMetrics{
			FailuresTotal:  t.failures[peer],
			SuccessesTotal: t.successes[peer],
			Trips:          t.trips[peer],
			Recoveries:     t.recoveries[peer],
		}
		if probe, ok := t.lastProbe[peer]; ok {
			pm.LastProbeStatus = probe.statusCode
			pm.LastProbeDuration = probe.duration
		}
		snap.Peers[peer] = pm
	}

	return snap
}
