package peerhealth

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota // Peer healthy, operations allowed
	StateOpen                // Peer tripped, cooldown active
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

const (
	DefaultFailureThreshold = 3
	DefaultCooldownPeriod   = 60 * time.Second
)

// Tracker maintains per-peer failure counters and cooldown deadlines.
// Threshold and cooldown are fixed at construction and shared by all peers.
type Tracker struct {
	mutex     sync.RWMutex
	peers     map[string]*peerEntry
	threshold int
	cooldown  time.Duration
}

type peerEntry struct {
	mutex          sync.Mutex
	failures       int
	unhealthyUntil time.Time
	lastTouched    time.Time
}

// New creates a Tracker. Non-positive arguments fall back to the defaults
// (threshold 3, cooldown 60s).
func New(threshold int, cooldown time.Duration) *Tracker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldownPeriod
	}

	return &Tracker{
		peers:     make(map[string]*peerEntry),
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// RecordFailure increments the consecutive failure count for peerID,
// creating the entry on first sight. On reaching the threshold the peer is
// tripped: the deadline is set to now + cooldown and the count resets to 0,
// so a fresh run of failures is required to trip again after recovery.
func (t *Tracker) RecordFailure(peerID string) {
	entry := t.getOrInsert(peerID)

	entry.mutex.Lock()
	defer entry.mutex.Unlock()

	now := time.Now()
	entry.lastTouched = now
	entry.failures++

	if entry.failures >= t.threshold {
		entry.unhealthyUntil = now.Add(t.cooldown)
		entry.failures = 0
	}
}

// RecordSuccess resets the consecutive failure count for peerID if an entry
// exists. It never clears an active cooldown deadline: success prevents
// tripping but does not heal an already-open breaker early.
func (t *Tracker) RecordSuccess(peerID string) {
	t.mutex.RLock()
	entry, exists := t.peers[peerID]
	t.mutex.RUnlock()

	if !exists {
		return
	}

	entry.mutex.Lock()
	entry.failures = 0
	entry.lastTouched = time.Now()
	entry.mutex.Unlock()
}

// IsHealthy reports whether operations against peerID may be attempted.
// An expired deadline is cleared here, lazily; this is the only mechanism
// that moves a peer from OPEN back to CLOSED. A peer is healthy only when
// now is strictly past its deadline.
func (t *Tracker) IsHealthy(peerID string) bool {
	t.mutex.RLock()
	entry, exists := t.peers[peerID]
	t.mutex.RUnlock()

	if !exists {
		return true
	}

	entry.mutex.Lock()
	defer entry.mutex.Unlock()

	if entry.unhealthyUntil.IsZero() {
		return true
	}

	if time.Now().After(entry.unhealthyUntil) {
		entry.unhealthyUntil = time.Time{}
		return true
	}

	return false
}

// CooldownRemaining returns how long peerID stays excluded and true while
// its cooldown is still running, or zero and false otherwise. Pure read:
// an expired deadline is reported as none but not cleared.
func (t *Tracker) CooldownRemaining(peerID string) (time.Duration, bool) {
	t.mutex.RLock()
	entry, exists := t.peers[peerID]
	t.mutex.RUnlock()

	if !exists {
		return 0, false
	}

	entry.mutex.Lock()
	defer entry.mutex.Unlock()

	if entry.unhealthyUntil.IsZero() {
		return 0, false
	}

	remaining := time.Until(entry.unhealthyUntil)
	if remaining <= 0 {
		return 0, false
	}

	return remaining, true
}

// State returns the current breaker state for peerID without mutating it.
func (t *Tracker) State(peerID string) State {
	if remaining, open := t.CooldownRemaining(peerID); open && remaining > 0 {
		return StateOpen
	}
	return StateClosed
}

func (t *Tracker) getOrInsert(peerID string) *peerEntry {
	t.mutex.RLock()
	entry, exists := t.peers[peerID]
	t.mutex.RUnlock()

	if exists {
		return entry
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	// Double-check: another goroutine may have created it
	if entry, exists = t.peers[peerID]; exists {
		return entry
	}

	entry = &peerEntry{lastTouched: time.Now()}
	t.peers[peerID] = entry
	return entry
}

// Reset drops all tracked peers.
func (t *Tracker) Reset() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.peers = make(map[string]*peerEntry)
}

// PeerStatus is a read-only view of one peer's breaker, for status and
// metrics surfaces.
type PeerStatus struct {
	State               State         `json:"state"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	CooldownRemaining   time.Duration `json:"cooldown_remaining"`
}

// Snapshot returns the status of every tracked peer.
func (t *Tracker) Snapshot() map[string]PeerStatus {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	snapshot := make(map[string]PeerStatus, len(t.peers))
	now := time.Now()

	for peerID, entry := range t.peers {
		entry.mutex.Lock()

		status := PeerStatus{
			State:               StateClosed,
			ConsecutiveFailures: entry.failures,
		}
		if !entry.unhealthyUntil.IsZero() {
			if remaining := entry.unhealthyUntil.Sub(now); remaining > 0 {
				status.State = StateOpen
				status.CooldownRemaining = remaining
			}
		}

		entry.mutex.Unlock()
		snapshot[peerID] = status
	}

	return snapshot
}

// PruneIdle removes entries that are closed, have no failures on record,
// and have not been touched for at least ttl. Returns how many were
// removed. Bounds memory growth under unbounded peer churn.
func (t *Tracker) PruneIdle(ttl time.Duration) int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := time.Now()
	removed := 0

	for peerID, entry := range t.peers {
		entry.mutex.Lock()
		idle := entry.failures == 0 &&
			(entry.unhealthyUntil.IsZero() || now.After(entry.unhealthyUntil)) &&
			now.Sub(entry.lastTouched) >= ttl
		entry.mutex.Unlock()

		if idle {
			delete(t.peers, peerID)
			removed++
		}
	}

	return removed
}
