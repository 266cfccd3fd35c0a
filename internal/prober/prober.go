package prober

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/michalkomar/exo/internal/metrics"
	"github.com/michalkomar/exo/internal/peerhealth"
)

// Peer is a probe target.
type Peer struct {
	ID  string
	URL *url.URL
}

// Prober drives periodic health probes against a set of peers. The peer
// set can be swapped at runtime; the tracker decides which peers are
// currently worth probing.
type Prober struct {
	mutex     sync.RWMutex
	peers     []Peer
	unhealthy map[string]bool

	tracker   *peerhealth.Tracker
	collector *metrics.Collector
	client    *http.Client
	interval  time.Duration
	path      string
	logger    *slog.Logger
}

func New(
	tracker *peerhealth.Tracker,
	collector *metrics.Collector,
	peers []Peer,
	interval time.Duration,
	timeout time.Duration,
	path string,
	logger *slog.Logger,
) *Prober {
	return &Prober{
		peers:     peers,
		unhealthy: make(map[string]bool),
		tracker:   tracker,
		collector: collector,
		client:    &http.Client{Timeout: timeout},
		interval:  interval,
		path:      path,
		logger:    logger,
	}
}

// SetPeers replaces the probe target set.
func (p *Prober) SetPeers(peers []Peer) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.peers = peers
}

// Peers returns a copy of the current probe target set.
func (p *Prober) Peers() []Peer {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	peers := make([]Peer, len(p.peers))
	copy(peers, p.peers)
	return peers
}

// Run probes all peers on every tick until the context is cancelled.
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Prober stopped")
			return

		case <-ticker.C:
			p.probeAll(ctx)
		}
	}
}

func (p *Prober) probeAll(ctx context.Context) {
	peers := p.Peers()

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for _, peer := range peers {
		go func(peer Peer) {
			defer wg.Done()
			p.probeOne(ctx, peer)
		}(peer)
	}

	wg.Wait()
}

func (p *Prober) probeOne(ctx context.Context, peer Peer) {
	if !p.tracker.IsHealthy(peer.ID) {
		remaining, _ := p.tracker.CooldownRemaining(peer.ID)
		p.logger.Debug("Skipping tripped peer",
			slog.String("peer", peer.ID),
			slog.Duration("cooldown_remaining", remaining))
		return
	}

	// IsHealthy cleared an expired cooldown if the peer was tripped before
	if p.wasUnhealthy(peer.ID) {
		p.setUnhealthy(peer.ID, false)
		p.emitEvent(metrics.Event{
			Type:      metrics.EventPeerRecovered,
			Timestamp: time.Now(),
			Peer:      peer.ID,
		})
		p.logger.Info("Peer back in rotation", slog.String("peer", peer.ID))
	}

	probeURL := peer.URL.ResolveReference(&url.URL{Path: p.path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL.String(), nil)
	if err != nil {
		p.logger.Error("Failed to build probe request",
			slog.String("peer", peer.ID),
			slog.String("url", probeURL.String()),
			slog.Any("err", err))
		return
	}
	req.Header.Set("X-Probe-ID", uuid.New().String())

	start := time.Now()
	res, err := p.client.Do(req)
	duration := time.Since(start)

	statusCode := 0
	success := false
	if err == nil {
		statusCode = res.StatusCode
		res.Body.Close()
		success = statusCode >= 200 && statusCode < 300
	}

	p.emitEvent(metrics.Event{
		Type:       metrics.EventProbeCompleted,
		Timestamp:  time.Now(),
		Peer:       peer.ID,
		Duration:   duration,
		StatusCode: statusCode,
	})

	if success {
		p.tracker.RecordSuccess(peer.ID)
		p.emitEvent(metrics.Event{
			Type:      metrics.EventSuccessRecorded,
			Timestamp: time.Now(),
			Peer:      peer.ID,
		})
		return
	}

	p.tracker.RecordFailure(peer.ID)
	p.emitEvent(metrics.Event{
		Type:      metrics.EventFailureRecorded,
		Timestamp: time.Now(),
		Peer:      peer.ID,
	})

	if p.tracker.State(peer.ID) == peerhealth.StateOpen {
		p.setUnhealthy(peer.ID, true)
		p.emitEvent(metrics.Event{
			Type:      metrics.EventPeerTripped,
			Timestamp: time.Now(),
			Peer:      peer.ID,
		})

		remaining, _ := p.tracker.CooldownRemaining(peer.ID)
		p.logger.Warn("Peer tripped, excluding from probes",
			slog.String("peer", peer.ID),
			slog.Duration("cooldown", remaining))
	}
}

func (p *Prober) wasUnhealthy(peerID string) bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.unhealthy[peerID]
}

func (p *Prober) setUnhealthy(peerID string, unhealthy bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.unhealthy[peerID] = unhealthy
}

func (p *Prober) emitEvent(event metrics.Event) {
	if p.collector == nil {
		return
	}

	select {
	case p.collector.EventChannel() <- event:
	default:
	}
}
