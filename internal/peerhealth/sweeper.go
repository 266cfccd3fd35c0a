package peerhealth

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically prunes idle peer entries from a Tracker.
type Sweeper struct {
	tracker  *Tracker
	interval time.Duration
	idleTTL  time.Duration
	logger   *slog.Logger
}

func NewSweeper(tracker *Tracker, interval, idleTTL time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		tracker:  tracker,
		interval: interval,
		idleTTL:  idleTTL,
		logger:   logger,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Peer sweeper stopped")
			return

		case <-ticker.C:
			removed := s.tracker.PruneIdle(s.idleTTL)
			if removed > 0 {
				s.logger.Debug("Pruned idle peer entries",
					slog.Int("removed", removed),
					slog.Duration("idle_ttl", s.idleTTL))
			}
		}
	}
}
