package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/michalkomar/exo/config"
	"github.com/michalkomar/exo/internal/metrics"
	"github.com/michalkomar/exo/internal/peerhealth"
	"github.com/michalkomar/exo/internal/prober"
	"github.com/michalkomar/exo/internal/statusserver"
	"github.com/michalkomar/exo/pkg/logger"
)

const (
	metricsBufferSize = 256
	exportInterval    = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracker, err := initializeTracker(cfg)
	if err != nil {
		log.Error("Failed to initialize peer health tracker", slog.Any("err", err))
		os.Exit(1)
	}

	collector := metrics.NewCollector(metricsBufferSize, log)
	collector.Start(ctx)

	peers := initializePeers(cfg, log)
	log.Info("Tracking peers",
		slog.Int("count", len(peers)),
		slog.Int("failure_threshold", cfg.PeerHealth.FailureThreshold),
		slog.String("cooldown_period", cfg.PeerHealth.CooldownPeriod))

	prb, err := initializeProber(cfg, tracker, collector, peers, log)
	if err != nil {
		log.Error("Failed to initialize prober", slog.Any("err", err))
		os.Exit(1)
	}
	if cfg.Probe.Enabled {
		go prb.Run(ctx)
	}

	exporter := metrics.NewExporter(collector, tracker, exportInterval)
	go exporter.Start(ctx)

	if cfg.PeerHealth.Sweep.Enabled {
		if err := startSweeper(ctx, cfg, tracker, log); err != nil {
			log.Error("Failed to start sweeper", slog.Any("err", err))
			os.Exit(1)
		}
	}

	if path := config.FileUsed(); path != "" {
		if err := startWatcher(ctx, path, cfg, prb, log); err != nil {
			log.Error("Failed to start config watcher", slog.Any("err", err))
			os.Exit(1)
		}
	}

	mux := setupRouter(tracker, collector)

	srv, err := statusserver.New(cfg.Server.Address, mux)
	if err != nil {
		log.Error("Failed to create status server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Status server listening", slog.String("address", cfg.Server.Address))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting status server", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func initializeTracker(cfg *config.Config) (*peerhealth.Tracker, error) {
	cooldown, err := time.ParseDuration(cfg.PeerHealth.CooldownPeriod)
	if err != nil {
		return nil, err
	}

	return peerhealth.New(cfg.PeerHealth.FailureThreshold, cooldown), nil
}

func initializePeers(cfg *config.Config, log *slog.Logger) []prober.Peer {
	var peers []prober.Peer

	for _, peerCfg := range cfg.Peers {
		u, err := url.Parse(peerCfg.URL)
		if err != nil {
			log.Error("Failed to parse peer URL",
				slog.String("peer", peerCfg.ID),
				slog.String("url", peerCfg.URL),
				slog.String("error", err.Error()))
			continue
		}

		peers = append(peers, prober.Peer{ID: peerCfg.ID, URL: u})
	}

	return peers
}

func initializeProber(
	cfg *config.Config,
	tracker *peerhealth.Tracker,
	collector *metrics.Collector,
	peers []prober.Peer,
	log *slog.Logger,
) (*prober.Prober, error) {
	interval, err := time.ParseDuration(cfg.Probe.Interval)
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(cfg.Probe.Timeout)
	if err != nil {
		return nil, err
	}

	return prober.New(tracker, collector, peers, interval, timeout, cfg.Probe.Path, log), nil
}

func startSweeper(ctx context.Context, cfg *config.Config, tracker *peerhealth.Tracker, log *slog.Logger) error {
	interval, err := time.ParseDuration(cfg.PeerHealth.Sweep.Interval)
	if err != nil {
		return err
	}

	idleTTL, err := time.ParseDuration(cfg.PeerHealth.Sweep.IdleTTL)
	if err != nil {
		return err
	}

	sweeper := peerhealth.NewSweeper(tracker, interval, idleTTL, log)
	go sweeper.Start(ctx)
	return nil
}

func startWatcher(ctx context.Context, path string, cfg *config.Config, prb *prober.Prober, log *slog.Logger) error {
	oldThreshold := cfg.PeerHealth.FailureThreshold
	oldCooldown := cfg.PeerHealth.CooldownPeriod

	watcher, err := config.NewWatcher(path, log, func(newCfg *config.Config) error {
		prb.SetPeers(initializePeers(newCfg, log))
		log.Info("Applied new peer set", slog.Int("peers", len(newCfg.Peers)))

		// Tracker parameters are fixed at construction
		if newCfg.PeerHealth.FailureThreshold != oldThreshold ||
			newCfg.PeerHealth.CooldownPeriod != oldCooldown {
			log.Warn("peer_health threshold/cooldown changes require a restart")
		}
		return nil
	})
	if err != nil {
		return err
	}

	go watcher.Start(ctx)
	return nil
}
