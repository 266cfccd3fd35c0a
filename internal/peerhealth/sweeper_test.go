package peerhealth_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/michalkomar/exo/internal/peerhealth"
)

var _ = Describe("Sweeper", func() {
	var (
		tracker *peerhealth.Tracker
		log     *slog.Logger
	)

	BeforeEach(func() {
		tracker = peerhealth.New(2, time.Minute)
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError, // Suppress logs in tests
		}))
	})

	It("should prune idle entries on its interval", func() {
		tracker.RecordFailure("idle")
		tracker.RecordSuccess("idle")

		sweeper := peerhealth.NewSweeper(tracker, 50*time.Millisecond, 20*time.Millisecond, log)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go sweeper.Start(ctx)

		Eventually(func() map[string]peerhealth.PeerStatus {
			return tracker.Snapshot()
		}, "500ms", "20ms").Should(BeEmpty())
	})

	It("should stop when the context is cancelled", func() {
		sweeper := peerhealth.NewSweeper(tracker, 20*time.Millisecond, time.Minute, log)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			sweeper.Start(ctx)
			close(done)
		}()

		cancel()
		Eventually(done, "500ms").Should(BeClosed())
	})
})
