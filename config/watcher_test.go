package config_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/michalkomar/exo/config"
)

var _ = Describe("Watcher", func() {
	var (
		tempDir    string
		configPath string
		log        *slog.Logger
	)

	validConfig := `
server:
  address: ":8080"
  environment: "dev"

logging:
  level: "info"

peers:
  - id: "node-a"
    url: "http://localhost:8081"
`

	BeforeEach(func() {
		viper.Reset()

		var err error
		tempDir, err = os.MkdirTemp("", "watcher-test-*")
		Expect(err).NotTo(HaveOccurred())

		configPath = filepath.Join(tempDir, "config.yaml")
		Expect(os.WriteFile(configPath, []byte(validConfig), 0644)).To(Succeed())
		Expect(os.Chdir(tempDir)).To(Succeed())

		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError, // Suppress logs in tests
		}))
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	It("should call onChange after the config file is rewritten", func() {
		_, err := config.Load()
		Expect(err).NotTo(HaveOccurred())

		var reloads atomic.Int64
		watcher, err := config.NewWatcher(configPath, log, func(cfg *config.Config) error {
			reloads.Add(1)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go watcher.Start(ctx)

		time.Sleep(100 * time.Millisecond)
		Expect(os.WriteFile(configPath, []byte(validConfig), 0644)).To(Succeed())

		Eventually(reloads.Load, "3s", "100ms").Should(BeNumerically(">=", 1))
	})

	It("should ignore changes to other files", func() {
		var reloads atomic.Int64
		watcher, err := config.NewWatcher(configPath, log, func(cfg *config.Config) error {
			reloads.Add(1)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go watcher.Start(ctx)

		time.Sleep(100 * time.Millisecond)
		otherPath := filepath.Join(tempDir, "other.yaml")
		Expect(os.WriteFile(otherPath, []byte("unrelated: true"), 0644)).To(Succeed())

		Consistently(reloads.Load, "800ms", "100ms").Should(Equal(int64(0)))
	})

	It("should stop when the context is cancelled", func() {
		watcher, err := config.NewWatcher(configPath, log, func(cfg *config.Config) error { return nil })
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			watcher.Start(ctx)
			close(done)
		}()

		cancel()
		Eventually(done, "500ms").Should(BeClosed())
	})

	It("should fail for a missing directory", func() {
		_, err := config.NewWatcher("/nonexistent/dir/config.yaml", log, nil)
		Expect(err).To(HaveOccurred())
	})
})
