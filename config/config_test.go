package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/michalkomar/exo/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		viper.Reset()

		var err error
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	writeConfig := func(content string) {
		configPath := filepath.Join(tempDir, "config.yaml")
		err := os.WriteFile(configPath, []byte(content), 0644)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tempDir)
		Expect(err).NotTo(HaveOccurred())
	}

	Describe("Load", func() {
		Context("with valid config file", func() {
			BeforeEach(func() {
				writeConfig(`
server:
  address: ":8080"
  environment: "dev"

logging:
  level: "info"

peer_health:
  failure_threshold: 5
  cooldown_period: "30s"
  sweep:
    enabled: true
    interval: "1m"
    idle_ttl: "10m"

probe:
  enabled: true
  interval: "2s"
  timeout: "5s"
  path: "/health"

peers:
  - id: "node-a"
    url: "http://localhost:8081"
  - id: "node-b"
    url: "http://localhost:8082"
`)
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg).NotTo(BeNil())
			})

			It("should parse peer health settings", func() {
				cfg, _ := config.Load()
				Expect(cfg.PeerHealth.FailureThreshold).To(Equal(5))
				Expect(cfg.PeerHealth.CooldownPeriod).To(Equal("30s"))
			})

			It("should parse sweep settings", func() {
				cfg, _ := config.Load()
				Expect(cfg.PeerHealth.Sweep.Enabled).To(BeTrue())
				Expect(cfg.PeerHealth.Sweep.IdleTTL).To(Equal("10m"))
			})

			It("should parse the peer list", func() {
				cfg, _ := config.Load()
				Expect(cfg.Peers).To(HaveLen(2))
				Expect(cfg.Peers[0].ID).To(Equal("node-a"))
				Expect(cfg.Peers[1].URL).To(Equal("http://localhost:8082"))
			})

			It("should report the file used", func() {
				_, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(config.FileUsed()).To(ContainSubstring("config.yaml"))
			})
		})

		Context("without a config file", func() {
			BeforeEach(func() {
				err := os.Chdir(tempDir)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should fall back to defaults", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.PeerHealth.FailureThreshold).To(Equal(3))
				Expect(cfg.PeerHealth.CooldownPeriod).To(Equal("60s"))
				Expect(cfg.Probe.Path).To(Equal("/health"))
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = &config.Config{
				Server:  config.ServerConfig{Address: ":8080", Environment: "dev"},
				Logging: config.LoggingConfig{Level: "info"},
				PeerHealth: config.PeerHealthConfig{
					FailureThreshold: 3,
					CooldownPeriod:   "60s",
				},
				Probe: config.ProbeConfig{
					Enabled:  true,
					Interval: "2s",
					Timeout:  "5s",
					Path:     "/health",
				},
				Peers: []config.PeerConfig{
					{ID: "node-a", URL: "http://localhost:8081"},
				},
			}
		})

		It("should accept a valid config", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject a zero failure threshold", func() {
			cfg.PeerHealth.FailureThreshold = 0
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject an unparsable cooldown period", func() {
			cfg.PeerHealth.CooldownPeriod = "soon"
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject a negative cooldown period", func() {
			cfg.PeerHealth.CooldownPeriod = "-5s"
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject an unknown environment", func() {
			cfg.Server.Environment = "testing"
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject a peer without an id", func() {
			cfg.Peers = append(cfg.Peers, config.PeerConfig{URL: "http://localhost:9000"})
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject duplicate peer ids", func() {
			cfg.Peers = append(cfg.Peers, config.PeerConfig{ID: "node-a", URL: "http://localhost:9000"})
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject a peer URL with a bad scheme", func() {
			cfg.Peers[0].URL = "ftp://localhost:8081"
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should accept an empty peer list", func() {
			cfg.Peers = nil
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should skip sweep duration checks when sweep is disabled", func() {
			cfg.PeerHealth.Sweep = config.SweepConfig{Enabled: false}
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should check sweep durations when sweep is enabled", func() {
			cfg.PeerHealth.Sweep = config.SweepConfig{Enabled: true, Interval: "bad", IdleTTL: "10m"}
			Expect(cfg.Validate()).To(HaveOccurred())
		})
	})
})
