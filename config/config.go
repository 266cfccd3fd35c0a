package config

import (
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type SweepConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Interval string `mapstructure:"interval"`
	IdleTTL  string `mapstructure:"idle_ttl"`
}

type PeerHealthConfig struct {
	FailureThreshold int         `mapstructure:"failure_threshold"`
	CooldownPeriod   string      `mapstructure:"cooldown_period"`
	Sweep            SweepConfig `mapstructure:"sweep"`
}

type ProbeConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Interval string `mapstructure:"interval"`
	Timeout  string `mapstructure:"timeout"`
	Path     string `mapstructure:"path"`
}

type PeerConfig struct {
	ID  string `mapstructure:"id"`
	URL string `mapstructure:"url"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	PeerHealth PeerHealthConfig `mapstructure:"peer_health"`
	Probe      ProbeConfig      `mapstructure:"probe"`
	Peers      []PeerConfig     `mapstructure:"peers"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("logging.level", LogLevelInfo)
	viper.SetDefault("peer_health.failure_threshold", 3)
	viper.SetDefault("peer_health.cooldown_period", "60s")
	viper.SetDefault("peer_health.sweep.enabled", false)
	viper.SetDefault("peer_health.sweep.interval", "5m")
	viper.SetDefault("peer_health.sweep.idle_ttl", "30m")
	viper.SetDefault("probe.enabled", true)
	viper.SetDefault("probe.interval", "2s")
	viper.SetDefault("probe.timeout", "5s")
	viper.SetDefault("probe.path", "/health")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Warn("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// FileUsed returns the path of the config file the last Load read, or ""
// when only defaults and environment variables were used.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.PeerHealth,
			validation.Required,
			validation.By(func(value interface{}) error {
				phc, ok := value.(PeerHealthConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a PeerHealthConfig")
				}
				return validation.ValidateStruct(&phc,
					validation.Field(&phc.FailureThreshold,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&phc.CooldownPeriod,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&phc.Sweep,
						validation.By(validateSweepConfig),
					),
				)
			}),
		),
		validation.Field(&c.Probe,
			validation.Required,
			validation.By(func(value interface{}) error {
				pc, ok := value.(ProbeConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ProbeConfig")
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.Interval,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&pc.Timeout,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&pc.Path,
						validation.Required,
					),
				)
			}),
		),
		validation.Field(&c.Peers,
			validation.Each(validation.By(validatePeerConfig)),
			validation.By(validateUniquePeerIDs),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d <= 0 {
		return validation.NewError("validation_invalid_duration", "duration must be positive")
	}

	return nil
}

func validateSweepConfig(value interface{}) error {
	sc, ok := value.(SweepConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a SweepConfig")
	}

	if !sc.Enabled {
		return nil
	}

	if err := validateDuration(sc.Interval); err != nil {
		return err
	}

	return validateDuration(sc.IdleTTL)
}

func validatePeerConfig(value interface{}) error {
	peer, ok := value.(PeerConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a PeerConfig")
	}

	if peer.ID == "" {
		return validation.NewError("validation_empty_peer_id", "peer id cannot be empty")
	}

	if peer.URL == "" {
		return validation.NewError("validation_empty_url", "peer URL cannot be empty")
	}

	parsedURL, err := url.Parse(peer.URL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

func validateUniquePeerIDs(value interface{}) error {
	peers, ok := value.([]PeerConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a list of PeerConfig")
	}

	seen := make(map[string]bool, len(peers))
	for _, peer := range peers {
		if seen[peer.ID] {
			return validation.NewError("validation_duplicate_peer_id", "peer ids must be unique")
		}
		seen[peer.ID] = true
	}

	return nil
}
