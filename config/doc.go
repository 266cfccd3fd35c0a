// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration structure
// including server settings, peer health thresholds, probe targets, and sweep
// intervals, and watches the config file for peer-set changes.
package config
