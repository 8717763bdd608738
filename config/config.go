package config

import (
	"strings"
	"time"
	"unicode"

	"github.com/c360/telemetrix/errors"
)

// Config is the complete telemetrix configuration.
type Config struct {
	Driver     DriverConfig     `json:"driver" yaml:"driver"`
	Gateway    GatewayConfig    `json:"gateway" yaml:"gateway"`
	Prometheus PrometheusConfig `json:"prometheus" yaml:"prometheus"`
	NATS       NATSConfig       `json:"nats" yaml:"nats"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
}

// DriverConfig controls the background collection loop.
type DriverConfig struct {
	Name             string   `json:"name,omitempty" yaml:"name,omitempty"`
	CycleInterval    Duration `json:"cycle_interval,omitempty" yaml:"cycle_interval,omitempty"`
	SnapshotInterval Duration `json:"snapshot_interval,omitempty" yaml:"snapshot_interval,omitempty"`
	MaxPerCycle      int      `json:"max_per_cycle,omitempty" yaml:"max_per_cycle,omitempty"`
	Descriptive      bool     `json:"descriptive,omitempty" yaml:"descriptive,omitempty"`
}

// GatewayConfig controls the HTTP/WebSocket snapshot server.
type GatewayConfig struct {
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	Address      string   `json:"address,omitempty" yaml:"address,omitempty"`
	RateLimit    float64  `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
	RateBurst    int      `json:"rate_burst,omitempty" yaml:"rate_burst,omitempty"`
	ReadTimeout  Duration `json:"read_timeout,omitempty" yaml:"read_timeout,omitempty"`
	WriteTimeout Duration `json:"write_timeout,omitempty" yaml:"write_timeout,omitempty"`
}

// PrometheusConfig controls the prometheus bridge.
type PrometheusConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// NATSConfig controls the snapshot publisher.
type NATSConfig struct {
	Enabled       bool     `json:"enabled" yaml:"enabled"`
	URL           string   `json:"url,omitempty" yaml:"url,omitempty"`
	Subject       string   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Name          string   `json:"name,omitempty" yaml:"name,omitempty"`
	MaxReconnects int      `json:"max_reconnects,omitempty" yaml:"max_reconnects,omitempty"`
	ReconnectWait Duration `json:"reconnect_wait,omitempty" yaml:"reconnect_wait,omitempty"`
	Username      string   `json:"username,omitempty" yaml:"username,omitempty"`
	Password      string   `json:"password,omitempty" yaml:"password,omitempty"`
	Token         string   `json:"token,omitempty" yaml:"token,omitempty"`
}

// LoggingConfig controls slog setup in the demo binary.
type LoggingConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Default returns a fully defaulted configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field with its default. Enabled flags
// stay as written; surfaces are opt-in.
func (c *Config) ApplyDefaults() {
	if c.Driver.Name == "" {
		c.Driver.Name = "telemetrix"
	}
	if c.Driver.CycleInterval == 0 {
		c.Driver.CycleInterval = Duration(5 * time.Millisecond)
	}
	if c.Driver.SnapshotInterval == 0 {
		c.Driver.SnapshotInterval = Duration(time.Second)
	}
	if c.Driver.MaxPerCycle == 0 {
		c.Driver.MaxPerCycle = 1000
	}

	if c.Gateway.Address == "" {
		c.Gateway.Address = ":9600"
	}
	if c.Gateway.RateLimit == 0 {
		c.Gateway.RateLimit = 10
	}
	if c.Gateway.RateBurst == 0 {
		c.Gateway.RateBurst = 20
	}
	if c.Gateway.ReadTimeout == 0 {
		c.Gateway.ReadTimeout = Duration(5 * time.Second)
	}
	if c.Gateway.WriteTimeout == 0 {
		c.Gateway.WriteTimeout = Duration(10 * time.Second)
	}

	if c.Prometheus.Namespace == "" {
		c.Prometheus.Namespace = "telemetrix"
	}

	if c.NATS.URL == "" {
		c.NATS.URL = "nats://localhost:4222"
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "telemetrix.snapshots"
	}
	if c.NATS.Name == "" {
		c.NATS.Name = "telemetrix-publisher"
	}
	if c.NATS.MaxReconnects == 0 {
		c.NATS.MaxReconnects = -1
	}
	if c.NATS.ReconnectWait == 0 {
		c.NATS.ReconnectWait = Duration(2 * time.Second)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the configuration for construction-time misuse.
func (c *Config) Validate() error {
	if c.Driver.CycleInterval < 0 {
		return invalid("driver.cycle_interval must not be negative")
	}
	if c.Driver.SnapshotInterval < 0 {
		return invalid("driver.snapshot_interval must not be negative")
	}
	if c.Driver.MaxPerCycle < 0 {
		return invalid("driver.max_per_cycle must not be negative")
	}

	if c.Gateway.Enabled {
		if c.Gateway.Address == "" {
			return invalid("gateway.address is required when the gateway is enabled")
		}
		if c.Gateway.RateLimit < 0 {
			return invalid("gateway.rate_limit must not be negative")
		}
		if c.Gateway.RateBurst < 0 {
			return invalid("gateway.rate_burst must not be negative")
		}
	}

	if c.NATS.Enabled {
		if c.NATS.URL == "" {
			return invalid("nats.url is required when the publisher is enabled")
		}
		if c.NATS.Subject == "" {
			return invalid("nats.subject is required when the publisher is enabled")
		}
		if !isValidSubject(c.NATS.Subject) {
			return invalid("nats.subject " + c.NATS.Subject + " is not a valid NATS subject")
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return invalid("logging.level must be one of debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return invalid("logging.format must be text or json")
	}

	return nil
}

func invalid(action string) error {
	return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", action)
}

// isValidSubject checks that a publish subject is made of dot-separated
// tokens of letters, digits, dashes, and underscores. Wildcards are not
// publishable and are rejected.
func isValidSubject(subject string) bool {
	tokens := strings.Split(subject, ".")
	for _, token := range tokens {
		if token == "" {
			return false
		}
		for _, r := range token {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
				return false
			}
		}
	}
	return true
}
