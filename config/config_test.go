package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/telemetrix/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "telemetrix", cfg.Driver.Name)
	assert.Equal(t, 5*time.Millisecond, cfg.Driver.CycleInterval.Std())
	assert.Equal(t, time.Second, cfg.Driver.SnapshotInterval.Std())
	assert.Equal(t, 1000, cfg.Driver.MaxPerCycle)
	assert.Equal(t, ":9600", cfg.Gateway.Address)
	assert.Equal(t, "telemetrix.snapshots", cfg.NATS.Subject)
	assert.Equal(t, -1, cfg.NATS.MaxReconnects)

	assert.False(t, cfg.Gateway.Enabled)
	assert.False(t, cfg.Prometheus.Enabled)
	assert.False(t, cfg.NATS.Enabled)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "telemetrix.yaml", `
driver:
  name: edge-loop
  cycle_interval: 10ms
gateway:
  enabled: true
  address: ":9700"
nats:
  enabled: true
  subject: metrics.edge.snapshots
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "edge-loop", cfg.Driver.Name)
	assert.Equal(t, 10*time.Millisecond, cfg.Driver.CycleInterval.Std())
	assert.Equal(t, ":9700", cfg.Gateway.Address)
	assert.Equal(t, "metrics.edge.snapshots", cfg.NATS.Subject)

	// Untouched fields pick up defaults.
	assert.Equal(t, time.Second, cfg.Driver.SnapshotInterval.Std())
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "telemetrix.json", `{
  "driver": {"snapshot_interval": "500ms"},
  "logging": {"level": "debug", "format": "json"}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Driver.SnapshotInterval.Std())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "empty.yaml", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Millisecond, cfg.Driver.CycleInterval.Std())
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "typo.yaml", "driver:\n  cycle_intervall: 10ms\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfigNotFound)
	assert.True(t, errors.IsInvalid(err))

	_, err = Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfigNotFound)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TELEMETRIX_GATEWAY_ADDRESS", ":9999")
	t.Setenv("TELEMETRIX_LOG_LEVEL", "warn")

	path := writeConfig(t, "base.yaml", "gateway:\n  enabled: true\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Gateway.Address)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidateRejectsMisuse(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative cycle interval", Config{Driver: DriverConfig{CycleInterval: -1}}},
		{"negative snapshot interval", Config{Driver: DriverConfig{SnapshotInterval: -1}}},
		{"negative batch", Config{Driver: DriverConfig{MaxPerCycle: -1}}},
		{"gateway without address", Config{Gateway: GatewayConfig{Enabled: true}}},
		{"nats without subject", Config{NATS: NATSConfig{Enabled: true, URL: "nats://x:4222"}}},
		{"nats wildcard subject", Config{NATS: NATSConfig{Enabled: true, URL: "nats://x:4222", Subject: "metrics.*"}}},
		{"bad log level", Config{Logging: LoggingConfig{Level: "verbose"}}},
		{"bad log format", Config{Logging: LoggingConfig{Format: "xml"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
		})
	}
}

func TestSubjectValidation(t *testing.T) {
	assert.True(t, isValidSubject("telemetrix.snapshots"))
	assert.True(t, isValidSubject("metrics.edge-1.snap_shots"))
	assert.False(t, isValidSubject("metrics..double"))
	assert.False(t, isValidSubject("metrics. space"))
	assert.False(t, isValidSubject("metrics.>"))
}
