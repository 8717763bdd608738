package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360/telemetrix/errors"
)

// Configs are small; anything bigger is a mistake.
const maxConfigSize = 1 << 20

// Load reads a configuration file, fills defaults, applies environment
// overrides, and validates the result. The decoder is picked by file
// extension: .yaml/.yml decode as YAML, everything else as JSON. Unknown
// fields are rejected.
func Load(path string) (*Config, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := decode(path, data, cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "decode "+filepath.Base(path))
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.WrapInvalid(errors.ErrConfigNotFound, "Config", "Load", "empty path")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapInvalid(errors.ErrConfigNotFound, "Config", "Load", "stat "+path)
	}
	if info.Size() > maxConfigSize {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Load", "size check for "+path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "read "+path)
	}
	return data, nil
}

func decode(path string, data []byte, cfg *Config) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	}

	// An empty file is a valid all-defaults configuration.
	if stderrors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// applyEnvOverrides lets deployments adjust addresses and logging
// without editing the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TELEMETRIX_GATEWAY_ADDRESS"); v != "" {
		cfg.Gateway.Address = v
	}
	if v := os.Getenv("TELEMETRIX_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("TELEMETRIX_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TELEMETRIX_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
