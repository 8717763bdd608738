// Package config loads and validates telemetrix configuration.
//
// # Overview
//
// Configuration is a plain struct decoded from YAML or JSON, picked by
// file extension. Load reads the file, fills defaults for anything left
// unset, applies environment overrides, and validates:
//
//	cfg, err := config.Load("telemetrix.yaml")
//
// Default() returns a fully defaulted configuration for running without
// a file. All surfaces except the driver are opt-in: the gateway,
// prometheus bridge, and NATS publisher stay off unless enabled.
//
// # Durations
//
// Interval fields use the Duration wrapper, which accepts both plain
// nanosecond numbers and strings like "5ms" or "2s" in either format.
//
// # Environment overrides
//
// A few deployment-sensitive settings can be overridden without touching
// the file: TELEMETRIX_GATEWAY_ADDRESS, TELEMETRIX_NATS_URL,
// TELEMETRIX_LOG_LEVEL and TELEMETRIX_LOG_FORMAT.
//
// # Errors
//
// Unreadable files, unknown fields, and failed validation all return
// invalid-class errors; nothing in this package is retryable.
package config
