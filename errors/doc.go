// Package errors provides standardized error handling for telemetrix wiring
// and export paths.
//
// # Overview
//
// The package implements a three-class error classification: Transient
// (temporary, retryable, such as a NATS publish that timed out), Invalid
// (bad wiring or configuration, non-retryable), and Fatal (unrecoverable,
// stop the component).
//
// Telemetrix applies classification only outside the observation hot path.
// Observation delivery is best-effort: a dropped transmit, a disconnected
// channel, or a value that does not convert is a silent no-op, never an
// error (the host application must not be affected by telemetry
// malfunction). Errors cover the wiring phase, where duplicate processor
// names, zero-length bucket rings, and unloadable configuration fail fast,
// and the exporter surfaces that do real I/O.
//
// # Error Wrapping Pattern
//
// All wrapping follows the format
//
//	"component.method: action failed: %w"
//
// applied by the Wrap family:
//
//	errors.WrapInvalid(err, "Driver", "AddProcessor", "duplicate name check")
//	errors.WrapTransient(err, "Reporter", "Publish", "nats publish")
//	errors.WrapFatal(err, "Gateway", "Start", "listener bind")
//
// Classification survives wrapping chains and is queried with IsTransient,
// IsInvalid, and IsFatal, which understand both ClassifiedError values and
// the standard sentinel variables.
//
// # Standard Error Variables
//
// Sentinels are grouped by concern: lifecycle (ErrAlreadyStarted,
// ErrNotStarted, ErrAlreadyStopped), wiring (ErrDuplicateName,
// ErrEmptyName, ErrZeroCapacity), configuration (ErrInvalidConfig,
// ErrMissingConfig), and export transport (ErrNotConnected,
// ErrPublishFailed). Prefer them over ad-hoc messages so call sites can
// match with errors.Is.
package errors
