// Package retry provides exponential backoff for transient failures.
//
// # Overview
//
// Exporters talk to brokers and endpoints that fail transiently. Do runs
// an operation with exponential backoff until it succeeds, the attempts
// are exhausted, or the context is cancelled:
//
//	err := retry.Do(ctx, retry.Publish(), func() error {
//		return conn.Publish(subject, payload)
//	})
//
// Errors wrapped with NonRetryable stop the loop immediately. Use it for
// failures that cannot heal on their own, like a malformed subject.
//
// # Presets
//
// Publish returns a config tuned for snapshot reports: few attempts with
// short delays, because the next cycle supersedes a stale report anyway.
// Connect returns a config for establishing broker connections at
// startup, where waiting longer beats giving up.
package retry
