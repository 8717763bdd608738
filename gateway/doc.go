// Package gateway exposes snapshot trees and health verdicts over HTTP.
//
// # Overview
//
// The gateway serves the driver's rendered output without touching the
// instrument side of the library. It reads whatever snapshot the driver
// cached last and never blocks the processing loop:
//
//	gw, err := gateway.New(drv,
//	    gateway.WithAddress(":9600"),
//	    gateway.WithHealthMonitor(monitor),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := gw.Start(ctx); err != nil {
//	    return err
//	}
//	defer gw.Stop(5 * time.Second)
//
// # Endpoints
//
//   - GET /snapshot returns the latest tree as JSON. Add ?pretty=1 for
//     indented output and ?descriptive=1 to force a fresh descriptive
//     walk instead of the cached tree.
//   - GET /healthz returns the aggregated component health. Unhealthy
//     aggregates answer 503 so load balancers can act on the verdict.
//   - GET /live upgrades to a WebSocket and pushes each new snapshot as
//     a JSON text message until the client disconnects.
//   - GET /metrics is mounted only when WithMetricsHandler is set.
//
// # Rate limiting
//
// Snapshot and live requests share a token bucket limiter. Requests that
// exceed the configured rate are shed with 429 before any tree is
// rendered. Health probes are never rate limited.
package gateway
