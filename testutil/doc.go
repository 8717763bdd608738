// Package testutil provides shared helpers for telemetrix tests.
//
// # Overview
//
// The helpers here serve tests that sit above the core pipeline, like the
// driver, gateway, and exporter packages. Core packages keep their
// fixtures local to stay import-cycle free.
//
// # Components
//
// MockReporter - In-memory snapshot reporter:
//   - Thread-safe for concurrent use
//   - Stores every reported tree for verification
//   - Configurable error injection via ReportFunc
//
// CountingPair - A transmitter/processor pair with one counter wired at a
// known path, optionally preloaded with observations. Draining the
// processor makes the counter visible at <name>/requests/hits.
//
// Tree assertions - RequireIntLeaf, RequireUintLeaf, Number: resolve a
// path in a snapshot tree and fail the test with the full path on a miss.
package testutil
