// Package driver runs the background loop that turns queued observations
// into snapshots.
//
// # Overview
//
// A Driver owns a registry of processors and drives them from one
// dedicated goroutine: each cycle drains a bounded batch of pending
// messages from every registered processor, and at the snapshot interval
// assembles the full snapshot tree, caches it, and hands it to the
// registered reporters.
//
//	drv := driver.New("telemetry")
//	_ = drv.Register(proc)
//	_ = drv.Start(ctx)
//	defer drv.Stop(5 * time.Second)
//
// # Loop
//
// The loop ticks at a fixed minimum interval (5 ms by default). Draining
// is bounded per processor per cycle, so the loop makes progress even
// under sustained producer load; excess messages stay queued for the next
// cycle. Registration is allowed while the loop runs; the registry mutex
// is held for the duration of one drain or snapshot walk.
//
// # Snapshots
//
// Latest returns the most recently assembled tree without touching the
// registry; it never returns nil and is safe from any goroutine. Snapshot
// walks the registry for a fresh tree, independent of the loop. The
// driver adds a subtree under its own name carrying loop statistics.
//
// # Reporters
//
// Completed snapshots fan out to reporters through a small worker pool.
// Reporting is best effort: a slow reporter backs up the pool queue and
// further snapshots for it are dropped, never the loop.
package driver
