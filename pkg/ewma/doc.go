// Package ewma provides exponentially weighted moving average rate tracking.
//
// # Overview
//
// An EWMA decays a rate toward the most recently observed throughput. Events
// accumulate in an atomic counter via Update, which is safe to call from any
// goroutine; a fixed-period Tick folds the accumulated count into the decayed
// rate. The very first tick initializes the rate instead of decaying, so a
// meter does not spend its first minutes climbing from zero.
//
// A Meter composes the three conventional windows (1, 5 and 15 minutes)
// behind one mark cadence. Ticks are applied lazily: before any mark or read,
// the meter applies as many whole fixed-period ticks as have elapsed since
// the last one. Catch-up is a loop of fixed-size ticks rather than one
// variable-size tick, preserving each window's alpha.
//
// Rates are reported in events per second.
package ewma
