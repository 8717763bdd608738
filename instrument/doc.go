// Package instrument provides the leaf instruments that aggregate updates
// into reportable state.
//
// # Overview
//
// Every instrument consumes label-erased updates and renders its state into a
// snapshot tree:
//
//	Update(u *observation.Update) int              // 1 if state changed, else 0
//	PutSnapshot(tree *snapshot.Tree, descriptive bool)
//
// An update that is not meaningful for an instrument is a no-op, never an
// error. A Gauge ignores plain occurrences, a Counter ignores nothing, a
// Histogram only reads updates that carry a value. The returned count lets
// dispatch layers report how many instruments a delivery actually touched.
//
// # Instruments
//
//   - Counter: monotonically increasing count of occurrences
//   - Gauge: last observed value, optional peak/bottom tracking over a
//     sliding window, optional display unit for duration values
//   - Meter: 1, 5 and 15-minute moving average rates plus a total count
//   - Histogram: exponentially decaying reservoir with quantiles
//   - Flag, OccurrenceIndicator, NonOccurrenceIndicator, StaircaseTimer:
//     single-boolean switches with time-based semantics
//   - DataDisplay: most recent value held verbatim for display
//
// # Snapshots
//
// Scalar instruments write one or more keys derived from their name into the
// parent tree (a tracked gauge adds `<name>_peak` and `<name>_bottom`).
// Meter and Histogram render a nested tree under their name. In descriptive
// mode an instrument also emits its optional title and description, as
// `<name>_title`/`<name>_description` siblings for scalar instruments and as
// `title`/`description` members for tree-rendering ones.
//
// # Concurrency
//
// Instruments are not safe for concurrent use. They are owned by the
// processor that drains observations to them, which serializes every update
// and snapshot.
package instrument
