// Package buckets provides a per-second rotating ring buffer and the bucket
// statistics computed over it.
//
// # Overview
//
// A Ring holds one slot per second of a sliding window. Every accessor first
// performs an in-place catch-up rotation: slots that the wall clock has moved
// past are reset to the element type's zero value, so a reader only ever sees
// data from the last N seconds. Rotation consumes whole seconds and retains
// the sub-second remainder, so many small clock advances end in the same
// state as one large advance.
//
// Bucket is the element type used for gauge extrema tracking: a running sum,
// count and min/max pair for the samples that landed within one second.
// BucketStats reduces a Ring[Bucket] into window-wide peak, bottom and
// average figures.
//
// # Concurrency
//
// A Ring is not safe for concurrent use. Instruments own their rings and are
// themselves driven by a single processing goroutine, so the ring stays
// lock-free on the hot path.
package buckets
