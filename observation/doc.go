// Package observation defines the data model for everything that flows from
// instrumented code into the aggregation pipeline: labeled observations, their
// label-erased updates, and the closed set of observed value kinds.
//
// # Overview
//
// Instrumented code emits an Observation: a label identifying what happened
// plus an Update describing how it happened (N occurrences, one occurrence, or
// one occurrence carrying a value) and when. Labels route the observation
// through panels and cockpits; by the time an instrument sees it, only the
// Update remains.
//
// The label type is a type parameter constrained to comparable, so routing
// uses the label's own equality. A simple const enum is the intended label
// type:
//
//	type metricKey int
//
//	const (
//		requestAccepted metricKey = iota
//		requestRejected
//		requestLatency
//	)
//
// # Values
//
// Value is a closed set of kinds: signed integer, unsigned integer, float,
// boolean, duration with an explicit time unit, and relative change (delta).
// Conversions between kinds are explicit and fallible. A negative signed value
// does not convert to unsigned, and a duration never converts to a plain
// number without naming the unit:
//
//	v := observation.DurationValue(1500, timeunit.Microseconds)
//	ms, ok := v.DurationIn(timeunit.Milliseconds) // 1, true
//	_, ok = v.AsInt64()                           // 0, false
//
// # Scaling
//
// Producers commonly record latencies as raw nanosecond integers. A cockpit
// configured with a Scaling rescales plain numeric values before dispatching
// to its panels, so instruments read in the intended unit:
//
//	u := update.Scaled(observation.ScaleNanosToMicros)
//
// Duration values are not rescaled; they already carry their unit.
package observation
