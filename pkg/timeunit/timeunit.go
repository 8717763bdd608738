// Package timeunit provides duration unit handling for observed values.
//
// Observed durations travel through the pipeline as an integer count plus a
// Unit. Nanoseconds are the canonical base: every Unit knows its nanosecond
// multiplier, and all conversions go through nanoseconds, so a value recorded
// in one unit can be rescaled into another without callers repeating the
// arithmetic.
//
// Conversion Semantics:
//   - Converting to a coarser unit divides and truncates toward zero
//     (5_000_000 ns becomes 5 ms)
//   - Converting to a finer unit multiplies (5 ms becomes 5_000_000 ns)
//   - Converting a unit to itself is the identity
//
// Usage Examples:
//
//	// Express a raw nanosecond reading in microseconds
//	us := timeunit.Convert(5_000_000, timeunit.Nanoseconds, timeunit.Microseconds)
//
//	// Express a time.Duration in a given unit
//	ms := timeunit.FromDuration(1500*time.Millisecond, timeunit.Milliseconds)
//
//	// Recover a time.Duration from a stored value
//	d := timeunit.Duration(5, timeunit.Seconds)
package timeunit

import "time"

// Unit identifies the time unit an integer duration value is expressed in.
type Unit int

const (
	Nanoseconds Unit = iota
	Microseconds
	Milliseconds
	Seconds
)

// NanosPerUnit returns the number of nanoseconds in one tick of the unit.
// Unknown units count as nanoseconds.
func (u Unit) NanosPerUnit() int64 {
	switch u {
	case Microseconds:
		return 1_000
	case Milliseconds:
		return 1_000_000
	case Seconds:
		return 1_000_000_000
	default:
		return 1
	}
}

// String returns the conventional abbreviation for the unit.
func (u Unit) String() string {
	switch u {
	case Nanoseconds:
		return "ns"
	case Microseconds:
		return "us"
	case Milliseconds:
		return "ms"
	case Seconds:
		return "s"
	default:
		return "unknown"
	}
}

// Valid reports whether u is one of the defined units.
func (u Unit) Valid() bool {
	return u >= Nanoseconds && u <= Seconds
}

// Convert re-expresses v, given in the from unit, in the to unit.
// Converting to a coarser unit truncates toward zero.
func Convert(v int64, from, to Unit) int64 {
	if from == to {
		return v
	}
	fromNanos := from.NanosPerUnit()
	toNanos := to.NanosPerUnit()
	if fromNanos >= toNanos {
		return v * (fromNanos / toNanos)
	}
	return v / (toNanos / fromNanos)
}

// ToNanos expresses v, given in unit u, as nanoseconds.
func ToNanos(v int64, u Unit) int64 {
	return v * u.NanosPerUnit()
}

// FromDuration expresses d in the given unit, truncating toward zero.
func FromDuration(d time.Duration, u Unit) int64 {
	return int64(d) / u.NanosPerUnit()
}

// Duration converts v, given in unit u, to a time.Duration.
func Duration(v int64, u Unit) time.Duration {
	return time.Duration(v * u.NanosPerUnit())
}
