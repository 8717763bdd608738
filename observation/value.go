package observation

import (
	"fmt"
	"math"

	"github.com/c360/telemetrix/pkg/timeunit"
)

// ValueKind identifies which kind of measurement a Value carries.
type ValueKind uint8

const (
	KindSigned ValueKind = iota
	KindUnsigned
	KindFloat
	KindBool
	KindDuration
	KindChangedBy
)

// String returns the kind name for logging and display.
func (k ValueKind) String() string {
	switch k {
	case KindSigned:
		return "signed"
	case KindUnsigned:
		return "unsigned"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDuration:
		return "duration"
	case KindChangedBy:
		return "changed_by"
	default:
		return "unknown"
	}
}

// Value is one observed measurement. The zero Value is the signed integer 0.
//
// Values are small and passed by copy. Conversions between kinds are explicit
// and fallible; callers that need a particular representation ask for it and
// handle absence.
type Value struct {
	kind ValueKind
	i    int64
	u    uint64
	f    float64
	b    bool
	unit timeunit.Unit
}

// SignedValue wraps a signed integer measurement.
func SignedValue(v int64) Value {
	return Value{kind: KindSigned, i: v}
}

// UnsignedValue wraps an unsigned integer measurement.
func UnsignedValue(v uint64) Value {
	return Value{kind: KindUnsigned, u: v}
}

// FloatValue wraps a floating point measurement.
func FloatValue(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// BoolValue wraps a boolean measurement.
func BoolValue(v bool) Value {
	return Value{kind: KindBool, b: v}
}

// DurationValue wraps a duration expressed as a count of the given unit.
func DurationValue(v int64, unit timeunit.Unit) Value {
	return Value{kind: KindDuration, i: v, unit: unit}
}

// ElapsedValue wraps a time.Duration-compatible nanosecond count as a
// duration value in nanoseconds.
func ElapsedValue(nanos int64) Value {
	return DurationValue(nanos, timeunit.Nanoseconds)
}

// ChangedBy wraps a relative change to be applied to an instrument's current
// state rather than replacing it.
func ChangedBy(delta int64) Value {
	return Value{kind: KindChangedBy, i: delta}
}

// Kind returns which kind of measurement the value carries.
func (v Value) Kind() ValueKind {
	return v.kind
}

// AsInt64 converts the value to a signed integer. Unsigned values convert
// only if they fit; floats, bools, deltas and durations do not convert.
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case KindSigned:
		return v.i, true
	case KindUnsigned:
		if v.u <= math.MaxInt64 {
			return int64(v.u), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsUint64 converts the value to an unsigned integer. Signed values convert
// only if non-negative.
func (v Value) AsUint64() (uint64, bool) {
	switch v.kind {
	case KindUnsigned:
		return v.u, true
	case KindSigned:
		if v.i >= 0 {
			return uint64(v.i), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsFloat64 converts numeric values to a float. Integer conversions may lose
// precision for very large magnitudes.
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindSigned:
		return float64(v.i), true
	case KindUnsigned:
		return float64(v.u), true
	default:
		return 0, false
	}
}

// AsBool converts the value to a truth state. Numeric values follow the
// zero-is-false convention; durations and deltas do not convert.
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindSigned:
		return v.i != 0, true
	case KindUnsigned:
		return v.u != 0, true
	case KindFloat:
		return v.f != 0, true
	default:
		return false, false
	}
}

// DurationIn converts a duration value into the given unit. Non-duration
// values do not convert.
func (v Value) DurationIn(unit timeunit.Unit) (int64, bool) {
	if v.kind != KindDuration {
		return 0, false
	}
	return timeunit.Convert(v.i, v.unit, unit), true
}

// Delta returns the relative change carried by a ChangedBy value.
func (v Value) Delta() (int64, bool) {
	if v.kind != KindChangedBy {
		return 0, false
	}
	return v.i, true
}

// String renders the value for logging and data display.
func (v Value) String() string {
	switch v.kind {
	case KindSigned:
		return fmt.Sprintf("%d", v.i)
	case KindUnsigned:
		return fmt.Sprintf("%d", v.u)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindDuration:
		return fmt.Sprintf("%d%s", v.i, v.unit)
	case KindChangedBy:
		return fmt.Sprintf("%+d", v.i)
	default:
		return "invalid"
	}
}

// Scaling rescales plain numeric values recorded in nanoseconds into a
// coarser unit before instruments see them.
type Scaling uint8

const (
	ScaleNone Scaling = iota
	ScaleNanosToMillis
	ScaleNanosToMicros
)

// String returns the scaling name for logging and configuration.
func (s Scaling) String() string {
	switch s {
	case ScaleNone:
		return "none"
	case ScaleNanosToMillis:
		return "nanos_to_millis"
	case ScaleNanosToMicros:
		return "nanos_to_micros"
	default:
		return "unknown"
	}
}

func (s Scaling) divisor() int64 {
	switch s {
	case ScaleNanosToMillis:
		return 1_000_000
	case ScaleNanosToMicros:
		return 1_000
	default:
		return 1
	}
}

// Scaled returns the value rescaled. Only plain numeric kinds are affected;
// durations already carry their unit and bools, deltas and unknown kinds pass
// through unchanged.
func (v Value) Scaled(s Scaling) Value {
	d := s.divisor()
	if d == 1 {
		return v
	}
	switch v.kind {
	case KindSigned:
		return SignedValue(v.i / d)
	case KindUnsigned:
		return UnsignedValue(v.u / uint64(d))
	case KindFloat:
		return FloatValue(v.f / float64(d))
	default:
		return v
	}
}
