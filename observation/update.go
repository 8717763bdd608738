package observation

import "time"

// UpdateKind identifies which shape of update an instrument receives.
type UpdateKind uint8

const (
	// UpdateOccurrences reports that something happened n times.
	UpdateOccurrences UpdateKind = iota + 1
	// UpdateOccurrence reports that something happened once.
	UpdateOccurrence
	// UpdateValue reports that something happened once and carried a value.
	UpdateValue
)

// Valid reports whether k is one of the defined update kinds.
func (k UpdateKind) Valid() bool {
	return k >= UpdateOccurrences && k <= UpdateValue
}

// String returns the kind name for logging and display.
func (k UpdateKind) String() string {
	switch k {
	case UpdateOccurrences:
		return "occurrences"
	case UpdateOccurrence:
		return "occurrence"
	case UpdateValue:
		return "value"
	default:
		return "unknown"
	}
}

// Update is the label-erased projection of an Observation. It is what leaf
// instruments actually consume: how often something happened, an optional
// observed value, and when.
//
// The zero Update has no kind and is ignored by every instrument.
type Update struct {
	kind      UpdateKind
	count     uint64
	value     Value
	timestamp time.Time
}

// Occurrences builds an update reporting n occurrences at the given time.
func Occurrences(n uint64, at time.Time) Update {
	return Update{kind: UpdateOccurrences, count: n, timestamp: at}
}

// Occurrence builds an update reporting a single occurrence at the given time.
func Occurrence(at time.Time) Update {
	return Update{kind: UpdateOccurrence, count: 1, timestamp: at}
}

// OccurrenceValue builds an update reporting a single occurrence carrying an
// observed value at the given time.
func OccurrenceValue(v Value, at time.Time) Update {
	return Update{kind: UpdateValue, count: 1, value: v, timestamp: at}
}

// Kind returns which shape of update this is.
func (u Update) Kind() UpdateKind {
	return u.kind
}

// Count returns how many occurrences the update reports. Single-occurrence
// updates report 1.
func (u Update) Count() uint64 {
	return u.count
}

// Value returns the observed value, if the update carries one.
func (u Update) Value() (Value, bool) {
	if u.kind != UpdateValue {
		return Value{}, false
	}
	return u.value, true
}

// Timestamp returns when the observation was made.
func (u Update) Timestamp() time.Time {
	return u.timestamp
}

// Scaled applies a value scaling. Updates without a value pass through
// unchanged.
func (u Update) Scaled(s Scaling) Update {
	if u.kind != UpdateValue || s == ScaleNone {
		return u
	}
	u.value = u.value.Scaled(s)
	return u
}
