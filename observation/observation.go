package observation

import "time"

// Observation is one labeled measurement emitted by instrumented code. The
// label routes it through cockpits and panels; the update is what reaches
// the instruments behind matching filters.
type Observation[L comparable] struct {
	Label  L
	Update Update
}

// Observed builds an observation reporting n occurrences of label at the
// given time.
func Observed[L comparable](label L, n uint64, at time.Time) Observation[L] {
	return Observation[L]{Label: label, Update: Occurrences(n, at)}
}

// ObservedOne builds an observation reporting a single occurrence of label at
// the given time.
func ObservedOne[L comparable](label L, at time.Time) Observation[L] {
	return Observation[L]{Label: label, Update: Occurrence(at)}
}

// ObservedOneValue builds an observation reporting a single occurrence of
// label carrying an observed value at the given time.
func ObservedOneValue[L comparable](label L, v Value, at time.Time) Observation[L] {
	return Observation[L]{Label: label, Update: OccurrenceValue(v, at)}
}

// ObservedDuration builds an observation carrying the elapsed time since
// start, recorded in nanoseconds.
func ObservedDuration[L comparable](label L, start, at time.Time) Observation[L] {
	return ObservedOneValue(label, ElapsedValue(at.Sub(start).Nanoseconds()), at)
}
