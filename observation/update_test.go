package observation

import (
	"testing"
	"time"

	"github.com/c360/telemetrix/pkg/timeunit"
)

var testInstant = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestUpdate_Constructors(t *testing.T) {
	many := Occurrences(5, testInstant)
	if many.Kind() != UpdateOccurrences || many.Count() != 5 {
		t.Errorf("Occurrences: kind=%v count=%d", many.Kind(), many.Count())
	}
	if !many.Timestamp().Equal(testInstant) {
		t.Errorf("Occurrences timestamp = %v, expected %v", many.Timestamp(), testInstant)
	}

	one := Occurrence(testInstant)
	if one.Kind() != UpdateOccurrence || one.Count() != 1 {
		t.Errorf("Occurrence: kind=%v count=%d", one.Kind(), one.Count())
	}

	valued := OccurrenceValue(SignedValue(9), testInstant)
	if valued.Kind() != UpdateValue || valued.Count() != 1 {
		t.Errorf("OccurrenceValue: kind=%v count=%d", valued.Kind(), valued.Count())
	}
	v, ok := valued.Value()
	if !ok {
		t.Fatal("OccurrenceValue should carry a value")
	}
	if got, _ := v.AsInt64(); got != 9 {
		t.Errorf("carried value = %d, expected 9", got)
	}
}

func TestUpdate_ValueAbsentWithoutPayload(t *testing.T) {
	if _, ok := Occurrence(testInstant).Value(); ok {
		t.Error("plain occurrence should not carry a value")
	}
	if _, ok := Occurrences(3, testInstant).Value(); ok {
		t.Error("occurrences should not carry a value")
	}
}

func TestUpdate_Scaled(t *testing.T) {
	u := OccurrenceValue(UnsignedValue(5_000_000), testInstant).Scaled(ScaleNanosToMicros)
	v, ok := u.Value()
	if !ok {
		t.Fatal("scaled update should still carry a value")
	}
	if got, _ := v.AsUint64(); got != 5_000 {
		t.Errorf("scaled value = %d, expected 5000", got)
	}
	if !u.Timestamp().Equal(testInstant) {
		t.Error("scaling should not touch the timestamp")
	}

	// Updates without a value pass through untouched
	plain := Occurrences(2, testInstant).Scaled(ScaleNanosToMillis)
	if plain.Kind() != UpdateOccurrences || plain.Count() != 2 {
		t.Error("scaling should not alter a value-less update")
	}
}

func TestObservation_Constructors(t *testing.T) {
	type key int
	const hits key = 1

	obs := Observed(hits, 4, testInstant)
	if obs.Label != hits {
		t.Errorf("label = %v, expected %v", obs.Label, hits)
	}
	if obs.Update.Kind() != UpdateOccurrences || obs.Update.Count() != 4 {
		t.Errorf("update = %v/%d", obs.Update.Kind(), obs.Update.Count())
	}

	one := ObservedOne(hits, testInstant)
	if one.Update.Kind() != UpdateOccurrence {
		t.Errorf("kind = %v, expected occurrence", one.Update.Kind())
	}

	valued := ObservedOneValue(hits, FloatValue(2.5), testInstant)
	if valued.Update.Kind() != UpdateValue {
		t.Errorf("kind = %v, expected value", valued.Update.Kind())
	}
}

func TestObservedDuration(t *testing.T) {
	start := testInstant
	end := start.Add(5 * time.Millisecond)

	obs := ObservedDuration(0, start, end)
	v, ok := obs.Update.Value()
	if !ok {
		t.Fatal("duration observation should carry a value")
	}
	if v.Kind() != KindDuration {
		t.Fatalf("kind = %v, expected duration", v.Kind())
	}
	nanos, _ := v.DurationIn(timeunit.Nanoseconds)
	if nanos != 5_000_000 {
		t.Errorf("elapsed = %d ns, expected 5000000", nanos)
	}
}
